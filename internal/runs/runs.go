// Package runs coalesces the readable extents reported by an address space
// into maximal contiguous runs.
package runs

import (
	"github.com/joshuapare/kpcrkit/internal/buf"
	"github.com/joshuapare/kpcrkit/pkg/types"
)

// Coalesce merges extents that chain with no gap into runs.
//
// extents must be ordered by ascending Offset and must not overlap. An extent
// that starts before the end of the run currently being built is reported as
// an *types.OrderingError instead of being silently mis-merged, as is an
// extent whose end wraps past 2^64. Zero-size extents carry no bytes and are
// skipped.
//
// Returns nil for empty input.
func Coalesce(extents []types.PageExtent) ([]types.Run, error) {
	var (
		res     []types.Run
		current types.Run
		open    bool
	)
	for i, e := range extents {
		if e.Size == 0 {
			continue
		}
		if _, ok := buf.AddOverflowSafe(e.Offset, e.Size); !ok {
			oe := &types.OrderingError{Index: i, Next: e, Wraps: true}
			if open {
				oe.Prev = types.PageExtent{Offset: current.Offset, Size: current.Length}
			}
			return nil, oe
		}
		if !open {
			current = types.Run{Offset: e.Offset, Length: e.Size}
			open = true
			continue
		}
		switch end := current.End(); {
		case e.Offset == end:
			current.Length += e.Size
		case e.Offset > end:
			res = append(res, current)
			current = types.Run{Offset: e.Offset, Length: e.Size}
		default:
			return nil, &types.OrderingError{
				Index: i,
				Prev:  types.PageExtent{Offset: current.Offset, Size: current.Length},
				Next:  e,
			}
		}
	}
	if open {
		res = append(res, current)
	}
	return res, nil
}

// AsExtents converts runs back into extents, e.g. to re-coalesce them.
func AsExtents(rs []types.Run) []types.PageExtent {
	if len(rs) == 0 {
		return nil
	}
	out := make([]types.PageExtent, len(rs))
	for i, r := range rs {
		out[i] = types.PageExtent{Offset: r.Offset, Size: r.Length}
	}
	return out
}

// Total returns the number of bytes covered by rs.
func Total(rs []types.Run) uint64 {
	var n uint64
	for _, r := range rs {
		n += r.Length
	}
	return n
}
