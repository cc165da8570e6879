// Package addrspace provides address-space providers for memory images: a
// synthetic in-memory space, raw (flat) dumps, and LiME dumps.
//
// All providers share one representation: an ordered table of non-overlapping
// segments, each a byte slice placed at an offset of the address space. Raw
// and LiME images back their segments with a read-only memory mapping.
package addrspace

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/joshuapare/kpcrkit/internal/buf"
	"github.com/joshuapare/kpcrkit/pkg/types"
)

type segment struct {
	off  uint64
	data []byte
}

func (s segment) end() uint64 { return s.off + uint64(len(s.data)) }

// Space is a sparse address space assembled from mapped segments.
//
// A Space is safe for concurrent reads once it is fully mapped. Map is not
// safe to call concurrently with reads.
type Space struct {
	segs    []segment
	cleanup func() error
}

var _ types.AddressSpace = (*Space)(nil)

// New returns an empty address space.
func New() *Space {
	return &Space{}
}

// Map places data at offset off. The slice is retained, not copied. Empty
// data is ignored; data that would overlap an existing segment or wrap the
// 64-bit address space is rejected.
func (s *Space) Map(off uint64, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	end, ok := buf.AddOverflowSafe(off, uint64(len(data)))
	if !ok {
		return fmt.Errorf("addrspace: segment at %#x (%d bytes) wraps address space", off, len(data))
	}
	i := sort.Search(len(s.segs), func(i int) bool { return s.segs[i].off >= off })
	if i > 0 && s.segs[i-1].end() > off {
		return fmt.Errorf("addrspace: segment at %#x overlaps %#x-%#x", off, s.segs[i-1].off, s.segs[i-1].end())
	}
	if i < len(s.segs) && s.segs[i].off < end {
		return fmt.Errorf("addrspace: segment at %#x overlaps %#x-%#x", off, s.segs[i].off, s.segs[i].end())
	}
	s.segs = append(s.segs, segment{})
	copy(s.segs[i+1:], s.segs[i:])
	s.segs[i] = segment{off: off, data: data}
	return nil
}

// Extents returns one extent per mapped segment, ascending by offset.
// Adjacent segments are reported separately; coalescing is the scanner's job.
func (s *Space) Extents() []types.PageExtent {
	out := make([]types.PageExtent, len(s.segs))
	for i, seg := range s.segs {
		out[i] = types.PageExtent{Offset: seg.off, Size: uint64(len(seg.data))}
	}
	return out
}

// Size returns the number of mapped bytes.
func (s *Space) Size() uint64 {
	var n uint64
	for _, seg := range s.segs {
		n += uint64(len(seg.data))
	}
	return n
}

// ReadAt fills p with the bytes at off. A read may cross from one segment
// into an adjacent one; touching a hole yields types.ErrUnmapped and running
// past the last mapped byte yields types.ErrOutOfRange.
func (s *Space) ReadAt(p []byte, off uint64) error {
	fail := func(cause error) error {
		return &types.ReadError{Offset: off, Width: len(p), Err: cause}
	}
	end, ok := buf.AddOverflowSafe(off, uint64(len(p)))
	if !ok || len(s.segs) == 0 || end > s.segs[len(s.segs)-1].end() {
		return fail(types.ErrOutOfRange)
	}
	i := sort.Search(len(s.segs), func(i int) bool { return s.segs[i].end() > off })
	cur := off
	for n := 0; n < len(p); i++ {
		if i >= len(s.segs) || s.segs[i].off > cur {
			return fail(types.ErrUnmapped)
		}
		seg := s.segs[i]
		n += copy(p[n:], seg.data[cur-seg.off:])
		cur = off + uint64(n)
	}
	return nil
}

// ReadU32 reads a little-endian uint32 at off.
func (s *Space) ReadU32(off uint64) (uint32, error) {
	var b [4]byte
	if err := s.ReadAt(b[:], off); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// ReadU64 reads a little-endian uint64 at off.
func (s *Space) ReadU64(off uint64) (uint64, error) {
	var b [8]byte
	if err := s.ReadAt(b[:], off); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// Close releases the backing mapping, if any. The Space must not be read
// afterwards.
func (s *Space) Close() error {
	s.segs = nil
	if s.cleanup == nil {
		return nil
	}
	err := s.cleanup()
	s.cleanup = nil
	return err
}
