package kpcr

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/kpcrkit/pkg/addrspace"
	"github.com/joshuapare/kpcrkit/pkg/types"
)

// image is a synthetic address space under construction.
type image struct {
	t     *testing.T
	space *addrspace.Space
	segs  map[uint64][]byte
}

func newImage(t *testing.T) *image {
	t.Helper()
	return &image{t: t, space: addrspace.New(), segs: make(map[uint64][]byte)}
}

// run maps a zeroed segment and returns its backing bytes.
func (im *image) run(off, length uint64) []byte {
	im.t.Helper()
	data := make([]byte, length)
	require.NoError(im.t, im.space.Map(off, data))
	im.segs[off] = data
	return data
}

// put writes a pointer-width value at the absolute offset at.
func (im *image) put(l Layout, at, v uint64) {
	im.t.Helper()
	for base, data := range im.segs {
		if at >= base && at+uint64(l.PointerWidth) <= base+uint64(len(data)) {
			if l.PointerWidth == 8 {
				binary.LittleEndian.PutUint64(data[at-base:], v)
			} else {
				binary.LittleEndian.PutUint32(data[at-base:], uint32(v))
			}
			return
		}
	}
	im.t.Fatalf("offset %#x not inside one mapped segment", at)
}

// plant writes a valid KPCR signature at o.
func (im *image) plant(l Layout, o uint64) {
	im.t.Helper()
	im.put(l, o+l.SelfPtrOffset, o)
	im.put(l, o+l.PrcbPtrOffset, o+l.PrcbEmbedOffset)
}

func offsets(ms []types.AnchorMatch) []uint64 {
	out := make([]uint64, len(ms))
	for i, m := range ms {
		out[i] = m.Offset
	}
	return out
}

// flakySpace claims the extents of an inner space but fails reads that
// touch [badLo, badHi).
type flakySpace struct {
	inner        types.AddressSpace
	extents      []types.PageExtent
	badLo, badHi uint64
}

func (f *flakySpace) Extents() []types.PageExtent { return f.extents }

func (f *flakySpace) bad(off uint64, n int) error {
	if off < f.badHi && off+uint64(n) > f.badLo {
		return &types.ReadError{Offset: off, Width: n, Err: types.ErrUnmapped}
	}
	return nil
}

func (f *flakySpace) ReadU32(off uint64) (uint32, error) {
	if err := f.bad(off, 4); err != nil {
		return 0, err
	}
	return f.inner.ReadU32(off)
}

func (f *flakySpace) ReadU64(off uint64) (uint64, error) {
	if err := f.bad(off, 8); err != nil {
		return 0, err
	}
	return f.inner.ReadU64(off)
}

// extentSpace reports arbitrary extents and reads zeros everywhere.
type extentSpace []types.PageExtent

func (e extentSpace) Extents() []types.PageExtent  { return e }
func (extentSpace) ReadU32(uint64) (uint32, error) { return 0, nil }
func (extentSpace) ReadU64(uint64) (uint64, error) { return 0, nil }
