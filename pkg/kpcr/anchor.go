package kpcr

import (
	"github.com/joshuapare/kpcrkit/internal/buf"
	"github.com/joshuapare/kpcrkit/pkg/types"
)

// IsAnchor applies the signature test at offset o: the self pointer must hold
// o and the PRCB pointer must hold o + PrcbEmbedOffset. Any read failure is a
// non-match.
func IsAnchor(as types.AddressSpace, l Layout, o uint64) (types.AnchorMatch, bool) {
	self, ok := readField(as, l, o, l.SelfPtrOffset)
	if !ok || self != o {
		return types.AnchorMatch{}, false
	}
	want, ok := buf.AddOverflowSafe(o, l.PrcbEmbedOffset)
	if !ok {
		return types.AnchorMatch{}, false
	}
	prcb, ok := readField(as, l, o, l.PrcbPtrOffset)
	if !ok || prcb != want {
		return types.AnchorMatch{}, false
	}
	return types.AnchorMatch{Offset: o, SelfRef: self, Prcb: prcb}, true
}

// Fields is the raw content of the two pointer fields at a candidate.
type Fields struct {
	Offset  uint64
	SelfRef uint64
	Prcb    uint64
	SelfErr error
	PrcbErr error
}

// ReadFields reads both pointer fields at o without judging them. It backs
// diagnostics such as the CLI check command.
func ReadFields(as types.AddressSpace, l Layout, o uint64) Fields {
	f := Fields{Offset: o}
	f.SelfRef, f.SelfErr = readPointer(as, l, o, l.SelfPtrOffset)
	f.Prcb, f.PrcbErr = readPointer(as, l, o, l.PrcbPtrOffset)
	return f
}

func readField(as types.AddressSpace, l Layout, o, field uint64) (uint64, bool) {
	v, err := readPointer(as, l, o, field)
	return v, err == nil
}

func readPointer(as types.AddressSpace, l Layout, o, field uint64) (uint64, error) {
	at, ok := buf.AddOverflowSafe(o, field)
	if !ok {
		return 0, &types.ReadError{Offset: o, Width: l.PointerWidth, Err: types.ErrOutOfRange}
	}
	if l.PointerWidth == 8 {
		return as.ReadU64(at)
	}
	v, err := as.ReadU32(at)
	return uint64(v), err
}
