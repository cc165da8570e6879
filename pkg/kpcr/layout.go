package kpcr

import (
	"fmt"

	"github.com/joshuapare/kpcrkit/internal/buf"
	"github.com/joshuapare/kpcrkit/pkg/types"
)

// Layout names the parts of the KPCR the signature test depends on.
type Layout struct {
	Name string

	// KernelBase is the lowest run start that is scanned. Runs starting
	// below it are skipped whole.
	KernelBase uint64
	// StructSize is the full footprint of the structure. A candidate is
	// only tested when StructSize bytes fit in its run.
	StructSize uint64
	// SelfPtrOffset is the offset of the pointer back to the KPCR.
	SelfPtrOffset uint64
	// PrcbPtrOffset is the offset of the pointer to the embedded KPRCB.
	PrcbPtrOffset uint64
	// PrcbEmbedOffset is where the KPRCB sits inside the KPCR.
	PrcbEmbedOffset uint64
	// Alignment is the scan stride.
	Alignment uint64
	// PointerWidth is 4 or 8 bytes.
	PointerWidth int
}

// DefaultLayout describes the 32-bit x86 KPCR of Windows XP/2003.
var DefaultLayout = Layout{
	Name:            "x86",
	KernelBase:      0x80000000,
	StructSize:      0x1f94,
	SelfPtrOffset:   0x1c,
	PrcbPtrOffset:   0x20,
	PrcbEmbedOffset: 0x120,
	Alignment:       4,
	PointerWidth:    4,
}

// Validate reports layouts the scanner cannot use.
func (l Layout) Validate() error {
	switch {
	case l.Alignment == 0:
		return fmt.Errorf("%w: alignment must be non-zero", types.ErrBadLayout)
	case l.PointerWidth != 4 && l.PointerWidth != 8:
		return fmt.Errorf("%w: pointer width %d (want 4 or 8)", types.ErrBadLayout, l.PointerWidth)
	case l.StructSize == 0:
		return fmt.Errorf("%w: structure size must be non-zero", types.ErrBadLayout)
	case !l.fits(l.SelfPtrOffset, uint64(l.PointerWidth)):
		return fmt.Errorf("%w: self pointer at %#x outside %#x-byte structure", types.ErrBadLayout, l.SelfPtrOffset, l.StructSize)
	case !l.fits(l.PrcbPtrOffset, uint64(l.PointerWidth)):
		return fmt.Errorf("%w: prcb pointer at %#x outside %#x-byte structure", types.ErrBadLayout, l.PrcbPtrOffset, l.StructSize)
	case l.PrcbEmbedOffset >= l.StructSize:
		return fmt.Errorf("%w: embedded prcb at %#x outside %#x-byte structure", types.ErrBadLayout, l.PrcbEmbedOffset, l.StructSize)
	}
	return nil
}

func (l Layout) fits(off, n uint64) bool {
	end, ok := buf.AddOverflowSafe(off, n)
	return ok && end <= l.StructSize
}

// IsKernel reports whether a run starting at off is scanned.
func (l Layout) IsKernel(off uint64) bool { return off >= l.KernelBase }

// FirstCandidate returns the first aligned offset inside run, or false when
// the run has none.
func (l Layout) FirstCandidate(run types.Run) (uint64, bool) {
	start, ok := buf.AlignUp(run.Offset, l.Alignment)
	if !ok {
		return 0, false
	}
	return start, start < run.End()
}

// CandidateCount returns how many aligned offsets in run leave room for a
// whole structure. A run StructSize bytes long yields one candidate; one
// Alignment shorter yields none.
func (l Layout) CandidateCount(run types.Run) uint64 {
	start, ok := l.FirstCandidate(run)
	if !ok {
		return 0
	}
	avail := run.End() - start
	if avail < l.StructSize {
		return 0
	}
	return (avail-l.StructSize)/l.Alignment + 1
}
