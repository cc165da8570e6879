package types

import "fmt"

// -----------------------------------------------------------------------------
// Address space
// -----------------------------------------------------------------------------

// PageExtent is one contiguous block of the image known to be readable.
// Providers report extents ordered by ascending Offset.
type PageExtent struct {
	Offset uint64
	Size   uint64
}

// End returns the first offset past the extent.
func (e PageExtent) End() uint64 { return e.Offset + e.Size }

// AddressSpace is the view of a memory image the scanner needs. Reads are
// little-endian, matching the x86 images this toolkit targets.
//
// Implementations must return a stable, ascending, non-overlapping extent list
// for the duration of a scan and must be safe for concurrent reads when
// scanned with more than one worker.
type AddressSpace interface {
	// Extents enumerates the readable regions of the image.
	Extents() []PageExtent
	// ReadU32 reads a 32-bit value at off. Failures are *ReadError.
	ReadU32(off uint64) (uint32, error)
	// ReadU64 reads a 64-bit value at off. Failures are *ReadError.
	ReadU64(off uint64) (uint64, error)
}

// -----------------------------------------------------------------------------
// Scan results
// -----------------------------------------------------------------------------

// Run is a maximal contiguous readable region produced by coalescing extents.
// No two runs returned together are adjacent.
type Run struct {
	Offset uint64
	Length uint64
}

// End returns the first offset past the run.
func (r Run) End() uint64 { return r.Offset + r.Length }

func (r Run) String() string {
	return fmt.Sprintf("[%#x-%#x)", r.Offset, r.End())
}

// AnchorMatch is a candidate offset whose self pointer and embedded PRCB
// pointer both validated.
type AnchorMatch struct {
	Offset  uint64 // virtual address of the candidate KPCR
	SelfRef uint64 // value read from the self pointer field (equals Offset)
	Prcb    uint64 // value read from the PRCB pointer field
}
