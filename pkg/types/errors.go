package types

import "fmt"

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindRead     ErrKind = iota // offset unmapped or outside the image
	ErrKindOrdering                // provider extents not ascending/non-overlapping
	ErrKindFormat                  // malformed image headers
	ErrKindConfig                  // invalid structure layout or options
)

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Sentinels commonly returned by implementations.
var (
	// ErrUnmapped indicates a read touched a hole in the image.
	ErrUnmapped = &Error{Kind: ErrKindRead, Msg: "offset not mapped"}
	// ErrOutOfRange indicates a read ran past the end of the address space.
	ErrOutOfRange = &Error{Kind: ErrKindRead, Msg: "offset out of range"}
	// ErrUnorderedExtents indicates extents arrived out of order or overlapping.
	ErrUnorderedExtents = &Error{Kind: ErrKindOrdering, Msg: "extents not in ascending order"}
	// ErrBadImage indicates the image container could not be decoded.
	ErrBadImage = &Error{Kind: ErrKindFormat, Msg: "malformed memory image"}
	// ErrBadLayout indicates a structure layout that cannot be scanned.
	ErrBadLayout = &Error{Kind: ErrKindConfig, Msg: "invalid structure layout"}
)

// ReadError reports a failed fixed-width read at a specific offset.
type ReadError struct {
	Offset uint64
	Width  int
	Err    error // ErrUnmapped or ErrOutOfRange
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %d bytes at %#x: %v", e.Width, e.Offset, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// OrderingError reports the first extent that breaks ascending order. An
// extent whose end does not fit in 64 bits cannot be ordered at all and is
// reported with Wraps set.
type OrderingError struct {
	Index int        // position of the offending extent
	Prev  PageExtent // extent (or open run) it collided with
	Next  PageExtent
	Wraps bool
}

func (e *OrderingError) Error() string {
	if e.Wraps {
		return fmt.Sprintf("extent %d at %#x (%#x bytes) wraps address space", e.Index, e.Next.Offset, e.Next.Size)
	}
	return fmt.Sprintf("extent %d at %#x starts before %#x", e.Index, e.Next.Offset, e.Prev.End())
}

func (e *OrderingError) Unwrap() error { return ErrUnorderedExtents }
