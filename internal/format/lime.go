package format

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/kpcrkit/internal/buf"
)

// LiMERange describes one range record in a LiME image: a header followed
// immediately by Size bytes of memory captured from Start.
type LiMERange struct {
	Start      uint64 // first physical address covered
	Size       uint64 // bytes of memory following the header
	DataOffset uint64 // file offset of the first data byte
}

// IsLiME reports whether b starts with a LiME range header.
func IsLiME(b []byte) bool {
	head, ok := buf.Slice(b, 0, 4)
	return ok && bytes.Equal(head, LiMESignature)
}

// ParseLiMEHeader decodes the range header at off within b.
func ParseLiMEHeader(b []byte, off uint64) (LiMERange, error) {
	head, ok := buf.Slice(b, off, LiMEHeaderSize)
	if !ok {
		return LiMERange{}, fmt.Errorf("lime: header at %#x: %w", off, ErrTruncated)
	}
	if !bytes.Equal(head[LiMEMagicOffset:LiMEMagicOffset+4], LiMESignature) {
		return LiMERange{}, fmt.Errorf("lime: header at %#x: %w", off, ErrSignatureMismatch)
	}
	if v := buf.U32LE(head[LiMEVersionOffset:]); v != LiMEVersion {
		return LiMERange{}, fmt.Errorf("lime: header version %d: %w", v, ErrUnsupported)
	}
	start := buf.U64LE(head[LiMEStartOffset:])
	end := buf.U64LE(head[LiMEEndOffset:])
	if end < start {
		return LiMERange{}, fmt.Errorf("lime: range %#x-%#x: %w", start, end, ErrBadRange)
	}
	size, ok := buf.AddOverflowSafe(end-start, 1)
	if !ok {
		return LiMERange{}, fmt.Errorf("lime: range %#x-%#x: %w", start, end, ErrBadRange)
	}
	return LiMERange{Start: start, Size: size, DataOffset: off + LiMEHeaderSize}, nil
}

// NextLiMERange decodes the range at off and returns the offset of the next
// header. The range's data must lie entirely within b.
func NextLiMERange(b []byte, off uint64) (LiMERange, uint64, error) {
	r, err := ParseLiMEHeader(b, off)
	if err != nil {
		return LiMERange{}, 0, err
	}
	if !buf.Has(b, r.DataOffset, r.Size) {
		return LiMERange{}, 0, fmt.Errorf("lime: range data at %#x (%d bytes): %w", r.DataOffset, r.Size, ErrTruncated)
	}
	return r, r.DataOffset + r.Size, nil
}

// LiMERanges decodes every range record in b.
func LiMERanges(b []byte) ([]LiMERange, error) {
	var out []LiMERange
	for off := uint64(0); off < uint64(len(b)); {
		r, next, err := NextLiMERange(b, off)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
		off = next
	}
	return out, nil
}

// AppendLiMEHeader appends a range header for [start, start+size) to dst.
func AppendLiMEHeader(dst []byte, start, size uint64) []byte {
	var head [LiMEHeaderSize]byte
	copy(head[LiMEMagicOffset:], LiMESignature)
	buf.PutU32LE(head[LiMEVersionOffset:], LiMEVersion)
	buf.PutU64LE(head[LiMEStartOffset:], start)
	buf.PutU64LE(head[LiMEEndOffset:], start+size-1)
	return append(dst, head[:]...)
}
