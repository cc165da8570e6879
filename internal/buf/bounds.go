package buf

import "math"

// AddOverflowSafe adds a and b, returning ok = false when the sum wraps past
// math.MaxUint64. Address-space offsets near the top of a 64-bit space make
// this a real concern for candidate + field arithmetic.
func AddOverflowSafe(a, b uint64) (uint64, bool) {
	if a > math.MaxUint64-b {
		return 0, false
	}
	return a + b, true
}

// Slice returns b[off:off+n] if that window fits within len(b).
func Slice(b []byte, off, n uint64) ([]byte, bool) {
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > uint64(len(b)) {
		return nil, false
	}
	return b[off:end], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off, n uint64) bool {
	_, ok := Slice(b, off, n)
	return ok
}
