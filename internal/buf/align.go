package buf

// AlignUp returns n rounded up to the next multiple of a. ok is false when a
// is zero or the result would wrap past math.MaxUint64.
//
// Example:
//
//	AlignUp(0x80000001, 4) = 0x80000004
//	AlignUp(0x80000004, 4) = 0x80000004
func AlignUp(n, a uint64) (uint64, bool) {
	if a == 0 {
		return 0, false
	}
	rem := n % a
	if rem == 0 {
		return n, true
	}
	return AddOverflowSafe(n, a-rem)
}
