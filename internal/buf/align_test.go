package buf

import (
	"math"
	"testing"
)

func TestAlignUp(t *testing.T) {
	tests := []struct {
		n, a, want uint64
		ok         bool
	}{
		{0x80000000, 4, 0x80000000, true},
		{0x80000001, 4, 0x80000004, true},
		{0x80000003, 4, 0x80000004, true},
		{0x1001, 0x1000, 0x2000, true},
		{10, 3, 12, true},
		{5, 0, 0, false},
		{math.MaxUint64 - 1, 4, 0, false},
	}
	for _, tt := range tests {
		got, ok := AlignUp(tt.n, tt.a)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Fatalf("AlignUp(%#x, %d) = %#x,%v want %#x,%v", tt.n, tt.a, got, ok, tt.want, tt.ok)
		}
	}
}
