package kpcr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joshuapare/kpcrkit/pkg/types"
)

func TestDefaultLayoutValid(t *testing.T) {
	assert.NoError(t, DefaultLayout.Validate())
	assert.Equal(t, uint64(0x80000000), DefaultLayout.KernelBase)
	assert.Equal(t, uint64(0x1f94), DefaultLayout.StructSize)
}

func TestLayoutValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Layout)
	}{
		{"zero alignment", func(l *Layout) { l.Alignment = 0 }},
		{"odd pointer width", func(l *Layout) { l.PointerWidth = 2 }},
		{"zero size", func(l *Layout) { l.StructSize = 0 }},
		{"self pointer past end", func(l *Layout) { l.SelfPtrOffset = l.StructSize - 2 }},
		{"prcb pointer past end", func(l *Layout) { l.PrcbPtrOffset = l.StructSize }},
		{"embed past end", func(l *Layout) { l.PrcbEmbedOffset = l.StructSize }},
		{"pointer offset wraps", func(l *Layout) { l.SelfPtrOffset = ^uint64(0) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := DefaultLayout
			tt.mutate(&l)
			assert.ErrorIs(t, l.Validate(), types.ErrBadLayout)
		})
	}
}

func TestCandidateCount(t *testing.T) {
	l := DefaultLayout
	tests := []struct {
		name string
		run  types.Run
		want uint64
	}{
		{"empty run", types.Run{Offset: 0x80000000}, 0},
		{"one stride short", types.Run{Offset: 0x80000000, Length: l.StructSize - 4}, 0},
		{"one byte short", types.Run{Offset: 0x80000000, Length: l.StructSize - 1}, 0},
		{"exact fit", types.Run{Offset: 0x80000000, Length: l.StructSize}, 1},
		{"partial stride", types.Run{Offset: 0x80000000, Length: l.StructSize + 3}, 1},
		{"two strides", types.Run{Offset: 0x80000000, Length: l.StructSize + 4}, 2},
		{"page", types.Run{Offset: 0x80000000, Length: 0x4000}, (0x4000-0x1f94)/4 + 1},
		{"unaligned start loses a stride", types.Run{Offset: 0x80000002, Length: l.StructSize + 4}, 1},
		{"unaligned start, no room", types.Run{Offset: 0x80000001, Length: l.StructSize}, 0},
		{"start wraps when aligned", types.Run{Offset: ^uint64(0) - 1, Length: 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.CandidateCount(tt.run))
		})
	}
}

func TestFirstCandidateAligned(t *testing.T) {
	l := DefaultLayout
	got, ok := l.FirstCandidate(types.Run{Offset: 0x80000001, Length: 0x10})
	assert.True(t, ok)
	assert.Equal(t, uint64(0x80000004), got)
	assert.Zero(t, got%l.Alignment)

	_, ok = l.FirstCandidate(types.Run{Offset: 0x80000001, Length: 2})
	assert.False(t, ok)
}

func TestIsKernel(t *testing.T) {
	assert.True(t, DefaultLayout.IsKernel(0x80000000))
	assert.True(t, DefaultLayout.IsKernel(0xffdff000))
	assert.False(t, DefaultLayout.IsKernel(0x7ffff000))
}
