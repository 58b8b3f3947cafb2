package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatInterleaved(t *testing.T) {
	f, err := NewFormat(
		Attribute{Slot: 2, Channel: 0, Element: ElementUint8x4Norm, Offset: 20},
		Attribute{Slot: 0, Channel: 0, Element: ElementFloat32x3, Offset: 0},
		Attribute{Slot: 1, Channel: 0, Element: ElementFloat32x2, Offset: 12},
		Attribute{Slot: 3, Channel: 1, Element: ElementFloat32x4, Offset: 0, Frequency: PerInstance},
	)
	require.NoError(t, err)

	attrs := f.Attributes()
	require.Len(t, attrs, 4)
	for i, a := range attrs {
		assert.EqualValues(t, i, a.Slot, "attributes are ordered by slot")
	}
	assert.EqualValues(t, 24, f.Stride(0))
	assert.EqualValues(t, 16, f.Stride(1))
	assert.Zero(t, f.Stride(7))

	ch, ok := f.Channel(1)
	require.True(t, ok)
	assert.Equal(t, PerInstance, ch.Frequency)

	a, ok := f.Attribute(1)
	require.True(t, ok)
	assert.Equal(t, ElementFloat32x2, a.Element)
	_, ok = f.Attribute(9)
	assert.False(t, ok)
}

func TestFormatDuplicateSlot(t *testing.T) {
	_, err := NewFormat(
		Attribute{Slot: 0, Channel: 0, Element: ElementFloat32x3},
		Attribute{Slot: 0, Channel: 1, Element: ElementFloat32x2},
	)
	var conflict *FormatConflictError
	require.ErrorAs(t, err, &conflict)
	assert.EqualValues(t, 0, conflict.Slot)
}

func TestFormatConflicts(t *testing.T) {
	tests := []struct {
		name  string
		attrs []Attribute
	}{
		{
			name: "overlapping bytes",
			attrs: []Attribute{
				{Slot: 0, Element: ElementFloat32x3, Offset: 0},
				{Slot: 1, Element: ElementFloat32x2, Offset: 8},
			},
		},
		{
			name: "mixed frequency",
			attrs: []Attribute{
				{Slot: 0, Element: ElementFloat32, Offset: 0},
				{Slot: 1, Element: ElementFloat32, Offset: 4, Frequency: PerInstance},
			},
		},
		{
			name: "stride disagreement",
			attrs: []Attribute{
				{Slot: 0, Element: ElementFloat32, Offset: 0, Stride: 16},
				{Slot: 1, Element: ElementFloat32, Offset: 4, Stride: 32},
			},
		},
		{
			name: "offset wraps past 32 bits",
			attrs: []Attribute{
				{Slot: 0, Element: ElementFloat32x2, Offset: 0},
				{Slot: 1, Element: ElementFloat32x4, Offset: 0xFFFFFFFC},
			},
		},
		{
			name: "explicit stride hides wrapped end",
			attrs: []Attribute{
				{Slot: 0, Element: ElementFloat32x2, Offset: 0xFFFFFFFC, Stride: 16},
			},
		},
		{
			name: "stride too small",
			attrs: []Attribute{
				{Slot: 0, Element: ElementFloat32x4, Offset: 0, Stride: 8},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFormat(tt.attrs...)
			var conflict *FormatConflictError
			assert.ErrorAs(t, err, &conflict)
		})
	}
}

func TestFormatExplicitStride(t *testing.T) {
	f, err := NewFormat(Attribute{Slot: 0, Element: ElementFloat32x3, Stride: 32})
	require.NoError(t, err)
	assert.EqualValues(t, 32, f.Stride(0))
}

func TestParseElementType(t *testing.T) {
	e, err := ParseElementType("Float32x3")
	require.NoError(t, err)
	assert.Equal(t, ElementFloat32x3, e)
	assert.EqualValues(t, 12, e.Size())
	assert.EqualValues(t, 3, e.Components())
	_, err = ParseElementType("float64")
	assert.Error(t, err)
}
