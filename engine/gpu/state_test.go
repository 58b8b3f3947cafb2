package gpu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateEquality(t *testing.T) {
	a := NewState(WithCullMode(CullNone), WithBlend(BlendSrcAlpha, BlendInvSrcAlpha, BlendOpAdd))
	b := NewState(WithCullMode(CullNone), WithBlend(BlendSrcAlpha, BlendInvSrcAlpha, BlendOpAdd))

	assert.True(t, a == b)
	assert.Equal(t, a.Hash(), b.Hash())

	c := b
	c.Depth.Write = false
	assert.False(t, a == c, "depth write differs")
	assert.NotEqual(t, a.Hash(), c.Hash())
}

func TestStateDeduplicatesAsMapKey(t *testing.T) {
	seen := map[State]int{}
	seen[NewState()]++
	seen[DefaultState()]++
	seen[NewState(WithScissor(true))]++
	assert.Len(t, seen, 2)
	assert.Equal(t, 2, seen[DefaultState()])
}

func TestStateSignature(t *testing.T) {
	assert.Zero(t, DefaultState().Signature())

	s := NewState(
		WithDepthTest(true, false, CompareLessEqual),
		WithStencil(StencilFace{Func: CompareEqual, Ref: 1, ReadMask: 0xFF}, 0x0F),
		WithColorWrite(WriteRed|WriteAlpha),
	)
	sig := s.Signature()
	assert.True(t, sig.Has(FieldDepth))
	assert.True(t, sig.Has(FieldStencil))
	assert.True(t, sig.Has(FieldColorWrite))
	assert.False(t, sig.Has(FieldBlend))
	assert.False(t, sig.Has(FieldCull))
}

func TestWithBlendSeparateEnables(t *testing.T) {
	s := NewState(WithBlendSeparate(BlendFunction{
		SrcColor:  BlendOne,
		DestColor: BlendOne,
		OpColor:   BlendOpAdd,
		SrcAlpha:  BlendZero,
		DestAlpha: BlendOne,
		OpAlpha:   BlendOpMax,
	}))
	assert.True(t, s.Blend.Enabled)
	assert.Equal(t, BlendOpMax, s.Blend.OpAlpha)
}

func TestSignedZeroDepthBiasHashesAlike(t *testing.T) {
	negZero := float32(math.Copysign(0, -1))
	a := NewState(WithDepthBias(0, 0))
	b := NewState(WithDepthBias(negZero, negZero))

	assert.True(t, a == b)
	assert.Equal(t, a.Hash(), b.Hash())
	assert.Equal(t, NewState(WithDepthBias(1.5, 0)).Hash(), NewState(WithDepthBias(1.5, negZero)).Hash())
}

func TestWithDepthBiasIgnoresNonFinite(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	for _, s := range []State{
		NewState(WithDepthBias(nan, 1)),
		NewState(WithDepthBias(1, inf)),
		NewState(WithDepthBias(float32(math.Inf(-1)), 0)),
	} {
		assert.True(t, s == DefaultState())
		assert.False(t, s.Signature().Has(FieldDepthBias))
	}
	assert.True(t, IsFinite(2))
	assert.False(t, IsFinite(nan))
}
