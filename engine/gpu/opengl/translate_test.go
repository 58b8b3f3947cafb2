package opengl

import (
	"testing"

	"github.com/spaghettifunk/prism/engine/gpu"
	"github.com/stretchr/testify/assert"
)

func TestEnumTranslation(t *testing.T) {
	assert.Equal(t, NEVER, compareFunc(gpu.CompareNever))
	assert.Equal(t, LEQUAL, compareFunc(gpu.CompareLessEqual))
	assert.Equal(t, ALWAYS, compareFunc(gpu.CompareAlways))

	assert.Equal(t, INCR, stencilOp(gpu.StencilIncrSat))
	assert.Equal(t, INCR_WRAP, stencilOp(gpu.StencilIncr))
	assert.Equal(t, INVERT, stencilOp(gpu.StencilInvert))

	assert.Equal(t, SRC_ALPHA_SATURATE, blendFactor(gpu.BlendSrcAlphaSat))
	assert.Equal(t, ONE_MINUS_CONSTANT_ALPHA, blendFactor(gpu.BlendInvFactorAlpha))
	assert.Equal(t, FUNC_REVERSE_SUBTRACT, blendEquation(gpu.BlendOpRevSubtract))

	assert.Equal(t, TRIANGLE_STRIP, primitiveMode(gpu.PrimitiveTriangleStrip))
	assert.Equal(t, FRONT_AND_BACK, cullFace(gpu.CullFrontAndBack))
	assert.Equal(t, LINE, polygonMode(gpu.FillLine))

	kind, ok := shaderKind(gpu.StageGeometry)
	assert.True(t, ok)
	assert.Equal(t, GEOMETRY_SHADER, kind)
	_, ok = shaderKind(gpu.StageProgram)
	assert.False(t, ok)
}

func TestStateCommandsFollowSignature(t *testing.T) {
	s := gpu.NewState(
		gpu.WithCullMode(gpu.CullNone),
		gpu.WithStencil(gpu.StencilFace{Func: gpu.CompareEqual, Ref: 1, ReadMask: 0xFF, Pass: gpu.StencilReplace}, 0x0F),
	)
	ctx := newFakeContext()
	for _, cmd := range stateCommands(s, s.Signature()&stateFields) {
		cmd(ctx)
	}
	assert.Equal(t, []string{
		"Disable(0x0B44)",
		"Enable(0x0B90)",
		"StencilFuncSeparate(0x0404,0x0202,1,0xFF)",
		"StencilOpSeparate(0x0404,0x1E00,0x1E00,0x1E01)",
		"StencilFuncSeparate(0x0405,0x0202,1,0xFF)",
		"StencilOpSeparate(0x0405,0x1E00,0x1E00,0x1E01)",
		"StencilMask(0xF)",
	}, ctx.calls)
}

func TestDepthBiasFollowsFillMode(t *testing.T) {
	cases := map[gpu.FillMode]Enum{
		gpu.FillFace:  POLYGON_OFFSET_FILL,
		gpu.FillLine:  POLYGON_OFFSET_LINE,
		gpu.FillPoint: POLYGON_OFFSET_POINT,
	}
	for fill, want := range cases {
		s := gpu.NewState(gpu.WithFillMode(fill), gpu.WithDepthBias(1, 2))
		ctx := newFakeContext()
		for _, cmd := range stateCommands(s, gpu.FieldDepthBias) {
			cmd(ctx)
		}
		for _, c := range []Enum{POLYGON_OFFSET_FILL, POLYGON_OFFSET_LINE, POLYGON_OFFSET_POINT} {
			assert.Equal(t, c == want, ctx.enabled[c], "fill mode %d cap 0x%04X", fill, uint32(c))
		}
		assert.Contains(t, ctx.calls, "PolygonOffset(1,2)")
	}

	ctx := newFakeContext()
	for _, cmd := range stateCommands(gpu.DefaultState(), gpu.FieldDepthBias) {
		cmd(ctx)
	}
	assert.False(t, ctx.enabled[POLYGON_OFFSET_LINE])
	assert.NotContains(t, ctx.calls, "PolygonOffset(1,2)")
}

func TestVertexLayoutNilFormat(t *testing.T) {
	assert.Nil(t, vertexLayout(nil))
}
