package renderer

import (
	"math"
	"testing"

	"github.com/spaghettifunk/prism/engine/gpu"
	"github.com/spaghettifunk/prism/engine/resources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestBuildStateDefaults(t *testing.T) {
	s, err := buildState(resources.StateConfig{})
	require.NoError(t, err)
	assert.Equal(t, gpu.DefaultState(), s)
}

func TestBuildStateOverrides(t *testing.T) {
	s, err := buildState(resources.StateConfig{
		Cull:       "none",
		FrontFace:  "CW",
		Fill:       "line",
		Primitive:  "triangle_strip",
		DepthTest:  ptr(true),
		DepthWrite: ptr(false),
		DepthFunc:  "less_equal",
		Scissor:    true,
		ColorWrite: "rgb",
		DepthBias:  &resources.DepthBiasConfig{Factor: 1.5, Units: 2},
		Blend: &resources.BlendConfig{
			Enabled: true,
			Src:     "src_alpha",
			Dest:    "inv_src_alpha",
			OpAlpha: "max",
		},
		Stencil: &resources.StencilConfig{
			Enabled:   true,
			WriteMask: ptr(uint8(0x0F)),
			Func:      "equal",
			Ref:       3,
			Pass:      "replace",
		},
	})
	require.NoError(t, err)

	want := gpu.NewState(
		gpu.WithCullMode(gpu.CullNone),
		gpu.WithFrontFace(gpu.FrontFaceClockwise),
		gpu.WithFillMode(gpu.FillLine),
		gpu.WithPrimitive(gpu.PrimitiveTriangleStrip),
		gpu.WithDepthTest(true, false, gpu.CompareLessEqual),
		gpu.WithScissor(true),
		gpu.WithColorWrite(gpu.WriteRed|gpu.WriteGreen|gpu.WriteBlue),
		gpu.WithDepthBias(1.5, 2),
		gpu.WithBlendSeparate(gpu.BlendFunction{
			SrcColor:  gpu.BlendSrcAlpha,
			DestColor: gpu.BlendInvSrcAlpha,
			OpColor:   gpu.BlendOpAdd,
			SrcAlpha:  gpu.BlendSrcAlpha,
			DestAlpha: gpu.BlendInvSrcAlpha,
			OpAlpha:   gpu.BlendOpMax,
		}),
		gpu.WithStencil(gpu.StencilFace{
			Func:      gpu.CompareEqual,
			Ref:       3,
			ReadMask:  0xFF,
			Fail:      gpu.StencilKeep,
			DepthFail: gpu.StencilKeep,
			Pass:      gpu.StencilReplace,
		}, 0x0F),
	)
	assert.Equal(t, want, s)
	assert.Equal(t, want.Hash(), s.Hash())
}

func TestBuildStateDisabledBlendKeepsDefaults(t *testing.T) {
	s, err := buildState(resources.StateConfig{
		Blend:   &resources.BlendConfig{Src: "not-even-checked"},
		Stencil: &resources.StencilConfig{Func: "never"},
	})
	require.NoError(t, err)
	assert.Equal(t, gpu.DefaultState(), s)
}

func TestBuildStateRejectsUnknownValues(t *testing.T) {
	cases := map[string]resources.StateConfig{
		"cull":        {Cull: "sideways"},
		"depth func":  {DepthFunc: "sometimes"},
		"color write": {ColorWrite: "rgbx"},
		"blend":       {Blend: &resources.BlendConfig{Enabled: true, Op: "mul"}},
		"stencil":     {Stencil: &resources.StencilConfig{Enabled: true, Fail: "explode"}},
		"nan bias":    {DepthBias: &resources.DepthBiasConfig{Factor: float32(math.NaN())}},
		"inf bias":    {DepthBias: &resources.DepthBiasConfig{Units: float32(math.Inf(-1))}},
	}
	for name, sc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := buildState(sc)
			assert.ErrorIs(t, err, ErrInvalidValue)
		})
	}
}

func TestParseColorWrite(t *testing.T) {
	m, err := parseColorWrite("")
	require.NoError(t, err)
	assert.Equal(t, gpu.WriteAll, m)

	m, err = parseColorWrite("none")
	require.NoError(t, err)
	assert.Zero(t, m)

	m, err = parseColorWrite("A")
	require.NoError(t, err)
	assert.Equal(t, gpu.WriteAlpha, m)
}

func TestBuildFormat(t *testing.T) {
	f, err := buildFormat(nil)
	require.NoError(t, err)
	assert.Nil(t, f)

	f, err = buildFormat([]resources.AttributeConfig{
		{Slot: 0, Element: "float32x3"},
		{Slot: 1, Element: "float32x2", Offset: 12},
		{Slot: 2, Channel: 1, Element: "unorm8x4", Frequency: "instance"},
	})
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, 3, f.Len())
	assert.EqualValues(t, 20, f.Stride(0))

	ch, ok := f.Channel(1)
	require.True(t, ok)
	assert.Equal(t, gpu.PerInstance, ch.Frequency)

	_, err = buildFormat([]resources.AttributeConfig{{Element: "float128"}})
	assert.Error(t, err)
	_, err = buildFormat([]resources.AttributeConfig{{Element: "float32", Frequency: "frame"}})
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestStageSlots(t *testing.T) {
	slots := []resources.SlotConfig{
		{Name: "Camera", Kind: "uniform_buffer", Binding: 0},
		{Name: "albedo", Kind: "texture", Binding: 1, Stages: []string{"fragment"}},
	}

	vs, err := stageSlots(slots, gpu.StageVertex)
	require.NoError(t, err)
	assert.Equal(t, []gpu.Slot{{Name: "Camera", Kind: gpu.SlotUniformBuffer, Binding: 0}}, vs)

	fs, err := stageSlots(slots, gpu.StageFragment)
	require.NoError(t, err)
	require.Len(t, fs, 2)
	assert.Equal(t, gpu.SlotTexture, fs[1].Kind)

	_, err = stageSlots([]resources.SlotConfig{{Name: "x", Kind: "buffer-ish"}}, gpu.StageVertex)
	assert.Error(t, err)
	_, err = stageSlots([]resources.SlotConfig{{Name: "x", Kind: "texture", Stages: []string{"tessellation"}}}, gpu.StageVertex)
	assert.Error(t, err)
}
