package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineIdentityPreserving(t *testing.T) {
	program := newTestProgram(t)
	state := NewState(WithCullMode(CullNone))
	format, err := NewFormat(Attribute{Slot: 0, Element: ElementFloat32x3})
	require.NoError(t, err)

	p, err := NewPipeline(program, &state, format, WithPipelineName("unlit"))
	require.NoError(t, err)

	assert.Same(t, program, p.Program())
	assert.Same(t, &state, p.State())
	assert.Same(t, format, p.Format())
	assert.Equal(t, "unlit", p.Name())
	assert.False(t, p.IsCompute())
}

func TestPipelineSharesShaderAndState(t *testing.T) {
	program := newTestProgram(t)
	state := DefaultState()

	a, err := NewPipeline(program, &state, nil)
	require.NoError(t, err)
	b, err := NewPipeline(program, &state, nil)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID(), b.ID())
	assert.Same(t, a.Program(), b.Program())
	assert.Same(t, a.State(), b.State())
	assert.Nil(t, a.Format())
}

func TestPipelineRequiresProgram(t *testing.T) {
	_, err := NewPipeline(nil, nil, nil)
	assert.ErrorIs(t, err, ErrNilProgram)

	vs, err := NewShader(StageVertex, Source{GLSL: testVertexGLSL})
	require.NoError(t, err)
	_, err = NewPipeline(vs, nil, nil)
	assert.ErrorIs(t, err, ErrNotProgram)
}

func TestPipelineDefaultsState(t *testing.T) {
	p, err := NewPipeline(newTestProgram(t), nil, nil)
	require.NoError(t, err)
	require.NotNil(t, p.State())
	assert.Equal(t, DefaultState(), *p.State())
}

func TestComputePipeline(t *testing.T) {
	cs, err := NewShader(StageCompute, Source{SPIRV: []byte{0x03, 0x02, 0x23, 0x07}})
	require.NoError(t, err)
	p, err := NewPipeline(cs, nil, nil)
	require.NoError(t, err)
	assert.True(t, p.IsCompute())
}
