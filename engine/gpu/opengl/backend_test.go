package opengl

import (
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/spaghettifunk/prism/engine/gpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vertexGLSL = `#version 410 core
layout (std140) uniform Camera { mat4 viewProj; };
layout (location = 0) in vec3 aPos;
void main() { gl_Position = viewProj * vec4(aPos, 1.0); }
`

const fragmentGLSL = `#version 410 core
uniform sampler2D albedo;
out vec4 FragColor;
void main() { FragColor = texture(albedo, vec2(0.0)); }
`

func newProgram(t *testing.T, fragment string) *gpu.Shader {
	t.Helper()
	vs, err := gpu.NewShader(gpu.StageVertex, gpu.Source{GLSL: vertexGLSL},
		gpu.WithSlots(gpu.Slot{Name: "Camera", Kind: gpu.SlotUniformBuffer, Binding: 2}))
	require.NoError(t, err)
	fs, err := gpu.NewShader(gpu.StageFragment, gpu.Source{GLSL: fragment},
		gpu.WithSlots(gpu.Slot{Name: "albedo", Kind: gpu.SlotTexture, Binding: 3}))
	require.NoError(t, err)
	program, err := gpu.NewProgram("unlit", vs, fs)
	require.NoError(t, err)
	return program
}

func newPipeline(t *testing.T, program *gpu.Shader, state *gpu.State, format *gpu.Format) *gpu.Pipeline {
	t.Helper()
	p, err := gpu.NewPipeline(program, state, format)
	require.NoError(t, err)
	return p
}

func TestResolveIsCached(t *testing.T) {
	ctx := newFakeContext()
	b := New(ctx)
	p := newPipeline(t, newProgram(t, fragmentGLSL), nil, nil)

	h1, err := b.Resolve(p)
	require.NoError(t, err)
	h2, err := b.Resolve(p)
	require.NoError(t, err)

	assert.Same(t, h1, h2)
	assert.Equal(t, BackendName, h1.Backend())
	assert.Equal(t, 1, ctx.programLinks)
	assert.Equal(t, 2, ctx.shaderCompiles)

	st := b.Stats()
	assert.EqualValues(t, 2, st.Resolves)
	assert.EqualValues(t, 1, st.Hits)
	assert.EqualValues(t, 1, st.Compilations)
	assert.Equal(t, 1, st.Entries)
	assert.Equal(t, 1, b.Len())
}

func TestEvictDeletesProgramNow(t *testing.T) {
	ctx := newFakeContext()
	b := New(ctx)
	p := newPipeline(t, newProgram(t, fragmentGLSL), nil, nil)

	_, err := b.Resolve(p)
	require.NoError(t, err)
	require.NoError(t, b.Bind(p))

	assert.True(t, b.Evict(p))
	assert.False(t, b.Evict(p))
	assert.Equal(t, 1, ctx.deletedProgs)
	assert.Equal(t, 1, ctx.deletedVAOs)
	assert.Zero(t, b.Len())

	_, err = b.Resolve(p)
	require.NoError(t, err)
	assert.Equal(t, 2, ctx.programLinks)
	assert.Equal(t, 2, ctx.shaderCompiles, "shader objects survive the eviction")
}

func TestInvalidateRebuildsOnce(t *testing.T) {
	ctx := newFakeContext()
	b := New(ctx)
	p := newPipeline(t, newProgram(t, fragmentGLSL), nil, nil)

	h1, err := b.Resolve(p)
	require.NoError(t, err)
	b.Invalidate()
	assert.Zero(t, b.Len())

	h2, err := b.Resolve(p)
	require.NoError(t, err)
	h3, err := b.Resolve(p)
	require.NoError(t, err)

	assert.NotSame(t, h1, h2)
	assert.Same(t, h2, h3)
	assert.Greater(t, h2.Generation(), h1.Generation())
	assert.EqualValues(t, 2, b.Stats().Compilations)
	assert.Equal(t, 2, ctx.programLinks)
	assert.Zero(t, ctx.deletedProgs, "objects of the lost context are never deleted")
}

func TestResetSwitchesContext(t *testing.T) {
	b := New(newFakeContext())
	p := newPipeline(t, newProgram(t, fragmentGLSL), nil, nil)
	_, err := b.Resolve(p)
	require.NoError(t, err)

	fresh := newFakeContext()
	b.Reset(fresh)
	_, err = b.Resolve(p)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.programLinks)
}

func TestShaderObjectsAreShared(t *testing.T) {
	ctx := newFakeContext()
	b := New(ctx)
	program := newProgram(t, fragmentGLSL)
	blended := gpu.NewState(gpu.WithBlend(gpu.BlendSrcAlpha, gpu.BlendInvSrcAlpha, gpu.BlendOpAdd))

	_, err := b.Resolve(newPipeline(t, program, nil, nil))
	require.NoError(t, err)
	_, err = b.Resolve(newPipeline(t, program, &blended, nil))
	require.NoError(t, err)

	assert.Equal(t, 2, ctx.programLinks)
	assert.Equal(t, 2, ctx.shaderCompiles)
	assert.Equal(t, 2, b.ShaderObjects())
	runtime.KeepAlive(program)
}

func TestSlotsAreBound(t *testing.T) {
	ctx := newFakeContext()
	b := New(ctx)
	h, err := b.Resolve(newPipeline(t, newProgram(t, fragmentGLSL), nil, nil))
	require.NoError(t, err)

	prog := h.(*PipelineObject).Program()
	assert.Equal(t, uint32(2), ctx.blockBindings[fmt.Sprintf("%d/%d", prog, len("Camera"))])
	assert.Equal(t, int32(3), ctx.samplerUnits["albedo"])
}

func TestCompileFailure(t *testing.T) {
	ctx := newFakeContext()
	b := New(ctx)
	p := newPipeline(t, newProgram(t, "#error broken\n"), nil, nil)

	_, err := b.Resolve(p)
	var cerr *gpu.BackendCompilationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, gpu.StageFragment, cerr.Stage)
	assert.Equal(t, p.Name(), cerr.Pipeline)
	assert.Contains(t, cerr.Log, "#error")

	compiles := ctx.shaderCompiles
	_, err2 := b.Resolve(p)
	assert.Equal(t, err, err2, "failure is remembered")
	assert.Equal(t, compiles, ctx.shaderCompiles)
	assert.EqualValues(t, 1, b.Stats().Failures)

	b.Invalidate()
	_, err = b.Resolve(p)
	require.Error(t, err)
	assert.Greater(t, ctx.shaderCompiles, compiles, "invalidation forgets failures")
}

func TestCompileFailureRetry(t *testing.T) {
	ctx := newFakeContext()
	b := New(ctx, WithFailurePolicy(gpu.FailureRetry))
	p := newPipeline(t, newProgram(t, "void main() {} // link_error\n"), nil, nil)

	_, err := b.Resolve(p)
	var cerr *gpu.BackendCompilationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, gpu.StageProgram, cerr.Stage)
	_, err = b.Resolve(p)
	require.Error(t, err)
	assert.Equal(t, 2, ctx.programLinks)
	assert.Equal(t, 2, ctx.deletedProgs)
	assert.Zero(t, b.Len())
}

func TestCollectAfterPipelineIsUnreachable(t *testing.T) {
	ctx := newFakeContext()
	b := New(ctx)
	program := newProgram(t, fragmentGLSL)

	func() {
		_, err := b.Resolve(newPipeline(t, program, nil, nil))
		require.NoError(t, err)
	}()
	require.Equal(t, 1, b.Len())

	require.Eventually(t, func() bool {
		runtime.GC()
		return b.Len() == 0
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, b.Collect())
	assert.Equal(t, 1, ctx.deletedProgs)
	assert.Equal(t, 1, ctx.deletedVAOs)
	assert.EqualValues(t, 1, b.Stats().Evictions)
	runtime.KeepAlive(program)
}

func TestComputeNeedsGL43(t *testing.T) {
	cs, err := gpu.NewShader(gpu.StageCompute, gpu.Source{GLSL: "#version 430\nlayout(local_size_x = 64) in;\nvoid main() {}\n"})
	require.NoError(t, err)
	p := newPipeline(t, cs, nil, nil)

	_, err = New(newFakeContext()).Resolve(p)
	assert.ErrorIs(t, err, gpu.ErrUnsupportedStage)

	ctx := newFakeContext()
	ctx.minor = 3
	b := New(ctx)
	h, err := b.Resolve(p)
	require.NoError(t, err)
	assert.Zero(t, h.(*PipelineObject).VertexArray())
	require.NoError(t, b.Bind(p))
}

func TestBindAppliesStateDifferences(t *testing.T) {
	ctx := newFakeContext()
	b := New(ctx)
	program := newProgram(t, fragmentGLSL)
	plain := newPipeline(t, program, nil, nil)
	blended := gpu.NewState(
		gpu.WithBlend(gpu.BlendSrcAlpha, gpu.BlendInvSrcAlpha, gpu.BlendOpAdd),
		gpu.WithDepthTest(true, false, gpu.CompareLessEqual),
	)
	transparent := newPipeline(t, program, &blended, nil)

	require.NoError(t, b.Bind(plain))
	assert.True(t, ctx.enabled[DEPTH_TEST])
	assert.True(t, ctx.enabled[CULL_FACE])
	assert.False(t, ctx.enabled[BLEND])

	ctx.resetCalls()
	require.NoError(t, b.Bind(transparent))
	assert.True(t, ctx.enabled[BLEND])
	assert.Contains(t, ctx.calls, "BlendFuncSeparate(0x0302,0x0303,0x0302,0x0303)")
	assert.Contains(t, ctx.calls, "DepthMask(false)")
	assert.Contains(t, ctx.calls, "DepthFunc(0x0203)")
	assert.NotContains(t, ctx.calls, "CullFace(0x0405)", "unchanged fields are not reapplied")

	ctx.resetCalls()
	require.NoError(t, b.Bind(plain))
	assert.False(t, ctx.enabled[BLEND])
	assert.Contains(t, ctx.calls, "DepthMask(true)")
	assert.Contains(t, ctx.calls, "DepthFunc(0x0201)")

	ctx.resetCalls()
	require.NoError(t, b.Bind(plain))
	for _, c := range ctx.calls {
		assert.NotContains(t, c, "UseProgram", "program already bound")
		assert.NotContains(t, c, "Enable")
	}
}

func TestBindVertexLayout(t *testing.T) {
	ctx := newFakeContext()
	b := New(ctx)
	format, err := gpu.NewFormat(
		gpu.Attribute{Slot: 0, Channel: 0, Element: gpu.ElementFloat32x3, Offset: 0},
		gpu.Attribute{Slot: 1, Channel: 0, Element: gpu.ElementUint8x4Norm, Offset: 12},
		gpu.Attribute{Slot: 2, Channel: 1, Element: gpu.ElementUint32, Frequency: gpu.PerInstance},
	)
	require.NoError(t, err)
	p := newPipeline(t, newProgram(t, fragmentGLSL), nil, format)

	assert.ErrorIs(t, b.Bind(p, Buffer(10)), ErrMissingVertexBuffer)

	require.NoError(t, b.Bind(p, Buffer(10), Buffer(11)))
	assert.Equal(t, "f size=3 type=0x1406 norm=false stride=16 offset=0", ctx.attribs[0])
	assert.Equal(t, "f size=4 type=0x1401 norm=true stride=16 offset=12", ctx.attribs[1])
	assert.Equal(t, "i size=1 type=0x1405 stride=4 offset=0 divisor=1", ctx.attribs[2])
	assert.Contains(t, ctx.calls, "BindBuffer(11)")
}

func TestReleaseDestroysEverything(t *testing.T) {
	ctx := newFakeContext()
	b := New(ctx)
	p := newPipeline(t, newProgram(t, fragmentGLSL), nil, nil)
	_, err := b.Resolve(p)
	require.NoError(t, err)

	require.NoError(t, b.Release())
	assert.Equal(t, 1, ctx.deletedProgs)
	assert.Equal(t, 2, ctx.deletedShaders)
	assert.Zero(t, b.Len())

	_, err = b.Resolve(p)
	assert.ErrorIs(t, err, gpu.ErrBackendReleased)
	assert.ErrorIs(t, b.Release(), gpu.ErrBackendReleased)
}
