package opengl

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/gpu"
)

const BackendName = "opengl"

var _ gpu.Backend = (*Backend)(nil)

var ErrMissingVertexBuffer = errors.New("no vertex buffer bound for channel")

/**
 * @brief The OpenGL realization of a Pipeline: a linked program, an empty vertex
 * array object, the attribute pointers of its format and its precompiled state.
 */
type PipelineObject struct {
	program    Program
	vao        VertexArray
	primitive  Enum
	inputs     []vertexInput
	signature  gpu.StateField
	commands   []stateCommand
	compute    bool
	generation uint64
}

func (o *PipelineObject) Backend() string          { return BackendName }
func (o *PipelineObject) Generation() uint64       { return o.generation }
func (o *PipelineObject) Program() Program         { return o.program }
func (o *PipelineObject) VertexArray() VertexArray { return o.vao }

// Primitive is the draw mode to pass to glDrawArrays/glDrawElements.
func (o *PipelineObject) Primitive() Enum { return o.primitive }

type Option func(*Backend)

func WithFailurePolicy(policy gpu.FailurePolicy) Option {
	return func(b *Backend) {
		b.policy = policy
	}
}

/**
 * @brief Realizes pipelines as OpenGL programs. Must be used from the goroutine
 * that owns the GL context.
 */
type Backend struct {
	ctx    Context
	policy gpu.FailurePolicy

	pipelines *gpu.ObjectCache[gpu.Pipeline, gpu.PipelineID, *PipelineObject]
	shaders   *gpu.ObjectCache[gpu.Shader, gpu.ShaderID, Shader]
	metrics   *core.Metrics

	resolves     atomic.Uint64
	compilations atomic.Uint64
	failures     atomic.Uint64

	applied  gpu.StateField
	bound    *PipelineObject
	released bool
}

func New(ctx Context, opts ...Option) *Backend {
	b := &Backend{
		ctx:     ctx,
		metrics: core.NewMetrics(),
		applied: stateFields,
	}
	b.pipelines = gpu.NewObjectCache[gpu.Pipeline, gpu.PipelineID](b.destroyPipeline)
	b.shaders = gpu.NewObjectCache[gpu.Shader, gpu.ShaderID](b.destroyShader)
	for _, opt := range opts {
		opt(b)
	}
	major, minor := ctx.Version()
	core.LogInfo("OpenGL backend created (context %d.%d)", major, minor)
	return b
}

func (b *Backend) Name() string {
	return BackendName
}

func (b *Backend) Resolve(p *gpu.Pipeline) (gpu.NativeHandle, error) {
	obj, err := b.resolve(p)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (b *Backend) resolve(p *gpu.Pipeline) (*PipelineObject, error) {
	if b.released {
		return nil, gpu.ErrBackendReleased
	}
	b.resolves.Add(1)
	if obj, ok, err := b.pipelines.Lookup(p.ID()); ok {
		return obj, err
	}

	generation := b.pipelines.Generation()
	start := time.Now()
	obj, err := b.build(p, generation)
	if err != nil {
		b.failures.Add(1)
		core.LogError("failed to realize pipeline `%s`: %s", p.Name(), err)
		if b.policy == gpu.FailureCache {
			b.pipelines.StoreFailure(p, p.ID(), err, generation)
		}
		return nil, err
	}
	b.compilations.Add(1)
	b.metrics.Record(time.Since(start))
	b.pipelines.Store(p, p.ID(), obj, generation)
	core.LogDebug("realized pipeline `%s` as program %d", p.Name(), obj.program)
	return obj, nil
}

func (b *Backend) build(p *gpu.Pipeline, generation uint64) (*PipelineObject, error) {
	if p.IsCompute() && !b.supportsCompute() {
		return nil, &gpu.BackendCompilationError{
			Backend:  BackendName,
			Pipeline: p.Name(),
			Stage:    gpu.StageCompute,
			Err:      fmt.Errorf("%w: compute requires OpenGL 4.3", gpu.ErrUnsupportedStage),
		}
	}

	stages := p.Program().ProgramStages()
	objects := make([]Shader, 0, len(stages))
	for _, st := range stages {
		so, err := b.shaderObject(st)
		if err != nil {
			return nil, withPipeline(err, p)
		}
		objects = append(objects, so)
	}

	program, err := linkProgram(b.ctx, objects)
	if err != nil {
		return nil, withPipeline(err, p)
	}
	bindSlots(b.ctx, program, p.Program().Slots())
	b.bound = nil

	obj := &PipelineObject{
		program:    program,
		compute:    p.IsCompute(),
		generation: generation,
	}
	if !obj.compute {
		state := *p.State()
		obj.vao = b.ctx.CreateVertexArray()
		obj.primitive = primitiveMode(state.Primitive)
		obj.inputs = vertexLayout(p.Format())
		obj.signature = state.Signature() & stateFields
		obj.commands = stateCommands(state, obj.signature)
	}
	return obj, nil
}

// shaderObject returns the compiled object of one stage, shared by all pipelines using it.
func (b *Backend) shaderObject(s *gpu.Shader) (Shader, error) {
	if so, ok, _ := b.shaders.Lookup(s.ID()); ok {
		return so, nil
	}
	generation := b.shaders.Generation()
	so, err := compileShader(b.ctx, s)
	if err != nil {
		return 0, err
	}
	b.shaders.Store(s, s.ID(), so, generation)
	return so, nil
}

func withPipeline(err error, p *gpu.Pipeline) error {
	var cerr *gpu.BackendCompilationError
	if errors.As(err, &cerr) {
		cerr.Pipeline = p.Name()
	}
	return err
}

func (b *Backend) supportsCompute() bool {
	major, minor := b.ctx.Version()
	return major > 4 || (major == 4 && minor >= 3)
}

/**
 * @brief Binds the program, vertex array and state of p. Buffers are indexed by
 * format channel.
 */
func (b *Backend) Bind(p *gpu.Pipeline, buffers ...Buffer) error {
	obj, err := b.resolve(p)
	if err != nil {
		return err
	}
	if b.bound != obj {
		b.ctx.UseProgram(obj.program)
	}
	b.bound = obj
	if obj.compute {
		return nil
	}

	b.ctx.BindVertexArray(obj.vao)
	b.applyState(obj)
	for _, in := range obj.inputs {
		if int(in.channel) >= len(buffers) {
			return fmt.Errorf("%w %d (pipeline `%s`)", ErrMissingVertexBuffer, in.channel, p.Name())
		}
		b.ctx.BindBuffer(ARRAY_BUFFER, buffers[in.channel])
		if in.integer {
			b.ctx.VertexAttribIPointer(in.index, in.size, in.typ, in.stride, in.offset)
		} else {
			b.ctx.VertexAttribPointer(in.index, in.size, in.typ, in.normalized, in.stride, in.offset)
		}
		b.ctx.EnableVertexAttribArray(in.index)
		b.ctx.VertexAttribDivisor(in.index, in.divisor)
	}
	return nil
}

// applyState restores the fields the last pipeline changed and sets the ones obj changes.
func (b *Backend) applyState(obj *PipelineObject) {
	if reset := b.applied &^ obj.signature; reset != 0 {
		for _, cmd := range stateCommands(gpu.DefaultState(), reset) {
			cmd(b.ctx)
		}
	}
	for _, cmd := range obj.commands {
		cmd(b.ctx)
	}
	b.applied = obj.signature
}

// Invalidate forgets every realization after the context was lost.
func (b *Backend) Invalidate() {
	b.pipelines.Invalidate()
	b.shaders.Invalidate()
	b.applied = stateFields
	b.bound = nil
	core.LogWarn("OpenGL backend invalidated, generation %d", b.pipelines.Generation())
}

// Reset switches to a recreated context. Everything is rebuilt on the next resolve.
func (b *Backend) Reset(ctx Context) {
	b.ctx = ctx
	b.released = false
	b.Invalidate()
}

func (b *Backend) Collect() int {
	return b.pipelines.Collect() + b.shaders.Collect()
}

// Evict deletes the program and VAO of p. Shader objects stay shared with other pipelines.
func (b *Backend) Evict(p *gpu.Pipeline) bool {
	if b.released {
		return false
	}
	return b.pipelines.Remove(p.ID())
}

func (b *Backend) Len() int {
	return b.pipelines.Len()
}

// ShaderObjects is the number of cached compiled stages.
func (b *Backend) ShaderObjects() int {
	return b.shaders.Len()
}

func (b *Backend) Stats() gpu.Stats {
	return gpu.Stats{
		Resolves:     b.resolves.Load(),
		Hits:         b.pipelines.Hits(),
		Compilations: b.compilations.Load(),
		Failures:     b.failures.Load(),
		Evictions:    b.pipelines.Evictions(),
		Entries:      b.pipelines.Len(),
		Generation:   b.pipelines.Generation(),
		AvgCompile:   b.metrics.Average(),
	}
}

func (b *Backend) Release() error {
	if b.released {
		return gpu.ErrBackendReleased
	}
	n := b.pipelines.Purge() + b.shaders.Purge()
	b.released = true
	b.bound = nil
	core.LogDebug("OpenGL backend released %d objects", n)
	if e := b.ctx.GetError(); e != NO_ERROR {
		return fmt.Errorf("OpenGL error 0x%04X while releasing", uint32(e))
	}
	return nil
}

func (b *Backend) destroyPipeline(obj *PipelineObject) {
	if b.bound == obj {
		b.ctx.UseProgram(0)
		b.bound = nil
	}
	if obj.vao != 0 {
		b.ctx.DeleteVertexArray(obj.vao)
	}
	b.ctx.DeleteProgram(obj.program)
}

func (b *Backend) destroyShader(s Shader) {
	b.ctx.DeleteShader(s)
}
