package vulkan

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/gpu"
)

const BackendName = "vulkan"

var _ gpu.Backend = (*Backend)(nil)

/**
 * @brief The Vulkan realization of a Pipeline: the pipeline object, its layout and
 * the descriptor set layout reflecting the program slots.
 */
type PipelineObject struct {
	pipeline   Pipeline
	layout     PipelineLayout
	setLayout  DescriptorSetLayout
	bindPoint  PipelineBindPoint
	generation uint64
}

func (o *PipelineObject) Backend() string                          { return BackendName }
func (o *PipelineObject) Generation() uint64                       { return o.generation }
func (o *PipelineObject) Pipeline() Pipeline                       { return o.pipeline }
func (o *PipelineObject) Layout() PipelineLayout                   { return o.layout }
func (o *PipelineObject) DescriptorSetLayout() DescriptorSetLayout { return o.setLayout }
func (o *PipelineObject) BindPoint() PipelineBindPoint             { return o.bindPoint }

type Option func(*Backend)

func WithFailurePolicy(policy gpu.FailurePolicy) Option {
	return func(b *Backend) {
		b.policy = policy
	}
}

// WithRenderPass sets the render pass graphics pipelines are created against.
func WithRenderPass(rp RenderPass) Option {
	return func(b *Backend) {
		b.renderPass = rp
	}
}

// WithSamples sets the rasterization sample count used by multisampled states.
func WithSamples(samples uint32) Option {
	return func(b *Backend) {
		b.samples = samples
	}
}

/**
 * @brief Realizes pipelines as Vulkan pipeline state objects.
 */
type Backend struct {
	dev        Device
	policy     gpu.FailurePolicy
	renderPass RenderPass
	samples    uint32

	pipelines *gpu.ObjectCache[gpu.Pipeline, gpu.PipelineID, *PipelineObject]
	modules   *gpu.ObjectCache[gpu.Shader, gpu.ShaderID, ShaderModule]
	metrics   *core.Metrics

	resolves     atomic.Uint64
	compilations atomic.Uint64
	failures     atomic.Uint64

	released bool
}

func New(dev Device, opts ...Option) *Backend {
	b := &Backend{
		dev:     dev,
		samples: 1,
		metrics: core.NewMetrics(),
	}
	b.pipelines = gpu.NewObjectCache[gpu.Pipeline, gpu.PipelineID](b.destroyPipeline)
	b.modules = gpu.NewObjectCache[gpu.Shader, gpu.ShaderID](b.destroyModule)
	for _, opt := range opts {
		opt(b)
	}
	core.LogInfo("Vulkan backend created")
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
		if IsDeviceLost(err) {
			// Not a failure of p: everything built on the device is gone.
			core.LogWarn("device lost while realizing pipeline `%s`", p.Name())
			b.Invalidate()
			return nil, err
		}
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
	core.LogDebug("realized pipeline `%s`", p.Name())
	return obj, nil
}

func (b *Backend) build(p *gpu.Pipeline, generation uint64) (*PipelineObject, error) {
	stages := p.Program().ProgramStages()
	descriptors := make([]StageDescriptor, 0, len(stages))
	for _, st := range stages {
		desc, err := b.stageDescriptor(st)
		if err != nil {
			return nil, &gpu.BackendCompilationError{Backend: BackendName, Pipeline: p.Name(), Stage: st.Stage(), Err: err}
		}
		descriptors = append(descriptors, desc)
	}

	obj := &PipelineObject{generation: generation}
	fail := func(err error) (*PipelineObject, error) {
		b.destroyPipeline(obj)
		return nil, &gpu.BackendCompilationError{Backend: BackendName, Pipeline: p.Name(), Stage: gpu.StageProgram, Err: err}
	}

	var err error
	if obj.setLayout, err = b.dev.CreateDescriptorSetLayout(descriptorBindings(p.Program().Slots())); err != nil {
		return fail(err)
	}
	if obj.layout, err = b.dev.CreatePipelineLayout([]DescriptorSetLayout{obj.setLayout}); err != nil {
		return fail(err)
	}

	if p.IsCompute() {
		obj.bindPoint = PipelineBindPointCompute
		obj.pipeline, err = b.dev.CreateComputePipeline(&ComputePipelineInfo{Stage: descriptors[0], Layout: obj.layout})
	} else {
		info := graphicsPipelineInfo(*p.State(), p.Format(), b.samples)
		info.Stages = descriptors
		info.Layout = obj.layout
		info.RenderPass = b.renderPass
		obj.bindPoint = PipelineBindPointGraphics
		obj.pipeline, err = b.dev.CreateGraphicsPipeline(info)
	}
	if err != nil {
		return fail(err)
	}
	return obj, nil
}

// stageDescriptor returns the module of one stage, shared by all pipelines using it.
func (b *Backend) stageDescriptor(s *gpu.Shader) (StageDescriptor, error) {
	flag, ok := stageFlag(s.Stage())
	if !ok {
		return StageDescriptor{}, gpu.ErrUnsupportedStage
	}
	desc := StageDescriptor{Stage: flag, EntryPoint: s.EntryPoint()}

	if m, ok, _ := b.modules.Lookup(s.ID()); ok {
		desc.Module = m
		return desc, nil
	}
	code := s.Source().SPIRV
	if len(code) == 0 {
		return desc, fmt.Errorf("%w: `%s` has no SPIR-V bytecode", gpu.ErrEmptySource, s.Name())
	}
	generation := b.modules.Generation()
	m, err := createShaderModule(b.dev, s.Name(), code)
	if err != nil {
		return desc, err
	}
	b.modules.Store(s, s.ID(), m, generation)
	desc.Module = m
	return desc, nil
}

// Bind records vkCmdBindPipeline for p into cmd.
func (b *Backend) Bind(cmd CommandBuffer, p *gpu.Pipeline) error {
	obj, err := b.resolve(p)
	if err != nil {
		return err
	}
	b.dev.CmdBindPipeline(cmd, obj.bindPoint, obj.pipeline)
	return nil
}

// Invalidate forgets every realization after the device was lost.
func (b *Backend) Invalidate() {
	b.pipelines.Invalidate()
	b.modules.Invalidate()
	core.LogWarn("Vulkan backend invalidated, generation %d", b.pipelines.Generation())
}

// Reset switches to a recreated device. Everything is rebuilt on the next resolve.
func (b *Backend) Reset(dev Device, rp RenderPass) {
	b.dev = dev
	b.renderPass = rp
	b.released = false
	b.Invalidate()
}

// IsDeviceLost reports whether err was caused by a lost device.
func IsDeviceLost(err error) bool {
	return errors.Is(err, ErrDeviceLost)
}

func (b *Backend) Collect() int {
	return b.pipelines.Collect() + b.modules.Collect()
}

// Evict destroys the pipeline and layouts of p. The caller guarantees no
// command buffer in flight still uses it.
func (b *Backend) Evict(p *gpu.Pipeline) bool {
	if b.released {
		return false
	}
	return b.pipelines.Remove(p.ID())
}

func (b *Backend) Len() int {
	return b.pipelines.Len()
}

// ShaderModules is the number of cached shader modules.
func (b *Backend) ShaderModules() int {
	return b.modules.Len()
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

// Release waits for the device to go idle and destroys every cached object.
func (b *Backend) Release() error {
	if b.released {
		return gpu.ErrBackendReleased
	}
	err := b.dev.WaitIdle()
	n := b.pipelines.Purge() + b.modules.Purge()
	b.released = true
	core.LogDebug("Vulkan backend released %d objects", n)
	return err
}

func (b *Backend) destroyPipeline(obj *PipelineObject) {
	if obj.pipeline.IsValid() {
		b.dev.DestroyPipeline(obj.pipeline)
	}
	if core.Handle(obj.layout).IsValid() {
		b.dev.DestroyPipelineLayout(obj.layout)
	}
	if core.Handle(obj.setLayout).IsValid() {
		b.dev.DestroyDescriptorSetLayout(obj.setLayout)
	}
}

func (b *Backend) destroyModule(m ShaderModule) {
	b.dev.DestroyShaderModule(m)
}
