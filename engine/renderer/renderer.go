package renderer

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/gpu"
)

var ErrUnknownPipeline = errors.New("unknown pipeline")

type BackendType uint8

const (
	OpenGL BackendType = iota
	Vulkan
)

func (t BackendType) String() string {
	switch t {
	case OpenGL:
		return "opengl"
	case Vulkan:
		return "vulkan"
	}
	return "unknown"
}

func ParseBackendType(s string) (BackendType, error) {
	switch s {
	case "", "opengl", "gl":
		return OpenGL, nil
	case "vulkan", "vk":
		return Vulkan, nil
	}
	return OpenGL, fmt.Errorf("unknown renderer backend `%s`", s)
}

// Renderer resolves the library's pipelines on one backend.
type Renderer struct {
	backend gpu.Backend
	library *PipelineLibrary
	bus     *core.EventBus
}

func New(backend gpu.Backend, library *PipelineLibrary, bus *core.EventBus) *Renderer {
	r := &Renderer{
		backend: backend,
		library: library,
		bus:     bus,
	}
	if bus != nil {
		bus.Register(core.EVENT_CODE_CONTEXT_LOST, r, r.onContextLost)
		bus.Register(core.EVENT_CODE_PIPELINE_REMOVED, r, r.onPipelineRemoved)
	}
	return r
}

func (r *Renderer) Backend() gpu.Backend      { return r.backend }
func (r *Renderer) Library() *PipelineLibrary { return r.library }

// Resolve returns the native handle of the named pipeline.
func (r *Renderer) Resolve(name string) (gpu.NativeHandle, error) {
	p, ok := r.library.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w `%s`", ErrUnknownPipeline, name)
	}
	h, err := r.backend.Resolve(p)
	if err != nil && errors.Is(err, gpu.ErrContextLost) && r.bus != nil {
		r.bus.Fire(core.EVENT_CODE_CONTEXT_LOST, r, core.EventContext{Name: r.backend.Name()})
	}
	return h, err
}

// ResolveAll warms the backend caches with every pipeline of the library and
// returns how many resolved.
func (r *Renderer) ResolveAll() (int, error) {
	var errs []error
	n := 0
	for _, name := range r.library.Names() {
		if _, err := r.Resolve(name); err != nil {
			errs = append(errs, fmt.Errorf("pipeline `%s` on %s: %w", name, r.backend.Name(), err))
			continue
		}
		n++
	}
	return n, errors.Join(errs...)
}

// Collect destroys the native objects of pipelines nobody references anymore.
func (r *Renderer) Collect() int {
	n := r.backend.Collect()
	if n > 0 {
		core.LogDebug("%s: collected %d pipeline(s)", r.backend.Name(), n)
	}
	return n
}

func (r *Renderer) Stats() gpu.Stats {
	return r.backend.Stats()
}

func (r *Renderer) onContextLost(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	// The backend drops its own caches before reporting the loss.
	if sender == r || (context.Name != "" && context.Name != r.backend.Name()) {
		return false
	}
	core.LogWarn("%s: context lost, invalidating %d cached pipeline(s)", r.backend.Name(), r.backend.Len())
	r.backend.Invalidate()
	return false
}

func (r *Renderer) onPipelineRemoved(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	p, ok := context.Data.(*gpu.Pipeline)
	if !ok || p == nil {
		return false
	}
	if r.backend.Evict(p) {
		core.LogDebug("%s: evicted pipeline `%s`", r.backend.Name(), p.Name())
	}
	return false
}

func (r *Renderer) Shutdown() error {
	if r.bus != nil {
		r.bus.Unregister(core.EVENT_CODE_CONTEXT_LOST, r, r.onContextLost)
		r.bus.Unregister(core.EVENT_CODE_PIPELINE_REMOVED, r, r.onPipelineRemoved)
	}
	return r.backend.Release()
}
