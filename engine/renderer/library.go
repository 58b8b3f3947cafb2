package renderer

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/assets/loaders"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/gpu"
	"github.com/spaghettifunk/prism/engine/resources"
)

// AssetSource is the part of the asset manager the library reads from.
type AssetSource interface {
	LoadAsset(name string, params interface{}) (*resources.Resource, error)
	UnloadAsset(res *resources.Resource) error
	Assets(rt resources.ResourceType) []string
}

var _ AssetSource = (*assets.AssetManager)(nil)

type libraryEntry struct {
	path     string
	config   *resources.PipelineConfig
	pipeline *gpu.Pipeline
}

/**
 * @brief Named pipelines built from *.pipeline.toml descriptions.
 *
 * Pipelines are immutable: a changed description or shader file produces a new
 * Pipeline under the same name. The previous one stays valid for whoever still
 * holds it and leaves the backend caches once it is collected.
 */
type PipelineLibrary struct {
	source AssetSource
	bus    *core.EventBus

	mu      sync.RWMutex
	entries map[string]*libraryEntry
}

func NewPipelineLibrary(source AssetSource, bus *core.EventBus) *PipelineLibrary {
	l := &PipelineLibrary{
		source:  source,
		bus:     bus,
		entries: make(map[string]*libraryEntry),
	}
	if bus != nil {
		bus.Register(core.EVENT_CODE_ASSET_CHANGED, l, l.onAssetChanged)
	}
	return l
}

// LoadAll loads every indexed description. A broken description does not stop the
// others; all failures are joined in the returned error.
func (l *PipelineLibrary) LoadAll() error {
	var errs []error
	for _, path := range l.source.Assets(resources.ResourceTypePipeline) {
		if _, err := l.Load(path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Load builds the pipeline described by the file at path and registers it by name.
func (l *PipelineLibrary) Load(path string) (*gpu.Pipeline, error) {
	res, err := l.source.LoadAsset(path, nil)
	if err != nil {
		return nil, err
	}
	cfg, ok := res.Data.(*resources.PipelineConfig)
	l.unload(res)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a pipeline description", loaders.ErrInvalidPipeline, path)
	}
	p, err := l.build(cfg)
	if err != nil {
		return nil, fmt.Errorf("pipeline `%s`: %w", cfg.Name, err)
	}

	l.mu.Lock()
	var renamed []*libraryEntry
	for name, e := range l.entries {
		if e.path == path && name != cfg.Name {
			delete(l.entries, name)
			renamed = append(renamed, e)
		}
	}
	l.entries[cfg.Name] = &libraryEntry{path: path, config: cfg, pipeline: p}
	l.mu.Unlock()

	core.LogDebug("pipeline `%s` loaded from %s", cfg.Name, path)
	for _, e := range renamed {
		l.fireRemoved(e)
	}
	l.fire(cfg.Name, path)
	return p, nil
}

func (l *PipelineLibrary) Get(name string) (*gpu.Pipeline, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[name]
	if !ok {
		return nil, false
	}
	return e.pipeline, true
}

func (l *PipelineLibrary) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.entries))
	for name := range l.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (l *PipelineLibrary) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Remove drops the named pipeline and lets the backends release it right away.
func (l *PipelineLibrary) Remove(name string) bool {
	l.mu.Lock()
	e, ok := l.entries[name]
	delete(l.entries, name)
	l.mu.Unlock()

	if ok {
		l.fireRemoved(e)
	}
	return ok
}

// Reload rebuilds every pipeline depending on path and returns their names. A
// description file is re-read; a shader file rebuilds the pipelines using it from
// their current descriptions. A failed rebuild keeps the previous pipeline.
func (l *PipelineLibrary) Reload(path string) ([]string, error) {
	if strings.HasSuffix(path, loaders.PipelineExtension) {
		p, err := l.Load(path)
		if err != nil {
			return nil, err
		}
		return []string{p.Name()}, nil
	}

	l.mu.RLock()
	var dependents []*libraryEntry
	for _, e := range l.entries {
		if slices.Contains(e.config.Files(), path) {
			dependents = append(dependents, e)
		}
	}
	l.mu.RUnlock()

	var rebuilt []string
	var errs []error
	for _, e := range dependents {
		p, err := l.build(e.config)
		if err != nil {
			errs = append(errs, fmt.Errorf("pipeline `%s`: %w", e.config.Name, err))
			continue
		}
		l.mu.Lock()
		l.entries[e.config.Name] = &libraryEntry{path: e.path, config: e.config, pipeline: p}
		l.mu.Unlock()
		rebuilt = append(rebuilt, e.config.Name)
		l.fire(e.config.Name, path)
	}
	sort.Strings(rebuilt)
	return rebuilt, errors.Join(errs...)
}

// forget drops the pipelines described by a removed description file.
func (l *PipelineLibrary) forget(path string) {
	l.mu.Lock()
	var removed []*libraryEntry
	for name, e := range l.entries {
		if e.path == path {
			delete(l.entries, name)
			removed = append(removed, e)
			core.LogInfo("pipeline `%s` removed with %s", name, path)
		}
	}
	l.mu.Unlock()

	for _, e := range removed {
		l.fireRemoved(e)
	}
}

func (l *PipelineLibrary) onAssetChanged(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	if op, ok := context.Data.(assets.AssetOp); ok && op == assets.AssetRemoved {
		if strings.HasSuffix(context.Path, loaders.PipelineExtension) {
			l.forget(context.Path)
		}
		return false
	}
	rebuilt, err := l.Reload(context.Path)
	if err != nil {
		core.LogError("hot reload of %s failed: %s", context.Path, err)
	}
	if len(rebuilt) > 0 {
		core.LogInfo("hot reload of %s rebuilt %s", context.Path, strings.Join(rebuilt, ", "))
	}
	return false
}

func (l *PipelineLibrary) fire(name, path string) {
	if l.bus == nil {
		return
	}
	l.bus.Fire(core.EVENT_CODE_PIPELINE_REBUILT, l, core.EventContext{Name: name, Path: path})
}

func (l *PipelineLibrary) fireRemoved(e *libraryEntry) {
	if l.bus == nil {
		return
	}
	l.bus.Fire(core.EVENT_CODE_PIPELINE_REMOVED, l, core.EventContext{Name: e.pipeline.Name(), Path: e.path, Data: e.pipeline})
}

// unload hands res back to the asset manager once its data has been copied out.
func (l *PipelineLibrary) unload(res *resources.Resource) {
	if err := l.source.UnloadAsset(res); err != nil {
		core.LogWarn("failed to unload asset `%s`: %s", res.Name, err)
	}
}

// Shutdown stops listening for asset changes and drops every pipeline.
func (l *PipelineLibrary) Shutdown() {
	if l.bus != nil {
		l.bus.Unregister(core.EVENT_CODE_ASSET_CHANGED, l, l.onAssetChanged)
	}
	l.mu.Lock()
	l.entries = make(map[string]*libraryEntry)
	l.mu.Unlock()
}

func (l *PipelineLibrary) build(cfg *resources.PipelineConfig) (*gpu.Pipeline, error) {
	if len(cfg.Stages) == 0 {
		return nil, fmt.Errorf("%w: no stages", loaders.ErrInvalidPipeline)
	}
	stages := make([]*gpu.Shader, 0, len(cfg.Stages))
	for _, sc := range cfg.Stages {
		sh, err := l.buildStage(cfg, sc)
		if err != nil {
			return nil, err
		}
		stages = append(stages, sh)
	}

	program := stages[0]
	if len(stages) > 1 || program.Stage() != gpu.StageCompute {
		var err error
		if program, err = gpu.NewProgram(cfg.Name, stages...); err != nil {
			return nil, err
		}
	}
	state, err := buildState(cfg.State)
	if err != nil {
		return nil, err
	}
	format, err := buildFormat(cfg.Attributes)
	if err != nil {
		return nil, err
	}
	return gpu.NewPipeline(program, &state, format, gpu.WithPipelineName(cfg.Name))
}

func (l *PipelineLibrary) buildStage(cfg *resources.PipelineConfig, sc resources.StageConfig) (*gpu.Shader, error) {
	stage, err := gpu.ParseShaderStage(sc.Stage)
	if err != nil {
		return nil, err
	}
	// A stage may name both forms; a backend only needs one of them, so one missing
	// file is tolerated as long as the other loads.
	src := gpu.Source{EntryPoint: sc.EntryPoint}
	var missing error
	if sc.GLSL != "" {
		res, err := l.source.LoadAsset(sc.GLSL, nil)
		switch {
		case err == nil:
			src.GLSL, _ = res.Data.(string)
			l.unload(res)
		case errors.Is(err, fs.ErrNotExist):
			missing = &gpu.ResourceNotFoundError{Path: sc.GLSL, Err: err}
		default:
			return nil, fmt.Errorf("%s: %w", sc.GLSL, err)
		}
	}
	if sc.SPIRV != "" {
		res, err := l.source.LoadAsset(sc.SPIRV, nil)
		switch {
		case err == nil:
			src.SPIRV, _ = res.Data.([]byte)
			l.unload(res)
		case errors.Is(err, fs.ErrNotExist):
			if missing == nil {
				missing = &gpu.ResourceNotFoundError{Path: sc.SPIRV, Err: err}
			}
		default:
			return nil, fmt.Errorf("%s: %w", sc.SPIRV, err)
		}
	}
	if missing != nil {
		if src.IsEmpty() {
			return nil, missing
		}
		core.LogWarn("pipeline `%s`: %s", cfg.Name, missing)
	}
	slots, err := stageSlots(cfg.Slots, stage)
	if err != nil {
		return nil, err
	}
	return gpu.NewShader(stage, src,
		gpu.WithShaderName(fmt.Sprintf("%s.%s", cfg.Name, stage)),
		gpu.WithSlots(slots...),
	)
}
