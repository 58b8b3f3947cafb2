package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/gpu"
	"github.com/spaghettifunk/prism/engine/gpu/opengl"
	"github.com/spaghettifunk/prism/engine/gpu/opengl/glnative"
	"github.com/spaghettifunk/prism/engine/gpu/vulkan"
	"github.com/spaghettifunk/prism/engine/gpu/vulkan/vknative"
	"github.com/spaghettifunk/prism/engine/platform"
	"github.com/spaghettifunk/prism/engine/renderer"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

const (
	tickInterval  = 16 * time.Millisecond
	statsInterval = 5 * time.Second
)

// Engine hosts one backend and the pipeline library, hot reloading pipelines
// until it is told to quit. Run and Shutdown must be called from the main thread.
type Engine struct {
	config       *core.Config
	currentStage Stage
	backendType  renderer.BackendType
	policy       gpu.FailurePolicy

	platform     *platform.Platform
	bus          *core.EventBus
	assetManager *assets.AssetManager
	library      *renderer.PipelineLibrary
	renderer     *renderer.Renderer
	clock        *core.Clock

	// closeNative tears down the native device after the backend is released.
	closeNative func()

	quit     chan struct{}
	quitOnce sync.Once
}

func New(cfg *core.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	backendType, err := renderer.ParseBackendType(cfg.Renderer.Backend)
	if err != nil {
		return nil, err
	}
	policy, err := gpu.ParseFailurePolicy(cfg.Renderer.FailurePolicy)
	if err != nil {
		return nil, err
	}
	p, err := platform.New()
	if err != nil {
		return nil, err
	}
	am, err := assets.NewAssetManager(cfg.Assets.Root, cfg.Assets.Watch)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return &Engine{
		config:       cfg,
		currentStage: EngineStageUninitialized,
		backendType:  backendType,
		policy:       policy,
		platform:     p,
		bus:          core.NewEventBus(),
		assetManager: am,
		clock:        core.NewClock(),
		quit:         make(chan struct{}),
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	e.bus.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.bus.Register(core.EVENT_CODE_PIPELINE_REBUILT, e, e.onPipelineRebuilt)

	api := platform.APIOpenGL
	if e.backendType == renderer.Vulkan {
		api = platform.APIVulkan
	}
	app := e.config.Application
	if err := e.platform.Startup(app.Name, app.Width, app.Height, api); err != nil {
		return err
	}
	if err := e.assetManager.Initialize(); err != nil {
		return err
	}

	backend, err := e.createBackend()
	if err != nil {
		return err
	}

	e.library = renderer.NewPipelineLibrary(e.assetManager, e.bus)
	if err := e.library.LoadAll(); err != nil {
		core.LogError("some pipelines failed to load: %s", err)
	}
	e.renderer = renderer.New(backend, e.library, e.bus)

	n, err := e.renderer.ResolveAll()
	if err != nil {
		core.LogError("some pipelines failed to resolve: %s", err)
	}
	core.LogInfo("%s: resolved %d/%d pipeline(s)", backend.Name(), n, e.library.Len())

	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) createBackend() (gpu.Backend, error) {
	switch e.backendType {
	case renderer.OpenGL:
		ctx, err := glnative.New()
		if err != nil {
			return nil, err
		}
		return opengl.New(ctx, opengl.WithFailurePolicy(e.policy)), nil
	case renderer.Vulkan:
		dev, err := vknative.New(vknative.Config{
			AppName:    e.config.Application.Name,
			ProcAddr:   e.platform.VulkanProcAddr(),
			Extensions: e.platform.RequiredInstanceExtensions(),
			Validation: e.config.Renderer.Validation,
		})
		if err != nil {
			return nil, err
		}
		rp, err := dev.CreateRenderPass(vulkan.FormatR8g8b8a8Unorm, 1)
		if err != nil {
			dev.Close()
			return nil, err
		}
		e.closeNative = func() {
			dev.DestroyRenderPass(rp)
			dev.Close()
		}
		core.LogInfo("Vulkan device: %s", dev.Name())
		return vulkan.New(dev,
			vulkan.WithRenderPass(rp),
			vulkan.WithFailurePolicy(e.policy),
		), nil
	}
	return nil, fmt.Errorf("unsupported backend %s", e.backendType)
}

func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return errors.New("engine is not initialized")
	}
	e.currentStage = EngineStageRunning
	e.clock.Start()

	tick := time.NewTicker(tickInterval)
	defer tick.Stop()
	stats := time.NewTicker(statsInterval)
	defer stats.Stop()

	for {
		select {
		case <-e.quit:
			core.LogInfo("quitting after %s", e.clock.Elapsed().Round(time.Millisecond))
			return nil
		case ev := <-e.assetManager.Events():
			core.LogDebug("asset %s %s", ev.Path, ev.Op)
			e.bus.Fire(core.EVENT_CODE_ASSET_CHANGED, e, core.EventContext{Path: ev.Path, Data: ev.Op})
		case <-tick.C:
			e.clock.Update()
			e.platform.PumpMessages()
			if e.platform.ShouldClose() {
				e.bus.Fire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{})
			}
			e.renderer.Collect()
		case <-stats.C:
			core.LogInfo("%s: %s", e.renderer.Backend().Name(), e.renderer.Stats())
		}
	}
}

// Quit makes Run return. Safe to call from any goroutine.
func (e *Engine) Quit() {
	e.quitOnce.Do(func() { close(e.quit) })
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	e.clock.Stop()

	var errs []error
	if e.library != nil {
		e.library.Shutdown()
	}
	if e.renderer != nil {
		core.LogInfo("%s: %s", e.renderer.Backend().Name(), e.renderer.Stats())
		if err := e.renderer.Shutdown(); err != nil {
			errs = append(errs, err)
		}
	}
	if e.closeNative != nil {
		e.closeNative()
	}
	if err := e.assetManager.Shutdown(); err != nil && !errors.Is(err, assets.ErrManagerClosed) {
		errs = append(errs, err)
	}
	e.bus.Shutdown()
	if err := e.platform.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	e.currentStage = EngineStageUninitialized
	return errors.Join(errs...)
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	switch code {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.Quit()
		return true
	}
	return false
}

// onPipelineRebuilt resolves hot reloaded pipelines right away so errors show up
// when the file is saved.
func (e *Engine) onPipelineRebuilt(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	if e.renderer == nil {
		return false
	}
	if _, err := e.renderer.Resolve(context.Name); err != nil {
		core.LogError("pipeline `%s`: %s", context.Name, err)
	}
	return false
}
