package engine

import (
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/platform"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/systems"
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
	// Engine released everything it created
	EngineStageShutdown
)

// frames between two metrics log lines
const metricsLogInterval = 300

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	config        *core.EngineConfig
	isRunning     atomic.Bool
	isSuspended   bool
	platform      *platform.Platform
	driver        *renderer.Driver
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager
	configWatcher *core.ConfigWatcher
	width         uint32
	height        uint32
	resized       bool
	clock         *core.Clock
	metrics       *core.FrameMetrics
	frameNumber   uint64
	lastTime      time.Duration
}

// New loads the engine configuration for g. Nothing touches the window or the GPU
// until Initialize.
func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, errors.New("engine needs a game with an application config")
	}
	config := g.ApplicationConfig.Config
	if g.ApplicationConfig.ConfigPath != "" {
		loaded, err := core.LoadEngineConfig(g.ApplicationConfig.ConfigPath)
		if err != nil {
			core.LogError(err.Error())
			return nil, err
		}
		config = loaded
	}
	if config == nil {
		config = core.DefaultEngineConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	g.ApplicationConfig.Config = config

	level, _ := core.ParseLogLevel(config.Log.Level)
	core.SetLogLevel(level)

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       config,
		width:        config.Window.Width,
		height:       config.Window.Height,
		clock:        core.NewClock(),
	}, nil
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return errors.Newf("engine already initialized (stage %d)", e.currentStage)
	}
	e.currentStage = EngineStageInitializing
	name := e.gameInstance.ApplicationConfig.Name
	if name == "" {
		name = e.config.Window.Name
	}

	if e.config.Driver.Backend != "null" {
		api := platform.ClientAPINone
		if e.config.Driver.Backend == "opengl" {
			api = platform.ClientAPIOpenGL
		}
		e.platform = platform.New(api)
		if err := e.platform.Startup(name, e.config.Window.X, e.config.Window.Y, e.width, e.height); err != nil {
			return err
		}
		e.platform.OnResize(e.onResized)
		e.platform.OnKey(e.onKey)
	}

	driver, err := renderer.NewFromConfig(e.platform, name, e.width, e.height, e.config.Driver)
	if err != nil {
		core.LogError("failed to initialize the renderer: %s", err)
		return err
	}
	e.driver = driver

	if dir := e.gameInstance.ApplicationConfig.AssetsDir; dir != "" {
		am, err := assets.NewAssetManager()
		if err != nil {
			return err
		}
		e.assetManager = am
		if err := am.Initialize(dir); err != nil {
			return errors.Wrapf(err, "indexing assets in %s", dir)
		}
		am.OnChange(func(info assets.AssetInfo) {
			core.LogDebug("asset %s (%s) changed on disk", info.Name, info.Type)
		})
	}

	sm, err := systems.NewSystemManager(e.config, driver, e.assetManager)
	if err != nil {
		return err
	}
	e.systemManager = sm

	if path := e.gameInstance.ApplicationConfig.ConfigPath; path != "" {
		watcher, err := core.WatchEngineConfig(path, e.onConfigChanged)
		if err != nil {
			core.LogWarn("config %s will not be reloaded: %s", path, err)
		} else {
			e.configWatcher = watcher
		}
	}

	e.gameInstance.Driver = driver
	e.gameInstance.SystemManager = sm
	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}
	e.currentStage = EngineStageInitialized
	core.LogInfo("engine initialized with the %s backend", driver.Backend().Type())
	return nil
}

func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return errors.New("engine must be initialized before it runs")
	}
	e.currentStage = EngineStageRunning
	e.isRunning.Store(true)

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()
	e.metrics = core.NewFrameMetrics(e.clock.Now())

	targetFrame := time.Second / 60
	maxFrames := e.gameInstance.ApplicationConfig.MaxFrames

	for e.isRunning.Load() {
		if e.platform != nil && !e.platform.PumpMessages() {
			e.isRunning.Store(false)
			break
		}
		if e.resized {
			e.resized = false
			if err := e.applyResize(); err != nil {
				core.LogError("resize failed: %s", err)
			}
		}
		if e.isSuspended {
			continue
		}

		// Update clock and get delta time.
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := (currentTime - e.lastTime).Seconds()
		frameStart := e.clock.Now()

		if err := e.frame(delta); err != nil {
			core.LogError("frame %d failed, shutting down: %s", e.frameNumber, err)
			e.isRunning.Store(false)
			return err
		}

		frameElapsed := e.clock.Now().Sub(frameStart)
		e.metrics.RegisterFrame(e.clock.Now(), frameElapsed, e.driver.Stats().Primitives)
		e.frameNumber++
		if e.frameNumber%metricsLogInterval == 0 {
			core.LogDebug("FPS: %d (%.2fms) primitives/s: %d\n%s",
				e.metrics.FPS(), e.metrics.FrameTime(), e.metrics.PrimitiveAverage(), e.driver.BuildStatsString())
		}

		// Only the null backend has no vsync to pace the loop.
		if e.platform == nil && frameElapsed < targetFrame {
			time.Sleep(targetFrame - frameElapsed)
		}

		e.lastTime = currentTime
		if maxFrames > 0 && e.frameNumber >= maxFrames {
			e.isRunning.Store(false)
		}
	}
	return nil
}

func (e *Engine) frame(delta float64) error {
	e.systemManager.Update()
	if e.gameInstance.FnUpdate != nil {
		if err := e.gameInstance.FnUpdate(delta); err != nil {
			return errors.Wrap(err, "game update")
		}
	}
	if err := e.driver.BeginFrame(delta); err != nil {
		return errors.Wrap(err, "begin frame")
	}
	if e.gameInstance.FnRender != nil {
		if err := e.gameInstance.FnRender(delta); err != nil {
			return errors.Wrap(err, "game render")
		}
	}
	return errors.Wrap(e.driver.EndFrame(delta), "end frame")
}

// Stop asks the running loop to exit after the current frame. Safe to call from any goroutine.
func (e *Engine) Stop() {
	e.isRunning.Store(false)
}

// Shutdown releases everything Initialize created, in reverse order. Every step runs
// even if an earlier one fails.
func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShutdown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	e.isRunning.Store(false)

	var err error
	if e.gameInstance.FnShutdown != nil && e.systemManager != nil {
		err = errors.CombineErrors(err, e.gameInstance.FnShutdown())
	}
	if e.configWatcher != nil {
		err = errors.CombineErrors(err, e.configWatcher.Shutdown())
	}
	if e.systemManager != nil {
		err = errors.CombineErrors(err, e.systemManager.Shutdown())
	}
	if e.driver != nil {
		err = errors.CombineErrors(err, e.driver.Shutdown())
	}
	if e.assetManager != nil {
		err = errors.CombineErrors(err, e.assetManager.Shutdown())
	}
	if e.platform != nil {
		err = errors.CombineErrors(err, e.platform.Shutdown())
	}
	e.currentStage = EngineStageShutdown
	return err
}

// GetFramebufferSize returns the width and height (in this order)
// of the application Framebuffer
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) Metrics() *core.FrameMetrics {
	return e.metrics
}

func (e *Engine) FrameNumber() uint64 {
	return e.frameNumber
}

func (e *Engine) onResized(width, height uint32) {
	e.width = width
	e.height = height
	e.resized = true
}

func (e *Engine) applyResize() error {
	// Minimized windows report a zero size; stop rendering until they come back.
	if e.width == 0 || e.height == 0 {
		core.LogInfo("window minimized, suspending application")
		e.isSuspended = true
		return nil
	}
	if e.isSuspended {
		core.LogInfo("window restored, resuming application")
		e.isSuspended = false
	}
	if err := e.driver.OnResize(e.width, e.height); err != nil {
		return err
	}
	if e.gameInstance.FnOnResize != nil {
		return e.gameInstance.FnOnResize(e.width, e.height)
	}
	return nil
}

func (e *Engine) onKey(key glfw.Key, action glfw.Action) {
	if key == glfw.KeyEscape && action == glfw.Press {
		core.LogInfo("escape pressed, shutting down")
		e.Stop()
	}
}

func (e *Engine) onConfigChanged(config *core.EngineConfig) {
	level, err := core.ParseLogLevel(config.Log.Level)
	if err != nil {
		core.LogWarn(err.Error())
		return
	}
	core.SetLogLevel(level)
	core.LogInfo("log level set to %s", level)
}
