package engine

import (
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/systems"
)

// Game is the set of callbacks the engine drives. Driver and SystemManager are
// filled in by Engine.Initialize before FnInitialize runs.
type Game struct {
	ApplicationConfig *ApplicationConfig
	Driver            *renderer.Driver
	SystemManager     *systems.SystemManager
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnRender          Render
	FnOnResize        OnResize
	FnShutdown        Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error

// Render issues the frame's draws between the driver's BeginFrame and EndFrame.
type Render func(deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
