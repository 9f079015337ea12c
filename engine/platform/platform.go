package platform

import (
	"runtime"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/prism/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

/** @brief The client API the window is created for. */
type ClientAPI uint8

const (
	/** @brief No context; the backend creates its own surface (Vulkan). */
	ClientAPINone ClientAPI = iota
	/** @brief An OpenGL 4.5 core context made current on the calling thread. */
	ClientAPIOpenGL
)

type Platform struct {
	Window *glfw.Window

	api       ClientAPI
	startTime float64
	onResize  func(width, height uint32)
	onKey     func(key glfw.Key, action glfw.Action)
}

func New(api ClientAPI) *Platform {
	return &Platform{api: api}
}

func (p *Platform) API() ClientAPI {
	return p.api
}

// OnResize registers the callback invoked with the new framebuffer size.
func (p *Platform) OnResize(fn func(width, height uint32)) {
	p.onResize = fn
}

// OnKey registers the callback invoked for every key press and release.
func (p *Platform) OnKey(fn func(key glfw.Key, action glfw.Action)) {
	p.onKey = fn
}

func (p *Platform) Startup(applicationName string, x, y, width, height uint32) error {
	if err := glfw.Init(); err != nil {
		return errors.Mark(errors.Wrap(err, "failed to initialize glfw"), core.ErrDriverInit)
	}

	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	switch p.api {
	case ClientAPIOpenGL:
		glfw.WindowHint(glfw.ClientAPI, glfw.OpenGLAPI)
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
		glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
		glfw.WindowHint(glfw.ContextVersionMajor, 4)
		glfw.WindowHint(glfw.ContextVersionMinor, 5)
	default:
		glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	}

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		glfw.Terminate()
		return errors.Mark(errors.Wrap(err, "failed to create window"), core.ErrDriverInit)
	}
	p.Window = window
	if p.api == ClientAPIOpenGL {
		window.MakeContextCurrent()
		glfw.SwapInterval(1)
	}

	window.SetKeyCallback(p.keyCallback)
	window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	window.SetPos(int(x), int(y))
	window.Show()

	p.startTime = glfw.GetTime()
	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// PumpMessages processes pending window events. It returns false once the window
// was asked to close.
func (p *Platform) PumpMessages() bool {
	glfw.PollEvents()
	return p.Window != nil && !p.Window.ShouldClose()
}

// SwapBuffers presents the back buffer of an OpenGL window.
func (p *Platform) SwapBuffers() {
	if p.api == ClientAPIOpenGL && p.Window != nil {
		p.Window.SwapBuffers()
	}
}

func (p *Platform) FramebufferSize() (uint32, uint32) {
	w, h := p.Window.GetFramebufferSize()
	return uint32(w), uint32(h)
}

// GetRequiredExtensionNames lists the instance extensions Vulkan needs to present to the window.
func (p *Platform) GetRequiredExtensionNames() []string {
	return p.Window.GetRequiredInstanceExtensions()
}

// GetAbsoluteTime returns the seconds elapsed since Startup.
func (p *Platform) GetAbsoluteTime() float64 {
	return glfw.GetTime() - p.startTime
}

func (p *Platform) Sleep(ms float64) {
	time.Sleep(time.Duration(ms * float64(time.Millisecond)))
}

func (p *Platform) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if p.onKey != nil {
		p.onKey(key, action)
	}
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	if p.onResize != nil {
		p.onResize(uint32(width), uint32(height))
	}
}
