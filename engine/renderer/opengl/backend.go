// Package opengl drives the GPU through OpenGL 4.5 core using direct state access.
// Every call must happen on the thread that owns the window's context.
package opengl

import (
	"github.com/cockroachdb/errors"
	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/platform"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// Not exposed by the core profile bindings; core since 4.6 and ubiquitous as an extension.
const (
	glTextureMaxAnisotropy    = 0x84FE
	glMaxTextureMaxAnisotropy = 0x84FF
)

type OpenGLRenderer struct {
	platform *platform.Platform
	caps     metadata.BackendCapabilities

	width         uint32
	height        uint32
	clearColor    [4]float32
	currentFormat *vertexArray
	program       uint32
	pointSize     float32
	patchVertices int32
	frameNumber   uint64
}

func New(p *platform.Platform) *OpenGLRenderer {
	return &OpenGLRenderer{
		platform:   p,
		clearColor: [4]float32{0.0, 0.0, 0.2, 1.0},
	}
}

func (r *OpenGLRenderer) Initialize(appName string, appWidth, appHeight uint32) error {
	if r.platform == nil || r.platform.Window == nil {
		return errors.Wrap(core.ErrBackendUnavailable, "opengl backend needs a window with a current context")
	}
	if err := gl.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize OpenGL")
	}

	core.LogInfo("OpenGL version %s, renderer %s", gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.RENDERER)))
	r.caps = queryCapabilities()
	r.width, r.height = appWidth, appHeight
	r.pointSize = 1.0

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.TEXTURE_CUBE_MAP_SEAMLESS)
	gl.Viewport(0, 0, int32(appWidth), int32(appHeight))

	core.LogInfo("OpenGL renderer initialized for %s.", appName)
	return nil
}

func queryCapabilities() metadata.BackendCapabilities {
	var bindings, units int32
	gl.GetIntegerv(gl.MAX_VERTEX_ATTRIB_BINDINGS, &bindings)
	gl.GetIntegerv(gl.MAX_COMBINED_TEXTURE_IMAGE_UNITS, &units)

	var aniso float32
	gl.GetFloatv(glMaxTextureMaxAnisotropy, &aniso)
	if gl.GetError() != gl.NO_ERROR || aniso < 1 {
		aniso = 1
	}

	return metadata.BackendCapabilities{
		MaxAnisotropy:           uint8(min(aniso, 255)),
		MaxTextureUnits:         uint32(units),
		MaxVertexAttribBindings: uint32(bindings),
		MultiDrawIndirect:       true,
		ConditionalRender:       true,
		Tessellation:            true,
		SeamlessCubeMap:         true,
	}
}

func (r *OpenGLRenderer) Shutdown() error {
	gl.BindVertexArray(0)
	gl.UseProgram(0)
	r.currentFormat = nil
	core.LogInfo("OpenGL renderer shut down after %d frames.", r.frameNumber)
	return nil
}

func (r *OpenGLRenderer) Resized(width, height uint32) error {
	r.width, r.height = width, height
	gl.Viewport(0, 0, int32(width), int32(height))
	core.LogDebug("OpenGL renderer backend->resized: w/h: %d/%d", width, height)
	return nil
}

func (r *OpenGLRenderer) BeginFrame(deltaTime float64) error {
	gl.ClearColor(r.clearColor[0], r.clearColor[1], r.clearColor[2], r.clearColor[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	return nil
}

func (r *OpenGLRenderer) EndFrame(deltaTime float64) error {
	r.platform.SwapBuffers()
	r.frameNumber++
	if code := gl.GetError(); code != gl.NO_ERROR {
		return errors.Newf("OpenGL error 0x%x at end of frame %d", code, r.frameNumber)
	}
	return nil
}

func (r *OpenGLRenderer) Type() metadata.BackendType {
	return metadata.BackendOpenGL
}

func (r *OpenGLRenderer) Capabilities() metadata.BackendCapabilities {
	return r.caps
}

// SetClearColor changes the color BeginFrame clears to.
func (r *OpenGLRenderer) SetClearColor(red, green, blue, alpha float32) {
	r.clearColor = [4]float32{red, green, blue, alpha}
}
