package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/platform"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/renderer/null"
	"github.com/spaghettifunk/prism/engine/renderer/opengl"
	"github.com/spaghettifunk/prism/engine/renderer/vulkan"
)

// NewBackend returns an uninitialized backend for t. The null backend needs no platform.
func NewBackend(t metadata.BackendType, p *platform.Platform) (RendererBackend, error) {
	switch t {
	case metadata.BackendNull:
		return null.New(), nil
	case metadata.BackendOpenGL:
		if p == nil {
			return nil, errors.Wrap(core.ErrBackendUnavailable, "opengl backend needs a window")
		}
		return opengl.New(p), nil
	case metadata.BackendVulkan:
		if p == nil {
			return nil, errors.Wrap(core.ErrBackendUnavailable, "vulkan backend needs a window")
		}
		return vulkan.New(p), nil
	}
	return nil, errors.Wrapf(core.ErrBackendUnavailable, "backend %s", t)
}

// NewFromConfig creates the configured backend and a driver on top of it.
func NewFromConfig(p *platform.Platform, appName string, width, height uint32, config core.DriverConfig) (*Driver, error) {
	t, ok := metadata.ParseBackendType(config.Backend)
	if !ok {
		return nil, errors.Wrapf(core.ErrInvalidConfig, "unknown backend %q", config.Backend)
	}
	backend, err := NewBackend(t, p)
	if err != nil {
		return nil, errors.Mark(err, core.ErrDriverInit)
	}
	return New(backend, appName, width, height, config)
}
