package systems

import (
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/** @brief The name of the default material renderer. */
const DefaultMaterialName string = "solid"

type MaterialSystemConfig struct {
	/** @brief The maximum number of material renderers that can be registered. */
	MaxMaterialCount uint32
}

// MaterialSystem maps material types to the renderer capabilities the draw path
// consults, such as whether triangles are submitted as tessellation patches.
type MaterialSystem struct {
	config    *MaterialSystemConfig
	renderers map[metadata.MaterialType]metadata.RendererCapabilities
}

func NewMaterialSystem(config *MaterialSystemConfig) (*MaterialSystem, error) {
	if config.MaxMaterialCount == 0 {
		err := errors.Wrap(core.ErrInvalidConfig, "func NewMaterialSystem - config.MaxMaterialCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	ms := &MaterialSystem{
		config:    config,
		renderers: make(map[metadata.MaterialType]metadata.RendererCapabilities),
	}
	builtins := []struct {
		t    metadata.MaterialType
		caps metadata.RendererCapabilities
	}{
		{metadata.MaterialTypeSolid, metadata.RendererCapabilities{Name: DefaultMaterialName}},
		{metadata.MaterialTypeTransparentAddColor, metadata.RendererCapabilities{Name: "transparent_add_color", Transparent: true}},
		{metadata.MaterialTypeTransparentAlphaChannel, metadata.RendererCapabilities{Name: "transparent_alpha_channel", Transparent: true}},
		{metadata.MaterialTypeTransparentVertexAlpha, metadata.RendererCapabilities{Name: "transparent_vertex_alpha", Transparent: true}},
		{metadata.MaterialTypeTessellated, metadata.RendererCapabilities{Name: "tessellated", Tessellation: true, PatchVertices: 3}},
	}
	for _, b := range builtins {
		if err := ms.Register(b.t, b.caps); err != nil {
			return nil, err
		}
	}
	return ms, nil
}

/**
 * @brief Registers the renderer capabilities of a material type. Types may be
 * registered once. Tessellating renderers default to triangle patches.
 */
func (ms *MaterialSystem) Register(t metadata.MaterialType, caps metadata.RendererCapabilities) error {
	if _, exists := ms.renderers[t]; exists {
		return errors.Newf("material renderer for type %d (%s) already registered", t, t)
	}
	if uint32(len(ms.renderers)) >= ms.config.MaxMaterialCount {
		return errors.Newf("cannot register material type %d: limit of %d reached", t, ms.config.MaxMaterialCount)
	}
	if caps.Name == "" {
		caps.Name = t.String()
	}
	if caps.Tessellation && caps.PatchVertices == 0 {
		caps.PatchVertices = 3
	}
	ms.renderers[t] = caps
	core.LogDebug("registered material renderer '%s' for type %d", caps.Name, t)
	return nil
}

// Capabilities returns what the renderer registered for t needs from the draw path.
func (ms *MaterialSystem) Capabilities(t metadata.MaterialType) (metadata.RendererCapabilities, bool) {
	caps, ok := ms.renderers[t]
	return caps, ok
}

// Types returns the registered material types in ascending order.
func (ms *MaterialSystem) Types() []metadata.MaterialType {
	out := make([]metadata.MaterialType, 0, len(ms.renderers))
	for t := range ms.renderers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (ms *MaterialSystem) Shutdown() error {
	ms.renderers = make(map[metadata.MaterialType]metadata.RendererCapabilities)
	return nil
}
