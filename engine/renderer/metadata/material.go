package metadata

/** @brief Number of texture layers a material can reference. */
const MaxTextureLayers = 4

/**
 * @brief Integer tag selecting how a material is rendered. Values past
 * MaterialTypeCustom are free for application-registered renderers.
 */
type MaterialType uint32

const (
	MaterialTypeSolid MaterialType = iota
	MaterialTypeTransparentAddColor
	MaterialTypeTransparentAlphaChannel
	MaterialTypeTransparentVertexAlpha
	MaterialTypeTessellated
	MaterialTypeCustom
)

func (m MaterialType) String() string {
	switch m {
	case MaterialTypeSolid:
		return "solid"
	case MaterialTypeTransparentAddColor:
		return "transparent_add_color"
	case MaterialTypeTransparentAlphaChannel:
		return "transparent_alpha_channel"
	case MaterialTypeTransparentVertexAlpha:
		return "transparent_vertex_alpha"
	case MaterialTypeTessellated:
		return "tessellated"
	}
	return "custom"
}

/**
 * @brief What a material renderer needs from the draw path. Resolved once
 * when the renderer is registered.
 */
type RendererCapabilities struct {
	Name string
	/** @brief Quads and triangles are submitted as patches. */
	Tessellation bool
	/** @brief Draws after opaque geometry. */
	Transparent bool
	/** @brief Number of control points per patch when tessellating. */
	PatchVertices uint32
}
