package metadata

/** @brief The graphics API a backend drives. */
type BackendType uint8

const (
	BackendNull BackendType = iota
	BackendOpenGL
	BackendVulkan
)

func (b BackendType) String() string {
	switch b {
	case BackendNull:
		return "null"
	case BackendOpenGL:
		return "opengl"
	case BackendVulkan:
		return "vulkan"
	}
	return "unknown"
}

func ParseBackendType(s string) (BackendType, bool) {
	switch s {
	case "null":
		return BackendNull, true
	case "opengl":
		return BackendOpenGL, true
	case "vulkan":
		return BackendVulkan, true
	}
	return BackendNull, false
}

/** @brief Device limits and features reported by a backend after initialization. */
type BackendCapabilities struct {
	/** @brief Largest supported sampler anisotropy, 1 when anisotropic filtering is absent. */
	MaxAnisotropy   uint8
	MaxTextureUnits uint32
	/** @brief Number of vertex buffer binding points. */
	MaxVertexAttribBindings uint32
	MultiDrawIndirect       bool
	ConditionalRender       bool
	Tessellation            bool
	SeamlessCubeMap         bool
}

/** @brief Backend handle of a sampler object. 0 is never a valid sampler. */
type SamplerHandle uint64

/** @brief One direct draw. IndexType unknown draws the vertex range [First, First+Count). */
type DrawCall struct {
	Primitive PrimitiveType
	IndexType IndexType
	Count     uint32
	/** @brief Byte offset of the first index. */
	IndexOffset   uint64
	First         uint32
	BaseVertex    int32
	InstanceCount uint32
	BaseInstance  uint32
	MinIndex      uint32
	MaxIndex      uint32
	/** @brief Control points per patch when Primitive is PrimitivePatches. */
	PatchVertices uint32
	/** @brief Point size for point and point sprite primitives. */
	PointSize float32
}

func (c DrawCall) Indexed() bool {
	return c.IndexType != IndexTypeUnknown
}

/** @brief One multi-draw over commands stored in a GPU buffer. */
type IndirectDrawCall struct {
	Primitive PrimitiveType
	IndexType IndexType
	/** @brief Byte offset of the first command inside the command buffer. */
	Offset        uint64
	DrawCount     uint32
	Stride        uint32
	PatchVertices uint32
}
