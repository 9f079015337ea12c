package metadata

/** @brief Element type of an index buffer. */
type IndexType uint8

const (
	IndexTypeUnknown IndexType = iota
	IndexType16
	IndexType32
)

// Size returns the byte size of one index, 0 for an unknown type.
func (t IndexType) Size() uint32 {
	switch t {
	case IndexType16:
		return 2
	case IndexType32:
		return 4
	}
	return 0
}

func (t IndexType) String() string {
	switch t {
	case IndexType16:
		return "u16"
	case IndexType32:
		return "u32"
	}
	return "unknown"
}

/** @brief Topology used to assemble vertices. */
type PrimitiveType uint8

const (
	PrimitivePoints PrimitiveType = iota
	PrimitivePointSprites
	PrimitiveLineStrip
	PrimitiveLineLoop
	PrimitiveLines
	PrimitiveTriangleStrip
	PrimitiveTriangleFan
	PrimitiveTriangles
	PrimitiveQuads
	PrimitivePatches
)

func (p PrimitiveType) String() string {
	switch p {
	case PrimitivePoints:
		return "points"
	case PrimitivePointSprites:
		return "point_sprites"
	case PrimitiveLineStrip:
		return "line_strip"
	case PrimitiveLineLoop:
		return "line_loop"
	case PrimitiveLines:
		return "lines"
	case PrimitiveTriangleStrip:
		return "triangle_strip"
	case PrimitiveTriangleFan:
		return "triangle_fan"
	case PrimitiveTriangles:
		return "triangles"
	case PrimitiveQuads:
		return "quads"
	case PrimitivePatches:
		return "patches"
	}
	return "unknown"
}

// PrimitiveCount returns how many primitives count vertices or indices assemble into.
func (p PrimitiveType) PrimitiveCount(count uint32) uint32 {
	switch p {
	case PrimitivePoints, PrimitivePointSprites:
		return count
	case PrimitiveLineStrip:
		if count < 2 {
			return 0
		}
		return count - 1
	case PrimitiveLineLoop:
		if count < 2 {
			return 0
		}
		return count
	case PrimitiveLines:
		return count / 2
	case PrimitiveTriangleStrip, PrimitiveTriangleFan:
		if count < 3 {
			return 0
		}
		return count - 2
	case PrimitiveTriangles, PrimitivePatches:
		return count / 3
	case PrimitiveQuads:
		return count / 4
	}
	return 0
}
