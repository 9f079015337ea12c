package assets

import (
	"encoding/binary"

	"github.com/chewxy/math32"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/** @brief How generated vertex data is laid out in CPU buffers. */
type VertexLayout int

const (
	/** @brief Position, normal and texcoord each live in their own buffer. */
	LayoutSeparate VertexLayout = iota
	/** @brief All attributes share one buffer with a 32 byte stride. */
	LayoutInterleaved
)

const interleavedStride = 12 + 12 + 8

// NewCPUMeshBufferFromVertices packs vertices and triangle indices into a mesh buffer
// with position, normal and texcoord attributes. Indices are 16-bit when they fit.
func NewCPUMeshBufferFromVertices(vertices []math.Vertex3D, indices []uint32, layout VertexLayout) *CPUMeshBuffer {
	mb := NewCPUMeshBuffer()
	n := len(vertices)

	switch layout {
	case LayoutInterleaved:
		data := make([]byte, n*interleavedStride)
		for i, v := range vertices {
			at := i * interleavedStride
			putVec3(data[at:], v.Position)
			putVec3(data[at+12:], v.Normal)
			putVec2(data[at+24:], v.Texcoord)
		}
		buf := NewCPUBuffer(data)
		mb.SetAttribute(metadata.AttributePosition, buf, metadata.ComponentsThree, metadata.ComponentFloat, interleavedStride, 0)
		mb.SetAttribute(metadata.AttributeNormal, buf, metadata.ComponentsThree, metadata.ComponentFloat, interleavedStride, 12)
		mb.SetAttribute(metadata.AttributeTexcoord0, buf, metadata.ComponentsTwo, metadata.ComponentFloat, interleavedStride, 24)
	default:
		positions := make([]byte, n*12)
		normals := make([]byte, n*12)
		uvs := make([]byte, n*8)
		for i, v := range vertices {
			putVec3(positions[i*12:], v.Position)
			putVec3(normals[i*12:], v.Normal)
			putVec2(uvs[i*8:], v.Texcoord)
		}
		mb.SetAttribute(metadata.AttributePosition, NewCPUBuffer(positions), metadata.ComponentsThree, metadata.ComponentFloat, 0, 0)
		mb.SetAttribute(metadata.AttributeNormal, NewCPUBuffer(normals), metadata.ComponentsThree, metadata.ComponentFloat, 0, 0)
		mb.SetAttribute(metadata.AttributeTexcoord0, NewCPUBuffer(uvs), metadata.ComponentsTwo, metadata.ComponentFloat, 0, 0)
	}

	if len(indices) > 0 {
		itype, data := EncodeIndices(indices)
		mb.SetIndices(NewCPUBuffer(data), itype, uint32(len(indices)))
	} else {
		mb.IndexCount = uint32(n)
	}
	mb.RecalculateBoundingBox()
	return mb
}

// EncodeIndices stores indices as 16-bit values when all of them fit, 32-bit otherwise.
func EncodeIndices(indices []uint32) (metadata.IndexType, []byte) {
	wide := false
	for _, ix := range indices {
		if ix > 0xffff {
			wide = true
			break
		}
	}
	if wide {
		data := make([]byte, len(indices)*4)
		for i, ix := range indices {
			binary.LittleEndian.PutUint32(data[i*4:], ix)
		}
		return metadata.IndexType32, data
	}
	data := make([]byte, len(indices)*2)
	for i, ix := range indices {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(ix))
	}
	return metadata.IndexType16, data
}

func putVec3(dst []byte, v math.Vec3) {
	binary.LittleEndian.PutUint32(dst[0:], math32.Float32bits(v.X))
	binary.LittleEndian.PutUint32(dst[4:], math32.Float32bits(v.Y))
	binary.LittleEndian.PutUint32(dst[8:], math32.Float32bits(v.Z))
}

func putVec2(dst []byte, v math.Vec2) {
	binary.LittleEndian.PutUint32(dst[0:], math32.Float32bits(v.X))
	binary.LittleEndian.PutUint32(dst[4:], math32.Float32bits(v.Y))
}

/**
 * @brief Generates a plane on the xy axis centered at the origin.
 * @param width The overall width of the plane. Must be non-zero.
 * @param height The overall height of the plane. Must be non-zero.
 * @param xSegmentCount The number of segments along the x-axis. Must be non-zero.
 * @param ySegmentCount The number of segments along the y-axis. Must be non-zero.
 * @param tileX The number of times the texture should tile across the plane on the x-axis.
 * @param tileY The number of times the texture should tile across the plane on the y-axis.
 */
func GeneratePlane(name string, width, height float32, xSegmentCount, ySegmentCount uint32, tileX, tileY float32, layout VertexLayout) *CPUMesh {
	vertices, indices := planeGeometry(width, height, xSegmentCount, ySegmentCount, tileX, tileY)
	return NewCPUMesh(name, NewCPUMeshBufferFromVertices(vertices, indices, layout))
}

func planeGeometry(width, height float32, xSegmentCount, ySegmentCount uint32, tileX, tileY float32) ([]math.Vertex3D, []uint32) {
	if width == 0 {
		core.LogWarn("Width must be nonzero. Defaulting to one.")
		width = 1.0
	}
	if height == 0 {
		core.LogWarn("Height must be nonzero. Defaulting to one.")
		height = 1.0
	}
	if xSegmentCount < 1 {
		core.LogWarn("xSegmentCount must be a positive number. Defaulting to one.")
		xSegmentCount = 1
	}
	if ySegmentCount < 1 {
		core.LogWarn("ySegmentCount must be a positive number. Defaulting to one.")
		ySegmentCount = 1
	}
	if tileX == 0 {
		tileX = 1.0
	}
	if tileY == 0 {
		tileY = 1.0
	}

	vertices := make([]math.Vertex3D, 0, (xSegmentCount+1)*(ySegmentCount+1))
	segWidth := width / float32(xSegmentCount)
	segHeight := height / float32(ySegmentCount)
	for y := uint32(0); y <= ySegmentCount; y++ {
		for x := uint32(0); x <= xSegmentCount; x++ {
			vertices = append(vertices, math.Vertex3D{
				Position: math.NewVec3(float32(x)*segWidth-width*0.5, float32(y)*segHeight-height*0.5, 0),
				Normal:   math.NewVec3(0, 0, 1),
				Texcoord: math.NewVec2(float32(x)/float32(xSegmentCount)*tileX, float32(y)/float32(ySegmentCount)*tileY),
				Colour:   math.NewVec4(1, 1, 1, 1),
			})
		}
	}

	indices := make([]uint32, 0, xSegmentCount*ySegmentCount*6)
	row := xSegmentCount + 1
	for y := uint32(0); y < ySegmentCount; y++ {
		for x := uint32(0); x < xSegmentCount; x++ {
			v0 := y*row + x
			v1 := v0 + 1
			v2 := v0 + row
			v3 := v2 + 1
			indices = append(indices, v0, v3, v2, v0, v1, v3)
		}
	}
	return vertices, indices
}

type cubeFace struct {
	normal, right, up math.Vec3
}

var cubeFaces = [6]cubeFace{
	{normal: math.NewVec3(0, 0, 1), right: math.NewVec3(1, 0, 0), up: math.NewVec3(0, 1, 0)},   // front
	{normal: math.NewVec3(0, 0, -1), right: math.NewVec3(-1, 0, 0), up: math.NewVec3(0, 1, 0)}, // back
	{normal: math.NewVec3(-1, 0, 0), right: math.NewVec3(0, 0, 1), up: math.NewVec3(0, 1, 0)},  // left
	{normal: math.NewVec3(1, 0, 0), right: math.NewVec3(0, 0, -1), up: math.NewVec3(0, 1, 0)},  // right
	{normal: math.NewVec3(0, -1, 0), right: math.NewVec3(1, 0, 0), up: math.NewVec3(0, 0, 1)},  // bottom
	{normal: math.NewVec3(0, 1, 0), right: math.NewVec3(1, 0, 0), up: math.NewVec3(0, 0, -1)},  // top
}

// GenerateCube builds an axis aligned box centered at the origin, 4 vertices and 6 indices per side.
func GenerateCube(name string, width, height, depth, tileX, tileY float32, layout VertexLayout) *CPUMesh {
	vertices, indices := cubeGeometry(width, height, depth, tileX, tileY)
	return NewCPUMesh(name, NewCPUMeshBufferFromVertices(vertices, indices, layout))
}

func cubeGeometry(width, height, depth, tileX, tileY float32) ([]math.Vertex3D, []uint32) {
	if width == 0 {
		core.LogWarn("Width must be nonzero. Defaulting to one.")
		width = 1.0
	}
	if height == 0 {
		core.LogWarn("Height must be nonzero. Defaulting to one.")
		height = 1.0
	}
	if depth == 0 {
		core.LogWarn("Depth must be nonzero. Defaulting to one.")
		depth = 1.0
	}
	if tileX == 0 {
		tileX = 1.0
	}
	if tileY == 0 {
		tileY = 1.0
	}
	half := math.NewVec3(width*0.5, height*0.5, depth*0.5)
	scale := func(v math.Vec3) math.Vec3 {
		return math.NewVec3(v.X*half.X, v.Y*half.Y, v.Z*half.Z)
	}

	vertices := make([]math.Vertex3D, 0, 24)
	indices := make([]uint32, 0, 36)
	corners := [4]math.Vec2{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}}
	for i, f := range cubeFaces {
		for _, c := range corners {
			p := f.normal.Add(f.right.MulScalar(c.X)).Add(f.up.MulScalar(c.Y))
			vertices = append(vertices, math.Vertex3D{
				Position: scale(p),
				Normal:   f.normal,
				Texcoord: math.NewVec2((c.X+1)*0.5*tileX, (c.Y+1)*0.5*tileY),
				Colour:   math.NewVec4(1, 1, 1, 1),
			})
		}
		base := uint32(i * 4)
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return vertices, indices
}
