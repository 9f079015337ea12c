package assets

import (
	"encoding/binary"

	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/resources"
)

/** @brief A block of CPU memory holding vertex or index data. */
type CPUBuffer struct {
	data []byte
}

func NewCPUBuffer(data []byte) *CPUBuffer {
	return &CPUBuffer{data: data}
}

func (b *CPUBuffer) Bytes() []byte {
	return b.data
}

func (b *CPUBuffer) Size() uint64 {
	return uint64(len(b.data))
}

/** @brief Where one vertex attribute lives inside a CPUBuffer. */
type AttributeMapping struct {
	Buffer     *CPUBuffer
	Components metadata.ComponentCount
	Type       metadata.ComponentType
	/** @brief Byte distance between vertices. 0 means tightly packed. */
	Stride uint32
	Offset uint64
}

func (a AttributeMapping) InUse() bool {
	return a.Buffer != nil
}

func (a AttributeMapping) Size() uint32 {
	return metadata.AttributeSize(a.Type, a.Components)
}

// EffectiveStride resolves a zero stride to the element size.
func (a AttributeMapping) EffectiveStride() uint32 {
	if a.Stride == 0 {
		return a.Size()
	}
	return a.Stride
}

/**
 * @brief CPU-side mesh buffer: attribute mappings over arbitrary, possibly shared
 * buffers plus an optional index buffer.
 */
type CPUMeshBuffer struct {
	Attributes [metadata.VertexAttributeCount]AttributeMapping

	Indices *CPUBuffer
	/** @brief Byte offset of the first index inside Indices. */
	IndexOffset uint64
	IndexType   metadata.IndexType
	/** @brief Number of indices, or of vertices when there is no index buffer. */
	IndexCount    uint32
	BaseVertex    int32
	BaseInstance  uint32
	InstanceCount uint32
	Primitive     metadata.PrimitiveType
	Material      resources.Material

	boundingBox math.Box3f
}

func NewCPUMeshBuffer() *CPUMeshBuffer {
	return &CPUMeshBuffer{
		InstanceCount: 1,
		Primitive:     metadata.PrimitiveTriangles,
		Material:      resources.DefaultMaterial(),
		boundingBox:   math.EmptyBox[float32](),
	}
}

func (mb *CPUMeshBuffer) SetAttribute(id metadata.VertexAttributeID, buf *CPUBuffer, components metadata.ComponentCount, ctype metadata.ComponentType, stride uint32, offset uint64) {
	if !id.Valid() {
		return
	}
	mb.Attributes[id] = AttributeMapping{
		Buffer:     buf,
		Components: components,
		Type:       ctype,
		Stride:     stride,
		Offset:     offset,
	}
}

func (mb *CPUMeshBuffer) SetIndices(buf *CPUBuffer, itype metadata.IndexType, count uint32) {
	mb.Indices = buf
	mb.IndexType = itype
	mb.IndexCount = count
	mb.IndexOffset = 0
}

// Indexed reports whether the mesh buffer reads vertices through an index buffer.
func (mb *CPUMeshBuffer) Indexed() bool {
	return mb.Indices != nil && mb.IndexType != metadata.IndexTypeUnknown
}

// Index returns the i-th index. ok is false when i lies outside the index buffer.
func (mb *CPUMeshBuffer) Index(i uint32) (uint32, bool) {
	if !mb.Indexed() {
		return i, true
	}
	size := uint64(mb.IndexType.Size())
	at := mb.IndexOffset + uint64(i)*size
	data := mb.Indices.Bytes()
	if at+size > uint64(len(data)) {
		return 0, false
	}
	if mb.IndexType == metadata.IndexType16 {
		return uint32(binary.LittleEndian.Uint16(data[at:])), true
	}
	return binary.LittleEndian.Uint32(data[at:]), true
}

// IndexBytes returns the index data covering IndexCount indices, nil if it does not fit.
func (mb *CPUMeshBuffer) IndexBytes() []byte {
	if !mb.Indexed() {
		return nil
	}
	end := mb.IndexOffset + uint64(mb.IndexCount)*uint64(mb.IndexType.Size())
	if end > mb.Indices.Size() {
		return nil
	}
	return mb.Indices.Bytes()[mb.IndexOffset:end]
}

// AttributeAt decodes attribute id of vertex into floats. Missing components are 0
// except w, which is 1. ok is false for unused slots and out of range reads.
func (mb *CPUMeshBuffer) AttributeAt(id metadata.VertexAttributeID, vertex uint32) ([4]float32, bool) {
	if !id.Valid() || !mb.Attributes[id].InUse() {
		return [4]float32{}, false
	}
	a := mb.Attributes[id]
	size := a.Size()
	if size == metadata.InvalidAttributeSize {
		return [4]float32{}, false
	}
	at := a.Offset + uint64(vertex)*uint64(a.EffectiveStride())
	data := a.Buffer.Bytes()
	if at+uint64(size) > uint64(len(data)) {
		return [4]float32{}, false
	}
	return decodeAttribute(data[at:at+uint64(size)], a.Type, a.Components), true
}

// ComputeBoundingBox returns the bounds of every referenced position without storing them.
func (mb *CPUMeshBuffer) ComputeBoundingBox() math.Box3f {
	box := math.EmptyBox[float32]()
	if !mb.Attributes[metadata.AttributePosition].InUse() {
		return box
	}
	for i := uint32(0); i < mb.IndexCount; i++ {
		ix, ok := mb.Index(i)
		if !ok {
			break
		}
		v := int64(ix) + int64(mb.BaseVertex)
		if v < 0 {
			continue
		}
		p, ok := mb.AttributeAt(metadata.AttributePosition, uint32(v))
		if !ok {
			continue
		}
		box = math.AddPoint(box, [3]float32{p[0], p[1], p[2]})
	}
	return box
}

func (mb *CPUMeshBuffer) RecalculateBoundingBox() {
	mb.boundingBox = mb.ComputeBoundingBox()
}

func (mb *CPUMeshBuffer) BoundingBox() math.Box3f {
	return mb.boundingBox
}

func (mb *CPUMeshBuffer) SetBoundingBox(box math.Box3f) {
	mb.boundingBox = box
}

/** @brief An ordered list of CPU mesh buffers. */
type CPUMesh struct {
	Name    string
	Buffers []*CPUMeshBuffer
}

func NewCPUMesh(name string, buffers ...*CPUMeshBuffer) *CPUMesh {
	return &CPUMesh{Name: name, Buffers: buffers}
}

func (m *CPUMesh) BoundingBox() math.Box3f {
	box := math.EmptyBox[float32]()
	for _, mb := range m.Buffers {
		box = math.Union(box, mb.BoundingBox())
	}
	return box
}

func (m *CPUMesh) RecalculateBoundingBox() {
	for _, mb := range m.Buffers {
		mb.RecalculateBoundingBox()
	}
}
