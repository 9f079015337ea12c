package resources

import (
	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/** @brief Draw parameters of a MeshBuffer, fixed at creation. */
type MeshBufferDesc struct {
	Primitive     metadata.PrimitiveType
	IndexType     metadata.IndexType
	IndexCount    uint32
	BaseVertex    int32
	BaseInstance  uint32
	InstanceCount uint32
	/** @brief Byte offset of the first index inside the index buffer. */
	IndexBufferOffset uint64
	IndexMinBound     uint32
	IndexMaxBound     uint32
}

/**
 * @brief The minimal drawable unit: a topology and index range over a shared
 * VertexFormat. Only the bounding box and material change after creation.
 */
type MeshBuffer struct {
	RefCount
	desc        MeshBufferDesc
	format      *VertexFormat
	boundingBox math.Box3f
	material    Material
}

// NewMeshBuffer acquires format. An InstanceCount of zero is stored as one.
func NewMeshBuffer(desc MeshBufferDesc, format *VertexFormat) *MeshBuffer {
	if desc.InstanceCount == 0 {
		desc.InstanceCount = 1
	}
	if format != nil {
		format.Acquire()
	}
	mb := &MeshBuffer{
		desc:        desc,
		format:      format,
		boundingBox: math.EmptyBox[float32](),
		material:    DefaultMaterial(),
	}
	mb.init()
	mb.OnDestroy(func() {
		mb.material.Drop()
		mb.material = DefaultMaterial()
		if mb.format != nil {
			mb.format.Release()
			mb.format = nil
		}
	})
	return mb
}

func (mb *MeshBuffer) Desc() MeshBufferDesc { return mb.desc }
func (mb *MeshBuffer) Primitive() metadata.PrimitiveType { return mb.desc.Primitive }
func (mb *MeshBuffer) IndexType() metadata.IndexType { return mb.desc.IndexType }
func (mb *MeshBuffer) IndexCount() uint32 { return mb.desc.IndexCount }
func (mb *MeshBuffer) BaseVertex() int32 { return mb.desc.BaseVertex }
func (mb *MeshBuffer) BaseInstance() uint32 { return mb.desc.BaseInstance }
func (mb *MeshBuffer) InstanceCount() uint32 { return mb.desc.InstanceCount }
func (mb *MeshBuffer) IndexBufferOffset() uint64 { return mb.desc.IndexBufferOffset }
func (mb *MeshBuffer) IndexMinBound() uint32 { return mb.desc.IndexMinBound }
func (mb *MeshBuffer) IndexMaxBound() uint32 { return mb.desc.IndexMaxBound }
func (mb *MeshBuffer) Format() *VertexFormat { return mb.format }
func (mb *MeshBuffer) BoundingBox() math.Box3f { return mb.boundingBox }
func (mb *MeshBuffer) Material() Material { return mb.material }
func (mb *MeshBuffer) SetBoundingBox(box math.Box3f) { mb.boundingBox = box }

// SetMaterial replaces the material, acquiring the new textures before dropping the old ones.
func (mb *MeshBuffer) SetMaterial(m Material) {
	m.Retain()
	mb.material.Drop()
	mb.material = m
}

// Indexed reports whether the mesh buffer draws through an index buffer.
func (mb *MeshBuffer) Indexed() bool {
	return mb.format != nil && mb.format.IndexBuffer() != nil && mb.desc.IndexType != metadata.IndexTypeUnknown
}

// SubRange returns a mesh buffer over count indices of mb starting at index first. It shares
// the vertex format, index bounds and material of mb.
func (mb *MeshBuffer) SubRange(first, count uint32) (*MeshBuffer, error) {
	if mb.Destroyed() {
		return nil, errors.Wrap(core.ErrReleased, "mesh buffer")
	}
	if count == 0 || uint64(first)+uint64(count) > uint64(mb.desc.IndexCount) {
		return nil, errors.Wrapf(core.ErrIndexOutOfBounds, "range [%d, %d) of %d indices", first, uint64(first)+uint64(count), mb.desc.IndexCount)
	}
	desc := mb.desc
	desc.IndexCount = count
	if mb.Indexed() {
		desc.IndexBufferOffset += uint64(first) * uint64(desc.IndexType.Size())
	} else {
		desc.BaseVertex += int32(first)
	}
	sub := NewMeshBuffer(desc, mb.format)
	sub.boundingBox = mb.boundingBox
	sub.SetMaterial(mb.material)
	return sub, nil
}

func (mb *MeshBuffer) Release() {
	mb.drop()
}

/** @brief An ordered list of mesh buffers with their combined bounds. */
type Mesh struct {
	Name        string
	buffers     []*MeshBuffer
	boundingBox math.Box3f
}

func NewMesh(name string) *Mesh {
	return &Mesh{Name: name, boundingBox: math.EmptyBox[float32]()}
}

// AddMeshBuffer takes over the caller's reference to mb.
func (m *Mesh) AddMeshBuffer(mb *MeshBuffer) {
	m.buffers = append(m.buffers, mb)
	m.boundingBox = math.Union(m.boundingBox, mb.BoundingBox())
}

func (m *Mesh) MeshBuffers() []*MeshBuffer {
	return m.buffers
}

func (m *Mesh) MeshBufferCount() int {
	return len(m.buffers)
}

func (m *Mesh) BoundingBox() math.Box3f {
	return m.boundingBox
}

// RecalculateBoundingBox rebuilds the union from the current mesh buffer boxes.
func (m *Mesh) RecalculateBoundingBox() {
	m.boundingBox = math.EmptyBox[float32]()
	for _, mb := range m.buffers {
		m.boundingBox = math.Union(m.boundingBox, mb.BoundingBox())
	}
}

// Release drops the mesh's reference to every mesh buffer.
func (m *Mesh) Release() {
	for _, mb := range m.buffers {
		mb.Release()
	}
	m.buffers = nil
}
