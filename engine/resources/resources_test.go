package resources

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOps struct {
	destroyedBuffers  []uint32
	destroyedFormats  []uint32
	destroyedTextures []uint32
	writes            int
	flushes           int
	data              map[uint32][]byte
}

func newFakeOps() *fakeOps {
	return &fakeOps{data: map[uint32][]byte{}}
}

func (o *fakeOps) BufferWrite(b *Buffer, offset uint64, data []byte) error {
	o.writes++
	buf, ok := o.data[b.ID]
	if !ok {
		buf = make([]byte, b.Size())
		o.data[b.ID] = buf
	}
	copy(buf[offset:], data)
	return nil
}

func (o *fakeOps) BufferRead(b *Buffer, offset, size uint64) ([]byte, error) {
	buf := o.data[b.ID]
	out := make([]byte, size)
	if buf != nil {
		copy(out, buf[offset:offset+size])
	}
	return out, nil
}

func (o *fakeOps) BufferFlush(b *Buffer, offset, size uint64) error {
	o.flushes++
	return nil
}

func (o *fakeOps) BufferDestroy(b *Buffer) {
	o.destroyedBuffers = append(o.destroyedBuffers, b.ID)
}

func (o *fakeOps) VertexFormatDestroy(f *VertexFormat) {
	o.destroyedFormats = append(o.destroyedFormats, f.ID)
}

func (o *fakeOps) TextureDestroy(t *Texture) {
	o.destroyedTextures = append(o.destroyedTextures, t.ID)
}

func newBuffer(ops *fakeOps, id uint32, size uint64, desc metadata.BufferDesc) *Buffer {
	flags, _ := desc.Flags()
	return NewBuffer(id, size, desc, flags, ops)
}

func TestBufferReleaseDestroysOnce(t *testing.T) {
	ops := newFakeOps()
	b := newBuffer(ops, 1, 64, metadata.BufferDesc{})
	b.Acquire()
	require.Equal(t, int32(2), b.References())

	b.Release()
	assert.Empty(t, ops.destroyedBuffers)
	b.Release()
	b.Release()
	assert.Equal(t, []uint32{1}, ops.destroyedBuffers)
	assert.True(t, b.Destroyed())
}

func TestBufferSubDataBounds(t *testing.T) {
	ops := newFakeOps()
	b := newBuffer(ops, 1, 8, metadata.BufferDesc{CanUpdateSubData: true})

	require.NoError(t, b.SubData(4, []byte{1, 2, 3, 4}))
	err := b.SubData(5, []byte{1, 2, 3, 4})
	assert.True(t, errors.Is(err, core.ErrBufferOverflow))
	assert.Equal(t, 1, ops.writes)

	got, err := b.Read(4, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, got)

	_, err = b.Read(^uint64(0), 2)
	assert.True(t, errors.Is(err, core.ErrBufferOverflow))

	static := newBuffer(ops, 2, 8, metadata.BufferDesc{})
	assert.True(t, errors.Is(static.SubData(0, []byte{1}), core.ErrUnsupportedUsage))

	b.Release()
	assert.True(t, errors.Is(b.SubData(0, []byte{1}), core.ErrReleased))
}

func TestBufferFlushOnlyForNonCoherentPersistent(t *testing.T) {
	ops := newFakeOps()
	coherent := newBuffer(ops, 1, 16, metadata.BufferDesc{Usage: metadata.BufferUsageWrite, Persistent: true, Coherent: true})
	incoherent := newBuffer(ops, 2, 16, metadata.BufferDesc{Usage: metadata.BufferUsageWrite, Persistent: true})

	require.NoError(t, coherent.Flush(0, 16))
	assert.Equal(t, 0, ops.flushes)
	require.NoError(t, incoherent.Flush(0, 16))
	assert.Equal(t, 1, ops.flushes)
}

func TestVertexFormatRejectsInvalidSpecWithoutSideEffects(t *testing.T) {
	ops := newFakeOps()
	buf := newBuffer(ops, 1, 120, metadata.BufferDesc{})
	f := NewVertexFormat(1, ops)

	err := f.SetAttribute(metadata.AttributePosition, buf, metadata.ComponentsBGRA, metadata.ComponentFloat, 0, 0)
	assert.True(t, errors.Is(err, core.ErrInvalidAttributeSpec))
	assert.Equal(t, int32(1), buf.References())
	assert.False(t, f.Attribute(metadata.AttributePosition).InUse())

	err = f.SetAttribute(metadata.VertexAttributeID(16), buf, metadata.ComponentsThree, metadata.ComponentFloat, 0, 0)
	assert.True(t, errors.Is(err, core.ErrInvalidAttributeSpec))
	assert.Equal(t, int32(1), buf.References())
}

func TestVertexFormatSharesBufferOwnership(t *testing.T) {
	ops := newFakeOps()
	buf := newBuffer(ops, 1, 120, metadata.BufferDesc{})
	idx := newBuffer(ops, 2, 12, metadata.BufferDesc{})
	f := NewVertexFormat(7, ops)

	require.NoError(t, f.SetAttribute(metadata.AttributePosition, buf, metadata.ComponentsThree, metadata.ComponentFloat, 0, 0))
	require.NoError(t, f.SetAttribute(metadata.AttributeNormal, buf, metadata.ComponentsThree, metadata.ComponentFloat, 24, 12))
	f.SetIndexBuffer(idx)
	assert.Equal(t, uint32(12), f.Attribute(metadata.AttributePosition).Stride)
	assert.Equal(t, 2, f.AttributeCount())
	assert.True(t, f.Dirty())

	// the creator drops its references, the format keeps the buffers alive
	buf.Release()
	idx.Release()
	assert.Empty(t, ops.destroyedBuffers)

	f.Release()
	assert.Equal(t, []uint32{7}, ops.destroyedFormats)
	assert.ElementsMatch(t, []uint32{1, 2}, ops.destroyedBuffers)
}

func TestVertexFormatValidateRange(t *testing.T) {
	ops := newFakeOps()
	buf := newBuffer(ops, 1, 100*12, metadata.BufferDesc{})
	f := NewVertexFormat(1, ops)
	require.NoError(t, f.SetAttribute(metadata.AttributePosition, buf, metadata.ComponentsThree, metadata.ComponentFloat, 12, 0))

	assert.NoError(t, f.ValidateRange(0, 99))
	assert.True(t, errors.Is(f.ValidateRange(1, 99), core.ErrIndexOutOfBounds))
	assert.True(t, errors.Is(f.ValidateRange(-1, 0), core.ErrIndexOutOfBounds))

	// an offset shifts the window
	require.NoError(t, f.SetAttribute(metadata.AttributePosition, buf, metadata.ComponentsThree, metadata.ComponentFloat, 12, 12))
	assert.True(t, errors.Is(f.ValidateRange(0, 99), core.ErrIndexOutOfBounds))
	assert.NoError(t, f.ValidateRange(0, 98))
}

func TestVertexFormatSignatureAndOffsets(t *testing.T) {
	ops := newFakeOps()
	buf := newBuffer(ops, 3, 256, metadata.BufferDesc{})
	a := NewVertexFormat(1, ops)
	b := NewVertexFormat(2, ops)
	for _, f := range []*VertexFormat{a, b} {
		require.NoError(t, f.SetAttribute(metadata.AttributePosition, buf, metadata.ComponentsThree, metadata.ComponentFloat, 20, 0))
		require.NoError(t, f.SetAttribute(metadata.AttributeTexcoord0, buf, metadata.ComponentsTwo, metadata.ComponentHalfFloat, 20, 12))
	}
	assert.Equal(t, a.Signature(), b.Signature())
	assert.Equal(t, uint64(12), a.BindingOffsets()[metadata.AttributeTexcoord0])

	require.NoError(t, b.SetAttribute(metadata.AttributeTexcoord0, buf, metadata.ComponentsTwo, metadata.ComponentFloat, 20, 12))
	assert.NotEqual(t, a.Signature(), b.Signature())
	assert.Equal(t, a.BindingOffsets(), b.BindingOffsets())

	require.NoError(t, b.SetAttribute(metadata.AttributeTexcoord0, nil, metadata.ComponentsNone, metadata.ComponentFloat, 0, 0))
	assert.Equal(t, 1, b.AttributeCount())
}

func TestMeshBufferLifetime(t *testing.T) {
	ops := newFakeOps()
	buf := newBuffer(ops, 1, 36, metadata.BufferDesc{})
	f := NewVertexFormat(1, ops)
	require.NoError(t, f.SetAttribute(metadata.AttributePosition, buf, metadata.ComponentsThree, metadata.ComponentFloat, 0, 0))
	buf.Release()

	mb := NewMeshBuffer(MeshBufferDesc{Primitive: metadata.PrimitiveTriangles, IndexCount: 3}, f)
	f.Release()
	assert.Equal(t, uint32(1), mb.InstanceCount())
	assert.False(t, mb.Indexed())
	assert.True(t, math.IsEmpty(mb.BoundingBox()))

	tex := NewTexture(9, "checker", uuid.New(), ops)
	m := DefaultMaterial()
	m.Layers[0].Texture = tex
	mb.SetMaterial(m)
	tex.Release()
	assert.Empty(t, ops.destroyedTextures)
	assert.Equal(t, 1, mb.Material().TextureCount())

	mesh := NewMesh("tri")
	mb.SetBoundingBox(math.NewBox([3]float32{0, 0, 0}, [3]float32{1, 1, 0}))
	mesh.AddMeshBuffer(mb)
	assert.Equal(t, [3]float32{1, 1, 0}, mesh.BoundingBox().Max)

	mesh.Release()
	assert.Equal(t, []uint32{9}, ops.destroyedTextures)
	assert.Equal(t, []uint32{1}, ops.destroyedFormats)
	assert.Equal(t, []uint32{1}, ops.destroyedBuffers)
}

func TestMeshBufferSubRange(t *testing.T) {
	ops := newFakeOps()
	vb := newBuffer(ops, 1, 48, metadata.BufferDesc{})
	ib := newBuffer(ops, 2, 24, metadata.BufferDesc{})
	f := NewVertexFormat(1, ops)
	require.NoError(t, f.SetAttribute(metadata.AttributePosition, vb, metadata.ComponentsThree, metadata.ComponentFloat, 0, 0))
	f.SetIndexBuffer(ib)
	vb.Release()
	ib.Release()

	mb := NewMeshBuffer(MeshBufferDesc{
		Primitive:         metadata.PrimitiveTriangles,
		IndexType:         metadata.IndexType16,
		IndexCount:        12,
		IndexBufferOffset: 4,
		IndexMaxBound:     3,
	}, f)
	f.Release()

	sub, err := mb.SubRange(6, 6)
	require.NoError(t, err)
	assert.Same(t, mb.Format(), sub.Format())
	assert.Equal(t, uint32(6), sub.IndexCount())
	assert.Equal(t, uint64(16), sub.IndexBufferOffset())
	assert.Equal(t, uint32(3), sub.IndexMaxBound())

	_, err = mb.SubRange(10, 3)
	assert.True(t, errors.Is(err, core.ErrIndexOutOfBounds))
	_, err = mb.SubRange(0, 0)
	assert.True(t, errors.Is(err, core.ErrIndexOutOfBounds))

	mb.Release()
	assert.Empty(t, ops.destroyedFormats)
	sub.Release()
	assert.Equal(t, []uint32{1}, ops.destroyedFormats)
}
