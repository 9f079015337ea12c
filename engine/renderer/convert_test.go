package renderer

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/resources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, b *resources.Buffer) []byte {
	t.Helper()
	data, err := b.Read(0, b.Size())
	require.NoError(t, err)
	return data
}

func TestInterleaveAttributesPacksOneVertexBuffer(t *testing.T) {
	d, _ := newTestDriver(t)
	src, data := separateMeshBuffer(100)
	indices := setIndices(src, sequence(0, 100), metadata.IndexType16)

	mesh, report, err := d.CreateGPUMeshFromCPU(assets.NewCPUMesh("m", src), PackingInterleaveAttributes)
	require.NoError(t, err)
	defer mesh.Release()
	assert.Equal(t, 1, report.Converted)
	assert.Empty(t, report.Skipped)

	mb := mesh.MeshBuffers()[0]
	f := mb.Format()
	vb := f.Attribute(metadata.AttributePosition).Buffer
	require.NotNil(t, vb)
	assert.Equal(t, uint64(3200), vb.Size())
	assert.Same(t, vb, f.Attribute(metadata.AttributeNormal).Buffer)
	assert.Same(t, vb, f.Attribute(metadata.AttributeTexcoord0).Buffer)
	assert.Equal(t, uint64(0), f.Attribute(metadata.AttributePosition).Offset)
	// packed in attribute ID order: position, texcoord0, normal
	assert.Equal(t, uint64(12), f.Attribute(metadata.AttributeTexcoord0).Offset)
	assert.Equal(t, uint64(20), f.Attribute(metadata.AttributeNormal).Offset)
	assert.Equal(t, uint32(32), f.Attribute(metadata.AttributeNormal).Stride)

	ib := f.IndexBuffer()
	require.NotNil(t, ib)
	assert.NotSame(t, vb, ib)
	assert.Equal(t, indices, readAll(t, ib))
	assert.Equal(t, metadata.IndexType16, mb.IndexType())
	assert.Equal(t, uint64(0), mb.IndexBufferOffset())
	assert.Equal(t, uint32(99), mb.IndexMaxBound())

	packed := readAll(t, vb)
	v7 := packed[7*32 : 8*32]
	assert.Equal(t, data[0][7*12:8*12], v7[0:12])
	assert.Equal(t, data[2][7*8:8*8], v7[12:20])
	assert.Equal(t, data[1][7*12:8*12], v7[20:32])
}

func TestInterleaveAllAppendsIndices(t *testing.T) {
	d, _ := newTestDriver(t)
	src, _ := separateMeshBuffer(100)
	indices := setIndices(src, sequence(0, 100), metadata.IndexType16)

	mb, err := d.CreateGPUMeshBufferFromCPU(src, PackingInterleaveAll)
	require.NoError(t, err)
	defer mb.Release()

	f := mb.Format()
	vb := f.Attribute(metadata.AttributePosition).Buffer
	assert.Same(t, vb, f.IndexBuffer())
	assert.Equal(t, uint64(3400), vb.Size())
	assert.Equal(t, uint64(3200), mb.IndexBufferOffset())
	assert.Equal(t, indices, readAll(t, vb)[3200:])
}

func TestInterleaveAllAlignsIndexOffset(t *testing.T) {
	d, _ := newTestDriver(t)
	pos := floats(0, 0, 0, 1, 0, 0, 0, 1, 0)
	colors := []byte{255, 0, 0, 0, 255, 0, 0, 0, 255}
	src := assets.NewCPUMeshBuffer()
	src.SetAttribute(metadata.AttributePosition, assets.NewCPUBuffer(pos), metadata.ComponentsThree, metadata.ComponentFloat, 0, 0)
	src.SetAttribute(metadata.AttributeColor, assets.NewCPUBuffer(colors), metadata.ComponentsThree, metadata.ComponentNormalizedUnsignedByte, 0, 0)
	indices := setIndices(src, []uint32{0, 1, 2}, metadata.IndexType16)

	mb, err := d.CreateGPUMeshBufferFromCPU(src, PackingInterleaveAll)
	require.NoError(t, err)
	defer mb.Release()

	// three 15-byte vertices end at 45, indices start on the next 2-byte boundary
	assert.Equal(t, uint32(15), mb.Format().Attribute(metadata.AttributePosition).Stride)
	assert.Equal(t, uint64(46), mb.IndexBufferOffset())
	data := readAll(t, mb.Format().IndexBuffer())
	require.Len(t, data, 52)
	assert.Equal(t, pos[0:12], data[0:12])
	assert.Equal(t, colors[0:3], data[12:15])
	assert.Equal(t, colors[6:9], data[42:45])
	assert.Zero(t, data[45])
	assert.Equal(t, indices, data[46:])
}

func TestMirrorLayoutCopiesSourceBuffers(t *testing.T) {
	d, _ := newTestDriver(t)
	src, data := separateMeshBuffer(10)

	mb, err := d.CreateGPUMeshBufferFromCPU(src, PackingMirrorLayout)
	require.NoError(t, err)
	defer mb.Release()

	f := mb.Format()
	assert.Nil(t, f.IndexBuffer())
	assert.False(t, mb.Indexed())
	ids := []metadata.VertexAttributeID{metadata.AttributePosition, metadata.AttributeNormal, metadata.AttributeTexcoord0}
	for i, id := range ids {
		slot := f.Attribute(id)
		require.True(t, slot.InUse())
		assert.Equal(t, data[i], readAll(t, slot.Buffer), "attribute %d", id)
		assert.Equal(t, src.Attributes[id].EffectiveStride(), slot.Stride)
		assert.Equal(t, uint64(0), slot.Offset)
	}
	assert.NotSame(t, f.Attribute(metadata.AttributePosition).Buffer, f.Attribute(metadata.AttributeNormal).Buffer)
}

func TestMirrorLayoutKeepsSharedBuffersShared(t *testing.T) {
	d, _ := newTestDriver(t)
	src := assets.GenerateCube("cube", 1, 1, 1, 1, 1, assets.LayoutInterleaved).Buffers[0]

	mb, err := d.CreateGPUMeshBufferFromCPU(src, PackingMirrorLayout)
	require.NoError(t, err)
	defer mb.Release()

	f := mb.Format()
	pos := f.Attribute(metadata.AttributePosition)
	assert.Same(t, pos.Buffer, f.Attribute(metadata.AttributeNormal).Buffer)
	assert.Same(t, pos.Buffer, f.Attribute(metadata.AttributeTexcoord0).Buffer)
	assert.Equal(t, uint32(32), pos.Stride)
	// packed in attribute ID order: position, texcoord0, normal
	assert.Equal(t, uint64(12), f.Attribute(metadata.AttributeTexcoord0).Offset)
	assert.Equal(t, uint64(20), f.Attribute(metadata.AttributeNormal).Offset)
	assert.Equal(t, src.Attributes[metadata.AttributePosition].Buffer.Bytes(), readAll(t, pos.Buffer))
	assert.Equal(t, mb.BoundingBox(), src.ComputeBoundingBox())
}

func TestConversionRebasesIndices(t *testing.T) {
	d, _ := newTestDriver(t)
	src, data := separateMeshBuffer(1010)
	setIndices(src, []uint32{1000, 1002, 1001}, metadata.IndexType32)

	for _, policy := range []PackingPolicy{PackingMirrorLayout, PackingInterleaveAttributes} {
		mb, err := d.CreateGPUMeshBufferFromCPU(src, policy)
		require.NoError(t, err, policy.String())

		assert.Equal(t, metadata.IndexType16, mb.IndexType(), policy.String())
		assert.Equal(t, uint32(0), mb.IndexMinBound())
		assert.Equal(t, uint32(2), mb.IndexMaxBound())
		assert.Equal(t, []byte{0, 0, 2, 0, 1, 0}, readAll(t, mb.Format().IndexBuffer()), policy.String())

		pos := mb.Format().Attribute(metadata.AttributePosition)
		got := readAll(t, pos.Buffer)
		if policy == PackingMirrorLayout {
			assert.Equal(t, data[0][1000*12:1003*12], got)
		} else {
			assert.Len(t, got, 3*32)
			assert.Equal(t, data[0][1000*12:1001*12], got[:12])
		}
		mb.Release()
	}
	assert.Equal(t, 0, d.buffers.Live())
}

func TestConversionWidensIndicesWhenNeeded(t *testing.T) {
	d, _ := newTestDriver(t)
	n := 70001
	mb := assets.NewCPUMeshBuffer()
	mb.SetAttribute(metadata.AttributePosition, assets.NewCPUBuffer(make([]byte, n*12)), metadata.ComponentsThree, metadata.ComponentFloat, 0, 0)
	setIndices(mb, []uint32{0, 70000, 1}, metadata.IndexType32)

	gpu, err := d.CreateGPUMeshBufferFromCPU(mb, PackingInterleaveAttributes)
	require.NoError(t, err)
	defer gpu.Release()
	assert.Equal(t, metadata.IndexType32, gpu.IndexType())
	assert.Equal(t, uint32(70000), gpu.IndexMaxBound())
	assert.Equal(t, uint64(12), gpu.Format().IndexBuffer().Size())
}

func TestConversionSkipsInvalidMeshBuffers(t *testing.T) {
	d, _ := newTestDriver(t)

	outOfBounds, _ := separateMeshBuffer(100)
	setIndices(outOfBounds, []uint32{0, 1, 100}, metadata.IndexType16)

	badSpec, _ := separateMeshBuffer(4)
	badSpec.Attributes[metadata.AttributeColor] = assets.AttributeMapping{
		Buffer:     badSpec.Attributes[metadata.AttributePosition].Buffer,
		Components: metadata.ComponentsBGRA,
		Type:       metadata.ComponentFloat,
	}

	empty := assets.NewCPUMeshBuffer()
	good, _ := separateMeshBuffer(3)

	mesh, report, err := d.CreateGPUMeshFromCPU(assets.NewCPUMesh("m", outOfBounds, badSpec, empty, good), PackingInterleaveAttributes)
	require.NoError(t, err)
	defer mesh.Release()

	assert.Equal(t, 1, report.Converted)
	assert.Equal(t, 1, mesh.MeshBufferCount())
	require.Len(t, report.Skipped, 3)
	assert.Equal(t, 0, report.Skipped[0].Index)
	assert.True(t, errors.Is(report.Skipped[0].Err, core.ErrIndexOutOfBounds))
	assert.True(t, errors.Is(report.Skipped[1].Err, core.ErrInvalidAttributeSpec))
	assert.True(t, errors.Is(report.Skipped[2].Err, core.ErrEmptyMeshBuffer))

	// only the good mesh buffer owns GPU objects
	assert.Equal(t, 1, d.formats.Live())
	assert.Equal(t, 1, d.buffers.Live())
}

func TestConversionRejectsUnknownPolicy(t *testing.T) {
	d, _ := newTestDriver(t)
	src, _ := separateMeshBuffer(3)

	mesh, _, err := d.CreateGPUMeshFromCPU(assets.NewCPUMesh("m", src, src), PackingPolicy(42))
	assert.Nil(t, mesh)
	assert.True(t, errors.Is(err, core.ErrUnsupportedPacking))
	assert.Equal(t, 0, d.formats.Live())
	assert.Equal(t, 0, d.buffers.Live())

	// the policy is checked before any mesh buffer, even when none would convert
	mesh, report, err := d.CreateGPUMeshFromCPU(assets.NewCPUMesh("broken", assets.NewCPUMeshBuffer()), PackingPolicy(42))
	assert.Nil(t, mesh)
	assert.True(t, errors.Is(err, core.ErrUnsupportedPacking))
	assert.Zero(t, report.Converted)
	assert.Empty(t, report.Skipped)

	mb, err := d.CreateGPUMeshBufferFromCPU(assets.NewCPUMeshBuffer(), PackingPolicy(-1))
	assert.Nil(t, mb)
	assert.True(t, errors.Is(err, core.ErrUnsupportedPacking))
}

func TestConversionLeavesSourceUntouched(t *testing.T) {
	d, _ := newTestDriver(t)
	src, data := separateMeshBuffer(5)
	setIndices(src, []uint32{4, 3, 2}, metadata.IndexType16)
	before := append([]byte(nil), src.Indices.Bytes()...)

	mb, err := d.CreateGPUMeshBufferFromCPU(src, PackingInterleaveAll)
	require.NoError(t, err)
	mb.Release()

	assert.Equal(t, before, src.Indices.Bytes())
	assert.Equal(t, data[0], src.Attributes[metadata.AttributePosition].Buffer.Bytes())
}

func TestParsePackingPolicy(t *testing.T) {
	for _, p := range []PackingPolicy{PackingMirrorLayout, PackingInterleaveAttributes, PackingInterleaveAll} {
		got, err := ParsePackingPolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	_, err := ParsePackingPolicy("zigzag")
	assert.True(t, errors.Is(err, core.ErrUnsupportedPacking))
}
