package assets

import (
	"encoding/binary"
	"testing"

	"github.com/chewxy/math32"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCube(t *testing.T) {
	for _, layout := range []VertexLayout{LayoutSeparate, LayoutInterleaved} {
		mesh := GenerateCube("cube", 2, 4, 6, 1, 1, layout)
		require.Len(t, mesh.Buffers, 1)
		mb := mesh.Buffers[0]

		assert.Equal(t, metadata.IndexType16, mb.IndexType)
		assert.Equal(t, uint32(36), mb.IndexCount)
		assert.Equal(t, metadata.PrimitiveTriangles, mb.Primitive)

		box := mesh.BoundingBox()
		assert.Equal(t, [3]float32{-1, -2, -3}, box.Min)
		assert.Equal(t, [3]float32{1, 2, 3}, box.Max)

		n, ok := mb.AttributeAt(metadata.AttributeNormal, 0)
		require.True(t, ok)
		assert.Equal(t, [4]float32{0, 0, 1, 1}, n)
		_, ok = mb.AttributeAt(metadata.AttributeColor, 0)
		assert.False(t, ok)
	}
}

func TestInterleavedLayoutSharesOneBuffer(t *testing.T) {
	mb := GenerateCube("cube", 1, 1, 1, 1, 1, LayoutInterleaved).Buffers[0]
	pos := mb.Attributes[metadata.AttributePosition]
	uv := mb.Attributes[metadata.AttributeTexcoord0]
	assert.Same(t, pos.Buffer, uv.Buffer)
	assert.Equal(t, uint32(32), pos.EffectiveStride())
	assert.Equal(t, uint64(24*32), pos.Buffer.Size())

	sep := GenerateCube("cube", 1, 1, 1, 1, 1, LayoutSeparate).Buffers[0]
	assert.NotSame(t, sep.Attributes[metadata.AttributePosition].Buffer, sep.Attributes[metadata.AttributeNormal].Buffer)
	assert.Equal(t, uint32(12), sep.Attributes[metadata.AttributePosition].EffectiveStride())
}

func TestGeneratePlaneDefaultsZeroArguments(t *testing.T) {
	mb := GeneratePlane("plane", 0, 0, 0, 0, 0, 0, LayoutSeparate).Buffers[0]
	assert.Equal(t, uint32(6), mb.IndexCount)
	assert.Equal(t, [3]float32{-0.5, -0.5, 0}, mb.BoundingBox().Min)

	big := GeneratePlane("plane", 10, 10, 4, 2, 1, 1, LayoutSeparate).Buffers[0]
	assert.Equal(t, uint32(4*2*6), big.IndexCount)
	ix, ok := big.Index(big.IndexCount - 1)
	require.True(t, ok)
	assert.Equal(t, uint32(5*3-1), ix)
	_, ok = big.Index(big.IndexCount)
	assert.False(t, ok)
}

func TestEncodeIndicesWidth(t *testing.T) {
	itype, data := EncodeIndices([]uint32{0, 1, 65535})
	assert.Equal(t, metadata.IndexType16, itype)
	assert.Len(t, data, 6)

	itype, data = EncodeIndices([]uint32{0, 65536})
	assert.Equal(t, metadata.IndexType32, itype)
	assert.Equal(t, uint32(65536), binary.LittleEndian.Uint32(data[4:]))
}

func TestComputeBoundingBoxDoesNotStore(t *testing.T) {
	mb := GenerateCube("cube", 1, 1, 1, 1, 1, LayoutSeparate).Buffers[0]
	mb.SetBoundingBox(math.EmptyBox[float32]())
	box := mb.ComputeBoundingBox()
	assert.False(t, math.IsEmpty(box))
	assert.True(t, math.IsEmpty(mb.BoundingBox()))
}

func TestDecodeComponentTypes(t *testing.T) {
	half := make([]byte, 4)
	binary.LittleEndian.PutUint16(half[0:], Float32ToHalf(1.5))
	binary.LittleEndian.PutUint16(half[2:], Float32ToHalf(-2))
	v := decodeAttribute(half, metadata.ComponentHalfFloat, metadata.ComponentsTwo)
	assert.Equal(t, [4]float32{1.5, -2, 0, 1}, v)

	v = decodeAttribute([]byte{255, 0, 128, 64}, metadata.ComponentNormalizedUnsignedByte, metadata.ComponentsBGRA)
	assert.InDelta(t, 128.0/255, v[0], 1e-6)
	assert.InDelta(t, 1.0, v[2], 1e-6)
	assert.InDelta(t, 64.0/255, v[3], 1e-6)

	v = decodeAttribute([]byte{0x81, 0x7f}, metadata.ComponentNormalizedByte, metadata.ComponentsTwo)
	assert.Equal(t, float32(-1), v[0])
	assert.Equal(t, float32(1), v[1])

	// x = 511, y = -512, z = 1, w = -1
	packed := uint32(511) | uint32(0x200)<<10 | uint32(1)<<20 | uint32(3)<<30
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, packed)
	v = decodeAttribute(buf, metadata.ComponentInt2101010Rev, metadata.ComponentsFour)
	assert.Equal(t, [4]float32{511, -512, 1, -1}, v)
	v = decodeAttribute(buf, metadata.ComponentNormalizedInt2101010Rev, metadata.ComponentsFour)
	assert.Equal(t, [4]float32{1, -1, 1.0 / 511, -1}, v)
}

func TestHalfConversion(t *testing.T) {
	for _, f := range []float32{0, 1, -1, 0.5, 65504, 6.1035156e-05, 5.9604645e-08} {
		assert.Equal(t, f, HalfToFloat32(Float32ToHalf(f)), "value %v", f)
	}
	assert.True(t, math32.IsInf(HalfToFloat32(Float32ToHalf(1e6)), 1))
	assert.True(t, math32.IsNaN(HalfToFloat32(0x7e00)))
}
