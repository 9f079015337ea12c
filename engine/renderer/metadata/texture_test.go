package metadata

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSamplingHashRoundTrip(t *testing.T) {
	params := []TextureSamplingParams{
		DefaultSamplingParams(),
		{},
		{MinFilter: MinFilterNearestLinearMip, MagFilter: MagFilterNearest, Anisotropy: 31,
			WrapU: WrapMirrorClampToBorder, WrapV: WrapClampToEdge, WrapW: WrapMirror,
			LODBias: -2.5, SeamlessCubeMap: true},
		{LODBias: 0.125, WrapW: WrapClampToBorder},
	}
	for _, p := range params {
		h := p.Hash(8)
		assert.Equal(t, p, DecodeSamplingParams(h))
		assert.Zero(t, h&^hashUsedBits, "hash spills outside the encoded fields")
		assert.NotEqual(t, NoSamplerHash, h)
	}
}

func TestSamplingHashDistinguishesEveryField(t *testing.T) {
	base := DefaultSamplingParams()
	variants := []TextureSamplingParams{base}
	mod := func(f func(p *TextureSamplingParams)) {
		p := base
		f(&p)
		variants = append(variants, p)
	}
	mod(func(p *TextureSamplingParams) { p.MinFilter = MinFilterLinearNearestMip })
	mod(func(p *TextureSamplingParams) { p.MagFilter = MagFilterNearest })
	mod(func(p *TextureSamplingParams) { p.Anisotropy = 3 })
	mod(func(p *TextureSamplingParams) { p.WrapU = WrapMirror })
	mod(func(p *TextureSamplingParams) { p.WrapV = WrapMirror })
	mod(func(p *TextureSamplingParams) { p.WrapW = WrapMirror })
	mod(func(p *TextureSamplingParams) { p.LODBias = 1 })
	mod(func(p *TextureSamplingParams) { p.SeamlessCubeMap = true })

	seen := map[uint64]int{}
	for i, v := range variants {
		h := v.Hash(4)
		prev, dup := seen[h]
		assert.False(t, dup, "variant %d collides with %d", i, prev)
		seen[h] = i
	}
}

func TestSamplingHashFoldsNegativeZeroBias(t *testing.T) {
	positive := DefaultSamplingParams()
	negative := positive
	negative.LODBias = float32(math.Copysign(0, -1))
	assert.True(t, math.Signbit(float64(negative.LODBias)))

	assert.Equal(t, positive.Hash(4), negative.Hash(4))
	assert.False(t, math.Signbit(float64(DecodeSamplingParams(negative.Hash(4)).LODBias)))
}

func TestSamplingHashDropsMipsForSingleLevelTextures(t *testing.T) {
	p := TextureSamplingParams{MinFilter: MinFilterLinearLinearMip, MagFilter: MagFilterLinear}
	single := DecodeSamplingParams(p.Hash(1))
	assert.Equal(t, MinFilterLinearNoMip, single.MinFilter)

	p.MinFilter = MinFilterNearestNearestMip
	assert.Equal(t, MinFilterNearestNoMip, DecodeSamplingParams(p.Hash(0)).MinFilter)
	assert.Equal(t, MinFilterNearestNearestMip, DecodeSamplingParams(p.Hash(2)).MinFilter)
}

func TestAnisotropyLevel(t *testing.T) {
	assert.Equal(t, uint8(0), TextureSamplingParams{}.AnisotropyLevel(16))
	assert.Equal(t, uint8(4), TextureSamplingParams{Anisotropy: 3}.AnisotropyLevel(16))
	assert.Equal(t, uint8(16), TextureSamplingParams{Anisotropy: 31}.AnisotropyLevel(16))
	assert.Equal(t, uint8(0), TextureSamplingParams{Anisotropy: 31}.AnisotropyLevel(1))
}
