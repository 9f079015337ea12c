package metadata

import (
	"math"
)

const (
	/** @brief The default texture name. */
	DEFAULT_TEXTURE_NAME string = "default"
	/** @brief The default diffuse texture name. */
	DEFAULT_DIFFUSE_TEXTURE_NAME string = "default_DIFF"
	/** @brief The default normal texture name. */
	DEFAULT_NORMAL_TEXTURE_NAME string = "default_NORM"
)

/**
 * @brief Represents various types of textures.
 */
type TextureType int

const (
	/** @brief A standard two-dimensional texture. */
	TextureType2d TextureType = iota
	/** @brief A cube texture, used for cubemaps. */
	TextureTypeCube
)

/** @brief Minification filter, including how mip levels are picked. */
type TextureMinFilter uint8

const (
	MinFilterNearestNoMip TextureMinFilter = iota
	MinFilterLinearNoMip
	MinFilterNearestNearestMip
	MinFilterLinearNearestMip
	MinFilterNearestLinearMip
	MinFilterLinearLinearMip
)

// UsesMips reports whether the filter samples from more than the base level.
func (f TextureMinFilter) UsesMips() bool {
	return f >= MinFilterNearestNearestMip
}

// withoutMips maps a mip filter onto the matching base-level filter.
func (f TextureMinFilter) withoutMips() TextureMinFilter {
	switch f {
	case MinFilterNearestNearestMip, MinFilterNearestLinearMip:
		return MinFilterNearestNoMip
	case MinFilterLinearNearestMip, MinFilterLinearLinearMip:
		return MinFilterLinearNoMip
	}
	return f
}

/** @brief Magnification filter. */
type TextureMagFilter uint8

const (
	MagFilterNearest TextureMagFilter = iota
	MagFilterLinear
)

/** @brief Texture coordinate wrapping per axis. */
type TextureWrap uint8

const (
	WrapRepeat TextureWrap = iota
	WrapClampToEdge
	WrapClampToBorder
	WrapMirror
	WrapMirrorClampToEdge
	WrapMirrorClampToBorder
)

/**
 * @brief How a texture stage samples its texture.
 * Every field fits a fixed bit range so that Hash is a lossless encoding.
 */
type TextureSamplingParams struct {
	MinFilter TextureMinFilter
	MagFilter TextureMagFilter
	/** @brief 0 disables anisotropic filtering, n enables (n+1)x. At most 31. */
	Anisotropy uint8
	WrapU      TextureWrap
	WrapV      TextureWrap
	WrapW      TextureWrap
	LODBias    float32
	/** @brief Filter across cube map faces. */
	SeamlessCubeMap bool
}

func DefaultSamplingParams() TextureSamplingParams {
	return TextureSamplingParams{
		MinFilter: MinFilterLinearLinearMip,
		MagFilter: MagFilterLinear,
	}
}

/** @brief Value no real sampling parameter encoding can produce. Marks "no sampler bound". */
const NoSamplerHash uint64 = math.MaxUint64

const (
	hashMinFilterShift = 0
	hashMagFilterShift = 3
	hashAnisoShift     = 4
	hashWrapUShift     = 9
	hashWrapVShift     = 12
	hashWrapWShift     = 15
	hashSeamlessShift  = 18
	hashLODBiasShift   = 32

	hashMask3    = 0x7
	hashMask5    = 0x1f
	maxAniso     = hashMask5
	hashUsedBits = (uint64(1)<<19 - 1) | (uint64(math.MaxUint32) << hashLODBiasShift)
)

// Hash packs the parameters as they apply to a texture with mipLevels levels into 64 bits.
// Textures without a mip chain fall back to the base-level variant of a mip filter.
func (p TextureSamplingParams) Hash(mipLevels uint32) uint64 {
	minFilter := p.MinFilter
	if mipLevels <= 1 {
		minFilter = minFilter.withoutMips()
	}
	aniso := p.Anisotropy
	if aniso > maxAniso {
		aniso = maxAniso
	}
	h := uint64(minFilter&hashMask3) << hashMinFilterShift
	h |= uint64(p.MagFilter&1) << hashMagFilterShift
	h |= uint64(aniso) << hashAnisoShift
	h |= uint64(p.WrapU&hashMask3) << hashWrapUShift
	h |= uint64(p.WrapV&hashMask3) << hashWrapVShift
	h |= uint64(p.WrapW&hashMask3) << hashWrapWShift
	if p.SeamlessCubeMap {
		h |= 1 << hashSeamlessShift
	}
	bias := p.LODBias
	if bias == 0 {
		// -0 and +0 bias the same
		bias = 0
	}
	h |= uint64(math.Float32bits(bias)) << hashLODBiasShift
	return h
}

// DecodeSamplingParams inverts Hash. Backends build sampler objects from the decoded value.
func DecodeSamplingParams(h uint64) TextureSamplingParams {
	return TextureSamplingParams{
		MinFilter:       TextureMinFilter(h >> hashMinFilterShift & hashMask3),
		MagFilter:       TextureMagFilter(h >> hashMagFilterShift & 1),
		Anisotropy:      uint8(h >> hashAnisoShift & hashMask5),
		WrapU:           TextureWrap(h >> hashWrapUShift & hashMask3),
		WrapV:           TextureWrap(h >> hashWrapVShift & hashMask3),
		WrapW:           TextureWrap(h >> hashWrapWShift & hashMask3),
		SeamlessCubeMap: h>>hashSeamlessShift&1 == 1,
		LODBias:         math.Float32frombits(uint32(h >> hashLODBiasShift)),
	}
}

// AnisotropyLevel returns the filtering level to program, clamped to deviceMax.
// 0 means anisotropic filtering stays disabled.
func (p TextureSamplingParams) AnisotropyLevel(deviceMax uint8) uint8 {
	if p.Anisotropy == 0 || deviceMax <= 1 {
		return 0
	}
	return min(min(p.Anisotropy, maxAniso)+1, deviceMax)
}
