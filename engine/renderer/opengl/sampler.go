package opengl

import (
	"github.com/cockroachdb/errors"
	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

var glMinFilters = map[metadata.TextureMinFilter]int32{
	metadata.MinFilterNearestNoMip:      gl.NEAREST,
	metadata.MinFilterLinearNoMip:       gl.LINEAR,
	metadata.MinFilterNearestNearestMip: gl.NEAREST_MIPMAP_NEAREST,
	metadata.MinFilterLinearNearestMip:  gl.LINEAR_MIPMAP_NEAREST,
	metadata.MinFilterNearestLinearMip:  gl.NEAREST_MIPMAP_LINEAR,
	metadata.MinFilterLinearLinearMip:   gl.LINEAR_MIPMAP_LINEAR,
}

var glWraps = map[metadata.TextureWrap]int32{
	metadata.WrapRepeat:              gl.REPEAT,
	metadata.WrapClampToEdge:         gl.CLAMP_TO_EDGE,
	metadata.WrapClampToBorder:       gl.CLAMP_TO_BORDER,
	metadata.WrapMirror:              gl.MIRRORED_REPEAT,
	metadata.WrapMirrorClampToEdge:   gl.MIRROR_CLAMP_TO_EDGE,
	metadata.WrapMirrorClampToBorder: gl.MIRROR_CLAMP_TO_EDGE,
}

func (r *OpenGLRenderer) SamplerCreate(params metadata.TextureSamplingParams, anisotropy uint8) (metadata.SamplerHandle, error) {
	var sampler uint32
	gl.CreateSamplers(1, &sampler)
	if sampler == 0 {
		return 0, errors.New("glCreateSamplers returned no object")
	}

	mag := int32(gl.NEAREST)
	if params.MagFilter == metadata.MagFilterLinear {
		mag = gl.LINEAR
	}
	gl.SamplerParameteri(sampler, gl.TEXTURE_MIN_FILTER, glMinFilters[params.MinFilter])
	gl.SamplerParameteri(sampler, gl.TEXTURE_MAG_FILTER, mag)
	gl.SamplerParameteri(sampler, gl.TEXTURE_WRAP_S, glWraps[params.WrapU])
	gl.SamplerParameteri(sampler, gl.TEXTURE_WRAP_T, glWraps[params.WrapV])
	gl.SamplerParameteri(sampler, gl.TEXTURE_WRAP_R, glWraps[params.WrapW])
	gl.SamplerParameterf(sampler, gl.TEXTURE_LOD_BIAS, params.LODBias)
	if anisotropy > 1 {
		gl.SamplerParameterf(sampler, glTextureMaxAnisotropy, float32(anisotropy))
	}
	return metadata.SamplerHandle(sampler), nil
}

func (r *OpenGLRenderer) SamplerDestroy(handle metadata.SamplerHandle) {
	sampler := uint32(handle)
	gl.DeleteSamplers(1, &sampler)
}

func (r *OpenGLRenderer) SamplerBind(stage uint32, handle metadata.SamplerHandle) {
	gl.BindSampler(stage, uint32(handle))
}
