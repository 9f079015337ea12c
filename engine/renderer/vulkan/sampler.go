package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// Sampling past the base level is disabled by clamping the LOD below 0.5.
const (
	baseLevelMaxLod = 0.25
	fullChainMaxLod = 1000.0
)

var vkAddressModes = map[metadata.TextureWrap]vk.SamplerAddressMode{
	metadata.WrapRepeat:              vk.SamplerAddressModeRepeat,
	metadata.WrapClampToEdge:         vk.SamplerAddressModeClampToEdge,
	metadata.WrapClampToBorder:       vk.SamplerAddressModeClampToBorder,
	metadata.WrapMirror:              vk.SamplerAddressModeMirroredRepeat,
	metadata.WrapMirrorClampToEdge:   vk.SamplerAddressModeMirrorClampToEdge,
	metadata.WrapMirrorClampToBorder: vk.SamplerAddressModeMirrorClampToEdge,
}

// samplerFilters splits a min filter into the Vulkan filter, mipmap mode and LOD clamp.
func samplerFilters(f metadata.TextureMinFilter) (vk.Filter, vk.SamplerMipmapMode, float32) {
	switch f {
	case metadata.MinFilterNearestNoMip:
		return vk.FilterNearest, vk.SamplerMipmapModeNearest, baseLevelMaxLod
	case metadata.MinFilterLinearNoMip:
		return vk.FilterLinear, vk.SamplerMipmapModeNearest, baseLevelMaxLod
	case metadata.MinFilterNearestNearestMip:
		return vk.FilterNearest, vk.SamplerMipmapModeNearest, fullChainMaxLod
	case metadata.MinFilterLinearNearestMip:
		return vk.FilterLinear, vk.SamplerMipmapModeNearest, fullChainMaxLod
	case metadata.MinFilterNearestLinearMip:
		return vk.FilterNearest, vk.SamplerMipmapModeLinear, fullChainMaxLod
	}
	return vk.FilterLinear, vk.SamplerMipmapModeLinear, fullChainMaxLod
}

func samplerCreateInfo(params metadata.TextureSamplingParams, anisotropy uint8) vk.SamplerCreateInfo {
	minFilter, mipmapMode, maxLod := samplerFilters(params.MinFilter)
	magFilter := vk.FilterNearest
	if params.MagFilter == metadata.MagFilterLinear {
		magFilter = vk.FilterLinear
	}
	info := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               magFilter,
		MinFilter:               minFilter,
		MipmapMode:              mipmapMode,
		AddressModeU:            vkAddressModes[params.WrapU],
		AddressModeV:            vkAddressModes[params.WrapV],
		AddressModeW:            vkAddressModes[params.WrapW],
		MipLodBias:              params.LODBias,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MinLod:                  0,
		MaxLod:                  maxLod,
		BorderColor:             vk.BorderColorFloatTransparentBlack,
		UnnormalizedCoordinates: vk.False,
	}
	if anisotropy > 1 {
		info.AnisotropyEnable = vk.True
		info.MaxAnisotropy = float32(anisotropy)
	}
	return info
}

func (vr *VulkanRenderer) SamplerCreate(params metadata.TextureSamplingParams, anisotropy uint8) (metadata.SamplerHandle, error) {
	if anisotropy > vr.caps.MaxAnisotropy {
		anisotropy = vr.caps.MaxAnisotropy
	}
	info := samplerCreateInfo(params, anisotropy)
	var sampler vk.Sampler
	if err := check(vk.CreateSampler(vr.context.Device.LogicalDevice, &info, vr.context.Allocator, &sampler), "vkCreateSampler"); err != nil {
		return 0, err
	}
	if sampler == nil {
		return 0, errors.New("vkCreateSampler returned a null sampler")
	}
	vr.nextSampler++
	vr.samplers[vr.nextSampler] = sampler
	return vr.nextSampler, nil
}

func (vr *VulkanRenderer) SamplerDestroy(handle metadata.SamplerHandle) {
	sampler, ok := vr.samplers[handle]
	if !ok {
		return
	}
	delete(vr.samplers, handle)
	for i := range vr.stageSamplers {
		if vr.stageSamplers[i] == sampler {
			vr.stageSamplers[i] = nil
		}
	}
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)
	vk.DestroySampler(vr.context.Device.LogicalDevice, sampler, vr.context.Allocator)
}

func (vr *VulkanRenderer) SamplerBind(stage uint32, handle metadata.SamplerHandle) {
	if int(stage) >= len(vr.stageSamplers) {
		return
	}
	sampler := vr.samplers[handle]
	if vr.stageSamplers[stage] != sampler {
		vr.stageSamplers[stage] = sampler
		vr.texturesDirty = true
	}
}
