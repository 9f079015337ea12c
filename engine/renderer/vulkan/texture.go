package vulkan

import (
	"image"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/resources"
)

func textureImageOf(t *resources.Texture) (*VulkanImage, bool) {
	if t == nil {
		return nil, false
	}
	img, ok := t.InternalData.(*VulkanImage)
	return img, ok
}

func (vr *VulkanRenderer) TextureCreate(texture *resources.Texture, mips []*image.RGBA) error {
	if len(mips) == 0 {
		return errors.Newf("texture %q has no image data", texture.Name)
	}
	if texture.Type != metadata.TextureType2d {
		return errors.Newf("texture %q: only 2D textures are supported", texture.Name)
	}

	// Pack every level into one staging buffer, tightly.
	var total uint64
	for _, mip := range mips {
		total += uint64(mip.Rect.Dx() * mip.Rect.Dy() * 4)
	}
	hostCoherent := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	staging, err := vr.newBuffer(total, vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit), hostCoherent)
	if err != nil {
		return err
	}
	defer vr.destroyBuffer(staging)

	regions := make([]vk.BufferImageCopy, len(mips))
	var offset uint64
	for level, mip := range mips {
		w, h := mip.Rect.Dx(), mip.Rect.Dy()
		rowBytes := w * 4
		for y := 0; y < h; y++ {
			row := mip.Pix[y*mip.Stride : y*mip.Stride+rowBytes]
			copy(staging.mapped[offset+uint64(y*rowBytes):], row)
		}
		regions[level] = vk.BufferImageCopy{
			BufferOffset: vk.DeviceSize(offset),
			ImageSubresource: vk.ImageSubresourceLayers{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				MipLevel:   uint32(level),
				LayerCount: 1,
			},
			ImageExtent: vk.Extent3D{Width: uint32(w), Height: uint32(h), Depth: 1},
		}
		offset += uint64(rowBytes * h)
	}

	base := mips[0].Rect
	img, err := ImageCreate(
		vr.context,
		uint32(base.Dx()),
		uint32(base.Dy()),
		uint32(len(mips)),
		vk.FormatR8g8b8a8Unorm,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit),
		vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return err
	}

	err = runSingleUse(vr.context, func(cmd vk.CommandBuffer) {
		img.TransitionLayout(cmd, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
		vk.CmdCopyBufferToImage(cmd, staging.handle, img.Handle, vk.ImageLayoutTransferDstOptimal, uint32(len(regions)), regions)
		img.TransitionLayout(cmd, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
	})
	if err != nil {
		img.Destroy(vr.context)
		return err
	}

	texture.Width = img.Width
	texture.Height = img.Height
	texture.MipLevels = img.MipLevels
	texture.InternalData = img
	return nil
}

func (vr *VulkanRenderer) TextureDestroy(texture *resources.Texture) {
	img, ok := textureImageOf(texture)
	if !ok {
		return
	}
	for i := range vr.stageTextures {
		if vr.stageTextures[i] == img {
			vr.stageTextures[i] = nil
		}
	}
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)
	img.Destroy(vr.context)
	texture.InternalData = nil
}

func (vr *VulkanRenderer) TextureBind(stage uint32, texture *resources.Texture) {
	if int(stage) >= len(vr.stageTextures) {
		return
	}
	img, _ := textureImageOf(texture)
	if vr.stageTextures[stage] != img {
		vr.stageTextures[stage] = img
		vr.texturesDirty = true
	}
}
