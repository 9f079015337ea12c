package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/resources"
)

// PipelineHandle is the InternalData of a pipeline usable with this backend. The
// application builds the pipeline against Context() and VertexInputState.
type PipelineHandle struct {
	Pipeline vk.Pipeline
	Layout   vk.PipelineLayout
	Topology vk.PrimitiveTopology
	// Set 0 layout with one combined image sampler per texture stage, binding = stage.
	// Null when the pipeline samples no textures.
	TextureSetLayout vk.DescriptorSetLayout
}

func vkTopology(p metadata.PrimitiveType) (vk.PrimitiveTopology, error) {
	switch p {
	case metadata.PrimitivePoints, metadata.PrimitivePointSprites:
		return vk.PrimitiveTopologyPointList, nil
	case metadata.PrimitiveLineStrip:
		return vk.PrimitiveTopologyLineStrip, nil
	case metadata.PrimitiveLines:
		return vk.PrimitiveTopologyLineList, nil
	case metadata.PrimitiveTriangleStrip:
		return vk.PrimitiveTopologyTriangleStrip, nil
	case metadata.PrimitiveTriangleFan:
		return vk.PrimitiveTopologyTriangleFan, nil
	case metadata.PrimitiveTriangles:
		return vk.PrimitiveTopologyTriangleList, nil
	case metadata.PrimitivePatches:
		return vk.PrimitiveTopologyPatchList, nil
	}
	return 0, errors.Newf("primitive %s has no vulkan topology", p)
}

func (vr *VulkanRenderer) PipelineBind(pipeline *resources.Pipeline) error {
	if pipeline == nil {
		vr.pipeline = nil
		return nil
	}
	handle, ok := pipeline.InternalData.(*PipelineHandle)
	if !ok {
		return errors.Newf("pipeline %q has no vulkan pipeline", pipeline.Name)
	}
	if handle == vr.pipeline {
		return nil
	}
	cmd, err := vr.frameCommands()
	if err != nil {
		return err
	}
	vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, handle.Pipeline)
	vr.pipeline = handle
	vr.texturesDirty = true
	return nil
}

// prepare checks the draw against the bound pipeline and binds vertex input and textures.
func (vr *VulkanRenderer) prepare(primitive metadata.PrimitiveType, indexType metadata.IndexType) (vk.CommandBuffer, error) {
	cmd, err := vr.frameCommands()
	if err != nil {
		return nil, err
	}
	if vr.pipeline == nil {
		return nil, errors.New("draw without a bound pipeline")
	}
	topology, err := vkTopology(primitive)
	if err != nil {
		return nil, err
	}
	if topology != vr.pipeline.Topology {
		return nil, errors.Newf("primitive %s does not match the bound pipeline topology", primitive)
	}
	if primitive == metadata.PrimitivePatches && !vr.caps.Tessellation {
		return nil, errors.New("patches drawn without tessellation support")
	}
	if err := vr.bindVertexBuffers(cmd, indexType); err != nil {
		return nil, err
	}
	if err := vr.bindTextures(cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

// bindTextures writes the stage textures into a fresh set from the frame pool.
func (vr *VulkanRenderer) bindTextures(cmd vk.CommandBuffer) error {
	if !vr.texturesDirty || vr.pipeline.TextureSetLayout == nil {
		return nil
	}
	device := vr.context.Device.LogicalDevice

	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     vr.descriptorPools[vr.context.CurrentFrame],
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{vr.pipeline.TextureSetLayout},
	}
	var set vk.DescriptorSet
	if err := check(vk.AllocateDescriptorSets(device, &allocInfo, &set), "vkAllocateDescriptorSets"); err != nil {
		return err
	}

	var writes []vk.WriteDescriptorSet
	for stage := range vr.stageTextures {
		img, sampler := vr.stageTextures[stage], vr.stageSamplers[stage]
		if img == nil || sampler == nil {
			continue
		}
		writes = append(writes, vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      uint32(stage),
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			PImageInfo: []vk.DescriptorImageInfo{{
				Sampler:     sampler,
				ImageView:   img.View,
				ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
			}},
		})
	}
	if len(writes) > 0 {
		vk.UpdateDescriptorSets(device, uint32(len(writes)), writes, 0, nil)
	}
	vk.CmdBindDescriptorSets(cmd, vk.PipelineBindPointGraphics, vr.pipeline.Layout, 0, 1, []vk.DescriptorSet{set}, 0, nil)
	vr.texturesDirty = false
	return nil
}

func instances(n uint32) uint32 {
	if n == 0 {
		return 1
	}
	return n
}

func (vr *VulkanRenderer) DrawIndexed(call metadata.DrawCall) error {
	cmd, err := vr.prepare(call.Primitive, call.IndexType)
	if err != nil {
		return err
	}
	firstIndex := uint32(call.IndexOffset / uint64(call.IndexType.Size()))
	vk.CmdDrawIndexed(cmd, call.Count, instances(call.InstanceCount), firstIndex, call.BaseVertex, call.BaseInstance)
	return nil
}

func (vr *VulkanRenderer) DrawArrays(call metadata.DrawCall) error {
	cmd, err := vr.prepare(call.Primitive, metadata.IndexTypeUnknown)
	if err != nil {
		return err
	}
	vk.CmdDraw(cmd, call.Count, instances(call.InstanceCount), call.First, call.BaseInstance)
	return nil
}

func (vr *VulkanRenderer) DrawIndexedIndirect(call metadata.IndirectDrawCall, commands *resources.Buffer) error {
	buf, err := bufferOf(commands)
	if err != nil {
		return err
	}
	cmd, err := vr.prepare(call.Primitive, call.IndexType)
	if err != nil {
		return err
	}
	if vr.caps.MultiDrawIndirect || call.DrawCount <= 1 {
		vk.CmdDrawIndexedIndirect(cmd, buf.handle, vk.DeviceSize(call.Offset), call.DrawCount, call.Stride)
		return nil
	}
	for i := uint32(0); i < call.DrawCount; i++ {
		offset := call.Offset + uint64(i)*uint64(call.Stride)
		vk.CmdDrawIndexedIndirect(cmd, buf.handle, vk.DeviceSize(offset), 1, call.Stride)
	}
	return nil
}
