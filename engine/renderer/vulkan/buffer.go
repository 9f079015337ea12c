package vulkan

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/resources"
)

// vulkanBuffer lives in host visible memory that stays mapped for its whole lifetime.
type vulkanBuffer struct {
	handle   vk.Buffer
	memory   vk.DeviceMemory
	size     uint64
	mapped   []byte
	coherent bool
}

const bufferUsage = vk.BufferUsageVertexBufferBit | vk.BufferUsageIndexBufferBit |
	vk.BufferUsageIndirectBufferBit | vk.BufferUsageTransferSrcBit | vk.BufferUsageTransferDstBit

func bufferOf(b *resources.Buffer) (*vulkanBuffer, error) {
	if b == nil {
		return nil, errors.New("nil buffer")
	}
	vb, ok := b.InternalData.(*vulkanBuffer)
	if !ok {
		return nil, errors.Newf("buffer %d has no Vulkan storage", b.ID)
	}
	return vb, nil
}

// memoryCandidates orders the memory property sets a buffer with flags may live in.
func memoryCandidates(flags metadata.BufferFlags) []vk.MemoryPropertyFlags {
	visible := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)
	coherent := visible | vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit)
	local := vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)

	if flags.Has(metadata.BufferFlagPersistent) && !flags.Has(metadata.BufferFlagCoherent) {
		// Cached memory makes reads through the mapping fast; flushes publish writes.
		cached := visible | vk.MemoryPropertyFlags(vk.MemoryPropertyHostCachedBit)
		return []vk.MemoryPropertyFlags{cached, visible, coherent}
	}
	if flags.Has(metadata.BufferFlagClientStorage) {
		return []vk.MemoryPropertyFlags{coherent}
	}
	return []vk.MemoryPropertyFlags{local | coherent, coherent}
}

func (vr *VulkanRenderer) BufferCreate(buffer *resources.Buffer, data []byte) error {
	if buffer.Size() == 0 {
		return errors.Newf("buffer %d has zero size", buffer.ID)
	}
	vb, err := vr.newBuffer(buffer.Size(), vk.BufferUsageFlags(bufferUsage), memoryCandidates(buffer.Flags())...)
	if err != nil {
		return err
	}
	copy(vb.mapped, data)
	if err := vr.flush(vb, 0, vb.size); err != nil {
		vr.destroyBuffer(vb)
		return err
	}

	buffer.InternalData = vb
	if buffer.Flags().Has(metadata.BufferFlagPersistent) {
		buffer.SetMapped(vb.mapped)
	}
	return nil
}

// newBuffer creates a buffer of size bytes in the first memory candidate the device
// offers and maps it.
func (vr *VulkanRenderer) newBuffer(size uint64, usage vk.BufferUsageFlags, candidates ...vk.MemoryPropertyFlags) (*vulkanBuffer, error) {
	context := vr.context
	device := context.Device.LogicalDevice

	vb := &vulkanBuffer{size: size}
	createInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}
	if err := check(vk.CreateBuffer(device, &createInfo, context.Allocator, &vb.handle), "vkCreateBuffer"); err != nil {
		return nil, err
	}

	var reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(device, vb.handle, &reqs)
	reqs.Deref()

	memory, props, err := context.allocateMemory(reqs, candidates...)
	if err != nil {
		vk.DestroyBuffer(device, vb.handle, context.Allocator)
		return nil, err
	}
	vb.memory = memory
	vb.coherent = props&vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit) != 0
	if err := check(vk.BindBufferMemory(device, vb.handle, vb.memory, 0), "vkBindBufferMemory"); err != nil {
		vr.destroyBuffer(vb)
		return nil, err
	}

	var ptr unsafe.Pointer
	if err := check(vk.MapMemory(device, vb.memory, 0, vk.DeviceSize(vk.WholeSize), 0, &ptr), "vkMapMemory"); err != nil {
		vr.destroyBuffer(vb)
		return nil, err
	}
	vb.mapped = unsafe.Slice((*byte)(ptr), size)
	return vb, nil
}

func (vr *VulkanRenderer) BufferWrite(buffer *resources.Buffer, offset uint64, data []byte) error {
	vb, err := bufferOf(buffer)
	if err != nil {
		return err
	}
	// The previous contents may still be read by frames in flight.
	if err := check(vk.DeviceWaitIdle(vr.context.Device.LogicalDevice), "vkDeviceWaitIdle"); err != nil {
		return err
	}
	copy(vb.mapped[offset:], data)
	return vr.flush(vb, offset, uint64(len(data)))
}

func (vr *VulkanRenderer) BufferRead(buffer *resources.Buffer, offset, size uint64) ([]byte, error) {
	vb, err := bufferOf(buffer)
	if err != nil {
		return nil, err
	}
	if err := check(vk.DeviceWaitIdle(vr.context.Device.LogicalDevice), "vkDeviceWaitIdle"); err != nil {
		return nil, err
	}
	if !vb.coherent {
		rng := vr.alignedRange(vb, offset, size)
		if err := check(vk.InvalidateMappedMemoryRanges(vr.context.Device.LogicalDevice, 1, []vk.MappedMemoryRange{rng}), "vkInvalidateMappedMemoryRanges"); err != nil {
			return nil, err
		}
	}
	out := make([]byte, size)
	copy(out, vb.mapped[offset:offset+size])
	return out, nil
}

func (vr *VulkanRenderer) BufferFlush(buffer *resources.Buffer, offset, size uint64) error {
	vb, err := bufferOf(buffer)
	if err != nil {
		return err
	}
	return vr.flush(vb, offset, size)
}

func (vr *VulkanRenderer) flush(vb *vulkanBuffer, offset, size uint64) error {
	if vb.coherent || size == 0 {
		return nil
	}
	rng := vr.alignedRange(vb, offset, size)
	return check(vk.FlushMappedMemoryRanges(vr.context.Device.LogicalDevice, 1, []vk.MappedMemoryRange{rng}), "vkFlushMappedMemoryRanges")
}

// alignedRange widens [offset, offset+size) to the device's non-coherent atom size.
func (vr *VulkanRenderer) alignedRange(vb *vulkanBuffer, offset, size uint64) vk.MappedMemoryRange {
	atom := uint64(vr.context.Device.Properties.Limits.NonCoherentAtomSize)
	if atom == 0 {
		atom = 1
	}
	start := offset / atom * atom
	end := (offset + size + atom - 1) / atom * atom
	rng := vk.MappedMemoryRange{
		SType:  vk.StructureTypeMappedMemoryRange,
		Memory: vb.memory,
		Offset: vk.DeviceSize(start),
		Size:   vk.DeviceSize(end - start),
	}
	if end >= vb.size {
		rng.Size = vk.DeviceSize(vk.WholeSize)
	}
	return rng
}

func (vr *VulkanRenderer) BufferDestroy(buffer *resources.Buffer) {
	vb, err := bufferOf(buffer)
	if err != nil {
		return
	}
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)
	vr.destroyBuffer(vb)
	buffer.InternalData = nil
}

func (vr *VulkanRenderer) destroyBuffer(vb *vulkanBuffer) {
	device := vr.context.Device.LogicalDevice
	if vb.mapped != nil {
		vk.UnmapMemory(device, vb.memory)
		vb.mapped = nil
	}
	if vb.memory != vk.NullDeviceMemory {
		vk.FreeMemory(device, vb.memory, vr.context.Allocator)
		vb.memory = vk.NullDeviceMemory
	}
	if vb.handle != vk.NullBuffer {
		vk.DestroyBuffer(device, vb.handle, vr.context.Allocator)
		vb.handle = vk.NullBuffer
	}
}
