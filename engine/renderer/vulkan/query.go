package vulkan

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/resources"
)

// vulkanQuery owns a single-query occlusion pool. A query may be used once per frame.
type vulkanQuery struct {
	pool vk.QueryPool
	// Frame number the query was ended in. Results are unavailable until that frame is submitted.
	endedFrame uint64
	used       bool
	// Queued for reset at the next BeginFrame.
	queued bool
}

func queryOf(q *resources.OcclusionQuery) (*vulkanQuery, error) {
	vq, ok := q.InternalData.(*vulkanQuery)
	if !ok {
		return nil, errors.Newf("occlusion query %d has no vulkan pool", q.ID)
	}
	return vq, nil
}

func (vr *VulkanRenderer) QueryCreate(q *resources.OcclusionQuery) error {
	context := vr.context
	createInfo := vk.QueryPoolCreateInfo{
		SType:      vk.StructureTypeQueryPoolCreateInfo,
		QueryType:  vk.QueryTypeOcclusion,
		QueryCount: 1,
	}
	vq := &vulkanQuery{}
	if err := check(vk.CreateQueryPool(context.Device.LogicalDevice, &createInfo, context.Allocator, &vq.pool), "vkCreateQueryPool"); err != nil {
		return err
	}
	if err := vr.resetQuery(vq); err != nil {
		vk.DestroyQueryPool(context.Device.LogicalDevice, vq.pool, context.Allocator)
		return err
	}
	q.InternalData = vq
	return nil
}

// resetQuery resets the pool right away on a one-time command buffer.
func (vr *VulkanRenderer) resetQuery(vq *vulkanQuery) error {
	err := runSingleUse(vr.context, func(cmd vk.CommandBuffer) {
		vk.CmdResetQueryPool(cmd, vq.pool, 0, 1)
	})
	if err != nil {
		return err
	}
	vq.used = false
	vq.queued = false
	return nil
}

func (vr *VulkanRenderer) QueryDestroy(q *resources.OcclusionQuery) {
	vq, err := queryOf(q)
	if err != nil {
		return
	}
	for i, pending := range vr.pendingResets {
		if pending == vq {
			vr.pendingResets = append(vr.pendingResets[:i], vr.pendingResets[i+1:]...)
			break
		}
	}
	context := vr.context
	vk.DeviceWaitIdle(context.Device.LogicalDevice)
	vk.DestroyQueryPool(context.Device.LogicalDevice, vq.pool, context.Allocator)
	q.InternalData = nil
}

func (vr *VulkanRenderer) QueryBegin(q *resources.OcclusionQuery) error {
	vq, err := queryOf(q)
	if err != nil {
		return err
	}
	cmd, err := vr.frameCommands()
	if err != nil {
		return err
	}
	// Reused before the frame-start reset could run; the render pass forbids an inline reset.
	if vq.used {
		if err := vr.resetQuery(vq); err != nil {
			return err
		}
	}
	var flags vk.QueryControlFlags
	if !q.Binary {
		flags = vk.QueryControlFlags(vk.QueryControlPreciseBit)
	}
	vk.CmdBeginQuery(cmd, vq.pool, 0, flags)
	return nil
}

func (vr *VulkanRenderer) QueryEnd(q *resources.OcclusionQuery) error {
	vq, err := queryOf(q)
	if err != nil {
		return err
	}
	cmd, err := vr.frameCommands()
	if err != nil {
		return err
	}
	vk.CmdEndQuery(cmd, vq.pool, 0)
	vq.endedFrame = vr.FrameNumber
	vq.used = true
	return nil
}

func (vr *VulkanRenderer) QueryResult(q *resources.OcclusionQuery, wait bool) (uint32, bool) {
	vq, err := queryOf(q)
	if err != nil || !vq.used {
		return 0, false
	}
	// Waiting on a command buffer that was never submitted would block forever.
	if vq.endedFrame >= vr.FrameNumber {
		return 0, false
	}

	flags := vk.QueryResultFlags(vk.QueryResult64Bit)
	if wait {
		flags |= vk.QueryResultFlags(vk.QueryResultWaitBit)
	}
	var samples uint64
	result := vk.GetQueryPoolResults(vr.context.Device.LogicalDevice, vq.pool, 0, 1, 8, unsafe.Pointer(&samples), 8, flags)
	if result == vk.NotReady {
		return 0, false
	}
	if err := check(result, "vkGetQueryPoolResults"); err != nil {
		core.LogError(err.Error())
		return 0, false
	}

	if !vq.queued {
		vq.queued = true
		vr.pendingResets = append(vr.pendingResets, vq)
	}
	if q.Binary && samples > 0 {
		return 1, true
	}
	if samples > uint64(^uint32(0)) {
		return ^uint32(0), true
	}
	return uint32(samples), true
}

// flushQueryResets records the resets of every query whose result was read.
func (vr *VulkanRenderer) flushQueryResets(cmd vk.CommandBuffer) {
	for _, vq := range vr.pendingResets {
		if !vq.queued {
			continue
		}
		vk.CmdResetQueryPool(cmd, vq.pool, 0, 1)
		vq.used = false
		vq.queued = false
	}
	vr.pendingResets = vr.pendingResets[:0]
}

func (vr *VulkanRenderer) ConditionalRenderBegin(q *resources.OcclusionQuery) error {
	return errors.Wrap(core.ErrBackendUnavailable, "conditional rendering needs VK_EXT_conditional_rendering")
}

func (vr *VulkanRenderer) ConditionalRenderEnd() error {
	return nil
}
