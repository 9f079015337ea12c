// Package vulkan drives the GPU through Vulkan 1.0. Every call must happen on the
// rendering thread. Draws are recorded into the frame's command buffer between
// BeginFrame and EndFrame; uploads use one-time command buffers.
package vulkan

import (
	"math"
	"runtime"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/platform"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/resources"
)

// Upper bound of descriptor sets allocated per frame for texture bindings.
const maxDescriptorSetsPerFrame = 4096

var errNoFrame = errors.New("no frame is being recorded")

type VulkanRenderer struct {
	platform                *platform.Platform
	FrameNumber             uint64
	context                 *VulkanContext
	caps                    metadata.BackendCapabilities
	cachedFramebufferWidth  uint32
	cachedFramebufferHeight uint32

	// Set between a BeginFrame that started recording and its EndFrame.
	frameActive bool

	descriptorPools []vk.DescriptorPool
	pipeline        *PipelineHandle
	currentFormat   *resources.VertexFormat
	samplers        map[metadata.SamplerHandle]vk.Sampler
	nextSampler     metadata.SamplerHandle
	stageSamplers   []vk.Sampler
	stageTextures   []*VulkanImage
	texturesDirty   bool
	pendingResets   []*vulkanQuery

	debug bool
}

func New(p *platform.Platform) *VulkanRenderer {
	return &VulkanRenderer{
		platform: p,
		context: &VulkanContext{
			Device: &VulkanDevice{},
		},
		samplers: make(map[metadata.SamplerHandle]vk.Sampler),
	}
}

// SetDebug enables the validation layers and the debug report callback. It only has an
// effect before Initialize.
func (vr *VulkanRenderer) SetDebug(debug bool) {
	vr.debug = debug
}

func (vr *VulkanRenderer) Type() metadata.BackendType {
	return metadata.BackendVulkan
}

func (vr *VulkanRenderer) Capabilities() metadata.BackendCapabilities {
	return vr.caps
}

// Context exposes the device objects so applications can build pipelines against them.
func (vr *VulkanRenderer) Context() *VulkanContext {
	return vr.context
}

func (vr *VulkanRenderer) Initialize(appName string, appWidth, appHeight uint32) error {
	if vr.platform == nil || vr.platform.Window == nil {
		return errors.Wrap(core.ErrBackendUnavailable, "vulkan backend needs a window")
	}
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		return errors.Wrap(core.ErrBackendUnavailable, "GetInstanceProcAddress is nil")
	}
	vk.SetGetInstanceProcAddr(procAddr)
	if err := vk.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize vk")
	}

	vr.context.FramebufferWidth = appWidth
	vr.context.FramebufferHeight = appHeight

	if err := vr.createInstance(appName); err != nil {
		return err
	}

	// Surface
	core.LogDebug("Creating Vulkan surface...")
	surface, err := vr.platform.Window.CreateWindowSurface(vr.context.Instance, nil)
	if err != nil {
		return errors.Wrap(err, "vulkan surface creation failed")
	}
	vr.context.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")

	if err := DeviceCreate(vr.context); err != nil {
		return errors.Wrap(err, "failed to create device")
	}
	vr.caps = vr.queryCapabilities()

	sc, err := SwapchainCreate(vr.context, vr.context.FramebufferWidth, vr.context.FramebufferHeight)
	if err != nil {
		return err
	}
	vr.context.Swapchain = sc
	vr.context.FramebufferWidth = sc.Extent.Width
	vr.context.FramebufferHeight = sc.Extent.Height

	rp, err := RenderpassCreate(
		vr.context,
		0, 0, float32(vr.context.FramebufferWidth), float32(vr.context.FramebufferHeight),
		0.0, 0.0, 0.2, 1.0,
		1.0,
		0)
	if err != nil {
		return err
	}
	vr.context.MainRenderpass = rp

	if err := vr.regenerateFramebuffers(); err != nil {
		return err
	}
	if err := vr.createCommandBuffers(); err != nil {
		return err
	}
	if err := vr.createSyncObjects(); err != nil {
		return err
	}
	if err := vr.createDescriptorPools(); err != nil {
		return err
	}

	vr.stageSamplers = make([]vk.Sampler, vr.caps.MaxTextureUnits)
	vr.stageTextures = make([]*VulkanImage, vr.caps.MaxTextureUnits)

	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

func (vr *VulkanRenderer) createInstance(appName string) error {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   safeString(appName),
		PEngineName:        safeString("Prism"),
	}
	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	// Obtain a list of required extensions
	requiredExtensions := vr.platform.GetRequiredExtensionNames()
	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
		createInfo.Flags |= 1
	}

	var layers []string
	if vr.debug {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugReportExtensionName)
		if hasLayer("VK_LAYER_KHRONOS_validation") {
			layers = append(layers, "VK_LAYER_KHRONOS_validation")
			core.LogInfo("Validation layers enabled.")
		} else {
			core.LogWarn("VK_LAYER_KHRONOS_validation is not installed, continuing without validation.")
		}
	}
	core.LogDebug("Required extensions: %v", requiredExtensions)

	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = safeStrings(requiredExtensions)
	createInfo.EnabledLayerCount = uint32(len(layers))
	createInfo.PpEnabledLayerNames = safeStrings(layers)

	if err := check(vk.CreateInstance(&createInfo, vr.context.Allocator, &vr.context.Instance), "vkCreateInstance"); err != nil {
		return err
	}
	if err := vk.InitInstance(vr.context.Instance); err != nil {
		return errors.Wrap(err, "loading instance functions")
	}
	core.LogInfo("Vulkan Instance created.")

	if vr.debug {
		core.LogDebug("Creating Vulkan debugger...")
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
			PfnCallback: dbgCallbackFunc,
		}
		var dbg vk.DebugReportCallback
		if err := check(vk.CreateDebugReportCallback(vr.context.Instance, &debugCreateInfo, nil, &dbg), "vkCreateDebugReportCallbackEXT"); err != nil {
			return err
		}
		vr.context.debugMessenger = dbg
		core.LogDebug("Vulkan debugger created.")
	}
	return nil
}

func hasLayer(name string) bool {
	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); res != vk.Success {
		return false
	}
	layers := make([]vk.LayerProperties, count)
	if res := vk.EnumerateInstanceLayerProperties(&count, layers); res != vk.Success {
		return false
	}
	for i := range layers {
		layers[i].Deref()
		if cString(layers[i].LayerName[:]) == name {
			return true
		}
	}
	return false
}

func (vr *VulkanRenderer) queryCapabilities() metadata.BackendCapabilities {
	device := vr.context.Device
	limits := device.Properties.Limits
	caps := metadata.BackendCapabilities{
		MaxAnisotropy:           1,
		MaxTextureUnits:         limits.MaxPerStageDescriptorSampledImages,
		MaxVertexAttribBindings: limits.MaxVertexInputBindings,
		MultiDrawIndirect:       device.Enabled.MultiDrawIndirect == vk.True,
		// Needs VK_EXT_conditional_rendering, which the loader bindings do not expose.
		ConditionalRender: false,
		Tessellation:      device.Enabled.TessellationShader == vk.True,
		// Cube map sampling is always seamless.
		SeamlessCubeMap: true,
	}
	if device.Enabled.SamplerAnisotropy == vk.True {
		caps.MaxAnisotropy = uint8(math.Min(float64(limits.MaxSamplerAnisotropy), math.MaxUint8))
	}
	if caps.MaxTextureUnits > 32 {
		caps.MaxTextureUnits = 32
	}
	if caps.MaxVertexAttribBindings > metadata.VertexAttributeCount {
		caps.MaxVertexAttribBindings = metadata.VertexAttributeCount
	}
	return caps
}

func (vr *VulkanRenderer) createSyncObjects() error {
	context := vr.context
	frames := int(context.Swapchain.MaxFramesInFlight)
	context.ImageAvailableSemaphores = make([]vk.Semaphore, frames)
	context.QueueCompleteSemaphores = make([]vk.Semaphore, frames)
	context.InFlightFences = make([]*VulkanFence, frames)

	semaphoreCreateInfo := vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
	for i := 0; i < frames; i++ {
		if err := check(vk.CreateSemaphore(context.Device.LogicalDevice, &semaphoreCreateInfo, context.Allocator, &context.ImageAvailableSemaphores[i]), "vkCreateSemaphore"); err != nil {
			return err
		}
		if err := check(vk.CreateSemaphore(context.Device.LogicalDevice, &semaphoreCreateInfo, context.Allocator, &context.QueueCompleteSemaphores[i]), "vkCreateSemaphore"); err != nil {
			return err
		}
		// Create the fence in a signaled state, indicating that the first frame has already been "rendered".
		f, err := NewFence(context, true)
		if err != nil {
			return err
		}
		context.InFlightFences[i] = f
	}

	// Fences in this list are owned by InFlightFences.
	context.ImagesInFlight = make([]*VulkanFence, context.Swapchain.ImageCount)
	return nil
}

func (vr *VulkanRenderer) createDescriptorPools() error {
	context := vr.context
	vr.descriptorPools = make([]vk.DescriptorPool, context.Swapchain.MaxFramesInFlight)
	for i := range vr.descriptorPools {
		createInfo := vk.DescriptorPoolCreateInfo{
			SType:         vk.StructureTypeDescriptorPoolCreateInfo,
			MaxSets:       maxDescriptorSetsPerFrame,
			PoolSizeCount: 1,
			PPoolSizes: []vk.DescriptorPoolSize{{
				Type:            vk.DescriptorTypeCombinedImageSampler,
				DescriptorCount: maxDescriptorSetsPerFrame * metadata.MaxTextureLayers,
			}},
		}
		if err := check(vk.CreateDescriptorPool(context.Device.LogicalDevice, &createInfo, context.Allocator, &vr.descriptorPools[i]), "vkCreateDescriptorPool"); err != nil {
			return err
		}
	}
	return nil
}

func (vr *VulkanRenderer) Shutdown() error {
	context := vr.context
	if context.Device == nil || context.Device.LogicalDevice == nil {
		vr.destroyInstance()
		return nil
	}
	device := context.Device.LogicalDevice
	vk.DeviceWaitIdle(device)

	for handle, sampler := range vr.samplers {
		core.LogWarn("sampler %d still alive at shutdown", handle)
		vk.DestroySampler(device, sampler, context.Allocator)
	}
	vr.samplers = make(map[metadata.SamplerHandle]vk.Sampler)

	// Destroy in the opposite order of creation.
	for _, pool := range vr.descriptorPools {
		vk.DestroyDescriptorPool(device, pool, context.Allocator)
	}
	vr.descriptorPools = nil

	for i := range context.InFlightFences {
		vk.DestroySemaphore(device, context.ImageAvailableSemaphores[i], context.Allocator)
		vk.DestroySemaphore(device, context.QueueCompleteSemaphores[i], context.Allocator)
		context.InFlightFences[i].Destroy(context)
	}
	context.ImageAvailableSemaphores = nil
	context.QueueCompleteSemaphores = nil
	context.InFlightFences = nil
	context.ImagesInFlight = nil

	vr.freeCommandBuffers()
	vr.destroyFramebuffers()

	if context.MainRenderpass != nil {
		context.MainRenderpass.Destroy(context)
	}
	if context.Swapchain != nil {
		context.Swapchain.Destroy(context)
	}

	core.LogDebug("Destroying Vulkan device...")
	DeviceDestroy(context)

	vr.destroyInstance()
	return nil
}

func (vr *VulkanRenderer) destroyInstance() {
	context := vr.context
	if context.Instance == nil {
		return
	}
	core.LogDebug("Destroying Vulkan surface...")
	if context.Surface != vk.NullSurface {
		vk.DestroySurface(context.Instance, context.Surface, context.Allocator)
		context.Surface = vk.NullSurface
	}
	if context.debugMessenger != vk.NullDebugReportCallback {
		core.LogDebug("Destroying Vulkan debugger...")
		vk.DestroyDebugReportCallback(context.Instance, context.debugMessenger, context.Allocator)
		context.debugMessenger = vk.NullDebugReportCallback
	}
	core.LogDebug("Destroying Vulkan instance...")
	vk.DestroyInstance(context.Instance, context.Allocator)
	context.Instance = nil
}

func (vr *VulkanRenderer) Resized(width, height uint32) error {
	// Update the "framebuffer size generation", a counter which indicates when the
	// framebuffer size has been updated.
	vr.cachedFramebufferWidth = width
	vr.cachedFramebufferHeight = height
	vr.context.FramebufferSizeGeneration++

	core.LogInfo("Vulkan renderer backend->resized: w/h/gen: %d/%d/%d", width, height, vr.context.FramebufferSizeGeneration)
	return nil
}

func (vr *VulkanRenderer) BeginFrame(deltaTime float64) error {
	context := vr.context
	device := context.Device
	vr.frameActive = false

	// Check if recreating swap chain and boot out.
	if context.RecreatingSwapchain {
		if err := check(vk.DeviceWaitIdle(device.LogicalDevice), "vkDeviceWaitIdle"); err != nil {
			return err
		}
		core.LogInfo("Recreating swapchain, booting.")
		return nil
	}

	// Check if the framebuffer has been resized. If so, a new swapchain must be created.
	if context.FramebufferSizeGeneration != context.FramebufferSizeLastGeneration {
		if err := check(vk.DeviceWaitIdle(device.LogicalDevice), "vkDeviceWaitIdle"); err != nil {
			return err
		}
		// Recreation fails while the window is minimized; the frame is skipped and retried.
		if err := vr.recreateSwapchain(); err != nil {
			core.LogDebug(err.Error())
		}
		core.LogInfo("Resized, booting.")
		return nil
	}

	// Wait for the execution of the current frame to complete. The fence being free will allow this one to move on.
	if !context.InFlightFences[context.CurrentFrame].Wait(context, math.MaxUint64) {
		return errors.New("in-flight fence wait failure")
	}

	imageIndex, err := context.Swapchain.AcquireNextImageIndex(context, math.MaxUint64, context.ImageAvailableSemaphores[context.CurrentFrame], vk.NullFence)
	if errors.Is(err, errSwapchainOutOfDate) {
		return vr.recreateSwapchain()
	}
	if err != nil {
		return err
	}
	context.ImageIndex = imageIndex

	// Descriptor sets of this frame slot are no longer in use once its fence signaled.
	vk.ResetDescriptorPool(device.LogicalDevice, vr.descriptorPools[context.CurrentFrame], 0)

	commandBuffer := context.GraphicsCommandBuffers[context.ImageIndex]
	commandBuffer.Reset()
	if err := commandBuffer.Begin(false, false, false); err != nil {
		return err
	}

	// Query resets must be recorded outside the render pass.
	vr.flushQueryResets(commandBuffer.Handle)

	viewport := vk.Viewport{
		X:        0.0,
		Y:        0.0,
		Width:    float32(context.FramebufferWidth),
		Height:   float32(context.FramebufferHeight),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	scissor := vk.Rect2D{
		Extent: vk.Extent2D{
			Width:  context.FramebufferWidth,
			Height: context.FramebufferHeight,
		},
	}
	vk.CmdSetViewport(commandBuffer.Handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(commandBuffer.Handle, 0, 1, []vk.Rect2D{scissor})

	context.MainRenderpass.W = float32(context.FramebufferWidth)
	context.MainRenderpass.H = float32(context.FramebufferHeight)
	context.MainRenderpass.Begin(commandBuffer, context.Swapchain.Framebuffers[context.ImageIndex].Handle)

	// Bindings are per command buffer.
	vr.pipeline = nil
	vr.currentFormat = nil
	vr.texturesDirty = true
	vr.frameActive = true
	return nil
}

func (vr *VulkanRenderer) EndFrame(deltaTime float64) error {
	if !vr.frameActive {
		return nil
	}
	vr.frameActive = false
	context := vr.context
	commandBuffer := context.GraphicsCommandBuffers[context.ImageIndex]

	context.MainRenderpass.End(commandBuffer)
	if err := commandBuffer.End(); err != nil {
		return err
	}

	// Make sure the previous frame is not using this image (i.e. its fence is being waited on)
	if inFlight := context.ImagesInFlight[context.ImageIndex]; inFlight != nil {
		inFlight.Wait(context, math.MaxUint64)
	}
	// Mark the image fence as in-use by this frame.
	fence := context.InFlightFences[context.CurrentFrame]
	context.ImagesInFlight[context.ImageIndex] = fence
	if err := fence.Reset(context); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{commandBuffer.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{context.QueueCompleteSemaphores[context.CurrentFrame]},
		// The operation cannot begin until the image is available.
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{context.ImageAvailableSemaphores[context.CurrentFrame]},
		PWaitDstStageMask:  []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
	}
	if err := check(vk.QueueSubmit(context.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, fence.Handle), "vkQueueSubmit"); err != nil {
		core.LogError(err.Error())
		return err
	}
	commandBuffer.UpdateSubmitted()
	vr.FrameNumber++

	// Give the image back to the swapchain.
	err := context.Swapchain.Present(context, context.Device.PresentQueue, context.QueueCompleteSemaphores[context.CurrentFrame], context.ImageIndex)
	if errors.Is(err, errSwapchainOutOfDate) {
		return vr.recreateSwapchain()
	}
	return err
}

// frameCommands returns the command buffer draws are recorded into.
func (vr *VulkanRenderer) frameCommands() (vk.CommandBuffer, error) {
	if !vr.frameActive {
		return nil, errNoFrame
	}
	return vr.context.GraphicsCommandBuffers[vr.context.ImageIndex].Handle, nil
}

func (vr *VulkanRenderer) createCommandBuffers() error {
	context := vr.context
	vr.freeCommandBuffers()
	context.GraphicsCommandBuffers = make([]*VulkanCommandBuffer, context.Swapchain.ImageCount)
	for i := range context.GraphicsCommandBuffers {
		cb, err := NewVulkanCommandBuffer(context, context.Device.GraphicsCommandPool, true)
		if err != nil {
			return err
		}
		context.GraphicsCommandBuffers[i] = cb
	}
	core.LogDebug("Vulkan command buffers created.")
	return nil
}

func (vr *VulkanRenderer) freeCommandBuffers() {
	context := vr.context
	for _, cb := range context.GraphicsCommandBuffers {
		if cb != nil {
			cb.Free(context, context.Device.GraphicsCommandPool)
		}
	}
	context.GraphicsCommandBuffers = nil
}

func (vr *VulkanRenderer) regenerateFramebuffers() error {
	context := vr.context
	swapchain := context.Swapchain
	swapchain.Framebuffers = make([]*VulkanFramebuffer, swapchain.ImageCount)
	for i := range swapchain.Framebuffers {
		attachments := []vk.ImageView{
			swapchain.Views[i],
			swapchain.DepthAttachment.View,
		}
		fb, err := FramebufferCreate(context, context.MainRenderpass, context.FramebufferWidth, context.FramebufferHeight, attachments)
		if err != nil {
			return err
		}
		swapchain.Framebuffers[i] = fb
	}
	return nil
}

func (vr *VulkanRenderer) destroyFramebuffers() {
	if vr.context.Swapchain == nil {
		return
	}
	for _, fb := range vr.context.Swapchain.Framebuffers {
		if fb != nil {
			fb.Destroy(vr.context)
		}
	}
	vr.context.Swapchain.Framebuffers = nil
}

func (vr *VulkanRenderer) recreateSwapchain() error {
	context := vr.context
	// If already being recreated, do not try again.
	if context.RecreatingSwapchain {
		return errors.New("swapchain recreation already in progress")
	}

	width, height := vr.cachedFramebufferWidth, vr.cachedFramebufferHeight
	if width == 0 || height == 0 {
		width, height = vr.platform.FramebufferSize()
	}
	// Detect if the window is too small to be drawn to
	if width == 0 || height == 0 {
		return errors.New("window is < 1 in a dimension")
	}

	context.RecreatingSwapchain = true
	defer func() { context.RecreatingSwapchain = false }()

	vk.DeviceWaitIdle(context.Device.LogicalDevice)
	for i := range context.ImagesInFlight {
		context.ImagesInFlight[i] = nil
	}

	// Requery support
	if err := DeviceQuerySwapchainSupport(context.Device.PhysicalDevice, context.Surface, &context.Device.SwapchainSupport); err != nil {
		return err
	}

	vr.destroyFramebuffers()
	sc, err := context.Swapchain.Recreate(context, width, height)
	if err != nil {
		return err
	}
	context.Swapchain = sc

	// Sync the framebuffer size with the cached sizes.
	context.FramebufferWidth = sc.Extent.Width
	context.FramebufferHeight = sc.Extent.Height
	context.MainRenderpass.X = 0
	context.MainRenderpass.Y = 0
	context.MainRenderpass.W = float32(context.FramebufferWidth)
	context.MainRenderpass.H = float32(context.FramebufferHeight)
	vr.cachedFramebufferWidth = 0
	vr.cachedFramebufferHeight = 0
	context.FramebufferSizeLastGeneration = context.FramebufferSizeGeneration

	if err := vr.regenerateFramebuffers(); err != nil {
		return err
	}
	if len(context.ImagesInFlight) != int(sc.ImageCount) {
		context.ImagesInFlight = make([]*VulkanFence, sc.ImageCount)
	}
	return vr.createCommandBuffers()
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogInfo("INFORMATION: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
