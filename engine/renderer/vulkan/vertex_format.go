package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/resources"
)

// Vertex formats by one, two, three and four components.
var vkVertexFormats = map[metadata.ComponentType][4]vk.Format{
	metadata.ComponentFloat:                   {vk.FormatR32Sfloat, vk.FormatR32g32Sfloat, vk.FormatR32g32b32Sfloat, vk.FormatR32g32b32a32Sfloat},
	metadata.ComponentHalfFloat:               {vk.FormatR16Sfloat, vk.FormatR16g16Sfloat, vk.FormatR16g16b16Sfloat, vk.FormatR16g16b16a16Sfloat},
	metadata.ComponentDoubleInDoubleOut:       {vk.FormatR64Sfloat, vk.FormatR64g64Sfloat, vk.FormatR64g64b64Sfloat, vk.FormatR64g64b64a64Sfloat},
	metadata.ComponentNormalizedByte:          {vk.FormatR8Snorm, vk.FormatR8g8Snorm, vk.FormatR8g8b8Snorm, vk.FormatR8g8b8a8Snorm},
	metadata.ComponentNormalizedUnsignedByte:  {vk.FormatR8Unorm, vk.FormatR8g8Unorm, vk.FormatR8g8b8Unorm, vk.FormatR8g8b8a8Unorm},
	metadata.ComponentNormalizedShort:         {vk.FormatR16Snorm, vk.FormatR16g16Snorm, vk.FormatR16g16b16Snorm, vk.FormatR16g16b16a16Snorm},
	metadata.ComponentNormalizedUnsignedShort: {vk.FormatR16Unorm, vk.FormatR16g16Unorm, vk.FormatR16g16b16Unorm, vk.FormatR16g16b16a16Unorm},
	metadata.ComponentByte:                    {vk.FormatR8Sscaled, vk.FormatR8g8Sscaled, vk.FormatR8g8b8Sscaled, vk.FormatR8g8b8a8Sscaled},
	metadata.ComponentUnsignedByte:            {vk.FormatR8Uscaled, vk.FormatR8g8Uscaled, vk.FormatR8g8b8Uscaled, vk.FormatR8g8b8a8Uscaled},
	metadata.ComponentShort:                   {vk.FormatR16Sscaled, vk.FormatR16g16Sscaled, vk.FormatR16g16b16Sscaled, vk.FormatR16g16b16a16Sscaled},
	metadata.ComponentUnsignedShort:           {vk.FormatR16Uscaled, vk.FormatR16g16Uscaled, vk.FormatR16g16b16Uscaled, vk.FormatR16g16b16a16Uscaled},
	metadata.ComponentIntegerByte:             {vk.FormatR8Sint, vk.FormatR8g8Sint, vk.FormatR8g8b8Sint, vk.FormatR8g8b8a8Sint},
	metadata.ComponentIntegerUnsignedByte:     {vk.FormatR8Uint, vk.FormatR8g8Uint, vk.FormatR8g8b8Uint, vk.FormatR8g8b8a8Uint},
	metadata.ComponentIntegerShort:            {vk.FormatR16Sint, vk.FormatR16g16Sint, vk.FormatR16g16b16Sint, vk.FormatR16g16b16a16Sint},
	metadata.ComponentIntegerUnsignedShort:    {vk.FormatR16Uint, vk.FormatR16g16Uint, vk.FormatR16g16b16Uint, vk.FormatR16g16b16a16Uint},
	metadata.ComponentIntegerInt:              {vk.FormatR32Sint, vk.FormatR32g32Sint, vk.FormatR32g32b32Sint, vk.FormatR32g32b32a32Sint},
	metadata.ComponentIntegerUnsignedInt:      {vk.FormatR32Uint, vk.FormatR32g32Uint, vk.FormatR32g32b32Uint, vk.FormatR32g32b32a32Uint},
}

// Packed formats by RGBA and BGRA component order.
var vkPackedFormats = map[metadata.ComponentType][2]vk.Format{
	metadata.ComponentNormalizedInt2101010Rev:         {vk.FormatA2b10g10r10SnormPack32, vk.FormatA2r10g10b10SnormPack32},
	metadata.ComponentNormalizedUnsignedInt2101010Rev: {vk.FormatA2b10g10r10UnormPack32, vk.FormatA2r10g10b10UnormPack32},
	metadata.ComponentInt2101010Rev:                   {vk.FormatA2b10g10r10SscaledPack32, vk.FormatA2r10g10b10SscaledPack32},
	metadata.ComponentUnsignedInt2101010Rev:           {vk.FormatA2b10g10r10UscaledPack32, vk.FormatA2r10g10b10UscaledPack32},
	metadata.ComponentIntegerInt2101010Rev:            {vk.FormatA2b10g10r10SintPack32, vk.FormatA2r10g10b10SintPack32},
	metadata.ComponentIntegerUnsignedInt2101010Rev:    {vk.FormatA2b10g10r10UintPack32, vk.FormatA2r10g10b10UintPack32},
}

// VertexAttributeFormat maps a component spec onto a vertex input format. Specs without a
// Vulkan equivalent, such as doubles converted to float, return FormatUndefined.
func VertexAttributeFormat(ctype metadata.ComponentType, count metadata.ComponentCount) vk.Format {
	if !metadata.ValidAttribute(ctype, count) {
		return vk.FormatUndefined
	}
	if ctype == metadata.ComponentUnsignedInt10F11F11FRev {
		return vk.FormatB10g11r11UfloatPack32
	}
	if packed, ok := vkPackedFormats[ctype]; ok {
		if count == metadata.ComponentsBGRA {
			return packed[1]
		}
		return packed[0]
	}
	if count == metadata.ComponentsBGRA {
		return vk.FormatB8g8r8a8Unorm
	}
	formats, ok := vkVertexFormats[ctype]
	if !ok {
		return vk.FormatUndefined
	}
	return formats[count.Components()-1]
}

// VertexInputState describes format the way a graphics pipeline consumes it: attribute i
// reads from binding i. Pipelines drawing format must be built from this state.
func VertexInputState(format *resources.VertexFormat) ([]vk.VertexInputBindingDescription, []vk.VertexInputAttributeDescription, error) {
	var bindings []vk.VertexInputBindingDescription
	var attributes []vk.VertexInputAttributeDescription
	var err error
	format.EachAttribute(func(id metadata.VertexAttributeID, slot resources.AttributeSlot) {
		vkFormat := VertexAttributeFormat(slot.Type, slot.Components)
		if vkFormat == vk.FormatUndefined {
			err = errors.Newf("attribute %d: %s x %d has no Vulkan vertex format", id, slot.Type, slot.Components)
			return
		}
		bindings = append(bindings, vk.VertexInputBindingDescription{
			Binding:   uint32(id),
			Stride:    slot.Stride,
			InputRate: vk.VertexInputRateVertex,
		})
		attributes = append(attributes, vk.VertexInputAttributeDescription{
			Location: uint32(id),
			Binding:  uint32(id),
			Format:   vkFormat,
		})
	})
	return bindings, attributes, err
}

func (vr *VulkanRenderer) VertexFormatCreate(format *resources.VertexFormat) error {
	// Bindings are recorded per draw, nothing lives on the device.
	return nil
}

func (vr *VulkanRenderer) VertexFormatDestroy(format *resources.VertexFormat) {
	if vr.currentFormat == format {
		vr.currentFormat = nil
	}
}

func (vr *VulkanRenderer) VertexFormatBind(format *resources.VertexFormat) error {
	if format != nil && format.Dirty() {
		if _, _, err := VertexInputState(format); err != nil {
			return err
		}
		format.MarkClean()
	}
	vr.currentFormat = format
	return nil
}

// bindVertexBuffers records the current format's buffers, one run of consecutive
// bindings per call.
func (vr *VulkanRenderer) bindVertexBuffers(cmd vk.CommandBuffer, indexType metadata.IndexType) error {
	format := vr.currentFormat
	if format == nil {
		return errors.New("no vertex format bound")
	}

	var first uint32
	var buffers []vk.Buffer
	var offsets []vk.DeviceSize
	flush := func() {
		if len(buffers) > 0 {
			vk.CmdBindVertexBuffers(cmd, first, uint32(len(buffers)), buffers, offsets)
		}
		buffers, offsets = nil, nil
	}
	for i := metadata.VertexAttributeID(0); i < metadata.VertexAttributeCount; i++ {
		slot := format.Attribute(i)
		if !slot.InUse() {
			flush()
			continue
		}
		vb, err := bufferOf(slot.Buffer)
		if err != nil {
			return err
		}
		if len(buffers) == 0 {
			first = uint32(i)
		}
		buffers = append(buffers, vb.handle)
		offsets = append(offsets, vk.DeviceSize(slot.Offset))
	}
	flush()

	if indexType == metadata.IndexTypeUnknown {
		return nil
	}
	ib, err := bufferOf(format.IndexBuffer())
	if err != nil {
		return errors.Wrap(err, "indexed draw without an index buffer")
	}
	vk.CmdBindIndexBuffer(cmd, ib.handle, 0, vkIndexType(indexType))
	return nil
}

func vkIndexType(t metadata.IndexType) vk.IndexType {
	if t == metadata.IndexType16 {
		return vk.IndexTypeUint16
	}
	return vk.IndexTypeUint32
}
