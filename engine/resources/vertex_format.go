package resources

import (
	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/** @brief One vertex attribute binding of a VertexFormat. */
type AttributeSlot struct {
	Buffer     *Buffer
	Components metadata.ComponentCount
	Type       metadata.ComponentType
	/** @brief Byte distance between consecutive vertices. */
	Stride uint32
	/** @brief Byte offset of the first vertex inside Buffer. */
	Offset uint64
}

func (s AttributeSlot) InUse() bool {
	return s.Buffer != nil
}

// Size returns the byte size of one attribute element.
func (s AttributeSlot) Size() uint32 {
	return metadata.AttributeSize(s.Type, s.Components)
}

/** @brief Comparable description of a VertexFormat layout, including buffer identities. */
type VertexFormatSignature struct {
	Attributes  [metadata.VertexAttributeCount]SlotSignature
	IndexBuffer uint32
}

type SlotSignature struct {
	Buffer     uint32
	Components metadata.ComponentCount
	Type       metadata.ComponentType
	Stride     uint32
	Offset     uint64
}

type VertexFormatOps interface {
	VertexFormatDestroy(format *VertexFormat)
}

/**
 * @brief Binds buffer regions to the fixed vertex attribute slots plus an optional index
 * buffer. Holds a reference to every buffer it points at.
 */
type VertexFormat struct {
	RefCount
	ID uint32

	attributes  [metadata.VertexAttributeCount]AttributeSlot
	indexBuffer *Buffer
	dirty       bool

	/** @brief Contains internal data for the renderer-API-specific vertex array. */
	InternalData interface{}
}

func NewVertexFormat(id uint32, ops VertexFormatOps) *VertexFormat {
	f := &VertexFormat{ID: id, dirty: true}
	f.init()
	f.OnDestroy(func() {
		ops.VertexFormatDestroy(f)
		for i := range f.attributes {
			if f.attributes[i].Buffer != nil {
				f.attributes[i].Buffer.Release()
			}
			f.attributes[i] = AttributeSlot{}
		}
		if f.indexBuffer != nil {
			f.indexBuffer.Release()
			f.indexBuffer = nil
		}
		f.InternalData = nil
	})
	return f
}

// SetAttribute points attribute id at buf. The component spec is validated before
// anything changes; a nil buf clears the slot. A zero stride means tightly packed.
func (f *VertexFormat) SetAttribute(id metadata.VertexAttributeID, buf *Buffer, components metadata.ComponentCount, ctype metadata.ComponentType, stride uint32, offset uint64) error {
	if !id.Valid() {
		return errors.Wrapf(core.ErrInvalidAttributeSpec, "attribute id %d out of range", id)
	}
	if f.Destroyed() {
		return errors.Wrapf(core.ErrReleased, "vertex format %d", f.ID)
	}
	if buf == nil {
		f.clearSlot(id)
		return nil
	}
	size := metadata.AttributeSize(ctype, components)
	if size == metadata.InvalidAttributeSize {
		return errors.Wrapf(core.ErrInvalidAttributeSpec, "attribute %d: %s x %d", id, ctype, components)
	}
	if stride == 0 {
		stride = size
	}

	buf.Acquire()
	old := f.attributes[id].Buffer
	f.attributes[id] = AttributeSlot{
		Buffer:     buf,
		Components: components,
		Type:       ctype,
		Stride:     stride,
		Offset:     offset,
	}
	if old != nil {
		old.Release()
	}
	f.dirty = true
	return nil
}

func (f *VertexFormat) clearSlot(id metadata.VertexAttributeID) {
	if old := f.attributes[id].Buffer; old != nil {
		f.attributes[id] = AttributeSlot{}
		old.Release()
		f.dirty = true
	}
}

func (f *VertexFormat) SetIndexBuffer(buf *Buffer) {
	if buf == f.indexBuffer {
		return
	}
	if buf != nil {
		buf.Acquire()
	}
	if f.indexBuffer != nil {
		f.indexBuffer.Release()
	}
	f.indexBuffer = buf
	f.dirty = true
}

func (f *VertexFormat) Attribute(id metadata.VertexAttributeID) AttributeSlot {
	if !id.Valid() {
		return AttributeSlot{}
	}
	return f.attributes[id]
}

func (f *VertexFormat) IndexBuffer() *Buffer {
	return f.indexBuffer
}

// EachAttribute visits the slots that have a buffer, in attribute id order.
func (f *VertexFormat) EachAttribute(fn func(id metadata.VertexAttributeID, slot AttributeSlot)) {
	for i, slot := range f.attributes {
		if slot.InUse() {
			fn(metadata.VertexAttributeID(i), slot)
		}
	}
}

func (f *VertexFormat) AttributeCount() int {
	n := 0
	for _, slot := range f.attributes {
		if slot.InUse() {
			n++
		}
	}
	return n
}

// Dirty reports whether the layout changed since the backend last realized it.
func (f *VertexFormat) Dirty() bool {
	return f.dirty
}

func (f *VertexFormat) MarkClean() {
	f.dirty = false
}

// ValidateRange checks that vertex baseVertex+maxIndex fits inside every bound buffer.
func (f *VertexFormat) ValidateRange(baseVertex int64, maxIndex uint32) error {
	last := baseVertex + int64(maxIndex)
	if last < 0 {
		return errors.Wrapf(core.ErrIndexOutOfBounds, "vertex %d is negative", last)
	}
	for i, slot := range f.attributes {
		if !slot.InUse() {
			continue
		}
		end := slot.Offset + uint64(last)*uint64(slot.Stride) + uint64(slot.Size())
		if end > slot.Buffer.Size() {
			return errors.Wrapf(core.ErrIndexOutOfBounds, "attribute %d: vertex %d ends at byte %d past buffer size %d", i, last, end, slot.Buffer.Size())
		}
	}
	return nil
}

// BindingOffsets returns the byte offset of every attribute binding, zero for unused slots.
func (f *VertexFormat) BindingOffsets() [metadata.VertexAttributeCount]uint64 {
	var out [metadata.VertexAttributeCount]uint64
	for i, slot := range f.attributes {
		if slot.InUse() {
			out[i] = slot.Offset
		}
	}
	return out
}

func (f *VertexFormat) Signature() VertexFormatSignature {
	var sig VertexFormatSignature
	for i, slot := range f.attributes {
		if !slot.InUse() {
			continue
		}
		sig.Attributes[i] = SlotSignature{
			Buffer:     slot.Buffer.ID,
			Components: slot.Components,
			Type:       slot.Type,
			Stride:     slot.Stride,
			Offset:     slot.Offset,
		}
	}
	if f.indexBuffer != nil {
		sig.IndexBuffer = f.indexBuffer.ID
	}
	return sig
}

func (f *VertexFormat) Release() {
	f.drop()
}
