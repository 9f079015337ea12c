package resources

import (
	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// BufferOps is the backend side of a Buffer.
type BufferOps interface {
	BufferWrite(buffer *Buffer, offset uint64, data []byte) error
	BufferRead(buffer *Buffer, offset, size uint64) ([]byte, error)
	BufferFlush(buffer *Buffer, offset, size uint64) error
	BufferDestroy(buffer *Buffer)
}

/**
 * @brief A GPU-resident block of memory. The size is fixed at creation.
 */
type Buffer struct {
	RefCount
	/** @brief Driver-unique identifier. */
	ID   uint32
	Name string

	size  uint64
	desc  metadata.BufferDesc
	flags metadata.BufferFlags
	ops   BufferOps

	/** @brief The CPU view of a persistently mapped buffer, set by the backend. */
	mapped []byte
	/** @brief Contains internal data for the renderer-API-specific buffer. */
	InternalData interface{}
}

func NewBuffer(id uint32, size uint64, desc metadata.BufferDesc, flags metadata.BufferFlags, ops BufferOps) *Buffer {
	b := &Buffer{
		ID:    id,
		size:  size,
		desc:  desc,
		flags: flags,
		ops:   ops,
	}
	b.init()
	b.OnDestroy(func() {
		b.ops.BufferDestroy(b)
		b.mapped = nil
		b.InternalData = nil
	})
	return b
}

func (b *Buffer) Size() uint64 {
	return b.size
}

func (b *Buffer) Desc() metadata.BufferDesc {
	return b.desc
}

func (b *Buffer) Flags() metadata.BufferFlags {
	return b.flags
}

func (b *Buffer) Release() {
	b.drop()
}

func (b *Buffer) checkRange(offset, size uint64) error {
	if b.Destroyed() {
		return errors.Wrapf(core.ErrReleased, "buffer %d", b.ID)
	}
	if offset > b.size || size > b.size-offset {
		return errors.Wrapf(core.ErrBufferOverflow, "buffer %d: range [%d, %d) exceeds size %d", b.ID, offset, offset+size, b.size)
	}
	return nil
}

// SubData overwrites data at offset. The buffer must have been created with
// CanUpdateSubData and the write must fit inside its size.
func (b *Buffer) SubData(offset uint64, data []byte) error {
	if err := b.checkRange(offset, uint64(len(data))); err != nil {
		return err
	}
	if !b.flags.Has(metadata.BufferFlagDynamicStorage) {
		return errors.Wrapf(core.ErrUnsupportedUsage, "buffer %d was not created with sub data updates", b.ID)
	}
	return b.ops.BufferWrite(b, offset, data)
}

// Read copies size bytes starting at offset back from the GPU.
func (b *Buffer) Read(offset, size uint64) ([]byte, error) {
	if err := b.checkRange(offset, size); err != nil {
		return nil, err
	}
	return b.ops.BufferRead(b, offset, size)
}

// Flush makes CPU writes through a non-coherent persistent mapping visible to the GPU.
// It is a no-op for every other buffer.
func (b *Buffer) Flush(offset, size uint64) error {
	if err := b.checkRange(offset, size); err != nil {
		return err
	}
	if !b.flags.Has(metadata.BufferFlagPersistent) || b.flags.Has(metadata.BufferFlagCoherent) {
		return nil
	}
	return b.ops.BufferFlush(b, offset, size)
}

// Mapped returns the persistent CPU mapping, nil if the buffer is not persistently mapped.
func (b *Buffer) Mapped() []byte {
	return b.mapped
}

func (b *Buffer) SetMapped(mapping []byte) {
	b.mapped = mapping
}
