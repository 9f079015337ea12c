package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/resources"
)

// CreateBuffer allocates a size byte GPU buffer initialized from data. data may be
// shorter than size or nil; the rest of the buffer is zeroed.
func (d *Driver) CreateBuffer(size uint64, data []byte, desc metadata.BufferDesc) (*resources.Buffer, error) {
	flags, ok := desc.Flags()
	if !ok {
		return nil, errors.Wrapf(core.ErrUnsupportedUsage, "persistent buffer with usage %s", desc.Usage)
	}
	if uint64(len(data)) > size {
		return nil, errors.Wrapf(core.ErrBufferOverflow, "initial data of %d bytes for a %d byte buffer", len(data), size)
	}

	buf := resources.NewBuffer(0, size, desc, flags, d.backend)
	buf.ID = d.buffers.Acquire(buf)
	if err := d.backend.BufferCreate(buf, data); err != nil {
		d.releaseID(d.buffers, buf.ID)
		return nil, errors.Wrapf(err, "creating %d byte buffer", size)
	}
	buf.OnDestroy(func() {
		d.releaseID(d.buffers, buf.ID)
	})
	return buf, nil
}

// CreatePersistentlyMappedBuffer creates a buffer that stays mapped for its whole
// lifetime. The mapping is available through Buffer.Mapped. Without coherent, CPU
// writes need Buffer.Flush before the GPU sees them.
func (d *Driver) CreatePersistentlyMappedBuffer(size uint64, data []byte, usage metadata.BufferUsage, coherent, inClientMemory bool) (*resources.Buffer, error) {
	return d.CreateBuffer(size, data, metadata.BufferDesc{
		Usage:          usage,
		InClientMemory: inClientMemory,
		Persistent:     true,
		Coherent:       coherent,
	})
}

// CreateFilledDeviceLocalBuffer uploads data once into GPU-only memory.
func (d *Driver) CreateFilledDeviceLocalBuffer(data []byte) (*resources.Buffer, error) {
	return d.CreateBuffer(uint64(len(data)), data, metadata.BufferDesc{})
}

// CreateVertexFormat returns an empty format. The backend object is realized on first bind.
func (d *Driver) CreateVertexFormat() (*resources.VertexFormat, error) {
	format := resources.NewVertexFormat(0, d.backend)
	format.ID = d.formats.Acquire(format)
	if err := d.backend.VertexFormatCreate(format); err != nil {
		d.releaseID(d.formats, format.ID)
		return nil, errors.Wrap(err, "creating vertex format")
	}
	format.OnDestroy(func() {
		if d.currentFormat == format {
			d.bindVertexFormat(nil)
		}
		d.releaseID(d.formats, format.ID)
	})
	return format, nil
}

// CreateDescriptorSet returns an empty set of texture layers.
func (d *Driver) CreateDescriptorSet() *resources.DescriptorSet {
	set := resources.NewDescriptorSet(0, nil)
	set.ID = d.sets.Acquire(set)
	set.OnDestroy(func() {
		d.releaseID(d.sets, set.ID)
	})
	return set
}
