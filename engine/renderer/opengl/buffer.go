package opengl

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/resources"
)

type glBuffer struct {
	handle uint32
	mapped unsafe.Pointer
}

func bufferOf(b *resources.Buffer) (*glBuffer, error) {
	if b == nil {
		return nil, errors.New("nil buffer")
	}
	buf, ok := b.InternalData.(*glBuffer)
	if !ok || buf.handle == 0 {
		return nil, errors.Newf("buffer %d has no OpenGL object", b.ID)
	}
	return buf, nil
}

func handleOf(b *resources.Buffer) uint32 {
	if buf, err := bufferOf(b); err == nil {
		return buf.handle
	}
	return 0
}

func storageFlags(f metadata.BufferFlags) uint32 {
	var flags uint32
	if f.Has(metadata.BufferFlagDynamicStorage) {
		flags |= gl.DYNAMIC_STORAGE_BIT
	}
	if f.Has(metadata.BufferFlagClientStorage) {
		flags |= gl.CLIENT_STORAGE_BIT
	}
	if f.Has(metadata.BufferFlagMapRead) {
		flags |= gl.MAP_READ_BIT
	}
	if f.Has(metadata.BufferFlagMapWrite) {
		flags |= gl.MAP_WRITE_BIT
	}
	if f.Has(metadata.BufferFlagPersistent) {
		flags |= gl.MAP_PERSISTENT_BIT
		if f.Has(metadata.BufferFlagCoherent) {
			flags |= gl.MAP_COHERENT_BIT
		}
	}
	return flags
}

func mapAccess(f metadata.BufferFlags) uint32 {
	access := storageFlags(f) &^ (gl.DYNAMIC_STORAGE_BIT | gl.CLIENT_STORAGE_BIT)
	if !f.Has(metadata.BufferFlagCoherent) {
		access |= gl.MAP_FLUSH_EXPLICIT_BIT
	}
	return access
}

func (r *OpenGLRenderer) BufferCreate(b *resources.Buffer, data []byte) error {
	size := int(b.Size())
	if size == 0 {
		return errors.New("zero sized buffer")
	}
	initial := make([]byte, size)
	copy(initial, data)

	buf := &glBuffer{}
	gl.CreateBuffers(1, &buf.handle)
	gl.NamedBufferStorage(buf.handle, size, gl.Ptr(initial), storageFlags(b.Flags()))
	if code := gl.GetError(); code != gl.NO_ERROR {
		gl.DeleteBuffers(1, &buf.handle)
		return errors.Newf("glNamedBufferStorage failed with 0x%x", code)
	}

	if b.Flags().Has(metadata.BufferFlagPersistent) {
		buf.mapped = gl.MapNamedBufferRange(buf.handle, 0, size, mapAccess(b.Flags()))
		if buf.mapped == nil {
			gl.DeleteBuffers(1, &buf.handle)
			return errors.Newf("mapping buffer %d persistently failed", b.ID)
		}
		b.SetMapped(unsafe.Slice((*byte)(buf.mapped), size))
	}
	b.InternalData = buf
	return nil
}

func (r *OpenGLRenderer) BufferWrite(b *resources.Buffer, offset uint64, data []byte) error {
	buf, err := bufferOf(b)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	gl.NamedBufferSubData(buf.handle, int(offset), len(data), gl.Ptr(data))
	return nil
}

func (r *OpenGLRenderer) BufferRead(b *resources.Buffer, offset, size uint64) ([]byte, error) {
	buf, err := bufferOf(b)
	if err != nil {
		return nil, err
	}
	out := make([]byte, size)
	if size == 0 {
		return out, nil
	}
	gl.GetNamedBufferSubData(buf.handle, int(offset), int(size), gl.Ptr(out))
	return out, nil
}

func (r *OpenGLRenderer) BufferFlush(b *resources.Buffer, offset, size uint64) error {
	buf, err := bufferOf(b)
	if err != nil {
		return err
	}
	gl.FlushMappedNamedBufferRange(buf.handle, int(offset), int(size))
	return nil
}

func (r *OpenGLRenderer) BufferDestroy(b *resources.Buffer) {
	buf, err := bufferOf(b)
	if err != nil {
		return
	}
	if buf.mapped != nil {
		gl.UnmapNamedBuffer(buf.handle)
		buf.mapped = nil
		b.SetMapped(nil)
	}
	gl.DeleteBuffers(1, &buf.handle)
	b.InternalData = nil
}
