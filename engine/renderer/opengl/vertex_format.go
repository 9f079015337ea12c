package opengl

import (
	"github.com/cockroachdb/errors"
	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/resources"
)

type vertexArray struct {
	handle  uint32
	enabled [metadata.VertexAttributeCount]bool
}

var glComponentTypes = [metadata.ComponentTypeCount]uint32{
	metadata.ComponentFloat:                           gl.FLOAT,
	metadata.ComponentHalfFloat:                       gl.HALF_FLOAT,
	metadata.ComponentDoubleInFloatOut:                gl.DOUBLE,
	metadata.ComponentUnsignedInt10F11F11FRev:         gl.UNSIGNED_INT_10F_11F_11F_REV,
	metadata.ComponentNormalizedInt2101010Rev:         gl.INT_2_10_10_10_REV,
	metadata.ComponentNormalizedUnsignedInt2101010Rev: gl.UNSIGNED_INT_2_10_10_10_REV,
	metadata.ComponentNormalizedByte:                  gl.BYTE,
	metadata.ComponentNormalizedUnsignedByte:          gl.UNSIGNED_BYTE,
	metadata.ComponentNormalizedShort:                 gl.SHORT,
	metadata.ComponentNormalizedUnsignedShort:         gl.UNSIGNED_SHORT,
	metadata.ComponentNormalizedInt:                   gl.INT,
	metadata.ComponentNormalizedUnsignedInt:           gl.UNSIGNED_INT,
	metadata.ComponentInt2101010Rev:                   gl.INT_2_10_10_10_REV,
	metadata.ComponentUnsignedInt2101010Rev:           gl.UNSIGNED_INT_2_10_10_10_REV,
	metadata.ComponentByte:                            gl.BYTE,
	metadata.ComponentUnsignedByte:                    gl.UNSIGNED_BYTE,
	metadata.ComponentShort:                           gl.SHORT,
	metadata.ComponentUnsignedShort:                   gl.UNSIGNED_SHORT,
	metadata.ComponentInt:                             gl.INT,
	metadata.ComponentUnsignedInt:                     gl.UNSIGNED_INT,
	metadata.ComponentIntegerInt2101010Rev:            gl.INT_2_10_10_10_REV,
	metadata.ComponentIntegerUnsignedInt2101010Rev:    gl.UNSIGNED_INT_2_10_10_10_REV,
	metadata.ComponentIntegerByte:                     gl.BYTE,
	metadata.ComponentIntegerUnsignedByte:             gl.UNSIGNED_BYTE,
	metadata.ComponentIntegerShort:                    gl.SHORT,
	metadata.ComponentIntegerUnsignedShort:            gl.UNSIGNED_SHORT,
	metadata.ComponentIntegerInt:                      gl.INT,
	metadata.ComponentIntegerUnsignedInt:              gl.UNSIGNED_INT,
	metadata.ComponentDoubleInDoubleOut:               gl.DOUBLE,
}

func glComponentSize(c metadata.ComponentCount) int32 {
	if c == metadata.ComponentsBGRA {
		return gl.BGRA
	}
	return int32(c.Components())
}

func (r *OpenGLRenderer) VertexFormatCreate(format *resources.VertexFormat) error {
	vao := &vertexArray{}
	gl.CreateVertexArrays(1, &vao.handle)
	if vao.handle == 0 {
		return errors.New("glCreateVertexArrays returned no object")
	}
	format.InternalData = vao
	return nil
}

func (r *OpenGLRenderer) VertexFormatDestroy(format *resources.VertexFormat) {
	vao, ok := format.InternalData.(*vertexArray)
	if !ok {
		return
	}
	if r.currentFormat == vao {
		gl.BindVertexArray(0)
		r.currentFormat = nil
	}
	gl.DeleteVertexArrays(1, &vao.handle)
	format.InternalData = nil
}

// realize uploads every attribute binding and the element buffer into the VAO.
func (vao *vertexArray) realize(format *resources.VertexFormat) {
	for i := 0; i < metadata.VertexAttributeCount; i++ {
		id := metadata.VertexAttributeID(i)
		index := uint32(i)
		slot := format.Attribute(id)
		if !slot.InUse() {
			if vao.enabled[i] {
				gl.DisableVertexArrayAttrib(vao.handle, index)
				vao.enabled[i] = false
			}
			continue
		}

		size := glComponentSize(slot.Components)
		kind := glComponentTypes[slot.Type]
		switch {
		case slot.Type == metadata.ComponentDoubleInDoubleOut:
			gl.VertexArrayAttribLFormat(vao.handle, index, size, kind, 0)
		case slot.Type.IsInteger():
			gl.VertexArrayAttribIFormat(vao.handle, index, size, kind, 0)
		default:
			gl.VertexArrayAttribFormat(vao.handle, index, size, kind, slot.Type.IsNormalized(), 0)
		}
		gl.VertexArrayAttribBinding(vao.handle, index, index)
		gl.VertexArrayVertexBuffer(vao.handle, index, handleOf(slot.Buffer), int(slot.Offset), int32(slot.Stride))
		if !vao.enabled[i] {
			gl.EnableVertexArrayAttrib(vao.handle, index)
			vao.enabled[i] = true
		}
	}
	gl.VertexArrayElementBuffer(vao.handle, handleOf(format.IndexBuffer()))
	format.MarkClean()
}

func (r *OpenGLRenderer) VertexFormatBind(format *resources.VertexFormat) error {
	if format == nil {
		gl.BindVertexArray(0)
		r.currentFormat = nil
		return nil
	}
	vao, ok := format.InternalData.(*vertexArray)
	if !ok {
		return errors.Wrapf(core.ErrReleased, "vertex format %d has no OpenGL object", format.ID)
	}
	if format.Dirty() {
		vao.realize(format)
	}
	if r.currentFormat != vao {
		gl.BindVertexArray(vao.handle)
		r.currentFormat = vao
	}
	return nil
}
