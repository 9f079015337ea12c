package opengl

import (
	"github.com/cockroachdb/errors"
	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/resources"
)

func glPrimitive(p metadata.PrimitiveType) (uint32, error) {
	switch p {
	case metadata.PrimitivePoints, metadata.PrimitivePointSprites:
		return gl.POINTS, nil
	case metadata.PrimitiveLineStrip:
		return gl.LINE_STRIP, nil
	case metadata.PrimitiveLineLoop:
		return gl.LINE_LOOP, nil
	case metadata.PrimitiveLines:
		return gl.LINES, nil
	case metadata.PrimitiveTriangleStrip:
		return gl.TRIANGLE_STRIP, nil
	case metadata.PrimitiveTriangleFan:
		return gl.TRIANGLE_FAN, nil
	case metadata.PrimitiveTriangles:
		return gl.TRIANGLES, nil
	case metadata.PrimitivePatches:
		return gl.PATCHES, nil
	}
	return 0, errors.Newf("primitive %s cannot be drawn by the core profile", p)
}

func glIndexType(t metadata.IndexType) uint32 {
	if t == metadata.IndexType16 {
		return gl.UNSIGNED_SHORT
	}
	return gl.UNSIGNED_INT
}

// prepare applies the per-draw fixed function state the call needs.
func (r *OpenGLRenderer) prepare(primitive metadata.PrimitiveType, patchVertices uint32, pointSize float32) (uint32, error) {
	mode, err := glPrimitive(primitive)
	if err != nil {
		return 0, err
	}
	switch mode {
	case gl.POINTS:
		if pointSize > 0 && pointSize != r.pointSize {
			gl.PointSize(pointSize)
			r.pointSize = pointSize
		}
	case gl.PATCHES:
		if int32(patchVertices) != r.patchVertices && patchVertices > 0 {
			gl.PatchParameteri(gl.PATCH_VERTICES, int32(patchVertices))
			r.patchVertices = int32(patchVertices)
		}
	}
	return mode, nil
}

func (r *OpenGLRenderer) PipelineBind(pipeline *resources.Pipeline) error {
	var program uint32
	if pipeline != nil {
		var ok bool
		if program, ok = pipeline.InternalData.(uint32); !ok {
			return errors.Newf("pipeline %q has no program object", pipeline.Name)
		}
	}
	if program != r.program {
		gl.UseProgram(program)
		r.program = program
	}
	return nil
}

func (r *OpenGLRenderer) DrawIndexed(call metadata.DrawCall) error {
	mode, err := r.prepare(call.Primitive, call.PatchVertices, call.PointSize)
	if err != nil {
		return err
	}
	kind := glIndexType(call.IndexType)
	offset := gl.PtrOffset(int(call.IndexOffset))
	if call.InstanceCount <= 1 && call.BaseInstance == 0 {
		gl.DrawRangeElementsBaseVertex(mode, call.MinIndex, call.MaxIndex, int32(call.Count), kind, offset, call.BaseVertex)
		return nil
	}
	gl.DrawElementsInstancedBaseVertexBaseInstance(mode, int32(call.Count), kind, offset, int32(call.InstanceCount), call.BaseVertex, call.BaseInstance)
	return nil
}

func (r *OpenGLRenderer) DrawArrays(call metadata.DrawCall) error {
	mode, err := r.prepare(call.Primitive, call.PatchVertices, call.PointSize)
	if err != nil {
		return err
	}
	if call.InstanceCount <= 1 && call.BaseInstance == 0 {
		gl.DrawArrays(mode, int32(call.First), int32(call.Count))
		return nil
	}
	gl.DrawArraysInstancedBaseInstance(mode, int32(call.First), int32(call.Count), int32(call.InstanceCount), call.BaseInstance)
	return nil
}

func (r *OpenGLRenderer) DrawIndexedIndirect(call metadata.IndirectDrawCall, commands *resources.Buffer) error {
	buf, err := bufferOf(commands)
	if err != nil {
		return err
	}
	mode, err := r.prepare(call.Primitive, call.PatchVertices, 0)
	if err != nil {
		return err
	}
	gl.BindBuffer(gl.DRAW_INDIRECT_BUFFER, buf.handle)
	gl.MultiDrawElementsIndirect(mode, glIndexType(call.IndexType), gl.PtrOffset(int(call.Offset)), int32(call.DrawCount), int32(call.Stride))
	gl.BindBuffer(gl.DRAW_INDIRECT_BUFFER, 0)
	return nil
}
