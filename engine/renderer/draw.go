package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/resources"
)

// bindVertexFormat makes format current. The current format is held by a reference.
func (d *Driver) bindVertexFormat(format *resources.VertexFormat) error {
	if format == d.currentFormat && (format == nil || !format.Dirty()) {
		return nil
	}
	if err := d.backend.VertexFormatBind(format); err != nil {
		return err
	}
	if format == d.currentFormat {
		return nil
	}
	if format != nil {
		format.Acquire()
	}
	old := d.currentFormat
	d.currentFormat = format
	if old != nil {
		old.Release()
	}
	return nil
}

// primitiveFor resolves the topology actually submitted for mb. Triangles and quads of a
// tessellating material renderer become patches.
func (d *Driver) primitiveFor(mb *resources.MeshBuffer) (metadata.PrimitiveType, uint32) {
	p := mb.Primitive()
	if p != metadata.PrimitiveTriangles && p != metadata.PrimitiveQuads {
		return p, 0
	}
	if d.materials == nil {
		return p, 0
	}
	caps, ok := d.materials(mb.Material().Type)
	if !ok || !caps.Tessellation {
		return p, 0
	}
	vertices := caps.PatchVertices
	if vertices == 0 {
		vertices = 3
		if p == metadata.PrimitiveQuads {
			vertices = 4
		}
	}
	return metadata.PrimitivePatches, vertices
}

// DrawMeshBuffer draws mb. A nil mb, or one without a vertex format, unbinds the current
// format. When query is a valid occlusion query other than the one being recorded, the
// draw is conditional on its result.
func (d *Driver) DrawMeshBuffer(mb *resources.MeshBuffer, query *resources.OcclusionQuery) error {
	if mb == nil || mb.Format() == nil {
		return d.bindVertexFormat(nil)
	}
	if d.config.MaxIndices > 0 && mb.IndexCount() > d.config.MaxIndices {
		core.LogError("Could not draw, too many indices(%d), maximum is %d.", mb.IndexCount(), d.config.MaxIndices)
	}

	if query != nil && query != d.activeQuery && !query.Destroyed() && d.caps.ConditionalRender {
		if err := d.beginConditionalRender(query); err != nil {
			core.LogWarn("conditional render disabled for this draw: %s", err)
		} else {
			defer d.endConditionalRender()
		}
	}

	if err := d.bindVertexFormat(mb.Format()); err != nil {
		return errors.Wrap(err, "vertex format revalidation failed")
	}

	primitive, patchVertices := d.primitiveFor(mb)
	call := metadata.DrawCall{
		Primitive:     primitive,
		Count:         mb.IndexCount(),
		BaseVertex:    mb.BaseVertex(),
		InstanceCount: mb.InstanceCount(),
		BaseInstance:  mb.BaseInstance(),
		MinIndex:      mb.IndexMinBound(),
		MaxIndex:      mb.IndexMaxBound(),
		PatchVertices: patchVertices,
		PointSize:     mb.Material().Thickness,
	}

	var err error
	if mb.Indexed() {
		call.IndexType = mb.IndexType()
		call.IndexOffset = mb.IndexBufferOffset()
		err = d.backend.DrawIndexed(call)
	} else {
		call.First = uint32(max(mb.BaseVertex(), 0))
		err = d.backend.DrawArrays(call)
	}
	if err != nil {
		return err
	}
	d.countDraw(mb.Primitive(), mb.IndexCount(), mb.InstanceCount())
	return nil
}

func (d *Driver) countDraw(p metadata.PrimitiveType, count, instances uint32) {
	prims := p.PrimitiveCount(count) * max(instances, 1)
	d.stats.DrawCalls++
	d.stats.Primitives += prims
	d.stats.TotalDrawCalls++
	d.stats.TotalPrimitives += uint64(prims)
}

// BindPipeline makes pipeline current unless it already is. nil unbinds.
func (d *Driver) BindPipeline(pipeline *resources.Pipeline) error {
	if pipeline == d.currentPipeline {
		return nil
	}
	if err := d.backend.PipelineBind(pipeline); err != nil {
		return errors.Wrap(err, "binding pipeline")
	}
	d.currentPipeline = pipeline
	return nil
}

// BindDescriptorSet binds every texture layer of set through the texture stage cache.
// A nil set unbinds the layer stages.
func (d *Driver) BindDescriptorSet(set *resources.DescriptorSet) {
	for i := 0; i < metadata.MaxTextureLayers; i++ {
		if set == nil {
			d.SetActiveTexture(uint32(i), nil, metadata.DefaultSamplingParams())
			continue
		}
		layer := set.Layers[i]
		d.SetActiveTexture(uint32(i), layer.Texture, layer.Sampling)
	}
}

// SetMaterial binds the material's texture layers.
func (d *Driver) SetMaterial(m resources.Material) {
	for i, layer := range m.Layers {
		d.SetActiveTexture(uint32(i), layer.Texture, layer.Sampling)
	}
}

// DrawIndexedIndirect issues one multi-draw over drawCount commands read from commands.
// A stride of 0 means tightly packed commands.
func (d *Driver) DrawIndexedIndirect(format *resources.VertexFormat, primitive metadata.PrimitiveType, indexType metadata.IndexType, commands *resources.Buffer, offset uint64, drawCount, stride uint32) error {
	if drawCount == 0 {
		return nil
	}
	if commands == nil || format == nil {
		return errors.New("indirect draw without command buffer or vertex format")
	}
	if indexType == metadata.IndexTypeUnknown {
		return errors.Wrap(core.ErrInvalidIndexType, "indirect draw")
	}
	if stride == 0 {
		stride = metadata.DrawElementsIndirectCommandSize
	}
	end := offset + uint64(drawCount-1)*uint64(stride) + metadata.DrawElementsIndirectCommandSize
	if end > commands.Size() {
		return errors.Wrapf(core.ErrBufferOverflow, "%d indirect commands at offset %d past buffer size %d", drawCount, offset, commands.Size())
	}

	if err := d.bindVertexFormat(format); err != nil {
		return errors.Wrap(err, "vertex format revalidation failed")
	}
	err := d.backend.DrawIndexedIndirect(metadata.IndirectDrawCall{
		Primitive: primitive,
		IndexType: indexType,
		Offset:    offset,
		DrawCount: drawCount,
		Stride:    stride,
	}, commands)
	if err != nil {
		return err
	}
	d.stats.DrawCalls++
	d.stats.IndirectDraws++
	d.stats.TotalDrawCalls++
	return nil
}
