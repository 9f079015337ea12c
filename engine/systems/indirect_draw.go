package systems

import (
	"cmp"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/resources"
)

/** @brief Number of texture layers recorded per indirect draw. */
const MaxTexturesPerDraw = 2

/**
 * @brief Groups draws that can share one multi-draw call. Pipelines are
 * ordered by ID, so IDs must be unique among the pipelines handed to one system.
 */
type IndirectDrawKey struct {
	Pipeline *resources.Pipeline
	Offsets  [metadata.VertexAttributeCount]uint64
}

func pipelineID(p *resources.Pipeline) uint32 {
	if p == nil {
		return 0
	}
	return p.ID
}

// Compare orders keys by pipeline ID, then by binding offsets slot by slot.
func (k IndirectDrawKey) Compare(other IndirectDrawKey) int {
	if c := cmp.Compare(pipelineID(k.Pipeline), pipelineID(other.Pipeline)); c != 0 {
		return c
	}
	return slices.Compare(k.Offsets[:], other.Offsets[:])
}

func (k IndirectDrawKey) Less(other IndirectDrawKey) bool {
	return k.Compare(other) < 0
}

func (k IndirectDrawKey) Equal(other IndirectDrawKey) bool {
	return k.Compare(other) == 0
}

/** @brief All draws recorded under one key, drawn by a single indirect call. */
type IndirectDrawBatch struct {
	Key IndirectDrawKey

	format    *resources.VertexFormat
	signature resources.VertexFormatSignature
	primitive metadata.PrimitiveType
	indexType metadata.IndexType

	commands []metadata.DrawElementsIndirectCommand
	textures [][MaxTexturesPerDraw]resources.TextureLayer

	buffer *resources.Buffer
	set    *resources.DescriptorSet
}

func (b *IndirectDrawBatch) Format() *resources.VertexFormat { return b.format }
func (b *IndirectDrawBatch) Primitive() metadata.PrimitiveType { return b.primitive }
func (b *IndirectDrawBatch) IndexType() metadata.IndexType { return b.indexType }
func (b *IndirectDrawBatch) Len() int { return len(b.commands) }

// Commands returns a copy of the recorded draw commands in insertion order.
func (b *IndirectDrawBatch) Commands() []metadata.DrawElementsIndirectCommand {
	return slices.Clone(b.commands)
}

// Textures returns the texture layers recorded for draw i.
func (b *IndirectDrawBatch) Textures(i int) [MaxTexturesPerDraw]resources.TextureLayer {
	return b.textures[i]
}

// Buffer is the uploaded command buffer, nil until the batch is built.
func (b *IndirectDrawBatch) Buffer() *resources.Buffer { return b.buffer }

func (b *IndirectDrawBatch) DescriptorSet() *resources.DescriptorSet { return b.set }

func (b *IndirectDrawBatch) releaseGPU() {
	if b.buffer != nil {
		b.buffer.Release()
		b.buffer = nil
	}
	if b.set != nil {
		b.set.Release()
		b.set = nil
	}
}

func (b *IndirectDrawBatch) release() {
	b.releaseGPU()
	for _, layers := range b.textures {
		for _, l := range layers {
			if l.Texture != nil {
				l.Texture.Release()
			}
		}
	}
	b.textures = nil
	b.commands = nil
	if b.format != nil {
		b.format.Release()
		b.format = nil
	}
}

// IndirectDrawSystem collects indexed mesh buffers into batches keyed by pipeline and
// vertex binding offsets, uploads one command buffer per batch and draws each batch
// with a single indirect call.
type IndirectDrawSystem struct {
	driver  *renderer.Driver
	batches map[IndirectDrawKey]*IndirectDrawBatch
	built   bool
}

func NewIndirectDrawSystem(driver *renderer.Driver) (*IndirectDrawSystem, error) {
	if driver == nil {
		err := errors.New("func NewIndirectDrawSystem - driver must not be nil")
		core.LogError(err.Error())
		return nil, err
	}
	return &IndirectDrawSystem{
		driver:  driver,
		batches: make(map[IndirectDrawKey]*IndirectDrawBatch),
	}, nil
}

/**
 * @brief Records one draw of mb under pipeline. A mesh buffer whose vertex format
 * signature, primitive or index type differs from the batch it keys into is
 * refused with ErrBatchShapeMismatch and nothing is recorded.
 */
func (s *IndirectDrawSystem) Add(mb *resources.MeshBuffer, pipeline *resources.Pipeline) error {
	if s.built {
		return errors.Wrap(core.ErrBatchBuilt, "call Rebuild to record more draws")
	}
	if mb == nil || mb.Destroyed() {
		return errors.Wrap(core.ErrReleased, "adding mesh buffer to indirect draws")
	}
	format := mb.Format()
	if format == nil || mb.IndexCount() == 0 {
		return core.ErrEmptyMeshBuffer
	}
	if !mb.Indexed() {
		return errors.Wrap(core.ErrInvalidIndexType, "indirect draws need an indexed mesh buffer")
	}
	indexSize := uint64(mb.IndexType().Size())
	if mb.IndexBufferOffset()%indexSize != 0 {
		return errors.Wrapf(core.ErrIndexOutOfBounds, "index offset %d is not a multiple of the index size %d", mb.IndexBufferOffset(), indexSize)
	}

	key := IndirectDrawKey{Pipeline: pipeline, Offsets: format.BindingOffsets()}
	signature := format.Signature()
	batch, ok := s.batches[key]
	if !ok {
		format.Acquire()
		batch = &IndirectDrawBatch{
			Key:       key,
			format:    format,
			signature: signature,
			primitive: mb.Primitive(),
			indexType: mb.IndexType(),
		}
		s.batches[key] = batch
	} else if batch.signature != signature || batch.primitive != mb.Primitive() || batch.indexType != mb.IndexType() {
		core.LogWarn("mesh buffer (%s, %s) does not match batch (%s, %s) of pipeline %d",
			mb.Primitive(), mb.IndexType(), batch.primitive, batch.indexType, pipelineID(pipeline))
		return core.ErrBatchShapeMismatch
	}

	batch.commands = append(batch.commands, metadata.DrawElementsIndirectCommand{
		Count:         mb.IndexCount(),
		InstanceCount: mb.InstanceCount(),
		FirstIndex:    uint32(mb.IndexBufferOffset() / indexSize),
		BaseVertex:    mb.BaseVertex(),
		BaseInstance:  mb.BaseInstance(),
	})

	var layers [MaxTexturesPerDraw]resources.TextureLayer
	material := mb.Material()
	for i := range layers {
		layers[i] = material.Layers[i]
		if layers[i].Texture != nil {
			layers[i].Texture.Acquire()
		}
	}
	batch.textures = append(batch.textures, layers)
	return nil
}

// Batches returns the batches ordered by key.
func (s *IndirectDrawSystem) Batches() []*IndirectDrawBatch {
	out := make([]*IndirectDrawBatch, 0, len(s.batches))
	for _, b := range s.batches {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b *IndirectDrawBatch) int {
		return a.Key.Compare(b.Key)
	})
	return out
}

func (s *IndirectDrawSystem) Built() bool {
	return s.built
}

/**
 * @brief Uploads every non-empty batch into a device-local command buffer and
 * creates its descriptor set from the first draw's textures. Building twice does
 * nothing.
 */
func (s *IndirectDrawSystem) Build() error {
	if s.built {
		return nil
	}
	for _, batch := range s.Batches() {
		if len(batch.commands) == 0 {
			continue
		}
		buf, err := s.driver.CreateFilledDeviceLocalBuffer(metadata.EncodeIndirectCommands(batch.commands))
		if err != nil {
			s.releaseGPU()
			return errors.Wrapf(err, "uploading %d indirect commands for pipeline %d", len(batch.commands), pipelineID(batch.Key.Pipeline))
		}
		batch.buffer = buf
		set := s.driver.CreateDescriptorSet()
		for i, layer := range batch.textures[0] {
			if layer.Texture != nil {
				set.SetLayer(i, layer.Texture, layer.Sampling)
			}
		}
		batch.set = set
	}
	s.built = true
	core.LogDebug("built %d indirect draw batches", len(s.batches))
	return nil
}

// Rebuild drops the uploaded command buffers and builds them again from the recorded draws.
func (s *IndirectDrawSystem) Rebuild() error {
	s.releaseGPU()
	s.built = false
	return s.Build()
}

// Unlock keeps the uploaded batches but allows more draws to be recorded before the next Rebuild.
func (s *IndirectDrawSystem) Unlock() {
	s.built = false
}

/**
 * @brief Draws every built batch in key order: bind pipeline, bind descriptor set,
 * one indirect draw. Builds first when needed.
 */
func (s *IndirectDrawSystem) Render() error {
	if !s.built {
		if err := s.Rebuild(); err != nil {
			return err
		}
	}
	for _, batch := range s.Batches() {
		if batch.buffer == nil {
			continue
		}
		if err := s.driver.BindPipeline(batch.Key.Pipeline); err != nil {
			return err
		}
		s.driver.BindDescriptorSet(batch.set)
		err := s.driver.DrawIndexedIndirect(batch.format, batch.primitive, batch.indexType, batch.buffer, 0, uint32(len(batch.commands)), 0)
		if err != nil {
			return errors.Wrapf(err, "indirect draw of pipeline %d", pipelineID(batch.Key.Pipeline))
		}
	}
	return nil
}

func (s *IndirectDrawSystem) releaseGPU() {
	for _, b := range s.batches {
		b.releaseGPU()
	}
}

// Clear drops every recorded draw and uploaded buffer.
func (s *IndirectDrawSystem) Clear() {
	for key, b := range s.batches {
		b.release()
		delete(s.batches, key)
	}
	s.built = false
}

func (s *IndirectDrawSystem) Shutdown() error {
	s.Clear()
	return nil
}
