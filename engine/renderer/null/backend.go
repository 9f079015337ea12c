// Package null implements a renderer backend without a GPU. It keeps buffer contents in
// memory and records every call, which makes it the backend of choice for tests and
// headless tools.
package null

import (
	"image"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/resources"
)

/** @brief One recorded backend call. Fields not meaningful for Op are zero. */
type Call struct {
	Op     string
	Stage  uint32
	Handle uint64
	ID     uint32
}

/** @brief An indirect draw with the commands that were in the buffer at submission time. */
type IndirectDraw struct {
	Call     metadata.IndirectDrawCall
	Buffer   uint32
	Commands []metadata.DrawElementsIndirectCommand
}

type Backend struct {
	caps metadata.BackendCapabilities

	/** @brief Returned by Initialize when set. */
	InitError error
	/** @brief Occlusion queries report no result until cleared. */
	QueryPending bool
	/** @brief Sample count every occlusion query reports. */
	QuerySamples uint32

	Calls         []Call
	Draws         []metadata.DrawCall
	IndirectDraws []IndirectDraw
	Samplers      map[metadata.SamplerHandle]metadata.TextureSamplingParams
	Textures      map[uint32][]*image.RGBA

	SamplersCreated int
	initialized     bool
	nextSampler     metadata.SamplerHandle
}

// DefaultCapabilities describes a device that satisfies every driver requirement.
func DefaultCapabilities() metadata.BackendCapabilities {
	return metadata.BackendCapabilities{
		MaxAnisotropy:           16,
		MaxTextureUnits:         16,
		MaxVertexAttribBindings: 16,
		MultiDrawIndirect:       true,
		ConditionalRender:       true,
		Tessellation:            true,
		SeamlessCubeMap:         true,
	}
}

func New() *Backend {
	return NewWithCapabilities(DefaultCapabilities())
}

func NewWithCapabilities(caps metadata.BackendCapabilities) *Backend {
	return &Backend{
		caps:     caps,
		Samplers: make(map[metadata.SamplerHandle]metadata.TextureSamplingParams),
		Textures: make(map[uint32][]*image.RGBA),
	}
}

func (b *Backend) record(c Call) {
	b.Calls = append(b.Calls, c)
}

// CallsOf returns the recorded calls with the given op in order.
func (b *Backend) CallsOf(op string) []Call {
	var out []Call
	for _, c := range b.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets the recorded calls and draws.
func (b *Backend) Reset() {
	b.Calls = nil
	b.Draws = nil
	b.IndirectDraws = nil
}

func (b *Backend) Initialize(appName string, appWidth, appHeight uint32) error {
	if b.InitError != nil {
		return b.InitError
	}
	b.initialized = true
	b.record(Call{Op: "initialize"})
	core.LogDebug("null backend initialized for %s (%dx%d)", appName, appWidth, appHeight)
	return nil
}

func (b *Backend) Shutdown() error {
	b.initialized = false
	b.record(Call{Op: "shutdown"})
	return nil
}

func (b *Backend) Resized(width, height uint32) error {
	b.record(Call{Op: "resized"})
	return nil
}

func (b *Backend) BeginFrame(deltaTime float64) error {
	b.record(Call{Op: "begin_frame"})
	return nil
}

func (b *Backend) EndFrame(deltaTime float64) error {
	b.record(Call{Op: "end_frame"})
	return nil
}

func (b *Backend) Type() metadata.BackendType {
	return metadata.BackendNull
}

func (b *Backend) Capabilities() metadata.BackendCapabilities {
	return b.caps
}

func storage(buffer *resources.Buffer) ([]byte, error) {
	data, ok := buffer.InternalData.([]byte)
	if !ok {
		return nil, errors.Newf("buffer %d has no storage", buffer.ID)
	}
	return data, nil
}

func (b *Backend) BufferCreate(buffer *resources.Buffer, data []byte) error {
	store := make([]byte, buffer.Size())
	copy(store, data)
	buffer.InternalData = store
	if buffer.Flags().Has(metadata.BufferFlagPersistent) {
		buffer.SetMapped(store)
	}
	b.record(Call{Op: "buffer_create", ID: buffer.ID})
	return nil
}

func (b *Backend) BufferWrite(buffer *resources.Buffer, offset uint64, data []byte) error {
	store, err := storage(buffer)
	if err != nil {
		return err
	}
	copy(store[offset:], data)
	b.record(Call{Op: "buffer_write", ID: buffer.ID})
	return nil
}

func (b *Backend) BufferRead(buffer *resources.Buffer, offset, size uint64) ([]byte, error) {
	store, err := storage(buffer)
	if err != nil {
		return nil, err
	}
	out := make([]byte, size)
	copy(out, store[offset:offset+size])
	return out, nil
}

func (b *Backend) BufferFlush(buffer *resources.Buffer, offset, size uint64) error {
	b.record(Call{Op: "buffer_flush", ID: buffer.ID})
	return nil
}

func (b *Backend) BufferDestroy(buffer *resources.Buffer) {
	buffer.InternalData = nil
	buffer.SetMapped(nil)
	b.record(Call{Op: "buffer_destroy", ID: buffer.ID})
}

func (b *Backend) VertexFormatCreate(format *resources.VertexFormat) error {
	b.record(Call{Op: "vertex_format_create", ID: format.ID})
	return nil
}

func (b *Backend) VertexFormatDestroy(format *resources.VertexFormat) {
	b.record(Call{Op: "vertex_format_destroy", ID: format.ID})
}

func (b *Backend) VertexFormatBind(format *resources.VertexFormat) error {
	if format == nil {
		b.record(Call{Op: "vertex_format_bind"})
		return nil
	}
	if format.Dirty() {
		b.record(Call{Op: "vertex_format_realize", ID: format.ID})
		format.MarkClean()
	}
	b.record(Call{Op: "vertex_format_bind", ID: format.ID})
	return nil
}

func (b *Backend) SamplerCreate(params metadata.TextureSamplingParams, anisotropy uint8) (metadata.SamplerHandle, error) {
	b.nextSampler++
	b.SamplersCreated++
	b.Samplers[b.nextSampler] = params
	b.record(Call{Op: "sampler_create", Handle: uint64(b.nextSampler)})
	return b.nextSampler, nil
}

func (b *Backend) SamplerDestroy(handle metadata.SamplerHandle) {
	delete(b.Samplers, handle)
	b.record(Call{Op: "sampler_destroy", Handle: uint64(handle)})
}

func (b *Backend) SamplerBind(stage uint32, handle metadata.SamplerHandle) {
	b.record(Call{Op: "sampler_bind", Stage: stage, Handle: uint64(handle)})
}

func (b *Backend) TextureCreate(texture *resources.Texture, mips []*image.RGBA) error {
	b.Textures[texture.ID] = mips
	b.record(Call{Op: "texture_create", ID: texture.ID})
	return nil
}

func (b *Backend) TextureDestroy(texture *resources.Texture) {
	delete(b.Textures, texture.ID)
	b.record(Call{Op: "texture_destroy", ID: texture.ID})
}

func (b *Backend) TextureBind(stage uint32, texture *resources.Texture) {
	c := Call{Op: "texture_bind", Stage: stage}
	if texture != nil {
		c.ID = texture.ID
	}
	b.record(c)
}

func (b *Backend) PipelineBind(pipeline *resources.Pipeline) error {
	c := Call{Op: "pipeline_bind"}
	if pipeline != nil {
		c.ID = pipeline.ID
	}
	b.record(c)
	return nil
}

func (b *Backend) DrawIndexed(call metadata.DrawCall) error {
	b.Draws = append(b.Draws, call)
	b.record(Call{Op: "draw_indexed"})
	return nil
}

func (b *Backend) DrawArrays(call metadata.DrawCall) error {
	b.Draws = append(b.Draws, call)
	b.record(Call{Op: "draw_arrays"})
	return nil
}

func (b *Backend) DrawIndexedIndirect(call metadata.IndirectDrawCall, commands *resources.Buffer) error {
	store, err := storage(commands)
	if err != nil {
		return err
	}
	cmds := make([]metadata.DrawElementsIndirectCommand, 0, call.DrawCount)
	for i := uint32(0); i < call.DrawCount; i++ {
		start := call.Offset + uint64(i)*uint64(call.Stride)
		decoded, err := metadata.DecodeIndirectCommands(store[start : start+metadata.DrawElementsIndirectCommandSize])
		if err != nil {
			return err
		}
		cmds = append(cmds, decoded...)
	}
	b.IndirectDraws = append(b.IndirectDraws, IndirectDraw{Call: call, Buffer: commands.ID, Commands: cmds})
	b.record(Call{Op: "draw_indexed_indirect", ID: commands.ID})
	return nil
}

func (b *Backend) QueryCreate(query *resources.OcclusionQuery) error {
	b.record(Call{Op: "query_create", ID: query.ID})
	return nil
}

func (b *Backend) QueryDestroy(query *resources.OcclusionQuery) {
	b.record(Call{Op: "query_destroy", ID: query.ID})
}

func (b *Backend) QueryBegin(query *resources.OcclusionQuery) error {
	b.record(Call{Op: "query_begin", ID: query.ID})
	return nil
}

func (b *Backend) QueryEnd(query *resources.OcclusionQuery) error {
	b.record(Call{Op: "query_end", ID: query.ID})
	return nil
}

func (b *Backend) QueryResult(query *resources.OcclusionQuery, wait bool) (uint32, bool) {
	if b.QueryPending && !wait {
		return 0, false
	}
	return b.QuerySamples, true
}

func (b *Backend) ConditionalRenderBegin(query *resources.OcclusionQuery) error {
	b.record(Call{Op: "conditional_begin", ID: query.ID})
	return nil
}

func (b *Backend) ConditionalRenderEnd() error {
	b.record(Call{Op: "conditional_end"})
	return nil
}
