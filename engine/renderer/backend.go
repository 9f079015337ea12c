package renderer

import (
	"image"

	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/resources"
)

// RendererBackend is implemented once per graphics API. All calls happen on the
// rendering thread. Object methods receive the resource the driver already created,
// and backends store their handles in its InternalData.
type RendererBackend interface {
	Initialize(appName string, appWidth, appHeight uint32) error
	Shutdown() error
	Resized(width, height uint32) error
	BeginFrame(deltaTime float64) error
	EndFrame(deltaTime float64) error
	Type() metadata.BackendType
	Capabilities() metadata.BackendCapabilities

	resources.BufferOps
	BufferCreate(buffer *resources.Buffer, data []byte) error

	resources.VertexFormatOps
	VertexFormatCreate(format *resources.VertexFormat) error
	// VertexFormatBind makes format current, realizing its bindings first when it is dirty.
	// A nil format unbinds.
	VertexFormatBind(format *resources.VertexFormat) error

	SamplerCreate(params metadata.TextureSamplingParams, anisotropy uint8) (metadata.SamplerHandle, error)
	SamplerDestroy(handle metadata.SamplerHandle)
	// SamplerBind binds handle to stage. Handle 0 unbinds.
	SamplerBind(stage uint32, handle metadata.SamplerHandle)

	resources.TextureOps
	TextureCreate(texture *resources.Texture, mips []*image.RGBA) error
	// TextureBind binds texture to stage. A nil texture unbinds.
	TextureBind(stage uint32, texture *resources.Texture)

	PipelineBind(pipeline *resources.Pipeline) error
	DrawIndexed(call metadata.DrawCall) error
	DrawArrays(call metadata.DrawCall) error
	DrawIndexedIndirect(call metadata.IndirectDrawCall, commands *resources.Buffer) error

	resources.QueryOps
	QueryCreate(query *resources.OcclusionQuery) error
	QueryBegin(query *resources.OcclusionQuery) error
	QueryEnd(query *resources.OcclusionQuery) error
	// QueryResult polls the query. ok is false when wait is false and the GPU has not finished.
	QueryResult(query *resources.OcclusionQuery, wait bool) (result uint32, ok bool)
	ConditionalRenderBegin(query *resources.OcclusionQuery) error
	ConditionalRenderEnd() error
}
