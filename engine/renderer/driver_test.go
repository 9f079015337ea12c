package renderer

import (
	"encoding/json"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/renderer/null"
	"github.com/spaghettifunk/prism/engine/resources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFailsWhenBackendCannotInitialize(t *testing.T) {
	backend := null.New()
	backend.InitError = errors.New("no device")

	d, err := New(backend, "test", 1, 1, core.DriverConfig{})
	assert.Nil(t, d)
	assert.True(t, errors.Is(err, core.ErrDriverInit))
}

func TestNewRejectsDeviceWithoutRequiredFeatures(t *testing.T) {
	caps := null.DefaultCapabilities()
	caps.MultiDrawIndirect = false
	backend := null.NewWithCapabilities(caps)

	_, err := New(backend, "test", 1, 1, core.DriverConfig{})
	assert.True(t, errors.Is(err, core.ErrDriverInit))
	assert.Len(t, backend.CallsOf("shutdown"), 1)

	caps = null.DefaultCapabilities()
	caps.MaxVertexAttribBindings = 8
	_, err = New(null.NewWithCapabilities(caps), "test", 1, 1, core.DriverConfig{})
	assert.True(t, errors.Is(err, core.ErrDriverInit))
}

func TestNewClampsConfigToDevice(t *testing.T) {
	caps := null.DefaultCapabilities()
	caps.MaxAnisotropy = 4
	caps.MaxTextureUnits = 8
	d, err := New(null.NewWithCapabilities(caps), "test", 1, 1, core.DriverConfig{MaxAnisotropy: 16, MaxTextureUnits: 32})
	require.NoError(t, err)
	defer d.Shutdown()

	assert.Equal(t, uint8(4), d.Config().MaxAnisotropy)
	assert.Equal(t, uint32(8), d.Config().MaxTextureUnits)
	assert.False(t, d.SetActiveTexture(8, nil, metadata.DefaultSamplingParams()))
}

func TestNewBackend(t *testing.T) {
	b, err := NewBackend(metadata.BackendNull, nil)
	require.NoError(t, err)
	assert.Equal(t, metadata.BackendNull, b.Type())

	_, err = NewBackend(metadata.BackendOpenGL, nil)
	assert.True(t, errors.Is(err, core.ErrBackendUnavailable))
	_, err = NewBackend(metadata.BackendVulkan, nil)
	assert.True(t, errors.Is(err, core.ErrBackendUnavailable))

	cfg := core.DefaultEngineConfig().Driver
	cfg.Backend = "null"
	d, err := NewFromConfig(nil, "test", 1, 1, cfg)
	require.NoError(t, err)
	assert.NoError(t, d.Shutdown())

	cfg.Backend = "vulkan"
	_, err = NewFromConfig(nil, "test", 1, 1, cfg)
	assert.True(t, errors.Is(err, core.ErrDriverInit))
}

func TestCreateBufferValidatesDescriptor(t *testing.T) {
	d, _ := newTestDriver(t)

	_, err := d.CreateBuffer(4, []byte{1, 2, 3, 4, 5}, metadata.BufferDesc{})
	assert.True(t, errors.Is(err, core.ErrBufferOverflow))

	_, err = d.CreateBuffer(4, nil, metadata.BufferDesc{Persistent: true})
	assert.True(t, errors.Is(err, core.ErrUnsupportedUsage))

	mapped, err := d.CreatePersistentlyMappedBuffer(8, []byte{9}, metadata.BufferUsageWrite, true, false)
	require.NoError(t, err)
	defer mapped.Release()
	require.Len(t, mapped.Mapped(), 8)
	assert.Equal(t, byte(9), mapped.Mapped()[0])

	buf, err := d.CreateBuffer(4, []byte{1, 2}, metadata.BufferDesc{CanUpdateSubData: true})
	require.NoError(t, err)
	require.NoError(t, buf.SubData(2, []byte{3, 4}))
	assert.Equal(t, []byte{1, 2, 3, 4}, readAll(t, buf))
	assert.True(t, errors.Is(buf.SubData(3, []byte{1, 2}), core.ErrBufferOverflow))

	buf.Release()
	assert.Equal(t, 1, d.buffers.Live())
}

func TestDrawMeshBufferIssuesIndexedDraw(t *testing.T) {
	d, backend := newTestDriver(t)
	mesh, _, err := d.CreateGPUMeshFromCPU(assets.GenerateCube("cube", 1, 1, 1, 1, 1, assets.LayoutSeparate), PackingInterleaveAttributes)
	require.NoError(t, err)
	defer mesh.Release()
	mb := mesh.MeshBuffers()[0]

	require.NoError(t, d.BeginFrame(0))
	require.NoError(t, d.DrawMeshBuffer(mb, nil))
	require.NoError(t, d.DrawMeshBuffer(mb, nil))

	require.Len(t, backend.Draws, 2)
	call := backend.Draws[0]
	assert.Equal(t, metadata.PrimitiveTriangles, call.Primitive)
	assert.Equal(t, metadata.IndexType16, call.IndexType)
	assert.Equal(t, uint32(36), call.Count)
	assert.Equal(t, uint32(23), call.MaxIndex)
	assert.Equal(t, uint32(1), call.InstanceCount)

	// the second draw reuses the realized, current format
	assert.Len(t, backend.CallsOf("vertex_format_realize"), 1)
	assert.Len(t, backend.CallsOf("vertex_format_bind"), 1)

	stats := d.Stats()
	assert.Equal(t, uint32(2), stats.DrawCalls)
	assert.Equal(t, uint32(24), stats.Primitives)

	require.NoError(t, d.DrawMeshBuffer(nil, nil))
	assert.Len(t, backend.CallsOf("vertex_format_bind"), 2)
	require.NoError(t, d.EndFrame(0))

	require.NoError(t, d.BeginFrame(0))
	assert.Zero(t, d.Stats().DrawCalls)
	assert.Equal(t, uint64(2), d.Stats().TotalDrawCalls)
}

func TestDrawMeshBufferWithoutIndices(t *testing.T) {
	d, backend := newTestDriver(t)
	src, _ := separateMeshBuffer(6)
	src.Primitive = metadata.PrimitiveLines
	src.InstanceCount = 3
	mb, err := d.CreateGPUMeshBufferFromCPU(src, PackingMirrorLayout)
	require.NoError(t, err)
	defer mb.Release()

	require.NoError(t, d.DrawMeshBuffer(mb, nil))
	require.Len(t, backend.CallsOf("draw_arrays"), 1)
	call := backend.Draws[0]
	assert.Equal(t, metadata.IndexTypeUnknown, call.IndexType)
	assert.Equal(t, uint32(6), call.Count)
	assert.Equal(t, uint32(3), call.InstanceCount)
	assert.Equal(t, uint32(9), d.Stats().Primitives)
}

func TestTessellatedMaterialsDrawPatches(t *testing.T) {
	d, backend := newTestDriver(t)
	d.SetMaterialLookup(func(m metadata.MaterialType) (metadata.RendererCapabilities, bool) {
		if m != metadata.MaterialTypeTessellated {
			return metadata.RendererCapabilities{}, false
		}
		return metadata.RendererCapabilities{Name: "terrain", Tessellation: true}, true
	})

	src := assets.GeneratePlane("plane", 1, 1, 1, 1, 1, 1, assets.LayoutSeparate).Buffers[0]
	src.Material.Type = metadata.MaterialTypeTessellated
	mb, err := d.CreateGPUMeshBufferFromCPU(src, PackingInterleaveAttributes)
	require.NoError(t, err)
	defer mb.Release()

	require.NoError(t, d.DrawMeshBuffer(mb, nil))
	require.Len(t, backend.Draws, 1)
	assert.Equal(t, metadata.PrimitivePatches, backend.Draws[0].Primitive)
	assert.Equal(t, uint32(3), backend.Draws[0].PatchVertices)
}

func TestBindPipelineElidesRebinds(t *testing.T) {
	d, backend := newTestDriver(t)
	p := &resources.Pipeline{ID: 3, Name: "flat"}

	require.NoError(t, d.BindPipeline(p))
	require.NoError(t, d.BindPipeline(p))
	require.NoError(t, d.BindPipeline(nil))
	calls := backend.CallsOf("pipeline_bind")
	require.Len(t, calls, 2)
	assert.Equal(t, uint32(3), calls[0].ID)
	assert.Equal(t, uint32(0), calls[1].ID)
}

func TestDrawIndexedIndirectChecksCommandBuffer(t *testing.T) {
	d, backend := newTestDriver(t)
	format, err := d.CreateVertexFormat()
	require.NoError(t, err)
	defer format.Release()

	cmds := []metadata.DrawElementsIndirectCommand{
		{Count: 6, InstanceCount: 1},
		{Count: 3, InstanceCount: 2, FirstIndex: 6, BaseVertex: 4},
	}
	buf, err := d.CreateFilledDeviceLocalBuffer(metadata.EncodeIndirectCommands(cmds))
	require.NoError(t, err)
	defer buf.Release()

	err = d.DrawIndexedIndirect(format, metadata.PrimitiveTriangles, metadata.IndexTypeUnknown, buf, 0, 2, 0)
	assert.True(t, errors.Is(err, core.ErrInvalidIndexType))
	err = d.DrawIndexedIndirect(format, metadata.PrimitiveTriangles, metadata.IndexType16, buf, 0, 3, 0)
	assert.True(t, errors.Is(err, core.ErrBufferOverflow))
	assert.NoError(t, d.DrawIndexedIndirect(format, metadata.PrimitiveTriangles, metadata.IndexType16, buf, 0, 0, 0))
	assert.Empty(t, backend.IndirectDraws)

	require.NoError(t, d.DrawIndexedIndirect(format, metadata.PrimitiveTriangles, metadata.IndexType16, buf, 0, 2, 0))
	require.Len(t, backend.IndirectDraws, 1)
	draw := backend.IndirectDraws[0]
	assert.Equal(t, uint32(metadata.DrawElementsIndirectCommandSize), draw.Call.Stride)
	assert.Equal(t, cmds, draw.Commands)
	assert.Equal(t, uint32(1), d.Stats().IndirectDraws)
}

func TestOcclusionQueries(t *testing.T) {
	d, backend := newTestDriver(t)
	q, err := d.CreateOcclusionQuery(false)
	require.NoError(t, err)
	defer q.Release()

	require.NoError(t, d.BeginOcclusionQuery(q))
	other, err := d.CreateOcclusionQuery(true)
	require.NoError(t, err)
	require.NoError(t, d.BeginOcclusionQuery(other))
	assert.False(t, other.Active())
	assert.Equal(t, OcclusionPending, d.UpdateOcclusionQuery(q, true))
	require.NoError(t, d.EndOcclusionQuery(q))

	backend.QueryPending = true
	assert.Equal(t, OcclusionPending, d.UpdateOcclusionQuery(q, false))
	backend.QueryPending = false
	backend.QuerySamples = 42
	assert.Equal(t, uint32(42), d.UpdateOcclusionQuery(q, false))
	backend.QuerySamples = 7
	assert.Equal(t, uint32(42), d.UpdateOcclusionQuery(q, false), "result is cached until the next begin")

	require.NoError(t, d.BeginOcclusionQuery(other))
	require.NoError(t, d.EndOcclusionQuery(other))
	assert.Equal(t, uint32(1), d.UpdateOcclusionQuery(other, true))

	other.Release()
	assert.True(t, errors.Is(d.BeginOcclusionQuery(other), core.ErrReleased))
	assert.Equal(t, OcclusionPending, d.UpdateOcclusionQuery(other, true))
}

func TestReleasingActiveQueryEndsIt(t *testing.T) {
	d, backend := newTestDriver(t)
	q, err := d.CreateOcclusionQuery(true)
	require.NoError(t, err)
	require.NoError(t, d.BeginOcclusionQuery(q))
	id := q.ID

	q.Release()
	ends := backend.CallsOf("query_end")
	require.Len(t, ends, 1)
	assert.Equal(t, id, ends[0].ID)

	var order []string
	for _, c := range backend.Calls {
		if c.Op == "query_end" || c.Op == "query_destroy" {
			order = append(order, c.Op)
		}
	}
	assert.Equal(t, []string{"query_end", "query_destroy"}, order)

	next, err := d.CreateOcclusionQuery(true)
	require.NoError(t, err)
	defer next.Release()
	require.NoError(t, d.BeginOcclusionQuery(next))
	assert.True(t, next.Active(), "the released query no longer blocks new ones")
}

func TestConditionalDraw(t *testing.T) {
	d, backend := newTestDriver(t)
	q, err := d.CreateOcclusionQuery(true)
	require.NoError(t, err)
	defer q.Release()
	mesh, _, err := d.CreateGPUMeshFromCPU(assets.GenerateCube("cube", 1, 1, 1, 1, 1, assets.LayoutSeparate), PackingInterleaveAll)
	require.NoError(t, err)
	defer mesh.Release()
	mb := mesh.MeshBuffers()[0]

	require.NoError(t, d.DrawMeshBuffer(mb, q))
	assert.Len(t, backend.CallsOf("conditional_begin"), 1)
	assert.Len(t, backend.CallsOf("conditional_end"), 1)

	// the query being recorded cannot gate its own draw
	require.NoError(t, d.BeginOcclusionQuery(q))
	require.NoError(t, d.DrawMeshBuffer(mb, q))
	require.NoError(t, d.EndOcclusionQuery(q))
	assert.Len(t, backend.CallsOf("conditional_begin"), 1)
}

func TestShutdownReportsAndDestroys(t *testing.T) {
	d, backend := newTestDriver(t)
	tex, err := d.CreateTexture("checker", assets.Checkerboard(8, 2), true)
	require.NoError(t, err)
	require.True(t, d.SetActiveTexture(0, tex, metadata.DefaultSamplingParams()))
	_, err = d.CreateBuffer(16, nil, metadata.BufferDesc{})
	require.NoError(t, err)

	require.NoError(t, d.Shutdown())
	assert.Len(t, backend.CallsOf("sampler_destroy"), 1)
	assert.Empty(t, backend.Samplers)
	assert.Equal(t, int32(1), tex.References())
	assert.Equal(t, 1, d.buffers.Live())
	assert.Len(t, backend.CallsOf("shutdown"), 1)

	require.NoError(t, d.Shutdown())
	assert.Len(t, backend.CallsOf("shutdown"), 1)
}

func TestBuildStatsString(t *testing.T) {
	d, _ := newTestDriver(t)
	tex, err := d.CreateTexture("checker", assets.Checkerboard(4, 1), false)
	require.NoError(t, err)
	defer tex.Release()
	d.SetActiveTexture(2, tex, metadata.DefaultSamplingParams())
	defer d.ClearTextureStages()

	var doc struct {
		Backend string
		Live    map[string]int
		Samplers struct {
			Cached  int
			Entries []map[string]interface{}
		}
		TextureStages []struct {
			Stage   int
			Texture string
		}
	}
	require.NoError(t, json.Unmarshal([]byte(d.BuildStatsString()), &doc))
	assert.Equal(t, "null", doc.Backend)
	assert.Equal(t, 1, doc.Live["Textures"])
	assert.Equal(t, 1, doc.Samplers.Cached)
	require.Len(t, doc.TextureStages, 1)
	assert.Equal(t, 2, doc.TextureStages[0].Stage)
	assert.Equal(t, "checker", doc.TextureStages[0].Texture)
}
