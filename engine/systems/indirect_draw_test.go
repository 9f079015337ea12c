package systems

import (
	"slices"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/resources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndirectDrawKeyOrdering(t *testing.T) {
	p1 := &resources.Pipeline{ID: 1}
	p2 := &resources.Pipeline{ID: 2}

	a := IndirectDrawKey{Pipeline: p1}
	b := IndirectDrawKey{Pipeline: p1}
	b.Offsets[3] = 16
	c := IndirectDrawKey{Pipeline: p2}

	keys := []IndirectDrawKey{c, b, a}
	slices.SortFunc(keys, IndirectDrawKey.Compare)
	assert.Equal(t, []IndirectDrawKey{a, b, c}, keys)

	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.True(t, a.Equal(IndirectDrawKey{Pipeline: p1}))
	assert.True(t, IndirectDrawKey{}.Less(a))
}

func TestIndirectDrawGroupsByPipeline(t *testing.T) {
	d, backend := newTestDriver(t)
	ids, err := NewIndirectDrawSystem(d)
	require.NoError(t, err)
	defer ids.Shutdown()

	faces := cubeFaces(t, convertCube(t, d, renderer.PackingInterleaveAttributes))
	flat := &resources.Pipeline{ID: 7, Name: "flat"}
	lit := &resources.Pipeline{ID: 3, Name: "lit"}
	for i, f := range faces {
		p := flat
		if i%2 == 1 {
			p = lit
		}
		require.NoError(t, ids.Add(f, p))
	}

	batches := ids.Batches()
	require.Len(t, batches, 2)
	assert.Same(t, lit, batches[0].Key.Pipeline)
	assert.Same(t, flat, batches[1].Key.Pipeline)
	assert.Equal(t, []metadata.DrawElementsIndirectCommand{
		{Count: 6, InstanceCount: 1, FirstIndex: 0},
		{Count: 6, InstanceCount: 1, FirstIndex: 12},
		{Count: 6, InstanceCount: 1, FirstIndex: 24},
	}, batches[1].Commands())
	assert.Equal(t, metadata.PrimitiveTriangles, batches[0].Primitive())
	assert.Equal(t, metadata.IndexType16, batches[0].IndexType())

	require.NoError(t, ids.Render())
	require.Len(t, backend.IndirectDraws, 2)
	pipelines := backend.CallsOf("pipeline_bind")
	require.Len(t, pipelines, 2)
	assert.Equal(t, uint32(3), pipelines[0].ID)
	assert.Equal(t, uint32(7), pipelines[1].ID)

	for i, draw := range backend.IndirectDraws {
		assert.Equal(t, uint32(3), draw.Call.DrawCount)
		assert.Equal(t, uint32(metadata.DrawElementsIndirectCommandSize), draw.Call.Stride)
		assert.Equal(t, metadata.IndexType16, draw.Call.IndexType)
		assert.Equal(t, batches[i].Commands(), draw.Commands)
		assert.Equal(t, batches[i].Buffer().ID, draw.Buffer)
	}
	assert.Equal(t, uint32(2), d.Stats().IndirectDraws)
}

func TestIndirectDrawFirstIndexFollowsIndexOffset(t *testing.T) {
	d, _ := newTestDriver(t)
	ids, err := NewIndirectDrawSystem(d)
	require.NoError(t, err)
	defer ids.Shutdown()

	// interleave-all stores the indices after 24 vertices of 32 bytes each
	faces := cubeFaces(t, convertCube(t, d, renderer.PackingInterleaveAll))
	p := &resources.Pipeline{ID: 1}
	require.NoError(t, ids.Add(faces[0], p))
	require.NoError(t, ids.Add(faces[5], p))

	cmds := ids.Batches()[0].Commands()
	assert.Equal(t, uint32(384), cmds[0].FirstIndex)
	assert.Equal(t, uint32(384+30), cmds[1].FirstIndex)
}

func TestIndirectDrawRejectsShapeMismatch(t *testing.T) {
	d, backend := newTestDriver(t)
	ids, err := NewIndirectDrawSystem(d)
	require.NoError(t, err)
	defer ids.Shutdown()

	// two separately converted cubes bind the same offsets from different buffers
	first := convertCube(t, d, renderer.PackingInterleaveAttributes)
	second := convertCube(t, d, renderer.PackingInterleaveAttributes)
	require.Equal(t, first.Format().BindingOffsets(), second.Format().BindingOffsets())
	p := &resources.Pipeline{ID: 1}

	require.NoError(t, ids.Add(first, p))
	err = ids.Add(second, p)
	assert.True(t, errors.Is(err, core.ErrBatchShapeMismatch))
	require.Len(t, ids.Batches(), 1)
	assert.Equal(t, 1, ids.Batches()[0].Len())

	// the same buffers under another pipeline form their own batch
	require.NoError(t, ids.Add(second, &resources.Pipeline{ID: 2}))
	require.NoError(t, ids.Render())
	assert.Len(t, backend.IndirectDraws, 2)
}

func TestIndirectDrawRejectsUnindexedMeshBuffers(t *testing.T) {
	d, _ := newTestDriver(t)
	ids, err := NewIndirectDrawSystem(d)
	require.NoError(t, err)
	defer ids.Shutdown()

	cube := convertCube(t, d, renderer.PackingInterleaveAttributes)
	arrays := resources.NewMeshBuffer(resources.MeshBufferDesc{
		Primitive:  metadata.PrimitiveTriangles,
		IndexCount: 3,
	}, cube.Format())
	defer arrays.Release()

	err = ids.Add(arrays, &resources.Pipeline{ID: 1})
	assert.True(t, errors.Is(err, core.ErrInvalidIndexType))
	assert.Empty(t, ids.Batches())

	released, err := cube.SubRange(0, 3)
	require.NoError(t, err)
	released.Release()
	assert.True(t, errors.Is(ids.Add(released, nil), core.ErrReleased))
}

func TestIndirectDrawBuildOnce(t *testing.T) {
	d, backend := newTestDriver(t)
	ids, err := NewIndirectDrawSystem(d)
	require.NoError(t, err)

	faces := cubeFaces(t, convertCube(t, d, renderer.PackingInterleaveAttributes))
	p := &resources.Pipeline{ID: 1}
	before := d.Live()

	require.NoError(t, ids.Add(faces[0], p))
	require.NoError(t, ids.Build())
	assert.True(t, ids.Built())
	assert.Equal(t, before.Buffers+1, d.Live().Buffers)
	assert.Equal(t, before.DescriptorSets+1, d.Live().DescriptorSets)

	assert.True(t, errors.Is(ids.Add(faces[1], p), core.ErrBatchBuilt))
	require.NoError(t, ids.Build())
	assert.Equal(t, before.Buffers+1, d.Live().Buffers)

	ids.Unlock()
	require.NoError(t, ids.Add(faces[1], p))
	require.NoError(t, ids.Render())
	require.Len(t, backend.IndirectDraws, 1)
	assert.Len(t, backend.IndirectDraws[0].Commands, 2)
	assert.Equal(t, before.Buffers+1, d.Live().Buffers)

	require.NoError(t, ids.Shutdown())
	assert.Empty(t, ids.Batches())
	assert.Equal(t, before, d.Live())
}

func TestIndirectDrawBindsBatchTextures(t *testing.T) {
	d, backend := newTestDriver(t)
	ids, err := NewIndirectDrawSystem(d)
	require.NoError(t, err)
	defer ids.Shutdown()

	tex, err := d.CreateTexture("brick", assets.Checkerboard(8, 2), false)
	require.NoError(t, err)
	defer tex.Release()
	defer d.RemoveTexture(tex)

	faces := cubeFaces(t, convertCube(t, d, renderer.PackingInterleaveAttributes))
	m := resources.DefaultMaterial()
	m.Layers[0].Texture = tex
	faces[0].SetMaterial(m)

	p := &resources.Pipeline{ID: 1}
	require.NoError(t, ids.Add(faces[0], p))
	require.NoError(t, ids.Add(faces[1], p))

	batch := ids.Batches()[0]
	assert.Same(t, tex, batch.Textures(0)[0].Texture)
	assert.Nil(t, batch.Textures(1)[0].Texture)

	require.NoError(t, ids.Render())
	assert.Same(t, tex, batch.DescriptorSet().Layers[0].Texture)
	binds := backend.CallsOf("texture_bind")
	require.NotEmpty(t, binds)
	assert.Equal(t, uint32(0), binds[0].Stage)
	assert.Equal(t, tex.ID, binds[0].ID)
}
