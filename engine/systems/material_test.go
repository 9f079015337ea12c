package systems

import (
	"testing"

	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialSystemBuiltins(t *testing.T) {
	ms, err := NewMaterialSystem(&MaterialSystemConfig{MaxMaterialCount: 8})
	require.NoError(t, err)

	caps, ok := ms.Capabilities(metadata.MaterialTypeSolid)
	require.True(t, ok)
	assert.Equal(t, DefaultMaterialName, caps.Name)
	assert.False(t, caps.Tessellation)

	caps, ok = ms.Capabilities(metadata.MaterialTypeTessellated)
	require.True(t, ok)
	assert.True(t, caps.Tessellation)
	assert.Equal(t, uint32(3), caps.PatchVertices)

	caps, _ = ms.Capabilities(metadata.MaterialTypeTransparentVertexAlpha)
	assert.True(t, caps.Transparent)

	_, ok = ms.Capabilities(metadata.MaterialTypeCustom)
	assert.False(t, ok)
	assert.Len(t, ms.Types(), 5)
}

func TestMaterialSystemRegister(t *testing.T) {
	ms, err := NewMaterialSystem(&MaterialSystemConfig{MaxMaterialCount: 6})
	require.NoError(t, err)

	terrain := metadata.MaterialTypeCustom + 1
	require.NoError(t, ms.Register(terrain, metadata.RendererCapabilities{Tessellation: true}))
	caps, ok := ms.Capabilities(terrain)
	require.True(t, ok)
	assert.Equal(t, uint32(3), caps.PatchVertices)
	assert.Equal(t, "custom", caps.Name)

	assert.Error(t, ms.Register(terrain, metadata.RendererCapabilities{}))
	assert.Error(t, ms.Register(terrain+1, metadata.RendererCapabilities{}), "capacity reached")
	assert.Equal(t, []metadata.MaterialType{0, 1, 2, 3, 4, terrain}, ms.Types())

	_, err = NewMaterialSystem(&MaterialSystemConfig{})
	assert.Error(t, err)
}

func TestMaterialSystemDrivesTessellation(t *testing.T) {
	d, backend := newTestDriver(t)
	ms, err := NewMaterialSystem(&MaterialSystemConfig{MaxMaterialCount: 8})
	require.NoError(t, err)
	d.SetMaterialLookup(ms.Capabilities)

	src := assets.GeneratePlane("plane", 1, 1, 1, 1, 1, 1, assets.LayoutSeparate).Buffers[0]
	src.Material.Type = metadata.MaterialTypeTessellated
	mb, err := d.CreateGPUMeshBufferFromCPU(src, renderer.PackingInterleaveAttributes)
	require.NoError(t, err)
	defer mb.Release()

	require.NoError(t, d.DrawMeshBuffer(mb, nil))
	require.Len(t, backend.Draws, 1)
	assert.Equal(t, metadata.PrimitivePatches, backend.Draws[0].Primitive)
}
