package systems

import (
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

func TestSystemManagerWiresSystems(t *testing.T) {
	d, backend := newTestDriver(t)
	config := core.DefaultEngineConfig()
	config.Mesh.Packing = "mirror"

	sm, err := NewSystemManager(config, d, nil)
	require.NoError(t, err)
	assert.Equal(t, renderer.PackingMirrorLayout, sm.MeshSystem().Packing())
	require.NotNil(t, sm.TextureSystem().Default())

	cpu := assets.GenerateCube("cube", 1, 1, 1, 1, 1, assets.LayoutInterleaved)
	cpu.Buffers[0].Material.Type = metadata.MaterialTypeTessellated
	mesh, err := sm.MeshSystem().AcquireFromCPU("cube", cpu, false)
	require.NoError(t, err)

	// the material system answers the driver's lookups
	require.NoError(t, d.DrawMeshBuffer(mesh.MeshBuffers()[0], nil))
	require.Len(t, backend.Draws, 1)
	assert.Equal(t, metadata.PrimitivePatches, backend.Draws[0].Primitive)

	ids := sm.IndirectDrawSystem()
	require.NoError(t, ids.Add(mesh.MeshBuffers()[0], &resources.Pipeline{ID: 1}))
	require.NoError(t, ids.Render())
	require.Len(t, backend.IndirectDraws, 1)

	sm.Update()
	require.NoError(t, sm.Shutdown())
	// unbind the format the driver still holds
	require.NoError(t, d.DrawMeshBuffer(nil, nil))
	assert.Equal(t, renderer.LiveObjects{}, d.Live())
}

func TestSystemManagerRejectsBadConfig(t *testing.T) {
	d, _ := newTestDriver(t)
	config := core.DefaultEngineConfig()
	config.Mesh.Packing = "zip"
	_, err := NewSystemManager(config, d, nil)
	assert.True(t, errors.Is(err, core.ErrInvalidConfig))

	config = core.DefaultEngineConfig()
	config.Systems.MaxTextures = 0
	_, err = NewSystemManager(config, d, nil)
	assert.True(t, errors.Is(err, core.ErrInvalidConfig))
	assert.Equal(t, 0, d.Live().Textures)
}
