package assets

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, img image.Image) {
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestAssetManagerIndexesAndLoads(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "meshes"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "meshes", "floor.mesh"), []byte(`
shape = "plane"
width = 4.0
height = 4.0
x_segments = 2
y_segments = 2
layout = "interleaved"
`), 0o644))
	writePNG(t, filepath.Join(dir, "checker.png"), Checkerboard(8, 2))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	am, err := NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(dir))
	defer am.Shutdown()

	infos := am.Assets()
	require.Len(t, infos, 2)
	assert.Equal(t, "checker", infos[0].Name)
	assert.Equal(t, AssetTypeImage, infos[0].Type)
	assert.Equal(t, "floor", infos[1].Name)

	mesh, err := am.LoadMesh("floor")
	require.NoError(t, err)
	assert.Equal(t, "floor", mesh.Name)
	assert.Equal(t, uint32(24), mesh.Buffers[0].IndexCount)
	assert.Equal(t, metadata.IndexType16, mesh.Buffers[0].IndexType)

	img, err := am.LoadImage("checker")
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())

	_, err = am.LoadMesh("missing")
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestAssetManagerWatchesNewFiles(t *testing.T) {
	dir := t.TempDir()
	am, err := NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(dir))
	defer am.Shutdown()

	changed := make(chan AssetInfo, 4)
	am.OnChange(func(info AssetInfo) {
		select {
		case changed <- info:
		default:
		}
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "box.mesh"), []byte(`shape = "cube"`), 0o644))

	select {
	case info := <-changed:
		assert.Equal(t, "box", info.Name)
		assert.Equal(t, AssetTypeMesh, info.Type)
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}

	require.Eventually(t, func() bool {
		_, err := am.LoadMesh("box")
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)
}

func TestMeshDescriptorRejectsUnknownShape(t *testing.T) {
	desc, err := ParseMeshDescriptor([]byte(`shape = "torus"`))
	require.NoError(t, err)
	_, err = desc.Generate()
	assert.True(t, errors.Is(err, core.ErrInvalidConfig))

	_, err = ParseMeshDescriptor([]byte(`shape = `))
	assert.True(t, errors.Is(err, core.ErrInvalidConfig))
}

func TestMeshDescriptorCustomShape(t *testing.T) {
	desc, err := ParseMeshDescriptor([]byte(`
name = "wedge"
shape = "custom"
positions = [[0.0, 0.0, 0.0], [1.0, 0.0, 0.0], [0.0, 1.0, 0.0]]
indices = [0, 1, 2]
`))
	require.NoError(t, err)
	mesh, err := desc.Generate()
	require.NoError(t, err)
	mb := mesh.Buffers[0]
	assert.Equal(t, uint32(3), mb.IndexCount)

	// counter-clockwise in the XY plane faces +Z
	n, ok := mb.AttributeAt(metadata.AttributeNormal, 2)
	require.True(t, ok)
	assert.InDelta(t, 1, n[2], 1e-6)

	desc.Indices = []uint32{0, 1, 3}
	_, err = desc.Generate()
	assert.True(t, errors.Is(err, core.ErrIndexOutOfBounds))

	desc.Indices = []uint32{0, 1}
	_, err = desc.Generate()
	assert.True(t, errors.Is(err, core.ErrInvalidConfig))
}

func TestMeshDescriptorTransform(t *testing.T) {
	desc, err := ParseMeshDescriptor([]byte(`
shape = "plane"

[transform]
translation = [0.0, 0.0, 5.0]
rotation_y = 90.0
scale = [2.0, 2.0, 2.0]
`))
	require.NoError(t, err)
	mesh, err := desc.Generate()
	require.NoError(t, err)
	mb := mesh.Buffers[0]

	box := mb.BoundingBox()
	assert.InDelta(t, 4, box.Min[2], 1e-5)
	assert.InDelta(t, 6, box.Max[2], 1e-5)
	assert.InDelta(t, 0, box.Min[0], 1e-5)
	assert.InDelta(t, 0, box.Max[0], 1e-5)

	// the plane faced +Z and now faces +X
	n, ok := mb.AttributeAt(metadata.AttributeNormal, 0)
	require.True(t, ok)
	assert.InDelta(t, 1, n[0], 1e-5)
}
