package systems

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/null"
	"github.com/spaghettifunk/prism/engine/resources"
	"github.com/stretchr/testify/require"
)

func newTestDriver(t *testing.T) (*renderer.Driver, *null.Backend) {
	t.Helper()
	backend := null.New()
	d, err := renderer.New(backend, "test", 640, 480, core.DefaultEngineConfig().Driver)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, d.Shutdown())
	})
	return d, backend
}

// convertCube uploads a 36 index cube and releases it when the test ends.
func convertCube(t *testing.T, d *renderer.Driver, policy renderer.PackingPolicy) *resources.MeshBuffer {
	t.Helper()
	cpu := assets.GenerateCube("cube", 1, 1, 1, 1, 1, assets.LayoutSeparate)
	mesh, report, err := d.CreateGPUMeshFromCPU(cpu, policy)
	require.NoError(t, err)
	require.Empty(t, report.Skipped)
	t.Cleanup(mesh.Release)
	return mesh.MeshBuffers()[0]
}

// cubeFaces splits a cube mesh buffer into one mesh buffer per side.
func cubeFaces(t *testing.T, mb *resources.MeshBuffer) []*resources.MeshBuffer {
	t.Helper()
	out := make([]*resources.MeshBuffer, 6)
	for i := range out {
		sub, err := mb.SubRange(uint32(i*6), 6)
		require.NoError(t, err)
		t.Cleanup(sub.Release)
		out[i] = sub
	}
	return out
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

// newTestAssets indexes a directory holding a "brick" image and a "crate" cube descriptor.
func newTestAssets(t *testing.T) *assets.AssetManager {
	t.Helper()
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "brick.png"), assets.Checkerboard(16, 4))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "crate.mesh"), []byte(`
shape = "cube"
width = 2.0
height = 2.0
depth = 2.0
layout = "interleaved"
`), 0o644))

	am, err := assets.NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(dir))
	t.Cleanup(func() { am.Shutdown() })
	return am
}
