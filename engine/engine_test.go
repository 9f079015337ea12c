package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/resources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counters struct {
	initialized, updates, renders, resizes, shutdowns int
}

func newCountingGame(config *core.EngineConfig, frames uint64) (*Game, *counters) {
	c := &counters{}
	g := &Game{
		ApplicationConfig: &ApplicationConfig{Name: "engine test", Config: config, MaxFrames: frames},
	}
	g.FnInitialize = func() error { c.initialized++; return nil }
	g.FnUpdate = func(float64) error { c.updates++; return nil }
	g.FnRender = func(float64) error { c.renders++; return nil }
	g.FnOnResize = func(uint32, uint32) error { c.resizes++; return nil }
	g.FnShutdown = func() error { c.shutdowns++; return nil }
	return g, c
}

func nullConfig() *core.EngineConfig {
	config := core.DefaultEngineConfig()
	config.Driver.Backend = "null"
	config.Systems.Workers = 1
	return config
}

func TestEngineRunsFrames(t *testing.T) {
	g, c := newCountingGame(nullConfig(), 3)
	e, err := New(g)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	require.NotNil(t, g.Driver)
	require.NotNil(t, g.SystemManager)
	assert.Equal(t, 1, c.initialized)
	assert.Equal(t, 1, c.resizes, "the game learns the initial framebuffer size")

	require.NoError(t, e.Run())
	assert.Equal(t, uint64(3), e.FrameNumber())
	assert.Equal(t, 3, c.updates)
	assert.Equal(t, 3, c.renders)

	require.NoError(t, e.Shutdown())
	require.NoError(t, e.Shutdown())
	assert.Equal(t, 1, c.shutdowns)
}

func TestEngineDrawsThroughSystems(t *testing.T) {
	g, _ := newCountingGame(nullConfig(), 2)
	var pipeline = &resources.Pipeline{ID: 4}
	g.FnInitialize = func() error {
		cube := assets.GenerateCube("cube", 1, 1, 1, 1, 1, assets.LayoutInterleaved)
		mesh, err := g.SystemManager.MeshSystem().AcquireFromCPU("cube", cube, false)
		if err != nil {
			return err
		}
		return g.SystemManager.IndirectDrawSystem().Add(mesh.MeshBuffers()[0], pipeline)
	}
	g.FnRender = func(float64) error {
		return g.SystemManager.IndirectDrawSystem().Render()
	}

	e, err := New(g)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	require.NoError(t, e.Run())
	assert.Equal(t, uint32(1), g.Driver.Stats().IndirectDraws, "one multi-draw per frame")
	require.NoError(t, e.Shutdown())
}

func TestEngineStopsOnRenderError(t *testing.T) {
	g, c := newCountingGame(nullConfig(), 0)
	boom := errors.New("boom")
	g.FnRender = func(float64) error { return boom }

	e, err := New(g)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	err = e.Run()
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, 1, c.updates)
	require.NoError(t, e.Shutdown())
}

func TestEngineLoadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prism.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[log]
level = "debug"

[driver]
backend = "null"

[mesh]
packing = "interleave-all"
`), 0o644))

	g, _ := newCountingGame(nil, 1)
	g.ApplicationConfig.ConfigPath = path
	e, err := New(g)
	require.NoError(t, err)
	assert.Equal(t, "null", g.ApplicationConfig.Config.Driver.Backend)
	require.NoError(t, e.Initialize())
	assert.Equal(t, "interleave-all", g.SystemManager.MeshSystem().Packing().String())
	require.NoError(t, e.Run())
	require.NoError(t, e.Shutdown())
}

func TestEngineRejectsBadInput(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	config := nullConfig()
	config.Mesh.Packing = "zip"
	g, _ := newCountingGame(config, 1)
	_, err = New(g)
	assert.True(t, errors.Is(err, core.ErrInvalidConfig))

	g, _ = newCountingGame(nullConfig(), 1)
	e, err := New(g)
	require.NoError(t, err)
	assert.Error(t, e.Run(), "running before Initialize")
}
