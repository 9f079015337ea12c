package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEngineConfigOverlaysDefaults(t *testing.T) {
	cfg, err := ParseEngineConfig([]byte(`
[log]
level = "debug"

[driver]
backend = "null"
max_anisotropy = 4

[mesh]
packing = "mirror"
`))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "null", cfg.Driver.Backend)
	assert.Equal(t, uint8(4), cfg.Driver.MaxAnisotropy)
	assert.Equal(t, "mirror", cfg.Mesh.Packing)
	// untouched sections keep their defaults
	assert.Equal(t, uint32(16), cfg.Driver.MaxTextureUnits)
	assert.Equal(t, uint32(1280), cfg.Window.Width)
	assert.Equal(t, 2, cfg.Systems.Workers)
}

func TestParseEngineConfigRejectsUnknownNames(t *testing.T) {
	_, err := ParseEngineConfig([]byte("[driver]\nbackend = \"metal\"\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = ParseEngineConfig([]byte("[mesh]\npacking = \"zip\"\n"))
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = ParseEngineConfig([]byte("[log]\nlevel = \"loud\"\n"))
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = ParseEngineConfig([]byte("[systems]\nworkers = 0\n"))
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = ParseEngineConfig([]byte("not = [toml"))
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestEngineConfigMarshalRoundTrip(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.Driver.Backend = "vulkan"

	data, err := cfg.Marshal()
	require.NoError(t, err)

	back, err := ParseEngineConfig(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestParseLogLevel(t *testing.T) {
	for name, want := range map[string]LogLevel{
		"debug":   LogLevelDebug,
		"INFO":    LogLevelInfo,
		"warning": LogLevelWarn,
		"error":   LogLevelError,
		"fatal":   LogLevelFatal,
	} {
		got, err := ParseLogLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestConfigWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prism.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"info\"\n"), 0o644))

	changes := make(chan *EngineConfig, 4)
	w, err := WatchEngineConfig(path, func(cfg *EngineConfig) { changes <- cfg })
	require.NoError(t, err)
	defer w.Shutdown()

	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"error\"\n"), 0o644))

	select {
	case cfg := <-changes:
		assert.Equal(t, "error", cfg.Log.Level)
	case <-time.After(5 * time.Second):
		t.Fatal("config change was not observed")
	}
}
