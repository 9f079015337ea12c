package core

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
)

type LogConfig struct {
	Level string `toml:"level"`
}

type DriverConfig struct {
	/** @brief One of "null", "opengl" or "vulkan". */
	Backend string `toml:"backend"`
	/** @brief Upper bound for sampler anisotropy, further clamped to the device maximum. */
	MaxAnisotropy uint8 `toml:"max_anisotropy"`
	/** @brief Number of texture stages tracked by the texture stage cache. */
	MaxTextureUnits uint32 `toml:"max_texture_units"`
	/** @brief Largest index count a single draw may submit. 0 disables the check. */
	MaxIndices uint32 `toml:"max_indices"`
}

type MeshConfig struct {
	/** @brief One of "mirror", "interleave-attributes" or "interleave-all". */
	Packing string `toml:"packing"`
}

type SystemsConfig struct {
	/** @brief Worker goroutines of the job system. */
	Workers      int    `toml:"workers"`
	JobQueueSize int    `toml:"job_queue_size"`
	MaxTextures  uint32 `toml:"max_textures"`
	MaxMeshes    uint32 `toml:"max_meshes"`
	MaxMaterials uint32 `toml:"max_materials"`
	GenerateMips bool   `toml:"generate_mips"`
}

type WindowConfig struct {
	Name   string `toml:"name"`
	X      uint32 `toml:"x"`
	Y      uint32 `toml:"y"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

type EngineConfig struct {
	Log    LogConfig    `toml:"log"`
	Driver DriverConfig `toml:"driver"`
	Mesh    MeshConfig    `toml:"mesh"`
	Systems SystemsConfig `toml:"systems"`
	Window  WindowConfig  `toml:"window"`
}

func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		Log: LogConfig{Level: "info"},
		Driver: DriverConfig{
			Backend:         "opengl",
			MaxAnisotropy:   16,
			MaxTextureUnits: 16,
			MaxIndices:      0,
		},
		Mesh: MeshConfig{Packing: "interleave-attributes"},
		Systems: SystemsConfig{
			Workers:      2,
			JobQueueSize: 64,
			MaxTextures:  1024,
			MaxMeshes:    1024,
			MaxMaterials: 64,
			GenerateMips: true,
		},
		Window: WindowConfig{
			Name:   "Prism Testbed",
			X:      100,
			Y:      100,
			Width:  1280,
			Height: 720,
		},
	}
}

// LoadEngineConfig overlays the TOML file at path on top of the defaults.
func LoadEngineConfig(path string) (*EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	return ParseEngineConfig(data)
}

func ParseEngineConfig(data []byte) (*EngineConfig, error) {
	cfg := DefaultEngineConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decoding config"), ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *EngineConfig) Validate() error {
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Driver.Backend {
	case "null", "opengl", "vulkan":
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown backend %q", c.Driver.Backend)
	}
	switch c.Mesh.Packing {
	case "mirror", "interleave-attributes", "interleave-all":
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown packing policy %q", c.Mesh.Packing)
	}
	if c.Driver.MaxTextureUnits == 0 {
		return errors.Wrap(ErrInvalidConfig, "max_texture_units must be > 0")
	}
	if c.Systems.Workers <= 0 || c.Systems.JobQueueSize < 0 {
		return errors.Wrapf(ErrInvalidConfig, "job system needs at least one worker and a non-negative queue, got %d and %d", c.Systems.Workers, c.Systems.JobQueueSize)
	}
	if c.Systems.MaxTextures == 0 || c.Systems.MaxMeshes == 0 || c.Systems.MaxMaterials == 0 {
		return errors.Wrap(ErrInvalidConfig, "system capacities must be > 0")
	}
	return nil
}

func (c *EngineConfig) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// ConfigWatcher reloads a config file whenever it is written and hands the result to a callback.
type ConfigWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onChange func(*EngineConfig)
	done     chan struct{}
	wg       sync.WaitGroup
}

func WatchEngineConfig(path string, onChange func(*EngineConfig)) (*ConfigWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory so editors that replace the file on save are still seen.
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}
	cw := &ConfigWatcher{
		path:     filepath.Clean(path),
		watcher:  w,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	cw.wg.Add(1)
	go cw.start()
	return cw, nil
}

func (cw *ConfigWatcher) start() {
	defer cw.wg.Done()
	for {
		select {
		case e, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != cw.path || e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			cfg, err := LoadEngineConfig(cw.path)
			if err != nil {
				LogWarn("config reload ignored: %s", err)
				continue
			}
			cw.onChange(cfg)
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			LogError(err.Error())
		case <-cw.done:
			return
		}
	}
}

func (cw *ConfigWatcher) Shutdown() error {
	close(cw.done)
	err := cw.watcher.Close()
	cw.wg.Wait()
	return err
}
