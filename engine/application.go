package engine

import "github.com/spaghettifunk/prism/engine/core"

type ApplicationConfig struct {
	// The application name used in windowing, if applicable.
	Name string
	// Path of the TOML engine config. Empty runs with the defaults in Config.
	ConfigPath string
	// Directory indexed for image and mesh assets. Empty disables asset loading.
	AssetsDir string
	// Engine configuration used when ConfigPath is empty; replaced by the loaded file otherwise.
	Config *core.EngineConfig
	// Stop after this many frames. Zero runs until the window closes or Stop is called.
	MaxFrames uint64
}
