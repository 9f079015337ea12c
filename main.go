/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/prism/engine"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/testbed"
)

func main() {
	configPath := flag.String("config", os.Getenv("PRISM_CONFIG"), "path of the TOML engine config")
	assetsDir := flag.String("assets", os.Getenv("PRISM_ASSETS"), "directory indexed for textures and meshes")
	backend := flag.String("backend", "", "overrides the configured backend (null, opengl, vulkan)")
	frames := flag.Uint64("frames", 0, "stop after this many frames")
	flag.Parse()

	tb := testbed.NewTestGame(&engine.ApplicationConfig{
		Name:       "Prism Testbed",
		ConfigPath: *configPath,
		AssetsDir:  *assetsDir,
		MaxFrames:  *frames,
	})

	e, err := engine.New(tb.Game)
	if err != nil {
		core.LogFatal("failed to create the engine: %s", err)
	}
	// The flag wins over the file; Initialize reads the same config.
	if *backend != "" {
		tb.ApplicationConfig.Config.Driver.Backend = *backend
	}

	if err := e.Initialize(); err != nil {
		core.LogError("failed to initialize the engine: %s", err)
		_ = e.Shutdown()
		os.Exit(1)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	go func() {
		<-sigCh
		e.Stop()
	}()

	runErr := e.Run()
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown: %s", err)
	}
	if runErr != nil {
		core.LogFatal("engine stopped: %s", runErr)
	}
}
