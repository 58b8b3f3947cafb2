/*
Probe host for the pipeline library: loads every pipeline description under the
asset root, realizes it on the configured backend and hot reloads on change.
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/prism/engine"
	"github.com/spaghettifunk/prism/engine/core"
)

func main() {
	configPath := flag.String("config", "prism.toml", "path of the TOML configuration file")
	backend := flag.String("backend", "", "override the renderer backend (opengl or vulkan)")
	flag.Parse()

	cfg, err := core.LoadConfig(*configPath)
	if err != nil {
		core.LogFatal("%s", err)
	}
	if *backend != "" {
		cfg.Renderer.Backend = *backend
	}
	if err := core.SetLogLevel(cfg.Log.Level); err != nil {
		core.LogFatal("%s", err)
	}

	eng, err := engine.New(cfg)
	if err != nil {
		core.LogFatal("%s", err)
	}

	if err := eng.Initialize(); err != nil {
		_ = eng.Shutdown()
		core.LogFatal("%s", err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// native objects belong to this thread, so the signal only stops the loop
	go func() {
		<-sigCh
		eng.Quit()
	}()

	runErr := eng.Run()
	if err := eng.Shutdown(); err != nil {
		core.LogError("shutdown: %s", err)
	}
	if runErr != nil {
		core.LogFatal("%s", runErr)
	}
}
