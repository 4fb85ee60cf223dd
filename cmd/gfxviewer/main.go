// Package main is the interactive viewer: the demo scene rendered through
// the fixed-function pipeline on SDL2 and OpenGL.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/app"
	"github.com/Faultbox/midgard-gfx/internal/config"
	"github.com/Faultbox/midgard-gfx/internal/engine/window"
	"github.com/Faultbox/midgard-gfx/internal/gfx/device"
	"github.com/Faultbox/midgard-gfx/internal/gfx/device/opengl"
	"github.com/Faultbox/midgard-gfx/internal/gfx/overlay"
	"github.com/Faultbox/midgard-gfx/internal/gfx/resource"
	"github.com/Faultbox/midgard-gfx/internal/logger"
	"github.com/Faultbox/midgard-gfx/internal/scene"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== midgard-gfx viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		dialog.Message("%v", err).Title("midgard-gfx viewer").Error()
		logger.Fatal("viewer failed", zap.Error(err))
	}
	logger.Info("viewer closed normally")
}

func run(cfg *config.Config) error {
	if cfg.Graphics.Backend != config.BackendGL {
		return fmt.Errorf("backend %q has no window; use gfxtrace", cfg.Graphics.Backend)
	}

	win, err := window.New(window.Config{
		Title:      "midgard-gfx viewer",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer win.Close()

	native, err := opengl.New(win)
	if err != nil {
		return err
	}
	dev := device.NewFixedFunction(native, app.DeviceOptions(cfg))
	defer dev.Close()

	cache := resource.New(dev, cfg.Assets.Root)
	defer cache.Close()

	demo, err := scene.NewDemo(cache)
	if err != nil {
		return fmt.Errorf("failed to build scene: %w", err)
	}

	v := newViewer(win, native, cache, demo)
	a := app.New(native, cache, v)
	a.Target().Add(demo)
	if cfg.Debug.Overlay {
		a.Target().Add(overlay.New(dev))
	}
	a.OnUpdate(v.update)

	if cfg.Debug.HotReload {
		w, err := resource.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to start file watcher: %w", err)
		}
		defer w.Close()
		if err := cache.Watch(w); err != nil {
			return err
		}
		a.SetWatcher(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return a.Run(ctx)
}
