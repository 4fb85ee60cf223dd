// Package app runs the per-frame flow: poll, update, compose, submit and
// present, all on the calling goroutine.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/config"
	"github.com/Faultbox/midgard-gfx/internal/gfx"
	"github.com/Faultbox/midgard-gfx/internal/gfx/compose"
	"github.com/Faultbox/midgard-gfx/internal/gfx/device"
	"github.com/Faultbox/midgard-gfx/internal/gfx/resource"
	"github.com/Faultbox/midgard-gfx/internal/logger"
)

// Poller processes platform events once per frame and reports whether the
// application should quit.
type Poller interface {
	Poll() (quit bool)
}

// UpdateFunc advances application state by dt before the frame is composed.
type UpdateFunc func(dt time.Duration) error

// App is the explicit application context passed through the frame loop.
type App struct {
	ctx        *compose.Context
	cache      *resource.Cache
	compositor *compose.Compositor
	target     *compose.Target
	poller     Poller
	update     UpdateFunc
	watcher    *resource.Watcher
	log        *zap.Logger

	frames      uint64
	lastTime    time.Time
	onComposite func(compose.Composite)
}

// New creates an app drawing through cache onto surface.
func New(surface compose.Surface, cache *resource.Cache, poller Poller) *App {
	ctx := compose.NewContext(cache.Device(), surface)
	return &App{
		ctx:        ctx,
		cache:      cache,
		compositor: compose.NewCompositor(cache),
		target:     compose.NewTarget(ctx.Viewport()),
		poller:     poller,
		log:        logger.Named("app"),
	}
}

// Target returns the drawables of every frame.
func (a *App) Target() *compose.Target {
	return a.target
}

func (a *App) Device() device.Device {
	return a.ctx.Device()
}

func (a *App) Cache() *resource.Cache {
	return a.cache
}

// Frames returns the number of frames completed.
func (a *App) Frames() uint64 {
	return a.frames
}

// OnUpdate sets the per-frame update callback.
func (a *App) OnUpdate(fn UpdateFunc) {
	a.update = fn
}

// OnComposite sets a callback that sees every composite before it is
// submitted.
func (a *App) OnComposite(fn func(compose.Composite)) {
	a.onComposite = fn
}

// SetWatcher makes every frame apply the texture changes w has queued.
func (a *App) SetWatcher(w *resource.Watcher) {
	a.watcher = w
}

// Frame runs one frame. It reports quit when the poller asks to stop, in
// which case nothing is drawn.
func (a *App) Frame(ctx context.Context) (quit bool, err error) {
	if a.poller.Poll() {
		return true, nil
	}

	now := time.Now()
	var dt time.Duration
	if !a.lastTime.IsZero() {
		dt = now.Sub(a.lastTime)
	}
	a.lastTime = now

	if a.watcher != nil {
		if n := a.cache.ApplyChanges(a.watcher); n > 0 {
			a.log.Info("textures reloaded", zap.Int("count", n))
		}
	}
	if a.update != nil {
		if err := a.update(dt); err != nil {
			return false, fmt.Errorf("update: %w", err)
		}
	}

	a.target.SetViewport(a.ctx.Viewport())
	comp, err := a.compositor.Compose(a.ctx.Device(), a.target)
	if err != nil {
		return false, fmt.Errorf("compose: %w", err)
	}
	if a.onComposite != nil {
		a.onComposite(comp)
	}
	if err := a.ctx.Submit(comp); err != nil {
		return false, fmt.Errorf("submit: %w", err)
	}
	if err := a.ctx.Present(ctx); err != nil {
		if errors.Is(err, gfx.ErrResetTimeout) {
			// Still lost, e.g. minimized. Try again next frame.
			a.log.Warn("frame dropped", zap.Error(err))
			return false, nil
		}
		return false, fmt.Errorf("present: %w", err)
	}
	a.frames++
	return false, nil
}

// Run calls Frame until the poller quits, ctx is done or a frame fails.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting frame loop")

	frameCount := 0
	fpsTimer := time.Now()
	for {
		if err := ctx.Err(); err != nil {
			a.log.Info("frame loop canceled", zap.Error(err))
			return nil
		}

		quit, err := a.Frame(ctx)
		if err != nil {
			return err
		}
		if quit {
			a.log.Info("frame loop finished", zap.Uint64("frames", a.frames))
			return nil
		}

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			stats := a.ctx.Device().Stats()
			a.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Int("draws", stats.DrawCalls),
				zap.Int("commands", stats.Commands))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
}

// FrameLimit is a Poller that quits after a fixed number of frames.
type FrameLimit struct {
	Remaining int
}

func (p *FrameLimit) Poll() bool {
	if p.Remaining <= 0 {
		return true
	}
	p.Remaining--
	return false
}

// DeviceOptions maps the render section of cfg onto device options.
func DeviceOptions(cfg *config.Config) device.Options {
	opts := device.DefaultOptions()
	opts.PoolLimit = cfg.Render.MaxPoolSize
	opts.ResetTimeout = cfg.Render.ResetTimeout.Std()
	opts.ResetInitialInterval = cfg.Render.ResetInitialInterval.Std()
	opts.ResetMaxInterval = cfg.Render.ResetMaxInterval.Std()
	return opts
}
