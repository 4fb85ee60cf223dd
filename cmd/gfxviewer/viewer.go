package main

import (
	"time"

	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Faultbox/midgard-gfx/internal/engine/input"
	"github.com/Faultbox/midgard-gfx/internal/engine/texture"
	"github.com/Faultbox/midgard-gfx/internal/engine/window"
	"github.com/Faultbox/midgard-gfx/internal/gfx/device/opengl"
	"github.com/Faultbox/midgard-gfx/internal/gfx/resource"
	"github.com/Faultbox/midgard-gfx/internal/logger"
	"github.com/Faultbox/midgard-gfx/internal/scene"
)

// viewer turns window events into camera moves, device-loss signals and
// scene toggles.
type viewer struct {
	win    *window.Window
	native *opengl.Native
	cache  *resource.Cache
	demo   *scene.Demo
	input  *input.Input
	log    *zap.Logger

	dragging bool
	paused   bool
}

func newViewer(win *window.Window, native *opengl.Native, cache *resource.Cache, demo *scene.Demo) *viewer {
	return &viewer{
		win:    win,
		native: native,
		cache:  cache,
		demo:   demo,
		input:  input.New(),
		log:    logger.Named("viewer"),
	}
}

// Poll implements app.Poller.
func (v *viewer) Poll() bool {
	if v.input.Update() {
		return true
	}

	for _, e := range v.input.Events() {
		switch e.Type {
		case input.EventMinimized:
			v.native.SetMinimized(true)
		case input.EventRestored:
			v.native.SetMinimized(false)
		case input.EventDeviceReset:
			v.native.MarkLost()
		case input.EventMouseDown:
			v.dragging = e.Button == sdl.BUTTON_LEFT
		case input.EventMouseUp:
			v.dragging = false
		case input.EventMouseMove:
			if v.dragging {
				v.demo.Camera.HandleDrag(float32(e.DeltaX), float32(e.DeltaY))
			}
		case input.EventMouseWheel:
			v.demo.Camera.HandleZoom(float32(e.Wheel))
		case input.EventKeyDown:
			if v.handleKey(e.Key) {
				return true
			}
		}
	}
	return false
}

func (v *viewer) handleKey(key sdl.Scancode) (quit bool) {
	switch key {
	case sdl.SCANCODE_ESCAPE:
		return true
	case sdl.SCANCODE_F11:
		if err := v.win.SetFullscreen(!v.win.Fullscreen()); err != nil {
			v.log.Warn("fullscreen toggle failed", zap.Error(err))
			return false
		}
		// A display mode change invalidates the device.
		v.native.MarkLost()
	case sdl.SCANCODE_W:
		v.demo.Wireframe = !v.demo.Wireframe
	case sdl.SCANCODE_SPACE:
		v.paused = !v.paused
	case sdl.SCANCODE_O:
		v.openTexture()
	case sdl.SCANCODE_F12:
		v.screenshot()
	case sdl.SCANCODE_F3:
		if logger.Level() == zapcore.DebugLevel {
			logger.SetLevel("info")
		} else {
			logger.SetLevel("debug")
		}
		v.log.Info("log level changed", zap.Stringer("level", logger.Level()))
	}
	return false
}

// openTexture asks for an image file and puts it on the cube. A file that
// does not load leaves the current texture in place.
func (v *viewer) openTexture() {
	file, err := dialog.File().
		Filter("Images", "png", "jpg", "jpeg", "bmp", "tga").
		Title("Open texture").
		Load()
	if err != nil {
		if err != dialog.ErrCancelled {
			v.log.Warn("file dialog failed", zap.Error(err))
		}
		return
	}

	id := resource.Path(file)
	if err := v.cache.RegisterTexture(id); err != nil {
		v.log.Warn("cannot register texture", zap.String("file", file), zap.Error(err))
		return
	}
	if _, err := v.cache.LoadTexture(id); err != nil {
		dialog.Message("Cannot load %s:\n%v", file, err).Title("Open texture").Error()
		return
	}
	v.demo.SetCubeTexture(id)
	v.log.Info("texture applied", zap.String("file", file))
}

func (v *viewer) screenshot() {
	img, err := v.native.Capture()
	if err != nil {
		v.log.Warn("capture failed", zap.Error(err))
		return
	}
	name, err := texture.SavePNG(img, "screenshots", "gfx", time.Now())
	if err != nil {
		v.log.Warn("screenshot not saved", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("file", name))
}

func (v *viewer) update(dt time.Duration) error {
	if !v.paused {
		v.demo.Update(float32(dt.Seconds()))
	}
	return nil
}
