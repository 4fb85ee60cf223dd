// Package compose turns the drawables of a frame into one composite and
// submits it to a device.
package compose

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/gfx"
	"github.com/Faultbox/midgard-gfx/internal/gfx/command"
	"github.com/Faultbox/midgard-gfx/internal/gfx/device"
	"github.com/Faultbox/midgard-gfx/internal/gfx/resource"
	"github.com/Faultbox/midgard-gfx/internal/logger"
	"github.com/Faultbox/midgard-gfx/pkg/math"
)

// Drawable produces one command list per frame.
type Drawable interface {
	Draw(cache *resource.Cache, size gfx.Size) (*command.List, error)
	// ClearColor returns the background the drawable wants, if any.
	ClearColor() (math.Color, bool)
}

// Target holds the drawables registered for the current frame.
type Target struct {
	drawables []Drawable
	size      gfx.Size
}

// NewTarget creates an empty target of the given viewport size.
func NewTarget(size gfx.Size) *Target {
	return &Target{size: size}
}

// Add registers d after the drawables already present.
func (t *Target) Add(d Drawable) {
	t.drawables = append(t.drawables, d)
}

// Reset removes all drawables and keeps the viewport.
func (t *Target) Reset() {
	clear(t.drawables)
	t.drawables = t.drawables[:0]
}

func (t *Target) SetViewport(size gfx.Size) {
	t.size = size
}

func (t *Target) Viewport() gfx.Size {
	return t.size
}

// Drawables returns the registered drawables in registration order.
func (t *Target) Drawables() []Drawable {
	return t.drawables
}

// Composite is the composed output of one frame. It owns its lists until
// submitted.
type Composite struct {
	Background math.Color
	Parts      []*command.List
}

// Commands returns the number of commands over all parts.
func (c Composite) Commands() int {
	n := 0
	for _, p := range c.Parts {
		n += p.Len()
	}
	return n
}

// Compositor calls every drawable of a target against one resource cache.
type Compositor struct {
	cache *resource.Cache
	log   *zap.Logger
}

func NewCompositor(cache *resource.Cache) *Compositor {
	return &Compositor{cache: cache, log: logger.Named("compose")}
}

// Cache returns the cache drawables resolve resources through.
func (c *Compositor) Cache() *resource.Cache {
	return c.cache
}

// Compose draws every drawable of t in registration order. The first
// drawable decides the background; clear colors of later drawables are
// ignored. An empty target composes to a black frame with no parts.
func (c *Compositor) Compose(dev device.Device, t *Target) (Composite, error) {
	if dev != c.cache.Device() {
		return Composite{}, fmt.Errorf("%w: compositor cache belongs to another device", gfx.ErrContract)
	}

	comp := Composite{Background: math.Black}
	drawables := t.Drawables()
	if len(drawables) == 0 {
		return comp, nil
	}
	if bg, ok := drawables[0].ClearColor(); ok {
		comp.Background = bg
	}

	comp.Parts = make([]*command.List, 0, len(drawables))
	for i, d := range drawables {
		list, err := d.Draw(c.cache, t.Viewport())
		if err != nil {
			return Composite{}, fmt.Errorf("drawable %d (%T): %w", i, d, err)
		}
		comp.Parts = append(comp.Parts, list)
	}
	return comp, nil
}
