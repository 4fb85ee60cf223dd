package compose

import (
	"context"
	"fmt"

	"github.com/Faultbox/midgard-gfx/internal/gfx"
	"github.com/Faultbox/midgard-gfx/internal/gfx/command"
	"github.com/Faultbox/midgard-gfx/internal/gfx/device"
	"github.com/Faultbox/midgard-gfx/internal/gfx/recorder"
)

// Surface is the presentation surface of a context.
type Surface interface {
	Size() gfx.Size
}

// Context owns the device and the surface it presents to.
type Context struct {
	device  device.Device
	surface Surface
}

func NewContext(dev device.Device, surface Surface) *Context {
	return &Context{device: dev, surface: surface}
}

func (c *Context) Device() device.Device {
	return c.device
}

// Viewport returns the current size of the surface.
func (c *Context) Viewport() gfx.Size {
	return c.surface.Size()
}

// Submit executes the composite: first a list clearing color and depth to
// the background, then every part in order. Submitting consumes the
// composite.
func (c *Context) Submit(comp Composite) error {
	rec := recorder.New(c.device.Defaults())
	rec.Clear(command.ClearAll, comp.Background, 1)
	clearList, err := rec.Finish()
	if err != nil {
		return err
	}
	if err := c.device.Execute(clearList); err != nil {
		return fmt.Errorf("clear: %w", err)
	}

	for i, part := range comp.Parts {
		if err := c.device.Execute(part); err != nil {
			return fmt.Errorf("part %d: %w", i, err)
		}
	}
	return nil
}

// Present shows the frame. A lost device is recovered here.
func (c *Context) Present(ctx context.Context) error {
	return c.device.Present(ctx)
}
