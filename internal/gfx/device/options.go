package device

import (
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/engine/texture"
	"github.com/Faultbox/midgard-gfx/internal/gfx"
	"github.com/Faultbox/midgard-gfx/internal/logger"
)

// Options configures a FixedFunction device.
type Options struct {
	// Defaults is the state forced before every command list.
	Defaults gfx.DeviceDefaults
	// PoolLimit caps every resource pool; 0 means the handle index space.
	PoolLimit int

	// ResetTimeout bounds how long Present waits for a lost device to
	// become ready to reset.
	ResetTimeout         time.Duration
	ResetInitialInterval time.Duration
	ResetMaxInterval     time.Duration

	// LoadImage decodes texture files for AddTexture.
	LoadImage func(path string) (*image.RGBA, error)

	Logger *zap.Logger
}

// DefaultOptions returns options with the standard device defaults, a five
// second reset bound and file decoding through the texture package.
func DefaultOptions() Options {
	return Options{
		Defaults:             gfx.DefaultDeviceDefaults(),
		ResetTimeout:         5 * time.Second,
		ResetInitialInterval: 10 * time.Millisecond,
		ResetMaxInterval:     500 * time.Millisecond,
		LoadImage:            texture.Load,
	}
}

func (o *Options) fill() {
	def := DefaultOptions()
	if o.ResetTimeout <= 0 {
		o.ResetTimeout = def.ResetTimeout
	}
	if o.ResetInitialInterval <= 0 {
		o.ResetInitialInterval = def.ResetInitialInterval
	}
	if o.ResetMaxInterval <= 0 {
		o.ResetMaxInterval = def.ResetMaxInterval
	}
	if o.LoadImage == nil {
		o.LoadImage = def.LoadImage
	}
	if o.Logger == nil {
		o.Logger = logger.Named("device")
	}
}
