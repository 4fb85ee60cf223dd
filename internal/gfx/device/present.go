package device

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/gfx"
)

var errNotReady = errors.New("device not ready to reset")

// Present implements Device. A device found lost is first waited on,
// reset and handed to the reset listeners; the frame rendered while lost is
// discarded instead of presented. Failing to reset is returned as-is and
// leaves the device lost.
func (d *FixedFunction) Present(ctx context.Context) error {
	if !d.lost {
		if st := d.native.Status(); st != StatusOK {
			d.markLost(st)
		}
	}

	if d.lost {
		if err := d.recoverDevice(ctx); err != nil {
			return err
		}
		d.endFrame()
		return nil
	}

	if err := d.native.Present(); err != nil {
		if errors.Is(err, gfx.ErrDeviceLost) {
			d.markLost(StatusLost)
			d.endFrame()
			return nil
		}
		return fmt.Errorf("present: %w", err)
	}
	d.endFrame()
	return nil
}

func (d *FixedFunction) markLost(st Status) {
	d.log.Warn("device lost", zap.Stringer("status", st), zap.Uint64("frame", d.frame.Frame))
	d.lost = true
	d.lostLogged = false
}

func (d *FixedFunction) endFrame() {
	d.last = d.frame
	d.frame = Stats{Frame: d.last.Frame + 1}
}

// recoverDevice polls the backend with exponential backoff until it can be reset,
// bounded by Options.ResetTimeout, then resets it.
func (d *FixedFunction) recoverDevice(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.opts.ResetInitialInterval
	b.MaxInterval = d.opts.ResetMaxInterval
	b.MaxElapsedTime = d.opts.ResetTimeout
	b.Reset()

	polls := 0
	wait := func() error {
		polls++
		switch st := d.native.Status(); st {
		case StatusReadyToReset, StatusOK:
			return nil
		case StatusFailed:
			return backoff.Permanent(fmt.Errorf("device reported %s", st))
		default:
			return errNotReady
		}
	}

	if err := backoff.Retry(wait, backoff.WithContext(b, ctx)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("waiting for device reset: %w", ctxErr)
		}
		if errors.Is(err, errNotReady) {
			return fmt.Errorf("%w after %s (%d polls)", gfx.ErrResetTimeout, d.opts.ResetTimeout, polls)
		}
		return fmt.Errorf("waiting for device reset: %w", err)
	}

	for _, l := range d.listeners {
		l.DeviceLost(d.native)
	}
	if err := d.native.Reset(); err != nil {
		return fmt.Errorf("reset device: %w", err)
	}
	d.lost = false

	for _, l := range d.listeners {
		if err := l.DeviceReset(d.native); err != nil {
			return fmt.Errorf("restore after reset: %w", err)
		}
	}
	d.log.Info("device reset", zap.Int("polls", polls))
	return nil
}
