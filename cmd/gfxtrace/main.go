// Package main renders the demo scene headless against the trace backend
// and prints what reached the device.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/app"
	"github.com/Faultbox/midgard-gfx/internal/gfx/compose"
	"github.com/Faultbox/midgard-gfx/internal/config"
	"github.com/Faultbox/midgard-gfx/internal/gfx"
	"github.com/Faultbox/midgard-gfx/internal/gfx/device"
	"github.com/Faultbox/midgard-gfx/internal/gfx/device/trace"
	"github.com/Faultbox/midgard-gfx/internal/gfx/overlay"
	"github.com/Faultbox/midgard-gfx/internal/gfx/resource"
	"github.com/Faultbox/midgard-gfx/internal/logger"
	"github.com/Faultbox/midgard-gfx/internal/scene"
)

func main() {
	var (
		frames    = flag.Int("frames", 3, "Number of frames to render")
		showLists = flag.Bool("lists", false, "Print the command lists of each frame")
		showCalls = flag.Bool("calls", false, "Print every native call")
		lose      = flag.Int("lose", 0, "Report the device lost before this frame (0 = never)")
	)
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

	native := trace.New(gfx.Size{Width: cfg.Graphics.Width, Height: cfg.Graphics.Height})
	dev := device.NewFixedFunction(native, app.DeviceOptions(cfg))
	defer dev.Close()

	cache := resource.New(dev, cfg.Assets.Root)
	defer cache.Close()

	demo, err := scene.NewDemo(cache)
	if err != nil {
		logger.Fatal("failed to build scene", zap.Error(err))
	}

	poller := &lossPoller{FrameLimit: app.FrameLimit{Remaining: *frames}, native: native, at: *lose}
	a := app.New(native, cache, poller)
	a.Target().Add(demo)
	if cfg.Debug.Overlay {
		a.Target().Add(overlay.New(dev))
	}
	a.OnUpdate(func(dt time.Duration) error {
		demo.Update(float32(dt.Seconds()))
		return nil
	})
	if *showLists {
		a.OnComposite(func(c compose.Composite) {
			fmt.Printf("--- frame %d ---\n", a.Frames()+1)
			fmt.Printf("background: %08x\n", c.Background.Pack())
			for i, part := range c.Parts {
				fmt.Printf("part %d:\n%s", i, part.String())
			}
		})
	}

	if err := a.Run(context.Background()); err != nil {
		logger.Fatal("trace run failed", zap.Error(err))
	}

	if *showCalls {
		fmt.Print(native.Dump())
	}

	st := dev.Stats()
	textures, vbs, ibs := native.Live()
	fmt.Printf("frames=%d presents=%d resets=%d\n", a.Frames(), native.Presents(), native.Resets())
	fmt.Printf("last frame: lists=%d commands=%d draws=%d primitives=%d state=%d dropped=%d\n",
		st.Lists, st.Commands, st.DrawCalls, st.Primitives, st.StateChanges, st.Dropped)
	fmt.Printf("live: textures=%d vertex buffers=%d index buffers=%d\n", textures, vbs, ibs)
	fmt.Printf("cache: loads=%d hits=%d failed=%d\n", cache.Stats().Loads, cache.Stats().Hits, cache.Stats().Failed)
}

// lossPoller counts frames and reports the device lost once, to exercise
// the reset path without a real driver.
type lossPoller struct {
	app.FrameLimit
	native *trace.Native
	at     int
	polled int
}

func (p *lossPoller) Poll() bool {
	p.polled++
	if p.at > 0 && p.polled == p.at {
		p.native.QueueStatus(device.StatusLost, device.StatusReadyToReset)
	}
	return p.FrameLimit.Poll()
}
