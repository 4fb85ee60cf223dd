//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var Default = Build

// Build builds both binaries into bin/. The viewer needs cgo and the SDL2
// headers.
func Build() error {
	if err := sh.RunV("go", "build", "-o", "bin/gfxtrace", "./cmd/gfxtrace"); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-o", "bin/gfxviewer", "./cmd/gfxviewer")
}

// Test runs the pipeline tests. The opengl backend and the window are
// left out since they need a display.
func Test() error {
	return sh.RunV("go", "test",
		"./internal/gfx/handle/...",
		"./internal/gfx/command/...",
		"./internal/gfx/state/...",
		"./internal/gfx/recorder/...",
		"./internal/gfx/resource/...",
		"./internal/gfx/compose/...",
		"./internal/gfx/overlay/...",
		"./internal/gfx/device",
		"./internal/gfx",
		"./internal/app/...",
		"./internal/scene/...",
		"./internal/engine/texture/...",
		"./internal/config/...",
		"./internal/logger/...",
		"./pkg/...")
}

// Vet runs go vet over every package.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Trace renders a few frames headless, forcing one device loss, and
// prints the native calls.
func Trace() error {
	if err := sh.RunV("go", "build", "-o", "bin/gfxtrace", "./cmd/gfxtrace"); err != nil {
		return err
	}
	out, err := sh.Output("bin/gfxtrace", "-frames", "4", "-lose", "2", "-calls")
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

// Viewer starts the interactive viewer with the statistics overlay.
func Viewer() error {
	mg.Deps(Build)
	return sh.RunV("bin/gfxviewer", "--debug")
}
