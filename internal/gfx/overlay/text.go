package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/Faultbox/midgard-gfx/internal/gfx/device"
)

const padding = 4

var background = color.RGBA{0, 0, 0, 160}

// FormatStats renders s as overlay lines. The frame number is left out so
// the text only changes when the workload does.
func FormatStats(s device.Stats) []string {
	lines := []string{
		fmt.Sprintf("lists %d  commands %d", s.Lists, s.Commands),
		fmt.Sprintf("draws %d  prims %d", s.DrawCalls, s.Primitives),
		fmt.Sprintf("state changes %d", s.StateChanges),
	}
	if s.Dropped > 0 {
		lines = append(lines, fmt.Sprintf("dropped %d", s.Dropped))
	}
	return lines
}

// Rasterize draws lines in white on a translucent panel.
func Rasterize(lines []string) *image.RGBA {
	face := basicfont.Face7x13
	lineHeight := face.Metrics().Height.Ceil()
	ascent := face.Metrics().Ascent.Ceil()

	width := 0
	for _, l := range lines {
		width = max(width, font.MeasureString(face, l).Ceil())
	}
	img := image.NewRGBA(image.Rect(0, 0, width+2*padding, len(lines)*lineHeight+2*padding))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
	}
	for i, l := range lines {
		d.Dot = fixed.P(padding, padding+ascent+i*lineHeight)
		d.DrawString(l)
	}
	return img
}
