// Package texture decodes image files into RGBA pixels for device upload.
package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
)

// Extensions lists the file extensions Decode understands.
var Extensions = []string{".tga", ".bmp", ".png", ".jpg", ".jpeg"}

// Supported reports whether path has a decodable extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Load reads and decodes the image file at path. BMP files get the magenta
// color key applied.
func Load(path string) (*image.RGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := Decode(path, data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// Decode decodes data, using name's extension to pick TGA, which the
// standard registry cannot sniff.
func Decode(name string, data []byte) (*image.RGBA, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".tga" {
		return DecodeTGA(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return ToRGBA(img, ext == ".bmp"), nil
}

// IsMagentaKey reports whether an RGB color is the transparency key.
// The tolerance absorbs palette rounding in 8-bit BMPs.
func IsMagentaKey(r, g, b uint8) bool {
	return r >= 250 && g <= 10 && b >= 250
}

// ToRGBA converts img to an *image.RGBA anchored at the origin. With
// colorKey set, magenta pixels become transparent black.
func ToRGBA(img image.Image, colorKey bool) *image.RGBA {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	if colorKey {
		applyMagentaKey(rgba)
	}
	return rgba
}

func applyMagentaKey(img *image.RGBA) {
	transparent := color.RGBA{}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			if IsMagentaKey(c.R, c.G, c.B) {
				img.SetRGBA(x, y, transparent)
			}
		}
	}
}
