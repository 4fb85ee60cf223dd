package math

// Color is a linear RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Common colors.
var (
	Black = Color{0, 0, 0, 1}
	White = Color{1, 1, 1, 1}
)

// RGB returns an opaque color.
func RGB(r, g, b float32) Color {
	return Color{r, g, b, 1}
}

// Array returns the components as an array, the form native color calls take.
func (c Color) Array() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

// Pack returns the color as 0xAARRGGBB.
func (c Color) Pack() uint32 {
	return uint32(to8(c.A))<<24 | uint32(to8(c.R))<<16 | uint32(to8(c.G))<<8 | uint32(to8(c.B))
}

// Unpack converts a 0xAARRGGBB value back into a Color.
func Unpack(v uint32) Color {
	return Color{
		R: float32(v>>16&0xff) / 255,
		G: float32(v>>8&0xff) / 255,
		B: float32(v&0xff) / 255,
		A: float32(v>>24&0xff) / 255,
	}
}

// RGBA8 returns the color as 8-bit components in R, G, B, A order.
func (c Color) RGBA8() [4]uint8 {
	return [4]uint8{to8(c.R), to8(c.G), to8(c.B), to8(c.A)}
}

func to8(f float32) uint8 {
	switch {
	case f <= 0:
		return 0
	case f >= 1:
		return 255
	}
	return uint8(f*255 + 0.5)
}
