package gfx

import "github.com/Faultbox/midgard-gfx/pkg/math"

// Material is the fixed-function surface description lighting uses.
type Material struct {
	Diffuse  math.Color
	Ambient  math.Color
	Specular math.Color
	Emissive math.Color
	Power    float32
}

// DefaultMaterial is the material a device starts with.
func DefaultMaterial() Material {
	return Material{
		Diffuse:  math.White,
		Ambient:  math.White,
		Specular: math.Color{A: 1},
		Emissive: math.Color{A: 1},
	}
}
