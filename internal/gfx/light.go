package gfx

import (
	"fmt"

	"github.com/Faultbox/midgard-gfx/pkg/math"
)

// MaxLights is the number of lights the fixed-function pipeline enables at
// once.
const MaxLights = 4

// LightType selects how a light's position and direction are used.
type LightType uint8

const (
	LightDirectional LightType = iota
	LightPoint
)

// Light is a fixed-function light source.
type Light struct {
	Type      LightType
	Diffuse   math.Color
	Specular  math.Color
	Ambient   math.Color
	Position  math.Vec3 // point lights
	Direction math.Vec3 // directional lights, pointing away from the source
	// Attenuation holds constant, linear and quadratic factors.
	Attenuation [3]float32
}

// DirectionalLight returns a white-specular directional light.
func DirectionalLight(dir math.Vec3, diffuse math.Color) Light {
	return Light{
		Type:        LightDirectional,
		Diffuse:     diffuse,
		Specular:    math.White,
		Direction:   dir.Normalize(),
		Attenuation: [3]float32{1, 0, 0},
	}
}

// Lights is a bounded set of lights. Count entries of Items are in use.
type Lights struct {
	Items [MaxLights]Light
	Count int
}

// NewLights packs ls into a Lights value. More than MaxLights is a contract
// violation, never truncated.
func NewLights(ls ...Light) (Lights, error) {
	var out Lights
	if len(ls) > MaxLights {
		return out, fmt.Errorf("%w: %d lights exceed the maximum of %d", ErrContract, len(ls), MaxLights)
	}
	copy(out.Items[:], ls)
	out.Count = len(ls)
	return out, nil
}

// Slice returns the lights in use.
func (l *Lights) Slice() []Light {
	return l.Items[:l.Count]
}
