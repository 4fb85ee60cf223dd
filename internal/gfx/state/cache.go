// Package state tracks the last device state a recording session wrote so
// redundant state commands can be dropped.
package state

import (
	"fmt"

	"github.com/Faultbox/midgard-gfx/internal/gfx"
	"github.com/Faultbox/midgard-gfx/pkg/math"
)

// Key identifies one scalar slot: a render state or a texture-stage state.
type Key uint16

const stageBase = Key(gfx.NumRenderStates)

// NumKeys is the number of scalar slots.
const NumKeys = gfx.NumRenderStates + gfx.MaxTextureStages*gfx.NumTextureStageStates

// RenderKey returns the slot of render state s.
func RenderKey(s gfx.RenderState) Key {
	return Key(s)
}

// StageKey returns the slot of texture-stage state s on stage.
func StageKey(stage int, s gfx.TextureStageState) Key {
	return stageBase + Key(stage*gfx.NumTextureStageStates) + Key(s)
}

func (k Key) String() string {
	if k < stageBase {
		return gfx.RenderState(k).String()
	}
	i := int(k - stageBase)
	return fmt.Sprintf("stage%d.%s", i/gfx.NumTextureStageStates, gfx.TextureStageState(i%gfx.NumTextureStageStates))
}

// Cache holds the current value of every tracked piece of device state.
// It never emits commands; it only answers whether a write changes anything.
type Cache struct {
	defaults   gfx.DeviceDefaults
	scalars    [NumKeys]uint32
	textures   [gfx.MaxTextureStages]gfx.TextureHandle
	samplers   [gfx.MaxTextureStages]gfx.SamplerHandle
	transforms [gfx.NumTransforms]math.Mat4
	material   gfx.Material
	lights     gfx.Lights
	viewport   gfx.Viewport
	hasView    bool
}

// New returns a cache seeded with d.
func New(d gfx.DeviceDefaults) *Cache {
	c := &Cache{defaults: d}
	c.Reset()
	return c
}

// Reset re-seeds every slot from the device defaults.
func (c *Cache) Reset() {
	copy(c.scalars[:gfx.NumRenderStates], c.defaults.RenderStates[:])
	for stage := 0; stage < gfx.MaxTextureStages; stage++ {
		for s := 0; s < gfx.NumTextureStageStates; s++ {
			c.scalars[StageKey(stage, gfx.TextureStageState(s))] = c.defaults.TextureStages[stage][s]
		}
	}
	c.textures = [gfx.MaxTextureStages]gfx.TextureHandle{}
	c.samplers = [gfx.MaxTextureStages]gfx.SamplerHandle{}
	c.transforms = c.defaults.Transforms
	c.material = c.defaults.Material
	c.lights = gfx.Lights{}
	c.viewport = gfx.Viewport{}
	c.hasView = false
}

// Update stores v in slot k and reports whether it differed.
func (c *Cache) Update(k Key, v uint32) bool {
	if c.scalars[k] == v {
		return false
	}
	c.scalars[k] = v
	return true
}

// Value returns the current value of slot k.
func (c *Cache) Value(k Key) uint32 {
	return c.scalars[k]
}

// UpdateTexture tracks the texture bound to stage.
func (c *Cache) UpdateTexture(stage int, h gfx.TextureHandle) bool {
	if c.textures[stage] == h {
		return false
	}
	c.textures[stage] = h
	return true
}

// UpdateSampler tracks the sampler bound to stage.
func (c *Cache) UpdateSampler(stage int, h gfx.SamplerHandle) bool {
	if c.samplers[stage] == h {
		return false
	}
	c.samplers[stage] = h
	return true
}

// UpdateTransform tracks matrix slot k. Identity is compared like any other
// value.
func (c *Cache) UpdateTransform(k gfx.TransformKind, m math.Mat4) bool {
	if c.transforms[k] == m {
		return false
	}
	c.transforms[k] = m
	return true
}

// UpdateMaterial tracks the lighting material.
func (c *Cache) UpdateMaterial(m gfx.Material) bool {
	if c.material == m {
		return false
	}
	c.material = m
	return true
}

// UpdateLights tracks the enabled lights. Slots past Count are ignored.
func (c *Cache) UpdateLights(l gfx.Lights) bool {
	if sameLights(c.lights, l) {
		return false
	}
	c.lights = l
	return true
}

// UpdateViewport tracks the viewport. The first write of a session always
// counts as a change since the device viewport is surface-dependent.
func (c *Cache) UpdateViewport(v gfx.Viewport) bool {
	if c.hasView && c.viewport == v {
		return false
	}
	c.viewport = v
	c.hasView = true
	return true
}

func sameLights(a, b gfx.Lights) bool {
	if a.Count != b.Count {
		return false
	}
	for i := 0; i < a.Count; i++ {
		if a.Items[i] != b.Items[i] {
			return false
		}
	}
	return true
}
