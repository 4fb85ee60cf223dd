// Package scene is a minimal entity scene that records itself into a
// command list each frame.
package scene

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/midgard-gfx/internal/gfx"
	"github.com/Faultbox/midgard-gfx/internal/gfx/command"
	"github.com/Faultbox/midgard-gfx/internal/gfx/recorder"
	"github.com/Faultbox/midgard-gfx/internal/gfx/resource"
	"github.com/Faultbox/midgard-gfx/pkg/math"
)

// Entity is one mesh instance. Texture and Material are optional; a zero
// World is treated as the identity.
type Entity struct {
	Mesh     resource.ID
	Texture  resource.ID
	Material resource.ID
	World    math.Mat4
}

// Scene draws its entities in insertion order.
type Scene struct {
	Background math.Color
	Camera     *OrbitCamera
	FovY       float32 // radians
	Near, Far  float32
	Ambient    math.Color
	Wireframe  bool

	lights   []gfx.Light
	entities []Entity
}

// New creates an empty scene with a dark background and a default camera.
func New() *Scene {
	return &Scene{
		Background: math.RGB(0.1, 0.1, 0.15),
		Camera:     NewOrbitCamera(),
		FovY:       gomath.Pi / 4,
		Near:       0.1,
		Far:        1000,
		Ambient:    math.RGB(0.2, 0.2, 0.2),
	}
}

// AddLight adds a light. Lighting is enabled while the scene has lights.
func (s *Scene) AddLight(l gfx.Light) error {
	if len(s.lights) >= gfx.MaxLights {
		return fmt.Errorf("%w: scene already has %d lights", gfx.ErrContract, gfx.MaxLights)
	}
	s.lights = append(s.lights, l)
	return nil
}

func (s *Scene) Lights() []gfx.Light {
	return s.lights
}

// Add appends e and returns its index.
func (s *Scene) Add(e Entity) int {
	s.entities = append(s.entities, e)
	return len(s.entities) - 1
}

// Entity returns a pointer to the entity at index i for in-place updates.
func (s *Scene) Entity(i int) *Entity {
	return &s.entities[i]
}

func (s *Scene) Len() int {
	return len(s.entities)
}

// Clear removes all entities and lights.
func (s *Scene) Clear() {
	s.entities = s.entities[:0]
	s.lights = s.lights[:0]
}

func (s *Scene) ClearColor() (math.Color, bool) {
	return s.Background, true
}

// Draw loads the resources of every entity and records the frame.
func (s *Scene) Draw(cache *resource.Cache, size gfx.Size) (*command.List, error) {
	rec := recorder.New(cache.Device().Defaults())

	rec.SetViewport(gfx.FullViewport(size))
	rec.SetTransform(gfx.TransformProjection, math.PerspectiveLH(s.FovY, size.Aspect(), s.Near, s.Far))
	rec.SetTransform(gfx.TransformView, s.Camera.ViewMatrix())
	if s.Wireframe {
		rec.SetRenderState(gfx.RenderFillMode, gfx.FillWireframe)
	}
	if len(s.lights) > 0 {
		rec.SetRenderState(gfx.RenderLighting, gfx.Bool(true))
		rec.SetRenderState(gfx.RenderNormalizeNormals, gfx.Bool(true))
		rec.SetRenderState(gfx.RenderAmbient, s.Ambient.Pack())
		rec.SetLights(s.lights...)
	}

	for i, e := range s.entities {
		if err := s.drawEntity(rec, cache, e); err != nil {
			return nil, fmt.Errorf("entity %d: %w", i, err)
		}
	}
	return rec.Finish()
}

func (s *Scene) drawEntity(rec *recorder.Recorder, cache *resource.Cache, e Entity) error {
	h, err := cache.LoadMesh(e.Mesh)
	if err != nil {
		return err
	}
	mesh, err := cache.MeshInfo(h)
	if err != nil {
		return err
	}

	var tex gfx.TextureHandle
	if !e.Texture.IsZero() {
		if tex, err = cache.LoadTexture(e.Texture); err != nil {
			return err
		}
	}
	rec.SetTexture(0, tex)

	material := gfx.DefaultMaterial()
	if !e.Material.IsZero() {
		mh, err := cache.Material(e.Material)
		if err != nil {
			return err
		}
		if material, err = cache.MaterialValue(mh); err != nil {
			return err
		}
	}
	rec.SetMaterial(material)

	world := e.World
	if world == (math.Mat4{}) {
		world = math.Identity()
	}
	rec.SetTransform(gfx.TransformWorld, world)
	rec.DrawMesh(mesh)
	return nil
}
