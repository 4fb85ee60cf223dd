package scene

import (
	"image"
	"image/color"
	gomath "math"

	"github.com/Faultbox/midgard-gfx/internal/gfx"
	"github.com/Faultbox/midgard-gfx/internal/gfx/resource"
	"github.com/Faultbox/midgard-gfx/pkg/math"
)

// Identities of the demo resources.
var (
	CubeMesh     = resource.Memory("demo/cube")
	TriangleMesh = resource.Memory("demo/triangle")
	QuadMesh     = resource.Memory("demo/quad")
	CheckerTex   = resource.Memory("demo/checker")
	CubeMaterial = resource.Memory("demo/cube-material")
)

// Demo is a lit, textured cube spinning over a floor quad, with a colored
// triangle beside it.
type Demo struct {
	*Scene
	Cube     int // entity index of the cube
	Triangle int
	angle    float32
}

// NewDemo registers the demo resources with cache and builds the scene.
func NewDemo(cache *resource.Cache) (*Demo, error) {
	for _, r := range []struct {
		id  resource.ID
		src resource.MeshSource
	}{
		{CubeMesh, Cube()},
		{TriangleMesh, Triangle()},
		{QuadMesh, Quad()},
	} {
		if err := cache.RegisterMesh(r.id, r.src); err != nil {
			return nil, err
		}
	}
	if err := cache.RegisterTextureImage(CheckerTex, Checkerboard(64, 8)); err != nil {
		return nil, err
	}
	mat := gfx.DefaultMaterial()
	mat.Specular = math.RGB(0.5, 0.5, 0.5)
	mat.Power = 16
	if _, err := cache.RegisterMaterial(CubeMaterial, mat); err != nil {
		return nil, err
	}

	d := &Demo{Scene: New()}
	if err := d.AddLight(gfx.DirectionalLight(math.Vec3{X: -0.3, Y: -1, Z: 0.5}.Normalize(), math.RGB(0.9, 0.9, 0.8))); err != nil {
		return nil, err
	}
	d.Add(Entity{
		Mesh:    QuadMesh,
		Texture: CheckerTex,
		World:   math.Translate(0, -0.75, 0).Mul(math.RotateX(gomath.Pi/2)).Mul(math.Scale(6, 6, 1)),
	})
	d.Cube = d.Add(Entity{Mesh: CubeMesh, Texture: CheckerTex, Material: CubeMaterial, World: math.Identity()})
	d.Triangle = d.Add(Entity{Mesh: TriangleMesh, World: math.Translate(2, 0, 0).Mul(math.Scale(0.5, 0.5, 0.5))})
	return d, nil
}

// Update spins the cube.
func (d *Demo) Update(seconds float32) {
	d.angle += seconds
	d.Entity(d.Cube).World = math.RotateY(d.angle).Mul(math.RotateX(d.angle * 0.5))
}

// SetCubeTexture replaces the cube's texture.
func (d *Demo) SetCubeTexture(id resource.ID) {
	d.Entity(d.Cube).Texture = id
}

// Checkerboard returns a size×size image of cells×cells alternating tiles.
func Checkerboard(size, cells int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	light := color.RGBA{220, 220, 220, 255}
	dark := color.RGBA{60, 60, 90, 255}
	cell := max(size/cells, 1)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := dark
			if (x/cell+y/cell)%2 == 0 {
				c = light
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
