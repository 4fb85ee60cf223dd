package scene

import (
	"github.com/Faultbox/midgard-gfx/internal/gfx"
	"github.com/Faultbox/midgard-gfx/internal/gfx/resource"
	"github.com/Faultbox/midgard-gfx/pkg/math"
)

// Triangle returns a colored triangle in the XY plane, wound clockwise as
// seen from -Z.
func Triangle() resource.MeshSource {
	return must(resource.NewMeshSource(gfx.LayoutPositionColor, gfx.TriangleList, []gfx.Vertex{
		{Position: math.Vec3{X: -1, Y: -1}, Color: math.RGB(1, 0, 0)},
		{Position: math.Vec3{Y: 1}, Color: math.RGB(0, 0, 1)},
		{Position: math.Vec3{X: 1, Y: -1}, Color: math.RGB(0, 1, 0)},
	}, nil))
}

// Quad returns a textured unit quad in the XY plane drawn as a strip.
func Quad() resource.MeshSource {
	n := math.Vec3{Z: -1}
	return must(resource.NewMeshSource(gfx.LayoutPositionNormalTex, gfx.TriangleStrip, []gfx.Vertex{
		{Position: math.Vec3{X: -0.5, Y: -0.5}, Normal: n, TexCoord: [2]float32{0, 1}},
		{Position: math.Vec3{X: -0.5, Y: 0.5}, Normal: n, TexCoord: [2]float32{0, 0}},
		{Position: math.Vec3{X: 0.5, Y: -0.5}, Normal: n, TexCoord: [2]float32{1, 1}},
		{Position: math.Vec3{X: 0.5, Y: 0.5}, Normal: n, TexCoord: [2]float32{1, 0}},
	}, nil))
}

// cubeFaces lists each face as its normal and the two axes spanning it.
var cubeFaces = [6]struct{ normal, u, v math.Vec3 }{
	{math.Vec3{Z: -1}, math.Vec3{X: 1}, math.Vec3{Y: 1}},
	{math.Vec3{Z: 1}, math.Vec3{X: -1}, math.Vec3{Y: 1}},
	{math.Vec3{X: 1}, math.Vec3{Z: 1}, math.Vec3{Y: 1}},
	{math.Vec3{X: -1}, math.Vec3{Z: -1}, math.Vec3{Y: 1}},
	{math.Vec3{Y: 1}, math.Vec3{X: 1}, math.Vec3{Z: 1}},
	{math.Vec3{Y: -1}, math.Vec3{X: 1}, math.Vec3{Z: -1}},
}

// Cube returns an indexed, textured unit cube centered on the origin with
// 24 vertices and 36 indices.
func Cube() resource.MeshSource {
	vertices := make([]gfx.Vertex, 0, 24)
	indices := make([]uint16, 0, 36)

	for _, f := range cubeFaces {
		base := uint16(len(vertices))
		center := f.normal.Scale(0.5)
		for _, c := range [4][2]float32{{-1, -1}, {-1, 1}, {1, 1}, {1, -1}} {
			p := center.Add(f.u.Scale(c[0] * 0.5)).Add(f.v.Scale(c[1] * 0.5))
			vertices = append(vertices, gfx.Vertex{
				Position: p,
				Normal:   f.normal,
				Color:    math.White,
				TexCoord: [2]float32{(c[0] + 1) / 2, (1 - c[1]) / 2},
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	return must(resource.NewMeshSource(gfx.LayoutPositionNormalColorTx, gfx.TriangleList, vertices, indices))
}

// must panics on encoding errors, which static geometry cannot produce.
func must(src resource.MeshSource, err error) resource.MeshSource {
	if err != nil {
		panic(err)
	}
	return src
}
