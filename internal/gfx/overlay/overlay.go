// Package overlay draws frame statistics on top of the scene.
package overlay

import (
	"fmt"
	"image"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/gfx"
	"github.com/Faultbox/midgard-gfx/internal/gfx/command"
	"github.com/Faultbox/midgard-gfx/internal/gfx/device"
	"github.com/Faultbox/midgard-gfx/internal/gfx/recorder"
	"github.com/Faultbox/midgard-gfx/internal/gfx/resource"
	"github.com/Faultbox/midgard-gfx/internal/logger"
	"github.com/Faultbox/midgard-gfx/pkg/math"
)

// Overlay is a drawable whose list holds a single extension command. The
// extension renders the statistics of the previous frame.
type Overlay struct {
	id       command.ExtensionID
	renderer *renderer
	x, y     float32
}

// New registers the overlay's extension and reset listener on dev.
func New(dev device.Device) *Overlay {
	r := &renderer{dev: dev, log: logger.Named("overlay")}
	o := &Overlay{
		id:       dev.RegisterExtension(r),
		renderer: r,
		x:        8,
		y:        8,
	}
	dev.OnReset(r)
	return o
}

// SetPosition moves the panel; x and y are pixels from the top-left corner.
func (o *Overlay) SetPosition(x, y float32) {
	o.x, o.y = x, y
}

func (o *Overlay) ClearColor() (math.Color, bool) {
	return math.Color{}, false
}

func (o *Overlay) Draw(cache *resource.Cache, size gfx.Size) (*command.List, error) {
	rec := recorder.New(cache.Device().Defaults())
	rec.DrawExtension(o.id, [4]float32{o.x, o.y})
	return rec.Finish()
}

// renderer owns the overlay texture, a transient native object that is
// dropped on device loss and rebuilt after the reset.
type renderer struct {
	dev     device.Device
	log     *zap.Logger
	lines   []string
	img     *image.RGBA
	texture uint32
}

func (r *renderer) Draw(n device.Native, args [4]float32) error {
	lines := FormatStats(r.dev.Stats())
	if r.texture == 0 || !slices.Equal(lines, r.lines) {
		if err := r.upload(n, lines); err != nil {
			return err
		}
	}

	size := n.Size()
	n.SetRenderState(gfx.RenderDepthTest, gfx.Bool(false))
	n.SetRenderState(gfx.RenderDepthWrite, gfx.Bool(false))
	n.SetRenderState(gfx.RenderAlphaBlend, gfx.Bool(true))
	n.SetTransform(gfx.TransformProjection, math.OrthoLH(0, float32(size.Width), float32(size.Height), 0, -1, 1))
	n.SetTransform(gfx.TransformView, math.Identity())
	n.SetTransform(gfx.TransformWorld, math.Identity())
	n.BindTexture(0, r.texture)

	b := r.img.Bounds()
	data, err := gfx.EncodeVertices(gfx.LayoutPositionColorTex, quad(args[0], args[1], float32(b.Dx()), float32(b.Dy())))
	if err != nil {
		return err
	}
	n.DrawVertices(gfx.TriangleList, gfx.LayoutPositionColorTex, data)
	return nil
}

func (r *renderer) upload(n device.Native, lines []string) error {
	img := Rasterize(lines)
	id, err := n.CreateTexture(img)
	if err != nil {
		return fmt.Errorf("overlay texture: %w", err)
	}
	r.release(n)
	r.texture, r.img, r.lines = id, img, lines
	return nil
}

func (r *renderer) release(n device.Native) {
	if r.texture != 0 {
		n.DeleteTexture(r.texture)
		r.texture = 0
	}
}

func (r *renderer) DeviceLost(n device.Native) {
	r.release(n)
}

func (r *renderer) DeviceReset(n device.Native) error {
	if r.img == nil {
		return nil
	}
	id, err := n.CreateTexture(r.img)
	if err != nil {
		return fmt.Errorf("recreate overlay texture: %w", err)
	}
	r.texture = id
	r.log.Debug("overlay texture recreated")
	return nil
}

func quad(x, y, w, h float32) []gfx.Vertex {
	v := func(px, py, u, t float32) gfx.Vertex {
		return gfx.Vertex{Position: math.Vec3{X: px, Y: py}, Color: math.White, TexCoord: [2]float32{u, t}}
	}
	tl, tr := v(x, y, 0, 0), v(x+w, y, 1, 0)
	bl, br := v(x, y+h, 0, 1), v(x+w, y+h, 1, 1)
	return []gfx.Vertex{tl, tr, bl, bl, tr, br}
}
