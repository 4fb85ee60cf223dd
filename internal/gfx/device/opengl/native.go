// Package opengl implements device.Native on the OpenGL 2.1 compatibility
// profile: fixed-function lighting, matrix stacks and texture combiners.
//
// All calls must come from the thread that owns the GL context.
package opengl

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v2.1/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/engine/texture"
	"github.com/Faultbox/midgard-gfx/internal/gfx"
	"github.com/Faultbox/midgard-gfx/internal/gfx/command"
	"github.com/Faultbox/midgard-gfx/internal/gfx/device"
	"github.com/Faultbox/midgard-gfx/internal/logger"
	"github.com/Faultbox/midgard-gfx/pkg/math"
)

// Surface is the window side of the backend.
type Surface interface {
	SwapBuffers()
	DrawableSize() (int, int)
}

type stage struct {
	texture uint32
	sampler gfx.SamplerDesc
	states  [gfx.NumTextureStageStates]uint32
}

// Native is the OpenGL backend.
type Native struct {
	surface Surface
	log     *zap.Logger

	layout    gfx.VertexLayout
	vertexBuf uint32
	streamBuf uint32 // scratch buffer for DrawVertices

	world, view math.Mat4
	lights      [gfx.MaxLights]gfx.Light
	lightOn     [gfx.MaxLights]bool
	stages      [gfx.MaxTextureStages]stage
	depthWrite  bool

	lost      bool
	minimized bool
}

var _ device.Native = (*Native)(nil)

// New initializes GL function pointers on the current context.
func New(surface Surface) (*Native, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	n := &Native{
		surface: surface,
		log:     logger.Named("opengl"),
		world:   math.Identity(),
		view:    math.Identity(),
	}
	n.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.GenBuffers(1, &n.streamBuf)
	n.initState()
	return n, nil
}

func (n *Native) initState() {
	gl.DepthFunc(gl.LEQUAL)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.LightModeli(gl.LIGHT_MODEL_LOCAL_VIEWER, gl.TRUE)
	gl.ShadeModel(gl.SMOOTH)
	gl.Enable(gl.COLOR_MATERIAL)
	gl.ColorMaterial(gl.FRONT_AND_BACK, gl.AMBIENT_AND_DIFFUSE)
	gl.Disable(gl.COLOR_MATERIAL)
	for i := range n.stages {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(i))
		gl.TexEnvi(gl.TEXTURE_ENV, gl.TEXTURE_ENV_MODE, gl.COMBINE)
	}
	gl.ActiveTexture(gl.TEXTURE0)
}

// MarkLost flags the device as lost, e.g. on a render-device-reset event
// or a display mode change.
func (n *Native) MarkLost() {
	if !n.lost {
		n.log.Warn("device lost")
	}
	n.lost = true
}

// SetMinimized tracks whether the window is minimized. A lost device is
// not ready to reset while minimized.
func (n *Native) SetMinimized(minimized bool) {
	n.minimized = minimized
}

func (n *Native) CreateTexture(img *image.RGBA) (uint32, error) {
	b := img.Bounds()
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(b.Dx()), int32(b.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	applySampler(gfx.SamplerDesc{})
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if err := checkError("create texture"); err != nil {
		gl.DeleteTextures(1, &id)
		return 0, err
	}
	return id, nil
}

func (n *Native) DeleteTexture(id uint32) {
	for i := range n.stages {
		if n.stages[i].texture == id {
			n.BindTexture(i, 0)
		}
	}
	gl.DeleteTextures(1, &id)
}

func (n *Native) CreateVertexBuffer(data []byte) (uint32, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("empty vertex buffer")
	}
	var id uint32
	gl.GenBuffers(1, &id)
	gl.BindBuffer(gl.ARRAY_BUFFER, id)
	gl.BufferData(gl.ARRAY_BUFFER, len(data), unsafe.Pointer(&data[0]), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, n.vertexBuf)
	if err := checkError("create vertex buffer"); err != nil {
		gl.DeleteBuffers(1, &id)
		return 0, err
	}
	return id, nil
}

func (n *Native) DeleteVertexBuffer(id uint32) {
	if n.vertexBuf == id {
		n.BindVertexBuffer(0)
	}
	gl.DeleteBuffers(1, &id)
}

func (n *Native) CreateIndexBuffer(indices []uint16) (uint32, error) {
	if len(indices) == 0 {
		return 0, fmt.Errorf("empty index buffer")
	}
	var id uint32
	gl.GenBuffers(1, &id)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, id)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*2, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)
	if err := checkError("create index buffer"); err != nil {
		gl.DeleteBuffers(1, &id)
		return 0, err
	}
	return id, nil
}

func (n *Native) DeleteIndexBuffer(id uint32) {
	gl.DeleteBuffers(1, &id)
}

func (n *Native) Clear(targets command.ClearTarget, color math.Color, depth float32) {
	var mask uint32
	if targets&command.ClearColor != 0 {
		gl.ClearColor(color.R, color.G, color.B, color.A)
		mask |= gl.COLOR_BUFFER_BIT
	}
	if targets&command.ClearDepth != 0 {
		gl.ClearDepth(float64(depth))
		gl.DepthMask(true)
		mask |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(mask)
	gl.DepthMask(n.depthWrite)
}

// SetViewport maps a top-left origin viewport onto GL's bottom-left one.
func (n *Native) SetViewport(v gfx.Viewport) {
	size := n.Size()
	gl.Viewport(int32(v.X), int32(size.Height-v.Y-v.Height), int32(v.Width), int32(v.Height))
	gl.DepthRange(float64(v.MinZ), float64(v.MaxZ))
}

func (n *Native) Size() gfx.Size {
	w, h := n.surface.DrawableSize()
	return gfx.Size{Width: w, Height: h}
}

func (n *Native) Present() error {
	if n.lost {
		return fmt.Errorf("swap: %w", gfx.ErrDeviceLost)
	}
	n.surface.SwapBuffers()
	if code := gl.GetError(); code == gl.OUT_OF_MEMORY {
		n.MarkLost()
		return fmt.Errorf("swap: out of memory: %w", gfx.ErrDeviceLost)
	}
	return nil
}

// Capture reads back the last presented frame.
func (n *Native) Capture() (*image.RGBA, error) {
	size := n.Size()
	pixels := make([]byte, size.Width*size.Height*4)
	gl.ReadBuffer(gl.FRONT)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(size.Width), int32(size.Height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.ReadBuffer(gl.BACK)
	if err := checkError("capture"); err != nil {
		return nil, err
	}
	return texture.FromBottomUp(pixels, size.Width, size.Height)
}

func (n *Native) Status() device.Status {
	switch {
	case !n.lost:
		return device.StatusOK
	case n.minimized:
		return device.StatusLost
	default:
		return device.StatusReadyToReset
	}
}

// Reset drains pending GL errors and reapplies the base state. The context
// and its objects survive a reset.
func (n *Native) Reset() error {
	for i := 0; i < 16 && gl.GetError() != gl.NO_ERROR; i++ {
	}
	n.initState()
	n.BindVertexBuffer(0)
	n.BindIndexBuffer(0)
	for i := range n.stages {
		n.BindTexture(i, 0)
	}
	n.lost = false
	if err := checkError("reset"); err != nil {
		return err
	}
	n.log.Info("device reset")
	return nil
}

func checkError(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("%s: GL error 0x%x", op, code)
	}
	return nil
}
