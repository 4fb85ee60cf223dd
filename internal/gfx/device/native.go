package device

import (
	"image"

	"github.com/Faultbox/midgard-gfx/internal/gfx"
	"github.com/Faultbox/midgard-gfx/internal/gfx/command"
	"github.com/Faultbox/midgard-gfx/pkg/math"
)

// Status is the backend's view of device usability.
type Status int

const (
	// StatusOK means the device accepts work.
	StatusOK Status = iota
	// StatusLost means the device is gone and cannot be reset yet.
	StatusLost
	// StatusReadyToReset means Reset may be called.
	StatusReadyToReset
	// StatusFailed means the device cannot be recovered.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusLost:
		return "lost"
	case StatusReadyToReset:
		return "ready-to-reset"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Native is the stateful fixed-function API a backend exposes. Object IDs
// are backend-defined; 0 means none.
type Native interface {
	CreateTexture(img *image.RGBA) (uint32, error)
	DeleteTexture(id uint32)
	CreateVertexBuffer(data []byte) (uint32, error)
	DeleteVertexBuffer(id uint32)
	CreateIndexBuffer(indices []uint16) (uint32, error)
	DeleteIndexBuffer(id uint32)

	SetRenderState(s gfx.RenderState, v uint32)
	SetTextureStageState(stage int, s gfx.TextureStageState, v uint32)
	SetTransform(k gfx.TransformKind, m math.Mat4)
	SetMaterial(m gfx.Material)
	SetLight(index int, l gfx.Light)
	EnableLight(index int, enable bool)
	SetViewport(v gfx.Viewport)

	BindTexture(stage int, id uint32)
	SetSampler(stage int, desc gfx.SamplerDesc)

	// SetVertexFormat selects the layout following stream binds use.
	SetVertexFormat(layout gfx.VertexLayout)
	BindVertexBuffer(id uint32)
	BindIndexBuffer(id uint32)

	// DrawPrimitive draws count vertices of the bound stream from first.
	DrawPrimitive(prim gfx.PrimitiveType, first, count int)
	// DrawIndexedPrimitive draws count indices of the bound index stream
	// from first.
	DrawIndexedPrimitive(prim gfx.PrimitiveType, first, count int)
	// DrawVertices draws client-side vertex data in layout without a
	// buffer object. Any bound vertex stream is unbound.
	DrawVertices(prim gfx.PrimitiveType, layout gfx.VertexLayout, data []byte)

	Clear(targets command.ClearTarget, color math.Color, depth float32)

	// Size returns the backbuffer size.
	Size() gfx.Size
	// Present shows the backbuffer. It returns an error wrapping
	// gfx.ErrDeviceLost when the device is lost.
	Present() error
	Status() Status
	// Reset restores a lost device. Resources the device created survive.
	Reset() error
}
