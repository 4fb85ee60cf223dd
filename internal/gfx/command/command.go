// Package command defines the backend-agnostic commands a recorder emits and
// a device executes.
//
// Command is a closed set: every variant lives in this package and carries
// only fixed-size values, so a List can be copied, dropped or replayed
// without releasing anything.
package command

import (
	"github.com/Faultbox/midgard-gfx/internal/gfx"
	"github.com/Faultbox/midgard-gfx/pkg/math"
)

// Kind identifies the variant of a Command.
type Kind uint8

const (
	KindClear Kind = iota
	KindSetViewport
	KindBindPipeline
	KindBindVertexBuffer
	KindBindIndexBuffer
	KindDraw
	KindDrawIndexed
	KindBindTexture
	KindBindSampler
	KindSetTextureStageState
	KindSetTransform
	KindSetMaterial
	KindSetLights
	KindSetRenderState
	KindExtension
)

var kindNames = [...]string{
	KindClear:                "Clear",
	KindSetViewport:          "SetViewport",
	KindBindPipeline:         "BindPipeline",
	KindBindVertexBuffer:     "BindVertexBuffer",
	KindBindIndexBuffer:      "BindIndexBuffer",
	KindDraw:                 "Draw",
	KindDrawIndexed:          "DrawIndexed",
	KindBindTexture:          "BindTexture",
	KindBindSampler:          "BindSampler",
	KindSetTextureStageState: "SetTextureStageState",
	KindSetTransform:         "SetTransform",
	KindSetMaterial:          "SetMaterial",
	KindSetLights:            "SetLights",
	KindSetRenderState:       "SetRenderState",
	KindExtension:            "Extension",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// IsState reports whether commands of this kind only change device state.
func (k Kind) IsState() bool {
	switch k {
	case KindSetViewport, KindBindTexture, KindBindSampler, KindSetTextureStageState,
		KindSetTransform, KindSetMaterial, KindSetLights, KindSetRenderState:
		return true
	}
	return false
}

// Command is implemented by the variants below and nothing else.
type Command interface {
	Kind() Kind
	command()
}

// ClearTarget selects which buffers Clear touches.
type ClearTarget uint8

const (
	ClearColor ClearTarget = 1 << iota
	ClearDepth

	ClearAll = ClearColor | ClearDepth
)

// Clear fills the color and/or depth buffer.
type Clear struct {
	Targets ClearTarget
	Color   math.Color
	Depth   float32
}

// SetViewport sets the screen rectangle draws map into.
type SetViewport struct {
	Viewport gfx.Viewport
}

// BindPipeline selects the vertex layout and topology for following draws.
type BindPipeline struct {
	Pipeline gfx.PipelineHandle
}

// BindVertexBuffer selects the vertex stream.
type BindVertexBuffer struct {
	Buffer gfx.VertexBufferHandle
}

// BindIndexBuffer selects the index stream for DrawIndexed.
type BindIndexBuffer struct {
	Buffer gfx.IndexBufferHandle
}

// Draw issues Count vertices starting at First from the bound vertex stream.
type Draw struct {
	First int
	Count int
}

// DrawIndexed issues Count indices starting at First from the bound index
// stream.
type DrawIndexed struct {
	First int
	Count int
}

// BindTexture binds a texture to a stage. An invalid handle unbinds.
type BindTexture struct {
	Stage   int
	Texture gfx.TextureHandle
}

// BindSampler binds sampling parameters to a stage.
type BindSampler struct {
	Stage   int
	Sampler gfx.SamplerHandle
}

// SetTextureStageState sets one combiner setting of a texture stage.
type SetTextureStageState struct {
	Stage int
	State gfx.TextureStageState
	Value uint32
}

// SetTransform loads a matrix slot.
type SetTransform struct {
	Transform gfx.TransformKind
	Matrix    math.Mat4
}

// SetMaterial sets the lighting material.
type SetMaterial struct {
	Material gfx.Material
}

// SetLights replaces the enabled lights. Lights beyond Count are disabled.
type SetLights struct {
	Lights gfx.Lights
}

// SetRenderState sets one scalar render state.
type SetRenderState struct {
	State gfx.RenderState
	Value uint32
}

// ExtensionID names a device extension registered with
// device.Device.RegisterExtension.
type ExtensionID uint32

// Extension hands control to a registered device extension. Args are
// extension-defined.
type Extension struct {
	ID   ExtensionID
	Args [4]float32
}

func (Clear) Kind() Kind                { return KindClear }
func (SetViewport) Kind() Kind          { return KindSetViewport }
func (BindPipeline) Kind() Kind         { return KindBindPipeline }
func (BindVertexBuffer) Kind() Kind     { return KindBindVertexBuffer }
func (BindIndexBuffer) Kind() Kind      { return KindBindIndexBuffer }
func (Draw) Kind() Kind                 { return KindDraw }
func (DrawIndexed) Kind() Kind          { return KindDrawIndexed }
func (BindTexture) Kind() Kind          { return KindBindTexture }
func (BindSampler) Kind() Kind          { return KindBindSampler }
func (SetTextureStageState) Kind() Kind { return KindSetTextureStageState }
func (SetTransform) Kind() Kind         { return KindSetTransform }
func (SetMaterial) Kind() Kind          { return KindSetMaterial }
func (SetLights) Kind() Kind            { return KindSetLights }
func (SetRenderState) Kind() Kind       { return KindSetRenderState }
func (Extension) Kind() Kind            { return KindExtension }

func (Clear) command()                {}
func (SetViewport) command()          {}
func (BindPipeline) command()         {}
func (BindVertexBuffer) command()     {}
func (BindIndexBuffer) command()      {}
func (Draw) command()                 {}
func (DrawIndexed) command()          {}
func (BindTexture) command()          {}
func (BindSampler) command()          {}
func (SetTextureStageState) command() {}
func (SetTransform) command()         {}
func (SetMaterial) command()          {}
func (SetLights) command()            {}
func (SetRenderState) command()       {}
func (Extension) command()            {}
