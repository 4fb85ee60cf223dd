// Package recorder builds command lists for drawables.
//
// State-setting calls go through a state cache and only append a command
// when the value differs from what this session last wrote (or from the
// device defaults, at the start of a session). Draw calls always append.
// The first rejected call poisons the session; Finish reports it.
package recorder

import (
	"fmt"

	"github.com/Faultbox/midgard-gfx/internal/gfx"
	"github.com/Faultbox/midgard-gfx/internal/gfx/command"
	"github.com/Faultbox/midgard-gfx/internal/gfx/state"
	"github.com/Faultbox/midgard-gfx/pkg/math"
)

const initialCapacity = 32

// Recorder accumulates one command list. It is reusable after Finish.
type Recorder struct {
	cache *state.Cache
	list  *command.List
	err   error
}

// New creates a recorder whose state cache starts from d.
func New(d gfx.DeviceDefaults) *Recorder {
	return &Recorder{
		cache: state.New(d),
		list:  command.NewList(initialCapacity),
	}
}

// Err returns the first error of the current session, if any.
func (r *Recorder) Err() error {
	return r.err
}

// Len returns the number of commands recorded so far.
func (r *Recorder) Len() int {
	return r.list.Len()
}

// Finish moves the recorded list out and resets the recorder for the next
// session. If any call was rejected, the list is discarded and the first
// error is returned.
func (r *Recorder) Finish() (*command.List, error) {
	list, err := r.list, r.err
	r.list = command.NewList(initialCapacity)
	r.err = nil
	r.cache.Reset()
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Clear clears the selected buffers. Always recorded.
func (r *Recorder) Clear(targets command.ClearTarget, color math.Color, depth float32) {
	if r.err != nil {
		return
	}
	r.list.Append(command.Clear{Targets: targets, Color: color, Depth: depth})
}

// SetViewport sets the viewport.
func (r *Recorder) SetViewport(v gfx.Viewport) {
	if r.err != nil {
		return
	}
	if v.Width <= 0 || v.Height <= 0 {
		r.fail("viewport %dx%d is empty", v.Width, v.Height)
		return
	}
	if r.cache.UpdateViewport(v) {
		r.list.Append(command.SetViewport{Viewport: v})
	}
}

// SetRenderState sets a scalar render state.
func (r *Recorder) SetRenderState(s gfx.RenderState, v uint32) {
	if r.err != nil {
		return
	}
	if int(s) >= gfx.NumRenderStates {
		r.fail("unknown render state %d", uint8(s))
		return
	}
	if r.cache.Update(state.RenderKey(s), v) {
		r.list.Append(command.SetRenderState{State: s, Value: v})
	}
}

// SetTextureStageState sets a combiner setting of a texture stage.
func (r *Recorder) SetTextureStageState(stage int, s gfx.TextureStageState, v uint32) {
	if r.err != nil || !r.checkStage(stage) {
		return
	}
	if int(s) >= gfx.NumTextureStageStates {
		r.fail("unknown texture stage state %d", uint8(s))
		return
	}
	if r.cache.Update(state.StageKey(stage, s), v) {
		r.list.Append(command.SetTextureStageState{Stage: stage, State: s, Value: v})
	}
}

// SetTexture binds h to stage. The invalid handle unbinds.
func (r *Recorder) SetTexture(stage int, h gfx.TextureHandle) {
	if r.err != nil || !r.checkStage(stage) {
		return
	}
	if r.cache.UpdateTexture(stage, h) {
		r.list.Append(command.BindTexture{Stage: stage, Texture: h})
	}
}

// SetSampler binds sampling parameters to stage.
func (r *Recorder) SetSampler(stage int, h gfx.SamplerHandle) {
	if r.err != nil || !r.checkStage(stage) {
		return
	}
	if r.cache.UpdateSampler(stage, h) {
		r.list.Append(command.BindSampler{Stage: stage, Sampler: h})
	}
}

// SetMaterial sets the lighting material.
func (r *Recorder) SetMaterial(m gfx.Material) {
	if r.err != nil {
		return
	}
	if r.cache.UpdateMaterial(m) {
		r.list.Append(command.SetMaterial{Material: m})
	}
}

// SetTransform loads matrix slot k. A projection whose perspective term is
// negative is rejected.
func (r *Recorder) SetTransform(k gfx.TransformKind, m math.Mat4) {
	if r.err != nil {
		return
	}
	if int(k) >= gfx.NumTransforms {
		r.fail("unknown transform %d", uint8(k))
		return
	}
	if k == gfx.TransformProjection && m.PerspectiveTerm() < 0 {
		r.fail("projection perspective term %v is negative", m.PerspectiveTerm())
		return
	}
	if r.cache.UpdateTransform(k, m) {
		r.list.Append(command.SetTransform{Transform: k, Matrix: m})
	}
}

// SetLights replaces the enabled lights. More than gfx.MaxLights is
// rejected.
func (r *Recorder) SetLights(ls ...gfx.Light) {
	if r.err != nil {
		return
	}
	lights, err := gfx.NewLights(ls...)
	if err != nil {
		r.err = err
		return
	}
	if r.cache.UpdateLights(lights) {
		r.list.Append(command.SetLights{Lights: lights})
	}
}

// DrawMesh draws every vertex (or index) of m.
func (r *Recorder) DrawMesh(m gfx.Mesh) {
	count := m.VertexCount
	if m.Indexed() {
		count = m.IndexCount
	}
	r.DrawMeshRange(m, 0, count)
}

// DrawMeshRange draws count vertices (or indices) of m starting at first.
// The pipeline and stream binds are recorded with every draw.
func (r *Recorder) DrawMeshRange(m gfx.Mesh, first, count int) {
	if r.err != nil {
		return
	}
	if !m.Pipeline.IsValid() || !m.VertexBuffer.IsValid() {
		r.fail("mesh without pipeline or vertex buffer")
		return
	}
	total := m.VertexCount
	if m.Indexed() {
		total = m.IndexCount
	}
	if first < 0 || first+count > total {
		r.fail("draw range [%d, %d) outside %d elements", first, first+count, total)
		return
	}
	if err := gfx.ValidateVertexCount(m.Primitive, count); err != nil {
		r.err = err
		return
	}

	r.list.Append(command.BindPipeline{Pipeline: m.Pipeline})
	r.list.Append(command.BindVertexBuffer{Buffer: m.VertexBuffer})
	if m.Indexed() {
		r.list.Append(command.BindIndexBuffer{Buffer: m.IndexBuffer})
		r.list.Append(command.DrawIndexed{First: first, Count: count})
		return
	}
	r.list.Append(command.Draw{First: first, Count: count})
}

// DrawExtension hands control to a device extension. Always recorded.
func (r *Recorder) DrawExtension(id command.ExtensionID, args [4]float32) {
	if r.err != nil {
		return
	}
	r.list.Append(command.Extension{ID: id, Args: args})
}

func (r *Recorder) checkStage(stage int) bool {
	if stage < 0 || stage >= gfx.MaxTextureStages {
		r.fail("texture stage %d out of range [0, %d)", stage, gfx.MaxTextureStages)
		return false
	}
	return true
}

func (r *Recorder) fail(format string, args ...any) {
	r.err = fmt.Errorf("%w: "+format, append([]any{gfx.ErrContract}, args...)...)
}
