// Package trace provides a device.Native that records every call instead of
// drawing. It backs headless runs and the pipeline's tests.
package trace

import (
	"fmt"
	"image"
	"strings"

	"github.com/Faultbox/midgard-gfx/internal/gfx"
	"github.com/Faultbox/midgard-gfx/internal/gfx/command"
	"github.com/Faultbox/midgard-gfx/internal/gfx/device"
	"github.com/Faultbox/midgard-gfx/pkg/math"
)

// Call is one recorded native call.
type Call struct {
	Op   string
	Args []any
}

func (c Call) String() string {
	if len(c.Args) == 0 {
		return c.Op
	}
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = fmt.Sprint(a)
	}
	return c.Op + "(" + strings.Join(args, ", ") + ")"
}

// Native records calls and keeps just enough object bookkeeping to catch
// leaks and double frees.
type Native struct {
	calls []Call
	size  gfx.Size

	status      device.Status
	statusQueue []device.Status

	nextID   uint32
	textures map[uint32]image.Rectangle
	vertices map[uint32]int
	indices  map[uint32]int

	// Injected failures, returned by the matching calls while non-nil.
	FailCreate  error
	FailPresent error
	FailReset   error

	presents int
	resets   int
}

var _ device.Native = (*Native)(nil)

// New returns a recorder with a backbuffer of size.
func New(size gfx.Size) *Native {
	return &Native{
		size:     size,
		textures: make(map[uint32]image.Rectangle),
		vertices: make(map[uint32]int),
		indices:  make(map[uint32]int),
	}
}

func (n *Native) record(op string, args ...any) {
	n.calls = append(n.calls, Call{Op: op, Args: args})
}

// Calls returns every call recorded since the last ClearCalls.
func (n *Native) Calls() []Call {
	return n.calls
}

// Ops returns the operation names of Calls.
func (n *Native) Ops() []string {
	ops := make([]string, len(n.calls))
	for i, c := range n.calls {
		ops[i] = c.Op
	}
	return ops
}

// Count returns how many recorded calls have operation op.
func (n *Native) Count(op string) int {
	count := 0
	for _, c := range n.calls {
		if c.Op == op {
			count++
		}
	}
	return count
}

// ClearCalls drops the recorded calls.
func (n *Native) ClearCalls() {
	n.calls = n.calls[:0]
}

// Dump writes one call per line.
func (n *Native) Dump() string {
	var b strings.Builder
	for i, c := range n.calls {
		fmt.Fprintf(&b, "%4d %s\n", i, c)
	}
	return b.String()
}

// SetStatus sets the status reported once the queue is drained.
func (n *Native) SetStatus(s device.Status) {
	n.status = s
	n.statusQueue = nil
}

// QueueStatus makes the next Status calls report ss in order. The last one
// sticks.
func (n *Native) QueueStatus(ss ...device.Status) {
	n.statusQueue = append(n.statusQueue, ss...)
}

// Resize changes the backbuffer size.
func (n *Native) Resize(s gfx.Size) {
	n.size = s
}

// Live returns the number of live textures, vertex buffers and index
// buffers.
func (n *Native) Live() (textures, vertexBuffers, indexBuffers int) {
	return len(n.textures), len(n.vertices), len(n.indices)
}

// Presents returns how many frames were presented.
func (n *Native) Presents() int { return n.presents }

// Resets returns how many resets succeeded.
func (n *Native) Resets() int { return n.resets }

func (n *Native) newID() uint32 {
	n.nextID++
	return n.nextID
}

func (n *Native) CreateTexture(img *image.RGBA) (uint32, error) {
	if n.FailCreate != nil {
		return 0, n.FailCreate
	}
	id := n.newID()
	n.textures[id] = img.Bounds()
	n.record("CreateTexture", id, img.Bounds().Dx(), img.Bounds().Dy())
	return id, nil
}

func (n *Native) DeleteTexture(id uint32) {
	forget("texture", n.textures, id)
	n.record("DeleteTexture", id)
}

func (n *Native) CreateVertexBuffer(data []byte) (uint32, error) {
	if n.FailCreate != nil {
		return 0, n.FailCreate
	}
	id := n.newID()
	n.vertices[id] = len(data)
	n.record("CreateVertexBuffer", id, len(data))
	return id, nil
}

func (n *Native) DeleteVertexBuffer(id uint32) {
	forget("vertex buffer", n.vertices, id)
	n.record("DeleteVertexBuffer", id)
}

func (n *Native) CreateIndexBuffer(indices []uint16) (uint32, error) {
	if n.FailCreate != nil {
		return 0, n.FailCreate
	}
	id := n.newID()
	n.indices[id] = len(indices)
	n.record("CreateIndexBuffer", id, len(indices))
	return id, nil
}

func (n *Native) DeleteIndexBuffer(id uint32) {
	forget("index buffer", n.indices, id)
	n.record("DeleteIndexBuffer", id)
}

// forget removes id from m and panics on unknown IDs, which means a
// double free in the device.
func forget[V any](kind string, m map[uint32]V, id uint32) {
	if _, ok := m[id]; !ok {
		panic(fmt.Sprintf("trace: delete of unknown %s %d", kind, id))
	}
	delete(m, id)
}

func (n *Native) SetRenderState(s gfx.RenderState, v uint32) {
	n.record("SetRenderState", s, v)
}

func (n *Native) SetTextureStageState(stage int, s gfx.TextureStageState, v uint32) {
	n.record("SetTextureStageState", stage, s, v)
}

func (n *Native) SetTransform(k gfx.TransformKind, m math.Mat4) {
	n.record("SetTransform", k, m)
}

func (n *Native) SetMaterial(m gfx.Material) {
	n.record("SetMaterial", m)
}

func (n *Native) SetLight(index int, l gfx.Light) {
	n.record("SetLight", index, l.Type)
}

func (n *Native) EnableLight(index int, enable bool) {
	n.record("EnableLight", index, enable)
}

func (n *Native) SetViewport(v gfx.Viewport) {
	n.record("SetViewport", v.X, v.Y, v.Width, v.Height)
}

func (n *Native) BindTexture(stage int, id uint32) {
	if id != 0 {
		if _, ok := n.textures[id]; !ok {
			panic(fmt.Sprintf("trace: bind of unknown texture %d", id))
		}
	}
	n.record("BindTexture", stage, id)
}

func (n *Native) SetSampler(stage int, desc gfx.SamplerDesc) {
	n.record("SetSampler", stage, desc)
}

func (n *Native) SetVertexFormat(layout gfx.VertexLayout) {
	n.record("SetVertexFormat", layout)
}

func (n *Native) BindVertexBuffer(id uint32) {
	n.record("BindVertexBuffer", id)
}

func (n *Native) BindIndexBuffer(id uint32) {
	n.record("BindIndexBuffer", id)
}

func (n *Native) DrawPrimitive(prim gfx.PrimitiveType, first, count int) {
	n.record("DrawPrimitive", prim, first, count)
}

func (n *Native) DrawIndexedPrimitive(prim gfx.PrimitiveType, first, count int) {
	n.record("DrawIndexedPrimitive", prim, first, count)
}

func (n *Native) DrawVertices(prim gfx.PrimitiveType, layout gfx.VertexLayout, data []byte) {
	n.record("DrawVertices", prim, layout, len(data)/layout.Stride())
}

func (n *Native) Clear(targets command.ClearTarget, color math.Color, depth float32) {
	n.record("Clear", targets, color, depth)
}

func (n *Native) Size() gfx.Size {
	return n.size
}

func (n *Native) Present() error {
	if n.FailPresent != nil {
		n.record("Present", n.FailPresent)
		return n.FailPresent
	}
	n.presents++
	n.record("Present")
	return nil
}

func (n *Native) Status() device.Status {
	if len(n.statusQueue) > 0 {
		n.status = n.statusQueue[0]
		n.statusQueue = n.statusQueue[1:]
	}
	return n.status
}

func (n *Native) Reset() error {
	if n.FailReset != nil {
		n.record("Reset", n.FailReset)
		return n.FailReset
	}
	n.resets++
	n.status = device.StatusOK
	n.statusQueue = nil
	n.FailPresent = nil
	n.record("Reset")
	return nil
}
