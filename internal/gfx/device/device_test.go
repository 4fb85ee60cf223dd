package device_test

import (
	"context"
	"errors"
	"fmt"
	"image"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/gfx"
	"github.com/Faultbox/midgard-gfx/internal/gfx/command"
	"github.com/Faultbox/midgard-gfx/internal/gfx/device"
	"github.com/Faultbox/midgard-gfx/internal/gfx/device/trace"
	"github.com/Faultbox/midgard-gfx/internal/gfx/recorder"
	"github.com/Faultbox/midgard-gfx/pkg/math"
)

func testOptions() device.Options {
	opts := device.DefaultOptions()
	opts.ResetTimeout = 200 * time.Millisecond
	opts.ResetInitialInterval = time.Millisecond
	opts.ResetMaxInterval = 5 * time.Millisecond
	opts.Logger = zap.NewNop()
	return opts
}

func newDevice(t *testing.T) (*device.FixedFunction, *trace.Native) {
	t.Helper()
	n := trace.New(gfx.Size{Width: 640, Height: 480})
	return device.NewFixedFunction(n, testOptions()), n
}

func triangleData(t *testing.T) []byte {
	t.Helper()
	data, err := gfx.EncodeVertices(gfx.LayoutPositionColor, []gfx.Vertex{
		{Position: math.Vec3{X: -1, Y: -1}, Color: math.RGB(1, 0, 0)},
		{Position: math.Vec3{X: 1, Y: -1}, Color: math.RGB(0, 1, 0)},
		{Position: math.Vec3{Y: 1}, Color: math.RGB(0, 0, 1)},
	})
	if err != nil {
		t.Fatalf("EncodeVertices: %v", err)
	}
	return data
}

func addTriangle(t *testing.T, d *device.FixedFunction) gfx.Mesh {
	t.Helper()
	h, err := d.AddMesh(triangleData(t), gfx.LayoutPositionColor, gfx.TriangleList)
	if err != nil {
		t.Fatalf("AddMesh: %v", err)
	}
	m, err := d.Mesh(h)
	if err != nil {
		t.Fatalf("Mesh: %v", err)
	}
	return m
}

func record(t *testing.T, d device.Device, fn func(r *recorder.Recorder)) *command.List {
	t.Helper()
	r := recorder.New(d.Defaults())
	fn(r)
	list, err := r.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return list
}

// bracketOps returns the native calls executing an empty list produces.
func bracketOps(t *testing.T) []string {
	t.Helper()
	d, n := newDevice(t)
	if err := d.Execute(command.NewList(0)); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	return n.Ops()
}

func TestExecuteAppliesDefaults(t *testing.T) {
	ops := bracketOps(t)

	want := gfx.NumRenderStates +
		gfx.MaxTextureStages*(gfx.NumTextureStageStates+1) +
		gfx.NumTransforms + 2
	if len(ops) != want {
		t.Fatalf("empty list produced %d native calls, want %d:\n%v", len(ops), want, ops)
	}
	if ops[0] != "SetRenderState" || ops[len(ops)-1] != "SetViewport" {
		t.Errorf("unexpected bracket %v", ops)
	}
}

func TestExecuteTriangleEndToEnd(t *testing.T) {
	prologue := bracketOps(t)

	d, n := newDevice(t)
	mesh := addTriangle(t, d)
	list := record(t, d, func(r *recorder.Recorder) {
		r.SetRenderState(gfx.RenderLighting, gfx.Bool(false))
		r.DrawMesh(mesh)
	})
	n.ClearCalls()

	if err := d.Execute(list); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	ops := n.Ops()
	body := ops[len(prologue):]
	want := []string{
		"SetVertexFormat", "BindVertexBuffer", "DrawPrimitive",
		"BindVertexBuffer", "BindIndexBuffer",
	}
	if fmt.Sprint(body) != fmt.Sprint(want) {
		t.Errorf("body = %v, want %v", body, want)
	}
	if fmt.Sprint(ops[:len(prologue)]) != fmt.Sprint(prologue) {
		t.Errorf("prologue differs from the default bracket")
	}

	draw := n.Calls()[len(prologue)+2]
	if draw.Args[0] != gfx.TriangleList || draw.Args[2] != 3 {
		t.Errorf("draw call = %s, want triangle-list of 3", draw)
	}

	if err := d.Present(context.Background()); err != nil {
		t.Fatalf("Present: %v", err)
	}
	stats := d.Stats()
	if stats.DrawCalls != 1 || stats.Primitives != 1 || stats.Lists != 1 || stats.StateChanges != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Frame != 1 {
		t.Errorf("frame = %d, want 1", stats.Frame)
	}
}

func TestExecuteChangedRenderState(t *testing.T) {
	prologue := bracketOps(t)

	d, n := newDevice(t)
	mesh := addTriangle(t, d)
	list := record(t, d, func(r *recorder.Recorder) {
		r.SetRenderState(gfx.RenderLighting, gfx.Bool(true))
		r.DrawMesh(mesh)
	})
	n.ClearCalls()
	d.Execute(list)

	body := n.Calls()[len(prologue):]
	if body[0].Op != "SetRenderState" || body[0].Args[0] != gfx.RenderLighting || body[0].Args[1] != uint32(1) {
		t.Errorf("first body call = %s, want lighting on", body[0])
	}
	if n.Count("DrawPrimitive") != 1 {
		t.Errorf("expected exactly one draw, got %d", n.Count("DrawPrimitive"))
	}
}

func TestEachListStartsFromDefaults(t *testing.T) {
	d, n := newDevice(t)
	cull := record(t, d, func(r *recorder.Recorder) {
		r.SetRenderState(gfx.RenderCullMode, gfx.CullCCW)
	})
	d.Execute(cull)
	n.ClearCalls()
	d.Execute(command.NewList(0))

	for _, c := range n.Calls() {
		if c.Op == "SetRenderState" && c.Args[0] == gfx.RenderCullMode && c.Args[1] != gfx.CullNone {
			t.Errorf("second list saw cull mode %v", c.Args[1])
		}
	}
	if n.Count("SetRenderState") != gfx.NumRenderStates {
		t.Errorf("every list must reapply all render states")
	}
}

func TestIndexedMesh(t *testing.T) {
	d, n := newDevice(t)
	data, _ := gfx.EncodeVertices(gfx.LayoutPosition, make([]gfx.Vertex, 4))

	h, err := d.AddIndexedMesh(data, gfx.LayoutPosition, gfx.TriangleList, []uint16{0, 1, 2, 2, 1, 3})
	if err != nil {
		t.Fatalf("AddIndexedMesh: %v", err)
	}
	mesh, _ := d.Mesh(h)
	if !mesh.Indexed() || mesh.IndexCount != 6 || mesh.VertexCount != 4 {
		t.Errorf("mesh = %+v", mesh)
	}

	d.Execute(record(t, d, func(r *recorder.Recorder) { r.DrawMesh(mesh) }))
	if n.Count("DrawIndexedPrimitive") != 1 {
		t.Errorf("expected one indexed draw:\n%s", n.Dump())
	}

	if _, err := d.AddIndexedMesh(data, gfx.LayoutPosition, gfx.TriangleList, []uint16{0, 1, 9}); !errors.Is(err, gfx.ErrContract) {
		t.Errorf("index out of range: expected ErrContract, got %v", err)
	}
	if _, err := d.AddIndexedMesh(data, gfx.LayoutPosition, gfx.TriangleList, nil); !errors.Is(err, gfx.ErrContract) {
		t.Errorf("no indices: expected ErrContract, got %v", err)
	}
}

func TestAddMeshContract(t *testing.T) {
	d, n := newDevice(t)
	data := triangleData(t)

	tests := []struct {
		name   string
		data   []byte
		layout gfx.VertexLayout
		prim   gfx.PrimitiveType
	}{
		{"triangle list of two", data[:2*gfx.LayoutPositionColor.Stride()], gfx.LayoutPositionColor, gfx.TriangleList},
		{"partial vertex", data[:20], gfx.LayoutPositionColor, gfx.PointList},
		{"odd line list", data, gfx.LayoutPositionColor, gfx.LineList},
		{"no position", data, gfx.LayoutColor, gfx.TriangleList},
		{"unknown primitive", data, gfx.LayoutPositionColor, gfx.PrimitiveType(99)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := d.AddMesh(tt.data, tt.layout, tt.prim); !errors.Is(err, gfx.ErrContract) {
				t.Errorf("expected ErrContract, got %v", err)
			}
		})
	}
	if _, vbs, _ := n.Live(); vbs != 0 {
		t.Errorf("rejected meshes leaked %d vertex buffers", vbs)
	}
}

func TestPipelinesAreInterned(t *testing.T) {
	d, _ := newDevice(t)
	a := addTriangle(t, d)
	b := addTriangle(t, d)

	if a.Pipeline != b.Pipeline {
		t.Error("meshes with the same layout and topology should share a pipeline")
	}
	if a.VertexBuffer == b.VertexBuffer {
		t.Error("meshes must not share vertex buffers")
	}
}

func TestStaleMeshFailsExecution(t *testing.T) {
	d, n := newDevice(t)
	h, _ := d.AddMesh(triangleData(t), gfx.LayoutPositionColor, gfx.TriangleList)
	mesh, _ := d.Mesh(h)
	list := record(t, d, func(r *recorder.Recorder) { r.DrawMesh(mesh) })

	if err := d.RemoveMesh(h); err != nil {
		t.Fatalf("RemoveMesh: %v", err)
	}
	if err := d.RemoveMesh(h); !errors.Is(err, gfx.ErrStaleHandle) {
		t.Errorf("second RemoveMesh: expected ErrStaleHandle, got %v", err)
	}

	n.ClearCalls()
	if err := d.Execute(list); !errors.Is(err, gfx.ErrStaleHandle) {
		t.Errorf("Execute with freed buffer: expected ErrStaleHandle, got %v", err)
	}
	if n.Count("DrawPrimitive") != 0 {
		t.Error("no draw should reach the backend")
	}
}

func TestTextures(t *testing.T) {
	opts := testOptions()
	loads := 0
	opts.LoadImage = func(path string) (*image.RGBA, error) {
		loads++
		if path == "missing.png" {
			return nil, errors.New("file not found")
		}
		return image.NewRGBA(image.Rect(0, 0, 8, 4)), nil
	}
	n := trace.New(gfx.Size{Width: 64, Height: 64})
	d := device.NewFixedFunction(n, opts)

	h, err := d.AddTexture("wall.png")
	if err != nil {
		t.Fatalf("AddTexture: %v", err)
	}
	if size, _ := d.TextureSize(h); size != (gfx.Size{Width: 8, Height: 4}) {
		t.Errorf("TextureSize = %+v", size)
	}
	if _, err := d.AddTexture("missing.png"); err == nil {
		t.Error("expected load error")
	}

	list := record(t, d, func(r *recorder.Recorder) { r.SetTexture(0, h) })
	n.ClearCalls()
	d.Execute(list)
	if n.Count("BindTexture") != 2 {
		t.Errorf("expected bind and unbind of the texture:\n%s", n.Dump())
	}
	last := n.Calls()[len(n.Calls())-1]
	if last.Op != "BindTexture" || last.Args[1] != uint32(0) {
		t.Errorf("bracket should end by unbinding, got %s", last)
	}

	if err := d.RemoveTexture(h); err != nil {
		t.Fatalf("RemoveTexture: %v", err)
	}
	if tex, _, _ := n.Live(); tex != 0 {
		t.Errorf("%d textures still live", tex)
	}

	if _, err := d.AddTextureImage(image.NewRGBA(image.Rectangle{})); !errors.Is(err, gfx.ErrContract) {
		t.Errorf("empty image: expected ErrContract, got %v", err)
	}
}

func TestLightsAreDisabledAfterList(t *testing.T) {
	d, n := newDevice(t)
	l := gfx.DirectionalLight(math.Vec3{Z: 1}, math.White)
	list := record(t, d, func(r *recorder.Recorder) { r.SetLights(l, l) })

	n.ClearCalls()
	d.Execute(list)

	var enabled, disabled int
	for _, c := range n.Calls() {
		if c.Op != "EnableLight" {
			continue
		}
		if c.Args[1] == true {
			enabled++
		} else {
			disabled++
		}
	}
	if n.Count("SetLight") != 2 || enabled != 2 || disabled != 2 {
		t.Errorf("SetLight=%d enabled=%d disabled=%d, want 2/2/2", n.Count("SetLight"), enabled, disabled)
	}
}

func TestExecuteRejectsNegativeProjection(t *testing.T) {
	d, _ := newDevice(t)
	bad := math.Identity()
	bad[11] = -1

	list := command.NewList(1)
	list.Append(command.SetTransform{Transform: gfx.TransformProjection, Matrix: bad})
	if err := d.Execute(list); !errors.Is(err, gfx.ErrContract) {
		t.Errorf("expected ErrContract, got %v", err)
	}
}

func TestPoolLimit(t *testing.T) {
	opts := testOptions()
	opts.PoolLimit = 1
	d := device.NewFixedFunction(trace.New(gfx.Size{Width: 1, Height: 1}), opts)

	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	if _, err := d.AddTextureImage(img); err != nil {
		t.Fatalf("first texture: %v", err)
	}
	if _, err := d.AddTextureImage(img); !errors.Is(err, gfx.ErrCapacity) {
		t.Errorf("expected ErrCapacity, got %v", err)
	}
}

func TestCloseReleasesEverything(t *testing.T) {
	d, n := newDevice(t)
	addTriangle(t, d)
	data, _ := gfx.EncodeVertices(gfx.LayoutPosition, make([]gfx.Vertex, 3))
	d.AddIndexedMesh(data, gfx.LayoutPosition, gfx.TriangleList, []uint16{0, 1, 2})
	d.CreateVertexBuffer(gfx.VertexBufferDesc{Layout: gfx.LayoutPosition, Data: data})
	d.AddTextureImage(image.NewRGBA(image.Rect(0, 0, 2, 2)))

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	tex, vbs, ibs := n.Live()
	if tex != 0 || vbs != 0 || ibs != 0 {
		t.Errorf("live after Close: textures=%d vertex=%d index=%d", tex, vbs, ibs)
	}
}

type recordingExtension struct {
	args [][4]float32
	err  error
}

func (e *recordingExtension) Draw(n device.Native, args [4]float32) error {
	e.args = append(e.args, args)
	n.DrawVertices(gfx.TriangleStrip, gfx.LayoutPosition, make([]byte, 4*12))
	return e.err
}

func TestExtensions(t *testing.T) {
	d, n := newDevice(t)
	ext := &recordingExtension{}
	id := d.RegisterExtension(ext)

	list := record(t, d, func(r *recorder.Recorder) { r.DrawExtension(id, [4]float32{1, 2, 3, 4}) })
	n.ClearCalls()
	if err := d.Execute(list); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(ext.args) != 1 || ext.args[0] != [4]float32{1, 2, 3, 4} {
		t.Errorf("extension args = %v", ext.args)
	}
	if n.Count("DrawVertices") != 1 {
		t.Error("extension draw did not reach the backend")
	}
	if n.Count("EnableLight") != gfx.MaxLights || n.Count("BindTexture") != gfx.MaxTextureStages {
		t.Errorf("an extension must leave a fully neutralized bracket:\n%s", n.Dump())
	}

	unknown := command.NewList(1)
	unknown.Append(command.Extension{ID: id + 1})
	if err := d.Execute(unknown); !errors.Is(err, gfx.ErrContract) {
		t.Errorf("unknown extension: expected ErrContract, got %v", err)
	}

	ext.err = errors.New("boom")
	if err := d.Execute(list); err == nil {
		t.Error("extension error should propagate")
	}
}
