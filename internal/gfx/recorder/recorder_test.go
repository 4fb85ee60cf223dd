package recorder

import (
	"errors"
	"testing"

	"github.com/Faultbox/midgard-gfx/internal/gfx"
	"github.com/Faultbox/midgard-gfx/internal/gfx/command"
	"github.com/Faultbox/midgard-gfx/internal/gfx/handle"
	"github.com/Faultbox/midgard-gfx/pkg/math"
)

func testMesh(prim gfx.PrimitiveType, vertices int) gfx.Mesh {
	return gfx.Mesh{
		Pipeline:     handle.FromRaw[gfx.PipelineTag](1 << 24),
		VertexBuffer: handle.FromRaw[gfx.VertexBufferTag](1 << 24),
		Primitive:    prim,
		VertexCount:  vertices,
	}
}

func finish(t *testing.T, r *Recorder) *command.List {
	t.Helper()
	list, err := r.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return list
}

func kindsEqual(t *testing.T, got, want []command.Kind) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("kinds = %v, want %v", got, want)
		}
	}
}

func TestRenderStateDedup(t *testing.T) {
	r := New(gfx.DefaultDeviceDefaults())
	r.SetRenderState(gfx.RenderLighting, 1)
	r.SetRenderState(gfx.RenderLighting, 1)

	list := finish(t, r)
	if list.Count(command.KindSetRenderState) != 1 {
		t.Errorf("expected one SetRenderState, got:\n%s", list)
	}
}

func TestDefaultStateNotRecorded(t *testing.T) {
	r := New(gfx.DefaultDeviceDefaults())
	r.SetRenderState(gfx.RenderLighting, gfx.Bool(false))
	r.SetRenderState(gfx.RenderCullMode, gfx.CullNone)
	r.SetTransform(gfx.TransformWorld, math.Identity())

	if list := finish(t, r); list.Len() != 0 {
		t.Errorf("writes equal to the device defaults should not be recorded:\n%s", list)
	}
}

func TestDrawsAlwaysAppend(t *testing.T) {
	r := New(gfx.DefaultDeviceDefaults())
	m := testMesh(gfx.TriangleList, 3)
	r.DrawMesh(m)
	r.DrawMesh(m)

	list := finish(t, r)
	kindsEqual(t, list.Kinds(), []command.Kind{
		command.KindBindPipeline, command.KindBindVertexBuffer, command.KindDraw,
		command.KindBindPipeline, command.KindBindVertexBuffer, command.KindDraw,
	})
}

func TestIndexedDraw(t *testing.T) {
	r := New(gfx.DefaultDeviceDefaults())
	m := testMesh(gfx.TriangleList, 4)
	m.IndexBuffer = handle.FromRaw[gfx.IndexBufferTag](1 << 24)
	m.IndexCount = 6
	r.DrawMesh(m)

	list := finish(t, r)
	kindsEqual(t, list.Kinds(), []command.Kind{
		command.KindBindPipeline, command.KindBindVertexBuffer,
		command.KindBindIndexBuffer, command.KindDrawIndexed,
	})
	if d := list.At(3).(command.DrawIndexed); d.Count != 6 {
		t.Errorf("DrawIndexed count = %d, want 6", d.Count)
	}
}

func TestTransformIdentityRecordedAfterChange(t *testing.T) {
	r := New(gfx.DefaultDeviceDefaults())
	r.SetTransform(gfx.TransformWorld, math.Translate(1, 2, 3))
	r.SetTransform(gfx.TransformWorld, math.Identity())

	list := finish(t, r)
	if list.Count(command.KindSetTransform) != 2 {
		t.Errorf("identity after a translation must be recorded:\n%s", list)
	}
}

func TestContractViolations(t *testing.T) {
	light := gfx.DirectionalLight(math.Vec3{Y: -1}, math.White)
	negative := math.PerspectiveLH(1, 1, 0.1, 100)
	negative[11] = -1

	tests := []struct {
		name   string
		record func(r *Recorder)
	}{
		{"negative perspective", func(r *Recorder) { r.SetTransform(gfx.TransformProjection, negative) }},
		{"too many lights", func(r *Recorder) { r.SetLights(light, light, light, light, light) }},
		{"stage out of range", func(r *Recorder) { r.SetTexture(gfx.MaxTextureStages, gfx.TextureHandle{}) }},
		{"negative stage", func(r *Recorder) { r.SetTextureStageState(-1, gfx.StageColorOp, gfx.OpAdd) }},
		{"triangle list of four", func(r *Recorder) { r.DrawMesh(testMesh(gfx.TriangleList, 4)) }},
		{"odd line list", func(r *Recorder) { r.DrawMesh(testMesh(gfx.LineList, 3)) }},
		{"mesh without buffers", func(r *Recorder) { r.DrawMesh(gfx.Mesh{Primitive: gfx.TriangleList, VertexCount: 3}) }},
		{"range past end", func(r *Recorder) { r.DrawMeshRange(testMesh(gfx.TriangleList, 3), 3, 3) }},
		{"empty viewport", func(r *Recorder) { r.SetViewport(gfx.Viewport{}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(gfx.DefaultDeviceDefaults())
			tt.record(r)
			if !errors.Is(r.Err(), gfx.ErrContract) {
				t.Fatalf("Err() = %v, want ErrContract", r.Err())
			}
			if r.Len() != 0 {
				t.Errorf("rejected call appended %d commands", r.Len())
			}
			if list, err := r.Finish(); list != nil || !errors.Is(err, gfx.ErrContract) {
				t.Errorf("Finish() = %v, %v; want nil, ErrContract", list, err)
			}
		})
	}
}

func TestPositivePerspectiveAccepted(t *testing.T) {
	r := New(gfx.DefaultDeviceDefaults())
	r.SetTransform(gfx.TransformProjection, math.PerspectiveLH(1, 4.0/3.0, 0.1, 100))
	r.SetTransform(gfx.TransformProjection, math.OrthoLH(0, 640, 480, 0, -1, 1))

	if list := finish(t, r); list.Count(command.KindSetTransform) != 2 {
		t.Errorf("expected two projection loads:\n%s", list)
	}
}

func TestFirstErrorIsSticky(t *testing.T) {
	r := New(gfx.DefaultDeviceDefaults())
	r.SetTexture(5, gfx.TextureHandle{})
	first := r.Err()
	r.DrawMesh(testMesh(gfx.TriangleList, 4))
	r.SetRenderState(gfx.RenderLighting, 1)

	if r.Err() != first {
		t.Errorf("Err() changed from %v to %v", first, r.Err())
	}
	if r.Len() != 0 {
		t.Errorf("calls after an error appended %d commands", r.Len())
	}
}

func TestFinishResetsSession(t *testing.T) {
	r := New(gfx.DefaultDeviceDefaults())
	r.SetRenderState(gfx.RenderLighting, 1)
	first := finish(t, r)

	r.SetRenderState(gfx.RenderLighting, 1)
	second := finish(t, r)

	if first.Len() != 1 || second.Len() != 1 {
		t.Errorf("each list must be self-contained: first=%d second=%d commands", first.Len(), second.Len())
	}

	r.SetTexture(9, gfx.TextureHandle{})
	r.Finish()
	if r.Err() != nil {
		t.Errorf("Finish should clear the session error, got %v", r.Err())
	}
}

func TestLightsDedup(t *testing.T) {
	r := New(gfx.DefaultDeviceDefaults())
	l := gfx.DirectionalLight(math.Vec3{X: 1}, math.RGB(1, 0.5, 0))
	r.SetLights(l)
	r.SetLights(l)
	r.SetLights()

	list := finish(t, r)
	if list.Count(command.KindSetLights) != 2 {
		t.Errorf("expected set and clear of lights:\n%s", list)
	}
}

func TestTextureStageStates(t *testing.T) {
	d := gfx.DefaultDeviceDefaults()
	r := New(d)
	r.SetTextureStageState(0, gfx.StageColorOp, d.TextureStages[0][gfx.StageColorOp])
	r.SetTextureStageState(1, gfx.StageColorOp, gfx.OpModulate)
	r.SetTextureStageState(1, gfx.StageColorOp, gfx.OpModulate)

	list := finish(t, r)
	if list.Len() != 1 {
		t.Fatalf("expected one stage command:\n%s", list)
	}
	c := list.At(0).(command.SetTextureStageState)
	if c.Stage != 1 || c.State != gfx.StageColorOp || c.Value != gfx.OpModulate {
		t.Errorf("unexpected command %+v", c)
	}
}

func TestExtensionAlwaysAppends(t *testing.T) {
	r := New(gfx.DefaultDeviceDefaults())
	r.DrawExtension(7, [4]float32{1, 2})
	r.DrawExtension(7, [4]float32{1, 2})

	if list := finish(t, r); list.Count(command.KindExtension) != 2 {
		t.Errorf("extension draws must not be deduplicated:\n%s", list)
	}
}
