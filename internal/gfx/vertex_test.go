package gfx

import (
	"encoding/binary"
	"errors"
	stdmath "math"
	"testing"

	"github.com/Faultbox/midgard-gfx/pkg/math"
)

func TestLayoutStrideAndOffsets(t *testing.T) {
	tests := []struct {
		name   string
		layout VertexLayout
		stride int
		offset map[VertexLayout]int
	}{
		{"position", LayoutPosition, 12, map[VertexLayout]int{LayoutPosition: 0, LayoutColor: -1}},
		{"position color", LayoutPositionColor, 16, map[VertexLayout]int{LayoutColor: 12}},
		{"position normal tex", LayoutPositionNormalTex, 32, map[VertexLayout]int{LayoutNormal: 12, LayoutTexCoord: 24}},
		{"all", LayoutPositionNormalColorTx, 36, map[VertexLayout]int{LayoutColor: 24, LayoutTexCoord: 28}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.layout.Stride(); got != tt.stride {
				t.Errorf("Stride() = %d, want %d", got, tt.stride)
			}
			for attr, want := range tt.offset {
				if got := tt.layout.Offset(attr); got != want {
					t.Errorf("Offset(%s) = %d, want %d", attr, got, want)
				}
			}
		})
	}
}

func TestLayoutValidate(t *testing.T) {
	if err := LayoutPositionColor.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := LayoutColor.Validate(); !errors.Is(err, ErrContract) {
		t.Errorf("layout without position: expected ErrContract, got %v", err)
	}
	if err := VertexLayout(0x80 | LayoutPosition).Validate(); !errors.Is(err, ErrContract) {
		t.Errorf("unknown bits: expected ErrContract, got %v", err)
	}
}

func TestEncodeVertices(t *testing.T) {
	verts := []Vertex{
		{Position: math.Vec3{X: 1, Y: 2, Z: 3}, Color: math.Color{R: 1, A: 1}, TexCoord: [2]float32{0.5, 1}},
		{Position: math.Vec3{X: -1}, Color: math.White},
	}

	data, err := EncodeVertices(LayoutPositionColorTex, verts)
	if err != nil {
		t.Fatalf("EncodeVertices: %v", err)
	}
	if len(data) != 2*24 {
		t.Fatalf("expected 48 bytes, got %d", len(data))
	}

	f := func(off int) float32 {
		return stdmath.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
	}
	if f(0) != 1 || f(4) != 2 || f(8) != 3 {
		t.Errorf("position = (%v, %v, %v), want (1, 2, 3)", f(0), f(4), f(8))
	}
	if data[12] != 255 || data[13] != 0 || data[15] != 255 {
		t.Errorf("color bytes = %v, want red opaque", data[12:16])
	}
	if f(16) != 0.5 || f(20) != 1 {
		t.Errorf("texcoord = (%v, %v), want (0.5, 1)", f(16), f(20))
	}
	if f(24) != -1 {
		t.Errorf("second vertex x = %v, want -1", f(24))
	}

	n, err := VertexCount(LayoutPositionColorTex, data)
	if err != nil || n != 2 {
		t.Errorf("VertexCount = %d, %v; want 2, nil", n, err)
	}
	if _, err := VertexCount(LayoutPositionColorTex, data[:30]); !errors.Is(err, ErrContract) {
		t.Errorf("partial vertex: expected ErrContract, got %v", err)
	}
}

func TestNewLights(t *testing.T) {
	l := DirectionalLight(math.Vec3{Y: -1}, math.White)

	lights, err := NewLights(l, l)
	if err != nil {
		t.Fatalf("NewLights: %v", err)
	}
	if lights.Count != 2 || len(lights.Slice()) != 2 {
		t.Errorf("expected 2 lights, got %d", lights.Count)
	}

	if _, err := NewLights(l, l, l, l, l); !errors.Is(err, ErrContract) {
		t.Errorf("five lights: expected ErrContract, got %v", err)
	}
}

func TestDefaultDeviceDefaults(t *testing.T) {
	d := DefaultDeviceDefaults()

	if d.RenderStates[RenderLighting] != 0 {
		t.Error("lighting should default to off")
	}
	if d.RenderStates[RenderCullMode] != CullNone {
		t.Error("culling should default to none")
	}
	if d.RenderStates[RenderAmbient] != 0 {
		t.Error("ambient should default to cleared")
	}
	for k, m := range d.Transforms {
		if !m.IsIdentity() {
			t.Errorf("transform %s should default to identity", TransformKind(k))
		}
	}
	if d.TextureStages[1][StageColorOp] != OpDisable {
		t.Error("stage 1 should default to disabled")
	}
}
