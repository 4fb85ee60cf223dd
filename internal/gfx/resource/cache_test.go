package resource

import (
	"errors"
	"fmt"
	"image"
	"testing"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/gfx"
	"github.com/Faultbox/midgard-gfx/internal/gfx/device"
	"github.com/Faultbox/midgard-gfx/internal/gfx/device/trace"
	"github.com/Faultbox/midgard-gfx/pkg/math"
)

type fixture struct {
	cache  *Cache
	dev    *device.FixedFunction
	native *trace.Native
	decode map[string]int // LoadImage calls per file
	fail   map[string]error
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		native: trace.New(gfx.Size{Width: 320, Height: 240}),
		decode: make(map[string]int),
		fail:   make(map[string]error),
	}
	opts := device.DefaultOptions()
	opts.Logger = zap.NewNop()
	opts.LoadImage = func(path string) (*image.RGBA, error) {
		f.decode[path]++
		if err := f.fail[path]; err != nil {
			return nil, err
		}
		return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
	}
	f.dev = device.NewFixedFunction(f.native, opts)
	f.cache = New(f.dev, "assets")
	return f
}

func triangleSource(t *testing.T) MeshSource {
	t.Helper()
	src, err := NewMeshSource(gfx.LayoutPositionColor, gfx.TriangleList, []gfx.Vertex{
		{Position: math.Vec3{X: -1}, Color: math.White},
		{Position: math.Vec3{X: 1}, Color: math.White},
		{Position: math.Vec3{Y: 1}, Color: math.White},
	}, nil)
	if err != nil {
		t.Fatalf("NewMeshSource: %v", err)
	}
	return src
}

func TestPathNormalization(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"textures/grass.png", "textures/grass.png"},
		{"textures\\grass.png", "textures/grass.png"},
		{"./textures//a/../grass.png", "textures/grass.png"},
		{"cafe\u0301.png", "caf\u00e9.png"},
	}
	for _, tt := range tests {
		if got := Path(tt.in); got.Key != tt.want || got.Scheme != SchemePath {
			t.Errorf("Path(%q) = %+v, want key %q", tt.in, got, tt.want)
		}
	}
	if Path("a/b.png") != Path("a\\b.png") {
		t.Error("equivalent paths produced different identities")
	}
}

func TestMemoryIDs(t *testing.T) {
	a, b := NewMemoryID(), NewMemoryID()
	if a == b {
		t.Error("NewMemoryID returned the same identity twice")
	}
	if a.Scheme != SchemeMemory || a.IsZero() {
		t.Errorf("NewMemoryID = %+v", a)
	}
	if Memory("x") == Path("x") {
		t.Error("memory and path identities with the same key compare equal")
	}
	if got := Memory("overlay").String(); got != "mem:overlay" {
		t.Errorf("String() = %q", got)
	}
}

func TestLoadTextureAtMostOnce(t *testing.T) {
	f := newFixture(t)
	id := Path("textures/grass.png")
	if err := f.cache.RegisterTexture(id); err != nil {
		t.Fatalf("RegisterTexture: %v", err)
	}
	if s := f.cache.State(id); s != Registered {
		t.Errorf("state after register = %s", s)
	}
	if h := f.cache.Texture(id); h.IsValid() {
		t.Error("Texture returned a valid handle before load")
	}

	h1, err := f.cache.LoadTexture(id)
	if err != nil {
		t.Fatalf("LoadTexture: %v", err)
	}
	h2, err := f.cache.LoadTexture(id)
	if err != nil {
		t.Fatalf("second LoadTexture: %v", err)
	}

	if h1 != h2 {
		t.Errorf("handles differ: %s vs %s", h1, h2)
	}
	if n := f.native.Count("CreateTexture"); n != 1 {
		t.Errorf("CreateTexture called %d times, want 1", n)
	}
	if n := f.decode[f.cache.File(id)]; n != 1 {
		t.Errorf("file decoded %d times, want 1", n)
	}
	if got := f.cache.Texture(id); got != h1 {
		t.Errorf("Texture = %s, want %s", got, h1)
	}
	if s := f.cache.Stats(); s.Loads != 1 || s.Hits != 1 {
		t.Errorf("stats = %+v", s)
	}
}

func TestLoadMeshAtMostOnce(t *testing.T) {
	f := newFixture(t)
	id := Memory("triangle")
	if err := f.cache.RegisterMesh(id, triangleSource(t)); err != nil {
		t.Fatalf("RegisterMesh: %v", err)
	}

	h1, err := f.cache.LoadMesh(id)
	if err != nil {
		t.Fatalf("LoadMesh: %v", err)
	}
	h2, _ := f.cache.LoadMesh(id)
	if h1 != h2 {
		t.Errorf("handles differ: %s vs %s", h1, h2)
	}
	if n := f.native.Count("CreateVertexBuffer"); n != 1 {
		t.Errorf("CreateVertexBuffer called %d times, want 1", n)
	}

	m, err := f.cache.MeshInfo(h1)
	if err != nil {
		t.Fatalf("MeshInfo: %v", err)
	}
	if m.VertexCount != 3 || m.Primitive != gfx.TriangleList {
		t.Errorf("mesh = %+v", m)
	}
}

func TestLoadIndexedMesh(t *testing.T) {
	f := newFixture(t)
	src := triangleSource(t)
	src.Indices = []uint16{0, 1, 2}
	id := Memory("indexed")
	f.cache.RegisterMesh(id, src)

	h, err := f.cache.LoadMesh(id)
	if err != nil {
		t.Fatalf("LoadMesh: %v", err)
	}
	m, _ := f.cache.MeshInfo(h)
	if !m.Indexed() || m.IndexCount != 3 {
		t.Errorf("mesh = %+v, want 3 indices", m)
	}
}

func TestLoadUnregistered(t *testing.T) {
	f := newFixture(t)

	if _, err := f.cache.LoadTexture(Path("missing.png")); !errors.Is(err, gfx.ErrUnregistered) {
		t.Errorf("LoadTexture err = %v, want ErrUnregistered", err)
	}
	if _, err := f.cache.LoadMesh(Memory("missing")); !errors.Is(err, gfx.ErrUnregistered) {
		t.Errorf("LoadMesh err = %v, want ErrUnregistered", err)
	}
	if n := f.native.Count("CreateTexture"); n != 0 {
		t.Errorf("CreateTexture called %d times", n)
	}
}

func TestLoadFailureKeepsRegistration(t *testing.T) {
	f := newFixture(t)
	id := Path("broken.tga")
	f.cache.RegisterTexture(id)
	f.fail[f.cache.File(id)] = fmt.Errorf("truncated file")

	if _, err := f.cache.LoadTexture(id); err == nil {
		t.Fatal("LoadTexture succeeded on a broken file")
	}
	if s := f.cache.State(id); s != Registered {
		t.Errorf("state after failure = %s, want registered", s)
	}

	delete(f.fail, f.cache.File(id))
	if _, err := f.cache.LoadTexture(id); err != nil {
		t.Fatalf("LoadTexture after fix: %v", err)
	}
	if s := f.cache.Stats(); s.Failed != 1 || s.Loads != 1 {
		t.Errorf("stats = %+v", s)
	}
}

func TestRegisterKindConflict(t *testing.T) {
	f := newFixture(t)
	id := Memory("thing")
	if err := f.cache.RegisterMesh(id, triangleSource(t)); err != nil {
		t.Fatalf("RegisterMesh: %v", err)
	}

	if err := f.cache.RegisterTextureImage(id, image.NewRGBA(image.Rect(0, 0, 1, 1))); !errors.Is(err, gfx.ErrContract) {
		t.Errorf("RegisterTextureImage err = %v, want ErrContract", err)
	}
	if _, err := f.cache.LoadTexture(id); !errors.Is(err, gfx.ErrContract) {
		t.Errorf("LoadTexture err = %v, want ErrContract", err)
	}
	if err := f.cache.RegisterTexture(Memory("no-image")); !errors.Is(err, gfx.ErrContract) {
		t.Errorf("RegisterTexture(memory) err = %v, want ErrContract", err)
	}
	if err := f.cache.RegisterTexture(ID{}); !errors.Is(err, gfx.ErrContract) {
		t.Errorf("RegisterTexture(zero) err = %v, want ErrContract", err)
	}
}

func TestMemoryTexture(t *testing.T) {
	f := newFixture(t)
	id := NewMemoryID()
	img := image.NewRGBA(image.Rect(0, 0, 8, 2))
	if err := f.cache.RegisterTextureImage(id, img); err != nil {
		t.Fatalf("RegisterTextureImage: %v", err)
	}

	h, err := f.cache.LoadTexture(id)
	if err != nil {
		t.Fatalf("LoadTexture: %v", err)
	}
	size, err := f.dev.TextureSize(h)
	if err != nil {
		t.Fatalf("TextureSize: %v", err)
	}
	if size != (gfx.Size{Width: 8, Height: 2}) {
		t.Errorf("size = %+v", size)
	}
	if len(f.decode) != 0 {
		t.Errorf("memory texture went through file decoding: %v", f.decode)
	}
}

func TestMaterials(t *testing.T) {
	f := newFixture(t)
	id := Memory("red")
	red := gfx.DefaultMaterial()
	red.Diffuse = math.RGB(1, 0, 0)

	h, err := f.cache.RegisterMaterial(id, red)
	if err != nil {
		t.Fatalf("RegisterMaterial: %v", err)
	}
	if s := f.cache.State(id); s != Loaded {
		t.Errorf("material state = %s, want loaded", s)
	}

	got, err := f.cache.Material(id)
	if err != nil || got != h {
		t.Fatalf("Material = %s, %v; want %s", got, err, h)
	}
	m, err := f.cache.MaterialValue(h)
	if err != nil || m.Diffuse != red.Diffuse {
		t.Errorf("MaterialValue = %+v, %v", m, err)
	}

	// Re-registration updates in place.
	blue := red
	blue.Diffuse = math.RGB(0, 0, 1)
	h2, err := f.cache.RegisterMaterial(id, blue)
	if err != nil || h2 != h {
		t.Fatalf("re-register = %s, %v; want %s", h2, err, h)
	}
	m, _ = f.cache.MaterialValue(h)
	if m.Diffuse != blue.Diffuse {
		t.Errorf("material not updated: %+v", m.Diffuse)
	}

	if _, err := f.cache.Material(Memory("missing")); !errors.Is(err, gfx.ErrNotLoaded) {
		t.Errorf("missing material err = %v, want ErrNotLoaded", err)
	}
	if err := f.cache.Unload(id); !errors.Is(err, gfx.ErrContract) {
		t.Errorf("Unload(material) err = %v, want ErrContract", err)
	}
}

func TestUnloadRecreates(t *testing.T) {
	f := newFixture(t)
	id := Path("a.png")
	f.cache.RegisterTexture(id)
	h1, _ := f.cache.LoadTexture(id)

	if err := f.cache.Unload(id); err != nil {
		t.Fatalf("Unload: %v", err)
	}
	if s := f.cache.State(id); s != Registered {
		t.Errorf("state after unload = %s", s)
	}
	if textures, _, _ := f.native.Live(); textures != 0 {
		t.Errorf("%d live textures after unload", textures)
	}
	if err := f.cache.Unload(id); err != nil {
		t.Errorf("second Unload: %v", err)
	}

	h2, err := f.cache.LoadTexture(id)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if h2 == h1 {
		t.Error("reload returned the stale handle")
	}
	if n := f.native.Count("CreateTexture"); n != 2 {
		t.Errorf("CreateTexture called %d times, want 2", n)
	}
}

func TestClose(t *testing.T) {
	f := newFixture(t)
	f.cache.RegisterTexture(Path("a.png"))
	f.cache.RegisterTexture(Path("b.png"))
	f.cache.RegisterMesh(Memory("tri"), triangleSource(t))
	f.cache.RegisterMaterial(Memory("m"), gfx.DefaultMaterial())
	f.cache.LoadTexture(Path("a.png"))
	f.cache.LoadMesh(Memory("tri"))

	if err := f.cache.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	textures, vbs, ibs := f.native.Live()
	if textures+vbs+ibs != 0 {
		t.Errorf("live after close: %d textures, %d vbs, %d ibs", textures, vbs, ibs)
	}
	if f.cache.Len() != 0 {
		t.Errorf("Len after close = %d", f.cache.Len())
	}
}
