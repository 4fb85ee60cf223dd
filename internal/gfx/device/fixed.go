package device

import (
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/engine/texture"
	"github.com/Faultbox/midgard-gfx/internal/gfx"
	"github.com/Faultbox/midgard-gfx/internal/gfx/command"
	"github.com/Faultbox/midgard-gfx/internal/gfx/handle"
)

type textureEntry struct {
	id            uint32
	width, height int
	source        string
}

type vertexBufferEntry struct {
	id     uint32
	layout gfx.VertexLayout
	count  int
}

type indexBufferEntry struct {
	id    uint32
	count int
}

type meshEntry struct {
	mesh gfx.Mesh
}

// FixedFunction implements Device over a Native backend.
type FixedFunction struct {
	native Native
	opts   Options
	log    *zap.Logger

	meshes        *handle.Pool[gfx.MeshTag, meshEntry]
	textures      *handle.Pool[gfx.TextureTag, textureEntry]
	pipelines     *handle.Pool[gfx.PipelineTag, gfx.PipelineDesc]
	vertexBuffers *handle.Pool[gfx.VertexBufferTag, vertexBufferEntry]
	indexBuffers  *handle.Pool[gfx.IndexBufferTag, indexBufferEntry]
	samplers      *handle.Pool[gfx.SamplerTag, gfx.SamplerDesc]

	// pipelineIndex interns pipelines; meshes share them.
	pipelineIndex map[gfx.PipelineDesc]gfx.PipelineHandle

	extensions []Extension
	listeners  []ResetListener

	lost       bool
	lostLogged bool
	frame      Stats
	last       Stats
}

var _ Device = (*FixedFunction)(nil)

// NewFixedFunction creates a device executing on n.
func NewFixedFunction(n Native, opts Options) *FixedFunction {
	opts.fill()
	limit := opts.PoolLimit
	return &FixedFunction{
		native:        n,
		opts:          opts,
		log:           opts.Logger,
		meshes:        handle.NewPoolWithLimit[gfx.MeshTag, meshEntry](limit),
		textures:      handle.NewPoolWithLimit[gfx.TextureTag, textureEntry](limit),
		pipelines:     handle.NewPoolWithLimit[gfx.PipelineTag, gfx.PipelineDesc](limit),
		vertexBuffers: handle.NewPoolWithLimit[gfx.VertexBufferTag, vertexBufferEntry](limit),
		indexBuffers:  handle.NewPoolWithLimit[gfx.IndexBufferTag, indexBufferEntry](limit),
		samplers:      handle.NewPoolWithLimit[gfx.SamplerTag, gfx.SamplerDesc](limit),
		pipelineIndex: make(map[gfx.PipelineDesc]gfx.PipelineHandle),
		frame:         Stats{Frame: 1},
	}
}

// Native returns the backend the device executes on.
func (d *FixedFunction) Native() Native {
	return d.native
}

// Defaults implements Device.
func (d *FixedFunction) Defaults() gfx.DeviceDefaults {
	return d.opts.Defaults
}

// Stats implements Device.
func (d *FixedFunction) Stats() Stats {
	return d.last
}

// Lost reports whether the device is waiting for a reset.
func (d *FixedFunction) Lost() bool {
	return d.lost
}

// AddMesh implements Device.
func (d *FixedFunction) AddMesh(data []byte, layout gfx.VertexLayout, prim gfx.PrimitiveType) (gfx.MeshHandle, error) {
	return d.addMesh(data, layout, prim, nil)
}

// AddIndexedMesh implements Device.
func (d *FixedFunction) AddIndexedMesh(data []byte, layout gfx.VertexLayout, prim gfx.PrimitiveType, indices []uint16) (gfx.MeshHandle, error) {
	if len(indices) == 0 {
		return gfx.MeshHandle{}, fmt.Errorf("%w: indexed mesh without indices", gfx.ErrContract)
	}
	return d.addMesh(data, layout, prim, indices)
}

func (d *FixedFunction) addMesh(data []byte, layout gfx.VertexLayout, prim gfx.PrimitiveType, indices []uint16) (gfx.MeshHandle, error) {
	pipeline, err := d.CreatePipeline(gfx.PipelineDesc{Layout: layout, Primitive: prim})
	if err != nil {
		return gfx.MeshHandle{}, err
	}
	n, err := gfx.VertexCount(layout, data)
	if err != nil {
		return gfx.MeshHandle{}, err
	}

	drawCount := n
	if indices != nil {
		drawCount = len(indices)
		for i, idx := range indices {
			if int(idx) >= n {
				return gfx.MeshHandle{}, fmt.Errorf("%w: index %d at %d out of range for %d vertices", gfx.ErrContract, idx, i, n)
			}
		}
	}
	if err := gfx.ValidateVertexCount(prim, drawCount); err != nil {
		return gfx.MeshHandle{}, err
	}

	vb, err := d.CreateVertexBuffer(gfx.VertexBufferDesc{Layout: layout, Data: data})
	if err != nil {
		return gfx.MeshHandle{}, err
	}
	mesh := gfx.Mesh{Pipeline: pipeline, VertexBuffer: vb, Primitive: prim, VertexCount: n}

	if indices != nil {
		ib, err := d.CreateIndexBuffer(gfx.IndexBufferDesc{Indices: indices})
		if err != nil {
			d.destroyVertexBuffer(vb)
			return gfx.MeshHandle{}, err
		}
		mesh.IndexBuffer = ib
		mesh.IndexCount = len(indices)
	}

	h, err := d.meshes.Allocate()
	if err != nil {
		d.destroyVertexBuffer(vb)
		d.destroyIndexBuffer(mesh.IndexBuffer)
		return gfx.MeshHandle{}, err
	}
	entry, _ := d.meshes.Get(h)
	entry.mesh = mesh

	d.log.Debug("mesh added",
		zap.Stringer("handle", h),
		zap.Stringer("primitive", prim),
		zap.Int("vertices", n),
		zap.Int("indices", len(indices)))
	return h, nil
}

// Mesh implements Device.
func (d *FixedFunction) Mesh(h gfx.MeshHandle) (gfx.Mesh, error) {
	entry, err := d.meshes.Get(h)
	if err != nil {
		return gfx.Mesh{}, fmt.Errorf("mesh: %w", err)
	}
	return entry.mesh, nil
}

// RemoveMesh implements Device. The shared pipeline stays.
func (d *FixedFunction) RemoveMesh(h gfx.MeshHandle) error {
	entry, err := d.meshes.Get(h)
	if err != nil {
		return fmt.Errorf("remove mesh: %w", err)
	}
	mesh := entry.mesh
	if err := d.meshes.Deallocate(h); err != nil {
		return err
	}
	d.destroyVertexBuffer(mesh.VertexBuffer)
	d.destroyIndexBuffer(mesh.IndexBuffer)
	return nil
}

// AddTexture implements Device.
func (d *FixedFunction) AddTexture(path string) (gfx.TextureHandle, error) {
	img, err := d.opts.LoadImage(path)
	if err != nil {
		return gfx.TextureHandle{}, fmt.Errorf("add texture: %w", err)
	}
	return d.addTexture(img, path)
}

// AddTextureImage implements Device.
func (d *FixedFunction) AddTextureImage(img image.Image) (gfx.TextureHandle, error) {
	return d.addTexture(texture.ToRGBA(img, false), "")
}

func (d *FixedFunction) addTexture(img *image.RGBA, source string) (gfx.TextureHandle, error) {
	b := img.Bounds()
	if b.Empty() {
		return gfx.TextureHandle{}, fmt.Errorf("%w: empty texture %q", gfx.ErrContract, source)
	}
	h, err := d.textures.Allocate()
	if err != nil {
		return gfx.TextureHandle{}, err
	}
	id, err := d.native.CreateTexture(img)
	if err != nil {
		d.textures.Deallocate(h)
		return gfx.TextureHandle{}, fmt.Errorf("create texture %q: %w", source, err)
	}
	entry, _ := d.textures.Get(h)
	*entry = textureEntry{id: id, width: b.Dx(), height: b.Dy(), source: source}

	d.log.Debug("texture added",
		zap.Stringer("handle", h),
		zap.String("source", source),
		zap.Int("width", b.Dx()),
		zap.Int("height", b.Dy()))
	return h, nil
}

// TextureSize returns the pixel size of a texture.
func (d *FixedFunction) TextureSize(h gfx.TextureHandle) (gfx.Size, error) {
	entry, err := d.textures.Get(h)
	if err != nil {
		return gfx.Size{}, fmt.Errorf("texture: %w", err)
	}
	return gfx.Size{Width: entry.width, Height: entry.height}, nil
}

// RemoveTexture implements Device.
func (d *FixedFunction) RemoveTexture(h gfx.TextureHandle) error {
	entry, err := d.textures.Get(h)
	if err != nil {
		return fmt.Errorf("remove texture: %w", err)
	}
	id := entry.id
	if err := d.textures.Deallocate(h); err != nil {
		return err
	}
	d.native.DeleteTexture(id)
	return nil
}

// CreatePipeline implements Device. Equal descriptors share one handle.
func (d *FixedFunction) CreatePipeline(desc gfx.PipelineDesc) (gfx.PipelineHandle, error) {
	if err := desc.Validate(); err != nil {
		return gfx.PipelineHandle{}, err
	}
	if h, ok := d.pipelineIndex[desc]; ok {
		return h, nil
	}
	h, err := d.pipelines.Allocate()
	if err != nil {
		return gfx.PipelineHandle{}, err
	}
	p, _ := d.pipelines.Get(h)
	*p = desc
	d.pipelineIndex[desc] = h
	return h, nil
}

// CreateSampler implements Device.
func (d *FixedFunction) CreateSampler(desc gfx.SamplerDesc) (gfx.SamplerHandle, error) {
	h, err := d.samplers.Allocate()
	if err != nil {
		return gfx.SamplerHandle{}, err
	}
	s, _ := d.samplers.Get(h)
	*s = desc
	return h, nil
}

// CreateVertexBuffer implements Device.
func (d *FixedFunction) CreateVertexBuffer(desc gfx.VertexBufferDesc) (gfx.VertexBufferHandle, error) {
	if err := desc.Layout.Validate(); err != nil {
		return gfx.VertexBufferHandle{}, err
	}
	n, err := gfx.VertexCount(desc.Layout, desc.Data)
	if err != nil {
		return gfx.VertexBufferHandle{}, err
	}
	h, err := d.vertexBuffers.Allocate()
	if err != nil {
		return gfx.VertexBufferHandle{}, err
	}
	id, err := d.native.CreateVertexBuffer(desc.Data)
	if err != nil {
		d.vertexBuffers.Deallocate(h)
		return gfx.VertexBufferHandle{}, fmt.Errorf("create vertex buffer: %w", err)
	}
	vb, _ := d.vertexBuffers.Get(h)
	*vb = vertexBufferEntry{id: id, layout: desc.Layout, count: n}
	return h, nil
}

// CreateIndexBuffer implements Device.
func (d *FixedFunction) CreateIndexBuffer(desc gfx.IndexBufferDesc) (gfx.IndexBufferHandle, error) {
	h, err := d.indexBuffers.Allocate()
	if err != nil {
		return gfx.IndexBufferHandle{}, err
	}
	id, err := d.native.CreateIndexBuffer(desc.Indices)
	if err != nil {
		d.indexBuffers.Deallocate(h)
		return gfx.IndexBufferHandle{}, fmt.Errorf("create index buffer: %w", err)
	}
	ib, _ := d.indexBuffers.Get(h)
	*ib = indexBufferEntry{id: id, count: len(desc.Indices)}
	return h, nil
}

func (d *FixedFunction) destroyVertexBuffer(h gfx.VertexBufferHandle) {
	vb, err := d.vertexBuffers.Get(h)
	if err != nil {
		return
	}
	id := vb.id
	d.vertexBuffers.Deallocate(h)
	d.native.DeleteVertexBuffer(id)
}

func (d *FixedFunction) destroyIndexBuffer(h gfx.IndexBufferHandle) {
	ib, err := d.indexBuffers.Get(h)
	if err != nil {
		return
	}
	id := ib.id
	d.indexBuffers.Deallocate(h)
	d.native.DeleteIndexBuffer(id)
}

// RegisterExtension implements Device.
func (d *FixedFunction) RegisterExtension(ext Extension) command.ExtensionID {
	d.extensions = append(d.extensions, ext)
	return command.ExtensionID(len(d.extensions))
}

// OnReset implements Device.
func (d *FixedFunction) OnReset(l ResetListener) {
	d.listeners = append(d.listeners, l)
}

// Close implements Device.
func (d *FixedFunction) Close() error {
	var meshes []gfx.MeshHandle
	d.meshes.ForEach(func(h gfx.MeshHandle, _ *meshEntry) bool {
		meshes = append(meshes, h)
		return true
	})
	for _, h := range meshes {
		d.RemoveMesh(h)
	}

	var textures []gfx.TextureHandle
	d.textures.ForEach(func(h gfx.TextureHandle, _ *textureEntry) bool {
		textures = append(textures, h)
		return true
	})
	for _, h := range textures {
		d.RemoveTexture(h)
	}

	d.vertexBuffers.ForEach(func(_ gfx.VertexBufferHandle, vb *vertexBufferEntry) bool {
		d.native.DeleteVertexBuffer(vb.id)
		return true
	})
	d.indexBuffers.ForEach(func(_ gfx.IndexBufferHandle, ib *indexBufferEntry) bool {
		d.native.DeleteIndexBuffer(ib.id)
		return true
	})
	d.vertexBuffers = handle.NewPoolWithLimit[gfx.VertexBufferTag, vertexBufferEntry](d.opts.PoolLimit)
	d.indexBuffers = handle.NewPoolWithLimit[gfx.IndexBufferTag, indexBufferEntry](d.opts.PoolLimit)

	d.log.Info("device closed",
		zap.Uint64("frames", d.frame.Frame-1),
		zap.Int("pipelines", d.pipelines.Len()),
		zap.Int("samplers", d.samplers.Len()))
	return nil
}
