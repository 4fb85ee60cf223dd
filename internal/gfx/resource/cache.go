// Package resource maps stable resource identities to device handles and
// guarantees that each identity is created on the device at most once.
package resource

import (
	"fmt"
	"image"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/gfx"
	"github.com/Faultbox/midgard-gfx/internal/gfx/device"
	"github.com/Faultbox/midgard-gfx/internal/gfx/handle"
	"github.com/Faultbox/midgard-gfx/internal/logger"
)

// Kind is the resource type an identity was registered as.
type Kind uint8

const (
	KindTexture Kind = iota + 1
	KindMesh
	KindMaterial
)

func (k Kind) String() string {
	switch k {
	case KindTexture:
		return "texture"
	case KindMesh:
		return "mesh"
	case KindMaterial:
		return "material"
	default:
		return "unknown"
	}
}

// State is the lifecycle state of an identity.
type State uint8

const (
	Unregistered State = iota
	Registered
	Loaded
)

func (s State) String() string {
	switch s {
	case Registered:
		return "registered"
	case Loaded:
		return "loaded"
	default:
		return "unregistered"
	}
}

type entry struct {
	kind  Kind
	state State

	image image.Image // memory textures
	mesh  MeshSource

	texture  gfx.TextureHandle
	meshH    gfx.MeshHandle
	material gfx.MaterialHandle
}

// Stats counts cache traffic.
type Stats struct {
	Hits   int // loads answered from the cache
	Loads  int // device creations
	Failed int // device creations that returned an error
}

// Cache owns the identity to handle mapping. The device owns the resources
// the handles reference.
//
// A Cache is used from the render goroutine only.
type Cache struct {
	dev       device.Device
	root      string
	log       *zap.Logger
	entries   map[ID]*entry
	materials *handle.Pool[gfx.MaterialTag, gfx.Material]
	watcher   *Watcher
	stats     Stats
}

// New creates a cache on dev. Path identities are resolved below root.
func New(dev device.Device, root string) *Cache {
	return &Cache{
		dev:       dev,
		root:      root,
		log:       logger.Named("resource"),
		entries:   make(map[ID]*entry),
		materials: handle.NewPool[gfx.MaterialTag, gfx.Material](),
	}
}

// Device returns the device the cache creates resources on.
func (c *Cache) Device() device.Device {
	return c.dev
}

// Stats returns the traffic counters.
func (c *Cache) Stats() Stats {
	return c.stats
}

// Len returns the number of registered identities.
func (c *Cache) Len() int {
	return len(c.entries)
}

// File returns the file a path identity resolves to. Relative keys are
// resolved below the asset root.
func (c *Cache) File(id ID) string {
	p := filepath.FromSlash(id.Key)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.root, p)
}

func (c *Cache) register(id ID, kind Kind) (*entry, bool, error) {
	if id.IsZero() {
		return nil, false, fmt.Errorf("%w: zero resource id", gfx.ErrContract)
	}
	if e, ok := c.entries[id]; ok {
		if e.kind != kind {
			return nil, false, fmt.Errorf("%w: %s is registered as a %s, not a %s", gfx.ErrContract, id, e.kind, kind)
		}
		return e, false, nil
	}
	e := &entry{kind: kind, state: Registered}
	c.entries[id] = e
	return e, true, nil
}

// RegisterTexture registers a texture file. Registering an identity again
// is a no-op.
func (c *Cache) RegisterTexture(id ID) error {
	if id.Scheme != SchemePath {
		return fmt.Errorf("%w: texture %s has no image; use RegisterTextureImage", gfx.ErrContract, id)
	}
	_, added, err := c.register(id, KindTexture)
	if err != nil {
		return err
	}
	if added && c.watcher != nil {
		if err := c.watcher.Add(c.File(id)); err != nil {
			c.log.Warn("cannot watch texture", zap.Stringer("id", id), zap.Error(err))
		}
	}
	return nil
}

// RegisterTextureImage registers an in-memory texture.
func (c *Cache) RegisterTextureImage(id ID, img image.Image) error {
	e, _, err := c.register(id, KindTexture)
	if err != nil {
		return err
	}
	if e.state == Registered {
		e.image = img
	}
	return nil
}

// RegisterMesh registers a mesh built from src on first load.
func (c *Cache) RegisterMesh(id ID, src MeshSource) error {
	e, _, err := c.register(id, KindMesh)
	if err != nil {
		return err
	}
	if e.state == Registered {
		e.mesh = src
	}
	return nil
}

// RegisterMaterial stores m. Materials live only in the cache, so they are
// loaded from registration on; registering an identity again replaces the
// value behind the same handle.
func (c *Cache) RegisterMaterial(id ID, m gfx.Material) (gfx.MaterialHandle, error) {
	e, added, err := c.register(id, KindMaterial)
	if err != nil {
		return gfx.MaterialHandle{}, err
	}
	if !added {
		p, err := c.materials.Get(e.material)
		if err != nil {
			return gfx.MaterialHandle{}, err
		}
		*p = m
		return e.material, nil
	}

	h, err := c.materials.Allocate()
	if err != nil {
		delete(c.entries, id)
		return gfx.MaterialHandle{}, fmt.Errorf("register material %s: %w", id, err)
	}
	p, err := c.materials.Get(h)
	if err != nil {
		return gfx.MaterialHandle{}, err
	}
	*p = m
	e.material = h
	e.state = Loaded
	return h, nil
}

func (c *Cache) lookup(id ID, kind Kind) (*entry, error) {
	e, ok := c.entries[id]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", kind, id, gfx.ErrUnregistered)
	}
	if e.kind != kind {
		return nil, fmt.Errorf("%w: %s is a %s, not a %s", gfx.ErrContract, id, e.kind, kind)
	}
	return e, nil
}

// LoadTexture returns the texture of id, creating it on the device the
// first time.
func (c *Cache) LoadTexture(id ID) (gfx.TextureHandle, error) {
	e, err := c.lookup(id, KindTexture)
	if err != nil {
		return gfx.TextureHandle{}, err
	}
	if e.state == Loaded {
		c.stats.Hits++
		return e.texture, nil
	}

	var h gfx.TextureHandle
	if e.image != nil {
		h, err = c.dev.AddTextureImage(e.image)
	} else {
		h, err = c.dev.AddTexture(c.File(id))
	}
	if err != nil {
		c.stats.Failed++
		return gfx.TextureHandle{}, fmt.Errorf("load texture %s: %w", id, err)
	}

	c.stats.Loads++
	e.texture = h
	e.state = Loaded
	c.log.Debug("texture loaded", zap.Stringer("id", id), zap.Stringer("handle", h))
	return h, nil
}

// LoadMesh returns the mesh of id, creating it on the device the first
// time.
func (c *Cache) LoadMesh(id ID) (gfx.MeshHandle, error) {
	e, err := c.lookup(id, KindMesh)
	if err != nil {
		return gfx.MeshHandle{}, err
	}
	if e.state == Loaded {
		c.stats.Hits++
		return e.meshH, nil
	}

	src := e.mesh
	var h gfx.MeshHandle
	if len(src.Indices) > 0 {
		h, err = c.dev.AddIndexedMesh(src.Data, src.Layout, src.Primitive, src.Indices)
	} else {
		h, err = c.dev.AddMesh(src.Data, src.Layout, src.Primitive)
	}
	if err != nil {
		c.stats.Failed++
		return gfx.MeshHandle{}, fmt.Errorf("load mesh %s: %w", id, err)
	}

	c.stats.Loads++
	e.meshH = h
	e.state = Loaded
	c.log.Debug("mesh loaded", zap.Stringer("id", id), zap.Stringer("handle", h))
	return h, nil
}

// Texture returns the texture of id, or the invalid handle if it is not
// loaded. It never loads.
func (c *Cache) Texture(id ID) gfx.TextureHandle {
	if e, ok := c.entries[id]; ok && e.kind == KindTexture && e.state == Loaded {
		return e.texture
	}
	return gfx.TextureHandle{}
}

// Mesh returns the mesh of id, or the invalid handle if it is not loaded.
func (c *Cache) Mesh(id ID) gfx.MeshHandle {
	if e, ok := c.entries[id]; ok && e.kind == KindMesh && e.state == Loaded {
		return e.meshH
	}
	return gfx.MeshHandle{}
}

// MeshInfo resolves a loaded mesh to its buffers and counts.
func (c *Cache) MeshInfo(h gfx.MeshHandle) (gfx.Mesh, error) {
	return c.dev.Mesh(h)
}

// Material returns the material of id. Materials exist from registration,
// so a missing one is an error rather than the invalid handle.
func (c *Cache) Material(id ID) (gfx.MaterialHandle, error) {
	e, err := c.lookup(id, KindMaterial)
	if err != nil {
		return gfx.MaterialHandle{}, fmt.Errorf("%w: %w", gfx.ErrNotLoaded, err)
	}
	return e.material, nil
}

// MaterialValue returns the material stored behind h.
func (c *Cache) MaterialValue(h gfx.MaterialHandle) (gfx.Material, error) {
	p, err := c.materials.Get(h)
	if err != nil {
		return gfx.Material{}, fmt.Errorf("material %s: %w", h, err)
	}
	return *p, nil
}

// State reports the lifecycle state of id.
func (c *Cache) State(id ID) State {
	if e, ok := c.entries[id]; ok {
		return e.state
	}
	return Unregistered
}

// Unload releases the device resource of id and returns the identity to
// the registered state. The next load creates it again.
func (c *Cache) Unload(id ID) error {
	e, ok := c.entries[id]
	if !ok {
		return fmt.Errorf("unload %s: %w", id, gfx.ErrUnregistered)
	}
	if e.kind == KindMaterial {
		return fmt.Errorf("%w: material %s cannot be unloaded", gfx.ErrContract, id)
	}
	if e.state != Loaded {
		return nil
	}
	if err := c.release(e); err != nil {
		return fmt.Errorf("unload %s: %w", id, err)
	}
	c.log.Debug("resource unloaded", zap.Stringer("id", id))
	return nil
}

func (c *Cache) release(e *entry) error {
	var err error
	switch e.kind {
	case KindTexture:
		err = c.dev.RemoveTexture(e.texture)
		e.texture = gfx.TextureHandle{}
	case KindMesh:
		err = c.dev.RemoveMesh(e.meshH)
		e.meshH = gfx.MeshHandle{}
	case KindMaterial:
		err = c.materials.Deallocate(e.material)
		e.material = gfx.MaterialHandle{}
	}
	e.state = Registered
	return err
}

// Close releases every loaded resource and forgets all identities.
func (c *Cache) Close() error {
	var firstErr error
	released := 0
	for id, e := range c.entries {
		if e.state != Loaded {
			continue
		}
		if err := c.release(e); err != nil {
			c.log.Warn("release failed", zap.Stringer("id", id), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		released++
	}
	c.entries = make(map[ID]*entry)
	c.log.Info("resource cache closed", zap.Int("released", released))
	return firstErr
}

// Watch registers every path texture with w and keeps registering new ones.
func (c *Cache) Watch(w *Watcher) error {
	c.watcher = w
	for id, e := range c.entries {
		if e.kind != KindTexture || id.Scheme != SchemePath {
			continue
		}
		if err := w.Add(c.File(id)); err != nil {
			return fmt.Errorf("watch %s: %w", id, err)
		}
	}
	return nil
}

// ApplyChanges unloads every loaded texture whose file changed since the
// last call, so the next load reads it again. It returns the number of
// textures unloaded.
func (c *Cache) ApplyChanges(w *Watcher) int {
	changed := w.Drain()
	if len(changed) == 0 {
		return 0
	}
	files := make(map[string]struct{}, len(changed))
	for _, f := range changed {
		files[f] = struct{}{}
	}

	n := 0
	for id, e := range c.entries {
		if e.kind != KindTexture || id.Scheme != SchemePath || e.state != Loaded {
			continue
		}
		if _, ok := files[cleanPath(c.File(id))]; !ok {
			continue
		}
		if err := c.Unload(id); err != nil {
			c.log.Warn("reload failed", zap.Stringer("id", id), zap.Error(err))
			continue
		}
		c.log.Info("texture changed, reloading", zap.Stringer("id", id))
		n++
	}
	return n
}
