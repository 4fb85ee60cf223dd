// Package gfx holds the data model shared by the command pipeline: typed
// resource handles, primitive topologies, vertex layouts, fixed-function
// state kinds, lights, materials, resource descriptors and the errors every
// stage reports.
package gfx

import "github.com/Faultbox/midgard-gfx/internal/gfx/handle"

// Handle tags. Each resource kind gets its own tag so handles for different
// kinds cannot be mixed up.
type (
	MeshTag         struct{}
	TextureTag      struct{}
	PipelineTag     struct{}
	VertexBufferTag struct{}
	IndexBufferTag  struct{}
	SamplerTag      struct{}
	MaterialTag     struct{}
)

// Typed handles.
type (
	MeshHandle         = handle.Handle[MeshTag]
	TextureHandle      = handle.Handle[TextureTag]
	PipelineHandle     = handle.Handle[PipelineTag]
	VertexBufferHandle = handle.Handle[VertexBufferTag]
	IndexBufferHandle  = handle.Handle[IndexBufferTag]
	SamplerHandle      = handle.Handle[SamplerTag]
	MaterialHandle     = handle.Handle[MaterialTag]
)

// Size is a backbuffer or viewport extent in pixels.
type Size struct {
	Width, Height int
}

// Aspect returns width/height, or 1 for an empty size.
func (s Size) Aspect() float32 {
	if s.Height == 0 {
		return 1
	}
	return float32(s.Width) / float32(s.Height)
}

// Viewport is the screen rectangle and depth range draws map into.
type Viewport struct {
	X, Y          int
	Width, Height int
	MinZ, MaxZ    float32
}

// FullViewport covers s with the full depth range.
func FullViewport(s Size) Viewport {
	return Viewport{Width: s.Width, Height: s.Height, MinZ: 0, MaxZ: 1}
}

// Mesh describes a device mesh: the pipeline and streams a draw binds.
type Mesh struct {
	Pipeline     PipelineHandle
	VertexBuffer VertexBufferHandle
	IndexBuffer  IndexBufferHandle // invalid for non-indexed meshes
	Primitive    PrimitiveType
	VertexCount  int
	IndexCount   int
}

// Indexed reports whether the mesh draws through an index buffer.
func (m Mesh) Indexed() bool {
	return m.IndexBuffer.IsValid()
}
