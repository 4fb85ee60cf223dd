package resource

import (
	"fmt"

	"github.com/Faultbox/midgard-gfx/internal/gfx"
)

// MeshSource is the CPU-side description a mesh is created from.
type MeshSource struct {
	Layout    gfx.VertexLayout
	Primitive gfx.PrimitiveType
	Data      []byte
	Indices   []uint16 // optional
}

// NewMeshSource encodes vertices in layout.
func NewMeshSource(layout gfx.VertexLayout, prim gfx.PrimitiveType, vertices []gfx.Vertex, indices []uint16) (MeshSource, error) {
	data, err := gfx.EncodeVertices(layout, vertices)
	if err != nil {
		return MeshSource{}, fmt.Errorf("encode mesh: %w", err)
	}
	return MeshSource{Layout: layout, Primitive: prim, Data: data, Indices: indices}, nil
}

