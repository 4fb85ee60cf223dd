package gfx

import (
	"encoding/binary"
	"fmt"
	stdmath "math"
	"strings"

	"github.com/Faultbox/midgard-gfx/pkg/math"
)

// VertexLayout is the set of attributes a vertex carries. Attributes are
// always stored in declaration order: position, normal, color, texcoord.
type VertexLayout uint8

const (
	LayoutPosition VertexLayout = 1 << iota // 3 x float32
	LayoutNormal                            // 3 x float32
	LayoutColor                             // 4 x uint8, RGBA
	LayoutTexCoord                          // 2 x float32
)

// Common layouts.
const (
	LayoutPositionColor         = LayoutPosition | LayoutColor
	LayoutPositionNormal        = LayoutPosition | LayoutNormal
	LayoutPositionNormalTex     = LayoutPosition | LayoutNormal | LayoutTexCoord
	LayoutPositionColorTex      = LayoutPosition | LayoutColor | LayoutTexCoord
	LayoutPositionNormalColorTx = LayoutPosition | LayoutNormal | LayoutColor | LayoutTexCoord
)

var attributeOrder = [...]VertexLayout{LayoutPosition, LayoutNormal, LayoutColor, LayoutTexCoord}

// AttributeSize returns the byte size of a single attribute.
func AttributeSize(a VertexLayout) int {
	switch a {
	case LayoutPosition, LayoutNormal:
		return 12
	case LayoutColor:
		return 4
	case LayoutTexCoord:
		return 8
	}
	return 0
}

// Has reports whether l contains attribute a.
func (l VertexLayout) Has(a VertexLayout) bool {
	return l&a != 0
}

// Stride returns the byte size of one vertex.
func (l VertexLayout) Stride() int {
	n := 0
	for _, a := range attributeOrder {
		if l.Has(a) {
			n += AttributeSize(a)
		}
	}
	return n
}

// Offset returns the byte offset of attribute a, or -1 if l lacks it.
func (l VertexLayout) Offset(a VertexLayout) int {
	if !l.Has(a) {
		return -1
	}
	n := 0
	for _, b := range attributeOrder {
		if b == a {
			return n
		}
		if l.Has(b) {
			n += AttributeSize(b)
		}
	}
	return -1
}

// Validate rejects layouts without a position or with unknown bits.
func (l VertexLayout) Validate() error {
	if !l.Has(LayoutPosition) {
		return fmt.Errorf("%w: vertex layout %s has no position", ErrContract, l)
	}
	if l&^(LayoutPosition|LayoutNormal|LayoutColor|LayoutTexCoord) != 0 {
		return fmt.Errorf("%w: vertex layout has unknown bits %#x", ErrContract, uint8(l))
	}
	return nil
}

func (l VertexLayout) String() string {
	var parts []string
	names := [...]string{"position", "normal", "color", "texcoord"}
	for i, a := range attributeOrder {
		if l.Has(a) {
			parts = append(parts, names[i])
		}
	}
	if len(parts) == 0 {
		return "empty"
	}
	return strings.Join(parts, "|")
}

// Vertex is the unpacked form of a vertex. Attributes missing from the
// target layout are ignored by EncodeVertices.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	Color    math.Color
	TexCoord [2]float32
}

// EncodeVertices packs vertices into the little-endian interleaved byte
// stream Device.AddMesh consumes.
func EncodeVertices(layout VertexLayout, vertices []Vertex) ([]byte, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	stride := layout.Stride()
	buf := make([]byte, 0, stride*len(vertices))
	for _, v := range vertices {
		buf = appendVec3(buf, v.Position)
		if layout.Has(LayoutNormal) {
			buf = appendVec3(buf, v.Normal)
		}
		if layout.Has(LayoutColor) {
			c := v.Color.RGBA8()
			buf = append(buf, c[:]...)
		}
		if layout.Has(LayoutTexCoord) {
			buf = appendFloat(buf, v.TexCoord[0])
			buf = appendFloat(buf, v.TexCoord[1])
		}
	}
	return buf, nil
}

// VertexCount returns how many whole vertices of layout data holds.
func VertexCount(layout VertexLayout, data []byte) (int, error) {
	stride := layout.Stride()
	if stride == 0 {
		return 0, fmt.Errorf("%w: empty vertex layout", ErrContract)
	}
	if len(data)%stride != 0 {
		return 0, fmt.Errorf("%w: %d bytes is not a multiple of stride %d", ErrContract, len(data), stride)
	}
	return len(data) / stride, nil
}

func appendVec3(buf []byte, v math.Vec3) []byte {
	buf = appendFloat(buf, v.X)
	buf = appendFloat(buf, v.Y)
	return appendFloat(buf, v.Z)
}

func appendFloat(buf []byte, f float32) []byte {
	return binary.LittleEndian.AppendUint32(buf, stdmath.Float32bits(f))
}
