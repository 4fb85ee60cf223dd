package gfx

import "fmt"

// PrimitiveType is the topology vertices are assembled into.
type PrimitiveType uint8

const (
	PointList PrimitiveType = iota + 1
	LineList
	LineStrip
	TriangleList
	TriangleStrip
	TriangleFan
)

func (p PrimitiveType) String() string {
	switch p {
	case PointList:
		return "point-list"
	case LineList:
		return "line-list"
	case LineStrip:
		return "line-strip"
	case TriangleList:
		return "triangle-list"
	case TriangleStrip:
		return "triangle-strip"
	case TriangleFan:
		return "triangle-fan"
	default:
		return fmt.Sprintf("primitive(%d)", uint8(p))
	}
}

// Valid reports whether p is a known topology.
func (p PrimitiveType) Valid() bool {
	return p >= PointList && p <= TriangleFan
}

// PrimitiveCount returns how many primitives n vertices (or indices) form.
func PrimitiveCount(p PrimitiveType, n int) int {
	if n <= 0 {
		return 0
	}
	switch p {
	case PointList:
		return n
	case LineList:
		return n / 2
	case LineStrip:
		return n - 1
	case TriangleList:
		return n / 3
	case TriangleStrip, TriangleFan:
		if n < 2 {
			return 0
		}
		return n - 2
	default:
		return 0
	}
}

// ValidateVertexCount checks that n vertices form whole primitives of type p.
func ValidateVertexCount(p PrimitiveType, n int) error {
	switch p {
	case PointList:
		if n < 1 {
			return fmt.Errorf("%w: %s needs at least one vertex", ErrContract, p)
		}
	case LineList:
		if n < 2 || n%2 != 0 {
			return fmt.Errorf("%w: %s needs an even vertex count, got %d", ErrContract, p, n)
		}
	case LineStrip:
		if n < 2 {
			return fmt.Errorf("%w: %s needs at least two vertices, got %d", ErrContract, p, n)
		}
	case TriangleList:
		if n < 3 || n%3 != 0 {
			return fmt.Errorf("%w: %s needs a multiple of three vertices, got %d", ErrContract, p, n)
		}
	case TriangleStrip, TriangleFan:
		if n < 3 {
			return fmt.Errorf("%w: %s needs at least three vertices, got %d", ErrContract, p, n)
		}
	default:
		return fmt.Errorf("%w: unknown primitive type %d", ErrContract, uint8(p))
	}
	return nil
}
