package gfx

import "fmt"

// PipelineDesc describes how vertex streams are interpreted.
type PipelineDesc struct {
	Layout    VertexLayout
	Primitive PrimitiveType
}

// Validate checks the layout and topology.
func (d PipelineDesc) Validate() error {
	if err := d.Layout.Validate(); err != nil {
		return err
	}
	if !d.Primitive.Valid() {
		return fmt.Errorf("%w: unknown primitive type %d", ErrContract, uint8(d.Primitive))
	}
	return nil
}

// Filter is a texture sampling filter.
type Filter uint8

const (
	FilterLinear Filter = iota
	FilterNearest
)

// AddressMode controls texture coordinates outside [0, 1].
type AddressMode uint8

const (
	AddressWrap AddressMode = iota
	AddressClamp
)

// SamplerDesc describes texture sampling.
type SamplerDesc struct {
	Min, Mag           Filter
	AddressU, AddressV AddressMode
}

// VertexBufferDesc holds interleaved vertex bytes in Layout.
type VertexBufferDesc struct {
	Layout VertexLayout
	Data   []byte
}

// IndexBufferDesc holds 16-bit indices.
type IndexBufferDesc struct {
	Indices []uint16
}
