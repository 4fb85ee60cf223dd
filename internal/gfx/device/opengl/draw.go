package opengl

import (
	"unsafe"

	"github.com/go-gl/gl/v2.1/gl"

	"github.com/Faultbox/midgard-gfx/internal/gfx"
)

func (n *Native) SetVertexFormat(layout gfx.VertexLayout) {
	n.layout = layout
	if n.vertexBuf != 0 {
		n.setPointers()
	}
}

func (n *Native) BindVertexBuffer(id uint32) {
	n.vertexBuf = id
	gl.BindBuffer(gl.ARRAY_BUFFER, id)
	if id == 0 {
		disableArrays()
		return
	}
	n.setPointers()
}

func (n *Native) BindIndexBuffer(id uint32) {
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, id)
}

func (n *Native) DrawPrimitive(prim gfx.PrimitiveType, first, count int) {
	gl.DrawArrays(glPrimitive(prim), int32(first), int32(count))
}

func (n *Native) DrawIndexedPrimitive(prim gfx.PrimitiveType, first, count int) {
	gl.DrawElements(glPrimitive(prim), int32(count), gl.UNSIGNED_SHORT, gl.PtrOffset(first*2))
}

// DrawVertices streams data through a scratch buffer object.
func (n *Native) DrawVertices(prim gfx.PrimitiveType, layout gfx.VertexLayout, data []byte) {
	if len(data) == 0 {
		return
	}
	n.layout = layout
	n.vertexBuf = n.streamBuf
	gl.BindBuffer(gl.ARRAY_BUFFER, n.streamBuf)
	gl.BufferData(gl.ARRAY_BUFFER, len(data), unsafe.Pointer(&data[0]), gl.STREAM_DRAW)
	n.setPointers()
	gl.DrawArrays(glPrimitive(prim), 0, int32(len(data)/layout.Stride()))
	n.BindVertexBuffer(0)
}

// setPointers points the client arrays at the bound buffer using the
// current layout.
func (n *Native) setPointers() {
	l := n.layout
	stride := int32(l.Stride())

	gl.EnableClientState(gl.VERTEX_ARRAY)
	gl.VertexPointer(3, gl.FLOAT, stride, gl.PtrOffset(l.Offset(gfx.LayoutPosition)))

	if l.Has(gfx.LayoutNormal) {
		gl.EnableClientState(gl.NORMAL_ARRAY)
		gl.NormalPointer(gl.FLOAT, stride, gl.PtrOffset(l.Offset(gfx.LayoutNormal)))
	} else {
		gl.DisableClientState(gl.NORMAL_ARRAY)
		gl.Normal3f(0, 0, -1)
	}

	if l.Has(gfx.LayoutColor) {
		gl.EnableClientState(gl.COLOR_ARRAY)
		gl.ColorPointer(4, gl.UNSIGNED_BYTE, stride, gl.PtrOffset(l.Offset(gfx.LayoutColor)))
	} else {
		gl.DisableClientState(gl.COLOR_ARRAY)
		gl.Color4f(1, 1, 1, 1)
	}

	for i := 0; i < gfx.MaxTextureStages; i++ {
		gl.ClientActiveTexture(gl.TEXTURE0 + uint32(i))
		if l.Has(gfx.LayoutTexCoord) {
			gl.EnableClientState(gl.TEXTURE_COORD_ARRAY)
			gl.TexCoordPointer(2, gl.FLOAT, stride, gl.PtrOffset(l.Offset(gfx.LayoutTexCoord)))
		} else {
			gl.DisableClientState(gl.TEXTURE_COORD_ARRAY)
		}
	}
	gl.ClientActiveTexture(gl.TEXTURE0)
}

func disableArrays() {
	gl.DisableClientState(gl.VERTEX_ARRAY)
	gl.DisableClientState(gl.NORMAL_ARRAY)
	gl.DisableClientState(gl.COLOR_ARRAY)
	for i := 0; i < gfx.MaxTextureStages; i++ {
		gl.ClientActiveTexture(gl.TEXTURE0 + uint32(i))
		gl.DisableClientState(gl.TEXTURE_COORD_ARRAY)
	}
	gl.ClientActiveTexture(gl.TEXTURE0)
}

func glPrimitive(p gfx.PrimitiveType) uint32 {
	switch p {
	case gfx.PointList:
		return gl.POINTS
	case gfx.LineList:
		return gl.LINES
	case gfx.LineStrip:
		return gl.LINE_STRIP
	case gfx.TriangleStrip:
		return gl.TRIANGLE_STRIP
	case gfx.TriangleFan:
		return gl.TRIANGLE_FAN
	default:
		return gl.TRIANGLES
	}
}
