package opengl

import (
	"github.com/go-gl/gl/v2.1/gl"

	"github.com/Faultbox/midgard-gfx/internal/gfx"
	"github.com/Faultbox/midgard-gfx/pkg/math"
)

func enable(cap uint32, on bool) {
	if on {
		gl.Enable(cap)
	} else {
		gl.Disable(cap)
	}
}

func (n *Native) SetRenderState(s gfx.RenderState, v uint32) {
	switch s {
	case gfx.RenderLighting:
		enable(gl.LIGHTING, v != 0)
	case gfx.RenderCullMode:
		// Faces are front-facing when wound counter-clockwise on screen.
		switch v {
		case gfx.CullCW:
			gl.Enable(gl.CULL_FACE)
			gl.FrontFace(gl.CCW)
			gl.CullFace(gl.BACK)
		case gfx.CullCCW:
			gl.Enable(gl.CULL_FACE)
			gl.FrontFace(gl.CCW)
			gl.CullFace(gl.FRONT)
		default:
			gl.Disable(gl.CULL_FACE)
		}
	case gfx.RenderDepthTest:
		enable(gl.DEPTH_TEST, v != 0)
	case gfx.RenderDepthWrite:
		n.depthWrite = v != 0
		gl.DepthMask(n.depthWrite)
	case gfx.RenderAlphaBlend:
		enable(gl.BLEND, v != 0)
	case gfx.RenderFillMode:
		switch v {
		case gfx.FillWireframe:
			gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		case gfx.FillPoint:
			gl.PolygonMode(gl.FRONT_AND_BACK, gl.POINT)
		default:
			gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
		}
	case gfx.RenderAmbient:
		c := math.Unpack(v).Array()
		gl.LightModelfv(gl.LIGHT_MODEL_AMBIENT, &c[0])
	case gfx.RenderNormalizeNormals:
		enable(gl.NORMALIZE, v != 0)
	}
}

// SetTransform loads a matrix slot. GL has no separate world and view
// matrices, so both are kept and multiplied into MODELVIEW.
func (n *Native) SetTransform(k gfx.TransformKind, m math.Mat4) {
	switch k {
	case gfx.TransformWorld:
		n.world = m
		n.loadModelView()
	case gfx.TransformView:
		n.view = m
		n.respecifyLights()
		n.loadModelView()
	case gfx.TransformProjection:
		gl.MatrixMode(gl.PROJECTION)
		gl.LoadMatrixf(m.Ptr())
		gl.MatrixMode(gl.MODELVIEW)
	case gfx.TransformTexture0, gfx.TransformTexture1:
		gl.ActiveTexture(gl.TEXTURE0 + uint32(k-gfx.TransformTexture0))
		gl.MatrixMode(gl.TEXTURE)
		gl.LoadMatrixf(m.Ptr())
		gl.MatrixMode(gl.MODELVIEW)
		gl.ActiveTexture(gl.TEXTURE0)
	}
}

func (n *Native) loadModelView() {
	mv := n.view.Mul(n.world)
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadMatrixf(mv.Ptr())
}

func (n *Native) SetMaterial(m gfx.Material) {
	diffuse, ambient := m.Diffuse.Array(), m.Ambient.Array()
	specular, emissive := m.Specular.Array(), m.Emissive.Array()
	gl.Materialfv(gl.FRONT_AND_BACK, gl.DIFFUSE, &diffuse[0])
	gl.Materialfv(gl.FRONT_AND_BACK, gl.AMBIENT, &ambient[0])
	gl.Materialfv(gl.FRONT_AND_BACK, gl.SPECULAR, &specular[0])
	gl.Materialfv(gl.FRONT_AND_BACK, gl.EMISSION, &emissive[0])
	gl.Materialf(gl.FRONT_AND_BACK, gl.SHININESS, min(m.Power, 128))
}

// SetLight stores l and specifies it in world space: GL transforms light
// positions by the modelview matrix current when they are set.
func (n *Native) SetLight(index int, l gfx.Light) {
	n.lights[index] = l
	n.specifyLight(index)
	n.loadModelView()
}

func (n *Native) EnableLight(index int, on bool) {
	n.lightOn[index] = on
	enable(gl.LIGHT0+uint32(index), on)
}

func (n *Native) respecifyLights() {
	for i, on := range n.lightOn {
		if on {
			n.specifyLight(i)
		}
	}
}

func (n *Native) specifyLight(index int) {
	l := n.lights[index]
	id := gl.LIGHT0 + uint32(index)

	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadMatrixf(n.view.Ptr())

	pos := l.Position.Homogeneous(1)
	if l.Type == gfx.LightDirectional {
		pos = l.Direction.Neg().Homogeneous(0)
	}
	diffuse, specular, ambient := l.Diffuse.Array(), l.Specular.Array(), l.Ambient.Array()
	gl.Lightfv(id, gl.POSITION, &pos[0])
	gl.Lightfv(id, gl.DIFFUSE, &diffuse[0])
	gl.Lightfv(id, gl.SPECULAR, &specular[0])
	gl.Lightfv(id, gl.AMBIENT, &ambient[0])
	gl.Lightf(id, gl.CONSTANT_ATTENUATION, l.Attenuation[0])
	gl.Lightf(id, gl.LINEAR_ATTENUATION, l.Attenuation[1])
	gl.Lightf(id, gl.QUADRATIC_ATTENUATION, l.Attenuation[2])
}
