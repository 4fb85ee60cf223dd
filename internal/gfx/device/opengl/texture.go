package opengl

import (
	"github.com/go-gl/gl/v2.1/gl"

	"github.com/Faultbox/midgard-gfx/internal/gfx"
)

func (n *Native) BindTexture(stageIndex int, id uint32) {
	st := &n.stages[stageIndex]
	st.texture = id
	gl.ActiveTexture(gl.TEXTURE0 + uint32(stageIndex))
	gl.BindTexture(gl.TEXTURE_2D, id)
	if id != 0 {
		applySampler(st.sampler)
	}
	n.updateTexturing(stageIndex)
	gl.ActiveTexture(gl.TEXTURE0)
}

// SetSampler stores desc for the stage. GL 2.1 keeps sampling parameters on
// the texture object, so they are applied to whatever the stage has bound.
func (n *Native) SetSampler(stageIndex int, desc gfx.SamplerDesc) {
	st := &n.stages[stageIndex]
	st.sampler = desc
	if st.texture == 0 {
		return
	}
	gl.ActiveTexture(gl.TEXTURE0 + uint32(stageIndex))
	applySampler(desc)
	gl.ActiveTexture(gl.TEXTURE0)
}

func applySampler(desc gfx.SamplerDesc) {
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, glFilter(desc.Min))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, glFilter(desc.Mag))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, glAddress(desc.AddressU))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, glAddress(desc.AddressV))
}

func glFilter(f gfx.Filter) int32 {
	if f == gfx.FilterNearest {
		return gl.NEAREST
	}
	return gl.LINEAR
}

func glAddress(a gfx.AddressMode) int32 {
	if a == gfx.AddressClamp {
		return gl.CLAMP_TO_EDGE
	}
	return gl.REPEAT
}

// SetTextureStageState maps a combiner setting onto the GL_COMBINE texture
// environment of the stage's texture unit.
func (n *Native) SetTextureStageState(stageIndex int, s gfx.TextureStageState, v uint32) {
	st := &n.stages[stageIndex]
	st.states[s] = v

	gl.ActiveTexture(gl.TEXTURE0 + uint32(stageIndex))
	switch s {
	case gfx.StageColorOp, gfx.StageColorArg1, gfx.StageColorArg2:
		applyCombiner(gl.COMBINE_RGB, gl.SRC0_RGB, gl.SRC1_RGB, stageIndex,
			st.states[gfx.StageColorOp], st.states[gfx.StageColorArg1], st.states[gfx.StageColorArg2])
		n.updateTexturing(stageIndex)
	case gfx.StageAlphaOp, gfx.StageAlphaArg1, gfx.StageAlphaArg2:
		applyCombiner(gl.COMBINE_ALPHA, gl.SRC0_ALPHA, gl.SRC1_ALPHA, stageIndex,
			st.states[gfx.StageAlphaOp], st.states[gfx.StageAlphaArg1], st.states[gfx.StageAlphaArg2])
	}
	gl.ActiveTexture(gl.TEXTURE0)
}

func applyCombiner(combine, src0, src1 uint32, stageIndex int, op, arg1, arg2 uint32) {
	switch op {
	case gfx.OpSelectArg1:
		gl.TexEnvi(gl.TEXTURE_ENV, combine, gl.REPLACE)
		gl.TexEnvi(gl.TEXTURE_ENV, src0, glArg(stageIndex, arg1))
	case gfx.OpSelectArg2:
		gl.TexEnvi(gl.TEXTURE_ENV, combine, gl.REPLACE)
		gl.TexEnvi(gl.TEXTURE_ENV, src0, glArg(stageIndex, arg2))
	case gfx.OpModulate, gfx.OpAdd:
		mode := int32(gl.MODULATE)
		if op == gfx.OpAdd {
			mode = gl.ADD
		}
		gl.TexEnvi(gl.TEXTURE_ENV, combine, mode)
		gl.TexEnvi(gl.TEXTURE_ENV, src0, glArg(stageIndex, arg1))
		gl.TexEnvi(gl.TEXTURE_ENV, src1, glArg(stageIndex, arg2))
	}
}

func glArg(stageIndex int, arg uint32) int32 {
	switch arg {
	case gfx.ArgTexture:
		return gl.TEXTURE
	case gfx.ArgDiffuse:
		return gl.PRIMARY_COLOR
	default:
		if stageIndex == 0 {
			return gl.PRIMARY_COLOR
		}
		return gl.PREVIOUS
	}
}

// updateTexturing enables a unit only when it has a texture and its color
// op is not disabled.
func (n *Native) updateTexturing(stageIndex int) {
	st := &n.stages[stageIndex]
	gl.ActiveTexture(gl.TEXTURE0 + uint32(stageIndex))
	enable(gl.TEXTURE_2D, st.texture != 0 && st.states[gfx.StageColorOp] != gfx.OpDisable)
}
