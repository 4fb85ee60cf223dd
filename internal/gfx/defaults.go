package gfx

import "github.com/Faultbox/midgard-gfx/pkg/math"

// DeviceDefaults is the known state a device is forced into before every
// command list. Recorders seed their state caches from it so that a list
// never depends on what ran before it.
type DeviceDefaults struct {
	RenderStates  [NumRenderStates]uint32
	TextureStages [MaxTextureStages][NumTextureStageStates]uint32
	Transforms    [NumTransforms]math.Mat4
	Material      Material
}

// DefaultDeviceDefaults returns lighting off, culling off, depth test and
// write on, black ambient, identity transforms, stage 0 modulating texture
// with diffuse and stage 1 disabled.
func DefaultDeviceDefaults() DeviceDefaults {
	var d DeviceDefaults

	d.RenderStates[RenderLighting] = Bool(false)
	d.RenderStates[RenderCullMode] = CullNone
	d.RenderStates[RenderDepthTest] = Bool(true)
	d.RenderStates[RenderDepthWrite] = Bool(true)
	d.RenderStates[RenderAlphaBlend] = Bool(false)
	d.RenderStates[RenderFillMode] = FillSolid
	d.RenderStates[RenderAmbient] = 0
	d.RenderStates[RenderNormalizeNormals] = Bool(false)

	d.TextureStages[0] = [NumTextureStageStates]uint32{
		StageColorOp:   OpModulate,
		StageColorArg1: ArgTexture,
		StageColorArg2: ArgCurrent,
		StageAlphaOp:   OpSelectArg1,
		StageAlphaArg1: ArgTexture,
		StageAlphaArg2: ArgCurrent,
	}
	for stage := 1; stage < MaxTextureStages; stage++ {
		d.TextureStages[stage] = [NumTextureStageStates]uint32{
			StageColorOp:   OpDisable,
			StageColorArg1: ArgTexture,
			StageColorArg2: ArgCurrent,
			StageAlphaOp:   OpDisable,
			StageAlphaArg1: ArgTexture,
			StageAlphaArg2: ArgCurrent,
		}
	}

	for i := range d.Transforms {
		d.Transforms[i] = math.Identity()
	}
	d.Material = DefaultMaterial()
	return d
}
