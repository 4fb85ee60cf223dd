package gfx

import "fmt"

// RenderState identifies one scalar piece of device render state. Values are
// uint32: booleans are 0/1, enums use the constants below, Ambient is a
// packed 0xAARRGGBB color.
type RenderState uint8

const (
	RenderLighting RenderState = iota
	RenderCullMode
	RenderDepthTest
	RenderDepthWrite
	RenderAlphaBlend
	RenderFillMode
	RenderAmbient
	RenderNormalizeNormals

	NumRenderStates = iota
)

var renderStateNames = [NumRenderStates]string{
	"lighting", "cull-mode", "depth-test", "depth-write",
	"alpha-blend", "fill-mode", "ambient", "normalize-normals",
}

func (s RenderState) String() string {
	if int(s) < NumRenderStates {
		return renderStateNames[s]
	}
	return fmt.Sprintf("render-state(%d)", uint8(s))
}

// Cull modes for RenderCullMode.
const (
	CullNone uint32 = iota
	CullCW
	CullCCW
)

// Fill modes for RenderFillMode.
const (
	FillSolid uint32 = iota
	FillWireframe
	FillPoint
)

// Bool converts b to a render state value.
func Bool(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// MaxTextureStages is the number of fixed-function texture stages.
const MaxTextureStages = 2

// TextureStageState identifies one combiner setting of a texture stage.
type TextureStageState uint8

const (
	StageColorOp TextureStageState = iota
	StageColorArg1
	StageColorArg2
	StageAlphaOp
	StageAlphaArg1
	StageAlphaArg2

	NumTextureStageStates = iota
)

var stageStateNames = [NumTextureStageStates]string{
	"color-op", "color-arg1", "color-arg2", "alpha-op", "alpha-arg1", "alpha-arg2",
}

func (s TextureStageState) String() string {
	if int(s) < NumTextureStageStates {
		return stageStateNames[s]
	}
	return fmt.Sprintf("stage-state(%d)", uint8(s))
}

// Texture operations for StageColorOp and StageAlphaOp.
const (
	OpDisable uint32 = iota
	OpSelectArg1
	OpSelectArg2
	OpModulate
	OpAdd
)

// Texture arguments for the Arg states.
const (
	ArgCurrent uint32 = iota // output of the previous stage, diffuse at stage 0
	ArgDiffuse
	ArgTexture
)

// TransformKind identifies one of the device's matrix slots.
type TransformKind uint8

const (
	TransformWorld TransformKind = iota
	TransformView
	TransformProjection
	TransformTexture0
	TransformTexture1

	NumTransforms = iota
)

var transformNames = [NumTransforms]string{"world", "view", "projection", "texture0", "texture1"}

func (k TransformKind) String() string {
	if int(k) < NumTransforms {
		return transformNames[k]
	}
	return fmt.Sprintf("transform(%d)", uint8(k))
}

// TextureTransform returns the transform slot of a texture stage.
func TextureTransform(stage int) TransformKind {
	return TransformTexture0 + TransformKind(stage)
}
