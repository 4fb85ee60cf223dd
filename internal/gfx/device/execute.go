package device

import (
	"fmt"

	"github.com/Faultbox/midgard-gfx/internal/gfx"
	"github.com/Faultbox/midgard-gfx/internal/gfx/command"
)

// execState is what the executor knows about the native state while one
// list runs.
type execState struct {
	pipeline    gfx.PipelineDesc
	hasPipeline bool
	vertexCount int // elements in the bound vertex stream, -1 if none
	indexCount  int // elements in the bound index stream, -1 if none

	lightsEnabled [gfx.MaxLights]bool
	texturesBound [gfx.MaxTextureStages]bool
	streamsBound  bool
	dirty         bool // an extension ran and may have touched anything
}

// Execute implements Device.
func (d *FixedFunction) Execute(list *command.List) error {
	if d.lost {
		d.frame.Dropped++
		if !d.lostLogged {
			d.log.Warn("device lost, dropping command lists until reset")
			d.lostLogged = true
		}
		return nil
	}

	st := execState{vertexCount: -1, indexCount: -1}
	d.applyDefaults()
	err := d.dispatchAll(list, &st)
	d.neutralize(&st)

	d.frame.Lists++
	return err
}

func (d *FixedFunction) dispatchAll(list *command.List, st *execState) error {
	for i, c := range list.All() {
		if err := d.dispatch(c, st); err != nil {
			return fmt.Errorf("command %d (%s): %w", i, c.Kind(), err)
		}
		d.frame.Commands++
		if c.Kind().IsState() {
			d.frame.StateChanges++
		}
	}
	return nil
}

// applyDefaults forces the known default state so a list never depends on
// the previous one.
func (d *FixedFunction) applyDefaults() {
	n := d.native
	def := &d.opts.Defaults

	for s := 0; s < gfx.NumRenderStates; s++ {
		n.SetRenderState(gfx.RenderState(s), def.RenderStates[s])
	}
	for stage := 0; stage < gfx.MaxTextureStages; stage++ {
		for s := 0; s < gfx.NumTextureStageStates; s++ {
			n.SetTextureStageState(stage, gfx.TextureStageState(s), def.TextureStages[stage][s])
		}
		n.SetSampler(stage, gfx.SamplerDesc{})
	}
	for k := 0; k < gfx.NumTransforms; k++ {
		n.SetTransform(gfx.TransformKind(k), def.Transforms[k])
	}
	n.SetMaterial(def.Material)
	n.SetViewport(gfx.FullViewport(n.Size()))
}

// neutralize undoes the state that the defaults do not cover: enabled
// lights, bound streams and bound textures.
func (d *FixedFunction) neutralize(st *execState) {
	n := d.native
	for i, on := range st.lightsEnabled {
		if on || st.dirty {
			n.EnableLight(i, false)
		}
	}
	if st.streamsBound || st.dirty {
		n.BindVertexBuffer(0)
		n.BindIndexBuffer(0)
	}
	for stage, bound := range st.texturesBound {
		if bound || st.dirty {
			n.BindTexture(stage, 0)
		}
	}
}

func (d *FixedFunction) dispatch(c command.Command, st *execState) error {
	n := d.native

	switch c := c.(type) {
	case command.Clear:
		n.Clear(c.Targets, c.Color, c.Depth)

	case command.SetViewport:
		n.SetViewport(c.Viewport)

	case command.BindPipeline:
		p, err := d.pipelines.Get(c.Pipeline)
		if err != nil {
			return err
		}
		st.pipeline = *p
		st.hasPipeline = true
		n.SetVertexFormat(p.Layout)

	case command.BindVertexBuffer:
		if !st.hasPipeline {
			return fmt.Errorf("%w: vertex buffer bound without a pipeline", gfx.ErrContract)
		}
		vb, err := d.vertexBuffers.Get(c.Buffer)
		if err != nil {
			return err
		}
		if vb.layout != st.pipeline.Layout {
			return fmt.Errorf("%w: buffer layout %s does not match pipeline layout %s",
				gfx.ErrContract, vb.layout, st.pipeline.Layout)
		}
		n.BindVertexBuffer(vb.id)
		st.vertexCount = vb.count
		st.streamsBound = true

	case command.BindIndexBuffer:
		ib, err := d.indexBuffers.Get(c.Buffer)
		if err != nil {
			return err
		}
		n.BindIndexBuffer(ib.id)
		st.indexCount = ib.count
		st.streamsBound = true

	case command.Draw:
		if err := d.checkDraw(st, st.vertexCount, c.First, c.Count); err != nil {
			return err
		}
		n.DrawPrimitive(st.pipeline.Primitive, c.First, c.Count)
		d.countDraw(st.pipeline.Primitive, c.Count)

	case command.DrawIndexed:
		if err := d.checkDraw(st, st.indexCount, c.First, c.Count); err != nil {
			return err
		}
		n.DrawIndexedPrimitive(st.pipeline.Primitive, c.First, c.Count)
		d.countDraw(st.pipeline.Primitive, c.Count)

	case command.BindTexture:
		if err := checkStage(c.Stage); err != nil {
			return err
		}
		var id uint32
		if c.Texture.IsValid() {
			tex, err := d.textures.Get(c.Texture)
			if err != nil {
				return err
			}
			id = tex.id
		}
		n.BindTexture(c.Stage, id)
		st.texturesBound[c.Stage] = id != 0

	case command.BindSampler:
		if err := checkStage(c.Stage); err != nil {
			return err
		}
		var desc gfx.SamplerDesc
		if c.Sampler.IsValid() {
			s, err := d.samplers.Get(c.Sampler)
			if err != nil {
				return err
			}
			desc = *s
		}
		n.SetSampler(c.Stage, desc)

	case command.SetTextureStageState:
		if err := checkStage(c.Stage); err != nil {
			return err
		}
		n.SetTextureStageState(c.Stage, c.State, c.Value)

	case command.SetTransform:
		if c.Transform == gfx.TransformProjection && c.Matrix.PerspectiveTerm() < 0 {
			return fmt.Errorf("%w: projection perspective term %v is negative", gfx.ErrContract, c.Matrix.PerspectiveTerm())
		}
		n.SetTransform(c.Transform, c.Matrix)

	case command.SetMaterial:
		n.SetMaterial(c.Material)

	case command.SetLights:
		if c.Lights.Count < 0 || c.Lights.Count > gfx.MaxLights {
			return fmt.Errorf("%w: %d lights", gfx.ErrContract, c.Lights.Count)
		}
		for i := 0; i < gfx.MaxLights; i++ {
			on := i < c.Lights.Count
			if on {
				n.SetLight(i, c.Lights.Items[i])
			}
			if on || st.lightsEnabled[i] {
				n.EnableLight(i, on)
			}
			st.lightsEnabled[i] = on
		}

	case command.SetRenderState:
		n.SetRenderState(c.State, c.Value)

	case command.Extension:
		if c.ID == 0 || int(c.ID) > len(d.extensions) {
			return fmt.Errorf("%w: extension %d", gfx.ErrContract, c.ID)
		}
		st.dirty = true
		st.hasPipeline = false
		st.vertexCount, st.indexCount = -1, -1
		if err := d.extensions[c.ID-1].Draw(n, c.Args); err != nil {
			return fmt.Errorf("extension %d: %w", c.ID, err)
		}
		d.frame.DrawCalls++

	default:
		return fmt.Errorf("%w: unknown command %T", gfx.ErrContract, c)
	}
	return nil
}

func (d *FixedFunction) checkDraw(st *execState, bound, first, count int) error {
	if !st.hasPipeline || bound < 0 {
		return fmt.Errorf("%w: draw without bound pipeline and stream", gfx.ErrContract)
	}
	if first < 0 || first+count > bound {
		return fmt.Errorf("%w: draw range [%d, %d) outside %d elements", gfx.ErrContract, first, first+count, bound)
	}
	return gfx.ValidateVertexCount(st.pipeline.Primitive, count)
}

func (d *FixedFunction) countDraw(prim gfx.PrimitiveType, count int) {
	d.frame.DrawCalls++
	d.frame.Primitives += gfx.PrimitiveCount(prim, count)
}

func checkStage(stage int) error {
	if stage < 0 || stage >= gfx.MaxTextureStages {
		return fmt.Errorf("%w: texture stage %d", gfx.ErrContract, stage)
	}
	return nil
}
