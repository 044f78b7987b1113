// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"fmt"

	"github.com/gogpu/fx"
	"github.com/gogpu/fx/driver"
	"github.com/gogpu/fx/render"
)

// Filter is a graph node that samples its input framebuffers through a
// shader program into a freshly fetched output framebuffer, then
// propagates that output to its own targets.
//
// A disabled filter is a transparent passthrough: it republishes its
// first input framebuffer unchanged (same object, no draw).
type Filter struct {
	Source
	Inputs

	ctx     *render.Context
	program *render.Program
	name    string

	enabled          bool
	framebufferScale float32
	background       [4]float32
	uniforms         map[string][]float32
	attrs            render.TextureAttributes

	// externDraw runs after the quad draw with the frame's state still
	// bound, letting subclass-style wrappers append extra draw calls.
	externDraw func()
}

// NewFilter compiles shaderSource and creates a filter with inputCount
// declared input slots. Shader compile or link failure is fatal to this
// filter: the error is returned and no filter is created.
func NewFilter(ctx *render.Context, name, shaderSource string, inputCount int) (*Filter, error) {
	if ctx == nil {
		return nil, fmt.Errorf("pipeline: nil context")
	}
	if inputCount < 1 {
		return nil, fmt.Errorf("pipeline: filter %q needs at least one input", name)
	}
	program, err := ctx.Program(shaderSource)
	if err != nil {
		fx.Logger().Warn("filter shader compile failed", "filter", name, "err", err)
		return nil, fmt.Errorf("pipeline: create filter %q: %w", name, err)
	}
	f := &Filter{
		ctx:              ctx,
		program:          program,
		name:             name,
		enabled:          true,
		framebufferScale: 1,
		attrs:            render.DefaultTextureAttributes(),
	}
	f.SetInputCount(inputCount)
	f.SetLockKey(name)
	return f, nil
}

// Context returns the filter's render context.
func (f *Filter) Context() *render.Context { return f.ctx }

// Name returns the filter's diagnostic name.
func (f *Filter) Name() string { return f.name }

// SetEnabled toggles the filter. Disabled filters pass their first input
// through unchanged.
func (f *Filter) SetEnabled(enabled bool) { f.enabled = enabled }

// Enabled reports whether the filter renders.
func (f *Filter) Enabled() bool { return f.enabled }

// SetFramebufferScale scales the output framebuffer dimensions relative
// to the first input's.
func (f *Filter) SetFramebufferScale(scale float32) {
	if scale > 0 {
		f.framebufferScale = scale
	}
}

// SetBackgroundColor sets the clear color applied before each draw.
func (f *Filter) SetBackgroundColor(r, g, b, a float32) {
	f.background = [4]float32{r, g, b, a}
}

// SetUniform sets a uniform passed to every subsequent draw. Values are
// flat float32 vectors (length 1 for scalars).
func (f *Filter) SetUniform(name string, values ...float32) {
	if f.uniforms == nil {
		f.uniforms = make(map[string][]float32)
	}
	f.uniforms[name] = values
}

// SetExternDraw registers a hook that runs after the quad draw within the
// same bound state.
func (f *Filter) SetExternDraw(hook func()) { f.externDraw = hook }

// outputSize derives the output framebuffer dimensions from the first
// input: rotation-swapped when the input arrives rotated, then scaled by
// the framebuffer scale.
func (f *Filter) outputSize(first *InputSlot) (int, int) {
	w := first.Framebuffer.Width()
	h := first.Framebuffer.Height()
	if first.Rotation.SwapsDimensions() {
		w, h = h, w
	}
	if f.framebufferScale != 1 {
		w = int(float32(w) * f.framebufferScale)
		h = int(float32(h) * f.framebufferScale)
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// Update consumes the frame's inputs. Disabled filters republish their
// first input; an armed capture request targeting this filter renders at
// the capture size and synchronously reads the pixels back instead of
// streaming; otherwise the filter renders normally and propagates.
func (f *Filter) Update(frameTime float64) {
	first := f.FirstInput()
	if first == nil || first.Framebuffer == nil {
		return
	}

	if !f.enabled {
		// Passthrough: republish the first input as our own output and
		// forward without rendering. The extra lock hands the Source its
		// own retain on the input framebuffer.
		fb := first.Framebuffer
		fb.Lock(f.name + ":passthrough")
		f.SetOutput(fb)
		f.SetOutputRotation(first.Rotation)
		f.Unprepare()
		f.UpdateTargets(frameTime)
		return
	}

	if target, cw, ch, armed := f.ctx.CaptureRequest(); armed && target == any(f) {
		f.renderCapture(cw, ch)
		return
	}

	w, h := f.outputSize(first)
	out, err := f.ctx.FramebufferCache().Fetch(w, h, false, f.attrs)
	if err != nil {
		fx.Logger().Warn("output framebuffer allocation failed",
			"filter", f.name, "err", err)
		f.Unprepare()
		return
	}
	f.SetOutput(out)
	f.SetOutputRotation(NoRotation)
	f.proceed(frameTime, out)
}

// proceed executes the filter's render pass into out, releases the
// consumed inputs, and forwards propagation downstream.
func (f *Filter) proceed(frameTime float64, out *render.Framebuffer) {
	// Hold an extra retain for the duration of the draw so the cache
	// cannot hand the output to anyone mid-pass.
	out.Lock(f.name + ":draw")
	defer out.Unlock()

	if err := f.ctx.EnsureQuadGeometry(); err != nil {
		fx.Logger().Warn("quad geometry unavailable", "filter", f.name, "err", err)
		f.Unprepare()
		return
	}

	if err := f.draw(out, out.Width(), out.Height()); err != nil {
		fx.Logger().Warn("filter draw failed", "filter", f.name, "err", err)
		f.Unprepare()
		return
	}

	f.Unprepare()
	f.UpdateTargets(frameTime)
}

// draw issues the quad pass for the current inputs into out at the given
// viewport size.
//
// With multiple differently-rotated inputs only one rotation's index
// buffer can win; the last-processed input's rotation is used. Inputs are
// processed in ascending slot order, which makes the winner deterministic.
func (f *Filter) draw(out *render.Framebuffer, width, height int) error {
	bindings := make([]driver.TextureBinding, 0, f.InputCount())
	lastRotation := NoRotation
	for _, idx := range f.SlotIndices() {
		slot := f.Slot(idx)
		if slot == nil || slot.Framebuffer == nil {
			continue
		}
		sampler := "colorMap"
		if idx > 0 {
			sampler = fmt.Sprintf("colorMap%d", idx)
		}
		bindings = append(bindings, driver.TextureBinding{
			Texture:        slot.Framebuffer.Texture(),
			Unit:           idx,
			Sampler:        sampler,
			TexcoordOffset: f.ctx.TexcoordOffset(slot.Rotation.Variant()),
		})
		lastRotation = slot.Rotation
	}

	f.program.Use()
	err := f.ctx.Device().Draw(driver.DrawCommand{
		Program:    f.program.ID(),
		Target:     out.Target(),
		Width:      width,
		Height:     height,
		ClearColor: f.background,
		Vertices:   f.ctx.QuadVertexBuffer(),
		Indices:    f.ctx.QuadIndexBuffer(lastRotation.Variant()),
		Inputs:     bindings,
		Uniforms:   f.uniforms,
	})
	if err != nil {
		return err
	}
	if f.externDraw != nil {
		f.externDraw()
	}
	return nil
}

// renderCapture renders the current inputs into a framebuffer of the
// requested capture size and synchronously reads the pixels back into the
// Context. This blocks the graph until the device has finished; it is the
// deliberate escape hatch for "give me this frame's pixels now" and does
// not propagate downstream.
func (f *Filter) renderCapture(width, height int) {
	defer f.Unprepare()

	out, err := f.ctx.FramebufferCache().Fetch(width, height, false, f.attrs)
	if err != nil {
		fx.Logger().Warn("capture framebuffer allocation failed",
			"filter", f.name, "err", err)
		f.ctx.FinishCapture(nil)
		return
	}
	defer out.Unlock()

	if err := f.ctx.EnsureQuadGeometry(); err != nil {
		fx.Logger().Warn("quad geometry unavailable", "filter", f.name, "err", err)
		f.ctx.FinishCapture(nil)
		return
	}
	if err := f.draw(out, width, height); err != nil {
		fx.Logger().Warn("capture draw failed", "filter", f.name, "err", err)
		f.ctx.FinishCapture(nil)
		return
	}

	data, err := f.ctx.Device().ReadPixels(out.Target(), width, height)
	if err != nil {
		fx.Logger().Warn("capture readback failed", "filter", f.name, "err", err)
		f.ctx.FinishCapture(nil)
		return
	}
	f.ctx.FinishCapture(data)
}

var (
	_ Target = (*Filter)(nil)
	_ Node   = (*Filter)(nil)
)
