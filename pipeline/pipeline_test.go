// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"testing"

	"github.com/gogpu/fx/driver/drivertest"
	"github.com/gogpu/fx/render"
)

const testShader = "@vertex fn vs_main() {} @fragment fn fs_main() {}"

func newTestContext(t *testing.T) (*render.Context, *drivertest.Device) {
	t.Helper()
	dev := drivertest.New()
	ctx, err := render.NewContext(dev, render.ContextOptions{})
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}
	t.Cleanup(ctx.Destroy)
	return ctx, dev
}

func newTestFilter(t *testing.T, ctx *render.Context, name string, inputs int) *Filter {
	t.Helper()
	f, err := NewFilter(ctx, name, testShader, inputs)
	if err != nil {
		t.Fatalf("NewFilter(%q) error = %v", name, err)
	}
	return f
}

func solidFrame(w, h int, r, g, b byte) []byte {
	p := make([]byte, w*h*4)
	for i := 0; i < len(p); i += 4 {
		p[i], p[i+1], p[i+2], p[i+3] = r, g, b, 255
	}
	return p
}

// TestSourceFilterSinkFrame pushes one frame through a minimal graph and
// checks it arrives rendered at the sink.
func TestSourceFilterSinkFrame(t *testing.T) {
	ctx, dev := newTestContext(t)

	src := NewImageSource(ctx)
	f := newTestFilter(t, ctx, "identity", 1)
	sink := NewSink()

	src.AddTarget(f, 0)
	f.AddTarget(sink, 0)

	if err := src.PushRGBA(solidFrame(64, 64, 200, 10, 10), 64, 64, 0); err != nil {
		t.Fatalf("PushRGBA() error = %v", err)
	}

	if sink.Frames() != 1 {
		t.Fatalf("sink received %d frames, want 1", sink.Frames())
	}
	if w, h := sink.LastSize(); w != 64 || h != 64 {
		t.Errorf("sink frame size = %dx%d, want 64x64", w, h)
	}
	if dev.DrawCount() != 1 {
		t.Errorf("DrawCount() = %d, want 1", dev.DrawCount())
	}

	// After the frame, the filter's inputs are consumed.
	if f.IsPrepared() {
		t.Error("filter still prepared after rendering")
	}
}

func TestFilterRendersInputPixels(t *testing.T) {
	ctx, dev := newTestContext(t)

	src := NewImageSource(ctx)
	f := newTestFilter(t, ctx, "identity", 1)
	var got *render.Framebuffer
	sink := NewSink()
	sink.OnFrame = func(fb *render.Framebuffer, _ RotationMode) { got = fb }

	src.AddTarget(f, 0)
	f.AddTarget(sink, 0)

	want := solidFrame(16, 16, 7, 77, 177)
	if err := src.PushRGBA(want, 16, 16, 0); err != nil {
		t.Fatalf("PushRGBA() error = %v", err)
	}
	if got == nil {
		t.Fatal("sink saw no framebuffer")
	}
	pix := dev.TexturePixels(got.Texture())
	if len(pix) != len(want) {
		t.Fatalf("rendered %d bytes, want %d", len(pix), len(want))
	}
	for i := range pix {
		if pix[i] != want[i] {
			t.Fatalf("pixel byte %d = %d, want %d", i, pix[i], want[i])
		}
	}
}

// TestDisabledFilterPassthrough checks a disabled filter republishes the
// identical framebuffer without drawing.
func TestDisabledFilterPassthrough(t *testing.T) {
	ctx, dev := newTestContext(t)

	src := NewImageSource(ctx)
	f := newTestFilter(t, ctx, "bypass", 1)
	f.SetEnabled(false)

	var got *render.Framebuffer
	var gotRotation RotationMode
	sink := NewSink()
	sink.OnFrame = func(fb *render.Framebuffer, r RotationMode) { got, gotRotation = fb, r }

	src.AddTarget(f, 0)
	f.AddTarget(sink, 0)

	src.SetOutputRotation(FlipVertical)
	if err := src.PushRGBA(solidFrame(32, 32, 1, 2, 3), 32, 32, 0); err != nil {
		t.Fatalf("PushRGBA() error = %v", err)
	}

	if got == nil {
		t.Fatal("sink saw no framebuffer")
	}
	if got != src.Output() {
		t.Error("disabled filter did not republish its input framebuffer")
	}
	if gotRotation != FlipVertical {
		t.Errorf("rotation = %v through disabled filter, want FlipVertical", gotRotation)
	}
	if dev.DrawCount() != 0 {
		t.Errorf("DrawCount() = %d for disabled filter, want 0", dev.DrawCount())
	}
}

func TestRotatedInputSwapsOutputSize(t *testing.T) {
	ctx, _ := newTestContext(t)

	src := NewImageSource(ctx)
	f := newTestFilter(t, ctx, "identity", 1)
	sink := NewSink()

	src.AddTarget(f, 0)
	f.AddTarget(sink, 0)

	src.SetOutputRotation(RotateLeft)
	if err := src.PushRGBA(solidFrame(64, 32, 0, 0, 0), 64, 32, 0); err != nil {
		t.Fatalf("PushRGBA() error = %v", err)
	}
	if w, h := sink.LastSize(); w != 32 || h != 64 {
		t.Errorf("sink frame size = %dx%d with RotateLeft input, want 32x64", w, h)
	}
}

// TestLastInputRotationWins checks the deterministic winner for the
// shared index buffer with differently rotated inputs: ascending slot
// order means the highest slot's rotation selects the variant.
func TestLastInputRotationWins(t *testing.T) {
	ctx, dev := newTestContext(t)
	cache := ctx.FramebufferCache()

	f := newTestFilter(t, ctx, "mixer", 2)

	fb0, err := cache.Fetch(16, 16, false, render.DefaultTextureAttributes())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	fb1, err := cache.Fetch(16, 16, false, render.DefaultTextureAttributes())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	f.SetInputFramebuffer(fb0, NoRotation, 0, false)
	f.SetInputFramebuffer(fb1, RotateRight, 1, false)
	if !f.IsPrepared() {
		t.Fatal("filter not prepared with both inputs set")
	}
	f.Update(0)

	last := dev.LastDraw
	if last.Indices != ctx.QuadIndexBuffer(RotateRight.Variant()) {
		t.Error("index buffer does not follow the highest slot's rotation")
	}
	if len(last.Inputs) != 2 {
		t.Fatalf("draw bound %d inputs, want 2", len(last.Inputs))
	}
	if last.Inputs[0].Sampler != "colorMap" || last.Inputs[1].Sampler != "colorMap1" {
		t.Errorf("sampler names = %q, %q", last.Inputs[0].Sampler, last.Inputs[1].Sampler)
	}
	if last.Inputs[0].TexcoordOffset != ctx.TexcoordOffset(NoRotation.Variant()) {
		t.Error("slot 0 texcoords do not match its rotation variant")
	}
	if last.Inputs[1].TexcoordOffset != ctx.TexcoordOffset(RotateRight.Variant()) {
		t.Error("slot 1 texcoords do not match its rotation variant")
	}
}

func TestPartialInputsNotPrepared(t *testing.T) {
	ctx, _ := newTestContext(t)
	cache := ctx.FramebufferCache()

	f := newTestFilter(t, ctx, "mixer", 2)
	fb, err := cache.Fetch(16, 16, false, render.DefaultTextureAttributes())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	f.SetInputFramebuffer(fb, NoRotation, 0, false)
	if f.IsPrepared() {
		t.Error("filter prepared with one of two inputs")
	}

	// An ignored slot does not gate preparation.
	f.SetInputFramebuffer(nil, NoRotation, 1, true)
	if !f.IsPrepared() {
		t.Error("filter not prepared with remaining slot marked ignore")
	}
}

func TestCaptureReadsPixelsWithoutPropagating(t *testing.T) {
	ctx, _ := newTestContext(t)

	src := NewImageSource(ctx)
	f := newTestFilter(t, ctx, "probe", 1)
	sink := NewSink()

	src.AddTarget(f, 0)
	f.AddTarget(sink, 0)

	ctx.RequestCapture(f, 24, 24)
	if err := src.PushRGBA(solidFrame(64, 64, 9, 9, 9), 64, 64, 0); err != nil {
		t.Fatalf("PushRGBA() error = %v", err)
	}

	data := ctx.CapturedFrameData()
	if len(data) != 24*24*4 {
		t.Fatalf("captured %d bytes, want %d", len(data), 24*24*4)
	}
	if sink.Frames() != 0 {
		t.Errorf("sink received %d frames during capture, want 0", sink.Frames())
	}
	if _, _, _, armed := ctx.CaptureRequest(); armed {
		t.Error("capture request still armed after the frame")
	}

	// The next frame streams normally again.
	if err := src.PushRGBA(solidFrame(64, 64, 9, 9, 9), 64, 64, 0); err != nil {
		t.Fatalf("PushRGBA() error = %v", err)
	}
	if sink.Frames() != 1 {
		t.Errorf("sink received %d frames after capture, want 1", sink.Frames())
	}
}

func TestNewFilterCompileFailure(t *testing.T) {
	ctx, _ := newTestContext(t)

	if _, err := NewFilter(ctx, "bad", drivertest.CompileFailMarker, 1); err == nil {
		t.Fatal("NewFilter() with failing shader did not error")
	}
}

func TestFramebufferScale(t *testing.T) {
	ctx, _ := newTestContext(t)

	src := NewImageSource(ctx)
	f := newTestFilter(t, ctx, "half", 1)
	f.SetFramebufferScale(0.5)
	sink := NewSink()

	src.AddTarget(f, 0)
	f.AddTarget(sink, 0)

	if err := src.PushRGBA(solidFrame(64, 64, 0, 0, 0), 64, 64, 0); err != nil {
		t.Fatalf("PushRGBA() error = %v", err)
	}
	if w, h := sink.LastSize(); w != 32 || h != 32 {
		t.Errorf("sink frame size = %dx%d with scale 0.5, want 32x32", w, h)
	}
}
