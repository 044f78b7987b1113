// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"testing"

	"github.com/gogpu/fx/render"
)

func fetchFB(t *testing.T, ctx *render.Context) *render.Framebuffer {
	t.Helper()
	fb, err := ctx.FramebufferCache().Fetch(8, 8, false, render.DefaultTextureAttributes())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	return fb
}

func TestInputsLockOnFill(t *testing.T) {
	ctx, _ := newTestContext(t)
	fb := fetchFB(t, ctx)

	var in Inputs
	in.SetInputCount(1)
	in.SetLockKey("test")

	before := fb.RetainCount()
	in.SetInputFramebuffer(fb, NoRotation, 0, false)
	if fb.RetainCount() != before+1 {
		t.Errorf("RetainCount() = %d after fill, want %d", fb.RetainCount(), before+1)
	}

	in.Unprepare()
	if fb.RetainCount() != before {
		t.Errorf("RetainCount() = %d after Unprepare, want %d", fb.RetainCount(), before)
	}
	if in.Slot(0).Framebuffer != nil {
		t.Error("Unprepare left the slot filled")
	}
}

func TestInputsSupersede(t *testing.T) {
	ctx, _ := newTestContext(t)
	fb1 := fetchFB(t, ctx)
	fb2 := fetchFB(t, ctx)

	var in Inputs
	in.SetInputCount(1)

	in.SetInputFramebuffer(fb1, NoRotation, 0, false)
	locked := fb1.RetainCount()
	in.SetInputFramebuffer(fb2, NoRotation, 0, false)

	if fb1.RetainCount() != locked-1 {
		t.Errorf("superseded framebuffer retain = %d, want %d", fb1.RetainCount(), locked-1)
	}
	if in.Slot(0).Framebuffer != fb2 {
		t.Error("slot does not hold the most recent framebuffer")
	}
}

func TestInputsNilClearsSlot(t *testing.T) {
	ctx, _ := newTestContext(t)
	fb := fetchFB(t, ctx)

	var in Inputs
	in.SetInputCount(1)
	in.SetInputFramebuffer(fb, NoRotation, 0, false)
	in.SetInputFramebuffer(nil, NoRotation, 0, false)

	if in.Slot(0).Framebuffer != nil {
		t.Error("nil fill did not clear the slot")
	}
	if in.IsPrepared() {
		t.Error("prepared with a cleared slot")
	}
}

func TestIsPreparedZeroInputs(t *testing.T) {
	var in Inputs
	if in.IsPrepared() {
		t.Error("IsPrepared() = true with no declared inputs")
	}
}

func TestDestroyedFramebufferNotAccepted(t *testing.T) {
	ctx, _ := newTestContext(t)
	fb := fetchFB(t, ctx)
	fb.Unlock()
	ctx.FramebufferCache().ForceClean(fb)

	var in Inputs
	in.SetInputCount(1)
	in.SetInputFramebuffer(fb, NoRotation, 0, false)
	if in.Slot(0).Framebuffer != nil {
		t.Error("destroyed framebuffer accepted into a slot")
	}
}
