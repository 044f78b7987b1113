// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"testing"

	"github.com/gogpu/fx/driver/drivertest"
)

func TestEnsureQuadGeometry(t *testing.T) {
	ctx, _ := newTestContext(t)

	if err := ctx.EnsureQuadGeometry(); err != nil {
		t.Fatalf("EnsureQuadGeometry() error = %v", err)
	}
	if ctx.QuadVertexBuffer() == 0 {
		t.Error("QuadVertexBuffer() = 0")
	}
	seen := make(map[uint32]bool)
	for v := 0; v < RotationVariantCount; v++ {
		ibo := ctx.QuadIndexBuffer(v)
		if ibo == 0 {
			t.Fatalf("QuadIndexBuffer(%d) = 0", v)
		}
		seen[uint32(ibo)] = true
	}
	if len(seen) != RotationVariantCount {
		t.Errorf("index buffers not distinct per variant: %d unique", len(seen))
	}

	// Idempotent.
	vbo := ctx.QuadVertexBuffer()
	if err := ctx.EnsureQuadGeometry(); err != nil {
		t.Fatalf("EnsureQuadGeometry() second call error = %v", err)
	}
	if ctx.QuadVertexBuffer() != vbo {
		t.Error("EnsureQuadGeometry rebuilt existing geometry")
	}
}

func TestTexcoordOffsets(t *testing.T) {
	ctx, _ := newTestContext(t)

	// Positions occupy the first 32 bytes; each variant set is 32 bytes.
	for v := 0; v < RotationVariantCount; v++ {
		want := 32 + v*32
		if got := ctx.TexcoordOffset(v); got != want {
			t.Errorf("TexcoordOffset(%d) = %d, want %d", v, got, want)
		}
	}
}

func TestCaptureLifecycle(t *testing.T) {
	ctx, _ := newTestContext(t)

	if _, _, _, armed := ctx.CaptureRequest(); armed {
		t.Fatal("capture armed on fresh context")
	}

	target := struct{ name string }{"probe"}
	ctx.RequestCapture(&target, 128, 96)
	gotTarget, w, h, armed := ctx.CaptureRequest()
	if !armed {
		t.Fatal("capture not armed after RequestCapture")
	}
	if gotTarget != any(&target) || w != 128 || h != 96 {
		t.Errorf("CaptureRequest() = (%v, %d, %d)", gotTarget, w, h)
	}

	data := []byte{1, 2, 3, 4}
	ctx.FinishCapture(data)
	if _, _, _, armed := ctx.CaptureRequest(); armed {
		t.Error("capture still armed after FinishCapture")
	}
	got := ctx.CapturedFrameData()
	if len(got) != 4 || got[0] != 1 {
		t.Errorf("CapturedFrameData() = %v, want %v", got, data)
	}
}

func TestDestroyReleasesOwnedDevice(t *testing.T) {
	dev := drivertest.New()
	ctx, err := NewContext(dev, ContextOptions{OwnsDevice: true})
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}

	if _, err := ctx.FramebufferCache().Fetch(16, 16, false, DefaultTextureAttributes()); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if err := ctx.EnsureQuadGeometry(); err != nil {
		t.Fatalf("EnsureQuadGeometry() error = %v", err)
	}

	ctx.Destroy()
	if !dev.Released() {
		t.Error("owned device not released on Destroy")
	}
	if dev.LiveTextures() != 0 {
		t.Errorf("LiveTextures() = %d after Destroy, want 0", dev.LiveTextures())
	}
}

func TestDestroyKeepsBorrowedDevice(t *testing.T) {
	dev := drivertest.New()
	ctx, err := NewContext(dev, ContextOptions{})
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}
	ctx.Destroy()
	if dev.Released() {
		t.Error("borrowed device was released on Destroy")
	}
}

func TestContextRegistry(t *testing.T) {
	dev := drivertest.New()
	ctx, err := InitContext("test-main", dev, ContextOptions{OwnsDevice: true})
	if err != nil {
		t.Fatalf("InitContext() error = %v", err)
	}

	got, ok := GetContext("test-main")
	if !ok || got != ctx {
		t.Fatalf("GetContext() = (%v, %v), want registered context", got, ok)
	}

	// Re-registering a key destroys and replaces the previous context.
	dev2 := drivertest.New()
	ctx2, err := InitContext("test-main", dev2, ContextOptions{OwnsDevice: true})
	if err != nil {
		t.Fatalf("InitContext() replace error = %v", err)
	}
	if !dev.Released() {
		t.Error("replaced context did not destroy its owned device")
	}
	if got, _ := GetContext("test-main"); got != ctx2 {
		t.Error("GetContext() did not return the replacement context")
	}

	DestroyContext("test-main")
	if _, ok := GetContext("test-main"); ok {
		t.Error("GetContext() found destroyed context")
	}
	if !dev2.Released() {
		t.Error("DestroyContext did not destroy the owned device")
	}
}
