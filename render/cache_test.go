// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"testing"

	"github.com/gogpu/fx/driver/drivertest"
)

func newTestContext(t *testing.T) (*Context, *drivertest.Device) {
	t.Helper()
	dev := drivertest.New()
	ctx, err := NewContext(dev, ContextOptions{})
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}
	t.Cleanup(ctx.Destroy)
	return ctx, dev
}

func TestFetchReusesReleasedFramebuffer(t *testing.T) {
	ctx, dev := newTestContext(t)
	cache := ctx.FramebufferCache()
	attrs := DefaultTextureAttributes()

	fb1, err := cache.Fetch(64, 64, false, attrs)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if fb1.RetainCount() != 1 {
		t.Fatalf("RetainCount() = %d after Fetch, want 1", fb1.RetainCount())
	}
	fb1.Unlock()

	fb2, err := cache.Fetch(64, 64, false, attrs)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if fb2 != fb1 {
		t.Error("Fetch did not reuse the released framebuffer")
	}
	if dev.CreatedTextures() != 1 {
		t.Errorf("CreatedTextures() = %d, want 1", dev.CreatedTextures())
	}
}

func TestFetchAllocatesWhileLocked(t *testing.T) {
	ctx, dev := newTestContext(t)
	cache := ctx.FramebufferCache()
	attrs := DefaultTextureAttributes()

	fb1, err := cache.Fetch(64, 64, false, attrs)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	fb2, err := cache.Fetch(64, 64, false, attrs)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if fb1 == fb2 {
		t.Fatal("Fetch reused a framebuffer that is still locked")
	}
	if got := cache.BucketLen(64, 64, false, attrs); got != 2 {
		t.Errorf("BucketLen() = %d, want 2", got)
	}
	if dev.CreatedTextures() != 2 {
		t.Errorf("CreatedTextures() = %d, want 2", dev.CreatedTextures())
	}
}

func TestReturnEvictsOverfullBucket(t *testing.T) {
	ctx, _ := newTestContext(t)
	cache := ctx.FramebufferCache()
	attrs := DefaultTextureAttributes()

	fb1, err := cache.Fetch(32, 32, false, attrs)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	fb2, err := cache.Fetch(32, 32, false, attrs)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	// Bucket now holds two entries with MaxBucketSize 1. The first
	// release exceeds the bound and destroys that framebuffer; the
	// second stays pooled.
	fb1.Unlock()
	if !fb1.Destroyed() {
		t.Error("first released framebuffer survived an over-full bucket")
	}
	if cache.Contains(fb1) {
		t.Error("destroyed framebuffer still registered with the cache")
	}

	fb2.Unlock()
	if fb2.Destroyed() {
		t.Error("second released framebuffer was evicted from a bucket within bounds")
	}
	if got := cache.BucketLen(32, 32, false, attrs); got != 1 {
		t.Errorf("BucketLen() = %d after eviction, want 1", got)
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d after eviction, want 1", cache.Len())
	}
}

func TestBucketSeparatesShapes(t *testing.T) {
	ctx, dev := newTestContext(t)
	cache := ctx.FramebufferCache()
	attrs := DefaultTextureAttributes()

	nearest := attrs
	nearest.MinFilter = 1 // FilterNearest

	tests := []struct {
		name        string
		w, h        int
		onlyTexture bool
		attrs       TextureAttributes
	}{
		{"base", 16, 16, false, attrs},
		{"size", 16, 32, false, attrs},
		{"texture-only", 16, 16, true, attrs},
		{"filtering", 16, 16, false, nearest},
	}
	for _, tt := range tests {
		fb, err := cache.Fetch(tt.w, tt.h, tt.onlyTexture, tt.attrs)
		if err != nil {
			t.Fatalf("%s: Fetch() error = %v", tt.name, err)
		}
		fb.Unlock()
	}

	// Four distinct shapes: no reuse across any pair.
	if dev.CreatedTextures() != 4 {
		t.Errorf("CreatedTextures() = %d, want 4 distinct allocations", dev.CreatedTextures())
	}
}

func TestPurgeDestroysEverything(t *testing.T) {
	ctx, dev := newTestContext(t)
	cache := ctx.FramebufferCache()
	attrs := DefaultTextureAttributes()

	fb, err := cache.Fetch(8, 8, false, attrs)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	cache.Purge()
	if !fb.Destroyed() {
		t.Error("Purge left a cached framebuffer alive")
	}
	if cache.Len() != 0 {
		t.Errorf("Len() = %d after Purge, want 0", cache.Len())
	}
	if dev.LiveTextures() != 0 {
		t.Errorf("LiveTextures() = %d after Purge, want 0", dev.LiveTextures())
	}
}

func TestFetchEvictsStaleSizeMismatch(t *testing.T) {
	ctx, _ := newTestContext(t)
	cache := ctx.FramebufferCache()
	attrs := DefaultTextureAttributes()

	fb, err := cache.Fetch(64, 64, false, attrs)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	fb.Unlock()

	// Simulate a stale alias: the bucket claims 64x64 but the entry's
	// recorded size no longer matches.
	fb.width, fb.height = 32, 32

	fb2, err := cache.Fetch(64, 64, false, attrs)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if fb2 == fb {
		t.Fatal("Fetch reused a stale entry with mismatched dimensions")
	}
	if !fb.Destroyed() {
		t.Error("stale entry was not force-cleaned")
	}
}
