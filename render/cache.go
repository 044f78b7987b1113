// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"fmt"

	"github.com/gogpu/fx"
)

// DefaultMaxBucketSize bounds how many zero-retain framebuffers a cache
// bucket keeps before Return starts evicting.
const DefaultMaxBucketSize = 1

// FramebufferCache pools framebuffers for reuse across the whole graph of
// a Context. Buckets are keyed by shape (dimensions, attributes,
// only-texture flag); each cached framebuffer is additionally registered
// under a full hash of bucket key plus texture handle.
//
// Eviction is size-bounded per bucket, not LRU: when a framebuffer's
// retain count returns to zero and its bucket holds more entries than
// MaxBucketSize, that framebuffer is destroyed.
type FramebufferCache struct {
	ctx *Context

	// framebuffers maps full hash (bucket key + texture id) to the
	// cached framebuffer.
	framebuffers map[string]*Framebuffer

	// buckets maps bucket key to the full hashes of its members, in
	// insertion order.
	buckets map[string][]string

	// MaxBucketSize is the per-bucket retention bound applied by Return.
	MaxBucketSize int
}

// NewFramebufferCache creates an empty cache for ctx.
func NewFramebufferCache(ctx *Context) *FramebufferCache {
	return &FramebufferCache{
		ctx:           ctx,
		framebuffers:  make(map[string]*Framebuffer),
		buckets:       make(map[string][]string),
		MaxBucketSize: DefaultMaxBucketSize,
	}
}

func fullHash(bucket string, fb *Framebuffer) string {
	return fmt.Sprintf("%s:%d", bucket, fb.texture)
}

// Fetch returns a framebuffer of exactly width x height with the given
// attributes, locked once on behalf of the caller. A cached zero-retain
// framebuffer of matching shape is reused when available; otherwise a new
// framebuffer is allocated and registered with the cache. Fetch never
// fails for want of a cached entry — allocation is the fallback — and
// only propagates device allocation errors.
//
// A cached entry whose recorded dimensions no longer match the request
// (a stale alias from an earlier reuse cycle) is evicted immediately
// rather than resized in place.
func (c *FramebufferCache) Fetch(width, height int, onlyTexture bool, attrs TextureAttributes) (*Framebuffer, error) {
	key := bucketKey(width, height, attrs, onlyTexture)

	for _, hash := range c.buckets[key] {
		fb, ok := c.framebuffers[hash]
		if !ok || fb.retainCount != 0 {
			continue
		}
		if fb.width != width || fb.height != height {
			fx.Logger().Warn("evicting stale cache entry with mismatched size",
				"want", fmt.Sprintf("%dx%d", width, height),
				"got", fmt.Sprintf("%dx%d", fb.width, fb.height))
			c.ForceClean(fb)
			continue
		}
		fb.Lock("cache_fetch")
		return fb, nil
	}

	fb, err := NewFramebuffer(c.ctx, width, height, onlyTexture, attrs)
	if err != nil {
		return nil, err
	}
	c.register(key, fb)
	fb.Lock("cache_fetch")
	return fb, nil
}

// register inserts a framebuffer into both cache maps.
func (c *FramebufferCache) register(key string, fb *Framebuffer) {
	fb.cached = true
	fb.bucketKey = key
	fb.fullHash = fullHash(key, fb)
	c.framebuffers[fb.fullHash] = fb
	c.buckets[key] = append(c.buckets[key], fb.fullHash)
}

// Return applies the bucket retention policy to a framebuffer whose
// retain count has reached zero: if its bucket holds more entries than
// MaxBucketSize, the framebuffer is removed from the cache and destroyed.
// Framebuffers with a nonzero retain count are left untouched.
func (c *FramebufferCache) Return(fb *Framebuffer) {
	if fb == nil || !fb.cached || fb.destroyed || fb.retainCount != 0 {
		return
	}
	if len(c.buckets[fb.bucketKey]) <= c.MaxBucketSize {
		return
	}
	c.remove(fb)
	fb.destroy()
}

// ForceClean unconditionally evicts a framebuffer, bypassing retain-count
// checks. Used when a stale cache entry can no longer serve its bucket.
func (c *FramebufferCache) ForceClean(fb *Framebuffer) {
	if fb == nil || fb.destroyed {
		return
	}
	c.remove(fb)
	fb.destroy()
}

// remove deletes a framebuffer from both cache maps.
func (c *FramebufferCache) remove(fb *Framebuffer) {
	if !fb.cached {
		return
	}
	delete(c.framebuffers, fb.fullHash)
	members := c.buckets[fb.bucketKey]
	for i, hash := range members {
		if hash == fb.fullHash {
			c.buckets[fb.bucketKey] = append(members[:i], members[i+1:]...)
			break
		}
	}
	if len(c.buckets[fb.bucketKey]) == 0 {
		delete(c.buckets, fb.bucketKey)
	}
	fb.cached = false
}

// Contains reports whether fb is currently registered with the cache.
func (c *FramebufferCache) Contains(fb *Framebuffer) bool {
	if fb == nil || !fb.cached {
		return false
	}
	_, ok := c.framebuffers[fb.fullHash]
	return ok
}

// BucketLen reports how many framebuffers the bucket for the given shape
// currently holds.
func (c *FramebufferCache) BucketLen(width, height int, onlyTexture bool, attrs TextureAttributes) int {
	return len(c.buckets[bucketKey(width, height, attrs, onlyTexture)])
}

// Len reports the total number of cached framebuffers.
func (c *FramebufferCache) Len() int {
	return len(c.framebuffers)
}

// Purge destroys every cached framebuffer unconditionally. Called at
// Context teardown or explicit flush points, never during steady-state
// rendering.
func (c *FramebufferCache) Purge() {
	for _, fb := range c.framebuffers {
		fb.cached = false
		fb.destroy()
	}
	c.framebuffers = make(map[string]*Framebuffer)
	c.buckets = make(map[string][]string)
}
