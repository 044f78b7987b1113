// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"fmt"

	"github.com/gogpu/fx"
	"github.com/gogpu/fx/driver"
)

// Framebuffer wraps one device texture plus an optional render target.
//
// Framebuffers are normally obtained from the Context's FramebufferCache,
// which returns them locked (retain count 1). Every consumer that holds a
// framebuffer across a frame locks it; matching unlocks return it to the
// pool. Direct construction with NewFramebuffer is possible for
// framebuffers that should not participate in pooling.
type Framebuffer struct {
	ctx *Context

	width  int
	height int
	attrs  TextureAttributes

	// onlyTexture framebuffers carry no render target and can only be
	// sampled, not drawn into (used for externally uploaded frames).
	onlyTexture bool

	texture driver.TextureID
	fbo     driver.FramebufferID

	retainCount int
	lockKey     string

	// cached is set once the framebuffer is registered with the cache;
	// zero-retain cached framebuffers are subject to the bucket eviction
	// policy.
	cached    bool
	bucketKey string
	fullHash  string

	destroyed bool
}

// NewFramebuffer allocates a framebuffer of exactly width x height.
// The returned framebuffer is unlocked and not cached.
func NewFramebuffer(ctx *Context, width, height int, onlyTexture bool, attrs TextureAttributes) (*Framebuffer, error) {
	if ctx == nil {
		return nil, fmt.Errorf("render: nil context")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("render: invalid framebuffer size %dx%d", width, height)
	}

	tex, err := ctx.device.CreateTexture(driver.TextureDescriptor{
		Label:        fmt.Sprintf("fx_fb_%dx%d", width, height),
		Width:        width,
		Height:       height,
		Format:       attrs.Format,
		MinFilter:    attrs.MinFilter,
		MagFilter:    attrs.MagFilter,
		WrapS:        attrs.WrapS,
		WrapT:        attrs.WrapT,
		RenderTarget: !onlyTexture,
	})
	if err != nil {
		return nil, fmt.Errorf("render: create texture: %w", err)
	}

	fb := &Framebuffer{
		ctx:         ctx,
		width:       width,
		height:      height,
		attrs:       attrs,
		onlyTexture: onlyTexture,
		texture:     tex,
	}

	if !onlyTexture {
		fbo, err := ctx.device.CreateFramebuffer(tex)
		if err != nil {
			ctx.device.DeleteTexture(tex)
			return nil, fmt.Errorf("render: create framebuffer: %w", err)
		}
		fb.fbo = fbo
	}

	ctx.registerFramebuffer(fb)
	return fb, nil
}

// Width returns the framebuffer width in pixels.
func (f *Framebuffer) Width() int { return f.width }

// Height returns the framebuffer height in pixels.
func (f *Framebuffer) Height() int { return f.height }

// Attributes returns the texture attributes.
func (f *Framebuffer) Attributes() TextureAttributes { return f.attrs }

// OnlyTexture reports whether the framebuffer has no render target.
func (f *Framebuffer) OnlyTexture() bool { return f.onlyTexture }

// Texture returns the device texture handle.
func (f *Framebuffer) Texture() driver.TextureID { return f.texture }

// Target returns the device render target handle, or zero for
// texture-only framebuffers.
func (f *Framebuffer) Target() driver.FramebufferID { return f.fbo }

// RetainCount returns the current pooling retain count.
func (f *Framebuffer) RetainCount() int { return f.retainCount }

// Destroyed reports whether the framebuffer's device resources have been
// released. Destroyed framebuffers short-circuit Lock/Unlock.
func (f *Framebuffer) Destroyed() bool { return f.destroyed }

// Lock increments the retain count, marking the framebuffer as in use.
// key identifies the locking site for double-lock diagnostics.
func (f *Framebuffer) Lock(key string) {
	if f.destroyed {
		return
	}
	if f.retainCount > 0 && key != "" && key == f.lockKey {
		fx.Logger().Warn("framebuffer locked twice by the same holder",
			"key", key, "retain", f.retainCount)
	}
	f.lockKey = key
	f.retainCount++
}

// Unlock decrements the retain count. At zero the framebuffer becomes
// available for cache reuse; an over-full bucket may evict it.
func (f *Framebuffer) Unlock() {
	if f.destroyed {
		return
	}
	if f.retainCount == 0 {
		fx.Logger().Warn("framebuffer unlock without matching lock",
			"key", f.lockKey)
		return
	}
	f.retainCount--
	if f.retainCount == 0 {
		f.lockKey = ""
		if f.cached {
			f.ctx.FramebufferCache().Return(f)
		}
	}
}

// Upload replaces the framebuffer's texture contents with tightly packed
// RGBA pixels sized exactly to the framebuffer.
func (f *Framebuffer) Upload(pixels []byte) error {
	if f.destroyed {
		return fmt.Errorf("render: upload to destroyed framebuffer")
	}
	if len(pixels) != f.width*f.height*4 {
		return fmt.Errorf("render: pixel length %d does not match %dx%d",
			len(pixels), f.width, f.height)
	}
	return f.ctx.device.UploadTexture(f.texture, pixels, f.width, f.height)
}

// destroy releases the framebuffer's device resources. The texture and
// render target handles may be aliased by other live framebuffers after
// reuse cycles; each handle is deleted only when no other live
// framebuffer in the owning Context references it.
func (f *Framebuffer) destroy() {
	if f.destroyed {
		return
	}
	f.destroyed = true
	f.ctx.unregisterFramebuffer(f)

	textureAliased := false
	targetAliased := false
	for _, other := range f.ctx.liveFramebuffers {
		if other.texture == f.texture {
			textureAliased = true
		}
		if f.fbo != 0 && other.fbo == f.fbo {
			targetAliased = true
		}
	}
	if f.fbo != 0 && !targetAliased {
		f.ctx.device.DeleteFramebuffer(f.fbo)
	}
	if !textureAliased {
		f.ctx.device.DeleteTexture(f.texture)
	}
}
