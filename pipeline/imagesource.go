// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"fmt"

	"github.com/gogpu/fx/render"
)

// ImageSource feeds CPU-side RGBA pixel data into the graph. Each pushed
// frame is uploaded into a texture-only framebuffer fetched from the
// context's cache and propagated to the source's targets.
type ImageSource struct {
	Source

	ctx   *render.Context
	attrs render.TextureAttributes
}

// NewImageSource creates an image source on ctx.
func NewImageSource(ctx *render.Context) *ImageSource {
	return &ImageSource{
		ctx:   ctx,
		attrs: render.DefaultTextureAttributes(),
	}
}

// Context returns the source's render context.
func (s *ImageSource) Context() *render.Context { return s.ctx }

// PushRGBA uploads one tightly packed RGBA frame and propagates it at
// frameTime. The rotation metadata set with SetOutputRotation is attached.
func (s *ImageSource) PushRGBA(pixels []byte, width, height int, frameTime float64) error {
	if len(pixels) != width*height*4 {
		return fmt.Errorf("pipeline: pixel length %d does not match %dx%d",
			len(pixels), width, height)
	}

	fb, err := s.ctx.FramebufferCache().Fetch(width, height, true, s.attrs)
	if err != nil {
		return fmt.Errorf("pipeline: fetch upload framebuffer: %w", err)
	}
	if err := fb.Upload(pixels); err != nil {
		fb.Unlock()
		return fmt.Errorf("pipeline: upload frame: %w", err)
	}

	s.SetOutput(fb)
	s.UpdateTargets(frameTime)
	return nil
}
