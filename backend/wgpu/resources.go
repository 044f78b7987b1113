// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/fx/driver"
)

// texture bundles the HAL texture with the view and sampler the draw
// path binds. Samplers are per-texture because the filter attributes
// (min/mag filter, wrap) are part of the framebuffer identity.
type texture struct {
	tex     hal.Texture
	view    hal.TextureView
	sampler hal.Sampler
	desc    driver.TextureDescriptor
}

type buffer struct {
	buf  hal.Buffer
	kind driver.BufferKind
	size int
}

func (d *Device) allocID() uint32 {
	d.nextID++
	return d.nextID
}

func filterMode(m driver.FilterMode) gputypes.FilterMode {
	if m == driver.FilterNearest {
		return gputypes.FilterModeNearest
	}
	return gputypes.FilterModeLinear
}

func addressMode(m driver.WrapMode) gputypes.AddressMode {
	switch m {
	case driver.WrapRepeat:
		return gputypes.AddressModeRepeat
	case driver.WrapMirroredRepeat:
		return gputypes.AddressModeMirrorRepeat
	default:
		return gputypes.AddressModeClampToEdge
	}
}

// CreateTexture allocates a sampleable texture, its default view and a
// sampler matching the descriptor's filter attributes.
func (d *Device) CreateTexture(desc driver.TextureDescriptor) (driver.TextureID, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return 0, fmt.Errorf("wgpu: texture size %dx%d", desc.Width, desc.Height)
	}
	format := desc.Format
	if format == 0 {
		format = gputypes.TextureFormatRGBA8Unorm
	}
	usage := gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst
	if desc.RenderTarget {
		usage |= gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc
	}

	//nolint:gosec // G115: dimensions validated above
	tex, err := d.dev.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: uint32(desc.Width), Height: uint32(desc.Height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return 0, fmt.Errorf("wgpu: create texture: %w", err)
	}

	view, err := d.dev.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: desc.Label + "_view",
	})
	if err != nil {
		d.dev.DestroyTexture(tex)
		return 0, fmt.Errorf("wgpu: create texture view: %w", err)
	}

	sampler, err := d.dev.CreateSampler(&hal.SamplerDescriptor{
		Label:        desc.Label + "_sampler",
		AddressModeU: addressMode(desc.WrapS),
		AddressModeV: addressMode(desc.WrapT),
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    filterMode(desc.MagFilter),
		MinFilter:    filterMode(desc.MinFilter),
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		d.dev.DestroyTextureView(view)
		d.dev.DestroyTexture(tex)
		return 0, fmt.Errorf("wgpu: create sampler: %w", err)
	}

	id := driver.TextureID(d.allocID())
	stored := desc
	stored.Format = format
	d.textures[id] = &texture{tex: tex, view: view, sampler: sampler, desc: stored}
	return id, nil
}

// DeleteTexture releases a texture, its view and its sampler.
func (d *Device) DeleteTexture(id driver.TextureID) {
	t, ok := d.textures[id]
	if !ok {
		return
	}
	d.destroyTexture(t)
	delete(d.textures, id)
}

func (d *Device) destroyTexture(t *texture) {
	if t.sampler != nil {
		d.dev.DestroySampler(t.sampler)
	}
	if t.view != nil {
		d.dev.DestroyTextureView(t.view)
	}
	if t.tex != nil {
		d.dev.DestroyTexture(t.tex)
	}
}

// UploadTexture replaces the full texture contents with tightly packed
// RGBA pixels via the queue's write path.
func (d *Device) UploadTexture(id driver.TextureID, pixels []byte, width, height int) error {
	t, ok := d.textures[id]
	if !ok {
		return fmt.Errorf("wgpu: upload to unknown texture %d", id)
	}
	if width != t.desc.Width || height != t.desc.Height {
		return fmt.Errorf("wgpu: upload %dx%d into %dx%d texture", width, height, t.desc.Width, t.desc.Height)
	}
	if len(pixels) != width*height*4 {
		return fmt.Errorf("wgpu: upload needs %d bytes, got %d", width*height*4, len(pixels))
	}
	//nolint:gosec // G115: dimensions match the validated texture
	d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		pixels,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: uint32(width) * 4, RowsPerImage: uint32(height)},
		&hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
	)
	return nil
}

// CreateFramebuffer records a render-target association for a texture.
// The HAL needs no separate framebuffer object; the texture view is the
// attachment.
func (d *Device) CreateFramebuffer(tex driver.TextureID) (driver.FramebufferID, error) {
	t, ok := d.textures[tex]
	if !ok {
		return 0, fmt.Errorf("wgpu: framebuffer for unknown texture %d", tex)
	}
	if !t.desc.RenderTarget {
		return 0, fmt.Errorf("wgpu: texture %d was not created as a render target", tex)
	}
	id := driver.FramebufferID(d.allocID())
	d.framebuffers[id] = tex
	return id, nil
}

// DeleteFramebuffer drops the association. The texture stays alive.
func (d *Device) DeleteFramebuffer(id driver.FramebufferID) {
	delete(d.framebuffers, id)
}

// CreateBuffer uploads immutable vertex or index data.
func (d *Device) CreateBuffer(kind driver.BufferKind, data []byte) (driver.BufferID, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("wgpu: empty buffer")
	}
	usage := gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst
	if kind == driver.IndexBuffer {
		usage = gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst
	}
	buf, err := d.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "fx_geometry",
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return 0, fmt.Errorf("wgpu: create buffer: %w", err)
	}
	d.queue.WriteBuffer(buf, 0, data)
	id := driver.BufferID(d.allocID())
	d.buffers[id] = &buffer{buf: buf, kind: kind, size: len(data)}
	return id, nil
}

// DeleteBuffer releases a geometry buffer.
func (d *Device) DeleteBuffer(id driver.BufferID) {
	b, ok := d.buffers[id]
	if !ok {
		return
	}
	d.dev.DestroyBuffer(b.buf)
	delete(d.buffers, id)
}
