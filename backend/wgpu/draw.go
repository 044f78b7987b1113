// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/fx/driver"
)

// gpuTimeout bounds fence waits so a wedged driver fails loudly instead
// of hanging the render queue.
const gpuTimeout = 5 * time.Second

const quadIndexCount = 6

// Draw executes one full-screen quad pass into the command's target
// framebuffer and blocks until the GPU has finished it.
func (d *Device) Draw(cmd driver.DrawCommand) error {
	p, ok := d.programs[cmd.Program]
	if !ok {
		return fmt.Errorf("wgpu: draw with unknown program %d", cmd.Program)
	}
	texID, ok := d.framebuffers[cmd.Target]
	if !ok {
		return fmt.Errorf("wgpu: draw to unknown framebuffer %d", cmd.Target)
	}
	target := d.textures[texID]
	vbo, ok := d.buffers[cmd.Vertices]
	if !ok {
		return fmt.Errorf("wgpu: draw with unknown vertex buffer %d", cmd.Vertices)
	}
	ibo, ok := d.buffers[cmd.Indices]
	if !ok {
		return fmt.Errorf("wgpu: draw with unknown index buffer %d", cmd.Indices)
	}

	key := pipelineKey{
		inputs:      len(cmd.Inputs),
		hasUniforms: len(cmd.Uniforms) > 0,
		format:      target.desc.Format,
	}
	variant, err := d.variant(p, key)
	if err != nil {
		return err
	}

	entries := make([]gputypes.BindGroupEntry, 0, 2*len(cmd.Inputs)+1)
	for i, in := range cmd.Inputs {
		t, ok := d.textures[in.Texture]
		if !ok {
			return fmt.Errorf("wgpu: draw with unknown input texture %d", in.Texture)
		}
		//nolint:gosec // G115: input counts are tiny
		entries = append(entries,
			gputypes.BindGroupEntry{
				Binding:  uint32(2 * i),
				Resource: gputypes.TextureViewBinding{TextureView: t.view.NativeHandle()},
			},
			gputypes.BindGroupEntry{
				Binding:  uint32(2*i + 1),
				Resource: gputypes.SamplerBinding{Sampler: t.sampler.NativeHandle()},
			})
	}

	var uniformBuf hal.Buffer
	if len(cmd.Uniforms) > 0 {
		data := packUniforms(cmd.Uniforms)
		uniformBuf, err = d.dev.CreateBuffer(&hal.BufferDescriptor{
			Label: "fx_uniforms",
			Size:  uint64(len(data)),
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("wgpu: create uniform buffer: %w", err)
		}
		defer d.dev.DestroyBuffer(uniformBuf)
		d.queue.WriteBuffer(uniformBuf, 0, data)
		//nolint:gosec // G115: input counts are tiny
		entries = append(entries, gputypes.BindGroupEntry{
			Binding: uint32(2 * len(cmd.Inputs)),
			Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: uint64(len(data)),
			},
		})
	}

	bindGroup, err := d.dev.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "fx_bind",
		Layout:  variant.bindLayout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create bind group: %w", err)
	}
	defer d.dev.DestroyBindGroup(bindGroup)

	encoder, err := d.dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "fx_encoder"})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("fx_draw"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "fx_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    target.view,
			LoadOp:  gputypes.LoadOpClear,
			StoreOp: gputypes.StoreOpStore,
			ClearValue: gputypes.Color{
				R: float64(cmd.ClearColor[0]),
				G: float64(cmd.ClearColor[1]),
				B: float64(cmd.ClearColor[2]),
				A: float64(cmd.ClearColor[3]),
			},
		}},
	})
	rp.SetPipeline(variant.pipeline)
	rp.SetBindGroup(0, bindGroup, nil)
	rp.SetVertexBuffer(0, vbo.buf, 0)
	for i, in := range cmd.Inputs {
		//nolint:gosec // G115: offsets are small positive constants
		rp.SetVertexBuffer(uint32(i+1), vbo.buf, uint64(in.TexcoordOffset))
	}
	rp.SetIndexBuffer(ibo.buf, gputypes.IndexFormatUint16, 0)
	rp.DrawIndexed(quadIndexCount, 1, 0, 0, 0)
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer d.dev.FreeCommandBuffer(cmdBuf)

	return d.submitAndWait(cmdBuf)
}

// ReadPixels blocks until all submitted work has finished and returns
// the framebuffer contents as tightly packed RGBA bytes.
func (d *Device) ReadPixels(fb driver.FramebufferID, width, height int) ([]byte, error) {
	texID, ok := d.framebuffers[fb]
	if !ok {
		return nil, fmt.Errorf("wgpu: read from unknown framebuffer %d", fb)
	}
	target := d.textures[texID]
	if width != target.desc.Width || height != target.desc.Height {
		return nil, fmt.Errorf("wgpu: read %dx%d from %dx%d framebuffer", width, height, target.desc.Width, target.desc.Height)
	}

	//nolint:gosec // G115: dimensions match the validated texture
	w, h := uint32(width), uint32(height)

	// WebGPU (and DX12) require BytesPerRow aligned to 256 bytes.
	bytesPerRow := w * 4
	const copyPitchAlignment = 256
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	stagingBuf, err := d.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "fx_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	defer d.dev.DestroyBuffer(stagingBuf)

	encoder, err := d.dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "fx_readback_encoder"})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("fx_readback"); err != nil {
		return nil, fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	// The render pass left the texture in attachment layout;
	// CopyTextureToBuffer requires transfer-source. No-op on backends
	// without explicit layouts.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: target.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	encoder.CopyTextureToBuffer(target.tex, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: target.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: target.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer d.dev.FreeCommandBuffer(cmdBuf)

	if err := d.submitAndWait(cmdBuf); err != nil {
		return nil, err
	}

	readback := make([]byte, stagingSize)
	if err := d.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return nil, fmt.Errorf("wgpu: readback: %w", err)
	}

	if alignedBytesPerRow == bytesPerRow {
		return readback[:uint64(bytesPerRow)*uint64(h)], nil
	}
	// Strip per-row padding.
	tight := make([]byte, uint64(bytesPerRow)*uint64(h))
	for row := uint32(0); row < h; row++ {
		srcOff := int(row) * int(alignedBytesPerRow)
		dstOff := int(row) * int(bytesPerRow)
		copy(tight[dstOff:dstOff+int(bytesPerRow)], readback[srcOff:srcOff+int(bytesPerRow)])
	}
	return tight, nil
}

func (d *Device) submitAndWait(cmdBuf hal.CommandBuffer) error {
	fence, err := d.dev.CreateFence()
	if err != nil {
		return fmt.Errorf("wgpu: create fence: %w", err)
	}
	defer d.dev.DestroyFence(fence)

	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	ok, err := d.dev.Wait(fence, 1, gpuTimeout)
	if err != nil || !ok {
		return fmt.Errorf("wgpu: wait for GPU: ok=%v err=%w", ok, err)
	}
	return nil
}
