// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package driver

import (
	"github.com/gogpu/gputypes"
)

// TextureID identifies a device texture. The zero value is "no texture".
type TextureID uint32

// FramebufferID identifies a render target attached to a texture.
// The zero value means "texture-only, no render target".
type FramebufferID uint32

// ProgramID identifies a compiled shader program.
// The zero value is "no program".
type ProgramID uint32

// BufferID identifies a device geometry buffer (vertex or index data).
type BufferID uint32

// FilterMode selects texture minification/magnification filtering.
type FilterMode uint8

const (
	FilterLinear FilterMode = iota
	FilterNearest
)

// WrapMode selects texture coordinate wrapping.
type WrapMode uint8

const (
	WrapClampToEdge WrapMode = iota
	WrapRepeat
	WrapMirroredRepeat
)

// TextureDescriptor describes parameters for creating a texture.
//
// Width and Height are in pixels. Format uses the shared gputypes enum so
// descriptors interoperate with the wider gogpu ecosystem.
type TextureDescriptor struct {
	// Label is an optional debug label for the texture.
	Label string

	Width  int
	Height int

	Format gputypes.TextureFormat

	MinFilter FilterMode
	MagFilter FilterMode
	WrapS     WrapMode
	WrapT     WrapMode

	// RenderTarget requests usage as a color attachment in addition to
	// sampling. Texture-only framebuffers leave this false.
	RenderTarget bool
}

// BufferKind distinguishes vertex from index buffers.
type BufferKind uint8

const (
	VertexBuffer BufferKind = iota
	IndexBuffer
)

// TextureBinding binds one input texture to a texture unit for a draw.
type TextureBinding struct {
	// Texture is the texture to sample.
	Texture TextureID

	// Unit is the texture unit index (0-based).
	Unit int

	// Sampler is the uniform name of the sampler for this unit
	// (conventionally "colorMap" for unit 0, "colorMap1" for unit 1, ...).
	Sampler string

	// TexcoordOffset is the byte offset into the draw's vertex buffer at
	// which this input's rotation-variant texture coordinates start.
	TexcoordOffset int
}

// DrawCommand describes one full-screen quad draw: a program, an output
// framebuffer, the shared quad geometry, input textures, and uniforms.
//
// Uniform values are flat float32 slices: length 1 for scalars, 2 for
// vec2, 4 for vec4, 16 for mat4.
type DrawCommand struct {
	Program ProgramID

	// Target is the output framebuffer. Zero draws to the default target.
	Target FramebufferID

	// Width and Height set the viewport.
	Width  int
	Height int

	// ClearColor clears the target before drawing.
	ClearColor [4]float32

	// Vertices holds quad positions followed by all rotation-variant
	// texcoord sets. Indices selects the element buffer for the winning
	// rotation variant.
	Vertices BufferID
	Indices  BufferID

	Inputs   []TextureBinding
	Uniforms map[string][]float32
}

// Device is the capability interface the graph runtime renders through.
//
// Resource lifecycle follows explicit create/delete pairs. Deleting a
// resource that is still referenced by an in-flight draw is undefined
// behavior; the runtime serializes all Device calls onto the thread that
// owns the associated render context, so this cannot happen in practice.
//
// Implementations are not required to be safe for concurrent use.
type Device interface {
	// CreateTexture allocates a texture. Never returns the zero TextureID
	// on success.
	CreateTexture(desc TextureDescriptor) (TextureID, error)

	// DeleteTexture releases a texture. Deleting the zero ID is a no-op.
	DeleteTexture(id TextureID)

	// UploadTexture replaces the full contents of a texture with tightly
	// packed RGBA pixels.
	UploadTexture(id TextureID, pixels []byte, width, height int) error

	// CreateFramebuffer attaches a render target to a texture.
	CreateFramebuffer(tex TextureID) (FramebufferID, error)

	// DeleteFramebuffer releases a render target. The attached texture is
	// not released. Deleting the zero ID is a no-op.
	DeleteFramebuffer(id FramebufferID)

	// CreateProgram compiles and links a shader program from a single
	// WGSL module containing vs_main and fs_main entry points.
	// Compile or link failure returns a nil-equivalent zero ID and an
	// error; the caller treats this as fatal to the filter being built.
	CreateProgram(source string) (ProgramID, error)

	// DeleteProgram releases a program.
	DeleteProgram(id ProgramID)

	// UseProgram makes a program current for subsequent draws.
	UseProgram(id ProgramID)

	// CurrentProgram reports the program the device considers current.
	// Used to detect binding drift caused by external code.
	CurrentProgram() ProgramID

	// CreateBuffer uploads immutable geometry data.
	CreateBuffer(kind BufferKind, data []byte) (BufferID, error)

	// DeleteBuffer releases a geometry buffer.
	DeleteBuffer(id BufferID)

	// Draw executes one full-screen quad pass.
	Draw(cmd DrawCommand) error

	// ReadPixels synchronously reads the full contents of a framebuffer
	// as tightly packed RGBA bytes. This blocks until the GPU has
	// finished all work targeting the framebuffer.
	ReadPixels(fb FramebufferID, width, height int) ([]byte, error)

	// Release frees all device-owned resources. The Device must not be
	// used afterwards.
	Release()
}
