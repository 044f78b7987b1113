// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/gogpu/fx/dispatch"
	"github.com/gogpu/fx/driver"
	"github.com/gogpu/fx/internal/cache"
)

// RotationVariantCount is the number of rotation variants the shared quad
// geometry carries: one texcoord set and one index buffer per variant.
const RotationVariantCount = 8

// defaultProgramCacheSize bounds the per-context compiled program cache.
const defaultProgramCacheSize = 64

// ContextOptions configures Context creation.
type ContextOptions struct {
	// Runner serializes device access for this context. Nil means the
	// caller manages threading itself (closures execute inline).
	Runner dispatch.Runner

	// MaxBucketSize overrides the framebuffer cache's per-bucket
	// retention bound. Zero means DefaultMaxBucketSize.
	MaxBucketSize int

	// ProgramCacheSize overrides the compiled program cache soft limit.
	// Zero means the default.
	ProgramCacheSize int

	// OwnsDevice makes Context.Destroy release the device. Leave false
	// when the device is shared with the host application.
	OwnsDevice bool
}

// Context owns the GPU-side state shared by every node of one filter
// graph: the device, the framebuffer cache, the compiled program cache,
// the quad geometry shared by all filters, and the capture escape hatch.
//
// A Context must only be touched from its owning thread; use the Runner
// to marshal work there.
type Context struct {
	device driver.Device
	runner dispatch.Runner

	fbCache  *FramebufferCache
	programs *cache.Cache[string, *Program]

	activeProgram *Program

	// liveFramebuffers tracks every not-yet-destroyed framebuffer created
	// against this context, cached or not. The alias-safe destroy path
	// scans it before releasing device handles.
	liveFramebuffers []*Framebuffer

	quadVBO       driver.BufferID
	indexBuffers  [RotationVariantCount]driver.BufferID
	geometryReady bool

	captureTarget any
	captureWidth  int
	captureHeight int
	capturedData  []byte

	ownsDevice bool
	destroyed  bool
}

// NewContext creates a Context over a backend device.
func NewContext(device driver.Device, opts ContextOptions) (*Context, error) {
	if device == nil {
		return nil, errors.New("render: nil device")
	}
	runner := opts.Runner
	if runner == nil {
		runner = dispatch.Inline{}
	}
	c := &Context{
		device:     device,
		runner:     runner,
		ownsDevice: opts.OwnsDevice,
	}
	c.fbCache = NewFramebufferCache(c)
	if opts.MaxBucketSize > 0 {
		c.fbCache.MaxBucketSize = opts.MaxBucketSize
	}
	size := opts.ProgramCacheSize
	if size <= 0 {
		size = defaultProgramCacheSize
	}
	c.programs = cache.New[string, *Program](size, func(_ string, p *Program) {
		device.DeleteProgram(p.id)
	})
	return c, nil
}

// Device returns the backend device.
func (c *Context) Device() driver.Device { return c.device }

// Runner returns the runner that serializes work onto this context's
// owning thread.
func (c *Context) Runner() dispatch.Runner { return c.runner }

// FramebufferCache returns the cache shared by all filters in this
// context; framebuffer reuse happens across the whole graph.
func (c *Context) FramebufferCache() *FramebufferCache { return c.fbCache }

func (c *Context) registerFramebuffer(fb *Framebuffer) {
	c.liveFramebuffers = append(c.liveFramebuffers, fb)
}

func (c *Context) unregisterFramebuffer(fb *Framebuffer) {
	for i, other := range c.liveFramebuffers {
		if other == fb {
			c.liveFramebuffers = append(c.liveFramebuffers[:i], c.liveFramebuffers[i+1:]...)
			return
		}
	}
}

// LiveFramebuffers reports the number of framebuffers created against
// this context that have not been destroyed.
func (c *Context) LiveFramebuffers() int { return len(c.liveFramebuffers) }

// quad positions in clip space, shared by every rotation variant.
var quadPositions = [8]float32{
	-1, -1,
	1, -1,
	-1, 1,
	1, 1,
}

// texcoordVariants holds one texture coordinate set per rotation variant,
// in the same vertex order as quadPositions. The variant index matches
// pipeline.RotationMode values.
var texcoordVariants = [RotationVariantCount][8]float32{
	{0, 0, 1, 0, 0, 1, 1, 1}, // no rotation
	{1, 0, 1, 1, 0, 0, 0, 1}, // rotate left
	{0, 1, 0, 0, 1, 1, 1, 0}, // rotate right
	{0, 1, 1, 1, 0, 0, 1, 0}, // flip vertical
	{1, 0, 0, 0, 1, 1, 0, 1}, // flip horizontal
	{0, 0, 0, 1, 1, 0, 1, 1}, // rotate right + flip vertical
	{1, 1, 1, 0, 0, 1, 0, 0}, // rotate right + flip horizontal
	{1, 1, 0, 1, 1, 0, 0, 0}, // rotate 180
}

// texcoordBytes is the byte size of one texcoord set in the shared VBO.
const texcoordBytes = 8 * 4

// EnsureQuadGeometry lazily creates the shared quad VBO (positions plus
// all rotation-variant texcoord sets) and the per-variant index buffers.
// Called once per context, from the first filter draw.
func (c *Context) EnsureQuadGeometry() error {
	if c.geometryReady {
		return nil
	}

	data := make([]byte, 0, (8+RotationVariantCount*8)*4)
	putF32 := func(vals []float32) {
		for _, v := range vals {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(v))
		}
	}
	putF32(quadPositions[:])
	for i := range texcoordVariants {
		putF32(texcoordVariants[i][:])
	}

	vbo, err := c.device.CreateBuffer(driver.VertexBuffer, data)
	if err != nil {
		return fmt.Errorf("render: create quad vertex buffer: %w", err)
	}
	c.quadVBO = vbo

	// Two triangles covering the quad, uint16 little-endian.
	indices := []byte{0, 0, 1, 0, 2, 0, 2, 0, 1, 0, 3, 0}
	for i := range c.indexBuffers {
		ibo, err := c.device.CreateBuffer(driver.IndexBuffer, indices)
		if err != nil {
			return fmt.Errorf("render: create quad index buffer %d: %w", i, err)
		}
		c.indexBuffers[i] = ibo
	}

	c.geometryReady = true
	return nil
}

// QuadVertexBuffer returns the shared quad VBO handle.
// EnsureQuadGeometry must have succeeded first.
func (c *Context) QuadVertexBuffer() driver.BufferID { return c.quadVBO }

// QuadIndexBuffer returns the index buffer for a rotation variant.
func (c *Context) QuadIndexBuffer(variant int) driver.BufferID {
	return c.indexBuffers[variant%RotationVariantCount]
}

// TexcoordOffset returns the byte offset of a rotation variant's texcoord
// set within the shared quad VBO.
func (c *Context) TexcoordOffset(variant int) int {
	return len(quadPositions)*4 + (variant%RotationVariantCount)*texcoordBytes
}

// RequestCapture arms the synchronous frame readback escape hatch: when
// the designated target (compared by identity) next renders, it renders
// at width x height and reads the pixels back into the context.
func (c *Context) RequestCapture(target any, width, height int) {
	c.captureTarget = target
	c.captureWidth = width
	c.captureHeight = height
	c.capturedData = nil
}

// CaptureRequest reports the armed capture target and dimensions.
func (c *Context) CaptureRequest() (target any, width, height int, armed bool) {
	return c.captureTarget, c.captureWidth, c.captureHeight, c.captureTarget != nil
}

// FinishCapture stores the captured pixels and disarms the request.
func (c *Context) FinishCapture(data []byte) {
	c.capturedData = data
	c.captureTarget = nil
}

// CapturedFrameData returns the most recent synchronously captured frame,
// or nil if no capture has completed.
func (c *Context) CapturedFrameData() []byte { return c.capturedData }

// Destroy tears the context down: compiled programs first (their device
// handles are released through the program cache eviction callback), then
// every cached framebuffer, then any remaining live framebuffers and the
// shared geometry. The device is released last, and only if the context
// owns it.
func (c *Context) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true

	c.programs.Clear()
	c.activeProgram = nil

	c.fbCache.Purge()
	for len(c.liveFramebuffers) > 0 {
		c.liveFramebuffers[0].destroy()
	}

	if c.geometryReady {
		c.device.DeleteBuffer(c.quadVBO)
		for _, ibo := range c.indexBuffers {
			c.device.DeleteBuffer(ibo)
		}
		c.geometryReady = false
	}

	if c.ownsDevice {
		c.device.Release()
	}
}

// Context registry: named contexts for applications that run several
// independent graphs (for example a display graph and an offline export
// graph). There is no implicit default; keys are explicit.

var registry = struct {
	mu sync.Mutex
	m  map[string]*Context
}{m: make(map[string]*Context)}

// InitContext creates a context and registers it under key, destroying
// and replacing any previous context with the same key.
func InitContext(key string, device driver.Device, opts ContextOptions) (*Context, error) {
	ctx, err := NewContext(device, opts)
	if err != nil {
		return nil, err
	}
	registry.mu.Lock()
	prev := registry.m[key]
	registry.m[key] = ctx
	registry.mu.Unlock()
	if prev != nil {
		prev.Destroy()
	}
	return ctx, nil
}

// GetContext returns the context registered under key.
func GetContext(key string) (*Context, bool) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	ctx, ok := registry.m[key]
	return ctx, ok
}

// DestroyContext destroys and unregisters the context under key.
func DestroyContext(key string) {
	registry.mu.Lock()
	ctx := registry.m[key]
	delete(registry.m, key)
	registry.mu.Unlock()
	if ctx != nil {
		ctx.Destroy()
	}
}
