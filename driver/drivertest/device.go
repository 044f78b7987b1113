// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package drivertest provides an in-memory driver.Device for tests.
//
// The device counts every resource operation so tests can assert on
// allocation and release behavior (for example, that a texture shared by
// two framebuffers is deleted exactly once). Draws are simulated: the
// output framebuffer receives a copy of the first input's pixels when
// available, otherwise the clear color, which is enough to verify graph
// propagation end to end without a GPU.
package drivertest

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gogpu/fx/driver"
)

// CompileFailMarker anywhere in a shader source makes CreateProgram fail.
// Tests use it to exercise the construction-failure path.
const CompileFailMarker = "@compile_fail"

// ErrCompileFailed is returned by CreateProgram for sources containing
// CompileFailMarker.
var ErrCompileFailed = errors.New("drivertest: shader compile failed")

type texture struct {
	desc   driver.TextureDescriptor
	pixels []byte
}

type framebuffer struct {
	tex    driver.TextureID
	pixels []byte
	width  int
	height int
}

// Device is a counting in-memory implementation of driver.Device.
//
// All exported counters are guarded by an internal mutex; tests may read
// them from any goroutine via the accessor methods.
type Device struct {
	mu sync.Mutex

	nextID uint32

	textures     map[driver.TextureID]*texture
	framebuffers map[driver.FramebufferID]*framebuffer
	programs     map[driver.ProgramID]string
	buffers      map[driver.BufferID][]byte

	current driver.ProgramID

	createdTextures int
	deletedTextures map[driver.TextureID]int
	drawCount       int
	released        bool

	// LastDraw records the most recent draw command for inspection.
	LastDraw driver.DrawCommand
}

// New creates an empty test device.
func New() *Device {
	return &Device{
		textures:        make(map[driver.TextureID]*texture),
		framebuffers:    make(map[driver.FramebufferID]*framebuffer),
		programs:        make(map[driver.ProgramID]string),
		buffers:         make(map[driver.BufferID][]byte),
		deletedTextures: make(map[driver.TextureID]int),
	}
}

func (d *Device) nextHandle() uint32 {
	d.nextID++
	return d.nextID
}

// CreateTexture allocates a texture.
func (d *Device) CreateTexture(desc driver.TextureDescriptor) (driver.TextureID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if desc.Width <= 0 || desc.Height <= 0 {
		return 0, fmt.Errorf("drivertest: invalid texture size %dx%d", desc.Width, desc.Height)
	}
	id := driver.TextureID(d.nextHandle())
	d.textures[id] = &texture{desc: desc}
	d.createdTextures++
	return id, nil
}

// DeleteTexture releases a texture and increments its deletion counter.
func (d *Device) DeleteTexture(id driver.TextureID) {
	if id == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.textures, id)
	d.deletedTextures[id]++
}

// UploadTexture stores tightly packed RGBA pixels for a texture.
func (d *Device) UploadTexture(id driver.TextureID, pixels []byte, width, height int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	tex, ok := d.textures[id]
	if !ok {
		return fmt.Errorf("drivertest: upload to unknown texture %d", id)
	}
	if len(pixels) != width*height*4 {
		return fmt.Errorf("drivertest: pixel length %d does not match %dx%d", len(pixels), width, height)
	}
	tex.pixels = append(tex.pixels[:0], pixels...)
	return nil
}

// CreateFramebuffer attaches a render target to a texture.
func (d *Device) CreateFramebuffer(tex driver.TextureID) (driver.FramebufferID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.textures[tex]
	if !ok {
		return 0, fmt.Errorf("drivertest: framebuffer for unknown texture %d", tex)
	}
	id := driver.FramebufferID(d.nextHandle())
	d.framebuffers[id] = &framebuffer{
		tex:    tex,
		width:  t.desc.Width,
		height: t.desc.Height,
	}
	return id, nil
}

// DeleteFramebuffer releases a render target.
func (d *Device) DeleteFramebuffer(id driver.FramebufferID) {
	if id == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.framebuffers, id)
}

// CreateProgram "compiles" a shader source. Sources containing
// CompileFailMarker fail with ErrCompileFailed.
func (d *Device) CreateProgram(source string) (driver.ProgramID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if strings.Contains(source, CompileFailMarker) {
		return 0, ErrCompileFailed
	}
	id := driver.ProgramID(d.nextHandle())
	d.programs[id] = source
	return id, nil
}

// DeleteProgram releases a program.
func (d *Device) DeleteProgram(id driver.ProgramID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.programs, id)
	if d.current == id {
		d.current = 0
	}
}

// UseProgram makes a program current.
func (d *Device) UseProgram(id driver.ProgramID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.current = id
}

// CurrentProgram reports the current program.
func (d *Device) CurrentProgram() driver.ProgramID {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.current
}

// ForceProgram overrides the current program binding without going through
// UseProgram, simulating external code changing device state behind the
// runtime's back.
func (d *Device) ForceProgram(id driver.ProgramID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.current = id
}

// CreateBuffer stores immutable geometry data.
func (d *Device) CreateBuffer(kind driver.BufferKind, data []byte) (driver.BufferID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := driver.BufferID(d.nextHandle())
	d.buffers[id] = append([]byte(nil), data...)
	return id, nil
}

// DeleteBuffer releases a geometry buffer.
func (d *Device) DeleteBuffer(id driver.BufferID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.buffers, id)
}

// Draw simulates a quad pass: the target framebuffer receives the first
// input texture's pixels when present, otherwise a clear-color fill.
func (d *Device) Draw(cmd driver.DrawCommand) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	fb, ok := d.framebuffers[cmd.Target]
	if !ok {
		return fmt.Errorf("drivertest: draw to unknown framebuffer %d", cmd.Target)
	}
	if _, ok := d.programs[cmd.Program]; !ok {
		return fmt.Errorf("drivertest: draw with unknown program %d", cmd.Program)
	}

	d.drawCount++
	d.LastDraw = cmd
	d.current = cmd.Program

	fb.width = cmd.Width
	fb.height = cmd.Height
	size := cmd.Width * cmd.Height * 4
	if cap(fb.pixels) < size {
		fb.pixels = make([]byte, size)
	}
	fb.pixels = fb.pixels[:size]

	if len(cmd.Inputs) > 0 {
		if src, ok := d.textures[cmd.Inputs[0].Texture]; ok && len(src.pixels) == size {
			copy(fb.pixels, src.pixels)
			d.syncAttachedTexture(fb)
			return nil
		}
	}
	c := [4]byte{
		byte(cmd.ClearColor[0] * 255),
		byte(cmd.ClearColor[1] * 255),
		byte(cmd.ClearColor[2] * 255),
		byte(cmd.ClearColor[3] * 255),
	}
	for i := 0; i < size; i += 4 {
		fb.pixels[i+0] = c[0]
		fb.pixels[i+1] = c[1]
		fb.pixels[i+2] = c[2]
		fb.pixels[i+3] = c[3]
	}
	d.syncAttachedTexture(fb)
	return nil
}

// syncAttachedTexture mirrors framebuffer contents into the attached
// texture so that chained draws can sample the previous stage's output.
// Caller must hold d.mu.
func (d *Device) syncAttachedTexture(fb *framebuffer) {
	if tex, ok := d.textures[fb.tex]; ok {
		tex.pixels = append(tex.pixels[:0], fb.pixels...)
	}
}

// ReadPixels returns the simulated framebuffer contents.
func (d *Device) ReadPixels(id driver.FramebufferID, width, height int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	fb, ok := d.framebuffers[id]
	if !ok {
		return nil, fmt.Errorf("drivertest: read from unknown framebuffer %d", id)
	}
	size := width * height * 4
	out := make([]byte, size)
	copy(out, fb.pixels)
	return out, nil
}

// Release marks the device released.
func (d *Device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.released = true
}

// LiveTextures reports the number of textures currently allocated.
func (d *Device) LiveTextures() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.textures)
}

// CreatedTextures reports the total number of textures ever created.
func (d *Device) CreatedTextures() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.createdTextures
}

// DeleteCount reports how many times a specific texture was deleted.
func (d *Device) DeleteCount(id driver.TextureID) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.deletedTextures[id]
}

// DrawCount reports the number of draws executed.
func (d *Device) DrawCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.drawCount
}

// Released reports whether Release has been called.
func (d *Device) Released() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.released
}

// TexturePixels returns a copy of a texture's stored pixels, or nil.
func (d *Device) TexturePixels(id driver.TextureID) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	tex, ok := d.textures[id]
	if !ok || tex.pixels == nil {
		return nil
	}
	return append([]byte(nil), tex.pixels...)
}

var _ driver.Device = (*Device)(nil)
