// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import the Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/fx/driver"
)

func init() {
	driver.Register("wgpu", 100, func(opts driver.Options) (driver.Device, error) {
		return New(opts)
	}, available)
}

func available() bool {
	_, ok := hal.GetBackend(gputypes.BackendVulkan)
	return ok
}

// halProvider is the duck-typed escape hatch a host exposes to share its
// HAL device and queue. gogpu application windows implement it.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// Device implements driver.Device over hal.Device.
//
// Not safe for concurrent use; the graph runtime serializes all calls
// onto the context's dispatch queue.
type Device struct {
	instance hal.Instance // nil when adopting a shared device
	dev      hal.Device
	queue    hal.Queue
	owned    bool

	// surfaceFormat is the host's swapchain format when a
	// gpucontext.DeviceProvider was supplied, used for draws that target
	// the default framebuffer.
	surfaceFormat gputypes.TextureFormat

	nextID       uint32
	textures     map[driver.TextureID]*texture
	framebuffers map[driver.FramebufferID]driver.TextureID
	buffers      map[driver.BufferID]*buffer
	programs     map[driver.ProgramID]*program
	current      driver.ProgramID
}

var _ driver.Device = (*Device)(nil)

// New creates a Device. With a provider in opts the host's device and
// queue are adopted; otherwise a dedicated Vulkan instance is opened.
func New(opts driver.Options) (*Device, error) {
	d := &Device{
		surfaceFormat: gputypes.TextureFormatBGRA8Unorm,
		textures:      make(map[driver.TextureID]*texture),
		framebuffers:  make(map[driver.FramebufferID]driver.TextureID),
		buffers:       make(map[driver.BufferID]*buffer),
		programs:      make(map[driver.ProgramID]*program),
	}
	if opts.Provider != nil {
		if err := d.adoptDevice(opts.Provider); err != nil {
			return nil, err
		}
		return d, nil
	}
	if err := d.openDevice(); err != nil {
		return nil, err
	}
	return d, nil
}

// adoptDevice takes the host's hal.Device and hal.Queue from a provider
// without assuming ownership.
func (d *Device) adoptDevice(provider any) error {
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("wgpu: provider does not expose HAL types")
	}
	dev, ok := hp.HalDevice().(hal.Device)
	if !ok || dev == nil {
		return fmt.Errorf("wgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("wgpu: provider HalQueue is not hal.Queue")
	}
	d.dev = dev
	d.queue = queue
	d.owned = false
	if dp, ok := provider.(gpucontext.DeviceProvider); ok {
		d.surfaceFormat = dp.SurfaceFormat()
	}
	return nil
}

// openDevice creates a dedicated instance, adapter and device.
func (d *Device) openDevice() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("wgpu: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("wgpu: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return fmt.Errorf("wgpu: no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return fmt.Errorf("wgpu: open device: %w", err)
	}
	d.instance = instance
	d.dev = openDev.Device
	d.queue = openDev.Queue
	d.owned = true
	return nil
}

// UseProgram makes a program current. The HAL has no global program
// state; this is bookkeeping for the runtime's drift detection.
func (d *Device) UseProgram(id driver.ProgramID) {
	d.current = id
}

// CurrentProgram reports the program made current by UseProgram.
func (d *Device) CurrentProgram() driver.ProgramID {
	return d.current
}

// Release destroys all tracked resources and, when the device is owned,
// the device and instance themselves.
func (d *Device) Release() {
	for id, p := range d.programs {
		d.destroyProgram(p)
		delete(d.programs, id)
	}
	for id, b := range d.buffers {
		d.dev.DestroyBuffer(b.buf)
		delete(d.buffers, id)
	}
	for id := range d.framebuffers {
		delete(d.framebuffers, id)
	}
	for id, t := range d.textures {
		d.destroyTexture(t)
		delete(d.textures, id)
	}
	if d.owned {
		if d.dev != nil {
			d.dev.Destroy()
		}
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	d.dev = nil
	d.queue = nil
	d.instance = nil
}
