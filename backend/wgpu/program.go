// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/fx/driver"
)

// Shader binding convention shared with the filter WGSL modules: for a
// program with N inputs, binding 2i is input i's texture_2d, binding
// 2i+1 its sampler, and binding 2N (present only when the draw carries
// uniforms) the Params uniform buffer. All bindings live in group 0.
//
// Uniform structs pack fields in ascending name order with scalar
// values aligned to 4 bytes, vec2 to 8, vec3/vec4/mat4 to 16, and the
// whole struct padded to a 16-byte multiple.

// program is a compiled shader module plus lazily built render
// pipeline variants, keyed by input count, uniform presence and target
// format.
type program struct {
	module   hal.ShaderModule
	source   string
	variants map[pipelineKey]*pipelineVariant
}

type pipelineKey struct {
	inputs      int
	hasUniforms bool
	format      gputypes.TextureFormat
}

type pipelineVariant struct {
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
}

// compileWGSL compiles WGSL to SPIR-V words for the HAL shader module.
func compileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// CreateProgram compiles a WGSL module with vs_main and fs_main entry
// points. Pipeline variants are built on first use at draw time.
func (d *Device) CreateProgram(source string) (driver.ProgramID, error) {
	words, err := compileWGSL(source)
	if err != nil {
		return 0, fmt.Errorf("wgpu: %w", err)
	}
	module, err := d.dev.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "fx_filter",
		Source: hal.ShaderSource{SPIRV: words},
	})
	if err != nil {
		return 0, fmt.Errorf("wgpu: create shader module: %w", err)
	}
	id := driver.ProgramID(d.allocID())
	d.programs[id] = &program{
		module:   module,
		source:   source,
		variants: make(map[pipelineKey]*pipelineVariant),
	}
	return id, nil
}

// DeleteProgram releases the module and all pipeline variants.
func (d *Device) DeleteProgram(id driver.ProgramID) {
	p, ok := d.programs[id]
	if !ok {
		return
	}
	d.destroyProgram(p)
	delete(d.programs, id)
	if d.current == id {
		d.current = 0
	}
}

func (d *Device) destroyProgram(p *program) {
	for _, v := range p.variants {
		if v.pipeline != nil {
			d.dev.DestroyRenderPipeline(v.pipeline)
		}
		if v.pipeLayout != nil {
			d.dev.DestroyPipelineLayout(v.pipeLayout)
		}
		if v.bindLayout != nil {
			d.dev.DestroyBindGroupLayout(v.bindLayout)
		}
	}
	if p.module != nil {
		d.dev.DestroyShaderModule(p.module)
	}
}

// variant returns the pipeline for the given draw shape, building it on
// first use.
func (d *Device) variant(p *program, key pipelineKey) (*pipelineVariant, error) {
	if v, ok := p.variants[key]; ok {
		return v, nil
	}

	entries := make([]gputypes.BindGroupLayoutEntry, 0, 2*key.inputs+1)
	for i := 0; i < key.inputs; i++ {
		//nolint:gosec // G115: input counts are tiny
		entries = append(entries,
			gputypes.BindGroupLayoutEntry{
				Binding:    uint32(2 * i),
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			gputypes.BindGroupLayoutEntry{
				Binding:    uint32(2*i + 1),
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			})
	}
	if key.hasUniforms {
		//nolint:gosec // G115: input counts are tiny
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    uint32(2 * key.inputs),
			Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		})
	}

	bindLayout, err := d.dev.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "fx_bind_layout",
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create bind group layout: %w", err)
	}

	pipeLayout, err := d.dev.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "fx_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		d.dev.DestroyBindGroupLayout(bindLayout)
		return nil, fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}

	pipeline, err := d.dev.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "fx_pipeline",
		Layout: pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.module,
			EntryPoint: "vs_main",
			Buffers:    quadVertexLayout(key.inputs),
		},
		Fragment: &hal.FragmentState{
			Module:     p.module,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{{
				Format:    key.format,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		d.dev.DestroyPipelineLayout(pipeLayout)
		d.dev.DestroyBindGroupLayout(bindLayout)
		return nil, fmt.Errorf("wgpu: create render pipeline: %w", err)
	}

	v := &pipelineVariant{bindLayout: bindLayout, pipeLayout: pipeLayout, pipeline: pipeline}
	p.variants[key] = v
	return v, nil
}

// quadVertexLayout describes the vertex inputs: slot 0 carries the quad
// positions, slots 1..N one texcoord attribute per input. All slots
// read vec2<f32> pairs from the shared geometry buffer at per-slot
// offsets, so each input can use its own rotation variant.
func quadVertexLayout(inputs int) []gputypes.VertexBufferLayout {
	layouts := make([]gputypes.VertexBufferLayout, 0, inputs+1)
	layouts = append(layouts, gputypes.VertexBufferLayout{
		ArrayStride: 8,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
		},
	})
	for i := 0; i < inputs; i++ {
		//nolint:gosec // G115: input counts are tiny
		layouts = append(layouts, gputypes.VertexBufferLayout{
			ArrayStride: 8,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: uint32(i + 1)},
			},
		})
	}
	return layouts
}

func uniformAlign(n int) int {
	switch {
	case n <= 1:
		return 4
	case n == 2:
		return 8
	default:
		return 16
	}
}

// packUniforms flattens uniform values into the struct layout described
// at the top of this file.
func packUniforms(uniforms map[string][]float32) []byte {
	names := make([]string, 0, len(uniforms))
	for name := range uniforms {
		names = append(names, name)
	}
	sort.Strings(names)

	var data []byte
	for _, name := range names {
		vals := uniforms[name]
		align := uniformAlign(len(vals))
		for len(data)%align != 0 {
			data = append(data, 0)
		}
		for _, v := range vals {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(v))
		}
	}
	for len(data)%16 != 0 {
		data = append(data, 0)
	}
	return data
}
