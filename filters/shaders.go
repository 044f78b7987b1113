// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package filters provides concrete filter nodes built on the fx graph
// core: passthrough, brightness and gaussian blur. Each filter is a thin
// wrapper around pipeline.Filter carrying a WGSL module and its uniform
// wiring; the graph mechanics live entirely in the core.
package filters

// passthroughWGSL samples the single input unchanged.
const passthroughWGSL = `
struct VertexOut {
    @builtin(position) position: vec4<f32>,
    @location(0) texcoord: vec2<f32>,
};

@vertex
fn vs_main(@location(0) position: vec2<f32>,
           @location(1) texcoord: vec2<f32>) -> VertexOut {
    var out: VertexOut;
    out.position = vec4<f32>(position, 0.0, 1.0);
    out.texcoord = texcoord;
    return out;
}

@group(0) @binding(0) var colorMap: texture_2d<f32>;
@group(0) @binding(1) var colorSampler: sampler;

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
    return textureSample(colorMap, colorSampler, in.texcoord);
}
`

// brightnessWGSL adds a scalar brightness offset to the RGB channels.
const brightnessWGSL = `
struct VertexOut {
    @builtin(position) position: vec4<f32>,
    @location(0) texcoord: vec2<f32>,
};

@vertex
fn vs_main(@location(0) position: vec2<f32>,
           @location(1) texcoord: vec2<f32>) -> VertexOut {
    var out: VertexOut;
    out.position = vec4<f32>(position, 0.0, 1.0);
    out.texcoord = texcoord;
    return out;
}

struct Params {
    brightness: f32,
};

@group(0) @binding(0) var colorMap: texture_2d<f32>;
@group(0) @binding(1) var colorSampler: sampler;
@group(0) @binding(2) var<uniform> params: Params;

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
    let c = textureSample(colorMap, colorSampler, in.texcoord);
    return vec4<f32>(c.rgb + vec3<f32>(params.brightness), c.a);
}
`

// gaussianWGSL is a one-dimensional gaussian pass; direction selects the
// horizontal or vertical axis and radius bounds the kernel. The texel
// size is derived from the input texture's own dimensions.
const gaussianWGSL = `
struct VertexOut {
    @builtin(position) position: vec4<f32>,
    @location(0) texcoord: vec2<f32>,
};

@vertex
fn vs_main(@location(0) position: vec2<f32>,
           @location(1) texcoord: vec2<f32>) -> VertexOut {
    var out: VertexOut;
    out.position = vec4<f32>(position, 0.0, 1.0);
    out.texcoord = texcoord;
    return out;
}

struct Params {
    direction: vec2<f32>,
    radius: f32,
    sigma: f32,
};

@group(0) @binding(0) var colorMap: texture_2d<f32>;
@group(0) @binding(1) var colorSampler: sampler;
@group(0) @binding(2) var<uniform> params: Params;

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
    let dims = vec2<f32>(textureDimensions(colorMap));
    let texel = params.direction / dims;

    var acc = vec4<f32>(0.0);
    var weightSum = 0.0;
    let radius = i32(params.radius);
    for (var i = -radius; i <= radius; i = i + 1) {
        let x = f32(i);
        let w = exp(-(x * x) / (2.0 * params.sigma * params.sigma));
        acc = acc + textureSample(colorMap, colorSampler, in.texcoord + texel * x) * w;
        weightSum = weightSum + w;
    }
    return acc / weightSum;
}
`
