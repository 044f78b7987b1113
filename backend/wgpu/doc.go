// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package wgpu implements the driver.Device contract on gogpu/wgpu's
// hardware abstraction layer. Shaders are WGSL compiled to SPIR-V with
// naga; draws are recorded as single-pass render encodings and submitted
// with a fence so each Draw is complete when it returns.
//
// The backend registers itself with the driver registry under the name
// "wgpu" at priority 100. Import it for side effects:
//
//	import _ "github.com/gogpu/fx/backend/wgpu"
//
// A host application that already owns a GPU device (a gogpu window, a
// gpucontext.DeviceProvider) can share it by passing the provider in
// driver.Options; the backend then adopts the host's hal.Device and
// hal.Queue and never destroys them. Without a provider the backend
// opens its own Vulkan instance and owns its lifetime.
package wgpu
