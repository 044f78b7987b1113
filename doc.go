// Package fx provides a GPU-accelerated video and image effects pipeline
// for Go.
//
// # Overview
//
// fx models an effects chain as a directed graph of render stages. Sources
// produce frames, filters transform them on the GPU, and targets consume
// the results. All GPU resources (textures, framebuffers, programs) are
// pooled and reused through a per-context framebuffer cache.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/fx/pipeline"
//	    "github.com/gogpu/fx/render"
//	)
//
//	ctx, err := render.NewContext(device, render.ContextOptions{})
//	src := pipeline.NewImageSource(ctx)
//	bright, _ := filters.NewBrightness(ctx, 0.2)
//	sink := pipeline.NewSink()
//
//	src.AddTarget(bright, 0)
//	bright.AddTarget(sink, 0)
//	src.PushRGBA(pixels, 64, 64)
//
// # Architecture
//
// The module is organized into:
//   - driver: backend capability interfaces and the backend registry
//   - dispatch: serial work queues bound to dedicated OS threads
//   - render: Context, Framebuffer and the framebuffer cache
//   - pipeline: Source/Target/Filter graph wiring and propagation
//   - filters: concrete filter nodes built on the core
//   - frame: CPU-side pixel format conversion (crop/resize/rotate/convert)
//
// Backends register themselves with the driver registry. Importing
// backend/wgpu enables WebGPU rendering through a host-provided device.
package fx
