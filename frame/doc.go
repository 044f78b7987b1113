// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package frame is a CPU-side pixel buffer codec: crop, resize, rotate,
// flip and format conversion over RGBA, BGRA, grayscale and planar YUV
// buffers.
//
// It is consumed by pipeline stages that prepare frames for upload or
// post-process captured frames; the GPU graph runtime itself never calls
// into it.
//
// All operations validate formats, dimensions and alignment up front and
// return an error wrapping ErrInvalidArgument before any pixels are
// touched; errors wrapping ErrInternal indicate a kernel-level failure
// and should be treated as bugs.
package frame
