// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package render owns the per-context GPU state of the fx pipeline: the
// Context (device access, shared quad geometry, program tracking, capture
// state), the Framebuffer abstraction (one texture plus an optional
// render target) and the FramebufferCache that pools framebuffers for
// reuse across the whole graph.
//
// A Framebuffer's retain count is a pooling counter, not an object
// lifetime count: consumers Lock a framebuffer while reading from it and
// Unlock when done, and only zero-retain framebuffers are eligible for
// cache reuse or eviction. Object lifetime is the garbage collector's
// problem; device handles are released through the alias-safe destroy
// path, which never deletes a texture while another live framebuffer in
// the same Context still references the same handle.
//
// All methods in this package must be called from the thread that owns
// the Context (see package dispatch). None of the bookkeeping is locked;
// it is safe only under that single-thread discipline.
package render
