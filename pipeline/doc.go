// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package pipeline implements the Source→Filter→Target graph execution
// model of fx.
//
// A Source produces frames into a framebuffer fetched from its Context's
// cache and propagates them along its target edges. Each Target tracks
// its declared input slots; once every slot is filled (or explicitly
// ignored) the target is prepared and its Update runs, which for a Filter
// means a full-screen quad draw into a freshly fetched output framebuffer
// followed by propagation to its own targets.
//
// Propagation is strictly single-threaded per Context: a frame flows
// through the whole graph on the context's owning thread. Input slots
// have superseding semantics — pushing a second framebuffer to the same
// slot within a frame replaces (unlocks) the first, it does not queue.
package pipeline
