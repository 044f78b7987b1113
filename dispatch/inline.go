// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dispatch

// Inline is a Runner that executes every closure on the calling goroutine.
// Useful in tests and in applications that already confine all pipeline
// work to a single goroutine of their own.
type Inline struct{}

// RunSync executes fn immediately.
func (Inline) RunSync(fn func()) { fn() }

// RunAsync executes fn immediately; "async" submission degenerates to a
// direct call when there is no owning thread to marshal to.
func (Inline) RunAsync(fn func()) { fn() }

var _ Runner = Inline{}
