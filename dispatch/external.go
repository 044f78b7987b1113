// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dispatch

import (
	"fmt"
	"sync/atomic"
)

// ExternalThread is a Runner for hosts where the render thread is owned by
// the embedding application (for example a platform view that delivers
// render callbacks on its own thread). fx never spawns a thread in this
// mode; the host tells ExternalThread which thread is the render thread by
// calling Bind from it, and supplies a submit callback that marshals
// closures onto that thread.
//
// RunSync requires the caller to already be on the bound thread and
// panics otherwise: in this mode there is no queue to marshal through, so
// calling from the wrong thread is a programming error, not a recoverable
// condition.
type ExternalThread struct {
	submit   func(func())
	threadID atomic.Int64
}

// NewExternalThread creates an external-thread runner. submit is invoked
// by RunAsync with each closure and must eventually execute it on the
// bound thread; it must not be nil.
func NewExternalThread(submit func(func())) *ExternalThread {
	if submit == nil {
		panic("dispatch: NewExternalThread requires a submit callback")
	}
	e := &ExternalThread{submit: submit}
	e.threadID.Store(-1)
	return e
}

// Bind records the calling goroutine as the render thread. Must be called
// from the host's render callback before any RunSync.
func (e *ExternalThread) Bind() {
	e.threadID.Store(goid())
}

// OnThread reports whether the caller is on the bound render thread.
func (e *ExternalThread) OnThread() bool {
	return e.threadID.Load() == goid()
}

// RunSync executes fn inline. Panics if the caller is not on the bound
// render thread.
func (e *ExternalThread) RunSync(fn func()) {
	if !e.OnThread() {
		panic(fmt.Sprintf("dispatch: RunSync off the bound render thread (bound goroutine %d)", e.threadID.Load()))
	}
	fn()
}

// RunAsync hands fn to the host's submit callback.
func (e *ExternalThread) RunAsync(fn func()) {
	e.submit(fn)
}

var _ Runner = (*ExternalThread)(nil)
