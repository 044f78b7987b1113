// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dispatch

// Role identifies one of the logical render contexts, each bound to its
// own queue and thread.
type Role int

const (
	// RoleRender is the main/display render context.
	RoleRender Role = iota
	// RoleIO is the context used for texture upload/download work.
	RoleIO
	// RoleOffline is the offline (off-screen export) render context.
	RoleOffline

	roleCount
)

// String returns the role's diagnostic name.
func (r Role) String() string {
	switch r {
	case RoleRender:
		return "render"
	case RoleIO:
		return "io"
	case RoleOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// Runner serializes closures onto a render thread. It is implemented by
// Queue-backed dispatchers and by ExternalThread for hosts that own the
// render thread themselves.
type Runner interface {
	// RunSync executes fn on the owning thread and blocks until it has
	// fully completed. Implementations must execute inline when the
	// caller is already on the owning thread.
	RunSync(fn func())

	// RunAsync schedules fn on the owning thread and returns immediately.
	RunAsync(fn func())
}

// Dispatcher binds the three logical context roles to one queue each.
//
// All queues are created eagerly; Close stops them. There is no ordering
// guarantee across roles.
type Dispatcher struct {
	queues [roleCount]*Queue
}

// NewDispatcher creates a dispatcher with one dedicated thread per role.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{}
	for r := Role(0); r < roleCount; r++ {
		d.queues[r] = NewQueue(r.String())
	}
	return d
}

// Queue returns the queue bound to a role.
func (d *Dispatcher) Queue(role Role) *Queue {
	return d.queues[role]
}

// RunSync executes fn on the role's thread and blocks until completion.
// If the caller is already on that thread, fn runs inline.
func (d *Dispatcher) RunSync(role Role, fn func()) {
	d.queues[role].RunSync(fn)
}

// RunAsync schedules fn on the role's thread and returns immediately.
func (d *Dispatcher) RunAsync(role Role, fn func()) {
	d.queues[role].RunAsync(fn)
}

// Runner returns a Runner view of a single role's queue.
func (d *Dispatcher) Runner(role Role) Runner {
	return d.queues[role]
}

// Close stops all queues after draining their backlogs.
func (d *Dispatcher) Close() {
	for _, q := range d.queues {
		q.Close()
	}
}

var _ Runner = (*Queue)(nil)
