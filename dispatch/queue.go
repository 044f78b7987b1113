// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package dispatch provides serial work queues bound to dedicated OS
// threads, used to enforce the one-thread-per-render-context discipline.
//
// Each Queue owns exactly one goroutine locked to an OS thread. Work
// submitted with RunAsync executes in FIFO order on that thread; RunSync
// additionally blocks the caller until the closure has fully completed.
// Calling RunSync from the queue's own thread executes the closure inline,
// so re-entrant submission never deadlocks.
//
// There is no ordering guarantee across different queues, and no timeout
// or cancellation: RunSync blocks until the target thread drains its
// backlog. Cross-queue coordination is done with explicit RunSync
// round-trips.
package dispatch

import (
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// goid returns the current goroutine's id by parsing the first line of the
// runtime stack ("goroutine N [running]:"). Used only to detect re-entrant
// RunSync calls from a queue's own worker.
func goid() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	s := strings.TrimPrefix(string(buf[:n]), "goroutine ")
	if i := strings.IndexByte(s, ' '); i > 0 {
		if id, err := strconv.ParseInt(s[:i], 10, 64); err == nil {
			return id
		}
	}
	return -1
}

// Queue is a FIFO work queue drained by a single dedicated OS thread.
//
// The zero value is not usable; create queues with NewQueue.
type Queue struct {
	name string

	mu     sync.Mutex
	cond   *sync.Cond
	tasks  []func()
	closed bool

	workerID atomic.Int64
	stopped  chan struct{}
}

// NewQueue creates a queue and starts its worker thread. The worker locks
// itself to an OS thread so device calls issued from queued closures stay
// on one thread for the queue's lifetime.
func NewQueue(name string) *Queue {
	q := &Queue{
		name:    name,
		stopped: make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	go q.work()
	return q
}

// Name returns the queue's diagnostic name.
func (q *Queue) Name() string { return q.name }

func (q *Queue) work() {
	runtime.LockOSThread()
	// The thread is never unlocked: returning from a locked goroutine
	// retires the thread instead of handing it back to the scheduler.
	q.workerID.Store(goid())
	defer close(q.stopped)

	for {
		q.mu.Lock()
		for len(q.tasks) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.tasks) == 0 && q.closed {
			q.mu.Unlock()
			return
		}
		task := q.tasks[0]
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		task()
	}
}

// OnQueue reports whether the caller is executing on this queue's worker
// thread.
func (q *Queue) OnQueue() bool {
	return q.workerID.Load() == goid()
}

// RunAsync enqueues fn for execution on the queue's thread and returns
// immediately. Closures run in submission order. Submitting to a closed
// queue silently drops the closure.
func (q *Queue) RunAsync(fn func()) {
	q.enqueue(fn)
}

// enqueue appends fn to the backlog. Reports false if the queue is closed.
func (q *Queue) enqueue(fn func()) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()
	q.cond.Signal()
	return true
}

// RunSync executes fn on the queue's thread and blocks until fn has fully
// completed. If the caller is already on the queue's thread, fn runs
// inline with no thread hop.
//
// All side effects of fn are observable by the caller when RunSync
// returns.
func (q *Queue) RunSync(fn func()) {
	if q.OnQueue() {
		fn()
		return
	}

	done := make(chan struct{})
	ok := q.enqueue(func() {
		defer close(done)
		fn()
	})
	if !ok {
		return
	}
	<-done
}

// Close drains the remaining backlog, stops the worker thread and waits
// for it to exit. Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.stopped
		return
	}
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
	<-q.stopped
}
