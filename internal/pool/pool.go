// Package pool provides a reusable byte-buffer pool for per-frame
// scratch memory (flip scratch rows, readback staging).
package pool

import "sync"

// BytePool hands out byte slices of at least the requested length.
// After warmup, steady-state frame processing allocates nothing.
type BytePool struct {
	pool sync.Pool
}

// Get retrieves a buffer with length exactly n. The contents are
// unspecified.
func (p *BytePool) Get(n int) []byte {
	if b, ok := p.pool.Get().([]byte); ok && cap(b) >= n {
		return b[:n]
	}
	return make([]byte, n)
}

// Put returns a buffer to the pool for reuse.
func (p *BytePool) Put(b []byte) {
	if b == nil {
		return
	}
	p.pool.Put(b[:cap(b)]) //nolint:staticcheck // slices are pointer-shaped; boxing is fine here
}

// Default is a process-wide pool for convenience.
var Default BytePool
