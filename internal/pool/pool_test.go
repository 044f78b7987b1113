// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pool

import "testing"

func TestGetLength(t *testing.T) {
	var p BytePool
	for _, n := range []int{0, 1, 64, 4096} {
		b := p.Get(n)
		if len(b) != n {
			t.Errorf("Get(%d) len = %d", n, len(b))
		}
		p.Put(b)
	}
}

func TestReuse(t *testing.T) {
	var p BytePool
	b := p.Get(128)
	p.Put(b)
	c := p.Get(64)
	if cap(c) < 64 {
		t.Fatalf("Get(64) cap = %d", cap(c))
	}
	p.Put(c)
	p.Put(nil) // must not panic
}
