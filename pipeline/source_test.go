// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"testing"
)

// probeTarget records the two-phase propagation protocol.
type probeTarget struct {
	Inputs
	onUpdate func()
	updates  int
}

func newProbeTarget() *probeTarget {
	p := &probeTarget{}
	p.SetInputCount(1)
	p.SetLockKey("probe")
	return p
}

func (p *probeTarget) Update(float64) {
	p.updates++
	if p.onUpdate != nil {
		p.onUpdate()
	}
	p.Unprepare()
}

func TestAddTargetDuplicateIgnored(t *testing.T) {
	var s Source
	p := newProbeTarget()

	s.AddTarget(p, 0)
	s.AddTarget(p, 1) // same target, different index: ignored
	if len(s.Targets()) != 1 {
		t.Fatalf("Targets() = %d entries, want 1", len(s.Targets()))
	}
	if idx, ok := s.TargetIndex(p); !ok || idx != 0 {
		t.Errorf("TargetIndex() = (%d, %v), want (0, true)", idx, ok)
	}
}

func TestRemoveTarget(t *testing.T) {
	var s Source
	p1 := newProbeTarget()
	p2 := newProbeTarget()

	s.AddTarget(p1, 0)
	s.AddTarget(p2, 0)
	s.RemoveTarget(p1)
	if len(s.Targets()) != 1 {
		t.Fatalf("Targets() = %d entries after remove, want 1", len(s.Targets()))
	}
	s.RemoveAllTargets()
	if len(s.Targets()) != 0 {
		t.Error("RemoveAllTargets left targets behind")
	}
}

func TestSetOutputTakesOverRetain(t *testing.T) {
	ctx, _ := newTestContext(t)

	var s Source
	fb1 := fetchFB(t, ctx) // locked once by Fetch
	s.SetOutput(fb1)
	if fb1.RetainCount() != 1 {
		t.Errorf("RetainCount() = %d after SetOutput, want 1", fb1.RetainCount())
	}

	fb2 := fetchFB(t, ctx)
	s.SetOutput(fb2)
	if fb1.RetainCount() != 0 {
		t.Errorf("previous output retain = %d after replacement, want 0", fb1.RetainCount())
	}

	s.ReleaseOutput()
	if fb2.RetainCount() != 0 {
		t.Errorf("RetainCount() = %d after ReleaseOutput, want 0", fb2.RetainCount())
	}
	if s.Output() != nil {
		t.Error("Output() non-nil after ReleaseOutput")
	}
}

// TestUpdateTargetsTwoPhase checks that every target's input is set
// before any target's Update runs.
func TestUpdateTargetsTwoPhase(t *testing.T) {
	ctx, _ := newTestContext(t)

	var s Source
	p1 := newProbeTarget()
	p2 := newProbeTarget()
	s.AddTarget(p1, 0)
	s.AddTarget(p2, 0)

	p1.onUpdate = func() {
		if !p2.IsPrepared() {
			t.Error("second target not prepared while first target updates")
		}
	}
	p2.onUpdate = func() {
		if p1.updates != 1 {
			t.Error("first target updated out of order")
		}
	}

	s.SetOutput(fetchFB(t, ctx))
	s.UpdateTargets(0)

	if p1.updates != 1 || p2.updates != 1 {
		t.Fatalf("updates = %d, %d, want 1, 1", p1.updates, p2.updates)
	}
}

func TestUpdateTargetsSkipsUnprepared(t *testing.T) {
	ctx, _ := newTestContext(t)

	var s Source
	p := &probeTarget{}
	p.SetInputCount(2) // source fills only one slot
	s.AddTarget(p, 0)

	s.SetOutput(fetchFB(t, ctx))
	s.UpdateTargets(0)

	if p.updates != 0 {
		t.Errorf("unprepared target updated %d times, want 0", p.updates)
	}
}

func TestImageSourceValidatesLength(t *testing.T) {
	ctx, _ := newTestContext(t)
	src := NewImageSource(ctx)

	if err := src.PushRGBA(make([]byte, 7), 4, 4, 0); err == nil {
		t.Error("PushRGBA() with wrong length did not fail")
	}
}
