// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"github.com/gogpu/fx/render"
)

// Node is the graph-wiring surface shared by every frame producer:
// plain sources, filters, and filter groups.
type Node interface {
	// AddTarget adds a directed edge to t feeding its input slot index.
	// Adding a target that is already present is a no-op.
	AddTarget(t Target, index int)

	// RemoveTarget removes the edge to t, if present.
	RemoveTarget(t Target)

	// RemoveAllTargets removes every outgoing edge.
	RemoveAllTargets()

	// Targets returns the current downstream targets in edge order.
	Targets() []Target
}

type edge struct {
	target Target
	index  int
}

// Source is the producer half of a graph node: it owns zero or one output
// framebuffer and a set of (Target, input index) edges, and drives
// propagation across the graph.
//
// Source holds one retain on its output framebuffer; replacing the output
// releases the previous one.
type Source struct {
	output         *render.Framebuffer
	outputRotation RotationMode
	edges          []edge
}

// AddTarget adds an edge feeding t's input slot index. A target already
// present is not added twice, regardless of index.
func (s *Source) AddTarget(t Target, index int) {
	if t == nil {
		return
	}
	for _, e := range s.edges {
		if e.target == t {
			return
		}
	}
	s.edges = append(s.edges, edge{target: t, index: index})
}

// RemoveTarget removes the edge to t, if present.
func (s *Source) RemoveTarget(t Target) {
	for i, e := range s.edges {
		if e.target == t {
			s.edges = append(s.edges[:i], s.edges[i+1:]...)
			return
		}
	}
}

// RemoveAllTargets removes every outgoing edge.
func (s *Source) RemoveAllTargets() {
	s.edges = nil
}

// Targets returns the downstream targets in edge order.
func (s *Source) Targets() []Target {
	out := make([]Target, len(s.edges))
	for i, e := range s.edges {
		out[i] = e.target
	}
	return out
}

// TargetIndex returns the input slot index the edge to t feeds.
func (s *Source) TargetIndex(t Target) (int, bool) {
	for _, e := range s.edges {
		if e.target == t {
			return e.index, true
		}
	}
	return 0, false
}

// Output returns the source's current output framebuffer, or nil.
func (s *Source) Output() *render.Framebuffer { return s.output }

// OutputRotation returns the rotation metadata attached to the output.
func (s *Source) OutputRotation() RotationMode { return s.outputRotation }

// SetOutputRotation sets the rotation metadata propagated with the output.
func (s *Source) SetOutputRotation(r RotationMode) { s.outputRotation = r }

// SetOutput replaces the output framebuffer. The source takes over one
// retain on fb (the fetch lock, or one taken by the caller) and releases
// its retain on the previous output.
func (s *Source) SetOutput(fb *render.Framebuffer) {
	prev := s.output
	s.output = fb
	if prev != nil && prev != fb {
		prev.Unlock()
	}
}

// ReleaseOutput drops the output framebuffer and its retain.
func (s *Source) ReleaseOutput() {
	if s.output != nil {
		s.output.Unlock()
		s.output = nil
	}
}

// UpdateTargets propagates the current output along every edge, in two
// phases: first every edge's input slot is set, then every prepared
// target is updated. The two-phase order gives a target depending on
// several upstream sources a consistent snapshot of this propagation
// wave before any of its draws run.
func (s *Source) UpdateTargets(frameTime float64) {
	for _, e := range s.edges {
		e.target.SetInputFramebuffer(s.output, s.outputRotation, e.index, false)
	}
	for _, e := range s.edges {
		if e.target.IsPrepared() {
			e.target.Update(frameTime)
		}
	}
}

var _ Node = (*Source)(nil)
