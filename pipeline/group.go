// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"github.com/gogpu/fx/render"
)

// FilterGroup is a composite node whose internal sub-filter chain is
// opaque to the rest of the graph. The group itself never renders;
// downstream wiring (AddTarget, RemoveTarget, Targets) is forwarded to
// the group's terminal filter, and upstream input wiring
// (SetInputFramebuffer) is broadcast to every owned sub-filter, which
// lets a single external framebuffer feed several independent sub-chains.
//
// The terminal filter is auto-detected: starting from the first owned
// sub-filter, the first outgoing edge is followed transitively until a
// sub-filter with no targets is found.
type FilterGroup struct {
	filters []*Filter
	name    string
}

// NewFilterGroup creates a group owning the given sub-filters. The
// sub-filters' internal wiring (AddTarget between them) is the caller's
// responsibility; the group only manages its external surface.
func NewFilterGroup(name string, filters ...*Filter) *FilterGroup {
	return &FilterGroup{name: name, filters: filters}
}

// Add appends a sub-filter to the group.
func (g *FilterGroup) Add(f *Filter) {
	if f == nil {
		return
	}
	g.filters = append(g.filters, f)
}

// Filters returns the owned sub-filters in insertion order.
func (g *FilterGroup) Filters() []*Filter { return g.filters }

// Name returns the group's diagnostic name.
func (g *FilterGroup) Name() string { return g.name }

// Terminal returns the auto-detected terminal filter: follow the first
// outgoing edge from the first sub-filter transitively until a sub-filter
// with no targets is reached. Returns nil for an empty group.
func (g *FilterGroup) Terminal() *Filter {
	if len(g.filters) == 0 {
		return nil
	}
	current := g.filters[0]
	for {
		targets := current.Targets()
		if len(targets) == 0 {
			return current
		}
		next, ok := targets[0].(*Filter)
		if !ok || !g.owns(next) {
			return current
		}
		current = next
	}
}

func (g *FilterGroup) owns(f *Filter) bool {
	for _, owned := range g.filters {
		if owned == f {
			return true
		}
	}
	return false
}

// AddTarget forwards to the terminal filter.
func (g *FilterGroup) AddTarget(t Target, index int) {
	if terminal := g.Terminal(); terminal != nil {
		terminal.AddTarget(t, index)
	}
}

// RemoveTarget forwards to the terminal filter.
func (g *FilterGroup) RemoveTarget(t Target) {
	if terminal := g.Terminal(); terminal != nil {
		terminal.RemoveTarget(t)
	}
}

// RemoveAllTargets forwards to the terminal filter.
func (g *FilterGroup) RemoveAllTargets() {
	if terminal := g.Terminal(); terminal != nil {
		terminal.RemoveAllTargets()
	}
}

// Targets forwards to the terminal filter.
func (g *FilterGroup) Targets() []Target {
	if terminal := g.Terminal(); terminal != nil {
		return terminal.Targets()
	}
	return nil
}

// SetInputFramebuffer broadcasts the input to every owned sub-filter.
// Mid-chain sub-filters receive it too; their own upstream supersedes the
// slot when it runs, so the broadcast is only observable for sub-chains
// with no internal upstream.
func (g *FilterGroup) SetInputFramebuffer(fb *render.Framebuffer, rotation RotationMode, index int, ignoreForPrepare bool) {
	for _, f := range g.filters {
		f.SetInputFramebuffer(fb, rotation, index, ignoreForPrepare)
	}
}

// InputCount reports the widest input declaration among sub-filters.
func (g *FilterGroup) InputCount() int {
	max := 0
	for _, f := range g.filters {
		if n := f.InputCount(); n > max {
			max = n
		}
	}
	return max
}

// IsPrepared reports whether every owned sub-filter is prepared.
func (g *FilterGroup) IsPrepared() bool {
	if len(g.filters) == 0 {
		return false
	}
	for _, f := range g.filters {
		if !f.IsPrepared() {
			return false
		}
	}
	return true
}

// Update runs each prepared sub-filter in insertion order. Sub-filters
// reached through internal propagation have consumed their slots by the
// time the loop reaches them and are skipped.
func (g *FilterGroup) Update(frameTime float64) {
	for _, f := range g.filters {
		if f.IsPrepared() {
			f.Update(frameTime)
		}
	}
}

// Unprepare broadcasts to every owned sub-filter.
func (g *FilterGroup) Unprepare() {
	for _, f := range g.filters {
		f.Unprepare()
	}
}

var (
	_ Target = (*FilterGroup)(nil)
	_ Node   = (*FilterGroup)(nil)
)
