// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"github.com/gogpu/fx/render"
)

// Sink is a terminal consumer: it records the framebuffer it receives
// each frame and optionally invokes a callback, then releases its input
// slots immediately.
type Sink struct {
	Inputs

	// OnFrame, when set, observes each received framebuffer while the
	// sink still holds its lock. The framebuffer must not be retained
	// past the callback's return.
	OnFrame func(fb *render.Framebuffer, rotation RotationMode)

	lastWidth  int
	lastHeight int
	frames     int
}

// NewSink creates a single-input sink.
func NewSink() *Sink {
	s := &Sink{}
	s.SetInputCount(1)
	s.SetLockKey("sink")
	return s
}

// Update records the received frame and releases the input slots.
func (s *Sink) Update(_ float64) {
	if first := s.FirstInput(); first != nil {
		s.frames++
		s.lastWidth = first.Framebuffer.Width()
		s.lastHeight = first.Framebuffer.Height()
		if s.OnFrame != nil {
			s.OnFrame(first.Framebuffer, first.Rotation)
		}
	}
	s.Unprepare()
}

// Frames reports how many frames the sink has consumed.
func (s *Sink) Frames() int { return s.frames }

// LastSize reports the dimensions of the most recent frame.
func (s *Sink) LastSize() (int, int) { return s.lastWidth, s.lastHeight }

var _ Target = (*Sink)(nil)
