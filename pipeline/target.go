// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"sort"

	"github.com/gogpu/fx/render"
)

// Target consumes framebuffers produced by an upstream Source.
//
// A target declares how many input slots it has; a source pushes into one
// slot per edge. Once every slot in [0, InputCount) is filled or ignored
// the target is prepared and the source calls Update.
type Target interface {
	// SetInputFramebuffer fills (or supersedes) one input slot. A nil
	// framebuffer clears the slot. ignoreForPrepare excludes the slot
	// from the prepared check without clearing it.
	SetInputFramebuffer(fb *render.Framebuffer, rotation RotationMode, index int, ignoreForPrepare bool)

	// InputCount returns the number of declared input slots.
	InputCount() int

	// IsPrepared reports whether every declared slot is filled or
	// ignored for the current frame.
	IsPrepared() bool

	// Update consumes the current frame's inputs.
	Update(frameTime float64)

	// Unprepare unlocks and clears every non-ignored filled slot,
	// returning their framebuffers to the pool as soon as possible.
	Unprepare()
}

// InputSlot is one declared input of a target: the framebuffer pushed for
// the current frame, its rotation, and whether the slot is excluded from
// the prepared check.
//
// A slot moves Empty → Filled(locked) → Consumed(unlocked): filling locks
// the framebuffer, Unprepare unlocks and clears it after the frame.
type InputSlot struct {
	Framebuffer *render.Framebuffer
	Rotation    RotationMode
	Ignore      bool
}

// Inputs implements the input-slot half of Target. Filters and sinks
// embed it.
type Inputs struct {
	slots   map[int]*InputSlot
	count   int
	lockKey string
}

// SetLockKey names the owner in framebuffer lock diagnostics.
func (in *Inputs) SetLockKey(key string) { in.lockKey = key }

// SetInputCount declares the number of input slots.
func (in *Inputs) SetInputCount(n int) { in.count = n }

// InputCount returns the number of declared input slots.
func (in *Inputs) InputCount() int { return in.count }

func (in *Inputs) slot(index int) *InputSlot {
	if in.slots == nil {
		in.slots = make(map[int]*InputSlot)
	}
	s, ok := in.slots[index]
	if !ok {
		s = &InputSlot{}
		in.slots[index] = s
	}
	return s
}

// SetInputFramebuffer fills one slot with superseding semantics: a slot
// that already holds a framebuffer unlocks and drops it first — a target
// only ever sees the most recent framebuffer pushed to a given index
// within a frame.
func (in *Inputs) SetInputFramebuffer(fb *render.Framebuffer, rotation RotationMode, index int, ignoreForPrepare bool) {
	s := in.slot(index)
	if s.Framebuffer != nil {
		s.Framebuffer.Unlock()
		s.Framebuffer = nil
	}
	s.Rotation = rotation
	s.Ignore = ignoreForPrepare
	if fb != nil && !fb.Destroyed() {
		fb.Lock(in.lockKey)
		s.Framebuffer = fb
	}
}

// IsPrepared reports whether every index in [0, InputCount) is filled or
// ignored.
func (in *Inputs) IsPrepared() bool {
	if in.count == 0 {
		return false
	}
	for i := 0; i < in.count; i++ {
		s, ok := in.slots[i]
		if !ok {
			return false
		}
		if s.Framebuffer == nil && !s.Ignore {
			return false
		}
	}
	return true
}

// Unprepare unlocks and clears every non-ignored filled slot. Called by
// the owner immediately after it finishes consuming the frame so the
// framebuffers can return to the pool as early as possible.
func (in *Inputs) Unprepare() {
	for _, s := range in.slots {
		if s.Ignore {
			continue
		}
		if s.Framebuffer != nil {
			s.Framebuffer.Unlock()
			s.Framebuffer = nil
		}
	}
}

// Slot returns the slot at index, or nil if it was never filled.
func (in *Inputs) Slot(index int) *InputSlot {
	return in.slots[index]
}

// FirstInput returns the filled slot with the lowest index, or nil.
func (in *Inputs) FirstInput() *InputSlot {
	for _, i := range in.SlotIndices() {
		if s := in.slots[i]; s.Framebuffer != nil {
			return s
		}
	}
	return nil
}

// SlotIndices returns the indices of all slots ever filled, in ascending
// order. Draw passes iterate inputs in this order, which makes the
// "last-processed input's rotation wins" element-buffer selection
// deterministic.
func (in *Inputs) SlotIndices() []int {
	indices := make([]int, 0, len(in.slots))
	for i := range in.slots {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return indices
}
