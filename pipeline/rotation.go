// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

// RotationMode describes how a framebuffer's content is oriented relative
// to its consumer. Each mode selects one texcoord variant (and one index
// buffer) of the shared quad geometry.
type RotationMode int

const (
	NoRotation RotationMode = iota
	RotateLeft
	RotateRight
	FlipVertical
	FlipHorizontal
	RotateRightFlipVertical
	RotateRightFlipHorizontal
	Rotate180
)

// SwapsDimensions reports whether applying the rotation exchanges width
// and height.
func (r RotationMode) SwapsDimensions() bool {
	switch r {
	case RotateLeft, RotateRight, RotateRightFlipVertical, RotateRightFlipHorizontal:
		return true
	default:
		return false
	}
}

// Variant returns the rotation's index into the shared quad geometry's
// texcoord and index buffer variants.
func (r RotationMode) Variant() int { return int(r) }

// String returns the rotation's name.
func (r RotationMode) String() string {
	switch r {
	case NoRotation:
		return "none"
	case RotateLeft:
		return "rotate-left"
	case RotateRight:
		return "rotate-right"
	case FlipVertical:
		return "flip-vertical"
	case FlipHorizontal:
		return "flip-horizontal"
	case RotateRightFlipVertical:
		return "rotate-right-flip-vertical"
	case RotateRightFlipHorizontal:
		return "rotate-right-flip-horizontal"
	case Rotate180:
		return "rotate-180"
	default:
		return "unknown"
	}
}
