// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package filters

import (
	"github.com/gogpu/fx/pipeline"
	"github.com/gogpu/fx/render"
)

// Brightness adds a constant offset to the RGB channels of its input.
type Brightness struct {
	*pipeline.Filter
}

// NewBrightness creates a brightness filter. brightness is an additive
// offset in [-1, 1]; 0 leaves the image unchanged.
func NewBrightness(ctx *render.Context, brightness float32) (*Brightness, error) {
	f, err := pipeline.NewFilter(ctx, "brightness", brightnessWGSL, 1)
	if err != nil {
		return nil, err
	}
	b := &Brightness{Filter: f}
	b.SetBrightness(brightness)
	return b, nil
}

// SetBrightness updates the additive offset.
func (b *Brightness) SetBrightness(brightness float32) {
	b.SetUniform("brightness", brightness)
}
