// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package filters

import (
	"github.com/gogpu/fx/pipeline"
	"github.com/gogpu/fx/render"
)

// GaussianBlurMono is a one-dimensional gaussian pass along a single
// axis. Two of them back to back form a separable 2D blur.
type GaussianBlurMono struct {
	*pipeline.Filter
	horizontal bool
}

// NewGaussianBlurMono creates a single-axis blur pass.
func NewGaussianBlurMono(ctx *render.Context, horizontal bool, sigma float64) (*GaussianBlurMono, error) {
	name := "gaussian_v"
	if horizontal {
		name = "gaussian_h"
	}
	f, err := pipeline.NewFilter(ctx, name, gaussianWGSL, 1)
	if err != nil {
		return nil, err
	}
	m := &GaussianBlurMono{Filter: f, horizontal: horizontal}
	if horizontal {
		m.SetUniform("direction", 1, 0)
	} else {
		m.SetUniform("direction", 0, 1)
	}
	m.SetSigma(sigma)
	return m, nil
}

// SetSigma sets the blur strength. Sigma is truncated to an integer
// before the kernel radius is derived; fractional sigmas therefore
// quantize (a long-standing behavior kept for output compatibility).
func (m *GaussianBlurMono) SetSigma(sigma float64) {
	s := int(sigma)
	if s < 1 {
		s = 1
	}
	radius := s * 3 // 3-sigma support
	m.SetUniform("sigma", float32(s))
	m.SetUniform("radius", float32(radius))
}

// GaussianBlur is a separable 2D gaussian blur: a horizontal mono pass
// chained into a vertical one, wrapped in a FilterGroup so the pair wires
// like a single node.
type GaussianBlur struct {
	*pipeline.FilterGroup
	horizontal *GaussianBlurMono
	vertical   *GaussianBlurMono
}

// NewGaussianBlur creates the two-pass blur.
func NewGaussianBlur(ctx *render.Context, sigma float64) (*GaussianBlur, error) {
	h, err := NewGaussianBlurMono(ctx, true, sigma)
	if err != nil {
		return nil, err
	}
	v, err := NewGaussianBlurMono(ctx, false, sigma)
	if err != nil {
		return nil, err
	}
	// Wire the inner pipeline.Filter values so the group's terminal
	// detection sees the chain.
	h.Filter.AddTarget(v.Filter, 0)

	return &GaussianBlur{
		FilterGroup: pipeline.NewFilterGroup("gaussian", h.Filter, v.Filter),
		horizontal:  h,
		vertical:    v,
	}, nil
}

// SetSigma updates both passes.
func (g *GaussianBlur) SetSigma(sigma float64) {
	g.horizontal.SetSigma(sigma)
	g.vertical.SetSigma(sigma)
}
