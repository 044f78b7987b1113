// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package filters

import (
	"github.com/gogpu/fx/pipeline"
	"github.com/gogpu/fx/render"
)

// NewPassthrough creates an identity filter: its output is a rendered
// copy of its input. Useful as a chain head, as a capture point, and in
// tests.
func NewPassthrough(ctx *render.Context) (*pipeline.Filter, error) {
	return pipeline.NewFilter(ctx, "passthrough", passthroughWGSL, 1)
}
