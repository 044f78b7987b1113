// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/fx/driver"
)

// TextureAttributes describes the sampling parameters and format of a
// framebuffer's texture. Together with the dimensions and the only-texture
// flag it fully determines cache bucket membership: identical-shape
// requests are fungible.
type TextureAttributes struct {
	MinFilter driver.FilterMode
	MagFilter driver.FilterMode
	WrapS     driver.WrapMode
	WrapT     driver.WrapMode
	Format    gputypes.TextureFormat
}

// DefaultTextureAttributes returns linear-filtered, clamped RGBA8.
func DefaultTextureAttributes() TextureAttributes {
	return TextureAttributes{
		MinFilter: driver.FilterLinear,
		MagFilter: driver.FilterLinear,
		WrapS:     driver.WrapClampToEdge,
		WrapT:     driver.WrapClampToEdge,
		Format:    gputypes.TextureFormatRGBA8Unorm,
	}
}

// bucketKey derives the cache bucket key for a framebuffer shape. The key
// is purely a function of dimensions, attributes and the only-texture
// flag, never of content.
func bucketKey(width, height int, attrs TextureAttributes, onlyTexture bool) string {
	return fmt.Sprintf("%d:%d:%d:%d:%d:%d:%d:%t",
		width, height,
		attrs.MinFilter, attrs.MagFilter,
		attrs.WrapS, attrs.WrapT,
		attrs.Format, onlyTexture)
}
