// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package frame

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/fx/internal/pool"
)

// Crop extracts the w x h region at (x, y) into a new buffer.
// For planar YUV formats x, y, w and h must all be even so the crop
// lands on chroma block boundaries.
func Crop(src *Buffer, x, y, w, h int) (*Buffer, error) {
	if src == nil {
		return nil, invalidf("nil source")
	}
	if w <= 0 || h <= 0 {
		return nil, invalidf("crop size %dx%d", w, h)
	}
	if x < 0 || y < 0 || x+w > src.width || y+h > src.height {
		return nil, invalidf("crop %dx%d@(%d,%d) outside %dx%d", w, h, x, y, src.width, src.height)
	}
	if src.format.Planar() && (x%2 != 0 || y%2 != 0 || w%2 != 0 || h%2 != 0) {
		return nil, invalidf("%s crop must be even-aligned, got %dx%d@(%d,%d)", src.format, w, h, x, y)
	}
	dst, err := New(src.format, w, h)
	if err != nil {
		return nil, err
	}
	for i := 0; i < src.format.planeCount(); i++ {
		px, py, pw, ph := x, y, w, h
		switch {
		case src.format == NV12 && i == 1:
			// Interleaved CbCr: full byte width, half height.
			py, ph = y/2, h/2
		case src.format == I420 && i > 0:
			px, py, pw, ph = x/2, y/2, w/2, h/2
		}
		bpp := 1
		if i == 0 && !src.format.Planar() {
			bpp = src.format.BytesPerPixel()
		}
		srcStride := src.Stride(i)
		dstStride := dst.Stride(i)
		for row := 0; row < ph; row++ {
			so := (py+row)*srcStride + px*bpp
			do := row * dstStride
			copy(dst.planes[i][do:do+pw*bpp], src.planes[i][so:so+pw*bpp])
		}
	}
	return dst, nil
}

// Resize scales an interleaved buffer to w x h with bilinear filtering.
// Planar YUV inputs must be converted to a packed format first.
func Resize(src *Buffer, w, h int) (*Buffer, error) {
	if src == nil {
		return nil, invalidf("nil source")
	}
	if w <= 0 || h <= 0 {
		return nil, invalidf("resize to %dx%d", w, h)
	}
	if src.format.Planar() {
		return nil, invalidf("resize of %s unsupported, convert to a packed format first", src.format)
	}
	dst, err := New(src.format, w, h)
	if err != nil {
		return nil, err
	}
	// The scaler treats channels independently, so BGRA rides through
	// the RGBA wrapper unchanged.
	switch src.format {
	case Gray8:
		si := &image.Gray{Pix: src.planes[0], Stride: src.Stride(0), Rect: image.Rect(0, 0, src.width, src.height)}
		di := &image.Gray{Pix: dst.planes[0], Stride: dst.Stride(0), Rect: image.Rect(0, 0, w, h)}
		draw.BiLinear.Scale(di, di.Rect, si, si.Rect, draw.Src, nil)
	default:
		si := &image.RGBA{Pix: src.planes[0], Stride: src.Stride(0), Rect: image.Rect(0, 0, src.width, src.height)}
		di := &image.RGBA{Pix: dst.planes[0], Stride: dst.Stride(0), Rect: image.Rect(0, 0, w, h)}
		draw.BiLinear.Scale(di, di.Rect, si, si.Rect, draw.Src, nil)
	}
	return dst, nil
}

// Rotate returns a copy rotated clockwise by 90, 180 or 270 degrees.
// Only interleaved formats are supported.
func Rotate(src *Buffer, degrees int) (*Buffer, error) {
	if src == nil {
		return nil, invalidf("nil source")
	}
	if src.format.Planar() {
		return nil, invalidf("rotate of %s unsupported, convert to a packed format first", src.format)
	}
	bpp := src.format.BytesPerPixel()
	switch degrees {
	case 90, 270:
		dst, err := New(src.format, src.height, src.width)
		if err != nil {
			return nil, err
		}
		sStride := src.Stride(0)
		dStride := dst.Stride(0)
		for y := 0; y < src.height; y++ {
			for x := 0; x < src.width; x++ {
				var dx, dy int
				if degrees == 90 {
					dx, dy = src.height-1-y, x
				} else {
					dx, dy = y, src.width-1-x
				}
				copy(dst.planes[0][dy*dStride+dx*bpp:dy*dStride+(dx+1)*bpp],
					src.planes[0][y*sStride+x*bpp:y*sStride+(x+1)*bpp])
			}
		}
		return dst, nil
	case 180:
		dst, err := New(src.format, src.width, src.height)
		if err != nil {
			return nil, err
		}
		stride := src.Stride(0)
		for y := 0; y < src.height; y++ {
			for x := 0; x < src.width; x++ {
				dx, dy := src.width-1-x, src.height-1-y
				copy(dst.planes[0][dy*stride+dx*bpp:dy*stride+(dx+1)*bpp],
					src.planes[0][y*stride+x*bpp:y*stride+(x+1)*bpp])
			}
		}
		return dst, nil
	default:
		return nil, invalidf("rotate by %d degrees", degrees)
	}
}

// FlipH returns a horizontally mirrored copy of an interleaved buffer.
func FlipH(src *Buffer) (*Buffer, error) {
	if src == nil {
		return nil, invalidf("nil source")
	}
	if src.format.Planar() {
		return nil, invalidf("flip of %s unsupported, convert to a packed format first", src.format)
	}
	dst, err := New(src.format, src.width, src.height)
	if err != nil {
		return nil, err
	}
	bpp := src.format.BytesPerPixel()
	stride := src.Stride(0)
	for y := 0; y < src.height; y++ {
		for x := 0; x < src.width; x++ {
			dx := src.width - 1 - x
			copy(dst.planes[0][y*stride+dx*bpp:y*stride+(dx+1)*bpp],
				src.planes[0][y*stride+x*bpp:y*stride+(x+1)*bpp])
		}
	}
	return dst, nil
}

// FlipV returns a vertically mirrored copy of an interleaved buffer.
func FlipV(src *Buffer) (*Buffer, error) {
	if src == nil {
		return nil, invalidf("nil source")
	}
	if src.format.Planar() {
		return nil, invalidf("flip of %s unsupported, convert to a packed format first", src.format)
	}
	dst, err := New(src.format, src.width, src.height)
	if err != nil {
		return nil, err
	}
	stride := src.Stride(0)
	for y := 0; y < src.height; y++ {
		copy(dst.planes[0][(src.height-1-y)*stride:(src.height-y)*stride],
			src.planes[0][y*stride:(y+1)*stride])
	}
	return dst, nil
}

// FlipVInPlace mirrors an interleaved buffer vertically without
// allocating a second frame. Cameras that deliver bottom-up frames are
// the usual caller.
func FlipVInPlace(b *Buffer) error {
	if b == nil {
		return invalidf("nil buffer")
	}
	if b.format.Planar() {
		return invalidf("flip of %s unsupported, convert to a packed format first", b.format)
	}
	stride := b.Stride(0)
	row := pool.Default.Get(stride)
	defer pool.Default.Put(row)
	p := b.planes[0]
	for y := 0; y < b.height/2; y++ {
		top := p[y*stride : (y+1)*stride]
		bot := p[(b.height-1-y)*stride : (b.height-y)*stride]
		copy(row, top)
		copy(top, bot)
		copy(bot, row)
	}
	return nil
}
