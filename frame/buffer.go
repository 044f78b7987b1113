// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package frame

import "fmt"

// Format identifies the pixel layout of a Buffer.
type Format int

const (
	// RGBA is 8-bit interleaved red, green, blue, alpha.
	RGBA Format = iota
	// BGRA is 8-bit interleaved blue, green, red, alpha.
	BGRA
	// Gray8 is single-channel 8-bit luminance.
	Gray8
	// NV12 is planar Y followed by interleaved CbCr at half resolution.
	NV12
	// I420 is planar Y, Cb, Cr with chroma at half resolution.
	I420
)

// String returns the conventional name of the format.
func (f Format) String() string {
	switch f {
	case RGBA:
		return "rgba"
	case BGRA:
		return "bgra"
	case Gray8:
		return "gray8"
	case NV12:
		return "nv12"
	case I420:
		return "i420"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// Planar reports whether the format stores channels in separate planes.
func (f Format) Planar() bool {
	return f == NV12 || f == I420
}

// BytesPerPixel returns the packed pixel size for interleaved formats
// and 0 for planar ones.
func (f Format) BytesPerPixel() int {
	switch f {
	case RGBA, BGRA:
		return 4
	case Gray8:
		return 1
	default:
		return 0
	}
}

func (f Format) planeCount() int {
	switch f {
	case NV12:
		return 2
	case I420:
		return 3
	default:
		return 1
	}
}

// planeDims returns width-in-bytes and height of plane i.
func (f Format) planeDims(i, w, h int) (int, int) {
	switch f {
	case RGBA, BGRA:
		return 4 * w, h
	case Gray8:
		return w, h
	case NV12:
		if i == 0 {
			return w, h
		}
		return w, h / 2 // interleaved CbCr, two bytes per 2x2 block row
	case I420:
		if i == 0 {
			return w, h
		}
		return w / 2, h / 2
	}
	return 0, 0
}

// Buffer is a CPU pixel buffer in one of the supported formats.
// Planes are tightly packed (stride equals the plane row width).
type Buffer struct {
	format Format
	width  int
	height int
	planes [3][]byte
}

// New allocates a zeroed buffer of the given format and size.
// Planar YUV formats require even width and height.
func New(format Format, width, height int) (*Buffer, error) {
	if err := checkGeometry(format, width, height); err != nil {
		return nil, err
	}
	b := &Buffer{format: format, width: width, height: height}
	for i := 0; i < format.planeCount(); i++ {
		rw, rh := format.planeDims(i, width, height)
		b.planes[i] = make([]byte, rw*rh)
	}
	return b, nil
}

// FromBytes wraps a single packed byte slice (planes concatenated in
// order, no padding) into a Buffer without copying. The slice length
// must match the format exactly.
func FromBytes(format Format, width, height int, data []byte) (*Buffer, error) {
	if err := checkGeometry(format, width, height); err != nil {
		return nil, err
	}
	need := 0
	for i := 0; i < format.planeCount(); i++ {
		rw, rh := format.planeDims(i, width, height)
		need += rw * rh
	}
	if len(data) != need {
		return nil, invalidf("%s %dx%d needs %d bytes, got %d", format, width, height, need, len(data))
	}
	b := &Buffer{format: format, width: width, height: height}
	off := 0
	for i := 0; i < format.planeCount(); i++ {
		rw, rh := format.planeDims(i, width, height)
		b.planes[i] = data[off : off+rw*rh]
		off += rw * rh
	}
	return b, nil
}

func checkGeometry(format Format, width, height int) error {
	switch format {
	case RGBA, BGRA, Gray8, NV12, I420:
	default:
		return invalidf("unknown format %s", format)
	}
	if width <= 0 || height <= 0 {
		return invalidf("size %dx%d", width, height)
	}
	if format.Planar() && (width%2 != 0 || height%2 != 0) {
		return invalidf("%s requires even dimensions, got %dx%d", format, width, height)
	}
	return nil
}

// Format returns the pixel layout.
func (b *Buffer) Format() Format { return b.format }

// Width returns the frame width in pixels.
func (b *Buffer) Width() int { return b.width }

// Height returns the frame height in pixels.
func (b *Buffer) Height() int { return b.height }

// Plane returns the backing bytes of plane i. Interleaved formats have
// a single plane at index 0.
func (b *Buffer) Plane(i int) []byte { return b.planes[i] }

// Stride returns the byte width of a row of plane i.
func (b *Buffer) Stride(i int) int {
	rw, _ := b.format.planeDims(i, b.width, b.height)
	return rw
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	c := &Buffer{format: b.format, width: b.width, height: b.height}
	for i := 0; i < b.format.planeCount(); i++ {
		c.planes[i] = append([]byte(nil), b.planes[i]...)
	}
	return c
}
