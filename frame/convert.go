// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package frame

import "image/color"

// Convert returns a copy of src in the requested format. Converting to
// the source format returns a deep copy. YUV conversions use the
// BT.601 studio-swing matrix from the standard library.
func Convert(src *Buffer, to Format) (*Buffer, error) {
	if src == nil {
		return nil, invalidf("nil source")
	}
	if err := checkGeometry(to, src.width, src.height); err != nil {
		return nil, err
	}
	if src.format == to {
		return src.Clone(), nil
	}

	// YUV-to-YUV is a chroma repack, no color math.
	if src.format.Planar() && to.Planar() {
		return repackChroma(src, to)
	}

	// Everything else funnels through packed RGBA.
	rgba := src
	if src.format != RGBA {
		var err error
		rgba, err = toRGBA(src)
		if err != nil {
			return nil, err
		}
		if to == RGBA {
			return rgba, nil
		}
	}
	return fromRGBA(rgba, to)
}

func toRGBA(src *Buffer) (*Buffer, error) {
	dst, err := New(RGBA, src.width, src.height)
	if err != nil {
		return nil, err
	}
	d := dst.planes[0]
	switch src.format {
	case BGRA:
		s := src.planes[0]
		for i := 0; i < len(s); i += 4 {
			d[i], d[i+1], d[i+2], d[i+3] = s[i+2], s[i+1], s[i], s[i+3]
		}
	case Gray8:
		s := src.planes[0]
		for i, y := range s {
			d[i*4], d[i*4+1], d[i*4+2], d[i*4+3] = y, y, y, 0xff
		}
	case NV12, I420:
		yp := src.planes[0]
		for y := 0; y < src.height; y++ {
			for x := 0; x < src.width; x++ {
				cb, cr := src.chromaAt(x, y)
				r, g, b := color.YCbCrToRGB(yp[y*src.width+x], cb, cr)
				o := (y*src.width + x) * 4
				d[o], d[o+1], d[o+2], d[o+3] = r, g, b, 0xff
			}
		}
	default:
		return nil, invalidf("convert from %s", src.format)
	}
	return dst, nil
}

func fromRGBA(src *Buffer, to Format) (*Buffer, error) {
	dst, err := New(to, src.width, src.height)
	if err != nil {
		return nil, err
	}
	s := src.planes[0]
	switch to {
	case BGRA:
		d := dst.planes[0]
		for i := 0; i < len(s); i += 4 {
			d[i], d[i+1], d[i+2], d[i+3] = s[i+2], s[i+1], s[i], s[i+3]
		}
	case Gray8:
		d := dst.planes[0]
		for i := 0; i < len(d); i++ {
			y, _, _ := color.RGBToYCbCr(s[i*4], s[i*4+1], s[i*4+2])
			d[i] = y
		}
	case NV12, I420:
		yp := dst.planes[0]
		for y := 0; y < src.height; y++ {
			for x := 0; x < src.width; x++ {
				o := (y*src.width + x) * 4
				ly, cb, cr := color.RGBToYCbCr(s[o], s[o+1], s[o+2])
				yp[y*src.width+x] = ly
				// Chroma is sampled from the top-left pixel of each
				// 2x2 block.
				if x%2 == 0 && y%2 == 0 {
					dst.setChroma(x, y, cb, cr)
				}
			}
		}
	default:
		return nil, invalidf("convert to %s", to)
	}
	return dst, nil
}

func repackChroma(src *Buffer, to Format) (*Buffer, error) {
	dst, err := New(to, src.width, src.height)
	if err != nil {
		return nil, err
	}
	copy(dst.planes[0], src.planes[0])
	for y := 0; y < src.height; y += 2 {
		for x := 0; x < src.width; x += 2 {
			cb, cr := src.chromaAt(x, y)
			dst.setChroma(x, y, cb, cr)
		}
	}
	return dst, nil
}

// chromaAt returns the Cb, Cr sample covering pixel (x, y) of a planar
// YUV buffer.
func (b *Buffer) chromaAt(x, y int) (byte, byte) {
	cx, cy := x/2, y/2
	if b.format == NV12 {
		o := cy*b.width + cx*2
		return b.planes[1][o], b.planes[1][o+1]
	}
	o := cy*(b.width/2) + cx
	return b.planes[1][o], b.planes[2][o]
}

func (b *Buffer) setChroma(x, y int, cb, cr byte) {
	cx, cy := x/2, y/2
	if b.format == NV12 {
		o := cy*b.width + cx*2
		b.planes[1][o], b.planes[1][o+1] = cb, cr
		return
	}
	o := cy*(b.width/2) + cx
	b.planes[1][o], b.planes[2][o] = cb, cr
}
