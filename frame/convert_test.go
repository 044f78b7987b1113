// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package frame

import (
	"bytes"
	"errors"
	"image/color"
	"testing"
)

func TestConvertSameFormatClones(t *testing.T) {
	src := gradientRGBA(t, 4, 4)
	dst, err := Convert(src, RGBA)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !bytes.Equal(dst.Plane(0), src.Plane(0)) {
		t.Error("same-format convert altered the pixels")
	}
	src.Plane(0)[0] = 0xff
	if dst.Plane(0)[0] == 0xff {
		t.Error("same-format convert shares storage with the source")
	}
}

func TestConvertRGBABGRARoundTrip(t *testing.T) {
	src := gradientRGBA(t, 4, 4)
	bgra, err := Convert(src, BGRA)
	if err != nil {
		t.Fatalf("Convert(BGRA) error = %v", err)
	}
	// Channel swap, no loss.
	if p := bgra.Plane(0); p[0] != 0 || p[2] != 0 || p[3] != 255 {
		t.Errorf("bgra pixel 0 = %v", p[:4])
	}
	back, err := Convert(bgra, RGBA)
	if err != nil {
		t.Fatalf("Convert(RGBA) error = %v", err)
	}
	if !bytes.Equal(back.Plane(0), src.Plane(0)) {
		t.Error("RGBA -> BGRA -> RGBA is not lossless")
	}
}

func TestConvertGray8Luma(t *testing.T) {
	src, err := New(RGBA, 2, 2)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	p := src.Plane(0)
	for i := 0; i < len(p); i += 4 {
		p[i], p[i+1], p[i+2], p[i+3] = 200, 100, 50, 255
	}

	gray, err := Convert(src, Gray8)
	if err != nil {
		t.Fatalf("Convert(Gray8) error = %v", err)
	}
	wantY, _, _ := color.RGBToYCbCr(200, 100, 50)
	if gray.Plane(0)[0] != wantY {
		t.Errorf("luma = %d, want %d", gray.Plane(0)[0], wantY)
	}

	back, err := Convert(gray, RGBA)
	if err != nil {
		t.Fatalf("Convert(RGBA) error = %v", err)
	}
	if q := back.Plane(0); q[0] != wantY || q[1] != wantY || q[2] != wantY || q[3] != 255 {
		t.Errorf("gray expands to %v, want uniform %d with opaque alpha", q[:4], wantY)
	}
}

// TestConvertYUVRoundTrip pushes a solid color through RGBA -> NV12 ->
// RGBA and checks it survives within the usual BT.601 rounding.
func TestConvertYUVRoundTrip(t *testing.T) {
	src, err := New(RGBA, 4, 4)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	p := src.Plane(0)
	for i := 0; i < len(p); i += 4 {
		p[i], p[i+1], p[i+2], p[i+3] = 180, 90, 45, 255
	}

	nv12, err := Convert(src, NV12)
	if err != nil {
		t.Fatalf("Convert(NV12) error = %v", err)
	}
	back, err := Convert(nv12, RGBA)
	if err != nil {
		t.Fatalf("Convert(RGBA) error = %v", err)
	}
	q := back.Plane(0)
	for i := 0; i < len(q); i += 4 {
		for c := 0; c < 3; c++ {
			diff := int(q[i+c]) - int(p[i+c])
			if diff < -3 || diff > 3 {
				t.Fatalf("channel %d drifted by %d after a YUV round trip", c, diff)
			}
		}
		if q[i+3] != 255 {
			t.Fatalf("alpha = %d, want 255", q[i+3])
		}
	}
}

// TestConvertNV12I420Repack checks the chroma repack preserves samples
// exactly, with no color math.
func TestConvertNV12I420Repack(t *testing.T) {
	src, err := New(NV12, 4, 4)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for i := range src.Plane(0) {
		src.Plane(0)[i] = byte(i)
	}
	// Interleaved Cb, Cr pairs with distinct values.
	for i := range src.Plane(1) {
		src.Plane(1)[i] = byte(64 + i)
	}

	i420, err := Convert(src, I420)
	if err != nil {
		t.Fatalf("Convert(I420) error = %v", err)
	}
	if !bytes.Equal(i420.Plane(0), src.Plane(0)) {
		t.Error("luma plane changed during a chroma repack")
	}
	// Cb from even offsets, Cr from odd.
	wantCb := []byte{64, 66, 68, 70}
	wantCr := []byte{65, 67, 69, 71}
	if !bytes.Equal(i420.Plane(1), wantCb) {
		t.Errorf("Cb plane = %v, want %v", i420.Plane(1), wantCb)
	}
	if !bytes.Equal(i420.Plane(2), wantCr) {
		t.Errorf("Cr plane = %v, want %v", i420.Plane(2), wantCr)
	}

	back, err := Convert(i420, NV12)
	if err != nil {
		t.Fatalf("Convert(NV12) error = %v", err)
	}
	if !bytes.Equal(back.Plane(1), src.Plane(1)) {
		t.Error("NV12 -> I420 -> NV12 chroma is not lossless")
	}
}

func TestConvertRejectsOddPlanarTarget(t *testing.T) {
	src := gradientRGBA(t, 3, 3)
	if _, err := Convert(src, NV12); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("odd-sized planar target: err = %v, want ErrInvalidArgument", err)
	}
}

func TestConvertNilSource(t *testing.T) {
	if _, err := Convert(nil, RGBA); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("nil source: err = %v, want ErrInvalidArgument", err)
	}
}
