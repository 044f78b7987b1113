// Command fxdemo runs a synthetic frame through a small filter chain and
// saves the captured result as a PNG.
package main

import (
	"flag"
	"image"
	"image/png"
	"log"
	"os"

	"github.com/gogpu/fx/dispatch"
	"github.com/gogpu/fx/driver"
	"github.com/gogpu/fx/filters"
	"github.com/gogpu/fx/frame"
	"github.com/gogpu/fx/pipeline"
	"github.com/gogpu/fx/render"

	// Enable the wgpu backend.
	_ "github.com/gogpu/fx/backend/wgpu"
)

func main() {
	var (
		width      = flag.Int("width", 512, "frame width")
		height     = flag.Int("height", 512, "frame height")
		output     = flag.String("output", "fxdemo.png", "output file")
		backend    = flag.String("backend", "", "backend name (default: best available)")
		brightness = flag.Float64("brightness", 0.1, "brightness offset")
		sigma      = flag.Float64("sigma", 2, "gaussian blur sigma")
	)
	flag.Parse()

	var (
		dev driver.Device
		err error
	)
	if *backend != "" {
		dev, err = driver.NewDeviceByName(*backend, driver.Options{})
	} else {
		dev, err = driver.NewDevice(driver.Options{})
	}
	if err != nil {
		log.Fatalf("create device: %v (available: %v)", err, driver.Available())
	}

	queue := dispatch.NewQueue("fxdemo")
	defer queue.Close()

	var ctx *render.Context
	queue.RunSync(func() {
		ctx, err = render.NewContext(dev, render.ContextOptions{
			Runner:     queue,
			OwnsDevice: true,
		})
	})
	if err != nil {
		log.Fatalf("create context: %v", err)
	}
	defer queue.RunSync(ctx.Destroy)

	// Source -> brightness -> separable gaussian blur.
	src := pipeline.NewImageSource(ctx)
	var (
		bright *filters.Brightness
		blur   *filters.GaussianBlur
	)
	queue.RunSync(func() {
		bright, err = filters.NewBrightness(ctx, float32(*brightness))
		if err != nil {
			return
		}
		blur, err = filters.NewGaussianBlur(ctx, *sigma)
	})
	if err != nil {
		log.Fatalf("build filters: %v", err)
	}
	src.AddTarget(bright, 0)
	bright.AddTarget(blur, 0)

	pixels := testPattern(*width, *height)

	var data []byte
	queue.RunSync(func() {
		ctx.RequestCapture(blur.Terminal(), *width, *height)
		if err = src.PushRGBA(pixels, *width, *height, 0); err != nil {
			return
		}
		data = ctx.CapturedFrameData()
	})
	if err != nil {
		log.Fatalf("render frame: %v", err)
	}
	if data == nil {
		log.Fatal("capture produced no frame")
	}

	if err := savePNG(*output, data, *width, *height); err != nil {
		log.Fatalf("save: %v", err)
	}
	log.Printf("saved %s (%dx%d)", *output, *width, *height)
}

// testPattern builds a gradient frame with a centered white square,
// exercising the frame codec on the way.
func testPattern(w, h int) []byte {
	buf, err := frame.New(frame.RGBA, w, h)
	if err != nil {
		log.Fatalf("allocate pattern: %v", err)
	}
	p := buf.Plane(0)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := (y*w + x) * 4
			p[o] = byte(255 * x / w)
			p[o+1] = byte(255 * y / h)
			p[o+2] = 96
			p[o+3] = 255
		}
	}
	for y := h * 3 / 8; y < h*5/8; y++ {
		for x := w * 3 / 8; x < w*5/8; x++ {
			o := (y*w + x) * 4
			p[o], p[o+1], p[o+2], p[o+3] = 255, 255, 255, 255
		}
	}
	// Sources deliver frames top-down; flip in place to prove the
	// round trip preserves orientation.
	if err := frame.FlipVInPlace(buf); err != nil {
		log.Fatalf("flip pattern: %v", err)
	}
	if err := frame.FlipVInPlace(buf); err != nil {
		log.Fatalf("flip pattern: %v", err)
	}
	return buf.Plane(0)
}

func savePNG(path string, rgba []byte, w, h int) error {
	img := &image.NRGBA{Pix: rgba, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
