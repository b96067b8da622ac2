// Package render turns a scene into pixels: Phong shading at each hit,
// recursive reflection and refraction, and an 8-bit RGB frame buffer.
package render

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/echoflaresat/raytrace/colors"
	"github.com/echoflaresat/raytrace/scene"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	// MaxDepth is the number of reflection/refraction bounces; 0 shades
	// primary hits only.
	MaxDepth int

	// Threshold drops child rays whose weight falls below it.
	Threshold float64

	// Workers is the number of rows traced at once by TraceImage.
	Workers int

	// Environment colors rays that miss everything. Black when nil.
	Environment Environment

	// Debug records every ray in the scene's debug cache. Each Trace call
	// starts from an empty cache, and TraceImage runs on a single worker.
	Debug bool
}

func DefaultOptions() Options {
	return Options{
		MaxDepth: 5,
		Workers:  runtime.NumCPU(),
	}
}

// Renderer owns the frame buffer. Row 0 of the buffer is the bottom of the
// image.
type Renderer struct {
	scene  *scene.Scene
	tracer Tracer
	opts   Options

	width, height int
	buffer        []byte
}

func New(s *scene.Scene, opts Options) *Renderer {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Debug {
		opts.Workers = 1
	}
	s.SetDebug(opts.Debug)
	return &Renderer{
		scene: s,
		tracer: Tracer{
			Scene:       s,
			MaxDepth:    opts.MaxDepth,
			Threshold:   opts.Threshold,
			Environment: opts.Environment,
		},
		opts: opts,
	}
}

func (rt *Renderer) Scene() *scene.Scene {
	return rt.scene
}

func (rt *Renderer) Options() Options {
	return rt.opts
}

// Trace returns the clamped color seen through image-plane point (x, y) in
// [0,1]², measured from the bottom-left corner.
func (rt *Renderer) Trace(x, y float64) colors.Color4 {
	if rt.opts.Debug {
		rt.scene.ClearDebugCache()
	}
	r := rt.scene.Camera.RayThrough(x, y)
	return rt.tracer.TraceRay(r, 0).Clamp01()
}

// SetSize (re)allocates a zeroed w×h buffer and matches the camera aspect.
func (rt *Renderer) SetSize(w, h int) {
	if w < 0 || h < 0 {
		w, h = 0, 0
	}
	rt.width, rt.height = w, h
	rt.buffer = make([]byte, w*h*3)
	if w > 0 && h > 0 {
		rt.scene.Camera.SetAspect(float64(w) / float64(h))
	}
}

func (rt *Renderer) Size() (w, h int) {
	return rt.width, rt.height
}

// TracePixel traces pixel (i, j) of the current buffer and stores the result.
func (rt *Renderer) TracePixel(i, j int) colors.Color4 {
	if !rt.inBounds(i, j) {
		return colors.Black()
	}
	x := float64(i) / float64(rt.width)
	y := float64(j) / float64(rt.height)
	c := rt.Trace(x, y)
	rt.SetPixel(i, j, c)
	return c
}

// TraceImage resizes the buffer to w×h and fills it. Rows are traced in
// parallel once the scene's octree has been frozen.
func (rt *Renderer) TraceImage(ctx context.Context, w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("invalid image size %dx%d", w, h)
	}
	rt.SetSize(w, h)
	rt.scene.Freeze()

	start := time.Now()
	slog.Info("tracing image", "width", w, "height", h, "max_depth", rt.opts.MaxDepth, "workers", rt.opts.Workers)

	var done atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(rt.opts.Workers)
	for j := 0; j < h; j++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := 0; i < w; i++ {
				rt.TracePixel(i, j)
			}
			n := done.Add(1)
			if n*10/int64(h) != (n-1)*10/int64(h) {
				slog.Info("progress", "percent", n*100/int64(h))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("image traced", "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

func (rt *Renderer) inBounds(i, j int) bool {
	return i >= 0 && j >= 0 && i < rt.width && j < rt.height
}

// Pixel reads pixel (i, j) as a normalized color.
func (rt *Renderer) Pixel(i, j int) colors.Color4 {
	if !rt.inBounds(i, j) {
		return colors.Black()
	}
	p := rt.buffer[(i+j*rt.width)*3:]
	return colors.From8BitRgb(p[0], p[1], p[2], 255)
}

// SetPixel stores a normalized color at (i, j).
func (rt *Renderer) SetPixel(i, j int, c colors.Color4) {
	if !rt.inBounds(i, j) {
		return
	}
	p := rt.buffer[(i+j*rt.width)*3:]
	p[0] = colors.To8bit(c.R)
	p[1] = colors.To8bit(c.G)
	p[2] = colors.To8bit(c.B)
}

// Buffer returns the packed RGB bytes, bottom row first.
func (rt *Renderer) Buffer() []byte {
	return rt.buffer
}

// Image returns a copy of the buffer with the top row first.
func (rt *Renderer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, rt.width, rt.height))
	for j := 0; j < rt.height; j++ {
		y := rt.height - 1 - j
		for i := 0; i < rt.width; i++ {
			src := rt.buffer[(i+j*rt.width)*3:]
			dst := img.Pix[img.PixOffset(i, y):]
			dst[0], dst[1], dst[2], dst[3] = src[0], src[1], src[2], 255
		}
	}
	return img
}
