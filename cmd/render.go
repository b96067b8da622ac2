package cmd

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"os/signal"
	"runtime"

	"github.com/echoflaresat/raytrace/colors"
	"github.com/echoflaresat/raytrace/render"
	"github.com/urfave/cli"
)

// RenderFlags configure the tracer and the output image.
var RenderFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "width",
		Value: 512,
		Usage: "frame width",
	},
	cli.IntFlag{
		Name:  "height",
		Value: 512,
		Usage: "frame height",
	},
	cli.IntFlag{
		Name:  "depth, d",
		Value: render.DefaultOptions().MaxDepth,
		Usage: "reflection/refraction bounces",
	},
	cli.Float64Flag{
		Name:  "threshold",
		Usage: "drop secondary rays whose weight falls below this",
	},
	cli.IntFlag{
		Name:  "workers",
		Value: runtime.NumCPU(),
		Usage: "rows traced in parallel",
	},
	cli.BoolFlag{
		Name:  "sky",
		Usage: "shade rays that miss with a sky gradient instead of black",
	},
}

func renderOptions(ctx *cli.Context) render.Options {
	opts := render.DefaultOptions()
	opts.MaxDepth = ctx.Int("depth")
	opts.Threshold = ctx.Float64("threshold")
	opts.Workers = ctx.Int("workers")
	if ctx.Bool("sky") {
		opts.Environment = render.Sky{
			Zenith:  colors.RGB(0.25, 0.45, 0.85),
			Horizon: colors.RGB(0.8, 0.85, 0.95),
			Ground:  colors.Gray(0.15),
		}
	}
	return opts
}

// RenderFrame traces a scene and writes it as a PNG.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	s, err := loadScene(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	out := ctx.String("out")
	rt := render.New(s, renderOptions(ctx))

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rt.TraceImage(sigCtx, ctx.Int("width"), ctx.Int("height")); err != nil {
		return err
	}

	if err := writePNG(out, rt.Image()); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	slog.Info("frame written", "path", out)
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return (&png.Encoder{CompressionLevel: png.BestSpeed}).Encode(f, img)
}
