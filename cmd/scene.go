package cmd

import (
	"fmt"
	"time"

	"github.com/echoflaresat/raytrace/octree"
	"github.com/echoflaresat/raytrace/scene"
	"github.com/echoflaresat/raytrace/scenes"
	"github.com/urfave/cli"
)

// SceneFlags select and configure a built-in scene.
var SceneFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "scene, s",
		Value: "spheres",
		Usage: "built-in scene to load",
	},
	cli.IntFlag{
		Name:  "octree-depth",
		Value: octree.DefaultConfig().MaxDepth,
		Usage: "octree subdivision depth; 0 tests every object against every ray",
	},
	cli.Float64Flag{
		Name:  "min-extent",
		Value: octree.DefaultConfig().MinExtent,
		Usage: "stop subdividing octree nodes smaller than this",
	},
	cli.StringFlag{
		Name:  "texture",
		Usage: "image mapped onto the textured scene",
	},
	cli.IntFlag{
		Name:  "grid",
		Value: scenes.DefaultOptions().GridSize,
		Usage: "spheres per axis in the grid scene",
	},
	cli.StringFlag{
		Name:  "sun-time",
		Usage: "light the scene with the sun at this RFC3339 time (e.g. 2025-08-02T15:04:05Z)",
	},
	cli.Float64Flag{
		Name:  "lat",
		Usage: "observer latitude in degrees for --sun-time",
	},
	cli.Float64Flag{
		Name:  "lon",
		Usage: "observer longitude in degrees for --sun-time",
	},
	cli.Float64Flag{
		Name:  "yaw",
		Usage: "turn the camera left/right by this many degrees",
	},
	cli.Float64Flag{
		Name:  "tilt",
		Usage: "turn the camera up/down by this many degrees",
	},
}

func sceneOptions(ctx *cli.Context) (scenes.Options, error) {
	opts := scenes.DefaultOptions()
	opts.Octree = octree.Config{
		MaxDepth:  ctx.Int("octree-depth"),
		MinExtent: ctx.Float64("min-extent"),
	}
	opts.Texture = ctx.String("texture")
	opts.GridSize = ctx.Int("grid")
	opts.Lat = ctx.Float64("lat")
	opts.Lon = ctx.Float64("lon")

	if ts := ctx.String("sun-time"); ts != "" {
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return opts, fmt.Errorf("invalid --sun-time: %w", err)
		}
		opts.SunTime = t
	}
	return opts, nil
}

func loadScene(ctx *cli.Context) (*scene.Scene, error) {
	opts, err := sceneOptions(ctx)
	if err != nil {
		return nil, err
	}
	if opts.Octree.MaxDepth < 0 {
		return nil, fmt.Errorf("invalid --octree-depth %d", opts.Octree.MaxDepth)
	}

	s, err := scenes.Build(ctx.String("scene"), opts)
	if err != nil {
		return nil, err
	}
	s.Camera.Orbit(ctx.Float64("yaw"), ctx.Float64("tilt"))
	return s, nil
}

// ListScenes prints the names of the built-in scenes.
func ListScenes(ctx *cli.Context) error {
	for _, name := range scenes.Names() {
		fmt.Fprintln(ctx.App.Writer, name)
	}
	return nil
}
