package main

import (
	"log"
	"os"

	"github.com/echoflaresat/raytrace/cmd"
	"github.com/urfave/cli"
)

func flags(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "raytrace"
	app.Usage = "render scenes with an octree-accelerated recursive ray tracer"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable debug logging",
		},
		cli.BoolFlag{
			Name:  "q",
			Usage: "only log warnings and errors",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a scene to a PNG file",
			Description: `
Trace every pixel of a built-in scene with Phong shading, reflection and
refraction. Rows are traced in parallel once the octree is fully built.`,
			Flags: flags(cmd.SceneFlags, cmd.RenderFlags, []cli.Flag{
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.png",
					Usage: "image filename for the rendered frame",
				},
			}),
			Action: cmd.RenderFrame,
		},
		{
			Name:   "stats",
			Usage:  "build the octree for a scene and print its shape",
			Flags:  cmd.SceneFlags,
			Action: cmd.ShowStats,
		},
		{
			Name:  "probe",
			Usage: "trace a single point and list every ray it spawns",
			Description: `
Runs the tracer in debug mode for one image-plane point and prints the scene's
ray cache: each primary, shadow, reflection and refraction query with its hit.`,
			Flags:  flags(cmd.SceneFlags, cmd.RenderFlags, cmd.ProbeFlags),
			Action: cmd.Probe,
		},
		{
			Name:   "scenes",
			Usage:  "list the built-in scenes",
			Action: cmd.ListScenes,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
