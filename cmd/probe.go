package cmd

import (
	"bytes"
	"fmt"

	"github.com/echoflaresat/raytrace/render"
	"github.com/echoflaresat/raytrace/scene"
	"github.com/echoflaresat/raytrace/vectors"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// ProbeFlags pick the image-plane point traced by the probe command.
var ProbeFlags = []cli.Flag{
	cli.Float64Flag{
		Name:  "x",
		Value: 0.5,
		Usage: "image-plane x in [0,1], left to right",
	},
	cli.Float64Flag{
		Name:  "y",
		Value: 0.5,
		Usage: "image-plane y in [0,1], bottom to top",
	},
}

// Probe traces a single point in debug mode and prints every ray it spawned.
func Probe(ctx *cli.Context) error {
	setupLogging(ctx)

	s, err := loadScene(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := renderOptions(ctx)
	opts.Debug = true
	rt := render.New(s, opts)

	x, y := ctx.Float64("x"), ctx.Float64("y")
	c := rt.Trace(x, y)

	fmt.Fprint(ctx.App.Writer, rayTable(s.DebugCache()))
	fmt.Fprintf(ctx.App.Writer, "color at (%g, %g): %.3f %.3f %.3f\n", x, y, c.R, c.G, c.B)
	return nil
}

func fmtVec(v vectors.Vec3) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}

func rayTable(records []scene.RayRecord) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"#", "Kind", "Origin", "Direction", "Object", "t", "Normal"})
	for i, rec := range records {
		obj, t, n := "-", "miss", "-"
		if rec.Hit {
			if rec.Isect.Object != nil {
				obj = rec.Isect.Object.Name
			}
			t = fmt.Sprintf("%.4f", rec.Isect.T)
			n = fmtVec(rec.Isect.N)
		}
		table.Append([]string{
			fmt.Sprintf("%d", i),
			rec.Ray.Kind.String(),
			fmtVec(rec.Ray.Position()),
			fmtVec(rec.Ray.Direction()),
			obj,
			t,
			n,
		})
	}
	table.SetFooter([]string{"", "", "", "", "", "RAYS", fmt.Sprintf("%d", len(records))})
	table.Render()
	return buf.String()
}
