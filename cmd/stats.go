package cmd

import (
	"bytes"
	"fmt"
	"time"

	"github.com/echoflaresat/raytrace/octree"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// ShowStats builds the scene's octree and prints its shape.
func ShowStats(ctx *cli.Context) error {
	setupLogging(ctx)

	s, err := loadScene(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	start := time.Now()
	s.Freeze()
	elapsed := time.Since(start)

	st, ok := s.Stats()
	if !ok {
		fmt.Fprintf(ctx.App.Writer, "octree disabled: %d objects tested per ray\n", len(s.Objects()))
		return nil
	}
	fmt.Fprint(ctx.App.Writer, statsTable(st, s.OctreeConfig(), elapsed))
	return nil
}

func statsTable(st octree.Stats, cfg octree.Config, build time.Duration) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Octree", "Value"})
	table.Append([]string{"Max depth", fmt.Sprintf("%d", cfg.MaxDepth)})
	table.Append([]string{"Min extent", fmt.Sprintf("%g", cfg.MinExtent)})
	table.Append([]string{"Objects", fmt.Sprintf("%d", st.Objects)})
	table.Append([]string{"Unbounded objects", fmt.Sprintf("%d", st.Unbounded)})
	table.Append([]string{" ", " "})
	table.Append([]string{"Nodes", fmt.Sprintf("%d", st.Nodes)})
	table.Append([]string{"Internal", fmt.Sprintf("%d", st.Internal)})
	table.Append([]string{"Leaves", fmt.Sprintf("%d", st.Leaves)})
	table.Append([]string{"Empty leaves", fmt.Sprintf("%d", st.EmptyLeaf)})
	table.Append([]string{"Unexpanded", fmt.Sprintf("%d", st.Unexpanded)})
	table.Append([]string{"Deepest node", fmt.Sprintf("%d", st.MaxDepth)})
	table.Append([]string{"Objects per leaf", fmt.Sprintf("%.2f", st.ObjectsPerLeaf())})
	table.SetFooter([]string{"Build time", build.Round(time.Microsecond).String()})
	table.Render()
	return buf.String()
}
