package main

import (
	"fmt"
	"log"
	"os"
	"path"
	"sort"
	"strings"

	plt "github.com/phil-mansfield/pyplot"

	"github.com/phil-mansfield/gotraj/io"
	"github.com/phil-mansfield/gotraj/plot"
)

var views = map[string]plot.Projection {
	"Side": plot.SideView,
	"Top": plot.TopView,
}

func viewNames() string {
	names := []string{}
	for name := range views { names = append(names, "'"+name+"'") }
	sort.Strings(names)
	return strings.Join(names, " and ")
}

// plotMain reads a trajectory file and draws the event tree of one primary,
// or of every primary if tag is negative.
func plotMain(fname, outDir string, view plot.Projection, tag int) error {
	recs, err := io.ReadTrajectoryFile(fname)
	if err != nil { return err }
	log.Printf("Read %d trajectory records from %s.", len(recs), fname)

	tags := plot.Tags(recs)
	if tag >= 0 { tags = []uint32{ uint32(tag) } }

	if outDir != "" {
		if err = os.MkdirAll(outDir, 0777); err != nil { return err }
	}

	plt.Reset()
	for _, t := range tags {
		tree, err := plot.BuildTree(recs, t)
		if err != nil { return err }

		counts := tree.Count()
		log.Printf(
			"Primary %d: %d elastic, %d inelastic and %d termination events.",
			t, counts[plot.Elastic], counts[plot.Inelastic],
			counts[plot.Termination],
		)

		out := ""
		if outDir != "" {
			out = path.Join(outDir, fmt.Sprintf("trajectory_%d.png", t))
		}
		plot.Render(tree, view, out)
	}
	plt.Execute()

	return nil
}
