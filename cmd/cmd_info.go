package cmd

import (
	"fmt"

	"github.com/vis-sim/osgearth"
)

type CmdInfo struct {
	global *GlobalOptions
}

func init() {
	_, err := parser.AddCommand("info",
		"Inspect feature files",
		"Print feature and part counts for the given files",
		&CmdInfo{global: &globalOpts})
	if err != nil {
		panic(err)
	}
}

func (cmd CmdInfo) Usage() string {
	return "features.geojson [more files...]"
}

func (cmd CmdInfo) Execute(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("No feature files specified, Usage: %s", cmd.Usage())
	}

	for _, path := range args {
		features, err := osgearth.LoadFeatures(path)
		if err != nil {
			return err
		}

		parts := 0
		points := 0
		for _, f := range features {
			if f.Geom == nil {
				continue
			}
			for _, part := range f.Geom.Leaves() {
				parts++
				points += part.TotalPointCount()
			}
		}

		fmt.Printf("%s: %d features, %d parts, %d points\n", path, len(features), parts, points)
	}
	return nil
}
