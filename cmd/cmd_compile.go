package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/sync/errgroup"

	"github.com/vis-sim/osgearth"
	"github.com/vis-sim/osgearth/mesh"
)

type CmdCompile struct {
	global *GlobalOptions

	Output string `short:"o" long:"output" default:"." description:"Output directory"`
}

func init() {
	_, err := parser.AddCommand("compile",
		"Compile feature files",
		"Compile feature files into mesh batches using the given style",
		&CmdCompile{global: &globalOpts})
	if err != nil {
		panic(err)
	}
}

func (cmd CmdCompile) Usage() string {
	return "features.geojson [more files...]"
}

func (cmd CmdCompile) Execute(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("No feature files specified, Usage: %s", cmd.Usage())
	}

	style, err := cmd.global.LoadStyle()
	if err != nil {
		return fmt.Errorf("Failed to load style: %s\n", err.Error())
	}

	featureSRS, err := cmd.global.FeatureSRS()
	if err != nil {
		return err
	}
	mapSRS, err := cmd.global.MapSpatialReference()
	if err != nil {
		return err
	}

	err = os.MkdirAll(cmd.Output, 0755)
	if err != nil {
		return err
	}

	bar := pb.StartNew(len(args))
	var mu sync.Mutex

	// one filter instance per file: instances are independent, inputs
	// are read-only
	g := errgroup.Group{}
	for _, path := range args {
		path := path
		g.Go(func() error {
			features, err := osgearth.LoadFeatures(path)
			if err != nil {
				return err
			}

			filter := osgearth.NewBuildGeometryFilter(style)
			filter.MaxAngle = cmd.global.MaxAngle

			ctx := &osgearth.FilterContext{
				Georeferenced: true,
				FeatureSRS:    featureSRS,
				MapSRS:        mapSRS,
				Geocentric:    cmd.global.Geocentric,
			}

			node := filter.Push(features, ctx)

			mu.Lock()
			defer mu.Unlock()
			bar.Increment()
			if node == nil {
				fmt.Printf("%s: no geometry produced\n", path)
				return nil
			}

			out := filepath.Join(cmd.Output, meshName(path))
			err = writeMesh(out, node)
			if err != nil {
				return err
			}

			verts, tris := batchStats(node)
			fmt.Printf("%s: %d geometries, %d vertices, %d triangles -> %s\n",
				path, len(node.Geoms), verts, tris, out)
			return nil
		})
	}

	err = g.Wait()
	bar.Finish()
	return err
}

func meshName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".mesh.json"
}

func batchStats(node *mesh.Node) (verts, tris int) {
	for _, g := range node.Geoms {
		verts += len(g.Verts)
		for _, p := range g.Primitives {
			if p.Mode == mesh.Triangles {
				tris += p.NumIndices() / 3
			}
		}
	}
	return
}

// flat JSON mesh layout: 3 floats per vertex, 4 per color
type meshFile struct {
	Local2World [16]float64 `json:"local2world"`
	Geometries  []meshGeom  `json:"geometries"`
}

type meshGeom struct {
	Name       string     `json:"name,omitempty"`
	Vertices   []float32  `json:"vertices"`
	Colors     []float32  `json:"colors"`
	Primitives []meshPrim `json:"primitives"`
	PointSize  float32    `json:"pointSize,omitempty"`
	LineWidth  float32    `json:"lineWidth,omitempty"`
}

type meshPrim struct {
	Mode    string   `json:"mode"`
	First   int      `json:"first,omitempty"`
	Count   int      `json:"count,omitempty"`
	Indices []uint32 `json:"indices,omitempty"`
}

func writeMesh(path string, node *mesh.Node) error {
	out := meshFile{
		Local2World: [16]float64(node.Local2World),
		Geometries:  make([]meshGeom, 0, len(node.Geoms)),
	}

	for _, g := range node.Geoms {
		mg := meshGeom{
			Name:      g.Name,
			Vertices:  make([]float32, 0, len(g.Verts)*3),
			Colors:    make([]float32, 0, len(g.Colors)*4),
			PointSize: g.State.PointSize,
			LineWidth: g.State.LineWidth,
		}
		for _, v := range g.Verts {
			mg.Vertices = append(mg.Vertices, v[0], v[1], v[2])
		}
		for _, c := range g.Colors {
			mg.Colors = append(mg.Colors, c[0], c[1], c[2], c[3])
		}
		for _, p := range g.Primitives {
			mg.Primitives = append(mg.Primitives, meshPrim{
				Mode:    p.Mode.String(),
				First:   p.First,
				Count:   p.Count,
				Indices: p.Indices,
			})
		}
		out.Geometries = append(out.Geometries, mg)
	}

	data, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
