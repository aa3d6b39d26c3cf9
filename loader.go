package osgearth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	shp "github.com/jonas-p/go-shp"
	geojson "github.com/paulmach/go.geojson"

	"github.com/vis-sim/osgearth/geometry"
)

// LoadFeatures reads a feature file, dispatching on the extension:
// .json/.geojson for GeoJSON, .shp for shapefiles.
func LoadFeatures(path string) (FeatureList, error) {
	switch filepath.Ext(path) {
	case ".json", ".geojson":
		return loadGeoJSON(path)
	case ".shp":
		return loadShapefile(path)
	}
	return nil, fmt.Errorf("unsupported feature file %q", path)
}

func loadGeoJSON(path string) (FeatureList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	fc := &geojson.FeatureCollection{}
	err = json.Unmarshal(data, fc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %s", path, err)
	}
	return FeaturesFromGeoJSON(fc), nil
}

// loadShapefile reads point, polyline and polygon shapes. Polygon
// parts are classified by winding: shapefiles encode outer rings
// clockwise and holes counter-clockwise.
func loadShapefile(path string) (FeatureList, error) {
	shape, err := shp.Open(path)
	if err != nil {
		return nil, err
	}
	defer shape.Close()

	features := make(FeatureList, 0)
	for shape.Next() {
		_, p := shape.Shape()

		var geom *geometry.Geometry
		switch s := p.(type) {
		case *shp.Point:
			geom = geometry.NewPointSet([][]float64{{s.X, s.Y}})
		case *shp.PolyLine:
			parts := make([]*geometry.Geometry, 0, len(s.Parts))
			for _, points := range splitParts(s.Parts, s.Points) {
				if len(points) >= 2 {
					parts = append(parts, geometry.NewLineString(points))
				}
			}
			geom = geometry.NewMulti(parts...)
		case *shp.Polygon:
			geom = polygonFromShape(s)
		default:
			continue
		}

		if geom != nil {
			features = append(features, &Feature{Geom: geom})
		}
	}
	return features, nil
}

func splitParts(parts []int32, points []shp.Point) [][][]float64 {
	out := make([][][]float64, 0, len(parts))
	for i, first := range parts {
		last := len(points)
		if i < len(parts)-1 {
			last = int(parts[i+1])
		}

		coords := make([][]float64, 0, last-int(first))
		for _, p := range points[first:last] {
			coords = append(coords, []float64{p.X, p.Y})
		}
		out = append(out, coords)
	}
	return out
}

func polygonFromShape(poly *shp.Polygon) *geometry.Geometry {
	outer := make([][][]float64, 0)
	inner := make([][][]float64, 0)

	for _, ring := range splitParts(poly.Parts, poly.Points) {
		if len(ring) < 3 {
			continue
		}
		if geometry.IsClockwise(ring) {
			outer = append(outer, ring)
		} else {
			inner = append(inner, ring)
		}
	}

	if len(outer) == 0 {
		return nil
	}

	// attach each hole to the first shell containing it
	parts := make([]*geometry.Geometry, len(outer))
	holes := make([][][][]float64, len(outer))
	for _, hole := range inner {
		for i, shell := range outer {
			if pointInRing(hole[0], shell) {
				holes[i] = append(holes[i], hole)
				break
			}
		}
	}
	for i, shell := range outer {
		parts[i] = geometry.NewPolygon(shell, holes[i]...)
	}

	if len(parts) == 1 {
		return parts[0]
	}
	return geometry.NewMulti(parts...)
}

func pointInRing(pt []float64, ring [][]float64) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a[1] > pt[1]) != (b[1] > pt[1]) &&
			pt[0] < (b[0]-a[0])*(pt[1]-a[1])/(b[1]-a[1])+a[0] {
			inside = !inside
		}
	}
	return inside
}
