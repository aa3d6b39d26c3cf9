package osgearth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cheekybits/is"
	shp "github.com/jonas-p/go-shp"

	"github.com/vis-sim/osgearth/geometry"
)

func shpPoints(coords [][]float64) []shp.Point {
	pts := make([]shp.Point, len(coords))
	for i, c := range coords {
		pts[i] = shp.Point{X: c[0], Y: c[1]}
	}
	return pts
}

const fixtureGeoJSON = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"properties": {"name": "plaza"},
			"geometry": {
				"type": "Polygon",
				"coordinates": [
					[[0, 0], [10, 0], [10, 10], [0, 10], [0, 0]],
					[[3, 3], [7, 3], [7, 7], [3, 7], [3, 3]]
				]
			}
		},
		{
			"type": "Feature",
			"properties": {},
			"geometry": {
				"type": "MultiLineString",
				"coordinates": [
					[[0, 0], [5, 5]],
					[[1, 0], [6, 5], [6, 9]]
				]
			}
		},
		{
			"type": "Feature",
			"properties": {},
			"geometry": {
				"type": "Point",
				"coordinates": [4.35, 50.85]
			}
		}
	]
}`

func TestLoadGeoJSON(t *testing.T) {
	is := is.New(t)

	path := filepath.Join(t.TempDir(), "features.geojson")
	err := os.WriteFile(path, []byte(fixtureGeoJSON), 0644)
	is.NoErr(err)

	features, err := LoadFeatures(path)
	is.NoErr(err)
	is.Equal(len(features), 3)

	// polygon with the closing points dropped and the hole kept
	poly := features[0]
	is.Equal(poly.Geom.Type, geometry.TypePolygon)
	is.Equal(poly.Geom.Size(), 4)
	is.Equal(len(poly.Geom.Holes), 1)
	is.Equal(poly.Geom.Holes[0].Size(), 4)
	is.Equal(poly.Properties["name"], "plaza")

	// multi linestring keeps its parts
	lines := features[1].Geom
	is.Equal(lines.Type, geometry.TypeMulti)
	is.Equal(len(lines.Leaves()), 2)
	is.Equal(lines.TotalPointCount(), 5)

	// point
	pt := features[2].Geom
	is.Equal(pt.Type, geometry.TypePointSet)
	is.Equal(pt.Points[0][0], 4.35)
}

func TestLoadFeaturesUnknownExtension(t *testing.T) {
	is := is.New(t)

	_, err := LoadFeatures("features.csv")
	is.True(err != nil)
}

func TestLoadFeaturesBadJSON(t *testing.T) {
	is := is.New(t)

	path := filepath.Join(t.TempDir(), "broken.json")
	err := os.WriteFile(path, []byte("{not json"), 0644)
	is.NoErr(err)

	_, err = LoadFeatures(path)
	is.True(err != nil)
}

func TestPointInRing(t *testing.T) {
	is := is.New(t)

	ring := [][]float64{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	is.True(pointInRing([]float64{5, 5}, ring))
	is.False(pointInRing([]float64{15, 5}, ring))
	is.False(pointInRing([]float64{-1, -1}, ring))
}

func TestSplitParts(t *testing.T) {
	is := is.New(t)

	// two parts: [0..2), [2..5)
	rings := splitParts([]int32{0, 2}, shpPoints(
		[][]float64{{0, 0}, {1, 0}, {5, 5}, {6, 5}, {7, 5}},
	))
	is.Equal(len(rings), 2)
	is.Equal(len(rings[0]), 2)
	is.Equal(len(rings[1]), 3)
	is.Equal(rings[1][0][0], 5.0)
}
