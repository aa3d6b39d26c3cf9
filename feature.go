// Package osgearth compiles batches of styled vector features into
// renderable mesh batches expressed in a localized Cartesian frame.
package osgearth

import (
	geojson "github.com/paulmach/go.geojson"

	"github.com/vis-sim/osgearth/geometry"
	"github.com/vis-sim/osgearth/subdivide"
	"github.com/vis-sim/osgearth/symbology"
)

// Feature is one input to the compiler: a geometry, an optional style
// override and an optional geodetic interpolation mode. Features are
// read-only during a build and may be shared between filter instances.
type Feature struct {
	Geom      *geometry.Geometry
	Style     *symbology.Style
	GeoInterp *subdivide.Interp

	Properties map[string]interface{}
}

type FeatureList []*Feature

// FeatureFromGeoJSON converts a GeoJSON feature. Multi geometries stay
// multi-part; polygon rings keep their holes.
func FeatureFromGeoJSON(f *geojson.Feature) *Feature {
	return &Feature{
		Geom:       geometryFromGeoJSON(f.Geometry),
		Properties: f.Properties,
	}
}

// FeaturesFromGeoJSON converts a feature collection.
func FeaturesFromGeoJSON(fc *geojson.FeatureCollection) FeatureList {
	features := make(FeatureList, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		features = append(features, FeatureFromGeoJSON(f))
	}
	return features
}

func geometryFromGeoJSON(g *geojson.Geometry) *geometry.Geometry {
	if g == nil {
		return nil
	}

	switch g.Type {
	case geojson.GeometryPoint:
		return geometry.NewPointSet([][]float64{g.Point})
	case geojson.GeometryMultiPoint:
		return geometry.NewPointSet(g.MultiPoint)
	case geojson.GeometryLineString:
		return geometry.NewLineString(g.LineString)
	case geojson.GeometryMultiLineString:
		parts := make([]*geometry.Geometry, 0, len(g.MultiLineString))
		for _, l := range g.MultiLineString {
			parts = append(parts, geometry.NewLineString(l))
		}
		return geometry.NewMulti(parts...)
	case geojson.GeometryPolygon:
		return polygonFromRings(g.Polygon)
	case geojson.GeometryMultiPolygon:
		parts := make([]*geometry.Geometry, 0, len(g.MultiPolygon))
		for _, p := range g.MultiPolygon {
			parts = append(parts, polygonFromRings(p))
		}
		return geometry.NewMulti(parts...)
	case geojson.GeometryCollection:
		parts := make([]*geometry.Geometry, 0, len(g.Geometries))
		for _, sub := range g.Geometries {
			parts = append(parts, geometryFromGeoJSON(sub))
		}
		return geometry.NewMulti(parts...)
	}
	return nil
}

func polygonFromRings(rings [][][]float64) *geometry.Geometry {
	if len(rings) == 0 {
		return nil
	}
	return geometry.NewPolygon(rings[0], rings[1:]...)
}
