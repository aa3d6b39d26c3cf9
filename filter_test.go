package osgearth

import (
	"math"
	"testing"

	"github.com/cheekybits/is"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/vis-sim/osgearth/geometry"
	"github.com/vis-sim/osgearth/mesh"
	"github.com/vis-sim/osgearth/srs"
	"github.com/vis-sim/osgearth/subdivide"
	"github.com/vis-sim/osgearth/symbology"
)

var (
	red   = symbology.Color{1, 0, 0, 1}
	green = symbology.Color{0, 1, 0, 1}
	black = symbology.Color{0, 0, 0, 1}
)

func polygonStyle(fill symbology.Color) symbology.Style {
	return symbology.Style{Polygon: &symbology.PolygonSymbol{Fill: fill}}
}

func lineStyle(color symbology.Color, width float32, units symbology.Units) symbology.Style {
	return symbology.Style{Line: &symbology.LineSymbol{
		Stroke: symbology.Stroke{Color: color, Width: width, WidthUnits: units},
	}}
}

func worldOf(node *mesh.Node, v mesh.Vec3) mgl64.Vec3 {
	local := mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
	out := node.Local2World.Mul4x1(local.Vec4(1))
	return mgl64.Vec3{out.X(), out.Y(), out.Z()}
}

func triangleArea2D(g *mesh.DrawGeometry) float64 {
	total := 0.0
	for _, p := range g.Primitives {
		if p.Mode != mesh.Triangles {
			continue
		}
		for i := 0; i+2 < p.NumIndices(); i += 3 {
			a := g.Verts[p.Index(i)]
			b := g.Verts[p.Index(i+1)]
			c := g.Verts[p.Index(i+2)]
			total += math.Abs(float64(b[0]-a[0])*float64(c[1]-a[1])-
				float64(c[0]-a[0])*float64(b[1]-a[1])) / 2
		}
	}
	return total
}

func TestPolygonFill(t *testing.T) {
	is := is.New(t)

	f := NewBuildGeometryFilter(polygonStyle(red))
	features := FeatureList{{
		Geom: geometry.NewPolygon([][]float64{{0, 0}, {10, 0}, {10, 10}}),
	}}

	node := f.Push(features, &FilterContext{})
	is.NotNil(node)
	is.Equal(len(node.Geoms), 1)

	g := node.Geoms[0]
	is.Equal(len(g.Verts), 3)
	is.Equal(len(g.Primitives), 1)
	is.Equal(g.Primitives[0].Mode, mesh.Triangles)
	is.Equal(g.Primitives[0].NumIndices(), 3)

	// per-vertex fill color
	is.Equal(g.ColorBinding, mesh.BindPerVertex)
	is.Equal(len(g.Colors), 3)
	for _, c := range g.Colors {
		is.Equal(c, mesh.Vec4(red))
	}

	// vertices are localized around the extent centroid and delocalize
	// back to the input coordinates
	w := worldOf(node, g.Verts[0])
	is.True(w.Sub(mgl64.Vec3{0, 0, 0}).Len() < 1e-4)

	is.Equal(node.State.LineWidth, float32(1))
	is.Equal(node.State.PointSize, float32(1))
}

func TestPolygonWithHoleKeepsArea(t *testing.T) {
	is := is.New(t)

	f := NewBuildGeometryFilter(polygonStyle(red))
	features := FeatureList{{
		Geom: geometry.NewPolygon(
			[][]float64{{0, 0}, {10, 0}, {10, 10}, {0, 10}},
			[][]float64{{3, 3}, {7, 3}, {7, 7}, {3, 7}},
		),
	}}

	node := f.Push(features, &FilterContext{})
	is.NotNil(node)
	is.Equal(len(node.Geoms), 1)

	g := node.Geoms[0]
	is.Equal(len(g.Verts), 8)
	is.True(math.Abs(triangleArea2D(g)-84) < 1e-2)
	is.Equal(len(g.Colors), 8)
}

func TestGeocentricLineSubdivision(t *testing.T) {
	is := is.New(t)

	f := NewBuildGeometryFilter(lineStyle(black, 2, symbology.Pixels))
	f.GeoInterp = subdivide.GreatCircle
	features := FeatureList{{
		Geom: geometry.NewLineString([][]float64{{0, 0}, {90, 0}}),
	}}

	node := f.Push(features, &FilterContext{
		Georeferenced: true,
		FeatureSRS:    srs.WGS84,
		MapSRS:        srs.WGS84,
		Geocentric:    true,
	})
	is.NotNil(node)
	is.Equal(len(node.Geoms), 1)

	g := node.Geoms[0]
	is.Equal(len(g.Primitives), 1)
	is.Equal(g.Primitives[0].Mode, mesh.LineStrip)
	is.True(len(g.Verts) >= 91)
	is.Equal(len(g.Colors), len(g.Verts))

	// every vertex sits on the globe, not on the chord through it
	for _, v := range g.Verts {
		r := worldOf(node, v).Len()
		is.True(r > srs.EarthRadiusEquator*0.999)
		is.True(r < srs.EarthRadiusEquator*1.001)
	}

	is.Equal(g.State.LineWidth, float32(2))
	is.Equal(node.State.LineWidth, float32(2))
}

func TestTessellationZeroSuppressesSubdivision(t *testing.T) {
	is := is.New(t)

	zero := 0
	style := lineStyle(black, 2, symbology.Pixels)
	style.Line.Tessellation = &zero

	f := NewBuildGeometryFilter(style)
	features := FeatureList{{
		Geom: geometry.NewLineString([][]float64{{0, 0}, {90, 0}}),
	}}

	node := f.Push(features, &FilterContext{
		Georeferenced: true,
		FeatureSRS:    srs.WGS84,
		MapSRS:        srs.WGS84,
		Geocentric:    true,
	})
	is.NotNil(node)
	is.Equal(len(node.Geoms[0].Verts), 2)
}

func TestWorldUnitStrokeBecomesRibbon(t *testing.T) {
	is := is.New(t)

	f := NewBuildGeometryFilter(lineStyle(black, 5, symbology.Meters))
	features := FeatureList{{
		Geom: geometry.NewLineString([][]float64{{0, 0}, {100, 0}, {200, 0}}),
	}}

	node := f.Push(features, &FilterContext{})
	is.NotNil(node)
	is.Equal(len(node.Geoms), 1)

	g := node.Geoms[0]
	for _, p := range g.Primitives {
		is.Equal(p.Mode, mesh.Triangles)
	}
	is.Equal(len(g.Verts), 6)
	is.Equal(len(g.Colors), 6)

	// ribbon width is the stroke width in world units
	l, r := g.Verts[0], g.Verts[1]
	dy := float64(l[1] - r[1])
	is.True(math.Abs(math.Abs(dy)-5) < 1e-4)
}

func TestFillAndOutlineTwoPass(t *testing.T) {
	is := is.New(t)

	style := polygonStyle(green)
	style.Line = &symbology.LineSymbol{
		Stroke: symbology.Stroke{Color: black, Width: 2, WidthUnits: symbology.Pixels},
	}

	f := NewBuildGeometryFilter(style)
	features := FeatureList{{
		Geom: geometry.NewPolygon([][]float64{{0, 0}, {10, 0}, {10, 10}}),
	}}

	node := f.Push(features, &FilterContext{})
	is.NotNil(node)
	is.Equal(len(node.Geoms), 2)

	fill := node.Geoms[0]
	is.Equal(fill.Primitives[0].Mode, mesh.Triangles)
	is.Equal(fill.State.PolygonOffsetFactor, float32(1))
	is.Equal(fill.State.PolygonOffsetUnits, float32(1))
	is.Equal(fill.Colors[0], mesh.Vec4(green))

	outline := node.Geoms[1]
	is.Equal(outline.Primitives[0].Mode, mesh.LineLoop)
	is.Equal(outline.State.LineWidth, float32(2))
	is.Equal(outline.Colors[0], mesh.Vec4(black))

	is.Equal(node.State.LineWidth, float32(2))
}

func TestDegeneratePartSkipped(t *testing.T) {
	is := is.New(t)

	f := NewBuildGeometryFilter(polygonStyle(red))
	features := FeatureList{
		{Geom: geometry.NewPolygon([][]float64{{0, 0}, {1, 1}})},
		{Geom: geometry.NewPolygon([][]float64{{0, 0}, {10, 0}, {10, 10}})},
	}

	node := f.Push(features, &FilterContext{})
	is.NotNil(node)
	is.Equal(len(node.Geoms), 1)
	is.Equal(len(node.Geoms[0].Verts), 3)
}

func TestEmptyInput(t *testing.T) {
	is := is.New(t)

	f := NewBuildGeometryFilter(polygonStyle(red))
	is.Nil(f.Push(nil, &FilterContext{}))
	is.Nil(f.Push(FeatureList{{Geom: nil}}, &FilterContext{}))
}

func TestSinglePointBound(t *testing.T) {
	is := is.New(t)

	style := symbology.Style{Point: &symbology.PointSymbol{Fill: red, Size: 4}}
	f := NewBuildGeometryFilter(style)
	features := FeatureList{{
		Geom: geometry.NewPointSet([][]float64{{7, 7}}),
	}}

	node := f.Push(features, &FilterContext{})
	is.NotNil(node)

	g := node.Geoms[0]
	is.Equal(g.Primitives[0].Mode, mesh.Points)
	is.NotNil(g.InitialBound)

	b := g.Bound()
	is.Equal(b.Max[0]-b.Min[0], float32(1))
	is.Equal(node.State.PointSize, float32(4))
}

func TestFeatureNameDisablesMerge(t *testing.T) {
	is := is.New(t)

	f := NewBuildGeometryFilter(lineStyle(black, 1, symbology.Pixels))
	f.FeatureName = func(feat *Feature) string {
		return feat.Properties["name"].(string)
	}

	features := FeatureList{
		{
			Geom:       geometry.NewLineString([][]float64{{0, 0}, {1, 0}}),
			Properties: map[string]interface{}{"name": "a"},
		},
		{
			Geom:       geometry.NewLineString([][]float64{{0, 1}, {1, 1}}),
			Properties: map[string]interface{}{"name": "b"},
		},
	}

	node := f.Push(features, &FilterContext{})
	is.NotNil(node)
	is.Equal(len(node.Geoms), 2)
	is.Equal(node.Geoms[0].Name, "a")
	is.Equal(node.Geoms[1].Name, "b")
}

func TestFeatureIndex(t *testing.T) {
	is := is.New(t)

	f := NewBuildGeometryFilter(lineStyle(black, 1, symbology.Pixels))
	f.FeatureName = func(feat *Feature) string {
		return feat.Properties["name"].(string)
	}

	features := FeatureList{
		{
			Geom:       geometry.NewLineString([][]float64{{0, 0}, {1, 0}}),
			Properties: map[string]interface{}{"name": "a"},
		},
		{
			Geom:       geometry.NewLineString([][]float64{{0, 1}, {1, 1}}),
			Properties: map[string]interface{}{"name": "b"},
		},
	}

	index := NewFeatureIndex()
	node := f.Push(features, &FilterContext{Index: index})
	is.NotNil(node)

	is.Equal(index.FeatureAt(0), features[0])
	is.Equal(index.FeatureAt(1), features[1])
	is.Nil(index.FeatureAt(99))
}

func TestPerFeatureStyleOverride(t *testing.T) {
	is := is.New(t)

	over := lineStyle(red, 3, symbology.Pixels)
	f := NewBuildGeometryFilter(polygonStyle(green))
	features := FeatureList{{
		Geom:  geometry.NewPolygon([][]float64{{0, 0}, {10, 0}, {10, 10}}),
		Style: &over,
	}}

	node := f.Push(features, &FilterContext{})
	is.NotNil(node)
	is.Equal(len(node.Geoms), 1)

	// the override renders the polygon as its outline
	g := node.Geoms[0]
	is.Equal(g.Primitives[0].Mode, mesh.LineLoop)
	is.Equal(g.State.LineWidth, float32(3))
	is.Equal(g.Colors[0], mesh.Vec4(red))
}

func TestResolveRenderType(t *testing.T) {
	is := is.New(t)

	tri := geometry.NewPolygon([][]float64{{0, 0}, {1, 0}, {1, 1}})
	line3 := geometry.NewLineString([][]float64{{0, 0}, {1, 0}, {2, 0}})
	line2 := geometry.NewLineString([][]float64{{0, 0}, {1, 0}})
	pts := geometry.NewPointSet([][]float64{{0, 0}})

	fill := polygonStyle(red)
	strokeOnly := lineStyle(black, 1, symbology.Pixels)
	pointOnly := symbology.Style{Point: &symbology.PointSymbol{Fill: red, Size: 1}}

	// polygon symbol claims everything with enough vertices
	is.Equal(resolveRenderType(tri, fill), geometry.TypePolygon)
	is.Equal(resolveRenderType(line3, fill), geometry.TypePolygon)
	is.Equal(resolveRenderType(line2, fill), geometry.TypeLineString)
	is.Equal(resolveRenderType(pts, fill), geometry.TypePointSet)

	// line symbol renders polygons as rings
	is.Equal(resolveRenderType(tri, strokeOnly), geometry.TypeRing)
	is.Equal(resolveRenderType(line3, strokeOnly), geometry.TypeLineString)

	// point symbol collapses everything to points
	is.Equal(resolveRenderType(tri, pointOnly), geometry.TypePointSet)
	is.Equal(resolveRenderType(line3, pointOnly), geometry.TypePointSet)

	// no symbols: parts keep their own type
	is.Equal(resolveRenderType(line3, symbology.Style{}), geometry.TypeLineString)

	// resolution is stable under repetition
	rt := resolveRenderType(tri, fill)
	is.Equal(resolveRenderType(tri, fill), rt)
}

func TestFilterReuse(t *testing.T) {
	is := is.New(t)

	f := NewBuildGeometryFilter(polygonStyle(red))
	features := FeatureList{{
		Geom: geometry.NewPolygon([][]float64{{0, 0}, {10, 0}, {10, 10}}),
	}}

	first := f.Push(features, &FilterContext{})
	second := f.Push(features, &FilterContext{})
	is.NotNil(first)
	is.NotNil(second)
	is.Equal(len(first.Geoms), 1)
	is.Equal(len(second.Geoms), 1)
}
