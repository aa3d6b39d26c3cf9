package osgearth

import (
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vis-sim/osgearth/geometry"
	"github.com/vis-sim/osgearth/mesh"
	"github.com/vis-sim/osgearth/srs"
	"github.com/vis-sim/osgearth/stroke"
	"github.com/vis-sim/osgearth/subdivide"
	"github.com/vis-sim/osgearth/symbology"
	"github.com/vis-sim/osgearth/tessellate"
)

// useSingleColor switches the color pass to a single overall color per
// geometry instead of per-vertex binding. Per-vertex ships as the
// default so downstream passes can recolor subranges.
const useSingleColor = false

// BuildGeometryFilter compiles a feature list into a mesh batch. One
// invocation runs start to finish on the caller's goroutine; an
// instance must not be shared between concurrent invocations, distinct
// instances are independent.
type BuildGeometryFilter struct {
	// Style supplies the symbols driving render-type resolution.
	Style symbology.Style
	// MaxAngle is the subdivision threshold in degrees.
	MaxAngle float64
	// GeoInterp is the interpolation mode used when a feature does not
	// carry its own.
	GeoInterp subdivide.Interp
	// FeatureName, when set, names every draw geometry after its
	// feature and disables geometry consolidation.
	FeatureName func(*Feature) string
	// MergeGeometry permits consolidation of compatible geometries.
	MergeGeometry          bool
	UseVertexBufferObjects bool
	Debug                  bool

	// active style during a process pass; the fill+outline composition
	// swaps symbols out of a temporary copy
	style symbology.Style

	frame srs.LocalFrame
	geoms []*mesh.DrawGeometry
}

// NewBuildGeometryFilter returns a filter with the defaults of the
// original pipeline: 1 degree granularity, rhumb-line interpolation,
// merged geometry, vertex buffer objects on.
func NewBuildGeometryFilter(style symbology.Style) *BuildGeometryFilter {
	f := &BuildGeometryFilter{
		Style:                  style,
		MaxAngle:               1.0,
		GeoInterp:              subdivide.RhumbLine,
		MergeGeometry:          true,
		UseVertexBufferObjects: true,
	}
	f.reset()
	return f
}

// reset clears any prior accumulator: idle -> building.
func (f *BuildGeometryFilter) reset() {
	f.geoms = nil
	f.frame = srs.IdentityFrame()
}

// Push compiles the feature batch and hands the accumulated mesh out
// exactly once. It returns nil when no geometry was produced, which is
// indistinguishable from an all-skipped input.
func (f *BuildGeometryFilter) Push(features FeatureList, ctx *FilterContext) *mesh.Node {
	f.reset()
	f.computeLocalizers(features, ctx)

	var ok bool
	if f.Style.Polygon != nil && f.Style.Line != nil {
		// two passes: fill without the line symbol, then outlines
		// without the polygon symbol
		f.style = f.Style.WithoutLine()
		ok = f.process(features, ctx)
		f.style = f.Style.WithoutPolygon()
		ok = f.process(features, ctx) && ok
	} else {
		f.style = f.Style
		ok = f.process(features, ctx)
	}

	if f.FeatureName == nil && f.MergeGeometry {
		f.geoms = mesh.Consolidate(f.geoms)
		for _, g := range f.geoms {
			mesh.OptimizeVertexCache(g)
		}
	}

	if !ok || len(f.geoms) == 0 {
		f.geoms = nil
		return nil
	}

	state := mesh.RenderState{PointSize: 1, LineWidth: 1}
	if !f.Style.Empty() {
		if line := f.Style.Line; line != nil {
			width := line.Stroke.Width
			if width < 1 {
				width = 1
			}
			state.LineWidth = width
			state.PointSize = width
		}
		if point := f.Style.Point; point != nil && point.Size > 0 {
			state.PointSize = point.Size
		}
	}

	node := &mesh.Node{
		Local2World: f.frame.Local2World,
		Geoms:       f.geoms,
		State:       state,
	}
	f.geoms = nil // delivered
	return node
}

// computeLocalizers derives the world-to-local matrix pair from the
// centroid of the batch extent so vertex coordinates stay inside
// single-precision range.
func (f *BuildGeometryFilter) computeLocalizers(features FeatureList, ctx *FilterContext) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	found := false

	for _, feature := range features {
		if feature.Geom == nil {
			continue
		}
		for _, part := range feature.Geom.Leaves() {
			for _, c := range allRingPoints(part) {
				minX = math.Min(minX, c[0])
				maxX = math.Max(maxX, c[0])
				minY = math.Min(minY, c[1])
				maxY = math.Max(maxY, c[1])
				found = true
			}
		}
	}
	if !found {
		return
	}

	cx := (minX + maxX) / 2
	cy := (minY + maxY) / 2
	centroid := []float64{cx, cy}

	switch {
	case ctx.Georeferenced && ctx.Geocentric:
		geo := srs.Transform(centroid, ctx.FeatureSRS, srs.WGS84)
		x, y, z := srs.GeodeticToECEF(geo[0], geo[1], 0)
		f.frame = srs.NewLocalFrame(mgl64.Vec3{x, y, z}, true)
	case ctx.Georeferenced:
		m := srs.Transform(centroid, ctx.FeatureSRS, ctx.MapSRS)
		f.frame = srs.NewLocalFrame(mgl64.Vec3{m[0], m[1], 0}, false)
	default:
		f.frame = srs.NewLocalFrame(mgl64.Vec3{cx, cy, 0}, false)
	}
}

func allRingPoints(part *geometry.Geometry) [][]float64 {
	points := part.Points
	for _, h := range part.Holes {
		points = append(points, h.Points...)
	}
	return points
}

// resolveRenderType maps a leaf part and the active symbols to the
// primitive class it will be built as. First match wins.
func resolveRenderType(part *geometry.Geometry, style symbology.Style) geometry.Type {
	if style.Polygon != nil &&
		part.Type != geometry.TypePointSet &&
		part.TotalPointCount() >= 3 {
		return geometry.TypePolygon
	}
	if style.Line != nil {
		if part.Type == geometry.TypePolygon {
			return geometry.TypeRing
		}
		return part.Type
	}
	if style.Point != nil {
		return geometry.TypePointSet
	}
	return part.Type
}

// primaryColor picks polygon fill, else line stroke, else point fill,
// else opaque white.
func primaryColor(style symbology.Style) symbology.Color {
	switch {
	case style.Polygon != nil:
		return style.Polygon.Fill
	case style.Line != nil:
		return style.Line.Stroke.Color
	case style.Point != nil:
		return style.Point.Fill
	}
	return symbology.White
}

// process compiles every leaf part of every feature into the
// accumulator. Malformed parts are skipped silently.
func (f *BuildGeometryFilter) process(features FeatureList, ctx *FilterContext) bool {
	makeECEF := false
	var featureSRS, mapSRS *srs.SpatialReference
	if ctx.Georeferenced {
		makeECEF = ctx.Geocentric
		featureSRS = ctx.FeatureSRS
		mapSRS = ctx.MapSRS
	}

	for _, input := range features {
		if input.Geom == nil {
			continue
		}

		for _, part := range input.Geom.Leaves() {
			if part.Size() == 0 {
				continue
			}

			myStyle := f.style
			if input.Style != nil {
				myStyle = *input.Style
			}

			pointSymbol := myStyle.Point
			lineSymbol := myStyle.Line

			renderType := resolveRenderType(part, myStyle)

			// validate against the minimum vertex counts
			if renderType == geometry.TypePolygon && part.Size() < 3 {
				continue
			}
			if (renderType == geometry.TypeLineString || renderType == geometry.TypeRing) && part.Size() < 2 {
				continue
			}

			primary := primaryColor(myStyle)

			geom := &mesh.DrawGeometry{UseVBO: f.UseVertexBufferObjects}
			if f.FeatureName != nil {
				geom.Name = f.FeatureName(input)
			}

			if renderType == geometry.TypePolygon {
				f.buildPolygon(part, featureSRS, mapSRS, makeECEF, true, geom)
				if len(geom.Verts) == 0 {
					continue
				}
				if f.Style.Line != nil {
					// keep the fill behind the outline pass
					geom.State.PolygonOffsetFactor = 1
					geom.State.PolygonOffsetUnits = 1
				}
			} else {
				built := f.buildLinear(part, renderType, featureSRS, mapSRS, makeECEF, lineSymbol, pointSymbol, geom)
				if built == nil {
					continue
				}
				geom = built
			}

			// subdivide the mesh if necessary to conform to a globe
			if makeECEF && renderType != geometry.TypePointSet {
				if !f.style.Line.TessellationDisabled() {
					threshold := f.MaxAngle * math.Pi / 180
					if f.Debug {
						log.Printf("running mesh subdivider with threshold %v", f.MaxAngle)
					}
					interp := f.GeoInterp
					if input.GeoInterp != nil {
						interp = *input.GeoInterp
					}
					ms := subdivide.New(f.frame.World2Local, f.frame.Local2World)
					ms.Run(geom, threshold, interp)
				}
			}

			if useSingleColor {
				geom.Colors = []mesh.Vec4{mesh.Vec4(primary)}
				geom.ColorBinding = mesh.BindOverall
			} else {
				colors := make([]mesh.Vec4, len(geom.Verts))
				for i := range colors {
					colors[i] = mesh.Vec4(primary)
				}
				geom.Colors = colors
				geom.ColorBinding = mesh.BindPerVertex
			}

			f.geoms = append(f.geoms, geom)

			if ctx.Index != nil {
				ctx.Index.TagPrimitiveSets(geom, input)
			}
		}
	}

	return true
}

// buildPolygon assembles the outer ring and any valid holes into one
// shared vertex array with a LINE_LOOP per contour, then optionally
// rewrites the loops into triangles. Invalid holes are dropped, an
// invalid outer ring leaves the geometry empty.
func (f *BuildGeometryFilter) buildPolygon(ring *geometry.Geometry, featureSRS, mapSRS *srs.SpatialReference, makeECEF, tess bool, geom *mesh.DrawGeometry) {
	if !ring.IsValid() {
		return
	}

	var allPoints []mesh.Vec3
	srs.TransformAndLocalize(ring.Points, featureSRS, &allPoints, mapSRS, f.frame.World2Local, makeECEF)
	geom.Primitives = append(geom.Primitives, mesh.NewDrawArrays(mesh.LineLoop, 0, ring.Size()))

	offset := ring.Size()
	for _, hole := range ring.Holes {
		if !hole.IsValid() {
			continue
		}
		srs.TransformAndLocalize(hole.Points, featureSRS, &allPoints, mapSRS, f.frame.World2Local, makeECEF)
		geom.Primitives = append(geom.Primitives, mesh.NewDrawArrays(mesh.LineLoop, offset, hole.Size()))
		offset += hole.Size()
	}
	geom.Verts = allPoints

	if tess {
		tessellate.Geometry(geom)
	}
}

// buildLinear compiles a line or point part. A world-unit stroke
// replaces the draw geometry with a polygonized ribbon.
func (f *BuildGeometryFilter) buildLinear(part *geometry.Geometry, renderType geometry.Type, featureSRS, mapSRS *srs.SpatialReference, makeECEF bool, lineSymbol *symbology.LineSymbol, pointSymbol *symbology.PointSymbol, geom *mesh.DrawGeometry) *mesh.DrawGeometry {
	primMode := mesh.Points
	switch renderType {
	case geometry.TypeLineString:
		primMode = mesh.LineStrip
	case geometry.TypeRing:
		primMode = mesh.LineLoop
	}

	// a polygon rendered as its outline keeps the hole loops
	if renderType == geometry.TypeRing && part.Type == geometry.TypePolygon &&
		(lineSymbol == nil || lineSymbol.Stroke.WidthUnits == symbology.Pixels) {
		f.buildPolygon(part, featureSRS, mapSRS, makeECEF, false, geom)
		if len(geom.Verts) == 0 {
			return nil
		}
		if lineSymbol != nil {
			applyLineSymbology(&geom.State, lineSymbol)
		}
		return geom
	}

	var allPoints []mesh.Vec3
	srs.TransformAndLocalize(part.Points, featureSRS, &allPoints, mapSRS, f.frame.World2Local, makeECEF)

	if lineSymbol != nil && lineSymbol.Stroke.WidthUnits != symbology.Pixels {
		var ups []mesh.Vec3
		if makeECEF {
			ups = f.radialUps(allPoints)
		}
		ribbon := stroke.Polygonize(allPoints, ups, lineSymbol.Stroke)
		if ribbon == nil {
			return nil
		}
		ribbon.Name = geom.Name
		ribbon.UseVBO = geom.UseVBO
		return ribbon
	}

	geom.Primitives = append(geom.Primitives, mesh.NewDrawArrays(primMode, 0, len(allPoints)))
	geom.Verts = allPoints
	if lineSymbol != nil {
		applyLineSymbology(&geom.State, lineSymbol)
	}
	if pointSymbol != nil {
		applyPointSymbology(&geom.State, pointSymbol)
	}

	// a lone point has no extent; give it a box the culler can use
	if primMode == mesh.Points && len(allPoints) == 1 {
		c := allPoints[0]
		geom.InitialBound = &mesh.BoundingBox{
			Min: mesh.Vec3{c[0] - 0.5, c[1] - 0.5, c[2] - 0.5},
			Max: mesh.Vec3{c[0] + 0.5, c[1] + 0.5, c[2] + 0.5},
		}
	}
	return geom
}

// radialUps returns the per-vertex up axis on the globe: the radial
// direction expressed in the local frame.
func (f *BuildGeometryFilter) radialUps(points []mesh.Vec3) []mesh.Vec3 {
	ups := make([]mesh.Vec3, len(points))
	for i, p := range points {
		local := mgl64.Vec3{float64(p[0]), float64(p[1]), float64(p[2])}
		w := f.frame.Local2World.Mul4x1(local.Vec4(1))
		dir := mgl64.Vec3{w.X(), w.Y(), w.Z()}.Normalize()
		back := f.frame.World2Local.Mul4x1(dir.Vec4(0))
		ups[i] = mesh.Vec3{float32(back.X()), float32(back.Y()), float32(back.Z())}
	}
	return ups
}

func applyLineSymbology(state *mesh.RenderState, line *symbology.LineSymbol) {
	width := line.Stroke.Width
	if width < 1 {
		width = 1
	}
	state.LineWidth = width
}

func applyPointSymbology(state *mesh.RenderState, point *symbology.PointSymbol) {
	if point.Size > 0 {
		state.PointSize = point.Size
	}
}
