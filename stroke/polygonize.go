// Package stroke converts polylines with world-unit widths into
// two-sided triangle ribbons.
package stroke

import (
	"math"

	"github.com/vis-sim/osgearth/mesh"
	"github.com/vis-sim/osgearth/symbology"
)

// miter spikes at sharp joins are clamped to this many half-widths
const miterLimit = 4.0

// Polygonize expands a polyline spine into a triangulated ribbon of
// total width stroke.Width (world units). The optional up array gives
// the surface normal at each spine vertex (radial direction on a
// globe); when nil the ribbon lies in the z plane. The result is a
// fresh draw geometry that replaces the caller's entirely: 2n vertices
// and one TRIANGLES index set with 2(n-1) triangles.
//
// Spines with fewer than two vertices yield nil.
func Polygonize(spine []mesh.Vec3, up []mesh.Vec3, stroke symbology.Stroke) *mesh.DrawGeometry {
	n := len(spine)
	if n < 2 {
		return nil
	}

	half := float64(stroke.Width) / 2

	pts := make([][3]float64, n)
	for i, v := range spine {
		pts[i] = [3]float64{float64(v[0]), float64(v[1]), float64(v[2])}
	}

	upAt := func(i int) [3]float64 {
		if up != nil && i < len(up) {
			u := up[i]
			return norm([3]float64{float64(u[0]), float64(u[1]), float64(u[2])})
		}
		return [3]float64{0, 0, 1}
	}

	// unit tangent of each segment
	tangents := make([][3]float64, n-1)
	for i := 0; i < n-1; i++ {
		tangents[i] = norm(sub(pts[i+1], pts[i]))
	}

	geom := &mesh.DrawGeometry{}
	geom.Verts = make([]mesh.Vec3, 0, 2*n)

	for i := 0; i < n; i++ {
		// side direction: segment normal at the ends, clamped miter
		// bisector at interior joins
		var side [3]float64
		scale := half
		switch {
		case i == 0:
			side = norm(cross(upAt(i), tangents[0]))
		case i == n-1:
			side = norm(cross(upAt(i), tangents[n-2]))
		default:
			n0 := norm(cross(upAt(i), tangents[i-1]))
			n1 := norm(cross(upAt(i), tangents[i]))
			side = norm(add(n0, n1))
			cosHalf := dot(side, n1)
			if cosHalf > 1e-6 {
				m := 1 / cosHalf
				if m > miterLimit {
					m = miterLimit
				}
				scale = half * m
			}
		}

		l := add(pts[i], mul(side, scale))
		r := sub(pts[i], mul(side, scale))
		geom.Verts = append(geom.Verts,
			mesh.Vec3{float32(l[0]), float32(l[1]), float32(l[2])},
			mesh.Vec3{float32(r[0]), float32(r[1]), float32(r[2])})
	}

	indices := make([]uint32, 0, 6*(n-1))
	for i := 0; i < n-1; i++ {
		l0 := uint32(2 * i)
		r0 := l0 + 1
		l1 := l0 + 2
		r1 := l0 + 3
		indices = append(indices, l0, r0, l1, r0, r1, l1)
	}
	geom.Primitives = []*mesh.PrimitiveSet{mesh.NewDrawElements(mesh.Triangles, indices)}

	return geom
}

func add(a, b [3]float64) [3]float64 { return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func sub(a, b [3]float64) [3]float64 { return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func mul(a [3]float64, s float64) [3]float64 {
	return [3]float64{a[0] * s, a[1] * s, a[2] * s}
}
func dot(a, b [3]float64) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }
func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}
func norm(a [3]float64) [3]float64 {
	l := math.Sqrt(dot(a, a))
	if l == 0 {
		return [3]float64{0, 0, 1}
	}
	return mul(a, 1/l)
}
