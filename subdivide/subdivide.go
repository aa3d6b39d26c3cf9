// Package subdivide refines meshes so they conform to a curved earth:
// edges whose endpoints subtend more than an angular threshold at the
// earth's center are split recursively along the interpolation path.
package subdivide

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"github.com/vis-sim/osgearth/mesh"
)

// Interp selects the path along which new vertices are placed.
type Interp int

const (
	// GreatCircle follows the shortest path on the sphere.
	GreatCircle Interp = iota
	// RhumbLine follows a constant-bearing path.
	RhumbLine
)

// Subdivider splits mesh edges in the local frame. It needs both
// localizer matrices: vertices travel to world space, interpolate on
// the sphere and come back.
type Subdivider struct {
	world2local mgl64.Mat4
	local2world mgl64.Mat4
}

func New(world2local, local2world mgl64.Mat4) *Subdivider {
	return &Subdivider{world2local: world2local, local2world: local2world}
}

// Run refines every line and triangle primitive of g until no edge
// spans more than threshold radians. Vertex and color arrays grow
// consistently; point primitives are untouched.
func (s *Subdivider) Run(g *mesh.DrawGeometry, threshold float64, interp Interp) {
	if threshold <= 0 || len(g.Verts) == 0 {
		return
	}

	hasLines := false
	for _, p := range g.Primitives {
		switch p.Mode {
		case mesh.Triangles:
			s.subdivideTriangles(g, p, threshold, interp)
		case mesh.LineStrip, mesh.LineLoop:
			hasLines = true
		}
	}
	if hasLines {
		s.subdivideLines(g, threshold, interp)
	}
}

// arcAngle measures the angle two local-frame vertices subtend at the
// earth's center.
func (s *Subdivider) arcAngle(a, b mesh.Vec3) s1.Angle {
	wa := s.toWorld(a)
	wb := s.toWorld(b)
	pa := s2.PointFromCoords(wa.X(), wa.Y(), wa.Z())
	pb := s2.PointFromCoords(wb.X(), wb.Y(), wb.Z())
	return pa.Distance(pb)
}

func (s *Subdivider) toWorld(v mesh.Vec3) mgl64.Vec3 {
	local := mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
	out := s.local2world.Mul4x1(local.Vec4(1))
	return mgl64.Vec3{out.X(), out.Y(), out.Z()}
}

func (s *Subdivider) toLocal(v mgl64.Vec3) mesh.Vec3 {
	out := s.world2local.Mul4x1(v.Vec4(1))
	return mesh.Vec3{float32(out.X()), float32(out.Y()), float32(out.Z())}
}

// midpoint interpolates between two local-frame vertices along the
// requested path, halfway, preserving radius by linear interpolation.
func (s *Subdivider) midpoint(a, b mesh.Vec3, interp Interp) mesh.Vec3 {
	wa := s.toWorld(a)
	wb := s.toWorld(b)
	radius := (wa.Len() + wb.Len()) / 2

	var dir mgl64.Vec3
	if interp == RhumbLine {
		dir = rhumbMidpoint(wa, wb)
	} else {
		pa := s2.PointFromCoords(wa.X(), wa.Y(), wa.Z())
		pb := s2.PointFromCoords(wb.X(), wb.Y(), wb.Z())
		m := s2.Interpolate(0.5, pa, pb)
		dir = mgl64.Vec3{m.X, m.Y, m.Z}
	}
	return s.toLocal(dir.Normalize().Mul(radius))
}

// rhumbMidpoint computes the halfway point of a constant-bearing path:
// latitude interpolates on the mercator-stretched scale, longitude
// linearly along the shorter way around.
func rhumbMidpoint(a, b mgl64.Vec3) mgl64.Vec3 {
	la := s2.LatLngFromPoint(s2.PointFromCoords(a.X(), a.Y(), a.Z()))
	lb := s2.LatLngFromPoint(s2.PointFromCoords(b.X(), b.Y(), b.Z()))

	lat1, lat2 := la.Lat.Radians(), lb.Lat.Radians()
	lng1, lng2 := la.Lng.Radians(), lb.Lng.Radians()

	dlng := lng2 - lng1
	if dlng > math.Pi {
		dlng -= 2 * math.Pi
	} else if dlng < -math.Pi {
		dlng += 2 * math.Pi
	}

	midLat := (lat1 + lat2) / 2
	midLng := lng1 + dlng/2

	// weight the longitude by stretched latitude unless the path runs
	// along a parallel
	s1v := stretch(lat1)
	s2v := stretch(lat2)
	if math.Abs(s2v-s1v) > 1e-12 {
		f := (stretch(midLat) - s1v) / (s2v - s1v)
		midLng = lng1 + dlng*f
	}

	p := s2.PointFromLatLng(s2.LatLng{Lat: s1.Angle(midLat), Lng: s1.Angle(midLng)})
	return mgl64.Vec3{p.X, p.Y, p.Z}
}

func stretch(lat float64) float64 {
	return math.Log(math.Tan(math.Pi/4 + lat/2))
}

// subdivideTriangles converts the set to index form and splits the
// longest over-threshold edge of every triangle until all edges fit.
// Split points are shared between adjacent triangles.
func (s *Subdivider) subdivideTriangles(g *mesh.DrawGeometry, p *mesh.PrimitiveSet, threshold float64, interp Interp) {
	indices := make([]uint32, 0, p.NumIndices())
	for i := 0; i < p.NumIndices(); i++ {
		indices = append(indices, p.Index(i))
	}

	midCache := make(map[[2]uint32]uint32)
	midFor := func(i, j uint32) uint32 {
		key := [2]uint32{i, j}
		if j < i {
			key = [2]uint32{j, i}
		}
		if m, ok := midCache[key]; ok {
			return m
		}
		m := uint32(len(g.Verts))
		g.Verts = append(g.Verts, s.midpoint(g.Verts[i], g.Verts[j], interp))
		if g.ColorBinding == mesh.BindPerVertex && len(g.Colors) > 0 {
			g.Colors = append(g.Colors, averageColor(g.Colors[i], g.Colors[j]))
		}
		midCache[key] = m
		return m
	}

	out := make([]uint32, 0, len(indices))
	queue := make([][3]uint32, 0, len(indices)/3)
	for i := 0; i+2 < len(indices); i += 3 {
		queue = append(queue, [3]uint32{indices[i], indices[i+1], indices[i+2]})
	}

	for len(queue) > 0 {
		tri := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		// longest edge over threshold splits first
		longest, span := -1, s1.Angle(threshold)
		for e := 0; e < 3; e++ {
			a := s.arcAngle(g.Verts[tri[e]], g.Verts[tri[(e+1)%3]])
			if a > span {
				longest, span = e, a
			}
		}
		if longest < 0 {
			out = append(out, tri[0], tri[1], tri[2])
			continue
		}

		i0 := tri[longest]
		i1 := tri[(longest+1)%3]
		i2 := tri[(longest+2)%3]
		m := midFor(i0, i1)
		queue = append(queue, [3]uint32{i0, m, i2}, [3]uint32{m, i1, i2})
	}

	p.Indices = out
	p.First = 0
	p.Count = 0
}

// subdivideLines rebuilds the vertex array, densifying every line
// strip and loop range in place. Primitive ranges are rewritten to the
// new array; triangle index sets keep their (unmoved) vertices because
// line ranges are only ever combined with other line ranges.
func (s *Subdivider) subdivideLines(g *mesh.DrawGeometry, threshold float64, interp Interp) {
	verts := g.Verts
	colors := g.Colors
	perVertex := g.ColorBinding == mesh.BindPerVertex && len(colors) == len(verts)

	newVerts := make([]mesh.Vec3, 0, len(verts))
	var newColors []mesh.Vec4

	for _, p := range g.Primitives {
		if (p.Mode != mesh.LineStrip && p.Mode != mesh.LineLoop) || p.Indices != nil {
			continue
		}

		first := len(newVerts)
		n := p.Count
		for i := 0; i < n; i++ {
			cur := p.First + i
			newVerts = append(newVerts, verts[cur])
			if perVertex {
				newColors = append(newColors, colors[cur])
			}

			next := cur + 1
			closing := false
			if i == n-1 {
				if p.Mode != mesh.LineLoop {
					break
				}
				next = p.First
				closing = true
			}

			seg := s.refineSegment(verts[cur], verts[next], threshold, interp, 0)
			newVerts = append(newVerts, seg...)
			if perVertex {
				for range seg {
					newColors = append(newColors, averageColor(colors[cur], colors[next]))
				}
			}
			if closing {
				break
			}
		}

		p.First = first
		p.Count = len(newVerts) - first
	}

	g.Verts = newVerts
	if perVertex {
		g.Colors = newColors
	}
}

// refineSegment returns the interior vertices of a densified segment,
// excluding both endpoints.
func (s *Subdivider) refineSegment(a, b mesh.Vec3, threshold float64, interp Interp, depth int) []mesh.Vec3 {
	if depth > 24 || s.arcAngle(a, b) <= s1.Angle(threshold) {
		return nil
	}
	m := s.midpoint(a, b, interp)
	left := s.refineSegment(a, m, threshold, interp, depth+1)
	right := s.refineSegment(m, b, threshold, interp, depth+1)

	out := append(left, m)
	return append(out, right...)
}

func averageColor(a, b mesh.Vec4) mesh.Vec4 {
	return mesh.Vec4{
		(a[0] + b[0]) / 2,
		(a[1] + b[1]) / 2,
		(a[2] + b[2]) / 2,
		(a[3] + b[3]) / 2,
	}
}
