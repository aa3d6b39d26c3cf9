// Package tessellate decomposes polygon-with-holes contours into
// triangles. The input convention matches the polygon builder: a draw
// geometry whose LINE_LOOP primitive sets describe the outer ring
// followed by the hole rings, all sharing one vertex array. Holes are
// joined to the outer contour with cut bridges and the combined simple
// polygon is ear-clipped.
package tessellate

import (
	"math"
	"sort"

	"github.com/vis-sim/osgearth/mesh"
)

// Geometry rewrites the LINE_LOOP primitive sets of g into a single
// TRIANGLES index set covering the outer region minus the holes. The
// vertex array is left untouched. Degenerate input (fewer than one
// valid contour, or no clippable ears) leaves the geometry as-is.
func Geometry(g *mesh.DrawGeometry) {
	var contours [][]vertex
	for _, p := range g.Primitives {
		if p.Mode != mesh.LineLoop || p.Indices != nil {
			continue
		}
		contours = append(contours, project(g.Verts, p.First, p.Count))
	}
	if len(contours) == 0 || len(contours[0]) < 3 {
		return
	}

	flatten(contours)

	outer := linkRing(contours[0], false)
	var holes []*node
	for _, c := range contours[1:] {
		if len(c) >= 3 {
			holes = append(holes, linkRing(c, true))
		}
	}
	outer = eliminateHoles(outer, holes)

	tris := clip(outer, nil, 0)
	if len(tris) == 0 {
		return
	}
	g.Primitives = []*mesh.PrimitiveSet{mesh.NewDrawElements(mesh.Triangles, tris)}
}

type vertex struct {
	x, y float64
	p    [3]float64
	idx  uint32
}

func project(verts []mesh.Vec3, first, count int) []vertex {
	out := make([]vertex, 0, count)
	for i := first; i < first+count && i < len(verts); i++ {
		v := verts[i]
		out = append(out, vertex{
			p:   [3]float64{float64(v[0]), float64(v[1]), float64(v[2])},
			idx: uint32(i),
		})
	}
	return out
}

// flatten assigns planar coordinates to every contour vertex by
// projecting onto the dominant plane of the outer contour (Newell
// normal).
func flatten(contours [][]vertex) {
	var nx, ny, nz float64
	outer := contours[0]
	for i := range outer {
		p := outer[i].p
		q := outer[(i+1)%len(outer)].p
		nx += (p[1] - q[1]) * (p[2] + q[2])
		ny += (p[2] - q[2]) * (p[0] + q[0])
		nz += (p[0] - q[0]) * (p[1] + q[1])
	}
	n := norm3([3]float64{nx, ny, nz})

	// basis axis least aligned with the normal
	axis := [3]float64{0, 0, 1}
	if math.Abs(n[2]) > math.Abs(n[0]) && math.Abs(n[2]) > math.Abs(n[1]) {
		axis = [3]float64{1, 0, 0}
	}
	u := norm3(cross3(axis, n))
	v := cross3(n, u)

	for _, c := range contours {
		for i := range c {
			c[i].x = dot3(c[i].p, u)
			c[i].y = dot3(c[i].p, v)
		}
	}
}

func cross3(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func dot3(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func norm3(a [3]float64) [3]float64 {
	l := math.Sqrt(dot3(a, a))
	if l == 0 {
		return [3]float64{0, 0, 1}
	}
	return [3]float64{a[0] / l, a[1] / l, a[2] / l}
}

// doubly linked ring node
type node struct {
	x, y       float64
	idx        uint32
	prev, next *node
}

func signedArea2(c []vertex) float64 {
	sum := 0.0
	for i := range c {
		a := c[i]
		b := c[(i+1)%len(c)]
		sum += a.x*b.y - b.x*a.y
	}
	return sum / 2
}

// linkRing builds a circular list with positive (counter-clockwise)
// winding for the outer contour and negative for holes.
func linkRing(c []vertex, hole bool) *node {
	ccw := signedArea2(c) > 0
	if ccw == hole {
		for i, j := 0, len(c)-1; i < j; i, j = i+1, j-1 {
			c[i], c[j] = c[j], c[i]
		}
	}

	var head *node
	for i := range c {
		head = insertNode(c[i], head)
	}
	return head
}

func insertNode(v vertex, last *node) *node {
	p := &node{x: v.x, y: v.y, idx: v.idx}
	if last == nil {
		p.prev = p
		p.next = p
	} else {
		p.next = last.next
		p.prev = last
		last.next.prev = p
		last.next = p
	}
	return p
}

func removeNode(p *node) {
	p.next.prev = p.prev
	p.prev.next = p.next
}

// triArea is negative for a left turn; ears require triArea < 0.
func triArea(p, q, r *node) float64 {
	return (q.y-p.y)*(r.x-q.x) - (q.x-p.x)*(r.y-q.y)
}

func nodeEquals(a, b *node) bool {
	return a.x == b.x && a.y == b.y
}

func pointInTriangle(ax, ay, bx, by, cx, cy, px, py float64) bool {
	return (cx-px)*(ay-py) >= (ax-px)*(cy-py) &&
		(ax-px)*(by-py) >= (bx-px)*(ay-py) &&
		(bx-px)*(cy-py) >= (cx-px)*(by-py)
}

func isEar(ear *node) bool {
	a, b, c := ear.prev, ear, ear.next
	if triArea(a, b, c) >= 0 {
		return false
	}
	for p := ear.next.next; p != ear.prev; p = p.next {
		if pointInTriangle(a.x, a.y, b.x, b.y, c.x, c.y, p.x, p.y) &&
			triArea(p.prev, p, p.next) >= 0 {
			return false
		}
	}
	return true
}

func clip(ear *node, tris []uint32, pass int) []uint32 {
	if ear == nil {
		return tris
	}
	stop := ear
	for ear.prev != ear.next {
		prev, next := ear.prev, ear.next
		if isEar(ear) {
			tris = append(tris, prev.idx, ear.idx, next.idx)
			removeNode(ear)
			ear = next.next
			stop = next.next
			continue
		}
		ear = next
		if ear == stop {
			// drop collinear runs and retry once
			if pass == 0 {
				return clip(filterPoints(ear, nil), tris, 1)
			}
			break
		}
	}
	return tris
}

// filterPoints removes duplicate and collinear vertices.
func filterPoints(start, end *node) *node {
	if start == nil {
		return nil
	}
	if end == nil {
		end = start
	}
	p := start
	again := true
	for again || p != end {
		again = false
		if nodeEquals(p, p.next) || triArea(p.prev, p, p.next) == 0 {
			removeNode(p)
			p = p.prev
			end = p
			if p == p.next {
				break
			}
			again = true
			continue
		}
		p = p.next
	}
	return end
}

// eliminateHoles connects every hole ring to the outer ring with a cut
// bridge, left to right, producing a single simple polygon.
func eliminateHoles(outer *node, holes []*node) *node {
	entries := make([]*node, 0, len(holes))
	for _, h := range holes {
		entries = append(entries, leftmost(h))
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].x < entries[j].x
	})

	for _, e := range entries {
		if b := findHoleBridge(e, outer); b != nil {
			splitBridge(b, e)
		}
	}
	return outer
}

func leftmost(start *node) *node {
	best := start
	for p := start.next; p != start; p = p.next {
		if p.x < best.x || (p.x == best.x && p.y < best.y) {
			best = p
		}
	}
	return best
}

// findHoleBridge locates the outer-ring vertex a bridge from the
// hole's leftmost vertex can reach: cast a ray to the left, take the
// nearest intersected edge, then resolve occluding reflex vertices by
// minimum angle.
func findHoleBridge(hole, outer *node) *node {
	p := outer
	hx, hy := hole.x, hole.y
	qx := math.Inf(-1)
	var m *node

	for {
		if hy <= p.y && hy >= p.next.y && p.next.y != p.y {
			x := p.x + (hy-p.y)*(p.next.x-p.x)/(p.next.y-p.y)
			if x <= hx && x > qx {
				qx = x
				if x == hx {
					if hy == p.y {
						return p
					}
					if hy == p.next.y {
						return p.next
					}
				}
				if p.x < p.next.x {
					m = p
				} else {
					m = p.next
				}
			}
		}
		p = p.next
		if p == outer {
			break
		}
	}

	if m == nil {
		return nil
	}
	if hx == qx {
		return m
	}

	stop := m
	mx, my := m.x, m.y
	tanMin := math.Inf(1)
	p = m
	for {
		x1, x2 := qx, hx
		if hy < my {
			x1, x2 = hx, qx
		}
		if hx >= p.x && p.x >= mx && hx != p.x &&
			pointInTriangle(x1, hy, mx, my, x2, hy, p.x, p.y) {
			tan := math.Abs(hy-p.y) / (hx - p.x)
			if (tan < tanMin || (tan == tanMin && p.x > m.x)) && locallyInside(p, hole) {
				m = p
				tanMin = tan
			}
		}
		p = p.next
		if p == stop {
			break
		}
	}
	return m
}

func locallyInside(a, b *node) bool {
	if triArea(a.prev, a, a.next) < 0 {
		return triArea(a, b, a.next) >= 0 && triArea(a, a.prev, b) >= 0
	}
	return triArea(a, b, a.prev) < 0 || triArea(a, a.next, b) < 0
}

// splitBridge stitches the hole ring rooted at b into the outer ring
// at a, duplicating the two endpoints so the cut is traversed in both
// directions.
func splitBridge(a, b *node) {
	a2 := &node{x: a.x, y: a.y, idx: a.idx}
	b2 := &node{x: b.x, y: b.y, idx: b.idx}
	an := a.next
	bp := b.prev

	a.next = b
	b.prev = a
	a2.next = an
	an.prev = a2
	b2.next = a2
	a2.prev = b2
	bp.next = b2
	b2.prev = bp
}
