package geometry

// SignedArea computes the shoelace area of a ring. Positive means
// counter-clockwise winding.
func SignedArea(coords [][]float64) float64 {
	sum := 0.0
	n := len(coords)
	for i := 0; i < n; i++ {
		a := coords[i]
		b := coords[(i+1)%n]
		sum += a[0]*b[1] - b[0]*a[1]
	}
	return sum / 2
}

// IsClockwise reports whether a ring winds clockwise.
func IsClockwise(coords [][]float64) bool {
	return SignedArea(coords) < 0
}

// Reverse returns the coordinates in opposite order.
func Reverse(coords [][]float64) [][]float64 {
	c := make([][]float64, len(coords))
	for i := 0; i < len(coords); i++ {
		c[i] = coords[len(coords)-i-1]
	}
	return c
}

// IsValid reports whether a part can be built. Linear parts need two
// vertices, rings need three distinct ones and must not properly
// self-intersect. Point sets are always valid.
func (g *Geometry) IsValid() bool {
	switch g.Type {
	case TypePointSet:
		return len(g.Points) > 0
	case TypeLineString:
		return len(g.Points) >= 2
	case TypeRing, TypePolygon:
		return ringValid(g.Points)
	case TypeMulti:
		for _, p := range g.Parts {
			if !p.IsValid() {
				return false
			}
		}
		return len(g.Parts) > 0
	}
	return false
}

func ringValid(coords [][]float64) bool {
	if distinctCount(coords) < 3 {
		return false
	}
	return !selfIntersects(coords)
}

func distinctCount(coords [][]float64) int {
	seen := make(map[[2]float64]bool, len(coords))
	for _, c := range coords {
		seen[[2]float64{c[0], c[1]}] = true
	}
	return len(seen)
}

// selfIntersects checks every non-adjacent segment pair of the closed
// ring for a proper crossing.
func selfIntersects(coords [][]float64) bool {
	n := len(coords)
	for i := 0; i < n; i++ {
		a1 := coords[i]
		a2 := coords[(i+1)%n]
		for j := i + 2; j < n; j++ {
			// skip the segment adjacent across the ring closure
			if i == 0 && j == n-1 {
				continue
			}
			b1 := coords[j]
			b2 := coords[(j+1)%n]
			if segmentsCross(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

func segmentsCross(a1, a2, b1, b2 []float64) bool {
	d1 := cross2(b1, b2, a1)
	d2 := cross2(b1, b2, a2)
	d3 := cross2(a1, a2, b1)
	d4 := cross2(a1, a2, b2)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func cross2(o, a, p []float64) float64 {
	return (a[0]-o[0])*(p[1]-o[1]) - (a[1]-o[1])*(p[0]-o[0])
}
