// Package geometry models the vector features consumed by the geometry
// compiler: point sets, linestrings, rings, polygons with holes and
// multi-part collections.
package geometry

// Type identifies a geometry variant.
type Type int

const (
	TypeUnknown Type = iota
	TypePointSet
	TypeLineString
	TypeRing
	TypePolygon
	TypeMulti
)

func (t Type) String() string {
	switch t {
	case TypePointSet:
		return "PointSet"
	case TypeLineString:
		return "LineString"
	case TypeRing:
		return "Ring"
	case TypePolygon:
		return "Polygon"
	case TypeMulti:
		return "Multi"
	}
	return "Unknown"
}

// Geometry is a recursive geometry value. Points are x, y and an
// optional z, one coordinate slice per vertex. Holes is only used by
// polygons, Parts only by multi geometries.
type Geometry struct {
	Type   Type
	Points [][]float64
	Holes  []*Geometry
	Parts  []*Geometry
}

func NewPointSet(coords [][]float64) *Geometry {
	return &Geometry{Type: TypePointSet, Points: coords}
}

func NewLineString(coords [][]float64) *Geometry {
	return &Geometry{Type: TypeLineString, Points: coords}
}

func NewRing(coords [][]float64) *Geometry {
	return &Geometry{Type: TypeRing, Points: dropClosingPoint(coords)}
}

// NewPolygon builds a polygon from an outer ring and zero or more holes.
// Closing points are dropped, rings store each vertex once.
func NewPolygon(shell [][]float64, holes ...[][]float64) *Geometry {
	g := &Geometry{Type: TypePolygon, Points: dropClosingPoint(shell)}
	for _, hole := range holes {
		g.Holes = append(g.Holes, NewRing(hole))
	}
	return g
}

func NewMulti(parts ...*Geometry) *Geometry {
	return &Geometry{Type: TypeMulti, Parts: parts}
}

// dropClosingPoint removes a duplicated last==first vertex.
func dropClosingPoint(coords [][]float64) [][]float64 {
	n := len(coords)
	if n > 1 && coordEquals(coords[0], coords[n-1]) {
		return coords[:n-1]
	}
	return coords
}

// Size returns the number of vertices in this part, excluding holes.
func (g *Geometry) Size() int {
	return len(g.Points)
}

// TotalPointCount counts the vertices of this part including hole rings
// and, for multi geometries, all nested parts.
func (g *Geometry) TotalPointCount() int {
	total := len(g.Points)
	for _, h := range g.Holes {
		total += h.TotalPointCount()
	}
	for _, p := range g.Parts {
		total += p.TotalPointCount()
	}
	return total
}

// Leaves returns the non-multi leaf parts in depth-first order.
func (g *Geometry) Leaves() []*Geometry {
	if g == nil {
		return nil
	}
	if g.Type != TypeMulti {
		return []*Geometry{g}
	}
	leaves := make([]*Geometry, 0, len(g.Parts))
	for _, p := range g.Parts {
		leaves = append(leaves, p.Leaves()...)
	}
	return leaves
}

func coordEquals(a, b []float64) bool {
	return a[0] == b[0] && a[1] == b[1]
}
