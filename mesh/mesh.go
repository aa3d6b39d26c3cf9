// Package mesh holds the renderable output of the geometry compiler:
// draw geometries with single-precision vertex arrays in a local frame,
// primitive sets, per-batch render state and the delocalizing batch node.
package mesh

import "github.com/go-gl/mathgl/mgl64"

// Vec3 is a single-precision position in the local frame.
type Vec3 [3]float32

// Vec4 is an RGBA color.
type Vec4 [4]float32

// Mode is a primitive assembly mode.
type Mode int

const (
	Points Mode = iota
	LineStrip
	LineLoop
	Triangles
)

func (m Mode) String() string {
	switch m {
	case Points:
		return "POINTS"
	case LineStrip:
		return "LINE_STRIP"
	case LineLoop:
		return "LINE_LOOP"
	case Triangles:
		return "TRIANGLES"
	}
	return "UNKNOWN"
}

// PrimitiveSet assembles a portion of a vertex array into primitives.
// It is either a range (First, Count) over the array or an explicit
// index list; Indices == nil selects the range form.
type PrimitiveSet struct {
	Mode    Mode
	First   int
	Count   int
	Indices []uint32
}

// NewDrawArrays builds a range-form primitive set.
func NewDrawArrays(mode Mode, first, count int) *PrimitiveSet {
	return &PrimitiveSet{Mode: mode, First: first, Count: count}
}

// NewDrawElements builds an indexed primitive set.
func NewDrawElements(mode Mode, indices []uint32) *PrimitiveSet {
	return &PrimitiveSet{Mode: mode, Indices: indices}
}

// NumIndices returns how many vertex references the set makes.
func (p *PrimitiveSet) NumIndices() int {
	if p.Indices != nil {
		return len(p.Indices)
	}
	return p.Count
}

// Index returns the i-th vertex reference.
func (p *PrimitiveSet) Index(i int) uint32 {
	if p.Indices != nil {
		return p.Indices[i]
	}
	return uint32(p.First + i)
}

// ColorBinding describes how the color array maps onto vertices.
type ColorBinding int

const (
	BindPerVertex ColorBinding = iota
	BindOverall
)

// RenderState is the fixed-function state bag attached to a geometry
// or a whole batch.
type RenderState struct {
	PointSize           float32
	LineWidth           float32
	PolygonOffsetFactor float32
	PolygonOffsetUnits  float32
}

// BoundingBox is an axis-aligned box in the local frame.
type BoundingBox struct {
	Min, Max Vec3
}

// ExpandBy grows the box to include a point.
func (b *BoundingBox) ExpandBy(v Vec3) {
	for i := 0; i < 3; i++ {
		if v[i] < b.Min[i] {
			b.Min[i] = v[i]
		}
		if v[i] > b.Max[i] {
			b.Max[i] = v[i]
		}
	}
}

// DrawGeometry owns one vertex array and the primitive sets over it.
type DrawGeometry struct {
	Name         string
	Verts        []Vec3
	Colors       []Vec4
	ColorBinding ColorBinding
	Primitives   []*PrimitiveSet
	State        RenderState
	InitialBound *BoundingBox
	UseVBO       bool
}

// Bound returns the explicit initial bound if set, otherwise the box
// around the vertex array.
func (g *DrawGeometry) Bound() BoundingBox {
	if g.InitialBound != nil {
		return *g.InitialBound
	}
	if len(g.Verts) == 0 {
		return BoundingBox{}
	}
	box := BoundingBox{Min: g.Verts[0], Max: g.Verts[0]}
	for _, v := range g.Verts[1:] {
		box.ExpandBy(v)
	}
	return box
}

// Node is a compiled mesh batch. Vertices of every geometry are in the
// local frame; Local2World places the batch back into world coordinates.
type Node struct {
	Local2World mgl64.Mat4
	Geoms       []*DrawGeometry
	State       RenderState
}
