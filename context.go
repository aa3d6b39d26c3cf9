package osgearth

import (
	"github.com/Workiva/go-datastructures/augmentedtree"

	"github.com/vis-sim/osgearth/mesh"
	"github.com/vis-sim/osgearth/srs"
)

// FilterContext carries the per-invocation environment of a build:
// georeferencing, the feature and map spatial references, whether the
// map is geocentric and an optional feature-index sink.
type FilterContext struct {
	Georeferenced bool
	FeatureSRS    *srs.SpatialReference
	MapSRS        *srs.SpatialReference
	Geocentric    bool
	Index         *FeatureIndex
}

// FeatureIndex records which feature produced which primitive sets, so
// downstream picking can walk from a primitive back to its source.
// Every tagged draw geometry claims a contiguous interval of primitive
// ordinals in an augmented interval tree.
type FeatureIndex struct {
	tree augmentedtree.Tree
	next int64
}

func NewFeatureIndex() *FeatureIndex {
	return &FeatureIndex{tree: augmentedtree.New(1)}
}

type featureInterval struct {
	low, high int64
	id        uint64
	feature   *Feature
}

func (s *featureInterval) LowAtDimension(d uint64) int64  { return s.low }
func (s *featureInterval) HighAtDimension(d uint64) int64 { return s.high }
func (s *featureInterval) ID() uint64                     { return s.id }

func (s *featureInterval) OverlapsAtDimension(i augmentedtree.Interval, d uint64) bool {
	return s.high >= i.LowAtDimension(d) && s.low <= i.HighAtDimension(d)
}

// TagPrimitiveSets assigns the geometry's primitive sets the next
// ordinal interval and records the owning feature.
func (x *FeatureIndex) TagPrimitiveSets(g *mesh.DrawGeometry, f *Feature) {
	count := int64(len(g.Primitives))
	if count == 0 {
		return
	}
	iv := &featureInterval{
		low:     x.next,
		high:    x.next + count - 1,
		id:      uint64(x.next),
		feature: f,
	}
	x.next += count
	x.tree.Add(iv)
}

// FeatureAt recovers the feature that owns a primitive-set ordinal.
func (x *FeatureIndex) FeatureAt(ordinal int64) *Feature {
	probe := &featureInterval{low: ordinal, high: ordinal}
	for _, iv := range x.tree.Query(probe) {
		if fi, ok := iv.(*featureInterval); ok {
			if fi.low <= ordinal && ordinal <= fi.high {
				return fi.feature
			}
		}
	}
	return nil
}
