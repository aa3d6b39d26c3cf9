package mesh

// Consolidate merges compatible draw geometries into the minimum number
// of batches. Two geometries are compatible when they carry the same
// render state, color binding and buffer usage, and neither is named.
// Named geometries are kept apart so per-feature tagging stays valid.
//
// Keep merging until nothing merges anymore.
func Consolidate(geoms []*DrawGeometry) []*DrawGeometry {
	repeat := true
	for repeat {
		repeat = false

		for i := 0; i < len(geoms); i++ {
			a := geoms[i]
			if len(a.Verts) == 0 || a.Name != "" {
				continue
			}

			for j := i + 1; j < len(geoms); j++ {
				b := geoms[j]
				if b.Name != "" || !compatible(a, b) {
					continue
				}

				merge(a, b)
				geoms = append(geoms[:j], geoms[j+1:]...)
				repeat = true
				break
			}

			if repeat {
				break
			}
		}
	}
	return geoms
}

func compatible(a, b *DrawGeometry) bool {
	return a.State == b.State &&
		a.ColorBinding == b.ColorBinding &&
		a.UseVBO == b.UseVBO &&
		a.InitialBound == nil && b.InitialBound == nil
}

// merge appends b's arrays onto a and retargets b's primitive sets.
func merge(a, b *DrawGeometry) {
	offset := len(a.Verts)
	a.Verts = append(a.Verts, b.Verts...)
	a.Colors = append(a.Colors, b.Colors...)

	for _, p := range b.Primitives {
		if p.Indices == nil {
			p.First += offset
		} else {
			for i := range p.Indices {
				p.Indices[i] += uint32(offset)
			}
		}
		a.Primitives = append(a.Primitives, p)
	}

	// adjacent triangle index sets collapse into one
	a.Primitives = coalesceTriangles(a.Primitives)
}

func coalesceTriangles(prims []*PrimitiveSet) []*PrimitiveSet {
	out := prims[:0]
	var last *PrimitiveSet
	for _, p := range prims {
		if p.Mode == Triangles && p.Indices != nil &&
			last != nil && last.Mode == Triangles && last.Indices != nil {
			last.Indices = append(last.Indices, p.Indices...)
			continue
		}
		out = append(out, p)
		last = p
	}
	return out
}
