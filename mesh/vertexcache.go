package mesh

// post-transform cache size assumed by the optimizer
const cacheSize = 16

// OptimizeVertexCache reorders the triangles of every indexed triangle
// set so consecutive triangles tend to reuse recently transformed
// vertices. The triangle set itself is unchanged, only the order of
// triangles in the index list moves.
func OptimizeVertexCache(g *DrawGeometry) {
	for _, p := range g.Primitives {
		if p.Mode == Triangles && p.Indices != nil && len(p.Indices) >= 3 {
			p.Indices = reorderTriangles(p.Indices)
		}
	}
}

func reorderTriangles(indices []uint32) []uint32 {
	numTris := len(indices) / 3
	used := make([]bool, numTris)
	out := make([]uint32, 0, len(indices))

	var cache []uint32
	touch := func(v uint32) {
		for i, c := range cache {
			if c == v {
				cache = append(cache[:i], cache[i+1:]...)
				break
			}
		}
		cache = append(cache, v)
		if len(cache) > cacheSize {
			cache = cache[1:]
		}
	}
	inCache := func(v uint32) bool {
		for _, c := range cache {
			if c == v {
				return true
			}
		}
		return false
	}

	// Greedy: always emit the unused triangle sharing the most
	// vertices with the simulated FIFO cache.
	for emitted := 0; emitted < numTris; emitted++ {
		best := -1
		bestScore := -1
		for t := 0; t < numTris; t++ {
			if used[t] {
				continue
			}
			score := 0
			for k := 0; k < 3; k++ {
				if inCache(indices[t*3+k]) {
					score++
				}
			}
			if score > bestScore {
				best, bestScore = t, score
				if score == 3 {
					break
				}
			}
		}

		used[best] = true
		for k := 0; k < 3; k++ {
			v := indices[best*3+k]
			out = append(out, v)
			touch(v)
		}
	}
	return out
}
