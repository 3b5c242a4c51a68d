package clustering

// Seeds are the starting centroids of a run, given either as explicit
// vectors or as indices into the point set
type Seeds struct {
	vectors [][]float64
	indices []int
}

// SeedVectors seeds the clusters with copies of the given vectors
func SeedVectors(vectors ...[]float64) Seeds {
	return Seeds{vectors: vectors}
}

// SeedIndices seeds the clusters with copies of the points at the given
// indices. Indices are expected to be distinct; duplicates are not rejected.
func SeedIndices(indices ...int) Seeds {
	return Seeds{indices: indices}
}

// Len returns the number of seeds, which is the k of the run
func (s Seeds) Len() int {
	if s.indices != nil {
		return len(s.indices)
	}
	return len(s.vectors)
}

// ByIndex reports whether the seeds reference points by index
func (s Seeds) ByIndex() bool {
	return s.indices != nil
}

// Indices returns the seed indices, or nil for vector seeds
func (s Seeds) Indices() []int {
	return s.indices
}

// Vectors returns the explicit seed vectors, or nil for index seeds
func (s Seeds) Vectors() [][]float64 {
	return s.vectors
}

func (s Seeds) resolve(points [][]float64, dimension int) ([][]float64, error) {
	if s.indices != nil {
		out := make([][]float64, len(s.indices))
		for i, idx := range s.indices {
			if idx < 0 || idx >= len(points) {
				return nil, invalidf("seed", "seed %d references point %d, have %d points", i, idx, len(points))
			}
			out[i] = points[idx]
		}
		return out, nil
	}

	for i, v := range s.vectors {
		if len(v) != dimension {
			return nil, invalidf("seed", "seed %d has %d coordinates, want %d", i, len(v), dimension)
		}
	}
	return s.vectors, nil
}
