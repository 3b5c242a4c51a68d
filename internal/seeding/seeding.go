package seeding

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"

	"github.com/objones25/kmeans/internal/clustering"
)

// Method selects how initial centroids are picked
type Method string

const (
	MethodFirst    Method = "first"
	MethodPlusPlus Method = "kmeans++"
)

// ParseMethod parses a seeding method name
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case MethodFirst, MethodPlusPlus:
		return m, nil
	case "kmeanspp", "pp":
		return MethodPlusPlus, nil
	default:
		return "", fmt.Errorf("unknown seeding method %q", s)
	}
}

// NewRand returns a deterministic random source for seeding
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Select picks k seed indices into points with the given method
func Select(method Method, points [][]float64, k int, rng *rand.Rand) ([]int, error) {
	switch method {
	case MethodFirst:
		return FirstK(len(points), k)
	case MethodPlusPlus:
		return PlusPlus(points, k, rng)
	default:
		return nil, clustering.NewClusterError("seed", clustering.ErrInvalidConfiguration,
			fmt.Sprintf("unknown seeding method %q", method))
	}
}

// FirstK seeds with the first k points
func FirstK(n, k int) ([]int, error) {
	if err := checkK(n, k); err != nil {
		return nil, err
	}

	indices := make([]int, k)
	for i := range indices {
		indices[i] = i
	}
	return indices, nil
}

// PlusPlus picks k indices with k-means++: the first uniformly, every
// following one with probability proportional to its squared distance to
// the nearest index already picked. If all remaining points coincide with
// picked ones, the lowest unused indices are taken.
func PlusPlus(points [][]float64, k int, rng *rand.Rand) ([]int, error) {
	if err := checkK(len(points), k); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewRand(0)
	}

	n := len(points)
	indices := make([]int, 0, k)
	used := make([]bool, n)

	first := rng.Intn(n)
	indices = append(indices, first)
	used[first] = true

	distances := make([]float64, n)
	for i := range distances {
		distances[i] = math.Inf(1)
	}

	for len(indices) < k {
		last := points[indices[len(indices)-1]]
		for i, p := range points {
			if d := clustering.SquaredDistance(p, last); d < distances[i] {
				distances[i] = d
			}
		}

		total := floats.Sum(distances)
		var chosen int
		if total > 0 && !math.IsInf(total, 0) {
			chosen = weightedPick(distances, total, rng)
		} else {
			chosen = firstUnused(used)
		}

		indices = append(indices, chosen)
		used[chosen] = true

		log.Debug().
			Int("index", chosen).
			Int("picked", len(indices)).
			Float64("total_distance", total).
			Msg("Picked k-means++ seed")
	}

	return indices, nil
}

// weightedPick draws an index with probability distances[i]/total
func weightedPick(distances []float64, total float64, rng *rand.Rand) int {
	target := rng.Float64() * total

	var cum float64
	last := -1
	for i, d := range distances {
		if d <= 0 {
			continue
		}
		cum += d
		last = i
		if cum > target {
			return i
		}
	}
	// Rounding left the target beyond the last cumulative sum
	return last
}

func firstUnused(used []bool) int {
	for i, u := range used {
		if !u {
			return i
		}
	}
	return 0
}

func checkK(n, k int) error {
	if k < 1 || k > n {
		return clustering.NewClusterError("seed", clustering.ErrInvalidConfiguration,
			fmt.Sprintf("cannot pick %d seeds from %d points", k, n))
	}
	return nil
}
