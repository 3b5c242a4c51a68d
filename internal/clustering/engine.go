package clustering

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
)

// State is the lifecycle position of an Engine
type State int

const (
	Uninitialized State = iota
	Initialized
	Iterating
	Converged
	MaxIterationsReached
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Iterating:
		return "iterating"
	case Converged:
		return "converged"
	case MaxIterationsReached:
		return "max_iterations_reached"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Done reports whether s is one of the terminal states
func (s State) Done() bool {
	return s == Converged || s == MaxIterationsReached
}

// Result is the outcome of a run
type Result struct {
	Centroids     [][]float64 `json:"centroids"`
	Iterations    int         `json:"iterations"`
	Converged     bool        `json:"converged"`
	Movement      float64     `json:"movement"`       // total squared movement of the last update
	EmptyClusters int         `json:"empty_clusters"` // empty cluster updates over the whole run
	Inertia       float64     `json:"inertia"`
}

// Engine runs Lloyd's algorithm over a fixed point set. An Engine is not
// safe for concurrent use; it owns its clusters for the duration of one run.
type Engine struct {
	points    [][]float64
	clusters  []*cluster
	dimension int
	config    Config

	state      State
	iterations int
	movement   float64
	empty      int
}

// New validates the input and creates one cluster per seed. Nothing is
// allocated for the clusters when validation fails.
func New(points [][]float64, seeds Seeds, cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	k := seeds.Len()
	if k < 1 {
		return nil, invalidf("initialize", "k must be at least 1, got %d", k)
	}
	if len(points) < k {
		return nil, invalidf("initialize", "k is %d but only %d points were given", k, len(points))
	}

	dimension := len(points[0])
	if dimension < 1 {
		return nil, invalidf("initialize", "points must have at least one coordinate")
	}
	for i, p := range points {
		if len(p) != dimension {
			return nil, invalidf("initialize", "point %d has %d coordinates, want %d", i, len(p), dimension)
		}
	}

	vectors, err := seeds.resolve(points, dimension)
	if err != nil {
		return nil, err
	}

	clusters := make([]*cluster, k)
	for i, v := range vectors {
		clusters[i] = newCluster(i, v)
	}

	return &Engine{
		points:    points,
		clusters:  clusters,
		dimension: dimension,
		config:    cfg,
		state:     Initialized,
	}, nil
}

// State returns the lifecycle state of the engine
func (e *Engine) State() State {
	return e.state
}

// Iterations returns the number of completed assign+update iterations
func (e *Engine) Iterations() int {
	return e.iterations
}

// Dimension returns the number of coordinates of every point
func (e *Engine) Dimension() int {
	return e.dimension
}

// Clusters exposes the cluster records in index order
func (e *Engine) Clusters() []*cluster {
	return e.clusters
}

// Centroids returns copies of the current centroids in cluster index order
func (e *Engine) Centroids() [][]float64 {
	out := make([][]float64, len(e.clusters))
	for i, c := range e.clusters {
		out[i] = c.Centroid()
	}
	return out
}

// Assign runs one assignment pass: every point is added to the accumulator
// of its nearest cluster. Centroids are left untouched.
func (e *Engine) Assign() error {
	if e.state == Uninitialized || e.state.Done() {
		return invalidf("assign", "engine is %s", e.state)
	}
	e.state = Iterating

	if e.config.Workers > 1 && len(e.points) > 1 {
		return e.assignParallel()
	}

	for _, p := range e.points {
		best, _ := e.nearest(p)
		e.clusters[best].add(p)
	}
	return nil
}

// nearest returns the index of the cluster closest to point. Ties go to
// the lowest index.
func (e *Engine) nearest(point []float64) (int, float64) {
	minDist := math.MaxFloat64
	best := 0
	for i, c := range e.clusters {
		if d := c.distance(point); d < minDist {
			minDist = d
			best = i
		}
	}
	return best, minDist
}

// UpdateAll recomputes every centroid from the accumulated points and
// reports whether the total squared movement fell below the configured
// epsilon. With FailOnEmpty, an empty cluster aborts the update before any
// cluster is modified.
func (e *Engine) UpdateAll() (bool, error) {
	if e.state != Iterating {
		return false, invalidf("update", "engine is %s", e.state)
	}

	var empty int
	for _, c := range e.clusters {
		if c.count == 0 {
			if e.config.EmptyCluster == FailOnEmpty {
				return false, NewClusterError("update", ErrEmptyCluster,
					fmt.Sprintf("cluster %d has no members in iteration %d", c.index, e.iterations+1))
			}
			empty++
		}
	}

	var total float64
	for _, c := range e.clusters {
		total += c.update()
	}

	e.empty += empty
	e.movement = total
	e.iterations++

	if empty > 0 {
		log.Debug().
			Int("iteration", e.iterations).
			Int("empty_clusters", empty).
			Msg("Kept centroids of empty clusters")
	}

	return total < e.config.Epsilon, nil
}

// Step performs one assignment pass followed by one update
func (e *Engine) Step() (bool, error) {
	if err := e.Assign(); err != nil {
		return false, err
	}
	return e.UpdateAll()
}

// Run iterates until convergence or until maxIterations iterations were
// performed. Both outcomes produce a Result; Converged tells them apart.
func (e *Engine) Run(ctx context.Context, maxIterations int) (*Result, error) {
	if maxIterations < 1 {
		return nil, invalidf("run", "max iterations must be at least 1, got %d", maxIterations)
	}
	if e.state != Initialized {
		return nil, invalidf("run", "engine is %s", e.state)
	}

	for i := 0; i < maxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		converged, err := e.Step()
		if err != nil {
			return nil, err
		}

		log.Debug().
			Int("iteration", e.iterations).
			Float64("movement", e.movement).
			Bool("converged", converged).
			Msg("Completed k-means iteration")

		if converged {
			e.state = Converged
			break
		}
	}

	if e.state != Converged {
		e.state = MaxIterationsReached
	}

	centroids := e.Centroids()
	return &Result{
		Centroids:     centroids,
		Iterations:    e.iterations,
		Converged:     e.state == Converged,
		Movement:      e.movement,
		EmptyClusters: e.empty,
		Inertia:       Inertia(e.points, centroids),
	}, nil
}

// Inertia returns the sum over all points of the squared distance to the
// nearest centroid
func Inertia(points, centroids [][]float64) float64 {
	var total float64
	for _, p := range points {
		minDist := math.MaxFloat64
		for _, c := range centroids {
			if d := squaredDistance(p, c); d < minDist {
				minDist = d
			}
		}
		total += minDist
	}
	return total
}
