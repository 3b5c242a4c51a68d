package clustering

import (
	"gonum.org/v1/gonum/floats"
)

// cluster is one of the k groups of a run. The centroid is only moved by
// update; assignment passes build up sum and count.
type cluster struct {
	index    int
	centroid []float64
	previous []float64 // nil until the first update
	sum      []float64
	count    int
}

func newCluster(index int, seed []float64) *cluster {
	centroid := make([]float64, len(seed))
	copy(centroid, seed)

	return &cluster{
		index:    index,
		centroid: centroid,
		sum:      make([]float64, len(seed)),
	}
}

// Index returns the position of the cluster in [0, k)
func (c *cluster) Index() int {
	return c.index
}

// Centroid returns a copy of the current centroid
func (c *cluster) Centroid() []float64 {
	out := make([]float64, len(c.centroid))
	copy(out, c.centroid)
	return out
}

// Previous returns a copy of the centroid before the last update, or nil
// if the cluster was never updated
func (c *cluster) Previous() []float64 {
	if c.previous == nil {
		return nil
	}
	out := make([]float64, len(c.previous))
	copy(out, c.previous)
	return out
}

// Members returns the number of points accumulated in the pass in progress
func (c *cluster) Members() int {
	return c.count
}

func (c *cluster) distance(point []float64) float64 {
	return squaredDistance(c.centroid, point)
}

func (c *cluster) add(point []float64) {
	floats.Add(c.sum, point)
	c.count++
}

// update moves the centroid to the mean of the accumulated points, clears
// the accumulator and returns the squared distance the centroid moved.
// A cluster without members keeps its centroid and reports no movement.
func (c *cluster) update() float64 {
	if c.previous == nil {
		c.previous = make([]float64, len(c.centroid))
	}
	copy(c.previous, c.centroid)

	if c.count > 0 {
		n := float64(c.count)
		for d := range c.centroid {
			c.centroid[d] = c.sum[d] / n
		}
	}

	clear(c.sum)
	c.count = 0

	return squaredDistance(c.previous, c.centroid)
}

// SquaredDistance returns the squared Euclidean distance between two
// vectors of equal length
func SquaredDistance(a, b []float64) float64 {
	return squaredDistance(a, b)
}

// squaredDistance computes the squared Euclidean distance between two vectors
func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}
