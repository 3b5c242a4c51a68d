package clustering

import (
	"gonum.org/v1/gonum/floats"
	"golang.org/x/sync/errgroup"
)

// partial holds the sums and counts one worker collected for its chunk
type partial struct {
	sums   [][]float64
	counts []int
}

func newPartial(k, dimension int) *partial {
	p := &partial{
		sums:   make([][]float64, k),
		counts: make([]int, k),
	}
	for i := range p.sums {
		p.sums[i] = make([]float64, dimension)
	}
	return p
}

// assignParallel splits the points into contiguous chunks, assigns each
// chunk in its own goroutine and merges the partial accumulators in chunk
// order, so the summation order only depends on the worker count.
func (e *Engine) assignParallel() error {
	n := len(e.points)
	workers := e.config.Workers
	if workers > n {
		workers = n
	}
	chunkSize := (n + workers - 1) / workers

	partials := make([]*partial, workers)
	var g errgroup.Group

	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}

		p := newPartial(len(e.clusters), e.dimension)
		partials[w] = p

		g.Go(func() error {
			for i := start; i < end; i++ {
				best, _ := e.nearest(e.points[i])
				floats.Add(p.sums[best], e.points[i])
				p.counts[best]++
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for _, p := range partials {
		for j, c := range e.clusters {
			if p.counts[j] == 0 {
				continue
			}
			floats.Add(c.sum, p.sums[j])
			c.count += p.counts[j]
		}
	}

	return nil
}
