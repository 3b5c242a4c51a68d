package clustering

import (
	"context"
)

// Request describes one clustering run as produced by an input adapter
type Request struct {
	Points        [][]float64
	K             int
	MaxIterations int
	Seeds         Seeds
}

// Validate checks the parts of the request that do not depend on the
// point contents; New checks the rest
func (r *Request) Validate() error {
	if r == nil {
		return invalidf("request", "request cannot be nil")
	}
	if r.K < 1 {
		return invalidf("request", "k must be at least 1, got %d", r.K)
	}
	if r.K > len(r.Points) {
		return invalidf("request", "k is %d but only %d points were given", r.K, len(r.Points))
	}
	if r.Seeds.Len() != r.K {
		return invalidf("request", "got %d seeds for k=%d", r.Seeds.Len(), r.K)
	}
	if r.MaxIterations < 1 {
		return invalidf("request", "max iterations must be at least 1, got %d", r.MaxIterations)
	}
	return nil
}

// Run validates the request, builds an engine and runs it to completion
func Run(ctx context.Context, req *Request, cfg Config) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	engine, err := New(req.Points, req.Seeds, cfg)
	if err != nil {
		return nil, err
	}

	return engine.Run(ctx, req.MaxIterations)
}

// Cluster runs k-means with the default configuration and returns the k
// final centroids in cluster index order
func Cluster(points [][]float64, k, maxIterations int, seeds Seeds) ([][]float64, error) {
	res, err := Run(context.Background(), &Request{
		Points:        points,
		K:             k,
		MaxIterations: maxIterations,
		Seeds:         seeds,
	}, DefaultConfig())
	if err != nil {
		return nil, err
	}
	return res.Centroids, nil
}
