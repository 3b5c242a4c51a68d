package cache

import (
	"context"

	"github.com/objones25/kmeans/internal/clustering"
)

// Cache stores finished clustering results by request key
type Cache interface {
	// Get retrieves a result; a miss returns nil without error
	Get(ctx context.Context, key string) (*clustering.Result, error)

	// Set stores a result
	Set(ctx context.Context, key string, result *clustering.Result) error

	// Close releases the cache's resources
	Close() error
}

// KeyGenerator derives cache keys from requests
type KeyGenerator interface {
	// GenerateKey returns a key identifying the request under the given
	// engine configuration
	GenerateKey(req *clustering.Request, cfg clustering.Config) string
}

func clone(r *clustering.Result) *clustering.Result {
	if r == nil {
		return nil
	}
	out := *r
	out.Centroids = make([][]float64, len(r.Centroids))
	for i, c := range r.Centroids {
		out.Centroids[i] = append([]float64(nil), c...)
	}
	return &out
}
