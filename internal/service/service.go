package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/objones25/kmeans/internal/cache"
	"github.com/objones25/kmeans/internal/clustering"
	"github.com/objones25/kmeans/internal/decode"
	"github.com/objones25/kmeans/internal/monitor"
)

// Config holds configuration for the clustering service
type Config struct {
	Clustering clustering.Config

	// Cache is optional; a nil cache runs every request
	Cache     cache.Cache
	CacheName string
	Keys      cache.KeyGenerator
}

// DefaultConfig returns a service configuration without a cache
func DefaultConfig() Config {
	return Config{
		Clustering: clustering.DefaultConfig(),
		CacheName:  "result",
		Keys:       cache.NewDefaultKeyGenerator(cache.KeyPrefix),
	}
}

// Response is what callers of the service receive
type Response struct {
	Centroids  [][]float64 `json:"centroids"`
	Iterations int         `json:"iterations"`
	Converged  bool        `json:"converged"`
	Inertia    float64     `json:"inertia"`
	Cached     bool        `json:"cached"`
}

// Service orchestrates result caching around the clustering engine
type Service struct {
	config Config
}

// New creates a service, filling unset optional fields with defaults
func New(cfg Config) *Service {
	if cfg.Keys == nil {
		cfg.Keys = cache.NewDefaultKeyGenerator(cache.KeyPrefix)
	}
	if cfg.CacheName == "" {
		cfg.CacheName = "result"
	}
	return &Service{config: cfg}
}

// Cluster answers the request from the cache when possible and otherwise
// runs the engine. Cache failures are logged and never fail the request.
func (s *Service) Cluster(ctx context.Context, req *clustering.Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		monitor.RunsTotal.WithLabelValues(monitor.OutcomeError).Inc()
		return nil, err
	}

	var key string
	if s.config.Cache != nil {
		key = s.config.Keys.GenerateKey(req, s.config.Clustering)
		if res := s.lookup(ctx, key); res != nil {
			monitor.RunsTotal.WithLabelValues(monitor.OutcomeCached).Inc()
			return newResponse(res, true), nil
		}
	}

	start := time.Now()
	res, err := clustering.Run(ctx, req, s.config.Clustering)
	monitor.RunDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		monitor.RunsTotal.WithLabelValues(monitor.OutcomeError).Inc()
		if clustering.IsEmptyCluster(err) {
			monitor.EmptyClusters.WithLabelValues(s.config.Clustering.EmptyCluster.String()).Inc()
		}
		return nil, err
	}

	outcome := monitor.OutcomeMaxIterations
	if res.Converged {
		outcome = monitor.OutcomeConverged
	}
	monitor.RunsTotal.WithLabelValues(outcome).Inc()
	monitor.RunIterations.Observe(float64(res.Iterations))
	monitor.PointsClustered.Add(float64(len(req.Points)))
	if res.EmptyClusters > 0 {
		monitor.EmptyClusters.WithLabelValues(s.config.Clustering.EmptyCluster.String()).Add(float64(res.EmptyClusters))
	}

	log.Debug().
		Int("points", len(req.Points)).
		Int("k", req.K).
		Int("iterations", res.Iterations).
		Bool("converged", res.Converged).
		Float64("inertia", res.Inertia).
		Dur("took", time.Since(start)).
		Msg("Clustering run finished")

	if s.config.Cache != nil {
		s.store(ctx, key, res)
	}

	return newResponse(res, false), nil
}

// ClusterRaw decodes raw with dec and clusters the result. Malformed input
// never reaches the engine.
func (s *Service) ClusterRaw(ctx context.Context, dec decode.Decoder, raw []byte) (*Response, error) {
	req, err := dec.Decode(raw)
	if err != nil {
		monitor.RunsTotal.WithLabelValues(monitor.OutcomeError).Inc()
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}
	return s.Cluster(ctx, req)
}

// Close releases the cache
func (s *Service) Close() error {
	if s.config.Cache == nil {
		return nil
	}
	return s.config.Cache.Close()
}

func (s *Service) lookup(ctx context.Context, key string) *clustering.Result {
	start := time.Now()
	res, err := s.config.Cache.Get(ctx, key)
	switch {
	case err != nil:
		monitor.ObserveCache(s.config.CacheName, "get", "error", start)
		log.Warn().Err(err).Str("key", key).Msg("Cache lookup failed")
		return nil
	case res == nil:
		monitor.ObserveCache(s.config.CacheName, "get", "miss", start)
		return nil
	default:
		monitor.ObserveCache(s.config.CacheName, "get", "hit", start)
		return res
	}
}

func (s *Service) store(ctx context.Context, key string, res *clustering.Result) {
	start := time.Now()
	if err := s.config.Cache.Set(ctx, key, res); err != nil {
		monitor.ObserveCache(s.config.CacheName, "set", "error", start)
		log.Warn().Err(err).Str("key", key).Msg("Failed to cache result")
		return
	}
	monitor.ObserveCache(s.config.CacheName, "set", "success", start)
}

func newResponse(res *clustering.Result, cached bool) *Response {
	return &Response{
		Centroids:  res.Centroids,
		Iterations: res.Iterations,
		Converged:  res.Converged,
		Inertia:    res.Inertia,
		Cached:     cached,
	}
}
