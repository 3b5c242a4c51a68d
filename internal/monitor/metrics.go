package monitor

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcomes
const (
	OutcomeConverged     = "converged"
	OutcomeMaxIterations = "max_iterations"
	OutcomeCached        = "cached"
	OutcomeError         = "error"
)

var (
	// Run metrics
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kmeans_runs_total",
		Help: "Total number of clustering runs by outcome",
	}, []string{"outcome"})

	RunIterations = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kmeans_run_iterations",
		Help:    "Iterations performed per clustering run",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 300, 1000},
	})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kmeans_run_duration_seconds",
		Help:    "Duration of clustering runs",
		Buckets: []float64{.0001, .001, .01, .05, .1, .5, 1, 5, 30},
	})

	EmptyClusters = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kmeans_empty_clusters_total",
		Help: "Total number of empty cluster updates",
	}, []string{"policy"})

	PointsClustered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kmeans_points_clustered",
		Help: "Total number of points passed to clustering runs",
	})

	// Cache metrics
	CacheOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kmeans_cache_operations_total",
		Help: "Total number of cache operations",
	}, []string{"cache", "operation", "status"})

	CacheLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kmeans_cache_latency_seconds",
		Help:    "Latency of cache operations",
		Buckets: []float64{.0001, .001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"cache", "operation"})
)

// ObserveCache records the status and latency of one cache operation
func ObserveCache(cache, operation, status string, started time.Time) {
	CacheOperations.WithLabelValues(cache, operation, status).Inc()
	CacheLatency.WithLabelValues(cache, operation).Observe(time.Since(started).Seconds())
}

// WriteTextfile writes every registered metric to path in the text
// exposition format, for collection by a node exporter textfile collector
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
