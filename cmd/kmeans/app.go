package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/objones25/kmeans/internal/cache"
	"github.com/objones25/kmeans/internal/clustering"
	"github.com/objones25/kmeans/internal/config"
	"github.com/objones25/kmeans/internal/ingest"
	"github.com/objones25/kmeans/internal/monitor"
	"github.com/objones25/kmeans/internal/output"
	"github.com/objones25/kmeans/internal/seeding"
	"github.com/objones25/kmeans/internal/service"
)

const usageText = `kmeans [flags] K [MAX_ITER] FILE [FILE2]

   With one FILE every row is a point. With two files the first column of
   each row is a key; rows are joined on their keys and the key is dropped.
   A FILE of "-" reads standard input.`

// invocation is the parsed positional arguments
type invocation struct {
	k             int
	maxIterations int
	files         []string
}

func parseArgs(args []string, defaultMaxIterations int) (invocation, error) {
	inv := invocation{maxIterations: defaultMaxIterations}
	if len(args) < 2 || len(args) > 4 {
		return inv, fmt.Errorf("expected K [MAX_ITER] FILE [FILE2], got %d arguments", len(args))
	}

	k, err := strconv.Atoi(args[0])
	if err != nil {
		return inv, fmt.Errorf("K must be an integer, got %q", args[0])
	}
	inv.k = k

	rest := args[1:]
	// With three arguments the second is MAX_ITER only if it is an integer
	if len(rest) == 3 || (len(rest) == 2 && isInteger(rest[0])) {
		if inv.maxIterations, err = strconv.Atoi(rest[0]); err != nil {
			return inv, fmt.Errorf("MAX_ITER must be an integer, got %q", rest[0])
		}
		rest = rest[1:]
	}
	inv.files = rest

	if inv.maxIterations < 1 {
		return inv, fmt.Errorf("MAX_ITER must be at least 1, got %d", inv.maxIterations)
	}
	return inv, nil
}

func isInteger(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

func setupLogging(w io.Writer, level string, jsonLogs bool) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)

	if jsonLogs {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
		return nil
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
	return nil
}

// newCache builds the result cache described by cfg; nil when caching is off
func newCache(cfg config.Config) (cache.Cache, error) {
	var local, remote cache.Cache

	if cfg.CacheSize > 0 {
		lru, err := cache.NewLRUCache(cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		local = lru
	}
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(cfg.Redis)
		if err != nil {
			return nil, err
		}
		remote = rc
	}

	switch {
	case local != nil && remote != nil:
		return cache.NewTiered(local, remote), nil
	case local != nil:
		return local, nil
	case remote != nil:
		return remote, nil
	default:
		return nil, nil
	}
}

func newApp(cfg config.Config) *cli.App {
	return &cli.App{
		Name:            "kmeans",
		Usage:           "cluster points with Lloyd's k-means algorithm",
		UsageText:       usageText,
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "init",
				Usage: "seeding method: first or kmeans++ (default: first for one file, kmeans++ for two)",
			},
			&cli.Int64Flag{
				Name:  "random-seed",
				Value: 0,
				Usage: "seed of the random source used by kmeans++",
			},
			&cli.Float64Flag{
				Name:  "epsilon",
				Value: cfg.Clustering.Epsilon,
				Usage: "convergence threshold on the total squared centroid movement",
			},
			&cli.IntFlag{
				Name:  "workers",
				Value: cfg.Clustering.Workers,
				Usage: "goroutines used by the assignment pass",
			},
			&cli.StringFlag{
				Name:  "empty-cluster",
				Value: cfg.Clustering.EmptyCluster.String(),
				Usage: "empty cluster policy: freeze or fail",
			},
			&cli.StringFlag{
				Name:  "redis-addr",
				Value: cfg.Redis.Addr,
				Usage: "address of a Redis server caching results",
			},
			&cli.IntFlag{
				Name:  "cache-size",
				Value: cfg.CacheSize,
				Usage: "number of results kept in the in-process cache, 0 disables it",
			},
			&cli.StringFlag{
				Name:  "metrics-file",
				Value: cfg.MetricsFile,
				Usage: "write Prometheus metrics to this file on exit",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: cfg.LogLevel.String(),
				Usage: "log level",
			},
			&cli.BoolFlag{
				Name:  "json-logs",
				Usage: "log as JSON instead of console output",
			},
		},
		Before: func(c *cli.Context) error {
			return setupLogging(c.App.ErrWriter, c.String("log-level"), c.Bool("json-logs"))
		},
		Action: func(c *cli.Context) error {
			if err := applyFlags(c, &cfg); err != nil {
				return err
			}
			return run(c, cfg)
		},
		After: func(c *cli.Context) error {
			if cfg.MetricsFile == "" {
				return nil
			}
			return monitor.WriteTextfile(cfg.MetricsFile)
		},
	}
}

// applyFlags overrides the loaded configuration with command line flags
func applyFlags(c *cli.Context, cfg *config.Config) error {
	policy, err := clustering.ParseEmptyClusterPolicy(c.String("empty-cluster"))
	if err != nil {
		return err
	}

	cfg.Clustering.Epsilon = c.Float64("epsilon")
	cfg.Clustering.Workers = c.Int("workers")
	cfg.Clustering.EmptyCluster = policy
	cfg.Redis.Addr = c.String("redis-addr")
	cfg.CacheSize = c.Int("cache-size")
	cfg.MetricsFile = c.String("metrics-file")

	return cfg.Validate()
}

func run(c *cli.Context, cfg config.Config) error {
	inv, err := parseArgs(c.Args().Slice(), cfg.MaxIterations)
	if err != nil {
		return err
	}

	method := seeding.MethodFirst
	if len(inv.files) == 2 {
		method = seeding.MethodPlusPlus
	}
	if name := c.String("init"); name != "" {
		if method, err = seeding.ParseMethod(name); err != nil {
			return err
		}
	}

	loader := &ingest.Loader{Stdin: c.App.Reader}
	var points [][]float64
	if len(inv.files) == 2 {
		points, err = loader.Joined(inv.files[0], inv.files[1])
	} else {
		points, err = loader.Points(inv.files[0])
	}
	if err != nil {
		return err
	}

	if err := checkK(method, inv.k, len(points)); err != nil {
		return err
	}

	indices, err := seeding.Select(method, points, inv.k, seeding.NewRand(c.Int64("random-seed")))
	if err != nil {
		return err
	}

	resultCache, err := newCache(cfg)
	if err != nil {
		return err
	}

	svc := service.New(service.Config{
		Clustering: cfg.Clustering,
		Cache:      resultCache,
		Keys:       cache.NewDefaultKeyGenerator(cache.KeyPrefix),
	})
	defer svc.Close()

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	start := time.Now()
	resp, err := svc.Cluster(ctx, &clustering.Request{
		Points:        points,
		K:             inv.k,
		MaxIterations: inv.maxIterations,
		Seeds:         clustering.SeedIndices(indices...),
	})
	if err != nil {
		return err
	}

	log.Info().
		Int("points", len(points)).
		Int("k", inv.k).
		Str("init", string(method)).
		Int("iterations", resp.Iterations).
		Bool("converged", resp.Converged).
		Bool("cached", resp.Cached).
		Float64("inertia", resp.Inertia).
		Dur("took", time.Since(start)).
		Msg("Clustering finished")

	if method == seeding.MethodPlusPlus {
		if err := output.WriteIndices(c.App.Writer, indices); err != nil {
			return err
		}
	}
	return output.WriteCentroids(c.App.Writer, resp.Centroids)
}

// checkK rejects k before any seeding happens. kmeans++ needs at least one
// point left over after the seeds are chosen.
func checkK(method seeding.Method, k, n int) error {
	if k < 1 {
		return errors.New("K must be at least 1")
	}
	if method == seeding.MethodPlusPlus && k >= n {
		return fmt.Errorf("K must be smaller than the number of points (%d) with kmeans++", n)
	}
	if k > n {
		return fmt.Errorf("K must not exceed the number of points (%d)", n)
	}
	return nil
}
