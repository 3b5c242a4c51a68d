package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/objones25/kmeans/internal/cache"
	"github.com/objones25/kmeans/internal/clustering"
)

// Environment variables read by Load
const (
	EnvEpsilon       = "KMEANS_EPSILON"
	EnvWorkers       = "KMEANS_WORKERS"
	EnvEmptyCluster  = "KMEANS_EMPTY_CLUSTER"
	EnvMaxIterations = "KMEANS_MAX_ITER"
	EnvCacheSize     = "KMEANS_CACHE_SIZE"
	EnvRedisAddr     = "KMEANS_REDIS_ADDR"
	EnvRedisPassword = "KMEANS_REDIS_PASSWORD"
	EnvRedisDB       = "KMEANS_REDIS_DB"
	EnvCacheTTL      = "KMEANS_CACHE_TTL"
	EnvMetricsFile   = "KMEANS_METRICS_FILE"
	EnvLogLevel      = "LOG_LEVEL"
)

// Config holds everything a kmeans process needs to start
type Config struct {
	Clustering    clustering.Config
	MaxIterations int

	// CacheSize is the capacity of the in-process result cache; 0 disables it
	CacheSize int
	// Redis.Addr empty disables the shared cache
	Redis cache.RedisConfig

	MetricsFile string
	LogLevel    zerolog.Level
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() Config {
	return Config{
		Clustering:    clustering.DefaultConfig(),
		MaxIterations: clustering.DefaultMaxIterations,
		CacheSize:     0,
		Redis: cache.RedisConfig{
			TTL: 24 * time.Hour,
		},
		LogLevel: zerolog.InfoLevel,
	}
}

// Load reads the given .env files, or ".env" when none are given, and then
// overlays the process environment on the defaults. Missing files are
// ignored; variables already set in the environment take precedence over
// file contents.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	return FromEnv()
}

// FromEnv builds a Config from the process environment alone
func FromEnv() (Config, error) {
	cfg := DefaultConfig()
	var err error

	if cfg.Clustering.Epsilon, err = envFloat(EnvEpsilon, cfg.Clustering.Epsilon); err != nil {
		return Config{}, err
	}
	if cfg.Clustering.Workers, err = envInt(EnvWorkers, cfg.Clustering.Workers); err != nil {
		return Config{}, err
	}
	if v, ok := os.LookupEnv(EnvEmptyCluster); ok && v != "" {
		if cfg.Clustering.EmptyCluster, err = clustering.ParseEmptyClusterPolicy(v); err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvEmptyCluster, err)
		}
	}
	if cfg.MaxIterations, err = envInt(EnvMaxIterations, cfg.MaxIterations); err != nil {
		return Config{}, err
	}
	if cfg.CacheSize, err = envInt(EnvCacheSize, cfg.CacheSize); err != nil {
		return Config{}, err
	}
	if cfg.Redis.DB, err = envInt(EnvRedisDB, cfg.Redis.DB); err != nil {
		return Config{}, err
	}
	if v, ok := os.LookupEnv(EnvCacheTTL); ok && v != "" {
		if cfg.Redis.TTL, err = time.ParseDuration(v); err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvCacheTTL, err)
		}
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		if cfg.LogLevel, err = zerolog.ParseLevel(v); err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
	}

	cfg.Redis.Addr = os.Getenv(EnvRedisAddr)
	cfg.Redis.Password = os.Getenv(EnvRedisPassword)
	cfg.MetricsFile = os.Getenv(EnvMetricsFile)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values that the clustering engine does not check itself
func (c Config) Validate() error {
	if c.MaxIterations < 1 {
		return fmt.Errorf("max iterations must be at least 1, got %d", c.MaxIterations)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache size must not be negative, got %d", c.CacheSize)
	}
	if c.Redis.TTL < 0 {
		return fmt.Errorf("cache TTL must not be negative, got %s", c.Redis.TTL)
	}
	if c.Clustering.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Clustering.Workers)
	}
	if !(c.Clustering.Epsilon > 0) {
		return fmt.Errorf("epsilon must be positive, got %g", c.Clustering.Epsilon)
	}
	return nil
}

func envInt(name string, def int) (int, error) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", name, v)
	}
	return n, nil
}

func envFloat(name string, def float64) (float64, error) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", name, v)
	}
	return f, nil
}
