package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/objones25/kmeans/internal/clustering"
)

const (
	defaultTTL                  = 24 * time.Hour
	defaultCompressionThreshold = 1024 // Compress results larger than 1KB
	compressedPrefix            = "compressed:"
)

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr                 string
	Password             string
	DB                   int
	TTL                  time.Duration
	CompressionThreshold int
}

// RedisCache shares results between processes through Redis
type RedisCache struct {
	client     *redis.Client
	ttl        time.Duration
	compressor *Compressor
}

// NewRedisCache creates a new Redis cache client and checks the connection
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.CompressionThreshold <= 0 {
		cfg.CompressionThreshold = defaultCompressionThreshold
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{
		client:     client,
		ttl:        cfg.TTL,
		compressor: &Compressor{Threshold: cfg.CompressionThreshold},
	}, nil
}

// Get implements Cache
func (c *RedisCache) Get(ctx context.Context, key string) (*clustering.Result, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	data, err := c.client.Get(ctx, compressedPrefix+key).Bytes()
	switch {
	case err == nil:
		if data, err = c.compressor.Decompress(data); err != nil {
			return nil, err
		}
	case errors.Is(err, redis.Nil):
		data, err = c.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get from cache: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}

	var result clustering.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	log.Debug().Str("key", key).Msg("Cache hit")
	return &result, nil
}

// Set implements Cache
func (c *RedisCache) Set(ctx context.Context, key string, result *clustering.Result) error {
	if key == "" {
		return ErrEmptyKey
	}
	if result == nil {
		return ErrNilResult
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	data, compressed, err := c.compressor.Compress(data)
	if err != nil {
		return err
	}

	stored, stale := key, compressedPrefix+key
	if compressed {
		stored, stale = stale, stored
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, stored, data, c.ttl)
	pipe.Del(ctx, stale)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set in cache: %w", err)
	}

	log.Debug().Str("key", key).Bool("compressed", compressed).Int("bytes", len(data)).Msg("Cached result")
	return nil
}

// Clear removes all results from the selected database
func (c *RedisCache) Clear(ctx context.Context) error {
	if err := c.client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// Health checks if Redis is healthy
func (c *RedisCache) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
