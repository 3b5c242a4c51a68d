package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objones25/kmeans/internal/clustering"
)

var allVars = []string{
	EnvEpsilon, EnvWorkers, EnvEmptyCluster, EnvMaxIterations, EnvCacheSize,
	EnvRedisAddr, EnvRedisPassword, EnvRedisDB, EnvCacheTTL, EnvMetricsFile,
	EnvLogLevel,
}

// unsetEnv removes the variables for the duration of the test
func unsetEnv(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func TestFromEnvDefaults(t *testing.T) {
	unsetEnv(t, allVars...)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 300, cfg.MaxIterations)
	assert.Equal(t, 0.001, cfg.Clustering.Epsilon)
	assert.Equal(t, clustering.FreezeEmpty, cfg.Clustering.EmptyCluster)
}

func TestFromEnvOverrides(t *testing.T) {
	unsetEnv(t, allVars...)
	t.Setenv(EnvEpsilon, "0.5")
	t.Setenv(EnvWorkers, "4")
	t.Setenv(EnvEmptyCluster, "fail")
	t.Setenv(EnvMaxIterations, "42")
	t.Setenv(EnvCacheSize, "16")
	t.Setenv(EnvRedisAddr, "localhost:6379")
	t.Setenv(EnvRedisPassword, "secret")
	t.Setenv(EnvRedisDB, "2")
	t.Setenv(EnvCacheTTL, "90m")
	t.Setenv(EnvMetricsFile, "/tmp/kmeans.prom")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Clustering.Epsilon)
	assert.Equal(t, 4, cfg.Clustering.Workers)
	assert.Equal(t, clustering.FailOnEmpty, cfg.Clustering.EmptyCluster)
	assert.Equal(t, 42, cfg.MaxIterations)
	assert.Equal(t, 16, cfg.CacheSize)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "secret", cfg.Redis.Password)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 90*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, "/tmp/kmeans.prom", cfg.MetricsFile)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
}

func TestFromEnvInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"epsilon not a number", EnvEpsilon, "tiny"},
		{"epsilon zero", EnvEpsilon, "0"},
		{"workers not a number", EnvWorkers, "many"},
		{"workers zero", EnvWorkers, "0"},
		{"unknown policy", EnvEmptyCluster, "reseed"},
		{"iterations zero", EnvMaxIterations, "0"},
		{"negative cache size", EnvCacheSize, "-1"},
		{"bad ttl", EnvCacheTTL, "soon"},
		{"bad db", EnvRedisDB, "zero"},
		{"bad log level", EnvLogLevel, "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unsetEnv(t, allVars...)
			t.Setenv(tt.key, tt.value)

			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	unsetEnv(t, allVars...)

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		EnvMaxIterations+"=25\n"+EnvWorkers+"=3\n",
	), 0o600))

	// Process environment wins over the file
	t.Setenv(EnvWorkers, "2")

	cfg, err := Load(envFile, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.MaxIterations)
	assert.Equal(t, 2, cfg.Clustering.Workers)
}
