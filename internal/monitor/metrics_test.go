package monitor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCache(t *testing.T) {
	counter := CacheOperations.WithLabelValues("test", "get", "hit")
	before := testutil.ToFloat64(counter)

	ObserveCache("test", "get", "hit", time.Now())
	ObserveCache("test", "get", "hit", time.Now())

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestWriteTextfile(t *testing.T) {
	RunsTotal.WithLabelValues(OutcomeConverged).Inc()

	path := filepath.Join(t.TempDir(), "kmeans.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `kmeans_runs_total{outcome="converged"}`)
}

func TestWriteTextfileBadPath(t *testing.T) {
	err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "kmeans.prom"))
	assert.Error(t, err)
}
