package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objones25/kmeans/internal/cache"
	"github.com/objones25/kmeans/internal/clustering"
	"github.com/objones25/kmeans/internal/config"
)

func runApp(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	app := newApp(config.DefaultConfig())
	var stdout, stderr bytes.Buffer
	app.Reader = strings.NewReader(stdin)
	app.Writer = &stdout
	app.ErrWriter = &stderr

	err := app.Run(append([]string{"kmeans", "--log-level", "error"}, args...))
	return stdout.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    invocation
		wantErr bool
	}{
		{name: "k and file", args: []string{"3", "in.txt"}, want: invocation{k: 3, maxIterations: 300, files: []string{"in.txt"}}},
		{name: "with max iter", args: []string{"3", "50", "in.txt"}, want: invocation{k: 3, maxIterations: 50, files: []string{"in.txt"}}},
		{name: "two files", args: []string{"3", "a.txt", "b.txt"}, want: invocation{k: 3, maxIterations: 300, files: []string{"a.txt", "b.txt"}}},
		{name: "two files with max iter", args: []string{"3", "7", "a.txt", "-"}, want: invocation{k: 3, maxIterations: 7, files: []string{"a.txt", "-"}}},
		{name: "too few", args: []string{"3"}, wantErr: true},
		{name: "too many", args: []string{"3", "7", "a", "b", "c"}, wantErr: true},
		{name: "bad k", args: []string{"three", "in.txt"}, wantErr: true},
		{name: "bad max iter", args: []string{"3", "many", "a.txt", "b.txt"}, wantErr: true},
		{name: "zero max iter", args: []string{"3", "0", "in.txt"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseArgs(tt.args, 300)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSingleFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "points.txt", "0,0\n10,0\n0,1\n10,1\n")

	out, err := runApp(t, "", "2", path)
	require.NoError(t, err)
	assert.Equal(t, "0.0000,0.5000\n10.0000,0.5000\n", out)
}

func TestStdin(t *testing.T) {
	out, err := runApp(t, "0,0\n10,0\n0,1\n10,1\n", "2", "-")
	require.NoError(t, err)
	assert.Equal(t, "0.0000,0.5000\n10.0000,0.5000\n", out)
}

func TestMaxIterations(t *testing.T) {
	in := "0\n1\n2\n10\n"

	out, err := runApp(t, in, "2", "1", "-")
	require.NoError(t, err)
	assert.Equal(t, "0.0000\n4.3333\n", out)

	out, err = runApp(t, in, "2", "-")
	require.NoError(t, err)
	assert.Equal(t, "1.0000\n10.0000\n", out)
}

func TestJoinedFilesFirstK(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "1,0\n0,0\n3,10\n2,10\n")
	b := writeFile(t, dir, "b.txt", "0,0\n1,1\n2,0\n3,1\n")

	out, err := runApp(t, "", "--init", "first", "2", a, b)
	require.NoError(t, err)
	assert.Equal(t, "5.0000,0.0000\n5.0000,1.0000\n", out)
}

func TestJoinedFilesPlusPlus(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "1,0\n0,0\n3,10\n2,10\n")
	b := writeFile(t, dir, "b.txt", "0,0\n1,1\n2,0\n3,1\n")

	out, err := runApp(t, "", "2", a, b)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 3)

	indices := strings.Split(lines[0], ",")
	require.Len(t, indices, 2)
	seen := map[int]bool{}
	for _, s := range indices {
		idx, err := strconv.Atoi(s)
		require.NoError(t, err)
		assert.True(t, idx >= 0 && idx < 4)
		assert.False(t, seen[idx], "indices must be distinct")
		seen[idx] = true
	}
	for _, line := range lines[1:] {
		assert.Len(t, strings.Split(line, ","), 2)
	}

	again, err := runApp(t, "", "2", a, b)
	require.NoError(t, err)
	assert.Equal(t, out, again, "the default random seed makes runs reproducible")
}

func TestInvalidInvocations(t *testing.T) {
	dir := t.TempDir()
	points := writeFile(t, dir, "points.txt", "0,0\n1,1\n2,2\n")
	a := writeFile(t, dir, "a.txt", "0,0\n1,1\n")
	b := writeFile(t, dir, "b.txt", "0,5\n1,6\n")
	ragged := writeFile(t, dir, "ragged.txt", "0,0\n1\n")

	tests := []struct {
		name string
		args []string
	}{
		{"k above points", []string{"4", points}},
		{"k zero", []string{"0", points}},
		{"kmeans++ needs a spare point", []string{"2", a, b}},
		{"kmeans++ flag on one file", []string{"--init", "kmeans++", "3", points}},
		{"unknown init", []string{"--init", "random", "2", points}},
		{"unknown empty cluster policy", []string{"--empty-cluster", "reseed", "2", points}},
		{"zero workers", []string{"--workers", "0", "2", points}},
		{"missing file", []string{"2", filepath.Join(dir, "missing.txt")}},
		{"ragged file", []string{"2", ragged}},
		{"no file", []string{"2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runApp(t, "", tt.args...)
			assert.Error(t, err)
			assert.Empty(t, out)
		})
	}

	_, err := runApp(t, "", "2", ragged)
	assert.True(t, clustering.IsMalformedInput(err))
}

func TestMetricsFile(t *testing.T) {
	dir := t.TempDir()
	points := writeFile(t, dir, "points.txt", "0,0\n10,0\n0,1\n10,1\n")
	metrics := filepath.Join(dir, "kmeans.prom")

	_, err := runApp(t, "", "--metrics-file", metrics, "2", points)
	require.NoError(t, err)

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kmeans_runs_total")
	assert.Contains(t, string(data), "kmeans_run_iterations")
}

func TestRedisCaching(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	points := writeFile(t, t.TempDir(), "points.txt", "0,0\n10,0\n0,1\n10,1\n")

	first, err := runApp(t, "", "--redis-addr", s.Addr(), "--cache-size", "4", "2", points)
	require.NoError(t, err)
	assert.Len(t, s.Keys(), 1)

	second, err := runApp(t, "", "--redis-addr", s.Addr(), "2", points)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNewCache(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	cfg := config.DefaultConfig()
	c, err := newCache(cfg)
	require.NoError(t, err)
	assert.Nil(t, c)

	cfg.CacheSize = 8
	c, err = newCache(cfg)
	require.NoError(t, err)
	assert.IsType(t, &cache.LRUCache{}, c)

	cfg.Redis.Addr = s.Addr()
	c, err = newCache(cfg)
	require.NoError(t, err)
	assert.IsType(t, &cache.Tiered{}, c)
	require.NoError(t, c.Close())

	cfg.CacheSize = 0
	c, err = newCache(cfg)
	require.NoError(t, err)
	assert.IsType(t, &cache.RedisCache{}, c)
	require.NoError(t, c.Close())
}
