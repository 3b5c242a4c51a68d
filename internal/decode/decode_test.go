package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objones25/kmeans/internal/clustering"
)

func TestJSONDecoderIndices(t *testing.T) {
	raw := []byte(`{"points": [[0,0],[0,1],[10,0],[10,1]], "k": 2, "max_iter": 10, "seeds": [0, 2]}`)

	req, err := NewJSONDecoder().Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, [][]float64{{0, 0}, {0, 1}, {10, 0}, {10, 1}}, req.Points)
	assert.Equal(t, 2, req.K)
	assert.Equal(t, 10, req.MaxIterations)
	assert.True(t, req.Seeds.ByIndex())
	assert.Equal(t, []int{0, 2}, req.Seeds.Indices())
	require.NoError(t, req.Validate())
}

func TestJSONDecoderVectorsAndDefaults(t *testing.T) {
	raw := []byte(`{"points": [[1.5],[2.5],[3]], "seeds": [[1],[3.25]]}`)

	req, err := NewJSONDecoder().Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, 2, req.K)
	assert.Equal(t, clustering.DefaultMaxIterations, req.MaxIterations)
	assert.False(t, req.Seeds.ByIndex())
	assert.Equal(t, [][]float64{{1}, {3.25}}, req.Seeds.Vectors())

	d := &JSONDecoder{MaxIterations: 7}
	req, err = d.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, 7, req.MaxIterations)
}

func TestJSONDecoderMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "invalid json", raw: `{"points": [[0]`},
		{name: "not an object", raw: `[[0]]`},
		{name: "missing points", raw: `{"seeds": [0]}`},
		{name: "empty points", raw: `{"points": [], "seeds": [0]}`},
		{name: "points not nested", raw: `{"points": [1, 2], "seeds": [0]}`},
		{name: "string coordinate", raw: `{"points": [[0], ["1"]], "seeds": [0]}`},
		{name: "null coordinate", raw: `{"points": [[0, null]], "seeds": [0]}`},
		{name: "ragged points", raw: `{"points": [[0, 1], [2]], "seeds": [0]}`},
		{name: "missing seeds", raw: `{"points": [[0]]}`},
		{name: "empty seeds", raw: `{"points": [[0]], "seeds": []}`},
		{name: "fractional index", raw: `{"points": [[0]], "seeds": [0.5]}`},
		{name: "mixed seeds", raw: `{"points": [[0]], "seeds": [[0], 1]}`},
		{name: "string k", raw: `{"points": [[0]], "seeds": [0], "k": "1"}`},
		{name: "fractional max_iter", raw: `{"points": [[0]], "seeds": [0], "max_iter": 2.5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewJSONDecoder().Decode([]byte(tt.raw))
			require.Error(t, err)
			assert.Nil(t, req)
			assert.True(t, clustering.IsMalformedInput(err), "unexpected error kind: %v", err)
		})
	}
}

func TestJSONDecoderLeavesRangeChecksToEngine(t *testing.T) {
	raw := []byte(`{"points": [[0],[1]], "k": 3, "seeds": [0, 1, 5]}`)

	req, err := NewJSONDecoder().Decode(raw)
	require.NoError(t, err)

	err = req.Validate()
	assert.True(t, clustering.IsInvalidConfiguration(err))
}
