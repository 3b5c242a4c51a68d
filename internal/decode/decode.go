package decode

import (
	"fmt"
	"math"

	"github.com/tidwall/gjson"

	"github.com/objones25/kmeans/internal/clustering"
)

// Decoder turns a raw request from a calling environment into a
// clustering request. Malformed input is rejected before the engine runs.
type Decoder interface {
	Decode(raw []byte) (*clustering.Request, error)
}

// JSONDecoder decodes requests of the form
//
//	{"points": [[0,0],[0,1]], "k": 1, "max_iter": 10, "seeds": [0]}
//
// where seeds is either a list of point indices or a list of vectors.
// k defaults to the number of seeds, max_iter to MaxIterations.
type JSONDecoder struct {
	MaxIterations int
}

// NewJSONDecoder creates a decoder with the default iteration budget
func NewJSONDecoder() *JSONDecoder {
	return &JSONDecoder{MaxIterations: clustering.DefaultMaxIterations}
}

func malformed(format string, args ...interface{}) error {
	return clustering.NewClusterError("decode", clustering.ErrMalformedInput, fmt.Sprintf(format, args...))
}

// Decode implements Decoder
func (d *JSONDecoder) Decode(raw []byte) (*clustering.Request, error) {
	if !gjson.ValidBytes(raw) {
		return nil, malformed("request is not valid JSON")
	}

	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, malformed("request must be a JSON object")
	}

	points, err := decodeMatrix(root.Get("points"), "points")
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, malformed("points cannot be empty")
	}

	seeds, err := decodeSeeds(root.Get("seeds"))
	if err != nil {
		return nil, err
	}

	k := seeds.Len()
	if v := root.Get("k"); v.Exists() {
		if k, err = decodeInt(v, "k"); err != nil {
			return nil, err
		}
	}

	maxIter := d.MaxIterations
	if maxIter <= 0 {
		maxIter = clustering.DefaultMaxIterations
	}
	if v := root.Get("max_iter"); v.Exists() {
		if maxIter, err = decodeInt(v, "max_iter"); err != nil {
			return nil, err
		}
	}

	return &clustering.Request{
		Points:        points,
		K:             k,
		MaxIterations: maxIter,
		Seeds:         seeds,
	}, nil
}

func decodeSeeds(v gjson.Result) (clustering.Seeds, error) {
	if !v.Exists() {
		return clustering.Seeds{}, malformed("seeds are required")
	}
	if !v.IsArray() {
		return clustering.Seeds{}, malformed("seeds must be an array")
	}

	items := v.Array()
	if len(items) == 0 {
		return clustering.Seeds{}, malformed("seeds cannot be empty")
	}

	if items[0].IsArray() {
		vectors, err := decodeMatrix(v, "seeds")
		if err != nil {
			return clustering.Seeds{}, err
		}
		return clustering.SeedVectors(vectors...), nil
	}

	indices := make([]int, len(items))
	for i, item := range items {
		idx, err := decodeInt(item, fmt.Sprintf("seeds[%d]", i))
		if err != nil {
			return clustering.Seeds{}, err
		}
		indices[i] = idx
	}
	return clustering.SeedIndices(indices...), nil
}

// decodeMatrix decodes a list of equally long lists of numbers
func decodeMatrix(v gjson.Result, name string) ([][]float64, error) {
	if !v.Exists() {
		return nil, malformed("%s are required", name)
	}
	if !v.IsArray() {
		return nil, malformed("%s must be an array", name)
	}

	rows := v.Array()
	out := make([][]float64, len(rows))
	width := -1

	for i, row := range rows {
		if !row.IsArray() {
			return nil, malformed("%s[%d] must be an array", name, i)
		}

		values := row.Array()
		if width < 0 {
			width = len(values)
		} else if len(values) != width {
			return nil, malformed("%s[%d] has %d coordinates, want %d", name, i, len(values), width)
		}

		vec := make([]float64, len(values))
		for j, value := range values {
			if value.Type != gjson.Number {
				return nil, malformed("%s[%d][%d] must be a number, got %s", name, i, j, value.Type)
			}
			vec[j] = value.Float()
		}
		out[i] = vec
	}

	return out, nil
}

func decodeInt(v gjson.Result, name string) (int, error) {
	if v.Type != gjson.Number {
		return 0, malformed("%s must be a number, got %s", name, v.Type)
	}
	if v.Num != math.Trunc(v.Num) {
		return 0, malformed("%s must be an integer, got %v", name, v.Num)
	}
	return int(v.Int()), nil
}
