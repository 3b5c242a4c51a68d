package output

import (
	"bufio"
	"io"
	"strconv"
)

const (
	// Precision is the number of decimals written per coordinate
	Precision = 4

	pointSeparator      = '\n'
	coordinateSeparator = ','
)

// FormatCoordinate renders a coordinate with fixed precision. Values that
// round to zero are written without a sign.
func FormatCoordinate(v float64) string {
	s := strconv.FormatFloat(v, 'f', Precision, 64)
	if s == "-0.0000" {
		return s[1:]
	}
	return s
}

// WriteCentroids writes one comma-separated row per centroid, in order
func WriteCentroids(w io.Writer, centroids [][]float64) error {
	bw := bufio.NewWriter(w)
	for _, c := range centroids {
		for j, v := range c {
			if j > 0 {
				bw.WriteByte(coordinateSeparator)
			}
			bw.WriteString(FormatCoordinate(v))
		}
		bw.WriteByte(pointSeparator)
	}
	return bw.Flush()
}

// WriteIndices writes the seed indices on a single comma-separated line
func WriteIndices(w io.Writer, indices []int) error {
	bw := bufio.NewWriter(w)
	for i, idx := range indices {
		if i > 0 {
			bw.WriteByte(coordinateSeparator)
		}
		bw.WriteString(strconv.Itoa(idx))
	}
	bw.WriteByte(pointSeparator)
	return bw.Flush()
}
