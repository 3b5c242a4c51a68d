package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/objones25/kmeans/internal/clustering"
)

// KeyedRow is a row whose first column identifies it across files
type KeyedRow struct {
	Key    float64
	Values []float64
}

func malformed(line int, format string, args ...interface{}) error {
	return clustering.NewClusterError("ingest", clustering.ErrMalformedInput,
		fmt.Sprintf("line %d: %s", line, fmt.Sprintf(format, args...)))
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return cr
}

// readRows parses every non-blank row into floats. All rows must have the
// width of the first one.
func readRows(r io.Reader) ([][]float64, error) {
	cr := newReader(r)

	var (
		rows  [][]float64
		width = -1
	)

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, malformed(pe.Line, "%v", pe.Err)
			}
			return nil, fmt.Errorf("failed to read points: %w", err)
		}

		line, _ := cr.FieldPos(0)

		if width < 0 {
			width = len(record)
		} else if len(record) != width {
			return nil, malformed(line, "got %d values, want %d", len(record), width)
		}

		row := make([]float64, len(record))
		for i, field := range record {
			field = strings.TrimSpace(field)
			if field == "" {
				return nil, malformed(line, "value %d is missing", i+1)
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, malformed(line, "value %d %q is not a number", i+1, field)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// ReadPoints reads comma-separated points, one per line. The
// dimensionality is taken from the first row.
func ReadPoints(r io.Reader) ([][]float64, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, clustering.NewClusterError("ingest", clustering.ErrMalformedInput, "no points")
	}
	return rows, nil
}

// ReadKeyed reads rows whose first column is a key followed by at least
// one coordinate
func ReadKeyed(r io.Reader) ([]KeyedRow, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, clustering.NewClusterError("ingest", clustering.ErrMalformedInput, "no rows")
	}
	if len(rows[0]) < 2 {
		return nil, malformed(1, "keyed rows need a key and at least one value")
	}

	keyed := make([]KeyedRow, len(rows))
	for i, row := range rows {
		keyed[i] = KeyedRow{Key: row[0], Values: row[1:]}
	}
	return keyed, nil
}

// JoinByKey inner-joins two keyed row sets on their keys and returns the
// concatenated values ordered by ascending key. Duplicate keys produce one
// row per matching pair, in input order.
func JoinByKey(left, right []KeyedRow) [][]float64 {
	byKey := make(map[float64][]KeyedRow, len(right))
	for _, r := range right {
		byKey[r.Key] = append(byKey[r.Key], r)
	}

	sorted := make([]KeyedRow, len(left))
	copy(sorted, left)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Key < sorted[j].Key
	})

	var points [][]float64
	for _, l := range sorted {
		for _, r := range byKey[l.Key] {
			p := make([]float64, 0, len(l.Values)+len(r.Values))
			p = append(p, l.Values...)
			p = append(p, r.Values...)
			points = append(points, p)
		}
	}
	return points
}

// Loader reads named inputs; the name "-" reads Stdin
type Loader struct {
	Stdin io.Reader
}

// NewLoader returns a loader reading "-" from the process's standard input
func NewLoader() *Loader {
	return &Loader{Stdin: os.Stdin}
}

// Open opens a named input
func (l *Loader) Open(name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(l.Stdin), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return f, nil
}

// Points reads points from a single named input
func (l *Loader) Points(name string) ([][]float64, error) {
	f, err := l.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	points, err := ReadPoints(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return points, nil
}

// Joined reads two keyed inputs and joins them on their keys
func (l *Loader) Joined(leftName, rightName string) ([][]float64, error) {
	if leftName == "-" && rightName == "-" {
		return nil, fmt.Errorf("standard input can only be used for one input")
	}

	left, err := l.keyed(leftName)
	if err != nil {
		return nil, err
	}
	right, err := l.keyed(rightName)
	if err != nil {
		return nil, err
	}

	points := JoinByKey(left, right)
	if len(points) == 0 {
		return nil, clustering.NewClusterError("ingest", clustering.ErrMalformedInput,
			fmt.Sprintf("%s and %s share no keys", leftName, rightName))
	}
	return points, nil
}

func (l *Loader) keyed(name string) ([]KeyedRow, error) {
	f, err := l.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := ReadKeyed(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return rows, nil
}

// LoadPoints reads points from a named input using standard input for "-"
func LoadPoints(name string) ([][]float64, error) {
	return NewLoader().Points(name)
}

// LoadJoined joins two named inputs using standard input for "-"
func LoadJoined(leftName, rightName string) ([][]float64, error) {
	return NewLoader().Joined(leftName, rightName)
}
