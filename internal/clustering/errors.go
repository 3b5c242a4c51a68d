package clustering

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration is returned when k, the iteration budget, the
	// seeds or the dimensionality do not describe a well-defined run
	ErrInvalidConfiguration = errors.New("invalid clustering configuration")

	// ErrMalformedInput is returned by input collaborators when a point or
	// seed has non-numeric or missing coordinates
	ErrMalformedInput = errors.New("malformed input")

	// ErrEmptyCluster is returned when a cluster has no members at update
	// time and the engine is configured to fail on it
	ErrEmptyCluster = errors.New("empty cluster")
)

// ClusterError represents a clustering error with context
type ClusterError struct {
	Op      string // Operation that failed
	Err     error  // Underlying error
	Context string // Additional context
}

func (e *ClusterError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Context)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ClusterError) Unwrap() error {
	return e.Err
}

// NewClusterError creates a new ClusterError
func NewClusterError(op string, err error, context string) error {
	return &ClusterError{
		Op:      op,
		Err:     err,
		Context: context,
	}
}

func invalidf(op, format string, args ...interface{}) error {
	return NewClusterError(op, ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

// IsInvalidConfiguration checks if an error is an "invalid configuration" error
func IsInvalidConfiguration(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}

// IsMalformedInput checks if an error is a "malformed input" error
func IsMalformedInput(err error) bool {
	return errors.Is(err, ErrMalformedInput)
}

// IsEmptyCluster checks if an error is an "empty cluster" error
func IsEmptyCluster(err error) bool {
	return errors.Is(err, ErrEmptyCluster)
}
