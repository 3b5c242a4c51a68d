package clustering

import (
	"fmt"
	"strings"
)

const (
	// DefaultEpsilon is the total centroid movement below which a run is
	// considered converged
	DefaultEpsilon = 0.001

	// DefaultMaxIterations matches the iteration budget of the command line driver
	DefaultMaxIterations = 300
)

// EmptyClusterPolicy decides what an update does with a cluster that
// received no points during the preceding assignment pass
type EmptyClusterPolicy int

const (
	// FreezeEmpty keeps the centroid where it was; its movement counts as zero
	FreezeEmpty EmptyClusterPolicy = iota
	// FailOnEmpty aborts the run with ErrEmptyCluster
	FailOnEmpty
)

func (p EmptyClusterPolicy) String() string {
	switch p {
	case FreezeEmpty:
		return "freeze"
	case FailOnEmpty:
		return "fail"
	default:
		return fmt.Sprintf("EmptyClusterPolicy(%d)", int(p))
	}
}

// ParseEmptyClusterPolicy parses the textual form produced by String
func ParseEmptyClusterPolicy(s string) (EmptyClusterPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "freeze":
		return FreezeEmpty, nil
	case "fail":
		return FailOnEmpty, nil
	default:
		return FreezeEmpty, fmt.Errorf("unknown empty cluster policy %q", s)
	}
}

// Config holds clustering engine configuration
type Config struct {
	Epsilon      float64            // Convergence threshold on total squared centroid movement
	Workers      int                // Goroutines used by the assignment pass; 1 is sequential
	EmptyCluster EmptyClusterPolicy // What to do with clusters that lost all their points
}

// DefaultConfig returns default engine configuration
func DefaultConfig() Config {
	return Config{
		Epsilon:      DefaultEpsilon,
		Workers:      1,
		EmptyCluster: FreezeEmpty,
	}
}

func (c Config) validate() error {
	if !(c.Epsilon > 0) {
		return invalidf("config", "epsilon must be positive, got %v", c.Epsilon)
	}
	if c.Workers < 1 {
		return invalidf("config", "workers must be at least 1, got %d", c.Workers)
	}
	if c.EmptyCluster != FreezeEmpty && c.EmptyCluster != FailOnEmpty {
		return invalidf("config", "unknown empty cluster policy %d", int(c.EmptyCluster))
	}
	return nil
}
