package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"math"

	"github.com/objones25/kmeans/internal/clustering"
)

const (
	// KeyPrefix is the prefix for all result cache keys
	KeyPrefix = "kmeans"
)

// DefaultKeyGenerator implements KeyGenerator using SHA-256 hashing over
// every input that influences the result
type DefaultKeyGenerator struct {
	prefix string
}

// NewDefaultKeyGenerator creates a new default key generator
func NewDefaultKeyGenerator(prefix string) *DefaultKeyGenerator {
	if prefix == "" {
		prefix = KeyPrefix
	}
	return &DefaultKeyGenerator{prefix: prefix}
}

// GenerateKey implements KeyGenerator
func (g *DefaultKeyGenerator) GenerateKey(req *clustering.Request, cfg clustering.Config) string {
	h := sha256.New()

	writeInt(h, int64(req.K))
	writeInt(h, int64(req.MaxIterations))
	writeFloat(h, cfg.Epsilon)
	writeInt(h, int64(cfg.Workers))
	writeInt(h, int64(cfg.EmptyCluster))

	writeMatrix(h, req.Points)

	if req.Seeds.ByIndex() {
		h.Write([]byte{'i'})
		indices := req.Seeds.Indices()
		writeInt(h, int64(len(indices)))
		for _, idx := range indices {
			writeInt(h, int64(idx))
		}
	} else {
		h.Write([]byte{'v'})
		writeMatrix(h, req.Seeds.Vectors())
	}

	// Format: prefix:hash
	return fmt.Sprintf("%s:%s", g.prefix, hex.EncodeToString(h.Sum(nil)))
}

func writeInt(h hash.Hash, v int64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	h.Write(buf[:])
}

func writeFloat(h hash.Hash, v float64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	h.Write(buf[:])
}

func writeMatrix(h hash.Hash, m [][]float64) {
	writeInt(h, int64(len(m)))
	for _, row := range m {
		writeInt(h, int64(len(row)))
		for _, v := range row {
			writeFloat(h, v)
		}
	}
}
