package cache

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Compressor handles data compression and decompression
type Compressor struct {
	// Threshold in bytes above which compression is applied
	Threshold int
}

// Compress gzips data larger than the threshold. The second return value
// reports whether compression was applied.
func (c *Compressor) Compress(data []byte) ([]byte, bool, error) {
	if len(data) <= c.Threshold {
		return data, false, nil
	}

	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)

	if _, err := writer.Write(data); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrCompression, err)
	}
	if err := writer.Close(); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrCompression, err)
	}

	return buf.Bytes(), true, nil
}

// Decompress decompresses gzipped data
func (c *Compressor) Decompress(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompression, err)
	}
	defer reader.Close()

	decompressed, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompression, err)
	}

	return decompressed, nil
}
