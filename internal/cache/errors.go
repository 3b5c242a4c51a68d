package cache

import "errors"

var (
	// ErrEmptyKey is returned when a key is empty
	ErrEmptyKey = errors.New("key cannot be empty")

	// ErrNilResult is returned when storing a nil result
	ErrNilResult = errors.New("result cannot be nil")

	// ErrCompression is returned when a cached value cannot be (de)compressed
	ErrCompression = errors.New("compression failed")
)
