package cache

import (
	"context"
	"errors"

	"github.com/objones25/kmeans/internal/clustering"
)

// Tiered consults a local cache before a remote one and back-fills the
// local cache on remote hits
type Tiered struct {
	local  Cache
	remote Cache
}

// NewTiered combines a local and a remote cache
func NewTiered(local, remote Cache) *Tiered {
	return &Tiered{local: local, remote: remote}
}

// Get implements Cache
func (t *Tiered) Get(ctx context.Context, key string) (*clustering.Result, error) {
	res, err := t.local.Get(ctx, key)
	if err != nil || res != nil {
		return res, err
	}

	res, err = t.remote.Get(ctx, key)
	if err != nil || res == nil {
		return res, err
	}

	if err := t.local.Set(ctx, key, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Set implements Cache
func (t *Tiered) Set(ctx context.Context, key string, result *clustering.Result) error {
	if err := t.local.Set(ctx, key, result); err != nil {
		return err
	}
	return t.remote.Set(ctx, key, result)
}

// Close implements Cache
func (t *Tiered) Close() error {
	return errors.Join(t.local.Close(), t.remote.Close())
}
