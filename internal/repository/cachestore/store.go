// Package cachestore adapts the Redis KV store to the cache.Store contract.
package cachestore

import (
	"context"
	"errors"
	"time"

	"github.com/confradar/confradar/internal/cache"
	"github.com/confradar/confradar/internal/db"
)

var _ cache.Store = (*Store)(nil)

// Store maps db sentinel errors onto the cache package's.
type Store struct {
	kv db.KVStore
}

// New wraps a KV store for use as a cache backend.
func New(kv db.KVStore) *Store {
	return &Store{kv: kv}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.kv.Get(ctx, key)
	if errors.Is(err, db.ErrKeyNotFound) {
		return nil, cache.ErrNotFound
	}
	return data, err
}

func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.kv.SetWithTTL(ctx, key, value, ttl)
}

func (s *Store) Del(ctx context.Context, key string) error {
	return s.kv.Del(ctx, key)
}
