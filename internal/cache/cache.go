// Package cache is the shared three-tier KV cache: query rows, query
// embeddings, and assembled results, each with its own TTL policy.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// ErrNotFound signals a missing cache key at the store level.
var ErrNotFound = errors.New("cache: key not found")

// Store is the backing KV contract. The Redis store and the in-memory store
// both implement it; it must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Kind selects one of the three cache namespaces. Kinds never share keys.
type Kind string

const (
	// KindQuery caches lexical retrieval rows (12h TTL, 15m SWR window).
	KindQuery Kind = "query"
	// KindVector caches query embeddings (24h TTL, no SWR).
	KindVector Kind = "vector"
	// KindResult caches assembled search responses (2h TTL, no SWR).
	KindResult Kind = "result"
)

// Policy is the TTL configuration of one cache kind.
type Policy struct {
	TTL time.Duration
	SWR time.Duration // stale-while-revalidate grace past TTL; 0 disables
}

var defaultPolicies = map[Kind]Policy{
	KindQuery:  {TTL: 12 * time.Hour, SWR: 15 * time.Minute},
	KindVector: {TTL: 24 * time.Hour},
	KindResult: {TTL: 2 * time.Hour},
}

// entry is the stored envelope. swrExpiresAt >= expiresAt when present.
type entry struct {
	Value        json.RawMessage `json:"v"`
	ExpiresAt    int64           `json:"exp"`
	SWRExpiresAt int64           `json:"swr,omitempty"`
}

// Cache wraps a Store with per-kind TTL+SWR policies. Writes are best-effort:
// failures are logged, never surfaced.
type Cache struct {
	store    Store
	policies map[Kind]Policy
	logger   *zap.Logger
	now      func() time.Time
	ops      *prometheus.CounterVec // labels: kind, result (hit/miss/stale)
}

// Option configures a Cache.
type Option func(*Cache)

// WithPolicy overrides the policy of one kind.
func WithPolicy(k Kind, p Policy) Option {
	return func(c *Cache) { c.policies[k] = p }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithMetrics attaches a counter vec with labels {kind, result}.
func WithMetrics(ops *prometheus.CounterVec) Option {
	return func(c *Cache) { c.ops = ops }
}

// New creates a cache over the given store with default policies.
func New(store Store, logger *zap.Logger, opts ...Option) *Cache {
	c := &Cache{
		store:    store,
		policies: map[Kind]Policy{},
		logger:   logger,
		now:      time.Now,
	}
	for k, p := range defaultPolicies {
		c.policies[k] = p
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for a fresh entry. At or past the hard expiry
// it reports a miss regardless of any SWR window; an entry past its full
// lifetime (TTL plus SWR) is deleted.
func (c *Cache) Get(ctx context.Context, kind Kind, key string, out any) bool {
	e, ok := c.load(ctx, kind, key)
	if !ok {
		c.count(kind, "miss")
		return false
	}

	now := c.now().Unix()
	if now >= e.ExpiresAt {
		if e.SWRExpiresAt == 0 || now >= e.SWRExpiresAt {
			c.delete(ctx, kind, key)
		}
		c.count(kind, "miss")
		return false
	}

	if err := json.Unmarshal(e.Value, out); err != nil {
		c.logger.Warn("Failed to decode cache entry", zap.String("key", key), zap.Error(err))
		c.count(kind, "miss")
		return false
	}
	c.count(kind, "hit")
	return true
}

// GetStale is the SWR read: past the hard expiry but inside the SWR window it
// still returns the value with stale=true, so the caller can serve it while
// refreshing in the background.
func (c *Cache) GetStale(ctx context.Context, kind Kind, key string, out any) (stale, ok bool) {
	e, loaded := c.load(ctx, kind, key)
	if !loaded {
		c.count(kind, "miss")
		return false, false
	}

	now := c.now().Unix()
	switch {
	case now < e.ExpiresAt:
	case e.SWRExpiresAt > 0 && now < e.SWRExpiresAt:
		stale = true
	default:
		c.delete(ctx, kind, key)
		c.count(kind, "miss")
		return false, false
	}

	if err := json.Unmarshal(e.Value, out); err != nil {
		c.count(kind, "miss")
		return false, false
	}
	if stale {
		c.count(kind, "stale")
	} else {
		c.count(kind, "hit")
	}
	return stale, true
}

// Set stores a value under the kind's policy. Best-effort: errors are logged.
func (c *Cache) Set(ctx context.Context, kind Kind, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Failed to encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}

	p := c.policies[kind]
	now := c.now()
	e := entry{Value: raw, ExpiresAt: now.Add(p.TTL).Unix()}
	lifetime := p.TTL
	if p.SWR > 0 {
		e.SWRExpiresAt = now.Add(p.TTL + p.SWR).Unix()
		lifetime += p.SWR
	}

	data, err := json.Marshal(e)
	if err != nil {
		c.logger.Warn("Failed to encode cache envelope", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, lifetime); err != nil {
		c.logger.Warn("Failed to write cache entry", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) load(ctx context.Context, kind Kind, key string) (entry, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.Warn("Failed to read cache entry", zap.String("key", key), zap.Error(err))
		}
		return entry{}, false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.logger.Warn("Corrupt cache entry", zap.String("key", key), zap.Error(err))
		return entry{}, false
	}
	return e, true
}

func (c *Cache) delete(ctx context.Context, kind Kind, key string) {
	if err := c.store.Del(ctx, key); err != nil {
		c.logger.Warn("Failed to delete expired cache entry", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) count(kind Kind, result string) {
	if c.ops != nil {
		c.ops.WithLabelValues(string(kind), result).Inc()
	}
}
