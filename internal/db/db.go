// Package db defines the storage contracts over the Redis document index and
// key-value space.
package db

import (
	"context"
	"time"
)

// Store is the database facade. Consumers depend on the narrow sub-interfaces.
type Store interface {
	Pinger
	KVStore
	Searcher
	EnsureDocumentIndex(ctx context.Context, vectorDim int) error
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides the key-value operations backing the cache tiers.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// LexicalQuery is a full-text rank query over the document index.
type LexicalQuery struct {
	Text          string
	Country       string
	Languages     []string
	PublishedFrom int64 // unix seconds, 0 = unbounded
	PublishedTo   int64
	TopK          int
}

// KNNQuery is a vector similarity query over the document index.
type KNNQuery struct {
	Vector  []float32
	Country string
	K       int
}

// Hit is one matched document with its backend score and raw fields.
type Hit struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// SearchResult is a scored page of index hits.
type SearchResult struct {
	Total int
	Hits  []Hit
}

// Searcher provides the two retrieval branches over the document index.
type Searcher interface {
	SearchLexical(ctx context.Context, q *LexicalQuery) (*SearchResult, error)
	SearchSemantic(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}
