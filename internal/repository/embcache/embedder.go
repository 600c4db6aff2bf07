// Package embcache caches query embeddings under the vector cache tier.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/confradar/confradar/internal/cache"
	"github.com/confradar/confradar/internal/domain"
)

// Embedder vectorizes text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// CachedEmbedder is a caching decorator over an inner embedder.
// Cache hit: TotalTokens = 0 (no real tokens consumed).
type CachedEmbedder struct {
	inner Embedder
	cache *cache.Cache
}

// New creates the caching decorator.
func New(inner Embedder, c *cache.Cache) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, cache: c}
}

// Embed returns a cached embedding or calls the inner embedder.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := cacheKey(text)

	var vec []float32
	if c.cache.Get(ctx, cache.KindVector, key, &vec) && len(vec) > 0 {
		return domain.EmbeddingResult{Embedding: vec}, nil
	}

	result, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}

	c.cache.Set(ctx, cache.KindVector, key, result.Embedding)
	return result, nil
}

func cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return cache.Key(cache.KindVector, hex.EncodeToString(h[:]))
}
