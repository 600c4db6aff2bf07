package embcache

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/confradar/confradar/internal/cache"
	"github.com/confradar/confradar/internal/domain"
)

type fakeEmbedder struct {
	calls int
	fail  bool
}

func (f *fakeEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	f.calls++
	if f.fail {
		return domain.EmbeddingResult{}, errors.New("provider down")
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}, TotalTokens: 7}, nil
}

func TestCachedEmbedder_HitSkipsInner(t *testing.T) {
	inner := &fakeEmbedder{}
	c := New(inner, cache.New(cache.NewMemoryStore(), zap.NewNop()))
	ctx := context.Background()

	first, err := c.Embed(ctx, "ai summit berlin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.TotalTokens != 7 {
		t.Errorf("expected token usage on miss, got %d", first.TotalTokens)
	}

	second, err := c.Embed(ctx, "ai summit berlin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected one inner call, got %d", inner.calls)
	}
	if second.TotalTokens != 0 {
		t.Errorf("cache hit must report zero tokens, got %d", second.TotalTokens)
	}
	if len(second.Embedding) != 2 {
		t.Errorf("unexpected cached vector %v", second.Embedding)
	}
}

func TestCachedEmbedder_ErrorPassthrough(t *testing.T) {
	c := New(&fakeEmbedder{fail: true}, cache.New(cache.NewMemoryStore(), zap.NewNop()))
	if _, err := c.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected inner error to surface")
	}
}
