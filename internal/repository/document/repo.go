// Package document adapts index hits into domain documents for retrieval.
package document

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/confradar/confradar/internal/cache"
	"github.com/confradar/confradar/internal/db"
	"github.com/confradar/confradar/internal/domain"
)

// searcher is the consumer interface over the document index.
type searcher interface {
	SearchLexical(ctx context.Context, q *db.LexicalQuery) (*db.SearchResult, error)
	SearchSemantic(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Scored is a domain document plus its backend score.
type Scored struct {
	Doc   domain.Document `json:"doc"`
	Score float64         `json:"score"`
}

// refreshTimeout bounds one background revalidation round trip.
const refreshTimeout = 10 * time.Second

// Repo runs the two retrieval branches, with the lexical rows cached under
// the query cache tier.
type Repo struct {
	store      searcher
	cache      *cache.Cache
	logger     *zap.Logger
	refreshing singleflight.Group
}

// New creates a document repository.
func New(store searcher, c *cache.Cache, logger *zap.Logger) *Repo {
	return &Repo{store: store, cache: c, logger: logger}
}

// SearchLexical returns full-text ranked documents. Rows are served from the
// query cache when an entry exists; a stale entry inside the SWR window is
// served as-is while a background refresh revalidates it.
func (r *Repo) SearchLexical(ctx context.Context, q *db.LexicalQuery) ([]Scored, error) {
	key := cache.Key(cache.KindQuery,
		q.Country,
		strings.Join(q.Languages, ","),
		strconv.FormatInt(q.PublishedFrom, 10),
		strconv.FormatInt(q.PublishedTo, 10),
		strconv.Itoa(q.TopK),
		q.Text,
	)

	var cached []Scored
	if stale, ok := r.cache.GetStale(ctx, cache.KindQuery, key, &cached); ok {
		if stale {
			go r.refresh(key, q)
		}
		return cached, nil
	}

	sr, err := r.store.SearchLexical(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search lexical: %w", err)
	}

	rows := toScored(sr)
	r.cache.Set(ctx, cache.KindQuery, key, rows)
	return rows, nil
}

// refresh revalidates one stale query-cache entry. Concurrent stale reads of
// the same key collapse into a single backend call.
func (r *Repo) refresh(key string, q *db.LexicalQuery) {
	_, _, _ = r.refreshing.Do(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		sr, err := r.store.SearchLexical(ctx, q)
		if err != nil {
			r.logger.Warn("Query cache refresh failed", zap.String("key", key), zap.Error(err))
			return nil, err
		}
		r.cache.Set(ctx, cache.KindQuery, key, toScored(sr))
		return nil, nil
	})
}

// SearchSemantic returns nearest-neighbor documents by cosine similarity.
// The query embedding itself is cached one layer up (embcache).
func (r *Repo) SearchSemantic(ctx context.Context, q *db.KNNQuery) ([]Scored, error) {
	sr, err := r.store.SearchSemantic(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search semantic: %w", err)
	}
	return toScored(sr), nil
}

func toScored(sr *db.SearchResult) []Scored {
	out := make([]Scored, 0, len(sr.Hits))
	for _, h := range sr.Hits {
		out = append(out, Scored{Doc: hitToDocument(h), Score: h.Score})
	}
	return out
}

func hitToDocument(h db.Hit) domain.Document {
	doc := domain.Document{
		ID:       h.Key,
		URL:      h.Fields["url"],
		Title:    h.Fields["title"],
		Content:  h.Fields["content"],
		Country:  strings.ToLower(h.Fields["country"]),
		Language: strings.ToLower(h.Fields["language"]),
	}
	if v, err := strconv.ParseInt(h.Fields["published"], 10, 64); err == nil {
		doc.Published = v
	}
	if v, err := strconv.ParseFloat(h.Fields["authority"], 64); err == nil {
		doc.Authority = v
	}
	doc.SourceTLD = tldOf(doc.URL)
	return doc
}

func tldOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	host := u.Hostname()
	if i := strings.LastIndex(host, "."); i >= 0 && i < len(host)-1 {
		return strings.ToLower(host[i+1:])
	}
	return ""
}
