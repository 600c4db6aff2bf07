// Package confradar is the embedded client: it wires the retrieval and
// discovery engines directly over Redis, without the HTTP server.
package confradar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/confradar/confradar/internal/cache"
	redisdb "github.com/confradar/confradar/internal/db/redis"
	"github.com/confradar/confradar/internal/domain/query"
	"github.com/confradar/confradar/internal/provider"
	"github.com/confradar/confradar/internal/repository/cachestore"
	documentrepo "github.com/confradar/confradar/internal/repository/document"
	"github.com/confradar/confradar/internal/repository/embcache"
	openaiTransport "github.com/confradar/confradar/internal/transport/openai"
	discoveryuc "github.com/confradar/confradar/internal/usecase/discovery"
	geouc "github.com/confradar/confradar/internal/usecase/geo"
	rerankuc "github.com/confradar/confradar/internal/usecase/rerank"
	retrievaluc "github.com/confradar/confradar/internal/usecase/retrieval"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultRetryAttempts    = 3
	defaultRetryBase        = 400 * time.Millisecond
	defaultProviderTimeout  = 20 * time.Second
	defaultOpenThreshold    = 5
	defaultHalfOpenAfter    = 30 * time.Second
)

// SearchRequest mirrors the raw query accepted by the HTTP API.
type SearchRequest = query.Raw

// Client is the confradar SDK entry point.
type Client struct {
	store     *redisdb.Store
	retrieval *retrievaluc.Service
	discovery *discoveryuc.Service
	logger    *zap.Logger
}

// New creates a confradar Client and connects to Redis. The provided context
// bounds the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("confradar: database address required (use WithRedis)")
	}
	if cfg.embeddingModel == "" {
		return nil, errors.New("confradar: embedding model required (use WithEmbedding)")
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	store, err := redisdb.NewStore(redisdb.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("confradar: create redis store: %w", err)
	}
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("confradar: database not ready: %w", err)
	}
	if err := store.EnsureDocumentIndex(ctx, cfg.embeddingDims); err != nil {
		store.Close()
		return nil, fmt.Errorf("confradar: ensure document index: %w", err)
	}

	return wireClient(store, cfg), nil
}

func wireClient(store *redisdb.Store, cfg *clientConfig) *Client {
	tieredCache := cache.New(cachestore.New(store), cfg.logger)

	embedder := embcache.New(openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.embeddingAPIKey,
		BaseURL:    cfg.embeddingBaseURL,
		Model:      cfg.embeddingModel,
		Dimensions: cfg.embeddingDims,
		Logger:     cfg.logger,
	}), tieredCache)

	var crossEncoder rerankuc.CrossEncoder
	if cfg.rerankModel != "" {
		crossEncoder = openaiTransport.NewCrossEncoder(&openaiTransport.CrossEncoderConfig{
			APIKey:  cfg.rerankAPIKey,
			BaseURL: cfg.rerankBaseURL,
			Model:   cfg.rerankModel,
			Logger:  cfg.logger,
		})
	}

	docRepo := documentrepo.New(store, tieredCache, cfg.logger)
	rerankSvc := rerankuc.NewService(crossEncoder, cfg.rerankBudget, cfg.logger)
	retrievalSvc := retrievaluc.NewService(
		docRepo, embedder, rerankSvc, geouc.NewResolver(0), tieredCache, cfg.logger)

	discoverySvc := discoveryuc.NewService(
		guarded(provider.NewScrapeProvider(cfg.scrapeBaseURL, cfg.scrapeAPIKey), cfg.logger),
		guarded(provider.NewKeywordProvider(cfg.keywordBaseURL, cfg.keywordAPIKey), cfg.logger),
		provider.NewLocalProvider(),
		cfg.minURLs,
		cfg.enableAug,
		cfg.logger,
	)

	return &Client{
		store:     store,
		retrieval: retrievalSvc,
		discovery: discoverySvc,
		logger:    cfg.logger,
	}
}

func guarded(inner provider.Provider, logger *zap.Logger) provider.Provider {
	breaker := provider.NewBreaker(inner.Name(), defaultOpenThreshold, defaultHalfOpenAfter)
	return provider.NewGuarded(inner, breaker, provider.RetryConfig{
		Attempts: defaultRetryAttempts,
		Base:     defaultRetryBase,
		Timeout:  defaultProviderTimeout,
	}, logger)
}

// Search validates the request and runs the hybrid retrieval pipeline.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*retrievaluc.Response, error) {
	q, err := query.New(req, c.logger)
	if err != nil {
		return nil, err
	}
	return c.retrieval.Search(ctx, q)
}

// Discover runs URL discovery for a base query in a country.
func (c *Client) Discover(ctx context.Context, in discoveryuc.Input) (discoveryuc.Result, error) {
	return c.discovery.RunSearch(ctx, in)
}

// Health pings the backing store.
func (c *Client) Health(ctx context.Context) error {
	return c.store.Ping(ctx)
}

// Close releases the database connection.
func (c *Client) Close() {
	c.store.Close()
}
