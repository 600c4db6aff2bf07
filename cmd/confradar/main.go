package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/confradar/confradar/internal/cache"
	"github.com/confradar/confradar/internal/config"
	dbRedis "github.com/confradar/confradar/internal/db/redis"
	logpkg "github.com/confradar/confradar/internal/logger"
	"github.com/confradar/confradar/internal/metrics"
	"github.com/confradar/confradar/internal/provider"
	"github.com/confradar/confradar/internal/repository/cachestore"
	documentrepo "github.com/confradar/confradar/internal/repository/document"
	"github.com/confradar/confradar/internal/repository/embcache"
	chiTransport "github.com/confradar/confradar/internal/transport/chi"
	openaiTransport "github.com/confradar/confradar/internal/transport/openai"
	discoveryuc "github.com/confradar/confradar/internal/usecase/discovery"
	geouc "github.com/confradar/confradar/internal/usecase/geo"
	rerankuc "github.com/confradar/confradar/internal/usecase/rerank"
	retrievaluc "github.com/confradar/confradar/internal/usecase/retrieval"
	"github.com/confradar/confradar/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	logger.Info("Starting confradar API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	if err := store.EnsureDocumentIndex(ctx, cfg.Embedding.Dimensions); err != nil {
		logger.Fatal("Failed to ensure document index", zap.Error(err))
	}

	metrics.Register()

	// Shared cache over the Redis KV store, counted per tier.
	tieredCache := cache.New(cachestore.New(store), logger,
		cache.WithMetrics(metrics.CacheOpsTotal))

	// Embedder chain: OpenAI-compatible endpoint behind the vector cache.
	embedder := embcache.New(openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	}), tieredCache)

	// Optional cross-encoder; empty model keeps the hybrid ordering.
	var crossEncoder rerankuc.CrossEncoder
	if cfg.Rerank.Model != "" {
		crossEncoder = openaiTransport.NewCrossEncoder(&openaiTransport.CrossEncoderConfig{
			APIKey:  cfg.Rerank.APIKey,
			BaseURL: cfg.Rerank.BaseURL,
			Model:   cfg.Rerank.Model,
			Logger:  logger,
		})
		logger.Info("Cross-encoder enabled", zap.String("model", cfg.Rerank.Model))
	}

	docRepo := documentrepo.New(store, tieredCache, logger)
	rerankSvc := rerankuc.NewService(crossEncoder, cfg.Rerank.BudgetTokens, logger)
	retrievalSvc := retrievaluc.NewService(
		docRepo, embedder, rerankSvc, geouc.NewResolver(0), tieredCache, logger)

	discoverySvc := discoveryuc.NewService(
		guardedProvider(provider.NewScrapeProvider(cfg.Providers.Scrape.BaseURL, cfg.Providers.Scrape.APIKey),
			cfg.Providers.Scrape, logger),
		guardedProvider(provider.NewKeywordProvider(cfg.Providers.Keyword.BaseURL, cfg.Providers.Keyword.APIKey),
			cfg.Providers.Keyword, logger),
		provider.NewLocalProvider(),
		cfg.Discovery.MinURLs,
		cfg.Discovery.EnableQueryAugmentation,
		logger,
	).WithMaxQueryLen(min(cfg.Providers.Scrape.MaxQueryLen, cfg.Providers.Keyword.MaxQueryLen))

	server := chiTransport.NewServer(retrievalSvc, discoverySvc, store, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(requestLogMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// guardedProvider wires a raw provider with its breaker and retry policy.
func guardedProvider(inner provider.Provider, cfg config.ProviderConfig, logger *zap.Logger) provider.Provider {
	breaker := provider.NewBreaker(inner.Name(), cfg.OpenThreshold,
		time.Duration(cfg.HalfOpenAfterSec)*time.Second)
	return provider.NewGuarded(inner, breaker, provider.RetryConfig{
		Attempts: cfg.Retries,
		Base:     time.Duration(cfg.BackoffBaseMs) * time.Millisecond,
		Timeout:  time.Duration(cfg.TimeoutSec) * time.Second,
	}, logger)
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain
// text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogMiddleware emits a canonical log line per request, propagates
// X-Request-ID, and stores the request-scoped logger in the context for the
// handlers downstream.
func requestLogMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			r = r.WithContext(logpkg.WithContext(r.Context(), reqLogger))

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			reqLogger.Info("Request handled",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
