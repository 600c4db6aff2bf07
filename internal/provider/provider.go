// Package provider implements the discovery provider chain: a scraping search
// API, a keyword search API, and a static local fallback, each behind its own
// circuit breaker and retry policy.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/confradar/confradar/internal/domain"
	"github.com/confradar/confradar/internal/metrics"
)

// SearchOpts tunes a single provider call.
type SearchOpts struct {
	// Site constrains results to one domain (keyword provider only).
	Site string
	// TextOnly requests the cheap no-scrape mode (scrape provider only).
	TextOnly bool
	// Limit caps the returned URL count; 0 uses the provider default.
	Limit int
	// FreshnessDays restricts results to pages published within the last
	// N days; 0 means no restriction.
	FreshnessDays int
}

// Provider resolves candidate URLs for a built query.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, opts SearchOpts) ([]string, error)
}

// Guarded wraps a provider with its breaker, retry policy, and metrics.
// All orchestration goes through Guarded, never the raw provider.
type Guarded struct {
	inner   Provider
	breaker *Breaker
	retry   RetryConfig
	logger  *zap.Logger
}

// NewGuarded wires a provider to its resilience policy.
func NewGuarded(inner Provider, breaker *Breaker, retry RetryConfig, logger *zap.Logger) *Guarded {
	return &Guarded{inner: inner, breaker: breaker, retry: retry, logger: logger}
}

// Name returns the wrapped provider's name.
func (g *Guarded) Name() string { return g.inner.Name() }

// Search runs the wrapped provider through breaker and retry. Timeouts are
// recorded distinctly from other failures in both logs and metrics.
func (g *Guarded) Search(ctx context.Context, query string, opts SearchOpts) ([]string, error) {
	if err := g.breaker.Allow(); err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(g.Name(), "circuit_open").Inc()
		return nil, err
	}

	urls, err := retry(ctx, g.retry, func(attemptCtx context.Context) ([]string, error) {
		start := time.Now()
		out, err := g.inner.Search(attemptCtx, query, opts)
		elapsed := time.Since(start)
		metrics.ProviderRequestDuration.WithLabelValues(g.Name()).Observe(elapsed.Seconds())

		if err != nil {
			status := "error"
			if errors.Is(err, context.DeadlineExceeded) {
				status = "timeout"
				err = fmt.Errorf("%w: %s after %s", domain.ErrProviderTimeout, g.Name(), elapsed.Round(time.Millisecond))
			} else if !errors.Is(err, domain.ErrProvider) {
				err = fmt.Errorf("%w: %s: %v", domain.ErrProvider, g.Name(), err)
			}
			metrics.ProviderRequestsTotal.WithLabelValues(g.Name(), status).Inc()
			g.logger.Warn("Provider attempt failed",
				zap.String("provider", g.Name()),
				zap.String("status", status),
				zap.Duration("elapsed", elapsed),
				zap.Error(err),
			)
			return nil, err
		}

		metrics.ProviderRequestsTotal.WithLabelValues(g.Name(), "success").Inc()
		return out, nil
	})

	if err != nil {
		g.breaker.RecordFailure()
		return nil, err
	}
	g.breaker.RecordSuccess()
	return urls, nil
}
