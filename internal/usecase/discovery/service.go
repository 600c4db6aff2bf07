// Package discovery orchestrates candidate URL acquisition across providers:
// primary search, secondary fallback, racing cheap variants, and shard
// retries when the yield is thin.
package discovery

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/confradar/confradar/internal/domain/geo"
	"github.com/confradar/confradar/internal/provider"
	"github.com/confradar/confradar/internal/querybuild"
	"github.com/confradar/confradar/internal/urlfilter"
)

// DefaultMinURLs is the yield below which shard retries kick in.
const DefaultMinURLs = 8

// Input drives one discovery run.
type Input struct {
	BaseQuery    string
	UserText     string
	ExcludeTerms []string
	Country      string // ISO-3166-1 alpha-2, lower case
	Days         int    // freshness window in days, 0 means no window
	EnableAug    bool
}

// Result is the discovery outcome.
type Result struct {
	URLs            []string
	RetriedWithBase bool
}

// Service runs discovery over a primary and a secondary provider, with a
// local provider as the last resort. Providers are pre-wrapped with their
// breaker and retry policy.
type Service struct {
	primary     provider.Provider
	secondary   provider.Provider
	local       provider.Provider
	minURLs     int
	enableAug   bool
	maxQueryLen int
	logger      *zap.Logger
}

// NewService creates the discovery orchestrator. enableAug is the deployment
// gate for Tier B/C augmentation; a request can only opt in below it.
func NewService(primary, secondary, local provider.Provider, minURLs int, enableAug bool, logger *zap.Logger) *Service {
	if minURLs <= 0 {
		minURLs = DefaultMinURLs
	}
	return &Service{
		primary:   primary,
		secondary: secondary,
		local:     local,
		minURLs:   minURLs,
		enableAug: enableAug,
		logger:    logger,
	}
}

// WithMaxQueryLen caps built query strings to the tightest provider limit.
func (s *Service) WithMaxQueryLen(n int) *Service {
	s.maxQueryLen = n
	return s
}

// RunSearch acquires, prefilters, and if necessary re-shards candidate URLs.
// The URL set only ever grows after the initial prefilter.
func (s *Service) RunSearch(ctx context.Context, in Input) (Result, error) {
	built, err := querybuild.Build(querybuild.Params{
		BaseQuery:    in.BaseQuery,
		UserText:     in.UserText,
		ExcludeTerms: in.ExcludeTerms,
		Country:      in.Country,
		Tier:         querybuild.TierA,
		MaxLen:       s.maxQueryLen,
	})
	if err != nil {
		return Result{}, fmt.Errorf("build discovery query: %w", err)
	}

	urls := s.acquire(ctx, built.Query, s.shardVariant(in), in.Days)
	urls = urlfilter.PromoteHinted(urlfilter.Filter(urlfilter.Dedupe(urls)))

	result := Result{URLs: urls}
	if len(urls) >= s.minURLs {
		return result, nil
	}

	result.RetriedWithBase = true
	result.URLs = s.shardRetry(ctx, in, urls)
	s.logger.Info("Discovery finished after shard retry",
		zap.Int("initial", len(urls)),
		zap.Int("final", len(result.URLs)))
	return result, nil
}

// acquire walks the provider ladder: primary with the full query, secondary
// with the full query, then a race between the full query and the simplified
// shard variant with first success winning, then one low-cost text-only call,
// then the local provider, which cannot fail.
func (s *Service) acquire(ctx context.Context, full, shard string, days int) []string {
	opts := provider.SearchOpts{FreshnessDays: days}

	urls, err := s.primary.Search(ctx, full, opts)
	if err == nil {
		return urls
	}
	s.logger.Warn("Primary provider failed", zap.Error(err))

	urls, err = s.secondary.Search(ctx, full, opts)
	if err == nil {
		return urls
	}
	s.logger.Warn("Secondary provider failed", zap.Error(err))

	urls, err = firstSuccess(ctx,
		func(ctx context.Context) ([]string, error) {
			return s.secondary.Search(ctx, full, provider.SearchOpts{Limit: 10, FreshnessDays: days})
		},
		func(ctx context.Context) ([]string, error) {
			return s.primary.Search(ctx, shard, opts)
		},
	)
	if err == nil {
		return urls
	}
	s.logger.Warn("Variant race failed", zap.Error(err))

	urls, err = s.primary.Search(ctx, full, provider.SearchOpts{TextOnly: true, FreshnessDays: days})
	if err == nil {
		return urls
	}
	s.logger.Warn("Text-only fallback failed", zap.Error(err))

	urls, _ = s.local.Search(ctx, full, provider.SearchOpts{})
	return urls
}

// shardVariant builds the simplified query raced against the full one: the
// base query plus the cheapest degradation shard. Falls back to the base
// query when the build fails.
func (s *Service) shardVariant(in Input) string {
	terms := shardTerms(in.Country)
	if len(terms) == 0 {
		return in.BaseQuery
	}
	built, err := querybuild.Build(querybuild.Params{
		BaseQuery: in.BaseQuery + " " + terms[0],
		Country:   in.Country,
		Tier:      querybuild.TierB,
		EnableAug: in.EnableAug && s.enableAug,
		MaxLen:    s.maxQueryLen,
	})
	if err != nil {
		return in.BaseQuery
	}
	return built.Query
}

// shardRetry widens a thin result set with degradation shards. Each shard
// term queries the secondary provider constrained to a curated domain and
// the primary provider unconstrained; every batch is prefiltered before the
// union so the set never shrinks.
func (s *Service) shardRetry(ctx context.Context, in Input, urls []string) []string {
	for i, term := range shardTerms(in.Country) {
		if len(urls) >= s.minURLs {
			break
		}

		shard, err := querybuild.Build(querybuild.Params{
			BaseQuery: in.BaseQuery + " " + term,
			Country:   in.Country,
			Tier:      querybuild.TierB,
			EnableAug: in.EnableAug && s.enableAug,
			MaxLen:    s.maxQueryLen,
		})
		if err != nil {
			s.logger.Warn("Shard build failed", zap.String("term", term), zap.Error(err))
			continue
		}

		site := querybuild.CuratedDomains[i%len(querybuild.CuratedDomains)]
		var batch []string
		if got, err := s.secondary.Search(ctx, shard.Query, provider.SearchOpts{Site: site, FreshnessDays: in.Days}); err == nil {
			batch = append(batch, got...)
		} else {
			s.logger.Warn("Shard secondary failed", zap.String("term", term), zap.Error(err))
		}
		if got, err := s.primary.Search(ctx, shard.Query, provider.SearchOpts{TextOnly: true, FreshnessDays: in.Days}); err == nil {
			batch = append(batch, got...)
		} else {
			s.logger.Warn("Shard primary failed", zap.String("term", term), zap.Error(err))
		}

		urls = urlfilter.Dedupe(append(urls, urlfilter.Filter(batch)...))
	}
	return urls
}

// shardTerms are the degradation shards for a country, cheapest signal first:
// generic event words, known cities, then the country itself.
func shardTerms(country string) []string {
	terms := make([]string, 0, 16)
	terms = append(terms, querybuild.EventTerms...)
	terms = append(terms, querybuild.CityTerms[country]...)
	if name, ok := geo.CountryName(country); ok {
		terms = append(terms, name)
	}
	if country != "" {
		terms = append(terms, strings.ToUpper(country))
	}
	return terms
}
