package provider

import (
	"context"
	"net/url"
	"strings"

	"github.com/confradar/confradar/internal/querybuild"
)

// LocalProvider is the tertiary, zero-network fallback: it fabricates search
// URLs on the curated event-listing domains so enrichment always has
// somewhere to start when every real provider is down.
type LocalProvider struct{}

// NewLocalProvider creates the static fallback.
func NewLocalProvider() *LocalProvider { return &LocalProvider{} }

// Name implements Provider.
func (p *LocalProvider) Name() string { return "local" }

// Search implements Provider. It never fails.
func (p *LocalProvider) Search(_ context.Context, query string, opts SearchOpts) ([]string, error) {
	terms := strings.Trim(query, "() ")
	q := url.QueryEscape(terms)

	out := make([]string, 0, len(querybuild.CuratedDomains))
	for _, domain := range querybuild.CuratedDomains {
		if opts.Site != "" && opts.Site != domain {
			continue
		}
		out = append(out, "https://www."+domain+"/search?q="+q)
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out, nil
}
