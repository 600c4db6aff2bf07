package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// ScrapeProvider is the primary discovery provider: a scraping search API
// that renders result pages server-side and returns organic result URLs.
type ScrapeProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewScrapeProvider creates the scraping API client. The http.Client carries
// no timeout of its own; per-attempt deadlines come from the caller's context.
func NewScrapeProvider(baseURL, apiKey string) *ScrapeProvider {
	return &ScrapeProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{},
	}
}

// Name implements Provider.
func (p *ScrapeProvider) Name() string { return "scrape" }

type scrapeRequest struct {
	Query         string `json:"query"`
	TextOnly      bool   `json:"text_only,omitempty"`
	Limit         int    `json:"limit,omitempty"`
	FreshnessDays int    `json:"freshness_days,omitempty"`
}

type scrapeResponse struct {
	Results []struct {
		URL string `json:"url"`
	} `json:"results"`
}

// Search implements Provider.
func (p *ScrapeProvider) Search(ctx context.Context, query string, opts SearchOpts) ([]string, error) {
	body, err := json.Marshal(scrapeRequest{
		Query:         query,
		TextOnly:      opts.TextOnly,
		Limit:         opts.Limit,
		FreshnessDays: opts.FreshnessDays,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, unwrapCtxErr(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("scrape api status %d: %s", resp.StatusCode, snippet)
	}

	var parsed scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	urls := make([]string, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.URL != "" {
			urls = append(urls, r.URL)
		}
	}
	return urls, nil
}

// unwrapCtxErr surfaces the context cause so deadline hits are classified as
// timeouts rather than generic transport errors.
func unwrapCtxErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
