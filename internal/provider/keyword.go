package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// KeywordProvider is the secondary provider: a lightweight keyword search API
// that supports site-constrained queries.
type KeywordProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewKeywordProvider creates the keyword API client.
func NewKeywordProvider(baseURL, apiKey string) *KeywordProvider {
	return &KeywordProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{},
	}
}

// Name implements Provider.
func (p *KeywordProvider) Name() string { return "keyword" }

type keywordResponse struct {
	Hits []struct {
		Link string `json:"link"`
	} `json:"hits"`
}

// Search implements Provider.
func (p *KeywordProvider) Search(ctx context.Context, query string, opts SearchOpts) ([]string, error) {
	q := url.Values{}
	q.Set("q", query)
	if opts.Site != "" {
		q.Set("site", opts.Site)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.FreshnessDays > 0 {
		q.Set("days", strconv.Itoa(opts.FreshnessDays))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Api-Key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, unwrapCtxErr(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("keyword api status %d: %s", resp.StatusCode, snippet)
	}

	var parsed keywordResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	urls := make([]string, 0, len(parsed.Hits))
	for _, h := range parsed.Hits {
		if h.Link != "" {
			urls = append(urls, h.Link)
		}
	}
	return urls, nil
}
