package chi

import (
	"fmt"
	"strings"

	"github.com/confradar/confradar/internal/domain"
	"github.com/confradar/confradar/internal/domain/geo"
	"github.com/confradar/confradar/internal/domain/query"
	"github.com/confradar/confradar/internal/usecase/discovery"
)

type errorCode string

const (
	codeBadRequest        errorCode = "bad_request"
	codeValidationFailed  errorCode = "validation_failed"
	codeQueryTooLong      errorCode = "query_too_long"
	codeRogueAugmentation errorCode = "rogue_augmentation"
	codeCountryMismatch   errorCode = "country_mismatch"
	codeCircuitOpen       errorCode = "circuit_open"
	codeProviderTimeout   errorCode = "provider_timeout"
	codeProviderError     errorCode = "provider_error"
	codeInternalError     errorCode = "internal_error"
)

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the POST /v1/search body.
type SearchRequest struct {
	Query            string   `json:"query"`
	Intent           string   `json:"intent,omitempty"`
	Country          string   `json:"country"`
	Region           string   `json:"region,omitempty"`
	LanguagePref     []string `json:"language_pref,omitempty"`
	DateFrom         string   `json:"date_from,omitempty"`
	DateTo           string   `json:"date_to,omitempty"`
	FreshnessDays    int      `json:"freshness_days,omitempty"`
	PageLimit        int      `json:"page_limit,omitempty"`
	TopKLex          int      `json:"top_k_lex,omitempty"`
	TopKSem          int      `json:"top_k_sem,omitempty"`
	TopKRerank       int      `json:"top_k_rerank,omitempty"`
	SourcesAllowlist []string `json:"sources_allowlist,omitempty"`
	SourcesBlocklist []string `json:"sources_blocklist,omitempty"`
	CorrelationID    string   `json:"correlation_id,omitempty"`
}

func (r SearchRequest) toRaw() query.Raw {
	return query.Raw{
		Query:            r.Query,
		Intent:           r.Intent,
		Country:          r.Country,
		Region:           r.Region,
		LanguagePref:     r.LanguagePref,
		DateFrom:         r.DateFrom,
		DateTo:           r.DateTo,
		FreshnessDays:    r.FreshnessDays,
		PageLimit:        r.PageLimit,
		TopKLex:          r.TopKLex,
		TopKSem:          r.TopKSem,
		TopKRerank:       r.TopKRerank,
		SourcesAllowlist: r.SourcesAllowlist,
		SourcesBlocklist: r.SourcesBlocklist,
		CorrelationID:    r.CorrelationID,
	}
}

// DiscoverRequest is the POST /v1/discover body.
type DiscoverRequest struct {
	Query        string   `json:"query"`
	UserText     string   `json:"user_text,omitempty"`
	ExcludeTerms []string `json:"exclude_terms,omitempty"`
	Country      string   `json:"country"`
	Days         int      `json:"days,omitempty"`
	EnableAug    bool     `json:"enable_augmentation,omitempty"`
}

func (r DiscoverRequest) validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return fmt.Errorf("%w: query is required", domain.ErrValidation)
	}
	country := strings.ToLower(strings.TrimSpace(r.Country))
	if len(country) != 2 || !geo.ValidCountry(country) {
		return fmt.Errorf("%w: country %q is not ISO-3166-1 alpha-2", domain.ErrValidation, r.Country)
	}
	if r.Days < 0 {
		return fmt.Errorf("%w: days must not be negative", domain.ErrValidation)
	}
	return nil
}

func (r DiscoverRequest) toInput() discovery.Input {
	return discovery.Input{
		BaseQuery:    r.Query,
		UserText:     r.UserText,
		ExcludeTerms: r.ExcludeTerms,
		Country:      strings.ToLower(strings.TrimSpace(r.Country)),
		Days:         r.Days,
		EnableAug:    r.EnableAug,
	}
}

// DiscoverResponse is the POST /v1/discover reply.
type DiscoverResponse struct {
	URLs            []string `json:"urls"`
	RetriedWithBase bool     `json:"retried_with_base"`
}
