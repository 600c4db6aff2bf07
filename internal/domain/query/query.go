// Package query validates raw discovery requests into canonical typed queries.
package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/confradar/confradar/internal/domain"
	"github.com/confradar/confradar/internal/domain/geo"
)

// Defaults applied when the raw request leaves a knob unset.
const (
	DefaultPageLimit  = 10
	DefaultTopKLex    = 50
	DefaultTopKSem    = 50
	DefaultTopKRerank = 20
	MaxQueryLength    = 1024
)

// DateRange is an inclusive ISO-8601 date window.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Raw is the untyped request shape accepted from callers.
type Raw struct {
	Query            string
	Intent           string
	Country          string
	Region           string
	LanguagePref     []string
	DateFrom         string // ISO-8601 date
	DateTo           string
	FreshnessDays    int
	PageLimit        int
	TopKLex          int
	TopKSem          int
	TopKRerank       int
	SourcesAllowlist []string
	SourcesBlocklist []string
	CorrelationID    string
}

// Normalized is a validated, canonical query. Construct via New only.
type Normalized struct {
	Query            string
	QueryNormalised  string
	QueryASCII       string
	Intent           Intent
	Country          string // ISO-3166-1 alpha-2, lower case
	Region           string
	LanguagePref     []string
	DateRange        *DateRange
	FreshnessDays    int
	PageLimit        int
	TopKLex          int
	TopKSem          int
	TopKRerank       int
	SourcesAllowlist []string
	SourcesBlocklist []string
	CorrelationID    string
}

// New validates and canonicalizes a raw request.
// Returns domain.ErrValidation on a missing query, an unknown country code,
// an unknown intent, or an inverted date range.
func New(raw Raw, logger *zap.Logger) (Normalized, error) {
	q := Normalize(raw.Query)
	if q == "" {
		return Normalized{}, fmt.Errorf("%w: query is required", domain.ErrValidation)
	}
	if len(q) > MaxQueryLength {
		return Normalized{}, fmt.Errorf("%w: query exceeds %d chars", domain.ErrValidation, MaxQueryLength)
	}

	country := strings.ToLower(strings.TrimSpace(raw.Country))
	if len(country) != 2 || !geo.ValidCountry(country) {
		return Normalized{}, fmt.Errorf("%w: country %q is not ISO-3166-1 alpha-2", domain.ErrValidation, raw.Country)
	}

	intent := IntentGeneric
	if raw.Intent != "" {
		intent = Intent(strings.ToLower(raw.Intent))
		if !intent.IsValid() {
			return Normalized{}, fmt.Errorf("%w: unknown intent %q", domain.ErrValidation, raw.Intent)
		}
	}

	dateRange, err := parseDateRange(raw.DateFrom, raw.DateTo)
	if err != nil {
		return Normalized{}, err
	}

	correlationID := raw.CorrelationID
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	n := Normalized{
		Query:            raw.Query,
		QueryNormalised:  q,
		QueryASCII:       StripDiacritics(q),
		Intent:           intent,
		Country:          country,
		Region:           Normalize(raw.Region),
		LanguagePref:     lowerAll(raw.LanguagePref),
		DateRange:        dateRange,
		FreshnessDays:    raw.FreshnessDays,
		PageLimit:        defaultInt(raw.PageLimit, DefaultPageLimit),
		TopKLex:          defaultInt(raw.TopKLex, DefaultTopKLex),
		TopKSem:          defaultInt(raw.TopKSem, DefaultTopKSem),
		TopKRerank:       defaultInt(raw.TopKRerank, DefaultTopKRerank),
		SourcesAllowlist: raw.SourcesAllowlist,
		SourcesBlocklist: raw.SourcesBlocklist,
		CorrelationID:    correlationID,
	}

	if logger != nil {
		fields := []zap.Field{
			zap.String("correlation_id", n.CorrelationID),
			zap.String("country", n.Country),
			zap.String("intent", n.Intent.String()),
			zap.Strings("languages", n.LanguagePref),
		}
		if n.DateRange != nil {
			fields = append(fields,
				zap.Time("date_from", n.DateRange.From),
				zap.Time("date_to", n.DateRange.To),
			)
		}
		logger.Info("Normalized query", fields...)
	}

	return n, nil
}

func parseDateRange(from, to string) (*DateRange, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	var dr DateRange
	var err error
	if from != "" {
		if dr.From, err = parseISODate(from); err != nil {
			return nil, fmt.Errorf("%w: date_range.from: %v", domain.ErrValidation, err)
		}
	}
	if to != "" {
		if dr.To, err = parseISODate(to); err != nil {
			return nil, fmt.Errorf("%w: date_range.to: %v", domain.ErrValidation, err)
		}
	}
	if !dr.From.IsZero() && !dr.To.IsZero() && dr.From.After(dr.To) {
		return nil, fmt.Errorf("%w: date_range.from after date_range.to", domain.ErrValidation)
	}
	return &dr, nil
}

func parseISODate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func defaultInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func lowerAll(xs []string) []string {
	if len(xs) == 0 {
		return nil
	}
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		if x = strings.ToLower(strings.TrimSpace(x)); x != "" {
			out = append(out, x)
		}
	}
	return out
}
