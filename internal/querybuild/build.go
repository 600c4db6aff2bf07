// Package querybuild turns base and user text into provider-ready query
// strings with provenance-tagged tokens and a leak guard.
package querybuild

import (
	"fmt"
	"strings"

	"github.com/confradar/confradar/internal/domain"
)

// DefaultMaxLen is the default provider query length cap.
const DefaultMaxLen = 300

// Tier selects the augmentation level of a built query.
type Tier string

const (
	// TierA is the base query only.
	TierA Tier = "A"
	// TierB adds city/role shards from the fixed vocabulary.
	TierB Tier = "B"
	// TierC adds curated site: domain filters.
	TierC Tier = "C"
)

// TokenSource records where a query token came from.
type TokenSource string

const (
	// SourceUserConfig marks tokens originating from the caller's base query or user text.
	SourceUserConfig TokenSource = "user_config"
	// SourceAugmented marks tokens added from the fixed vocabulary.
	SourceAugmented TokenSource = "augmented"
)

// Token is one provenance-tagged piece of a built query.
type Token struct {
	Text   string
	Source TokenSource
}

// BuiltQuery is a provider-ready query string plus its token provenance.
type BuiltQuery struct {
	Query  string
	Tokens []Token
	Tier   Tier
}

// Params drives Build.
type Params struct {
	BaseQuery    string // required
	UserText     string // replaces BaseQuery entirely when set
	ExcludeTerms []string
	Country      string // selects the Tier B city vocabulary
	Tier         Tier   // requested tier; only honored when EnableAug
	EnableAug    bool   // gates Tier B/C augmentation
	MaxLen       int    // 0 means DefaultMaxLen
}

// allowedRunes is the provider-safe character allow-list.
const allowedRunes = `'"()/:._*+-|`

// Sanitize strips control characters, drops runes outside the allow-list,
// collapses whitespace, truncates to maxLen, and rebalances parentheses
// damaged by truncation.
func Sanitize(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			b.WriteRune(' ')
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case strings.ContainsRune(allowedRunes, r):
			b.WriteRune(r)
		}
	}
	out := strings.Join(strings.Fields(b.String()), " ")
	if len(out) > maxLen {
		out = strings.TrimSpace(out[:maxLen])
	}
	return balanceParens(out)
}

// balanceParens drops unmatched parentheses left by truncation or malformed
// input: a left-to-right pass removes ')' with no open group, then unmatched
// '(' are removed right-to-left.
func balanceParens(s string) string {
	drop := make(map[int]bool)
	var openStack []int
	for i, r := range s {
		switch r {
		case '(':
			openStack = append(openStack, i)
		case ')':
			if len(openStack) == 0 {
				drop[i] = true
			} else {
				openStack = openStack[:len(openStack)-1]
			}
		}
	}
	for _, i := range openStack {
		drop[i] = true
	}
	if len(drop) == 0 {
		return s
	}
	var b strings.Builder
	for i, r := range s {
		if !drop[i] {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// Wrap parenthesizes a query group once. Wrapping an already-wrapped string
// is a no-op, so Wrap(Wrap(x)) == Wrap(x).
func Wrap(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") && groupClosesAtEnd(s) {
		return s
	}
	return "(" + s + ")"
}

// groupClosesAtEnd reports whether the paren opened at position 0 closes at
// the final position, i.e. the whole string is one group.
func groupClosesAtEnd(s string) bool {
	depth := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i == len(s)-1
			}
		}
	}
	return false
}

// Build assembles a provider-ready query. User text replaces the base query
// entirely; it is never concatenated with it. Tier B/C augmentation is applied
// only when p.EnableAug is set, and only with vocabulary terms.
func Build(p Params) (BuiltQuery, error) {
	maxLen := p.MaxLen
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}

	// Wrap adds two characters; sanitize with that headroom so a maximal
	// input still fits the cap after wrapping.
	base := Sanitize(p.BaseQuery, maxLen-2)
	if base == "" {
		return BuiltQuery{}, fmt.Errorf("%w: base query is required", domain.ErrValidation)
	}

	var tokens []Token
	var core string
	if user := Sanitize(p.UserText, maxLen-2); user != "" {
		core = Wrap(user)
		tokens = append(tokens, Token{Text: user, Source: SourceUserConfig})
	} else {
		core = Wrap(base)
		tokens = append(tokens, Token{Text: base, Source: SourceUserConfig})
	}

	tier := TierA
	parts := []string{core}

	if p.EnableAug && (p.Tier == TierB || p.Tier == TierC) {
		tier = p.Tier
		for _, term := range augmentTerms(p.Tier, p.Country) {
			clause := term.Text
			if len(strings.Join(parts, " "))+len(clause)+1 > maxLen {
				break
			}
			parts = append(parts, clause)
			tokens = append(tokens, term)
		}
	}

	for _, ex := range p.ExcludeTerms {
		if ex = Sanitize(ex, 64); ex != "" {
			clause := "-" + ex
			if len(strings.Join(parts, " "))+len(clause)+1 > maxLen {
				break
			}
			parts = append(parts, clause)
			tokens = append(tokens, Token{Text: ex, Source: SourceUserConfig})
		}
	}

	built := BuiltQuery{
		Query:  strings.Join(parts, " "),
		Tokens: tokens,
		Tier:   tier,
	}

	if err := assertProvenance(built, maxLen); err != nil {
		return BuiltQuery{}, err
	}
	return built, nil
}

// augmentTerms returns Tier B/C clauses from the fixed vocabulary.
func augmentTerms(tier Tier, country string) []Token {
	var out []Token
	switch tier {
	case TierB:
		shard := append([]string{}, EventTerms[:4]...)
		if cities, ok := CityTerms[strings.ToLower(country)]; ok {
			shard = append(shard, cities...)
		}
		shard = append(shard, RoleTerms[:3]...)
		out = append(out, Token{
			Text:   Wrap(strings.Join(shard, " | ")),
			Source: SourceAugmented,
		})
	case TierC:
		sites := make([]string, 0, len(CuratedDomains))
		for _, d := range CuratedDomains {
			sites = append(sites, "site:"+d)
		}
		out = append(out, Token{
			Text:   Wrap(strings.Join(sites, " | ")),
			Source: SourceAugmented,
		})
	}
	return out
}

// assertProvenance rejects built queries that leak denied internal terms or
// exceed the provider length cap. Both are programmer errors, never retried.
func assertProvenance(b BuiltQuery, maxLen int) error {
	lower := strings.ToLower(b.Query)
	for _, banned := range deniedTerms {
		if strings.Contains(lower, banned) {
			return fmt.Errorf("%w: built query contains %q", domain.ErrRogueAugmentation, banned)
		}
	}
	if len(b.Query) > maxLen {
		return fmt.Errorf("%w: %d > %d", domain.ErrQueryTooLong, len(b.Query), maxLen)
	}
	return nil
}
