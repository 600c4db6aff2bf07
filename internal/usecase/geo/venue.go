package geo

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	domgeo "github.com/confradar/confradar/internal/domain/geo"
	"github.com/confradar/confradar/internal/querybuild"
)

// Confidence grades a venue resolution.
type Confidence string

const (
	// ConfidenceHigh means the caller can trust the resolution outright.
	ConfidenceHigh Confidence = "high"
	// ConfidenceLow means the caller should verify before relying on it.
	ConfidenceLow Confidence = "low"
)

// Resolution is the venue guard output, consumed immediately by the caller.
// Country is upper-case alpha-2, empty when unknown.
type Resolution struct {
	Country    string
	City       string
	Confidence Confidence
}

var (
	addressCountryRe  = regexp.MustCompile(`"addressCountry"\s*:\s*"([^"]+)"`)
	addressLocalityRe = regexp.MustCompile(`"addressLocality"\s*:\s*"([^"]+)"`)
	euWideRe          = regexp.MustCompile(`(?i)\b(european union|eu-wide|pan-european|across europe)\b`)
)

// cityCountry inverts the shard city vocabulary into city -> country.
var cityCountry = func() map[string]string {
	m := make(map[string]string)
	for country, cities := range querybuild.CityTerms {
		for _, city := range cities {
			m[city] = country
		}
	}
	return m
}()

// cityList is the deterministic scan order for city mentions.
var cityList = func() []string {
	cities := make([]string, 0, len(cityCountry))
	for city := range cityCountry {
		cities = append(cities, city)
	}
	sort.Strings(cities)
	return cities
}()

var euMembers = map[string]bool{
	"at": true, "be": true, "bg": true, "cy": true, "cz": true, "de": true,
	"dk": true, "ee": true, "es": true, "fi": true, "fr": true, "gr": true,
	"hr": true, "hu": true, "ie": true, "it": true, "lt": true, "lu": true,
	"lv": true, "mt": true, "nl": true, "pl": true, "pt": true, "ro": true,
	"se": true, "si": true, "sk": true,
}

// Resolver resolves venue countries with an in-instance memo cache. The memo
// is per-resolver, not package state, so lifetime follows the owning service.
type Resolver struct {
	memo *lru.Cache[string, Resolution]
}

// NewResolver creates a resolver with a bounded memo cache.
func NewResolver(memoSize int) *Resolver {
	if memoSize <= 0 {
		memoSize = 1024
	}
	memo, _ := lru.New[string, Resolution](memoSize)
	return &Resolver{memo: memo}
}

// ResolveVenueCountry infers the venue country of an un-geotagged document.
// Order: embedded JSON-LD address -> contextual country from the request ->
// known city names -> EU-wide pattern -> ccTLD -> unknown.
func (r *Resolver) ResolveVenueCountry(text, tld, requestedCountry string) Resolution {
	key := memoKey(text, tld, requestedCountry)
	if res, ok := r.memo.Get(key); ok {
		return res
	}
	res := resolve(text, tld, requestedCountry)
	r.memo.Add(key, res)
	return res
}

func resolve(text, tld, requestedCountry string) Resolution {
	requested := strings.ToLower(requestedCountry)
	lower := strings.ToLower(text)

	// Structured JSON-LD address block.
	if m := addressCountryRe.FindStringSubmatch(text); m != nil {
		if code, ok := countryCode(m[1]); ok {
			res := Resolution{Country: code, Confidence: ConfidenceHigh}
			if lm := addressLocalityRe.FindStringSubmatch(text); lm != nil {
				res.City = lm[1]
			}
			return res
		}
	}
	if m := addressLocalityRe.FindStringSubmatch(text); m != nil {
		if country, ok := cityCountry[strings.ToLower(m[1])]; ok {
			return Resolution{Country: strings.ToUpper(country), City: m[1], Confidence: ConfidenceHigh}
		}
	}

	// Contextual: the request's country named in the text.
	if name, ok := domgeo.CountryName(requested); ok && strings.Contains(lower, name) {
		return Resolution{Country: strings.ToUpper(requested), Confidence: ConfidenceHigh}
	}

	// Known city mentions.
	for _, city := range cityList {
		if strings.Contains(lower, city) {
			return Resolution{Country: strings.ToUpper(cityCountry[city]), City: city, Confidence: ConfidenceHigh}
		}
	}

	// EU-wide content: attribute to the requested country when it is a member.
	if euWideRe.MatchString(text) && euMembers[requested] {
		return Resolution{Country: strings.ToUpper(requested), Confidence: ConfidenceLow}
	}

	// ccTLD inference.
	if tld = strings.ToLower(strings.TrimPrefix(tld, ".")); len(tld) == 2 && domgeo.ValidCountry(tld) {
		return Resolution{Country: strings.ToUpper(tld), Confidence: ConfidenceLow}
	}

	return Resolution{Confidence: ConfidenceLow}
}

// countryCode accepts either an alpha-2 code or an English country name.
func countryCode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 2 && domgeo.ValidCountry(s) {
		return strings.ToUpper(s), true
	}
	if code, ok := domgeo.CountryFromName(s); ok {
		return strings.ToUpper(code), true
	}
	return "", false
}

func memoKey(text, tld, requested string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:16]) + "|" + tld + "|" + requested
}
