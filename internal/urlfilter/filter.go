// Package urlfilter drops obvious junk URLs before extraction budget is spent.
package urlfilter

import (
	"regexp"
	"strings"
)

var (
	// Host boundary (start, //, or a dot) keeps "x" from matching inside
	// names like fedex.com.
	domainBlocklist = regexp.MustCompile(`(?i)(^|//|\.)(facebook|twitter|x|instagram|tiktok|pinterest|youtube|linkedin|reddit|wikipedia|amazon|glassdoor|indeed)\.[a-z.]+`)
	pathBlocklist   = regexp.MustCompile(`(?i)/(tag|category|blog|news)(/|$)`)
	domainAllowlist = regexp.MustCompile(`(?i)(^|//|\.)(eventbrite|meetup|10times|conferenceindex|eventseye|tradefairdates|allconferencealert)\.[a-z.]+`)

	eventHint    = regexp.MustCompile(`(?i)(conference|summit|congress|expo|forum|symposium|convention|fair|meetup|workshop|seminar|event)`)
	locationHint = regexp.MustCompile(`(?i)(berlin|munich|frankfurt|hamburg|paris|london|amsterdam|madrid|barcelona|milan|rome|vienna|zurich|geneva|stockholm|copenhagen|brussels|lisbon|dublin|warsaw|prague|new.?york|san.?francisco|austin|chicago|las.?vegas|singapore|tokyo)`)
)

// Keep reports whether a URL survives the prefilter. Allowlisted domains are
// always kept; blocklisted domains and listing paths are dropped; everything
// else is kept, with the event/location hints serving as cheap positive
// signals rather than gates. Unknown domains pass through to the stronger
// country and relevance guards downstream.
func Keep(rawURL string) bool {
	u := strings.ToLower(strings.TrimSpace(rawURL))
	if u == "" {
		return false
	}
	if domainAllowlist.MatchString(u) {
		return true
	}
	if domainBlocklist.MatchString(u) {
		return false
	}
	if pathBlocklist.MatchString(u) {
		return false
	}
	return true
}

// Hinted reports whether a URL carries an event-type or location signal.
func Hinted(rawURL string) bool {
	u := strings.ToLower(rawURL)
	return eventHint.MatchString(u) || locationHint.MatchString(u)
}

// PromoteHinted stable-partitions hinted URLs before unhinted ones, so a
// downstream cap keeps the likelier event pages.
func PromoteHinted(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if Hinted(u) {
			out = append(out, u)
		}
	}
	for _, u := range urls {
		if !Hinted(u) {
			out = append(out, u)
		}
	}
	return out
}

// Filter keeps URLs passing Keep, preserving input order.
func Filter(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if Keep(u) {
			out = append(out, u)
		}
	}
	return out
}

// Dedupe removes duplicate URLs, ignoring scheme case, a www. prefix, and a
// trailing slash. First occurrence wins; idempotent.
func Dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		key := canonicalKey(u)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, u)
	}
	return out
}

func canonicalKey(u string) string {
	k := strings.ToLower(strings.TrimSpace(u))
	k = strings.TrimPrefix(k, "https://")
	k = strings.TrimPrefix(k, "http://")
	k = strings.TrimPrefix(k, "www.")
	return strings.TrimSuffix(k, "/")
}
