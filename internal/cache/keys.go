package cache

import (
	"strings"

	"github.com/confradar/confradar/internal/domain"
)

// Key builds a deterministic cache key: kind namespace prefix plus ordered,
// non-empty parts joined with '|'. Repeated separators inside parts are
// collapsed so identical logical inputs hash identically at every call site.
func Key(kind Kind, parts ...string) string {
	filtered := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		filtered = append(filtered, p)
	}
	joined := strings.Join(filtered, "|")
	for strings.Contains(joined, "||") {
		joined = strings.ReplaceAll(joined, "||", "|")
	}
	joined = strings.Trim(joined, "|")
	return domain.KeyPrefix + "cache:" + string(kind) + ":" + joined
}
