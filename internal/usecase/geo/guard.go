// Package geo enforces country consistency on retrieval candidates and
// resolves venue countries for un-geotagged documents.
package geo

import (
	"strings"

	"github.com/confradar/confradar/internal/domain/candidate"
)

// Verdict is the outcome of the country filter stage. It carries data, not
// control flow: the retrieval orchestrator decides whether mismatches abort
// the request (single-country intents) or are merely dropped.
type Verdict struct {
	Kept       []candidate.Candidate
	Mismatched []candidate.Candidate
}

// EnforceCountry splits candidates by case-insensitive country equality with
// the requested country. Documents without a country are treated as
// mismatched; callers wanting to keep them should resolve the venue first.
func EnforceCountry(cands []candidate.Candidate, requested string) Verdict {
	requested = strings.ToLower(requested)
	v := Verdict{
		Kept:       make([]candidate.Candidate, 0, len(cands)),
		Mismatched: nil,
	}
	for _, c := range cands {
		if strings.ToLower(c.Doc.Country) == requested {
			v.Kept = append(v.Kept, c)
		} else {
			v.Mismatched = append(v.Mismatched, c)
		}
	}
	return v
}
