package retrieval

import (
	"github.com/confradar/confradar/internal/domain/candidate"
	"github.com/confradar/confradar/internal/repository/document"
)

// normalizeScores min-max normalizes backend scores into [0,1] in place.
// When every score is equal the branch carries no ordering signal, so all
// scores become 0.5 rather than an arbitrary 0 or 1.
func normalizeScores(rows []document.Scored) {
	if len(rows) == 0 {
		return
	}
	lo, hi := rows[0].Score, rows[0].Score
	for _, r := range rows[1:] {
		if r.Score < lo {
			lo = r.Score
		}
		if r.Score > hi {
			hi = r.Score
		}
	}
	if hi == lo {
		for i := range rows {
			rows[i].Score = 0.5
		}
		return
	}
	for i := range rows {
		rows[i].Score = (rows[i].Score - lo) / (hi - lo)
	}
}

// merge joins the two branches by document id. A document present in both
// keeps both scores; a document in one branch scores zero on the other.
func merge(lex, sem []document.Scored) []candidate.Candidate {
	byID := make(map[string]int, len(lex)+len(sem))
	out := make([]candidate.Candidate, 0, len(lex)+len(sem))

	for _, r := range lex {
		byID[r.Doc.ID] = len(out)
		out = append(out, candidate.Candidate{Doc: r.Doc, ScoreLex: r.Score})
	}
	for _, r := range sem {
		if i, ok := byID[r.Doc.ID]; ok {
			out[i].ScoreSem = r.Score
			continue
		}
		byID[r.Doc.ID] = len(out)
		out = append(out, candidate.Candidate{Doc: r.Doc, ScoreSem: r.Score})
	}
	return out
}
