package retrieval

import (
	"testing"

	"github.com/confradar/confradar/internal/domain"
	"github.com/confradar/confradar/internal/domain/candidate"
	"github.com/confradar/confradar/internal/repository/document"
)

func scored(id string, score float64) document.Scored {
	return document.Scored{Doc: domain.Document{ID: id}, Score: score}
}

func TestNormalizeScoresMinMax(t *testing.T) {
	rows := []document.Scored{scored("a", 2), scored("b", 6), scored("c", 4)}
	normalizeScores(rows)

	if rows[0].Score != 0 || rows[1].Score != 1 || rows[2].Score != 0.5 {
		t.Fatalf("scores = %v %v %v", rows[0].Score, rows[1].Score, rows[2].Score)
	}
}

func TestNormalizeScoresAllEqual(t *testing.T) {
	rows := []document.Scored{scored("a", 3), scored("b", 3)}
	normalizeScores(rows)

	for _, r := range rows {
		if r.Score != 0.5 {
			t.Fatalf("score = %v, want 0.5", r.Score)
		}
	}
}

func TestNormalizeScoresEmpty(t *testing.T) {
	normalizeScores(nil)
}

func TestMergeJoinsByID(t *testing.T) {
	lex := []document.Scored{scored("a", 0.9), scored("b", 0.4)}
	sem := []document.Scored{scored("b", 0.7), scored("c", 0.6)}

	out := merge(lex, sem)
	if len(out) != 3 {
		t.Fatalf("merged = %d, want 3", len(out))
	}

	byID := map[string]candidate.Candidate{}
	for _, c := range out {
		byID[c.Doc.ID] = c
	}
	if c := byID["a"]; c.ScoreLex != 0.9 || c.ScoreSem != 0 {
		t.Fatalf("a = %+v", c)
	}
	if c := byID["b"]; c.ScoreLex != 0.4 || c.ScoreSem != 0.7 {
		t.Fatalf("b = %+v", c)
	}
	if c := byID["c"]; c.ScoreLex != 0 || c.ScoreSem != 0.6 {
		t.Fatalf("c = %+v", c)
	}
}

// Raising any single feature while holding the others fixed must not lower
// the fused score.
func TestFuseMonotonic(t *testing.T) {
	base := candidate.Candidate{ScoreLex: 0.4, ScoreSem: 0.4, Recency: 0.4, Authority: 0.4, GeoMatch: 0}
	base.Fuse()

	bumps := []func(c *candidate.Candidate){
		func(c *candidate.Candidate) { c.ScoreLex = 0.8 },
		func(c *candidate.Candidate) { c.ScoreSem = 0.8 },
		func(c *candidate.Candidate) { c.Recency = 0.8 },
		func(c *candidate.Candidate) { c.Authority = 0.8 },
		func(c *candidate.Candidate) { c.GeoMatch = 1 },
	}
	for i, bump := range bumps {
		c := base
		bump(&c)
		c.Fuse()
		if c.Score < base.Score {
			t.Fatalf("bump %d lowered score: %v < %v", i, c.Score, base.Score)
		}
	}
}
