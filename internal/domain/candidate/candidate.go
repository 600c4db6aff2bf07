// Package candidate holds the per-document scoring state used by fusion and rerank.
package candidate

import (
	"math"
	"time"

	"github.com/confradar/confradar/internal/domain"
)

// Hybrid score feature weights. They sum to 1 so the fused score stays in [0,1]
// when every feature is in [0,1].
const (
	WeightLex       = 0.45
	WeightSem       = 0.35
	WeightRecency   = 0.10
	WeightAuthority = 0.07
	WeightGeo       = 0.03
)

// Candidate owns one retrieved document plus its per-feature scores.
// Created during retrieval merge, mutated during fusion and rerank,
// discarded after response assembly.
type Candidate struct {
	Doc        domain.Document
	ScoreLex   float64
	ScoreSem   float64
	Recency    float64
	Authority  float64
	GeoMatch   float64 // 0 or 1
	Score      float64 // fused hybrid score
	ScoreCE    float64 // cross-encoder score, valid when HasCE
	HasCE      bool
	FinalScore float64
}

// ComputeFeatures fills recency and authority from the document, and geo_match
// against the requested country. Lex/sem scores are set by the retrieval merge.
func (c *Candidate) ComputeFeatures(now time.Time, requestedCountry string) {
	c.Recency = 0
	if c.Doc.Published > 0 {
		ageDays := now.Sub(time.Unix(c.Doc.Published, 0)).Hours() / 24
		if ageDays < 0 {
			ageDays = 0
		}
		c.Recency = math.Exp(-ageDays / 365)
	}
	c.Authority = math.Min(math.Log10(1+c.Doc.Authority)/5, 1)
	c.GeoMatch = 0
	if c.Doc.Country != "" && c.Doc.Country == requestedCountry {
		c.GeoMatch = 1
	}
}

// Fuse recomputes the weighted hybrid score from the current features.
func (c *Candidate) Fuse() {
	c.Score = WeightLex*c.ScoreLex +
		WeightSem*c.ScoreSem +
		WeightRecency*c.Recency +
		WeightAuthority*c.Authority +
		WeightGeo*c.GeoMatch
}
