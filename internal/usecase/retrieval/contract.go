// Package retrieval runs the hybrid lexical plus semantic search pipeline:
// concurrent branch retrieval, score normalization, weighted fusion, country
// enforcement, and cross-encoder rerank.
package retrieval

import "github.com/confradar/confradar/internal/domain"

// Item is one ranked result.
type Item struct {
	Doc        domain.Document `json:"doc"`
	Score      float64         `json:"score"`
	ScoreLex   float64         `json:"score_lex"`
	ScoreSem   float64         `json:"score_sem"`
	ScoreCE    float64         `json:"score_ce,omitempty"`
	FinalScore float64         `json:"final_score"`
}

// Debug carries per-stage counts for response introspection.
type Debug struct {
	LexicalHits  int `json:"lexical_hits"`
	SemanticHits int `json:"semantic_hits"`
	Merged       int `json:"merged"`
	GeoDropped   int `json:"geo_dropped"`
	VenueRescued int `json:"venue_rescued"`
	Reranked     int `json:"reranked"`
	PromptTokens int `json:"prompt_tokens,omitempty"`
	BranchErrors int `json:"branch_errors,omitempty"`
}

// Response is the search outcome. Items is never nil.
type Response struct {
	Items     []Item `json:"items"`
	Debug     Debug  `json:"debug"`
	LatencyMs int64  `json:"latency_ms"`
	Cached    bool   `json:"cached"`
}
