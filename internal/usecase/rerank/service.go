// Package rerank applies cross-encoder reordering on top of the hybrid score.
package rerank

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/confradar/confradar/internal/domain/candidate"
	"github.com/confradar/confradar/internal/metrics"
)

// Final score blend between the fused hybrid score and the cross-encoder.
const (
	weightHybrid = 0.7
	weightCE     = 0.3
)

// CrossEncoder scores (query, document) pairs jointly. Implementations may be
// remote and slow; the service treats any failure as non-fatal.
type CrossEncoder interface {
	Score(ctx context.Context, query string, docs []string, budgetTokens int) ([]float64, error)
}

// Service reorders fused candidates. A nil cross-encoder is valid and means
// hybrid ordering only.
type Service struct {
	ce           CrossEncoder
	budgetTokens int
	logger       *zap.Logger
}

// NewService creates a rerank service. ce may be nil.
func NewService(ce CrossEncoder, budgetTokens int, logger *zap.Logger) *Service {
	if budgetTokens <= 0 {
		budgetTokens = 3000
	}
	return &Service{ce: ce, budgetTokens: budgetTokens, logger: logger}
}

// Rerank scores the candidates with the cross-encoder and sorts by the blended
// final score. It never fails: when the encoder is absent or errors, the
// hybrid ordering stands, with lex+sem as the tie break.
func (s *Service) Rerank(ctx context.Context, query string, cands []candidate.Candidate) []candidate.Candidate {
	if len(cands) == 0 {
		return cands
	}

	if s.ce != nil {
		docs := make([]string, len(cands))
		for i, c := range cands {
			docs[i] = c.Doc.Title + "\n" + c.Doc.Content
		}
		scores, err := s.ce.Score(ctx, query, docs, s.budgetTokens)
		if err == nil && len(scores) != len(cands) {
			err = fmt.Errorf("cross-encoder returned %d scores for %d candidates", len(scores), len(cands))
		}
		if err == nil {
			for i := range cands {
				cands[i].ScoreCE = scores[i]
				cands[i].HasCE = true
				cands[i].FinalScore = clamp01(weightHybrid*cands[i].Score + weightCE*scores[i])
			}
			sort.SliceStable(cands, func(i, j int) bool {
				return cands[i].FinalScore > cands[j].FinalScore
			})
			return cands
		}
		s.logger.Warn("Cross-encoder failed, keeping hybrid order", zap.Error(err))
		metrics.RerankFallbacksTotal.Inc()
	}

	for i := range cands {
		cands[i].FinalScore = cands[i].Score
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].FinalScore != cands[j].FinalScore {
			return cands[i].FinalScore > cands[j].FinalScore
		}
		return cands[i].ScoreLex+cands[i].ScoreSem > cands[j].ScoreLex+cands[j].ScoreSem
	})
	return cands
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
