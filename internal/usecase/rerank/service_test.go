package rerank

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/confradar/confradar/internal/domain"
	"github.com/confradar/confradar/internal/domain/candidate"
)

type fakeCE struct {
	scores   []float64
	verbatim bool // return scores as-is instead of sizing to the doc count
	err      error
	calls    int
}

func (f *fakeCE) Score(_ context.Context, _ string, docs []string, _ int) ([]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.verbatim {
		return f.scores, nil
	}
	return f.scores[:len(docs)], nil
}

func cands(scores ...float64) []candidate.Candidate {
	out := make([]candidate.Candidate, len(scores))
	for i, s := range scores {
		out[i] = candidate.Candidate{
			Doc:   domain.Document{ID: string(rune('a' + i))},
			Score: s,
		}
	}
	return out
}

func TestRerankBlendsAndReorders(t *testing.T) {
	// Hybrid prefers doc a, the encoder strongly prefers doc b.
	ce := &fakeCE{scores: []float64{0.1, 0.9}}
	svc := NewService(ce, 3000, zap.NewNop())

	out := svc.Rerank(context.Background(), "q", cands(0.6, 0.5))

	if out[0].Doc.ID != "b" {
		t.Fatalf("top = %q, want b", out[0].Doc.ID)
	}
	want := 0.7*0.5 + 0.3*0.9
	if diff := out[0].FinalScore - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("final = %v, want %v", out[0].FinalScore, want)
	}
	if !out[0].HasCE || out[0].ScoreCE != 0.9 {
		t.Fatalf("ce score not recorded: %+v", out[0])
	}
}

func TestRerankFallsBackOnError(t *testing.T) {
	ce := &fakeCE{err: errors.New("model unavailable")}
	svc := NewService(ce, 3000, zap.NewNop())

	out := svc.Rerank(context.Background(), "q", cands(0.3, 0.8))

	if out[0].Doc.ID != "b" || out[0].FinalScore != 0.8 {
		t.Fatalf("fallback order wrong: %+v", out[0])
	}
	if out[0].HasCE {
		t.Fatal("HasCE set despite encoder failure")
	}
}

func TestRerankFallsBackOnShortScoreSlice(t *testing.T) {
	// One score for two candidates keeps the hybrid order instead of panicking.
	ce := &fakeCE{scores: []float64{0.9}, verbatim: true}
	svc := NewService(ce, 3000, zap.NewNop())

	out := svc.Rerank(context.Background(), "q", cands(0.3, 0.8))

	if out[0].Doc.ID != "b" || out[0].FinalScore != 0.8 {
		t.Fatalf("fallback order wrong: %+v", out[0])
	}
	for _, c := range out {
		if c.HasCE {
			t.Fatalf("HasCE set despite score count mismatch: %+v", c)
		}
	}
}

func TestRerankNilEncoder(t *testing.T) {
	svc := NewService(nil, 0, zap.NewNop())

	out := svc.Rerank(context.Background(), "q", cands(0.2, 0.9, 0.5))
	if out[0].Doc.ID != "b" || out[1].Doc.ID != "c" || out[2].Doc.ID != "a" {
		t.Fatalf("order = %q %q %q", out[0].Doc.ID, out[1].Doc.ID, out[2].Doc.ID)
	}
}

func TestRerankTieBreaksOnLexSem(t *testing.T) {
	in := cands(0.5, 0.5)
	in[1].ScoreLex = 0.9
	svc := NewService(nil, 0, zap.NewNop())

	out := svc.Rerank(context.Background(), "q", in)
	if out[0].Doc.ID != "b" {
		t.Fatalf("tie break failed, top = %q", out[0].Doc.ID)
	}
}

func TestRerankEmptyInput(t *testing.T) {
	ce := &fakeCE{scores: []float64{}}
	svc := NewService(ce, 3000, zap.NewNop())
	if out := svc.Rerank(context.Background(), "q", nil); len(out) != 0 {
		t.Fatalf("len = %d, want 0", len(out))
	}
	if ce.calls != 0 {
		t.Fatalf("encoder called %d times on empty input", ce.calls)
	}
}
