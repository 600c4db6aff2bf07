package querybuild

import (
	"errors"
	"strings"
	"testing"

	"github.com/confradar/confradar/internal/domain"
)

func TestBuild_BaseOnly(t *testing.T) {
	b, err := Build(Params{BaseQuery: "legal compliance"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Query != "(legal compliance)" {
		t.Errorf("expected wrapped base query, got %q", b.Query)
	}
	if b.Tier != TierA {
		t.Errorf("expected tier A, got %q", b.Tier)
	}
	if len(b.Tokens) != 1 || b.Tokens[0].Source != SourceUserConfig {
		t.Errorf("unexpected tokens: %+v", b.Tokens)
	}
}

func TestBuild_UserTextReplacesBase(t *testing.T) {
	b, err := Build(Params{BaseQuery: "legal compliance", UserText: "fintech regulation summit"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Query != "(fintech regulation summit)" {
		t.Errorf("user text must replace base, got %q", b.Query)
	}
	if strings.Contains(b.Query, "legal compliance") {
		t.Error("base query leaked into user-text build")
	}
}

func TestWrap_Idempotent(t *testing.T) {
	for _, s := range []string{"legal compliance", "(already wrapped)", "a (inner) b", "(a) (b)"} {
		once := Wrap(s)
		if twice := Wrap(once); twice != once {
			t.Errorf("Wrap not idempotent for %q: %q != %q", s, once, twice)
		}
	}
	// "(a) (b)" is two groups, not one; it must gain an outer wrap.
	if got := Wrap("(a) (b)"); got != "((a) (b))" {
		t.Errorf("expected outer wrap for multi-group string, got %q", got)
	}
}

func TestBuild_OutputAlwaysBalanced(t *testing.T) {
	inputs := []Params{
		{BaseQuery: "a((b"},
		{BaseQuery: strings.Repeat("(legal compliance) ", 40), MaxLen: 120},
		{BaseQuery: "x)", UserText: "((y"},
		{BaseQuery: "legal", ExcludeTerms: []string{"webinar)", "(free"}},
	}
	for _, p := range inputs {
		b, err := Build(p)
		if err != nil {
			t.Fatalf("unexpected error for %+v: %v", p, err)
		}
		if b.Query == "" {
			t.Fatalf("empty built query for %+v", p)
		}
		if strings.Count(b.Query, "(") != strings.Count(b.Query, ")") {
			t.Errorf("unbalanced query %q", b.Query)
		}
	}
}

func TestBuild_AugmentationGatedAndTagged(t *testing.T) {
	off, err := Build(Params{BaseQuery: "legal compliance", Tier: TierB, Country: "de"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if off.Tier != TierA || len(off.Tokens) != 1 {
		t.Errorf("augmentation must be off without the flag: %+v", off)
	}

	on, err := Build(Params{BaseQuery: "legal compliance", Tier: TierB, Country: "de", EnableAug: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if on.Tier != TierB {
		t.Fatalf("expected tier B, got %q", on.Tier)
	}
	var augmented int
	for _, tok := range on.Tokens {
		if tok.Source == SourceAugmented {
			augmented++
			if !strings.Contains(tok.Text, "berlin") && !strings.Contains(tok.Text, "conference") {
				t.Errorf("augmented token outside vocabulary: %q", tok.Text)
			}
		}
	}
	if augmented == 0 {
		t.Error("expected at least one augmented token")
	}

	siteTier, err := Build(Params{BaseQuery: "legal compliance", Tier: TierC, EnableAug: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(siteTier.Query, "site:eventbrite.com") {
		t.Errorf("expected curated site: filters in tier C, got %q", siteTier.Query)
	}
}

func TestBuild_GuardRejections(t *testing.T) {
	if _, err := Build(Params{BaseQuery: "battlecard vendors"}); !errors.Is(err, domain.ErrRogueAugmentation) {
		t.Errorf("expected ErrRogueAugmentation, got %v", err)
	}
	if _, err := Build(Params{BaseQuery: "   "}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for empty base, got %v", err)
	}
}

func TestSanitize_AllowlistAndTruncation(t *testing.T) {
	got := Sanitize("ai\x00 summit\t2026 <script>", 300)
	if got != "ai summit 2026 script" {
		t.Errorf("unexpected sanitized output %q", got)
	}
	long := Sanitize(strings.Repeat("x", 500), 300)
	if len(long) > 300 {
		t.Errorf("truncation failed, len=%d", len(long))
	}
}
