package openai

import "testing"

func TestParseScores(t *testing.T) {
	scores, err := parseScores("[0.1, 0.9, 0.5]", 3)
	if err != nil {
		t.Fatalf("parseScores: %v", err)
	}
	if scores[0] != 0.1 || scores[1] != 0.9 || scores[2] != 0.5 {
		t.Fatalf("scores = %v", scores)
	}
}

func TestParseScoresToleratesProse(t *testing.T) {
	scores, err := parseScores("Here are the scores: [0.2, 0.8] as requested.", 2)
	if err != nil {
		t.Fatalf("parseScores: %v", err)
	}
	if scores[0] != 0.2 || scores[1] != 0.8 {
		t.Fatalf("scores = %v", scores)
	}
}

func TestParseScoresClamps(t *testing.T) {
	scores, err := parseScores("[-0.5, 1.7]", 2)
	if err != nil {
		t.Fatalf("parseScores: %v", err)
	}
	if scores[0] != 0 || scores[1] != 1 {
		t.Fatalf("scores = %v", scores)
	}
}

func TestParseScoresErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    int
	}{
		{"no array", "no scores here", 2},
		{"bad json", "[0.1, oops]", 2},
		{"wrong count", "[0.1]", 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseScores(tc.content, tc.want); err == nil {
				t.Fatalf("parseScores(%q) succeeded", tc.content)
			}
		})
	}
}
