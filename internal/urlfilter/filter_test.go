package urlfilter

import (
	"reflect"
	"testing"
)

func TestKeep(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://www.eventbrite.com/e/ai-summit-berlin-tickets", true},
		{"https://facebook.com/events/123", false},
		{"https://example.com/blog/why-we-love-events", false},
		{"https://example.com/tag/conference", false},
		{"https://example.com/category/news", false},
		{"https://techsummit.de/berlin-2026", true},
		{"https://random-site.io/some/page", true}, // default-keep
		{"https://meetup.com/blog/anything", true}, // allowlist beats path blocklist
		{"", false},
	}
	for _, tc := range cases {
		if got := Keep(tc.url); got != tc.want {
			t.Errorf("Keep(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}

func TestDedupe_Idempotent(t *testing.T) {
	urls := []string{
		"https://example.com/a",
		"http://www.example.com/a/",
		"HTTPS://EXAMPLE.COM/A",
		"https://example.com/b",
	}
	once := Dedupe(urls)
	if len(once) != 2 {
		t.Fatalf("expected 2 unique URLs, got %d: %v", len(once), once)
	}
	if twice := Dedupe(once); !reflect.DeepEqual(once, twice) {
		t.Errorf("Dedupe not idempotent: %v != %v", once, twice)
	}
	if once[0] != "https://example.com/a" {
		t.Errorf("first occurrence must win, got %q", once[0])
	}
}

func TestPromoteHinted(t *testing.T) {
	urls := []string{
		"https://a.io/page",
		"https://b.io/tech-conference-2026",
		"https://c.io/other",
		"https://d.io/berlin",
	}
	got := PromoteHinted(urls)
	want := []string{
		"https://b.io/tech-conference-2026",
		"https://d.io/berlin",
		"https://a.io/page",
		"https://c.io/other",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PromoteHinted = %v, want %v", got, want)
	}
}
