package geo

import "testing"

func TestValidCountry(t *testing.T) {
	cases := map[string]bool{
		"de":  true,
		"DE":  true,
		"fr":  true,
		"xx":  false,
		"d":   false,
		"deu": false,
		"":    false,
	}
	for code, want := range cases {
		if got := ValidCountry(code); got != want {
			t.Fatalf("ValidCountry(%q) = %v, want %v", code, got, want)
		}
	}
}

// Every name the shard vocabulary can emit must resolve back to its code, so
// a venue block naming any supported country takes the structured path.
func TestCountryFromNameCoversCanonicalNames(t *testing.T) {
	for code, name := range canonicalNames {
		got, ok := CountryFromName(name)
		if !ok || got != code {
			t.Fatalf("CountryFromName(%q) = %q, %v, want %q", name, got, ok, code)
		}
	}
}

func TestCountryFromNameAliases(t *testing.T) {
	cases := map[string]string{
		"France":        "fr",
		"  Germany ":    "de",
		"USA":           "us",
		"Czechia":       "cz",
		"England":       "gb",
		"Deutschland":   "de",
		"Great Britain": "gb",
	}
	for name, want := range cases {
		got, ok := CountryFromName(name)
		if !ok || got != want {
			t.Fatalf("CountryFromName(%q) = %q, %v, want %q", name, got, ok, want)
		}
	}
}

func TestCountryFromNameUnknown(t *testing.T) {
	if _, ok := CountryFromName("atlantis"); ok {
		t.Fatal("unknown name resolved")
	}
}
