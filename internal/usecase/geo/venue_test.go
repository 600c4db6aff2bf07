package geo

import "testing"

func TestResolveVenueCountryJSONLD(t *testing.T) {
	r := NewResolver(16)

	res := r.ResolveVenueCountry(`{"@type":"Event","location":{"address":{"addressCountry":"Germany","addressLocality":"Berlin"}}}`, ".com", "fr")
	if res.Country != "DE" {
		t.Fatalf("country = %q, want DE", res.Country)
	}
	if res.Confidence != ConfidenceHigh {
		t.Fatalf("confidence = %q, want high", res.Confidence)
	}
	if res.City != "Berlin" {
		t.Fatalf("city = %q, want Berlin", res.City)
	}
}

func TestResolveVenueCountryAlpha2Code(t *testing.T) {
	r := NewResolver(16)
	res := r.ResolveVenueCountry(`"addressCountry":"nl"`, "", "")
	if res.Country != "NL" || res.Confidence != ConfidenceHigh {
		t.Fatalf("got %+v, want NL/high", res)
	}
}

func TestResolveVenueCountryLocalityOnly(t *testing.T) {
	r := NewResolver(16)
	res := r.ResolveVenueCountry(`"addressLocality":"Munich"`, "", "")
	if res.Country != "DE" || res.City != "Munich" {
		t.Fatalf("got %+v, want DE/Munich", res)
	}
}

func TestResolveVenueCountryContextualName(t *testing.T) {
	r := NewResolver(16)
	res := r.ResolveVenueCountry("Annual developer summit held in France this spring", "", "fr")
	if res.Country != "FR" || res.Confidence != ConfidenceHigh {
		t.Fatalf("got %+v, want FR/high", res)
	}
}

func TestResolveVenueCountryCityMention(t *testing.T) {
	r := NewResolver(16)
	res := r.ResolveVenueCountry("Join us at our Amsterdam campus for two days of talks", "", "")
	if res.Country != "NL" || res.City != "amsterdam" {
		t.Fatalf("got %+v, want NL/amsterdam", res)
	}
}

func TestResolveVenueCountryEUWide(t *testing.T) {
	r := NewResolver(16)

	res := r.ResolveVenueCountry("A pan-European roadshow for developers", "", "de")
	if res.Country != "DE" || res.Confidence != ConfidenceLow {
		t.Fatalf("got %+v, want DE/low", res)
	}

	// Non-member requests get no EU attribution.
	res = r.ResolveVenueCountry("A pan-European roadshow for developers", "", "us")
	if res.Country != "" {
		t.Fatalf("country = %q, want unknown for non-member", res.Country)
	}
}

func TestResolveVenueCountryCcTLD(t *testing.T) {
	r := NewResolver(16)
	res := r.ResolveVenueCountry("Registration is open", ".fr", "")
	if res.Country != "FR" || res.Confidence != ConfidenceLow {
		t.Fatalf("got %+v, want FR/low", res)
	}

	// Generic TLDs resolve nothing.
	res = r.ResolveVenueCountry("Registration is open", ".io", "")
	if res.Country != "" {
		t.Fatalf("country = %q, want empty for generic tld", res.Country)
	}
}

func TestResolveVenueCountryUnknown(t *testing.T) {
	r := NewResolver(16)
	res := r.ResolveVenueCountry("Nothing geographic here", ".com", "")
	if res.Country != "" || res.Confidence != ConfidenceLow {
		t.Fatalf("got %+v, want empty/low", res)
	}
}

func TestResolveVenueCountryMemoized(t *testing.T) {
	r := NewResolver(16)
	a := r.ResolveVenueCountry("conference in Paris", "", "")
	b := r.ResolveVenueCountry("conference in Paris", "", "")
	if a != b {
		t.Fatalf("memoized call returned %+v then %+v", a, b)
	}
	if r.memo.Len() != 1 {
		t.Fatalf("memo len = %d, want 1", r.memo.Len())
	}
}
