package querybuild

// Fixed, reviewed vocabularies. Augmented tokens must come from these lists;
// anything else in a built query is treated as an injection and rejected by
// the provenance guard.

// EventTerms are event-type words used for Tier B shards and discovery degradation.
var EventTerms = []string{
	"conference", "summit", "congress", "expo", "forum", "symposium",
	"convention", "fair", "meetup", "workshop", "seminar",
}

// RoleTerms are audience/role shards permitted in Tier B.
var RoleTerms = []string{
	"cto", "cio", "ciso", "founder", "executive", "director",
}

// CityTerms are major city shards permitted in Tier B, keyed by country code.
var CityTerms = map[string][]string{
	"de": {"berlin", "munich", "frankfurt", "hamburg", "cologne"},
	"fr": {"paris", "lyon", "marseille", "toulouse"},
	"gb": {"london", "manchester", "birmingham", "edinburgh"},
	"nl": {"amsterdam", "rotterdam", "utrecht", "the hague"},
	"es": {"madrid", "barcelona", "valencia"},
	"it": {"milan", "rome", "turin", "bologna"},
	"ch": {"zurich", "geneva", "basel"},
	"at": {"vienna", "graz", "linz"},
	"se": {"stockholm", "gothenburg", "malmo"},
	"us": {"new york", "san francisco", "austin", "chicago", "las vegas"},
}

// CuratedDomains are event-listing domains permitted as Tier C site: filters.
var CuratedDomains = []string{
	"eventbrite.com", "meetup.com", "10times.com", "conferenceindex.org",
	"eventseye.com", "tradefairdates.com", "allconferencealert.com",
}

// deniedTerms is the leak deny-list: internal role and vendor shorthand that
// must never reach an external provider. Checked against every built query.
var deniedTerms = []string{
	"icp-tier1", "vendorlist", "battlecard", "internal-only",
	"salesforce-sync", "compintel",
}
