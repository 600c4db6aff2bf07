package query

// Intent is the request intent driving retrieval and geo strictness.
type Intent string

const (
	// IntentEvent targets a single event in one country.
	IntentEvent Intent = "event"
	// IntentSpeaker targets a speaker appearing in one country.
	IntentSpeaker Intent = "speaker"
	// IntentCompany targets a company presence in one country.
	IntentCompany Intent = "company"
	// IntentTopic targets a topic across countries.
	IntentTopic Intent = "topic"
	// IntentGeneric is the default catch-all intent.
	IntentGeneric Intent = "generic"
)

// IsValid reports whether the intent is a known member.
func (i Intent) IsValid() bool {
	switch i {
	case IntentEvent, IntentSpeaker, IntentCompany, IntentTopic, IntentGeneric:
		return true
	}
	return false
}

// SingleCountry reports whether country precision is a hard contract for this
// intent. Topic and generic requests span countries.
func (i Intent) SingleCountry() bool {
	return i != IntentTopic && i != IntentGeneric
}

func (i Intent) String() string { return string(i) }
