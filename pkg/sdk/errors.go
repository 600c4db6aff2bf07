package confradar

import "github.com/confradar/confradar/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation        = domain.ErrValidation
	ErrQueryTooLong      = domain.ErrQueryTooLong
	ErrRogueAugmentation = domain.ErrRogueAugmentation
	ErrCountryMismatch   = domain.ErrCountryMismatch
	ErrCircuitOpen       = domain.ErrCircuitOpen
	ErrProvider          = domain.ErrProvider
	ErrProviderTimeout   = domain.ErrProviderTimeout
)
