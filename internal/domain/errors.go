package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals a malformed request (bad shape, unknown country code).
	ErrValidation = errors.New("validation failed")
	// ErrQueryTooLong signals a built query exceeding the provider length cap.
	ErrQueryTooLong = errors.New("query too long")
	// ErrRogueAugmentation signals a built query containing terms outside the reviewed vocabulary.
	ErrRogueAugmentation = errors.New("rogue augmentation")
	// ErrProvider signals a generic discovery provider failure.
	ErrProvider = errors.New("provider error")
	// ErrProviderTimeout signals a discovery provider attempt that hit its deadline.
	ErrProviderTimeout = errors.New("provider timeout")
	// ErrCircuitOpen signals a fast-fail while a provider circuit is open.
	ErrCircuitOpen = errors.New("provider circuit open")
	// ErrCountryMismatch signals candidates outside the requested country on a single-country intent.
	ErrCountryMismatch = errors.New("country mismatch")
)

// CountryMismatchError carries the requested country and the offending document ids.
type CountryMismatchError struct {
	Requested string
	DocIDs    []string
}

func (e *CountryMismatchError) Error() string {
	return fmt.Sprintf("%s: requested %q, %d candidates outside", ErrCountryMismatch.Error(), e.Requested, len(e.DocIDs))
}

func (e *CountryMismatchError) Unwrap() error { return ErrCountryMismatch }

// CircuitOpenError carries the provider whose circuit rejected the call.
type CircuitOpenError struct {
	Provider string
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCircuitOpen.Error(), e.Provider)
}

func (e *CircuitOpenError) Unwrap() error { return ErrCircuitOpen }
