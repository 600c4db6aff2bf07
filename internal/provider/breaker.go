package provider

import (
	"sync"
	"time"

	"github.com/confradar/confradar/internal/domain"
	"github.com/confradar/confradar/internal/metrics"
)

// BreakerState is the circuit breaker state.
type BreakerState int

const (
	// StateClosed allows calls.
	StateClosed BreakerState = iota
	// StateOpen fails calls fast without touching the network.
	StateOpen
	// StateHalfOpen permits one probe call after the cooldown.
	StateHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// Breaker is a per-provider circuit breaker. State lives on the instance, not
// in package globals, so lifetime is explicit and test-controlled. It is not
// shared across processes; horizontal scaling needs an externalized state
// store behind the same interface shape.
type Breaker struct {
	name          string
	openThreshold int
	halfOpenAfter time.Duration
	now           func() time.Time

	mu                  sync.Mutex
	consecutiveFailures int
	openedAt            time.Time // zero while closed
}

// NewBreaker creates a breaker. Defaults: 5 failures, 30s cooldown.
func NewBreaker(name string, openThreshold int, halfOpenAfter time.Duration) *Breaker {
	if openThreshold <= 0 {
		openThreshold = 5
	}
	if halfOpenAfter <= 0 {
		halfOpenAfter = 30 * time.Second
	}
	return &Breaker{
		name:          name,
		openThreshold: openThreshold,
		halfOpenAfter: halfOpenAfter,
		now:           time.Now,
	}
}

// State returns the current state, accounting for cooldown expiry.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state()
}

func (b *Breaker) state() BreakerState {
	if b.openedAt.IsZero() {
		return StateClosed
	}
	if b.now().Sub(b.openedAt) >= b.halfOpenAfter {
		return StateHalfOpen
	}
	return StateOpen
}

// Allow reports whether a call may proceed. While open it returns a
// CircuitOpenError and the caller must not touch the network.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state() == StateOpen {
		return &domain.CircuitOpenError{Provider: b.name}
	}
	return nil
}

// RecordSuccess resets the breaker to closed.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.openedAt.IsZero() {
		metrics.CircuitStateChanges.WithLabelValues(b.name, "closed").Inc()
	}
	b.consecutiveFailures = 0
	b.openedAt = time.Time{}
}

// RecordFailure counts a failure; at the threshold the circuit opens. A
// failure during half-open re-opens immediately and restarts the cooldown.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state() == StateHalfOpen {
		b.openedAt = b.now()
		metrics.CircuitStateChanges.WithLabelValues(b.name, "open").Inc()
		return
	}

	b.consecutiveFailures++
	if b.openedAt.IsZero() && b.consecutiveFailures >= b.openThreshold {
		b.openedAt = b.now()
		metrics.CircuitStateChanges.WithLabelValues(b.name, "open").Inc()
	}
}
