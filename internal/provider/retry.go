package provider

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryConfig configures the per-provider retry loop.
type RetryConfig struct {
	Attempts int           // total attempts including the first
	Base     time.Duration // backoff base
	Timeout  time.Duration // per-attempt deadline
}

// backoffDelay computes the jittered exponential backoff before attempt n
// (1-indexed): base * 1.7^(n-1) * uniform(0.7, 1.3).
func backoffDelay(base time.Duration, attempt int) time.Duration {
	exp := float64(base) * math.Pow(1.7, float64(attempt-1))
	jitter := 0.7 + rand.Float64()*0.6
	return time.Duration(exp * jitter)
}

// retry runs fn up to cfg.Attempts times, each bounded by cfg.Timeout,
// sleeping the jittered backoff between attempts. It stops early when the
// parent context is done. fn sees the attempt-scoped context.
func retry[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		attemptCtx := ctx
		var cancel context.CancelFunc
		if cfg.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		}

		result, err := fn(attemptCtx)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if attempt < attempts {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoffDelay(cfg.Base, attempt)):
			}
		}
	}
	return zero, lastErr
}
