package discovery

import (
	"context"
	"errors"
)

type raceResult struct {
	urls []string
	err  error
}

// firstSuccess runs every call concurrently and returns the first successful
// result, cancelling the rest. When all calls fail the errors are joined.
func firstSuccess(ctx context.Context, calls ...func(context.Context) ([]string, error)) ([]string, error) {
	if len(calls) == 0 {
		return nil, errors.New("no calls to race")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan raceResult, len(calls))
	for _, call := range calls {
		call := call
		go func() {
			urls, err := call(ctx)
			results <- raceResult{urls: urls, err: err}
		}()
	}

	errs := make([]error, 0, len(calls))
	for range calls {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case r := <-results:
			if r.err == nil {
				return r.urls, nil
			}
			errs = append(errs, r.err)
		}
	}
	return nil, errors.Join(errs...)
}
