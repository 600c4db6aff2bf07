package discovery

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestFirstSuccessPicksWinner(t *testing.T) {
	urls, err := firstSuccess(context.Background(),
		func(ctx context.Context) ([]string, error) {
			select {
			case <-time.After(time.Second):
				return []string{"slow"}, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
		func(context.Context) ([]string, error) {
			return []string{"fast"}, nil
		},
	)
	if err != nil {
		t.Fatalf("firstSuccess: %v", err)
	}
	if len(urls) != 1 || urls[0] != "fast" {
		t.Fatalf("urls = %v, want [fast]", urls)
	}
}

func TestFirstSuccessCancelsLosers(t *testing.T) {
	var cancelled atomic.Bool
	done := make(chan struct{})

	_, err := firstSuccess(context.Background(),
		func(ctx context.Context) ([]string, error) {
			defer close(done)
			<-ctx.Done()
			cancelled.Store(true)
			return nil, ctx.Err()
		},
		func(context.Context) ([]string, error) {
			return []string{"winner"}, nil
		},
	)
	if err != nil {
		t.Fatalf("firstSuccess: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loser was not cancelled")
	}
	if !cancelled.Load() {
		t.Fatal("loser context never fired")
	}
}

func TestFirstSuccessSkipsFailures(t *testing.T) {
	urls, err := firstSuccess(context.Background(),
		func(context.Context) ([]string, error) {
			return nil, errors.New("down")
		},
		func(context.Context) ([]string, error) {
			return []string{"ok"}, nil
		},
	)
	if err != nil {
		t.Fatalf("firstSuccess: %v", err)
	}
	if len(urls) != 1 || urls[0] != "ok" {
		t.Fatalf("urls = %v", urls)
	}
}

func TestFirstSuccessAllFail(t *testing.T) {
	sentinel := errors.New("everything down")
	_, err := firstSuccess(context.Background(),
		func(context.Context) ([]string, error) { return nil, sentinel },
		func(context.Context) ([]string, error) { return nil, errors.New("other") },
	)
	if err == nil {
		t.Fatal("expected error when all calls fail")
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("joined error lost cause: %v", err)
	}
}

func TestFirstSuccessParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := firstSuccess(ctx, func(ctx context.Context) ([]string, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
