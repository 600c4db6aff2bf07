package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New("dev", "chatty"); err == nil {
		t.Fatal("invalid level accepted")
	}
}

func TestWithContextRoundTrip(t *testing.T) {
	l := zap.NewNop().With(zap.String("request_id", "r-1"))
	ctx := WithContext(context.Background(), l)

	if got := FromContext(ctx); got != l {
		t.Fatal("context logger not returned")
	}
	if got := FromContextOr(ctx, zap.NewNop()); got != l {
		t.Fatal("context logger not preferred over the fallback")
	}
}

func TestFromContextFallbacks(t *testing.T) {
	fallback := zap.NewNop()
	if got := FromContextOr(context.Background(), fallback); got != fallback {
		t.Fatal("fallback logger not returned")
	}
	if FromContext(context.Background()) == nil {
		t.Fatal("bare context returned a nil logger")
	}
}
