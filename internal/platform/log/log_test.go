package log

import (
	"context"
	"testing"
)

func TestWithContextRoundTrip(t *testing.T) {
	t.Parallel()

	l := New(Config{Level: "info"}).With("component", "test")
	ctx := WithContext(context.Background(), l)

	got := FromContext(ctx)
	if got == nil {
		t.Fatal("FromContext returned nil")
	}
	// should not panic and should be usable
	got.Info(ctx, "hello", "k", "v")
}

func TestFromContextDefaultsToNop(t *testing.T) {
	t.Parallel()

	got := FromContext(context.Background())
	if got == nil {
		t.Fatal("expected a non-nil default logger")
	}
	got.Info(context.Background(), "should not panic")
}

func TestNopDoesNotPanic(t *testing.T) {
	t.Parallel()

	l := Nop()
	ctx := context.Background()
	l.Info(ctx, "msg")
	l.Warn(ctx, "msg")
	l.Error(ctx, nil, "msg")
	_ = l.With("k", "v")
}
