package kafka

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithRetries_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := withRetries(context.Background(), 5, time.Millisecond, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

// The final failed attempt must return immediately instead of sleeping one
// more backoff delay before giving up.
func TestWithRetries_NoSleepAfterFinalAttempt(t *testing.T) {
	const delay = 100 * time.Millisecond

	calls := 0
	start := time.Now()
	err := withRetries(context.Background(), 3, delay, delay, func() error {
		calls++
		return errors.New("boom")
	})
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	// Two sleeps between three attempts; a third sleep would push past 3x.
	if elapsed >= 3*delay {
		t.Errorf("took %v, want under %v (slept after the final attempt)", elapsed, 3*delay)
	}
}

func TestWithRetries_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := withRetries(ctx, 5, time.Hour, time.Hour, func() error {
		calls++
		cancel()
		return errors.New("boom")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
