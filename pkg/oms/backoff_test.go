package oms

import (
	"testing"
	"time"

	"github.com/cenkalti/backoff"
)

func TestLinearBackOff(t *testing.T) {
	b := newLinearBackOff(100 * time.Millisecond)
	for i, want := range []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond} {
		if got := b.NextBackOff(); got != want {
			t.Fatalf("step %d: got %v, want %v", i, got, want)
		}
	}
	b.Reset()
	if got := b.NextBackOff(); got != 100*time.Millisecond {
		t.Fatalf("after reset: got %v", got)
	}
}

func TestRetryPolicyAttempts(t *testing.T) {
	for _, maxAttempts := range []int{1, 2, 5} {
		calls := 0
		_ = backoff.Retry(func() error {
			calls++
			return errMatcherDown
		}, retryPolicy(0, maxAttempts))
		if calls != maxAttempts {
			t.Fatalf("maxAttempts %d: operation ran %d times", maxAttempts, calls)
		}
	}
}
