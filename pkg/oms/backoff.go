package oms

import (
	"time"

	"github.com/cenkalti/backoff"
)

// linearBackOff waits attempt * step between attempts: step, 2*step, ...
type linearBackOff struct {
	step    time.Duration
	attempt int64
}

func newLinearBackOff(step time.Duration) *linearBackOff {
	return &linearBackOff{step: step}
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt) * b.step
}

func (b *linearBackOff) Reset() {
	b.attempt = 0
}

// retryPolicy allows maxAttempts calls of the operation in total.
func retryPolicy(step time.Duration, maxAttempts int) backoff.BackOff {
	if maxAttempts <= 1 {
		return &backoff.StopBackOff{}
	}
	return backoff.WithMaxRetries(newLinearBackOff(step), uint64(maxAttempts-1))
}
