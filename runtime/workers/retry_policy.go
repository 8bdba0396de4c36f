package workers

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy decides how long the supervisor waits before restarting a failed worker.
// Delays grow exponentially with random jitter, are capped by MaxInterval,
// and stop after MaxRetries consecutive failures (0 means retry forever).
// A run lasting at least StableAfter resets the sequence.
type RetryPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	Jitter          float64
	MaxRetries      int
	StableAfter     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     30 * time.Second,
		Multiplier:      2,
		Jitter:          0.5,
		MaxRetries:      10,
		StableAfter:     30 * time.Second,
	}
}

// NewBackOff builds a fresh, independent backoff sequence for one worker.
func (p RetryPolicy) NewBackOff() backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialInterval
	exp.MaxInterval = p.MaxInterval
	exp.Multiplier = p.Multiplier
	exp.RandomizationFactor = p.Jitter
	// Only the retry count bounds the sequence
	exp.MaxElapsedTime = 0
	exp.Reset()

	if p.MaxRetries <= 0 {
		return exp
	}
	return backoff.WithMaxRetries(exp, uint64(p.MaxRetries))
}
