package caclient

import (
	"fmt"
	"math"
	"time"
)

type RetryPolicy struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

func NewRetryPolicy(maxAttempts int, initialDelay, maxDelay time.Duration, backoffFactor float64) (RetryPolicy, error) {
	policy := RetryPolicy{
		MaxAttempts:   maxAttempts,
		InitialDelay:  initialDelay,
		MaxDelay:      maxDelay,
		BackoffFactor: backoffFactor,
	}

	if maxAttempts < 1 {
		return RetryPolicy{}, fmt.Errorf("max attempts must be at least 1, got %d", maxAttempts)
	}
	if initialDelay <= 0 {
		return RetryPolicy{}, fmt.Errorf("initial delay must be positive, got %s", initialDelay)
	}
	if maxDelay < initialDelay {
		return RetryPolicy{}, fmt.Errorf("max delay %s must not be below initial delay %s", maxDelay, initialDelay)
	}
	if backoffFactor <= 1.0 {
		return RetryPolicy{}, fmt.Errorf("backoff factor must be greater than 1.0, got %g", backoffFactor)
	}

	return policy, nil
}

// Delay returns min(initial * factor^attempt, max) for the zero-indexed attempt.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	delay := float64(p.InitialDelay) * math.Pow(p.BackoffFactor, float64(attempt))
	if delay > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(delay)
}

// juju/retry calls this before every sleep with the previous delay and
// the one-indexed attempt; the first sleep keeps the initial delay
func (p RetryPolicy) backoffFunc() func(time.Duration, int) time.Duration {
	return func(delay time.Duration, attempt int) time.Duration {
		if attempt == 1 {
			return delay
		}
		next := time.Duration(float64(delay) * p.BackoffFactor)
		if next > p.MaxDelay {
			return p.MaxDelay
		}
		return next
	}
}
