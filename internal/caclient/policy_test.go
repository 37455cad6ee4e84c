package caclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRetryPolicyValidation(t *testing.T) {
	tests := []struct {
		name          string
		maxAttempts   int
		initialDelay  time.Duration
		maxDelay      time.Duration
		backoffFactor float64
		wantErr       bool
	}{
		{"valid", 3, time.Second, 30 * time.Second, 2.0, false},
		{"single attempt", 1, time.Millisecond, time.Millisecond, 1.5, false},
		{"zero attempts", 0, time.Second, 30 * time.Second, 2.0, true},
		{"negative attempts", -1, time.Second, 30 * time.Second, 2.0, true},
		{"zero initial delay", 3, 0, 30 * time.Second, 2.0, true},
		{"negative initial delay", 3, -time.Second, 30 * time.Second, 2.0, true},
		{"max below initial", 3, time.Second, 500 * time.Millisecond, 2.0, true},
		{"factor of one", 3, time.Second, 30 * time.Second, 1.0, true},
		{"factor below one", 3, time.Second, 30 * time.Second, 0.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRetryPolicy(tt.maxAttempts, tt.initialDelay, tt.maxDelay, tt.backoffFactor)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestRetryPolicyDelay(t *testing.T) {
	policy, err := NewRetryPolicy(10, time.Second, 10*time.Second, 2.0)
	require.NoError(t, err)

	assert.Equal(t, time.Second, policy.Delay(0))
	assert.Equal(t, 2*time.Second, policy.Delay(1))
	assert.Equal(t, 4*time.Second, policy.Delay(2))
	assert.Equal(t, 8*time.Second, policy.Delay(3))
	assert.Equal(t, 10*time.Second, policy.Delay(4))
	assert.Equal(t, 10*time.Second, policy.Delay(5))
	assert.Equal(t, 10*time.Second, policy.Delay(100))
}

func TestRetryPolicyDelayNonDecreasing(t *testing.T) {
	policy, err := NewRetryPolicy(5, 250*time.Millisecond, 7*time.Second, 1.7)
	require.NoError(t, err)

	previous := time.Duration(0)
	for attempt := 0; attempt < 50; attempt++ {
		delay := policy.Delay(attempt)
		assert.GreaterOrEqual(t, delay, previous)
		assert.LessOrEqual(t, delay, policy.MaxDelay)
		previous = delay
	}
}

func TestRetryPolicyBackoffFuncMatchesDelay(t *testing.T) {
	policy, err := NewRetryPolicy(10, time.Second, 10*time.Second, 2.0)
	require.NoError(t, err)

	backoff := policy.backoffFunc()
	delay := policy.InitialDelay
	for attempt := 1; attempt <= 8; attempt++ {
		delay = backoff(delay, attempt)
		assert.Equal(t, policy.Delay(attempt-1), delay, "attempt %d", attempt)
	}
}
