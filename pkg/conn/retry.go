package conn

import "time"

// Policy computes the backoff delay between reconnection attempts.
// The delay grows linearly with the attempt number and is capped; past
// MaxAttempts no further reconnection is attempted.
type Policy struct {
	// Step is the per-attempt delay increment.
	Step time.Duration

	// Max caps the computed delay.
	Max time.Duration

	// MaxAttempts is the reconnection budget. Attempts beyond it abort.
	MaxAttempts int
}

// DefaultPolicy returns the standard reconnection policy:
// 50ms, 100ms, 150ms, ... capped at 2s, five attempts.
func DefaultPolicy() Policy {
	return Policy{
		Step:        50 * time.Millisecond,
		Max:         2 * time.Second,
		MaxAttempts: 5,
	}
}

// Delay returns the backoff delay for the given 1-based attempt and whether
// the attempt is within budget. When the second return is false the caller
// must stop reconnecting.
func (p Policy) Delay(attempt int) (time.Duration, bool) {
	if attempt < 1 || attempt > p.MaxAttempts {
		return 0, false
	}

	delay := time.Duration(attempt) * p.Step
	if delay > p.Max {
		delay = p.Max
	}
	return delay, true
}
