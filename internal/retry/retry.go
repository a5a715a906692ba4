package retry

import (
	"errors"
	"fmt"
	"time"
)

// Policy handles retry logic with exponential backoff. 429 and 5xx class
// failures are retriable; callers mark everything else Permanent so a bad
// request is abandoned after one attempt instead of burning the budget.
type Policy struct {
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
}

// NewPolicy creates a retry policy. Delay doubles per attempt and is capped
// at maxDelay.
func NewPolicy(maxAttempts int, initialDelay, maxDelay time.Duration) *Policy {
	return &Policy{
		maxAttempts:  maxAttempts,
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
	}
}

// DefaultPolicy matches the provider rate-limit guidance: up to 4 attempts,
// 250ms doubling to a 4s cap.
func DefaultPolicy() *Policy {
	return NewPolicy(4, 250*time.Millisecond, 4*time.Second)
}

// PermanentError wraps an error that must not be retried (4xx other than
// 429, malformed payloads).
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent marks err as non-retriable.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// Execute runs fn, retrying retriable failures with exponential backoff.
// A PermanentError stops immediately and is returned unwrapped.
func (p *Policy) Execute(fn func() error) error {
	var lastErr error
	delay := p.initialDelay

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		var perm *PermanentError
		if errors.As(err, &perm) {
			return perm.Err
		}

		lastErr = err

		if attempt < p.maxAttempts {
			time.Sleep(delay)
			delay *= 2
			if delay > p.maxDelay {
				delay = p.maxDelay
			}
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", p.maxAttempts, lastErr)
}
