// Package backoff provides the retry policies used when talking to the
// message broker. Failures are retried until the policy gives up or the
// error is marked permanent.
package backoff

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// Policy decides whether and when a failed attempt is retried.
type Policy interface {
	// ShouldRetry determines if a retry should be attempted.
	ShouldRetry(attempt int, err error) (bool, time.Duration)
	// MaxAttempts returns the attempt limit.
	MaxAttempts() int
	// NextDelay calculates the delay before the given attempt is retried.
	NextDelay(attempt int) time.Duration
}

// Exponential grows the delay by a multiplier per attempt, capped at
// MaxInterval, with optional jitter to spread reconnect storms.
type Exponential struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	Attempts        int
	Jitter          bool
}

// NewExponential creates an exponential policy with jitter enabled.
func NewExponential(initial, max time.Duration, multiplier float64, attempts int) *Exponential {
	return &Exponential{
		InitialInterval: initial,
		MaxInterval:     max,
		Multiplier:      multiplier,
		Attempts:        attempts,
		Jitter:          true,
	}
}

// ShouldRetry implements Policy.
func (e *Exponential) ShouldRetry(attempt int, err error) (bool, time.Duration) {
	if attempt >= e.Attempts {
		return false, 0
	}
	if !isRetryable(err) {
		return false, 0
	}
	return true, e.NextDelay(attempt)
}

// MaxAttempts implements Policy.
func (e *Exponential) MaxAttempts() int {
	return e.Attempts
}

// NextDelay implements Policy.
func (e *Exponential) NextDelay(attempt int) time.Duration {
	delay := float64(e.InitialInterval) * math.Pow(e.Multiplier, float64(attempt))
	if delay > float64(e.MaxInterval) {
		delay = float64(e.MaxInterval)
	}
	if e.Jitter {
		// +-15% around the nominal delay
		jitter := rand.Float64() * 0.3 * delay
		delay = delay + jitter - (0.15 * delay)
	}
	return time.Duration(delay)
}

// Fixed waits the same delay between every attempt.
type Fixed struct {
	Delay    time.Duration
	Attempts int
}

// NewFixed creates a fixed delay policy.
func NewFixed(delay time.Duration, attempts int) *Fixed {
	return &Fixed{Delay: delay, Attempts: attempts}
}

// ShouldRetry implements Policy.
func (f *Fixed) ShouldRetry(attempt int, err error) (bool, time.Duration) {
	if attempt >= f.Attempts {
		return false, 0
	}
	if !isRetryable(err) {
		return false, 0
	}
	return true, f.Delay
}

// MaxAttempts implements Policy.
func (f *Fixed) MaxAttempts() int {
	return f.Attempts
}

// NextDelay implements Policy.
func (f *Fixed) NextDelay(attempt int) time.Duration {
	return f.Delay
}

// Default returns the policy broker publishes fall back to.
func Default() Policy {
	return NewExponential(100*time.Millisecond, 10*time.Second, 2.0, 5)
}

// Retry executes fn until it succeeds, the policy gives up, or the context
// is done. The last error is returned when attempts run out.
func Retry(ctx context.Context, policy Policy, fn func() error) error {
	var lastErr error
	for attempt := 0; ; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		shouldRetry, delay := policy.ShouldRetry(attempt, err)
		if !shouldRetry {
			return lastErr
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// PermanentError marks an error that must not be retried.
type PermanentError struct {
	Err error
}

// Error implements the error interface.
func (e *PermanentError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent wraps an error so Retry gives up on it immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	var perm *PermanentError
	return !errors.As(err, &perm)
}
