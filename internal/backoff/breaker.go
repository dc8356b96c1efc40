package backoff

import (
	"fmt"
	"sync"
	"time"
)

// BreakerState is the circuit state of a Breaker.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

// String returns the state name.
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerOpenError is returned by Execute when the circuit rejects a call.
type BreakerOpenError struct {
	Failures    int
	Threshold   int
	LastFailure time.Time
	NextProbe   time.Time
}

func (e *BreakerOpenError) Error() string {
	return fmt.Sprintf("circuit open: call blocked (failures=%d/%d, next probe in %v)",
		e.Failures, e.Threshold, time.Until(e.NextProbe).Round(time.Second))
}

// Breaker guards a failing dependency: after enough consecutive failures
// calls are rejected outright until a cooldown expires, then a limited
// number of probe calls decide whether the dependency has recovered. All
// methods are safe for concurrent use.
type Breaker struct {
	mu          sync.Mutex
	state       BreakerState
	failures    int
	successes   int
	probes      int
	lastFailure time.Time

	failureThreshold int
	successThreshold int
	cooldown         time.Duration
	probeLimit       int
	onChange         func(from, to BreakerState, reason string)
}

// BreakerOption configures a Breaker.
type BreakerOption func(*Breaker)

// WithFailureThreshold sets how many consecutive failures open the circuit.
func WithFailureThreshold(n int) BreakerOption {
	return func(b *Breaker) {
		b.failureThreshold = n
	}
}

// WithSuccessThreshold sets how many probe successes close the circuit again.
func WithSuccessThreshold(n int) BreakerOption {
	return func(b *Breaker) {
		b.successThreshold = n
	}
}

// WithCooldown sets how long the circuit stays open before probing.
func WithCooldown(d time.Duration) BreakerOption {
	return func(b *Breaker) {
		b.cooldown = d
	}
}

// WithProbeLimit caps the calls let through while half-open.
func WithProbeLimit(n int) BreakerOption {
	return func(b *Breaker) {
		b.probeLimit = n
	}
}

// WithStateChange installs a transition callback. It runs on its own
// goroutine so it may call back into the breaker.
func WithStateChange(fn func(from, to BreakerState, reason string)) BreakerOption {
	return func(b *Breaker) {
		b.onChange = fn
	}
}

// NewBreaker creates a closed breaker.
func NewBreaker(opts ...BreakerOption) *Breaker {
	b := &Breaker{
		failureThreshold: 5,
		successThreshold: 2,
		cooldown:         15 * time.Second,
		probeLimit:       2,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Execute runs fn under circuit protection. When the circuit is open the
// call is rejected with a BreakerOpenError and fn never runs.
func (b *Breaker) Execute(fn func() error) error {
	if err := b.allow(); err != nil {
		return err
	}
	err := fn()
	b.record(err)
	return err
}

// State returns the current circuit state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset force-closes the circuit and clears all counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.transition(b.state, BreakerClosed, "reset")
	b.state = BreakerClosed
	b.failures = 0
	b.successes = 0
	b.probes = 0
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		return nil

	case BreakerOpen:
		retryAt := b.lastFailure.Add(b.cooldown)
		if time.Now().After(retryAt) {
			b.transition(b.state, BreakerHalfOpen, "cooldown expired")
			b.state = BreakerHalfOpen
			b.probes = 0
			b.successes = 0
			return nil
		}
		return &BreakerOpenError{
			Failures:    b.failures,
			Threshold:   b.failureThreshold,
			LastFailure: b.lastFailure,
			NextProbe:   retryAt,
		}

	default:
		if b.probes >= b.probeLimit {
			return &BreakerOpenError{
				Failures:    b.failures,
				Threshold:   b.failureThreshold,
				LastFailure: b.lastFailure,
				NextProbe:   time.Now().Add(time.Second),
			}
		}
		b.probes++
		return nil
	}
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.failures++
		b.lastFailure = time.Now()

		switch b.state {
		case BreakerClosed:
			if b.failures >= b.failureThreshold {
				b.transition(b.state, BreakerOpen,
					fmt.Sprintf("failure threshold reached (%d/%d)", b.failures, b.failureThreshold))
				b.state = BreakerOpen
			}
		case BreakerHalfOpen:
			// One failed probe reopens the circuit.
			b.transition(b.state, BreakerOpen, "probe failed")
			b.state = BreakerOpen
			b.probes = 0
		}
		if b.state != BreakerClosed {
			b.successes = 0
		}
		return
	}

	b.successes++
	switch b.state {
	case BreakerHalfOpen:
		if b.successes >= b.successThreshold {
			b.transition(b.state, BreakerClosed,
				fmt.Sprintf("probe threshold reached (%d/%d)", b.successes, b.successThreshold))
			b.state = BreakerClosed
			b.failures = 0
			b.probes = 0
		}
	case BreakerClosed:
		b.failures = 0
	}
}

// transition fires the change callback; callers hold b.mu.
func (b *Breaker) transition(from, to BreakerState, reason string) {
	if b.onChange != nil && from != to {
		go b.onChange(from, to, reason)
	}
}
