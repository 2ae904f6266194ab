package resilience

import (
	"sync"
	"time"
)

// State is the circuit breaker's position in its lifecycle.
type State string

const (
	// StateClosed passes all traffic through.
	StateClosed State = "closed"
	// StateOpen rejects traffic until the cooldown elapses.
	StateOpen State = "open"
	// StateHalfOpen lets trial calls through to probe for recovery.
	StateHalfOpen State = "half-open"
)

// CircuitBreaker stops invoking a failing dependency for a cooldown period
// after repeated failures. One instance guards one resource and lives for
// the process lifetime.
//
// Transitions: closed→open when the failure threshold is reached,
// open→half-open once the cooldown elapses (observed lazily through
// [CircuitBreaker.IsAvailable]), half-open→closed on the first success,
// half-open→open on any failure. All state is mutex-protected, so a single
// breaker may be shared across goroutines.
type CircuitBreaker struct {
	failureThreshold int
	timeout          time.Duration

	mu              sync.Mutex
	failureCount    int
	lastFailureTime time.Time
	state           State

	now func() time.Time
}

// NewCircuitBreaker returns a closed breaker that opens after
// failureThreshold consecutive failures and stays open for timeout.
func NewCircuitBreaker(failureThreshold int, timeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		timeout:          timeout,
		state:            StateClosed,
		now:              time.Now,
	}
}

// IsAvailable reports whether the guarded resource may be called.
// When the breaker is open and the cooldown has elapsed it transitions to
// half-open as a side effect and returns true, admitting trial traffic.
// Half-open does not enforce single-flight: concurrent callers may all
// proceed; the first recorded outcome decides the next state.
func (b *CircuitBreaker) IsAvailable() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if !b.lastFailureTime.IsZero() && b.now().Sub(b.lastFailureTime) > b.timeout {
			b.state = StateHalfOpen
			return true
		}
		return false
	default: // closed or half-open
		return true
	}
}

// RecordSuccess closes the breaker and resets the failure count.
// Valid from any state; a single success in half-open closes immediately.
func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount = 0
	b.state = StateClosed
	b.lastFailureTime = time.Time{}
}

// RecordFailure counts a failed call and opens the breaker once the
// threshold is reached. In half-open a single failure reopens the circuit.
func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount++
	b.lastFailureTime = b.now()
	if b.failureCount >= b.failureThreshold {
		b.state = StateOpen
	}
}

// State returns the breaker's current state.
func (b *CircuitBreaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// FailureCount returns the current consecutive failure count.
func (b *CircuitBreaker) FailureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failureCount
}

// FailureThreshold returns the configured failure threshold.
func (b *CircuitBreaker) FailureThreshold() int {
	return b.failureThreshold
}

// Timeout returns the configured open-state cooldown.
func (b *CircuitBreaker) Timeout() time.Duration {
	return b.timeout
}
