package cache

import (
	"sync"
	"time"
)

type (
	// CircuitBreaker guards calls to one downstream target. Each client
	// wrapper owns its own instance, so independent targets never share
	// failure counters.
	CircuitBreaker struct {
		mu              sync.RWMutex
		failureCount    int
		successCount    int
		lastFailureTime time.Time
		state           State
		// probing marks a half-open probe whose outcome is still pending;
		// further callers are short-circuited until it resolves
		probing        bool
		maxFailures    int
		timeout        time.Duration
		resetThreshold int
	}

	State int
)

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// NewCircuitBreaker creates a breaker that opens after maxFailures consecutive
// failures and allows a probe after the timeout cooldown
func NewCircuitBreaker(maxFailures int, timeout time.Duration, resetThreshold int) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures:    maxFailures,
		timeout:        timeout,
		resetThreshold: resetThreshold,
		state:          StateClosed,
	}
}

// CanExecute reports whether a call may pass through right now. After the
// cooldown the first caller moves the breaker to half-open and becomes the
// single probe; everyone else stays short-circuited until OnSuccess or
// OnFailure resolves it.
func (cb *CircuitBreaker) CanExecute() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Since(cb.lastFailureTime) >= cb.timeout {
			cb.state = StateHalfOpen
			cb.successCount = 0
			cb.probing = true
			return true
		}
		return false
	case StateHalfOpen:
		if cb.probing {
			return false
		}
		cb.probing = true
		return true
	default:
		return false
	}
}

func (cb *CircuitBreaker) OnSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.successCount++

	switch cb.state {
	case StateClosed:
		cb.failureCount = 0
	case StateHalfOpen:
		cb.probing = false
		if cb.successCount >= cb.resetThreshold {
			cb.reset()
		}
	case StateOpen:
		cb.state = StateHalfOpen
		cb.successCount = 1
	}
}

func (cb *CircuitBreaker) OnFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	cb.lastFailureTime = time.Now()

	switch cb.state {
	case StateClosed:
		if cb.failureCount >= cb.maxFailures {
			cb.state = StateOpen
		}
	case StateHalfOpen:
		cb.state = StateOpen
		cb.successCount = 0
		cb.probing = false
	}
}

func (cb *CircuitBreaker) GetState() State {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

func (cb *CircuitBreaker) reset() {
	cb.failureCount = 0
	cb.successCount = 0
	cb.probing = false
	cb.state = StateClosed
}

// IsOpen reports whether calls are currently short-circuited. Unlike
// CanExecute it never admits a probe.
func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state == StateOpen && time.Since(cb.lastFailureTime) < cb.timeout
}
