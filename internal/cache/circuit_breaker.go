package cache

import (
	"fmt"
	"sync"
	"time"
)

// CircuitBreaker shields callers from a flapping cache backend. After
// MaxFailures consecutive failures the breaker opens and calls fail fast
// until ResetTimeout has elapsed.
type CircuitBreaker struct {
	maxFailures  int
	resetTimeout time.Duration

	mu          sync.RWMutex
	failures    int
	lastFailure time.Time
	state       string // closed, open, half-open
}

type CircuitBreakerConfig struct {
	MaxFailures  int
	ResetTimeout time.Duration
}

func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		MaxFailures:  5,
		ResetTimeout: 30 * time.Second,
	}
}

func NewCircuitBreaker(config *CircuitBreakerConfig) *CircuitBreaker {
	if config == nil {
		config = DefaultCircuitBreakerConfig()
	}
	return &CircuitBreaker{
		maxFailures:  config.MaxFailures,
		resetTimeout: config.ResetTimeout,
		state:        "closed",
	}
}

func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.RLock()
	state := cb.state
	lastFailure := cb.lastFailure
	cb.mu.RUnlock()

	if state == "open" {
		if time.Since(lastFailure) > cb.resetTimeout {
			cb.mu.Lock()
			cb.state = "half-open"
			cb.failures = 0
			cb.mu.Unlock()
		} else {
			return fmt.Errorf("circuit breaker is open")
		}
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil && err != ErrCacheMiss {
		cb.failures++
		cb.lastFailure = time.Now()
		if cb.failures >= cb.maxFailures {
			cb.state = "open"
		}
		return err
	}

	cb.failures = 0
	cb.state = "closed"
	return err
}

func (cb *CircuitBreaker) GetStats() map[string]interface{} {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	return map[string]interface{}{
		"state":        cb.state,
		"failures":     cb.failures,
		"max_failures": cb.maxFailures,
	}
}
