// Package circuitbreaker implements a per-operation circuit breaker registry.
// It protects the sync engine from generating continuous retry traffic against
// a backend that is known to be failing: once an operation accumulates enough
// failures, calls to it are short-circuited for a cool-down window.
//
// The registry is an explicit struct owned by its caller (the sync
// coordinator), never a process-wide singleton, so breaker state is
// deterministic in unit tests and never leaks across sessions.
// No external dependencies - uses only standard library.
package circuitbreaker

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrOpen is returned when the breaker for an operation is open and the call
// is blocked. It is distinct from any transport error so callers can tell
// "we did not even try" apart from "we tried and failed".
var ErrOpen = errors.New("circuit breaker is open")

// Config holds circuit breaker configuration.
type Config struct {
	// FailureThreshold is the failure count at which the breaker opens.
	// Default: 5
	FailureThreshold int

	// ResetTimeout is how long after the last failure the breaker stays
	// open. Once it elapses the entry is discarded and the breaker reports
	// closed again without an explicit reset.
	// Default: 60s
	ResetTimeout time.Duration

	// OnOpen is called when an operation's breaker trips open.
	OnOpen func(operation string, failures int)

	// Now returns the current time. Overridable for tests.
	Now func() time.Time
}

// DefaultConfig returns a Config with the engine's defaults.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		ResetTimeout:     60 * time.Second,
		Now:              time.Now,
	}
}

// Option is a functional option for configuring the registry.
type Option func(*Config)

// WithFailureThreshold sets the failure threshold.
func WithFailureThreshold(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.FailureThreshold = n
		}
	}
}

// WithResetTimeout sets the cool-down window.
func WithResetTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.ResetTimeout = d
		}
	}
}

// WithOnOpen sets the trip callback.
func WithOnOpen(fn func(operation string, failures int)) Option {
	return func(c *Config) {
		c.OnOpen = fn
	}
}

// WithNow overrides the clock. Used by tests to step through the cool-down
// window without sleeping.
func WithNow(now func() time.Time) Option {
	return func(c *Config) {
		if now != nil {
			c.Now = now
		}
	}
}

// entry tracks the failure history of one operation.
type entry struct {
	failureCount    int
	lastFailureTime time.Time
}

// Registry tracks per-operation failure counts and short-circuits calls to
// known-bad operations for a cool-down window.
type Registry struct {
	config Config

	mu      sync.Mutex
	entries map[string]*entry
}

// NewRegistry creates a new breaker registry with the given options.
func NewRegistry(opts ...Option) *Registry {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &Registry{
		config:  config,
		entries: make(map[string]*entry),
	}
}

// RecordFailure increments the failure count for the operation and stamps
// the failure time.
func (r *Registry) RecordFailure(operation string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.entries[operation]
	if e == nil {
		e = &entry{}
		r.entries[operation] = e
	}
	e.failureCount++
	e.lastFailureTime = r.config.Now()

	if e.failureCount == r.config.FailureThreshold && r.config.OnOpen != nil {
		r.config.OnOpen(operation, e.failureCount)
	}
}

// RecordSuccess clears the operation's entry entirely. Full reset, not decay.
func (r *Registry) RecordSuccess(operation string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, operation)
}

// IsOpen reports whether calls to the operation are currently blocked.
// The breaker is open iff the failure count reached the threshold and the
// time since the last failure is still within the reset timeout. An entry
// whose timeout has elapsed is discarded on the spot.
func (r *Registry) IsOpen(operation string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.entries[operation]
	if e == nil || e.failureCount < r.config.FailureThreshold {
		return false
	}
	if r.config.Now().Sub(e.lastFailureTime) >= r.config.ResetTimeout {
		delete(r.entries, operation)
		return false
	}
	return true
}

// Check returns ErrOpen (wrapped with the operation name) if the operation
// is blocked, nil otherwise. Callers invoke Check before spending any retry
// budget on the operation.
func (r *Registry) Check(operation string) error {
	if r.IsOpen(operation) {
		return fmt.Errorf("%s: %w", operation, ErrOpen)
	}
	return nil
}

// Failures returns the current failure count for the operation.
func (r *Registry) Failures(operation string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e := r.entries[operation]; e != nil {
		return e.failureCount
	}
	return 0
}

// Reset clears all entries.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]*entry)
}
