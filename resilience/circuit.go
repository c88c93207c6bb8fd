package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means the circuit is operating normally.
	StateClosed State = iota
	// StateOpen means the circuit is blocking all requests.
	StateOpen
	// StateHalfOpen means the circuit is testing if the transport recovered.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

func stateOf(s gobreaker.State) State {
	switch s {
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateClosed
	}
}

// CircuitBreakerConfig configures the circuit breaker.
type CircuitBreakerConfig struct {
	// Name identifies the breaker in state change notifications.
	// Default: "dispatch"
	Name string

	// MaxFailures is the number of consecutive failures before opening the circuit.
	// Default: 5
	MaxFailures int

	// ResetTimeout is how long the circuit stays open before probing.
	// Default: 30 seconds
	ResetTimeout time.Duration

	// HalfOpenMaxRequests is the max requests allowed in half-open state.
	// Default: 1
	HalfOpenMaxRequests int

	// Interval clears the failure counts periodically while closed.
	// Default: 0 (never)
	Interval time.Duration

	// OnStateChange is called when the circuit state changes. It runs while
	// the breaker holds its lock and must not call back into the breaker.
	OnStateChange func(from, to State)

	// IsFailure determines if an error should count as a failure.
	// Default: all non-nil errors are failures.
	IsFailure func(err error) bool
}

// CircuitBreaker implements the circuit breaker pattern on top of
// github.com/sony/gobreaker.
type CircuitBreaker struct {
	config   CircuitBreakerConfig
	settings gobreaker.Settings

	mu      sync.RWMutex
	breaker *gobreaker.CircuitBreaker
}

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.Name == "" {
		config.Name = "dispatch"
	}
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.HalfOpenMaxRequests <= 0 {
		config.HalfOpenMaxRequests = 1
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}

	maxFailures := uint32(config.MaxFailures) // #nosec G115 -- bounded by config validation
	isFailure := config.IsFailure

	settings := gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: uint32(config.HalfOpenMaxRequests), // #nosec G115 -- positive after defaults
		Interval:    config.Interval,
		Timeout:     config.ResetTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return !isFailure(err)
		},
	}
	if onChange := config.OnStateChange; onChange != nil {
		settings.OnStateChange = func(_ string, from, to gobreaker.State) {
			onChange(stateOf(from), stateOf(to))
		}
	}

	return &CircuitBreaker{
		config:   config,
		settings: settings,
		breaker:  gobreaker.NewCircuitBreaker(settings),
	}
}

// Execute runs the operation through the circuit breaker.
// Rejections are reported as ErrCircuitOpen; errors from op are returned
// unchanged.
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := cb.current().Execute(func() (any, error) {
		return nil, op(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrCircuitOpen
	}
	return err
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() State {
	return stateOf(cb.current().State())
}

// Reset returns the circuit breaker to the closed state with cleared counts.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	old := stateOf(cb.breaker.State())
	cb.breaker = gobreaker.NewCircuitBreaker(cb.settings)
	cb.mu.Unlock()

	if old != StateClosed && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(old, StateClosed)
	}
}

// Config returns the circuit breaker configuration.
func (cb *CircuitBreaker) Config() CircuitBreakerConfig {
	return cb.config
}

// Metrics returns current circuit breaker metrics.
func (cb *CircuitBreaker) Metrics() CircuitBreakerMetrics {
	b := cb.current()
	state := stateOf(b.State())
	counts := b.Counts()

	return CircuitBreakerMetrics{
		State:               state,
		Requests:            int(counts.Requests),
		ConsecutiveFailures: int(counts.ConsecutiveFailures),
		Failures:            int(counts.TotalFailures),
		Successes:           int(counts.TotalSuccesses),
	}
}

func (cb *CircuitBreaker) current() *gobreaker.CircuitBreaker {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.breaker
}

// CircuitBreakerMetrics contains circuit breaker statistics for the
// current generation (counts reset on every state change).
type CircuitBreakerMetrics struct {
	State               State
	Requests            int
	ConsecutiveFailures int
	Failures            int
	Successes           int
}
