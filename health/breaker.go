package health

import (
	"context"

	"github.com/jonwraymond/dispatchops/resilience"
)

type breakerChecker struct {
	name string
	cb   *resilience.CircuitBreaker
}

// NewBreakerChecker reports the state of cb.
func NewBreakerChecker(name string, cb *resilience.CircuitBreaker) Checker {
	return &breakerChecker{name: name, cb: cb}
}

func (c *breakerChecker) Name() string { return c.name }

func (c *breakerChecker) Check(context.Context) Result {
	m := c.cb.Metrics()
	details := map[string]any{
		"state":                m.State.String(),
		"consecutive_failures": m.ConsecutiveFailures,
	}

	switch m.State {
	case resilience.StateOpen:
		return Unhealthy("circuit open", ErrCircuitOpen).WithDetails(details)
	case resilience.StateHalfOpen:
		return Degraded("circuit half-open").WithDetails(details)
	default:
		return Healthy("circuit closed").WithDetails(details)
	}
}
