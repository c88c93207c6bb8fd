package health

import (
	"context"
	"time"
)

// Pinger is a transport that can check its connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

type transportChecker struct {
	name string
	p    Pinger
	slow time.Duration
}

// NewTransportChecker checks p by pinging it. A ping slower than slow is
// reported as degraded; slow <= 0 disables that.
func NewTransportChecker(name string, p Pinger, slow time.Duration) Checker {
	return &transportChecker{name: name, p: p, slow: slow}
}

func (c *transportChecker) Name() string { return c.name }

func (c *transportChecker) Check(ctx context.Context) Result {
	start := time.Now()
	if err := c.p.Ping(ctx); err != nil {
		return Unhealthy("transport unreachable", err)
	}

	elapsed := time.Since(start)
	details := map[string]any{"latency": elapsed.String()}
	if c.slow > 0 && elapsed > c.slow {
		return Degraded("transport slow").WithDetails(details)
	}
	return Healthy("transport reachable").WithDetails(details)
}
