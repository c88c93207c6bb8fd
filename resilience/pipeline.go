package resilience

import (
	"context"
	"time"
)

// Strategy is one layer of a Pipeline.
type Strategy interface {
	Execute(ctx context.Context, op func(context.Context) error) error
}

// StrategyFunc adapts a function to the Strategy interface.
type StrategyFunc func(ctx context.Context, op func(context.Context) error) error

// Execute calls f(ctx, op).
func (f StrategyFunc) Execute(ctx context.Context, op func(context.Context) error) error {
	return f(ctx, op)
}

// Pipeline composes strategies in the order they were added: the first
// strategy is the outermost and sees every attempt of the ones after it.
//
//	NewPipeline(WithCircuitBreaker(cb), WithRetry(r), WithTimeout(d))
//
// runs circuit breaker -> retry -> timeout -> op, so each retry gets its
// own deadline and the whole retry loop counts as one breaker call.
type Pipeline struct {
	strategies []Strategy
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// NewPipeline creates a new resilience pipeline.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithStrategy appends a custom strategy. Nil strategies are ignored.
func WithStrategy(s Strategy) PipelineOption {
	return func(p *Pipeline) {
		if s != nil {
			p.strategies = append(p.strategies, s)
		}
	}
}

// WithCircuitBreaker appends a circuit breaker.
func WithCircuitBreaker(cb *CircuitBreaker) PipelineOption {
	return func(p *Pipeline) {
		if cb != nil {
			p.strategies = append(p.strategies, cb)
		}
	}
}

// WithRetry appends retry logic.
func WithRetry(r *Retry) PipelineOption {
	return func(p *Pipeline) {
		if r != nil {
			p.strategies = append(p.strategies, r)
		}
	}
}

// WithRateLimiter appends rate limiting.
func WithRateLimiter(rl *RateLimiter) PipelineOption {
	return func(p *Pipeline) {
		if rl != nil {
			p.strategies = append(p.strategies, rl)
		}
	}
}

// WithBulkhead appends bulkhead isolation.
func WithBulkhead(b *Bulkhead) PipelineOption {
	return func(p *Pipeline) {
		if b != nil {
			p.strategies = append(p.strategies, b)
		}
	}
}

// WithTimeout appends a per-call timeout.
func WithTimeout(timeout time.Duration) PipelineOption {
	return WithTimeoutConfig(NewTimeout(TimeoutConfig{Timeout: timeout}))
}

// WithTimeoutConfig appends a timeout with custom config.
func WithTimeoutConfig(t *Timeout) PipelineOption {
	return func(p *Pipeline) {
		if t != nil {
			p.strategies = append(p.strategies, t)
		}
	}
}

// Execute runs the operation through every strategy of the pipeline.
// An empty pipeline runs op once.
func (p *Pipeline) Execute(ctx context.Context, op func(context.Context) error) error {
	execute := op

	// Build the chain from the inside out.
	for i := len(p.strategies) - 1; i >= 0; i-- {
		s, inner := p.strategies[i], execute
		execute = func(ctx context.Context) error {
			return s.Execute(ctx, inner)
		}
	}

	return execute(ctx)
}

// Len returns the number of strategies in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.strategies)
}
