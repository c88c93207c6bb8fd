// Package resilience provides the resilience strategies applied to message
// dispatches.
//
// Every strategy exposes the same method:
//
//	Execute(ctx context.Context, op func(context.Context) error) error
//
// which makes it usable directly as a dispatch retry policy or as a layer
// of a Pipeline.
//
// # Strategies
//
//   - Retry: bounded retry with exponential, linear or constant backoff.
//     This is the simple retry policy representation.
//
//   - Pipeline: an ordered composition of strategies. This is the resilience
//     pipeline representation.
//
//   - CircuitBreaker: stops dispatching to a failing transport after a
//     threshold of consecutive failures.
//
//   - Timeout: bounds each attempt.
//
//   - Bulkhead: limits concurrent dispatches.
//
//   - RateLimiter: limits the dispatch rate.
//
// # Usage
//
//	policy := resilience.NewRetry(resilience.RetryConfig{
//	    MaxRetries:   2,
//	    InitialDelay: 100 * time.Millisecond,
//	})
//
//	pipeline := resilience.NewPipeline(
//	    resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	        MaxFailures: 5,
//	    })),
//	    resilience.WithRetry(policy),
//	    resilience.WithTimeout(5*time.Second),
//	)
//
//	err := pipeline.Execute(ctx, func(ctx context.Context) error {
//	    return transport.Dispatch(ctx, ops)
//	})
package resilience
