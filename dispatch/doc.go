// Package dispatch resolves and applies retry strategies to outgoing message
// dispatches.
//
// A dispatch call is classified as immediate (every operation requires
// isolated consistency) or batch (at least one operation does not). Each mode
// has its own slot in two places: process-wide defaults held by Defaults, and
// per-unit-of-work overrides held by a Scope attached to the context.
//
// # Precedence
//
// For every dispatch call the Interceptor resolves exactly one strategy:
//
//	override pipeline > override policy > default pipeline > default policy > none
//
// When a retry policy and a resilience pipeline are configured for the same
// tier the pipeline wins and a warning is logged on every resolution.
//
// # Usage
//
//	retries, err := dispatch.New(
//	    dispatch.WithBatchPolicy(resilience.NewRetry(resilience.RetryConfig{MaxRetries: 1})),
//	    dispatch.WithLogger(logger),
//	)
//	if err != nil {
//	    return err
//	}
//
//	send := retries.Middleware()(transport.Dispatch)
//
//	// Processing one incoming message:
//	ctx = dispatch.BeginIncoming(ctx)
//	_ = dispatch.OverrideImmediatePolicy(ctx, urgentRetry)
//	err = send(ctx, ops)
//
// The package never performs I/O itself and never alters the error returned by
// the wrapped dispatch once the strategy gives up.
package dispatch
