package dispatch

import (
	"context"
	"sync/atomic"

	"github.com/jonwraymond/dispatchops/observe"
)

// DispatchFunc sends one dispatch call to the transport.
type DispatchFunc func(ctx context.Context, ops []Operation) error

// Middleware wraps a DispatchFunc.
type Middleware func(next DispatchFunc) DispatchFunc

// Chain composes middlewares. The first middleware is the outermost.
func Chain(mws ...Middleware) Middleware {
	return func(next DispatchFunc) DispatchFunc {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}

// Interceptor applies the resolved retry strategy to dispatch calls of one mode.
//
// Contract:
//   - Concurrency: safe for concurrent use once its Defaults are frozen.
//   - Context: a missing Scope means no overrides; ctx is handed to the strategy
//     so cancellation stops retries.
//   - Errors: the error of the last attempt is returned unchanged.
type Interceptor struct {
	mode     Mode
	defaults *Defaults
	obs      *observe.Middleware
	endpoint string
}

// NewInterceptor creates an interceptor for mode reading defaults from d.
// A nil obs disables telemetry.
func NewInterceptor(mode Mode, d *Defaults, obs *observe.Middleware) *Interceptor {
	if obs == nil {
		obs = observe.NewMiddleware(nil, nil, nil)
	}
	if d == nil {
		d = NewDefaults()
	}
	return &Interceptor{mode: mode, defaults: d, obs: obs}
}

// Mode returns the dispatch mode handled by the interceptor.
func (i *Interceptor) Mode() Mode {
	return i.mode
}

// Handles reports whether a call with ops is classified as this interceptor's mode.
func (i *Interceptor) Handles(ops []Operation) bool {
	return Classify(ops) == i.mode
}

// Resolve returns the strategy for a dispatch call made with ctx. A detected
// conflict is logged every time Resolve is called.
func (i *Interceptor) Resolve(ctx context.Context) Resolution {
	overridePolicy, overridePipeline := ScopeFromContext(ctx).GetOverride(i.mode)
	defaultPolicy, defaultPipeline := i.defaults.GetDefault(i.mode)

	res := Resolve(i.mode, overridePolicy, overridePipeline, defaultPolicy, defaultPipeline)
	if res.Conflict != nil {
		i.obs.Conflict(ctx, i.meta(res, 0), res.Conflict.Message())
	}
	return res
}

// Execute runs next for ops under the resolved strategy. With no strategy
// configured next is called exactly once.
func (i *Interceptor) Execute(ctx context.Context, ops []Operation, next DispatchFunc) error {
	res := i.Resolve(ctx)

	return i.obs.Observe(ctx, i.meta(res, len(ops)), func(ctx context.Context) (int, error) {
		var attempts atomic.Int64
		err := res.Strategy.Run(ctx, func(ctx context.Context) error {
			attempts.Add(1)
			return next(ctx, ops)
		})
		return int(attempts.Load()), err
	})
}

// Middleware returns the interceptor as a Middleware. Calls of the other
// mode pass straight through to next.
func (i *Interceptor) Middleware() Middleware {
	return func(next DispatchFunc) DispatchFunc {
		return func(ctx context.Context, ops []Operation) error {
			if !i.Handles(ops) {
				return next(ctx, ops)
			}
			return i.Execute(ctx, ops, next)
		}
	}
}

func (i *Interceptor) meta(res Resolution, operations int) observe.DispatchMeta {
	return observe.DispatchMeta{
		Endpoint:   i.endpoint,
		Mode:       i.mode.String(),
		Source:     res.Source.String(),
		Strategy:   res.Strategy.Kind().String(),
		Operations: operations,
	}
}
