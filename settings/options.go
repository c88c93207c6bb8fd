package settings

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/dispatchops/dispatch"
	"github.com/jonwraymond/dispatchops/observe"
	"github.com/jonwraymond/dispatchops/resilience"
)

var backoffStrategies = map[string]resilience.BackoffStrategy{
	"":            resilience.BackoffExponential,
	"exponential": resilience.BackoffExponential,
	"linear":      resilience.BackoffLinear,
	"constant":    resilience.BackoffConstant,
}

// Options converts the settings into dispatch options. Defaults are applied
// before per-mode sections so a mode section replaces the default for that
// mode. Retries and circuit state changes are logged through logger, which
// may be nil.
func (f *File) Options(logger observe.Logger) ([]dispatch.Option, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = observe.NopLogger()
	}

	var opts []dispatch.Option
	if f.Endpoint != "" {
		opts = append(opts, dispatch.WithEndpointName(f.Endpoint))
	}
	opts = append(opts, dispatch.WithLogger(logger))

	if p := f.Defaults.Policy; p != nil {
		opts = append(opts, dispatch.WithDefaultPolicy(p.build(logger, "defaults")))
	}
	if p := f.Defaults.Pipeline; p != nil {
		opts = append(opts, dispatch.WithDefaultPipeline(p.build(logger, "defaults")))
	}

	for _, mode := range dispatch.Modes {
		sec := f.section(mode)
		if p := sec.Policy; p != nil {
			opts = append(opts, dispatch.WithDefault(mode, dispatch.RepresentationPolicy, p.build(logger, mode.String())))
		}
		if p := sec.Pipeline; p != nil {
			opts = append(opts, dispatch.WithDefault(mode, dispatch.RepresentationPipeline, p.build(logger, mode.String())))
		}
	}

	return opts, nil
}

// Build creates the observer described by the observe section and the
// dispatch retry configuration wired to it. The observer is nil when the
// section is absent; otherwise the caller shuts it down.
func (f *File) Build(ctx context.Context) (*dispatch.Retries, observe.Observer, error) {
	var (
		obs    observe.Observer
		logger observe.Logger
		opts   []dispatch.Option
	)
	if f.Observe != nil {
		o, err := observe.NewObserver(ctx, *f.Observe)
		if err != nil {
			return nil, nil, fmt.Errorf("settings: observer: %w", err)
		}
		obs, logger = o, o.Logger()
		opts = append(opts, dispatch.WithObserver(o))
	}

	r, err := f.retries(logger, opts)
	if err != nil {
		if obs != nil {
			_ = obs.Shutdown(ctx)
		}
		return nil, nil, err
	}
	return r, obs, nil
}

func (f *File) retries(logger observe.Logger, opts []dispatch.Option) (*dispatch.Retries, error) {
	fileOpts, err := f.Options(logger)
	if err != nil {
		return nil, err
	}
	return dispatch.New(append(opts, fileOpts...)...)
}

func (f *File) section(mode dispatch.Mode) Section {
	if mode == dispatch.ModeImmediate {
		return f.Immediate
	}
	return f.Batch
}

func (r *Retry) config(logger observe.Logger, scope string) resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxRetries:   r.maxRetries(),
		InitialDelay: r.InitialDelay,
		MaxDelay:     r.MaxDelay,
		Multiplier:   r.Multiplier,
		Strategy:     backoffStrategies[r.Backoff],
		Jitter:       r.Jitter,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			logger.Warn(context.Background(), "dispatch retry",
				observe.Field{Key: "dispatch.scope", Value: scope},
				observe.Field{Key: "attempt", Value: attempt},
				observe.Field{Key: "delay_ms", Value: delay.Milliseconds()},
				observe.Field{Key: "error", Value: err.Error()},
			)
		},
	}
}

// maxRetries returns 0 when unset, which resilience.NewRetry replaces with
// its default budget.
func (r *Retry) maxRetries() int {
	if r.MaxRetries == nil {
		return 0
	}
	return *r.MaxRetries
}

func (r *Retry) build(logger observe.Logger, scope string) *resilience.Retry {
	return resilience.NewRetry(r.config(logger, scope))
}

func (p *Pipeline) build(logger observe.Logger, scope string) *resilience.Pipeline {
	var opts []resilience.PipelineOption

	if rl := p.RateLimit; rl != nil {
		opts = append(opts, resilience.WithRateLimiter(resilience.NewRateLimiter(resilience.RateLimiterConfig{
			Rate:        rl.Rate,
			Burst:       rl.Burst,
			WaitOnLimit: rl.WaitOnLimit,
			MaxWait:     rl.MaxWait,
		})))
	}
	if b := p.Bulkhead; b != nil {
		opts = append(opts, resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{
			MaxConcurrent: b.MaxConcurrent,
			MaxWait:       b.MaxWait,
		})))
	}
	if cb := p.CircuitBreaker; cb != nil {
		opts = append(opts, resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:                scope,
			MaxFailures:         cb.MaxFailures,
			ResetTimeout:        cb.ResetTimeout,
			HalfOpenMaxRequests: cb.HalfOpenMaxRequests,
			Interval:            cb.Interval,
			OnStateChange: func(from, to resilience.State) {
				logger.Warn(context.Background(), "dispatch circuit state changed",
					observe.Field{Key: "dispatch.scope", Value: scope},
					observe.Field{Key: "from", Value: from.String()},
					observe.Field{Key: "to", Value: to.String()},
				)
			},
		})))
	}
	if p.Retry != nil {
		opts = append(opts, resilience.WithRetry(p.Retry.build(logger, scope)))
	}
	if p.Timeout > 0 {
		opts = append(opts, resilience.WithTimeout(p.Timeout))
	}

	return resilience.NewPipeline(opts...)
}
