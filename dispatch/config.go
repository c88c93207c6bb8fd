package dispatch

import (
	"context"
	"fmt"

	"github.com/jonwraymond/dispatchops/observe"
)

// Retries is the dispatch retry configuration of one endpoint. It owns the
// default strategies and the two interceptors that apply them.
//
// Retries is built once by New; its defaults cannot change afterwards.
type Retries struct {
	defaults  *Defaults
	immediate *Interceptor
	batch     *Interceptor

	endpoint string
	logger   observe.Logger
	metrics  observe.Metrics
	tracer   observe.Tracer
}

// Option configures Retries.
type Option func(*Retries) error

// New creates the retry configuration and freezes its defaults.
func New(opts ...Option) (*Retries, error) {
	r := &Retries{defaults: NewDefaults()}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.defaults.Freeze()

	logger := r.logger
	if logger != nil && r.endpoint != "" {
		logger = logger.With(observe.Field{Key: "endpoint", Value: r.endpoint})
	}
	obs := observe.NewMiddleware(r.tracer, r.metrics, logger)

	r.immediate = NewInterceptor(ModeImmediate, r.defaults, obs)
	r.batch = NewInterceptor(ModeBatch, r.defaults, obs)
	r.immediate.endpoint = r.endpoint
	r.batch.endpoint = r.endpoint
	return r, nil
}

// WithDefault sets the default strategy for one mode and representation.
func WithDefault(mode Mode, rep Representation, e Executor) Option {
	return func(r *Retries) error {
		if err := r.defaults.SetDefault(mode, rep, e); err != nil {
			return fmt.Errorf("default %s %s: %w", mode, rep, err)
		}
		return nil
	}
}

// WithDefaultPolicy sets the same default retry policy for both modes.
func WithDefaultPolicy(e Executor) Option {
	return both(RepresentationPolicy, e)
}

// WithDefaultPipeline sets the same default resilience pipeline for both modes.
func WithDefaultPipeline(e Executor) Option {
	return both(RepresentationPipeline, e)
}

func both(rep Representation, e Executor) Option {
	return func(r *Retries) error {
		for _, mode := range Modes {
			if err := WithDefault(mode, rep, e)(r); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithImmediatePolicy sets the default immediate dispatch retry policy.
func WithImmediatePolicy(e Executor) Option {
	return WithDefault(ModeImmediate, RepresentationPolicy, e)
}

// WithImmediatePipeline sets the default immediate dispatch resilience pipeline.
func WithImmediatePipeline(e Executor) Option {
	return WithDefault(ModeImmediate, RepresentationPipeline, e)
}

// WithBatchPolicy sets the default batch dispatch retry policy.
func WithBatchPolicy(e Executor) Option {
	return WithDefault(ModeBatch, RepresentationPolicy, e)
}

// WithBatchPipeline sets the default batch dispatch resilience pipeline.
func WithBatchPipeline(e Executor) Option {
	return WithDefault(ModeBatch, RepresentationPipeline, e)
}

// WithLogger sets the logger receiving conflict warnings and dispatch failures.
func WithLogger(l observe.Logger) Option {
	return func(r *Retries) error {
		r.logger = l
		return nil
	}
}

// WithMetrics sets the dispatch metrics recorder.
func WithMetrics(m observe.Metrics) Option {
	return func(r *Retries) error {
		r.metrics = m
		return nil
	}
}

// WithTracer sets the dispatch tracer.
func WithTracer(t observe.Tracer) Option {
	return func(r *Retries) error {
		r.tracer = t
		return nil
	}
}

// WithObserver takes logger, metrics and tracer from obs.
func WithObserver(obs observe.Observer) Option {
	return func(r *Retries) error {
		mw, err := observe.MiddlewareFromObserver(obs)
		if err != nil {
			return fmt.Errorf("dispatch observer: %w", err)
		}
		r.logger = mw.Logger()
		r.metrics = mw.Metrics()
		r.tracer = mw.Tracer()
		return nil
	}
}

// WithEndpointName labels logs and telemetry with the endpoint name.
func WithEndpointName(name string) Option {
	return func(r *Retries) error {
		r.endpoint = name
		return nil
	}
}

// Defaults returns the frozen default strategies.
func (r *Retries) Defaults() *Defaults {
	return r.defaults
}

// Interceptor returns the interceptor for mode, or nil for an unknown mode.
func (r *Retries) Interceptor(mode Mode) *Interceptor {
	switch mode {
	case ModeImmediate:
		return r.immediate
	case ModeBatch:
		return r.batch
	default:
		return nil
	}
}

// Resolve returns the strategy a dispatch call of mode would use under ctx.
func (r *Retries) Resolve(ctx context.Context, mode Mode) (Resolution, error) {
	i := r.Interceptor(mode)
	if i == nil {
		return Resolution{}, mode.check()
	}
	return i.Resolve(ctx), nil
}

// Middleware classifies each dispatch call and runs it through the matching
// interceptor.
func (r *Retries) Middleware() Middleware {
	return func(next DispatchFunc) DispatchFunc {
		return func(ctx context.Context, ops []Operation) error {
			return r.Interceptor(Classify(ops)).Execute(ctx, ops, next)
		}
	}
}
