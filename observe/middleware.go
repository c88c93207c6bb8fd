package observe

import (
	"context"
	"time"
)

// ObservedFunc is the unit of work observed by Middleware. It returns the
// number of transport attempts it made and its terminal error.
type ObservedFunc func(ctx context.Context) (attempts int, err error)

// Middleware wraps dispatch execution with observability (tracing, metrics, logging).
//
// Contract:
//   - Concurrency: Observe is safe for concurrent use.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from the observed function are recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability
// components. Nil components are replaced by no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NopTracer()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// Logger returns the middleware's logger.
func (m *Middleware) Logger() Logger {
	return m.logger
}

// Metrics returns the middleware's metrics recorder.
func (m *Middleware) Metrics() Metrics {
	return m.metrics
}

// Tracer returns the middleware's tracer.
func (m *Middleware) Tracer() Tracer {
	return m.tracer
}

// Observe runs fn inside a span and records its outcome.
func (m *Middleware) Observe(ctx context.Context, meta DispatchMeta, fn ObservedFunc) error {
	ctx, span := m.tracer.StartSpan(ctx, meta)
	start := time.Now()

	attempts, err := fn(ctx)

	duration := time.Since(start)
	m.tracer.EndSpan(span, attempts, err)
	m.metrics.RecordDispatch(ctx, meta, attempts, duration, err)

	fields := []Field{
		{Key: "dispatch.mode", Value: meta.Mode},
		{Key: "dispatch.source", Value: meta.Source},
		{Key: "dispatch.strategy", Value: meta.Strategy},
		{Key: "dispatch.operations", Value: meta.Operations},
		{Key: "attempts", Value: attempts},
		{Key: "duration_ms", Value: float64(duration.Milliseconds())},
	}
	if err != nil {
		fields = append(fields, Field{Key: "error", Value: err.Error()})
		m.logger.Error(ctx, "dispatch failed", fields...)
	} else {
		m.logger.Debug(ctx, "dispatch completed", fields...)
	}

	return err
}

// Conflict logs a misconfiguration warning and counts it.
func (m *Middleware) Conflict(ctx context.Context, meta DispatchMeta, message string) {
	m.metrics.RecordConflict(ctx, meta)
	m.logger.Warn(ctx, message,
		Field{Key: "dispatch.mode", Value: meta.Mode},
		Field{Key: "dispatch.tier", Value: meta.Source},
		Field{Key: "dispatch.conflict", Value: "policy,pipeline"},
	)
}
