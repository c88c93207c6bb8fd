package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// DispatchMeta describes one dispatch call for telemetry purposes.
type DispatchMeta struct {
	Endpoint   string // Endpoint name (optional)
	Mode       string // Dispatch mode: immediate or batch (required)
	Source     string // Where the strategy came from: override, default or none
	Strategy   string // Strategy kind: policy, pipeline or none
	Operations int    // Number of transport operations in the call
}

// SpanName returns the deterministic span name for this dispatch.
// Format: dispatch.<mode>
func (m DispatchMeta) SpanName() string {
	return "dispatch." + m.Mode
}

// Validate reports whether the metadata carries the required fields.
func (m DispatchMeta) Validate() error {
	if m.Mode == "" {
		return ErrMissingMode
	}
	return nil
}

func (m DispatchMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("dispatch.mode", m.Mode),
		attribute.String("dispatch.source", m.Source),
		attribute.String("dispatch.strategy", m.Strategy),
	}
	if m.Endpoint != "" {
		attrs = append(attrs, attribute.String("dispatch.endpoint", m.Endpoint))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing with dispatch-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a dispatch call.
	StartSpan(ctx context.Context, meta DispatchMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording attempts and any error.
	EndSpan(span trace.Span, attempts int, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	if t == nil {
		return NopTracer()
	}
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with dispatch metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta DispatchMeta) (context.Context, trace.Span) {
	attrs := append(meta.attributes(),
		attribute.Int("dispatch.operations", meta.Operations),
		attribute.Bool("dispatch.error", false),
	)

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindProducer),
	)
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, attempts int, err error) {
	span.SetAttributes(attribute.Int("dispatch.attempts", attempts))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("dispatch.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type nopTracer struct {
	noop trace.Tracer
}

// NopTracer returns a tracer that records nothing.
func NopTracer() Tracer {
	return &nopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *nopTracer) StartSpan(ctx context.Context, meta DispatchMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *nopTracer) EndSpan(span trace.Span, attempts int, err error) {
	span.End()
}
