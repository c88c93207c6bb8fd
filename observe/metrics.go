package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records dispatch metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordDispatch records one dispatch call with its attempt count,
	// duration and terminal error.
	RecordDispatch(ctx context.Context, meta DispatchMeta, attempts int, duration time.Duration, err error)

	// RecordConflict records a policy/pipeline conflict detected during resolution.
	// meta.Source carries the tier the conflict was found in.
	RecordConflict(ctx context.Context, meta DispatchMeta)
}

type metricsImpl struct {
	totalCount    metric.Int64Counter
	errorCount    metric.Int64Counter
	conflictCount metric.Int64Counter
	attemptsHist  metric.Int64Histogram
	durationHist  metric.Float64Histogram
}

// NewMetrics creates Metrics recording into meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		"dispatch.calls.total",
		metric.WithDescription("Total number of dispatch calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"dispatch.calls.errors",
		metric.WithDescription("Dispatch calls that failed after the retry strategy gave up"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	conflictCount, err := meter.Int64Counter(
		"dispatch.conflicts.total",
		metric.WithDescription("Resolutions where both a retry policy and a resilience pipeline were configured"),
		metric.WithUnit("{conflict}"),
	)
	if err != nil {
		return nil, err
	}

	attemptsHist, err := meter.Int64Histogram(
		"dispatch.attempts",
		metric.WithDescription("Number of transport attempts per dispatch call"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"dispatch.duration_ms",
		metric.WithDescription("Dispatch duration in milliseconds, retries included"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:    totalCount,
		errorCount:    errorCount,
		conflictCount: conflictCount,
		attemptsHist:  attemptsHist,
		durationHist:  durationHist,
	}, nil
}

// RecordDispatch records metrics for a dispatch call.
func (m *metricsImpl) RecordDispatch(ctx context.Context, meta DispatchMeta, attempts int, duration time.Duration, err error) {
	opt := metric.WithAttributes(meta.attributes()...)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.attemptsHist.Record(ctx, int64(attempts), opt)
	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

// RecordConflict increments the conflict counter.
func (m *metricsImpl) RecordConflict(ctx context.Context, meta DispatchMeta) {
	m.conflictCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("dispatch.mode", meta.Mode),
		attribute.String("dispatch.tier", meta.Source),
	))
}

type nopMetrics struct{}

// NopMetrics returns metrics that record nothing.
func NopMetrics() Metrics {
	return nopMetrics{}
}

func (nopMetrics) RecordDispatch(ctx context.Context, meta DispatchMeta, attempts int, duration time.Duration, err error) {
}

func (nopMetrics) RecordConflict(ctx context.Context, meta DispatchMeta) {}
