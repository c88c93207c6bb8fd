package exporters

import (
	"context"
	"slices"
	"strings"
	"testing"
)

func TestExporter_InvalidName(t *testing.T) {
	if _, err := NewTracingExporter(context.Background(), "invalid"); err == nil ||
		!strings.Contains(err.Error(), "unknown exporter") {
		t.Fatalf("NewTracingExporter(invalid) error = %v, want unknown exporter", err)
	}
	if _, err := NewMetricsReader(context.Background(), "invalid"); err == nil ||
		!strings.Contains(err.Error(), "unknown metrics exporter") {
		t.Fatalf("NewMetricsReader(invalid) error = %v, want unknown metrics exporter", err)
	}
}

func TestExporter_Stdout(t *testing.T) {
	exp, err := NewTracingExporter(context.Background(), "stdout")
	if err != nil || exp == nil {
		t.Fatalf("stdout tracing exporter = %v, %v", exp, err)
	}

	reader, err := NewMetricsReader(context.Background(), "stdout")
	if err != nil || reader == nil {
		t.Fatalf("stdout metrics reader = %v, %v", reader, err)
	}
}

func TestExporter_None(t *testing.T) {
	for _, name := range []string{"none", ""} {
		if exp, err := NewTracingExporter(context.Background(), name); err != nil || exp == nil {
			t.Errorf("tracing exporter %q = %v, %v", name, exp, err)
		}
		if reader, err := NewMetricsReader(context.Background(), name); err != nil || reader == nil {
			t.Errorf("metrics reader %q = %v, %v", name, reader, err)
		}
	}
}

func TestExporter_OtlpEndpoint(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
		t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")
		t.Setenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", "")

		if _, err := NewTracingExporter(context.Background(), "otlp"); err == nil ||
			!strings.Contains(err.Error(), "endpoint") {
			t.Errorf("tracing error = %v, want endpoint error", err)
		}
		if _, err := NewMetricsReader(context.Background(), "otlp"); err == nil {
			t.Error("expected metrics error when OTLP endpoint not configured")
		}
	})

	t.Run("configured", func(t *testing.T) {
		t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4317")

		exp, err := NewTracingExporter(context.Background(), "otlp")
		if err != nil || exp == nil {
			t.Fatalf("otlp exporter = %v, %v", exp, err)
		}
	})
}

func TestExporter_JaegerMissingEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_JAEGER_ENDPOINT", "")

	if _, err := NewTracingExporter(context.Background(), "jaeger"); err == nil {
		t.Fatal("expected error when Jaeger endpoint not configured")
	}
}

func TestExporter_Names(t *testing.T) {
	if !slices.Contains(TracingExporters(), "jaeger") || slices.Contains(TracingExporters(), "prometheus") {
		t.Errorf("TracingExporters() = %v", TracingExporters())
	}
	if !slices.Contains(MetricsExporters(), "prometheus") || slices.Contains(MetricsExporters(), "jaeger") {
		t.Errorf("MetricsExporters() = %v", MetricsExporters())
	}
	if !slices.IsSorted(MetricsExporters()) {
		t.Errorf("MetricsExporters() not sorted: %v", MetricsExporters())
	}
}
