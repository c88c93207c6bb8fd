// Package observe provides observability primitives for message dispatch.
//
// It is a pure instrumentation library: no dispatching, no transport, no I/O
// beyond exporter setup. Consumers wire the observer into the dispatch
// interceptors or an endpoint host.
//
// Logging is backed by zap; traces and metrics by OpenTelemetry.
package observe
