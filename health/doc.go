// Package health reports whether the dispatch path of an endpoint can
// currently deliver messages.
//
// A Checker reports one component. TransportChecker pings a transport and
// BreakerChecker maps a circuit breaker state onto a Status: an open circuit
// is unhealthy, a half-open one degraded.
//
// Aggregator runs every registered checker concurrently and folds the
// results into a Report:
//
//	agg := health.NewAggregator()
//	agg.Register(health.NewTransportChecker("redis", transport, 0))
//	agg.Register(health.NewBreakerChecker("billing", breaker))
//
//	report := agg.CheckAll(ctx)
//	if report.Status == health.StatusUnhealthy {
//	    // stop taking work
//	}
//
// Handler exposes the report over HTTP for readiness probes.
package health
