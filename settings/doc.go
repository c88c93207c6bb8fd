// Package settings loads dispatch retry configuration from YAML.
//
// A settings file declares default strategies for both dispatch modes and
// optional per-mode strategies that replace them:
//
//	endpoint: sales
//	defaults:
//	  policy:
//	    max_retries: 2
//	    initial_delay: 100ms
//	batch:
//	  pipeline:
//	    circuit_breaker:
//	      max_failures: 5
//	      reset_timeout: 30s
//	    retry:
//	      max_retries: 3
//	      backoff: exponential
//	      jitter: true
//	    timeout: 5s
//
// ${VAR} references are expanded from the environment before parsing. Load
// can read dotenv files first so local overrides do not need exporting.
//
// Pipeline layers always run in the same order, outermost first: rate limit,
// bulkhead, circuit breaker, retry, timeout.
package settings
