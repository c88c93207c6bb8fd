package dispatch

import (
	"context"
	"fmt"
	"reflect"
)

// Executor runs an operation under a resilience strategy.
//
// Contract:
//   - Context: implementations must pass ctx (or a context derived from it) to op
//     and should stop retrying once ctx is done.
//   - Attempts: op may be invoked zero or more times, one attempt at a time.
//   - Errors: the error returned after the last attempt is returned as is.
//
// resilience.Retry and resilience.Pipeline both satisfy Executor.
type Executor interface {
	Execute(ctx context.Context, op func(context.Context) error) error
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, op func(context.Context) error) error

// Execute calls f(ctx, op).
func (f ExecutorFunc) Execute(ctx context.Context, op func(context.Context) error) error {
	return f(ctx, op)
}

// Representation distinguishes the two ways a strategy can be supplied.
type Representation int

const (
	// RepresentationPolicy is a simple bounded retry policy.
	RepresentationPolicy Representation = iota
	// RepresentationPipeline is a general resilience pipeline.
	RepresentationPipeline
)

// String returns the string representation of the representation.
func (r Representation) String() string {
	switch r {
	case RepresentationPolicy:
		return "policy"
	case RepresentationPipeline:
		return "pipeline"
	default:
		return "unknown"
	}
}

// StrategyKind is the variant held by a Strategy.
type StrategyKind int

const (
	// StrategyNone runs the dispatch unwrapped.
	StrategyNone StrategyKind = iota
	// StrategyPolicy runs the dispatch under a retry policy.
	StrategyPolicy
	// StrategyPipeline runs the dispatch under a resilience pipeline.
	StrategyPipeline
)

// String returns the string representation of the kind.
func (k StrategyKind) String() string {
	switch k {
	case StrategyNone:
		return "none"
	case StrategyPolicy:
		return "policy"
	case StrategyPipeline:
		return "pipeline"
	default:
		return "unknown"
	}
}

// Strategy is the resolved retry strategy for one dispatch call.
// The zero value is the None strategy.
type Strategy struct {
	kind     StrategyKind
	executor Executor
}

// NoStrategy returns the None strategy.
func NoStrategy() Strategy {
	return Strategy{}
}

// PolicyStrategy wraps a retry policy.
func PolicyStrategy(e Executor) Strategy {
	return Strategy{kind: StrategyPolicy, executor: e}
}

// PipelineStrategy wraps a resilience pipeline.
func PipelineStrategy(e Executor) Strategy {
	return Strategy{kind: StrategyPipeline, executor: e}
}

func strategyOf(rep Representation, e Executor) Strategy {
	if rep == RepresentationPipeline {
		return PipelineStrategy(e)
	}
	return PolicyStrategy(e)
}

// Kind returns the strategy variant.
func (s Strategy) Kind() StrategyKind {
	return s.kind
}

// Executor returns the wrapped executor, or nil for the None strategy.
func (s Strategy) Executor() Executor {
	return s.executor
}

// IsNone reports whether the strategy runs the dispatch unwrapped.
func (s Strategy) IsNone() bool {
	return s.kind == StrategyNone || s.executor == nil
}

// Run executes op under the strategy. The None strategy calls op exactly once.
func (s Strategy) Run(ctx context.Context, op func(context.Context) error) error {
	if s.IsNone() {
		return op(ctx)
	}
	return s.executor.Execute(ctx, op)
}

func checkRepresentation(rep Representation) error {
	if rep != RepresentationPolicy && rep != RepresentationPipeline {
		return fmt.Errorf("%w: unknown representation %d", ErrInvalidArgument, int(rep))
	}
	return nil
}

func checkExecutor(e Executor) error {
	if isNil(e) {
		return fmt.Errorf("%w: strategy is nil", ErrInvalidArgument)
	}
	return nil
}

// isNil also catches typed nil pointers and funcs stored in the interface.
func isNil(e Executor) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}
