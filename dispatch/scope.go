package dispatch

import (
	"context"
	"sync"
)

// Scope holds the strategy overrides of one unit of work: one policy and one
// pipeline slot per dispatch mode.
//
// A Scope is created by BeginIncoming or BeginOutgoing and lives as long as
// the context it is attached to. It is never shared across units of work.
type Scope struct {
	mu    sync.RWMutex
	slots [2]slot
}

// NewScope creates an empty Scope.
func NewScope() *Scope {
	return &Scope{}
}

// SetOverride stores an override for the given mode and representation.
// A later call for the same slot replaces the earlier value.
func (s *Scope) SetOverride(mode Mode, rep Representation, e Executor) error {
	if err := mode.check(); err != nil {
		return err
	}
	if err := checkRepresentation(rep); err != nil {
		return err
	}
	if err := checkExecutor(e); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[mode].set(rep, e)
	return nil
}

// GetOverride returns the override policy and pipeline for mode.
// Either or both may be nil. A nil Scope has no overrides.
func (s *Scope) GetOverride(mode Mode) (policy, pipeline Executor) {
	if s == nil || !mode.valid() {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	sl := s.slots[mode]
	return sl.policy, sl.pipeline
}

type contextKey int

const unitOfWorkKey contextKey = iota

// unitOfWork is the value stored in the context for one unit of work.
type unitOfWork struct {
	scope    *Scope
	incoming bool
}

func unitOfWorkFromContext(ctx context.Context) *unitOfWork {
	u, _ := ctx.Value(unitOfWorkKey).(*unitOfWork)
	return u
}

// WithScope returns a new context carrying scope. It does not mark the
// context as having an incoming origin.
func WithScope(ctx context.Context, scope *Scope) context.Context {
	return context.WithValue(ctx, unitOfWorkKey, &unitOfWork{scope: scope})
}

// ScopeFromContext retrieves the override scope from the context.
// Returns nil if no scope is present.
func ScopeFromContext(ctx context.Context) *Scope {
	u := unitOfWorkFromContext(ctx)
	if u == nil {
		return nil
	}
	return u.scope
}

// HasIncomingOrigin reports whether the context belongs to the processing of
// an incoming message.
func HasIncomingOrigin(ctx context.Context) bool {
	u := unitOfWorkFromContext(ctx)
	return u != nil && u.incoming
}

// Override sets an override on the scope carried by ctx.
func Override(ctx context.Context, mode Mode, rep Representation, e Executor) error {
	if err := checkExecutor(e); err != nil {
		return err
	}
	scope := ScopeFromContext(ctx)
	if scope == nil {
		return ErrScopeNotAvailable
	}
	return scope.SetOverride(mode, rep, e)
}

// OverrideImmediatePolicy overrides the immediate dispatch retry policy for
// the current unit of work.
func OverrideImmediatePolicy(ctx context.Context, e Executor) error {
	return Override(ctx, ModeImmediate, RepresentationPolicy, e)
}

// OverrideImmediatePipeline overrides the immediate dispatch resilience
// pipeline for the current unit of work.
func OverrideImmediatePipeline(ctx context.Context, e Executor) error {
	return Override(ctx, ModeImmediate, RepresentationPipeline, e)
}

// OverrideBatchPolicy overrides the batch dispatch retry policy for the
// current unit of work.
func OverrideBatchPolicy(ctx context.Context, e Executor) error {
	return Override(ctx, ModeBatch, RepresentationPolicy, e)
}

// OverrideBatchPipeline overrides the batch dispatch resilience pipeline for
// the current unit of work.
func OverrideBatchPipeline(ctx context.Context, e Executor) error {
	return Override(ctx, ModeBatch, RepresentationPipeline, e)
}
