package dispatch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"golang.org/x/sync/errgroup"
)

func TestScope_SetOverride(t *testing.T) {
	s := NewScope()
	first, second := newRetrier(1), newRetrier(2)

	if err := s.SetOverride(ModeImmediate, RepresentationPolicy, first); err != nil {
		t.Fatalf("SetOverride() error = %v", err)
	}
	if err := s.SetOverride(ModeImmediate, RepresentationPolicy, second); err != nil {
		t.Fatalf("SetOverride() error = %v", err)
	}

	policy, pipeline := s.GetOverride(ModeImmediate)
	if policy != second {
		t.Errorf("policy = %v, want the last written value", policy)
	}
	if pipeline != nil {
		t.Errorf("pipeline = %v, want nil", pipeline)
	}
	if p, pl := s.GetOverride(ModeBatch); p != nil || pl != nil {
		t.Error("batch slot changed by an immediate override")
	}
}

func TestScope_SetOverrideInvalid(t *testing.T) {
	s := NewScope()
	var typedNil *retrier

	for _, e := range []Executor{nil, typedNil} {
		if err := s.SetOverride(ModeBatch, RepresentationPipeline, e); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("SetOverride(%v) error = %v, want ErrInvalidArgument", e, err)
		}
	}
	if err := s.SetOverride(Mode(9), RepresentationPipeline, newRetrier(1)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("SetOverride(unknown mode) error = %v, want ErrInvalidArgument", err)
	}
}

func TestScope_NilHasNoOverrides(t *testing.T) {
	var s *Scope
	if p, pl := s.GetOverride(ModeImmediate); p != nil || pl != nil {
		t.Error("nil scope returned overrides")
	}
}

func TestScopeFromContext(t *testing.T) {
	if ScopeFromContext(context.Background()) != nil {
		t.Error("ScopeFromContext(empty) != nil")
	}

	s := NewScope()
	ctx := WithScope(context.Background(), s)
	if ScopeFromContext(ctx) != s {
		t.Error("ScopeFromContext did not return the attached scope")
	}
	if HasIncomingOrigin(ctx) {
		t.Error("WithScope marked the context as incoming")
	}
}

func TestOverride_WithoutScope(t *testing.T) {
	err := OverrideBatchPolicy(context.Background(), newRetrier(1))
	if !errors.Is(err, ErrScopeNotAvailable) {
		t.Errorf("OverrideBatchPolicy() error = %v, want ErrScopeNotAvailable", err)
	}
}

func TestOverride_NilBeforeScope(t *testing.T) {
	err := OverrideBatchPolicy(context.Background(), nil)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("OverrideBatchPolicy(nil) error = %v, want ErrInvalidArgument", err)
	}
}

func TestOverride_Helpers(t *testing.T) {
	ctx := BeginIncoming(context.Background())
	ip, ipl, bp, bpl := newRetrier(1), newRetrier(2), newRetrier(3), newRetrier(4)

	for _, err := range []error{
		OverrideImmediatePolicy(ctx, ip),
		OverrideImmediatePipeline(ctx, ipl),
		OverrideBatchPolicy(ctx, bp),
		OverrideBatchPipeline(ctx, bpl),
	} {
		if err != nil {
			t.Fatalf("override error = %v", err)
		}
	}

	s := ScopeFromContext(ctx)
	if p, pl := s.GetOverride(ModeImmediate); p != ip || pl != ipl {
		t.Error("immediate overrides not stored in their slots")
	}
	if p, pl := s.GetOverride(ModeBatch); p != bp || pl != bpl {
		t.Error("batch overrides not stored in their slots")
	}
}

func TestScope_ConcurrentUnitsOfWorkAreIsolated(t *testing.T) {
	const units = 16
	policies := make([]*retrier, units)
	for i := range policies {
		policies[i] = newRetrier(i)
	}

	var g errgroup.Group
	for i := range units {
		g.Go(func() error {
			ctx := BeginIncoming(context.Background())
			if err := OverrideBatchPolicy(ctx, policies[i]); err != nil {
				return err
			}
			got, _ := ScopeFromContext(ctx).GetOverride(ModeBatch)
			if got != policies[i] {
				return fmt.Errorf("unit %d sees another unit's override", i)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		t.Error(err)
	}
}

func TestScope_ConcurrentWritersInOneUnit(t *testing.T) {
	ctx := BeginIncoming(context.Background())

	var g errgroup.Group
	for i := range 8 {
		g.Go(func() error {
			if err := OverrideImmediatePolicy(ctx, newRetrier(i)); err != nil {
				return err
			}
			_, _ = ScopeFromContext(ctx).GetOverride(ModeImmediate)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if p, _ := ScopeFromContext(ctx).GetOverride(ModeImmediate); p == nil {
		t.Error("no override stored")
	}
}
