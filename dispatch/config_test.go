package dispatch

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/jonwraymond/dispatchops/observe"
)

func TestNew_Empty(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if !r.Defaults().Frozen() {
		t.Error("defaults not frozen after New")
	}
	for _, mode := range Modes {
		res, err := r.Resolve(context.Background(), mode)
		if err != nil {
			t.Fatalf("Resolve(%s) error = %v", mode, err)
		}
		if !res.Strategy.IsNone() || res.Source != SourceNone {
			t.Errorf("Resolve(%s) = %+v, want none", mode, res)
		}
	}
}

func TestNew_DefaultPolicyAppliesToBothModes(t *testing.T) {
	policy := newRetrier(1)
	r, err := New(WithDefaultPolicy(policy))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, mode := range Modes {
		if p, _ := r.Defaults().GetDefault(mode); p != policy {
			t.Errorf("%s default policy = %v, want %v", mode, p, policy)
		}
	}
}

func TestNew_DefaultPipelineAppliesToBothModes(t *testing.T) {
	pipeline := newRetrier(1)
	r, err := New(WithDefaultPipeline(pipeline))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, mode := range Modes {
		if _, pl := r.Defaults().GetDefault(mode); pl != pipeline {
			t.Errorf("%s default pipeline = %v, want %v", mode, pl, pipeline)
		}
	}
}

func TestNew_PerModeOptions(t *testing.T) {
	ip, ipl, bp, bpl := newRetrier(1), newRetrier(2), newRetrier(3), newRetrier(4)
	r, err := New(
		WithImmediatePolicy(ip),
		WithImmediatePipeline(ipl),
		WithBatchPolicy(bp),
		WithBatchPipeline(bpl),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if p, pl := r.Defaults().GetDefault(ModeImmediate); p != ip || pl != ipl {
		t.Error("immediate defaults not stored")
	}
	if p, pl := r.Defaults().GetDefault(ModeBatch); p != bp || pl != bpl {
		t.Error("batch defaults not stored")
	}
}

func TestNew_InvalidOption(t *testing.T) {
	_, err := New(WithBatchPolicy(nil))
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("New() error = %v, want ErrInvalidArgument", err)
	}

	_, err = New(WithObserver(nil))
	if !errors.Is(err, observe.ErrNilObserver) {
		t.Errorf("New(WithObserver(nil)) error = %v, want ErrNilObserver", err)
	}
}

func TestRetries_FrozenAfterNew(t *testing.T) {
	r, _ := New()

	err := WithBatchPolicy(newRetrier(1))(r)
	if !errors.Is(err, ErrConfigurationFrozen) {
		t.Errorf("late option error = %v, want ErrConfigurationFrozen", err)
	}
}

func TestRetries_Interceptor(t *testing.T) {
	r, _ := New()

	if i := r.Interceptor(ModeImmediate); i == nil || i.Mode() != ModeImmediate {
		t.Error("immediate interceptor missing")
	}
	if i := r.Interceptor(ModeBatch); i == nil || i.Mode() != ModeBatch {
		t.Error("batch interceptor missing")
	}
	if r.Interceptor(Mode(4)) != nil {
		t.Error("interceptor returned for an unknown mode")
	}
	if _, err := r.Resolve(context.Background(), Mode(4)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Resolve(unknown) error = %v, want ErrInvalidArgument", err)
	}
}

func TestRetries_MiddlewareClassifies(t *testing.T) {
	immediate, batch := newRetrier(0), newRetrier(1)
	r, err := New(WithImmediatePolicy(immediate), WithBatchPolicy(batch))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tr := &transport{}
	send := r.Middleware()(tr.Dispatch)

	_ = send(context.Background(), []Operation{isolated("1")})
	_ = send(context.Background(), []Operation{isolated("2"), batched("3")})

	if immediate.Used() != 1 {
		t.Errorf("immediate policy used %d times, want 1", immediate.Used())
	}
	if batch.Used() != 1 {
		t.Errorf("batch policy used %d times, want 1", batch.Used())
	}
	if tr.Calls() != 2 {
		t.Errorf("transport calls = %d, want 2", tr.Calls())
	}
}

func TestRetries_LoggerCarriesEndpoint(t *testing.T) {
	logger, logs := observedLogger()
	r, err := New(
		WithEndpointName("sales"),
		WithLogger(logger),
		WithBatchPolicy(newRetrier(0)),
		WithBatchPipeline(newRetrier(0)),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res, _ := r.Resolve(context.Background(), ModeBatch)
	if res.Conflict == nil || res.Conflict.Tier != SourceDefault {
		t.Fatalf("Conflict = %v, want a default tier conflict", res.Conflict)
	}

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	if len(warnings) != 1 {
		t.Fatalf("warnings = %d, want 1", len(warnings))
	}
	if got := warnings[0].ContextMap()["endpoint"]; got != "sales" {
		t.Errorf("endpoint field = %v, want sales", got)
	}
}

func TestNew_WithObserver(t *testing.T) {
	ctx := context.Background()
	obs, err := observe.NewObserver(ctx, observe.Config{ServiceName: "sales"})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	t.Cleanup(func() { _ = obs.Shutdown(ctx) })

	r, err := New(WithObserver(obs), WithBatchPolicy(newRetrier(1)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tr := &transport{failures: 1, err: errors.New("transient")}
	if err := r.Middleware()(tr.Dispatch)(ctx, []Operation{batched("1")}); err != nil {
		t.Fatalf("dispatch error = %v", err)
	}
	if tr.Calls() != 2 {
		t.Errorf("calls = %d, want 2", tr.Calls())
	}
}
