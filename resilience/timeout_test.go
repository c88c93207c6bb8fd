package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewTimeout_Defaults(t *testing.T) {
	to := NewTimeout(TimeoutConfig{})

	if to.Config().Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", to.Config().Timeout)
	}
}

func TestTimeout_Success(t *testing.T) {
	to := NewTimeout(TimeoutConfig{Timeout: time.Second})

	err := to.Execute(context.Background(), func(ctx context.Context) error {
		return nil
	})
	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
}

func TestTimeout_Exceeded(t *testing.T) {
	var fired time.Duration
	to := NewTimeout(TimeoutConfig{
		Timeout:   20 * time.Millisecond,
		OnTimeout: func(d time.Duration) { fired = d },
	})

	err := to.Execute(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		return ctx.Err()
	})

	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Execute() error = %v, want ErrTimeout", err)
	}
	if fired != 20*time.Millisecond {
		t.Errorf("OnTimeout got %v, want 20ms", fired)
	}
}

func TestTimeout_PropagatesError(t *testing.T) {
	to := NewTimeout(TimeoutConfig{Timeout: time.Second})
	testErr := errors.New("transport down")

	err := to.Execute(context.Background(), func(ctx context.Context) error {
		return testErr
	})
	if err != testErr {
		t.Errorf("Execute() error = %v, want %v", err, testErr)
	}
}

func TestTimeout_ParentCanceled(t *testing.T) {
	to := NewTimeout(TimeoutConfig{Timeout: time.Second})
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := to.Execute(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond)
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
}

func TestTimeout_ParentDeadlineIsNotATimeout(t *testing.T) {
	to := NewTimeout(TimeoutConfig{Timeout: time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := to.Execute(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond)
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Execute() error = %v, want context.DeadlineExceeded", err)
	}
	if to.Abandoned() != 0 {
		t.Errorf("Abandoned() = %d, want 0", to.Abandoned())
	}
}

func TestTimeout_Abandoned(t *testing.T) {
	to := NewTimeout(TimeoutConfig{Timeout: 5 * time.Millisecond})
	slow := func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		return ctx.Err()
	}

	for range 3 {
		_ = to.Execute(context.Background(), slow)
	}
	_ = to.Execute(context.Background(), func(context.Context) error { return nil })

	if got := to.Abandoned(); got != 3 {
		t.Errorf("Abandoned() = %d, want 3", got)
	}
}

func TestTimeout_WaitsForAbandonedAttempt(t *testing.T) {
	to := NewTimeout(TimeoutConfig{Timeout: 5 * time.Millisecond})

	var finished atomic.Bool
	err := to.Execute(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
		return ctx.Err()
	})

	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Execute() error = %v, want ErrTimeout", err)
	}
	if !finished.Load() {
		t.Error("Execute() returned before the attempt finished")
	}
}
