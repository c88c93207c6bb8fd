package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// TimeoutConfig configures the timeout wrapper.
type TimeoutConfig struct {
	// Timeout is the maximum duration of one dispatch attempt.
	// Default: 30 seconds
	Timeout time.Duration

	// OnTimeout is called when an attempt is abandoned.
	OnTimeout func(timeout time.Duration)
}

// Timeout abandons attempts that outlive their deadline.
type Timeout struct {
	config    TimeoutConfig
	abandoned atomic.Int64
}

// NewTimeout creates a new timeout wrapper.
func NewTimeout(config TimeoutConfig) *Timeout {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &Timeout{config: config}
}

// Execute runs op with a context that expires after the configured timeout.
// When that deadline fires first Execute returns ErrTimeout once op has
// returned, so an abandoned attempt never overlaps the next one. op must
// honor ctx. Cancellation or an earlier deadline of the caller's ctx is
// reported as ctx.Err().
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	ctx, cancel := context.WithTimeoutCause(ctx, t.config.Timeout, ErrTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
	}

	cancel()
	<-done

	if !errors.Is(context.Cause(ctx), ErrTimeout) {
		return ctx.Err()
	}

	t.abandoned.Add(1)
	if t.config.OnTimeout != nil {
		t.config.OnTimeout(t.config.Timeout)
	}
	return ErrTimeout
}

// Abandoned returns how many attempts hit the timeout.
func (t *Timeout) Abandoned() int64 {
	return t.abandoned.Load()
}

// Config returns the timeout configuration.
func (t *Timeout) Config() TimeoutConfig {
	return t.config
}
