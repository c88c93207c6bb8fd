package dispatch

import (
	"context"
	"sync/atomic"
)

// retrier is a minimal Executor retrying op up to retries times after the
// first attempt and counting how often it was used.
type retrier struct {
	retries int
	used    atomic.Int64
}

func newRetrier(retries int) *retrier {
	return &retrier{retries: retries}
}

func (r *retrier) Execute(ctx context.Context, op func(context.Context) error) error {
	r.used.Add(1)
	var err error
	for attempt := 0; attempt <= r.retries; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}

func (r *retrier) Used() int {
	return int(r.used.Load())
}

// transport counts dispatch calls and fails the first failures of them.
type transport struct {
	failures int
	err      error
	calls    atomic.Int64
}

func (t *transport) Dispatch(ctx context.Context, ops []Operation) error {
	n := t.calls.Add(1)
	if int(n) <= t.failures {
		return t.err
	}
	return nil
}

func (t *transport) Calls() int {
	return int(t.calls.Load())
}

func isolated(id string) Operation {
	return Operation{MessageID: id, Destination: "orders", Consistency: ConsistencyIsolated}
}

func batched(id string) Operation {
	return Operation{MessageID: id, Destination: "orders"}
}
