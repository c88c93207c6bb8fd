// Package memory provides an in-process transport for tests and local runs.
//
// Every dispatch call is applied atomically: either all of its operations are
// delivered or none are. Delivered operations are kept in a log per
// destination and queued for Drain.
package memory

import (
	"context"
	"errors"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/dispatchops/dispatch"
)

// ErrSimulatedFailure is returned for dispatch calls failed on purpose.
var ErrSimulatedFailure = errors.New("memory: simulated transport failure")

// Transport is an in-memory transport. The zero value is not usable; call New.
type Transport struct {
	mu        sync.Mutex
	calls     int
	attempts  map[string]int
	failOnce  func(dispatch.Operation) bool
	failed    map[string]bool
	delivered map[string][]dispatch.Operation
	queues    map[string][]dispatch.Operation
}

// New creates an empty transport.
func New() *Transport {
	return &Transport{
		attempts:  make(map[string]int),
		failed:    make(map[string]bool),
		delivered: make(map[string][]dispatch.Operation),
		queues:    make(map[string][]dispatch.Operation),
	}
}

// FailOnce makes the first dispatch of every message id matched by match
// fail with ErrSimulatedFailure. A nil match selects every message.
func (t *Transport) FailOnce(match func(dispatch.Operation) bool) {
	if match == nil {
		match = func(dispatch.Operation) bool { return true }
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.failOnce = match
}

// Dispatch delivers ops.
func (t *Transport) Dispatch(ctx context.Context, ops []dispatch.Operation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.calls++
	for _, op := range ops {
		t.attempts[op.MessageID]++
	}

	if t.failOnce != nil {
		fail := false
		for _, op := range ops {
			if t.failOnce(op) && !t.failed[op.MessageID] {
				t.failed[op.MessageID] = true
				fail = true
			}
		}
		if fail {
			return ErrSimulatedFailure
		}
	}

	for _, op := range ops {
		t.delivered[op.Destination] = append(t.delivered[op.Destination], op)
		t.queues[op.Destination] = append(t.queues[op.Destination], op)
	}
	return nil
}

// Drain removes every queued operation for destination and passes each to
// fn, running at most concurrency calls at once. It returns the first error
// from fn; operations not yet started are dropped in that case.
func (t *Transport) Drain(ctx context.Context, destination string, concurrency int, fn func(context.Context, dispatch.Operation) error) error {
	t.mu.Lock()
	queued := t.queues[destination]
	delete(t.queues, destination)
	t.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for _, op := range queued {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, op)
		})
	}
	return g.Wait()
}

// Delivered returns the operations delivered to destination, in order.
func (t *Transport) Delivered(destination string) []dispatch.Operation {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.delivered[destination])
}

// Attempts returns how many dispatch calls included messageID.
func (t *Transport) Attempts(messageID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.attempts[messageID]
}

// Calls returns the number of dispatch calls received.
func (t *Transport) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}
