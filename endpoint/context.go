package endpoint

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonwraymond/dispatchops/dispatch"
)

// HandlerContext lets a handler send messages as part of its unit of work.
type HandlerContext struct {
	endpoint *Endpoint
	incoming Message

	mu      sync.Mutex
	pending []dispatch.Operation
}

// MessageID returns the id of the message being handled.
func (hc *HandlerContext) MessageID() string {
	return hc.incoming.ID
}

// Send sends a message. It is dispatched with the other batched sends after
// the handler returns, unless RequireImmediateDispatch is given.
func (hc *HandlerContext) Send(ctx context.Context, messageType string, body []byte, opts ...SendOption) error {
	o := collect(opts)
	op, err := hc.endpoint.operation(messageType, body, o)
	if err != nil {
		return err
	}
	op.Headers[HeaderOriginatingID] = hc.incoming.ID
	return hc.enqueue(ctx, op)
}

// Reply sends a message to the reply address of the incoming message.
func (hc *HandlerContext) Reply(ctx context.Context, messageType string, body []byte, opts ...SendOption) error {
	replyTo := hc.incoming.Header(HeaderReplyTo)
	if replyTo == "" {
		return fmt.Errorf("%w: %s", ErrNoReplyAddress, hc.incoming.ID)
	}

	correlation := hc.incoming.Header(HeaderCorrelationID)
	if correlation == "" {
		correlation = hc.incoming.ID
	}

	opts = append(opts, ToDestination(replyTo), WithHeader(HeaderCorrelationID, correlation))
	return hc.Send(ctx, messageType, body, opts...)
}

func (hc *HandlerContext) enqueue(ctx context.Context, op dispatch.Operation) error {
	if op.Isolated() {
		return hc.endpoint.send(dispatch.BeginOutgoing(ctx), []dispatch.Operation{op})
	}

	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.pending = append(hc.pending, op)
	return nil
}

func (hc *HandlerContext) drain() []dispatch.Operation {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	ops := hc.pending
	hc.pending = nil
	return ops
}
