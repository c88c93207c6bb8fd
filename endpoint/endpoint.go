package endpoint

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jonwraymond/dispatchops/dispatch"
	"github.com/jonwraymond/dispatchops/observe"
)

// Transport delivers dispatch calls.
type Transport interface {
	Dispatch(ctx context.Context, ops []dispatch.Operation) error
}

// Handler processes one incoming message.
type Handler func(ctx context.Context, hc *HandlerContext, msg Message) error

// Endpoint receives messages, runs handlers and dispatches their output.
//
// Contract:
//   - Concurrency: Process, Send and Publish are safe for concurrent use once
//     all handlers are registered.
//   - Errors: handler and dispatch errors are returned unchanged.
type Endpoint struct {
	name     string
	send     dispatch.DispatchFunc
	logger   observe.Logger
	retries  *dispatch.Retries
	extra    []dispatch.Middleware
	routes   map[string]string
	newID    func() string
	mu       sync.RWMutex
	handlers map[string]Handler
}

// Option configures an Endpoint.
type Option func(*Endpoint)

// WithRetries applies r to every dispatch call.
func WithRetries(r *dispatch.Retries) Option {
	return func(e *Endpoint) {
		e.retries = r
	}
}

// WithMiddleware adds dispatch middleware inside the retry middleware, so
// it runs once per attempt.
func WithMiddleware(mws ...dispatch.Middleware) Option {
	return func(e *Endpoint) {
		e.extra = append(e.extra, mws...)
	}
}

// WithRoute sends messages of messageType to destination.
func WithRoute(messageType, destination string) Option {
	return func(e *Endpoint) {
		e.routes[messageType] = destination
	}
}

// WithLogger sets the endpoint logger.
func WithLogger(l observe.Logger) Option {
	return func(e *Endpoint) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an endpoint named name. The name is the reply address of every
// message it sends.
func New(name string, transport Transport, opts ...Option) (*Endpoint, error) {
	if transport == nil {
		return nil, ErrNilTransport
	}

	e := &Endpoint{
		name:     name,
		logger:   observe.NopLogger(),
		routes:   make(map[string]string),
		newID:    uuid.NewString,
		handlers: make(map[string]Handler),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.retries == nil {
		r, err := dispatch.New(dispatch.WithEndpointName(name), dispatch.WithLogger(e.logger))
		if err != nil {
			return nil, err
		}
		e.retries = r
	}

	mws := append([]dispatch.Middleware{e.retries.Middleware()}, e.extra...)
	e.send = dispatch.Chain(mws...)(transport.Dispatch)
	e.logger = e.logger.With(observe.Field{Key: "endpoint", Value: name})
	return e, nil
}

// Name returns the endpoint name.
func (e *Endpoint) Name() string {
	return e.name
}

// Handle registers h for messageType, replacing any earlier handler.
func (e *Endpoint) Handle(messageType string, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[messageType] = h
}

func (e *Endpoint) handler(messageType string) (Handler, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	h, ok := e.handlers[messageType]
	return h, ok
}

// Process handles one incoming message as a unit of work. Batched sends are
// dispatched after the handler succeeds; they are discarded if it fails.
func (e *Endpoint) Process(ctx context.Context, msg Message) error {
	h, ok := e.handler(msg.Type)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoHandler, msg.Type)
	}

	ctx = dispatch.BeginIncoming(ctx)
	hc := &HandlerContext{endpoint: e, incoming: msg}

	if err := h(ctx, hc, msg); err != nil {
		e.logger.Error(ctx, "handler failed",
			observe.Field{Key: "message_id", Value: msg.ID},
			observe.Field{Key: "message_type", Value: msg.Type},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return err
	}

	pending := hc.drain()
	if len(pending) == 0 {
		return nil
	}
	return e.send(ctx, pending)
}

// Send dispatches a message outside of message handling. Unless
// RequireImmediateDispatch is given the call is classified as batch.
func (e *Endpoint) Send(ctx context.Context, messageType string, body []byte, opts ...SendOption) error {
	op, err := e.operation(messageType, body, collect(opts))
	if err != nil {
		return err
	}
	return e.send(dispatch.BeginOutgoing(ctx), []dispatch.Operation{op})
}

// Publish dispatches an event to the destination named after its type.
func (e *Endpoint) Publish(ctx context.Context, eventType string, body []byte, opts ...SendOption) error {
	return e.Send(ctx, eventType, body, append([]SendOption{ToDestination(eventType)}, opts...)...)
}

func (e *Endpoint) operation(messageType string, body []byte, o sendOptions) (dispatch.Operation, error) {
	dest := o.destination
	if dest == "" {
		dest = e.routes[messageType]
	}
	if dest == "" {
		return dispatch.Operation{}, fmt.Errorf("%w: %q", ErrNoRoute, messageType)
	}

	headers := map[string]string{HeaderReplyTo: e.name}
	for k, v := range o.headers {
		headers[k] = v
	}

	op := dispatch.Operation{
		MessageID:   e.newID(),
		Destination: dest,
		MessageType: messageType,
		Headers:     headers,
		Body:        body,
	}
	if o.immediate {
		op.Consistency = dispatch.ConsistencyIsolated
	}
	return op, nil
}
