package endpoint

import (
	"maps"

	"github.com/jonwraymond/dispatchops/dispatch"
)

// Well-known headers.
const (
	HeaderReplyTo       = "reply-to"
	HeaderCorrelationID = "correlation-id"
	HeaderOriginatingID = "originating-message-id"
)

// Message is an incoming message.
type Message struct {
	ID      string
	Type    string
	Headers map[string]string
	Body    []byte
}

// FromOperation converts a delivered operation into an incoming message.
func FromOperation(op dispatch.Operation) Message {
	return Message{
		ID:      op.MessageID,
		Type:    op.MessageType,
		Headers: maps.Clone(op.Headers),
		Body:    op.Body,
	}
}

// Header returns the value of header key.
func (m Message) Header(key string) string {
	return m.Headers[key]
}

type sendOptions struct {
	destination string
	immediate   bool
	headers     map[string]string
}

// SendOption configures a single send.
type SendOption func(*sendOptions)

// RequireImmediateDispatch sends the message right away and on its own
// instead of with the batch of the current unit of work.
func RequireImmediateDispatch() SendOption {
	return func(o *sendOptions) {
		o.immediate = true
	}
}

// ToDestination overrides the routing table for this send.
func ToDestination(destination string) SendOption {
	return func(o *sendOptions) {
		o.destination = destination
	}
}

// WithHeader sets a header on the outgoing message.
func WithHeader(key, value string) SendOption {
	return func(o *sendOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers[key] = value
	}
}

func collect(opts []SendOption) sendOptions {
	var o sendOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
