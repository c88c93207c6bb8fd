package endpoint

import "errors"

var (
	// ErrNilTransport indicates New was called without a transport.
	ErrNilTransport = errors.New("endpoint: transport is nil")

	// ErrNoHandler indicates an incoming message type has no handler.
	ErrNoHandler = errors.New("endpoint: no handler for message type")

	// ErrNoRoute indicates a send with no destination for its message type.
	ErrNoRoute = errors.New("endpoint: no route for message type")

	// ErrNoReplyAddress indicates a reply to a message without a reply-to header.
	ErrNoReplyAddress = errors.New("endpoint: incoming message has no reply address")
)
