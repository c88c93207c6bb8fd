// Package endpoint hosts message handlers on top of a transport and routes
// every outgoing dispatch through the configured dispatch retries.
//
// Processing an incoming message is one unit of work:
//
//	BeginIncoming -> handler -> flush batched sends as one dispatch call
//
// Sends made by a handler with RequireImmediateDispatch leave right away as
// their own immediate dispatch call. Other sends are collected and flushed
// together once the handler returns successfully, so they are classified
// as batch.
//
// Sends made outside of message handling (Endpoint.Send and Publish) get an
// override scope of their own and are dispatched right away.
package endpoint
