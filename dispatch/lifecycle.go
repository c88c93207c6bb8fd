package dispatch

import "context"

// Step is one stage of a host pipeline that only needs the context.
type Step func(ctx context.Context) error

// BeginIncoming starts the unit of work for an incoming message. It installs
// a fresh Scope and marks the context as having an incoming origin.
func BeginIncoming(ctx context.Context) context.Context {
	return context.WithValue(ctx, unitOfWorkKey, &unitOfWork{scope: NewScope(), incoming: true})
}

// BeginOutgoing runs before an outgoing operation is routed. When the context
// has no incoming origin (an ambient send outside message handling) it
// installs a fresh Scope; otherwise ctx is returned unchanged so the scope
// of the incoming message stays in effect.
func BeginOutgoing(ctx context.Context) context.Context {
	if HasIncomingOrigin(ctx) {
		return ctx
	}
	return WithScope(ctx, NewScope())
}

// IncomingStep wraps next so it runs inside a new incoming unit of work.
func IncomingStep(next Step) Step {
	return func(ctx context.Context) error {
		return next(BeginIncoming(ctx))
	}
}

// OutgoingStep wraps next so it runs with a scope installed for ambient sends.
func OutgoingStep(next Step) Step {
	return func(ctx context.Context) error {
		return next(BeginOutgoing(ctx))
	}
}
