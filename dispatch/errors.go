package dispatch

import "errors"

// Configuration errors.
var (
	// ErrInvalidArgument indicates a nil strategy or an unknown mode or representation.
	ErrInvalidArgument = errors.New("dispatch: invalid argument")

	// ErrConfigurationFrozen indicates a default was set after dispatching began.
	ErrConfigurationFrozen = errors.New("dispatch: configuration is frozen")
)

// Runtime errors.
var (
	// ErrScopeNotAvailable indicates an override was set on a context without an override scope.
	ErrScopeNotAvailable = errors.New("dispatch: override scope not available")
)
