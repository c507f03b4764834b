package manager

import "errors"

var (
	// ErrProviderNotActivated is returned when an operation names a
	// provider that has no stored credential in this session.
	ErrProviderNotActivated = errors.New("provider not activated")

	// ErrNoActiveProvider is returned when a capability call neither
	// names a provider nor finds an active one in the session.
	ErrNoActiveProvider = errors.New("no active provider")
)
