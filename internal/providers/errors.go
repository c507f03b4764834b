package providers

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownProvider is returned when a provider id is outside the
	// closed set. This is a configuration error and is never retried.
	ErrUnknownProvider = errors.New("unknown provider")
)

func unknownProvider(id ProviderID) error {
	return fmt.Errorf("%w: %s", ErrUnknownProvider, id)
}

// NetworkError reports a transport or HTTP failure while talking to a
// provider. It is carried inside GenerationResult rather than returned as
// an error so that all capability calls share one success/failure shape.
type NetworkError struct {
	Provider ProviderID `json:"provider_id"`
	Status   int        `json:"status,omitempty"` // zero for transport-level failures
	Detail   string     `json:"detail"`
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("provider %s returned status %d: %s", e.Provider, e.Status, e.Detail)
	}
	return fmt.Sprintf("provider %s request failed: %s", e.Provider, e.Detail)
}
