package providers

// Factory builds connectors for provider ids. The session manager depends
// on this interface so tests can substitute stub connectors.
type Factory interface {
	// Create constructs a connector bound to the given profile and key.
	// Fails with ErrUnknownProvider for an id outside the closed set.
	// No caching happens here; connector lifetime is the caller's job.
	Create(id ProviderID, apiKey string) (Client, error)
}

// ConnectorFactory is the Factory producing real HTTP-backed connectors.
type ConnectorFactory struct{}

// NewFactory returns the default connector factory.
func NewFactory() *ConnectorFactory {
	return &ConnectorFactory{}
}

func (ConnectorFactory) Create(id ProviderID, apiKey string) (Client, error) {
	profile, err := Resolve(id)
	if err != nil {
		return nil, err
	}
	return NewConnector(profile, apiKey), nil
}
