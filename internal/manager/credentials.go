package manager

import (
	"context"
	"fmt"

	"nexusai/internal/providers"
)

// CredentialStore persists the ProviderID→key map. Connectors are never
// serialized; loading rebuilds them by replaying SetCredential.
type CredentialStore interface {
	Save(ctx context.Context, credentials map[providers.ProviderID]string) error
	Load(ctx context.Context) (map[providers.ProviderID]string, error)
}

// SaveCredentials writes the session's credential map to the store.
func (m *Manager) SaveCredentials(ctx context.Context, store CredentialStore) error {
	m.mu.Lock()
	snapshot := make(map[providers.ProviderID]string, len(m.credentials))
	for id, key := range m.credentials {
		snapshot[id] = key
	}
	m.mu.Unlock()

	if err := store.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	m.logger.Info("credentials saved", "count", fmt.Sprintf("%d", len(snapshot)))
	return nil
}

// LoadCredentials reads the store and replays SetCredential for each
// entry in registry order, so side effects such as active-provider
// adoption match interactive key entry exactly.
func (m *Manager) LoadCredentials(ctx context.Context, store CredentialStore) error {
	loaded, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}

	for _, id := range providers.AllProviders() {
		key, ok := loaded[id]
		if !ok || key == "" {
			continue
		}
		if err := m.SetCredential(id, key); err != nil {
			return err
		}
	}
	return nil
}
