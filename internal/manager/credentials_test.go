package manager

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexusai/internal/providers"
)

type memStore struct {
	saved   map[providers.ProviderID]string
	loadErr error
	saveErr error
}

func (s *memStore) Save(_ context.Context, credentials map[providers.ProviderID]string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = credentials
	return nil
}

func (s *memStore) Load(_ context.Context) (map[providers.ProviderID]string, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.saved, nil
}

func TestSaveCredentials_SnapshotsKeysOnly(t *testing.T) {
	m := New(WithFactory(newStubFactory()))
	require.NoError(t, m.SetCredential(providers.ProviderDeepSeek, "k1"))
	require.NoError(t, m.SetCredential(providers.ProviderClaude, "k5"))

	store := &memStore{}
	require.NoError(t, m.SaveCredentials(context.Background(), store))

	assert.Equal(t, map[providers.ProviderID]string{
		providers.ProviderDeepSeek: "k1",
		providers.ProviderClaude:   "k5",
	}, store.saved)
}

func TestLoadCredentials_ReplaysInRegistryOrder(t *testing.T) {
	store := &memStore{saved: map[providers.ProviderID]string{
		providers.ProviderOpenAI: "k3",
		providers.ProviderGemini: "k2",
	}}

	m := New(WithFactory(newStubFactory()))
	require.NoError(t, m.LoadCredentials(context.Background(), store))

	// replay order is the registry order, so Gemini is activated first
	// and adopted as active
	assert.Equal(t, providers.ProviderGemini, m.ActiveProvider())
	assert.Equal(t, []providers.ProviderID{providers.ProviderGemini, providers.ProviderOpenAI}, m.AvailableProviders())
}

func TestLoadCredentials_SkipsEmptyKeys(t *testing.T) {
	store := &memStore{saved: map[providers.ProviderID]string{
		providers.ProviderDeepSeek: "",
		providers.ProviderGrok:     "k4",
	}}

	m := New(WithFactory(newStubFactory()))
	require.NoError(t, m.LoadCredentials(context.Background(), store))

	assert.Equal(t, []providers.ProviderID{providers.ProviderGrok}, m.AvailableProviders())
}

func TestLoadCredentials_StoreError(t *testing.T) {
	boom := errors.New("disk gone")
	store := &memStore{loadErr: boom}

	m := New(WithFactory(newStubFactory()))
	err := m.LoadCredentials(context.Background(), store)
	assert.ErrorIs(t, err, boom)
}

func TestSaveCredentials_StoreError(t *testing.T) {
	boom := errors.New("disk full")
	store := &memStore{saveErr: boom}

	m := New(WithFactory(newStubFactory()))
	require.NoError(t, m.SetCredential(providers.ProviderOpenAI, "k3"))
	err := m.SaveCredentials(context.Background(), store)
	assert.ErrorIs(t, err, boom)
}
