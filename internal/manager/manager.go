package manager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nexusai/internal/models"
	"nexusai/internal/providers"
	"nexusai/internal/utils"
)

const (
	defaultCode        = "// No code generated"
	defaultExplanation = "No explanation provided"
)

// Recorder receives an audit record for every finished generation
// attempt. Implementations must not block the calling goroutine for
// long; the queue-backed recorder hands off immediately.
type Recorder interface {
	Record(ctx context.Context, rec models.GenerationRecord) error
}

// Manager owns one gateway session: the credential set, the connectors
// built from it, and the active provider used when a call does not name
// one. All state lives behind a single mutex.
type Manager struct {
	mu          sync.Mutex
	factory     providers.Factory
	credentials map[providers.ProviderID]string
	connectors  map[providers.ProviderID]providers.Client
	active      providers.ProviderID
	logger      *utils.Logger
	recorder    Recorder
}

// Option configures a Manager at construction time.
type Option func(*Manager)

// WithFactory substitutes the connector factory. Tests use this to
// inject stub clients.
func WithFactory(f providers.Factory) Option {
	return func(m *Manager) { m.factory = f }
}

// WithRecorder attaches a generation-history recorder.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) { m.recorder = r }
}

// WithLogger substitutes the session logger.
func WithLogger(l *utils.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// New creates an empty session with no credentials and no active
// provider.
func New(opts ...Option) *Manager {
	m := &Manager{
		factory:     providers.NewFactory(),
		credentials: make(map[providers.ProviderID]string),
		connectors:  make(map[providers.ProviderID]providers.Client),
		logger:      utils.NewLogger("manager"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetCredential stores or clears the API key for a provider. A
// non-empty key builds a connector and adopts the provider as active if
// none is set. An empty key removes the connector; if it was active,
// the first remaining activated provider in registry order takes over,
// or the active slot is cleared when none remain. An error is only
// possible on connector construction, never on key validity.
func (m *Manager) SetCredential(id providers.ProviderID, apiKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if apiKey == "" {
		delete(m.credentials, id)
		delete(m.connectors, id)
		if m.active == id {
			m.active = ""
			for _, candidate := range providers.AllProviders() {
				if _, ok := m.connectors[candidate]; ok {
					m.active = candidate
					break
				}
			}
			m.logger.Info("active provider reassigned", "provider", string(m.active))
		}
		return nil
	}

	client, err := m.factory.Create(id, apiKey)
	if err != nil {
		return fmt.Errorf("failed to activate provider %s: %w", id, err)
	}
	m.credentials[id] = apiKey
	m.connectors[id] = client
	if m.active == "" {
		m.active = id
		m.logger.Info("active provider adopted", "provider", string(id))
	}
	return nil
}

// SetActive switches the session's active provider. The provider must
// already hold a credential.
func (m *Manager) SetActive(id providers.ProviderID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.connectors[id]; !ok {
		return fmt.Errorf("%w: %s", ErrProviderNotActivated, id)
	}
	m.active = id
	return nil
}

// ActiveProvider returns the provider used by calls that do not name
// one, or "" when the session has none.
func (m *Manager) ActiveProvider() providers.ProviderID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// AvailableProviders returns the activated providers in registry order.
func (m *Manager) AvailableProviders() []providers.ProviderID {
	m.mu.Lock()
	defer m.mu.Unlock()

	available := make([]providers.ProviderID, 0, len(m.connectors))
	for _, id := range providers.AllProviders() {
		if _, ok := m.connectors[id]; ok {
			available = append(available, id)
		}
	}
	return available
}

// GenerateCode produces new code from free-text requirements.
func (m *Manager) GenerateCode(ctx context.Context, req CodeRequest) (*providers.GenerationResult, error) {
	return m.generate(ctx, req.Provider, providers.CapabilityCode, codePrompt(req))
}

// GenerateDocumentation documents existing code. It runs over the chat
// capability; the documentation text is the primary artifact and is
// surfaced in the result's Code field.
func (m *Manager) GenerateDocumentation(ctx context.Context, req DocsRequest) (*providers.GenerationResult, error) {
	return m.generate(ctx, req.Provider, providers.CapabilityChat, docsPrompt(req))
}

// GenerateTests produces test cases for existing code over the chat
// capability.
func (m *Manager) GenerateTests(ctx context.Context, req TestsRequest) (*providers.GenerationResult, error) {
	return m.generate(ctx, req.Provider, providers.CapabilityChat, testsPrompt(req))
}

// FixBugs repairs code given the error message it produces.
func (m *Manager) FixBugs(ctx context.Context, req FixRequest) (*providers.GenerationResult, error) {
	return m.generate(ctx, req.Provider, providers.CapabilityCode, fixPrompt(req))
}

// OptimizeCode rewrites code toward an optimization target.
func (m *Manager) OptimizeCode(ctx context.Context, req OptimizeRequest) (*providers.GenerationResult, error) {
	return m.generate(ctx, req.Provider, providers.CapabilityCode, optimizePrompt(req))
}

// resolve picks the connector serving a call: the explicitly named
// provider when given, the active one otherwise. It never builds a
// connector and never touches the network.
func (m *Manager) resolve(id providers.ProviderID) (providers.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.active
	}
	if id == "" {
		return nil, ErrNoActiveProvider
	}
	client, ok := m.connectors[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotActivated, id)
	}
	return client, nil
}

func (m *Manager) generate(ctx context.Context, id providers.ProviderID, capability providers.Capability, prompt string) (*providers.GenerationResult, error) {
	client, err := m.resolve(id)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := client.Generate(ctx, providers.GenerationRequest{
		Capability: capability,
		Prompt:     prompt,
	})
	m.record(ctx, client.ID(), capability, prompt, time.Since(start), result.Err)

	if result.Err != nil {
		m.logger.Warn("generation failed",
			"provider", string(client.ID()),
			"capability", string(capability),
			"status", fmt.Sprintf("%d", result.Err.Status))
		return result, nil
	}
	return normalize(result, capability), nil
}

// normalize guarantees the invariant that a successful result carries
// both a code and an explanation field. Chat-capability calls return
// their text as the primary artifact, so it moves into Code; whatever
// field is still empty gets its sentinel default.
func normalize(result *providers.GenerationResult, capability providers.Capability) *providers.GenerationResult {
	if capability != providers.CapabilityCode && result.Code == "" && result.Explanation != "" {
		result.Code = result.Explanation
		result.Explanation = ""
	}
	if result.Code == "" {
		result.Code = defaultCode
	}
	if result.Explanation == "" {
		result.Explanation = defaultExplanation
	}
	return result
}

func (m *Manager) record(ctx context.Context, id providers.ProviderID, capability providers.Capability, prompt string, duration time.Duration, netErr *providers.NetworkError) {
	if m.recorder == nil {
		return
	}
	rec := models.NewGenerationRecord(id, capability, prompt, duration, netErr)
	if err := m.recorder.Record(ctx, rec); err != nil {
		m.logger.Warn("failed to record generation", "error", err.Error())
	}
}
