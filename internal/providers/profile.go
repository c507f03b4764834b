package providers

// ProviderID identifies one of the supported AI backends.
type ProviderID string

const (
	ProviderDeepSeek ProviderID = "model1"
	ProviderGemini   ProviderID = "model2"
	ProviderOpenAI   ProviderID = "model3"
	ProviderGrok     ProviderID = "model4"
	ProviderClaude   ProviderID = "model5"
)

// Capability is the class of operation requested of a provider. Each
// capability maps to a different model name per provider.
type Capability string

const (
	CapabilityCode   Capability = "code"
	CapabilityChat   Capability = "chat"
	CapabilityVision Capability = "vision"
)

const (
	codeTemperature = 0.3
	chatTemperature = 0.7
)

// Profile is the static description of one backend: identity, endpoint
// and the per-capability model names. Profiles are built once at package
// init and never mutated.
type Profile struct {
	ID          ProviderID
	DisplayName string
	Endpoint    string
	Models      map[Capability]string
}

// Model returns the model name serving the given capability.
func (p *Profile) Model(c Capability) string {
	return p.Models[c]
}

// Temperature returns the default sampling temperature for a capability
// class: code generation runs cooler than chat/vision.
func (p *Profile) Temperature(c Capability) float64 {
	if c == CapabilityCode {
		return codeTemperature
	}
	return chatTemperature
}

var profiles = map[ProviderID]*Profile{
	ProviderDeepSeek: {
		ID:          ProviderDeepSeek,
		DisplayName: "DeepSeek",
		Endpoint:    "https://api.deepseek.com/v1",
		Models: map[Capability]string{
			CapabilityCode:   "deepseek-coder",
			CapabilityChat:   "deepseek-chat",
			CapabilityVision: "deepseek-vision",
		},
	},
	ProviderGemini: {
		ID:          ProviderGemini,
		DisplayName: "Gemini",
		Endpoint:    "https://generativelanguage.googleapis.com/v1",
		Models: map[Capability]string{
			CapabilityCode:   "gemini-pro-code",
			CapabilityChat:   "gemini-pro",
			CapabilityVision: "gemini-pro-vision",
		},
	},
	ProviderOpenAI: {
		ID:          ProviderOpenAI,
		DisplayName: "OpenAI",
		Endpoint:    "https://api.openai.com/v1",
		Models: map[Capability]string{
			CapabilityCode:   "gpt-5",
			CapabilityChat:   "gpt-5",
			CapabilityVision: "gpt-5-vision",
		},
	},
	ProviderGrok: {
		ID:          ProviderGrok,
		DisplayName: "Grok",
		Endpoint:    "https://api.grok.com/v1",
		Models: map[Capability]string{
			CapabilityCode:   "grok-2",
			CapabilityChat:   "grok-2",
			CapabilityVision: "grok-2-vision",
		},
	},
	ProviderClaude: {
		ID:          ProviderClaude,
		DisplayName: "Claude",
		Endpoint:    "https://api.anthropic.com/v1",
		Models: map[Capability]string{
			CapabilityCode:   "claude-3-opus",
			CapabilityChat:   "claude-3-opus",
			CapabilityVision: "claude-3-opus",
		},
	},
}

// AllProviders returns the closed set of provider ids in a fixed order.
// Callers that need deterministic iteration over providers use this
// instead of ranging over a map.
func AllProviders() []ProviderID {
	return []ProviderID{
		ProviderDeepSeek,
		ProviderGemini,
		ProviderOpenAI,
		ProviderGrok,
		ProviderClaude,
	}
}

// Resolve looks up the profile for a provider id. Ids outside the closed
// set fail with ErrUnknownProvider.
func Resolve(id ProviderID) (*Profile, error) {
	profile, ok := profiles[id]
	if !ok {
		return nil, unknownProvider(id)
	}
	return profile, nil
}
