package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConnector(t *testing.T, id ProviderID, key string, srv *httptest.Server) *Connector {
	t.Helper()
	profile, err := Resolve(id)
	require.NoError(t, err)
	conn := NewConnector(profile, key)
	if srv != nil {
		conn = conn.WithBaseURL(srv.URL).WithHTTPClient(srv.Client())
	}
	return conn
}

func TestBuildRequestOpenAIStyle(t *testing.T) {
	conn := newTestConnector(t, ProviderOpenAI, "sk-test", nil)

	method, target, header, body, err := conn.BuildRequest(GenerationRequest{
		Capability: CapabilityCode,
		Prompt:     "write a loop",
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", target)
	assert.Equal(t, "Bearer sk-test", header.Get("Authorization"))
	assert.Equal(t, "application/json", header.Get("Content-Type"))

	var payload struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		Temperature float64 `json:"temperature"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "gpt-5", payload.Model)
	require.Len(t, payload.Messages, 1)
	assert.Equal(t, "user", payload.Messages[0].Role)
	assert.Equal(t, "write a loop", payload.Messages[0].Content)
	assert.Equal(t, 0.3, payload.Temperature)
}

func TestBuildRequestGemini(t *testing.T) {
	conn := newTestConnector(t, ProviderGemini, "g-key", nil)

	_, target, header, body, err := conn.BuildRequest(GenerationRequest{
		Capability: CapabilityChat,
		Prompt:     "hello",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://generativelanguage.googleapis.com/v1/models/gemini-pro:generateContent?key=g-key", target)
	assert.Empty(t, header.Get("Authorization"))

	var payload struct {
		Contents []struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
		GenerationConfig struct {
			Temperature float64 `json:"temperature"`
		} `json:"generationConfig"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Len(t, payload.Contents, 1)
	require.Len(t, payload.Contents[0].Parts, 1)
	assert.Equal(t, "hello", payload.Contents[0].Parts[0].Text)
	assert.Equal(t, 0.7, payload.GenerationConfig.Temperature)
}

func TestBuildRequestClaude(t *testing.T) {
	conn := newTestConnector(t, ProviderClaude, "sk-ant", nil)

	_, target, header, _, err := conn.BuildRequest(GenerationRequest{
		Capability: CapabilityCode,
		Prompt:     "fix this",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://api.anthropic.com/v1/messages", target)
	assert.Equal(t, "sk-ant", header.Get("x-api-key"))
	assert.Equal(t, "2023-06-01", header.Get("anthropic-version"))
	assert.Empty(t, header.Get("Authorization"))
}

func TestBuildRequestExplicitTemperature(t *testing.T) {
	conn := newTestConnector(t, ProviderDeepSeek, "k", nil)

	_, _, _, body, err := conn.BuildRequest(GenerationRequest{
		Capability:  CapabilityCode,
		Prompt:      "p",
		Temperature: 0.9,
	})
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, 0.9, payload["temperature"])
}

func TestGenerateParsesChatCompletions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer k1", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{
					"role":    "assistant",
					"content": "Here:\n```js\nfunction sum(a,b){return a+b;}\n```\nThis adds two numbers.",
				}},
			},
		})
	}))
	defer srv.Close()

	conn := newTestConnector(t, ProviderDeepSeek, "k1", srv)
	res := conn.Generate(context.Background(), GenerationRequest{
		Capability: CapabilityCode,
		Prompt:     "sum two numbers",
	})

	require.Nil(t, res.Err)
	assert.Equal(t, "function sum(a,b){return a+b;}", res.Code)
	assert.Equal(t, "Here:\n\nThis adds two numbers.", res.Explanation)
	assert.Equal(t, ProviderDeepSeek, res.Provider)
}

func TestGenerateParsesGeminiCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-pro-code:generateContent", r.URL.Path)
		assert.Equal(t, "g-key", r.URL.Query().Get("key"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{
					"parts": []map[string]any{{"text": "```py\nx = 1\n```\nAssigns one."}},
				}},
			},
		})
	}))
	defer srv.Close()

	conn := newTestConnector(t, ProviderGemini, "g-key", srv)
	res := conn.Generate(context.Background(), GenerationRequest{
		Capability: CapabilityCode,
		Prompt:     "assign",
	})

	require.Nil(t, res.Err)
	assert.Equal(t, "x = 1", res.Code)
	assert.Equal(t, "Assigns one.", res.Explanation)
}

func TestGenerateParsesClaudeContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("x-api-key"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": "plain answer without code"},
			},
		})
	}))
	defer srv.Close()

	conn := newTestConnector(t, ProviderClaude, "sk-ant", srv)
	res := conn.Generate(context.Background(), GenerationRequest{
		Capability: CapabilityChat,
		Prompt:     "explain",
	})

	require.Nil(t, res.Err)
	assert.Empty(t, res.Code)
	assert.Equal(t, "plain answer without code", res.Explanation)
}

func TestGenerateNon2xxBecomesNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "invalid api key"},
		})
	}))
	defer srv.Close()

	conn := newTestConnector(t, ProviderOpenAI, "bad", srv)
	res := conn.Generate(context.Background(), GenerationRequest{
		Capability: CapabilityCode,
		Prompt:     "p",
	})

	require.NotNil(t, res.Err)
	assert.Equal(t, http.StatusUnauthorized, res.Err.Status)
	assert.Equal(t, "invalid api key", res.Err.Detail)
	assert.Equal(t, ProviderOpenAI, res.Err.Provider)
}

func TestGenerateTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	conn := newTestConnector(t, ProviderGrok, "k", nil).WithBaseURL(srv.URL)
	res := conn.Generate(context.Background(), GenerationRequest{
		Capability: CapabilityCode,
		Prompt:     "p",
	})

	require.NotNil(t, res.Err)
	assert.Zero(t, res.Err.Status)
	assert.NotEmpty(t, res.Err.Detail)
}

// An un-navigable response shape degrades to the raw body as code instead
// of failing the call.
func TestParseResponseUnknownShape(t *testing.T) {
	conn := newTestConnector(t, ProviderOpenAI, "k", nil)

	res := conn.ParseResponse(CapabilityCode, []byte(`{"unexpected":"shape"}`))
	require.Nil(t, res.Err)
	assert.Equal(t, `{"unexpected":"shape"}`, res.Code)
	assert.Equal(t, NoExplanationFound, res.Explanation)
}
