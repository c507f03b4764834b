package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const requestTimeout = 30 * time.Second

// GenerationRequest describes a single round trip to a provider. It is
// constructed per call and never persisted.
type GenerationRequest struct {
	Capability  Capability
	Prompt      string
	Temperature float64 // zero means the profile default for the capability
}

// GenerationResult is the normalized outcome of one provider call. When
// Err is nil, Code and Explanation are both populated (sentinel defaults
// are substituted upstream rather than leaving fields empty).
type GenerationResult struct {
	Code        string        `json:"code"`
	Explanation string        `json:"explanation"`
	Provider    ProviderID    `json:"provider_id"`
	Err         *NetworkError `json:"error,omitempty"`
}

// Client is the surface the session manager needs from a connector.
// Tests substitute stub implementations.
type Client interface {
	ID() ProviderID
	Generate(ctx context.Context, req GenerationRequest) *GenerationResult
}

// Connector executes generation requests against one provider. A single
// generic implementation serves every backend; the per-provider dialect
// table supplies the auth style, body shape and wire paths.
type Connector struct {
	profile *Profile
	dialect dialect
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewConnector binds a connector to a profile and API key.
func NewConnector(profile *Profile, apiKey string) *Connector {
	return &Connector{
		profile: profile,
		dialect: dialects[profile.ID],
		apiKey:  apiKey,
		baseURL: profile.Endpoint,
		client: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// WithBaseURL overrides the provider endpoint base.
func (c *Connector) WithBaseURL(base string) *Connector {
	c.baseURL = strings.TrimRight(base, "/")
	return c
}

// WithHTTPClient overrides the HTTP client used for outbound requests.
func (c *Connector) WithHTTPClient(client *http.Client) *Connector {
	c.client = client
	return c
}

// ID returns the provider id this connector is bound to.
func (c *Connector) ID() ProviderID {
	return c.profile.ID
}

// Profile returns the bound provider profile.
func (c *Connector) Profile() *Profile {
	return c.profile
}

// BuildRequest assembles the provider-specific method, URL, headers and
// JSON body for a request. It is deterministic given the profile, key and
// request.
func (c *Connector) BuildRequest(req GenerationRequest) (method, target string, header http.Header, body []byte, err error) {
	model := c.profile.Model(req.Capability)
	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.profile.Temperature(req.Capability)
	}

	path := c.dialect.requestPath
	if strings.Contains(path, "%s") {
		path = fmt.Sprintf(path, model)
	}
	target = c.baseURL + path

	header = http.Header{}
	header.Set("Content-Type", "application/json")
	switch c.dialect.auth {
	case authBearer:
		header.Set(c.dialect.authName, "Bearer "+c.apiKey)
	case authHeader:
		header.Set(c.dialect.authName, c.apiKey)
	case authQuery:
		target += "?" + c.dialect.authName + "=" + url.QueryEscape(c.apiKey)
	}
	if c.dialect.auth2 != "" {
		header.Set(c.dialect.auth2, c.dialect.auth2Value)
	}

	var payload any
	switch c.dialect.body {
	case bodyChatMessages:
		payload = map[string]any{
			"model": model,
			"messages": []map[string]string{
				{"role": "user", "content": req.Prompt},
			},
			"temperature": temperature,
		}
	case bodyContentParts:
		payload = map[string]any{
			"contents": []map[string]any{
				{"parts": []map[string]string{{"text": req.Prompt}}},
			},
			"generationConfig": map[string]any{
				"temperature": temperature,
			},
		}
	}

	body, err = json.Marshal(payload)
	if err != nil {
		return "", "", nil, nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return http.MethodPost, target, header, body, nil
}

// Generate performs one POST round trip to the provider. Transport and
// HTTP failures are reported inside the result, never as an error value
// crossing the connector boundary.
func (c *Connector) Generate(ctx context.Context, req GenerationRequest) *GenerationResult {
	method, target, header, body, err := c.BuildRequest(req)
	if err != nil {
		return c.failure(0, err.Error())
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return c.failure(0, err.Error())
	}
	httpReq.Header = header

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return c.failure(0, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.failure(0, "failed to read response: "+err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := gjson.GetBytes(respBody, c.dialect.errPath).String()
		if detail == "" {
			detail = strings.TrimSpace(string(respBody))
		}
		return c.failure(resp.StatusCode, detail)
	}

	return c.ParseResponse(req.Capability, respBody)
}

// ParseResponse navigates the provider's response shape to the generated
// text and normalizes it. For the code capability the shared extractor
// splits the text into code and explanation; chat and vision return the
// raw text as explanation. A response the parser cannot navigate degrades
// to the raw body as code rather than failing the call.
func (c *Connector) ParseResponse(capability Capability, raw []byte) *GenerationResult {
	text := gjson.GetBytes(raw, c.dialect.textPath).String()
	if text == "" {
		text = strings.TrimSpace(string(raw))
	}

	result := &GenerationResult{Provider: c.profile.ID}
	if capability == CapabilityCode {
		result.Code, result.Explanation = ExtractCode(text)
	} else {
		result.Explanation = text
	}
	return result
}

func (c *Connector) failure(status int, detail string) *GenerationResult {
	return &GenerationResult{
		Provider: c.profile.ID,
		Err: &NetworkError{
			Provider: c.profile.ID,
			Status:   status,
			Detail:   detail,
		},
	}
}
