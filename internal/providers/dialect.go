package providers

// authStyle selects how the API key is attached to a request.
type authStyle int

const (
	authBearer authStyle = iota // Authorization: Bearer <key>
	authHeader                  // key in a custom header
	authQuery                   // key as a URL query parameter
)

// bodyShape selects the JSON request body layout.
type bodyShape int

const (
	bodyChatMessages bodyShape = iota // {"model", "messages": [{role, content}], "temperature"}
	bodyContentParts                  // {"contents": [{"parts": [{text}]}], "generationConfig"}
)

// dialect captures the three axes on which provider wire formats actually
// differ: authentication, body layout, and the request/response paths.
// Everything else about a provider call is shared, so one generic
// Connector driven by this table replaces per-provider request code.
type dialect struct {
	auth       authStyle
	authName   string // header name or query parameter name
	auth2      string // optional second fixed header as "name: value"
	auth2Value string

	body bodyShape

	// requestPath is appended to the endpoint base. A %s placeholder is
	// substituted with the capability's model name.
	requestPath string

	// textPath is the gjson path to the generated text in the response.
	textPath string
	// errPath is the gjson path to the provider's error detail.
	errPath string
}

var dialects = map[ProviderID]dialect{
	ProviderDeepSeek: openAIStyleDialect,
	ProviderOpenAI:   openAIStyleDialect,
	ProviderGrok:     openAIStyleDialect,
	ProviderGemini: {
		auth:        authQuery,
		authName:    "key",
		body:        bodyContentParts,
		requestPath: "/models/%s:generateContent",
		textPath:    "candidates.0.content.parts.0.text",
		errPath:     "error.message",
	},
	ProviderClaude: {
		auth:        authHeader,
		authName:    "x-api-key",
		auth2:       "anthropic-version",
		auth2Value:  "2023-06-01",
		body:        bodyChatMessages,
		requestPath: "/messages",
		textPath:    "content.0.text",
		errPath:     "error.message",
	},
}

// openAIStyleDialect covers every provider speaking the chat/completions
// wire format with bearer auth.
var openAIStyleDialect = dialect{
	auth:        authBearer,
	authName:    "Authorization",
	body:        bodyChatMessages,
	requestPath: "/chat/completions",
	textPath:    "choices.0.message.content",
	errPath:     "error.message",
}
