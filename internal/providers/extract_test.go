package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name            string
		text            string
		wantCode        string
		wantExplanation string
	}{
		{
			name:            "fence with surrounding prose",
			text:            "Here:\n```js\nfunction sum(a,b){return a+b;}\n```\nThis adds two numbers.",
			wantCode:        "function sum(a,b){return a+b;}",
			wantExplanation: "Here:\n\nThis adds two numbers.",
		},
		{
			name:            "fence without language tag",
			text:            "Intro.\n```\nprint(1)\n```\nOutro.",
			wantCode:        "print(1)",
			wantExplanation: "Intro.\n\nOutro.",
		},
		{
			name:            "no fence returns full text as code",
			text:            "just some plain text with no code block",
			wantCode:        "just some plain text with no code block",
			wantExplanation: NoExplanationFound,
		},
		{
			name:            "only first fence wins",
			text:            "```go\nfirst()\n```\nbetween\n```go\nsecond()\n```",
			wantCode:        "first()",
			wantExplanation: "between\n```go\nsecond()\n```",
		},
		{
			name:            "fence with no prose",
			text:            "```py\nx = 1\n```",
			wantCode:        "x = 1",
			wantExplanation: NoExplanationFound,
		},
		{
			name:            "multi-line interior preserved byte for byte",
			text:            "```go\nfunc a() {\n\treturn\n}\n```\ndone",
			wantCode:        "func a() {\n\treturn\n}",
			wantExplanation: "done",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, explanation := ExtractCode(tt.text)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantExplanation, explanation)
		})
	}
}

// Re-wrapping an extracted pair in a fence and extracting again must
// reproduce the code byte for byte.
func TestExtractCodeIdempotent(t *testing.T) {
	original := "func main() {\n\tfmt.Println(\"hi\")\n}"
	prose := "A tiny program."

	wrapped := prose + "\n```go\n" + original + "\n```"
	code, explanation := ExtractCode(wrapped)

	assert.Equal(t, original, code)
	assert.Equal(t, prose, explanation)
}
