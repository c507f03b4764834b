package manager

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodePrompt(t *testing.T) {
	prompt := codePrompt(CodeRequest{
		Requirements: "serve static files",
		Language:     "javascript",
		Framework:    "express",
		IncludeTests: true,
		IncludeDocs:  true,
		Optimize:     true,
	})

	assert.Contains(t, prompt, "Generate javascript code using the express framework")
	assert.Contains(t, prompt, "serve static files")
	assert.Contains(t, prompt, "Include comprehensive tests for the code.")
	assert.Contains(t, prompt, "Include detailed documentation and comments.")
	assert.Contains(t, prompt, "Optimize the code for performance and efficiency.")
}

func TestCodePrompt_Minimal(t *testing.T) {
	prompt := codePrompt(CodeRequest{Requirements: "sum two numbers", Language: "go"})

	assert.Equal(t, "Generate go code that meets these requirements:\nsum two numbers", prompt)
}

func TestCodePrompt_FrameworkNoneIsOmitted(t *testing.T) {
	prompt := codePrompt(CodeRequest{Requirements: "x", Language: "go", Framework: "none"})

	assert.NotContains(t, prompt, "framework")
}

func TestDocsPrompt_DefaultsToMarkdown(t *testing.T) {
	prompt := docsPrompt(DocsRequest{Code: "def f(): pass", Language: "python"})

	assert.Contains(t, prompt, "documentation in markdown format")
	assert.Contains(t, prompt, "```python\ndef f(): pass\n```")
	assert.Contains(t, prompt, "Usage examples")
}

func TestTestsPrompt(t *testing.T) {
	prompt := testsPrompt(TestsRequest{Code: "def f(): pass", Language: "python", Framework: "pytest"})

	assert.Contains(t, prompt, "test cases using the pytest testing framework")
	assert.Contains(t, prompt, "Edge case testing")
}

func TestFixPrompt(t *testing.T) {
	prompt := fixPrompt(FixRequest{Code: "x = 1/0", Language: "python", ErrorMessage: "ZeroDivisionError"})

	assert.Contains(t, prompt, "Error: ZeroDivisionError")
	assert.Contains(t, prompt, "```python\nx = 1/0\n```")
	assert.Contains(t, prompt, "How the fix resolves the issue")
}

func TestOptimizePrompt_DefaultsToPerformance(t *testing.T) {
	prompt := optimizePrompt(OptimizeRequest{Code: "for i in range(n): pass", Language: "python"})

	assert.Contains(t, prompt, "Optimize the following python code for performance")
	assert.Contains(t, prompt, "expected improvements in performance")
}
