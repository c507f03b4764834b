package manager

import (
	"fmt"

	"nexusai/internal/providers"
)

// CodeRequest asks for new code generated from free-text requirements.
type CodeRequest struct {
	Requirements string               `json:"requirements"`
	Language     string               `json:"language"`
	Framework    string               `json:"framework,omitempty"`
	IncludeTests bool                 `json:"include_tests,omitempty"`
	IncludeDocs  bool                 `json:"include_docs,omitempty"`
	Optimize     bool                 `json:"optimize,omitempty"`
	Provider     providers.ProviderID `json:"provider_id,omitempty"`
}

// DocsRequest asks for documentation of existing code.
type DocsRequest struct {
	Code     string               `json:"code"`
	Language string               `json:"language"`
	Format   string               `json:"format,omitempty"` // defaults to markdown
	Provider providers.ProviderID `json:"provider_id,omitempty"`
}

// TestsRequest asks for test cases covering existing code.
type TestsRequest struct {
	Code      string               `json:"code"`
	Language  string               `json:"language"`
	Framework string               `json:"framework,omitempty"`
	Provider  providers.ProviderID `json:"provider_id,omitempty"`
}

// FixRequest asks for a bug fix given code and the error it produces.
type FixRequest struct {
	Code         string               `json:"code"`
	Language     string               `json:"language"`
	ErrorMessage string               `json:"error_message"`
	Provider     providers.ProviderID `json:"provider_id,omitempty"`
}

// OptimizeRequest asks for an optimized rewrite of existing code.
type OptimizeRequest struct {
	Code     string               `json:"code"`
	Language string               `json:"language"`
	Target   string               `json:"target,omitempty"` // defaults to performance
	Provider providers.ProviderID `json:"provider_id,omitempty"`
}

func codePrompt(req CodeRequest) string {
	frameworkText := ""
	if req.Framework != "" && req.Framework != "none" {
		frameworkText = fmt.Sprintf(" using the %s framework", req.Framework)
	}
	testText := ""
	if req.IncludeTests {
		testText = "\nInclude comprehensive tests for the code."
	}
	docText := ""
	if req.IncludeDocs {
		docText = "\nInclude detailed documentation and comments."
	}
	optimizeText := ""
	if req.Optimize {
		optimizeText = "\nOptimize the code for performance and efficiency."
	}
	return fmt.Sprintf("Generate %s code%s that meets these requirements:\n%s%s%s%s",
		req.Language, frameworkText, req.Requirements, testText, docText, optimizeText)
}

func docsPrompt(req DocsRequest) string {
	format := req.Format
	if format == "" {
		format = "markdown"
	}
	return fmt.Sprintf("Generate comprehensive documentation in %s format for the following %s code:\n```%s\n%s\n```\n\nInclude:\n1. Overview of what the code does\n2. Explanation of key functions and classes\n3. Usage examples\n4. Parameters and return values\n5. Any dependencies or requirements",
		format, req.Language, req.Language, req.Code)
}

func testsPrompt(req TestsRequest) string {
	frameworkText := ""
	if req.Framework != "" && req.Framework != "none" {
		frameworkText = fmt.Sprintf(" using the %s testing framework", req.Framework)
	}
	return fmt.Sprintf("Generate comprehensive test cases%s for the following %s code:\n```%s\n%s\n```\n\nInclude:\n1. Unit tests for all functions and methods\n2. Edge case testing\n3. Integration tests if applicable\n4. Test setup and teardown code",
		frameworkText, req.Language, req.Language, req.Code)
}

func fixPrompt(req FixRequest) string {
	return fmt.Sprintf("Fix the bugs in the following %s code based on the error message:\n\nError: %s\n\nCode:\n```%s\n%s\n```\n\nProvide:\n1. The fixed code\n2. An explanation of what was wrong\n3. How the fix resolves the issue",
		req.Language, req.ErrorMessage, req.Language, req.Code)
}

func optimizePrompt(req OptimizeRequest) string {
	target := req.Target
	if target == "" {
		target = "performance"
	}
	return fmt.Sprintf("Optimize the following %s code for %s:\n```%s\n%s\n```\n\nProvide:\n1. The optimized code\n2. An explanation of the optimizations made\n3. The expected improvements in %s",
		req.Language, target, req.Language, req.Code, target)
}
