package providers

import (
	"regexp"
	"strings"
)

// NoExplanationFound is the sentinel explanation used when a completion
// carries no prose outside its code block.
const NoExplanationFound = "No explanation found in the response"

// fencePattern matches a triple-backtick fenced block with an optional
// language tag. (?s) lets the interior span newlines; the lazy quantifier
// keeps the match leftmost and minimal.
var fencePattern = regexp.MustCompile("(?s)```(?:\\w+)?\\n(.+?)\\n```")

// ExtractCode splits one freeform completion into a code artifact and a
// prose explanation. Only the first fenced block counts as the code;
// downstream callers assume exactly one code artifact per call, so later
// blocks stay inside the explanation. When no fence is present the entire
// text is treated as code and the explanation falls back to the sentinel.
func ExtractCode(text string) (code, explanation string) {
	loc := fencePattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return text, NoExplanationFound
	}

	code = text[loc[2]:loc[3]]
	explanation = strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
	if explanation == "" {
		explanation = NoExplanationFound
	}
	return code, explanation
}
