package retrieval

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeSnippet strips the search index's emphasis markup and whitespace
// noise from a raw excerpt. Idempotent; empty input yields empty output.
func NormalizeSnippet(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "<em>", "")
	s = strings.ReplaceAll(s, "</em>", "")
	// The index escapes forward slashes in snippet text.
	s = strings.ReplaceAll(s, "&#x2F;", "/")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
