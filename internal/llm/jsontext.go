package llm

import "strings"

// FindJSONObject returns the span from the first '{' to the last '}' in text.
// Models often wrap JSON in prose or code fences; when no braces are found the
// whole text is returned.
func FindJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return text
	}
	return text[start : end+1]
}
