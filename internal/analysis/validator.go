package analysis

import (
	"encoding/json"
	"strings"
)

// IsWellFormedJSON is a cheap pre-flight filter run before typed decoding.
// Upstream truncation is the dominant failure mode for long generations, and
// an unbalanced scan gives an actionable "incomplete response" classification
// that a typed decode error would not.
func IsWellFormedJSON(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}

	if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
		return false
	}

	braceCount := 0
	bracketCount := 0
	inString := false
	escaped := false

	for _, c := range trimmed {
		if escaped {
			escaped = false
			continue
		}

		if c == '\\' {
			escaped = true
			continue
		}

		if c == '"' {
			inString = !inString
			continue
		}

		if !inString {
			switch c {
			case '{':
				braceCount++
			case '}':
				braceCount--
			case '[':
				bracketCount++
			case ']':
				bracketCount--
			}
		}
	}

	if braceCount != 0 || bracketCount != 0 {
		return false
	}

	// Structural parse cross-check to catch subtle errors the scan misses.
	var tree interface{}
	return json.Unmarshal([]byte(trimmed), &tree) == nil
}
