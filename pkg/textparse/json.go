// Package textparse extracts structured data from free-form model output.
package textparse

import "encoding/json"

// ExtractJSONObject returns the first syntactically valid JSON object
// embedded in s. Model completions often wrap JSON in prose or markdown
// fences, and the prose itself may contain stray braces, so the scanner
// walks brace depth with full string and escape awareness instead of
// slicing between the first '{' and last '}'. Candidate opening braces are
// tried left to right until one yields a balanced span that json.Valid
// accepts.
func ExtractJSONObject(s string) (string, bool) {
	for start := 0; start < len(s); start++ {
		if s[start] != '{' {
			continue
		}
		if end, ok := scanBalanced(s, start); ok {
			candidate := s[start:end]
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}
	}
	return "", false
}

// scanBalanced walks from the opening brace at start and returns the index
// just past the matching closing brace.
func scanBalanced(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}
