package util

import "strings"

// Coalesce returns the first non-zero value, or the zero value if all are zero.
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// SanitizeEnvValue cleans an environment variable value by removing surrounding
// quotes and trimming whitespace.
func SanitizeEnvValue(s string) string {
	s = strings.TrimSpace(s)
	// Strip matching surrounding quotes (single or double).
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			s = s[1 : len(s)-1]
		}
	}
	return strings.TrimSpace(s)
}
