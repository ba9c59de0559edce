package middleware

import (
	"strings"
)

// Input validation and sanitization utilities

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// SanitizeAddresses cleans each submitted address in place of the original.
// Blank entries stay, so positions are never shifted. The result is never nil.
func SanitizeAddresses(in []string) []string {
	out := make([]string, len(in))
	for i, a := range in {
		out[i] = SanitizeString(a)
	}
	return out
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}
