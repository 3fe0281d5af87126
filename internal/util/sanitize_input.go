package util

import (
	"html"
	"strings"
)

// SanitizeInput escapes HTML/script-like characters
func SanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return html.EscapeString(s)
}

// NormalizeEmail trims surrounding whitespace from a login email. The
// credential stores perform exact matching, so no case folding happens here.
func NormalizeEmail(s string) string {
	return strings.TrimSpace(s)
}

// ContainsSuspicious flags script-injection looking input before it reaches
// logs or audit sinks.
func ContainsSuspicious(s string) bool {
	badChars := []string{"<", ">", "$", "{", "}", "script", "onerror", "onload"}
	lowered := strings.ToLower(s)
	for _, c := range badChars {
		if strings.Contains(lowered, c) {
			return true
		}
	}
	return false
}
