package logger

import "strings"

// MaskContact masks an inquiry contact handle for logging (e.g., "@j***")
func MaskContact(value string) string {
	if value == "" {
		return ""
	}

	runes := []rune(value)
	keep := 1
	if runes[0] == '@' || runes[0] == '+' {
		keep = 2
	}
	if len(runes) <= keep {
		return strings.Repeat("*", len(runes))
	}

	return string(runes[:keep]) + strings.Repeat("*", len(runes)-keep)
}

// SanitizeQueryString checks if query string contains sensitive parameters
// and returns true if the entire query string should be redacted
func SanitizeQueryString(rawQuery string) bool {
	sensitiveParams := []string{
		"password",
		"token",
		"secret",
		"session",
		"auth",
		"contactvalue",
		"email",
	}

	query := strings.ToLower(rawQuery)
	for _, param := range sensitiveParams {
		if strings.Contains(query, param) {
			return true
		}
	}
	return false
}
