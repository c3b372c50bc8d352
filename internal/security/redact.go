// Package security masks sensitive values before they reach logs.
package security

import "strings"

var sensitiveSubstrings = []string{
	"token",
	"password",
	"passwd",
	"pwd",
	"secret",
	"authorization",
	"apikey",
	"api_key",
	"credential",
	"cookie",
	"iban",
	"card",
	"bank_account",
}

// Mask is the replacement for redacted values.
const Mask = "***"

// RedactArguments returns a deep copy of values with sensitive keys masked.
// Nested maps and lists, such as agent state, are walked.
func RedactArguments(values map[string]any) map[string]any {
	if values == nil {
		return nil
	}
	redacted := make(map[string]any, len(values))
	for key, value := range values {
		if IsSensitiveKey(key) {
			redacted[key] = Mask
			continue
		}
		redacted[key] = redactValue(value)
	}
	return redacted
}

// IsSensitiveKey reports whether values stored under key must not be logged.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(strings.TrimSpace(key))
	for _, part := range sensitiveSubstrings {
		if strings.Contains(lower, part) {
			return true
		}
	}
	return false
}

func redactValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return RedactArguments(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = redactValue(item)
		}
		return out
	default:
		return value
	}
}
