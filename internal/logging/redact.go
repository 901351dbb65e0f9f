package logging

import (
	"net/url"
	"regexp"
	"strings"
)

// Sensitive field names that should be redacted.
var sensitiveFields = []string{
	"password",
	"secret",
	"token",
	"api_key",
	"apikey",
	"api-key",
	"authorization",
	"auth",
	"credential",
	"access_key",
	"accesskey",
}

// Patterns for secrets that should be redacted.
var secretPatterns = []*regexp.Regexp{
	// Bearer tokens
	regexp.MustCompile(`(?i)bearer\s+([a-zA-Z0-9._-]{8,})`),

	// Credentials embedded in URLs
	regexp.MustCompile(`(?i)(https?://)[^/\s:@]+:[^/\s@]+@`),

	// key=value style secrets, e.g. in query strings
	regexp.MustCompile(`(?i)(api_key|apikey|token|secret|password)=([^&\s"']+)`),
}

// RedactedValue is the replacement for sensitive values.
const RedactedValue = "[REDACTED]"

// Redact replaces sensitive information in a string.
func Redact(s string) string {
	result := s
	for i, pattern := range secretPatterns {
		switch i {
		case 1:
			result = pattern.ReplaceAllString(result, "${1}"+RedactedValue+"@")
		case 2:
			result = pattern.ReplaceAllString(result, "${1}="+RedactedValue)
		default:
			result = pattern.ReplaceAllString(result, RedactedValue)
		}
	}
	return result
}

// RedactURL masks userinfo and sensitive query parameters of a URL. Values
// that do not parse fall back to Redact.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return Redact(raw)
	}
	if u.User != nil {
		u.User = url.User(RedactedValue)
	}
	if u.RawQuery != "" {
		query := u.Query()
		for key := range query {
			if IsSensitiveField(key) {
				query.Set(key, RedactedValue)
			}
		}
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// IsSensitiveField checks if a field name is considered sensitive.
func IsSensitiveField(name string) bool {
	lowerName := strings.ToLower(name)
	for _, field := range sensitiveFields {
		if strings.Contains(lowerName, field) {
			return true
		}
	}
	return false
}
