package core

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Precompiled patterns for secrets that may surface in error or log strings.
var (
	bearerTokenRe = regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9\-\._~\+\/]+=*`)
	kvSecretRe    = regexp.MustCompile(
		`(?i)(api[_-]?key|access_token|secret|password|authorization)\s*[:=]\s*["']?[^"'\s]+["']?`,
	)
	// DashScope keys are "sk-" followed by a long token.
	apiKeyRe     = regexp.MustCompile(`\bsk-[A-Za-z0-9_\-]{16,}\b`)
	urlUserRe    = regexp.MustCompile(`(?i)(https?://)[^@\s/]+@`)
	maxRedactLen = 512
)

// RedactString trims, truncates and scrubs credentials.
func RedactString(s string) string {
	s = strings.TrimSpace(s)
	s = urlUserRe.ReplaceAllString(s, "$1[REDACTED]@")
	s = bearerTokenRe.ReplaceAllString(s, "$1[REDACTED]")
	s = kvSecretRe.ReplaceAllString(s, "$1=[REDACTED]")
	s = apiKeyRe.ReplaceAllString(s, "[REDACTED]")
	if len(s) > maxRedactLen {
		cut := maxRedactLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "…"
	}
	return s
}

func isSensitiveHeader(name string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range []string{"api-key", "api_key", "apikey", "secret", "token", "cookie"} {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// RedactHeaders returns a copy of headers safe for logging. Authorization
// keeps its scheme; other credential headers are replaced entirely.
func RedactHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return headers
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		switch {
		case strings.EqualFold(k, "authorization"):
			out[k] = RedactString(v)
		case isSensitiveHeader(k):
			out[k] = "[REDACTED]"
		default:
			out[k] = v
		}
	}
	return out
}
