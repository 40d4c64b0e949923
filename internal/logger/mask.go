package logger

import (
	"net/url"
	"strings"

	"go.uber.org/zap"
)

const masked = "***MASKED***"

// MaskURL keeps scheme and host and a short path prefix, and always ends
// in a mask marker so bot tokens embedded in webhook paths never reach
// the logs. Paths longer than 20 characters keep 20, shorter ones 10.
func MaskURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return truncate(raw, 10) + masked
	}
	path := u.EscapedPath()
	keep := 10
	if len(path) > 20 {
		keep = 20
	}
	return u.Scheme + "://" + u.Host + truncate(path, keep) + masked
}

// MaskSecret shows only the first and last two characters of a secret.
func MaskSecret(s string) string {
	if len(s) <= 6 {
		return strings.Repeat("*", len(s))
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}

// URL is a zap field carrying a masked URL.
func URL(key, raw string) zap.Field {
	return zap.String(key, MaskURL(raw))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
