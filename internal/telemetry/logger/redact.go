package logger

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"
)

// Sensitive key patterns that should be redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"passwd",
	"secret",
	"dsn",
	"credential",
	"auth",
	"bearer",
}

// mysqlUserinfo matches the "user:password@" head of a go-sql-driver DSN.
var mysqlUserinfo = regexp.MustCompile(`^([^:@/\s]+):([^@\s]*)@`)

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// maskedPassword replaces the password part of a connection string.
const maskedPassword = "xxxxx"

// redactSensitive checks if an attribute contains sensitive data
// and redacts it if necessary.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()

		// Key name suggests sensitive data: fully redact non-empty values
		if strVal != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}

		// Connection strings keep everything but the password
		if masked := maskCredentials(strVal); masked != strVal {
			return slog.String(a.Key, masked)
		}
	}

	// Handle nested groups recursively
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// maskCredentials hides the password of a URL style DSN
// ("postgres://u:p@host/db") or a MySQL DSN ("u:p@tcp(host)/db").
// Other values are returned unchanged.
func maskCredentials(value string) string {
	if strings.Contains(value, "://") {
		u, err := url.Parse(value)
		if err != nil || u.User == nil {
			return value
		}
		if _, ok := u.User.Password(); !ok {
			return value
		}
		return u.Redacted()
	}

	if m := mysqlUserinfo.FindStringSubmatchIndex(value); m != nil && m[5] > m[4] {
		return value[:m[4]] + maskedPassword + value[m[5]:]
	}
	return value
}

// RedactString manually redacts a string value.
// Use this when you need to redact a value before logging or printing.
func RedactString(value string) string {
	return maskCredentials(value)
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// IsSensitiveValue checks if a value carries an embedded password.
func IsSensitiveValue(value string) bool {
	return maskCredentials(value) != value
}
