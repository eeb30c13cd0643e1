package config

import (
	"strings"

	"github.com/yndnr/artifact-go/internal/telemetry/logger"
)

// Sanitize returns a copy of the config with sensitive fields masked.
//
// This is used by `config show` and for logging the effective config.
func Sanitize(cfg *Config) *Config {
	sanitized := *cfg
	sanitized.Naming.Reserved = append([]string(nil), cfg.Naming.Reserved...)

	if sanitized.Storage.SQL.Password != "" {
		sanitized.Storage.SQL.Password = maskSecret(sanitized.Storage.SQL.Password)
	}
	if sanitized.Storage.SQL.DSN != "" {
		sanitized.Storage.SQL.DSN = logger.RedactString(sanitized.Storage.SQL.DSN)
	}
	if sanitized.Metrics.Pushgateway != "" {
		sanitized.Metrics.Pushgateway = logger.RedactString(sanitized.Metrics.Pushgateway)
	}

	return &sanitized
}

// maskSecret masks a secret value for safe logging.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
