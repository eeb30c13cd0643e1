// Package logger provides structured logging for the artifact tools.
//
//   - logger.go: slog handler setup and a dynamically adjustable level
//   - context.go: context-aware logging with request id and command name
//   - redact.go: credential redaction for keys and connection strings
//
// Features:
//
//   - JSON and text output formats
//   - Log level filtering, changeable at runtime
//   - Automatic sensitive data masking
//   - Context propagation for per-invocation request ids
package logger
