// Package logger configures structured logging for the simulator.
//
//   - logger.go: slog handler construction and the runtime level
//   - context.go: request ID propagation
//   - redact.go: sensitive data redaction
//
// Credentials never reach the log output: attributes whose key names a
// secret and bearer header values are masked by the handler itself.
package logger
