// Package logging provides structured logging for jobtrack.
//
// It wraps log/slog so every component logs with the same default fields
// (service, version) and honours the configured level and format.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("starting service", "port", 8080)
//	logger.Component("auth").Warn("token rejected", "reason", "expired")
//
// # Security
//
// Never log bearer tokens, passwords or signing secrets. Log the principal
// ID or the rejection category instead.
package logging
