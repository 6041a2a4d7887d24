// Package logging provides structured logging for SmartHouse Core.
//
// It wraps the standard log/slog package so every component logs with the
// same handler, level and default fields (service, version).
//
// Logging is configured via the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("house loaded", "devices", 3)
//
//	ingestLog := logger.With("component", "ingest")
//
// Never log MQTT credentials.
package logging
