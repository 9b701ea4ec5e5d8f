// Package logging provides structured logging for wxbridge.
//
// It wraps Go's standard log/slog package so every component logs the same
// way: JSON for production, text for development, with service and version
// fields attached to every entry.
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
//	logger.Info("connected", "broker", "io.adafruit.com:1883")
//
// Never log the broker key or any other credential.
package logging
