// Package logging provides structured logging for the studio service.
//
// It wraps log/slog so every package logs the same way:
//
//   - JSON output for deployments, text output for local work
//   - service and version fields on every entry
//   - level filtering (debug, info, warn, error)
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
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("simulation started", "speed", 1.5)
//
// Domain packages accept a narrow Logger interface (Debug, Info, Warn,
// Error) which *Logger satisfies through the embedded slog.Logger.
//
// Never log router passwords or broker credentials.
package logging
