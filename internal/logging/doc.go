// Package logging provides structured logging for the keyward daemon
// and tooling.
//
// This package wraps the zap logger with package-level convenience
// functions, plus specialized helpers for the two log lines operators
// care about most: access decisions and registry refreshes.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (uevent parsing, refresh results, skipped lines)
//   - Info: Normal operations (startup, granted tokens, shutdown)
//   - Warn: Non-fatal issues (refresh failures, undecodable device names)
//   - Error: Serious issues (persistence failures, bus read errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Authorized token detected",
//	    zap.String("token", "01-000012345678"),
//	)
//
// # Configuration
//
// The daemon initializes logging from its config file:
//
//	if err := logging.Initialize(cfg.Logging.Level); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// CLI commands use InitializeFromEnv instead, which reads
// KEYWARD_LOG_LEVEL and stays silent when it is unset, so normal
// command output is never interleaved with log lines.
//
// # Output Format
//
// Logs are written to stdout in console format (human-readable):
//
//	2026-08-25T10:30:45.123+0200  INFO  Authorized token detected
//	  token=01-000012345678
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying
// zap logger handles synchronization automatically.
package logging
