// Package logging provides structured logging with per-module log level
// configuration.
//
// The logging system uses Go's slog package with automatic output routing:
//   - Logs to systemd journal when available (Linux systems with journald)
//   - Logs to stdout when a terminal, pipe, or file is connected
//   - Logs to both when both are available
//
// Initialize the logging system once at startup:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",      // Global log level: debug, info, warn, error
//		Format: "text",      // Output format: text or json
//		Modules: map[string]string{
//			"indicator": "debug",  // Per-module overrides
//			"hid":       "warn",
//		},
//	})
//
// Get a logger for your module:
//
//	logger := logging.GetLogger("indicator")
//	logger.Info("Starting up", "slot", 0)
//	logger.Warn("Something unusual", "error", err)
//
// When running as a systemd service or on a system with journald:
//
//	journalctl -t keyled              # All keyled logs
//	journalctl -t keyled -f           # Follow live
//	journalctl -t keyled MODULE=hid   # Filter by structured fields
//
// Log levels can be set globally or per-module in the [logging] section of
// the TOML configuration; module-specific levels override the global level
// for that module only.
package logging
