// Package logging provides slog loggers with per-module levels.
//
// Output goes to stdout when it is connected, to the systemd journal when
// journald is running, and to an in-memory ring buffer that backs the
// /api/logs SSE stream.
//
// Initialize once at startup, then ask for a logger per module:
//
//	logging.Initialize(logging.Config{
//		Level:   "info",
//		Format:  "text",
//		Modules: map[string]string{"pwm": "debug"},
//	})
//
//	logger := logging.GetLogger("light")
//	logger.Info("Set level", "level", 128)
//
// Module levels override the global level for that module only and can be
// changed at runtime with SetLevels, which the config watcher calls when
// config.toml is edited:
//
//	[logging]
//	level = "info"
//	format = "text"
//	store = "debug"
//	http = "warn"
//
// Under systemd, filter with journalctl:
//
//	journalctl -t stripd -f
//	journalctl -t stripd MODULE=light
//	journalctl -t stripd -p warning
package logging
