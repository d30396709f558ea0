// Package systemd reports service state to systemd through sd_notify.
// Outside systemd (no NOTIFY_SOCKET) every call is a no-op.
package systemd

import (
	"context"
	"log/slog"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

// notify is swapped in tests.
var notify = daemon.SdNotify

// Ready tells systemd that the controller is initialised and the HTTP
// server is accepting connections.
func Ready(logger *slog.Logger) {
	send(logger, daemon.SdNotifyReady)
}

// Stopping tells systemd that shutdown has begun.
func Stopping(logger *slog.Logger) {
	send(logger, daemon.SdNotifyStopping)
}

// Status sets the free-form status line shown by systemctl status.
func Status(logger *slog.Logger, status string) {
	send(logger, "STATUS="+status)
}

func send(logger *slog.Logger, state string) bool {
	sent, err := notify(false, state)
	switch {
	case err != nil:
		logger.Warn("Failed to notify systemd", "state", state, "error", err)
	case sent:
		logger.Debug("Notified systemd", "state", state)
	}
	return sent
}

// Watchdog pings the systemd watchdog at half the configured WatchdogSec
// until ctx is done. It returns immediately when the watchdog is disabled.
func Watchdog(ctx context.Context, logger *slog.Logger) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		logger.Warn("Failed to read watchdog settings", "error", err)
		return
	}
	if interval <= 0 {
		return
	}

	logger.Info("Systemd watchdog enabled", "interval", interval)
	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			send(logger, daemon.SdNotifyWatchdog)
		}
	}
}
