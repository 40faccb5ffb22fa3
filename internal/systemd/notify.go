// Package systemd integrates the daemon with the service manager: readiness
// notification and watchdog keepalives via the sd_notify protocol.
package systemd

import (
	"log/slog"
	"sync"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

// Notifier sends sd_notify messages and runs the watchdog loop when one is
// configured for the unit. All methods are no-ops outside systemd.
type Notifier struct {
	logger *slog.Logger

	watchdogOn bool
	stopOnce   sync.Once
	stop       chan struct{}
	done       chan struct{}
}

// NewNotifier creates a notifier.
func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{
		logger: logger,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Ready tells systemd the service has finished starting and launches the
// watchdog loop if WatchdogSec is set on the unit.
func (n *Notifier) Ready() {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		n.logger.Warn("Failed to send readiness notification", "error", err)
	} else if sent {
		n.logger.Debug("Readiness notification sent")
	}

	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		n.logger.Warn("Failed to read watchdog configuration", "error", err)
		interval = 0
	}
	if interval == 0 {
		return
	}

	n.watchdogOn = true
	go n.watchdog(interval / 2)
}

// Stopping tells systemd the service has begun shutting down and stops the
// watchdog loop.
func (n *Notifier) Stopping() {
	if _, err := daemon.SdNotify(false, daemon.SdNotifyStopping); err != nil {
		n.logger.Warn("Failed to send stopping notification", "error", err)
	}
	n.stopOnce.Do(func() { close(n.stop) })
	if n.watchdogOn {
		<-n.done
	}
}

func (n *Notifier) watchdog(interval time.Duration) {
	defer close(n.done)

	n.logger.Info("Watchdog keepalive started", "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog); err != nil {
				n.logger.Warn("Failed to send watchdog keepalive", "error", err)
			}
		case <-n.stop:
			return
		}
	}
}
