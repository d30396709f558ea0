package pwm

import (
	"log/slog"

	"github.com/smazurov/stripd/internal/light"
)

// noop implements Driver for systems without PWM hardware.
type noop struct {
	freq   int
	logger *slog.Logger
}

func newNoop(freq int, logger *slog.Logger) *noop {
	return &noop{freq: freq, logger: logger}
}

// Apply logs the duties but programs nothing.
func (n *noop) Apply(d light.DutySet) error {
	n.logger.Debug("PWM output not available (no-op)",
		"duty_r", d.R, "duty_g", d.G, "duty_b", d.B, "duty_w", d.W)
	return nil
}

func (n *noop) FrequencyHz() int { return n.freq }

func (n *noop) Name() string { return DriverNoop }

func (n *noop) Close() error { return nil }
