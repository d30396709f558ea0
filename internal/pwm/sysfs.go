package pwm

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/smazurov/stripd/internal/light"
)

// exportWait bounds how long to wait for the kernel to create an exported
// channel directory.
const (
	exportPollInterval = 10 * time.Millisecond
	exportPollAttempts = 100
)

// sysfs implements Driver using the Linux sysfs PWM interface.
type sysfs struct {
	chip     string
	channels [4]string // channel directories in R, G, B, W order
	periodNs uint64
	freq     int
	logger   *slog.Logger
}

// newSysfs exports and configures the four channels: period from the
// frequency, polarity, zero duty, enabled.
func newSysfs(cfg Config, logger *slog.Logger) (*sysfs, error) {
	chip := chipPath(cfg)
	if _, err := os.Stat(chip); err != nil {
		return nil, fmt.Errorf("PWM chip not found at %s: %w", chip, err)
	}

	s := &sysfs{
		chip:     chip,
		periodNs: uint64(time.Second) / uint64(cfg.FrequencyHz),
		freq:     cfg.FrequencyHz,
		logger:   logger,
	}

	polarity := "normal"
	if cfg.Invert {
		polarity = "inversed"
	}

	for i, n := range cfg.Channels {
		dir, err := s.export(n)
		if err != nil {
			return nil, err
		}
		s.channels[i] = dir

		// Polarity can only be changed while the channel is disabled.
		steps := []struct{ attr, value string }{
			{"enable", "0"},
			{"duty_cycle", "0"},
			{"period", strconv.FormatUint(s.periodNs, 10)},
			{"polarity", polarity},
			{"enable", "1"},
		}
		for _, step := range steps {
			if err := writeAttr(dir, step.attr, step.value); err != nil {
				return nil, fmt.Errorf("configure %s channel %d: %w", light.Channels[i], n, err)
			}
		}

		logger.Debug("Configured PWM channel",
			"channel", light.Channels[i].String(), "pwm", n, "period_ns", s.periodNs, "polarity", polarity)
	}

	return s, nil
}

// export makes pwm<n> available and waits for its directory to appear.
func (s *sysfs) export(n int) (string, error) {
	dir := filepath.Join(s.chip, "pwm"+strconv.Itoa(n))
	if _, err := os.Stat(dir); err == nil {
		return dir, nil
	}

	if err := os.WriteFile(filepath.Join(s.chip, "export"), []byte(strconv.Itoa(n)), 0o644); err != nil {
		return "", fmt.Errorf("export pwm%d: %w", n, err)
	}

	for range exportPollAttempts {
		if _, err := os.Stat(dir); err == nil {
			return dir, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", dir, err)
		}
		time.Sleep(exportPollInterval)
	}
	return "", fmt.Errorf("pwm%d did not appear under %s after export", n, s.chip)
}

// Apply writes the duty cycle of all four channels.
func (s *sysfs) Apply(d light.DutySet) error {
	for i, ch := range light.Channels {
		ns := uint64(d.Get(ch)) * s.periodNs / light.MaxDuty
		if err := writeAttr(s.channels[i], "duty_cycle", strconv.FormatUint(ns, 10)); err != nil {
			return fmt.Errorf("set %s duty: %w", ch, err)
		}
	}
	return nil
}

func (s *sysfs) FrequencyHz() int { return s.freq }

func (s *sysfs) Name() string { return DriverSysfs }

// Close turns every channel off and disables it.
func (s *sysfs) Close() error {
	var errs []error
	for _, dir := range s.channels {
		if dir == "" {
			continue
		}
		errs = append(errs,
			writeAttr(dir, "duty_cycle", "0"),
			writeAttr(dir, "enable", "0"))
	}
	return errors.Join(errs...)
}

func writeAttr(dir, attr, value string) error {
	return os.WriteFile(filepath.Join(dir, attr), []byte(value), 0o644)
}
