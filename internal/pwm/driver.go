// Package pwm programs the strip's four PWM channels. Backends cover Linux
// sysfs PWM chips, a serial-attached microcontroller and a no-op fallback.
package pwm

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/smazurov/stripd/internal/light"
)

// Driver programs duty values into hardware.
type Driver interface {
	light.Output

	// Name identifies the backend, e.g. "sysfs" or "serial".
	Name() string

	// Close turns the channels off where the backend supports it and releases
	// the hardware.
	Close() error
}

// Backend names accepted in Config.Driver.
const (
	DriverAuto   = "auto"
	DriverSysfs  = "sysfs"
	DriverSerial = "serial"
	DriverNoop   = "noop"
)

const (
	DefaultFrequencyHz = 1000
	DefaultSysfsRoot   = "/sys/class/pwm"
	DefaultBaudRate    = 115200
)

// Config selects and configures a backend.
type Config struct {
	Driver      string
	FrequencyHz int

	// Sysfs backend.
	SysfsRoot string
	Chip      int
	// Channels maps R, G, B, W to pwm channel numbers on the chip.
	Channels [4]int
	// Invert drives the outputs active-low.
	Invert bool

	// Serial backend.
	SerialPort string
	BaudRate   int
}

// DefaultConfig returns the wiring of the reference board: channels 0-3 on
// pwmchip0 at 1 kHz, active-low.
func DefaultConfig() Config {
	return Config{
		Driver:      DriverAuto,
		FrequencyHz: DefaultFrequencyHz,
		SysfsRoot:   DefaultSysfsRoot,
		Chip:        0,
		Channels:    [4]int{0, 1, 2, 3},
		Invert:      true,
		BaudRate:    DefaultBaudRate,
	}
}

// New creates the backend named by cfg.Driver. "auto" uses sysfs when the
// configured PWM chip exists and falls back to the no-op driver.
func New(cfg Config, logger *slog.Logger) (Driver, error) {
	if cfg.FrequencyHz <= 0 {
		cfg.FrequencyHz = DefaultFrequencyHz
	}
	if cfg.SysfsRoot == "" {
		cfg.SysfsRoot = DefaultSysfsRoot
	}

	driver := cfg.Driver
	if driver == "" || driver == DriverAuto {
		driver = detect(cfg)
		logger.Info("Detected PWM backend", "driver", driver, "chip", chipPath(cfg))
	}

	switch driver {
	case DriverSysfs:
		d, err := newSysfs(cfg, logger)
		if err != nil {
			return nil, err
		}
		return d, nil
	case DriverSerial:
		d, err := openSerial(cfg, logger)
		if err != nil {
			return nil, err
		}
		return d, nil
	case DriverNoop:
		return newNoop(cfg.FrequencyHz, logger), nil
	default:
		return nil, fmt.Errorf("unknown PWM driver %q", cfg.Driver)
	}
}

// detect picks sysfs when the PWM chip is present.
func detect(cfg Config) string {
	if _, err := os.Stat(chipPath(cfg)); err == nil {
		return DriverSysfs
	}
	return DriverNoop
}

func chipPath(cfg Config) string {
	return filepath.Join(cfg.SysfsRoot, "pwmchip"+strconv.Itoa(cfg.Chip))
}
