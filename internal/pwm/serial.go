package pwm

import (
	"fmt"
	"hash/crc32"
	"io"
	"log/slog"

	"go.bug.st/serial"

	"github.com/smazurov/stripd/internal/light"
)

// Serial frame layout: start byte, command, four duties, checksum.
const (
	frameStart = 0xA5
	frameDuty  = 'D'
	frameLen   = 7
)

// serialDriver sends duty frames to a microcontroller that owns the PWM timer.
type serialDriver struct {
	port   io.WriteCloser
	name   string
	freq   int
	logger *slog.Logger
}

func openSerial(cfg Config, logger *slog.Logger) (*serialDriver, error) {
	if cfg.SerialPort == "" {
		return nil, fmt.Errorf("serial PWM driver requires a port")
	}
	baud := cfg.BaudRate
	if baud <= 0 {
		baud = DefaultBaudRate
	}

	port, err := serial.Open(cfg.SerialPort, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.SerialPort, err)
	}

	logger.Info("Opened serial PWM controller", "port", cfg.SerialPort, "baud", baud)
	return newSerialDriver(port, cfg.SerialPort, cfg.FrequencyHz, logger), nil
}

func newSerialDriver(port io.WriteCloser, name string, freq int, logger *slog.Logger) *serialDriver {
	return &serialDriver{port: port, name: name, freq: freq, logger: logger}
}

// encodeFrame builds the frame for d. The checksum is the low byte of the
// CRC-32 of the command and duty bytes.
func encodeFrame(d light.DutySet) []byte {
	frame := []byte{frameStart, frameDuty, d.R, d.G, d.B, d.W, 0}
	frame[frameLen-1] = uint8(crc32.ChecksumIEEE(frame[1 : frameLen-1]))
	return frame
}

// Apply sends one frame carrying all four duties.
func (s *serialDriver) Apply(d light.DutySet) error {
	frame := encodeFrame(d)
	for written := 0; written < len(frame); {
		n, err := s.port.Write(frame[written:])
		if err != nil {
			return fmt.Errorf("write frame to %s: %w", s.name, err)
		}
		if n == 0 {
			return fmt.Errorf("write frame to %s: %w", s.name, io.ErrShortWrite)
		}
		written += n
	}
	return nil
}

func (s *serialDriver) FrequencyHz() int { return s.freq }

func (s *serialDriver) Name() string { return DriverSerial }

// Close sends an all-off frame and closes the port.
func (s *serialDriver) Close() error {
	if err := s.Apply(light.DutySet{}); err != nil {
		s.logger.Warn("Failed to turn strip off before closing port", "error", err)
	}
	return s.port.Close()
}
