package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/smazurov/stripd/internal/light"
	"github.com/smazurov/stripd/internal/pwm"
)

func (o *Options) pwmConfig() (pwm.Config, error) {
	cfg := pwm.DefaultConfig()
	cfg.Driver = o.PWMDriver
	cfg.FrequencyHz = o.PWMFrequency
	cfg.SysfsRoot = o.PWMSysfsRoot
	cfg.Chip = o.PWMChip
	cfg.Invert = o.PWMInvert
	cfg.SerialPort = o.PWMSerialPort
	cfg.BaudRate = o.PWMBaudRate

	channels, err := parseChannels(o.PWMChannels)
	if err != nil {
		return cfg, err
	}
	cfg.Channels = channels
	return cfg, nil
}

// parseChannels reads the R,G,B,W channel list, e.g. "0,1,2,3".
func parseChannels(s string) ([4]int, error) {
	var channels [4]int
	fields := strings.Split(s, ",")
	if len(fields) != len(channels) {
		return channels, fmt.Errorf("pwm channels %q: want 4 comma separated numbers", s)
	}
	for i, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || n < 0 {
			return channels, fmt.Errorf("pwm channels %q: invalid channel %q", s, f)
		}
		channels[i] = n
	}
	return channels, nil
}

// lightDefaults is the state used when the store holds no snapshot.
func (o *Options) lightDefaults() (light.ColorLevel, error) {
	color, err := light.ParseColorCommand([]byte("W" + strings.ReplaceAll(o.LightDefaultColor, " ", "")))
	if err != nil {
		return light.ColorLevel{}, fmt.Errorf("light default color %q: %w", o.LightDefaultColor, err)
	}
	if o.LightDefaultLevel < 0 || o.LightDefaultLevel > 255 {
		return light.ColorLevel{}, fmt.Errorf("light default level %d out of range 0..255", o.LightDefaultLevel)
	}
	return light.ColorLevel{Color: color, Level: uint8(o.LightDefaultLevel)}, nil
}
