package led

import (
	"log/slog"
	"os"
	"strings"
)

const deviceTreeModelPath = "/proc/device-tree/model"

// StatusLED is the LED type the manager drives.
const StatusLED = "status"

// board maps a device tree model substring to the LED used for status.
type board struct {
	match string
	led   string
}

var boards = []board{
	{"NanoPC-T6", "sys_led"},
	{"Orange Pi", "green_led"},
	{"Raspberry Pi", "ACT"},
}

// New picks a controller from the device tree model. An explicit name
// overrides detection; "none" disables the status LED.
func New(name string, logger *slog.Logger) Controller {
	return newFor(detectBoard(deviceTreeModelPath), name, DefaultSysfsRoot, logger)
}

func newFor(model, name, root string, logger *slog.Logger) Controller {
	switch name {
	case "none":
		logger.Info("Status LED disabled")
		return newNoop(logger)
	case "":
	default:
		logger.Info("Using configured status LED", "led", name)
		return newSysfs(root, map[string]string{StatusLED: name})
	}

	for _, b := range boards {
		if strings.Contains(model, b.match) {
			logger.Info("Detected board, using sysfs status LED", "board_model", model, "led", b.led)
			return newSysfs(root, map[string]string{StatusLED: b.led})
		}
	}

	logger.Info("No status LED detected, using no-op controller", "board_model", model)
	return newNoop(logger)
}

func detectBoard(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "unknown"
	}
	// Device tree strings are NUL terminated.
	return strings.TrimRight(string(data), "\x00")
}
