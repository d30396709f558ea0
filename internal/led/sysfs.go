package led

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
)

// DefaultSysfsRoot is where the kernel exposes LED class devices.
const DefaultSysfsRoot = "/sys/class/leds"

// sysfs implements Controller through /sys/class/leds triggers.
type sysfs struct {
	root string
	leds map[string]string // LED type -> sysfs name
}

func newSysfs(root string, leds map[string]string) *sysfs {
	return &sysfs{root: root, leds: leds}
}

// trigger maps a pattern to the kernel trigger implementing it. Unknown
// patterns are passed through as raw trigger names.
func trigger(pattern string) string {
	switch pattern {
	case PatternSolid:
		return "none"
	case PatternBlink:
		return "timer"
	case PatternHeartbeat:
		return "heartbeat"
	default:
		return pattern
	}
}

func (s *sysfs) Set(ledType string, enabled bool, pattern string) error {
	name, ok := s.leds[ledType]
	if !ok {
		return fmt.Errorf("LED type %q not supported on this board", ledType)
	}

	dir := filepath.Join(s.root, name)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("LED %q not found at %s: %w", ledType, dir, err)
	}

	if pattern != "" {
		if err := os.WriteFile(filepath.Join(dir, "trigger"), []byte(trigger(pattern)), 0o644); err != nil {
			return fmt.Errorf("failed to set LED trigger: %w", err)
		}
	}

	// Brightness is only meaningful for manual control; with an active
	// trigger a zero write would stop it.
	if pattern == "" || pattern == PatternSolid || !enabled {
		brightness := "0"
		if enabled {
			brightness = "1"
		}
		if err := os.WriteFile(filepath.Join(dir, "brightness"), []byte(brightness), 0o644); err != nil {
			return fmt.Errorf("failed to set LED brightness: %w", err)
		}
	}

	return nil
}

func (s *sysfs) Available() []string {
	return slices.Sorted(maps.Keys(s.leds))
}

func (s *sysfs) Patterns() []string {
	return []string{PatternSolid, PatternBlink, PatternHeartbeat}
}
