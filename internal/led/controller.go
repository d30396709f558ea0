// Package led drives the board's status LED. It is separate from the strip:
// the strip is the product, the status LED reports on the daemon itself.
package led

// Controller abstracts status LED hardware across SBC boards.
type Controller interface {
	// Set switches an LED on or off and optionally changes its pattern
	// ("solid", "blink", "heartbeat"). An empty pattern leaves it unchanged.
	Set(ledType string, enabled bool, pattern string) error

	// Available returns the LED types this board exposes.
	Available() []string

	// Patterns returns the supported patterns.
	Patterns() []string
}

// Status LED patterns.
const (
	PatternSolid     = "solid"
	PatternBlink     = "blink"
	PatternHeartbeat = "heartbeat"
)
