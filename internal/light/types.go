// Package light owns the colour and brightness state of the strip and the
// mapping from that state to per-channel PWM duty values.
package light

import "fmt"

// Channel identifies one of the four independently driven strip channels.
type Channel int

const (
	Red Channel = iota
	Green
	Blue
	White
)

// Channels lists all channels in wire order.
var Channels = [4]Channel{Red, Green, Blue, White}

// String returns the short channel name used in persisted keys and metrics.
func (c Channel) String() string {
	switch c {
	case Red:
		return "r"
	case Green:
		return "g"
	case Blue:
		return "b"
	case White:
		return "w"
	default:
		return fmt.Sprintf("Channel(%d)", int(c))
	}
}

// Color is the un-dimmed base colour of the strip.
type Color struct {
	R uint8 `json:"r" toml:"r"`
	G uint8 `json:"g" toml:"g"`
	B uint8 `json:"b" toml:"b"`
	W uint8 `json:"w" toml:"w"`
}

// Get returns the intensity of a single channel.
func (c Color) Get(ch Channel) uint8 {
	switch ch {
	case Red:
		return c.R
	case Green:
		return c.G
	case Blue:
		return c.B
	case White:
		return c.W
	}
	return 0
}

// ColorLevel is the canonical light state: a base colour and a global
// brightness level applied to every channel.
type ColorLevel struct {
	Color Color `json:"color" toml:"color"`
	Level uint8 `json:"level" toml:"level"`
}

// DutySet holds the duty values programmed into the four PWM channels. It is
// always derived from a ColorLevel with ComputeDuties.
type DutySet struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	W uint8 `json:"w"`
}

// Get returns the duty of a single channel.
func (d DutySet) Get(ch Channel) uint8 {
	return Color(d).Get(ch)
}

// State is a consistent view of the controller: the colour/level pair and the
// duties currently programmed for it.
type State struct {
	ColorLevel
	Duty DutySet `json:"duty"`
}

// Default base colour: full white balanced for the strip's white channel.
var DefaultColor = Color{R: 255, G: 255, B: 255, W: 240}

// Default returns the state used when no snapshot has been persisted. Level 0
// keeps the strip dark until a level is explicitly requested.
func Default() ColorLevel {
	return ColorLevel{Color: DefaultColor, Level: 0}
}
