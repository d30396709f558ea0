package light

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
)

// Format hints returned to HTTP callers for malformed bodies.
const (
	ColorFormatHint = "Expected format: W<r>,<g>,<b>,<w>"
	LevelFormatHint = "Expected format: L<level 0..255>"
)

// ErrFormat reports a control payload that does not match the wire format or
// carries a value outside 0..255.
var ErrFormat = errors.New("malformed control payload")

// ParseColorCommand parses a "W<r>,<g>,<b>,<w>" payload.
func ParseColorCommand(body []byte) (Color, error) {
	rest, ok := strings.CutPrefix(trimPayload(body), "W")
	if !ok {
		return Color{}, ErrFormat
	}

	fields := strings.Split(rest, ",")
	if len(fields) != 4 {
		return Color{}, ErrFormat
	}

	var values [4]uint8
	for i, f := range fields {
		v, err := parseByte(f)
		if err != nil {
			return Color{}, err
		}
		values[i] = v
	}

	return Color{R: values[0], G: values[1], B: values[2], W: values[3]}, nil
}

// ParseLevelCommand parses an "L<level>" payload.
func ParseLevelCommand(body []byte) (uint8, error) {
	rest, ok := strings.CutPrefix(trimPayload(body), "L")
	if !ok {
		return 0, ErrFormat
	}
	return parseByte(rest)
}

// trimPayload drops the line endings, padding and NUL terminators that
// browser and embedded clients append to the body.
func trimPayload(body []byte) string {
	return string(bytes.Trim(body, " \t\r\n\x00"))
}

func parseByte(s string) (uint8, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrFormat
	}
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, ErrFormat
	}
	return uint8(v), nil
}
