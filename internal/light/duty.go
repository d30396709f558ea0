package light

// MaxDuty is the largest duty value at the 8-bit PWM resolution.
const MaxDuty = 255

// ComputeDuties scales each channel of color by level. The result is
// floor(c*level/255); it never exceeds the channel value and level 0 turns
// every channel off.
func ComputeDuties(color Color, level uint8) DutySet {
	return DutySet{
		R: scale(color.R, level),
		G: scale(color.G, level),
		B: scale(color.B, level),
		W: scale(color.W, level),
	}
}

func scale(v, level uint8) uint8 {
	return uint8(uint32(v) * uint32(level) / MaxDuty)
}
