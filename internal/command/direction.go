package command

// RollDirection names a directional roll adjustment.
type RollDirection int

const (
	RollLeft RollDirection = iota + 1
	RollRight
)

// PitchDirection names a directional pitch adjustment.
type PitchDirection int

const (
	PitchForward PitchDirection = iota + 1
	PitchBack
)

// YawDirection names a directional yaw adjustment.
type YawDirection int

const (
	YawCW YawDirection = iota + 1
	YawCCW
)

// ThrustDirection names a throttle adjustment. ThrustMid is absolute.
type ThrustDirection int

const (
	ThrustUp ThrustDirection = iota + 1
	ThrustDown
	ThrustMid
)

var rollNames = map[string]RollDirection{"left": RollLeft, "right": RollRight}
var pitchNames = map[string]PitchDirection{"forward": PitchForward, "back": PitchBack}
var yawNames = map[string]YawDirection{"cw": YawCW, "ccw": YawCCW}
var thrustNames = map[string]ThrustDirection{"up": ThrustUp, "down": ThrustDown, "mid": ThrustMid}

// ParseRollDirection resolves "left" or "right".
func ParseRollDirection(s string) (RollDirection, bool) {
	d, ok := rollNames[s]
	return d, ok
}

// ParsePitchDirection resolves "forward" or "back".
func ParsePitchDirection(s string) (PitchDirection, bool) {
	d, ok := pitchNames[s]
	return d, ok
}

// ParseYawDirection resolves "cw" or "ccw".
func ParseYawDirection(s string) (YawDirection, bool) {
	d, ok := yawNames[s]
	return d, ok
}

// ParseThrustDirection resolves "up", "down" or "mid".
func ParseThrustDirection(s string) (ThrustDirection, bool) {
	d, ok := thrustNames[s]
	return d, ok
}

// sign returns the delta multiplier, or 0 for values outside the enumeration.
func (d RollDirection) sign() int {
	switch d {
	case RollRight:
		return 1
	case RollLeft:
		return -1
	}
	return 0
}

func (d PitchDirection) sign() int {
	switch d {
	case PitchForward:
		return 1
	case PitchBack:
		return -1
	}
	return 0
}

func (d YawDirection) sign() int {
	switch d {
	case YawCW:
		return 1
	case YawCCW:
		return -1
	}
	return 0
}

func (d ThrustDirection) sign() int {
	switch d {
	case ThrustUp:
		return 1
	case ThrustDown:
		return -1
	}
	return 0
}

func (d RollDirection) String() string   { return nameOf(rollNames, d) }
func (d PitchDirection) String() string  { return nameOf(pitchNames, d) }
func (d YawDirection) String() string    { return nameOf(yawNames, d) }
func (d ThrustDirection) String() string { return nameOf(thrustNames, d) }

func nameOf[D comparable](names map[string]D, d D) string {
	for name, v := range names {
		if v == d {
			return name
		}
	}
	return "unknown"
}
