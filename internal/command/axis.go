package command

import "math"

// Axis is an RC channel pulse width in microseconds.
type Axis int

const (
	MinValue Axis = 1000
	MidValue Axis = 1500
	MaxValue Axis = 2000

	// ThrottleGo is the minimal-lift value the receiver expects right after
	// the max-throttle unlock gesture.
	ThrottleGo Axis = 1530
)

// MaxStep is the largest useful directional step. Any larger step saturates
// the axis from anywhere in its range.
const MaxStep = int(MaxValue - MinValue)

// Clamp limits v to [MinValue, MaxValue].
func Clamp(v int) Axis {
	return Axis(max(int(MinValue), min(v, int(MaxValue))))
}

// MapUnit maps a stick position in [-1, 1] linearly onto [MinValue, MaxValue].
// Positions outside [-1, 1] are clamped first; NaN maps to MidValue.
func MapUnit(u float64) Axis {
	if math.IsNaN(u) {
		return MidValue
	}
	u = math.Max(-1, math.Min(u, 1))
	return fromFloat(float64(MinValue)+float64(MaxValue-MinValue)*(1+u)/2, MidValue)
}

// fromFloat clamps f to the axis range and drops the fractional part, which
// is what the receiver firmware parses from the frame.
// NaN yields fallback.
func fromFloat(f float64, fallback Axis) Axis {
	if math.IsNaN(f) {
		return fallback
	}
	return Axis(math.Trunc(clampFloat(f)))
}

func clampFloat(f float64) float64 {
	return math.Max(float64(MinValue), math.Min(f, float64(MaxValue)))
}
