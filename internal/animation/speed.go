package animation

import "time"

// DefaultSpeed is the speed used when none is given
const DefaultSpeed = "x1"

// Speeds maps speed multipliers to frame intervals
var Speeds = map[string]time.Duration{
	"x0.5": 200 * time.Millisecond,
	"x1":   100 * time.Millisecond,
	"x1.5": 66 * time.Millisecond,
	"x2":   50 * time.Millisecond,
}

// SpeedInterval returns the frame interval for a speed multiplier. Unknown
// speeds get the x1 interval.
func SpeedInterval(speed string) time.Duration {
	if d, ok := Speeds[speed]; ok {
		return d
	}
	return Speeds[DefaultSpeed]
}
