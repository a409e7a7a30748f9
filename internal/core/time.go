package core

import "time"

// Time is the engine's duration type: a signed nanosecond count.
// time.Duration already provides arithmetic, comparison and the
// ns/us/ms/s/min/h conversions.
type Time = time.Duration

// Seconds converts a floating point second count to a Time.
func Seconds(s float64) Time {
	return Time(s * float64(time.Second))
}

// ScaleTime multiplies d by a dimensionless factor (e.g. a timescale).
func ScaleTime(d Time, factor float64) Time {
	if factor == 1 {
		return d
	}
	return Time(float64(d) * factor)
}
