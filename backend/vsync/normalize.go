package vsync

import (
	"github.com/npillmayer/vsync/core/timing"
)

// Correction tells which correction Normalize had to apply.
type Correction int8

const (
	// NoCorrection: regular cadence, the previous vsync is delivered.
	NoCorrection Correction = iota
	// GlitchCorrection: the hardware reported a timestamp not later than
	// the previous one. Both ends are reset to now.
	GlitchCorrection
	// EarlyCorrection: the callback fired before the previous vsync time.
	// Now is delivered instead.
	EarlyCorrection
)

func (c Correction) String() string {
	switch c {
	case NoCorrection:
		return "none"
	case GlitchCorrection:
		return "glitch"
	case EarlyCorrection:
		return "early"
	}
	return "unknown"
}

// Normalize converts the time of the upcoming vsync, as reported by a
// display link, into a timestamp safe for delivery.
//
// next is the upcoming vsync, previous the upcoming vsync as of the last
// callback, and now the current time. Normalize returns the timestamp to
// deliver and the value to remember as previous for the next callback.
//
// Equal timestamps are treated as a glitch: a display link is not expected
// to report the same vsync twice.
//
// As long as now does not decrease between calls, delivered timestamps
// are never later than now and never decrease.
func Normalize(next, previous, now timing.Timestamp) (deliver, store timing.Timestamp, c Correction) {
	if next <= previous {
		return now, now, GlitchCorrection
	}
	if now < previous {
		return now, next, EarlyCorrection
	}
	return previous, next, NoCorrection
}
