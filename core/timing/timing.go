package timing

import (
	"fmt"
	"time"

	"code.cloudfoundry.org/clock"
)

// Timestamp is a point on the monotonic vsync time line.
// Values are nanoseconds since the origin of the Clock which produced them.
type Timestamp int64

// Origin is the start of every time line.
const Origin Timestamp = 0

// Sub returns the duration ts-u.
func (ts Timestamp) Sub(u Timestamp) time.Duration {
	return time.Duration(ts - u)
}

// Add returns ts+d.
func (ts Timestamp) Add(d time.Duration) Timestamp {
	return ts + Timestamp(d)
}

// Before reports whether ts is strictly earlier than u.
func (ts Timestamp) Before(u Timestamp) bool {
	return ts < u
}

// After reports whether ts is strictly later than u.
func (ts Timestamp) After(u Timestamp) bool {
	return ts > u
}

// Milliseconds returns a timestamp as fractional milliseconds since the origin.
func (ts Timestamp) Milliseconds() float64 {
	return float64(ts) / float64(time.Millisecond)
}

// Stringer implementation.
func (ts Timestamp) String() string {
	return fmt.Sprintf("%.3fms", ts.Milliseconds())
}

// HostTime is a raw hardware time value, counted in host ticks.
// A TimeBase is needed to interpret it.
type HostTime int64

// TimeBase relates host ticks to nanoseconds: one tick equals
// Numer/Denom nanoseconds.
type TimeBase struct {
	Numer uint32
	Denom uint32
}

// NanosecondBase is a time base where one host tick is one nanosecond.
var NanosecondBase = TimeBase{Numer: 1, Denom: 1}

// Valid is false for time bases with a zero component.
func (tb TimeBase) Valid() bool {
	return tb.Numer != 0 && tb.Denom != 0
}

// Clock is the pair of clock primitives a display needs in its vsync callback.
//
// Implementations must be safe for concurrent use. Neither method may
// block, as both are called from the hardware callback context.
type Clock interface {
	Now() Timestamp                             // current time on the time line
	ConvertToMonotonic(raw HostTime) Timestamp // host ticks to time line
}

// HostClock is the default Clock. It measures time as the distance from the
// moment the HostClock has been created and interprets host ticks with a
// fixed time base.
type HostClock struct {
	clk    clock.Clock
	origin time.Time
	base   TimeBase
}

var _ Clock = (*HostClock)(nil)

// NewHostClock creates a clock on top of clk. If clk is nil, the real-time
// system clock is used. An invalid time base defaults to NanosecondBase.
func NewHostClock(clk clock.Clock, base TimeBase) *HostClock {
	if clk == nil {
		clk = clock.NewClock()
	}
	if !base.Valid() {
		tracer().Debugf("invalid time base %d/%d, using nanoseconds", base.Numer, base.Denom)
		base = NanosecondBase
	}
	return &HostClock{
		clk:    clk,
		origin: clk.Now(),
		base:   base,
	}
}

// Now returns the current timestamp.
func (hc *HostClock) Now() Timestamp {
	return Timestamp(hc.clk.Since(hc.origin))
}

// HostNow returns the current time in host ticks.
func (hc *HostClock) HostNow() HostTime {
	return hc.ToHost(hc.Now())
}

// ConvertToMonotonic converts host ticks to a timestamp.
func (hc *HostClock) ConvertToMonotonic(raw HostTime) Timestamp {
	n, d := int64(hc.base.Numer), int64(hc.base.Denom)
	h := int64(raw)
	// split to stay clear of overflow for large tick counts
	return Timestamp(h/d*n + h%d*n/d)
}

// ToHost converts a timestamp to host ticks. It is the inverse of
// ConvertToMonotonic, up to rounding.
func (hc *HostClock) ToHost(ts Timestamp) HostTime {
	n, d := int64(hc.base.Numer), int64(hc.base.Denom)
	t := int64(ts)
	return HostTime(t/n*d + t%n*d/n)
}

// Base returns the time base of hc.
func (hc *HostClock) Base() TimeBase {
	return hc.base
}

// Clock returns the underlying clock, to be used for timers and tickers
// running on the same time line.
func (hc *HostClock) Clock() clock.Clock {
	return hc.clk
}
