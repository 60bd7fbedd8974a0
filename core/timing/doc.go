/*
Package timing implements the time line vsync timestamps live on.

Hardware display links report vsync times in host ticks, a raw counter
whose unit depends on the machine (see TimeBase). Consumers of vsync
notifications need a common, monotonic time line instead. Type Timestamp
is a point on this time line, measured in nanoseconds since the origin of
a Clock. Clocks convert host ticks to timestamps and tell the current
time.

HostClock is built on top of code.cloudfoundry.org/clock, which lets tests
substitute a fake clock and advance time deterministically.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package timing

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'vsync.timing'
func tracer() tracing.Trace {
	return tracing.Select("vsync.timing")
}
