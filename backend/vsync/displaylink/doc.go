/*
Package displaylink abstracts the platform's periodic display timer.

A display link is a timer bound to the active outputs of a machine. Once
started, it calls back on a thread of its own, once per refresh cycle,
reporting the host time of the upcoming vsync. Platform is the set of
operations a vsync display needs from such a timer:

	CreateTimer        acquire a link for all active outputs (may fail transiently)
	SetOutputCallback  register the per-vsync callback
	StartTimer         start calling back
	NominalPeriod      query the expected refresh period
	ReleaseTimer       stop and free the link, synchronously

Callbacks do not receive pointers to their displays. Instead, clients
register a Context value, typically a slot index into a table of displays
they own, and look up the display on every callback. This keeps a
late-firing callback from touching a display which has been torn down.

Link is a portable implementation, driven by clock tickers and a set of
configurable outputs. It is the platform used when no native display link
is available, and it lets clients simulate outputs going to sleep and
waking up again.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package displaylink

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'vsync.display'
func tracer() tracing.Trace {
	return tracing.Select("vsync.display")
}
