/*
Package vsync produces the periodic synchronization signal which paces
frame production.

A Source owns exactly one Display, its global display. Displays come in
two variants: a HardwareDisplay is driven by a platform display link
(package displaylink), a SoftwareDisplay by a plain ticker. Use
CreateHardwareVsyncSource to get a source: it probes the hardware path
and falls back to software vsync if the hardware cannot be enabled.

	env := vsync.NewEnvironment(conf, loop)
	var src *vsync.Source
	loop.Call(func() {
	    src = vsync.CreateHardwareVsyncSource(env)
	    src.AddObserver(vsync.ObserverFunc(func(ts timing.Timestamp) {
	        … // runs on the display's callback goroutine
	    }))
	})

Lifecycle operations (EnableVsync, DisableVsync, IsVsyncEnabled,
AddObserver, RemoveObserver, Close) belong to the control thread, see
package control. Calling them from anywhere else panics.

Vsync notifications are delivered on the display's own goroutine. Display
links report the time of the upcoming vsync, whereas consumers expect
timestamps at or before the present. Normalize turns the former into the
latter: delivered timestamps never lie in the future and never decrease
within one enabled session.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package vsync

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'vsync.display'
func tracer() tracing.Trace {
	return tracing.Select("vsync.display")
}
