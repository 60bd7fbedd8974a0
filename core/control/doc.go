/*
Package control implements the control thread.

All lifecycle transitions of vsync displays happen on one designated
goroutine, the control thread. A Loop is such a goroutine, pinned to its
OS thread. Other goroutines hand work to it with Post (fire and forget) or
Call (wait for completion). Code which must only ever run on the control
thread asserts this with MustBeControlThread; violating the assertion is a
programming error and panics.

Loops also run delayed tasks: Schedule arranges for a function to be
called on the control thread after a delay, and returns a handle which may
cancel the call as long as it has not fired. Displays use this to retry
acquiring hardware timers after transient failures.

	loop := control.NewLoop(nil)
	loop.Start()
	defer loop.Stop()
	loop.Call(func() {
	    task := loop.Schedule(100*time.Millisecond, retry)
	    …
	    task.Cancel()
	})

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package control

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'vsync.control'
func tracer() tracing.Trace {
	return tracing.Select("vsync.control")
}
