package displaylink

import (
	"time"

	"github.com/npillmayer/vsync/core/timing"
)

// Handle identifies a display link acquired with CreateTimer.
type Handle uint32

// NoHandle is the zero handle, never returned for a live link.
const NoHandle Handle = 0

// Context is the value a callback has been registered with. Clients use it
// to look up the receiver of a callback.
type Context uint32

// OutputCallback is called once per refresh cycle, on the link's own
// goroutine, with the host time of the upcoming vsync.
//
// Callbacks for the same link never run concurrently. They must not block.
type OutputCallback func(ctx Context, output timing.HostTime)

// Platform is the interface to a platform's display timers.
//
// CreateTimer fails with an error of code core.ETRANSIENT if no output is
// ready to drive a link, e.g. shortly after waking from sleep. Such
// failures may go away by themselves. All other failures are permanent.
// CreateTimer may return a handle together with an error, in which case
// the handle denotes a partially acquired link which has to be released.
//
// ReleaseTimer is synchronous: when it returns, no callback for the link
// is running and none will be started.
type Platform interface {
	CreateTimer() (Handle, error)
	SetOutputCallback(h Handle, cb OutputCallback, ctx Context) error
	StartTimer(h Handle) error
	NominalPeriod(h Handle) (period time.Duration, ok bool)
	ReleaseTimer(h Handle)
}

// Output describes a physical output (monitor).
// A Refresh of 0 means the output cannot tell its refresh period.
type Output struct {
	Name    string
	Refresh time.Duration
	Ready   bool
}

// Refresh60Hz is the refresh period of a 60 Hz output.
const Refresh60Hz = time.Second / 60
