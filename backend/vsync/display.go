package vsync

import (
	"sync/atomic"
	"time"

	"github.com/npillmayer/vsync/backend/vsync/displaylink"
	"github.com/npillmayer/vsync/core/timing"
)

// Display is a source of vsync notifications for one logical display.
//
// EnableVsync, DisableVsync and IsVsyncEnabled must be called on the
// control thread. VsyncRate may be called from anywhere.
type Display interface {
	EnableVsync()
	DisableVsync()
	IsVsyncEnabled() bool
	VsyncRate() time.Duration // nominal interval between vsyncs
}

// Observer receives vsync notifications. NotifyVsync is called on the
// display's callback goroutine and must not block.
type Observer interface {
	NotifyVsync(ts timing.Timestamp)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ts timing.Timestamp)

// NotifyVsync calls f(ts).
func (f ObserverFunc) NotifyVsync(ts timing.Timestamp) {
	f(ts)
}

// --- Registered displays ---------------------------------------------------

// maxDisplays is the number of hardware displays which may be enabled at
// the same time.
const maxDisplays = 32

// displayTable maps display link contexts to hardware displays.
//
// Display links call back with a context value only. A display registers
// before it starts its link and unregisters before it releases it. A callback
// looking up a context which has been unregistered finds nothing and is
// dropped.
type displayTable struct {
	slots [maxDisplays]atomic.Pointer[HardwareDisplay]
}

var displays displayTable

// register returns the context for d, or false if the table is full.
// Context values start at 1.
func (tbl *displayTable) register(d *HardwareDisplay) (displaylink.Context, bool) {
	for i := range tbl.slots {
		if tbl.slots[i].CompareAndSwap(nil, d) {
			return displaylink.Context(i + 1), true
		}
	}
	return 0, false
}

func (tbl *displayTable) unregister(ctx displaylink.Context, d *HardwareDisplay) {
	if ctx == 0 || int(ctx) > maxDisplays {
		return
	}
	tbl.slots[ctx-1].CompareAndSwap(d, nil)
}

func (tbl *displayTable) lookup(ctx displaylink.Context) *HardwareDisplay {
	if ctx == 0 || int(ctx) > maxDisplays {
		return nil
	}
	return tbl.slots[ctx-1].Load()
}

// vsyncCallback is the output callback for all hardware displays.
func vsyncCallback(ctx displaylink.Context, output timing.HostTime) {
	if d := displays.lookup(ctx); d != nil {
		d.outputCallback(output)
	}
}
