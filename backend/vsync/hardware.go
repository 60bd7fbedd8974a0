package vsync

import (
	"sync/atomic"
	"time"

	"github.com/npillmayer/vsync/backend/vsync/displaylink"
	"github.com/npillmayer/vsync/core"
	"github.com/npillmayer/vsync/core/control"
	"github.com/npillmayer/vsync/core/timing"
)

// HardwareDisplay is a display driven by a platform display link.
//
// All fields except previous are owned by the control thread. previous
// belongs to the link's callback goroutine while the display is enabled,
// and to the control thread otherwise.
type HardwareDisplay struct {
	loop     *control.Loop
	platform displaylink.Platform
	clock    timing.Clock
	observer Observer
	settings Settings
	metrics  *Metrics

	state  State
	handle displaylink.Handle
	ctx    displaylink.Context
	retry  *control.DelayedTask
	rate   atomic.Int64 // time.Duration

	previous timing.Timestamp // upcoming vsync as of the last callback
}

var _ Display = (*HardwareDisplay)(nil)

// NewHardwareDisplay creates a disabled display which will deliver vsync
// to observer once enabled.
func NewHardwareDisplay(env Environment, observer Observer) *HardwareDisplay {
	env = env.withDefaults()
	d := &HardwareDisplay{
		loop:     env.Loop,
		platform: env.Platform,
		clock:    env.Clock,
		observer: observer,
		settings: env.Settings,
		metrics:  env.Metrics,
	}
	d.rate.Store(int64(DefaultRefreshPeriod))
	return d
}

// EnableVsync acquires and starts a display link. Enabling an enabled
// display, or one which waits to retry, has no effect.
//
// If the link cannot be acquired because no output is ready, EnableVsync
// schedules another attempt after the configured retry delay and returns
// with the display still disabled. Any other failure leaves the display
// disabled for good, until EnableVsync is called again.
func (d *HardwareDisplay) EnableVsync() {
	d.loop.MustBeControlThread("EnableVsync")
	if d.state == Enabled || d.retry.Pending() {
		return
	}
	d.state = Enabling
	if err := d.acquire(); err != nil {
		d.state = Disabled
		if core.IsTransient(err) {
			tracer().Infof("display link not available, retrying in %v: %v", d.settings.RetryDelay, err)
			d.metrics.retry()
			d.retry = d.loop.Schedule(d.settings.RetryDelay, d.retryEnable)
			return
		}
		tracer().Errorf("cannot enable hardware vsync: %v", err)
		return
	}
	d.state = Enabled
	d.metrics.setEnabled(true)
	tracer().Debugf("hardware vsync enabled, rate %v", d.VsyncRate())
}

func (d *HardwareDisplay) retryEnable() {
	d.retry = nil
	d.EnableVsync()
}

// acquire sets up the display link. On error, everything acquired so far
// has been released again.
func (d *HardwareDisplay) acquire() (err error) {
	h, err := d.platform.CreateTimer()
	if err != nil {
		if h != displaylink.NoHandle {
			d.platform.ReleaseTimer(h)
		}
		return err
	}
	ctx, ok := displays.register(d)
	if !ok {
		d.platform.ReleaseTimer(h)
		return core.Error(core.EUNSUPPORTED, "more than %d hardware displays enabled", maxDisplays)
	}
	defer func() {
		if err != nil {
			displays.unregister(ctx, d)
			d.platform.ReleaseTimer(h)
		}
	}()
	if err = d.platform.SetOutputCallback(h, vsyncCallback, ctx); err != nil {
		return core.WrapError(err, core.Code(err), "cannot set vsync callback")
	}
	// the callback must not see a stale previous timestamp
	d.previous = d.clock.Now()
	if err = d.platform.StartTimer(h); err != nil {
		return core.WrapError(err, core.Code(err), "cannot start display link")
	}
	period, ok := d.platform.NominalPeriod(h)
	if !ok || period <= 0 {
		tracer().Debugf("display link reports no refresh period, assuming %v", DefaultRefreshPeriod)
		period = DefaultRefreshPeriod
	}
	d.rate.Store(int64(period))
	d.handle, d.ctx = h, ctx
	return nil
}

// DisableVsync stops and releases the display link. A pending retry is
// canceled. When DisableVsync returns, no more notifications will be
// delivered.
func (d *HardwareDisplay) DisableVsync() {
	d.loop.MustBeControlThread("DisableVsync")
	if d.retry.Cancel() {
		tracer().Debugf("pending enable of hardware vsync canceled")
	}
	d.retry = nil
	if d.state != Enabled {
		return
	}
	displays.unregister(d.ctx, d)
	d.platform.ReleaseTimer(d.handle)
	d.handle, d.ctx = displaylink.NoHandle, 0
	d.state = Disabled
	d.metrics.setEnabled(false)
	tracer().Debugf("hardware vsync disabled")
}

// IsVsyncEnabled reports whether the display delivers vsync.
func (d *HardwareDisplay) IsVsyncEnabled() bool {
	d.loop.MustBeControlThread("IsVsyncEnabled")
	return d.state == Enabled
}

// RetryPending reports whether the display waits to retry enabling.
func (d *HardwareDisplay) RetryPending() bool {
	d.loop.MustBeControlThread("RetryPending")
	return d.retry.Pending()
}

// State returns the enablement state.
func (d *HardwareDisplay) State() State {
	d.loop.MustBeControlThread("State")
	return d.state
}

// VsyncRate returns the nominal refresh period of the display link, as of
// the last successful EnableVsync. Before that, it returns
// DefaultRefreshPeriod.
func (d *HardwareDisplay) VsyncRate() time.Duration {
	return time.Duration(d.rate.Load())
}

// outputCallback runs on the link's goroutine. It must neither block nor
// allocate, so it does not trace.
func (d *HardwareDisplay) outputCallback(output timing.HostTime) {
	next := d.clock.ConvertToMonotonic(output)
	deliver, store, c := Normalize(next, d.previous, d.clock.Now())
	d.previous = store
	d.metrics.callback(c)
	d.observer.NotifyVsync(deliver)
}
