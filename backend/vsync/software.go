package vsync

import (
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/npillmayer/vsync/core/control"
	"github.com/npillmayer/vsync/core/timing"
)

// SoftwareDisplay paces vsync with a ticker. It is the fallback for systems
// where hardware vsync is not available.
//
// Every tick delivers the current time, so notifications never lie in the
// future. Tick times are not aligned to any physical refresh.
type SoftwareDisplay struct {
	loop     *control.Loop
	timers   clock.Clock
	clock    timing.Clock
	observer Observer
	period   time.Duration
	enabled  bool
	stop     chan struct{}
	done     chan struct{}
}

var _ Display = (*SoftwareDisplay)(nil)

// NewSoftwareDisplay creates a disabled software display, ticking with the
// software period of the environment's settings.
func NewSoftwareDisplay(env Environment, observer Observer) *SoftwareDisplay {
	env = env.withDefaults()
	return &SoftwareDisplay{
		loop:     env.Loop,
		timers:   env.Timers,
		clock:    env.Clock,
		observer: observer,
		period:   env.Settings.SoftwarePeriod,
	}
}

// EnableVsync starts the ticker. It has no effect on an enabled display.
func (d *SoftwareDisplay) EnableVsync() {
	d.loop.MustBeControlThread("EnableVsync")
	if d.enabled {
		return
	}
	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	d.enabled = true
	go d.run(d.timers.NewTicker(d.period), d.stop, d.done)
	tracer().Debugf("software vsync enabled, rate %v", d.period)
}

// DisableVsync stops the ticker and waits for a running notification to
// complete.
func (d *SoftwareDisplay) DisableVsync() {
	d.loop.MustBeControlThread("DisableVsync")
	if !d.enabled {
		return
	}
	close(d.stop)
	<-d.done
	d.enabled = false
	tracer().Debugf("software vsync disabled")
}

// IsVsyncEnabled reports whether the ticker is running.
func (d *SoftwareDisplay) IsVsyncEnabled() bool {
	d.loop.MustBeControlThread("IsVsyncEnabled")
	return d.enabled
}

// VsyncRate returns the ticker period.
func (d *SoftwareDisplay) VsyncRate() time.Duration {
	return d.period
}

func (d *SoftwareDisplay) run(ticker clock.Ticker, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
		}
		select {
		case <-stop:
			return
		default:
		}
		d.observer.NotifyVsync(d.clock.Now())
	}
}
