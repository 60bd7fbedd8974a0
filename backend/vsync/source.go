package vsync

import (
	"code.cloudfoundry.org/clock"
	"github.com/npillmayer/schuko"
	"github.com/npillmayer/vsync/backend/vsync/displaylink"
	"github.com/npillmayer/vsync/core/control"
	"github.com/npillmayer/vsync/core/timing"
)

// Environment bundles the collaborators of vsync sources and displays.
type Environment struct {
	Loop     *control.Loop        // control thread; required
	Platform displaylink.Platform // display timers for hardware vsync
	Clock    timing.Clock         // time line of delivered timestamps
	Timers   clock.Clock          // drives software vsync
	Settings Settings
	Metrics  *Metrics // may be nil
}

// NewEnvironment creates an environment with a display link on a single
// 60 Hz output, settings read from conf, and unregistered metrics.
func NewEnvironment(conf schuko.Configuration, loop *control.Loop) Environment {
	hc := timing.NewHostClock(loop.Clock(), timing.NanosecondBase)
	return Environment{
		Loop: loop,
		Platform: displaylink.New(hc, displaylink.Output{
			Name:    "default",
			Refresh: displaylink.Refresh60Hz,
			Ready:   true,
		}),
		Clock:    hc,
		Timers:   hc.Clock(),
		Settings: SettingsFrom(conf),
		Metrics:  NewMetrics(nil),
	}
}

// withDefaults fills in missing collaborators. Loop cannot be defaulted.
func (env Environment) withDefaults() Environment {
	if env.Loop == nil {
		panic("vsync: environment without control loop")
	}
	if env.Timers == nil {
		env.Timers = env.Loop.Clock()
	}
	if env.Clock == nil {
		env.Clock = timing.NewHostClock(env.Timers, timing.NanosecondBase)
	}
	if env.Platform == nil {
		hc, ok := env.Clock.(*timing.HostClock)
		if !ok {
			hc = timing.NewHostClock(env.Timers, timing.NanosecondBase)
		}
		env.Platform = displaylink.New(hc)
	}
	if env.Settings.RetryDelay <= 0 {
		env.Settings.RetryDelay = DefaultRetryDelay
	}
	if env.Settings.SoftwarePeriod <= 0 {
		env.Settings.SoftwarePeriod = DefaultRefreshPeriod
	}
	return env
}

// --- Sources ---------------------------------------------------------------

// Kind tells hardware and software sources apart.
type Kind int8

const (
	HardwareKind Kind = iota
	SoftwareKind
)

func (k Kind) String() string {
	if k == HardwareKind {
		return "hardware"
	}
	return "software"
}

// Source owns a global display and dispatches its vsync to observers.
//
// The display is enabled when the first observer is added and disabled
// when the last one is removed.
type Source struct {
	loop       *control.Loop
	kind       Kind
	display    Display
	dispatcher *Dispatcher
}

// NewHardwareSource creates a source with a hardware display. The display
// is not enabled.
func NewHardwareSource(env Environment) *Source {
	env = env.withDefaults()
	vd := NewDispatcher()
	return &Source{
		loop:       env.Loop,
		kind:       HardwareKind,
		display:    NewHardwareDisplay(env, vd),
		dispatcher: vd,
	}
}

// NewSoftwareSource creates a source with a software display. The display
// is not enabled.
func NewSoftwareSource(env Environment) *Source {
	env = env.withDefaults()
	vd := NewDispatcher()
	return &Source{
		loop:       env.Loop,
		kind:       SoftwareKind,
		display:    NewSoftwareDisplay(env, vd),
		dispatcher: vd,
	}
}

// CreateHardwareVsyncSource creates a vsync source, preferring hardware
// vsync. It enables the hardware display once to find out if it works. If
// it does not, a software source is returned instead. Either way, the
// returned source's display is disabled.
//
// A hardware display which is only temporarily unable to start counts as
// not working: the probe does not wait for retries.
//
// CreateHardwareVsyncSource must be called on the control thread.
func CreateHardwareVsyncSource(env Environment) *Source {
	env = env.withDefaults()
	env.Loop.MustBeControlThread("CreateHardwareVsyncSource")
	if env.Settings.DisableHardware {
		tracer().Infof("hardware vsync disabled by configuration, using software vsync")
		return NewSoftwareSource(env)
	}
	src := NewHardwareSource(env)
	display := src.GlobalDisplay()
	display.EnableVsync()
	if !display.IsVsyncEnabled() {
		tracer().Infof("hardware vsync source not enabled, falling back to software vsync")
		display.DisableVsync()
		env.Metrics.fallback()
		return NewSoftwareSource(env)
	}
	display.DisableVsync()
	return src
}

// Kind returns the kind of display the source owns.
func (s *Source) Kind() Kind {
	return s.kind
}

// GlobalDisplay returns the source's display.
func (s *Source) GlobalDisplay() Display {
	return s.display
}

// Dispatcher returns the dispatcher the display delivers to.
func (s *Source) Dispatcher() *Dispatcher {
	return s.dispatcher
}

// AddObserver adds an observer and enables the display if it is the first
// one. AddObserver must be called on the control thread.
func (s *Source) AddObserver(o Observer) ObserverID {
	s.loop.MustBeControlThread("AddObserver")
	id := s.dispatcher.Add(o)
	if s.dispatcher.Len() == 1 {
		s.display.EnableVsync()
	}
	return id
}

// RemoveObserver removes an observer and disables the display after the
// last one is gone. RemoveObserver must be called on the control thread.
func (s *Source) RemoveObserver(id ObserverID) bool {
	s.loop.MustBeControlThread("RemoveObserver")
	if !s.dispatcher.Remove(id) {
		return false
	}
	if s.dispatcher.Len() == 0 {
		s.display.DisableVsync()
	}
	return true
}

// Close disables the display, canceling pending retries. Observers stay
// registered but will not be notified any more. Close must be called on
// the control thread.
func (s *Source) Close() {
	s.loop.MustBeControlThread("Close")
	s.display.DisableVsync()
}
