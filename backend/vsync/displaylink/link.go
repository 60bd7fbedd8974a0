package displaylink

import (
	"sync"
	"sync/atomic"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/npillmayer/vsync/core"
	"github.com/npillmayer/vsync/core/timing"
)

// Link is a display link driven by clock tickers.
//
// A link created with CreateTimer is bound to all outputs ready at that
// moment. It ticks with the refresh period of the first of them, or at
// 60 Hz if that output does not report a refresh period. Every tick
// reports the tick time plus one period as the upcoming vsync.
type Link struct {
	hc      *timing.HostClock
	mu      sync.Mutex // guards outputs, timers and next
	outputs []Output
	timers  map[Handle]*linkTimer
	next    Handle
	skew    atomic.Int64 // applied once to the next reported output time
}

type linkTimer struct {
	period  time.Duration // nominal; 0 if indefinite
	outputs int
	cb      OutputCallback
	ctx     Context
	running bool
	stop    chan struct{}
	done    chan struct{}
}

var _ Platform = (*Link)(nil)

// New creates a display link platform for a set of outputs, reading time
// from hc. If hc is nil, a host clock on the system clock is used.
func New(hc *timing.HostClock, outputs ...Output) *Link {
	if hc == nil {
		hc = timing.NewHostClock(nil, timing.NanosecondBase)
	}
	l := &Link{
		hc:     hc,
		timers: make(map[Handle]*linkTimer),
	}
	l.SetOutputs(outputs...)
	return l
}

// SetOutputs replaces the configuration of outputs. Links already created
// keep ticking with their period.
func (l *Link) SetOutputs(outputs ...Output) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.outputs = append(l.outputs[:0], outputs...)
	tracer().Debugf("display link configured with %d outputs", len(outputs))
}

// Outputs returns a copy of the configured outputs.
func (l *Link) Outputs() []Output {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Output(nil), l.outputs...)
}

// SetReady flags all outputs as ready or not ready. Unready outputs model
// displays coming back from sleep or in the middle of a reconfiguration.
func (l *Link) SetReady(ready bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.outputs {
		l.outputs[i].Ready = ready
	}
}

// InjectSkew shifts the next reported vsync time by d. A negative skew far
// enough in the past makes the link report a non-advancing timestamp, which
// is what some hardware does after mode switches.
func (l *Link) InjectSkew(d time.Duration) {
	l.skew.Store(int64(d))
}

// Active returns the number of links currently acquired.
func (l *Link) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.timers)
}

// CreateTimer acquires a link for all ready outputs.
func (l *Link) CreateTimer() (Handle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var ready []Output
	for _, o := range l.outputs {
		if o.Ready {
			ready = append(ready, o)
		}
	}
	if len(ready) == 0 {
		return NoHandle, core.Error(core.ETRANSIENT, "no active outputs to create a display link for")
	}
	l.next++
	h := l.next
	l.timers[h] = &linkTimer{
		period:  ready[0].Refresh,
		outputs: len(ready),
	}
	tracer().Debugf("display link %d created for %d outputs", h, len(ready))
	return h, nil
}

// SetOutputCallback registers the callback for a link which has not yet
// been started.
func (l *Link) SetOutputCallback(h Handle, cb OutputCallback, ctx Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.timers[h]
	if !ok {
		return core.Error(core.EMISSING, "no display link with handle %d", h)
	}
	if cb == nil {
		return core.Error(core.EINVALID, "output callback for display link %d is nil", h)
	}
	if t.running {
		return core.Error(core.EINVALID, "display link %d is running, cannot change callback", h)
	}
	t.cb, t.ctx = cb, ctx
	return nil
}

// StartTimer starts calling back. Starting a running link has no effect.
func (l *Link) StartTimer(h Handle) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.timers[h]
	if !ok {
		return core.Error(core.EMISSING, "no display link with handle %d", h)
	}
	if t.cb == nil {
		return core.Error(core.EINVALID, "display link %d has no output callback", h)
	}
	if t.running {
		return nil
	}
	tick := t.period
	if tick <= 0 {
		tick = Refresh60Hz
	}
	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	t.running = true
	go l.run(t, l.hc.Clock().NewTicker(tick), tick)
	return nil
}

// NominalPeriod returns the refresh period of a link. ok is false if the
// period is indefinite or h is unknown.
func (l *Link) NominalPeriod(h Handle) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.timers[h]
	if !ok || t.period <= 0 {
		return 0, false
	}
	return t.period, true
}

// ReleaseTimer stops a link and waits for its goroutine to terminate.
// Releasing an unknown handle has no effect.
func (l *Link) ReleaseTimer(h Handle) {
	l.mu.Lock()
	t, ok := l.timers[h]
	delete(l.timers, h)
	l.mu.Unlock()
	if !ok {
		return
	}
	if t.running {
		close(t.stop)
		<-t.done
	}
	tracer().Debugf("display link %d released", h)
}

func (l *Link) run(t *linkTimer, ticker clock.Ticker, tick time.Duration) {
	defer close(t.done)
	defer ticker.Stop()
	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C():
		}
		select { // stop wins over a tick which raced with it
		case <-t.stop:
			return
		default:
		}
		next := l.hc.Now().Add(tick)
		if s := l.skew.Swap(0); s != 0 {
			next = next.Add(time.Duration(s))
		}
		t.cb(t.ctx, l.hc.ToHost(next))
	}
}
