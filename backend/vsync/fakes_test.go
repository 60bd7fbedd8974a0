package vsync

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/npillmayer/vsync/backend/vsync/displaylink"
	"github.com/npillmayer/vsync/core"
	"github.com/npillmayer/vsync/core/timing"
)

// fakePlatform hands out display timers which fire only when told to.
type fakePlatform struct {
	mu        sync.Mutex
	fireMu    sync.RWMutex // held for reading while callbacks run
	transient int          // number of CreateTimer calls still to fail transiently
	partial   bool         // transient failures return a handle
	failCB    bool
	failStart bool
	period    time.Duration // 0: indefinite
	next      displaylink.Handle
	timers    map[displaylink.Handle]*fakeTimer
	creates   int
	releases  int
}

type fakeTimer struct {
	cb      displaylink.OutputCallback
	ctx     displaylink.Context
	started bool
}

var _ displaylink.Platform = (*fakePlatform)(nil)

func newFakePlatform(period time.Duration) *fakePlatform {
	return &fakePlatform{
		period: period,
		timers: make(map[displaylink.Handle]*fakeTimer),
	}
}

func (p *fakePlatform) CreateTimer() (displaylink.Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.creates++
	if p.transient > 0 {
		p.transient--
		err := core.Error(core.ETRANSIENT, "displays asleep")
		if p.partial {
			p.next++
			p.timers[p.next] = &fakeTimer{}
			return p.next, err
		}
		return displaylink.NoHandle, err
	}
	p.next++
	p.timers[p.next] = &fakeTimer{}
	return p.next, nil
}

func (p *fakePlatform) SetOutputCallback(h displaylink.Handle, cb displaylink.OutputCallback, ctx displaylink.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failCB {
		return core.Error(core.EINVALID, "callback rejected")
	}
	t, ok := p.timers[h]
	if !ok {
		return core.Error(core.EMISSING, "no timer %d", h)
	}
	t.cb, t.ctx = cb, ctx
	return nil
}

func (p *fakePlatform) StartTimer(h displaylink.Handle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failStart {
		return core.Error(core.EUNSUPPORTED, "cannot start")
	}
	t, ok := p.timers[h]
	if !ok {
		return core.Error(core.EMISSING, "no timer %d", h)
	}
	t.started = true
	return nil
}

func (p *fakePlatform) NominalPeriod(h displaylink.Handle) (time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.timers[h]; !ok || p.period == 0 {
		return 0, false
	}
	return p.period, true
}

func (p *fakePlatform) ReleaseTimer(h displaylink.Handle) {
	p.fireMu.Lock() // wait for running callbacks
	defer p.fireMu.Unlock()
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.timers[h]; ok {
		delete(p.timers, h)
		p.releases++
	}
}

// fire calls back all started timers with output and returns the number of
// callbacks made.
func (p *fakePlatform) fire(output timing.HostTime) int {
	p.fireMu.RLock()
	defer p.fireMu.RUnlock()
	p.mu.Lock()
	var started []*fakeTimer
	for _, t := range p.timers {
		if t.started {
			started = append(started, t)
		}
	}
	p.mu.Unlock()
	for _, t := range started {
		t.cb(t.ctx, output)
	}
	return len(started)
}

// started returns callback and context of some started timer.
func (p *fakePlatform) started() (displaylink.OutputCallback, displaylink.Context, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.timers {
		if t.started {
			return t.cb, t.ctx, true
		}
	}
	return nil, 0, false
}

func (p *fakePlatform) counts() (creates, releases, live int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.creates, p.releases, len(p.timers)
}

func (p *fakePlatform) setTransient(n int, partial bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transient, p.partial = n, partial
}

// ---------------------------------------------------------------------------

// manualClock is a time line moved by tests. Host ticks are nanoseconds.
type manualClock struct {
	now atomic.Int64
}

func (c *manualClock) Now() timing.Timestamp {
	return timing.Timestamp(c.now.Load())
}

func (c *manualClock) ConvertToMonotonic(raw timing.HostTime) timing.Timestamp {
	return timing.Timestamp(raw)
}

func (c *manualClock) Set(ts timing.Timestamp) {
	c.now.Store(int64(ts))
}

// ---------------------------------------------------------------------------

// recorder is an observer which remembers what it has been notified of.
type recorder struct {
	mu     sync.Mutex
	clock  timing.Clock
	stamps []timing.Timestamp
	future int // notifications later than the clock at delivery
}

func (r *recorder) NotifyVsync(ts timing.Timestamp) {
	ahead := r.clock != nil && ts.After(r.clock.Now())
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stamps = append(r.stamps, ts)
	if ahead {
		r.future++
	}
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stamps)
}

func (r *recorder) last() timing.Timestamp {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.stamps) == 0 {
		return -1
	}
	return r.stamps[len(r.stamps)-1]
}

func (r *recorder) snapshot() ([]timing.Timestamp, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]timing.Timestamp(nil), r.stamps...), r.future
}
