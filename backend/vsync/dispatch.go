package vsync

import (
	"sync"
	"sync/atomic"

	"github.com/npillmayer/vsync/core/timing"
)

// ObserverID identifies an observer added to a Dispatcher.
type ObserverID uint64

// Dispatcher fans vsync notifications out to a set of observers.
//
// Adding and removing observers may happen from any goroutine. Delivery
// works on an immutable snapshot of the observer set and does not lock:
// an observer removed during a delivery may still receive that one
// notification.
type Dispatcher struct {
	mu        sync.Mutex // serializes writers
	nextID    ObserverID
	observers atomic.Pointer[[]registration]
	delivered atomic.Uint64
	last      atomic.Int64
}

type registration struct {
	id       ObserverID
	observer Observer
}

var _ Observer = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher without observers.
func NewDispatcher() *Dispatcher {
	vd := &Dispatcher{}
	vd.observers.Store(&[]registration{})
	return vd
}

// Add adds an observer and returns its id.
func (vd *Dispatcher) Add(o Observer) ObserverID {
	vd.mu.Lock()
	defer vd.mu.Unlock()
	vd.nextID++
	old := *vd.observers.Load()
	regs := make([]registration, len(old), len(old)+1)
	copy(regs, old)
	regs = append(regs, registration{id: vd.nextID, observer: o})
	vd.observers.Store(&regs)
	return vd.nextID
}

// Remove removes the observer with the given id. It returns false if there
// is no such observer.
func (vd *Dispatcher) Remove(id ObserverID) bool {
	vd.mu.Lock()
	defer vd.mu.Unlock()
	old := *vd.observers.Load()
	for i, r := range old {
		if r.id != id {
			continue
		}
		regs := make([]registration, 0, len(old)-1)
		regs = append(regs, old[:i]...)
		regs = append(regs, old[i+1:]...)
		vd.observers.Store(&regs)
		return true
	}
	return false
}

// Len returns the number of observers.
func (vd *Dispatcher) Len() int {
	return len(*vd.observers.Load())
}

// NotifyVsync delivers ts to all observers, in the order they have been added.
func (vd *Dispatcher) NotifyVsync(ts timing.Timestamp) {
	vd.last.Store(int64(ts))
	vd.delivered.Add(1)
	for _, r := range *vd.observers.Load() {
		r.observer.NotifyVsync(ts)
	}
}

// Delivered returns the number of notifications delivered so far.
func (vd *Dispatcher) Delivered() uint64 {
	return vd.delivered.Load()
}

// Last returns the most recently delivered timestamp. ok is false if
// nothing has been delivered yet.
func (vd *Dispatcher) Last() (ts timing.Timestamp, ok bool) {
	if vd.delivered.Load() == 0 {
		return 0, false
	}
	return timing.Timestamp(vd.last.Load()), true
}
