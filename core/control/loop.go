package control

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"code.cloudfoundry.org/clock"
	"github.com/npillmayer/vsync/core"
)

// ErrLoopStopped is returned when tasks are handed to a loop which has
// been stopped.
var ErrLoopStopped = errors.New("control: loop is stopped")

// Loop is a control thread. It executes tasks one at a time, in the order
// they have been posted, on a single goroutine locked to its OS thread.
type Loop struct {
	clk     clock.Clock
	mu      sync.Mutex // guards queue and stopped
	queue   []func()
	spare   []func()
	stopped bool
	wake    chan struct{}
	done    chan struct{}
	started atomic.Bool
	gid     atomic.Uint64 // goroutine id of the running loop, 0 if not running
}

// NewLoop creates a control loop. Delayed tasks will be timed with clk;
// if clk is nil, the real-time system clock is used.
// The loop has to be started before it executes tasks.
func NewLoop(clk clock.Clock) *Loop {
	if clk == nil {
		clk = clock.NewClock()
	}
	return &Loop{
		clk:   clk,
		queue: make([]func(), 0, 16),
		spare: make([]func(), 0, 16),
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Clock returns the clock delayed tasks are timed with.
func (l *Loop) Clock() clock.Clock {
	return l.clk
}

// Start starts the control thread. Calling Start more than once has no effect.
func (l *Loop) Start() {
	if !l.started.CompareAndSwap(false, true) {
		return
	}
	go l.run()
}

// Stop stops the loop after all tasks posted so far have been executed.
// If called from outside the control thread, Stop waits for the loop to
// terminate. Stop is idempotent.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()
	l.signal()
	if l.started.Load() && !l.IsControlThread() {
		<-l.done
	}
}

// Post hands a task to the control thread. It never blocks.
// Tasks posted before the loop is started will be executed as soon as it
// starts.
func (l *Loop) Post(task func()) error {
	if task == nil {
		return nil
	}
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return ErrLoopStopped
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()
	l.signal()
	return nil
}

// Call executes task on the control thread and waits for it to complete.
// If the caller already is the control thread, task is executed immediately.
// A panicking task is reported as an error of code core.EINTERNAL.
func (l *Loop) Call(task func()) (err error) {
	if l.IsControlThread() {
		task()
		return nil
	}
	done := make(chan struct{})
	perr := l.Post(func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				err = core.Error(core.EINTERNAL, "control task panicked: %v", r)
			}
		}()
		task()
	})
	if perr != nil {
		return perr
	}
	<-done
	return err
}

// IsControlThread reports whether the caller is executing on the control thread.
func (l *Loop) IsControlThread() bool {
	id := l.gid.Load()
	if id == 0 {
		return false
	}
	return goroutineID() == id
}

// MustBeControlThread panics if the caller is not executing on the control
// thread. op names the offending operation in the panic message.
func (l *Loop) MustBeControlThread(op string) {
	if !l.IsControlThread() {
		panic(fmt.Sprintf("control: %s called outside of the control thread", op))
	}
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	l.gid.Store(goroutineID())
	defer l.gid.Store(0)
	defer close(l.done)
	tracer().Debugf("control loop started")
	for {
		l.mu.Lock()
		batch := l.queue
		l.queue, l.spare = l.spare[:0], nil
		stopped := l.stopped
		l.mu.Unlock()
		for i, task := range batch {
			l.execute(task)
			batch[i] = nil
		}
		l.mu.Lock()
		l.spare = batch[:0]
		l.mu.Unlock()
		if len(batch) > 0 {
			continue
		}
		if stopped {
			tracer().Debugf("control loop stopped")
			return
		}
		<-l.wake
	}
}

// execute runs a task; a panic does not take down the control thread.
func (l *Loop) execute(task func()) {
	defer func() {
		if r := recover(); r != nil {
			tracer().Errorf("control task panicked: %v", r)
		}
	}()
	task()
}

// goroutineID returns the current goroutine's ID, parsed from the
// header line of a stack trace ("goroutine NNN [").
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
