package control

import (
	"time"

	"code.cloudfoundry.org/clock"
)

type taskState int8

const (
	taskPending taskState = iota
	taskFired
	taskCanceled
)

// DelayedTask is a one-shot call of a function on the control thread,
// scheduled to happen after a delay. As long as it has not fired, it may
// be canceled.
//
// The task's state is only ever touched on the control thread, which makes
// Cancel and firing mutually exclusive: a canceled task will never fire,
// and a task fires at most once.
type DelayedTask struct {
	loop   *Loop
	timer  clock.Timer
	fn     func()
	delay  time.Duration
	cancel chan struct{}
	state  taskState
}

// Schedule arranges for fn to be called on the control thread after delay.
// Schedule must be called on the control thread.
func (l *Loop) Schedule(delay time.Duration, fn func()) *DelayedTask {
	l.MustBeControlThread("Schedule")
	t := &DelayedTask{
		loop:   l,
		timer:  l.clk.NewTimer(delay),
		fn:     fn,
		delay:  delay,
		cancel: make(chan struct{}),
	}
	go t.await()
	return t
}

// await runs on a helper goroutine and hands the task over to the control
// thread when the timer expires.
func (t *DelayedTask) await() {
	select {
	case <-t.timer.C():
		if err := t.loop.Post(t.fire); err != nil {
			tracer().Debugf("delayed task dropped: %v", err)
		}
	case <-t.cancel:
	}
}

func (t *DelayedTask) fire() {
	if t.state != taskPending {
		return
	}
	t.state = taskFired
	t.fn()
}

// Cancel prevents a pending task from firing. It returns false if the task
// has already fired or has been canceled before. Cancel on a nil task is a
// no-op. Cancel must be called on the control thread.
func (t *DelayedTask) Cancel() bool {
	if t == nil {
		return false
	}
	t.loop.MustBeControlThread("Cancel")
	if t.state != taskPending {
		return false
	}
	t.state = taskCanceled
	t.timer.Stop()
	close(t.cancel)
	return true
}

// Pending reports whether the task is still waiting to fire.
// A nil task is never pending. Pending must be called on the control thread.
func (t *DelayedTask) Pending() bool {
	if t == nil {
		return false
	}
	t.loop.MustBeControlThread("Pending")
	return t.state == taskPending
}

// Delay returns the delay the task has been scheduled with.
func (t *DelayedTask) Delay() time.Duration {
	return t.delay
}
