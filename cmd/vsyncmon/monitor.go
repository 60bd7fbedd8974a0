package main

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/npillmayer/vsync/core/timing"
)

// window is the number of intervals kept for statistics.
const window = 600

// monitor observes vsync notifications. NotifyVsync never blocks: if the
// collector falls behind, notifications are dropped and counted.
type monitor struct {
	ch      chan timing.Timestamp
	dropped atomic.Uint64
	mu      sync.Mutex // guards the fields below
	last    timing.Timestamp
	seen    int
	back    int // timestamps smaller than their predecessor
	deltas  []float64
	next    int
	done    chan struct{}
}

func newMonitor() *monitor {
	m := &monitor{
		ch:     make(chan timing.Timestamp, 64),
		deltas: make([]float64, 0, window),
		done:   make(chan struct{}),
	}
	go m.collect()
	return m
}

func (m *monitor) NotifyVsync(ts timing.Timestamp) {
	select {
	case m.ch <- ts:
	default:
		m.dropped.Add(1)
	}
}

func (m *monitor) collect() {
	defer close(m.done)
	for ts := range m.ch {
		m.mu.Lock()
		if m.seen > 0 {
			if ts.Before(m.last) {
				m.back++
			}
			d := ts.Sub(m.last).Seconds() * 1000
			if len(m.deltas) < window {
				m.deltas = append(m.deltas, d)
			} else {
				m.deltas[m.next] = d
				m.next = (m.next + 1) % window
			}
		}
		m.last = ts
		m.seen++
		m.mu.Unlock()
	}
}

// reset forgets everything seen so far, e.g. after the source has been
// disabled.
func (m *monitor) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen, m.back, m.next = 0, 0, 0
	m.deltas = m.deltas[:0]
}

func (m *monitor) stop() {
	close(m.ch)
	<-m.done
}

// cadence summarizes the intervals between notifications, in milliseconds.
type cadence struct {
	Seen      int
	Backwards int
	Dropped   uint64
	Mean      float64
	Jitter    float64 // standard deviation
	Min, Max  float64
	P99       float64
	Last      timing.Timestamp
}

func (m *monitor) cadence() (cadence, error) {
	m.mu.Lock()
	data := stats.Float64Data(append([]float64(nil), m.deltas...))
	c := cadence{Seen: m.seen, Backwards: m.back, Last: m.last}
	m.mu.Unlock()
	c.Dropped = m.dropped.Load()
	if data.Len() == 0 {
		return c, stats.ErrEmptyInput
	}
	var err error
	if c.Mean, err = stats.Mean(data); err != nil {
		return c, err
	}
	if c.Jitter, err = stats.StandardDeviation(data); err != nil {
		return c, err
	}
	if c.Min, err = stats.Min(data); err != nil {
		return c, err
	}
	if c.Max, err = stats.Max(data); err != nil {
		return c, err
	}
	c.P99, err = stats.Percentile(data, 99)
	return c, err
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
