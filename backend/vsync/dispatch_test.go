package vsync

import (
	"sync"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/vsync/core/timing"
	"github.com/stretchr/testify/assert"
)

func TestDispatcherFanOut(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "vsync.display")
	defer teardown()
	//
	vd := NewDispatcher()
	_, ok := vd.Last()
	assert.False(t, ok)
	var order []string
	a := vd.Add(ObserverFunc(func(timing.Timestamp) { order = append(order, "a") }))
	vd.Add(ObserverFunc(func(timing.Timestamp) { order = append(order, "b") }))
	assert.Equal(t, 2, vd.Len())
	vd.NotifyVsync(42)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.True(t, vd.Remove(a))
	assert.False(t, vd.Remove(a))
	vd.NotifyVsync(43)
	assert.Equal(t, []string{"a", "b", "b"}, order)
	assert.Equal(t, uint64(2), vd.Delivered())
	last, ok := vd.Last()
	assert.True(t, ok)
	assert.Equal(t, timing.Timestamp(43), last)
}

func TestDispatcherConcurrentChanges(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "vsync.display")
	defer teardown()
	//
	vd := NewDispatcher()
	rec := &recorder{}
	vd.Add(rec)
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ts := timing.Timestamp(0); ; ts++ {
			select {
			case <-stop:
				return
			default:
				vd.NotifyVsync(ts)
			}
		}
	}()
	for i := 0; i < 1000; i++ {
		id := vd.Add(ObserverFunc(func(timing.Timestamp) {}))
		vd.Remove(id)
	}
	close(stop)
	wg.Wait()
	assert.Equal(t, 1, vd.Len())
	assert.Equal(t, uint64(rec.count()), vd.Delivered())
}
