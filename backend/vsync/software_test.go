package vsync

import (
	"testing"
	"time"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/vsync/core/control"
	"github.com/npillmayer/vsync/core/timing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoftwareDisplayTicks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "vsync.display")
	defer teardown()
	//
	loop := control.NewLoop(nil)
	loop.Start()
	defer loop.Stop()
	hc := timing.NewHostClock(nil, timing.NanosecondBase)
	rec := &recorder{clock: hc}
	settings := DefaultSettings()
	settings.SoftwarePeriod = 2 * time.Millisecond
	d := NewSoftwareDisplay(Environment{Loop: loop, Clock: hc, Settings: settings}, rec)
	assert.Equal(t, 2*time.Millisecond, d.VsyncRate())
	require.NoError(t, loop.Call(func() {
		d.EnableVsync()
		d.EnableVsync()
		assert.True(t, d.IsVsyncEnabled())
	}))
	assert.Eventually(t, func() bool { return rec.count() >= 10 }, 2*time.Second, time.Millisecond)
	require.NoError(t, loop.Call(d.DisableVsync))
	frozen := rec.count()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, frozen, rec.count(), "no notification after disable")
	stamps, future := rec.snapshot()
	assert.Equal(t, 0, future)
	for i := 1; i < len(stamps); i++ {
		assert.False(t, stamps[i].Before(stamps[i-1]))
	}
	require.NoError(t, loop.Call(func() {
		assert.False(t, d.IsVsyncEnabled())
		d.DisableVsync()
	}))
}
