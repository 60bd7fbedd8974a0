package displaylink

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/vsync/core"
	"github.com/npillmayer/vsync/core/timing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOutput = Output{Name: "built-in", Refresh: 2 * time.Millisecond, Ready: true}

func TestCreateFailsTransientlyWithoutOutputs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "vsync.display")
	defer teardown()
	//
	link := New(nil)
	h, err := link.CreateTimer()
	assert.Equal(t, NoHandle, h)
	assert.True(t, core.IsTransient(err))
	//
	sleeping := testOutput
	sleeping.Ready = false
	link.SetOutputs(sleeping)
	_, err = link.CreateTimer()
	assert.True(t, core.IsTransient(err))
	//
	link.SetReady(true)
	h, err = link.CreateTimer()
	require.NoError(t, err)
	assert.NotEqual(t, NoHandle, h)
	assert.Equal(t, 1, link.Active())
	link.ReleaseTimer(h)
	assert.Equal(t, 0, link.Active())
}

func TestStartRequiresCallback(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "vsync.display")
	defer teardown()
	//
	link := New(nil, testOutput)
	h, err := link.CreateTimer()
	require.NoError(t, err)
	defer link.ReleaseTimer(h)
	assert.Equal(t, core.EINVALID, core.Code(link.StartTimer(h)))
	assert.Equal(t, core.EINVALID, core.Code(link.SetOutputCallback(h, nil, 1)))
	assert.Equal(t, core.EMISSING, core.Code(link.SetOutputCallback(h+1, func(Context, timing.HostTime) {}, 1)))
	assert.Equal(t, core.EMISSING, core.Code(link.StartTimer(h+1)))
}

func TestNominalPeriod(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "vsync.display")
	defer teardown()
	//
	link := New(nil, Output{Name: "tv", Refresh: 0, Ready: true}, testOutput)
	h, err := link.CreateTimer()
	require.NoError(t, err)
	_, ok := link.NominalPeriod(h)
	assert.False(t, ok, "first output has an indefinite refresh period")
	link.ReleaseTimer(h)
	_, ok = link.NominalPeriod(h)
	assert.False(t, ok)
	//
	link.SetOutputs(testOutput)
	h, err = link.CreateTimer()
	require.NoError(t, err)
	p, ok := link.NominalPeriod(h)
	assert.True(t, ok)
	assert.Equal(t, 2*time.Millisecond, p)
	link.ReleaseTimer(h)
}

func TestCallbacksReportUpcomingVsync(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "vsync.display")
	defer teardown()
	//
	hc := timing.NewHostClock(nil, timing.TimeBase{Numer: 125, Denom: 3})
	link := New(hc, testOutput)
	h, err := link.CreateTimer()
	require.NoError(t, err)
	var calls, past atomic.Int32
	var gotCtx atomic.Uint32
	require.NoError(t, link.SetOutputCallback(h, func(ctx Context, output timing.HostTime) {
		gotCtx.Store(uint32(ctx))
		if !hc.ConvertToMonotonic(output).After(hc.Now()) {
			past.Add(1)
		}
		calls.Add(1)
	}, 7))
	require.NoError(t, link.StartTimer(h))
	require.NoError(t, link.StartTimer(h), "starting twice is harmless")
	assert.Eventually(t, func() bool { return calls.Load() >= 5 }, time.Second, time.Millisecond)
	link.ReleaseTimer(h)
	assert.Equal(t, uint32(7), gotCtx.Load())
	assert.Equal(t, int32(0), past.Load(), "link must report future vsync times")
}

func TestReleaseIsSynchronous(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "vsync.display")
	defer teardown()
	//
	link := New(nil, testOutput)
	h, err := link.CreateTimer()
	require.NoError(t, err)
	var calls atomic.Int32
	require.NoError(t, link.SetOutputCallback(h, func(Context, timing.HostTime) {
		calls.Add(1)
	}, 1))
	require.NoError(t, link.StartTimer(h))
	assert.Eventually(t, func() bool { return calls.Load() > 0 }, time.Second, time.Millisecond)
	link.ReleaseTimer(h)
	frozen := calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, frozen, calls.Load(), "no callback may fire after release")
	link.ReleaseTimer(h) // unknown by now
}

func TestInjectSkew(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "vsync.display")
	defer teardown()
	//
	hc := timing.NewHostClock(nil, timing.NanosecondBase)
	link := New(hc, testOutput)
	h, err := link.CreateTimer()
	require.NoError(t, err)
	defer link.ReleaseTimer(h)
	outputs := make(chan timing.Timestamp, 64)
	require.NoError(t, link.SetOutputCallback(h, func(_ Context, output timing.HostTime) {
		select {
		case outputs <- hc.ConvertToMonotonic(output):
		default:
		}
	}, 1))
	link.InjectSkew(-time.Hour)
	require.NoError(t, link.StartTimer(h))
	first := <-outputs
	assert.True(t, first.Before(hc.Now()), "skewed output must lie in the past")
	second := <-outputs
	assert.True(t, second.After(first))
}
