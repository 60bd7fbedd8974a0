package vsync

import (
	"math/rand"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/vsync/core/timing"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeScenarios(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "vsync.display")
	defer teardown()
	//
	for _, tc := range []struct {
		name                string
		next, previous, now timing.Timestamp
		deliver, store      timing.Timestamp
		correction          Correction
	}{
		{"non-advancing hardware", 900, 1000, 1050, 1050, 1050, GlitchCorrection},
		{"normal cadence", 1016, 1000, 1005, 1000, 1016, NoCorrection},
		{"early callback", 1016, 1000, 990, 990, 1016, EarlyCorrection},
		{"repeated timestamp", 1000, 1000, 1010, 1010, 1010, GlitchCorrection},
		{"callback exactly at previous vsync", 1016, 1000, 1000, 1000, 1016, NoCorrection},
	} {
		deliver, store, c := Normalize(tc.next, tc.previous, tc.now)
		assert.Equal(t, tc.deliver, deliver, tc.name)
		assert.Equal(t, tc.store, store, tc.name)
		assert.Equal(t, tc.correction, c, tc.name)
	}
}

func TestNormalizeNeverDeliversFutureOrBackwards(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "vsync.display")
	defer teardown()
	//
	rnd := rand.New(rand.NewSource(4711))
	for run := 0; run < 100; run++ {
		now := timing.Timestamp(rnd.Int63n(1e6))
		previous := now
		delivered := timing.Timestamp(-1)
		for i := 0; i < 1000; i++ {
			now += timing.Timestamp(rnd.Int63n(20000))
			// hardware reports vsyncs around now, sometimes in the past
			next := now + timing.Timestamp(rnd.Int63n(40000)) - 10000
			var deliver timing.Timestamp
			deliver, previous, _ = Normalize(next, previous, now)
			if !assert.False(t, deliver.After(now), "delivered %v after now %v", deliver, now) {
				return
			}
			if !assert.False(t, deliver.Before(delivered), "delivered %v before %v", deliver, delivered) {
				return
			}
			delivered = deliver
		}
	}
}

func TestCorrectionString(t *testing.T) {
	assert.Equal(t, "glitch", GlitchCorrection.String())
	assert.Equal(t, "early", EarlyCorrection.String())
	assert.Equal(t, "none", NoCorrection.String())
	assert.Equal(t, "enabled", Enabled.String())
}
