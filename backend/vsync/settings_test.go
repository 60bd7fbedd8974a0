package vsync

import (
	"testing"
	"time"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

func TestSettingsFromConfiguration(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "vsync.display")
	defer teardown()
	//
	assert.Equal(t, DefaultSettings(), SettingsFrom(nil))
	s := SettingsFrom(testconfig.Conf{
		"vsync.retry-delay":      "250ms",
		"vsync.software-rate":    "50",
		"vsync.disable-hardware": "yes",
	})
	assert.Equal(t, 250*time.Millisecond, s.RetryDelay)
	assert.Equal(t, 20*time.Millisecond, s.SoftwarePeriod)
	assert.False(t, s.DisableHardware, "'yes' is not a boolean")
	//
	s = SettingsFrom(testconfig.Conf{
		"vsync.retry-delay":   "-1s",
		"vsync.software-rate": "fast",
	})
	assert.Equal(t, DefaultRetryDelay, s.RetryDelay)
	assert.Equal(t, DefaultRefreshPeriod, s.SoftwarePeriod)
}
