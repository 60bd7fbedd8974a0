package vsync

import (
	"strconv"
	"strings"
	"time"

	"github.com/npillmayer/schuko"
)

// DefaultRetryDelay is the delay between a transient failure to acquire a
// display link and the next attempt.
const DefaultRetryDelay = 100 * time.Millisecond

// DefaultRefreshPeriod is assumed when the hardware cannot tell its refresh
// period. It is the period of a 60 Hz display.
const DefaultRefreshPeriod = time.Second / 60

// Settings holds the tunables of a vsync source.
type Settings struct {
	RetryDelay      time.Duration // key 'vsync.retry-delay', e.g. "100ms"
	SoftwarePeriod  time.Duration // key 'vsync.software-rate', in Hz
	DisableHardware bool          // key 'vsync.disable-hardware'
}

// DefaultSettings returns the settings used in absence of configuration.
func DefaultSettings() Settings {
	return Settings{
		RetryDelay:     DefaultRetryDelay,
		SoftwarePeriod: DefaultRefreshPeriod,
	}
}

// SettingsFrom reads settings from a configuration. Missing or malformed
// values leave the defaults in place. conf may be nil.
func SettingsFrom(conf schuko.Configuration) Settings {
	s := DefaultSettings()
	if conf == nil {
		return s
	}
	if v := strings.TrimSpace(conf.GetString("vsync.retry-delay")); v != "" {
		if d, err := time.ParseDuration(v); err != nil || d <= 0 {
			tracer().Errorf("config: vsync.retry-delay = %q is not a positive duration", v)
		} else {
			s.RetryDelay = d
		}
	}
	if v := strings.TrimSpace(conf.GetString("vsync.software-rate")); v != "" {
		if hz, err := strconv.ParseFloat(v, 64); err != nil || hz <= 0 || hz > 1000 {
			tracer().Errorf("config: vsync.software-rate = %q is not a rate in Hz", v)
		} else {
			s.SoftwarePeriod = time.Duration(float64(time.Second) / hz)
		}
	}
	if v := strings.TrimSpace(conf.GetString("vsync.disable-hardware")); v != "" {
		if b, err := strconv.ParseBool(v); err != nil {
			tracer().Errorf("config: vsync.disable-hardware = %q is not a boolean", v)
		} else {
			s.DisableHardware = b
		}
	}
	tracer().Debugf("vsync settings: retry after %v, software period %v, hardware disabled = %v",
		s.RetryDelay, s.SoftwarePeriod, s.DisableHardware)
	return s
}
