package platform

import (
	"strconv"
	"strings"

	"github.com/npillmayer/schuko"
)

// AntiAliasingThreshold returns the font size up to which text is drawn
// without smoothing. 0 means that text is always smoothed.
//
// The threshold is read from 'gfx.antialiasing-threshold', but only if
// 'gfx.use_text_smoothing_setting' is true.
func AntiAliasingThreshold(conf schuko.Configuration) uint32 {
	if conf == nil {
		return 0
	}
	use, err := strconv.ParseBool(strings.TrimSpace(conf.GetString("gfx.use_text_smoothing_setting")))
	if err != nil || !use {
		return 0
	}
	v := strings.TrimSpace(conf.GetString("gfx.antialiasing-threshold"))
	threshold, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		tracer().Errorf("config: gfx.antialiasing-threshold = %q is not a font size", v)
		return 0
	}
	return uint32(threshold)
}
