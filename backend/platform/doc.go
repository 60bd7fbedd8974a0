/*
Package platform holds the font related services a graphics platform
offers to the layers above it.

The services are small and independent of each other:

■ CommonFallbackFonts proposes font families for characters the selected
fonts cannot render.

■ Blocklist keeps webfonts away which are known to break the platform's
font rasterizer.

■ FontList enumerates the fonts installed on the system and matches
requests against them.

■ FontDirCache remembers the table directories of fonts.

■ AntiAliasingThreshold tells up to which font size text is rendered
without smoothing.

Services are created from a schuko.Configuration. Keys read are
'fontconfig' and 'app-key' (see FontList), 'gfx.font-blocklist',
'gfx.use_text_smoothing_setting' and 'gfx.antialiasing-threshold'.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package platform

import (
	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'vsync.platform'
func tracer() tracing.Trace {
	return tracing.Select("vsync.platform")
}

// Services bundles the platform services.
type Services struct {
	Fonts                 *FontList
	Blocklist             *Blocklist
	FontDirs              *FontDirCache
	AntiAliasingThreshold uint32
}

// New creates the platform services for a configuration. The font list is
// created, but fonts are enumerated only on first use.
func New(conf schuko.Configuration) *Services {
	return &Services{
		Fonts:                 NewFontList(conf),
		Blocklist:             BlocklistFrom(conf),
		FontDirs:              NewFontDirCache(),
		AntiAliasingThreshold: AntiAliasingThreshold(conf),
	}
}
