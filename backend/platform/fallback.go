package platform

// Font families used for fallback.
const (
	fontArialUnicodeMS      = "Arial Unicode MS"
	fontAppleBraille        = "Apple Braille"
	fontAppleColorEmoji     = "Apple Color Emoji"
	fontAppleSymbols        = "Apple Symbols"
	fontDevanagariSangamMN  = "Devanagari Sangam MN"
	fontEuphemiaUCAS        = "Euphemia UCAS"
	fontGeneva              = "Geneva"
	fontGeezaPro            = "Geeza Pro"
	fontGujaratiSangamMN    = "Gujarati Sangam MN"
	fontGurmukhiMN          = "Gurmukhi MN"
	fontHiraginoKakuGothic  = "Hiragino Kaku Gothic ProN"
	fontHiraginoSansGB      = "Hiragino Sans GB"
	fontKefa                = "Kefa"
	fontKhmerMN             = "Khmer MN"
	fontLaoMN               = "Lao MN"
	fontLucidaGrande        = "Lucida Grande"
	fontMenlo               = "Menlo"
	fontMicrosoftTaiLe      = "Microsoft Tai Le"
	fontMingLiUExtB         = "MingLiU-ExtB"
	fontMyanmarMN           = "Myanmar MN"
	fontPlantagenetCherokee = "Plantagenet Cherokee"
	fontSimSunExtB          = "SimSun-ExtB"
	fontSongtiSC            = "Songti SC"
	fontSTHeiti             = "STHeiti"
	fontSTIXGeneral         = "STIXGeneral"
	fontTamilMN             = "Tamil MN"
)

// variationSelectorEmoji requests emoji presentation of the preceding character.
const variationSelectorEmoji = 0xfe0f

var symbolFallback = []string{
	fontHiraginoKakuGothic,
	fontAppleSymbols,
	fontMenlo,
	fontSTIXGeneral,
	fontGeneva,
	fontAppleColorEmoji,
}

// fallbackByBlock maps the upper byte of a BMP code-point to families
// covering that block.
var fallbackByBlock = map[rune][]string{
	0x03: {fontGeneva},
	0x05: {fontGeneva},
	0x07: {fontGeezaPro},
	0x09: {fontDevanagariSangamMN},
	0x0a: {fontGurmukhiMN, fontGujaratiSangamMN},
	0x0b: {fontTamilMN},
	0x0e: {fontLaoMN},
	0x0f: {fontSongtiSC},
	0x10: {fontMenlo, fontMyanmarMN},
	0x13: {fontPlantagenetCherokee, fontKefa}, // Cherokee
	0x14: {fontEuphemiaUCAS, fontGeneva},      // Unified Canadian Aboriginal Syllabics
	0x15: {fontEuphemiaUCAS, fontGeneva},
	0x16: {fontEuphemiaUCAS, fontGeneva},
	0x18: {fontSTHeiti, fontEuphemiaUCAS},   // Mongolian, UCAS
	0x19: {fontKhmerMN, fontMicrosoftTaiLe}, // Khmer
	0x1d: {fontGeneva},
	0x1e: {fontGeneva},
	0x20: symbolFallback,
	0x21: symbolFallback,
	0x22: symbolFallback,
	0x23: symbolFallback,
	0x24: symbolFallback,
	0x25: symbolFallback,
	0x26: symbolFallback,
	0x27: symbolFallback,
	0x28: {fontAppleBraille},
	0x29: symbolFallback,
	0x2a: symbolFallback,
	0x2b: symbolFallback,
	0x2c: {fontGeneva},
	0x2d: {fontKefa, fontGeneva},
	0x2e: symbolFallback,
	0x31: {fontHiraginoSansGB},
	0x4d: {fontAppleSymbols},
	0xa0: {fontSTHeiti}, // Yi
	0xa1: {fontSTHeiti},
	0xa2: {fontSTHeiti},
	0xa3: {fontSTHeiti},
	0xa4: {fontSTHeiti},
	0xa6: {fontGeneva, fontAppleSymbols},
	0xa7: {fontGeneva, fontAppleSymbols},
	0xab: {fontKefa},
	0xfc: {fontAppleSymbols},
	0xff: {fontAppleSymbols},
}

// CommonFallbackFonts returns the font families to try, in order, for a
// character ch which none of the requested fonts supports. next is the
// character following ch, or 0.
//
// The list always starts with Lucida Grande, unless next asks for emoji
// presentation, and always ends with Arial Unicode MS.
func CommonFallbackFonts(ch, next rune) []string {
	fonts := make([]string, 0, 8)
	if next == variationSelectorEmoji {
		fonts = append(fonts, fontAppleColorEmoji)
	}
	fonts = append(fonts, fontLucidaGrande)
	if ch > 0xffff {
		plane, block := ch>>16, ch>>8
		switch {
		case plane == 1 && block >= 0x1f0 && block < 0x1f7:
			fonts = append(fonts, fontAppleColorEmoji)
		case plane == 1:
			fonts = append(fonts, fontAppleSymbols, fontSTIXGeneral, fontGeneva)
		case plane == 2: // present with MS Office installations
			fonts = append(fonts, fontMingLiUExtB, fontSimSunExtB)
		}
	} else if ch >= 0 {
		fonts = append(fonts, fallbackByBlock[(ch>>8)&0xff]...)
	}
	return append(fonts, fontArialUnicodeMS)
}
