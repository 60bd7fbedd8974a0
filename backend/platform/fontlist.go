package platform

import (
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/flopp/go-findfont"
	"github.com/npillmayer/schuko"
	xfont "golang.org/x/image/font"
	"golang.org/x/text/language"
)

// Face is a single font file of a family.
type Face struct {
	Family string
	Path   string
	Style  xfont.Style
	Weight xfont.Weight
}

// Family is a named group of faces.
type Family struct {
	Name  string
	Faces []Face
}

// FontList is the list of fonts installed on the system.
//
// Fonts are found by searching the system font directories. If key
// 'fontconfig' of the configuration points to the fc-list binary, the
// output of fc-list is added. It is cached in the user's configuration
// directory, in a sub-folder named after key 'app-key'.
//
// The list is built on first use. FontList is safe for concurrent use.
type FontList struct {
	scan     func(update bool) []Face
	once     sync.Once
	mu       sync.RWMutex
	families *treemap.Map // normalized family name → *Family
}

// NewFontList creates the list of system fonts.
func NewFontList(conf schuko.Configuration) *FontList {
	return newFontList(func(update bool) []Face {
		return systemFaces(conf, update)
	})
}

func newFontList(scan func(update bool) []Face) *FontList {
	return &FontList{
		scan:     scan,
		families: treemap.NewWithStringComparator(),
	}
}

func systemFaces(conf schuko.Configuration, update bool) []Face {
	var faces []Face
	for _, path := range findfont.List() {
		faces = append(faces, faceFromPath(path))
	}
	if conf != nil && conf.GetString("fontconfig") != "" {
		if fc, ok := loadFontConfigList(conf, update); ok {
			faces = append(faces, fc...)
		}
	}
	return faces
}

func (fl *FontList) load(update bool) {
	faces := fl.scan(update)
	families := treemap.NewWithStringComparator()
	for _, face := range faces {
		if face.Family == "" {
			continue
		}
		key := normalizeFamilyName(face.Family)
		var fam *Family
		if f, found := families.Get(key); found {
			fam = f.(*Family)
		} else {
			fam = &Family{Name: face.Family}
			families.Put(key, fam)
		}
		fam.Faces = append(fam.Faces, face)
	}
	fl.mu.Lock()
	fl.families = families
	fl.mu.Unlock()
	tracer().Infof("font list contains %d families from %d faces", families.Size(), len(faces))
}

func (fl *FontList) ensureLoaded() {
	fl.once.Do(func() { fl.load(false) })
}

// Update enumerates the system fonts again.
func (fl *FontList) Update() {
	fl.once.Do(func() {})
	fl.load(true)
}

// Len returns the number of font families.
func (fl *FontList) Len() int {
	fl.ensureLoaded()
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	return fl.families.Size()
}

// Families returns the names of all font families, sorted case-insensitively.
func (fl *FontList) Families() []string {
	fl.ensureLoaded()
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	names := make([]string, 0, fl.families.Size())
	for _, v := range fl.families.Values() {
		names = append(names, v.(*Family).Name)
	}
	return names
}

// FontList returns the families suited for a language and a generic CSS
// family ("serif", "sans-serif", "monospace", "cursive", "fantasy"). An
// empty generic selects all families. Families which look like they are
// made for the script of lang are listed first.
func (fl *FontList) FontList(lang language.Tag, generic string) []string {
	generic = strings.ToLower(strings.TrimSpace(generic))
	script, _ := lang.Script()
	hints := scriptHints[script.String()]
	var preferred, others []string
	for _, name := range fl.Families() {
		tokens := nameTokens(name)
		if generic != "" && !isGeneric(tokens, generic) {
			continue
		}
		if len(hints) > 0 && matchesAny(tokens, hints) {
			preferred = append(preferred, name)
		} else {
			others = append(others, name)
		}
	}
	return append(preferred, others...)
}

// StandardFamilyName returns the family name as known to the system for
// a name given in any letter case or spacing.
func (fl *FontList) StandardFamilyName(name string) (string, bool) {
	fam, ok := fl.family(name)
	if !ok {
		return "", false
	}
	return fam.Name, true
}

func (fl *FontList) family(name string) (*Family, bool) {
	fl.ensureLoaded()
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	f, found := fl.families.Get(normalizeFamilyName(name))
	if !found {
		return nil, false
	}
	return f.(*Family), true
}

// LookupLocalFont finds the face of a family closest to style and weight.
// If the family is unknown, name is searched for as a font file in the
// system font directories.
func (fl *FontList) LookupLocalFont(name string, style xfont.Style, weight xfont.Weight) (Face, bool) {
	if fam, ok := fl.family(name); ok {
		var best Face
		var confidence MatchConfidence
		for _, face := range fam.Faces {
			c := (matchStyle(face.Style, style) + matchWeight(face.Weight, weight)) / 2
			if c > confidence {
				best, confidence = face, c
			}
		}
		tracer().Debugf("closest match for %s: %s, confidence %d", name, best.Path, confidence)
		if confidence > LowConfidence {
			return best, true
		}
		return Face{}, false
	}
	path, err := findfont.Find(name)
	if err != nil {
		tracer().Debugf("font %s not found: %v", name, err)
		return Face{}, false
	}
	return faceFromPath(path), true
}

// --- Matching --------------------------------------------------------------

// MatchConfidence is a type for expressing the confidence level of font matching.
type MatchConfidence int

const (
	NoConfidence      MatchConfidence = 0
	LowConfidence     MatchConfidence = 2
	HighConfidence    MatchConfidence = 3
	PerfectConfidence MatchConfidence = 4
)

func matchStyle(have, want xfont.Style) MatchConfidence {
	if have == want {
		return PerfectConfidence
	}
	if have != xfont.StyleNormal && want != xfont.StyleNormal { // italic for oblique and vice versa
		return HighConfidence
	}
	return NoConfidence
}

func matchWeight(have, want xfont.Weight) MatchConfidence {
	d := have - want
	if d < 0 {
		d = -d
	}
	switch d {
	case 0:
		return PerfectConfidence
	case 1:
		return HighConfidence
	case 2:
		return LowConfidence
	}
	return NoConfidence
}

// faceFromPath derives family, style and weight from a font's file name,
// e.g. "DejaVuSans-BoldOblique.ttf".
func faceFromPath(path string) Face {
	base := filepath.Base(path)
	base = base[:len(base)-len(filepath.Ext(base))]
	family := base
	if dash := strings.Index(base, "-"); dash > 0 {
		family = base[:dash]
	}
	style, weight := guessStyleAndWeight(base)
	return Face{
		Family: family,
		Path:   path,
		Style:  style,
		Weight: weight,
	}
}

// guessStyleAndWeight trys to guess a font's style and weight from a name.
func guessStyleAndWeight(name string) (xfont.Style, xfont.Weight) {
	name = strings.ToLower(name)
	style, weight := xfont.StyleNormal, xfont.WeightNormal
	switch {
	case strings.Contains(name, "italic"):
		style = xfont.StyleItalic
	case strings.Contains(name, "oblique"):
		style = xfont.StyleOblique
	}
	switch {
	case strings.Contains(name, "extralight"), strings.Contains(name, "xlight"):
		weight = xfont.WeightExtraLight
	case strings.Contains(name, "thin"):
		weight = xfont.WeightThin
	case strings.Contains(name, "light"):
		weight = xfont.WeightLight
	case strings.Contains(name, "semibold"), strings.Contains(name, "demi"):
		weight = xfont.WeightSemiBold
	case strings.Contains(name, "extrabold"), strings.Contains(name, "xbold"):
		weight = xfont.WeightExtraBold
	case strings.Contains(name, "black"), strings.Contains(name, "heavy"):
		weight = xfont.WeightBlack
	case strings.Contains(name, "bold"):
		weight = xfont.WeightBold
	case strings.Contains(name, "medium"):
		weight = xfont.WeightMedium
	}
	return style, weight
}

// normalizeFamilyName makes "DejaVu Sans", "dejavu_sans" and "DejaVuSans"
// the same.
func normalizeFamilyName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// nameTokens splits a family name into lower-case words, at spaces,
// punctuation and lower-to-upper case changes.
func nameTokens(name string) []string {
	var tokens []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			tokens = append(tokens, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	var prev rune
	for _, r := range name {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && unicode.IsLower(prev):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
		prev = r
	}
	flush()
	return tokens
}

// matchesAny reports whether a token equals a hint or, for hints longer
// than three letters, contains it.
func matchesAny(tokens, hints []string) bool {
	for _, t := range tokens {
		for _, h := range hints {
			if t == h || (len(h) > 3 && strings.Contains(t, h)) {
				return true
			}
		}
	}
	return false
}

var genericHints = map[string][]string{
	"monospace":  {"mono", "courier", "menlo", "consolas", "code", "fixed", "typewriter"},
	"serif":      {"serif", "times", "georgia", "garamond", "roman", "mincho", "song", "songti", "baskerville", "palatino"},
	"sans-serif": {"sans", "helvetica", "arial", "lucida", "geneva", "verdana", "gothic", "hei", "heiti", "grotesk"},
	"cursive":    {"script", "hand", "brush", "chancery", "comic"},
	"fantasy":    {"fantasy", "impact", "papyrus", "decorative"},
}

func isGeneric(tokens []string, generic string) bool {
	hints, ok := genericHints[generic]
	if !ok {
		return false
	}
	if generic == "serif" && matchesAny(tokens, []string{"sans"}) {
		return false
	}
	return matchesAny(tokens, hints)
}

var scriptHints = map[string][]string{
	"Jpan": {"jp", "japanese", "hiragino", "mincho", "gothic"},
	"Hans": {"sc", "gb", "song", "songti", "hei", "heiti", "cjk"},
	"Hant": {"tc", "ming", "mingliu", "cjk"},
	"Kore": {"kr", "korean", "myeongjo", "cjk"},
	"Arab": {"arab", "arabic", "naskh", "geeza", "kufi"},
	"Hebr": {"hebrew"},
	"Deva": {"devanagari"},
	"Thai": {"thai"},
}
