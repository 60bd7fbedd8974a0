package platform

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xfont "golang.org/x/image/font"
	"golang.org/x/text/language"
)

var testFontFiles = []string{
	"/fonts/DejaVuSans.ttf",
	"/fonts/DejaVuSans-Bold.ttf",
	"/fonts/DejaVuSans-Oblique.ttf",
	"/fonts/DejaVuSerif.ttf",
	"/fonts/DejaVuSansMono.ttf",
	"/fonts/NotoSansJP-Regular.otf",
	"/fonts/Menlo-Regular.ttf",
	"/fonts/Georgia-Italic.ttf",
}

func testFontList() (*FontList, *int) {
	scans := 0
	fl := newFontList(func(update bool) []Face {
		scans++
		faces := make([]Face, 0, len(testFontFiles)+1)
		for _, path := range testFontFiles {
			faces = append(faces, faceFromPath(path))
		}
		face, _ := parseFontConfigLine("/usr/share/fonts/Lato-Light.ttf: Lato,Lato Light:style=Light")
		return append(faces, face)
	})
	return fl, &scans
}

func TestFontListFamilies(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "vsync.platform")
	defer teardown()
	//
	fl, scans := testFontList()
	assert.Equal(t, []string{"DejaVuSans", "DejaVuSansMono", "DejaVuSerif", "Georgia", "Lato",
		"Menlo", "NotoSansJP"}, fl.Families())
	assert.Equal(t, 7, fl.Len())
	assert.Equal(t, 1, *scans, "list is built once")
	fl.Update()
	assert.Equal(t, 2, *scans)
	name, ok := fl.StandardFamilyName("dejavu sans")
	assert.True(t, ok)
	assert.Equal(t, "DejaVuSans", name)
	_, ok = fl.StandardFamilyName("Comic Sans")
	assert.False(t, ok)
}

func TestFontListGenerics(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "vsync.platform")
	defer teardown()
	//
	fl, _ := testFontList()
	assert.Equal(t, []string{"DejaVuSansMono", "Menlo"}, fl.FontList(language.English, "monospace"))
	assert.Equal(t, []string{"DejaVuSerif", "Georgia"}, fl.FontList(language.English, "serif"))
	sans := fl.FontList(language.Japanese, "sans-serif")
	require.NotEmpty(t, sans)
	assert.Equal(t, "NotoSansJP", sans[0], "Japanese fonts come first")
	assert.Len(t, fl.FontList(language.German, ""), 7)
	assert.Empty(t, fl.FontList(language.English, "emoji"))
}

func TestLookupLocalFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "vsync.platform")
	defer teardown()
	//
	fl, _ := testFontList()
	face, ok := fl.LookupLocalFont("DejaVu Sans", xfont.StyleNormal, xfont.WeightBold)
	require.True(t, ok)
	assert.Equal(t, "/fonts/DejaVuSans-Bold.ttf", face.Path)
	face, ok = fl.LookupLocalFont("DejaVu Sans", xfont.StyleItalic, xfont.WeightNormal)
	require.True(t, ok)
	assert.Equal(t, "/fonts/DejaVuSans-Oblique.ttf", face.Path, "oblique stands in for italic")
	face, ok = fl.LookupLocalFont("lato", xfont.StyleNormal, xfont.WeightLight)
	require.True(t, ok)
	assert.Equal(t, "Lato", face.Family)
	_, ok = fl.LookupLocalFont("Georgia", xfont.StyleNormal, xfont.WeightBlack)
	assert.False(t, ok, "no face close enough")
}

func TestGuessStyleAndWeight(t *testing.T) {
	s, w := guessStyleAndWeight("Roboto-SemiBoldItalic")
	assert.Equal(t, xfont.StyleItalic, s)
	assert.Equal(t, xfont.WeightSemiBold, w)
	s, w = guessStyleAndWeight("Inter-Thin")
	assert.Equal(t, xfont.StyleNormal, s)
	assert.Equal(t, xfont.WeightThin, w)
	assert.Equal(t, []string{"noto", "sans", "jp"}, nameTokens("NotoSansJP"))
}
