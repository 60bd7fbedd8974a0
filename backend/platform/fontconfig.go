package platform

import (
	"bufio"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/npillmayer/schuko"
	"github.com/npillmayer/vsync/core"
)

func findFontConfigBinary(conf schuko.Configuration) (path string, err error) {
	path = conf.GetString("fontconfig")
	if path == "" {
		tracer().Infof("fontconfig not configured: key 'fontconfig' should point location of 'fc-list' binary")
		err = errors.New("fontconfig not configured")
	}
	return
}

// cacheFontConfigList makes sure the output of fc-list is stored in the
// user's configuration directory and returns the file's path. If update is
// set, fc-list is run even if the file already exists.
func cacheFontConfigList(conf schuko.Configuration, update bool) (string, bool) {
	appkey := conf.GetString("app-key")
	tracer().Debugf("config[app-key] = %s", appkey)
	uconfdir, err := os.UserConfigDir()
	if appkey == "" || err != nil {
		tracer().Errorf("user config directory not set")
		return "", false
	}
	dir := filepath.Join(uconfdir, appkey)
	fcListFilename := filepath.Join(dir, "fontlist.txt")
	if _, err := os.Stat(fcListFilename); err == nil && !update {
		return fcListFilename, true
	}
	if err = os.MkdirAll(dir, 0755); err != nil {
		err = core.WrapError(err, core.EINVALID,
			"user configuration path cannot be created: %s", dir)
		core.UserError(err)
		return "", false
	}
	fcpath, err := findFontConfigBinary(conf)
	if err != nil {
		return "", false
	}
	if !filepath.IsAbs(fcpath) {
		err = core.Error(core.EINVALID, "fontconfig binary fc-list must point to absolute path: %s", fcpath)
		core.UserError(err)
		return "", false
	}
	if fi, err := os.Stat(fcpath); err != nil || (fi.Mode().Perm()&0100) == 0 {
		err = core.WrapError(err, core.EINVALID,
			"fontconfig configuration points to an invalid binary: %s", fcpath)
		core.UserError(err)
		return "", false
	}
	fontlistFile, err := os.Create(fcListFilename)
	if err == nil {
		defer fontlistFile.Close()
		fccmd := exec.Command(fcpath)
		fccmd.Stdout = fontlistFile
		err = fccmd.Run()
	}
	if err != nil {
		err = core.WrapError(err, core.EINVALID,
			"fontconfig output file cannot be created: %s", fcListFilename)
		core.UserError(err)
		return "", false
	}
	return fcListFilename, true
}

// loadFontConfigList reads the cached output of fc-list.
func loadFontConfigList(conf schuko.Configuration, update bool) ([]Face, bool) {
	fclist, ok := cacheFontConfigList(conf, update)
	if !ok {
		return nil, false
	}
	fc, err := os.Open(fclist)
	if err != nil {
		err = core.WrapError(err, core.EINVALID,
			"fontconfig font list cannot be opened: %s", fclist)
		core.UserError(err)
		return nil, false
	}
	defer fc.Close()
	var faces []Face
	scanner := bufio.NewScanner(fc)
	for scanner.Scan() {
		if face, ok := parseFontConfigLine(scanner.Text()); ok {
			faces = append(faces, face)
		}
	}
	if err = scanner.Err(); err != nil {
		err = core.WrapError(err, core.EINVALID,
			"encountered a problem during reading of fontconfig font list: %s", fclist)
		core.UserError(err)
		return faces, false
	}
	tracer().Infof("loaded %d faces from fontconfig list", len(faces))
	return faces, true
}

// parseFontConfigLine parses a line of fc-list output, like
//
//	/usr/share/fonts/dejavu/DejaVuSans-Bold.ttf: DejaVu Sans:style=Bold
//
// Families with more than one name use the first one.
func parseFontConfigLine(line string) (Face, bool) {
	line = strings.TrimSpace(line)
	fields := strings.Split(line, ":")
	if len(fields) < 3 {
		return Face{}, false
	}
	fontpath := strings.TrimSpace(fields[0])
	fontname := strings.TrimSpace(fields[1])
	if comma := strings.Index(fontname, ","); comma >= 0 {
		fontname = fontname[:comma]
	}
	fontname = strings.TrimPrefix(fontname, ".")
	if fontpath == "" || fontname == "" {
		return Face{}, false
	}
	style, weight := guessStyleAndWeight(strings.TrimPrefix(fields[2], "style="))
	return Face{
		Family: fontname,
		Path:   fontpath,
		Style:  style,
		Weight: weight,
	}, true
}
