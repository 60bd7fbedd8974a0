package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/npillmayer/vsync/backend/platform"
	"github.com/npillmayer/vsync/backend/vsync"
	"github.com/npillmayer/vsync/backend/vsync/displaylink"
	"github.com/npillmayer/vsync/core/control"
	"github.com/pterm/pterm"
	"golang.org/x/text/language"
)

// Intp is our interpreter object
type Intp struct {
	repl     *readline.Instance
	loop     *control.Loop
	link     *displaylink.Link
	src      *vsync.Source
	mon      *monitor
	observer vsync.ObserverID // 0 if not observing
	services *platform.Services
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		cmd := parseCommand(line)
		quit, err := intp.execute(cmd)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

// Command is a parsed input line.
type Command struct {
	code int
	args []string
}

const (
	QUIT int = iota
	HELP
	ENABLE
	DISABLE
	STATUS
	RATE
	STATS
	SLEEP
	WAKE
	GLITCH
	FALLBACK
	WEBFONT
	FONTS
)

func parseCommand(line string) Command {
	fields := strings.Fields(line)
	cmd := Command{code: HELP, args: fields[1:]}
	switch strings.ToLower(fields[0]) {
	case "quit", "exit":
		cmd.code = QUIT
	case "enable", "on":
		cmd.code = ENABLE
	case "disable", "off":
		cmd.code = DISABLE
	case "status":
		cmd.code = STATUS
	case "rate":
		cmd.code = RATE
	case "stats":
		cmd.code = STATS
	case "sleep":
		cmd.code = SLEEP
	case "wake":
		cmd.code = WAKE
	case "glitch":
		cmd.code = GLITCH
	case "fallback":
		cmd.code = FALLBACK
	case "webfont":
		cmd.code = WEBFONT
	case "fonts":
		cmd.code = FONTS
	}
	tracer().Debugf("parse command = %v", cmd)
	return cmd
}

func (intp *Intp) execute(cmd Command) (quit bool, err error) {
	switch cmd.code {
	case QUIT:
		return true, nil
	case HELP:
		help()
	case ENABLE:
		err = intp.enable()
	case DISABLE:
		err = intp.disable()
	case STATUS:
		err = intp.status()
	case RATE:
		pterm.Printfln("nominal vsync interval %.3f ms", ms(intp.src.GlobalDisplay().VsyncRate()))
	case STATS:
		err = intp.stats()
	case SLEEP:
		err = intp.sleep()
	case WAKE:
		intp.link.SetReady(true)
		pterm.Info.Println("displays awake")
	case GLITCH:
		intp.link.InjectSkew(-time.Second)
		pterm.Info.Println("next hardware timestamp will lie one second in the past")
	case FALLBACK:
		err = intp.fallback(cmd.args)
	case WEBFONT:
		err = intp.webfont(cmd.args)
	case FONTS:
		intp.fonts(cmd.args)
	}
	return false, err
}

func (intp *Intp) enable() error {
	return intp.loop.Call(func() {
		if intp.observer != 0 {
			pterm.Info.Println("already observing")
			return
		}
		intp.mon.reset()
		intp.observer = intp.src.AddObserver(intp.mon)
		pterm.Info.Printfln("observing, enabled = %v", intp.src.GlobalDisplay().IsVsyncEnabled())
	})
}

func (intp *Intp) disable() error {
	return intp.loop.Call(func() {
		if intp.observer == 0 {
			pterm.Info.Println("not observing")
			return
		}
		intp.src.RemoveObserver(intp.observer)
		intp.observer = 0
		pterm.Info.Printfln("stopped observing, enabled = %v", intp.src.GlobalDisplay().IsVsyncEnabled())
	})
}

// sleep takes the outputs away and makes the display re-acquire its link,
// which will fail until 'wake'.
func (intp *Intp) sleep() error {
	intp.link.SetReady(false)
	pterm.Info.Println("displays asleep")
	return intp.loop.Call(func() {
		if intp.observer == 0 {
			return
		}
		d := intp.src.GlobalDisplay()
		d.DisableVsync()
		d.EnableVsync()
	})
}

func (intp *Intp) status() error {
	var enabled, retry bool
	err := intp.loop.Call(func() {
		d := intp.src.GlobalDisplay()
		enabled = d.IsVsyncEnabled()
		if hw, ok := d.(*vsync.HardwareDisplay); ok {
			retry = hw.RetryPending()
		}
	})
	if err != nil {
		return err
	}
	vd := intp.src.Dispatcher()
	last, _ := vd.Last()
	tableData := pterm.TableData{
		{"Property", "Value"},
		{"kind", intp.src.Kind().String()},
		{"enabled", strconv.FormatBool(enabled)},
		{"retry pending", strconv.FormatBool(retry)},
		{"observers", strconv.Itoa(vd.Len())},
		{"delivered", strconv.FormatUint(vd.Delivered(), 10)},
		{"last vsync", last.String()},
		{"display links", strconv.Itoa(intp.link.Active())},
	}
	return pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
}

func (intp *Intp) stats() error {
	c, err := intp.mon.cadence()
	if err != nil {
		return fmt.Errorf("no statistics yet: %w", err)
	}
	tableData := pterm.TableData{
		{"Interval", "ms"},
		{"mean", fmt.Sprintf("%.3f", c.Mean)},
		{"jitter", fmt.Sprintf("%.3f", c.Jitter)},
		{"min", fmt.Sprintf("%.3f", c.Min)},
		{"max", fmt.Sprintf("%.3f", c.Max)},
		{"p99", fmt.Sprintf("%.3f", c.P99)},
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(tableData).Render(); err != nil {
		return err
	}
	pterm.Printfln("%d notifications, %d backwards, %d dropped, last at %v",
		c.Seen, c.Backwards, c.Dropped, c.Last)
	return nil
}

func (intp *Intp) fallback(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: fallback <char or U+XXXX> [next]")
	}
	ch, err := parseRune(args[0])
	if err != nil {
		return err
	}
	var next rune
	if len(args) > 1 {
		if next, err = parseRune(args[1]); err != nil {
			return err
		}
	}
	pterm.Printfln("%#U: %s", ch, strings.Join(platform.CommonFallbackFonts(ch, next), ", "))
	return nil
}

func (intp *Intp) webfont(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: webfont <url> [woff|woff2|ttf|otf|eot|svg]")
	}
	var flags platform.FormatFlags
	if len(args) > 1 {
		switch strings.ToLower(args[1]) {
		case "woff":
			flags = platform.FormatWOFF
		case "woff2":
			flags = platform.FormatWOFF2
		case "ttf", "truetype":
			flags = platform.FormatTrueType
		case "otf", "opentype":
			flags = platform.FormatOpenType
		case "eot":
			flags = platform.FormatEOT
		case "svg":
			flags = platform.FormatSVG
		default:
			flags = platform.FormatUnknown
		}
	}
	ok := intp.services.Blocklist.IsFontFormatSupported(args[0], flags)
	pterm.Printfln("supported = %v", ok)
	return nil
}

func (intp *Intp) fonts(args []string) {
	var generic string
	lang := language.English
	if len(args) > 0 {
		generic = args[0]
	}
	if len(args) > 1 {
		if t, err := language.Parse(args[1]); err == nil {
			lang = t
		}
	}
	names := intp.services.Fonts.FontList(lang, generic)
	pterm.Printfln("%d families: %s", len(names), strings.Join(names, ", "))
}

func (intp *Intp) close() {
	_ = intp.loop.Call(intp.src.Close)
	intp.mon.stop()
}

func parseRune(s string) (rune, error) {
	if strings.HasPrefix(strings.ToUpper(s), "U+") {
		n, err := strconv.ParseUint(s[2:], 16, 32)
		return rune(n), err
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("not a single character: %q", s)
	}
	return r[0], nil
}

func help() {
	pterm.Info.Println("Commands")
	pterm.Println(`
	enable                 observe vsync (enables the display)
	disable                stop observing (disables the display)
	status                 show the state of the vsync source
	rate                   show the nominal vsync interval
	stats                  show cadence statistics of the last 600 intervals
	sleep                  put the displays to sleep and re-acquire the display link
	wake                   wake the displays up again
	glitch                 make the next hardware timestamp lie in the past
	fallback <c> [next]    list fallback font families for a character
	webfont <url> [fmt]    check whether a webfont may be loaded
	fonts [generic] [lang] list installed font families
	quit                   leave
	`)
}
