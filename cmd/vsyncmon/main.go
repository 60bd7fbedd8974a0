/*
Command vsyncmon is an interactive monitor for vsync sources.

It creates a vsync source on a portable display link, observes its
notifications and prints cadence statistics. Displays going to sleep and
waking up again may be simulated, as well as hardware timestamp glitches.

	vsyncmon [-trace Debug|Info|Error] [-hz 60] [-software] [-metrics :9090]

Type 'help' at the prompt for a list of commands.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/chzyer/readline"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/npillmayer/vsync/backend/platform"
	"github.com/npillmayer/vsync/backend/vsync"
	"github.com/npillmayer/vsync/backend/vsync/displaylink"
	"github.com/npillmayer/vsync/core/control"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/pterm/pterm"
)

// tracer traces with key 'vsync.mon'
func tracer() tracing.Trace {
	return tracing.Select("vsync.mon")
}

func main() {
	initDisplay()

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	hz := flag.Float64("hz", 60, "Refresh rate of the simulated output, 0 for indefinite")
	software := flag.Bool("software", false, "Use software vsync only")
	metricsAddr := flag.String("metrics", "", "Address to serve metrics on, e.g. ':9090'")
	flag.Parse()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":        "go",
		"trace.vsync.mon":        *tlevel,
		"trace.vsync.display":    *tlevel,
		"trace.vsync.control":    "Error",
		"trace.vsync.platform":   "Error",
		"app-key":                "vsyncmon",
		"vsync.disable-hardware": strconv.FormatBool(*software),
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	pterm.Info.Println("Welcome to the vsync monitor") // colored welcome message
	tracer().Infof("Trace level is %s", *tlevel)
	//
	// set up the control thread and the vsync source
	loop := control.NewLoop(nil)
	loop.Start()
	defer loop.Stop()
	env := vsync.NewEnvironment(conf, loop)
	reg := prometheus.NewRegistry()
	env.Metrics = vsync.NewMetrics(reg)
	link := env.Platform.(*displaylink.Link)
	var refresh time.Duration
	if *hz > 0 {
		refresh = time.Duration(float64(time.Second) / *hz)
	}
	link.SetOutputs(displaylink.Output{Name: "simulated", Refresh: refresh, Ready: true})
	var src *vsync.Source
	if err := loop.Call(func() { src = vsync.CreateHardwareVsyncSource(env) }); err != nil {
		tracer().Errorf(err.Error())
		os.Exit(2)
	}
	pterm.Info.Printfln("Using %s vsync at %v", src.Kind(), src.GlobalDisplay().VsyncRate())
	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr, reg)
	}
	//
	// set up REPL
	repl, err := readline.New("vsync > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	defer repl.Close()
	intp := &Intp{
		repl:     repl,
		loop:     loop,
		link:     link,
		src:      src,
		mon:      newMonitor(),
		services: platform.New(conf),
	}
	//
	// start receiving commands
	pterm.Info.Println("Quit with <ctrl>D") // inform user how to stop the CLI
	intp.REPL()                             // go into interactive mode
	intp.close()
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	tracer().Infof("serving metrics on %s/metrics", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		tracer().Errorf("metrics endpoint: %v", err)
	}
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}
