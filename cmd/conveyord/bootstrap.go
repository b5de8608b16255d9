package main

import (
	"flag"
	"fmt"
	"io"
)

// settings carries the command line configuration for a foreground daemon run.
type settings struct {
	configPath  string
	logLevel    string
	development bool
}

// parseArgs reads conveyord's flags. The daemon is normally launched through
// `conveyor start`; running conveyord directly keeps it in the foreground.
func parseArgs(args []string, errOut io.Writer) (settings, error) {
	fs := flag.NewFlagSet("conveyord", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var s settings
	fs.StringVar(&s.configPath, "config", "", "configuration file path")
	fs.StringVar(&s.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	fs.BoolVar(&s.development, "log-development", false, "log in console format")

	if err := fs.Parse(args); err != nil {
		return settings{}, err
	}
	if fs.NArg() > 0 {
		return settings{}, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	return s, nil
}
