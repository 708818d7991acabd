package main

import "flag"

// interactiveArgs captures flags of the interactive entrypoint.
type interactiveArgs struct {
	cfgPath         string
	baseURL         string
	configOverrides stringSlice
	autostart       bool
	copyableOutput  bool
}

func newInteractiveFlagSet(name string) (*flag.FlagSet, *interactiveArgs) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	args := &interactiveArgs{}

	fs.StringVar(&args.cfgPath, "config", "", "Path to config file (default ~/.quotes/config.toml)")
	fs.StringVar(&args.baseURL, "base-url", "", "Quotes backend base URL (default http://localhost:3000)")
	fs.Var(&args.configOverrides, "c", "Override config value key=value (repeatable)")
	fs.BoolVar(&args.autostart, "autostart", false, "Connect as soon as the UI starts")
	fs.BoolVar(&args.copyableOutput, "copyable-output", false, "Disable alt screen to allow mouse selection/copy")

	return fs, args
}
