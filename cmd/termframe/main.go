// Package main is the entry point for the termframe viewer.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/dshills/termframe/internal/app"
	"github.com/dshills/termframe/internal/logger"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, showVersion := parseFlags()
	if showVersion {
		fmt.Printf("termframe %s (%s)\n", version, commit)
		return 0
	}

	if err := logger.Init(opts.Debug); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logging: %v\n", err)
		return 1
	}
	defer logger.Close()

	application, err := app.New(opts, logger.L)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	if err := application.Run(); err != nil {
		if errors.Is(err, app.ErrQuit) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.S.Errorw("run failed", "error", err)
		return 1
	}
	return 0
}

func parseFlags() (app.Options, bool) {
	var opts app.Options
	var showVersion bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.BoolVar(&opts.Debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&opts.Debug, "d", false, "Enable debug logging (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "termframe - incremental terminal text viewer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: termframe [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if args := flag.Args(); len(args) > 0 {
		opts.File = args[0]
	}
	return opts, showVersion
}
