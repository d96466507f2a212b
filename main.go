package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/pflag"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/options"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/logger"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/validation"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/version"
)

func main() {
	logger.SetFlags(logger.Lshortfile)

	configFlagSet := pflag.NewFlagSet("canvas-auth-proxy", pflag.ContinueOnError)

	// Because we parse early to determine the config file, ignore unknown
	// flags here; the full flag set parses them again below.
	configFlagSet.ParseErrorsWhitelist.UnknownFlags = true

	config := configFlagSet.String("config", "", "path to config file")
	showVersion := configFlagSet.Bool("version", false, "print version string")
	configFlagSet.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("canvas-auth-proxy %s (built with %s)\n", version.VERSION, runtime.Version())
		return
	}

	opts, err := loadConfiguration(*config, configFlagSet, os.Args[1:])
	if err != nil {
		logger.Fatalf("ERROR: %v", err)
	}

	if err = validation.Validate(opts); err != nil {
		logger.Fatalf("%s", err)
	}

	done := make(chan bool)
	defer close(done)

	proxy, err := NewCanvasAuthProxy(opts, done)
	if err != nil {
		logger.Fatalf("ERROR: Failed to initialise Canvas Auth Proxy: %v", err)
	}

	if err := proxy.Start(); err != nil {
		logger.Fatalf("ERROR: Failed to start Canvas Auth Proxy: %v", err)
	}
}

// loadConfiguration merges the config file, environment and flags into a
// new Options, then applies the path rules file if one is named.
func loadConfiguration(config string, extraFlags *pflag.FlagSet, args []string) (*options.Options, error) {
	optionsFlagSet := options.NewFlagSet()
	optionsFlagSet.AddFlagSet(extraFlags)
	if err := optionsFlagSet.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %v", err)
	}

	opts := options.NewOptions()
	if err := options.Load(config, optionsFlagSet, opts); err != nil {
		return nil, fmt.Errorf("failed to load config: %v", err)
	}

	if err := options.LoadPathRules(opts); err != nil {
		return nil, err
	}
	return opts, nil
}
