package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/danmuck/packetctl/internal/config"
)

// options are the parsed command line; only flags the user set override the
// run config.
type options struct {
	configPath string
	hex        string
	cfg        config.RunConfig
	set        map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	defaults := config.DefaultRunConfig()
	opts := options{set: make(map[string]bool)}

	fs := flag.NewFlagSet("packetctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "optional packetctl.toml run config")
	fs.StringVar(&opts.hex, "hex", "", "inline hex input; overrides -input")
	fs.StringVar(&opts.cfg.Input, "input", defaults.Input, "path to the hex input file")
	fs.IntVar(&opts.cfg.MaxDepth, "max-depth", defaults.MaxDepth, "maximum packet nesting depth")
	fs.IntVar(&opts.cfg.MaxInputBits, "max-input-bits", defaults.MaxInputBits, "maximum input size in bits")
	fs.BoolVar(&opts.cfg.PrintTree, "tree", defaults.PrintTree, "print the decoded packet tree")
	fs.StringVar(&opts.cfg.Format, "format", defaults.Format, "output format: text | json")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	fs.Visit(func(f *flag.Flag) {
		opts.set[f.Name] = true
	})
	return opts, nil
}

// resolveRunConfig layers defaults, the optional config file, then flags.
func resolveRunConfig(opts options) (config.RunConfig, error) {
	cfg := config.DefaultRunConfig()
	if opts.configPath != "" {
		loaded, err := config.LoadRunConfig(opts.configPath)
		if err != nil {
			return config.RunConfig{}, err
		}
		cfg = loaded
	}

	if opts.set["input"] {
		cfg.Input = strings.TrimSpace(opts.cfg.Input)
	}
	if opts.set["max-depth"] {
		cfg.MaxDepth = opts.cfg.MaxDepth
	}
	if opts.set["max-input-bits"] {
		cfg.MaxInputBits = opts.cfg.MaxInputBits
	}
	if opts.set["tree"] {
		cfg.PrintTree = opts.cfg.PrintTree
	}
	if opts.set["format"] {
		cfg.Format = strings.ToLower(strings.TrimSpace(opts.cfg.Format))
	}

	if err := config.ValidateRunConfig(cfg); err != nil {
		return config.RunConfig{}, err
	}
	return cfg, nil
}
