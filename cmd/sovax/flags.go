package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/resistanceisuseless/sovax/internal/config"
	"github.com/spf13/pflag"
)

type Flags struct {
	Domain string

	// Input/Output
	Config string
	Output string
	Format string

	// DNS
	Resolver       string
	SystemResolver bool

	// Control Options
	Profile  string
	Verbose  bool
	Progress bool
	NoColor  bool

	// History
	History  bool
	NewSince string

	// Utility
	Init    bool
	Version bool
}

const usageHeader = `sovaX - Passive Recon Toolkit

Usage:
  sovax -p <domain> [options]

Examples:
  sovax -p example.com
  sovax -p example.com -r 1.1.1.1 -o example.json
  sovax -p example.com --history
  sovax -p example.com --new-since 2026-01-01

Options:
`

func newFlagSet(f *Flags, out io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("sovax", pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.SortFlags = false
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usageHeader)
		fs.PrintDefaults()
	}

	fs.StringVarP(&f.Domain, "passive", "p", "", "Run passive recon on target `DOMAIN`")

	fs.StringVarP(&f.Config, "config", "c", "", "Configuration file path")
	fs.StringVarP(&f.Output, "output", "o", "", "Write the report to this file")
	fs.StringVarP(&f.Format, "format", "f", "json", "Output file format (json, txt)")

	fs.StringVarP(&f.Resolver, "resolver", "r", "8.8.8.8", "DNS resolver IP (passive mode)")
	fs.BoolVar(&f.SystemResolver, "system-resolver", false, "Use the system resolver instead (potentially active)")

	fs.StringVar(&f.Profile, "profile", "", "Request pacing profile (stealth, normal, aggressive)")
	fs.BoolVarP(&f.Verbose, "verbose", "v", false, "Enable debug logging")
	fs.BoolVar(&f.Progress, "progress", false, "Show progress while sources are queried")
	fs.BoolVar(&f.NoColor, "no-color", false, "Disable coloured output")

	fs.BoolVar(&f.History, "history", false, "Record subdomains and mark new ones")
	fs.StringVar(&f.NewSince, "new-since", "", "List subdomains first seen after `DATE` (YYYY-MM-DD) and exit")

	fs.BoolVar(&f.Init, "init", false, "Create the default config file and exit")
	fs.BoolVar(&f.Version, "version", false, "Print version and exit")

	return fs
}

func parseFlags(args []string, out io.Writer) (*Flags, *pflag.FlagSet, error) {
	f := &Flags{}
	fs := newFlagSet(f, out)
	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	f.Domain = strings.TrimSpace(f.Domain)
	return f, fs, nil
}

// apply copies explicitly set flags over the loaded configuration.
func (f *Flags) apply(cfg *config.Config, fs *pflag.FlagSet) error {
	if f.Profile != "" {
		if err := cfg.ApplyProfile(f.Profile); err != nil {
			return err
		}
	}

	if fs.Changed("resolver") {
		cfg.DNS.Resolver = f.Resolver
		cfg.DNS.SystemResolver = false
	}
	if f.SystemResolver {
		cfg.DNS.SystemResolver = true
	}

	if fs.Changed("output") {
		cfg.Output.File = f.Output
	}
	if fs.Changed("format") {
		cfg.Output.Format = f.Format
	}
	if f.NoColor {
		cfg.Output.Color = false
	}
	if f.History {
		cfg.History.Enabled = true
	}

	cfg.Verbose = f.Verbose
	cfg.Progress = f.Progress

	return cfg.Validate()
}
