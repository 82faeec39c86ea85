package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/resistanceisuseless/sovax/internal/config"
	"github.com/resistanceisuseless/sovax/internal/dns"
	"github.com/resistanceisuseless/sovax/internal/enumeration"
	"github.com/resistanceisuseless/sovax/internal/httpclient"
	"github.com/resistanceisuseless/sovax/internal/logging"
	"github.com/resistanceisuseless/sovax/internal/output"
	"github.com/resistanceisuseless/sovax/internal/persistence"
	"github.com/resistanceisuseless/sovax/internal/progress"
	"github.com/resistanceisuseless/sovax/internal/recon"
	"github.com/resistanceisuseless/sovax/internal/sources"
	"github.com/resistanceisuseless/sovax/internal/summary"
	"github.com/resistanceisuseless/sovax/internal/wayback"
	"github.com/resistanceisuseless/sovax/internal/whois"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type SovaX struct {
	config  *config.Config
	logger  *zap.Logger
	console *output.Console
}

func main() {
	flags, fs, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if flags.Version {
		fmt.Printf("sovaX %s\n", GetVersionInfo())
		return
	}

	if flags.Init {
		configPath := flags.Config
		if configPath == "" {
			configPath, err = config.DefaultPath()
			if err != nil {
				log.Fatalf("Failed to resolve config path: %v", err)
			}
		}
		created, err := config.CreateDefault(configPath)
		if err != nil {
			log.Fatalf("Failed to create config: %v", err)
		}
		if created {
			fmt.Printf("Created default config at %s\n", configPath)
		} else {
			fmt.Printf("Config already exists at %s\n", configPath)
		}
		return
	}

	cfg, err := config.Load(resolveConfigPath(flags.Config))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := flags.apply(cfg, fs); err != nil {
		log.Fatalf("Invalid options: %v", err)
	}

	logger := logging.New(cfg.Verbose)
	defer logger.Sync()

	console := output.NewConsole(os.Stdout, cfg.Output.Color)
	console.Banner(Version)

	if flags.NewSince != "" {
		if flags.Domain == "" {
			log.Fatalf("--new-since requires a target domain (-p)")
		}
		if err := showNewSince(cfg, flags.Domain, flags.NewSince); err != nil {
			log.Fatalf("History query failed: %v", err)
		}
		return
	}

	if flags.Domain == "" {
		fs.SetOutput(os.Stdout)
		fs.Usage()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &SovaX{config: cfg, logger: logger, console: console}
	if err := app.Run(ctx, flags.Domain); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// resolveConfigPath picks the explicit path, or the default location when a
// config was created there with --init.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	path, err := config.DefaultPath()
	if err != nil {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func (s *SovaX) Run(ctx context.Context, domain string) error {
	cfg := s.config

	client := httpclient.New(httpclient.Options{
		Timeout:   cfg.HTTPTimeout(),
		UserAgent: cfg.HTTP.UserAgent,
		RateLimit: cfg.HTTP.RateLimit,
	})

	srcs, fallback, err := sources.FromConfig(cfg, client, s.logger)
	if err != nil {
		return err
	}
	enumerator := enumeration.New(cfg, srcs, fallback, s.logger)

	tracker := progress.New(cfg.Progress && !cfg.Verbose)
	tracker.StartPhase("Querying sources", len(srcs))
	done := 0
	enumerator.OnResult = func(sources.Result) {
		tracker.Increment()
		done++
		if done == len(srcs) {
			tracker.Complete()
		}
	}

	resolver, err := dns.New(cfg, s.logger)
	if err != nil {
		return err
	}

	rdapClient, err := whois.NewRDAPClient(client.HTTP(), client.UserAgent(), cfg.Whois.RDAPServer)
	if err != nil {
		return err
	}

	filter, err := wayback.NewFilter(cfg.Wayback.ExtraPatterns...)
	if err != nil {
		return err
	}

	runner := &recon.Runner{
		Enumerator: enumerator,
		Whois:      whois.NewLookup(whois.NewClient(cfg.WhoisTimeout()), rdapClient, s.logger),
		Resolver:   resolver,
		Archive:    wayback.NewClient(client, cfg.Wayback.URL, s.logger),
		Filter:     filter,
		Observer:   s.console,
		Logger:     s.logger,
	}

	if cfg.History.Enabled {
		history, err := persistence.Open(cfg.History.Path)
		if err != nil {
			s.logger.Warn("history disabled", zap.Error(err))
		} else {
			defer history.Close()
			runner.History = history
			if cfg.History.RetainDays > 0 {
				removed, err := history.Cleanup(ctx, domain, cfg.History.RetainDays)
				if err != nil {
					s.logger.Warn("history cleanup failed", zap.Error(err))
				} else if removed > 0 {
					s.logger.Debug("pruned old history", zap.Int64("hosts", removed))
				}
			}
		}
	}

	report := runner.Run(ctx, domain)
	tracker.Complete()

	if cfg.Output.File != "" {
		writer := output.New(cfg.Output.Format, cfg.Output.File, Version)
		if err := writer.WriteReport(report); err != nil {
			return fmt.Errorf("failed to write results: %w", err)
		}
		s.logger.Info("results written", zap.String("file", writer.Path()), zap.String("format", cfg.Output.Format))
	}

	summary.Analyze(report).Print(os.Stdout)
	return nil
}

func showNewSince(cfg *config.Config, domain, date string) error {
	since, err := time.Parse("2006-01-02", date)
	if err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
	}

	history, err := persistence.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer history.Close()

	hosts, err := history.NewSince(context.Background(), domain, since)
	if err != nil {
		return err
	}

	fmt.Printf("\n[+] Subdomains of %s first seen since %s:\n\n", domain, date)
	if len(hosts) == 0 {
		fmt.Println("  [!] None.")
		return nil
	}
	for _, h := range hosts {
		fmt.Printf("  - %s (first seen %s)\n", h.Host, h.FirstSeen.Format("2006-01-02"))
	}
	return nil
}
