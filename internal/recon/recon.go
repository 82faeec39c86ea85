// Package recon runs the passive stages for one domain in a fixed order:
// subdomains, WHOIS, DNS, then Wayback.
package recon

import (
	"context"
	"strings"
	"time"

	"github.com/resistanceisuseless/sovax/internal/dns"
	"github.com/resistanceisuseless/sovax/internal/enumeration"
	"github.com/resistanceisuseless/sovax/internal/whois"
	"go.uber.org/zap"
)

type WhoisFetcher interface {
	Fetch(ctx context.Context, domain string) *whois.Record
}

type DNSResolver interface {
	Resolve(ctx context.Context, domain string) dns.Results
	Mode() string
	Server() string
	Custom() bool
}

type ArchiveFetcher interface {
	Fetch(ctx context.Context, domain string) []string
}

type URLFilter interface {
	Apply(urls []string) []string
}

// HistoryTracker is satisfied by persistence.Tracker.
type HistoryTracker interface {
	Track(ctx context.Context, target string, hosts []string) ([]string, error)
}

// Stages in the order Run executes them.
const (
	StageSubdomains = "subdomains"
	StageWhois      = "whois"
	StageDNS        = "dns"
	StageWayback    = "wayback"
)

// Observer is told when each stage begins and as soon as it finishes so the
// console report can stream. Calls arrive in stage order from one goroutine.
type Observer interface {
	Start(domain string)
	Begin(stage string)
	Subdomains(outcome enumeration.Outcome, newHosts []string)
	Whois(rec *whois.Record)
	DNS(mode, server string, custom bool, domain string, results dns.Results)
	Wayback(all, interesting []string)
}

type Report struct {
	Domain       string              `json:"domain"`
	StartedAt    time.Time           `json:"started_at"`
	Enumeration  enumeration.Outcome `json:"enumeration"`
	NewHosts     []string            `json:"new_hosts,omitempty"`
	Whois        *whois.Record       `json:"whois"`
	DNSMode      string              `json:"dns_mode"`
	DNS          dns.Results         `json:"dns"`
	WaybackTotal int                 `json:"wayback_total"`
	Interesting  []string            `json:"interesting_urls"`
	Duration     time.Duration       `json:"duration_ns"`
}

type Runner struct {
	Enumerator enumeration.SubdomainEnumerator
	Whois      WhoisFetcher
	Resolver   DNSResolver
	Archive    ArchiveFetcher
	Filter     URLFilter

	// optional
	History  HistoryTracker
	Observer Observer
	Logger   *zap.Logger
}

// Run never fails: every stage degrades to an empty or nil section.
func (r *Runner) Run(ctx context.Context, domain string) *Report {
	domain = strings.TrimSpace(domain)
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	obs := r.Observer
	if obs == nil {
		obs = nopObserver{}
	}

	report := &Report{Domain: domain, StartedAt: time.Now()}
	obs.Start(domain)

	obs.Begin(StageSubdomains)
	report.Enumeration = r.Enumerator.Enumerate(ctx, domain)
	if r.History != nil {
		newHosts, err := r.History.Track(ctx, domain, report.Enumeration.Subdomains)
		if err != nil {
			logger.Warn("failed to update subdomain history", zap.Error(err))
		} else {
			report.NewHosts = newHosts
		}
	}
	obs.Subdomains(report.Enumeration, report.NewHosts)

	obs.Begin(StageWhois)
	report.Whois = r.Whois.Fetch(ctx, domain)
	obs.Whois(report.Whois)

	obs.Begin(StageDNS)
	report.DNSMode = r.Resolver.Mode()
	report.DNS = r.Resolver.Resolve(ctx, domain)
	obs.DNS(report.DNSMode, r.Resolver.Server(), r.Resolver.Custom(), domain, report.DNS)

	obs.Begin(StageWayback)
	urls := r.Archive.Fetch(ctx, domain)
	report.WaybackTotal = len(urls)
	report.Interesting = []string{}
	if len(urls) > 0 {
		report.Interesting = r.Filter.Apply(urls)
	}
	obs.Wayback(urls, report.Interesting)

	report.Duration = time.Since(report.StartedAt)
	logger.Debug("passive recon finished", zap.String("domain", domain), zap.Duration("elapsed", report.Duration))
	return report
}

type nopObserver struct{}

func (nopObserver) Start(string) {}
func (nopObserver) Begin(string) {}
func (nopObserver) Subdomains(enumeration.Outcome, []string) {}
func (nopObserver) Whois(*whois.Record) {}
func (nopObserver) DNS(string, string, bool, string, dns.Results) {}
func (nopObserver) Wayback([]string, []string) {}
