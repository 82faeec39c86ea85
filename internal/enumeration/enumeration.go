package enumeration

import (
	"context"
	"strings"
	"time"

	"github.com/resistanceisuseless/sovax/internal/config"
	"github.com/resistanceisuseless/sovax/internal/sources"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Enumerator fans the enabled sources out over a bounded group and folds
// their sets into one sorted list.
type Enumerator struct {
	sources     []sources.Source
	fallback    sources.Source
	mode        string
	strictScope bool
	workers     int
	logger      *zap.Logger

	// OnResult, when set, is called from the merging goroutine as each
	// source completes, including the HTML fallback.
	OnResult func(sources.Result)
}

// Outcome is the merged enumeration result for one domain.
type Outcome struct {
	Domain       string         `json:"domain"`
	Subdomains   []string       `json:"subdomains"`
	Counts       map[string]int `json:"source_counts"`
	Failed       []string       `json:"failed_sources,omitempty"`
	FallbackUsed bool           `json:"fallback_used"`
	Duration     time.Duration  `json:"duration_ns"`
}

func New(cfg *config.Config, srcs []sources.Source, fallback sources.Source, logger *zap.Logger) *Enumerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := cfg.Enumeration.Workers
	if workers < 1 {
		workers = 1
	}
	return &Enumerator{
		sources:     srcs,
		fallback:    fallback,
		mode:        cfg.Enumeration.Fallback,
		strictScope: cfg.Enumeration.StrictScope,
		workers:     workers,
		logger:      logger.Named("enumeration"),
	}
}

// Enumerate waits for every source to return. There is no deadline beyond
// each request's own timeout.
func (e *Enumerator) Enumerate(ctx context.Context, domain string) Outcome {
	start := time.Now()
	outcome := Outcome{Domain: domain, Counts: make(map[string]int)}
	all := sources.Set{}

	results := make(chan sources.Result, len(e.sources))
	go func() {
		var g errgroup.Group
		g.SetLimit(e.workers)
		for _, src := range e.sources {
			src := src
			g.Go(func() error {
				results <- src.Fetch(ctx, domain)
				return nil
			})
		}
		g.Wait()
		close(results)
	}()

	var crtsh *sources.Result
	for res := range results {
		e.record(&outcome, res)
		all.Merge(res.Hosts)
		if res.Source == sources.NameCrtsh {
			r := res
			crtsh = &r
		}
	}

	if e.fallback != nil && e.shouldFallback(crtsh) {
		e.logger.Debug("running crt.sh HTML fallback", zap.String("mode", e.mode))
		res := e.fallback.Fetch(ctx, domain)
		e.record(&outcome, res)
		all.Merge(res.Hosts)
		outcome.FallbackUsed = true
	}

	if e.strictScope {
		all = inScope(all, domain)
	}

	outcome.Subdomains = all.Sorted()
	outcome.Duration = time.Since(start)
	return outcome
}

func (e *Enumerator) record(outcome *Outcome, res sources.Result) {
	outcome.Counts[res.Source] = len(res.Hosts)
	if res.Failed() {
		outcome.Failed = append(outcome.Failed, res.Source)
	}
	if e.OnResult != nil {
		e.OnResult(res)
	}
}

// shouldFallback decides whether the crt.sh HTML page is scraped. crtsh is
// nil when the JSON source is not enabled.
func (e *Enumerator) shouldFallback(crtsh *sources.Result) bool {
	if e.mode == config.FallbackLegacy {
		// the old trigger compared source labels that never matched, so it
		// scraped on every run
		return true
	}
	if crtsh == nil {
		return false
	}
	return crtsh.Failed() || len(crtsh.Hosts) == 0
}

func inScope(all sources.Set, domain string) sources.Set {
	scoped := sources.Set{}
	for h := range all {
		if strings.Contains(h, domain) {
			scoped.Add(h)
		}
	}
	return scoped
}
