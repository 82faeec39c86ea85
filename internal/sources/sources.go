// Package sources holds the passive subdomain fetchers. Every fetcher issues
// a single GET, never retries, and turns any failure into an empty set.
package sources

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Getter is the slice of httpclient.Client the fetchers need.
type Getter interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
}

// Set is an unordered collection of hostnames.
type Set map[string]struct{}

func NewSet(hosts ...string) Set {
	s := make(Set, len(hosts))
	for _, h := range hosts {
		s.Add(h)
	}
	return s
}

// Add inserts h after trimming; blanks are ignored.
func (s Set) Add(h string) {
	h = strings.TrimSpace(h)
	if h == "" {
		return
	}
	s[h] = struct{}{}
}

func (s Set) Merge(other Set) {
	for h := range other {
		s[h] = struct{}{}
	}
}

func (s Set) Has(h string) bool {
	_, ok := s[h]
	return ok
}

func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for h := range s {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// Result is what one fetcher invocation produced. Hosts is never nil.
type Result struct {
	Source string
	Hosts  Set
	Err    error
}

func (r Result) Failed() bool {
	return r.Err != nil
}

type Source interface {
	Name() string
	Fetch(ctx context.Context, domain string) Result
}

// finish logs the outcome under the source's display label and builds the
// Result, discarding any partial hosts on failure.
func finish(logger *zap.Logger, name, label string, hosts Set, err error) Result {
	if err != nil {
		logger.Warn(label+" failed", zap.Error(err))
		return Result{Source: name, Hosts: Set{}, Err: err}
	}
	logger.Info(label+" successful", zap.Int("hosts", len(hosts)))
	return Result{Source: name, Hosts: hosts}
}

func loggerOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
