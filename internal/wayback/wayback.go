// Package wayback pulls archived URLs for a domain from the Wayback Machine
// CDX index and picks out the ones worth a closer look.
package wayback

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"

	"go.uber.org/zap"
)

// DefaultPatterns flag admin and auth paths, sensitive file extensions and
// URLs carrying query parameters.
var DefaultPatterns = []string{
	`admin`, `login`, `signin`, `signup`,
	`\.php`, `\.js`, `\.json`, `\.sql`, `\.bak`,
	`\.zip`, `\.tar`, `\.gz`,
	`\.env`, `\.git`, `\.svn`,
	`\?`,
}

type Getter interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
}

type Client struct {
	client  Getter
	baseURL string
	logger  *zap.Logger
}

func NewClient(client Getter, baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{client: client, baseURL: baseURL, logger: logger.Named("wayback")}
}

// Fetch returns the archived URL of every capture. Failures yield an empty
// list.
func (c *Client) Fetch(ctx context.Context, domain string) []string {
	c.logger.Info("fetching Wayback Machine data", zap.String("domain", domain))

	urls, err := c.fetch(ctx, domain)
	if err != nil {
		c.logger.Warn("error fetching Wayback data", zap.Error(err))
		return []string{}
	}
	return urls
}

func (c *Client) fetch(ctx context.Context, domain string) ([]string, error) {
	params := url.Values{
		"url":      {domain + "/*"},
		"output":   {"json"},
		"fl":       {"original"},
		"collapse": {"urlkey"},
	}

	body, err := c.client.Get(ctx, c.baseURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var rows [][]string
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("malformed CDX response: %w", err)
	}

	urls := []string{}
	if len(rows) < 2 {
		return urls, nil
	}
	// rows[0] is the field header
	for _, row := range rows[1:] {
		if len(row) > 0 {
			urls = append(urls, row[0])
		}
	}
	return urls, nil
}

// Filter matches URLs case-insensitively against a fixed pattern list.
type Filter struct {
	patterns []*regexp.Regexp
}

// NewFilter compiles DefaultPatterns plus any extra expressions.
func NewFilter(extra ...string) (*Filter, error) {
	f := &Filter{}
	for _, p := range append(append([]string(nil), DefaultPatterns...), extra...) {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		f.patterns = append(f.patterns, re)
	}
	return f, nil
}

// Apply keeps matching URLs, deduplicated in first-seen order.
func (f *Filter) Apply(urls []string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, u := range urls {
		if seen[u] || !f.matches(u) {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

func (f *Filter) matches(u string) bool {
	for _, re := range f.patterns {
		if re.MatchString(u) {
			return true
		}
	}
	return false
}
