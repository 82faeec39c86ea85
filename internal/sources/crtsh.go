package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

const (
	NameCrtsh     = "crtsh"
	NameCrtshHTML = "crtsh-html"
)

// certEntry is the only part of a crt.sh JSON row we read. name_value holds
// newline-separated SAN entries.
type certEntry struct {
	NameValue string `json:"name_value"`
}

// Crtsh queries the crt.sh JSON endpoint.
type Crtsh struct {
	client  Getter
	baseURL string
	logger  *zap.Logger
}

func NewCrtsh(client Getter, baseURL string, logger *zap.Logger) *Crtsh {
	return &Crtsh{client: client, baseURL: baseURL, logger: loggerOrNop(logger)}
}

func (c *Crtsh) Name() string { return NameCrtsh }

func (c *Crtsh) Fetch(ctx context.Context, domain string) Result {
	hosts, err := c.fetch(ctx, domain)
	return finish(c.logger, NameCrtsh, "crt.sh JSON", hosts, err)
}

func (c *Crtsh) fetch(ctx context.Context, domain string) (Set, error) {
	query := url.Values{"q": {"%." + domain}, "output": {"json"}}
	body, err := c.client.Get(ctx, c.baseURL+"?"+query.Encode())
	if err != nil {
		return nil, err
	}

	var entries []certEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("malformed crt.sh response: %w", err)
	}

	hosts := Set{}
	for _, entry := range entries {
		for _, name := range strings.Split(entry.NameValue, "\n") {
			hosts.Add(name)
		}
	}
	return hosts, nil
}
