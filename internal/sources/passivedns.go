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
	NameThreatCrowd = "threatcrowd"
	NameBufferOver  = "bufferover"
	NameAlienVault  = "alienvault"
)

// ThreatCrowd returns the report's subdomain list as-is, without scoping.
type ThreatCrowd struct {
	client  Getter
	baseURL string
	logger  *zap.Logger
}

func NewThreatCrowd(client Getter, baseURL string, logger *zap.Logger) *ThreatCrowd {
	return &ThreatCrowd{client: client, baseURL: baseURL, logger: loggerOrNop(logger)}
}

func (t *ThreatCrowd) Name() string { return NameThreatCrowd }

func (t *ThreatCrowd) Fetch(ctx context.Context, domain string) Result {
	hosts, err := t.fetch(ctx, domain)
	return finish(t.logger, NameThreatCrowd, "ThreatCrowd", hosts, err)
}

func (t *ThreatCrowd) fetch(ctx context.Context, domain string) (Set, error) {
	body, err := t.client.Get(ctx, t.baseURL+"?domain="+url.QueryEscape(domain))
	if err != nil {
		return nil, err
	}

	var report struct {
		Subdomains []string `json:"subdomains"`
	}
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("malformed ThreatCrowd response: %w", err)
	}
	return NewSet(report.Subdomains...), nil
}

// BufferOver reads forward-DNS "ip,hostname" pairs.
type BufferOver struct {
	client  Getter
	baseURL string
	logger  *zap.Logger
}

func NewBufferOver(client Getter, baseURL string, logger *zap.Logger) *BufferOver {
	return &BufferOver{client: client, baseURL: baseURL, logger: loggerOrNop(logger)}
}

func (b *BufferOver) Name() string { return NameBufferOver }

func (b *BufferOver) Fetch(ctx context.Context, domain string) Result {
	hosts, err := b.fetch(ctx, domain)
	return finish(b.logger, NameBufferOver, "BufferOver", hosts, err)
}

func (b *BufferOver) fetch(ctx context.Context, domain string) (Set, error) {
	body, err := b.client.Get(ctx, b.baseURL+"?q=."+url.QueryEscape(domain))
	if err != nil {
		return nil, err
	}

	var resp struct {
		FDNSA []string `json:"FDNS_A"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("malformed BufferOver response: %w", err)
	}

	hosts := Set{}
	for _, entry := range resp.FDNSA {
		parts := strings.Split(entry, ",")
		if len(parts) > 1 && strings.Contains(parts[1], domain) {
			hosts.Add(parts[1])
		}
	}
	return hosts, nil
}

// AlienVault reads the OTX passive DNS history for the domain.
type AlienVault struct {
	client  Getter
	baseURL string
	logger  *zap.Logger
}

func NewAlienVault(client Getter, baseURL string, logger *zap.Logger) *AlienVault {
	return &AlienVault{client: client, baseURL: baseURL, logger: loggerOrNop(logger)}
}

func (a *AlienVault) Name() string { return NameAlienVault }

func (a *AlienVault) Fetch(ctx context.Context, domain string) Result {
	hosts, err := a.fetch(ctx, domain)
	return finish(a.logger, NameAlienVault, "AlienVault", hosts, err)
}

func (a *AlienVault) fetch(ctx context.Context, domain string) (Set, error) {
	body, err := a.client.Get(ctx, a.baseURL+url.PathEscape(domain)+"/passive_dns")
	if err != nil {
		return nil, err
	}

	var resp struct {
		PassiveDNS []struct {
			Hostname string `json:"hostname"`
		} `json:"passive_dns"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("malformed AlienVault response: %w", err)
	}

	hosts := Set{}
	for _, record := range resp.PassiveDNS {
		if strings.Contains(record.Hostname, domain) {
			hosts.Add(record.Hostname)
		}
	}
	return hosts, nil
}
