package whois

import (
	"context"
	"fmt"
	"time"

	likewhois "github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
)

// Client is the WHOIS stage: a raw port-43 query followed by parsing.
type Client struct {
	client *likewhois.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{client: likewhois.NewClient().SetTimeout(timeout)}
}

func (c *Client) Query(ctx context.Context, domain string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := c.client.Whois(domain)
	if err != nil {
		return nil, fmt.Errorf("whois query failed: %w", err)
	}

	info, err := whoisparser.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse whois response: %w", err)
	}

	return fromWhoisInfo(info), nil
}

func fromWhoisInfo(info whoisparser.WhoisInfo) *Record {
	rec := &Record{Source: SourceWhois}

	if d := info.Domain; d != nil {
		rec.DomainName = d.Domain
		rec.CreationDate = d.CreatedDate
		rec.ExpirationDate = d.ExpirationDate
		rec.UpdatedDate = d.UpdatedDate
		rec.NameServers = d.NameServers
		rec.Status = d.Status
	}
	if r := info.Registrar; r != nil {
		rec.Registrar = r.Name
	}
	if r := info.Registrant; r != nil {
		rec.RegistrantCountry = r.Country
	}

	return rec.fill()
}
