package whois

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/openrdap/rdap"
)

// RDAPClient is the fallback stage, pinned to one RDAP server rather than
// the IANA bootstrap.
type RDAPClient struct {
	client *rdap.Client
	server *url.URL
}

func NewRDAPClient(httpClient *http.Client, userAgent, server string) (*RDAPClient, error) {
	if !strings.HasSuffix(server, "/") {
		server += "/"
	}
	u, err := url.Parse(server)
	if err != nil {
		return nil, fmt.Errorf("invalid RDAP server %q: %w", server, err)
	}

	return &RDAPClient{
		client: &rdap.Client{HTTP: httpClient, UserAgent: userAgent},
		server: u,
	}, nil
}

func (c *RDAPClient) Query(ctx context.Context, domain string) (*Record, error) {
	req := (&rdap.Request{
		Type:   rdap.DomainRequest,
		Query:  domain,
		Server: c.server,
	}).WithContext(ctx)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("RDAP lookup failed: %w", err)
	}

	d, ok := resp.Object.(*rdap.Domain)
	if !ok {
		return nil, fmt.Errorf("unexpected RDAP object %T", resp.Object)
	}
	return fromRDAPDomain(d), nil
}

func fromRDAPDomain(d *rdap.Domain) *Record {
	rec := &Record{
		Source:     SourceRDAP,
		DomainName: d.LDHName,
		Status:     d.Status,
	}

	for _, ev := range d.Events {
		switch ev.Action {
		case "registration":
			rec.CreationDate = firstOf(rec.CreationDate, ev.Date)
		case "expiration":
			rec.ExpirationDate = firstOf(rec.ExpirationDate, ev.Date)
		case "last changed":
			rec.UpdatedDate = firstOf(rec.UpdatedDate, ev.Date)
		}
	}

	for _, ns := range d.Nameservers {
		rec.NameServers = append(rec.NameServers, ns.LDHName)
	}

	for _, e := range d.Entities {
		if e.VCard == nil {
			continue
		}
		if hasRole(e.Roles, "registrar") && rec.Registrar == "" {
			rec.Registrar = e.VCard.Name()
		}
		if hasRole(e.Roles, "registrant") && rec.RegistrantCountry == "" {
			rec.RegistrantCountry = e.VCard.Country()
		}
	}

	return rec.fill()
}

func firstOf(current, next string) string {
	if current != "" {
		return current
	}
	return next
}

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
