// Package whois looks up registration data, first over WHOIS and then over
// RDAP when WHOIS fails or comes back too sparse to be useful.
package whois

import (
	"context"
	"strings"
)

// Unavailable marks a field neither stage could fill. Keys are never dropped.
const Unavailable = "Unavailable"

const (
	SourceWhois = "whois"
	SourceRDAP  = "rdap"
)

type Record struct {
	DomainName        string   `json:"domain_name"`
	Registrar         string   `json:"registrar"`
	CreationDate      string   `json:"creation_date"`
	ExpirationDate    string   `json:"expiration_date"`
	UpdatedDate       string   `json:"updated_date"`
	NameServers       []string `json:"name_servers"`
	Status            []string `json:"status"`
	RegistrantCountry string   `json:"registrant_country"`
	Source            string   `json:"source"`
}

// Field is one printable line of a record.
type Field struct {
	Key   string
	Value string
}

// Querier is one lookup stage.
type Querier interface {
	Query(ctx context.Context, domain string) (*Record, error)
}

// Sparse reports whether the record lacks a domain name or registrar.
func (r *Record) Sparse() bool {
	return r.DomainName == Unavailable || r.Registrar == Unavailable
}

// Fields returns the record in display order.
func (r *Record) Fields() []Field {
	return []Field{
		{"Domain Name", r.DomainName},
		{"Registrar", r.Registrar},
		{"Creation Date", r.CreationDate},
		{"Expiration Date", r.ExpirationDate},
		{"Updated Date", r.UpdatedDate},
		{"Name Servers", strings.Join(r.NameServers, ", ")},
		{"Status", strings.Join(r.Status, ", ")},
		{"Registrant Country", r.RegistrantCountry},
	}
}

// fill replaces every empty field with the sentinel.
func (r *Record) fill() *Record {
	for _, s := range []*string{&r.DomainName, &r.Registrar, &r.CreationDate, &r.ExpirationDate, &r.UpdatedDate, &r.RegistrantCountry} {
		if strings.TrimSpace(*s) == "" {
			*s = Unavailable
		}
	}
	r.NameServers = orUnavailable(r.NameServers)
	r.Status = orUnavailable(r.Status)
	return r
}

func orUnavailable(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return []string{Unavailable}
	}
	return out
}
