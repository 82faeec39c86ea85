package summary

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/resistanceisuseless/sovax/internal/dns"
	"github.com/resistanceisuseless/sovax/internal/enumeration"
	"github.com/resistanceisuseless/sovax/internal/recon"
	"github.com/resistanceisuseless/sovax/internal/whois"
)

func sampleReport() *recon.Report {
	return &recon.Report{
		Domain: "example.com",
		Enumeration: enumeration.Outcome{
			Subdomains:   []string{"a.example.com", "b.example.com", "c.example.com"},
			Counts:       map[string]int{"crtsh": 0, "alienvault": 2, "bufferover": 2, "crtsh-html": 1},
			Failed:       []string{"threatcrowd", "crtsh"},
			FallbackUsed: true,
		},
		NewHosts: []string{"c.example.com"},
		Whois:    &whois.Record{Source: whois.SourceRDAP},
		DNS: dns.Results{
			{Type: "A", Values: []string{"93.184.216.34"}},
			{Type: "MX", Values: []string{}},
			{Type: "NS", Values: []string{dns.TimedOut}},
			{Type: "TXT", Values: []string{`"v=spf1 -all"`}},
		},
		WaybackTotal: 40,
		Interesting:  []string{"http://example.com/admin"},
		Duration:     1500 * time.Millisecond,
	}
}

func TestAnalyze(t *testing.T) {
	s := Analyze(sampleReport())

	if s.TotalSubdomains != 3 || s.NewSubdomains != 1 {
		t.Errorf("subdomains = %d new = %d", s.TotalSubdomains, s.NewSubdomains)
	}
	if s.DNSTypesFound != 2 || s.DomainMissing {
		t.Errorf("dns types = %d missing = %v", s.DNSTypesFound, s.DomainMissing)
	}
	if !reflect.DeepEqual(s.FailedSources, []string{"crtsh", "threatcrowd"}) {
		t.Errorf("failed = %v", s.FailedSources)
	}
	if s.WhoisSource != whois.SourceRDAP || !s.FallbackUsed {
		t.Errorf("whois source = %q fallback = %v", s.WhoisSource, s.FallbackUsed)
	}
}

func TestAnalyzeMissingDomain(t *testing.T) {
	r := sampleReport()
	r.DNS = dns.Results{{Type: "A", Values: []string{dns.NotExist}}}
	r.Whois = nil

	s := Analyze(r)
	if !s.DomainMissing || s.DNSTypesFound != 0 || s.WhoisSource != "" {
		t.Errorf("unexpected summary %+v", s)
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	Analyze(sampleReport()).Print(&buf)
	out := buf.String()

	for _, want := range []string{
		"Subdomains Found: 3",
		"New Since Last Run: 1",
		"Failed: crtsh, threatcrowd",
		"crt.sh HTML fallback: used",
		"via RDAP fallback",
		"archived URLs: 40, interesting: 1",
		"Completed in 1.5s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	// ties broken by name
	if strings.Index(out, "alienvault") > strings.Index(out, "bufferover") {
		t.Error("sources with equal counts should be sorted by name")
	}
}
