package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/resistanceisuseless/sovax/internal/dns"
	"github.com/resistanceisuseless/sovax/internal/enumeration"
	"github.com/resistanceisuseless/sovax/internal/recon"
	"github.com/resistanceisuseless/sovax/internal/whois"
)

func sampleReport() *recon.Report {
	return &recon.Report{
		Domain: "example.com",
		Enumeration: enumeration.Outcome{
			Domain:     "example.com",
			Subdomains: []string{"a.example.com", "b.example.com"},
			Counts:     map[string]int{"crtsh": 2},
		},
		DNS:         dns.Results{{Type: "A", Values: []string{"93.184.216.34"}}},
		Interesting: []string{"http://example.com/admin"},
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := New("json", path, "1.2.3").WriteReport(sampleReport()); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got struct {
		Metadata Metadata `json:"metadata"`
		Report   struct {
			Domain      string `json:"domain"`
			Enumeration struct {
				Subdomains []string `json:"subdomains"`
			} `json:"enumeration"`
		} `json:"report"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Metadata.Tool.Version != "1.2.3" || got.Metadata.Target != "example.com" {
		t.Errorf("metadata = %+v", got.Metadata)
	}
	if len(got.Report.Enumeration.Subdomains) != 2 {
		t.Errorf("subdomains = %v", got.Report.Enumeration.Subdomains)
	}
}

func TestWriteText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	if err := New("txt", path, "dev").WriteReport(sampleReport()); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "a.example.com\nb.example.com\nhttp://example.com/admin\n"
	if string(data) != want {
		t.Errorf("file = %q, want %q", data, want)
	}
}

func TestWriteUnsupportedFormat(t *testing.T) {
	if err := New("csv", filepath.Join(t.TempDir(), "x"), "dev").WriteReport(sampleReport()); err == nil {
		t.Error("expected error for csv")
	}
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false)

	c.Start("example.com")
	c.Begin(recon.StageSubdomains)
	c.Subdomains(sampleReport().Enumeration, []string{"b.example.com"})
	c.Begin(recon.StageWhois)
	c.Whois(nil)
	c.Begin(recon.StageDNS)
	c.DNS("Using custom resolver 8.8.8.8 (PASSIVE)", "8.8.8.8", true, "example.com", dns.Results{
		{Type: "A", Values: []string{"93.184.216.34"}},
		{Type: "MX", Values: []string{}},
	})
	c.Begin(recon.StageWayback)
	c.Wayback([]string{"http://example.com/admin", "http://example.com/page"}, []string{"http://example.com/admin"})

	out := buf.String()
	for _, want := range []string{
		"[*] Starting Passive Recon for: example.com",
		"[+] Enumerating Subdomains...",
		"  - a.example.com\n",
		"  - b.example.com (new)\n",
		"  [!] WHOIS lookup failed.",
		"[+] Using custom resolver 8.8.8.8 (PASSIVE)",
		"=== DNS Records via Public Resolver (8.8.8.8) ===",
		"A Records:\n  - 93.184.216.34\n",
		"MX Records:\n  - No records found.\n",
		"[+] Found 1 potentially interesting URLs:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n---\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("colour codes written with colour disabled")
	}
}

func TestConsoleMarksMixedCaseNewHost(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false)

	c.Subdomains(enumeration.Outcome{Subdomains: []string{"WWW.Example.com", "a.example.com"}}, []string{"WWW.Example.com"})

	if !strings.Contains(buf.String(), "  - WWW.Example.com (new)\n") {
		t.Errorf("mixed-case host not marked new:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "a.example.com (new)") {
		t.Errorf("known host marked new:\n%s", buf.String())
	}
}

func TestConsoleEmptySections(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false)

	c.Subdomains(enumeration.Outcome{}, nil)
	c.Whois((&whois.Record{DomainName: "example.com", Source: whois.SourceRDAP}))
	c.Wayback(nil, nil)
	c.Wayback([]string{"http://example.com/"}, nil)

	out := buf.String()
	for _, want := range []string{
		"  [!] No subdomains found.",
		"Domain Name: example.com",
		"[!] No Wayback data found.",
		"[!] No interesting URLs found.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n---\n%s", want, out)
		}
	}
}
