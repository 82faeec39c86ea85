package summary

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/resistanceisuseless/sovax/internal/dns"
	"github.com/resistanceisuseless/sovax/internal/recon"
	"github.com/resistanceisuseless/sovax/internal/whois"
)

type Summary struct {
	Domain          string
	TotalSubdomains int
	NewSubdomains   int
	Sources         map[string]int
	FailedSources   []string
	FallbackUsed    bool
	WhoisSource     string
	DNSTypesFound   int
	DomainMissing   bool
	WaybackURLs     int
	InterestingURLs int
	Elapsed         time.Duration
}

func Analyze(report *recon.Report) *Summary {
	s := &Summary{
		Domain:          report.Domain,
		TotalSubdomains: len(report.Enumeration.Subdomains),
		NewSubdomains:   len(report.NewHosts),
		Sources:         make(map[string]int),
		FailedSources:   append([]string(nil), report.Enumeration.Failed...),
		FallbackUsed:    report.Enumeration.FallbackUsed,
		WaybackURLs:     report.WaybackTotal,
		InterestingURLs: len(report.Interesting),
		Elapsed:         report.Duration,
	}
	sort.Strings(s.FailedSources)

	for source, n := range report.Enumeration.Counts {
		s.Sources[source] = n
	}

	if report.Whois != nil {
		s.WhoisSource = report.Whois.Source
	}

	for _, rec := range report.DNS {
		if len(rec.Values) == 0 || strings.HasPrefix(rec.Values[0], "[!]") {
			if len(rec.Values) > 0 && rec.Values[0] == dns.NotExist {
				s.DomainMissing = true
			}
			continue
		}
		s.DNSTypesFound++
	}

	return s
}

func (s *Summary) Print(w io.Writer) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 60))
	fmt.Fprintln(w, "                    RECON SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 60))

	fmt.Fprintf(w, "\nTarget: %s\n", s.Domain)
	fmt.Fprintf(w, "   Subdomains Found: %d\n", s.TotalSubdomains)
	if s.NewSubdomains > 0 {
		fmt.Fprintf(w, "   New Since Last Run: %d\n", s.NewSubdomains)
	}

	fmt.Fprintf(w, "\nDiscovery Sources:\n")
	for _, kv := range sortMapByValue(s.Sources) {
		fmt.Fprintf(w, "   %-25s: %d hosts\n", kv.Key, kv.Value)
	}
	if len(s.FailedSources) > 0 {
		fmt.Fprintf(w, "   Failed: %s\n", strings.Join(s.FailedSources, ", "))
	}
	if s.FallbackUsed {
		fmt.Fprintf(w, "   crt.sh HTML fallback: used\n")
	}

	fmt.Fprintf(w, "\nRegistration:\n")
	switch s.WhoisSource {
	case "":
		fmt.Fprintf(w, "   unavailable\n")
	case whois.SourceRDAP:
		fmt.Fprintf(w, "   via RDAP fallback\n")
	default:
		fmt.Fprintf(w, "   via WHOIS\n")
	}

	fmt.Fprintf(w, "\nDNS:\n")
	if s.DomainMissing {
		fmt.Fprintf(w, "   domain does not exist\n")
	} else {
		fmt.Fprintf(w, "   record types with data: %d\n", s.DNSTypesFound)
	}

	fmt.Fprintf(w, "\nWayback Machine:\n")
	fmt.Fprintf(w, "   archived URLs: %d, interesting: %d\n", s.WaybackURLs, s.InterestingURLs)

	fmt.Fprintf(w, "\nCompleted in %s\n", s.Elapsed.Round(time.Millisecond))
	fmt.Fprintln(w, strings.Repeat("=", 60))
}

type KeyValue struct {
	Key   string
	Value int
}

// sortMapByValue orders by count, then name, so output is stable.
func sortMapByValue(m map[string]int) []KeyValue {
	var kvs []KeyValue
	for k, v := range m {
		kvs = append(kvs, KeyValue{k, v})
	}

	sort.Slice(kvs, func(i, j int) bool {
		if kvs[i].Value != kvs[j].Value {
			return kvs[i].Value > kvs[j].Value
		}
		return kvs[i].Key < kvs[j].Key
	})

	return kvs
}
