package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/resistanceisuseless/sovax/internal/dns"
	"github.com/resistanceisuseless/sovax/internal/enumeration"
	"github.com/resistanceisuseless/sovax/internal/recon"
	"github.com/resistanceisuseless/sovax/internal/whois"
)

const banner = `
   ____   ___ __     __ _    __  __
  / ___| / _ \ \   / // \   \ \/ /
  \___ \| | | |\ \ / // _ \   \  /
   ___) | |_| | \ V // ___ \  /  \
  |____/ \___/   \_//_/   \_\/_/\_\
`

// Console streams the human-readable report. It implements recon.Observer.
type Console struct {
	w io.Writer

	title *color.Color
	good  *color.Color
	warn  *color.Color
	bad   *color.Color
	fresh *color.Color
}

var _ recon.Observer = (*Console)(nil)

func NewConsole(w io.Writer, useColor bool) *Console {
	c := &Console{
		w:     w,
		title: color.New(color.FgCyan, color.Bold),
		good:  color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		bad:   color.New(color.FgRed),
		fresh: color.New(color.FgGreen, color.Bold),
	}
	for _, col := range []*color.Color{c.title, c.good, c.warn, c.bad, c.fresh} {
		if useColor {
			col.EnableColor()
		} else {
			col.DisableColor()
		}
	}
	return c
}

func (c *Console) Banner(version string) {
	c.title.Fprint(c.w, banner)
	fmt.Fprintf(c.w, "  passive recon toolkit v%s\n", version)
}

func (c *Console) Start(domain string) {
	c.title.Fprintf(c.w, "\n[*] Starting Passive Recon for: %s\n", domain)
}

func (c *Console) Begin(stage string) {
	switch stage {
	case recon.StageSubdomains:
		c.good.Fprintln(c.w, "\n[+] Enumerating Subdomains...")
	case recon.StageWhois:
		c.good.Fprintln(c.w, "\n[+] Fetching WHOIS Info...")
	case recon.StageDNS:
		c.good.Fprintln(c.w, "\n[+] Performing DNS Resolution...")
	case recon.StageWayback:
		c.good.Fprintln(c.w, "\n[+] Extracting URLs from Wayback Machine...")
	}
	fmt.Fprintln(c.w)
}

func (c *Console) Subdomains(outcome enumeration.Outcome, newHosts []string) {
	if len(outcome.Subdomains) == 0 {
		c.warn.Fprintln(c.w, "  [!] No subdomains found.")
		return
	}

	isNew := make(map[string]bool, len(newHosts))
	for _, h := range newHosts {
		isNew[h] = true
	}

	for _, sub := range outcome.Subdomains {
		fmt.Fprintf(c.w, "  - %s", sub)
		if isNew[sub] {
			c.fresh.Fprint(c.w, " (new)")
		}
		fmt.Fprintln(c.w)
	}
}

func (c *Console) Whois(rec *whois.Record) {
	if rec == nil {
		c.bad.Fprintln(c.w, "  [!] WHOIS lookup failed.")
		return
	}
	for _, f := range rec.Fields() {
		fmt.Fprintf(c.w, "%s: %s\n", f.Key, f.Value)
	}
}

func (c *Console) DNS(mode, server string, custom bool, domain string, results dns.Results) {
	fmt.Fprintf(c.w, "[+] %s\n", mode)
	fmt.Fprintf(c.w, "[+] Resolving domain: %s\n", domain)

	title := "DNS Records via System Resolver"
	if custom {
		title = fmt.Sprintf("DNS Records via Public Resolver (%s)", server)
	}
	c.title.Fprintf(c.w, "\n=== %s ===\n", title)

	for _, rec := range results {
		fmt.Fprintf(c.w, "%s Records:\n", rec.Type)
		if len(rec.Values) == 0 {
			fmt.Fprintln(c.w, "  - No records found.")
		}
		for _, v := range rec.Values {
			if isSentinel(v) {
				c.warn.Fprintf(c.w, "  - %s\n", v)
				continue
			}
			fmt.Fprintf(c.w, "  - %s\n", v)
		}
		fmt.Fprintln(c.w)
	}
}

func (c *Console) Wayback(all, interesting []string) {
	if len(all) == 0 {
		c.warn.Fprintln(c.w, "[!] No Wayback data found.")
		return
	}
	if len(interesting) == 0 {
		c.warn.Fprintln(c.w, "[!] No interesting URLs found.")
		return
	}

	c.good.Fprintf(c.w, "[+] Found %d potentially interesting URLs:\n\n", len(interesting))
	for _, u := range interesting {
		fmt.Fprintf(c.w, "  - %s\n", u)
	}
}

func isSentinel(v string) bool {
	return strings.HasPrefix(v, "[!]")
}
