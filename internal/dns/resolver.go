package dns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/miekg/dns"
	"github.com/resistanceisuseless/sovax/internal/config"
	"go.uber.org/zap"
)

// Sentinels stored in place of values when a query fails.
const (
	NotExist = "[!] Domain does not exist."
	TimedOut = "[!] Query timed out."
)

// RecordTypes are queried in this order.
var RecordTypes = []uint16{dns.TypeA, dns.TypeMX, dns.TypeNS, dns.TypeTXT, dns.TypeCNAME}

const resolvConf = "/etc/resolv.conf"

type Record struct {
	Type   string   `json:"type"`
	Values []string `json:"values"`
}

// Results keeps record types in query order. Types never attempted because
// of an earlier NXDOMAIN are absent.
type Results []Record

func (r Results) Get(rtype string) ([]string, bool) {
	for _, rec := range r {
		if rec.Type == rtype {
			return rec.Values, true
		}
	}
	return nil, false
}

type Resolver struct {
	client *dns.Client
	tcp    *dns.Client // retries answers truncated over UDP
	server string
	custom bool
	logger *zap.Logger
}

// New builds a resolver against the configured server, or against the first
// nameserver in resolv.conf when the system resolver is requested.
func New(cfg *config.Config, logger *zap.Logger) (*Resolver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Resolver{
		client: &dns.Client{Timeout: cfg.DNSTimeout()},
		tcp:    &dns.Client{Net: "tcp", Timeout: cfg.DNSTimeout()},
		logger: logger.Named("dns"),
	}

	if cfg.DNS.SystemResolver || cfg.DNS.Resolver == "" {
		conf, err := dns.ClientConfigFromFile(resolvConf)
		if err != nil {
			return nil, fmt.Errorf("failed to read system resolver config: %w", err)
		}
		if len(conf.Servers) == 0 {
			return nil, fmt.Errorf("no nameservers in %s", resolvConf)
		}
		r.server = net.JoinHostPort(conf.Servers[0], conf.Port)
		return r, nil
	}

	r.server = withPort(cfg.DNS.Resolver)
	r.custom = true
	return r, nil
}

func withPort(server string) string {
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	return net.JoinHostPort(server, "53")
}

// Mode describes whether lookups go to an explicit public resolver or to
// whatever the host is configured with.
func (r *Resolver) Mode() string {
	if r.custom {
		return fmt.Sprintf("Using custom resolver %s (PASSIVE)", r.Server())
	}
	return "Using system default resolver (POTENTIALLY ACTIVE)"
}

// Server returns the resolver address without the default port.
func (r *Resolver) Server() string {
	host, port, err := net.SplitHostPort(r.server)
	if err == nil && port == "53" {
		return host
	}
	return r.server
}

func (r *Resolver) Custom() bool {
	return r.custom
}

// Resolve queries each record type in turn. NXDOMAIN on any type stops the
// loop; later types are not attempted.
func (r *Resolver) Resolve(ctx context.Context, domain string) Results {
	results := make(Results, 0, len(RecordTypes))

	for _, qtype := range RecordTypes {
		label := dns.TypeToString[qtype]
		values, err := r.query(ctx, domain, qtype)

		switch {
		case err == nil:
			results = append(results, Record{Type: label, Values: values})
		case errors.Is(err, errNXDomain):
			r.logger.Debug("domain does not exist", zap.String("domain", domain), zap.String("type", label))
			return append(results, Record{Type: label, Values: []string{NotExist}})
		case isTimeout(err):
			r.logger.Debug("query timed out", zap.String("type", label))
			results = append(results, Record{Type: label, Values: []string{TimedOut}})
		default:
			r.logger.Debug("query failed", zap.String("type", label), zap.Error(err))
			results = append(results, Record{Type: label, Values: []string{"[!] Error: " + err.Error()}})
		}
	}

	return results
}

var errNXDomain = errors.New("NXDOMAIN")

const ednsBufSize = 4096

func (r *Resolver) query(ctx context.Context, domain string, qtype uint16) ([]string, error) {
	msg := &dns.Msg{}
	msg.SetQuestion(dns.Fqdn(domain), qtype)
	msg.SetEdns0(ednsBufSize, false)

	resp, _, err := r.client.ExchangeContext(ctx, msg, r.server)
	if err != nil {
		return nil, err
	}
	if resp.Truncated {
		r.logger.Debug("truncated answer, retrying over TCP", zap.String("type", dns.TypeToString[qtype]))
		resp, _, err = r.tcp.ExchangeContext(ctx, msg, r.server)
		if err != nil {
			return nil, err
		}
	}

	switch resp.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return nil, errNXDomain
	default:
		return nil, fmt.Errorf("server returned %s", dns.RcodeToString[resp.Rcode])
	}

	values := []string{}
	for _, ans := range resp.Answer {
		if ans.Header().Rrtype != qtype {
			continue
		}
		values = append(values, rdata(ans))
	}
	return values, nil
}

// rdata renders only the data portion of rr in presentation format.
func rdata(rr dns.RR) string {
	return strings.TrimSpace(strings.TrimPrefix(rr.String(), rr.Header().String()))
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
