package whois

import (
	"context"

	"go.uber.org/zap"
)

// Lookup chains the WHOIS stage and the RDAP fallback.
type Lookup struct {
	primary  Querier
	fallback Querier
	logger   *zap.Logger
}

func NewLookup(primary, fallback Querier, logger *zap.Logger) *Lookup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lookup{primary: primary, fallback: fallback, logger: logger.Named("whois")}
}

// Fetch returns nil only when both stages fail. A sparse WHOIS answer is
// kept when RDAP cannot do better.
func (l *Lookup) Fetch(ctx context.Context, domain string) *Record {
	rec, err := l.primary.Query(ctx, domain)
	if err != nil {
		l.logger.Warn("WHOIS lookup failed, falling back to RDAP", zap.Error(err))
		return l.rdap(ctx, domain)
	}

	if rec.Sparse() {
		l.logger.Info("WHOIS info incomplete, falling back to RDAP")
		if fallback := l.rdap(ctx, domain); fallback != nil {
			return fallback
		}
	}
	return rec
}

func (l *Lookup) rdap(ctx context.Context, domain string) *Record {
	if l.fallback == nil {
		return nil
	}
	rec, err := l.fallback.Query(ctx, domain)
	if err != nil {
		l.logger.Warn("RDAP lookup failed", zap.Error(err))
		return nil
	}
	return rec
}
