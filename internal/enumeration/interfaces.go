package enumeration

import (
	"context"
)

// SubdomainEnumerator is what the recon runner needs from this package.
type SubdomainEnumerator interface {
	Enumerate(ctx context.Context, domain string) Outcome
}

var _ SubdomainEnumerator = (*Enumerator)(nil)
