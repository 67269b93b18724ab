package authority

import (
	"context"
	"errors"
	"fmt"
)

// Tier is one step of the tiered search.
type Tier int

const (
	TierExact Tier = iota
	TierFuzzy
	TierByID
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierFuzzy:
		return "fuzzy"
	case TierByID:
		return "by_id"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// Query is a single request to an authority.
type Query struct {
	Tier Tier
	Term string
}

// Result holds the documents an authority returned, in response order. An
// empty Documents slice means the authority found nothing.
type Result struct {
	Documents []Document
}

// NotFound reports whether the authority returned no documents.
func (r Result) NotFound() bool { return len(r.Documents) == 0 }

//go:generate mockgen -destination=mocks/adapter.go -package=mocks sppin/internal/authority Adapter

// Adapter issues queries against one authority.
type Adapter interface {
	// Authority returns the short authority name used in logs and cache keys.
	Authority() string
	// Supports reports whether the authority can answer the tier.
	Supports(Tier) bool
	// Describe renders the exact request a query maps to, for the audit trail.
	Describe(Query) string
	// Query performs the request. A non-nil error is a transport or decode
	// failure; credential problems are reported as *CredentialError.
	Query(ctx context.Context, q Query) (Result, error)
}

// CredentialError reports a missing or rejected API credential.
type CredentialError struct {
	Authority string
	Missing   bool
	// Message is the authority's rejection text, passed through verbatim.
	Message string
}

func (e *CredentialError) Error() string {
	if e.Missing {
		return fmt.Sprintf("%s: API token not present", e.Authority)
	}
	return fmt.Sprintf("%s: credential rejected: %s", e.Authority, e.Message)
}

// AsCredentialError unwraps err to a *CredentialError.
func AsCredentialError(err error) (*CredentialError, bool) {
	var credErr *CredentialError
	if errors.As(err, &credErr) {
		return credErr, true
	}
	return nil, false
}
