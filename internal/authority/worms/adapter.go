package worms

import (
	"context"
	"net/url"
	"strings"

	"sppin/internal/authority"
	"sppin/internal/authority/httpclient"
)

// Name is the authority name used in logs and cache rows.
const Name = "worms"

// Adapter issues AphiaRecord queries.
type Adapter struct {
	client *httpclient.Client
}

var _ authority.Adapter = (*Adapter)(nil)

// New wraps a transport client.
func New(client *httpclient.Client) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) Authority() string { return Name }

func (a *Adapter) Supports(authority.Tier) bool { return true }

// Describe returns the REST URL for q.
func (a *Adapter) Describe(q authority.Query) string {
	term := url.PathEscape(strings.TrimSpace(q.Term))
	switch q.Tier {
	case authority.TierByID:
		return a.client.URL("/AphiaRecordByAphiaID/" + term)
	case authority.TierFuzzy:
		return a.client.URL("/AphiaRecordsByName/" + term + "?like=true&marine_only=false&offset=1")
	default:
		return a.client.URL("/AphiaRecordsByName/" + term + "?like=false&marine_only=false&offset=1")
	}
}

// Query runs q. WoRMS answers "no match" with 204 No Content.
func (a *Adapter) Query(ctx context.Context, q authority.Query) (authority.Result, error) {
	payload, _, err := a.client.GetJSON(ctx, a.Describe(q))
	if err != nil {
		return authority.Result{}, err
	}
	return authority.Result{Documents: authority.DocumentsFromJSON(Name, authority.ShapeFlat, payload)}, nil
}
