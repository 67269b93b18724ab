package itis

import (
	"context"
	"regexp"
	"strings"

	"sppin/internal/authority"
	"sppin/internal/authority/httpclient"
	"sppin/internal/services"
)

// Name is the authority name used in logs and cache rows.
const Name = "itis"

const (
	searchStub = "/?wt=json&rows=10&q="
	fuzzyLevel = "~0.8"
)

var whitespace = regexp.MustCompile(` +`)

// Adapter issues Solr queries against ITIS.
type Adapter struct {
	client *httpclient.Client
}

var _ authority.Adapter = (*Adapter)(nil)

// New wraps a transport client.
func New(client *httpclient.Client) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) Authority() string { return Name }

// Supports reports true for every tier.
func (a *Adapter) Supports(authority.Tier) bool { return true }

// Describe returns the Solr URL for q.
func (a *Adapter) Describe(q authority.Query) string {
	return a.client.URL(searchStub + queryClause(q))
}

func queryClause(q authority.Query) string {
	term := strings.TrimSpace(q.Term)
	if q.Tier == authority.TierByID {
		return "tsn:" + term
	}
	// Derived keys are cleaned and never carry these markers; keys parsed
	// verbatim with taxa.ParseSearchKey can.
	field := "nameWOInd"
	if strings.Contains(term, "var.") || strings.Contains(term, "ssp.") || strings.Contains(term, " x ") {
		field = "nameWInd"
	}
	clause := field + ":" + whitespace.ReplaceAllString(term, `\%20`)
	if q.Tier == authority.TierFuzzy {
		clause += fuzzyLevel
	}
	return clause
}

// Query runs q and returns the Solr docs in response order.
func (a *Adapter) Query(ctx context.Context, q authority.Query) (authority.Result, error) {
	payload, _, err := a.client.GetJSON(ctx, a.Describe(q))
	if err != nil {
		return authority.Result{}, err
	}
	root, ok := payload.(map[string]any)
	if !ok {
		return authority.Result{}, services.Wrap(services.ErrDecode, Name, "query", "unexpected payload", nil)
	}
	response, ok := root["response"].(map[string]any)
	if !ok {
		return authority.Result{}, services.Wrap(services.ErrDecode, Name, "query", "missing response object", nil)
	}
	docs, _ := response["docs"].([]any)
	return authority.Result{Documents: authority.DocumentsFromJSON(Name, authority.ShapeDelimited, docs)}, nil
}
