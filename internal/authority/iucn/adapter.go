package iucn

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"sppin/internal/authority"
	"sppin/internal/authority/httpclient"
	"sppin/internal/logging"
	"sppin/internal/services"
)

// Name is the authority name used in logs and cache rows.
const Name = "iucn"

// citationField holds the citation text fetched for each species result.
const citationField = "citation"

// Adapter queries species records.
type Adapter struct {
	client *httpclient.Client
	token  string
	logger *slog.Logger
}

var _ authority.Adapter = (*Adapter)(nil)

// New wraps a transport client. An empty token is reported on every query.
func New(client *httpclient.Client, token string, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Adapter{client: client, token: strings.TrimSpace(token), logger: logger}
}

func (a *Adapter) Authority() string { return Name }

// Supports reports true for the exact and identifier tiers. The Red List has
// no fuzzy name search.
func (a *Adapter) Supports(t authority.Tier) bool {
	return t == authority.TierExact || t == authority.TierByID
}

// Describe returns the request URL without the token.
func (a *Adapter) Describe(q authority.Query) string {
	term := url.PathEscape(strings.TrimSpace(q.Term))
	if q.Tier == authority.TierByID {
		return a.client.URL("/species/id/" + term)
	}
	return a.client.URL("/species/" + term)
}

func (a *Adapter) withToken(rawURL string) string {
	return rawURL + "?token=" + url.QueryEscape(a.token)
}

// Query runs q and fetches the citation for each returned species.
func (a *Adapter) Query(ctx context.Context, q authority.Query) (authority.Result, error) {
	if a.token == "" {
		return authority.Result{}, &authority.CredentialError{Authority: Name, Missing: true}
	}
	if !a.Supports(q.Tier) {
		return authority.Result{}, nil
	}
	payload, _, err := a.client.GetJSON(ctx, a.withToken(a.Describe(q)))
	if err != nil {
		return authority.Result{}, err
	}
	root, ok := payload.(map[string]any)
	if !ok {
		return authority.Result{}, services.Wrap(services.ErrDecode, Name, "query", "unexpected payload", nil)
	}
	if err := credentialMessage(root); err != nil {
		return authority.Result{}, err
	}
	results, _ := root["result"].([]any)
	docs := authority.DocumentsFromJSON(Name, authority.ShapeFlat, results)
	for i, doc := range docs {
		docs[i] = a.attachCitation(ctx, doc)
	}
	return authority.Result{Documents: docs}, nil
}

// credentialMessage reports a token rejection. The API answers those with a
// 200 and a bare {"message": ...} body.
func credentialMessage(root map[string]any) error {
	message, ok := root["message"].(string)
	if !ok || message == "" {
		return nil
	}
	if _, hasResult := root["result"]; hasResult {
		return nil
	}
	if !strings.Contains(strings.ToLower(message), "token") {
		return nil
	}
	return &authority.CredentialError{Authority: Name, Message: message}
}

func (a *Adapter) attachCitation(ctx context.Context, doc authority.Document) authority.Document {
	taxonID := doc.String("taxonid")
	if taxonID == "" {
		return doc
	}
	citationURL := a.client.URL("/species/citation/id/" + url.PathEscape(taxonID))
	payload, _, err := a.client.GetJSON(ctx, a.withToken(citationURL))
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, a.logger), "citation lookup failed", "iucn_citation_"+services.Classify(err),
			logging.String(logging.FieldAuthority, Name),
			logging.String("taxon_id", taxonID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "record kept without citation"),
			logging.String(logging.FieldErrorHint, "retry the lookup later"),
		)
		return doc
	}
	citation := citationText(payload)
	if citation == "" {
		return doc
	}
	fields := make(map[string]any, len(doc.Fields)+1)
	for k, v := range doc.Fields {
		fields[k] = v
	}
	fields[citationField] = citation
	return authority.NewDocument(doc.Authority, doc.Shape, fields, doc.Raw)
}

func citationText(payload any) string {
	root, ok := payload.(map[string]any)
	if !ok {
		return ""
	}
	results, _ := root["result"].([]any)
	if len(results) == 0 {
		return ""
	}
	first, ok := results[0].(map[string]any)
	if !ok {
		return ""
	}
	return authority.Scalar(first["citation"])
}
