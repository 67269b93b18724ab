package natureserve

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"sppin/internal/authority"
	"sppin/internal/authority/httpclient"
	"sppin/internal/services"
)

// Name is the authority name used in logs and cache rows.
const Name = "natureserve"

const nameSearchPath = "/nationalSpecies/summary/nameSearch?nationCode=US&name="

// Adapter runs national species name searches.
type Adapter struct {
	client *httpclient.Client
}

var _ authority.Adapter = (*Adapter)(nil)

// New wraps a transport client.
func New(client *httpclient.Client) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) Authority() string { return Name }

// Supports reports true only for exact name search.
func (a *Adapter) Supports(t authority.Tier) bool { return t == authority.TierExact }

func (a *Adapter) Describe(q authority.Query) string {
	return a.client.URL(nameSearchPath + url.QueryEscape(strings.TrimSpace(q.Term)))
}

// Query searches by name. A list of species is narrowed to exact name
// matches; a single species is returned as is.
func (a *Adapter) Query(ctx context.Context, q authority.Query) (authority.Result, error) {
	if !a.Supports(q.Tier) {
		return authority.Result{}, nil
	}
	resp, err := a.client.Get(ctx, a.Describe(q))
	if err != nil {
		return authority.Result{}, err
	}
	if resp.Empty() {
		return authority.Result{}, nil
	}
	root, tree, err := decodeXML(bytes.NewReader(resp.Body))
	if err != nil {
		return authority.Result{}, services.Wrap(services.ErrDecode, Name, "decode xml", "", err)
	}
	if root != "speciesList" {
		return authority.Result{}, services.Wrap(services.ErrDecode, Name, "decode xml", "unexpected root element "+root, nil)
	}
	term := strings.TrimSpace(q.Term)
	var docs []authority.Document
	switch species := tree["species"].(type) {
	case map[string]any:
		docs = append(docs, nestedDocument(species))
	case []any:
		for _, item := range species {
			fields, ok := item.(map[string]any)
			if !ok || authority.Scalar(fields["nationalScientificName"]) != term {
				continue
			}
			docs = append(docs, nestedDocument(fields))
		}
	}
	return authority.Result{Documents: docs}, nil
}

func nestedDocument(fields map[string]any) authority.Document {
	raw, err := json.Marshal(fields)
	if err != nil {
		raw = nil
	}
	return authority.NewDocument(Name, authority.ShapeNested, fields, raw)
}
