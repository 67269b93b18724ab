package taxa

import "time"

// Status is the terminal outcome of one resolution.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusError   Status = "error"
)

// DefaultStatusMessage is the message every envelope starts with.
const DefaultStatusMessage = "Not Matched"

// QueryStep is one entry of the replayable audit trail.
type QueryStep struct {
	Label string `json:"label" yaml:"label"`
	Query string `json:"query" yaml:"query"`
}

// Summary projects the first accepted record.
type Summary struct {
	ScientificName string `json:"scientificname" yaml:"scientificname"`
	Rank           string `json:"rank" yaml:"rank"`
	AuthorityURL   string `json:"authority_url" yaml:"authority_url"`
	MatchMethod    string `json:"match_method" yaml:"match_method"`
	CommonName     string `json:"commonname,omitempty" yaml:"commonname,omitempty"`
}

// Provenance records where a searched name came from.
type Provenance struct {
	NameSource string `json:"name_source,omitempty" yaml:"name_source,omitempty" validate:"omitempty,max=512"`
	SourceDate string `json:"source_date,omitempty" yaml:"source_date,omitempty" validate:"omitempty,max=64"`
}

// Envelope wraps every resolution with its metadata, audit trail, and records.
type Envelope struct {
	Authority     string            `json:"authority" yaml:"authority"`
	SearchKey     SearchKey         `json:"search_key" yaml:"search_key"`
	Status        Status            `json:"status" yaml:"status"`
	StatusMessage string            `json:"status_message" yaml:"status_message"`
	DateProcessed time.Time         `json:"date_processed" yaml:"date_processed"`
	FromCache     bool              `json:"from_cache" yaml:"from_cache"`
	CorrelationID string            `json:"correlation_id,omitempty" yaml:"correlation_id,omitempty"`
	QueryTrail    []QueryStep       `json:"query_trail" yaml:"query_trail"`
	Parameters    map[string]string `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Data          []Record          `json:"data" yaml:"data"`
	Summary       *Summary          `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// Parameters renders the request inputs recorded on every envelope.
func (p Provenance) Parameters(key SearchKey) map[string]string {
	params := map[string]string{string(key.Qualifier): key.Term}
	if p.NameSource != "" {
		params["Name Source"] = p.NameSource
	}
	if p.SourceDate != "" {
		params["Source Date"] = p.SourceDate
	}
	return params
}
