package taxa

import (
	"maps"
	"slices"
)

// RankName is one level of a biological classification.
type RankName struct {
	Rank string `json:"rank" yaml:"rank"`
	Name string `json:"name" yaml:"name"`
}

// CommonName is a vernacular name with the authority's language label.
type CommonName struct {
	Name     string `json:"name" yaml:"name"`
	Language string `json:"language" yaml:"language"`
}

// Record is the authority-independent shape of one authority document.
type Record struct {
	AuthorityNativeID    string                 `json:"authority_native_id" yaml:"authority_native_id"`
	ScientificName       string                 `json:"scientificname,omitempty" yaml:"scientificname,omitempty"`
	Rank                 string                 `json:"rank,omitempty" yaml:"rank,omitempty"`
	BiologicalTaxonomy   []RankName             `json:"biological_taxonomy" yaml:"biological_taxonomy"`
	CommonNames          []CommonName           `json:"common_names" yaml:"common_names"`
	ResolvableIdentifier string                 `json:"resolvable_identifier,omitempty" yaml:"resolvable_identifier,omitempty"`
	CitationString       string                 `json:"citation_string,omitempty" yaml:"citation_string,omitempty"`
	DateCreated          string                 `json:"date_created,omitempty" yaml:"date_created,omitempty"`
	DateModified         string                 `json:"date_modified,omitempty" yaml:"date_modified,omitempty"`
	AcceptanceFlag       bool                   `json:"acceptance_flag" yaml:"acceptance_flag"`
	RawFallback          string                 `json:"raw_fallback,omitempty" yaml:"raw_fallback,omitempty"`
	SubRecords           map[string][]SubRecord `json:"sub_records,omitempty" yaml:"sub_records,omitempty"`
	Attributes           map[string]any         `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// FirstCommonName returns the first common name whose language label
// satisfies match.
func (r Record) FirstCommonName(match func(language string) bool) (string, bool) {
	for _, cn := range r.CommonNames {
		if match(cn.Language) {
			return cn.Name, true
		}
	}
	return "", false
}

// RecordBuilder assembles a Record without exposing it until Build.
type RecordBuilder struct {
	rec Record
}

// NewRecordBuilder returns an empty builder.
func NewRecordBuilder() *RecordBuilder {
	return &RecordBuilder{}
}

func (b *RecordBuilder) NativeID(id string) *RecordBuilder {
	b.rec.AuthorityNativeID = id
	return b
}

func (b *RecordBuilder) ScientificName(name string) *RecordBuilder {
	b.rec.ScientificName = name
	return b
}

func (b *RecordBuilder) Rank(rank string) *RecordBuilder {
	b.rec.Rank = rank
	return b
}

func (b *RecordBuilder) Accepted(accepted bool) *RecordBuilder {
	b.rec.AcceptanceFlag = accepted
	return b
}

func (b *RecordBuilder) AddTaxon(rank, name string) *RecordBuilder {
	b.rec.BiologicalTaxonomy = append(b.rec.BiologicalTaxonomy, RankName{Rank: rank, Name: name})
	return b
}

func (b *RecordBuilder) AddCommonName(name, language string) *RecordBuilder {
	b.rec.CommonNames = append(b.rec.CommonNames, CommonName{Name: name, Language: language})
	return b
}

func (b *RecordBuilder) ResolvableIdentifier(id string) *RecordBuilder {
	b.rec.ResolvableIdentifier = id
	return b
}

func (b *RecordBuilder) Citation(citation string) *RecordBuilder {
	b.rec.CitationString = citation
	return b
}

func (b *RecordBuilder) DateCreated(date string) *RecordBuilder {
	b.rec.DateCreated = date
	return b
}

func (b *RecordBuilder) DateModified(date string) *RecordBuilder {
	b.rec.DateModified = date
	return b
}

// RawFallback marks the record as degraded and keeps the text that could not
// be interpreted.
func (b *RecordBuilder) RawFallback(text string) *RecordBuilder {
	b.rec.RawFallback = text
	return b
}

func (b *RecordBuilder) AddSubRecord(field string, sub SubRecord) *RecordBuilder {
	if b.rec.SubRecords == nil {
		b.rec.SubRecords = make(map[string][]SubRecord)
	}
	b.rec.SubRecords[field] = append(b.rec.SubRecords[field], sub)
	return b
}

// Attribute stores a pass-through authority field under its native name.
func (b *RecordBuilder) Attribute(key string, value any) *RecordBuilder {
	if b.rec.Attributes == nil {
		b.rec.Attributes = make(map[string]any)
	}
	b.rec.Attributes[key] = value
	return b
}

// Current returns a copy of the record built so far. Enrichers use it to read
// fields set by earlier packaging steps.
func (b *RecordBuilder) Current() Record {
	return b.Build()
}

// Build returns an independent copy of the record.
func (b *RecordBuilder) Build() Record {
	rec := b.rec
	rec.BiologicalTaxonomy = slices.Clone(b.rec.BiologicalTaxonomy)
	if rec.BiologicalTaxonomy == nil {
		rec.BiologicalTaxonomy = []RankName{}
	}
	rec.CommonNames = slices.Clone(b.rec.CommonNames)
	if rec.CommonNames == nil {
		rec.CommonNames = []CommonName{}
	}
	if b.rec.SubRecords != nil {
		rec.SubRecords = make(map[string][]SubRecord, len(b.rec.SubRecords))
		for field, subs := range b.rec.SubRecords {
			rec.SubRecords[field] = slices.Clone(subs)
		}
	}
	rec.Attributes = maps.Clone(b.rec.Attributes)
	return rec
}
