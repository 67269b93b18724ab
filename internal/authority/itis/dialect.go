package itis

import (
	"maps"
	"slices"
	"strings"

	"sppin/internal/authority"
	"sppin/internal/taxa"
)

const reportURL = "https://www.itis.gov/servlet/SingleRpt/SingleRpt?search_topic=TSN&search_value="

// Dialect reads ITIS Solr documents.
type Dialect struct{}

var (
	_ authority.Dialect  = Dialect{}
	_ authority.Enricher = Dialect{}
)

func (Dialect) Authority() string { return Name }

func (Dialect) NativeID(doc authority.Document) string { return doc.String("tsn") }

// Accepted reports usage "valid" or "accepted".
func (Dialect) Accepted(doc authority.Document) bool {
	switch doc.String("usage") {
	case "valid", "accepted":
		return true
	default:
		return false
	}
}

// CanonicalPointer returns the first acceptedTSN.
func (Dialect) CanonicalPointer(doc authority.Document) (string, bool) {
	accepted := doc.Strings("acceptedTSN")
	if len(accepted) == 0 || accepted[0] == "" {
		return "", false
	}
	return accepted[0], true
}

func (Dialect) AuthorityURL(tsn string) string { return reportURL + tsn }

var layout = authority.Layout{
	NameField: "nameWInd",
	RankField: "rank",
	Discard:   []string{"hierarchicalSort", "hierarchyTSN", "hierarchySoFar"},
	Renames: map[string]string{
		"createDate": authority.FieldDateCreated,
		"updateDate": authority.FieldDateModified,
	},
	Delimiter: "$",
	Packed: []authority.PackedField{
		{Field: "geographicDivision", Components: []string{"", "geographic_value", "update_date"}},
		{Field: "jurisdiction", Components: []string{"", "jurisdiction_value", "origin", "update_date"}},
		{Field: "expert", Components: []string{"", "reference_type", "expert_id", "expert_name", "expert_comment", "create_date", "update_date"}},
		{Field: "publication", Components: []string{"", "reference_type", "reference_id", "author", "", "title"}, ExtraPrefix: "other_variable_"},
		{Field: "otherSource", Components: []string{"", "reference_type", "source_id", "source_type", "source_name", "version", "acquisition_date", "source_comment", "create_date", "update_date"}},
		{Field: "comment", Components: []string{"", "comment_id", "commentator", "comment_text", "create_date", "update_date"}},
	},
	Taxonomy:          authority.TaxonomyRule{HierarchyField: "hierarchySoFarWRanks", RankSeparator: ":"},
	CommonNames:       authority.CommonNameRule{Field: "vernacular", NameIndex: 1, LanguageIndex: 2},
	ResolvableFromURL: true,
	KeepAttributes:    true,
}

// Layout returns a copy of the ITIS packaging tables.
func (Dialect) Layout() authority.Layout {
	l := layout
	l.Discard = slices.Clone(layout.Discard)
	l.Renames = maps.Clone(layout.Renames)
	l.Packed = slices.Clone(layout.Packed)
	return l
}

// Enrich adds the display hierarchy ("Animalia", "Bilateria", ...) parsed
// from hierarchySoFar.
func (Dialect) Enrich(doc authority.Document, b *taxa.RecordBuilder) {
	values := doc.Strings("hierarchySoFar")
	if len(values) == 0 {
		return
	}
	_, body, ok := strings.Cut(values[0], ":")
	if !ok {
		return
	}
	body = strings.TrimSuffix(strings.TrimPrefix(body, "$"), "$")
	if body == "" {
		return
	}
	b.Attribute("hierarchy", strings.Split(body, "$"))
}
