package worms

import (
	"maps"
	"slices"

	"sppin/internal/authority"
)

const taxonDetailsURL = "http://www.marinespecies.org/aphia.php?p=taxdetails&id="

// Dialect reads AphiaRecord documents.
type Dialect struct{}

var _ authority.Dialect = Dialect{}

func (Dialect) Authority() string { return Name }

func (Dialect) NativeID(doc authority.Document) string { return doc.String("AphiaID") }

func (Dialect) Accepted(doc authority.Document) bool { return doc.String("status") == "accepted" }

// CanonicalPointer returns valid_AphiaID when present.
func (Dialect) CanonicalPointer(doc authority.Document) (string, bool) {
	id := doc.String("valid_AphiaID")
	return id, id != ""
}

func (Dialect) AuthorityURL(aphiaID string) string { return taxonDetailsURL + aphiaID }

var layout = authority.Layout{
	NameField: "scientificname",
	RankField: "rank",
	Renames: map[string]string{
		"url":      authority.FieldResolvableIdentifier,
		"citation": authority.FieldCitationString,
		"modified": authority.FieldDateModified,
	},
	Taxonomy: authority.TaxonomyRule{RankFields: []authority.RankField{
		{Rank: "kingdom", Path: "kingdom"},
		{Rank: "phylum", Path: "phylum"},
		{Rank: "class", Path: "class"},
		{Rank: "order", Path: "order"},
		{Rank: "family", Path: "family"},
		{Rank: "genus", Path: "genus"},
		{Rank: "Species", Path: "valid_name"},
	}},
	ResolvableFromURL: true,
	KeepAttributes:    true,
}

// Layout returns a copy of the WoRMS packaging tables.
func (Dialect) Layout() authority.Layout {
	l := layout
	l.Renames = maps.Clone(layout.Renames)
	l.Taxonomy.RankFields = slices.Clone(layout.Taxonomy.RankFields)
	return l
}
