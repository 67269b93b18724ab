package natureserve

import (
	"maps"
	"slices"

	"sppin/internal/authority"
	"sppin/internal/taxa"
)

const explorerURL = "https://explorer.natureserve.org/Taxon/"

const formalTaxonomy = "classification.taxonomy.formalTaxonomy."

// Dialect reads national species summaries. The name search only returns
// species-level elements, each the accepted national name.
type Dialect struct{}

var (
	_ authority.Dialect  = Dialect{}
	_ authority.Enricher = Dialect{}
)

func (Dialect) Authority() string { return Name }

func (Dialect) NativeID(doc authority.Document) string { return doc.String("@uid") }

func (Dialect) Accepted(authority.Document) bool { return true }

func (Dialect) CanonicalPointer(authority.Document) (string, bool) { return "", false }

func (Dialect) AuthorityURL(uid string) string { return explorerURL + uid }

var layout = authority.Layout{
	NameField: "nationalScientificName",
	Renames: map[string]string{
		"natureServeExplorerURI": authority.FieldResolvableIdentifier,
	},
	Taxonomy: authority.TaxonomyRule{RankFields: []authority.RankField{
		{Rank: "kingdom", Path: formalTaxonomy + "kingdom"},
		{Rank: "phylum", Path: formalTaxonomy + "phylum"},
		{Rank: "class", Path: formalTaxonomy + "class"},
		{Rank: "order", Path: formalTaxonomy + "order"},
		{Rank: "family", Path: formalTaxonomy + "family"},
		{Rank: "genus", Path: formalTaxonomy + "genus"},
		{Rank: "species", Path: "nationalScientificName"},
	}},
	CommonNames:       authority.CommonNameRule{Field: "nationalCommonName", FixedLanguage: "English"},
	ResolvableFromURL: true,
	KeepAttributes:    true,
}

func (Dialect) Layout() authority.Layout {
	l := layout
	l.Renames = maps.Clone(layout.Renames)
	l.Taxonomy.RankFields = slices.Clone(layout.Taxonomy.RankFields)
	return l
}

// Enrich sets the species rank and carries the national rounded status.
func (Dialect) Enrich(doc authority.Document, b *taxa.RecordBuilder) {
	b.Rank("species")
	if status := doc.String("conservationStatus.natureServeStatus.globalStatus.roundedRank.code"); status != "" {
		b.Attribute("global_status_code", status)
	}
}
