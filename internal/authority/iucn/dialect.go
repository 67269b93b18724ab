package iucn

import (
	"maps"
	"regexp"
	"slices"
	"strings"

	"sppin/internal/authority"
	"sppin/internal/taxa"
)

const (
	speciesURL = "https://www.iucnredlist.org/species/"
	doiPrefix  = "http://dx.doi.org"
	doiSuffix  = ".en"
)

var categories = map[string]string{
	"NE":    "Not Evaluated",
	"DD":    "Data Deficient",
	"LC":    "Least Concern",
	"NT":    "Near Threatened",
	"VU":    "Vulnerable",
	"EN":    "Endangered",
	"CR":    "Critically Endangered",
	"EW":    "Extinct in the Wild",
	"EX":    "Extinct",
	"LR/lc": "Least Concern (in review)",
	"LR/nt": "Near Threatened (in review)",
	"LR/cd": "Not Categorized (in review)",
}

// CategoryName returns the display name for a Red List category code.
func CategoryName(code string) (string, bool) {
	name, ok := categories[code]
	return name, ok
}

var doiPattern = regexp.MustCompile(regexp.QuoteMeta(doiPrefix) + `(.*?)` + regexp.QuoteMeta(doiSuffix))

// Dialect reads Red List species documents. Every returned species is the
// assessed name, so every document is accepted.
type Dialect struct{}

var (
	_ authority.Dialect  = Dialect{}
	_ authority.Enricher = Dialect{}
)

func (Dialect) Authority() string { return Name }

func (Dialect) NativeID(doc authority.Document) string { return doc.String("taxonid") }

func (Dialect) Accepted(authority.Document) bool { return true }

func (Dialect) CanonicalPointer(authority.Document) (string, bool) { return "", false }

func (Dialect) AuthorityURL(taxonID string) string { return speciesURL + taxonID }

var layout = authority.Layout{
	NameField: "scientific_name",
	Renames: map[string]string{
		citationField: authority.FieldCitationString,
	},
	Taxonomy: authority.TaxonomyRule{RankFields: []authority.RankField{
		{Rank: "kingdom", Path: "kingdom"},
		{Rank: "phylum", Path: "phylum"},
		{Rank: "class", Path: "class"},
		{Rank: "order", Path: "order"},
		{Rank: "family", Path: "family"},
		{Rank: "genus", Path: "genus"},
		{Rank: "species", Path: "scientific_name"},
	}},
	CommonNames:    authority.CommonNameRule{Field: "main_common_name", FixedLanguage: "English"},
	KeepAttributes: true,
}

func (Dialect) Layout() authority.Layout {
	l := layout
	l.Renames = maps.Clone(layout.Renames)
	l.Taxonomy.RankFields = slices.Clone(layout.Taxonomy.RankFields)
	return l
}

// Enrich adds the status category and the identifiers embedded in the
// citation.
func (Dialect) Enrich(doc authority.Document, b *taxa.RecordBuilder) {
	taxonID := doc.String("taxonid")
	rank := "species"
	if infra := doc.String("infra_rank"); infra != "" {
		rank = infra
	}
	b.Rank(rank)
	b.Attribute("iucn_taxonid", taxonID)

	code := doc.String("category")
	b.Attribute("iucn_status_code", code)
	if name, ok := CategoryName(code); ok {
		b.Attribute("iucn_status_name", name)
	}
	b.Attribute("record_date", doc.String("assessment_date"))
	b.Attribute("iucn_population_trend", doc.String("population_trend"))

	citation := doc.String(citationField)
	if citation == "" {
		return
	}
	if secondary, ok := SecondaryIdentifier(citation, taxonID); ok {
		b.Attribute("iucn_secondary_identifier", secondary)
		b.ResolvableIdentifier(speciesURL + taxonID + "/" + secondary)
	}
	if doi, ok := DOI(citation); ok {
		b.Attribute("doi", doi)
	}
}

// SecondaryIdentifier extracts the assessment id from "e.T<taxon>A<id>."
func SecondaryIdentifier(citation, taxonID string) (string, bool) {
	if strings.TrimSpace(taxonID) == "" {
		return "", false
	}
	pattern, err := regexp.Compile(`e\.T` + regexp.QuoteMeta(taxonID) + `A(.*?)\.`)
	if err != nil {
		return "", false
	}
	match := pattern.FindStringSubmatch(citation)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// DOI extracts the "http://dx.doi.org....en" link from a citation.
func DOI(citation string) (string, bool) {
	match := doiPattern.FindStringSubmatch(citation)
	if match == nil {
		return "", false
	}
	return doiPrefix + match[1] + doiSuffix, true
}
