package authority

import "sppin/internal/taxa"

// Dialect interprets the documents of one authority.
type Dialect interface {
	Authority() string
	// NativeID returns the document's identifier in the authority's id space.
	NativeID(Document) string
	// Accepted reports whether the document is the authority's currently
	// accepted name.
	Accepted(Document) bool
	// CanonicalPointer returns the native id of the accepted record a
	// non-accepted document points at.
	CanonicalPointer(Document) (string, bool)
	// AuthorityURL builds the human-facing page for a native id.
	AuthorityURL(nativeID string) string
	// Layout returns the packaging tables for the authority's documents.
	Layout() Layout
}

// Enricher is implemented by dialects that derive extra fields after the
// table-driven packaging ran.
type Enricher interface {
	Enrich(doc Document, b *taxa.RecordBuilder)
}

// Layout is the data half of packaging: field names and tables, no behavior.
type Layout struct {
	// NameField and RankField feed the record's scientific name and rank.
	NameField string
	RankField string
	// Discard lists bookkeeping fields dropped from the record.
	Discard []string
	// Renames maps native field names to common record fields. Targets are the
	// Field* constants below.
	Renames map[string]string
	// Delimiter splits packed fields.
	Delimiter string
	// Packed lists the delimiter-packed multi-valued fields.
	Packed []PackedField
	// Taxonomy extracts the classification.
	Taxonomy TaxonomyRule
	// CommonNames extracts vernacular names.
	CommonNames CommonNameRule
	// ResolvableFromURL uses AuthorityURL as the resolvable identifier when no
	// renamed field supplies one.
	ResolvableFromURL bool
	// KeepAttributes copies the remaining native fields into the record.
	KeepAttributes bool
}

// Common record fields that Renames may target.
const (
	FieldDateCreated          = "date_created"
	FieldDateModified         = "date_modified"
	FieldResolvableIdentifier = "resolvable_identifier"
	FieldCitationString       = "citation_string"
)

// PackedField names the positional components of one packed field. An empty
// component name skips that position. Components past the named ones become
// ExtraPrefix1, ExtraPrefix2, ... when ExtraPrefix is set.
type PackedField struct {
	Field       string
	Components  []string
	ExtraPrefix string
}

// TaxonomyRule extracts an ordered classification. Exactly one of
// HierarchyField or RankFields is used.
type TaxonomyRule struct {
	// HierarchyField holds "<id>:<delim>Rank<sep>Name<delim>...<delim>"
	// strings; the first element is parsed.
	HierarchyField string
	RankSeparator  string
	// RankFields lists rank names and the document paths holding them.
	RankFields []RankField
}

// RankField maps a rank label to a document path.
type RankField struct {
	Rank string
	Path string
}

// CommonNameRule extracts vernacular names. Packed entries are split with the
// layout delimiter and read at NameIndex/LanguageIndex; scalar entries use
// FixedLanguage.
type CommonNameRule struct {
	Field         string
	NameIndex     int
	LanguageIndex int
	FixedLanguage string
}
