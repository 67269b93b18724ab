package taxa

import (
	"fmt"
	"strings"

	"sppin/internal/names"
)

// Qualifier names what a search term is.
type Qualifier string

const (
	QualifierScientificName Qualifier = "Scientific Name"
	QualifierTaxonID        Qualifier = "TSN"
)

var qualifierAliases = map[string]Qualifier{
	"scientific name": QualifierScientificName,
	"scientificname":  QualifierScientificName,
	"name":            QualifierScientificName,
	"tsn":             QualifierTaxonID,
	"taxonid":         QualifierTaxonID,
	"taxon id":        QualifierTaxonID,
	"aphiaid":         QualifierTaxonID,
}

// SearchKey identifies one resolution request and is the cache index.
type SearchKey struct {
	Qualifier Qualifier
	Term      string
}

// NameKey builds a scientific-name key from an already cleaned term.
func NameKey(term string) SearchKey {
	return SearchKey{Qualifier: QualifierScientificName, Term: strings.TrimSpace(term)}
}

// TaxonIDKey builds a native identifier key.
func TaxonIDKey(id string) SearchKey {
	return SearchKey{Qualifier: QualifierTaxonID, Term: strings.TrimSpace(id)}
}

// ParseSearchKey parses "<Qualifier>:<term>" without altering the term.
func ParseSearchKey(value string) (SearchKey, error) {
	prefix, term, ok := strings.Cut(value, ":")
	if !ok {
		return SearchKey{}, fmt.Errorf("search key %q: missing qualifier separator", value)
	}
	qualifier, known := qualifierAliases[strings.ToLower(strings.TrimSpace(prefix))]
	if !known {
		return SearchKey{}, fmt.Errorf("search key %q: unknown qualifier %q", value, strings.TrimSpace(prefix))
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return SearchKey{}, fmt.Errorf("search key %q: empty term", value)
	}
	return SearchKey{Qualifier: qualifier, Term: term}, nil
}

// DeriveSearchKey turns user input into a key. Input with a recognized
// qualifier prefix is parsed; anything else is treated as a raw scientific
// name. Name terms are cleaned, so the key is stable across spellings that
// clean to the same canonical form.
func DeriveSearchKey(input string) (SearchKey, error) {
	key, err := ParseSearchKey(input)
	if err != nil {
		if prefix, _, ok := strings.Cut(input, ":"); ok {
			if _, known := qualifierAliases[strings.ToLower(strings.TrimSpace(prefix))]; known {
				return SearchKey{}, err
			}
		}
		key = NameKey(input)
	}
	if key.Qualifier == QualifierScientificName {
		key.Term = names.Clean(key.Term)
	}
	if key.Term == "" {
		return SearchKey{}, fmt.Errorf("search key %q: nothing left after cleaning", input)
	}
	return key, nil
}

// String renders the key in its canonical "<Qualifier>:<term>" form.
func (k SearchKey) String() string {
	if k.IsZero() {
		return ""
	}
	return string(k.Qualifier) + ":" + k.Term
}

// IsZero reports whether the key is unset.
func (k SearchKey) IsZero() bool {
	return k.Qualifier == "" && k.Term == ""
}

// IsNumeric reports whether the term is a bare native identifier.
func (k SearchKey) IsNumeric() bool {
	return IsNumeric(k.Term)
}

// MarshalText implements encoding.TextMarshaler.
func (k SearchKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *SearchKey) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*k = SearchKey{}
		return nil
	}
	parsed, err := ParseSearchKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// IsNumeric reports whether s is non-empty and made only of ASCII digits.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
