package batch

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"

	"sppin/internal/names"
	"sppin/internal/taxa"
)

var validate = validator.New()

// Item is one queued search.
type Item struct {
	Source     string         `json:"source,omitempty" validate:"max=512"`
	SearchKey  taxa.SearchKey `json:"search_key"`
	SearchTerm string         `json:"search_term" validate:"required,max=512"`
	Qualifier  string         `json:"-" validate:"required,oneof='Scientific Name' TSN"`
}

// Provenance returns the provenance recorded with the item's envelope.
func (i Item) Provenance() taxa.Provenance {
	return taxa.Provenance{NameSource: i.Source}
}

// Rejection records an input that could not be queued.
type Rejection struct {
	Input  string
	Reason string
}

// NameQueue builds scientific-name items. Names are cleaned first; inputs
// that clean to nothing or repeat an earlier key are rejected.
func NameQueue(rawNames []string, source string) ([]Item, []Rejection) {
	return assemble(rawNames, source, func(raw string) (taxa.SearchKey, error) {
		cleaned := names.Clean(raw)
		if cleaned == "" {
			return taxa.SearchKey{}, fmt.Errorf("nothing left after cleaning")
		}
		return taxa.NameKey(cleaned), nil
	})
}

// TaxonIDQueue builds native identifier items.
func TaxonIDQueue(ids []string, source string) ([]Item, []Rejection) {
	return assemble(ids, source, func(raw string) (taxa.SearchKey, error) {
		id := strings.TrimSpace(raw)
		if err := validate.Var(id, "required,numeric"); err != nil {
			return taxa.SearchKey{}, fmt.Errorf("not a numeric identifier")
		}
		return taxa.TaxonIDKey(id), nil
	})
}

func assemble(inputs []string, source string, keyFor func(string) (taxa.SearchKey, error)) ([]Item, []Rejection) {
	var (
		items    []Item
		rejected []Rejection
		seen     = make(map[taxa.SearchKey]struct{})
	)
	source = strings.TrimSpace(source)
	for _, raw := range inputs {
		key, err := keyFor(raw)
		if err != nil {
			rejected = append(rejected, Rejection{Input: raw, Reason: err.Error()})
			continue
		}
		if _, dup := seen[key]; dup {
			rejected = append(rejected, Rejection{Input: raw, Reason: "duplicate of " + key.String()})
			continue
		}
		item := Item{Source: source, SearchKey: key, SearchTerm: key.Term, Qualifier: string(key.Qualifier)}
		if err := validate.Struct(item); err != nil {
			rejected = append(rejected, Rejection{Input: raw, Reason: err.Error()})
			continue
		}
		seen[key] = struct{}{}
		items = append(items, item)
	}
	return items, rejected
}

// ReadLines returns the non-blank, non-comment lines of r.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return lines, nil
}

// Keys returns the search keys of items in order.
func Keys(items []Item) []taxa.SearchKey {
	keys := make([]taxa.SearchKey, len(items))
	for i, item := range items {
		keys[i] = item.SearchKey
	}
	return keys
}
