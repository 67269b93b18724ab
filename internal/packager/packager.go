package packager

import (
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"sppin/internal/authority"
	"sppin/internal/logging"
	"sppin/internal/taxa"
)

// Packager builds taxa.Record values from authority documents.
type Packager struct {
	logger *slog.Logger
}

// New returns a packager. A nil logger discards output.
func New(logger *slog.Logger) *Packager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Packager{logger: logger}
}

// Package converts doc using the dialect's layout.
func (p *Packager) Package(d authority.Dialect, doc authority.Document) taxa.Record {
	layout := d.Layout()
	nativeID := d.NativeID(doc)
	b := taxa.NewRecordBuilder().
		NativeID(nativeID).
		Accepted(d.Accepted(doc))

	if layout.NameField != "" {
		b.ScientificName(doc.String(layout.NameField))
	}
	if layout.RankField != "" {
		b.Rank(doc.String(layout.RankField))
	}

	applyRenames(b, doc, layout.Renames)
	p.applyPacked(b, doc, layout)
	p.applyTaxonomy(b, doc, layout)
	applyCommonNames(b, doc, layout)

	if layout.ResolvableFromURL && b.Current().ResolvableIdentifier == "" && nativeID != "" {
		b.ResolvableIdentifier(d.AuthorityURL(nativeID))
	}
	if layout.KeepAttributes {
		keepAttributes(b, doc, consumedFields(layout))
	}
	if enricher, ok := d.(authority.Enricher); ok {
		enricher.Enrich(doc, b)
	}
	return b.Build()
}

func applyRenames(b *taxa.RecordBuilder, doc authority.Document, renames map[string]string) {
	for _, native := range sortedKeys(renames) {
		value := doc.String(native)
		if value == "" {
			continue
		}
		switch renames[native] {
		case authority.FieldDateCreated:
			b.DateCreated(value)
		case authority.FieldDateModified:
			b.DateModified(value)
		case authority.FieldResolvableIdentifier:
			b.ResolvableIdentifier(value)
		case authority.FieldCitationString:
			b.Citation(value)
		default:
			b.Attribute(renames[native], value)
		}
	}
}

func (p *Packager) applyPacked(b *taxa.RecordBuilder, doc authority.Document, layout authority.Layout) {
	for _, packed := range layout.Packed {
		for _, value := range doc.Strings(packed.Field) {
			sub, ok := SplitPacked(value, layout.Delimiter, packed)
			if !ok {
				p.logger.Debug("packed field kept as raw fallback",
					logging.String(logging.FieldAuthority, doc.Authority),
					logging.String("field", packed.Field),
				)
			}
			b.AddSubRecord(packed.Field, sub)
		}
	}
}

// SplitPacked decomposes one packed value. Values with fewer positions than
// the named components come back as a raw fallback.
func SplitPacked(value, delimiter string, packed authority.PackedField) (taxa.SubRecord, bool) {
	if delimiter == "" {
		return taxa.RawFallback(value), false
	}
	parts := strings.Split(value, delimiter)
	if len(parts) < requiredParts(packed.Components) {
		return taxa.RawFallback(value), false
	}
	fields := make(map[string]string, len(packed.Components))
	for i, name := range packed.Components {
		if name == "" {
			continue
		}
		fields[name] = parts[i]
	}
	if packed.ExtraPrefix != "" && len(parts) > len(packed.Components) {
		for i, extra := range parts[len(packed.Components):] {
			if extra != "" {
				fields[packed.ExtraPrefix+strconv.Itoa(i)] = extra
			}
		}
	}
	return taxa.Parsed(fields), true
}

func requiredParts(components []string) int {
	for i := len(components) - 1; i >= 0; i-- {
		if components[i] != "" {
			return i + 1
		}
	}
	return 0
}

func (p *Packager) applyTaxonomy(b *taxa.RecordBuilder, doc authority.Document, layout authority.Layout) {
	rule := layout.Taxonomy
	switch {
	case rule.HierarchyField != "":
		values := doc.Strings(rule.HierarchyField)
		if len(values) == 0 {
			return
		}
		ranks, ok := ParseHierarchy(values[0], layout.Delimiter, rule.RankSeparator)
		if !ok {
			p.logger.Debug("rank hierarchy kept as raw fallback",
				logging.String(logging.FieldAuthority, doc.Authority),
				logging.String("field", rule.HierarchyField),
			)
			b.RawFallback(values[0])
			return
		}
		for _, rank := range ranks {
			b.AddTaxon(rank.Rank, rank.Name)
		}
	default:
		for _, field := range rule.RankFields {
			if name := doc.String(field.Path); name != "" {
				b.AddTaxon(field.Rank, name)
			}
		}
	}
}

// ParseHierarchy reads "<id>:<d>Rank<sep>Name<d>Rank<sep>Name<d>" into an
// ordered rank list.
func ParseHierarchy(value, delimiter, separator string) ([]taxa.RankName, bool) {
	if delimiter == "" || separator == "" {
		return nil, false
	}
	start := strings.Index(value, separator+delimiter)
	if start < 0 {
		return nil, false
	}
	body := strings.TrimSuffix(value[start+len(separator)+len(delimiter):], delimiter)
	if body == "" {
		return nil, false
	}
	var ranks []taxa.RankName
	for _, level := range strings.Split(body, delimiter) {
		rank, name, ok := strings.Cut(level, separator)
		if !ok || strings.TrimSpace(rank) == "" || strings.TrimSpace(name) == "" {
			return nil, false
		}
		ranks = append(ranks, taxa.RankName{Rank: rank, Name: name})
	}
	return ranks, true
}

func applyCommonNames(b *taxa.RecordBuilder, doc authority.Document, layout authority.Layout) {
	rule := layout.CommonNames
	if rule.Field == "" {
		return
	}
	for _, value := range doc.Strings(rule.Field) {
		if rule.FixedLanguage != "" {
			b.AddCommonName(value, rule.FixedLanguage)
			continue
		}
		parts := strings.Split(value, layout.Delimiter)
		if rule.NameIndex >= len(parts) || parts[rule.NameIndex] == "" {
			continue
		}
		lang := ""
		if rule.LanguageIndex < len(parts) {
			lang = parts[rule.LanguageIndex]
		}
		b.AddCommonName(parts[rule.NameIndex], lang)
	}
}

func consumedFields(layout authority.Layout) map[string]struct{} {
	consumed := make(map[string]struct{})
	add := func(field string) {
		if field != "" {
			consumed[topLevel(field)] = struct{}{}
		}
	}
	add(layout.NameField)
	add(layout.RankField)
	add(layout.Taxonomy.HierarchyField)
	add(layout.CommonNames.Field)
	for _, field := range layout.Discard {
		add(field)
	}
	for native := range layout.Renames {
		add(native)
	}
	for _, packed := range layout.Packed {
		add(packed.Field)
	}
	return consumed
}

func keepAttributes(b *taxa.RecordBuilder, doc authority.Document, consumed map[string]struct{}) {
	for _, key := range sortedKeys(doc.Fields) {
		if _, skip := consumed[key]; skip {
			continue
		}
		b.Attribute(key, doc.Fields[key])
	}
}

func topLevel(path string) string {
	head, _, _ := strings.Cut(path, ".")
	return head
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
