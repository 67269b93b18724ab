package taxa

import (
	"encoding/json"
	"maps"
)

const rawFallbackKey = "raw_fallback"

// SubRecord is one decomposed element of a delimiter-packed field.
type SubRecord struct {
	fields map[string]string
	raw    string
	parsed bool
}

// Parsed wraps named components that matched the expected shape.
func Parsed(fields map[string]string) SubRecord {
	return SubRecord{fields: maps.Clone(fields), parsed: true}
}

// RawFallback keeps text that did not match the expected shape.
func RawFallback(text string) SubRecord {
	return SubRecord{raw: text}
}

// IsParsed reports whether the sub-record carries named components.
func (s SubRecord) IsParsed() bool { return s.parsed }

// Raw returns the original text of a fallback sub-record.
func (s SubRecord) Raw() string { return s.raw }

// Get returns a named component, or "" for fallbacks and missing names.
func (s SubRecord) Get(name string) string { return s.fields[name] }

// Fields returns a copy of the named components.
func (s SubRecord) Fields() map[string]string { return maps.Clone(s.fields) }

func (s SubRecord) asMap() map[string]string {
	if s.parsed {
		if s.fields == nil {
			return map[string]string{}
		}
		return s.fields
	}
	return map[string]string{rawFallbackKey: s.raw}
}

// MarshalJSON renders parsed sub-records as their components and fallbacks as
// {"raw_fallback": text}.
func (s SubRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.asMap())
}

// UnmarshalJSON restores either case.
func (s *SubRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]string
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if raw, ok := fields[rawFallbackKey]; ok && len(fields) == 1 {
		*s = RawFallback(raw)
		return nil
	}
	*s = Parsed(fields)
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (s SubRecord) MarshalYAML() (any, error) {
	return s.asMap(), nil
}
