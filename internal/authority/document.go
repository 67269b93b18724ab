package authority

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"strings"
)

// Shape tags the dialect a document was decoded from.
type Shape int

const (
	// ShapeDelimited documents pack multi-valued fields into delimited strings.
	ShapeDelimited Shape = iota
	// ShapeFlat documents are single-level key/value objects.
	ShapeFlat
	// ShapeNested documents are hierarchical trees.
	ShapeNested
)

func (s Shape) String() string {
	switch s {
	case ShapeDelimited:
		return "delimited"
	case ShapeFlat:
		return "flat"
	case ShapeNested:
		return "nested"
	default:
		return "unknown"
	}
}

// Document is one authority-native record. Fields holds the decoded payload
// and Raw the bytes it came from; neither is modified after decoding.
type Document struct {
	Authority string
	Shape     Shape
	Fields    map[string]any
	Raw       []byte
}

// NewDocument copies fields into a new document.
func NewDocument(authority string, shape Shape, fields map[string]any, raw []byte) Document {
	return Document{Authority: authority, Shape: shape, Fields: maps.Clone(fields), Raw: raw}
}

// Lookup resolves a dotted path through nested maps.
func (d Document) Lookup(path string) (any, bool) {
	var current any = d.Fields
	for _, part := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// String returns the scalar at path rendered as text, or "".
func (d Document) String(path string) string {
	v, ok := d.Lookup(path)
	if !ok {
		return ""
	}
	return Scalar(v)
}

// Strings returns the values at path as text. A scalar becomes a one-element
// slice.
func (d Document) Strings(path string) []string {
	v, ok := d.Lookup(path)
	if !ok || v == nil {
		return nil
	}
	switch values := v.(type) {
	case []any:
		out := make([]string, 0, len(values))
		for _, item := range values {
			if s := Scalar(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return append([]string(nil), values...)
	default:
		if s := Scalar(v); s != "" {
			return []string{s}
		}
		return nil
	}
}

// Scalar renders JSON/XML scalar values as text. Whole floats print without a
// fractional part so numeric ids decoded as float64 stay stable.
func Scalar(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		if value == float64(int64(value)) {
			return strconv.FormatInt(int64(value), 10)
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case bool:
		return strconv.FormatBool(value)
	case fmt.Stringer:
		return value.String()
	case map[string]any:
		if text, ok := value["#text"]; ok {
			return Scalar(text)
		}
		return ""
	default:
		return ""
	}
}

// DocumentsFromJSON turns a decoded JSON payload into documents. Objects
// become one document and arrays one document per object element; anything
// else yields none.
func DocumentsFromJSON(authority string, shape Shape, payload any) []Document {
	switch value := payload.(type) {
	case map[string]any:
		return []Document{jsonDocument(authority, shape, value)}
	case []any:
		docs := make([]Document, 0, len(value))
		for _, item := range value {
			if fields, ok := item.(map[string]any); ok {
				docs = append(docs, jsonDocument(authority, shape, fields))
			}
		}
		return docs
	default:
		return nil
	}
}

func jsonDocument(authority string, shape Shape, fields map[string]any) Document {
	raw, err := json.Marshal(fields)
	if err != nil {
		raw = nil
	}
	return NewDocument(authority, shape, fields, raw)
}
