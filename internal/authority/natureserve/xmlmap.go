package natureserve

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

const textKey = "#text"

// decodeXML converts an XML document into a nested map keyed by element
// name. Attributes are stored under "@name", repeated elements become
// []any, and elements with only text collapse to a string.
func decodeXML(r io.Reader) (string, map[string]any, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", nil, errors.New("empty xml document")
			}
			return "", nil, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			value, err := decodeElement(dec, start)
			if err != nil {
				return "", nil, err
			}
			node, ok := value.(map[string]any)
			if !ok {
				node = map[string]any{textKey: value}
			}
			return start.Name.Local, node, nil
		}
	}
}

func decodeElement(dec *xml.Decoder, start xml.StartElement) (any, error) {
	node := make(map[string]any)
	for _, attr := range start.Attr {
		node["@"+attr.Name.Local] = attr.Value
	}
	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := decodeElement(dec, t)
			if err != nil {
				return nil, err
			}
			addChild(node, t.Name.Local, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			content := strings.TrimSpace(text.String())
			if len(node) == 0 {
				return content, nil
			}
			if content != "" {
				node[textKey] = content
			}
			return node, nil
		}
	}
}

func addChild(node map[string]any, name string, child any) {
	existing, ok := node[name]
	if !ok {
		node[name] = child
		return
	}
	if list, isList := existing.([]any); isList {
		node[name] = append(list, child)
		return
	}
	node[name] = []any{existing, child}
}
