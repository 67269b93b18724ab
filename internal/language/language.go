package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// known lists the languages whose English names authorities spell out in
// full. Codes outside this list still resolve through ISO 639 parsing.
var known = []string{
	"en", "es", "fr", "de", "it", "pt", "ja", "ko", "zh", "ru", "ar", "hi",
	"nl", "pl", "sv", "da", "no", "fi", "nv", "la", "haw", "ik", "oj",
}

// bibliographic holds ISO 639-2/B codes, which differ from the terminology
// codes x/text understands.
var bibliographic = map[string]string{
	"fre": "fr", "ger": "de", "chi": "zh", "dut": "nl", "cze": "cs", "gre": "el",
}

// spelled covers native and accented spellings seen in authority payloads.
var spelled = map[string]string{
	"inglés": "en", "ingles": "en", "español": "es", "espanol": "es", "français": "fr",
}

var byWord = buildWords()

func buildWords() map[string]language.Base {
	words := make(map[string]language.Base, len(known)+len(spelled))
	namer := display.English.Languages()
	for _, code := range known {
		base := language.MustParseBase(code)
		if name := namer.Name(base); name != "" {
			words[strings.ToLower(name)] = base
		}
	}
	for word, code := range spelled {
		words[word] = language.MustParseBase(code)
	}
	return words
}

// Base resolves a label such as "English", "eng" or "en" to its ISO 639 base.
func Base(label string) (language.Base, bool) {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return language.Base{}, false
	}
	if base, ok := byWord[label]; ok {
		return base, true
	}
	if code, ok := bibliographic[label]; ok {
		label = code
	}
	if len(label) < 2 || len(label) > 3 {
		return language.Base{}, false
	}
	base, err := language.ParseBase(label)
	if err != nil || base.String() == "und" {
		return language.Base{}, false
	}
	return base, true
}

// Label returns the English name for a recognized label and the trimmed
// original otherwise. Authorities use labels such as "Unspecified" that should
// survive untouched.
func Label(label string) string {
	if base, ok := Base(label); ok {
		if name := display.English.Languages().Name(base); name != "" {
			return name
		}
	}
	return strings.TrimSpace(label)
}

// Matches reports whether two labels name the same language. Unrecognized
// labels match only themselves, ignoring case.
func Matches(a, b string) bool {
	ba, okA := Base(a)
	bb, okB := Base(b)
	if okA && okB {
		return ba == bb
	}
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}

// IsEnglish reports whether label names English.
func IsEnglish(label string) bool {
	return Matches(label, "en")
}
