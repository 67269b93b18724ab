package names

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	digitPattern      = regexp.MustCompile(`\p{Nd}+`)
	annotationPattern = regexp.MustCompile(`[(\["].*?[)\]"]`)
	familyPattern     = regexp.MustCompile(`(^|\s)family\s`)
	lowerCaser        = cases.Lower(language.Und)
)

// qualifierMarkers end a usable name. Matching runs against the lowercased
// name with a trailing space appended, so markers that end in a space also
// match at the end of the string.
var qualifierMarkers = []string{
	"(",
	" and ",
	"/",
	" & ",
	" vs ",
	" undescribed ",
	",",
	" formerly ",
	" near ",
	"columbia basin",
	"puget trough",
	" n.sp. ",
	" n. ",
	" sp. ",
	" sp ",
	" pop. ",
	" spp. ",
	" cf. ",
	" ] ",
	" ssp. ",
	" var. ",
	" x ",
}

// trailingQualifiers are bare tokens dropped from the end of a name when no
// epithet follows them.
var trailingQualifiers = map[string]struct{}{
	"sp": {}, "sp.": {}, "spp": {}, "spp.": {},
	"ssp": {}, "ssp.": {}, "subsp": {}, "subsp.": {},
	"var": {}, "var.": {}, "cf": {}, "cf.": {},
	"aff": {}, "aff.": {}, "x": {},
}

// maxCleanPasses bounds the fixed-point loop in Clean. A pass only changes
// already-cleaned text by repairing a layer of mojibake.
const maxCleanPasses = 16

// Clean returns the canonical form of a raw scientific name. Clean(Clean(x))
// equals Clean(x): casing can expose a mojibake marker ("ã©" capitalized is
// "Ã©"), so the pipeline repeats until its output stops changing.
func Clean(raw string) string {
	s := cleanPass(raw)
	for range maxCleanPasses {
		next := cleanPass(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func cleanPass(raw string) string {
	s := FixText(raw)
	s = lowerCaser.String(s)
	s = strings.ReplaceAll(s, "_", " ")
	s = digitPattern.ReplaceAllString(s, "")
	s = annotationPattern.ReplaceAllString(s, "")
	s = collapseSpaces(s)
	s = strings.ReplaceAll(s, "?", "")
	s = removeFamilyPrefix(s)
	s = strings.ReplaceAll(s, "subsp.", "ssp.")
	s = truncateAtQualifier(s)
	s = dropTrailingQualifiers(collapseSpaces(s))
	return capitalize(s)
}

// CleanValue cleans loosely typed input. It reports false for nil and for
// values that cannot carry a name, such as floats (the missing-value marker in
// tabular sources).
func CleanValue(v any) (string, bool) {
	switch value := v.(type) {
	case nil:
		return "", false
	case string:
		return Clean(value), true
	case *string:
		if value == nil {
			return "", false
		}
		return Clean(*value), true
	case []byte:
		return Clean(string(value)), true
	case float32, float64:
		return "", false
	case int:
		return Clean(strconv.Itoa(value)), true
	case int64:
		return Clean(strconv.FormatInt(value, 10)), true
	case fmt.Stringer:
		return Clean(value.String()), true
	default:
		return "", false
	}
}

func truncateAtQualifier(s string) string {
	s += " "
	for {
		cut := -1
		for _, marker := range qualifierMarkers {
			if idx := strings.Index(s, marker); idx >= 0 && (cut < 0 || idx < cut) {
				cut = idx
			}
		}
		if cut < 0 {
			return strings.TrimSpace(s)
		}
		s = s[:cut] + " "
	}
}

func dropTrailingQualifiers(s string) string {
	fields := strings.Fields(s)
	for len(fields) > 0 {
		if _, ok := trailingQualifiers[fields[len(fields)-1]]; !ok {
			break
		}
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, " ")
}

// removeFamilyPrefix repeats until stable because adjacent matches share the
// separating space.
func removeFamilyPrefix(s string) string {
	for {
		next := familyPattern.ReplaceAllString(s, "$1")
		if next == s {
			return s
		}
		s = next
	}
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
