package names

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// mojibakeMarkers are sequences produced when UTF-8 bytes are decoded as
// Windows-1252 or Latin-1.
var mojibakeMarkers = []string{"Ã", "Â", "â€", "Å", "Ä"}

// FixText repairs text that was UTF-8 encoded and then decoded with a
// single-byte code page, drops invalid byte sequences, and returns the NFC
// form.
func FixText(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	for range 2 {
		if !looksMisencoded(s) {
			break
		}
		repaired, ok := reencode(s)
		if !ok || repaired == s {
			break
		}
		s = repaired
	}
	return norm.NFC.String(s)
}

func looksMisencoded(s string) bool {
	for _, marker := range mojibakeMarkers {
		idx := strings.Index(s, marker)
		if idx < 0 {
			continue
		}
		rest := s[idx+len(marker):]
		next, size := utf8.DecodeRuneInString(rest)
		if size == 0 {
			continue
		}
		// continuation bytes of the original sequence land in U+0080..U+00FF
		// or in the Windows-1252 punctuation block.
		if (next >= 0x80 && next <= 0xFF) || (next >= 0x2010 && next <= 0x2122) || next == 0x0152 || next == 0x0153 || next == 0x0160 || next == 0x0161 || next == 0x0178 || next == 0x017D || next == 0x017E || next == 0x0192 || next == 0x02C6 || next == 0x02DC {
			return true
		}
	}
	return false
}

func reencode(s string) (string, bool) {
	raw, err := charmap.Windows1252.NewEncoder().String(s)
	if err != nil {
		return "", false
	}
	if !utf8.ValidString(raw) {
		return "", false
	}
	return raw, true
}
