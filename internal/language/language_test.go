package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBase(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"en", "en", true},
		{"EN", "en", true},
		{"eng", "en", true},
		{"English", "en", true},
		{" english ", "en", true},
		{"Inglés", "en", true},
		{"spa", "es", true},
		{"Spanish", "es", true},
		{"fre", "fr", true},
		{"fra", "fr", true},
		{"ger", "de", true},
		{"chi", "zh", true},
		{"Navajo", "nv", true},
		{"Latin", "la", true},
		{"Hawaiian", "haw", true},
		{"Unspecified", "", false},
		{"und", "", false},
		{"", "", false},
		{"x", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			base, ok := Base(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, base.String())
			}
		})
	}
}

func TestLabel(t *testing.T) {
	tests := map[string]string{
		"eng":          "English",
		"es":           "Spanish",
		"fre":          "French",
		"Unspecified":  "Unspecified",
		"  Pidgin-ish ": "Pidgin-ish",
	}
	for input, want := range tests {
		assert.Equal(t, want, Label(input), input)
	}
}

func TestIsEnglish(t *testing.T) {
	for _, label := range []string{"English", "eng", "en", "ENGLISH", "Inglés"} {
		assert.True(t, IsEnglish(label), label)
	}
	for _, label := range []string{"Spanish", "", "Unspecified", "fre"} {
		assert.False(t, IsEnglish(label), label)
	}
}

func TestMatchesUnknownLabels(t *testing.T) {
	assert.True(t, Matches("Unspecified", "unspecified"))
	assert.False(t, Matches("Unspecified", "English"))
	assert.False(t, Matches("", ""))
	assert.True(t, Matches("deu", "German"))
}
