package batch_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sppin/internal/batch"
	"sppin/internal/taxa"
)

func TestNameQueueCleansAndDeduplicates(t *testing.T) {
	items, rejected := batch.NameQueue([]string{
		"Canis lupus ssp. baileyi (extinct)",
		"  puma   concolor ",
		"Canis lupus",
		"   ",
	}, "survey 2024")

	want := []batch.Item{
		{Source: "survey 2024", SearchKey: taxa.NameKey("Canis lupus"), SearchTerm: "Canis lupus", Qualifier: "Scientific Name"},
		{Source: "survey 2024", SearchKey: taxa.NameKey("Puma concolor"), SearchTerm: "Puma concolor", Qualifier: "Scientific Name"},
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, rejected, 2)
	assert.Contains(t, rejected[0].Reason, "duplicate")
	assert.Equal(t, "   ", rejected[1].Input)
}

func TestTaxonIDQueueRejectsNonNumeric(t *testing.T) {
	items, rejected := batch.TaxonIDQueue([]string{"180543", "abc", " 552479 ", "180543"}, "")

	require.Len(t, items, 2)
	assert.Equal(t, taxa.TaxonIDKey("180543"), items[0].SearchKey)
	assert.Equal(t, "552479", items[1].SearchTerm)
	assert.Equal(t, taxa.Provenance{}, items[0].Provenance())
	require.Len(t, rejected, 2)
	assert.Equal(t, "abc", rejected[0].Input)
}

func TestItemSourceLengthIsValidated(t *testing.T) {
	items, rejected := batch.NameQueue([]string{"Puma concolor"}, strings.Repeat("x", 600))
	assert.Empty(t, items)
	require.Len(t, rejected, 1)
}

func TestReadLinesSkipsBlanksAndComments(t *testing.T) {
	lines, err := batch.ReadLines(strings.NewReader("# header\nPuma concolor\n\n  Canis lupus  \n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Puma concolor", "Canis lupus"}, lines)
}
