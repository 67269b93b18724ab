package resolver_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"sppin/internal/authority"
	"sppin/internal/authority/mocks"
	"sppin/internal/resolver"
	"sppin/internal/services"
	"sppin/internal/taxa"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type testDialect struct{}

func (testDialect) Authority() string { return "test" }
func (testDialect) NativeID(doc authority.Document) string { return doc.String("id") }
func (testDialect) Accepted(doc authority.Document) bool {
	accepted, _ := doc.Fields["accepted"].(bool)
	return accepted
}
func (testDialect) CanonicalPointer(doc authority.Document) (string, bool) {
	pointer := doc.String("pointer")
	return pointer, pointer != ""
}
func (testDialect) AuthorityURL(id string) string { return "https://authority.example/" + id }
func (testDialect) Layout() authority.Layout {
	return authority.Layout{
		NameField:   "name",
		RankField:   "rank",
		CommonNames: authority.CommonNameRule{Field: "common", FixedLanguage: "English"},
	}
}

func doc(id, name string, accepted bool, pointer string) authority.Document {
	fields := map[string]any{"id": id, "name": name, "rank": "Species", "accepted": accepted}
	if pointer != "" {
		fields["pointer"] = pointer
	}
	return authority.NewDocument("test", authority.ShapeFlat, fields, nil)
}

func found(docs ...authority.Document) authority.Result {
	return authority.Result{Documents: docs}
}

func newAdapter(t *testing.T, tiers ...authority.Tier) *mocks.MockAdapter {
	t.Helper()
	ctrl := gomock.NewController(t)
	adapter := mocks.NewMockAdapter(ctrl)
	adapter.EXPECT().Authority().Return("test").AnyTimes()
	adapter.EXPECT().Supports(gomock.Any()).DoAndReturn(func(tier authority.Tier) bool {
		return slices.Contains(tiers, tier)
	}).AnyTimes()
	adapter.EXPECT().Describe(gomock.Any()).DoAndReturn(func(q authority.Query) string {
		return q.Tier.String() + ":" + q.Term
	}).AnyTimes()
	return adapter
}

func allTiers() []authority.Tier {
	return []authority.Tier{authority.TierExact, authority.TierFuzzy, authority.TierByID}
}

func newResolver(adapter authority.Adapter, maxHops int) *resolver.Resolver {
	return resolver.New(adapter, testDialect{}, resolver.Options{
		MaxRedirectHops:  maxHops,
		Stamper:          taxa.NewStamper(func() time.Time { return fixedNow }),
		NewCorrelationID: func() string { return "corr-1" },
	})
}

func exact(term string) authority.Query { return authority.Query{Tier: authority.TierExact, Term: term} }
func fuzzy(term string) authority.Query { return authority.Query{Tier: authority.TierFuzzy, Term: term} }
func byID(id string) authority.Query { return authority.Query{Tier: authority.TierByID, Term: id} }

func trailLabels(env taxa.Envelope) []string {
	labels := make([]string, 0, len(env.QueryTrail))
	for _, step := range env.QueryTrail {
		labels = append(labels, step.Label)
	}
	return labels
}

func nativeIDs(env taxa.Envelope) []string {
	ids := make([]string, 0, len(env.Data))
	for _, rec := range env.Data {
		ids = append(ids, rec.AuthorityNativeID)
	}
	return ids
}

func TestResolveExactAcceptedMatch(t *testing.T) {
	adapter := newAdapter(t, allTiers()...)
	puma := doc("552479", "Puma concolor", true, "")
	puma.Fields["common"] = "cougar"
	adapter.EXPECT().Query(gomock.Any(), exact("Puma concolor")).Return(found(puma), nil)

	env := newResolver(adapter, 0).Resolve(context.Background(), taxa.NameKey("Puma concolor"), taxa.Provenance{NameSource: "test list"})

	assert.Equal(t, taxa.StatusSuccess, env.Status)
	assert.Equal(t, resolver.MessageExactMatch, env.StatusMessage)
	assert.Equal(t, []taxa.QueryStep{{Label: resolver.LabelExactMatch, Query: "exact:Puma concolor"}}, env.QueryTrail)
	require.NotNil(t, env.Summary)
	want := taxa.Summary{
		ScientificName: "Puma concolor",
		Rank:           "Species",
		AuthorityURL:   "https://authority.example/552479",
		MatchMethod:    resolver.MessageExactMatch,
		CommonName:     "cougar",
	}
	if diff := cmp.Diff(want, *env.Summary); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "corr-1", env.CorrelationID)
	assert.Equal(t, fixedNow, env.DateProcessed)
	assert.False(t, env.FromCache)
	assert.Equal(t, "test list", env.Parameters["Name Source"])
	assert.Equal(t, "Puma concolor", env.Parameters["Scientific Name"])
}

func TestResolveFollowsOneRedirect(t *testing.T) {
	adapter := newAdapter(t, allTiers()...)
	gomock.InOrder(
		adapter.EXPECT().Query(gomock.Any(), exact("Felis concolor")).Return(found(doc("183803", "Felis concolor", false, "552479")), nil),
		adapter.EXPECT().Query(gomock.Any(), byID("552479")).Return(found(doc("552479", "Puma concolor", true, "")), nil),
	)

	env := newResolver(adapter, 0).Resolve(context.Background(), taxa.NameKey("Felis concolor"), taxa.Provenance{})

	assert.Equal(t, taxa.StatusSuccess, env.Status)
	assert.Equal(t, resolver.MessageFollowedAccepted, env.StatusMessage)
	assert.Equal(t, []string{"183803", "552479"}, nativeIDs(env))
	assert.Equal(t, []string{resolver.LabelExactMatch, resolver.LabelRedirectSearch}, trailLabels(env))
	require.NotNil(t, env.Summary)
	assert.Equal(t, "Puma concolor", env.Summary.ScientificName)
	assert.Equal(t, resolver.MessageFollowedAccepted, env.Summary.MatchMethod)
}

func TestResolveCycleTerminates(t *testing.T) {
	adapter := newAdapter(t, allTiers()...)
	adapter.EXPECT().Query(gomock.Any(), exact("Genus alpha")).Return(found(doc("A", "Genus alpha", false, "B")), nil)
	adapter.EXPECT().Query(gomock.Any(), byID("B")).Return(found(doc("B", "Genus beta", false, "A")), nil).Times(1)

	env := newResolver(adapter, 0).Resolve(context.Background(), taxa.NameKey("Genus alpha"), taxa.Provenance{})

	assert.Equal(t, []string{"A", "B"}, nativeIDs(env))
	assert.Equal(t, []string{resolver.LabelExactMatch, resolver.LabelRedirectSearch}, trailLabels(env))
	assert.Equal(t, taxa.StatusSuccess, env.Status)
	assert.Nil(t, env.Summary)
}

func TestResolveSelfReferenceStopsAfterOneHop(t *testing.T) {
	adapter := newAdapter(t, allTiers()...)
	gomock.InOrder(
		adapter.EXPECT().Query(gomock.Any(), byID("100")).Return(found(doc("100", "Old name", false, "101")), nil),
		adapter.EXPECT().Query(gomock.Any(), byID("101")).Return(found(doc("101", "New name", false, "101")), nil),
	)

	env := newResolver(adapter, 0).Resolve(context.Background(), taxa.TaxonIDKey("100"), taxa.Provenance{})

	assert.Equal(t, []string{"100", "101"}, nativeIDs(env))
	assert.Equal(t, []string{resolver.LabelExactMatch, resolver.LabelRedirectSearch}, trailLabels(env))
	assert.Equal(t, resolver.MessageFollowedAccepted, env.StatusMessage)
}

func TestResolveMultipleMatches(t *testing.T) {
	adapter := newAdapter(t, allTiers()...)
	adapter.EXPECT().Query(gomock.Any(), exact("Acer")).Return(found(
		doc("1", "Acer", false, "9"),
		doc("2", "Acer", true, ""),
		doc("3", "Acer", true, ""),
	), nil)

	env := newResolver(adapter, 0).Resolve(context.Background(), taxa.NameKey("Acer"), taxa.Provenance{})

	assert.Equal(t, taxa.StatusSuccess, env.Status)
	assert.Equal(t, resolver.MessageMultipleMatches, env.StatusMessage)
	assert.Equal(t, []string{"1", "2", "3"}, nativeIDs(env))
	assert.Equal(t, []string{resolver.LabelMultiMatch}, trailLabels(env))
	require.NotNil(t, env.Summary)
	assert.Equal(t, "https://authority.example/2", env.Summary.AuthorityURL)
	assert.Equal(t, resolver.MessageMultipleMatches, env.Summary.MatchMethod)
}

func TestResolveFuzzyMatchFail(t *testing.T) {
	adapter := newAdapter(t, allTiers()...)
	adapter.EXPECT().Query(gomock.Any(), exact("Nonexistus")).Return(found(), nil)
	adapter.EXPECT().Query(gomock.Any(), fuzzy("Nonexistus")).Return(found(), nil)

	env := newResolver(adapter, 0).Resolve(context.Background(), taxa.NameKey("Nonexistus"), taxa.Provenance{})

	assert.Equal(t, taxa.StatusFailure, env.Status)
	assert.Equal(t, resolver.MessageFuzzyMatchFail, env.StatusMessage)
	assert.Equal(t, []string{resolver.LabelExactMatchFail, resolver.LabelFuzzyMatchFail}, trailLabels(env))
	assert.Empty(t, env.Data)
	assert.Nil(t, env.Summary)
}

func TestResolveFuzzyTakesFirstAndFollows(t *testing.T) {
	adapter := newAdapter(t, allTiers()...)
	adapter.EXPECT().Query(gomock.Any(), exact("Puma concolour")).Return(found(), nil)
	adapter.EXPECT().Query(gomock.Any(), fuzzy("Puma concolour")).Return(found(
		doc("7", "Puma concolor", false, "8"),
		doc("99", "Puma unrelated", true, ""),
	), nil)
	adapter.EXPECT().Query(gomock.Any(), byID("8")).Return(found(doc("8", "Puma concolor", true, "")), nil)

	env := newResolver(adapter, 0).Resolve(context.Background(), taxa.NameKey("Puma concolour"), taxa.Provenance{})

	assert.Equal(t, taxa.StatusSuccess, env.Status)
	assert.Equal(t, resolver.MessageFollowedAccepted, env.StatusMessage)
	assert.Equal(t, []string{"7", "8"}, nativeIDs(env))
	assert.Equal(t, []string{resolver.LabelExactMatchFail, resolver.LabelFuzzyMatch, resolver.LabelRedirectSearch}, trailLabels(env))
}

func TestResolveFuzzyAccepted(t *testing.T) {
	adapter := newAdapter(t, allTiers()...)
	adapter.EXPECT().Query(gomock.Any(), exact("Puma concolour")).Return(found(), nil)
	adapter.EXPECT().Query(gomock.Any(), fuzzy("Puma concolour")).Return(found(doc("8", "Puma concolor", true, "")), nil)

	env := newResolver(adapter, 0).Resolve(context.Background(), taxa.NameKey("Puma concolour"), taxa.Provenance{})

	assert.Equal(t, resolver.MessageFuzzyMatch, env.StatusMessage)
	require.NotNil(t, env.Summary)
	assert.Equal(t, resolver.MessageFuzzyMatch, env.Summary.MatchMethod)
}

func TestResolveHardFailOnExact(t *testing.T) {
	adapter := newAdapter(t, allTiers()...)
	adapter.EXPECT().Query(gomock.Any(), exact("Puma concolor")).
		Return(authority.Result{}, services.Wrap(services.ErrTransport, "test", "query", "", errors.New("connection refused")))

	env := newResolver(adapter, 0).Resolve(context.Background(), taxa.NameKey("Puma concolor"), taxa.Provenance{})

	assert.Equal(t, taxa.StatusError, env.Status)
	assert.Equal(t, resolver.MessageHardFail, env.StatusMessage)
	assert.Equal(t, []taxa.QueryStep{{Label: resolver.LabelHardFail, Query: "exact:Puma concolor"}}, env.QueryTrail)
	assert.Empty(t, env.Data)
}

func TestResolveHardFailOnFuzzy(t *testing.T) {
	adapter := newAdapter(t, allTiers()...)
	adapter.EXPECT().Query(gomock.Any(), exact("Puma")).Return(found(), nil)
	adapter.EXPECT().Query(gomock.Any(), fuzzy("Puma")).Return(authority.Result{}, services.Wrap(services.ErrDecode, "test", "query", "", nil))

	env := newResolver(adapter, 0).Resolve(context.Background(), taxa.NameKey("Puma"), taxa.Provenance{})

	assert.Equal(t, taxa.StatusError, env.Status)
	assert.Equal(t, resolver.MessageHardFail, env.StatusMessage)
	assert.Equal(t, []string{resolver.LabelExactMatchFail, resolver.LabelHardFail}, trailLabels(env))
}

func TestResolveRedirectFailureIsNotFatal(t *testing.T) {
	adapter := newAdapter(t, allTiers()...)
	adapter.EXPECT().Query(gomock.Any(), exact("Felis concolor")).Return(found(doc("183803", "Felis concolor", false, "552479")), nil)
	adapter.EXPECT().Query(gomock.Any(), byID("552479")).Return(authority.Result{}, errors.New("timeout"))

	env := newResolver(adapter, 0).Resolve(context.Background(), taxa.NameKey("Felis concolor"), taxa.Provenance{})

	assert.Equal(t, taxa.StatusSuccess, env.Status)
	assert.Equal(t, resolver.MessageExactMatch, env.StatusMessage)
	assert.Equal(t, []string{"183803"}, nativeIDs(env))
	assert.Equal(t, []string{resolver.LabelExactMatch, resolver.LabelRedirectFail}, trailLabels(env))
	assert.Nil(t, env.Summary)
}

func TestResolveRedirectTargetMissing(t *testing.T) {
	adapter := newAdapter(t, allTiers()...)
	adapter.EXPECT().Query(gomock.Any(), exact("Felis concolor")).Return(found(doc("183803", "Felis concolor", false, "552479")), nil)
	adapter.EXPECT().Query(gomock.Any(), byID("552479")).Return(found(), nil)

	env := newResolver(adapter, 0).Resolve(context.Background(), taxa.NameKey("Felis concolor"), taxa.Provenance{})

	assert.Equal(t, taxa.StatusSuccess, env.Status)
	assert.Equal(t, []string{resolver.LabelExactMatch, resolver.LabelRedirectFail}, trailLabels(env))
}

func TestResolveNumericSkipsFuzzy(t *testing.T) {
	adapter := newAdapter(t, allTiers()...)
	adapter.EXPECT().Query(gomock.Any(), byID("424242")).Return(found(), nil)

	env := newResolver(adapter, 0).Resolve(context.Background(), taxa.NameKey("424242"), taxa.Provenance{})

	assert.Equal(t, taxa.StatusFailure, env.Status)
	assert.Equal(t, taxa.DefaultStatusMessage, env.StatusMessage)
	assert.Equal(t, []string{resolver.LabelExactMatchFail}, trailLabels(env))
}

func TestResolveNumericWithoutIDTierUsesExact(t *testing.T) {
	adapter := newAdapter(t, authority.TierExact)
	adapter.EXPECT().Query(gomock.Any(), exact("424242")).Return(found(doc("424242", "Puma concolor", true, "")), nil)

	env := newResolver(adapter, 0).Resolve(context.Background(), taxa.TaxonIDKey("424242"), taxa.Provenance{})

	assert.Equal(t, resolver.MessageExactMatch, env.StatusMessage)
	assert.Equal(t, "exact:424242", env.QueryTrail[0].Query)
}

func TestResolveWithoutFuzzyTier(t *testing.T) {
	adapter := newAdapter(t, authority.TierExact)
	adapter.EXPECT().Query(gomock.Any(), exact("Puma")).Return(found(), nil)

	env := newResolver(adapter, 0).Resolve(context.Background(), taxa.NameKey("Puma"), taxa.Provenance{})

	assert.Equal(t, taxa.StatusFailure, env.Status)
	assert.Equal(t, resolver.MessageNotMatched, env.StatusMessage)
	assert.Equal(t, []string{resolver.LabelExactMatchFail}, trailLabels(env))
}

func TestResolveCredentialStates(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  taxa.Status
		wantMessage string
	}{
		{
			name:        "missing token",
			err:         &authority.CredentialError{Authority: "test", Missing: true},
			wantStatus:  taxa.StatusError,
			wantMessage: resolver.MessageTokenMissing,
		},
		{
			name:        "rejected token",
			err:         &authority.CredentialError{Authority: "test", Message: "Token not valid!"},
			wantStatus:  taxa.StatusFailure,
			wantMessage: "Token not valid!",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			adapter := newAdapter(t, authority.TierExact, authority.TierByID)
			adapter.EXPECT().Query(gomock.Any(), exact("Puma concolor")).Return(authority.Result{}, tc.err)

			env := newResolver(adapter, 0).Resolve(context.Background(), taxa.NameKey("Puma concolor"), taxa.Provenance{})

			assert.Equal(t, tc.wantStatus, env.Status)
			assert.Equal(t, tc.wantMessage, env.StatusMessage)
			assert.Equal(t, []string{resolver.LabelCredentialFail}, trailLabels(env))
		})
	}
}

func TestResolveRedirectCeiling(t *testing.T) {
	adapter := newAdapter(t, allTiers()...)
	adapter.EXPECT().Query(gomock.Any(), exact("Chain")).Return(found(doc("1", "Chain", false, "2")), nil)
	adapter.EXPECT().Query(gomock.Any(), byID("2")).Return(found(doc("2", "Chain", false, "3")), nil)
	adapter.EXPECT().Query(gomock.Any(), byID("3")).Return(found(doc("3", "Chain", false, "4")), nil)

	env := newResolver(adapter, 2).Resolve(context.Background(), taxa.NameKey("Chain"), taxa.Provenance{})

	assert.Equal(t, []string{"1", "2", "3"}, nativeIDs(env))
	assert.Equal(t, []string{resolver.LabelExactMatch, resolver.LabelRedirectSearch, resolver.LabelRedirectSearch}, trailLabels(env))
}

func TestSummarizeSkipsNonAccepted(t *testing.T) {
	env := taxa.Envelope{
		StatusMessage: "Exact Match",
		Data: []taxa.Record{
			{AuthorityNativeID: "1", ScientificName: "Old"},
			{AuthorityNativeID: "2", ScientificName: "New", AcceptanceFlag: true, CommonNames: []taxa.CommonName{
				{Name: "nuevo", Language: "Spanish"},
				{Name: "new one", Language: "eng"},
			}},
		},
	}
	summary := resolver.Summarize(env, testDialect{})
	require.NotNil(t, summary)
	assert.Equal(t, "New", summary.ScientificName)
	assert.Equal(t, "new one", summary.CommonName)

	assert.Nil(t, resolver.Summarize(taxa.Envelope{}, testDialect{}))
}
