package cache_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"sppin/internal/cache"
	"sppin/internal/taxa"
	"sppin/internal/testsupport"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type storeFactory struct {
	name string
	open func(t *testing.T) cache.Store
}

func storeFactories() []storeFactory {
	return []storeFactory{
		{name: "memory", open: func(*testing.T) cache.Store { return cache.NewMemoryStore() }},
		{name: "sqlite", open: func(t *testing.T) cache.Store {
			return testsupport.MustOpenStore(t, testsupport.NewConfig(t))
		}},
	}
}

func newManager(store cache.Store, clock *testsupport.Clock, days int) *cache.Manager {
	return cache.NewManager(store,
		cache.WithStamper(taxa.NewStamper(clock.Now)),
		cache.WithFreshnessDays(days),
	)
}

func envelope(clock *testsupport.Clock, authority string, key taxa.SearchKey, message string) taxa.Envelope {
	env := taxa.NewStamper(clock.Now).NewEnvelope(authority, key, taxa.Provenance{})
	env.Status = taxa.StatusSuccess
	env.StatusMessage = message
	return env
}

func TestFreshnessWindow(t *testing.T) {
	for _, days := range []int{1, 7, 30, 365} {
		t.Run(fmt.Sprintf("%d days", days), func(t *testing.T) {
			clock := testsupport.FixedClock(epoch)
			m := newManager(cache.NewMemoryStore(), clock, days)
			entry := cache.Entry{DateProcessed: clock.Now()}

			clock.AdvanceDays(days - 1)
			assert.True(t, m.IsFresh(entry), "fresh at threshold-1 days")

			clock.AdvanceDays(2)
			assert.False(t, m.IsFresh(entry), "stale at threshold+1 days")
		})
	}
}

func TestPutThenFreshRoundTrip(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			clock := testsupport.FixedClock(epoch)
			m := newManager(f.open(t), clock, 30)
			key := taxa.NameKey("Puma concolor")

			_, ok, err := m.Fresh(ctx, "itis", key)
			require.NoError(t, err)
			assert.False(t, ok)

			env := envelope(clock, "itis", key, "Exact Match")
			env.CorrelationID = "corr-1"
			saved, err := m.Put(ctx, env)
			require.NoError(t, err)
			assert.NotZero(t, saved.ID)
			assert.Equal(t, "corr-1", saved.CorrelationID)

			got, ok, err := m.Fresh(ctx, "itis", key)
			require.NoError(t, err)
			require.True(t, ok)
			assert.True(t, got.FromCache)
			assert.Equal(t, "Exact Match", got.StatusMessage)
			assert.Equal(t, key, got.SearchKey)
			assert.True(t, env.DateProcessed.Equal(got.DateProcessed))

			_, ok, err = m.Fresh(ctx, "worms", key)
			require.NoError(t, err)
			assert.False(t, ok, "entries are namespaced by authority")

			clock.AdvanceDays(31)
			_, ok, err = m.Fresh(ctx, "itis", key)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestPutKeepsEarliestAmongFreshEntries(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			clock := testsupport.FixedClock(epoch)
			store := f.open(t)
			m := newManager(store, clock, 30)
			key := taxa.NameKey("Canis lupus")

			first, err := m.Put(ctx, envelope(clock, "itis", key, "first"))
			require.NoError(t, err)
			clock.Advance(time.Minute)
			second, err := m.Put(ctx, envelope(clock, "itis", key, "second"))
			require.NoError(t, err)

			assert.Equal(t, first.ID, second.ID, "put returns the surviving entry")
			entries, err := store.ByKey(ctx, "itis", key)
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "first", entries[0].StatusMessage)
		})
	}
}

func TestConcurrentPutLeavesOneEntry(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			clock := testsupport.FixedClock(epoch)
			store := f.open(t)
			m := newManager(store, clock, 30)
			key := taxa.NameKey("Ursus arctos")

			const writers = 8
			survivors := make([]cache.Entry, writers)
			var wg sync.WaitGroup
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					entry, err := m.Put(ctx, envelope(clock, "itis", key, fmt.Sprintf("writer %d", i)))
					assert.NoError(t, err)
					survivors[i] = entry
				}(i)
			}
			wg.Wait()

			entries, err := store.ByKey(ctx, "itis", key)
			require.NoError(t, err)
			require.Len(t, entries, 1)
			for _, s := range survivors {
				assert.Equal(t, entries[0].ID, s.ID)
			}
		})
	}
}

func TestConcurrentPutMemoryStoreNoLeaks(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	clock := testsupport.FixedClock(epoch)
	m := newManager(cache.NewMemoryStore(), clock, 30)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Put(ctx, envelope(clock, "worms", taxa.TaxonIDKey("137205"), "Exact Match"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestPutLeavesStaleHistoryAndGetReturnsNewest(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			clock := testsupport.FixedClock(epoch)
			store := f.open(t)
			m := newManager(store, clock, 30)
			key := taxa.NameKey("Lynx rufus")

			_, err := m.Put(ctx, envelope(clock, "itis", key, "old"))
			require.NoError(t, err)
			clock.AdvanceDays(45)
			_, err = m.Put(ctx, envelope(clock, "itis", key, "new"))
			require.NoError(t, err)

			entries, err := store.ByKey(ctx, "itis", key)
			require.NoError(t, err)
			assert.Len(t, entries, 2)

			latest, ok, err := m.Get(ctx, "itis", key)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "new", latest.StatusMessage)
		})
	}
}

func TestFilterProcessable(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			clock := testsupport.FixedClock(epoch)
			m := newManager(f.open(t), clock, 30)

			fresh := taxa.NameKey("Puma concolor")
			stale := taxa.NameKey("Canis lupus")
			missing := taxa.NameKey("Vulpes vulpes")

			_, err := m.Put(ctx, envelope(clock, "itis", stale, "Exact Match"))
			require.NoError(t, err)
			clock.AdvanceDays(40)
			_, err = m.Put(ctx, envelope(clock, "itis", fresh, "Exact Match"))
			require.NoError(t, err)

			keys := []taxa.SearchKey{fresh, stale, missing}
			got, err := m.FilterProcessable(ctx, "itis", keys, 30)
			require.NoError(t, err)
			assert.Equal(t, []taxa.SearchKey{stale, missing}, got)

			got, err = m.FilterProcessable(ctx, "worms", keys, 30)
			require.NoError(t, err)
			assert.Equal(t, keys, got)
		})
	}
}

func TestFilterFlaggedKeepsEveryKey(t *testing.T) {
	ctx := context.Background()
	clock := testsupport.FixedClock(epoch)
	m := newManager(cache.NewMemoryStore(), clock, 30)

	cached := taxa.NameKey("Puma concolor")
	_, err := m.Put(ctx, envelope(clock, "itis", cached, "Exact Match"))
	require.NoError(t, err)
	clock.AdvanceDays(90)

	other := taxa.NameKey("Felis catus")
	got, err := m.FilterFlagged(ctx, "itis", []taxa.SearchKey{other, cached})
	require.NoError(t, err)
	assert.Equal(t, []cache.Flagged{
		{Key: other, InCache: false},
		{Key: cached, InCache: true},
	}, got)
}

func TestPruneRemovesSupersededStaleEntries(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			clock := testsupport.FixedClock(epoch)
			store := f.open(t)
			m := newManager(store, clock, 30)
			superseded := taxa.NameKey("Lynx rufus")
			lonely := taxa.NameKey("Lynx lynx")

			_, err := m.Put(ctx, envelope(clock, "itis", superseded, "old"))
			require.NoError(t, err)
			_, err = m.Put(ctx, envelope(clock, "itis", lonely, "only"))
			require.NoError(t, err)
			clock.AdvanceDays(60)
			_, err = m.Put(ctx, envelope(clock, "itis", superseded, "new"))
			require.NoError(t, err)

			removed, err := m.Prune(ctx, "", 30)
			require.NoError(t, err)
			assert.Equal(t, 1, removed)

			entries, err := m.List(ctx, "")
			require.NoError(t, err)
			require.Len(t, entries, 2)
			assert.Equal(t, "only", entries[0].StatusMessage)
			assert.Equal(t, "new", entries[1].StatusMessage)

			_, err = m.Prune(ctx, "", 0)
			require.Error(t, err)
		})
	}
}

func TestMemoryStoreUpdateRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	key := taxa.NameKey("Puma concolor")

	err := store.Update(ctx, func(tx cache.Tx) error {
		if _, err := tx.Append(ctx, cache.Entry{Authority: "itis", SearchKey: key}); err != nil {
			return err
		}
		return fmt.Errorf("boom")
	})
	require.Error(t, err)

	entries, err := store.ByKey(ctx, "itis", key)
	require.NoError(t, err)
	assert.Empty(t, entries)

	appended, err := store.Append(ctx, cache.Entry{Authority: "itis", SearchKey: key})
	require.NoError(t, err)
	assert.Equal(t, int64(1), appended.ID)
}
