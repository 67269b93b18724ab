package testsupport

import (
	"testing"

	"sppin/internal/cache"
	"sppin/internal/config"
)

// MustOpenStore opens a cache.SQLiteStore for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *cache.SQLiteStore {
	t.Helper()

	store, err := cache.OpenSQLite(cfg.Paths.CacheDB)
	if err != nil {
		t.Fatalf("cache.OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
