package cache

import (
	"context"

	"sppin/internal/taxa"
)

// Tx is the set of operations available inside an atomic update.
type Tx interface {
	// ByKey returns the entries for key in insertion order.
	ByKey(ctx context.Context, authority string, key taxa.SearchKey) ([]Entry, error)
	// Append stores entry and returns it with its assigned ID.
	Append(ctx context.Context, entry Entry) (Entry, error)
	// Delete removes entries by ID.
	Delete(ctx context.Context, ids ...int64) error
}

// Store is an opaque record store.
type Store interface {
	Tx
	// Scan visits every entry for authority in insertion order. An empty
	// authority visits all entries.
	Scan(ctx context.Context, authority string, fn func(Entry) error) error
	// Update runs fn atomically with respect to other updates.
	Update(ctx context.Context, fn func(Tx) error) error
	Close() error
}
