// Package cache persists processing envelopes and decides when a cached
// resolution can be reused.
//
// Entries are append-only rows keyed by authority and search key. Put appends
// and then collapses the fresh entries for the key to the earliest-inserted
// one, inside a single store transaction, so concurrent writers for the same
// key converge on one current entry without a uniqueness constraint. Stale
// entries stay behind as history until Prune removes them.
//
// Two stores are provided: SQLiteStore for on-disk use and MemoryStore for
// tests and one-shot runs.
package cache
