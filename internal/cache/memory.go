package cache

import (
	"context"
	"slices"
	"sync"

	"sppin/internal/taxa"
)

// MemoryStore keeps entries in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
	nextID  int64
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (s *MemoryStore) ByKey(ctx context.Context, authority string, key taxa.SearchKey) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryTx{s}.ByKey(ctx, authority, key)
}

func (s *MemoryStore) Append(ctx context.Context, entry Entry) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryTx{s}.Append(ctx, entry)
}

func (s *MemoryStore) Delete(ctx context.Context, ids ...int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryTx{s}.Delete(ctx, ids...)
}

func (s *MemoryStore) Scan(ctx context.Context, authority string, fn func(Entry) error) error {
	s.mu.Lock()
	snapshot := slices.Clone(s.entries)
	s.mu.Unlock()
	for _, entry := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if authority != "" && entry.Authority != authority {
			continue
		}
		if err := fn(entry); err != nil {
			return err
		}
	}
	return nil
}

// Update holds the store lock for the duration of fn.
func (s *MemoryStore) Update(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	before := slices.Clone(s.entries)
	nextID := s.nextID
	if err := fn(memoryTx{s}); err != nil {
		s.entries = before
		s.nextID = nextID
		return err
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// memoryTx operates on the store without locking; callers hold s.mu.
type memoryTx struct {
	s *MemoryStore
}

func (t memoryTx) ByKey(_ context.Context, authority string, key taxa.SearchKey) ([]Entry, error) {
	var out []Entry
	for _, entry := range t.s.entries {
		if entry.Authority == authority && entry.SearchKey == key {
			out = append(out, cloneEntry(entry))
		}
	}
	return out, nil
}

func (t memoryTx) Append(_ context.Context, entry Entry) (Entry, error) {
	entry = cloneEntry(entry)
	entry.ID = t.s.nextID
	t.s.nextID++
	t.s.entries = append(t.s.entries, entry)
	return cloneEntry(entry), nil
}

func (t memoryTx) Delete(_ context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	t.s.entries = slices.DeleteFunc(t.s.entries, func(e Entry) bool {
		return slices.Contains(ids, e.ID)
	})
	return nil
}

func cloneEntry(e Entry) Entry {
	e.Body = slices.Clone(e.Body)
	return e
}
