package cache

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"sppin/internal/logging"
	"sppin/internal/services"
	"sppin/internal/taxa"
)

// DefaultFreshnessDays is used when a manager is built without a threshold.
const DefaultFreshnessDays = 30

// Manager applies the freshness and dedup policy on top of a Store.
type Manager struct {
	store         Store
	stamper       taxa.Stamper
	freshnessDays int
	logger        *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithStamper injects the clock used for freshness checks.
func WithStamper(stamper taxa.Stamper) Option {
	return func(m *Manager) { m.stamper = stamper }
}

// WithFreshnessDays sets the freshness threshold.
func WithFreshnessDays(days int) Option {
	return func(m *Manager) {
		if days > 0 {
			m.freshnessDays = days
		}
	}
}

// WithLogger sets the manager logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager wraps store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:         store,
		stamper:       taxa.NewStamper(nil),
		freshnessDays: DefaultFreshnessDays,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.NewComponentLogger(m.logger, "cache")
	return m
}

// FreshnessDays returns the configured threshold.
func (m *Manager) FreshnessDays() int { return m.freshnessDays }

// IsFresh reports whether entry is younger than the configured threshold.
func (m *Manager) IsFresh(entry Entry) bool {
	return m.IsFreshWithin(entry, m.freshnessDays)
}

// IsFreshWithin reports whether entry is younger than thresholdDays.
func (m *Manager) IsFreshWithin(entry Entry, thresholdDays int) bool {
	return m.stamper.IsFresh(entry.DateProcessed, thresholdDays)
}

// Get returns the newest entry for key.
func (m *Manager) Get(ctx context.Context, authority string, key taxa.SearchKey) (Entry, bool, error) {
	entries, err := m.store.ByKey(ctx, authority, key)
	if err != nil {
		return Entry{}, false, err
	}
	if len(entries) == 0 {
		return Entry{}, false, nil
	}
	return newest(entries), true, nil
}

// Fresh returns the cached envelope for key when its newest entry is fresh.
func (m *Manager) Fresh(ctx context.Context, authority string, key taxa.SearchKey) (taxa.Envelope, bool, error) {
	entry, ok, err := m.Get(ctx, authority, key)
	if err != nil || !ok || !m.IsFresh(entry) {
		return taxa.Envelope{}, false, err
	}
	env, err := entry.Envelope()
	if err != nil {
		return taxa.Envelope{}, false, services.Wrap(services.ErrDecode, "cache", "decode entry", "", err)
	}
	return env, true, nil
}

// Put appends env and collapses the fresh entries for its key to the
// earliest-inserted one. The surviving entry is returned.
func (m *Manager) Put(ctx context.Context, env taxa.Envelope) (Entry, error) {
	entry, err := NewEntry(env, m.stamper.Now())
	if err != nil {
		return Entry{}, services.Wrap(services.ErrStore, "cache", "encode entry", "", err)
	}

	var survivor Entry
	err = m.store.Update(ctx, func(tx Tx) error {
		appended, err := tx.Append(ctx, entry)
		if err != nil {
			return err
		}
		entries, err := tx.ByKey(ctx, entry.Authority, entry.SearchKey)
		if err != nil {
			return err
		}
		survivor = appended
		var duplicates []int64
		kept := false
		for _, e := range entries {
			if !m.IsFresh(e) {
				continue
			}
			if !kept {
				survivor = e
				kept = true
				continue
			}
			duplicates = append(duplicates, e.ID)
		}
		if len(duplicates) == 0 {
			return nil
		}
		m.logger.Debug("collapsed duplicate cache entries",
			logging.String(logging.FieldAuthority, entry.Authority),
			logging.String(logging.FieldSearchKey, entry.SearchKey.String()),
			logging.Int64("kept_id", survivor.ID),
			logging.Int("removed", len(duplicates)),
		)
		return tx.Delete(ctx, duplicates...)
	})
	if err != nil {
		return Entry{}, err
	}
	return survivor, nil
}

// FilterProcessable returns the keys that have no fresh entry, in input order.
func (m *Manager) FilterProcessable(ctx context.Context, authority string, keys []taxa.SearchKey, thresholdDays int) ([]taxa.SearchKey, error) {
	freshKeys, err := m.keyIndex(ctx, authority, func(e Entry) bool {
		return m.IsFreshWithin(e, thresholdDays)
	})
	if err != nil {
		return nil, err
	}
	out := make([]taxa.SearchKey, 0, len(keys))
	for _, key := range keys {
		if _, ok := freshKeys[key]; !ok {
			out = append(out, key)
		}
	}
	return out, nil
}

// FilterFlagged annotates every key with whether any entry exists for it.
func (m *Manager) FilterFlagged(ctx context.Context, authority string, keys []taxa.SearchKey) ([]Flagged, error) {
	cached, err := m.keyIndex(ctx, authority, func(Entry) bool { return true })
	if err != nil {
		return nil, err
	}
	out := make([]Flagged, 0, len(keys))
	for _, key := range keys {
		_, ok := cached[key]
		out = append(out, Flagged{Key: key, InCache: ok})
	}
	return out, nil
}

func (m *Manager) keyIndex(ctx context.Context, authority string, include func(Entry) bool) (map[taxa.SearchKey]struct{}, error) {
	index := make(map[taxa.SearchKey]struct{})
	err := m.store.Scan(ctx, authority, func(e Entry) error {
		if include(e) {
			index[e.SearchKey] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return index, nil
}

// Prune deletes entries older than olderThanDays that have been superseded
// by a newer entry for the same key. The newest entry of every key is kept.
func (m *Manager) Prune(ctx context.Context, authority string, olderThanDays int) (int, error) {
	if olderThanDays <= 0 {
		return 0, services.Wrap(services.ErrValidation, "cache", "prune", "older-than must be positive", nil)
	}
	type groupKey struct {
		authority string
		key       taxa.SearchKey
	}
	groups := make(map[groupKey][]Entry)
	err := m.store.Scan(ctx, authority, func(e Entry) error {
		k := groupKey{authority: e.Authority, key: e.SearchKey}
		groups[k] = append(groups[k], e)
		return nil
	})
	if err != nil {
		return 0, err
	}

	var stale []int64
	for _, entries := range groups {
		latest := newest(entries)
		for _, e := range entries {
			if e.ID == latest.ID || m.IsFreshWithin(e, olderThanDays) {
				continue
			}
			stale = append(stale, e.ID)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i] < stale[j] })
	if err := m.store.Update(ctx, func(tx Tx) error {
		return tx.Delete(ctx, stale...)
	}); err != nil {
		return 0, err
	}
	m.logger.Info("pruned cache entries",
		logging.String(logging.FieldAuthority, authority),
		logging.Int("removed", len(stale)),
		logging.Int("older_than_days", olderThanDays),
	)
	return len(stale), nil
}

// List returns every entry for authority in insertion order. An empty
// authority lists all entries.
func (m *Manager) List(ctx context.Context, authority string) ([]Entry, error) {
	var entries []Entry
	err := m.store.Scan(ctx, authority, func(e Entry) error {
		entries = append(entries, e)
		return nil
	})
	return entries, err
}

// Age returns how long ago entry was processed.
func (m *Manager) Age(entry Entry) time.Duration {
	return m.stamper.Now().Sub(entry.DateProcessed)
}

func newest(entries []Entry) Entry {
	best := entries[0]
	for _, e := range entries[1:] {
		if e.DateProcessed.After(best.DateProcessed) ||
			(e.DateProcessed.Equal(best.DateProcessed) && e.ID > best.ID) {
			best = e
		}
	}
	return best
}
