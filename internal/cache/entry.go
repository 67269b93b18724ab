package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"sppin/internal/taxa"
)

// Entry is one persisted envelope, flattened for indexing.
type Entry struct {
	ID            int64
	Authority     string
	SearchKey     taxa.SearchKey
	Status        taxa.Status
	StatusMessage string
	CorrelationID string
	DateProcessed time.Time
	InsertedAt    time.Time
	Body          []byte
}

// NewEntry flattens env for storage.
func NewEntry(env taxa.Envelope, insertedAt time.Time) (Entry, error) {
	env.FromCache = false
	body, err := json.Marshal(env)
	if err != nil {
		return Entry{}, fmt.Errorf("encode envelope: %w", err)
	}
	return Entry{
		Authority:     env.Authority,
		SearchKey:     env.SearchKey,
		Status:        env.Status,
		StatusMessage: env.StatusMessage,
		CorrelationID: env.CorrelationID,
		DateProcessed: env.DateProcessed.UTC(),
		InsertedAt:    insertedAt.UTC(),
		Body:          body,
	}, nil
}

// Envelope rebuilds the stored envelope, marked as served from cache.
func (e Entry) Envelope() (taxa.Envelope, error) {
	var env taxa.Envelope
	if err := json.Unmarshal(e.Body, &env); err != nil {
		return taxa.Envelope{}, fmt.Errorf("decode cached envelope %d: %w", e.ID, err)
	}
	env.FromCache = true
	return env, nil
}

// Flagged annotates a key with whether any cache entry exists for it.
type Flagged struct {
	Key     taxa.SearchKey `json:"search_key" yaml:"search_key"`
	InCache bool           `json:"in_cache" yaml:"in_cache"`
}
