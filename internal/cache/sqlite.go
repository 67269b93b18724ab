package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"sppin/internal/services"
	"sppin/internal/taxa"
)

const lockRetryDelay = 25 * time.Millisecond

// SQLiteStore persists entries in a SQLite database. Updates are serialized
// in process by a mutex and across processes by a lock file next to the
// database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
	lock *flock.Flock
	sqlQueries
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens or creates the cache database at path and applies the
// schema and migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, services.Wrap(services.ErrConfiguration, "cache", "open", "database path required", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection keeps transactions and plain reads from contending for
	// the write lock inside this process.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLiteStore{
		db:         db,
		path:       path,
		lock:       flock.New(path + ".lock"),
		sqlQueries: sqlQueries{q: db},
	}
	ctx := context.Background()
	if err := store.bootstrap(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Update runs fn inside a transaction while holding the lock file.
func (s *SQLiteStore) Update(ctx context.Context, fn func(Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return services.Wrap(services.ErrStore, "cache", "lock", s.lock.Path(), err)
	}
	if !locked {
		return services.Wrap(services.ErrStore, "cache", "lock", "lock not acquired: "+s.lock.Path(), nil)
	}
	defer func() { _ = s.lock.Unlock() }()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return services.Wrap(services.ErrStore, "cache", "begin", "", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(sqlQueries{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return services.Wrap(services.ErrStore, "cache", "commit", "", err)
	}
	return nil
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// sqlQueries implements the entry operations on a database or transaction.
type sqlQueries struct {
	q querier
}

const entryColumns = "id, authority, search_key, status, status_message, correlation_id, date_processed, inserted_at, body"

func (s sqlQueries) ByKey(ctx context.Context, authority string, key taxa.SearchKey) ([]Entry, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM cache_entries WHERE authority = ? AND search_key = ? ORDER BY id`,
		authority, key.String(),
	)
	if err != nil {
		return nil, services.Wrap(services.ErrStore, "cache", "by key", "", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrStore, "cache", "scan entry", "", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrStore, "cache", "by key", "", err)
	}
	return entries, nil
}

func (s sqlQueries) Append(ctx context.Context, entry Entry) (Entry, error) {
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO cache_entries (
            authority, search_key, status, status_message, correlation_id,
            date_processed, inserted_at, body
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Authority,
		entry.SearchKey.String(),
		string(entry.Status),
		entry.StatusMessage,
		nullableString(entry.CorrelationID),
		formatTime(entry.DateProcessed),
		formatTime(entry.InsertedAt),
		string(entry.Body),
	)
	if err != nil {
		return Entry{}, services.Wrap(services.ErrStore, "cache", "append", "", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Entry{}, services.Wrap(services.ErrStore, "cache", "last insert id", "", err)
	}
	entry.ID = id
	return entry, nil
}

func (s sqlQueries) Delete(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	if _, err := s.q.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE id IN (`+makePlaceholders(len(ids))+`)`, args...,
	); err != nil {
		return services.Wrap(services.ErrStore, "cache", "delete", "", err)
	}
	return nil
}

func (s sqlQueries) Scan(ctx context.Context, authority string, fn func(Entry) error) error {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM cache_entries WHERE (? = '' OR authority = ?) ORDER BY id`,
		authority, authority,
	)
	if err != nil {
		return services.Wrap(services.ErrStore, "cache", "scan", "", err)
	}
	// Entries are buffered so fn may use the store while iterating over a
	// single connection.
	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			rows.Close()
			return services.Wrap(services.ErrStore, "cache", "scan entry", "", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return services.Wrap(services.ErrStore, "cache", "scan", "", err)
	}
	rows.Close()
	for _, entry := range entries {
		if err := fn(entry); err != nil {
			return err
		}
	}
	return nil
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		id            int64
		authority     string
		searchKey     string
		status        string
		statusMessage string
		correlationID sql.NullString
		processedRaw  string
		insertedRaw   string
		body          string
	)
	if err := scanner.Scan(&id, &authority, &searchKey, &status, &statusMessage, &correlationID, &processedRaw, &insertedRaw, &body); err != nil {
		return Entry{}, err
	}
	key, err := taxa.ParseSearchKey(searchKey)
	if err != nil {
		return Entry{}, fmt.Errorf("entry %d: %w", id, err)
	}
	entry := Entry{
		ID:            id,
		Authority:     authority,
		SearchKey:     key,
		Status:        taxa.Status(status),
		StatusMessage: statusMessage,
		CorrelationID: correlationID.String,
		Body:          []byte(body),
	}
	if processed, err := parseTimeString(processedRaw); err == nil {
		entry.DateProcessed = processed
	}
	if inserted, err := parseTimeString(insertedRaw); err == nil {
		entry.InsertedAt = inserted
	}
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
