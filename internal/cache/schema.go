package cache

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

//go:embed schema.sql migrations/*.sql
var schemaFS embed.FS

// schemaVersion is stored in PRAGMA user_version. Additive changes go in
// migrations/; bump this only when cache_entries changes incompatibly.
const schemaVersion = 1

// ErrSchemaMismatch reports a cache database written by an incompatible build.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// bootstrap creates the base table on a fresh database, checks the version on
// an existing one, then applies pending migrations. It runs as one
// transaction so a failed migration leaves the file untouched.
func (s *SQLiteStore) bootstrap(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var version int
	if err := tx.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	switch version {
	case 0:
		base, err := schemaFS.ReadFile("schema.sql")
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(base)); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	case schemaVersion:
	default:
		return fmt.Errorf("%w: %s has version %d, this build expects %d (delete the file to rebuild the cache)",
			ErrSchemaMismatch, s.path, version, schemaVersion)
	}

	if err := migrate(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func migrate(ctx context.Context, tx *sql.Tx) error {
	names, err := fs.Glob(schemaFS, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	if _, err := tx.ExecContext(ctx,
		"CREATE TABLE IF NOT EXISTS schema_migrations (name TEXT PRIMARY KEY, applied_at TEXT NOT NULL)",
	); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	for _, file := range names {
		name := strings.TrimSuffix(path.Base(file), ".sql")
		var applied int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(1) FROM schema_migrations WHERE name = ?", name,
		).Scan(&applied); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if applied > 0 {
			continue
		}
		body, err := schemaFS.ReadFile(file)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(body)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)", name, formatTime(time.Now()),
		); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}
	return nil
}
