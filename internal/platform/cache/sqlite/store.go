// Package sqlite provides SQLite-backed persistence for cache entries.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/halcyonlabs/inneros/internal/platform/cache"
	"github.com/halcyonlabs/inneros/internal/platform/cache/sqlite/migrations"
	sqlitemigrate "github.com/halcyonlabs/inneros/internal/platform/storage/sqlitemigrate"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for cache entries.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a cache SQLite store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// OpenDB wraps an already-open database, applying cache migrations.
func OpenDB(sqlDB *sql.DB) (*Store, error) {
	if sqlDB == nil {
		return nil, fmt.Errorf("sql db is required")
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// GetEntry loads one cache entry by key regardless of expiry.
func (s *Store) GetEntry(ctx context.Context, key string) (cache.Entry, error) {
	if err := ctx.Err(); err != nil {
		return cache.Entry{}, err
	}
	if s == nil || s.sqlDB == nil {
		return cache.Entry{}, fmt.Errorf("storage is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return cache.Entry{}, fmt.Errorf("cache key is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT key, value, expires_at
FROM cache_entries
WHERE key = ?
`, key)
	var entry cache.Entry
	var expiresAt int64
	if err := row.Scan(&entry.Key, &entry.Value, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cache.Entry{}, cache.ErrNotFound
		}
		return cache.Entry{}, fmt.Errorf("get cache entry: %w", err)
	}
	entry.ExpiresAt = time.UnixMilli(expiresAt).UTC()
	return entry, nil
}

// PutEntry upserts one cache entry.
func (s *Store) PutEntry(ctx context.Context, entry cache.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	entry.Key = strings.TrimSpace(entry.Key)
	if entry.Key == "" {
		return fmt.Errorf("cache key is required")
	}
	if entry.ExpiresAt.IsZero() {
		return fmt.Errorf("cache expiry is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
	INSERT INTO cache_entries (key, value, expires_at)
	VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		expires_at = excluded.expires_at
	`,
		entry.Key,
		entry.Value,
		entry.ExpiresAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put cache entry: %w", err)
	}
	return nil
}

// DeleteEntry removes one cache entry by key.
func (s *Store) DeleteEntry(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("cache key is required")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// PurgeExpired removes all entries that expired at or before now.
func (s *Store) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	result, err := s.sqlDB.ExecContext(ctx, `
DELETE FROM cache_entries WHERE expires_at <= ?
`, now.UTC().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("purge expired cache entries: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge expired rows affected: %w", err)
	}
	return int(affected), nil
}
