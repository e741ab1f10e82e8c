// Package sqlite provides SQLite-backed persistence for binder records.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/halcyonlabs/inneros/internal/platform/storage/sqlitemigrate"
	"github.com/halcyonlabs/inneros/internal/services/binders/storage"
	"github.com/halcyonlabs/inneros/internal/services/binders/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for binder records.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a binder SQLite store at the provided path.
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

// OpenDB wraps an already-open database, applying binder migrations.
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

// PutBinder upserts one binder record by ID.
func (s *Store) PutBinder(ctx context.Context, binder storage.Binder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	binder.ID = strings.TrimSpace(binder.ID)
	if binder.ID == "" {
		return fmt.Errorf("binder id is required")
	}
	if strings.TrimSpace(binder.Title) == "" {
		return fmt.Errorf("binder title is required")
	}
	if binder.CreatedAt.IsZero() || binder.UpdatedAt.IsZero() {
		return fmt.Errorf("binder timestamps are required")
	}

	documentIDs, err := json.Marshal(binder.DocumentIDs)
	if err != nil {
		return fmt.Errorf("encode binder document ids: %w", err)
	}
	propertyIDs, err := json.Marshal(binder.PropertyIDs)
	if err != nil {
		return fmt.Errorf("encode binder property ids: %w", err)
	}

	var generatedAt int64
	if !binder.GeneratedAt.IsZero() {
		generatedAt = binder.GeneratedAt.UTC().UnixMilli()
	}

	_, err = s.sqlDB.ExecContext(ctx, `
	INSERT INTO binders (
		id, tenant_id, title, prepared_for,
		document_ids_json, property_ids_json,
		status, page_estimate, failure_note, generated_at,
		created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		tenant_id = excluded.tenant_id,
		title = excluded.title,
		prepared_for = excluded.prepared_for,
		document_ids_json = excluded.document_ids_json,
		property_ids_json = excluded.property_ids_json,
		status = excluded.status,
		page_estimate = excluded.page_estimate,
		failure_note = excluded.failure_note,
		generated_at = excluded.generated_at,
		updated_at = excluded.updated_at
	`,
		binder.ID,
		binder.TenantID,
		binder.Title,
		binder.PreparedFor,
		string(documentIDs),
		string(propertyIDs),
		binder.Status,
		binder.PageEstimate,
		binder.FailureNote,
		generatedAt,
		binder.CreatedAt.UTC().UnixMilli(),
		binder.UpdatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put binder: %w", err)
	}
	return nil
}

// GetBinder loads one binder record by ID.
func (s *Store) GetBinder(ctx context.Context, binderID string) (storage.Binder, error) {
	if err := ctx.Err(); err != nil {
		return storage.Binder{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Binder{}, fmt.Errorf("storage is not configured")
	}
	binderID = strings.TrimSpace(binderID)
	if binderID == "" {
		return storage.Binder{}, fmt.Errorf("binder id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, selectBinder+` WHERE id = ?`, binderID)
	binder, err := scanBinder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Binder{}, storage.ErrNotFound
		}
		return storage.Binder{}, fmt.Errorf("get binder: %w", err)
	}
	return binder, nil
}

// ListBinders loads one page of tenant binders ordered by ID.
func (s *Store) ListBinders(ctx context.Context, tenantID string, pageSize int, pageToken string) (storage.BinderPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.BinderPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.BinderPage{}, fmt.Errorf("storage is not configured")
	}
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return storage.BinderPage{}, fmt.Errorf("tenant id is required")
	}
	if pageSize <= 0 {
		return storage.BinderPage{}, fmt.Errorf("page size must be positive")
	}

	rows, err := s.sqlDB.QueryContext(ctx, selectBinder+`
WHERE tenant_id = ? AND id > ?
ORDER BY id ASC
LIMIT ?
`, tenantID, strings.TrimSpace(pageToken), pageSize+1)
	if err != nil {
		return storage.BinderPage{}, fmt.Errorf("list binders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var binders []storage.Binder
	for rows.Next() {
		binder, err := scanBinder(rows)
		if err != nil {
			return storage.BinderPage{}, fmt.Errorf("scan binder: %w", err)
		}
		binders = append(binders, binder)
	}
	if err := rows.Err(); err != nil {
		return storage.BinderPage{}, fmt.Errorf("iterate binders: %w", err)
	}

	page := storage.BinderPage{Binders: binders}
	if len(binders) > pageSize {
		page.Binders = binders[:pageSize]
		page.NextPageToken = page.Binders[pageSize-1].ID
	}
	return page, nil
}

// DeleteBinder removes one binder record by ID.
func (s *Store) DeleteBinder(ctx context.Context, binderID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	binderID = strings.TrimSpace(binderID)
	if binderID == "" {
		return fmt.Errorf("binder id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM binders WHERE id = ?`, binderID)
	if err != nil {
		return fmt.Errorf("delete binder: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete binder rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CountBinders counts tenant binders.
func (s *Store) CountBinders(ctx context.Context, tenantID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return 0, fmt.Errorf("tenant id is required")
	}
	var count int
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM binders WHERE tenant_id = ?`, tenantID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count binders: %w", err)
	}
	return count, nil
}

const selectBinder = `
SELECT id, tenant_id, title, prepared_for,
	document_ids_json, property_ids_json,
	status, page_estimate, failure_note, generated_at,
	created_at, updated_at
FROM binders`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBinder(row rowScanner) (storage.Binder, error) {
	var binder storage.Binder
	var documentIDs, propertyIDs string
	var generatedAt, createdAt, updatedAt int64
	err := row.Scan(
		&binder.ID,
		&binder.TenantID,
		&binder.Title,
		&binder.PreparedFor,
		&documentIDs,
		&propertyIDs,
		&binder.Status,
		&binder.PageEstimate,
		&binder.FailureNote,
		&generatedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return storage.Binder{}, err
	}
	if documentIDs != "" {
		if err := json.Unmarshal([]byte(documentIDs), &binder.DocumentIDs); err != nil {
			return storage.Binder{}, fmt.Errorf("decode binder document ids: %w", err)
		}
	}
	if propertyIDs != "" {
		if err := json.Unmarshal([]byte(propertyIDs), &binder.PropertyIDs); err != nil {
			return storage.Binder{}, fmt.Errorf("decode binder property ids: %w", err)
		}
	}
	if generatedAt != 0 {
		binder.GeneratedAt = time.UnixMilli(generatedAt).UTC()
	}
	binder.CreatedAt = time.UnixMilli(createdAt).UTC()
	binder.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return binder, nil
}
