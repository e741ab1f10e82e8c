// Package sqlite provides SQLite-backed persistence for document records.
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
	"github.com/halcyonlabs/inneros/internal/services/documents/storage"
	"github.com/halcyonlabs/inneros/internal/services/documents/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for document records.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a document SQLite store at the provided path.
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

// OpenDB wraps an already-open database, applying document migrations.
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

// PutDocument upserts one document by ID.
func (s *Store) PutDocument(ctx context.Context, document storage.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	document.ID = strings.TrimSpace(document.ID)
	if document.ID == "" {
		return fmt.Errorf("document id is required")
	}
	if strings.TrimSpace(document.Title) == "" {
		return fmt.Errorf("document title is required")
	}
	if document.CreatedAt.IsZero() || document.UpdatedAt.IsZero() {
		return fmt.Errorf("document timestamps are required")
	}

	sectionsJSON, err := json.Marshal(document.Sections)
	if err != nil {
		return fmt.Errorf("encode document sections: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
	INSERT INTO documents (
		id, tenant_id, owner_user_id, title, body, source_url,
		word_count, sections_json, fk_grade, reading_ease,
		created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		tenant_id = excluded.tenant_id,
		owner_user_id = excluded.owner_user_id,
		title = excluded.title,
		body = excluded.body,
		source_url = excluded.source_url,
		word_count = excluded.word_count,
		sections_json = excluded.sections_json,
		fk_grade = excluded.fk_grade,
		reading_ease = excluded.reading_ease,
		updated_at = excluded.updated_at
	`,
		document.ID,
		document.TenantID,
		document.OwnerUserID,
		document.Title,
		document.Body,
		document.SourceURL,
		document.WordCount,
		string(sectionsJSON),
		document.FleschKincaidGrade,
		document.ReadingEase,
		document.CreatedAt.UTC().UnixMilli(),
		document.UpdatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put document: %w", err)
	}
	return nil
}

// GetDocument loads one document by ID.
func (s *Store) GetDocument(ctx context.Context, documentID string) (storage.Document, error) {
	if err := ctx.Err(); err != nil {
		return storage.Document{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Document{}, fmt.Errorf("storage is not configured")
	}
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return storage.Document{}, fmt.Errorf("document id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, tenant_id, owner_user_id, title, body, source_url,
	word_count, sections_json, fk_grade, reading_ease, created_at, updated_at
FROM documents
WHERE id = ?
`, documentID)
	document, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Document{}, storage.ErrNotFound
		}
		return storage.Document{}, fmt.Errorf("get document: %w", err)
	}
	return document, nil
}

// DeleteDocument removes one document by ID.
func (s *Store) DeleteDocument(ctx context.Context, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return fmt.Errorf("document id is required")
	}
	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, documentID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListDocuments loads one page of tenant documents ordered by ID.
func (s *Store) ListDocuments(ctx context.Context, tenantID string, pageSize int, pageToken string) (storage.DocumentPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.DocumentPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.DocumentPage{}, fmt.Errorf("storage is not configured")
	}
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return storage.DocumentPage{}, fmt.Errorf("tenant id is required")
	}
	if pageSize <= 0 {
		return storage.DocumentPage{}, fmt.Errorf("page size must be positive")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, tenant_id, owner_user_id, title, body, source_url,
	word_count, sections_json, fk_grade, reading_ease, created_at, updated_at
FROM documents
WHERE tenant_id = ? AND id > ?
ORDER BY id ASC
LIMIT ?
`, tenantID, strings.TrimSpace(pageToken), pageSize+1)
	if err != nil {
		return storage.DocumentPage{}, fmt.Errorf("list documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var documents []storage.Document
	for rows.Next() {
		document, err := scanDocument(rows)
		if err != nil {
			return storage.DocumentPage{}, fmt.Errorf("scan document: %w", err)
		}
		documents = append(documents, document)
	}
	if err := rows.Err(); err != nil {
		return storage.DocumentPage{}, fmt.Errorf("iterate documents: %w", err)
	}

	page := storage.DocumentPage{Documents: documents}
	if len(documents) > pageSize {
		page.Documents = documents[:pageSize]
		page.NextPageToken = page.Documents[pageSize-1].ID
	}
	return page, nil
}

// CountDocuments counts tenant documents.
func (s *Store) CountDocuments(ctx context.Context, tenantID string) (int, error) {
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
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE tenant_id = ?`, tenantID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (storage.Document, error) {
	var document storage.Document
	var sectionsJSON string
	var createdAt, updatedAt int64
	err := row.Scan(
		&document.ID,
		&document.TenantID,
		&document.OwnerUserID,
		&document.Title,
		&document.Body,
		&document.SourceURL,
		&document.WordCount,
		&sectionsJSON,
		&document.FleschKincaidGrade,
		&document.ReadingEase,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return storage.Document{}, err
	}
	if sectionsJSON != "" {
		if err := json.Unmarshal([]byte(sectionsJSON), &document.Sections); err != nil {
			return storage.Document{}, fmt.Errorf("decode document sections: %w", err)
		}
	}
	document.CreatedAt = time.UnixMilli(createdAt).UTC()
	document.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return document, nil
}
