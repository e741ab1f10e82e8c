// Package sqlite provides SQLite-backed persistence for assessment results.
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
	"github.com/halcyonlabs/inneros/internal/services/assessments/storage"
	"github.com/halcyonlabs/inneros/internal/services/assessments/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for assessment records.
type Store struct {
	sqlDB *sql.DB
}

// Open opens an assessment SQLite store at the provided path.
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

// OpenDB wraps an already-open database, applying assessment migrations.
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

// PutAssessment upserts one assessment keyed by user and kind. The original
// creation time survives updates.
func (s *Store) PutAssessment(ctx context.Context, assessment storage.Assessment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	assessment.UserID = strings.TrimSpace(assessment.UserID)
	assessment.Kind = strings.TrimSpace(assessment.Kind)
	if assessment.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if assessment.Kind == "" {
		return fmt.Errorf("assessment kind is required")
	}
	if assessment.CreatedAt.IsZero() || assessment.UpdatedAt.IsZero() {
		return fmt.Errorf("assessment timestamps are required")
	}

	countsJSON, err := json.Marshal(assessment.Counts)
	if err != nil {
		return fmt.Errorf("encode assessment counts: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
	INSERT INTO assessments (
		id, tenant_id, user_id, kind, counts_json, total,
		primary_category, secondary_category, tied, balanced, confidence,
		reflection, culture_context, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(user_id, kind) DO UPDATE SET
		tenant_id = excluded.tenant_id,
		counts_json = excluded.counts_json,
		total = excluded.total,
		primary_category = excluded.primary_category,
		secondary_category = excluded.secondary_category,
		tied = excluded.tied,
		balanced = excluded.balanced,
		confidence = excluded.confidence,
		reflection = excluded.reflection,
		culture_context = excluded.culture_context,
		updated_at = excluded.updated_at
	`,
		assessment.ID,
		assessment.TenantID,
		assessment.UserID,
		assessment.Kind,
		string(countsJSON),
		assessment.Total,
		assessment.Primary,
		assessment.Secondary,
		boolToInt(assessment.Tied),
		boolToInt(assessment.Balanced),
		assessment.Confidence,
		assessment.Reflection,
		assessment.CultureContext,
		assessment.CreatedAt.UTC().UnixMilli(),
		assessment.UpdatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put assessment: %w", err)
	}
	return nil
}

// GetAssessment loads one assessment by user and kind.
func (s *Store) GetAssessment(ctx context.Context, userID string, kind string) (storage.Assessment, error) {
	if err := ctx.Err(); err != nil {
		return storage.Assessment{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Assessment{}, fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	kind = strings.TrimSpace(kind)
	if userID == "" {
		return storage.Assessment{}, fmt.Errorf("user id is required")
	}
	if kind == "" {
		return storage.Assessment{}, fmt.Errorf("assessment kind is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, tenant_id, user_id, kind, counts_json, total,
	primary_category, secondary_category, tied, balanced, confidence,
	reflection, culture_context, created_at, updated_at
FROM assessments
WHERE user_id = ? AND kind = ?
`, userID, kind)
	assessment, err := scanAssessment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Assessment{}, storage.ErrNotFound
		}
		return storage.Assessment{}, fmt.Errorf("get assessment: %w", err)
	}
	return assessment, nil
}

// ListAssessmentsByUser loads all assessments for a user, newest first.
func (s *Store) ListAssessmentsByUser(ctx context.Context, userID string) ([]storage.Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, tenant_id, user_id, kind, counts_json, total,
	primary_category, secondary_category, tied, balanced, confidence,
	reflection, culture_context, created_at, updated_at
FROM assessments
WHERE user_id = ?
ORDER BY updated_at DESC, kind ASC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var assessments []storage.Assessment
	for rows.Next() {
		assessment, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		assessments = append(assessments, assessment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assessments: %w", err)
	}
	return assessments, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row rowScanner) (storage.Assessment, error) {
	var assessment storage.Assessment
	var countsJSON string
	var tied, balanced int
	var createdAt, updatedAt int64
	err := row.Scan(
		&assessment.ID,
		&assessment.TenantID,
		&assessment.UserID,
		&assessment.Kind,
		&countsJSON,
		&assessment.Total,
		&assessment.Primary,
		&assessment.Secondary,
		&tied,
		&balanced,
		&assessment.Confidence,
		&assessment.Reflection,
		&assessment.CultureContext,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return storage.Assessment{}, err
	}
	if countsJSON != "" {
		if err := json.Unmarshal([]byte(countsJSON), &assessment.Counts); err != nil {
			return storage.Assessment{}, fmt.Errorf("decode assessment counts: %w", err)
		}
	}
	assessment.Tied = tied != 0
	assessment.Balanced = balanced != 0
	assessment.CreatedAt = time.UnixMilli(createdAt).UTC()
	assessment.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return assessment, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
