// Package sqlite provides SQLite-backed persistence for the practice
// catalog and member progress.
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
	"github.com/halcyonlabs/inneros/internal/services/practices/storage"
	"github.com/halcyonlabs/inneros/internal/services/practices/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for practice state.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a practice SQLite store at the provided path.
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

// OpenDB wraps an already-open database, applying practice migrations.
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

// PutPractice upserts one catalog practice by ID.
func (s *Store) PutPractice(ctx context.Context, practice storage.Practice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	practice.ID = strings.TrimSpace(practice.ID)
	if practice.ID == "" {
		return fmt.Errorf("practice id is required")
	}
	if strings.TrimSpace(practice.Title) == "" {
		return fmt.Errorf("practice title is required")
	}
	if practice.CreatedAt.IsZero() || practice.UpdatedAt.IsZero() {
		return fmt.Errorf("practice timestamps are required")
	}

	temperamentsJSON, err := json.Marshal(practice.Temperaments)
	if err != nil {
		return fmt.Errorf("encode practice temperaments: %w", err)
	}
	patternsJSON, err := json.Marshal(practice.Patterns)
	if err != nil {
		return fmt.Errorf("encode practice patterns: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
	INSERT INTO practices (
		id, tenant_id, category, title, instructions, time_text,
		time_min_minutes, time_max_minutes, time_known, difficulty,
		temperaments_json, patterns_json, emergency, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		tenant_id = excluded.tenant_id,
		category = excluded.category,
		title = excluded.title,
		instructions = excluded.instructions,
		time_text = excluded.time_text,
		time_min_minutes = excluded.time_min_minutes,
		time_max_minutes = excluded.time_max_minutes,
		time_known = excluded.time_known,
		difficulty = excluded.difficulty,
		temperaments_json = excluded.temperaments_json,
		patterns_json = excluded.patterns_json,
		emergency = excluded.emergency,
		updated_at = excluded.updated_at
	`,
		practice.ID,
		practice.TenantID,
		practice.Category,
		practice.Title,
		practice.Instructions,
		practice.TimeText,
		practice.TimeMinMinutes,
		practice.TimeMaxMinutes,
		boolToInt(practice.TimeKnown),
		practice.Difficulty,
		string(temperamentsJSON),
		string(patternsJSON),
		boolToInt(practice.Emergency),
		practice.CreatedAt.UTC().UnixMilli(),
		practice.UpdatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put practice: %w", err)
	}
	return nil
}

// GetPractice loads one catalog practice by ID.
func (s *Store) GetPractice(ctx context.Context, practiceID string) (storage.Practice, error) {
	if err := ctx.Err(); err != nil {
		return storage.Practice{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Practice{}, fmt.Errorf("storage is not configured")
	}
	practiceID = strings.TrimSpace(practiceID)
	if practiceID == "" {
		return storage.Practice{}, fmt.Errorf("practice id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, tenant_id, category, title, instructions, time_text,
	time_min_minutes, time_max_minutes, time_known, difficulty,
	temperaments_json, patterns_json, emergency, created_at, updated_at
FROM practices
WHERE id = ?
`, practiceID)
	practice, err := scanPractice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Practice{}, storage.ErrNotFound
		}
		return storage.Practice{}, fmt.Errorf("get practice: %w", err)
	}
	return practice, nil
}

// DeletePractice removes one catalog practice by ID.
func (s *Store) DeletePractice(ctx context.Context, practiceID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	practiceID = strings.TrimSpace(practiceID)
	if practiceID == "" {
		return fmt.Errorf("practice id is required")
	}
	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM practices WHERE id = ?`, practiceID)
	if err != nil {
		return fmt.Errorf("delete practice: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete practice rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListPractices loads one page of tenant practices ordered by ID, optionally
// filtered by category.
func (s *Store) ListPractices(ctx context.Context, tenantID string, category string, pageSize int, pageToken string) (storage.PracticePage, error) {
	if err := ctx.Err(); err != nil {
		return storage.PracticePage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.PracticePage{}, fmt.Errorf("storage is not configured")
	}
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return storage.PracticePage{}, fmt.Errorf("tenant id is required")
	}
	if pageSize <= 0 {
		return storage.PracticePage{}, fmt.Errorf("page size must be positive")
	}

	query := `
SELECT id, tenant_id, category, title, instructions, time_text,
	time_min_minutes, time_max_minutes, time_known, difficulty,
	temperaments_json, patterns_json, emergency, created_at, updated_at
FROM practices
WHERE tenant_id = ? AND id > ?`
	args := []any{tenantID, strings.TrimSpace(pageToken)}
	if category = strings.TrimSpace(category); category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += `
ORDER BY id ASC
LIMIT ?`
	args = append(args, pageSize+1)

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return storage.PracticePage{}, fmt.Errorf("list practices: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var practices []storage.Practice
	for rows.Next() {
		practice, err := scanPractice(rows)
		if err != nil {
			return storage.PracticePage{}, fmt.Errorf("scan practice: %w", err)
		}
		practices = append(practices, practice)
	}
	if err := rows.Err(); err != nil {
		return storage.PracticePage{}, fmt.Errorf("iterate practices: %w", err)
	}

	page := storage.PracticePage{Practices: practices}
	if len(practices) > pageSize {
		page.Practices = practices[:pageSize]
		page.NextPageToken = page.Practices[pageSize-1].ID
	}
	return page, nil
}

// AppendCompletion records one member practice completion.
func (s *Store) AppendCompletion(ctx context.Context, completion storage.Completion) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	completion.ID = strings.TrimSpace(completion.ID)
	completion.UserID = strings.TrimSpace(completion.UserID)
	completion.PracticeID = strings.TrimSpace(completion.PracticeID)
	if completion.ID == "" || completion.UserID == "" || completion.PracticeID == "" {
		return fmt.Errorf("completion id, user id, and practice id are required")
	}
	if completion.Phase < 1 {
		return fmt.Errorf("completion phase must be positive")
	}
	if completion.CompletedAt.IsZero() {
		return fmt.Errorf("completion timestamp is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
	INSERT INTO practice_completions (id, user_id, practice_id, phase, completed_at)
	VALUES (?, ?, ?, ?, ?)
	`,
		completion.ID,
		completion.UserID,
		completion.PracticeID,
		completion.Phase,
		completion.CompletedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("append completion: %w", err)
	}
	return nil
}

// CountCompletions counts a member's completions in one phase.
func (s *Store) CountCompletions(ctx context.Context, userID string, phase int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, fmt.Errorf("user id is required")
	}
	var count int
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT COUNT(*) FROM practice_completions WHERE user_id = ? AND phase = ?
`, userID, phase).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count completions: %w", err)
	}
	return count, nil
}

// GetMemberPhase loads a member's current phase.
func (s *Store) GetMemberPhase(ctx context.Context, userID string) (storage.MemberPhase, error) {
	if err := ctx.Err(); err != nil {
		return storage.MemberPhase{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.MemberPhase{}, fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return storage.MemberPhase{}, fmt.Errorf("user id is required")
	}

	var memberPhase storage.MemberPhase
	var updatedAt int64
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT user_id, phase, updated_at FROM member_phases WHERE user_id = ?
`, userID).Scan(&memberPhase.UserID, &memberPhase.Phase, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.MemberPhase{}, storage.ErrNotFound
		}
		return storage.MemberPhase{}, fmt.Errorf("get member phase: %w", err)
	}
	memberPhase.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return memberPhase, nil
}

// PutMemberPhase upserts a member's current phase.
func (s *Store) PutMemberPhase(ctx context.Context, memberPhase storage.MemberPhase) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	memberPhase.UserID = strings.TrimSpace(memberPhase.UserID)
	if memberPhase.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if memberPhase.Phase < 1 {
		return fmt.Errorf("member phase must be positive")
	}
	if memberPhase.UpdatedAt.IsZero() {
		return fmt.Errorf("member phase timestamp is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
	INSERT INTO member_phases (user_id, phase, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		phase = excluded.phase,
		updated_at = excluded.updated_at
	`,
		memberPhase.UserID,
		memberPhase.Phase,
		memberPhase.UpdatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put member phase: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPractice(row rowScanner) (storage.Practice, error) {
	var practice storage.Practice
	var temperamentsJSON, patternsJSON string
	var timeKnown, emergency int
	var createdAt, updatedAt int64
	err := row.Scan(
		&practice.ID,
		&practice.TenantID,
		&practice.Category,
		&practice.Title,
		&practice.Instructions,
		&practice.TimeText,
		&practice.TimeMinMinutes,
		&practice.TimeMaxMinutes,
		&timeKnown,
		&practice.Difficulty,
		&temperamentsJSON,
		&patternsJSON,
		&emergency,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return storage.Practice{}, err
	}
	if temperamentsJSON != "" {
		if err := json.Unmarshal([]byte(temperamentsJSON), &practice.Temperaments); err != nil {
			return storage.Practice{}, fmt.Errorf("decode practice temperaments: %w", err)
		}
	}
	if patternsJSON != "" {
		if err := json.Unmarshal([]byte(patternsJSON), &practice.Patterns); err != nil {
			return storage.Practice{}, fmt.Errorf("decode practice patterns: %w", err)
		}
	}
	practice.TimeKnown = timeKnown != 0
	practice.Emergency = emergency != 0
	practice.CreatedAt = time.UnixMilli(createdAt).UTC()
	practice.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return practice, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
