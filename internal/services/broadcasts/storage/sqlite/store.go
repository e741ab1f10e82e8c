// Package sqlite provides SQLite-backed persistence for broadcast and
// delivery state.
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
	"github.com/halcyonlabs/inneros/internal/services/broadcasts/storage"
	"github.com/halcyonlabs/inneros/internal/services/broadcasts/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for broadcast state.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a broadcast SQLite store at the provided path.
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

// OpenDB wraps an already-open database, applying broadcast migrations.
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

// PutBroadcast upserts one broadcast by ID.
func (s *Store) PutBroadcast(ctx context.Context, broadcast storage.Broadcast) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	broadcast.ID = strings.TrimSpace(broadcast.ID)
	if broadcast.ID == "" {
		return fmt.Errorf("broadcast id is required")
	}
	if strings.TrimSpace(broadcast.Subject) == "" {
		return fmt.Errorf("broadcast subject is required")
	}
	if broadcast.CreatedAt.IsZero() || broadcast.UpdatedAt.IsZero() {
		return fmt.Errorf("broadcast timestamps are required")
	}

	recipientsJSON, err := json.Marshal(broadcast.Recipients)
	if err != nil {
		return fmt.Errorf("encode broadcast recipients: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
	INSERT INTO broadcasts (
		id, tenant_id, author_user_id, subject, body, status,
		recipients_json, approver_user_id, reject_reason,
		scheduled_at, sent_at, attempts, next_attempt_at, failure_detail,
		created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		tenant_id = excluded.tenant_id,
		author_user_id = excluded.author_user_id,
		subject = excluded.subject,
		body = excluded.body,
		status = excluded.status,
		recipients_json = excluded.recipients_json,
		approver_user_id = excluded.approver_user_id,
		reject_reason = excluded.reject_reason,
		scheduled_at = excluded.scheduled_at,
		sent_at = excluded.sent_at,
		attempts = excluded.attempts,
		next_attempt_at = excluded.next_attempt_at,
		failure_detail = excluded.failure_detail,
		updated_at = excluded.updated_at
	`,
		broadcast.ID,
		broadcast.TenantID,
		broadcast.AuthorUserID,
		broadcast.Subject,
		broadcast.Body,
		broadcast.Status,
		string(recipientsJSON),
		broadcast.ApproverUserID,
		broadcast.RejectReason,
		toMillis(broadcast.ScheduledAt),
		toMillis(broadcast.SentAt),
		broadcast.Attempts,
		toMillis(broadcast.NextAttemptAt),
		broadcast.FailureDetail,
		broadcast.CreatedAt.UTC().UnixMilli(),
		broadcast.UpdatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put broadcast: %w", err)
	}
	return nil
}

// GetBroadcast loads one broadcast by ID.
func (s *Store) GetBroadcast(ctx context.Context, broadcastID string) (storage.Broadcast, error) {
	if err := ctx.Err(); err != nil {
		return storage.Broadcast{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Broadcast{}, fmt.Errorf("storage is not configured")
	}
	broadcastID = strings.TrimSpace(broadcastID)
	if broadcastID == "" {
		return storage.Broadcast{}, fmt.Errorf("broadcast id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, selectBroadcast+` WHERE id = ?`, broadcastID)
	broadcast, err := scanBroadcast(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Broadcast{}, storage.ErrNotFound
		}
		return storage.Broadcast{}, fmt.Errorf("get broadcast: %w", err)
	}
	return broadcast, nil
}

// ListBroadcasts loads one page of tenant broadcasts ordered by ID.
func (s *Store) ListBroadcasts(ctx context.Context, tenantID string, pageSize int, pageToken string) (storage.BroadcastPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.BroadcastPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.BroadcastPage{}, fmt.Errorf("storage is not configured")
	}
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return storage.BroadcastPage{}, fmt.Errorf("tenant id is required")
	}
	if pageSize <= 0 {
		return storage.BroadcastPage{}, fmt.Errorf("page size must be positive")
	}

	rows, err := s.sqlDB.QueryContext(ctx, selectBroadcast+`
WHERE tenant_id = ? AND id > ?
ORDER BY id ASC
LIMIT ?
`, tenantID, strings.TrimSpace(pageToken), pageSize+1)
	if err != nil {
		return storage.BroadcastPage{}, fmt.Errorf("list broadcasts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var broadcasts []storage.Broadcast
	for rows.Next() {
		broadcast, err := scanBroadcast(rows)
		if err != nil {
			return storage.BroadcastPage{}, fmt.Errorf("scan broadcast: %w", err)
		}
		broadcasts = append(broadcasts, broadcast)
	}
	if err := rows.Err(); err != nil {
		return storage.BroadcastPage{}, fmt.Errorf("iterate broadcasts: %w", err)
	}

	page := storage.BroadcastPage{Broadcasts: broadcasts}
	if len(broadcasts) > pageSize {
		page.Broadcasts = broadcasts[:pageSize]
		page.NextPageToken = page.Broadcasts[pageSize-1].ID
	}
	return page, nil
}

// ListDueBroadcasts loads scheduled broadcasts whose attempt time is at or
// before now, oldest first.
func (s *Store) ListDueBroadcasts(ctx context.Context, now time.Time, limit int) ([]storage.Broadcast, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	rows, err := s.sqlDB.QueryContext(ctx, selectBroadcast+`
WHERE status = 'scheduled' AND next_attempt_at > 0 AND next_attempt_at <= ?
ORDER BY next_attempt_at ASC
LIMIT ?
`, now.UTC().UnixMilli(), limit)
	if err != nil {
		return nil, fmt.Errorf("list due broadcasts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var broadcasts []storage.Broadcast
	for rows.Next() {
		broadcast, err := scanBroadcast(rows)
		if err != nil {
			return nil, fmt.Errorf("scan broadcast: %w", err)
		}
		broadcasts = append(broadcasts, broadcast)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate due broadcasts: %w", err)
	}
	return broadcasts, nil
}

// CountBroadcasts counts tenant broadcasts.
func (s *Store) CountBroadcasts(ctx context.Context, tenantID string) (int, error) {
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
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM broadcasts WHERE tenant_id = ?`, tenantID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count broadcasts: %w", err)
	}
	return count, nil
}

// PutDeliveries upserts per-recipient delivery rows in one transaction.
func (s *Store) PutDeliveries(ctx context.Context, records []storage.DeliveryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if len(records) == 0 {
		return nil
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delivery tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, record := range records {
		if strings.TrimSpace(record.BroadcastID) == "" || strings.TrimSpace(record.Recipient) == "" {
			return fmt.Errorf("delivery broadcast id and recipient are required")
		}
		_, err := tx.ExecContext(ctx, `
		INSERT INTO broadcast_deliveries (id, broadcast_id, recipient, status, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(broadcast_id, recipient) DO UPDATE SET
			status = excluded.status,
			updated_at = excluded.updated_at
		`,
			record.ID,
			record.BroadcastID,
			record.Recipient,
			record.Status,
			record.UpdatedAt.UTC().UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("put delivery: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delivery tx: %w", err)
	}
	return nil
}

// ListDeliveries loads delivery rows for one broadcast ordered by recipient.
func (s *Store) ListDeliveries(ctx context.Context, broadcastID string) ([]storage.DeliveryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	broadcastID = strings.TrimSpace(broadcastID)
	if broadcastID == "" {
		return nil, fmt.Errorf("broadcast id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, broadcast_id, recipient, status, updated_at
FROM broadcast_deliveries
WHERE broadcast_id = ?
ORDER BY recipient ASC
`, broadcastID)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []storage.DeliveryRecord
	for rows.Next() {
		var record storage.DeliveryRecord
		var updatedAt int64
		if err := rows.Scan(&record.ID, &record.BroadcastID, &record.Recipient, &record.Status, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		record.UpdatedAt = time.UnixMilli(updatedAt).UTC()
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deliveries: %w", err)
	}
	return records, nil
}

const selectBroadcast = `
SELECT id, tenant_id, author_user_id, subject, body, status,
	recipients_json, approver_user_id, reject_reason,
	scheduled_at, sent_at, attempts, next_attempt_at, failure_detail,
	created_at, updated_at
FROM broadcasts`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBroadcast(row rowScanner) (storage.Broadcast, error) {
	var broadcast storage.Broadcast
	var recipientsJSON string
	var scheduledAt, sentAt, nextAttemptAt, createdAt, updatedAt int64
	err := row.Scan(
		&broadcast.ID,
		&broadcast.TenantID,
		&broadcast.AuthorUserID,
		&broadcast.Subject,
		&broadcast.Body,
		&broadcast.Status,
		&recipientsJSON,
		&broadcast.ApproverUserID,
		&broadcast.RejectReason,
		&scheduledAt,
		&sentAt,
		&broadcast.Attempts,
		&nextAttemptAt,
		&broadcast.FailureDetail,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return storage.Broadcast{}, err
	}
	if recipientsJSON != "" {
		if err := json.Unmarshal([]byte(recipientsJSON), &broadcast.Recipients); err != nil {
			return storage.Broadcast{}, fmt.Errorf("decode broadcast recipients: %w", err)
		}
	}
	broadcast.ScheduledAt = fromMillis(scheduledAt)
	broadcast.SentAt = fromMillis(sentAt)
	broadcast.NextAttemptAt = fromMillis(nextAttemptAt)
	broadcast.CreatedAt = time.UnixMilli(createdAt).UTC()
	broadcast.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return broadcast, nil
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixMilli()
}

func fromMillis(millis int64) time.Time {
	if millis == 0 {
		return time.Time{}
	}
	return time.UnixMilli(millis).UTC()
}
