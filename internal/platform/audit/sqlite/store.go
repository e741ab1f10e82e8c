// Package sqlite provides SQLite-backed persistence for audit events.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/halcyonlabs/inneros/internal/platform/audit"
	"github.com/halcyonlabs/inneros/internal/platform/audit/sqlite/migrations"
	sqlitemigrate "github.com/halcyonlabs/inneros/internal/platform/storage/sqlitemigrate"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for audit events.
type Store struct {
	sqlDB *sql.DB
}

// Open opens an audit SQLite store at the provided path.
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

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// AppendAuditEvent persists one audit event row.
func (s *Store) AppendAuditEvent(ctx context.Context, event audit.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	event.Action = strings.TrimSpace(event.Action)
	if event.Action == "" {
		return fmt.Errorf("audit action is required")
	}
	if event.Timestamp.IsZero() {
		return fmt.Errorf("audit timestamp is required")
	}
	if event.Severity == "" {
		event.Severity = audit.SeverityInfo
	}

	_, err := s.sqlDB.ExecContext(ctx, `
	INSERT INTO audit_events (
		actor_user_id, tenant_id, action, entity_kind, entity_id, severity, detail, at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		strings.TrimSpace(event.ActorUserID),
		strings.TrimSpace(event.TenantID),
		event.Action,
		strings.TrimSpace(event.EntityKind),
		strings.TrimSpace(event.EntityID),
		string(event.Severity),
		strings.TrimSpace(event.Detail),
		event.Timestamp.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// ListRecentEvents lists the newest events up to limit, newest first.
func (s *Store) ListRecentEvents(ctx context.Context, limit int) ([]audit.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT actor_user_id, tenant_id, action, entity_kind, entity_id, severity, detail, at
FROM audit_events
ORDER BY at DESC, id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	results := make([]audit.Event, 0, limit)
	for rows.Next() {
		var event audit.Event
		var severity string
		var at int64
		if err := rows.Scan(
			&event.ActorUserID,
			&event.TenantID,
			&event.Action,
			&event.EntityKind,
			&event.EntityID,
			&severity,
			&event.Detail,
			&at,
		); err != nil {
			return nil, fmt.Errorf("scan audit event row: %w", err)
		}
		event.Severity = audit.Severity(severity)
		event.Timestamp = time.UnixMilli(at).UTC()
		results = append(results, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit event rows: %w", err)
	}
	return results, nil
}
