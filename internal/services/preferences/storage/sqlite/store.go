// Package sqlite provides SQLite-backed persistence for executive
// preference records.
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
	"github.com/halcyonlabs/inneros/internal/services/preferences/storage"
	"github.com/halcyonlabs/inneros/internal/services/preferences/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for preference records.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a preference SQLite store at the provided path.
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

// OpenDB wraps an already-open database, applying preference migrations.
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

// PutPreferences upserts one preference record by owner.
func (s *Store) PutPreferences(ctx context.Context, preferences storage.Preferences) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	preferences.OwnerUserID = strings.TrimSpace(preferences.OwnerUserID)
	if preferences.OwnerUserID == "" {
		return fmt.Errorf("owner user id is required")
	}
	if preferences.UpdatedAt.IsZero() {
		return fmt.Errorf("preference timestamp is required")
	}

	metricsJSON, err := json.Marshal(preferences.FocusMetrics)
	if err != nil {
		return fmt.Errorf("encode focus metrics: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
	INSERT INTO executive_preferences (
		owner_user_id, tenant_id, dashboard_layout, digest_frequency,
		focus_metrics_json, notify_on_handoff, quiet_hours_start,
		quiet_hours_end, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(owner_user_id) DO UPDATE SET
		tenant_id = excluded.tenant_id,
		dashboard_layout = excluded.dashboard_layout,
		digest_frequency = excluded.digest_frequency,
		focus_metrics_json = excluded.focus_metrics_json,
		notify_on_handoff = excluded.notify_on_handoff,
		quiet_hours_start = excluded.quiet_hours_start,
		quiet_hours_end = excluded.quiet_hours_end,
		updated_at = excluded.updated_at
	`,
		preferences.OwnerUserID,
		preferences.TenantID,
		preferences.DashboardLayout,
		preferences.DigestFrequency,
		string(metricsJSON),
		boolToInt(preferences.NotifyOnHandoff),
		preferences.QuietHoursStart,
		preferences.QuietHoursEnd,
		preferences.UpdatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put preferences: %w", err)
	}
	return nil
}

// GetPreferences loads one preference record by owner.
func (s *Store) GetPreferences(ctx context.Context, ownerUserID string) (storage.Preferences, error) {
	if err := ctx.Err(); err != nil {
		return storage.Preferences{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Preferences{}, fmt.Errorf("storage is not configured")
	}
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return storage.Preferences{}, fmt.Errorf("owner user id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT owner_user_id, tenant_id, dashboard_layout, digest_frequency,
	focus_metrics_json, notify_on_handoff, quiet_hours_start,
	quiet_hours_end, updated_at
FROM executive_preferences
WHERE owner_user_id = ?
`, ownerUserID)

	var preferences storage.Preferences
	var metricsJSON string
	var notify int
	var updatedAt int64
	err := row.Scan(
		&preferences.OwnerUserID,
		&preferences.TenantID,
		&preferences.DashboardLayout,
		&preferences.DigestFrequency,
		&metricsJSON,
		&notify,
		&preferences.QuietHoursStart,
		&preferences.QuietHoursEnd,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Preferences{}, storage.ErrNotFound
		}
		return storage.Preferences{}, fmt.Errorf("get preferences: %w", err)
	}
	if metricsJSON != "" {
		if err := json.Unmarshal([]byte(metricsJSON), &preferences.FocusMetrics); err != nil {
			return storage.Preferences{}, fmt.Errorf("decode focus metrics: %w", err)
		}
	}
	preferences.NotifyOnHandoff = notify != 0
	preferences.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return preferences, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
