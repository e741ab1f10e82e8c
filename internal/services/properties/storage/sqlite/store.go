// Package sqlite provides SQLite-backed persistence for property records.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/halcyonlabs/inneros/internal/platform/storage/sqlitemigrate"
	"github.com/halcyonlabs/inneros/internal/services/properties/storage"
	"github.com/halcyonlabs/inneros/internal/services/properties/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for property records.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a property SQLite store at the provided path.
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

// OpenDB wraps an already-open database, applying property migrations.
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

// PutProperty upserts one property and replaces its rooms in one
// transaction.
func (s *Store) PutProperty(ctx context.Context, property storage.Property) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	property.ID = strings.TrimSpace(property.ID)
	if property.ID == "" {
		return fmt.Errorf("property id is required")
	}
	if strings.TrimSpace(property.Name) == "" {
		return fmt.Errorf("property name is required")
	}
	if property.CreatedAt.IsZero() || property.UpdatedAt.IsZero() {
		return fmt.Errorf("property timestamps are required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin property tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO properties (
		id, tenant_id, name, address, monthly_expenses_cents, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		tenant_id = excluded.tenant_id,
		name = excluded.name,
		address = excluded.address,
		monthly_expenses_cents = excluded.monthly_expenses_cents,
		updated_at = excluded.updated_at
	`,
		property.ID,
		property.TenantID,
		property.Name,
		property.Address,
		property.MonthlyExpensesCents,
		property.CreatedAt.UTC().UnixMilli(),
		property.UpdatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put property: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM property_rooms WHERE property_id = ?`, property.ID); err != nil {
		return fmt.Errorf("clear property rooms: %w", err)
	}
	for i, room := range property.Rooms {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO property_rooms (id, property_id, label, monthly_rent_cents, occupied, position)
		VALUES (?, ?, ?, ?, ?, ?)
		`,
			room.ID,
			property.ID,
			room.Label,
			room.MonthlyRentCents,
			boolToInt(room.Occupied),
			i,
		)
		if err != nil {
			return fmt.Errorf("put property room: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit property tx: %w", err)
	}
	return nil
}

// GetProperty loads one property with its rooms.
func (s *Store) GetProperty(ctx context.Context, propertyID string) (storage.Property, error) {
	if err := ctx.Err(); err != nil {
		return storage.Property{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Property{}, fmt.Errorf("storage is not configured")
	}
	propertyID = strings.TrimSpace(propertyID)
	if propertyID == "" {
		return storage.Property{}, fmt.Errorf("property id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, tenant_id, name, address, monthly_expenses_cents, created_at, updated_at
FROM properties
WHERE id = ?
`, propertyID)
	property, err := scanProperty(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Property{}, storage.ErrNotFound
		}
		return storage.Property{}, fmt.Errorf("get property: %w", err)
	}

	rooms, err := s.roomsFor(ctx, property.ID)
	if err != nil {
		return storage.Property{}, err
	}
	property.Rooms = rooms
	return property, nil
}

// DeleteProperty removes one property and its rooms.
func (s *Store) DeleteProperty(ctx context.Context, propertyID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	propertyID = strings.TrimSpace(propertyID)
	if propertyID == "" {
		return fmt.Errorf("property id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin property tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM property_rooms WHERE property_id = ?`, propertyID); err != nil {
		return fmt.Errorf("delete property rooms: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM properties WHERE id = ?`, propertyID)
	if err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete property rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit property tx: %w", err)
	}
	return nil
}

// ListProperties loads one page of tenant properties ordered by ID, rooms
// included.
func (s *Store) ListProperties(ctx context.Context, tenantID string, pageSize int, pageToken string) (storage.PropertyPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.PropertyPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.PropertyPage{}, fmt.Errorf("storage is not configured")
	}
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return storage.PropertyPage{}, fmt.Errorf("tenant id is required")
	}
	if pageSize <= 0 {
		return storage.PropertyPage{}, fmt.Errorf("page size must be positive")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, tenant_id, name, address, monthly_expenses_cents, created_at, updated_at
FROM properties
WHERE tenant_id = ? AND id > ?
ORDER BY id ASC
LIMIT ?
`, tenantID, strings.TrimSpace(pageToken), pageSize+1)
	if err != nil {
		return storage.PropertyPage{}, fmt.Errorf("list properties: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var properties []storage.Property
	for rows.Next() {
		property, err := scanProperty(rows)
		if err != nil {
			return storage.PropertyPage{}, fmt.Errorf("scan property: %w", err)
		}
		properties = append(properties, property)
	}
	if err := rows.Err(); err != nil {
		return storage.PropertyPage{}, fmt.Errorf("iterate properties: %w", err)
	}

	page := storage.PropertyPage{Properties: properties}
	if len(properties) > pageSize {
		page.Properties = properties[:pageSize]
		page.NextPageToken = page.Properties[pageSize-1].ID
	}
	for i := range page.Properties {
		rooms, err := s.roomsFor(ctx, page.Properties[i].ID)
		if err != nil {
			return storage.PropertyPage{}, err
		}
		page.Properties[i].Rooms = rooms
	}
	return page, nil
}

// CountProperties counts tenant properties.
func (s *Store) CountProperties(ctx context.Context, tenantID string) (int, error) {
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
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM properties WHERE tenant_id = ?`, tenantID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count properties: %w", err)
	}
	return count, nil
}

func (s *Store) roomsFor(ctx context.Context, propertyID string) ([]storage.Room, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, label, monthly_rent_cents, occupied
FROM property_rooms
WHERE property_id = ?
ORDER BY position ASC
`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("list property rooms: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rooms []storage.Room
	for rows.Next() {
		var room storage.Room
		var occupied int
		if err := rows.Scan(&room.ID, &room.Label, &room.MonthlyRentCents, &occupied); err != nil {
			return nil, fmt.Errorf("scan property room: %w", err)
		}
		room.Occupied = occupied != 0
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate property rooms: %w", err)
	}
	return rooms, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(row rowScanner) (storage.Property, error) {
	var property storage.Property
	var createdAt, updatedAt int64
	err := row.Scan(
		&property.ID,
		&property.TenantID,
		&property.Name,
		&property.Address,
		&property.MonthlyExpensesCents,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return storage.Property{}, err
	}
	property.CreatedAt = time.UnixMilli(createdAt).UTC()
	property.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return property, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
