// Package storage defines persistence contracts for executive preference
// records.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested preference record is missing.
var ErrNotFound = errors.New("record not found")

// Preferences stores one owner's executive preference record.
type Preferences struct {
	OwnerUserID     string
	TenantID        string
	DashboardLayout string
	DigestFrequency string
	FocusMetrics    []string
	NotifyOnHandoff bool
	QuietHoursStart string
	QuietHoursEnd   string
	UpdatedAt       time.Time
}

// Store persists executive preference records keyed by owner.
type Store interface {
	PutPreferences(ctx context.Context, preferences Preferences) error
	GetPreferences(ctx context.Context, ownerUserID string) (Preferences, error)
}
