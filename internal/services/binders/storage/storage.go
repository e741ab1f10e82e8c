// Package storage defines persistence contracts for compliance binder
// records.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested binder record is missing.
var ErrNotFound = errors.New("record not found")

// Generation statuses for one binder record.
const (
	StatusPending    = "pending"
	StatusGenerating = "generating"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Binder stores one compliance binder request and its generation outcome.
type Binder struct {
	ID           string
	TenantID     string
	Title        string
	PreparedFor  string
	DocumentIDs  []string
	PropertyIDs  []string
	Status       string
	PageEstimate int
	FailureNote  string
	GeneratedAt  time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BinderPage stores one page of tenant binders.
type BinderPage struct {
	Binders       []Binder
	NextPageToken string
}

// Store persists binder records.
type Store interface {
	PutBinder(ctx context.Context, binder Binder) error
	GetBinder(ctx context.Context, binderID string) (Binder, error)
	ListBinders(ctx context.Context, tenantID string, pageSize int, pageToken string) (BinderPage, error)
	DeleteBinder(ctx context.Context, binderID string) error
	CountBinders(ctx context.Context, tenantID string) (int, error)
}
