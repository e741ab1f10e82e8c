// Package storage defines persistence contracts for broadcast and delivery
// state.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested broadcast record is missing.
var ErrNotFound = errors.New("record not found")

// Delivery statuses for one recipient row.
const (
	DeliveryPending   = "pending"
	DeliveryDelivered = "delivered"
	DeliveryFailed    = "failed"
)

// Broadcast stores one notification broadcast through its lifecycle.
type Broadcast struct {
	ID             string
	TenantID       string
	AuthorUserID   string
	Subject        string
	Body           string
	Status         string
	Recipients     []string
	ApproverUserID string
	RejectReason   string
	ScheduledAt    time.Time
	SentAt         time.Time
	Attempts       int
	NextAttemptAt  time.Time
	// FailureDetail is non-empty when delivery gave up after exhausting
	// its attempts; the broadcast still closes as sent.
	FailureDetail string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BroadcastPage stores one page of tenant broadcasts.
type BroadcastPage struct {
	Broadcasts    []Broadcast
	NextPageToken string
}

// DeliveryRecord stores one recipient delivery outcome.
type DeliveryRecord struct {
	ID          string
	BroadcastID string
	Recipient   string
	Status      string
	UpdatedAt   time.Time
}

// Store persists broadcasts and per-recipient delivery records.
type Store interface {
	PutBroadcast(ctx context.Context, broadcast Broadcast) error
	GetBroadcast(ctx context.Context, broadcastID string) (Broadcast, error)
	ListBroadcasts(ctx context.Context, tenantID string, pageSize int, pageToken string) (BroadcastPage, error)
	// ListDueBroadcasts returns scheduled broadcasts whose scheduled or
	// retry time is at or before now.
	ListDueBroadcasts(ctx context.Context, now time.Time, limit int) ([]Broadcast, error)
	CountBroadcasts(ctx context.Context, tenantID string) (int, error)

	PutDeliveries(ctx context.Context, records []DeliveryRecord) error
	ListDeliveries(ctx context.Context, broadcastID string) ([]DeliveryRecord, error)
}
