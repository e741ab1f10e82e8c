// Package domain manages the broadcast lifecycle and recipient delivery
// records.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/halcyonlabs/inneros/internal/platform/errors"
	"github.com/halcyonlabs/inneros/internal/platform/id"
	"github.com/halcyonlabs/inneros/internal/platform/requestctx"
	"github.com/halcyonlabs/inneros/internal/services/broadcasts/storage"
)

const (
	maxSubjectLength = 200
	defaultPageSize  = 20
	maxPageSize      = 100
)

// Service coordinates broadcast lifecycle state and persistence.
type Service struct {
	store storage.Store
	clock func() time.Time
	newID func() string
}

// NewService creates a broadcast service.
func NewService(store storage.Store) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("broadcast store is required")
	}
	return &Service{store: store, clock: time.Now, newID: id.NewID}, nil
}

// CreateInput carries one new draft broadcast.
type CreateInput struct {
	TenantID     string
	AuthorUserID string
	Subject      string
	Body         string
	Recipients   []string
}

// Create stores a new broadcast in draft.
func (s *Service) Create(ctx context.Context, input CreateInput) (storage.Broadcast, error) {
	if s == nil || s.store == nil {
		return storage.Broadcast{}, fmt.Errorf("broadcast service is not configured")
	}
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return storage.Broadcast{}, apperrors.New(apperrors.CodeInvalidArgument, "broadcast subject is required")
	}
	if len([]rune(subject)) > maxSubjectLength {
		return storage.Broadcast{}, apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("broadcast subject must be at most %d characters", maxSubjectLength))
	}
	if strings.TrimSpace(input.Body) == "" {
		return storage.Broadcast{}, apperrors.New(apperrors.CodeInvalidArgument, "broadcast body is required")
	}

	recipients := make([]string, 0, len(input.Recipients))
	seen := make(map[string]bool, len(input.Recipients))
	for _, recipient := range input.Recipients {
		recipient = strings.TrimSpace(recipient)
		if recipient == "" || seen[recipient] {
			continue
		}
		seen[recipient] = true
		recipients = append(recipients, recipient)
	}

	now := s.clock().UTC()
	broadcast := storage.Broadcast{
		ID:           s.newID(),
		TenantID:     strings.TrimSpace(input.TenantID),
		AuthorUserID: strings.TrimSpace(input.AuthorUserID),
		Subject:      subject,
		Body:         input.Body,
		Status:       string(StatusDraft),
		Recipients:   recipients,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.PutBroadcast(ctx, broadcast); err != nil {
		return storage.Broadcast{}, fmt.Errorf("put broadcast: %w", err)
	}
	return broadcast, nil
}

// Get loads one broadcast.
func (s *Service) Get(ctx context.Context, broadcastID string) (storage.Broadcast, error) {
	if s == nil || s.store == nil {
		return storage.Broadcast{}, fmt.Errorf("broadcast service is not configured")
	}
	broadcastID = strings.TrimSpace(broadcastID)
	if broadcastID == "" {
		return storage.Broadcast{}, apperrors.New(apperrors.CodeInvalidArgument, "broadcast id is required")
	}
	broadcast, err := s.store.GetBroadcast(ctx, broadcastID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.Broadcast{}, apperrors.New(apperrors.CodeNotFound, "broadcast not found")
		}
		return storage.Broadcast{}, fmt.Errorf("get broadcast: %w", err)
	}
	return broadcast, nil
}

// List returns one page of tenant broadcasts.
func (s *Service) List(ctx context.Context, tenantID string, pageSize int, pageToken string) (storage.BroadcastPage, error) {
	if s == nil || s.store == nil {
		return storage.BroadcastPage{}, fmt.Errorf("broadcast service is not configured")
	}
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return storage.BroadcastPage{}, apperrors.New(apperrors.CodeInvalidArgument, "tenant id is required")
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page, err := s.store.ListBroadcasts(ctx, tenantID, pageSize, strings.TrimSpace(pageToken))
	if err != nil {
		return storage.BroadcastPage{}, fmt.Errorf("list broadcasts: %w", err)
	}
	return page, nil
}

// SubmitForApproval moves a draft to pending approval.
func (s *Service) SubmitForApproval(ctx context.Context, broadcastID string) (storage.Broadcast, error) {
	return s.transition(ctx, broadcastID, StatusPendingApproval, nil)
}

// Approve moves a pending broadcast to approved. The caller needs the coach
// or admin role.
func (s *Service) Approve(ctx context.Context, principal requestctx.Principal, broadcastID string) (storage.Broadcast, error) {
	if !principal.CanApprove() {
		return storage.Broadcast{}, apperrors.New(apperrors.CodeForbidden, "broadcast approval requires the coach or admin role")
	}
	return s.transition(ctx, broadcastID, StatusApproved, func(broadcast *storage.Broadcast) {
		broadcast.ApproverUserID = principal.UserID
	})
}

// Reject moves a pending broadcast to rejected with a reason. The caller
// needs the coach or admin role.
func (s *Service) Reject(ctx context.Context, principal requestctx.Principal, broadcastID string, reason string) (storage.Broadcast, error) {
	if !principal.CanApprove() {
		return storage.Broadcast{}, apperrors.New(apperrors.CodeForbidden, "broadcast rejection requires the coach or admin role")
	}
	return s.transition(ctx, broadcastID, StatusRejected, func(broadcast *storage.Broadcast) {
		broadcast.ApproverUserID = principal.UserID
		broadcast.RejectReason = strings.TrimSpace(reason)
	})
}

// Schedule moves an approved broadcast to scheduled at the given time.
func (s *Service) Schedule(ctx context.Context, broadcastID string, at time.Time) (storage.Broadcast, error) {
	if at.IsZero() {
		return storage.Broadcast{}, apperrors.New(apperrors.CodeInvalidArgument, "schedule time is required")
	}
	return s.transition(ctx, broadcastID, StatusScheduled, func(broadcast *storage.Broadcast) {
		broadcast.ScheduledAt = at.UTC()
		broadcast.NextAttemptAt = at.UTC()
		broadcast.Attempts = 0
	})
}

// Cancel moves a broadcast to cancelled. Sending and terminal broadcasts
// refuse the move.
func (s *Service) Cancel(ctx context.Context, broadcastID string) (storage.Broadcast, error) {
	broadcast, err := s.Get(ctx, broadcastID)
	if err != nil {
		return storage.Broadcast{}, err
	}
	if Status(broadcast.Status) == StatusSending {
		return storage.Broadcast{}, apperrors.New(apperrors.CodeBroadcastDeliveryUnderway, "broadcast delivery already underway")
	}
	return s.transition(ctx, broadcastID, StatusCancelled, nil)
}

// MarkSending moves a scheduled broadcast to sending and counts the
// attempt.
func (s *Service) MarkSending(ctx context.Context, broadcastID string) (storage.Broadcast, error) {
	return s.transition(ctx, broadcastID, StatusSending, func(broadcast *storage.Broadcast) {
		broadcast.Attempts++
	})
}

// MarkSent moves a sending broadcast to sent.
func (s *Service) MarkSent(ctx context.Context, broadcastID string) (storage.Broadcast, error) {
	return s.transition(ctx, broadcastID, StatusSent, func(broadcast *storage.Broadcast) {
		broadcast.SentAt = s.clock().UTC()
		broadcast.NextAttemptAt = time.Time{}
	})
}

// MarkExhausted closes a sending broadcast whose delivery gave up. The
// broadcast ends as sent with the failure detail recorded, so callers can
// see the exhaustion without reading the delivery rows.
func (s *Service) MarkExhausted(ctx context.Context, broadcastID string, detail string) (storage.Broadcast, error) {
	detail = strings.TrimSpace(detail)
	if detail == "" {
		return storage.Broadcast{}, apperrors.New(apperrors.CodeInvalidArgument, "failure detail is required")
	}
	return s.transition(ctx, broadcastID, StatusSent, func(broadcast *storage.Broadcast) {
		broadcast.SentAt = s.clock().UTC()
		broadcast.NextAttemptAt = time.Time{}
		broadcast.FailureDetail = detail
	})
}

// RescheduleRetry returns a sending broadcast to scheduled with the next
// attempt time set, keeping the attempt count.
func (s *Service) RescheduleRetry(ctx context.Context, broadcastID string, nextAttempt time.Time) (storage.Broadcast, error) {
	if nextAttempt.IsZero() {
		return storage.Broadcast{}, apperrors.New(apperrors.CodeInvalidArgument, "next attempt time is required")
	}
	broadcast, err := s.Get(ctx, broadcastID)
	if err != nil {
		return storage.Broadcast{}, err
	}
	if Status(broadcast.Status) != StatusSending {
		return storage.Broadcast{}, apperrors.WithMetadata(
			apperrors.CodeBroadcastInvalidTransition,
			"only a sending broadcast can be rescheduled",
			map[string]string{"from": broadcast.Status},
		)
	}
	broadcast.Status = string(StatusScheduled)
	broadcast.NextAttemptAt = nextAttempt.UTC()
	broadcast.UpdatedAt = s.clock().UTC()
	if err := s.store.PutBroadcast(ctx, broadcast); err != nil {
		return storage.Broadcast{}, fmt.Errorf("put broadcast: %w", err)
	}
	return broadcast, nil
}

// RecordDeliveries upserts per-recipient delivery rows for one broadcast.
func (s *Service) RecordDeliveries(ctx context.Context, broadcastID string, recipients []string, status string) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("broadcast service is not configured")
	}
	broadcastID = strings.TrimSpace(broadcastID)
	if broadcastID == "" {
		return apperrors.New(apperrors.CodeInvalidArgument, "broadcast id is required")
	}
	switch status {
	case storage.DeliveryPending, storage.DeliveryDelivered, storage.DeliveryFailed:
	default:
		return apperrors.WithMetadata(apperrors.CodeInvalidArgument, "unknown delivery status", map[string]string{"status": status})
	}

	now := s.clock().UTC()
	records := make([]storage.DeliveryRecord, 0, len(recipients))
	for _, recipient := range recipients {
		recipient = strings.TrimSpace(recipient)
		if recipient == "" {
			continue
		}
		records = append(records, storage.DeliveryRecord{
			ID:          s.newID(),
			BroadcastID: broadcastID,
			Recipient:   recipient,
			Status:      status,
			UpdatedAt:   now,
		})
	}
	if len(records) == 0 {
		return nil
	}
	if err := s.store.PutDeliveries(ctx, records); err != nil {
		return fmt.Errorf("put deliveries: %w", err)
	}
	return nil
}

// Deliveries lists per-recipient delivery rows for one broadcast.
func (s *Service) Deliveries(ctx context.Context, broadcastID string) ([]storage.DeliveryRecord, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("broadcast service is not configured")
	}
	broadcastID = strings.TrimSpace(broadcastID)
	if broadcastID == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "broadcast id is required")
	}
	records, err := s.store.ListDeliveries(ctx, broadcastID)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	return records, nil
}

// DueBroadcasts lists scheduled broadcasts whose attempt time has arrived.
func (s *Service) DueBroadcasts(ctx context.Context, now time.Time, limit int) ([]storage.Broadcast, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("broadcast service is not configured")
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	broadcasts, err := s.store.ListDueBroadcasts(ctx, now.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("list due broadcasts: %w", err)
	}
	return broadcasts, nil
}

func (s *Service) transition(ctx context.Context, broadcastID string, to Status, mutate func(*storage.Broadcast)) (storage.Broadcast, error) {
	broadcast, err := s.Get(ctx, broadcastID)
	if err != nil {
		return storage.Broadcast{}, err
	}

	next, err := Transition(Status(broadcast.Status), to)
	if err != nil {
		return storage.Broadcast{}, err
	}
	broadcast.Status = string(next)
	if mutate != nil {
		mutate(&broadcast)
	}
	broadcast.UpdatedAt = s.clock().UTC()

	if err := s.store.PutBroadcast(ctx, broadcast); err != nil {
		return storage.Broadcast{}, fmt.Errorf("put broadcast: %w", err)
	}
	return broadcast, nil
}
