// Package domain manages executive preference records. Every operation
// takes the caller's Principal and requires the admin role.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/halcyonlabs/inneros/internal/platform/errors"
	"github.com/halcyonlabs/inneros/internal/platform/requestctx"
	"github.com/halcyonlabs/inneros/internal/services/preferences/storage"
)

var validDigestFrequencies = map[string]bool{
	"":        true,
	"daily":   true,
	"weekly":  true,
	"monthly": true,
}

// Service coordinates executive preference persistence.
type Service struct {
	store storage.Store
	clock func() time.Time
}

// NewService creates a preference service.
func NewService(store storage.Store) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("preference store is required")
	}
	return &Service{store: store, clock: time.Now}, nil
}

// Get loads the caller's preference record. Admin only.
func (s *Service) Get(ctx context.Context, principal requestctx.Principal) (storage.Preferences, error) {
	if s == nil || s.store == nil {
		return storage.Preferences{}, fmt.Errorf("preference service is not configured")
	}
	if !principal.IsAdmin() {
		return storage.Preferences{}, apperrors.New(apperrors.CodeForbidden, "preferences require the admin role")
	}

	preferences, err := s.store.GetPreferences(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.Preferences{}, apperrors.New(apperrors.CodeNotFound, "preferences not found")
		}
		return storage.Preferences{}, fmt.Errorf("get preferences: %w", err)
	}
	return preferences, nil
}

// PutInput carries one preference record write.
type PutInput struct {
	DashboardLayout string
	DigestFrequency string
	FocusMetrics    []string
	NotifyOnHandoff bool
	QuietHoursStart string
	QuietHoursEnd   string
}

// Put writes the caller's preference record. Admin only.
func (s *Service) Put(ctx context.Context, principal requestctx.Principal, input PutInput) (storage.Preferences, error) {
	if s == nil || s.store == nil {
		return storage.Preferences{}, fmt.Errorf("preference service is not configured")
	}
	if !principal.IsAdmin() {
		return storage.Preferences{}, apperrors.New(apperrors.CodeForbidden, "preferences require the admin role")
	}

	frequency := strings.ToLower(strings.TrimSpace(input.DigestFrequency))
	if !validDigestFrequencies[frequency] {
		return storage.Preferences{}, apperrors.WithMetadata(apperrors.CodeInvalidArgument, "unknown digest frequency", map[string]string{"frequency": frequency})
	}

	metrics := make([]string, 0, len(input.FocusMetrics))
	for _, metric := range input.FocusMetrics {
		if metric = strings.TrimSpace(metric); metric != "" {
			metrics = append(metrics, metric)
		}
	}

	preferences := storage.Preferences{
		OwnerUserID:     principal.UserID,
		TenantID:        principal.TenantID,
		DashboardLayout: strings.TrimSpace(input.DashboardLayout),
		DigestFrequency: frequency,
		FocusMetrics:    metrics,
		NotifyOnHandoff: input.NotifyOnHandoff,
		QuietHoursStart: strings.TrimSpace(input.QuietHoursStart),
		QuietHoursEnd:   strings.TrimSpace(input.QuietHoursEnd),
		UpdatedAt:       s.clock().UTC(),
	}
	if err := s.store.PutPreferences(ctx, preferences); err != nil {
		return storage.Preferences{}, fmt.Errorf("put preferences: %w", err)
	}
	return preferences, nil
}
