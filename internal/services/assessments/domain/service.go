// Package domain scores assessments and persists the latest result per user
// and assessment kind.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/halcyonlabs/inneros/internal/platform/errors"
	"github.com/halcyonlabs/inneros/internal/platform/id"
	"github.com/halcyonlabs/inneros/internal/services/assessments/culture"
	"github.com/halcyonlabs/inneros/internal/services/assessments/storage"
)

// Service coordinates scoring, culture detection, and persistence.
type Service struct {
	store    storage.Store
	detector *culture.Detector
	clock    func() time.Time
	newID    func() string
}

// NewService creates an assessment service. The detector is optional; when
// nil, submissions skip culture detection.
func NewService(store storage.Store, detector *culture.Detector) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("assessment store is required")
	}
	return &Service{
		store:    store,
		detector: detector,
		clock:    time.Now,
		newID:    id.NewID,
	}, nil
}

// SubmitInput carries one assessment submission.
type SubmitInput struct {
	TenantID string
	UserID   string
	Kind     Kind
	Answers  []Answer
	// Reflection is an optional free-text answer used for culture signal
	// detection; it does not affect scoring.
	Reflection string
}

// Submit scores the submission and upserts the result for the user and kind.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (storage.Assessment, error) {
	if s == nil || s.store == nil {
		return storage.Assessment{}, fmt.Errorf("assessment service is not configured")
	}
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return storage.Assessment{}, apperrors.New(apperrors.CodeInvalidArgument, "user id is required")
	}

	result, err := Score(input.Kind, input.Answers)
	if err != nil {
		return storage.Assessment{}, err
	}

	now := s.clock().UTC()
	record := storage.Assessment{
		ID:         s.newID(),
		TenantID:   strings.TrimSpace(input.TenantID),
		UserID:     userID,
		Kind:       string(result.Kind),
		Counts:     result.Counts,
		Total:      result.Total,
		Primary:    result.Primary,
		Secondary:  result.Secondary,
		Tied:       result.Tied,
		Balanced:   result.Balanced,
		Confidence: result.Confidence,
		Reflection: strings.TrimSpace(input.Reflection),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if s.detector != nil && record.Reflection != "" {
		record.CultureContext = s.detector.Detect(record.Reflection).ContextBlock()
	}

	if err := s.store.PutAssessment(ctx, record); err != nil {
		return storage.Assessment{}, fmt.Errorf("put assessment: %w", err)
	}
	return record, nil
}

// Get returns the latest stored assessment for the user and kind.
func (s *Service) Get(ctx context.Context, userID string, kind Kind) (storage.Assessment, error) {
	if s == nil || s.store == nil {
		return storage.Assessment{}, fmt.Errorf("assessment service is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return storage.Assessment{}, apperrors.New(apperrors.CodeInvalidArgument, "user id is required")
	}
	if _, err := categoriesFor(kind); err != nil {
		return storage.Assessment{}, err
	}

	record, err := s.store.GetAssessment(ctx, userID, string(kind))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.Assessment{}, apperrors.New(apperrors.CodeNotFound, "assessment not found")
		}
		return storage.Assessment{}, fmt.Errorf("get assessment: %w", err)
	}
	return record, nil
}

// List returns all stored assessments for the user, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]storage.Assessment, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("assessment service is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "user id is required")
	}
	records, err := s.store.ListAssessmentsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	return records, nil
}
