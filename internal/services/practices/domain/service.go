// Package domain manages the practice catalog and member phase progression.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/halcyonlabs/inneros/internal/platform/errors"
	"github.com/halcyonlabs/inneros/internal/platform/id"
	"github.com/halcyonlabs/inneros/internal/services/practices/storage"
)

const (
	maxTitleLength  = 160
	defaultPageSize = 20
	maxPageSize     = 100
)

// AssessmentChecker reports whether a member has recorded the assessment for
// a phase.
type AssessmentChecker interface {
	HasPhaseAssessment(ctx context.Context, userID string, phase int) (bool, error)
}

// Service coordinates the practice catalog and phase progression.
type Service struct {
	store       storage.Store
	assessments AssessmentChecker
	clock       func() time.Time
	newID       func() string
}

// NewService creates a practice service. The assessment checker is required
// for advancement checks.
func NewService(store storage.Store, assessments AssessmentChecker) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("practice store is required")
	}
	return &Service{
		store:       store,
		assessments: assessments,
		clock:       time.Now,
		newID:       id.NewID,
	}, nil
}

// CreateInput carries one new catalog practice. TimeText is free text and
// is parsed into a minutes range.
type CreateInput struct {
	TenantID     string
	Category     Category
	Title        string
	Instructions string
	TimeText     string
	Emergency    bool
}

// Create stores a catalog practice with derived time range, difficulty,
// temperaments, and pattern coverage.
func (s *Service) Create(ctx context.Context, input CreateInput) (storage.Practice, error) {
	if s == nil || s.store == nil {
		return storage.Practice{}, fmt.Errorf("practice service is not configured")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return storage.Practice{}, apperrors.New(apperrors.CodeInvalidArgument, "practice title is required")
	}
	if len([]rune(title)) > maxTitleLength {
		return storage.Practice{}, apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("practice title must be at most %d characters", maxTitleLength))
	}
	if !ValidCategory(input.Category) {
		return storage.Practice{}, apperrors.WithMetadata(apperrors.CodeInvalidArgument, "unknown practice category", map[string]string{"category": string(input.Category)})
	}

	instructions := strings.TrimSpace(input.Instructions)
	timeText := strings.TrimSpace(input.TimeText)
	timeMin, timeMax, timeKnown := ParseTimeCommitment(timeText)

	now := s.clock().UTC()
	practice := storage.Practice{
		ID:             s.newID(),
		TenantID:       strings.TrimSpace(input.TenantID),
		Category:       string(input.Category),
		Title:          title,
		Instructions:   instructions,
		TimeText:       timeText,
		TimeMinMinutes: timeMin,
		TimeMaxMinutes: timeMax,
		TimeKnown:      timeKnown,
		Difficulty:     string(InferDifficulty(timeMin, timeMax, timeKnown)),
		Temperaments:   InferTemperaments(title, instructions),
		Patterns:       PatternsFor(input.Category),
		Emergency:      input.Emergency,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.PutPractice(ctx, practice); err != nil {
		return storage.Practice{}, fmt.Errorf("put practice: %w", err)
	}
	return practice, nil
}

// Get loads one catalog practice.
func (s *Service) Get(ctx context.Context, practiceID string) (storage.Practice, error) {
	if s == nil || s.store == nil {
		return storage.Practice{}, fmt.Errorf("practice service is not configured")
	}
	practiceID = strings.TrimSpace(practiceID)
	if practiceID == "" {
		return storage.Practice{}, apperrors.New(apperrors.CodeInvalidArgument, "practice id is required")
	}
	practice, err := s.store.GetPractice(ctx, practiceID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.Practice{}, apperrors.New(apperrors.CodeNotFound, "practice not found")
		}
		return storage.Practice{}, fmt.Errorf("get practice: %w", err)
	}
	return practice, nil
}

// Delete removes one catalog practice.
func (s *Service) Delete(ctx context.Context, practiceID string) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("practice service is not configured")
	}
	practiceID = strings.TrimSpace(practiceID)
	if practiceID == "" {
		return apperrors.New(apperrors.CodeInvalidArgument, "practice id is required")
	}
	if err := s.store.DeletePractice(ctx, practiceID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.New(apperrors.CodeNotFound, "practice not found")
		}
		return fmt.Errorf("delete practice: %w", err)
	}
	return nil
}

// List returns one page of catalog practices, optionally filtered by
// category.
func (s *Service) List(ctx context.Context, tenantID string, category Category, pageSize int, pageToken string) (storage.PracticePage, error) {
	if s == nil || s.store == nil {
		return storage.PracticePage{}, fmt.Errorf("practice service is not configured")
	}
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return storage.PracticePage{}, apperrors.New(apperrors.CodeInvalidArgument, "tenant id is required")
	}
	if category != "" && !ValidCategory(category) {
		return storage.PracticePage{}, apperrors.WithMetadata(apperrors.CodeInvalidArgument, "unknown practice category", map[string]string{"category": string(category)})
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page, err := s.store.ListPractices(ctx, tenantID, string(category), pageSize, strings.TrimSpace(pageToken))
	if err != nil {
		return storage.PracticePage{}, fmt.Errorf("list practices: %w", err)
	}
	return page, nil
}

// RecordCompletion appends one completion for the member's current phase.
func (s *Service) RecordCompletion(ctx context.Context, userID string, practiceID string) (storage.Completion, error) {
	if s == nil || s.store == nil {
		return storage.Completion{}, fmt.Errorf("practice service is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return storage.Completion{}, apperrors.New(apperrors.CodeInvalidArgument, "user id is required")
	}
	practice, err := s.Get(ctx, practiceID)
	if err != nil {
		return storage.Completion{}, err
	}

	phase, err := s.currentPhase(ctx, userID)
	if err != nil {
		return storage.Completion{}, err
	}

	completion := storage.Completion{
		ID:          s.newID(),
		UserID:      userID,
		PracticeID:  practice.ID,
		Phase:       phase,
		CompletedAt: s.clock().UTC(),
	}
	if err := s.store.AppendCompletion(ctx, completion); err != nil {
		return storage.Completion{}, fmt.Errorf("append completion: %w", err)
	}
	return completion, nil
}

// CheckAdvance decides whether the member may advance past their current
// phase: completed-practice count meets the phase minimum and the phase
// assessment is recorded.
func (s *Service) CheckAdvance(ctx context.Context, userID string) (GateDecision, error) {
	if s == nil || s.store == nil {
		return GateDecision{}, fmt.Errorf("practice service is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return GateDecision{}, apperrors.New(apperrors.CodeInvalidArgument, "user id is required")
	}

	phase, err := s.currentPhase(ctx, userID)
	if err != nil {
		return GateDecision{}, err
	}
	completed, err := s.store.CountCompletions(ctx, userID, phase)
	if err != nil {
		return GateDecision{}, fmt.Errorf("count completions: %w", err)
	}

	recorded := false
	if s.assessments != nil {
		recorded, err = s.assessments.HasPhaseAssessment(ctx, userID, phase)
		if err != nil {
			return GateDecision{}, fmt.Errorf("check phase assessment: %w", err)
		}
	}

	return CheckGate(phase, completed, PhaseMinimum(phase), recorded), nil
}

// Advance moves the member to the next phase when the gate allows it.
func (s *Service) Advance(ctx context.Context, userID string) (storage.MemberPhase, error) {
	decision, err := s.CheckAdvance(ctx, userID)
	if err != nil {
		return storage.MemberPhase{}, err
	}
	if !decision.Eligible {
		return storage.MemberPhase{}, apperrors.WithMetadata(
			apperrors.CodeForbidden,
			"phase gate not met",
			map[string]string{
				"phase":     fmt.Sprintf("%d", decision.Phase),
				"completed": fmt.Sprintf("%d", decision.CompletedInPhase),
				"required":  fmt.Sprintf("%d", decision.RequiredInPhase),
			},
		)
	}

	memberPhase := storage.MemberPhase{
		UserID:    strings.TrimSpace(userID),
		Phase:     decision.Phase + 1,
		UpdatedAt: s.clock().UTC(),
	}
	if err := s.store.PutMemberPhase(ctx, memberPhase); err != nil {
		return storage.MemberPhase{}, fmt.Errorf("put member phase: %w", err)
	}
	return memberPhase, nil
}

func (s *Service) currentPhase(ctx context.Context, userID string) (int, error) {
	memberPhase, err := s.store.GetMemberPhase(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 1, nil
		}
		return 0, fmt.Errorf("get member phase: %w", err)
	}
	if memberPhase.Phase < 1 {
		return 1, nil
	}
	return memberPhase.Phase, nil
}
