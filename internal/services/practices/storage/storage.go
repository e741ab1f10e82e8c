// Package storage defines persistence contracts for practice catalog and
// member progress state.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested practice record is missing.
var ErrNotFound = errors.New("record not found")

// Practice stores one catalog practice with its derived attributes.
type Practice struct {
	ID             string
	TenantID       string
	Category       string
	Title          string
	Instructions   string
	TimeText       string
	TimeMinMinutes int
	TimeMaxMinutes int
	TimeKnown      bool
	Difficulty     string
	Temperaments   []string
	Patterns       []string
	Emergency      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PracticePage stores one page of catalog practices.
type PracticePage struct {
	Practices     []Practice
	NextPageToken string
}

// Completion stores one member practice completion.
type Completion struct {
	ID          string
	UserID      string
	PracticeID  string
	Phase       int
	CompletedAt time.Time
}

// MemberPhase stores a member's current progression phase.
type MemberPhase struct {
	UserID    string
	Phase     int
	UpdatedAt time.Time
}

// Store persists the practice catalog and member progress.
type Store interface {
	PutPractice(ctx context.Context, practice Practice) error
	GetPractice(ctx context.Context, practiceID string) (Practice, error)
	DeletePractice(ctx context.Context, practiceID string) error
	ListPractices(ctx context.Context, tenantID string, category string, pageSize int, pageToken string) (PracticePage, error)

	AppendCompletion(ctx context.Context, completion Completion) error
	CountCompletions(ctx context.Context, userID string, phase int) (int, error)

	GetMemberPhase(ctx context.Context, userID string) (MemberPhase, error)
	PutMemberPhase(ctx context.Context, memberPhase MemberPhase) error
}
