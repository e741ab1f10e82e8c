// Package storage defines persistence contracts for assessment results.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested assessment record is missing.
var ErrNotFound = errors.New("record not found")

// Assessment stores one scored assessment, at most one per user and kind.
type Assessment struct {
	ID         string
	TenantID   string
	UserID     string
	Kind       string
	Counts     map[string]int
	Total      int
	Primary    string
	Secondary  string
	Tied       bool
	Balanced   bool
	Confidence int
	// Reflection is the free-text answer the culture detector ran over,
	// empty when none was submitted.
	Reflection     string
	CultureContext string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Store persists scored assessment records.
type Store interface {
	PutAssessment(ctx context.Context, assessment Assessment) error
	GetAssessment(ctx context.Context, userID string, kind string) (Assessment, error)
	ListAssessmentsByUser(ctx context.Context, userID string) ([]Assessment, error)
}
