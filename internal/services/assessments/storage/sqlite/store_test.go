package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/halcyonlabs/inneros/internal/services/assessments/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "assessments.db"))
	if err != nil {
		t.Fatalf("open assessment store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleAssessment(at time.Time) storage.Assessment {
	return storage.Assessment{
		ID:       "asmt-1",
		TenantID: "tenant-1",
		UserID:   "user-1",
		Kind:     "identity",
		Counts: map[string]int{
			"past_prison":        5,
			"success_sabotage":   2,
			"compass_crisis":     1,
			"identity_collision": 0,
		},
		Total:          8,
		Primary:        "past_prison",
		Secondary:      "success_sabotage",
		Confidence:     63,
		Reflection:     "my abuela always said to rest",
		CultureContext: "Cultural context: latino_hispanic",
		CreatedAt:      at,
		UpdatedAt:      at,
	}
}

func TestPutGetAssessment(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	at := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

	if err := store.PutAssessment(context.Background(), sampleAssessment(at)); err != nil {
		t.Fatalf("put assessment: %v", err)
	}

	got, err := store.GetAssessment(context.Background(), "user-1", "identity")
	if err != nil {
		t.Fatalf("get assessment: %v", err)
	}
	if got.Primary != "past_prison" || got.Secondary != "success_sabotage" {
		t.Errorf("primary, secondary = %q, %q", got.Primary, got.Secondary)
	}
	if got.Confidence != 63 || got.Total != 8 {
		t.Errorf("confidence, total = %d, %d, want 63, 8", got.Confidence, got.Total)
	}
	if got.Counts["past_prison"] != 5 {
		t.Errorf("past_prison count = %d, want 5", got.Counts["past_prison"])
	}
	if got.Tied || got.Balanced {
		t.Errorf("tied, balanced = %v, %v, want false, false", got.Tied, got.Balanced)
	}
	if !got.CreatedAt.Equal(at) || !got.UpdatedAt.Equal(at) {
		t.Errorf("timestamps = %v, %v, want %v", got.CreatedAt, got.UpdatedAt, at)
	}
}

func TestPutAssessmentUpsertsByUserAndKind(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	first := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
	second := first.Add(48 * time.Hour)

	if err := store.PutAssessment(context.Background(), sampleAssessment(first)); err != nil {
		t.Fatalf("put assessment: %v", err)
	}

	updated := sampleAssessment(second)
	updated.ID = "asmt-2"
	updated.Primary = "success_sabotage"
	updated.Confidence = 50
	if err := store.PutAssessment(context.Background(), updated); err != nil {
		t.Fatalf("put updated assessment: %v", err)
	}

	got, err := store.GetAssessment(context.Background(), "user-1", "identity")
	if err != nil {
		t.Fatalf("get assessment: %v", err)
	}
	if got.Primary != "success_sabotage" || got.Confidence != 50 {
		t.Errorf("primary, confidence = %q, %d, want success_sabotage, 50", got.Primary, got.Confidence)
	}
	// The original row creation time survives the upsert.
	if !got.CreatedAt.Equal(first) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, first)
	}
	if !got.UpdatedAt.Equal(second) {
		t.Errorf("updated_at = %v, want %v", got.UpdatedAt, second)
	}
}

func TestGetAssessmentNotFound(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	if _, err := store.GetAssessment(context.Background(), "user-404", "identity"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListAssessmentsByUser(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	at := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

	identity := sampleAssessment(at)
	temperament := sampleAssessment(at.Add(time.Hour))
	temperament.ID = "asmt-3"
	temperament.Kind = "temperament"
	temperament.Primary = "sage"
	temperament.Secondary = ""
	other := sampleAssessment(at)
	other.ID = "asmt-4"
	other.UserID = "user-2"

	for _, assessment := range []storage.Assessment{identity, temperament, other} {
		if err := store.PutAssessment(context.Background(), assessment); err != nil {
			t.Fatalf("put assessment %s: %v", assessment.ID, err)
		}
	}

	got, err := store.ListAssessmentsByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("list assessments: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Kind != "temperament" || got[1].Kind != "identity" {
		t.Errorf("order = %q, %q, want temperament, identity", got[0].Kind, got[1].Kind)
	}
}
