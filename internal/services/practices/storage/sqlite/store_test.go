package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/halcyonlabs/inneros/internal/services/practices/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "practices.db"))
	if err != nil {
		t.Fatalf("open practice store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func samplePractice(id string, at time.Time) storage.Practice {
	return storage.Practice{
		ID:             id,
		TenantID:       "tenant-1",
		Category:       "faith-based",
		Title:          "Morning Prayer",
		Instructions:   "Pray in silence.",
		TimeText:       "5-30 minutes",
		TimeMinMinutes: 5,
		TimeMaxMinutes: 30,
		TimeKnown:      true,
		Difficulty:     "advanced",
		Temperaments:   []string{"sage"},
		Patterns:       []string{"past_prison", "compass_crisis"},
		CreatedAt:      at,
		UpdatedAt:      at,
	}
}

func TestPutGetDeletePractice(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	at := time.Date(2026, 7, 1, 7, 0, 0, 0, time.UTC)

	if err := store.PutPractice(context.Background(), samplePractice("prac-1", at)); err != nil {
		t.Fatalf("put practice: %v", err)
	}

	got, err := store.GetPractice(context.Background(), "prac-1")
	if err != nil {
		t.Fatalf("get practice: %v", err)
	}
	if got.Title != "Morning Prayer" || got.Difficulty != "advanced" {
		t.Errorf("title, difficulty = %q, %q", got.Title, got.Difficulty)
	}
	if !got.TimeKnown || got.TimeMinMinutes != 5 || got.TimeMaxMinutes != 30 {
		t.Errorf("time = %d-%d known=%v", got.TimeMinMinutes, got.TimeMaxMinutes, got.TimeKnown)
	}
	if len(got.Temperaments) != 1 || got.Temperaments[0] != "sage" {
		t.Errorf("temperaments = %v", got.Temperaments)
	}
	if len(got.Patterns) != 2 {
		t.Errorf("patterns = %v", got.Patterns)
	}

	if err := store.DeletePractice(context.Background(), "prac-1"); err != nil {
		t.Fatalf("delete practice: %v", err)
	}
	if _, err := store.GetPractice(context.Background(), "prac-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestListPracticesFiltersByCategory(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	at := time.Date(2026, 7, 1, 7, 0, 0, 0, time.UTC)
	faith := samplePractice("prac-1", at)
	monastic := samplePractice("prac-2", at)
	monastic.Category = "monastic-practices"
	for _, practice := range []storage.Practice{faith, monastic} {
		if err := store.PutPractice(context.Background(), practice); err != nil {
			t.Fatalf("put practice %s: %v", practice.ID, err)
		}
	}

	page, err := store.ListPractices(context.Background(), "tenant-1", "monastic-practices", 10, "")
	if err != nil {
		t.Fatalf("list practices: %v", err)
	}
	if len(page.Practices) != 1 || page.Practices[0].ID != "prac-2" {
		t.Errorf("filtered page = %+v", page.Practices)
	}

	all, err := store.ListPractices(context.Background(), "tenant-1", "", 10, "")
	if err != nil {
		t.Fatalf("list all practices: %v", err)
	}
	if len(all.Practices) != 2 {
		t.Errorf("all page = %d, want 2", len(all.Practices))
	}
}

func TestCompletionsAndPhases(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	at := time.Date(2026, 7, 1, 7, 0, 0, 0, time.UTC)

	for i := 1; i <= 3; i++ {
		err := store.AppendCompletion(context.Background(), storage.Completion{
			ID:          fmt.Sprintf("comp-%d", i),
			UserID:      "user-1",
			PracticeID:  "prac-1",
			Phase:       1,
			CompletedAt: at,
		})
		if err != nil {
			t.Fatalf("append completion %d: %v", i, err)
		}
	}
	if err := store.AppendCompletion(context.Background(), storage.Completion{
		ID: "comp-9", UserID: "user-1", PracticeID: "prac-1", Phase: 2, CompletedAt: at,
	}); err != nil {
		t.Fatalf("append phase 2 completion: %v", err)
	}

	count, err := store.CountCompletions(context.Background(), "user-1", 1)
	if err != nil {
		t.Fatalf("count completions: %v", err)
	}
	if count != 3 {
		t.Errorf("phase 1 count = %d, want 3", count)
	}

	if _, err := store.GetMemberPhase(context.Background(), "user-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unset phase, got %v", err)
	}
	if err := store.PutMemberPhase(context.Background(), storage.MemberPhase{
		UserID: "user-1", Phase: 2, UpdatedAt: at,
	}); err != nil {
		t.Fatalf("put member phase: %v", err)
	}
	memberPhase, err := store.GetMemberPhase(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get member phase: %v", err)
	}
	if memberPhase.Phase != 2 {
		t.Errorf("phase = %d, want 2", memberPhase.Phase)
	}
}
