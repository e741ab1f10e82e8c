package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/halcyonlabs/inneros/internal/services/binders/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "binders.db"))
	if err != nil {
		t.Fatalf("open binder store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleBinder(id string, at time.Time) storage.Binder {
	return storage.Binder{
		ID:           id,
		TenantID:     "tenant-1",
		Title:        "Q3 Compliance Binder",
		PreparedFor:  "Morgan Reyes",
		DocumentIDs:  []string{"doc-1", "doc-2"},
		PropertyIDs:  []string{"prop-1"},
		Status:       storage.StatusPending,
		PageEstimate: 3,
		CreatedAt:    at,
		UpdatedAt:    at,
	}
}

func TestPutGetDeleteBinder(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	at := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)

	if err := store.PutBinder(context.Background(), sampleBinder("bind-1", at)); err != nil {
		t.Fatalf("put binder: %v", err)
	}

	got, err := store.GetBinder(context.Background(), "bind-1")
	if err != nil {
		t.Fatalf("get binder: %v", err)
	}
	if got.Title != "Q3 Compliance Binder" || got.Status != storage.StatusPending {
		t.Errorf("title, status = %q, %q", got.Title, got.Status)
	}
	if len(got.DocumentIDs) != 2 || got.DocumentIDs[0] != "doc-1" {
		t.Errorf("document ids = %v", got.DocumentIDs)
	}
	if len(got.PropertyIDs) != 1 || got.PropertyIDs[0] != "prop-1" {
		t.Errorf("property ids = %v", got.PropertyIDs)
	}
	if got.PageEstimate != 3 || !got.GeneratedAt.IsZero() {
		t.Errorf("pages, generated = %d, %v", got.PageEstimate, got.GeneratedAt)
	}

	if err := store.DeleteBinder(context.Background(), "bind-1"); err != nil {
		t.Fatalf("delete binder: %v", err)
	}
	if _, err := store.GetBinder(context.Background(), "bind-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.DeleteBinder(context.Background(), "bind-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestPutBinderUpsertRecordsGeneration(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	created := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	generated := created.Add(time.Hour)

	binder := sampleBinder("bind-1", created)
	if err := store.PutBinder(context.Background(), binder); err != nil {
		t.Fatalf("put binder: %v", err)
	}

	binder.Status = storage.StatusCompleted
	binder.GeneratedAt = generated
	binder.UpdatedAt = generated
	if err := store.PutBinder(context.Background(), binder); err != nil {
		t.Fatalf("update binder: %v", err)
	}

	got, err := store.GetBinder(context.Background(), "bind-1")
	if err != nil {
		t.Fatalf("get binder: %v", err)
	}
	if got.Status != storage.StatusCompleted || !got.GeneratedAt.Equal(generated) {
		t.Errorf("status, generated = %q, %v", got.Status, got.GeneratedAt)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("created_at = %v, want preserved %v", got.CreatedAt, created)
	}
}

func TestListBindersPaginates(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	at := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)

	for i := 1; i <= 3; i++ {
		if err := store.PutBinder(context.Background(), sampleBinder(fmt.Sprintf("bind-%d", i), at)); err != nil {
			t.Fatalf("put binder %d: %v", i, err)
		}
	}

	first, err := store.ListBinders(context.Background(), "tenant-1", 2, "")
	if err != nil {
		t.Fatalf("list first page: %v", err)
	}
	if len(first.Binders) != 2 || first.NextPageToken != "bind-2" {
		t.Fatalf("first page = %d token %q", len(first.Binders), first.NextPageToken)
	}

	second, err := store.ListBinders(context.Background(), "tenant-1", 2, first.NextPageToken)
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(second.Binders) != 1 || second.Binders[0].ID != "bind-3" || second.NextPageToken != "" {
		t.Fatalf("second page = %+v token %q", second.Binders, second.NextPageToken)
	}

	count, err := store.CountBinders(context.Background(), "tenant-1")
	if err != nil {
		t.Fatalf("count binders: %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
}
