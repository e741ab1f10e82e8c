package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/halcyonlabs/inneros/internal/services/preferences/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "preferences.db"))
	if err != nil {
		t.Fatalf("open preference store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPutGetPreferences(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	at := time.Date(2026, 7, 15, 10, 0, 0, 0, time.UTC)

	record := storage.Preferences{
		OwnerUserID:     "ceo-1",
		TenantID:        "tenant-1",
		DashboardLayout: "compact",
		DigestFrequency: "weekly",
		FocusMetrics:    []string{"health", "occupancy"},
		NotifyOnHandoff: true,
		QuietHoursStart: "21:00",
		QuietHoursEnd:   "07:00",
		UpdatedAt:       at,
	}
	if err := store.PutPreferences(context.Background(), record); err != nil {
		t.Fatalf("put preferences: %v", err)
	}

	got, err := store.GetPreferences(context.Background(), "ceo-1")
	if err != nil {
		t.Fatalf("get preferences: %v", err)
	}
	if got.DigestFrequency != "weekly" || !got.NotifyOnHandoff {
		t.Errorf("got = %+v", got)
	}
	if len(got.FocusMetrics) != 2 || got.FocusMetrics[1] != "occupancy" {
		t.Errorf("metrics = %v", got.FocusMetrics)
	}

	record.DigestFrequency = "daily"
	record.UpdatedAt = at.Add(time.Hour)
	if err := store.PutPreferences(context.Background(), record); err != nil {
		t.Fatalf("put updated preferences: %v", err)
	}
	got, err = store.GetPreferences(context.Background(), "ceo-1")
	if err != nil {
		t.Fatalf("get updated preferences: %v", err)
	}
	if got.DigestFrequency != "daily" {
		t.Errorf("frequency = %q, want daily after upsert", got.DigestFrequency)
	}
}

func TestGetPreferencesNotFound(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	if _, err := store.GetPreferences(context.Background(), "nobody"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
