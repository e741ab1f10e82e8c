package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/halcyonlabs/inneros/internal/platform/cache"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open cache store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPutGetDeleteEntry(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	expires := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	if err := store.PutEntry(context.Background(), cache.Entry{
		Key:       "dashboard:tenant-1",
		Value:     []byte(`{"health":82}`),
		ExpiresAt: expires,
	}); err != nil {
		t.Fatalf("put entry: %v", err)
	}

	entry, err := store.GetEntry(context.Background(), "dashboard:tenant-1")
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if string(entry.Value) != `{"health":82}` {
		t.Fatalf("unexpected value %q", entry.Value)
	}
	if !entry.ExpiresAt.Equal(expires) {
		t.Fatalf("expires_at = %v, want %v", entry.ExpiresAt, expires)
	}

	if err := store.DeleteEntry(context.Background(), "dashboard:tenant-1"); err != nil {
		t.Fatalf("delete entry: %v", err)
	}
	if _, err := store.GetEntry(context.Background(), "dashboard:tenant-1"); !errors.Is(err, cache.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestPutEntryUpserts(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	expires := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	for _, value := range []string{"one", "two"} {
		if err := store.PutEntry(context.Background(), cache.Entry{
			Key:       "k",
			Value:     []byte(value),
			ExpiresAt: expires,
		}); err != nil {
			t.Fatalf("put entry %q: %v", value, err)
		}
	}

	entry, err := store.GetEntry(context.Background(), "k")
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if string(entry.Value) != "two" {
		t.Fatalf("expected upserted value, got %q", entry.Value)
	}
}

func TestPurgeExpired(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	entries := []cache.Entry{
		{Key: "stale", Value: []byte("a"), ExpiresAt: now.Add(-time.Minute)},
		{Key: "live", Value: []byte("b"), ExpiresAt: now.Add(time.Minute)},
	}
	for _, entry := range entries {
		if err := store.PutEntry(context.Background(), entry); err != nil {
			t.Fatalf("put entry %q: %v", entry.Key, err)
		}
	}

	purged, err := store.PurgeExpired(context.Background(), now)
	if err != nil {
		t.Fatalf("purge expired: %v", err)
	}
	if purged != 1 {
		t.Fatalf("purged = %d, want 1", purged)
	}
	if _, err := store.GetEntry(context.Background(), "live"); err != nil {
		t.Fatalf("live entry should remain: %v", err)
	}
}
