// Package cache is a TTL wrapper over a key-value store. A cached value is
// valid until its fixed expiry; there is no eviction beyond expiry.
package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotFound indicates no live entry exists for a key.
var ErrNotFound = errors.New("cache entry not found")

// Entry is one stored key-value pair with a fixed expiry.
type Entry struct {
	Key       string
	Value     []byte
	ExpiresAt time.Time
}

// Store is the persistence boundary for cache entries.
type Store interface {
	GetEntry(ctx context.Context, key string) (Entry, error)
	PutEntry(ctx context.Context, entry Entry) error
	DeleteEntry(ctx context.Context, key string) error
}

// Cache provides TTL get/set semantics over a Store.
type Cache struct {
	store Store
	clock func() time.Time
}

// New constructs a TTL cache. clock may be nil for wall time.
func New(store Store, clock func() time.Time) *Cache {
	if clock == nil {
		clock = time.Now
	}
	return &Cache{store: store, clock: clock}
}

// Get returns the live value for key. Expired entries miss and are lazily
// deleted; the delete error is intentionally dropped.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c == nil || c.store == nil {
		return nil, false, nil
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false, nil
	}
	entry, err := c.store.GetEntry(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if !entry.ExpiresAt.After(c.clock().UTC()) {
		_ = c.store.DeleteEntry(ctx, key)
		return nil, false, nil
	}
	return entry.Value, true, nil
}

// Set stores value under key for ttl. Non-positive ttl is rejected as a
// delete so stale values never linger.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c == nil || c.store == nil {
		return nil
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("cache key is required")
	}
	if ttl <= 0 {
		return c.store.DeleteEntry(ctx, key)
	}
	return c.store.PutEntry(ctx, Entry{
		Key:       key,
		Value:     value,
		ExpiresAt: c.clock().UTC().Add(ttl),
	})
}

// Delete removes the entry for key if present.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if c == nil || c.store == nil {
		return nil
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	return c.store.DeleteEntry(ctx, key)
}
