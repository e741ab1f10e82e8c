package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/halcyonlabs/inneros/internal/platform/audit"
	"github.com/halcyonlabs/inneros/internal/platform/edge"
	"github.com/halcyonlabs/inneros/internal/services/broadcasts/domain"
	"github.com/halcyonlabs/inneros/internal/services/broadcasts/storage"
	"go.uber.org/goleak"
)

type fakeStore struct {
	broadcasts map[string]storage.Broadcast
	deliveries map[string]storage.DeliveryRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		broadcasts: make(map[string]storage.Broadcast),
		deliveries: make(map[string]storage.DeliveryRecord),
	}
}

func (f *fakeStore) PutBroadcast(_ context.Context, broadcast storage.Broadcast) error {
	f.broadcasts[broadcast.ID] = broadcast
	return nil
}

func (f *fakeStore) GetBroadcast(_ context.Context, broadcastID string) (storage.Broadcast, error) {
	broadcast, ok := f.broadcasts[broadcastID]
	if !ok {
		return storage.Broadcast{}, storage.ErrNotFound
	}
	return broadcast, nil
}

func (f *fakeStore) ListBroadcasts(_ context.Context, tenantID string, pageSize int, pageToken string) (storage.BroadcastPage, error) {
	return storage.BroadcastPage{}, nil
}

func (f *fakeStore) ListDueBroadcasts(_ context.Context, now time.Time, limit int) ([]storage.Broadcast, error) {
	var due []storage.Broadcast
	for _, broadcast := range f.broadcasts {
		if broadcast.Status == "scheduled" && !broadcast.NextAttemptAt.IsZero() && !broadcast.NextAttemptAt.After(now) {
			due = append(due, broadcast)
		}
	}
	return due, nil
}

func (f *fakeStore) CountBroadcasts(_ context.Context, tenantID string) (int, error) {
	return len(f.broadcasts), nil
}

func (f *fakeStore) PutDeliveries(_ context.Context, records []storage.DeliveryRecord) error {
	for _, record := range records {
		f.deliveries[record.BroadcastID+"|"+record.Recipient] = record
	}
	return nil
}

func (f *fakeStore) ListDeliveries(_ context.Context, broadcastID string) ([]storage.DeliveryRecord, error) {
	var records []storage.DeliveryRecord
	for _, record := range f.deliveries {
		if record.BroadcastID == broadcastID {
			records = append(records, record)
		}
	}
	return records, nil
}

type fakeDeliverer struct {
	requests []edge.DeliveryRequest
	err      error
}

func (f *fakeDeliverer) DeliverBroadcast(_ context.Context, req edge.DeliveryRequest) (edge.DeliveryResult, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return edge.DeliveryResult{}, f.err
	}
	return edge.DeliveryResult{Delivered: len(req.Recipients)}, nil
}

type fakeAuditStore struct {
	events []audit.Event
}

func (f *fakeAuditStore) AppendAuditEvent(_ context.Context, event audit.Event) error {
	f.events = append(f.events, event)
	return nil
}

func seedScheduled(store *fakeStore, id string, recipients []string, attempts int) {
	at := time.Date(2026, 7, 1, 11, 0, 0, 0, time.UTC)
	store.broadcasts[id] = storage.Broadcast{
		ID:            id,
		TenantID:      "tenant-1",
		AuthorUserID:  "user-1",
		Subject:       "Retreat schedule",
		Body:          "Doors open at nine.",
		Status:        "scheduled",
		Recipients:    recipients,
		Attempts:      attempts,
		ScheduledAt:   at,
		NextAttemptAt: at,
		CreatedAt:     at,
		UpdatedAt:     at,
	}
}

func newTestWorker(t *testing.T, store *fakeStore, deliverer Deliverer, auditStore audit.Store, cfg Config) *Worker {
	t.Helper()
	service, err := domain.NewService(store)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	var emitter *audit.Emitter
	if auditStore != nil {
		emitter = audit.NewEmitter(auditStore)
	}
	worker, err := NewWorker(service, deliverer, emitter, cfg)
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}
	worker.clock = func() time.Time { return time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC) }
	worker.logf = func(format string, args ...any) {}
	return worker
}

func TestProcessDueDeliversInChunks(t *testing.T) {
	store := newFakeStore()
	recipients := make([]string, 5)
	for i := range recipients {
		recipients[i] = string(rune('a'+i)) + "@example.com"
	}
	seedScheduled(store, "bc-1", recipients, 0)

	deliverer := &fakeDeliverer{}
	auditStore := &fakeAuditStore{}
	worker := newTestWorker(t, store, deliverer, auditStore, Config{ChunkSize: 2})

	if err := worker.ProcessDue(context.Background()); err != nil {
		t.Fatalf("process due: %v", err)
	}

	if len(deliverer.requests) != 3 {
		t.Fatalf("delivery calls = %d, want 3", len(deliverer.requests))
	}
	if len(deliverer.requests[0].Recipients) != 2 || len(deliverer.requests[2].Recipients) != 1 {
		t.Fatalf("chunk sizes = %d, %d, %d",
			len(deliverer.requests[0].Recipients), len(deliverer.requests[1].Recipients), len(deliverer.requests[2].Recipients))
	}

	broadcast := store.broadcasts["bc-1"]
	if broadcast.Status != "sent" || broadcast.Attempts != 1 || broadcast.SentAt.IsZero() {
		t.Fatalf("broadcast = %+v", broadcast)
	}
	if broadcast.FailureDetail != "" {
		t.Fatalf("failure detail = %q on clean delivery", broadcast.FailureDetail)
	}

	records, _ := store.ListDeliveries(context.Background(), "bc-1")
	if len(records) != 5 {
		t.Fatalf("deliveries = %d, want 5", len(records))
	}
	for _, record := range records {
		if record.Status != storage.DeliveryDelivered {
			t.Errorf("delivery %q status = %q", record.Recipient, record.Status)
		}
	}

	var actions []string
	for _, event := range auditStore.events {
		actions = append(actions, event.Action)
	}
	if len(actions) != 2 || actions[0] != "broadcast.sending" || actions[1] != "broadcast.sent" {
		t.Fatalf("audit actions = %v", actions)
	}
}

func TestProcessDueReschedulesOnFailure(t *testing.T) {
	store := newFakeStore()
	seedScheduled(store, "bc-1", []string{"ana@example.com"}, 0)

	deliverer := &fakeDeliverer{err: errors.New("edge unavailable")}
	worker := newTestWorker(t, store, deliverer, nil, Config{MaxAttempts: 3})

	if err := worker.ProcessDue(context.Background()); err != nil {
		t.Fatalf("process due: %v", err)
	}

	broadcast := store.broadcasts["bc-1"]
	if broadcast.Status != "scheduled" || broadcast.Attempts != 1 {
		t.Fatalf("broadcast = %q attempts %d", broadcast.Status, broadcast.Attempts)
	}
	if !broadcast.NextAttemptAt.After(worker.clock()) {
		t.Fatalf("next attempt %v not after now", broadcast.NextAttemptAt)
	}
	if records, _ := store.ListDeliveries(context.Background(), "bc-1"); len(records) != 0 {
		t.Fatalf("deliveries recorded on retryable failure: %v", records)
	}
}

func TestProcessDueGivesUpAfterMaxAttempts(t *testing.T) {
	store := newFakeStore()
	seedScheduled(store, "bc-1", []string{"ana@example.com", "ben@example.com"}, 0)

	deliverer := &fakeDeliverer{err: errors.New("edge unavailable")}
	auditStore := &fakeAuditStore{}
	worker := newTestWorker(t, store, deliverer, auditStore, Config{MaxAttempts: 1})

	if err := worker.ProcessDue(context.Background()); err != nil {
		t.Fatalf("process due: %v", err)
	}

	broadcast := store.broadcasts["bc-1"]
	if broadcast.Status != "sent" || broadcast.Attempts != 1 {
		t.Fatalf("broadcast = %q attempts %d", broadcast.Status, broadcast.Attempts)
	}
	if !strings.Contains(broadcast.FailureDetail, "edge unavailable") {
		t.Fatalf("failure detail = %q, want the delivery error", broadcast.FailureDetail)
	}

	records, _ := store.ListDeliveries(context.Background(), "bc-1")
	if len(records) != 2 {
		t.Fatalf("deliveries = %d, want 2", len(records))
	}
	for _, record := range records {
		if record.Status != storage.DeliveryFailed {
			t.Errorf("delivery %q status = %q", record.Recipient, record.Status)
		}
	}

	var sawExhausted bool
	for _, event := range auditStore.events {
		if event.Action == "broadcast.delivery_exhausted" && event.Severity == audit.SeverityError {
			sawExhausted = true
		}
	}
	if !sawExhausted {
		t.Fatalf("audit events = %+v, want delivery_exhausted", auditStore.events)
	}
}

func TestStartStopsCleanly(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newFakeStore()
	worker := newTestWorker(t, store, &fakeDeliverer{}, nil, Config{PollInterval: 10 * time.Millisecond})

	cancel, done := worker.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestRetryDelayGrowsAndCaps(t *testing.T) {
	first := retryDelay(1)
	if first < 500*time.Millisecond || first > 2*time.Second {
		t.Fatalf("first delay = %v", first)
	}
	late := retryDelay(20)
	if late > 2*time.Minute {
		t.Fatalf("late delay = %v exceeds cap", late)
	}
}
