package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	apperrors "github.com/halcyonlabs/inneros/internal/platform/errors"
	"github.com/halcyonlabs/inneros/internal/services/assessments/culture"
	"github.com/halcyonlabs/inneros/internal/services/assessments/storage"
)

type fakeStore struct {
	records map[string]storage.Assessment
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]storage.Assessment)}
}

func storeKey(userID string, kind string) string {
	return userID + "|" + kind
}

func (f *fakeStore) PutAssessment(_ context.Context, assessment storage.Assessment) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.records[storeKey(assessment.UserID, assessment.Kind)] = assessment
	return nil
}

func (f *fakeStore) GetAssessment(_ context.Context, userID string, kind string) (storage.Assessment, error) {
	record, ok := f.records[storeKey(userID, kind)]
	if !ok {
		return storage.Assessment{}, storage.ErrNotFound
	}
	return record, nil
}

func (f *fakeStore) ListAssessmentsByUser(_ context.Context, userID string) ([]storage.Assessment, error) {
	var records []storage.Assessment
	for _, record := range f.records {
		if record.UserID == userID {
			records = append(records, record)
		}
	}
	return records, nil
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func sequentialIDGenerator() func() string {
	next := 0
	return func() string {
		next++
		return fmt.Sprintf("asmt-%d", next)
	}
}

func newTestService(t *testing.T, store storage.Store, detector *culture.Detector) *Service {
	t.Helper()
	service, err := NewService(store, detector)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	service.clock = fixedClock(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	service.newID = sequentialIDGenerator()
	return service
}

func TestSubmitScoresAndPersists(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	service := newTestService(t, store, nil)

	record, err := service.Submit(context.Background(), SubmitInput{
		TenantID: "tenant-1",
		UserID:   " user-1 ",
		Kind:     KindIdentity,
		Answers: []Answer{
			{Category: "past_prison", Weight: 5},
			{Category: "success_sabotage", Weight: 2},
			{Category: "compass_crisis", Weight: 1},
		},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if record.UserID != "user-1" {
		t.Errorf("user id = %q, want trimmed user-1", record.UserID)
	}
	if record.Primary != "past_prison" || record.Confidence != 63 {
		t.Errorf("primary, confidence = %q, %d, want past_prison, 63", record.Primary, record.Confidence)
	}
	if record.ID != "asmt-1" {
		t.Errorf("id = %q, want asmt-1", record.ID)
	}

	stored, err := store.GetAssessment(context.Background(), "user-1", "identity")
	if err != nil {
		t.Fatalf("stored record missing: %v", err)
	}
	if stored.Confidence != 63 {
		t.Errorf("stored confidence = %d, want 63", stored.Confidence)
	}
}

func TestSubmitRunsCultureDetection(t *testing.T) {
	t.Parallel()

	detector, err := culture.NewDetector()
	if err != nil {
		t.Fatalf("new detector: %v", err)
	}
	service := newTestService(t, newFakeStore(), detector)

	record, err := service.Submit(context.Background(), SubmitInput{
		UserID:     "user-1",
		Kind:       KindIdentity,
		Answers:    []Answer{{Category: "past_prison", Weight: 4}},
		Reflection: "my abuela always said family comes first",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !strings.Contains(record.CultureContext, "latino_hispanic") {
		t.Errorf("culture context %q does not mention latino_hispanic", record.CultureContext)
	}
}

func TestSubmitWithoutReflectionSkipsDetection(t *testing.T) {
	t.Parallel()

	detector, err := culture.NewDetector()
	if err != nil {
		t.Fatalf("new detector: %v", err)
	}
	service := newTestService(t, newFakeStore(), detector)

	record, err := service.Submit(context.Background(), SubmitInput{
		UserID:  "user-1",
		Kind:    KindTemperament,
		Answers: []Answer{{Category: "sage", Weight: 1}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if record.CultureContext != "" {
		t.Errorf("culture context = %q, want empty", record.CultureContext)
	}
}

func TestSubmitRejectsMissingUser(t *testing.T) {
	t.Parallel()

	service := newTestService(t, newFakeStore(), nil)
	_, err := service.Submit(context.Background(), SubmitInput{
		Kind:    KindIdentity,
		Answers: []Answer{{Category: "past_prison", Weight: 1}},
	})
	if apperrors.CodeOf(err) != apperrors.CodeInvalidArgument {
		t.Errorf("err = %v, want code %s", err, apperrors.CodeInvalidArgument)
	}
}

func TestSubmitPropagatesScoringErrors(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	service := newTestService(t, store, nil)
	_, err := service.Submit(context.Background(), SubmitInput{
		UserID: "user-1",
		Kind:   KindIdentity,
	})
	if apperrors.CodeOf(err) != apperrors.CodeAssessmentNoAnswers {
		t.Errorf("err = %v, want code %s", err, apperrors.CodeAssessmentNoAnswers)
	}
	if len(store.records) != 0 {
		t.Error("failed submission should not persist a record")
	}
}

func TestSubmitWrapsStoreErrors(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.putErr = errors.New("disk full")
	service := newTestService(t, store, nil)
	_, err := service.Submit(context.Background(), SubmitInput{
		UserID:  "user-1",
		Kind:    KindIdentity,
		Answers: []Answer{{Category: "past_prison", Weight: 1}},
	})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("err = %v, want wrapped store failure", err)
	}
}

func TestGetMapsMissingRecordToNotFound(t *testing.T) {
	t.Parallel()

	service := newTestService(t, newFakeStore(), nil)
	_, err := service.Get(context.Background(), "user-404", KindIdentity)
	if apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Errorf("err = %v, want code %s", err, apperrors.CodeNotFound)
	}
}

func TestGetRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	service := newTestService(t, newFakeStore(), nil)
	_, err := service.Get(context.Background(), "user-1", Kind("mood"))
	if apperrors.CodeOf(err) != apperrors.CodeAssessmentUnknownKind {
		t.Errorf("err = %v, want code %s", err, apperrors.CodeAssessmentUnknownKind)
	}
}
