package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	apperrors "github.com/halcyonlabs/inneros/internal/platform/errors"
	"github.com/halcyonlabs/inneros/internal/services/documents/storage"
)

type fakeStore struct {
	documents map[string]storage.Document
}

func newFakeStore() *fakeStore {
	return &fakeStore{documents: make(map[string]storage.Document)}
}

func (f *fakeStore) PutDocument(_ context.Context, document storage.Document) error {
	f.documents[document.ID] = document
	return nil
}

func (f *fakeStore) GetDocument(_ context.Context, documentID string) (storage.Document, error) {
	document, ok := f.documents[documentID]
	if !ok {
		return storage.Document{}, storage.ErrNotFound
	}
	return document, nil
}

func (f *fakeStore) DeleteDocument(_ context.Context, documentID string) error {
	if _, ok := f.documents[documentID]; !ok {
		return storage.ErrNotFound
	}
	delete(f.documents, documentID)
	return nil
}

func (f *fakeStore) ListDocuments(_ context.Context, tenantID string, pageSize int, _ string) (storage.DocumentPage, error) {
	var page storage.DocumentPage
	for _, document := range f.documents {
		if document.TenantID == tenantID && len(page.Documents) < pageSize {
			page.Documents = append(page.Documents, document)
		}
	}
	return page, nil
}

func (f *fakeStore) CountDocuments(_ context.Context, tenantID string) (int, error) {
	count := 0
	for _, document := range f.documents {
		if document.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

type fakeExtractor struct {
	text string
	err  error
	gotURL  string
}

func (f *fakeExtractor) ExtractText(_ context.Context, fileURL string) (string, error) {
	f.gotURL = fileURL
	return f.text, f.err
}

type fakeSuggestions struct {
	facts []string
	err   error
}

func (f *fakeSuggestions) ExtractFacts(_ context.Context, _ string) ([]string, error) {
	return f.facts, f.err
}

func newTestService(t *testing.T, store storage.Store, extractor TextExtractor, suggestions SuggestionReader) *Service {
	t.Helper()
	service, err := NewService(store, extractor, suggestions)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	service.clock = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	next := 0
	service.newID = func() string {
		next++
		return fmt.Sprintf("doc-%d", next)
	}
	service.logf = func(string, ...any) {}
	return service
}

func TestCreateDerivesMetrics(t *testing.T) {
	t.Parallel()

	service := newTestService(t, newFakeStore(), nil, nil)
	document, err := service.Create(context.Background(), CreateInput{
		TenantID: "tenant-1",
		Title:    "Operations Manual",
		Body:     "# Overview\n\nThe plan is simple. We act now.\n\n## Details\n\nMore words here.",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if document.WordCount != 12 {
		t.Errorf("word count = %d, want 12", document.WordCount)
	}
	wantSections := []string{"Overview", "Details"}
	if len(document.Sections) != 2 || document.Sections[0] != wantSections[0] || document.Sections[1] != wantSections[1] {
		t.Errorf("sections = %v, want %v", document.Sections, wantSections)
	}
	if document.FleschKincaidGrade == 0 || document.ReadingEase == 0 {
		t.Errorf("readability not derived: grade=%v ease=%v", document.FleschKincaidGrade, document.ReadingEase)
	}
}

func TestCreateExtractsTextFromUpload(t *testing.T) {
	t.Parallel()

	extractor := &fakeExtractor{text: "Extracted body with five words."}
	service := newTestService(t, newFakeStore(), extractor, nil)

	document, err := service.Create(context.Background(), CreateInput{
		Title:   "Uploaded Policy",
		FileURL: "https://files.example.com/policy.pdf",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if document.Body != extractor.text {
		t.Errorf("body = %q, want extracted text", document.Body)
	}
	if document.WordCount != 5 {
		t.Errorf("word count = %d, want 5", document.WordCount)
	}
	if extractor.gotURL != "https://files.example.com/policy.pdf" {
		t.Errorf("extractor called with %q", extractor.gotURL)
	}
}

func TestCreateFailsWhenExtractionFails(t *testing.T) {
	t.Parallel()

	extractor := &fakeExtractor{err: errors.New("upstream down")}
	service := newTestService(t, newFakeStore(), extractor, nil)

	_, err := service.Create(context.Background(), CreateInput{
		Title:   "Uploaded Policy",
		FileURL: "https://files.example.com/policy.pdf",
	})
	if err == nil {
		t.Fatal("expected extraction failure")
	}
}

func TestCreateRequiresTitle(t *testing.T) {
	t.Parallel()

	service := newTestService(t, newFakeStore(), nil, nil)
	_, err := service.Create(context.Background(), CreateInput{Body: "text"})
	if apperrors.CodeOf(err) != apperrors.CodeInvalidArgument {
		t.Errorf("err = %v, want code %s", err, apperrors.CodeInvalidArgument)
	}
}

func TestUpdateRecomputesMetrics(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	service := newTestService(t, store, nil, nil)
	created, err := service.Create(context.Background(), CreateInput{Title: "Doc", Body: "one two three"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newBody := "# Revised\n\none two three four five"
	updated, err := service.Update(context.Background(), UpdateInput{DocumentID: created.ID, Body: &newBody})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.WordCount != 6 {
		t.Errorf("word count = %d, want 6", updated.WordCount)
	}
	if len(updated.Sections) != 1 || updated.Sections[0] != "Revised" {
		t.Errorf("sections = %v, want [Revised]", updated.Sections)
	}
}

func TestGetNotFound(t *testing.T) {
	t.Parallel()

	service := newTestService(t, newFakeStore(), nil, nil)
	_, err := service.Get(context.Background(), "doc-404")
	if apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Errorf("err = %v, want code %s", err, apperrors.CodeNotFound)
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	service := newTestService(t, store, nil, nil)
	created, err := service.Create(context.Background(), CreateInput{Title: "Doc", Body: "text"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := service.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := service.Delete(context.Background(), created.ID); apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Errorf("second delete err = %v, want code %s", err, apperrors.CodeNotFound)
	}
}

func TestSuggestionsDegradeToEmpty(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	service := newTestService(t, store, nil, &fakeSuggestions{err: errors.New("webhook down")})
	created, err := service.Create(context.Background(), CreateInput{Title: "Doc", Body: "some text"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	facts, err := service.Suggestions(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("suggestions should degrade, got %v", err)
	}
	if facts != nil {
		t.Errorf("facts = %v, want nil on degradation", facts)
	}
}

func TestSuggestionsReturned(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	service := newTestService(t, store, nil, &fakeSuggestions{facts: []string{"tighten intro"}})
	created, err := service.Create(context.Background(), CreateInput{Title: "Doc", Body: "some text"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	facts, err := service.Suggestions(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("suggestions: %v", err)
	}
	if len(facts) != 1 || facts[0] != "tighten intro" {
		t.Errorf("facts = %v", facts)
	}
}
