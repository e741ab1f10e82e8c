// Package domain manages document records and their derived reading metrics.
package domain

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	apperrors "github.com/halcyonlabs/inneros/internal/platform/errors"
	"github.com/halcyonlabs/inneros/internal/platform/id"
	"github.com/halcyonlabs/inneros/internal/services/documents/storage"
)

const (
	maxTitleLength  = 200
	defaultPageSize = 20
	maxPageSize     = 100
)

// TextExtractor pulls plain text out of an uploaded file.
type TextExtractor interface {
	ExtractText(ctx context.Context, fileURL string) (string, error)
}

// SuggestionReader returns optional AI writing suggestions for a document.
type SuggestionReader interface {
	ExtractFacts(ctx context.Context, text string) ([]string, error)
}

// Service coordinates document persistence and derived metrics.
type Service struct {
	store       storage.Store
	extractor   TextExtractor
	suggestions SuggestionReader
	clock       func() time.Time
	newID       func() string
	logf        func(format string, args ...any)
}

// NewService creates a document service. Extractor and suggestions are
// optional.
func NewService(store storage.Store, extractor TextExtractor, suggestions SuggestionReader) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("document store is required")
	}
	return &Service{
		store:       store,
		extractor:   extractor,
		suggestions: suggestions,
		clock:       time.Now,
		newID:       id.NewID,
		logf:        log.Printf,
	}, nil
}

// CreateInput carries one new document.
type CreateInput struct {
	TenantID    string
	OwnerUserID string
	Title       string
	Body        string
	// FileURL points at an uploaded file; when set and Body is empty, the
	// body is fetched through the text extractor.
	FileURL string
}

// Create stores a new document with derived word count, sections, and
// readability metrics.
func (s *Service) Create(ctx context.Context, input CreateInput) (storage.Document, error) {
	if s == nil || s.store == nil {
		return storage.Document{}, fmt.Errorf("document service is not configured")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return storage.Document{}, apperrors.New(apperrors.CodeInvalidArgument, "document title is required")
	}
	if len([]rune(title)) > maxTitleLength {
		return storage.Document{}, apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("document title must be at most %d characters", maxTitleLength))
	}

	body := input.Body
	fileURL := strings.TrimSpace(input.FileURL)
	if strings.TrimSpace(body) == "" && fileURL != "" {
		if s.extractor == nil {
			return storage.Document{}, apperrors.New(apperrors.CodeUpstreamUnavailable, "text extraction is not configured")
		}
		extracted, err := s.extractor.ExtractText(ctx, fileURL)
		if err != nil {
			return storage.Document{}, fmt.Errorf("extract document text: %w", err)
		}
		body = extracted
	}

	now := s.clock().UTC()
	document := storage.Document{
		ID:          s.newID(),
		TenantID:    strings.TrimSpace(input.TenantID),
		OwnerUserID: strings.TrimSpace(input.OwnerUserID),
		Title:       title,
		Body:        body,
		SourceURL:   fileURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	deriveMetrics(&document)

	if err := s.store.PutDocument(ctx, document); err != nil {
		return storage.Document{}, fmt.Errorf("put document: %w", err)
	}
	return document, nil
}

// UpdateInput carries edits to one document. Empty fields keep their stored
// values.
type UpdateInput struct {
	DocumentID string
	Title      string
	Body       *string
}

// Update edits a stored document and recomputes its derived metrics.
func (s *Service) Update(ctx context.Context, input UpdateInput) (storage.Document, error) {
	if s == nil || s.store == nil {
		return storage.Document{}, fmt.Errorf("document service is not configured")
	}
	document, err := s.Get(ctx, input.DocumentID)
	if err != nil {
		return storage.Document{}, err
	}

	if title := strings.TrimSpace(input.Title); title != "" {
		if len([]rune(title)) > maxTitleLength {
			return storage.Document{}, apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("document title must be at most %d characters", maxTitleLength))
		}
		document.Title = title
	}
	if input.Body != nil {
		document.Body = *input.Body
	}
	document.UpdatedAt = s.clock().UTC()
	deriveMetrics(&document)

	if err := s.store.PutDocument(ctx, document); err != nil {
		return storage.Document{}, fmt.Errorf("put document: %w", err)
	}
	return document, nil
}

// Get loads one document by ID.
func (s *Service) Get(ctx context.Context, documentID string) (storage.Document, error) {
	if s == nil || s.store == nil {
		return storage.Document{}, fmt.Errorf("document service is not configured")
	}
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return storage.Document{}, apperrors.New(apperrors.CodeInvalidArgument, "document id is required")
	}
	document, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.Document{}, apperrors.New(apperrors.CodeNotFound, "document not found")
		}
		return storage.Document{}, fmt.Errorf("get document: %w", err)
	}
	return document, nil
}

// Delete removes one document by ID.
func (s *Service) Delete(ctx context.Context, documentID string) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("document service is not configured")
	}
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return apperrors.New(apperrors.CodeInvalidArgument, "document id is required")
	}
	if err := s.store.DeleteDocument(ctx, documentID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.New(apperrors.CodeNotFound, "document not found")
		}
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// List returns one page of tenant documents.
func (s *Service) List(ctx context.Context, tenantID string, pageSize int, pageToken string) (storage.DocumentPage, error) {
	if s == nil || s.store == nil {
		return storage.DocumentPage{}, fmt.Errorf("document service is not configured")
	}
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return storage.DocumentPage{}, apperrors.New(apperrors.CodeInvalidArgument, "tenant id is required")
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page, err := s.store.ListDocuments(ctx, tenantID, pageSize, strings.TrimSpace(pageToken))
	if err != nil {
		return storage.DocumentPage{}, fmt.Errorf("list documents: %w", err)
	}
	return page, nil
}

// Suggestions returns optional AI suggestions for a document. Suggestion
// failures degrade to an empty list.
func (s *Service) Suggestions(ctx context.Context, documentID string) ([]string, error) {
	document, err := s.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if s.suggestions == nil || strings.TrimSpace(document.Body) == "" {
		return nil, nil
	}
	facts, err := s.suggestions.ExtractFacts(ctx, document.Body)
	if err != nil {
		s.logf("document suggestions unavailable for %s: %v", document.ID, err)
		return nil, nil
	}
	return facts, nil
}

func deriveMetrics(document *storage.Document) {
	document.WordCount = CountWords(document.Body)
	sections := ExtractSections(document.Body)
	titles := make([]string, 0, len(sections))
	for _, section := range sections {
		titles = append(titles, section.Title)
	}
	document.Sections = titles
	readability := AnalyzeReadability(document.Body)
	document.FleschKincaidGrade = readability.FleschKincaidGrade
	document.ReadingEase = readability.ReadingEase
}
