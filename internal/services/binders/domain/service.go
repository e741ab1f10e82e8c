// Package domain assembles compliance binders from documents and property
// records and tracks their generation lifecycle.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/halcyonlabs/inneros/internal/platform/errors"
	"github.com/halcyonlabs/inneros/internal/platform/id"
	"github.com/halcyonlabs/inneros/internal/services/binders/storage"
)

const (
	maxTitleLength  = 200
	defaultPageSize = 20
	maxPageSize     = 100
)

// DocumentSource loads document entries for binder assembly.
type DocumentSource interface {
	BinderDocuments(ctx context.Context, documentIDs []string) ([]DocumentItem, error)
}

// PropertySource loads property entries for binder assembly.
type PropertySource interface {
	BinderProperties(ctx context.Context, propertyIDs []string) ([]PropertyItem, error)
}

// Renderer turns assembled binder content into a styled HTML document.
type Renderer interface {
	Render(content Content) ([]byte, error)
}

// Printer rasterizes rendered HTML into a PDF.
type Printer interface {
	PrintPDF(ctx context.Context, html []byte) ([]byte, error)
}

// Service coordinates binder records, assembly, and export.
type Service struct {
	store      storage.Store
	documents  DocumentSource
	properties PropertySource
	renderer   Renderer
	printer    Printer
	clock      func() time.Time
	newID      func() string
}

// NewService creates a binder service. The printer may be nil; Generate
// then returns HTML only.
func NewService(store storage.Store, documents DocumentSource, properties PropertySource, renderer Renderer, printer Printer) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("binder store is required")
	}
	if renderer == nil {
		return nil, fmt.Errorf("binder renderer is required")
	}
	return &Service{
		store:      store,
		documents:  documents,
		properties: properties,
		renderer:   renderer,
		printer:    printer,
		clock:      time.Now,
		newID:      id.NewID,
	}, nil
}

// CreateInput carries one new binder request.
type CreateInput struct {
	TenantID    string
	Title       string
	PreparedFor string
	DocumentIDs []string
	PropertyIDs []string
}

// Create stores a new binder record in pending.
func (s *Service) Create(ctx context.Context, input CreateInput) (storage.Binder, error) {
	if s == nil || s.store == nil {
		return storage.Binder{}, fmt.Errorf("binder service is not configured")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return storage.Binder{}, apperrors.New(apperrors.CodeInvalidArgument, "binder title is required")
	}
	if len([]rune(title)) > maxTitleLength {
		return storage.Binder{}, apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("binder title must be at most %d characters", maxTitleLength))
	}
	documentIDs := dedupeIDs(input.DocumentIDs)
	propertyIDs := dedupeIDs(input.PropertyIDs)
	if len(documentIDs) == 0 && len(propertyIDs) == 0 {
		return storage.Binder{}, apperrors.New(apperrors.CodeInvalidArgument, "binder needs at least one document or property")
	}

	now := s.clock().UTC()
	binder := storage.Binder{
		ID:           s.newID(),
		TenantID:     strings.TrimSpace(input.TenantID),
		Title:        title,
		PreparedFor:  strings.TrimSpace(input.PreparedFor),
		DocumentIDs:  documentIDs,
		PropertyIDs:  propertyIDs,
		Status:       storage.StatusPending,
		PageEstimate: EstimatePages(len(documentIDs), len(propertyIDs)),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.PutBinder(ctx, binder); err != nil {
		return storage.Binder{}, fmt.Errorf("put binder: %w", err)
	}
	return binder, nil
}

// Get loads one binder record.
func (s *Service) Get(ctx context.Context, binderID string) (storage.Binder, error) {
	if s == nil || s.store == nil {
		return storage.Binder{}, fmt.Errorf("binder service is not configured")
	}
	binderID = strings.TrimSpace(binderID)
	if binderID == "" {
		return storage.Binder{}, apperrors.New(apperrors.CodeInvalidArgument, "binder id is required")
	}
	binder, err := s.store.GetBinder(ctx, binderID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.Binder{}, apperrors.New(apperrors.CodeNotFound, "binder not found")
		}
		return storage.Binder{}, fmt.Errorf("get binder: %w", err)
	}
	return binder, nil
}

// List returns one page of tenant binders.
func (s *Service) List(ctx context.Context, tenantID string, pageSize int, pageToken string) (storage.BinderPage, error) {
	if s == nil || s.store == nil {
		return storage.BinderPage{}, fmt.Errorf("binder service is not configured")
	}
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return storage.BinderPage{}, apperrors.New(apperrors.CodeInvalidArgument, "tenant id is required")
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page, err := s.store.ListBinders(ctx, tenantID, pageSize, strings.TrimSpace(pageToken))
	if err != nil {
		return storage.BinderPage{}, fmt.Errorf("list binders: %w", err)
	}
	return page, nil
}

// Delete removes one binder record.
func (s *Service) Delete(ctx context.Context, binderID string) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("binder service is not configured")
	}
	binderID = strings.TrimSpace(binderID)
	if binderID == "" {
		return apperrors.New(apperrors.CodeInvalidArgument, "binder id is required")
	}
	if err := s.store.DeleteBinder(ctx, binderID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.New(apperrors.CodeNotFound, "binder not found")
		}
		return fmt.Errorf("delete binder: %w", err)
	}
	return nil
}

// Export is one generated binder.
type Export struct {
	Binder storage.Binder
	HTML   []byte
	PDF    []byte
}

// Generate assembles, renders, and optionally prints one binder. The record
// moves to generating while work runs and to completed or failed after.
func (s *Service) Generate(ctx context.Context, binderID string) (Export, error) {
	binder, err := s.Get(ctx, binderID)
	if err != nil {
		return Export{}, err
	}
	if binder.Status == storage.StatusGenerating {
		return Export{}, apperrors.New(apperrors.CodeConflict, "binder generation already underway")
	}

	binder.Status = storage.StatusGenerating
	binder.FailureNote = ""
	binder.UpdatedAt = s.clock().UTC()
	if err := s.store.PutBinder(ctx, binder); err != nil {
		return Export{}, fmt.Errorf("put binder: %w", err)
	}

	export, err := s.generate(ctx, binder)
	if err != nil {
		binder.Status = storage.StatusFailed
		binder.FailureNote = err.Error()
		binder.UpdatedAt = s.clock().UTC()
		if putErr := s.store.PutBinder(ctx, binder); putErr != nil {
			return Export{}, fmt.Errorf("record binder failure: %w", putErr)
		}
		return Export{}, err
	}
	return export, nil
}

func (s *Service) generate(ctx context.Context, binder storage.Binder) (Export, error) {
	content := Content{
		Title:       binder.Title,
		PreparedFor: binder.PreparedFor,
		GeneratedAt: s.clock().UTC(),
	}
	if len(binder.DocumentIDs) > 0 {
		if s.documents == nil {
			return Export{}, apperrors.New(apperrors.CodeUpstreamUnavailable, "document source is not configured")
		}
		documents, err := s.documents.BinderDocuments(ctx, binder.DocumentIDs)
		if err != nil {
			return Export{}, fmt.Errorf("load binder documents: %w", err)
		}
		content.Documents = documents
	}
	if len(binder.PropertyIDs) > 0 {
		if s.properties == nil {
			return Export{}, apperrors.New(apperrors.CodeUpstreamUnavailable, "property source is not configured")
		}
		properties, err := s.properties.BinderProperties(ctx, binder.PropertyIDs)
		if err != nil {
			return Export{}, fmt.Errorf("load binder properties: %w", err)
		}
		content.Properties = properties
	}
	content.PageEstimate = EstimatePages(len(content.Documents), len(content.Properties))

	html, err := s.renderer.Render(content)
	if err != nil {
		return Export{}, fmt.Errorf("render binder: %w", err)
	}

	var pdf []byte
	if s.printer != nil {
		pdf, err = s.printer.PrintPDF(ctx, html)
		if err != nil {
			return Export{}, fmt.Errorf("print binder pdf: %w", err)
		}
	}

	binder.Status = storage.StatusCompleted
	binder.PageEstimate = content.PageEstimate
	binder.GeneratedAt = content.GeneratedAt
	binder.UpdatedAt = s.clock().UTC()
	if err := s.store.PutBinder(ctx, binder); err != nil {
		return Export{}, fmt.Errorf("put binder: %w", err)
	}
	return Export{Binder: binder, HTML: html, PDF: pdf}, nil
}

func dedupeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, value := range ids {
		value = strings.TrimSpace(value)
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true
		out = append(out, value)
	}
	return out
}
