package app

import (
	"context"
	"fmt"

	assessments "github.com/halcyonlabs/inneros/internal/services/assessments/domain"
	binders "github.com/halcyonlabs/inneros/internal/services/binders/domain"
	documents "github.com/halcyonlabs/inneros/internal/services/documents/domain"
	properties "github.com/halcyonlabs/inneros/internal/services/properties/domain"
)

// documentSource feeds binder generation from the document service.
type documentSource struct {
	documents *documents.Service
}

func (s documentSource) BinderDocuments(ctx context.Context, documentIDs []string) ([]binders.DocumentItem, error) {
	items := make([]binders.DocumentItem, 0, len(documentIDs))
	for _, documentID := range documentIDs {
		document, err := s.documents.Get(ctx, documentID)
		if err != nil {
			return nil, fmt.Errorf("load binder document %s: %w", documentID, err)
		}
		items = append(items, binders.DocumentItem{
			Title:     document.Title,
			WordCount: document.WordCount,
			Sections:  document.Sections,
			UpdatedAt: document.UpdatedAt,
		})
	}
	return items, nil
}

// propertySource feeds binder generation from the property service.
type propertySource struct {
	properties *properties.Service
}

func (s propertySource) BinderProperties(ctx context.Context, propertyIDs []string) ([]binders.PropertyItem, error) {
	items := make([]binders.PropertyItem, 0, len(propertyIDs))
	for _, propertyID := range propertyIDs {
		view, err := s.properties.Get(ctx, propertyID)
		if err != nil {
			return nil, fmt.Errorf("load binder property %s: %w", propertyID, err)
		}
		items = append(items, binders.PropertyItem{
			Name:                view.Property.Name,
			Address:             view.Property.Address,
			TotalRooms:          view.Financials.TotalRooms,
			OccupiedRooms:       view.Financials.OccupiedRooms,
			OccupancyPercent:    view.Financials.OccupancyPercent,
			MonthlyRevenueCents: view.Financials.MonthlyRevenueCents,
			MonthlyProfitCents:  view.Financials.MonthlyProfitCents,
		})
	}
	return items, nil
}

// assessmentChecker answers the phase-gate assessment question from the
// assessment service. Any recorded assessment satisfies the gate; phases do
// not require a separate retake.
type assessmentChecker struct {
	assessments *assessments.Service
}

func (c assessmentChecker) HasPhaseAssessment(ctx context.Context, userID string, _ int) (bool, error) {
	records, err := c.assessments.List(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("list assessments: %w", err)
	}
	return len(records) > 0, nil
}
