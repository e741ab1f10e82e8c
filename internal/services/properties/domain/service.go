// Package domain manages property records and their derived financials.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/halcyonlabs/inneros/internal/platform/errors"
	"github.com/halcyonlabs/inneros/internal/platform/id"
	"github.com/halcyonlabs/inneros/internal/services/properties/storage"
)

const (
	maxNameLength   = 120
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service coordinates property persistence and derived financials.
type Service struct {
	store storage.Store
	clock func() time.Time
	newID func() string
}

// NewService creates a property service.
func NewService(store storage.Store) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("property store is required")
	}
	return &Service{store: store, clock: time.Now, newID: id.NewID}, nil
}

// RoomInput carries one room definition.
type RoomInput struct {
	Label            string
	MonthlyRentCents int64
	Occupied         bool
}

// CreateInput carries one new property.
type CreateInput struct {
	TenantID             string
	Name                 string
	Address              string
	MonthlyExpensesCents int64
	Rooms                []RoomInput
}

// PropertyView pairs a stored property with its derived financials.
type PropertyView struct {
	Property   storage.Property
	Financials Financials
}

// Create stores a new property with its rooms.
func (s *Service) Create(ctx context.Context, input CreateInput) (PropertyView, error) {
	if s == nil || s.store == nil {
		return PropertyView{}, fmt.Errorf("property service is not configured")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return PropertyView{}, apperrors.New(apperrors.CodeInvalidArgument, "property name is required")
	}
	if len([]rune(name)) > maxNameLength {
		return PropertyView{}, apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("property name must be at most %d characters", maxNameLength))
	}
	if input.MonthlyExpensesCents < 0 {
		return PropertyView{}, apperrors.New(apperrors.CodeInvalidArgument, "monthly expenses must be non-negative")
	}

	rooms, err := s.buildRooms(input.Rooms)
	if err != nil {
		return PropertyView{}, err
	}

	now := s.clock().UTC()
	property := storage.Property{
		ID:                   s.newID(),
		TenantID:             strings.TrimSpace(input.TenantID),
		Name:                 name,
		Address:              strings.TrimSpace(input.Address),
		MonthlyExpensesCents: input.MonthlyExpensesCents,
		Rooms:                rooms,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.store.PutProperty(ctx, property); err != nil {
		return PropertyView{}, fmt.Errorf("put property: %w", err)
	}
	return PropertyView{Property: property, Financials: ComputeFinancials(property)}, nil
}

// UpdateInput carries edits to one property. Nil fields keep their stored
// values; a non-nil Rooms slice replaces all rooms.
type UpdateInput struct {
	PropertyID           string
	Name                 string
	Address              string
	MonthlyExpensesCents *int64
	Rooms                []RoomInput
}

// Update edits a stored property.
func (s *Service) Update(ctx context.Context, input UpdateInput) (PropertyView, error) {
	if s == nil || s.store == nil {
		return PropertyView{}, fmt.Errorf("property service is not configured")
	}
	view, err := s.Get(ctx, input.PropertyID)
	if err != nil {
		return PropertyView{}, err
	}
	property := view.Property

	if name := strings.TrimSpace(input.Name); name != "" {
		if len([]rune(name)) > maxNameLength {
			return PropertyView{}, apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("property name must be at most %d characters", maxNameLength))
		}
		property.Name = name
	}
	if address := strings.TrimSpace(input.Address); address != "" {
		property.Address = address
	}
	if input.MonthlyExpensesCents != nil {
		if *input.MonthlyExpensesCents < 0 {
			return PropertyView{}, apperrors.New(apperrors.CodeInvalidArgument, "monthly expenses must be non-negative")
		}
		property.MonthlyExpensesCents = *input.MonthlyExpensesCents
	}
	if input.Rooms != nil {
		rooms, err := s.buildRooms(input.Rooms)
		if err != nil {
			return PropertyView{}, err
		}
		property.Rooms = rooms
	}
	property.UpdatedAt = s.clock().UTC()

	if err := s.store.PutProperty(ctx, property); err != nil {
		return PropertyView{}, fmt.Errorf("put property: %w", err)
	}
	return PropertyView{Property: property, Financials: ComputeFinancials(property)}, nil
}

// Get loads one property with derived financials.
func (s *Service) Get(ctx context.Context, propertyID string) (PropertyView, error) {
	if s == nil || s.store == nil {
		return PropertyView{}, fmt.Errorf("property service is not configured")
	}
	propertyID = strings.TrimSpace(propertyID)
	if propertyID == "" {
		return PropertyView{}, apperrors.New(apperrors.CodeInvalidArgument, "property id is required")
	}
	property, err := s.store.GetProperty(ctx, propertyID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return PropertyView{}, apperrors.New(apperrors.CodeNotFound, "property not found")
		}
		return PropertyView{}, fmt.Errorf("get property: %w", err)
	}
	return PropertyView{Property: property, Financials: ComputeFinancials(property)}, nil
}

// Delete removes one property.
func (s *Service) Delete(ctx context.Context, propertyID string) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("property service is not configured")
	}
	propertyID = strings.TrimSpace(propertyID)
	if propertyID == "" {
		return apperrors.New(apperrors.CodeInvalidArgument, "property id is required")
	}
	if err := s.store.DeleteProperty(ctx, propertyID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.New(apperrors.CodeNotFound, "property not found")
		}
		return fmt.Errorf("delete property: %w", err)
	}
	return nil
}

// List returns one page of tenant properties with derived financials.
func (s *Service) List(ctx context.Context, tenantID string, pageSize int, pageToken string) ([]PropertyView, string, error) {
	if s == nil || s.store == nil {
		return nil, "", fmt.Errorf("property service is not configured")
	}
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return nil, "", apperrors.New(apperrors.CodeInvalidArgument, "tenant id is required")
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page, err := s.store.ListProperties(ctx, tenantID, pageSize, strings.TrimSpace(pageToken))
	if err != nil {
		return nil, "", fmt.Errorf("list properties: %w", err)
	}
	views := make([]PropertyView, 0, len(page.Properties))
	for _, property := range page.Properties {
		views = append(views, PropertyView{Property: property, Financials: ComputeFinancials(property)})
	}
	return views, page.NextPageToken, nil
}

func (s *Service) buildRooms(inputs []RoomInput) ([]storage.Room, error) {
	rooms := make([]storage.Room, 0, len(inputs))
	for _, input := range inputs {
		label := strings.TrimSpace(input.Label)
		if label == "" {
			return nil, apperrors.New(apperrors.CodeInvalidArgument, "room label is required")
		}
		if input.MonthlyRentCents < 0 {
			return nil, apperrors.New(apperrors.CodeInvalidArgument, "room rent must be non-negative")
		}
		rooms = append(rooms, storage.Room{
			ID:               s.newID(),
			Label:            label,
			MonthlyRentCents: input.MonthlyRentCents,
			Occupied:         input.Occupied,
		})
	}
	return rooms, nil
}
