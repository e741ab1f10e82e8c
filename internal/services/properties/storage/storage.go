// Package storage defines persistence contracts for property records.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested property record is missing.
var ErrNotFound = errors.New("record not found")

// Room stores one rentable room in a property. Money amounts are cents.
type Room struct {
	ID               string
	Label            string
	MonthlyRentCents int64
	Occupied         bool
}

// Property stores one managed property with its rooms.
type Property struct {
	ID                   string
	TenantID             string
	Name                 string
	Address              string
	MonthlyExpensesCents int64
	Rooms                []Room
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// PropertyPage stores one page of tenant properties.
type PropertyPage struct {
	Properties    []Property
	NextPageToken string
}

// Store persists property records with their rooms.
type Store interface {
	PutProperty(ctx context.Context, property Property) error
	GetProperty(ctx context.Context, propertyID string) (Property, error)
	DeleteProperty(ctx context.Context, propertyID string) error
	ListProperties(ctx context.Context, tenantID string, pageSize int, pageToken string) (PropertyPage, error)
	CountProperties(ctx context.Context, tenantID string) (int, error)
}
