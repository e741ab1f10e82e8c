// Package storage defines persistence contracts for document records.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested document record is missing.
var ErrNotFound = errors.New("record not found")

// Document stores one document together with its derived reading metrics.
type Document struct {
	ID                 string
	TenantID           string
	OwnerUserID        string
	Title              string
	Body               string
	SourceURL          string
	WordCount          int
	Sections           []string
	FleschKincaidGrade float64
	ReadingEase        float64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// DocumentPage stores one page of tenant documents.
type DocumentPage struct {
	Documents     []Document
	NextPageToken string
}

// Store persists document records.
type Store interface {
	PutDocument(ctx context.Context, document Document) error
	GetDocument(ctx context.Context, documentID string) (Document, error)
	DeleteDocument(ctx context.Context, documentID string) error
	ListDocuments(ctx context.Context, tenantID string, pageSize int, pageToken string) (DocumentPage, error)
	CountDocuments(ctx context.Context, tenantID string) (int, error)
}
