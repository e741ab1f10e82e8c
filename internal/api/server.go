// Package api exposes the service layer over HTTP with bearer-token
// authentication and a uniform JSON error envelope.
package api

import (
	"fmt"
	"net/http"

	assessments "github.com/halcyonlabs/inneros/internal/services/assessments/domain"
	binders "github.com/halcyonlabs/inneros/internal/services/binders/domain"
	broadcasts "github.com/halcyonlabs/inneros/internal/services/broadcasts/domain"
	documents "github.com/halcyonlabs/inneros/internal/services/documents/domain"
	insights "github.com/halcyonlabs/inneros/internal/services/insights/domain"
	practices "github.com/halcyonlabs/inneros/internal/services/practices/domain"
	preferences "github.com/halcyonlabs/inneros/internal/services/preferences/domain"
	properties "github.com/halcyonlabs/inneros/internal/services/properties/domain"
)

// Services carries the domain services the API exposes.
type Services struct {
	Assessments *assessments.Service
	Binders     *binders.Service
	Broadcasts  *broadcasts.Service
	Documents   *documents.Service
	Insights    *insights.Service
	Practices   *practices.Service
	Preferences *preferences.Service
	Properties  *properties.Service
}

// Server routes authenticated requests to the domain services.
type Server struct {
	services Services
	auth     *Authenticator
}

// NewServer creates an API server.
func NewServer(services Services, auth *Authenticator) (*Server, error) {
	if auth == nil {
		return nil, fmt.Errorf("authenticator is required")
	}
	return &Server{services: services, auth: auth}, nil
}

// Handler returns the routed HTTP handler with authentication applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /v1/health-score", s.handleHealthScore)

	mux.HandleFunc("POST /v1/documents", s.handleCreateDocument)
	mux.HandleFunc("GET /v1/documents", s.handleListDocuments)
	mux.HandleFunc("GET /v1/documents/{id}", s.handleGetDocument)
	mux.HandleFunc("PATCH /v1/documents/{id}", s.handleUpdateDocument)
	mux.HandleFunc("DELETE /v1/documents/{id}", s.handleDeleteDocument)
	mux.HandleFunc("GET /v1/documents/{id}/suggestions", s.handleDocumentSuggestions)

	mux.HandleFunc("POST /v1/properties", s.handleCreateProperty)
	mux.HandleFunc("GET /v1/properties", s.handleListProperties)
	mux.HandleFunc("GET /v1/properties/{id}", s.handleGetProperty)
	mux.HandleFunc("PATCH /v1/properties/{id}", s.handleUpdateProperty)
	mux.HandleFunc("DELETE /v1/properties/{id}", s.handleDeleteProperty)

	mux.HandleFunc("POST /v1/practices", s.handleCreatePractice)
	mux.HandleFunc("GET /v1/practices", s.handleListPractices)
	mux.HandleFunc("GET /v1/practices/{id}", s.handleGetPractice)
	mux.HandleFunc("DELETE /v1/practices/{id}", s.handleDeletePractice)
	mux.HandleFunc("POST /v1/practices/{id}/completions", s.handleRecordCompletion)
	mux.HandleFunc("GET /v1/progress/advance", s.handleCheckAdvance)
	mux.HandleFunc("POST /v1/progress/advance", s.handleAdvance)

	mux.HandleFunc("POST /v1/assessments", s.handleSubmitAssessment)
	mux.HandleFunc("GET /v1/assessments", s.handleListAssessments)
	mux.HandleFunc("GET /v1/assessments/{kind}", s.handleGetAssessment)

	mux.HandleFunc("GET /v1/preferences", s.handleGetPreferences)
	mux.HandleFunc("PUT /v1/preferences", s.handlePutPreferences)

	mux.HandleFunc("POST /v1/broadcasts", s.handleCreateBroadcast)
	mux.HandleFunc("GET /v1/broadcasts", s.handleListBroadcasts)
	mux.HandleFunc("GET /v1/broadcasts/{id}", s.handleGetBroadcast)
	mux.HandleFunc("POST /v1/broadcasts/{id}/submit", s.handleSubmitBroadcast)
	mux.HandleFunc("POST /v1/broadcasts/{id}/approve", s.handleApproveBroadcast)
	mux.HandleFunc("POST /v1/broadcasts/{id}/reject", s.handleRejectBroadcast)
	mux.HandleFunc("POST /v1/broadcasts/{id}/schedule", s.handleScheduleBroadcast)
	mux.HandleFunc("POST /v1/broadcasts/{id}/cancel", s.handleCancelBroadcast)
	mux.HandleFunc("GET /v1/broadcasts/{id}/deliveries", s.handleBroadcastDeliveries)

	mux.HandleFunc("POST /v1/binders", s.handleCreateBinder)
	mux.HandleFunc("GET /v1/binders", s.handleListBinders)
	mux.HandleFunc("GET /v1/binders/{id}", s.handleGetBinder)
	mux.HandleFunc("DELETE /v1/binders/{id}", s.handleDeleteBinder)
	mux.HandleFunc("POST /v1/binders/{id}/generate", s.handleGenerateBinder)

	return s.auth.Middleware(mux)
}
