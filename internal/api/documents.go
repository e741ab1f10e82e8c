package api

import (
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/halcyonlabs/inneros/internal/platform/errors"
	"github.com/halcyonlabs/inneros/internal/platform/requestctx"
	documents "github.com/halcyonlabs/inneros/internal/services/documents/domain"
	docstorage "github.com/halcyonlabs/inneros/internal/services/documents/storage"
)

type documentView struct {
	ID                 string   `json:"id"`
	TenantID           string   `json:"tenant_id"`
	OwnerUserID        string   `json:"owner_user_id"`
	Title              string   `json:"title"`
	Body               string   `json:"body"`
	SourceURL          string   `json:"source_url,omitempty"`
	WordCount          int      `json:"word_count"`
	Sections           []string `json:"sections"`
	FleschKincaidGrade float64  `json:"flesch_kincaid_grade"`
	ReadingEase        float64  `json:"reading_ease"`
	CreatedAt          string   `json:"created_at"`
	UpdatedAt          string   `json:"updated_at"`
}

type documentPageView struct {
	Documents     []documentView `json:"documents"`
	NextPageToken string         `json:"next_page_token,omitempty"`
}

func toDocumentView(document docstorage.Document) documentView {
	return documentView{
		ID:                 document.ID,
		TenantID:           document.TenantID,
		OwnerUserID:        document.OwnerUserID,
		Title:              document.Title,
		Body:               document.Body,
		SourceURL:          document.SourceURL,
		WordCount:          document.WordCount,
		Sections:           document.Sections,
		FleschKincaidGrade: document.FleschKincaidGrade,
		ReadingEase:        document.ReadingEase,
		CreatedAt:          timeString(document.CreatedAt),
		UpdatedAt:          timeString(document.UpdatedAt),
	}
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var body struct {
		Title   string `json:"title"`
		Body    string `json:"body"`
		FileURL string `json:"file_url"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	document, err := s.services.Documents.Create(r.Context(), documents.CreateInput{
		TenantID:    principal.TenantID,
		OwnerUserID: principal.UserID,
		Title:       body.Title,
		Body:        body.Body,
		FileURL:     body.FileURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDocumentView(document))
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	document, err := s.services.Documents.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if document.TenantID != principal.TenantID {
		writeError(w, apperrors.New(apperrors.CodeNotFound, "document not found"))
		return
	}
	writeJSON(w, http.StatusOK, toDocumentView(document))
}

func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	documentID := r.PathValue("id")
	if !s.documentInTenant(w, r, principal, documentID) {
		return
	}
	var body struct {
		Title string  `json:"title"`
		Body  *string `json:"body"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	document, err := s.services.Documents.Update(r.Context(), documents.UpdateInput{
		DocumentID: documentID,
		Title:      body.Title,
		Body:       body.Body,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentView(document))
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	documentID := r.PathValue("id")
	if !s.documentInTenant(w, r, principal, documentID) {
		return
	}
	if err := s.services.Documents.Delete(r.Context(), documentID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	pageSize, pageToken := pageParams(r)
	page, err := s.services.Documents.List(r.Context(), principal.TenantID, pageSize, pageToken)
	if err != nil {
		writeError(w, err)
		return
	}
	view := documentPageView{Documents: make([]documentView, 0, len(page.Documents)), NextPageToken: page.NextPageToken}
	for _, document := range page.Documents {
		view.Documents = append(view.Documents, toDocumentView(document))
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDocumentSuggestions(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	documentID := r.PathValue("id")
	if !s.documentInTenant(w, r, principal, documentID) {
		return
	}
	suggestions, err := s.services.Documents.Suggestions(r.Context(), documentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Suggestions []string `json:"suggestions"`
	}{Suggestions: suggestions})
}

// documentInTenant fetches the document and rejects cross-tenant access as
// not found. It writes the error response itself.
func (s *Server) documentInTenant(w http.ResponseWriter, r *http.Request, principal requestctx.Principal, documentID string) bool {
	document, err := s.services.Documents.Get(r.Context(), documentID)
	if err != nil {
		writeError(w, err)
		return false
	}
	if document.TenantID != principal.TenantID {
		writeError(w, apperrors.New(apperrors.CodeNotFound, "document not found"))
		return false
	}
	return true
}

func timeString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func pageParams(r *http.Request) (int, string) {
	query := r.URL.Query()
	pageSize, _ := strconv.Atoi(query.Get("page_size"))
	return pageSize, query.Get("page_token")
}

func requirePrincipal(w http.ResponseWriter, r *http.Request) (requestctx.Principal, bool) {
	principal, ok := requestctx.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperrors.New(apperrors.CodeUnauthenticated, "authentication required"))
		return requestctx.Principal{}, false
	}
	return principal, true
}
