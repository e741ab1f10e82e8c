package api

import (
	"net/http"

	apperrors "github.com/halcyonlabs/inneros/internal/platform/errors"
	binders "github.com/halcyonlabs/inneros/internal/services/binders/domain"
	binderstorage "github.com/halcyonlabs/inneros/internal/services/binders/storage"
)

type binderView struct {
	ID           string   `json:"id"`
	TenantID     string   `json:"tenant_id"`
	Title        string   `json:"title"`
	PreparedFor  string   `json:"prepared_for,omitempty"`
	DocumentIDs  []string `json:"document_ids"`
	PropertyIDs  []string `json:"property_ids"`
	Status       string   `json:"status"`
	PageEstimate int      `json:"page_estimate"`
	FailureNote  string   `json:"failure_note,omitempty"`
	GeneratedAt  string   `json:"generated_at,omitempty"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

type binderPageView struct {
	Binders       []binderView `json:"binders"`
	NextPageToken string       `json:"next_page_token,omitempty"`
}

type binderExportView struct {
	Binder binderView `json:"binder"`
	HTML   string     `json:"html"`
	PDF    []byte     `json:"pdf,omitempty"`
}

func toBinderView(binder binderstorage.Binder) binderView {
	return binderView{
		ID:           binder.ID,
		TenantID:     binder.TenantID,
		Title:        binder.Title,
		PreparedFor:  binder.PreparedFor,
		DocumentIDs:  binder.DocumentIDs,
		PropertyIDs:  binder.PropertyIDs,
		Status:       binder.Status,
		PageEstimate: binder.PageEstimate,
		FailureNote:  binder.FailureNote,
		GeneratedAt:  timeString(binder.GeneratedAt),
		CreatedAt:    timeString(binder.CreatedAt),
		UpdatedAt:    timeString(binder.UpdatedAt),
	}
}

func (s *Server) handleCreateBinder(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var body struct {
		Title       string   `json:"title"`
		PreparedFor string   `json:"prepared_for"`
		DocumentIDs []string `json:"document_ids"`
		PropertyIDs []string `json:"property_ids"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	binder, err := s.services.Binders.Create(r.Context(), binders.CreateInput{
		TenantID:    principal.TenantID,
		Title:       body.Title,
		PreparedFor: body.PreparedFor,
		DocumentIDs: body.DocumentIDs,
		PropertyIDs: body.PropertyIDs,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBinderView(binder))
}

func (s *Server) handleGetBinder(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	binder, err := s.services.Binders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if binder.TenantID != principal.TenantID {
		writeError(w, apperrors.New(apperrors.CodeNotFound, "binder not found"))
		return
	}
	writeJSON(w, http.StatusOK, toBinderView(binder))
}

func (s *Server) handleListBinders(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	pageSize, pageToken := pageParams(r)
	page, err := s.services.Binders.List(r.Context(), principal.TenantID, pageSize, pageToken)
	if err != nil {
		writeError(w, err)
		return
	}
	view := binderPageView{Binders: make([]binderView, 0, len(page.Binders)), NextPageToken: page.NextPageToken}
	for _, binder := range page.Binders {
		view.Binders = append(view.Binders, toBinderView(binder))
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDeleteBinder(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	binderID := r.PathValue("id")
	if !s.binderInTenant(w, r, principal.TenantID, binderID) {
		return
	}
	if err := s.services.Binders.Delete(r.Context(), binderID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGenerateBinder(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	binderID := r.PathValue("id")
	if !s.binderInTenant(w, r, principal.TenantID, binderID) {
		return
	}
	export, err := s.services.Binders.Generate(r.Context(), binderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, binderExportView{
		Binder: toBinderView(export.Binder),
		HTML:   string(export.HTML),
		PDF:    export.PDF,
	})
}

func (s *Server) binderInTenant(w http.ResponseWriter, r *http.Request, tenantID string, binderID string) bool {
	binder, err := s.services.Binders.Get(r.Context(), binderID)
	if err != nil {
		writeError(w, err)
		return false
	}
	if binder.TenantID != tenantID {
		writeError(w, apperrors.New(apperrors.CodeNotFound, "binder not found"))
		return false
	}
	return true
}
