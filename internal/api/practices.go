package api

import (
	"net/http"

	apperrors "github.com/halcyonlabs/inneros/internal/platform/errors"
	practices "github.com/halcyonlabs/inneros/internal/services/practices/domain"
	practicestorage "github.com/halcyonlabs/inneros/internal/services/practices/storage"
)

type practiceView struct {
	ID             string   `json:"id"`
	TenantID       string   `json:"tenant_id"`
	Category       string   `json:"category"`
	Title          string   `json:"title"`
	Instructions   string   `json:"instructions"`
	TimeText       string   `json:"time_text"`
	TimeMinMinutes int      `json:"time_min_minutes"`
	TimeMaxMinutes int      `json:"time_max_minutes"`
	TimeKnown      bool     `json:"time_known"`
	Difficulty     string   `json:"difficulty"`
	Temperaments   []string `json:"temperaments"`
	Patterns       []string `json:"patterns"`
	Emergency      bool     `json:"emergency"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
}

type practicePageView struct {
	Practices     []practiceView `json:"practices"`
	NextPageToken string         `json:"next_page_token,omitempty"`
}

func toPracticeView(practice practicestorage.Practice) practiceView {
	return practiceView{
		ID:             practice.ID,
		TenantID:       practice.TenantID,
		Category:       practice.Category,
		Title:          practice.Title,
		Instructions:   practice.Instructions,
		TimeText:       practice.TimeText,
		TimeMinMinutes: practice.TimeMinMinutes,
		TimeMaxMinutes: practice.TimeMaxMinutes,
		TimeKnown:      practice.TimeKnown,
		Difficulty:     practice.Difficulty,
		Temperaments:   practice.Temperaments,
		Patterns:       practice.Patterns,
		Emergency:      practice.Emergency,
		CreatedAt:      timeString(practice.CreatedAt),
		UpdatedAt:      timeString(practice.UpdatedAt),
	}
}

func (s *Server) handleCreatePractice(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	if !principal.CanApprove() {
		writeError(w, apperrors.New(apperrors.CodeForbidden, "only coaches and admins manage the practice catalog"))
		return
	}
	var body struct {
		Category     string `json:"category"`
		Title        string `json:"title"`
		Instructions string `json:"instructions"`
		TimeText     string `json:"time_text"`
		Emergency    bool   `json:"emergency"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	practice, err := s.services.Practices.Create(r.Context(), practices.CreateInput{
		TenantID:     principal.TenantID,
		Category:     practices.Category(body.Category),
		Title:        body.Title,
		Instructions: body.Instructions,
		TimeText:     body.TimeText,
		Emergency:    body.Emergency,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPracticeView(practice))
}

func (s *Server) handleGetPractice(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	practice, err := s.services.Practices.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if practice.TenantID != principal.TenantID {
		writeError(w, apperrors.New(apperrors.CodeNotFound, "practice not found"))
		return
	}
	writeJSON(w, http.StatusOK, toPracticeView(practice))
}

func (s *Server) handleDeletePractice(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	if !principal.CanApprove() {
		writeError(w, apperrors.New(apperrors.CodeForbidden, "only coaches and admins manage the practice catalog"))
		return
	}
	practiceID := r.PathValue("id")
	practice, err := s.services.Practices.Get(r.Context(), practiceID)
	if err != nil {
		writeError(w, err)
		return
	}
	if practice.TenantID != principal.TenantID {
		writeError(w, apperrors.New(apperrors.CodeNotFound, "practice not found"))
		return
	}
	if err := s.services.Practices.Delete(r.Context(), practiceID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPractices(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	pageSize, pageToken := pageParams(r)
	category := practices.Category(r.URL.Query().Get("category"))
	page, err := s.services.Practices.List(r.Context(), principal.TenantID, category, pageSize, pageToken)
	if err != nil {
		writeError(w, err)
		return
	}
	view := practicePageView{Practices: make([]practiceView, 0, len(page.Practices)), NextPageToken: page.NextPageToken}
	for _, practice := range page.Practices {
		view.Practices = append(view.Practices, toPracticeView(practice))
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleRecordCompletion(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	completion, err := s.services.Practices.RecordCompletion(r.Context(), principal.UserID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		ID          string `json:"id"`
		PracticeID  string `json:"practice_id"`
		Phase       int    `json:"phase"`
		CompletedAt string `json:"completed_at"`
	}{
		ID:          completion.ID,
		PracticeID:  completion.PracticeID,
		Phase:       completion.Phase,
		CompletedAt: timeString(completion.CompletedAt),
	})
}

func (s *Server) handleCheckAdvance(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	decision, err := s.services.Practices.CheckAdvance(r.Context(), principal.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGateView(decision))
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	phase, err := s.services.Practices.Advance(r.Context(), principal.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Phase     int    `json:"phase"`
		UpdatedAt string `json:"updated_at"`
	}{Phase: phase.Phase, UpdatedAt: timeString(phase.UpdatedAt)})
}

func toGateView(decision practices.GateDecision) any {
	return struct {
		Phase              int  `json:"phase"`
		CompletedInPhase   int  `json:"completed_in_phase"`
		RequiredInPhase    int  `json:"required_in_phase"`
		AssessmentRecorded bool `json:"assessment_recorded"`
		Eligible           bool `json:"eligible"`
	}{
		Phase:              decision.Phase,
		CompletedInPhase:   decision.CompletedInPhase,
		RequiredInPhase:    decision.RequiredInPhase,
		AssessmentRecorded: decision.AssessmentRecorded,
		Eligible:           decision.Eligible,
	}
}
