package api

import (
	"net/http"

	assessments "github.com/halcyonlabs/inneros/internal/services/assessments/domain"
	assessmentstorage "github.com/halcyonlabs/inneros/internal/services/assessments/storage"
)

type assessmentView struct {
	ID             string         `json:"id"`
	Kind           string         `json:"kind"`
	Counts         map[string]int `json:"counts"`
	Total          int            `json:"total"`
	Primary        string         `json:"primary"`
	Secondary      string         `json:"secondary,omitempty"`
	Tied           bool           `json:"tied"`
	Balanced       bool           `json:"balanced"`
	Confidence     int            `json:"confidence"`
	CultureContext string         `json:"culture_context,omitempty"`
	CreatedAt      string         `json:"created_at"`
	UpdatedAt      string         `json:"updated_at"`
}

func toAssessmentView(assessment assessmentstorage.Assessment) assessmentView {
	return assessmentView{
		ID:             assessment.ID,
		Kind:           assessment.Kind,
		Counts:         assessment.Counts,
		Total:          assessment.Total,
		Primary:        assessment.Primary,
		Secondary:      assessment.Secondary,
		Tied:           assessment.Tied,
		Balanced:       assessment.Balanced,
		Confidence:     assessment.Confidence,
		CultureContext: assessment.CultureContext,
		CreatedAt:      timeString(assessment.CreatedAt),
		UpdatedAt:      timeString(assessment.UpdatedAt),
	}
}

func (s *Server) handleSubmitAssessment(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var body struct {
		Kind    string `json:"kind"`
		Answers []struct {
			QuestionID string `json:"question_id"`
			Category   string `json:"category"`
			Weight     int    `json:"weight"`
		} `json:"answers"`
		Reflection string `json:"reflection"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	answers := make([]assessments.Answer, 0, len(body.Answers))
	for _, answer := range body.Answers {
		answers = append(answers, assessments.Answer{
			QuestionID: answer.QuestionID,
			Category:   answer.Category,
			Weight:     answer.Weight,
		})
	}
	assessment, err := s.services.Assessments.Submit(r.Context(), assessments.SubmitInput{
		TenantID:   principal.TenantID,
		UserID:     principal.UserID,
		Kind:       assessments.Kind(body.Kind),
		Answers:    answers,
		Reflection: body.Reflection,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAssessmentView(assessment))
}

func (s *Server) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	assessment, err := s.services.Assessments.Get(r.Context(), principal.UserID, assessments.Kind(r.PathValue("kind")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssessmentView(assessment))
}

func (s *Server) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	records, err := s.services.Assessments.List(r.Context(), principal.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]assessmentView, 0, len(records))
	for _, record := range records {
		views = append(views, toAssessmentView(record))
	}
	writeJSON(w, http.StatusOK, struct {
		Assessments []assessmentView `json:"assessments"`
	}{Assessments: views})
}
