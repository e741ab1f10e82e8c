package api

import (
	"net/http"

	insights "github.com/halcyonlabs/inneros/internal/services/insights/domain"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	snapshot, err := s.services.Insights.Dashboard(r.Context(), principal.TenantID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleHealthScore(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	health, err := s.services.Insights.HealthScore(r.Context(), principal.TenantID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHealthView(health))
}

func toHealthView(health insights.Health) any {
	return struct {
		CacheScore    float64 `json:"cache_score"`
		ResponseScore float64 `json:"response_score"`
		RAGScore      float64 `json:"rag_score"`
		HandoffScore  float64 `json:"handoff_score"`
		Score         float64 `json:"score"`
	}{
		CacheScore:    health.CacheScore,
		ResponseScore: health.ResponseScore,
		RAGScore:      health.RAGScore,
		HandoffScore:  health.HandoffScore,
		Score:         health.Score,
	}
}
