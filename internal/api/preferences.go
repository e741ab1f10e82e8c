package api

import (
	"net/http"

	preferences "github.com/halcyonlabs/inneros/internal/services/preferences/domain"
	prefstorage "github.com/halcyonlabs/inneros/internal/services/preferences/storage"
)

type preferencesView struct {
	OwnerUserID     string   `json:"owner_user_id"`
	DashboardLayout string   `json:"dashboard_layout"`
	DigestFrequency string   `json:"digest_frequency"`
	FocusMetrics    []string `json:"focus_metrics"`
	NotifyOnHandoff bool     `json:"notify_on_handoff"`
	QuietHoursStart string   `json:"quiet_hours_start,omitempty"`
	QuietHoursEnd   string   `json:"quiet_hours_end,omitempty"`
	UpdatedAt       string   `json:"updated_at,omitempty"`
}

func toPreferencesView(record prefstorage.Preferences) preferencesView {
	return preferencesView{
		OwnerUserID:     record.OwnerUserID,
		DashboardLayout: record.DashboardLayout,
		DigestFrequency: record.DigestFrequency,
		FocusMetrics:    record.FocusMetrics,
		NotifyOnHandoff: record.NotifyOnHandoff,
		QuietHoursStart: record.QuietHoursStart,
		QuietHoursEnd:   record.QuietHoursEnd,
		UpdatedAt:       timeString(record.UpdatedAt),
	}
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	record, err := s.services.Preferences.Get(r.Context(), principal)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPreferencesView(record))
}

func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var body struct {
		DashboardLayout string   `json:"dashboard_layout"`
		DigestFrequency string   `json:"digest_frequency"`
		FocusMetrics    []string `json:"focus_metrics"`
		NotifyOnHandoff bool     `json:"notify_on_handoff"`
		QuietHoursStart string   `json:"quiet_hours_start"`
		QuietHoursEnd   string   `json:"quiet_hours_end"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	record, err := s.services.Preferences.Put(r.Context(), principal, preferences.PutInput{
		DashboardLayout: body.DashboardLayout,
		DigestFrequency: body.DigestFrequency,
		FocusMetrics:    body.FocusMetrics,
		NotifyOnHandoff: body.NotifyOnHandoff,
		QuietHoursStart: body.QuietHoursStart,
		QuietHoursEnd:   body.QuietHoursEnd,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPreferencesView(record))
}
