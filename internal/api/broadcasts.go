package api

import (
	"net/http"
	"time"

	apperrors "github.com/halcyonlabs/inneros/internal/platform/errors"
	broadcasts "github.com/halcyonlabs/inneros/internal/services/broadcasts/domain"
	bcaststorage "github.com/halcyonlabs/inneros/internal/services/broadcasts/storage"
)

type broadcastView struct {
	ID             string   `json:"id"`
	TenantID       string   `json:"tenant_id"`
	AuthorUserID   string   `json:"author_user_id"`
	Subject        string   `json:"subject"`
	Body           string   `json:"body"`
	Status         string   `json:"status"`
	Recipients     []string `json:"recipients"`
	ApproverUserID string   `json:"approver_user_id,omitempty"`
	RejectReason   string   `json:"reject_reason,omitempty"`
	ScheduledAt    string   `json:"scheduled_at,omitempty"`
	SentAt         string   `json:"sent_at,omitempty"`
	Attempts       int      `json:"attempts"`
	FailureDetail  string   `json:"failure_detail,omitempty"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
}

type broadcastPageView struct {
	Broadcasts    []broadcastView `json:"broadcasts"`
	NextPageToken string          `json:"next_page_token,omitempty"`
}

type deliveryView struct {
	Recipient string `json:"recipient"`
	Status    string `json:"status"`
	UpdatedAt string `json:"updated_at"`
}

func toBroadcastView(broadcast bcaststorage.Broadcast) broadcastView {
	return broadcastView{
		ID:             broadcast.ID,
		TenantID:       broadcast.TenantID,
		AuthorUserID:   broadcast.AuthorUserID,
		Subject:        broadcast.Subject,
		Body:           broadcast.Body,
		Status:         broadcast.Status,
		Recipients:     broadcast.Recipients,
		ApproverUserID: broadcast.ApproverUserID,
		RejectReason:   broadcast.RejectReason,
		ScheduledAt:    timeString(broadcast.ScheduledAt),
		SentAt:         timeString(broadcast.SentAt),
		Attempts:       broadcast.Attempts,
		FailureDetail:  broadcast.FailureDetail,
		CreatedAt:      timeString(broadcast.CreatedAt),
		UpdatedAt:      timeString(broadcast.UpdatedAt),
	}
}

func (s *Server) handleCreateBroadcast(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var body struct {
		Subject    string   `json:"subject"`
		Body       string   `json:"body"`
		Recipients []string `json:"recipients"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	broadcast, err := s.services.Broadcasts.Create(r.Context(), broadcasts.CreateInput{
		TenantID:     principal.TenantID,
		AuthorUserID: principal.UserID,
		Subject:      body.Subject,
		Body:         body.Body,
		Recipients:   body.Recipients,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBroadcastView(broadcast))
}

func (s *Server) handleGetBroadcast(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	broadcast, err := s.services.Broadcasts.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if broadcast.TenantID != principal.TenantID {
		writeError(w, apperrors.New(apperrors.CodeNotFound, "broadcast not found"))
		return
	}
	writeJSON(w, http.StatusOK, toBroadcastView(broadcast))
}

func (s *Server) handleListBroadcasts(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	pageSize, pageToken := pageParams(r)
	page, err := s.services.Broadcasts.List(r.Context(), principal.TenantID, pageSize, pageToken)
	if err != nil {
		writeError(w, err)
		return
	}
	view := broadcastPageView{Broadcasts: make([]broadcastView, 0, len(page.Broadcasts)), NextPageToken: page.NextPageToken}
	for _, broadcast := range page.Broadcasts {
		view.Broadcasts = append(view.Broadcasts, toBroadcastView(broadcast))
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSubmitBroadcast(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	broadcastID := r.PathValue("id")
	if !s.broadcastInTenant(w, r, principal.TenantID, broadcastID) {
		return
	}
	broadcast, err := s.services.Broadcasts.SubmitForApproval(r.Context(), broadcastID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBroadcastView(broadcast))
}

func (s *Server) handleApproveBroadcast(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	broadcastID := r.PathValue("id")
	if !s.broadcastInTenant(w, r, principal.TenantID, broadcastID) {
		return
	}
	broadcast, err := s.services.Broadcasts.Approve(r.Context(), principal, broadcastID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBroadcastView(broadcast))
}

func (s *Server) handleRejectBroadcast(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	broadcastID := r.PathValue("id")
	if !s.broadcastInTenant(w, r, principal.TenantID, broadcastID) {
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	broadcast, err := s.services.Broadcasts.Reject(r.Context(), principal, broadcastID, body.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBroadcastView(broadcast))
}

func (s *Server) handleScheduleBroadcast(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	broadcastID := r.PathValue("id")
	if !s.broadcastInTenant(w, r, principal.TenantID, broadcastID) {
		return
	}
	var body struct {
		At time.Time `json:"at"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	broadcast, err := s.services.Broadcasts.Schedule(r.Context(), broadcastID, body.At)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBroadcastView(broadcast))
}

func (s *Server) handleCancelBroadcast(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	broadcastID := r.PathValue("id")
	if !s.broadcastInTenant(w, r, principal.TenantID, broadcastID) {
		return
	}
	broadcast, err := s.services.Broadcasts.Cancel(r.Context(), broadcastID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBroadcastView(broadcast))
}

func (s *Server) handleBroadcastDeliveries(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	broadcastID := r.PathValue("id")
	if !s.broadcastInTenant(w, r, principal.TenantID, broadcastID) {
		return
	}
	records, err := s.services.Broadcasts.Deliveries(r.Context(), broadcastID)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]deliveryView, 0, len(records))
	for _, record := range records {
		views = append(views, deliveryView{
			Recipient: record.Recipient,
			Status:    record.Status,
			UpdatedAt: timeString(record.UpdatedAt),
		})
	}
	writeJSON(w, http.StatusOK, struct {
		Deliveries []deliveryView `json:"deliveries"`
	}{Deliveries: views})
}

func (s *Server) broadcastInTenant(w http.ResponseWriter, r *http.Request, tenantID string, broadcastID string) bool {
	broadcast, err := s.services.Broadcasts.Get(r.Context(), broadcastID)
	if err != nil {
		writeError(w, err)
		return false
	}
	if broadcast.TenantID != tenantID {
		writeError(w, apperrors.New(apperrors.CodeNotFound, "broadcast not found"))
		return false
	}
	return true
}
