package api

import (
	"net/http"

	apperrors "github.com/halcyonlabs/inneros/internal/platform/errors"
	properties "github.com/halcyonlabs/inneros/internal/services/properties/domain"
)

type roomView struct {
	ID               string `json:"id"`
	Label            string `json:"label"`
	MonthlyRentCents int64  `json:"monthly_rent_cents"`
	Occupied         bool   `json:"occupied"`
}

type propertyView struct {
	ID                   string     `json:"id"`
	TenantID             string     `json:"tenant_id"`
	Name                 string     `json:"name"`
	Address              string     `json:"address"`
	MonthlyExpensesCents int64      `json:"monthly_expenses_cents"`
	Rooms                []roomView `json:"rooms"`
	TotalRooms           int        `json:"total_rooms"`
	OccupiedRooms        int        `json:"occupied_rooms"`
	OccupancyPercent     float64    `json:"occupancy_percent"`
	MonthlyRevenueCents  int64      `json:"monthly_revenue_cents"`
	MonthlyProfitCents   int64      `json:"monthly_profit_cents"`
	CreatedAt            string     `json:"created_at"`
	UpdatedAt            string     `json:"updated_at"`
}

type propertyPageView struct {
	Properties    []propertyView `json:"properties"`
	NextPageToken string         `json:"next_page_token,omitempty"`
}

type roomBody struct {
	Label            string `json:"label"`
	MonthlyRentCents int64  `json:"monthly_rent_cents"`
	Occupied         bool   `json:"occupied"`
}

func toPropertyView(view properties.PropertyView) propertyView {
	rooms := make([]roomView, 0, len(view.Property.Rooms))
	for _, room := range view.Property.Rooms {
		rooms = append(rooms, roomView{
			ID:               room.ID,
			Label:            room.Label,
			MonthlyRentCents: room.MonthlyRentCents,
			Occupied:         room.Occupied,
		})
	}
	return propertyView{
		ID:                   view.Property.ID,
		TenantID:             view.Property.TenantID,
		Name:                 view.Property.Name,
		Address:              view.Property.Address,
		MonthlyExpensesCents: view.Property.MonthlyExpensesCents,
		Rooms:                rooms,
		TotalRooms:           view.Financials.TotalRooms,
		OccupiedRooms:        view.Financials.OccupiedRooms,
		OccupancyPercent:     view.Financials.OccupancyPercent,
		MonthlyRevenueCents:  view.Financials.MonthlyRevenueCents,
		MonthlyProfitCents:   view.Financials.MonthlyProfitCents,
		CreatedAt:            timeString(view.Property.CreatedAt),
		UpdatedAt:            timeString(view.Property.UpdatedAt),
	}
}

func toRoomInputs(rooms []roomBody) []properties.RoomInput {
	if rooms == nil {
		return nil
	}
	inputs := make([]properties.RoomInput, 0, len(rooms))
	for _, room := range rooms {
		inputs = append(inputs, properties.RoomInput{
			Label:            room.Label,
			MonthlyRentCents: room.MonthlyRentCents,
			Occupied:         room.Occupied,
		})
	}
	return inputs
}

func (s *Server) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var body struct {
		Name                 string     `json:"name"`
		Address              string     `json:"address"`
		MonthlyExpensesCents int64      `json:"monthly_expenses_cents"`
		Rooms                []roomBody `json:"rooms"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	view, err := s.services.Properties.Create(r.Context(), properties.CreateInput{
		TenantID:             principal.TenantID,
		Name:                 body.Name,
		Address:              body.Address,
		MonthlyExpensesCents: body.MonthlyExpensesCents,
		Rooms:                toRoomInputs(body.Rooms),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPropertyView(view))
}

func (s *Server) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	view, err := s.services.Properties.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if view.Property.TenantID != principal.TenantID {
		writeError(w, apperrors.New(apperrors.CodeNotFound, "property not found"))
		return
	}
	writeJSON(w, http.StatusOK, toPropertyView(view))
}

func (s *Server) handleUpdateProperty(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	propertyID := r.PathValue("id")
	if !s.propertyInTenant(w, r, principal.TenantID, propertyID) {
		return
	}
	var body struct {
		Name                 string     `json:"name"`
		Address              string     `json:"address"`
		MonthlyExpensesCents *int64     `json:"monthly_expenses_cents"`
		Rooms                []roomBody `json:"rooms"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	view, err := s.services.Properties.Update(r.Context(), properties.UpdateInput{
		PropertyID:           propertyID,
		Name:                 body.Name,
		Address:              body.Address,
		MonthlyExpensesCents: body.MonthlyExpensesCents,
		Rooms:                toRoomInputs(body.Rooms),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPropertyView(view))
}

func (s *Server) handleDeleteProperty(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	propertyID := r.PathValue("id")
	if !s.propertyInTenant(w, r, principal.TenantID, propertyID) {
		return
	}
	if err := s.services.Properties.Delete(r.Context(), propertyID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	pageSize, pageToken := pageParams(r)
	views, nextToken, err := s.services.Properties.List(r.Context(), principal.TenantID, pageSize, pageToken)
	if err != nil {
		writeError(w, err)
		return
	}
	page := propertyPageView{Properties: make([]propertyView, 0, len(views)), NextPageToken: nextToken}
	for _, view := range views {
		page.Properties = append(page.Properties, toPropertyView(view))
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) propertyInTenant(w http.ResponseWriter, r *http.Request, tenantID string, propertyID string) bool {
	view, err := s.services.Properties.Get(r.Context(), propertyID)
	if err != nil {
		writeError(w, err)
		return false
	}
	if view.Property.TenantID != tenantID {
		writeError(w, apperrors.New(apperrors.CodeNotFound, "property not found"))
		return false
	}
	return true
}
