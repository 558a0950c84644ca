package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/meetsync/internal/application"
	"github.com/example/meetsync/internal/persistence"
	"github.com/example/meetsync/internal/schedule"
)

type availabilityService interface {
	GetProfile(ctx context.Context, principal application.Principal) (persistence.User, error)
	UpdateProfile(ctx context.Context, params application.UpdateProfileParams) (persistence.User, error)
}

type ProfileHandler struct {
	service   availabilityService
	responder responder
}

func NewProfileHandler(service availabilityService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{service: service, responder: newResponder(logger)}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	user, err := h.service.GetProfile(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toProfileDTO(user))
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	user, err := h.service.UpdateProfile(r.Context(), application.UpdateProfileParams{
		Principal: principal,
		Input: application.ProfileInput{
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Availability: toGridHours(req.Availability),
		},
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toProfileDTO(user))
}

type profileRequest struct {
	FirstName    string           `json:"firstName"`
	LastName     string           `json:"lastName"`
	Availability map[string][]int `json:"availability"`
}

type profileDTO struct {
	ID           string           `json:"id"`
	Email        string           `json:"email"`
	FirstName    string           `json:"firstName"`
	LastName     string           `json:"lastName"`
	Availability map[string][]int `json:"availability"`
}

func toProfileDTO(user persistence.User) profileDTO {
	dto := profileDTO{
		ID:           user.ID,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Availability: make(map[string][]int, len(user.Availability)),
	}
	for day, hours := range user.Availability {
		if hours == nil {
			hours = []int{}
		}
		dto.Availability[string(day)] = hours
	}
	for _, day := range schedule.Weekdays {
		if _, ok := dto.Availability[string(day)]; !ok {
			dto.Availability[string(day)] = []int{}
		}
	}
	return dto
}
