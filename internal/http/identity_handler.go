package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/meetsync/internal/application"
	"github.com/example/meetsync/internal/persistence"
)

type identityService interface {
	CreateUser(ctx context.Context, input application.NewUserInput) (persistence.User, error)
	IssueToken(ctx context.Context, email string) (string, error)
}

// IdentityHandler serves the unauthenticated account and token endpoints.
type IdentityHandler struct {
	service   identityService
	responder responder
}

func NewIdentityHandler(service identityService, logger *slog.Logger) *IdentityHandler {
	return &IdentityHandler{service: service, responder: newResponder(logger)}
}

func (h *IdentityHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req newUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	user, err := h.service.CreateUser(r.Context(), application.NewUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toProfileDTO(user))
}

func (h *IdentityHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	token, err := h.service.IssueToken(r.Context(), req.Email)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, tokenResponse{Token: token})
}

type newUserRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type tokenRequest struct {
	Email string `json:"email"`
}

type tokenResponse struct {
	Token string `json:"token"`
}
