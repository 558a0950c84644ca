package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/example/meetsync/internal/application"
	"github.com/example/meetsync/internal/ical"
	"github.com/example/meetsync/internal/persistence"
	"github.com/example/meetsync/internal/schedule"
)

type meetingService interface {
	CreateMeeting(ctx context.Context, params application.CreateMeetingParams) (persistence.Meeting, error)
	UpdateMeeting(ctx context.Context, params application.UpdateMeetingParams) (persistence.Meeting, error)
	CancelMeeting(ctx context.Context, principal application.Principal, meetingID string) error
	GetMeeting(ctx context.Context, principal application.Principal, meetingID string) (persistence.Meeting, error)
	JoinByCode(ctx context.Context, principal application.Principal, code string) (persistence.Meeting, error)
	AddGuest(ctx context.Context, params application.AddGuestParams) (persistence.Meeting, error)
	Recommend(ctx context.Context, principal application.Principal, meetingID string) (application.RecommendationResult, error)
}

type slotService interface {
	Confirm(ctx context.Context, params application.ConfirmSlotParams) (persistence.Meeting, []application.GridUpdateFailure, error)
}

type MeetingHandler struct {
	meetings  meetingService
	slots     slotService
	responder responder
	logger    *slog.Logger
}

func NewMeetingHandler(meetings meetingService, slots slotService, logger *slog.Logger) *MeetingHandler {
	return &MeetingHandler{
		meetings:  meetings,
		slots:     slots,
		responder: newResponder(logger),
		logger:    defaultLogger(logger),
	}
}

func (h *MeetingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req meetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	meeting, err := h.meetings.CreateMeeting(r.Context(), application.CreateMeetingParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toMeetingDTO(meeting))
}

func (h *MeetingHandler) Get(w http.ResponseWriter, r *http.Request) {
	meetingID := pathMeetingID(r)
	if meetingID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	meeting, err := h.meetings.GetMeeting(r.Context(), principal, meetingID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toMeetingDTO(meeting))
}

func (h *MeetingHandler) Update(w http.ResponseWriter, r *http.Request) {
	meetingID := pathMeetingID(r)
	if meetingID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req meetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	meeting, err := h.meetings.UpdateMeeting(r.Context(), application.UpdateMeetingParams{
		Principal: principal,
		MeetingID: meetingID,
		Input:     req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toMeetingDTO(meeting))
}

func (h *MeetingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	meetingID := pathMeetingID(r)
	if meetingID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if err := h.meetings.CancelMeeting(r.Context(), principal, meetingID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *MeetingHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	meeting, err := h.meetings.JoinByCode(r.Context(), principal, req.Code)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toMeetingDTO(meeting))
}

func (h *MeetingHandler) AddGuest(w http.ResponseWriter, r *http.Request) {
	meetingID := pathMeetingID(r)
	if meetingID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req guestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	meeting, err := h.meetings.AddGuest(r.Context(), application.AddGuestParams{
		Principal:    principal,
		MeetingID:    meetingID,
		Name:         req.Name,
		Availability: toGridHours(req.Availability),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toMeetingDTO(meeting))
}

func (h *MeetingHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	meetingID := pathMeetingID(r)
	if meetingID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	result, err := h.meetings.Recommend(r.Context(), principal, meetingID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toRecommendationDTO(result))
}

func (h *MeetingHandler) ConfirmSlot(w http.ResponseWriter, r *http.Request) {
	meetingID := pathMeetingID(r)
	if meetingID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req confirmSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	meeting, failures, err := h.slots.Confirm(r.Context(), application.ConfirmSlotParams{
		Principal:  principal,
		MeetingID:  meetingID,
		AnchorHour: req.AnchorHour,
		Label:      req.Label,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := confirmSlotResponse{Meeting: toMeetingDTO(meeting)}
	for _, failure := range failures {
		resp.GridFailures = append(resp.GridFailures, failure.UserID)
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (h *MeetingHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	meetingID := pathMeetingID(r)
	if meetingID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	meeting, err := h.meetings.GetMeeting(r.Context(), principal, meetingID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	if meeting.SelectedSlot == nil {
		h.responder.writeJSON(r.Context(), w, http.StatusConflict, errorResponse{
			Message: "The meeting has no confirmed slot to export.",
		})
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="meeting.ics"`)
	if err := ical.WriteMeeting(w, meeting); err != nil {
		handlerLogger(r.Context(), h.logger, "meeting", "calendar").ErrorContext(r.Context(), "calendar export failed", "error", err)
	}
}

func pathMeetingID(r *http.Request) string {
	return strings.TrimSpace(mux.Vars(r)["id"])
}

type meetingRequest struct {
	Title         string   `json:"title"`
	Date          string   `json:"date"`
	DurationHours int      `json:"durationHours"`
	FlexMinutes   int      `json:"flexMinutes"`
	Modality      string   `json:"type"`
	Platform      string   `json:"platform,omitempty"`
	Location      string   `json:"location,omitempty"`
	Recurring     bool     `json:"recurring"`
	Tags          []string `json:"tags"`
}

func (r meetingRequest) toInput() application.MeetingInput {
	return application.MeetingInput{
		Title:         r.Title,
		Date:          r.Date,
		DurationHours: r.DurationHours,
		FlexMinutes:   r.FlexMinutes,
		Modality:      r.Modality,
		Platform:      r.Platform,
		Location:      r.Location,
		Recurring:     r.Recurring,
		Tags:          r.Tags,
	}
}

type joinRequest struct {
	Code string `json:"code"`
}

type guestRequest struct {
	Name         string           `json:"name"`
	Availability map[string][]int `json:"availability"`
}

type confirmSlotRequest struct {
	AnchorHour int    `json:"anchorHour"`
	Label      string `json:"label,omitempty"`
}

type confirmSlotResponse struct {
	Meeting      meetingDTO `json:"meeting"`
	GridFailures []string   `json:"gridFailures,omitempty"`
}

type meetingDTO struct {
	ID            string           `json:"id"`
	OwnerID       string           `json:"ownerId"`
	Title         string           `json:"title"`
	Date          string           `json:"date"`
	DurationHours int              `json:"durationHours"`
	FlexMinutes   int              `json:"flexMinutes"`
	Modality      string           `json:"type"`
	Platform      string           `json:"platform,omitempty"`
	Location      string           `json:"location,omitempty"`
	Recurring     bool             `json:"recurring"`
	Tags          []string         `json:"tags"`
	JoinCode      string           `json:"joinCode"`
	Participants  []participantDTO `json:"participants"`
	SelectedSlot  *selectedSlotDTO `json:"selectedSlot,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

type participantDTO struct {
	ID          string `json:"id"`
	UserID      string `json:"userId,omitempty"`
	DisplayName string `json:"displayName"`
	Guest       bool   `json:"guest"`
}

type selectedSlotDTO struct {
	Label      string `json:"label"`
	AnchorHour int    `json:"anchorHour"`
	Weekday    string `json:"weekday"`
}

type recommendationDTO struct {
	Weekday    string         `json:"weekday"`
	Reason     string         `json:"reason"`
	Candidates []candidateDTO `json:"candidates"`
}

type candidateDTO struct {
	AnchorHour int    `json:"anchorHour"`
	Label      string `json:"label"`
}

func toMeetingDTO(meeting persistence.Meeting) meetingDTO {
	dto := meetingDTO{
		ID:            meeting.ID,
		OwnerID:       meeting.OwnerID,
		Title:         meeting.Title,
		Date:          meeting.Date,
		DurationHours: meeting.DurationHours,
		FlexMinutes:   meeting.FlexMinutes,
		Modality:      meeting.Modality,
		Platform:      meeting.Platform,
		Location:      meeting.Location,
		Recurring:     meeting.Recurring,
		Tags:          meeting.Tags,
		JoinCode:      meeting.JoinCode,
		CreatedAt:     meeting.CreatedAt,
		UpdatedAt:     meeting.UpdatedAt,
	}
	if dto.Tags == nil {
		dto.Tags = []string{}
	}
	dto.Participants = make([]participantDTO, 0, len(meeting.Participants))
	for _, participant := range meeting.Participants {
		dto.Participants = append(dto.Participants, participantDTO{
			ID:          participant.ID,
			UserID:      participant.UserID,
			DisplayName: participant.DisplayName,
			Guest:       participant.Guest,
		})
	}
	if meeting.SelectedSlot != nil {
		dto.SelectedSlot = &selectedSlotDTO{
			Label:      meeting.SelectedSlot.Label,
			AnchorHour: meeting.SelectedSlot.AnchorHour,
			Weekday:    string(meeting.SelectedSlot.Weekday),
		}
	}
	return dto
}

func toRecommendationDTO(result application.RecommendationResult) recommendationDTO {
	dto := recommendationDTO{
		Weekday:    string(result.Weekday),
		Reason:     string(result.Reason),
		Candidates: make([]candidateDTO, 0, len(result.Candidates)),
	}
	for _, candidate := range result.Candidates {
		dto.Candidates = append(dto.Candidates, candidateDTO{
			AnchorHour: candidate.AnchorHour,
			Label:      candidate.Label,
		})
	}
	return dto
}

func toGridHours(in map[string][]int) map[schedule.Weekday][]int {
	if in == nil {
		return nil
	}
	out := make(map[schedule.Weekday][]int, len(in))
	for day, hours := range in {
		out[schedule.Weekday(day)] = hours
	}
	return out
}
