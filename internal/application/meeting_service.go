package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/meetsync/internal/persistence"
	"github.com/example/meetsync/internal/schedule"
)

const joinCodeAttempts = 5

// MeetingService orchestrates validation and persistence for meeting
// operations, including participant enrollment and slot recommendation.
type MeetingService struct {
	meetings      MeetingStore
	users         UserStore
	idGenerator   func() string
	codeGenerator func() string
	now           func() time.Time
	logger        *slog.Logger
}

// NewMeetingService wires dependencies for meeting operations.
func NewMeetingService(meetings MeetingStore, users UserStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *MeetingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &MeetingService{
		meetings:      meetings,
		users:         users,
		idGenerator:   idGenerator,
		codeGenerator: NewJoinCode,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

// WithCodeGenerator overrides join code generation, primarily for tests.
func (s *MeetingService) WithCodeGenerator(gen func() string) *MeetingService {
	if gen != nil {
		s.codeGenerator = gen
	}
	return s
}

// CreateMeeting validates the request, allocates a join code unique among
// active meetings, and enrolls the owner as the first participant.
func (s *MeetingService) CreateMeeting(ctx context.Context, params CreateMeetingParams) (persistence.Meeting, error) {
	logger := serviceLogger(ctx, s.logger, "meeting", "create", "owner_id", params.Principal.UserID)

	input, vErr := normalizeMeetingInput(params.Input)
	if vErr.HasErrors() {
		return persistence.Meeting{}, vErr
	}

	owner, err := s.users.GetUser(ctx, params.Principal.UserID)
	if err != nil {
		return persistence.Meeting{}, mapStoreError(err)
	}

	createdAt := s.now()
	meeting := persistence.Meeting{
		ID:            s.idGenerator(),
		OwnerID:       owner.ID,
		Title:         input.Title,
		Date:          input.Date,
		DurationHours: input.DurationHours,
		FlexMinutes:   input.FlexMinutes,
		Modality:      input.Modality,
		Platform:      input.Platform,
		Location:      input.Location,
		Recurring:     input.Recurring,
		Tags:          input.Tags,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	meeting.Participants = []persistence.Participant{{
		ID:          s.idGenerator(),
		MeetingID:   meeting.ID,
		UserID:      owner.ID,
		DisplayName: displayName(owner),
		CreatedAt:   createdAt,
	}}

	for attempt := 0; attempt < joinCodeAttempts; attempt++ {
		meeting.JoinCode = s.codeGenerator()
		err = s.meetings.CreateMeeting(ctx, meeting)
		if err == nil {
			logger.InfoContext(ctx, "meeting created", "meeting_id", meeting.ID)
			return meeting, nil
		}
		if !errors.Is(err, persistence.ErrDuplicate) {
			return persistence.Meeting{}, mapStoreError(err)
		}
	}
	return persistence.Meeting{}, fmt.Errorf("could not allocate a unique join code after %d attempts: %w", joinCodeAttempts, err)
}

// UpdateMeeting applies owner-only edits. The join code and the owner are
// immutable; changing the date, duration or flex clears any selected slot
// because a committed slot is only valid against the parameters it was
// offered for.
func (s *MeetingService) UpdateMeeting(ctx context.Context, params UpdateMeetingParams) (persistence.Meeting, error) {
	logger := serviceLogger(ctx, s.logger, "meeting", "update", "meeting_id", params.MeetingID)

	existing, err := s.meetings.GetMeeting(ctx, params.MeetingID)
	if err != nil {
		return persistence.Meeting{}, mapStoreError(err)
	}
	if existing.OwnerID != params.Principal.UserID {
		return persistence.Meeting{}, ErrUnauthorized
	}

	input, vErr := normalizeMeetingInput(params.Input)
	if vErr.HasErrors() {
		return persistence.Meeting{}, vErr
	}

	updated := existing
	updated.Title = input.Title
	updated.Date = input.Date
	updated.DurationHours = input.DurationHours
	updated.FlexMinutes = input.FlexMinutes
	updated.Modality = input.Modality
	updated.Platform = input.Platform
	updated.Location = input.Location
	updated.Recurring = input.Recurring
	updated.Tags = input.Tags
	updated.UpdatedAt = s.now()

	if existing.Date != updated.Date ||
		existing.DurationHours != updated.DurationHours ||
		existing.FlexMinutes != updated.FlexMinutes {
		if updated.SelectedSlot != nil {
			logger.InfoContext(ctx, "clearing selected slot after parameter change")
		}
		updated.SelectedSlot = nil
	}

	if err := s.meetings.UpdateMeeting(ctx, updated); err != nil {
		return persistence.Meeting{}, mapStoreError(err)
	}
	return updated, nil
}

// CancelMeeting hard-deletes a meeting. Owner only.
func (s *MeetingService) CancelMeeting(ctx context.Context, principal Principal, meetingID string) error {
	logger := serviceLogger(ctx, s.logger, "meeting", "cancel", "meeting_id", meetingID)

	existing, err := s.meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		return mapStoreError(err)
	}
	if existing.OwnerID != principal.UserID {
		return ErrUnauthorized
	}
	if err := s.meetings.DeleteMeeting(ctx, meetingID); err != nil {
		return mapStoreError(err)
	}
	logger.InfoContext(ctx, "meeting cancelled")
	return nil
}

// GetMeeting returns a meeting visible to its owner or any registered
// participant.
func (s *MeetingService) GetMeeting(ctx context.Context, principal Principal, meetingID string) (persistence.Meeting, error) {
	meeting, err := s.meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		return persistence.Meeting{}, mapStoreError(err)
	}
	if !isMember(meeting, principal.UserID) {
		return persistence.Meeting{}, ErrUnauthorized
	}
	return meeting, nil
}

// JoinByCode enrolls the caller into the meeting identified by a join code.
// Double-joining is rejected before any mutation.
func (s *MeetingService) JoinByCode(ctx context.Context, principal Principal, code string) (persistence.Meeting, error) {
	logger := serviceLogger(ctx, s.logger, "meeting", "join", "user_id", principal.UserID)

	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		vErr := &ValidationError{}
		vErr.add("code", "join code is required")
		return persistence.Meeting{}, vErr
	}

	meeting, err := s.meetings.GetMeetingByJoinCode(ctx, code)
	if err != nil {
		return persistence.Meeting{}, mapStoreError(err)
	}
	if isMember(meeting, principal.UserID) {
		return persistence.Meeting{}, ErrAlreadyJoined
	}

	user, err := s.users.GetUser(ctx, principal.UserID)
	if err != nil {
		return persistence.Meeting{}, mapStoreError(err)
	}

	participant := persistence.Participant{
		ID:          s.idGenerator(),
		MeetingID:   meeting.ID,
		UserID:      user.ID,
		DisplayName: displayName(user),
		CreatedAt:   s.now(),
	}
	if err := s.meetings.AddParticipant(ctx, participant); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return persistence.Meeting{}, ErrAlreadyJoined
		}
		return persistence.Meeting{}, mapStoreError(err)
	}

	meeting.Participants = append(meeting.Participants, participant)
	logger.InfoContext(ctx, "participant joined", "meeting_id", meeting.ID)
	return meeting, nil
}

// AddGuest records a guest participant holding only a display name and an
// availability grid captured now. Owner only. The enlarged participant set
// feeds the next recommendation.
func (s *MeetingService) AddGuest(ctx context.Context, params AddGuestParams) (persistence.Meeting, error) {
	logger := serviceLogger(ctx, s.logger, "meeting", "add_guest", "meeting_id", params.MeetingID)

	meeting, err := s.meetings.GetMeeting(ctx, params.MeetingID)
	if err != nil {
		return persistence.Meeting{}, mapStoreError(err)
	}
	if meeting.OwnerID != params.Principal.UserID {
		return persistence.Meeting{}, ErrUnauthorized
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		vErr := &ValidationError{}
		vErr.add("name", "guest name is required")
		return persistence.Meeting{}, vErr
	}

	participant := persistence.Participant{
		ID:          s.idGenerator(),
		MeetingID:   meeting.ID,
		DisplayName: name,
		Guest:       true,
		// Normalize through the grid type so out-of-range hours and
		// duplicates are dropped at capture time.
		Availability: schedule.GridFromHours(params.Availability).Hours(),
		CreatedAt:    s.now(),
	}
	if err := s.meetings.AddParticipant(ctx, participant); err != nil {
		return persistence.Meeting{}, mapStoreError(err)
	}

	meeting.Participants = append(meeting.Participants, participant)
	logger.InfoContext(ctx, "guest added", "participant_id", participant.ID)
	return meeting, nil
}

// Recommend enumerates the feasible start windows for a meeting from the
// current availability of every participant. Registered participants are
// read live; guests use the snapshot captured when they were added. The
// result distinguishes "not enough participants" from "no common window" so
// callers can render different guidance.
func (s *MeetingService) Recommend(ctx context.Context, principal Principal, meetingID string) (RecommendationResult, error) {
	meeting, err := s.meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		return RecommendationResult{}, mapStoreError(err)
	}
	if !isMember(meeting, principal.UserID) {
		return RecommendationResult{}, ErrUnauthorized
	}
	return s.recommendFor(ctx, meeting)
}

func (s *MeetingService) recommendFor(ctx context.Context, meeting persistence.Meeting) (RecommendationResult, error) {
	day, err := meetingWeekday(meeting)
	if err != nil {
		return RecommendationResult{}, err
	}

	result := RecommendationResult{Weekday: day}
	if len(meeting.Participants) < 2 {
		result.Reason = ReasonNotEnoughParticipants
		return result, nil
	}

	grids, err := s.participantGrids(ctx, meeting.Participants)
	if err != nil {
		return RecommendationResult{}, err
	}

	candidates, err := schedule.Recommend(day, meeting.DurationHours, meeting.FlexMinutes, grids)
	if err != nil {
		vErr := &ValidationError{}
		switch {
		case errors.Is(err, schedule.ErrInvalidDuration):
			vErr.add("duration", "duration must be 1, 2 or 3 hours")
		case errors.Is(err, schedule.ErrInvalidFlex):
			vErr.add("flex", "flex must be 0, 15, 30 or 60 minutes")
		default:
			return RecommendationResult{}, err
		}
		return RecommendationResult{}, vErr
	}

	result.Candidates = candidates
	if len(candidates) == 0 {
		result.Reason = ReasonNoCommonWindow
	} else {
		result.Reason = ReasonOK
	}
	return result, nil
}

// participantGrids resolves the current grid of every participant: live
// profile reads for registered users, captured snapshots for guests. Reads
// hitting a transient store failure are retried once.
func (s *MeetingService) participantGrids(ctx context.Context, participants []persistence.Participant) ([]schedule.Grid, error) {
	grids := make([]schedule.Grid, 0, len(participants))
	for _, participant := range participants {
		if participant.Guest {
			grids = append(grids, schedule.GridFromHours(participant.Availability))
			continue
		}
		user, err := getUserWithRetry(ctx, s.users, participant.UserID)
		if err != nil {
			return nil, mapStoreError(err)
		}
		grids = append(grids, schedule.GridFromHours(user.Availability))
	}
	return grids, nil
}

// getUserWithRetry performs a point read with a single retry on transient
// store failures.
func getUserWithRetry(ctx context.Context, users UserStore, id string) (persistence.User, error) {
	user, err := users.GetUser(ctx, id)
	if err != nil && errors.Is(err, persistence.ErrTransient) {
		return users.GetUser(ctx, id)
	}
	return user, err
}

func meetingWeekday(meeting persistence.Meeting) (schedule.Weekday, error) {
	date, err := time.Parse("2006-01-02", meeting.Date)
	if err != nil {
		vErr := &ValidationError{}
		vErr.add("date", "date must be YYYY-MM-DD")
		return "", vErr
	}
	return schedule.WeekdayOf(date), nil
}

func isMember(meeting persistence.Meeting, userID string) bool {
	if meeting.OwnerID == userID {
		return true
	}
	for _, participant := range meeting.Participants {
		if !participant.Guest && participant.UserID == userID {
			return true
		}
	}
	return false
}

func displayName(user persistence.User) string {
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name == "" {
		return user.Email
	}
	return name
}

func normalizeMeetingInput(input MeetingInput) (MeetingInput, *ValidationError) {
	vErr := &ValidationError{}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		vErr.add("title", "title is required")
	}

	if _, err := time.Parse("2006-01-02", strings.TrimSpace(input.Date)); err != nil {
		vErr.add("date", "date must be YYYY-MM-DD")
	} else {
		input.Date = strings.TrimSpace(input.Date)
	}

	if !schedule.IsValidDuration(input.DurationHours) {
		vErr.add("duration", "duration must be 1, 2 or 3 hours")
	}
	if !schedule.IsValidFlex(input.FlexMinutes) {
		vErr.add("flex", "flex must be 0, 15, 30 or 60 minutes")
	}

	switch input.Modality {
	case ModalityOnline:
		input.Location = ""
	case ModalityOnSite:
		input.Platform = ""
	default:
		vErr.add("modality", "modality must be Online or On-site")
	}

	tags := make([]string, 0, len(input.Tags))
	for _, tag := range input.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if !isKnownTag(tag) {
			vErr.add("tags", fmt.Sprintf("unknown tag: %s", tag))
			continue
		}
		tags = append(tags, tag)
	}
	input.Tags = tags

	return input, vErr
}

func isKnownTag(tag string) bool {
	for _, known := range KnownTags {
		if known == tag {
			return true
		}
	}
	return false
}

func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
