package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/example/meetsync/internal/persistence"
	"github.com/example/meetsync/internal/schedule"
)

// SlotService commits a recommended window onto a meeting and carves the
// occupied hours out of every registered participant's availability.
//
// Confirmation is not serialized across clients: two owners device-racing a
// confirm can both pass the candidate check and the last write wins. Grid
// subtraction is likewise applied per participant without locking. Both are
// accepted trade-offs of the single-writer usage pattern.
type SlotService struct {
	meetings MeetingStore
	users    UserStore
	now      func() time.Time
	logger   *slog.Logger
}

// NewSlotService wires dependencies for slot confirmation.
func NewSlotService(meetings MeetingStore, users UserStore, now func() time.Time, logger *slog.Logger) *SlotService {
	if now == nil {
		now = time.Now
	}
	return &SlotService{
		meetings: meetings,
		users:    users,
		now:      now,
		logger:   defaultLogger(logger),
	}
}

// Confirm pins the given anchor hour as the meeting's selected slot and
// subtracts the occupied range from each registered participant's grid.
// Grid updates are best effort: failures are collected and returned rather
// than aborting the committed slot. Confirming the same slot twice is a
// no-op for grids already missing the occupied hours.
func (s *SlotService) Confirm(ctx context.Context, params ConfirmSlotParams) (persistence.Meeting, []GridUpdateFailure, error) {
	logger := serviceLogger(ctx, s.logger, "slot", "confirm", "meeting_id", params.MeetingID)

	meeting, err := s.meetings.GetMeeting(ctx, params.MeetingID)
	if err != nil {
		return persistence.Meeting{}, nil, mapStoreError(err)
	}
	if meeting.OwnerID != params.Principal.UserID {
		return persistence.Meeting{}, nil, ErrUnauthorized
	}

	day, err := meetingWeekday(meeting)
	if err != nil {
		return persistence.Meeting{}, nil, err
	}

	label, err := candidateLabel(meeting, params.AnchorHour)
	if err != nil {
		return persistence.Meeting{}, nil, err
	}
	if params.Label != "" && params.Label != label {
		vErr := &ValidationError{}
		vErr.add("label", "label does not match the anchor hour for this meeting")
		return persistence.Meeting{}, nil, vErr
	}

	meeting.SelectedSlot = &persistence.SelectedSlot{
		Label:      label,
		AnchorHour: params.AnchorHour,
		Weekday:    day,
	}
	meeting.UpdatedAt = s.now()
	if err := s.meetings.UpdateMeeting(ctx, meeting); err != nil {
		return persistence.Meeting{}, nil, mapStoreError(err)
	}
	logger.InfoContext(ctx, "slot confirmed", "label", label)

	from, to := schedule.OccupiedRange(params.AnchorHour, meeting.DurationHours, meeting.FlexMinutes)
	failures := s.subtractFromParticipants(ctx, logger, meeting, day, from, to)
	return meeting, failures, nil
}

// subtractFromParticipants removes [from, to) on day from every registered
// participant's grid. Each participant is re-read immediately before the
// write so a concurrent profile edit is not clobbered with stale hours.
func (s *SlotService) subtractFromParticipants(ctx context.Context, logger *slog.Logger, meeting persistence.Meeting, day schedule.Weekday, from, to int) []GridUpdateFailure {
	var failures []GridUpdateFailure
	for _, participant := range meeting.Participants {
		if participant.Guest {
			continue
		}
		if err := s.subtractFromUser(ctx, participant.UserID, day, from, to); err != nil {
			logger.WarnContext(ctx, "grid update failed", "user_id", participant.UserID, "error", err)
			failures = append(failures, GridUpdateFailure{UserID: participant.UserID, Err: err})
		}
	}
	return failures
}

func (s *SlotService) subtractFromUser(ctx context.Context, userID string, day schedule.Weekday, from, to int) error {
	user, err := getUserWithRetry(ctx, s.users, userID)
	if err != nil {
		return err
	}
	grid := schedule.GridFromHours(user.Availability)
	if !grid.Subtract(day, from, to) {
		return nil
	}
	user.Availability = grid.Hours()
	user.UpdatedAt = s.now()
	if err := s.users.UpdateUser(ctx, user); err != nil && errors.Is(err, persistence.ErrTransient) {
		return s.users.UpdateUser(ctx, user)
	} else if err != nil {
		return err
	}
	return nil
}

// candidateLabel recomputes the display window for an anchor hour against
// the meeting's own duration and flex, rejecting anchors outside the
// offerable range.
func candidateLabel(meeting persistence.Meeting, anchorHour int) (string, error) {
	candidate, err := schedule.CandidateAt(anchorHour, meeting.DurationHours, meeting.FlexMinutes)
	if err != nil {
		vErr := &ValidationError{}
		vErr.add("anchorHour", err.Error())
		return "", vErr
	}
	return candidate.Label, nil
}
