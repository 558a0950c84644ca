package application

import (
	"context"
	"time"

	"github.com/example/meetsync/internal/persistence"
	"github.com/example/meetsync/internal/schedule"
)

// Modality values accepted for a meeting.
const (
	ModalityOnline = "Online"
	ModalityOnSite = "On-site"
)

// Tags offered by the product. Free-form tags are rejected so stored records
// stay filterable.
var KnownTags = []string{"Work", "College", "School", "Friends", "Family", "Others"}

// Principal represents the authenticated identity invoking a service method.
type Principal struct {
	UserID string
}

// MeetingInput captures caller provided meeting fields.
type MeetingInput struct {
	Title         string
	Date          string // YYYY-MM-DD
	DurationHours int
	FlexMinutes   int
	Modality      string
	Platform      string
	Location      string
	Recurring     bool
	Tags          []string
}

// CreateMeetingParams wraps the data required to create a meeting.
type CreateMeetingParams struct {
	Principal Principal
	Input     MeetingInput
}

// UpdateMeetingParams wraps the data required to update an existing meeting.
type UpdateMeetingParams struct {
	Principal Principal
	MeetingID string
	Input     MeetingInput
}

// AddGuestParams wraps the data required to record a guest participant: a
// display name plus the availability captured once at add-time.
type AddGuestParams struct {
	Principal    Principal
	MeetingID    string
	Name         string
	Availability map[schedule.Weekday][]int
}

// RecommendationReason distinguishes the empty outcomes of a recommendation
// so callers can show different guidance text.
type RecommendationReason string

const (
	// ReasonOK indicates candidate windows were found.
	ReasonOK RecommendationReason = "ok"
	// ReasonNotEnoughParticipants indicates the meeting has fewer than two
	// participants, which never yields recommendations by product rule.
	ReasonNotEnoughParticipants RecommendationReason = "not_enough_participants"
	// ReasonNoCommonWindow indicates enough participants but no anchor where
	// everyone is free.
	ReasonNoCommonWindow RecommendationReason = "no_common_window"
)

// RecommendationResult is the outcome of enumerating feasible starts for a
// meeting.
type RecommendationResult struct {
	Weekday    schedule.Weekday
	Candidates []schedule.Candidate
	Reason     RecommendationReason
}

// ConfirmSlotParams wraps the data required to commit a candidate window.
type ConfirmSlotParams struct {
	Principal  Principal
	MeetingID  string
	AnchorHour int
	Label      string
}

// GridUpdateFailure reports one participant whose availability grid could not
// be updated during slot confirmation.
type GridUpdateFailure struct {
	UserID string
	Err    error
}

// ProfileInput captures caller provided profile fields.
type ProfileInput struct {
	FirstName    string
	LastName     string
	Availability map[schedule.Weekday][]int
}

// UpdateProfileParams wraps the data required to update the caller's profile.
type UpdateProfileParams struct {
	Principal Principal
	Input     ProfileInput
}

// NewUserInput captures the fields required to provision an account.
type NewUserInput struct {
	Email     string
	FirstName string
	LastName  string
}

// MeetingStore captures the meeting persistence interactions needed by the
// services.
type MeetingStore interface {
	CreateMeeting(ctx context.Context, meeting persistence.Meeting) error
	UpdateMeeting(ctx context.Context, meeting persistence.Meeting) error
	GetMeeting(ctx context.Context, id string) (persistence.Meeting, error)
	GetMeetingByJoinCode(ctx context.Context, code string) (persistence.Meeting, error)
	DeleteMeeting(ctx context.Context, id string) error
	AddParticipant(ctx context.Context, participant persistence.Participant) error
}

// UserStore captures the user persistence interactions needed by the
// services.
type UserStore interface {
	CreateUser(ctx context.Context, user persistence.User) error
	UpdateUser(ctx context.Context, user persistence.User) error
	GetUser(ctx context.Context, id string) (persistence.User, error)
	GetUserByEmail(ctx context.Context, email string) (persistence.User, error)
}

// TokenStore captures the token persistence interactions needed by the
// identity service.
type TokenStore interface {
	CreateToken(ctx context.Context, token persistence.AccessToken) error
	GetToken(ctx context.Context, id string) (persistence.AccessToken, error)
	DeleteExpiredTokens(ctx context.Context, reference time.Time) error
}
