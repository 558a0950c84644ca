// Package testfixtures provides deterministic builders, clocks and storage
// harnesses shared by service and integration tests.
package testfixtures

import (
	"time"

	"github.com/example/meetsync/internal/persistence"
	"github.com/example/meetsync/internal/schedule"
)

// ReferenceTime is the shared instant used by fixtures when no explicit time
// is supplied. It falls on a Monday so weekday-sensitive assertions read
// naturally.
func ReferenceTime() time.Time {
	return time.Date(2025, 6, 23, 12, 0, 0, 0, time.UTC)
}

// ReferenceDate is ReferenceTime's calendar day in the wire format meetings
// use.
const ReferenceDate = "2025-06-23"

// UserOption mutates a user fixture before it is returned.
type UserOption func(*persistence.User)

// WithName overrides the fixture's first and last name.
func WithName(first, last string) UserOption {
	return func(u *persistence.User) {
		u.FirstName = first
		u.LastName = last
	}
}

// WithAvailability replaces the fixture's availability grid.
func WithAvailability(grid map[schedule.Weekday][]int) UserOption {
	return func(u *persistence.User) {
		u.Availability = grid
	}
}

// NewUser returns a user fixture with a Monday-morning availability grid.
// The email is derived from the id so fixtures never collide on the unique
// email index.
func NewUser(id string, opts ...UserOption) persistence.User {
	user := persistence.User{
		ID:        id,
		Email:     id + "@example.com",
		FirstName: "Test",
		LastName:  "User",
		Availability: map[schedule.Weekday][]int{
			schedule.Monday: {9, 10, 11},
		},
		CreatedAt: ReferenceTime(),
		UpdatedAt: ReferenceTime(),
	}
	for _, opt := range opts {
		opt(&user)
	}
	return user
}

// MeetingOption mutates a meeting fixture before it is returned.
type MeetingOption func(*persistence.Meeting)

// WithWindow overrides the duration and flex of the fixture.
func WithWindow(durationHours, flexMinutes int) MeetingOption {
	return func(m *persistence.Meeting) {
		m.DurationHours = durationHours
		m.FlexMinutes = flexMinutes
	}
}

// WithDate overrides the fixture's meeting day.
func WithDate(date string) MeetingOption {
	return func(m *persistence.Meeting) {
		m.Date = date
	}
}

// WithSelectedSlot marks the fixture as confirmed at the given anchor.
func WithSelectedSlot(slot persistence.SelectedSlot) MeetingOption {
	return func(m *persistence.Meeting) {
		m.SelectedSlot = &slot
	}
}

// WithParticipants replaces the fixture's participant list.
func WithParticipants(participants ...persistence.Participant) MeetingOption {
	return func(m *persistence.Meeting) {
		m.Participants = participants
	}
}

// NewMeeting returns an online meeting fixture owned by ownerID with the
// owner already enrolled. The join code is derived from the id; callers
// creating several meetings in one store should pass distinct ids.
func NewMeeting(id, ownerID string, opts ...MeetingOption) persistence.Meeting {
	meeting := persistence.Meeting{
		ID:            id,
		OwnerID:       ownerID,
		Title:         "Weekly sync",
		Date:          ReferenceDate,
		DurationHours: 1,
		FlexMinutes:   0,
		Modality:      "Online",
		Platform:      "Zoom",
		Tags:          []string{"Work"},
		JoinCode:      joinCodeFor(id),
		Participants: []persistence.Participant{
			RegisteredParticipant(id+"-p1", id, ownerID, "Test User"),
		},
		CreatedAt: ReferenceTime(),
		UpdatedAt: ReferenceTime(),
	}
	for _, opt := range opts {
		opt(&meeting)
	}
	return meeting
}

// RegisteredParticipant returns a participant entry referencing a user
// account.
func RegisteredParticipant(id, meetingID, userID, displayName string) persistence.Participant {
	return persistence.Participant{
		ID:          id,
		MeetingID:   meetingID,
		UserID:      userID,
		DisplayName: displayName,
		CreatedAt:   ReferenceTime(),
	}
}

// GuestParticipant returns a guest entry carrying an availability snapshot.
func GuestParticipant(id, meetingID, displayName string, grid map[schedule.Weekday][]int) persistence.Participant {
	return persistence.Participant{
		ID:           id,
		MeetingID:    meetingID,
		DisplayName:  displayName,
		Guest:        true,
		Availability: grid,
		CreatedAt:    ReferenceTime(),
	}
}

// joinCodeFor derives a stable five-letter join code from the meeting id.
// Codes share the product's M prefix and stay unique per distinct id.
func joinCodeFor(id string) string {
	code := []byte{'M', 'A', 'A', 'A', 'A'}
	for i, r := range []byte(id) {
		code[1+i%4] = 'A' + (code[1+i%4]-'A'+r)%26
	}
	return string(code)
}
