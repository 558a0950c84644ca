package persistence

import (
	"time"

	"github.com/example/meetsync/internal/schedule"
)

// User represents a registered account together with its weekly availability
// grid. The grid is owned by exactly one user and is mutated both by profile
// edits and by slot confirmation.
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	Availability map[schedule.Weekday][]int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Participant is one entry of a meeting's participant list. A registered
// participant references a user; a guest carries the availability snapshot
// captured when the owner recorded it.
type Participant struct {
	ID           string
	MeetingID    string
	UserID       string
	DisplayName  string
	Guest        bool
	Availability map[schedule.Weekday][]int
	CreatedAt    time.Time
}

// SelectedSlot is the committed candidate window of a meeting.
type SelectedSlot struct {
	Label      string
	AnchorHour int
	Weekday    schedule.Weekday
}

// Meeting represents a proposed or scheduled meeting.
type Meeting struct {
	ID            string
	OwnerID       string
	Title         string
	Date          string // YYYY-MM-DD
	DurationHours int
	FlexMinutes   int
	Modality      string // "Online" or "On-site"
	Platform      string
	Location      string
	Recurring     bool
	Tags          []string
	JoinCode      string
	Participants  []Participant
	SelectedSlot  *SelectedSlot
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AccessToken is an opaque credential resolved by the identity provider. The
// secret is stored only as an argon2id digest.
type AccessToken struct {
	ID           string
	UserID       string
	SecretDigest string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}
