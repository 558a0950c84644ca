package persistence

import (
	"context"
	"time"
)

// UserRepository exposes CRUD operations for user accounts and their grids.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	DeleteUser(ctx context.Context, id string) error
}

// MeetingRepository stores meeting aggregates including their participant
// lists.
type MeetingRepository interface {
	CreateMeeting(ctx context.Context, meeting Meeting) error
	UpdateMeeting(ctx context.Context, meeting Meeting) error
	GetMeeting(ctx context.Context, id string) (Meeting, error)
	// GetMeetingByJoinCode resolves a join code by indexed equality lookup.
	GetMeetingByJoinCode(ctx context.Context, code string) (Meeting, error)
	DeleteMeeting(ctx context.Context, id string) error
	AddParticipant(ctx context.Context, participant Participant) error
	ListMeetingsOwnedBy(ctx context.Context, userID string) ([]Meeting, error)
	ListMeetingsWithParticipant(ctx context.Context, userID string) ([]Meeting, error)
}

// MeetingWatcher provides the live-query half of the store contract: a
// subscription receives the full current result set immediately and again
// after every change that may affect it. Cancel releases the subscription;
// the channel is closed once no further pushes will be delivered.
type MeetingWatcher interface {
	WatchMeetingsOwnedBy(ctx context.Context, userID string) (<-chan []Meeting, func(), error)
	WatchMeetingsWithParticipant(ctx context.Context, userID string) (<-chan []Meeting, func(), error)
}

// TokenRepository stores access tokens for the identity provider.
type TokenRepository interface {
	CreateToken(ctx context.Context, token AccessToken) error
	GetToken(ctx context.Context, id string) (AccessToken, error)
	DeleteExpiredTokens(ctx context.Context, reference time.Time) error
}
