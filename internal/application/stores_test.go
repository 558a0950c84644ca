package application

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/example/meetsync/internal/persistence"
)

// fakeMeetingStore is an in-memory MeetingStore for service tests.
type fakeMeetingStore struct {
	mu       sync.Mutex
	meetings map[string]persistence.Meeting

	createErr error
	updateErr error
	getErr    error
}

func newFakeMeetingStore() *fakeMeetingStore {
	return &fakeMeetingStore{meetings: make(map[string]persistence.Meeting)}
}

func (s *fakeMeetingStore) CreateMeeting(ctx context.Context, meeting persistence.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	for _, existing := range s.meetings {
		if existing.JoinCode == meeting.JoinCode {
			return persistence.ErrDuplicate
		}
	}
	s.meetings[meeting.ID] = cloneMeeting(meeting)
	return nil
}

func (s *fakeMeetingStore) UpdateMeeting(ctx context.Context, meeting persistence.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	existing, ok := s.meetings[meeting.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	meeting.Participants = existing.Participants
	s.meetings[meeting.ID] = cloneMeeting(meeting)
	return nil
}

func (s *fakeMeetingStore) GetMeeting(ctx context.Context, id string) (persistence.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return persistence.Meeting{}, s.getErr
	}
	meeting, ok := s.meetings[id]
	if !ok {
		return persistence.Meeting{}, persistence.ErrNotFound
	}
	return cloneMeeting(meeting), nil
}

func (s *fakeMeetingStore) GetMeetingByJoinCode(ctx context.Context, code string) (persistence.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, meeting := range s.meetings {
		if meeting.JoinCode == code {
			return cloneMeeting(meeting), nil
		}
	}
	return persistence.Meeting{}, persistence.ErrNotFound
}

func (s *fakeMeetingStore) DeleteMeeting(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.meetings[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.meetings, id)
	return nil
}

func (s *fakeMeetingStore) AddParticipant(ctx context.Context, participant persistence.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	meeting, ok := s.meetings[participant.MeetingID]
	if !ok {
		return persistence.ErrNotFound
	}
	for _, existing := range meeting.Participants {
		if !existing.Guest && !participant.Guest && existing.UserID == participant.UserID {
			return persistence.ErrDuplicate
		}
	}
	meeting.Participants = append(meeting.Participants, participant)
	s.meetings[participant.MeetingID] = meeting
	return nil
}

func cloneMeeting(meeting persistence.Meeting) persistence.Meeting {
	out := meeting
	out.Participants = append([]persistence.Participant(nil), meeting.Participants...)
	if meeting.SelectedSlot != nil {
		slot := *meeting.SelectedSlot
		out.SelectedSlot = &slot
	}
	return out
}

// fakeUserStore is an in-memory UserStore for service tests. failGets makes
// the next N GetUser calls return ErrTransient so retry paths can be
// exercised.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]persistence.User

	failGets    int
	updateErr   error
	updateCalls []string
}

func newFakeUserStore(users ...persistence.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[string]persistence.User)}
	for _, user := range users {
		s.users[user.ID] = user
	}
	return s
}

func (s *fakeUserStore) CreateUser(ctx context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return persistence.ErrDuplicate
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) UpdateUser(ctx context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateCalls = append(s.updateCalls, user.ID)
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.users[user.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) GetUser(ctx context.Context, id string) (persistence.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGets > 0 {
		s.failGets--
		return persistence.User{}, persistence.ErrTransient
	}
	user, ok := s.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

func (s *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

func (s *fakeUserStore) updatedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := append([]string(nil), s.updateCalls...)
	sort.Strings(ids)
	return ids
}

// fakeTokenStore is an in-memory TokenStore for identity tests.
type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]persistence.AccessToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]persistence.AccessToken)}
}

func (s *fakeTokenStore) CreateToken(ctx context.Context, token persistence.AccessToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[token.ID]; ok {
		return persistence.ErrDuplicate
	}
	s.tokens[token.ID] = token
	return nil
}

func (s *fakeTokenStore) GetToken(ctx context.Context, id string) (persistence.AccessToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[id]
	if !ok {
		return persistence.AccessToken{}, persistence.ErrNotFound
	}
	return token, nil
}

func (s *fakeTokenStore) DeleteExpiredTokens(ctx context.Context, reference time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, token := range s.tokens {
		if !token.ExpiresAt.After(reference) {
			delete(s.tokens, id)
		}
	}
	return nil
}

// sequenceIDs returns an id generator yielding id-1, id-2, ...
func sequenceIDs() func() string {
	var n int
	var mu sync.Mutex
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return "id-" + strconv.Itoa(n)
	}
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 23, 12, 0, 0, 0, time.UTC)
}
