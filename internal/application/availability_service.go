package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/example/meetsync/internal/persistence"
	"github.com/example/meetsync/internal/schedule"
)

// AvailabilityService exposes profile reads and writes, normalizing the
// weekly availability grid on the way in.
type AvailabilityService struct {
	users  UserStore
	now    func() time.Time
	logger *slog.Logger
}

// NewAvailabilityService wires dependencies for profile operations.
func NewAvailabilityService(users UserStore, now func() time.Time, logger *slog.Logger) *AvailabilityService {
	if now == nil {
		now = time.Now
	}
	return &AvailabilityService{
		users:  users,
		now:    now,
		logger: defaultLogger(logger),
	}
}

// GetProfile returns the caller's own profile.
func (s *AvailabilityService) GetProfile(ctx context.Context, principal Principal) (persistence.User, error) {
	user, err := s.users.GetUser(ctx, principal.UserID)
	if err != nil {
		return persistence.User{}, mapStoreError(err)
	}
	return user, nil
}

// UpdateProfile replaces the caller's name and availability grid. The grid
// is normalized: hours outside the bookable day and duplicates are dropped,
// unknown day names rejected.
func (s *AvailabilityService) UpdateProfile(ctx context.Context, params UpdateProfileParams) (persistence.User, error) {
	logger := serviceLogger(ctx, s.logger, "availability", "update_profile", "user_id", params.Principal.UserID)

	input, vErr := normalizeProfileInput(params.Input)
	if vErr.HasErrors() {
		return persistence.User{}, vErr
	}

	user, err := s.users.GetUser(ctx, params.Principal.UserID)
	if err != nil {
		return persistence.User{}, mapStoreError(err)
	}

	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.Availability = schedule.GridFromHours(input.Availability).Hours()
	user.UpdatedAt = s.now()

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return persistence.User{}, mapStoreError(err)
	}
	logger.InfoContext(ctx, "profile updated")
	return user, nil
}

func normalizeProfileInput(input ProfileInput) (ProfileInput, *ValidationError) {
	vErr := &ValidationError{}

	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	if input.FirstName == "" {
		vErr.add("firstName", "first name is required")
	}

	for day := range input.Availability {
		if !schedule.IsValidWeekday(day) {
			vErr.add("availability", "unknown day: "+string(day))
		}
	}

	return input, vErr
}
