package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/meetsync/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// MeetingServiceDeps captures dependencies for constructing a meeting
// service.
type MeetingServiceDeps struct {
	Meetings      application.MeetingStore
	Users         application.UserStore
	IDGenerator   func() string
	CodeGenerator func() string
	Now           func() time.Time
	Logger        *slog.Logger
}

// NewMeetingService builds a meeting service using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewMeetingService(deps MeetingServiceDeps) *application.MeetingService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	service := application.NewMeetingService(deps.Meetings, deps.Users, idGen, now, deps.Logger)
	if deps.CodeGenerator != nil {
		service = service.WithCodeGenerator(deps.CodeGenerator)
	}
	return service
}

// SlotServiceDeps captures dependencies for constructing a slot service.
type SlotServiceDeps struct {
	Meetings application.MeetingStore
	Users    application.UserStore
	Now      func() time.Time
	Logger   *slog.Logger
}

// NewSlotService builds a slot service using the supplied dependencies.
func (f *ServiceFactory) NewSlotService(deps SlotServiceDeps) *application.SlotService {
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewSlotService(deps.Meetings, deps.Users, now, deps.Logger)
}

// IdentityServiceDeps captures dependencies for constructing an identity
// service.
type IdentityServiceDeps struct {
	Users       application.UserStore
	Tokens      application.TokenStore
	IDGenerator func() string
	Now         func() time.Time
	TokenTTL    time.Duration
	Logger      *slog.Logger
}

// NewIdentityService builds an identity service using the supplied
// dependencies.
func (f *ServiceFactory) NewIdentityService(deps IdentityServiceDeps) *application.IdentityService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	service := application.NewIdentityService(deps.Users, deps.Tokens, idGen, now, deps.Logger)
	if deps.TokenTTL > 0 {
		service = service.WithTokenTTL(deps.TokenTTL)
	}
	return service
}

// AvailabilityServiceDeps captures dependencies for constructing an
// availability service.
type AvailabilityServiceDeps struct {
	Users  application.UserStore
	Now    func() time.Time
	Logger *slog.Logger
}

// NewAvailabilityService builds an availability service using the supplied
// dependencies.
func (f *ServiceFactory) NewAvailabilityService(deps AvailabilityServiceDeps) *application.AvailabilityService {
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewAvailabilityService(deps.Users, now, deps.Logger)
}
