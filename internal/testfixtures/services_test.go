package testfixtures

import (
	"context"
	"testing"
	"time"

	"github.com/example/meetsync/internal/application"
)

func TestServiceFactoryDefaults(t *testing.T) {
	t.Parallel()

	factory := NewServiceFactory()
	if factory.Clock == nil {
		t.Fatal("factory clock is nil")
	}
	if factory.IDGenerator == nil {
		t.Fatal("factory id generator is nil")
	}
	if got := factory.Clock.Now(); !got.Equal(ReferenceTime()) {
		t.Fatalf("default clock = %v, want %v", got, ReferenceTime())
	}
}

func TestServiceFactoryBuildsWorkingServices(t *testing.T) {
	t.Parallel()

	harness := NewSQLiteHarness(t)
	factory := NewServiceFactory(WithIDGenerator(NewIDGenerator("fx")))

	identity := factory.NewIdentityService(IdentityServiceDeps{
		Users:    harness.Store,
		Tokens:   harness.Store,
		TokenTTL: time.Hour,
	})

	user, err := identity.CreateUser(context.Background(), application.NewUserInput{
		Email:     "ada@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.ID != "fx-1" {
		t.Fatalf("user ID = %q, want deterministic %q", user.ID, "fx-1")
	}
	if !user.CreatedAt.Equal(ReferenceTime()) {
		t.Fatalf("user CreatedAt = %v, want %v", user.CreatedAt, ReferenceTime())
	}
}
