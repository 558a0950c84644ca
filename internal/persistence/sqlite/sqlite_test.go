package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/meetsync/internal/persistence"
	"github.com/example/meetsync/internal/schedule"
)

func setupStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := Open("file:" + dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	return store
}

func testUser(id, email string) persistence.User {
	now := time.Date(2025, 6, 20, 8, 0, 0, 0, time.UTC)
	return persistence.User{
		ID:        id,
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		Availability: map[schedule.Weekday][]int{
			schedule.Monday: {9, 10, 11},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func mustCreateUser(t *testing.T, store *Store, id, email string) persistence.User {
	t.Helper()
	user := testUser(id, email)
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", id, err)
	}
	return user
}

func TestGridRoundTrip(t *testing.T) {
	t.Parallel()

	encoded, err := encodeGrid(map[schedule.Weekday][]int{
		schedule.Monday:  {9, 10},
		schedule.Tuesday: {},
	})
	if err != nil {
		t.Fatalf("encodeGrid failed: %v", err)
	}

	decoded, err := decodeGrid(encoded)
	if err != nil {
		t.Fatalf("decodeGrid failed: %v", err)
	}
	if got := decoded[schedule.Monday]; len(got) != 2 || got[0] != 9 || got[1] != 10 {
		t.Errorf("unexpected Monday hours %v", got)
	}
}

func TestTimeRoundTrip(t *testing.T) {
	t.Parallel()

	original := time.Date(2025, 6, 23, 12, 34, 56, 789000000, time.UTC)
	parsed, err := parseTime(formatTime(original))
	if err != nil {
		t.Fatalf("parseTime failed: %v", err)
	}
	if !parsed.Equal(original) {
		t.Errorf("expected %v, got %v", original, parsed)
	}
}
