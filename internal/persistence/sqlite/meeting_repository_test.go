package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/meetsync/internal/persistence"
	"github.com/example/meetsync/internal/schedule"
)

func testMeeting(id, ownerID, joinCode string, createdAt time.Time) persistence.Meeting {
	return persistence.Meeting{
		ID:            id,
		OwnerID:       ownerID,
		Title:         "Weekly sync",
		Date:          "2025-06-23",
		DurationHours: 1,
		FlexMinutes:   0,
		Modality:      "Online",
		Platform:      "Zoom",
		Tags:          []string{"Work"},
		JoinCode:      joinCode,
		Participants: []persistence.Participant{
			{ID: id + "-p1", MeetingID: id, UserID: ownerID, DisplayName: "Test User", CreatedAt: createdAt},
		},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestMeetingRepository_CreateAndGet(t *testing.T) {
	t.Parallel()

	store := setupStore(t)
	ctx := context.Background()
	createdAt := time.Date(2025, 6, 20, 8, 0, 0, 0, time.UTC)

	mustCreateUser(t, store, "owner", "owner@example.com")
	if err := store.CreateMeeting(ctx, testMeeting("m1", "owner", "MABCD", createdAt)); err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}

	retrieved, err := store.GetMeeting(ctx, "m1")
	if err != nil {
		t.Fatalf("GetMeeting failed: %v", err)
	}
	if retrieved.Title != "Weekly sync" || retrieved.JoinCode != "MABCD" {
		t.Errorf("unexpected meeting %+v", retrieved)
	}
	if len(retrieved.Tags) != 1 || retrieved.Tags[0] != "Work" {
		t.Errorf("expected tags [Work], got %v", retrieved.Tags)
	}
	if len(retrieved.Participants) != 1 || retrieved.Participants[0].UserID != "owner" {
		t.Errorf("expected owner participant, got %+v", retrieved.Participants)
	}
	if retrieved.SelectedSlot != nil {
		t.Errorf("expected no selected slot, got %+v", retrieved.SelectedSlot)
	}
}

func TestMeetingRepository_JoinCodeLookup(t *testing.T) {
	t.Parallel()

	store := setupStore(t)
	ctx := context.Background()
	createdAt := time.Date(2025, 6, 20, 8, 0, 0, 0, time.UTC)

	mustCreateUser(t, store, "owner", "owner@example.com")
	if err := store.CreateMeeting(ctx, testMeeting("m1", "owner", "MABCD", createdAt)); err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}

	retrieved, err := store.GetMeetingByJoinCode(ctx, "MABCD")
	if err != nil {
		t.Fatalf("GetMeetingByJoinCode failed: %v", err)
	}
	if retrieved.ID != "m1" {
		t.Errorf("expected m1, got %q", retrieved.ID)
	}

	if _, err := store.GetMeetingByJoinCode(ctx, "MZZZZ"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMeetingRepository_DuplicateJoinCode(t *testing.T) {
	t.Parallel()

	store := setupStore(t)
	ctx := context.Background()
	createdAt := time.Date(2025, 6, 20, 8, 0, 0, 0, time.UTC)

	mustCreateUser(t, store, "owner", "owner@example.com")
	if err := store.CreateMeeting(ctx, testMeeting("m1", "owner", "MABCD", createdAt)); err != nil {
		t.Fatalf("first CreateMeeting failed: %v", err)
	}

	err := store.CreateMeeting(ctx, testMeeting("m2", "owner", "MABCD", createdAt))
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for reused join code, got %v", err)
	}
}

func TestMeetingRepository_UpdateSlot(t *testing.T) {
	t.Parallel()

	store := setupStore(t)
	ctx := context.Background()
	createdAt := time.Date(2025, 6, 20, 8, 0, 0, 0, time.UTC)

	mustCreateUser(t, store, "owner", "owner@example.com")
	meeting := testMeeting("m1", "owner", "MABCD", createdAt)
	if err := store.CreateMeeting(ctx, meeting); err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}

	meeting.SelectedSlot = &persistence.SelectedSlot{
		Label:      "09:00 - 10:00",
		AnchorHour: 9,
		Weekday:    schedule.Monday,
	}
	meeting.UpdatedAt = createdAt.Add(time.Hour)
	if err := store.UpdateMeeting(ctx, meeting); err != nil {
		t.Fatalf("UpdateMeeting failed: %v", err)
	}

	retrieved, err := store.GetMeeting(ctx, "m1")
	if err != nil {
		t.Fatalf("GetMeeting failed: %v", err)
	}
	if retrieved.SelectedSlot == nil {
		t.Fatal("expected selected slot persisted")
	}
	if retrieved.SelectedSlot.Label != "09:00 - 10:00" || retrieved.SelectedSlot.AnchorHour != 9 || retrieved.SelectedSlot.Weekday != schedule.Monday {
		t.Errorf("unexpected slot %+v", retrieved.SelectedSlot)
	}

	// Clearing the slot nulls the columns.
	meeting.SelectedSlot = nil
	if err := store.UpdateMeeting(ctx, meeting); err != nil {
		t.Fatalf("UpdateMeeting failed: %v", err)
	}
	retrieved, err = store.GetMeeting(ctx, "m1")
	if err != nil {
		t.Fatalf("GetMeeting failed: %v", err)
	}
	if retrieved.SelectedSlot != nil {
		t.Errorf("expected slot cleared, got %+v", retrieved.SelectedSlot)
	}
}

func TestMeetingRepository_AddParticipant(t *testing.T) {
	t.Parallel()

	store := setupStore(t)
	ctx := context.Background()
	createdAt := time.Date(2025, 6, 20, 8, 0, 0, 0, time.UTC)

	mustCreateUser(t, store, "owner", "owner@example.com")
	mustCreateUser(t, store, "member", "member@example.com")
	if err := store.CreateMeeting(ctx, testMeeting("m1", "owner", "MABCD", createdAt)); err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}

	member := persistence.Participant{
		ID:          "p2",
		MeetingID:   "m1",
		UserID:      "member",
		DisplayName: "Member",
		CreatedAt:   createdAt.Add(time.Minute),
	}
	if err := store.AddParticipant(ctx, member); err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}

	// Same registered user again violates the unique index.
	member.ID = "p3"
	if err := store.AddParticipant(ctx, member); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for double join, got %v", err)
	}

	// Guests carry a captured grid and are never unique-constrained.
	guest := persistence.Participant{
		ID:          "p4",
		MeetingID:   "m1",
		DisplayName: "Gus",
		Guest:       true,
		Availability: map[schedule.Weekday][]int{
			schedule.Monday: {9, 10},
		},
		CreatedAt: createdAt.Add(2 * time.Minute),
	}
	if err := store.AddParticipant(ctx, guest); err != nil {
		t.Fatalf("AddParticipant guest failed: %v", err)
	}

	retrieved, err := store.GetMeeting(ctx, "m1")
	if err != nil {
		t.Fatalf("GetMeeting failed: %v", err)
	}
	if len(retrieved.Participants) != 3 {
		t.Fatalf("expected 3 participants, got %d", len(retrieved.Participants))
	}
	stored := retrieved.Participants[2]
	if !stored.Guest || len(stored.Availability[schedule.Monday]) != 2 {
		t.Errorf("expected guest grid preserved, got %+v", stored)
	}
}

func TestMeetingRepository_DeleteCascades(t *testing.T) {
	t.Parallel()

	store := setupStore(t)
	ctx := context.Background()
	createdAt := time.Date(2025, 6, 20, 8, 0, 0, 0, time.UTC)

	mustCreateUser(t, store, "owner", "owner@example.com")
	if err := store.CreateMeeting(ctx, testMeeting("m1", "owner", "MABCD", createdAt)); err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}

	if err := store.DeleteMeeting(ctx, "m1"); err != nil {
		t.Fatalf("DeleteMeeting failed: %v", err)
	}
	if _, err := store.GetMeeting(ctx, "m1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	var count int
	if err := store.db.QueryRow(`SELECT COUNT(*) FROM meeting_participants WHERE meeting_id = 'm1'`).Scan(&count); err != nil {
		t.Fatalf("counting participants failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected participant rows cascaded, got %d", count)
	}

	if err := store.DeleteMeeting(ctx, "m1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for repeated delete, got %v", err)
	}
}

func TestMeetingRepository_Lists(t *testing.T) {
	t.Parallel()

	store := setupStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 20, 8, 0, 0, 0, time.UTC)

	mustCreateUser(t, store, "owner", "owner@example.com")
	mustCreateUser(t, store, "member", "member@example.com")

	older := testMeeting("m1", "owner", "MAAAA", base)
	newer := testMeeting("m2", "owner", "MBBBB", base.Add(time.Hour))
	foreign := testMeeting("m3", "member", "MCCCC", base.Add(2*time.Hour))
	for _, meeting := range []persistence.Meeting{older, newer, foreign} {
		if err := store.CreateMeeting(ctx, meeting); err != nil {
			t.Fatalf("CreateMeeting(%s) failed: %v", meeting.ID, err)
		}
	}

	if err := store.AddParticipant(ctx, persistence.Participant{
		ID: "px", MeetingID: "m3", UserID: "owner", DisplayName: "Test User", CreatedAt: base,
	}); err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}

	owned, err := store.ListMeetingsOwnedBy(ctx, "owner")
	if err != nil {
		t.Fatalf("ListMeetingsOwnedBy failed: %v", err)
	}
	if len(owned) != 2 || owned[0].ID != "m2" || owned[1].ID != "m1" {
		t.Fatalf("expected [m2 m1] newest first, got %+v", ids(owned))
	}

	participating, err := store.ListMeetingsWithParticipant(ctx, "owner")
	if err != nil {
		t.Fatalf("ListMeetingsWithParticipant failed: %v", err)
	}
	if len(participating) != 3 || participating[0].ID != "m3" {
		t.Fatalf("expected owner to participate in 3 meetings newest first, got %v", ids(participating))
	}
}

func ids(meetings []persistence.Meeting) []string {
	out := make([]string, 0, len(meetings))
	for _, meeting := range meetings {
		out = append(out, meeting.ID)
	}
	return out
}
