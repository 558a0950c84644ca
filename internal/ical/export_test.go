package ical

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/example/meetsync/internal/persistence"
	"github.com/example/meetsync/internal/schedule"
	"github.com/example/meetsync/internal/testfixtures"
)

func confirmedMeeting() persistence.Meeting {
	return testfixtures.NewMeeting("m1", "owner",
		testfixtures.WithWindow(1, 30),
		testfixtures.WithSelectedSlot(persistence.SelectedSlot{
			Label:      "09:30 - 10:30",
			AnchorHour: 9,
			Weekday:    schedule.Monday,
		}),
	)
}

func TestWriteMeeting(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteMeeting(&buf, confirmedMeeting()); err != nil {
		t.Fatalf("WriteMeeting failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"BEGIN:VEVENT",
		"UID:m1@meetsync",
		"SUMMARY:Weekly sync",
		"DTSTART:20250623T093000Z",
		"DTEND:20250623T103000Z",
		"DESCRIPTION:Online via Zoom",
		"END:VEVENT",
		"END:VCALENDAR",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}
}

func TestWriteMeeting_OnSiteLocation(t *testing.T) {
	t.Parallel()

	meeting := confirmedMeeting()
	meeting.Modality = "On-site"
	meeting.Platform = ""
	meeting.Location = "Room 4"

	var buf bytes.Buffer
	if err := WriteMeeting(&buf, meeting); err != nil {
		t.Fatalf("WriteMeeting failed: %v", err)
	}
	if !strings.Contains(buf.String(), "LOCATION:Room 4") {
		t.Errorf("expected LOCATION property\n%s", buf.String())
	}
}

func TestWriteMeeting_RequiresSelectedSlot(t *testing.T) {
	t.Parallel()

	meeting := confirmedMeeting()
	meeting.SelectedSlot = nil

	if err := WriteMeeting(&bytes.Buffer{}, meeting); !errors.Is(err, ErrNoSelectedSlot) {
		t.Fatalf("expected ErrNoSelectedSlot, got %v", err)
	}
}
