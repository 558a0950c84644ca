// Package ical renders confirmed meetings as iCalendar documents so they can
// be imported into external calendar clients.
package ical

import (
	"errors"
	"fmt"
	"io"
	"time"

	goical "github.com/emersion/go-ical"

	"github.com/example/meetsync/internal/persistence"
)

// ErrNoSelectedSlot indicates the meeting has no confirmed slot to export.
var ErrNoSelectedSlot = errors.New("ical: meeting has no confirmed slot")

const productID = "-//meetsync//EN"

// WriteMeeting encodes a confirmed meeting as a single-event VCALENDAR. The
// event start is the meeting date at the confirmed anchor shifted by the
// meeting's flex; times are exported as UTC wall-clock values.
func WriteMeeting(w io.Writer, meeting persistence.Meeting) error {
	if meeting.SelectedSlot == nil {
		return ErrNoSelectedSlot
	}

	date, err := time.Parse("2006-01-02", meeting.Date)
	if err != nil {
		return fmt.Errorf("ical: bad meeting date %q: %w", meeting.Date, err)
	}

	start := date.Add(time.Duration(meeting.SelectedSlot.AnchorHour)*time.Hour +
		time.Duration(meeting.FlexMinutes)*time.Minute)
	end := start.Add(time.Duration(meeting.DurationHours) * time.Hour)

	event := goical.NewComponent(goical.CompEvent)
	event.Props.SetText(goical.PropUID, meeting.ID+"@meetsync")
	event.Props.SetText(goical.PropSummary, meeting.Title)
	event.Props.SetDateTime(goical.PropDateTimeStamp, meeting.UpdatedAt.UTC())
	event.Props.SetDateTime(goical.PropDateTimeStart, start.UTC())
	event.Props.SetDateTime(goical.PropDateTimeEnd, end.UTC())

	switch meeting.Modality {
	case "On-site":
		if meeting.Location != "" {
			event.Props.SetText(goical.PropLocation, meeting.Location)
		}
	default:
		if meeting.Platform != "" {
			event.Props.SetText(goical.PropDescription, "Online via "+meeting.Platform)
		}
	}

	cal := goical.NewCalendar()
	cal.Props.SetText(goical.PropVersion, "2.0")
	cal.Props.SetText(goical.PropProductID, productID)
	cal.Children = append(cal.Children, event)

	return goical.NewEncoder(w).Encode(cal)
}
