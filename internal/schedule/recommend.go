package schedule

import (
	"errors"
	"fmt"
)

// DurationHours enumerates the offered meeting lengths.
var DurationHours = []int{1, 2, 3}

// FlexMinutes enumerates the offered start-time tolerances.
var FlexMinutes = []int{0, 15, 30, 60}

// ErrInvalidDuration indicates the duration is outside the offered enumeration.
var ErrInvalidDuration = errors.New("schedule: duration must be 1, 2 or 3 hours")

// ErrInvalidFlex indicates the flex is outside the offered enumeration.
var ErrInvalidFlex = errors.New("schedule: flex must be 0, 15, 30 or 60 minutes")

// Candidate is a feasible start for a meeting. AnchorHour is the nominal
// pre-flex hour being offered; Label renders the real window once flex is
// applied, e.g. "09:30 - 10:30".
type Candidate struct {
	AnchorHour int
	Label      string
}

// IsValidDuration reports whether hours is one of the offered lengths.
func IsValidDuration(hours int) bool {
	for _, d := range DurationHours {
		if d == hours {
			return true
		}
	}
	return false
}

// IsValidFlex reports whether minutes is one of the offered tolerances.
func IsValidFlex(minutes int) bool {
	for _, f := range FlexMinutes {
		if f == minutes {
			return true
		}
	}
	return false
}

// OccupiedRange computes the half-open whole-hour range a meeting blocks once
// flex shifts its start: [floor(anchor+flex), ceil(anchor+flex+duration)).
// Slot confirmation subtracts exactly this range from participant grids, so
// any stricter write-coordination variant must be layered around this single
// computation rather than repeating the math.
func OccupiedRange(anchorHour, durationHours, flexMinutes int) (from, to int) {
	startMinutes := anchorHour*60 + flexMinutes
	endMinutes := startMinutes + durationHours*60
	from = startMinutes / 60
	to = endMinutes / 60
	if endMinutes%60 != 0 {
		to++
	}
	return from, to
}

// CandidateAt builds the candidate for a single anchor hour, validating the
// enums and rejecting anchors whose real window falls outside the offerable
// day. It does not consult grids; callers wanting feasibility use Recommend.
func CandidateAt(anchorHour, durationHours, flexMinutes int) (Candidate, error) {
	if !IsValidDuration(durationHours) {
		return Candidate{}, ErrInvalidDuration
	}
	if !IsValidFlex(flexMinutes) {
		return Candidate{}, ErrInvalidFlex
	}
	if anchorHour < HourMin || anchorHour > HourMax-durationHours+1 {
		return Candidate{}, fmt.Errorf("schedule: anchor hour %d is outside the offerable range", anchorHour)
	}
	startMinutes := anchorHour*60 + flexMinutes
	endMinutes := startMinutes + durationHours*60
	if endMinutes > 24*60 {
		return Candidate{}, fmt.Errorf("schedule: anchor hour %d overflows the day with %d minutes of flex", anchorHour, flexMinutes)
	}
	return Candidate{AnchorHour: anchorHour, Label: windowLabel(startMinutes, endMinutes)}, nil
}

// Recommend enumerates every feasible start for a meeting on the given day.
//
// Anchors run from HourMin upward; an anchor is offered only when the real
// window (anchor shifted by flex, lasting the full duration) stays within
// 24:00 and every supplied grid is free for every whole hour the window
// touches. Results are in ascending anchor order with no further ranking.
//
// Fewer than two grids yields no candidates: a single participant is the
// owner alone, and recommending against one calendar is a product rule
// violation rather than an error.
func Recommend(day Weekday, durationHours, flexMinutes int, grids []Grid) ([]Candidate, error) {
	if !IsValidDuration(durationHours) {
		return nil, ErrInvalidDuration
	}
	if !IsValidFlex(flexMinutes) {
		return nil, ErrInvalidFlex
	}
	if len(grids) < 2 {
		return nil, nil
	}

	candidates := make([]Candidate, 0)
	for anchor := HourMin; anchor <= HourMax-durationHours+1; anchor++ {
		startMinutes := anchor*60 + flexMinutes
		endMinutes := startMinutes + durationHours*60
		if endMinutes > 24*60 {
			continue
		}

		from, to := OccupiedRange(anchor, durationHours, flexMinutes)
		free := true
		for _, grid := range grids {
			if !grid.FreeAll(day, from, to) {
				free = false
				break
			}
		}
		if !free {
			continue
		}

		candidates = append(candidates, Candidate{
			AnchorHour: anchor,
			Label:      windowLabel(startMinutes, endMinutes),
		})
	}

	return candidates, nil
}

func windowLabel(startMinutes, endMinutes int) string {
	return fmt.Sprintf("%02d:%02d - %02d:%02d",
		startMinutes/60, startMinutes%60,
		endMinutes/60, endMinutes%60)
}
