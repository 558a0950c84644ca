package schedule

import (
	"reflect"
	"testing"
	"time"
)

func TestGridFromHours_ToleratesDuplicatesAndRange(t *testing.T) {
	t.Parallel()

	grid := GridFromHours(map[Weekday][]int{
		Monday:  {9, 9, 10, 7, 24, -1},
		Weekday("Funday"): {9},
	})

	if !grid.Free(Monday, 9) || !grid.Free(Monday, 10) {
		t.Fatalf("expected hours 9 and 10 free on Monday")
	}
	if grid.Free(Monday, 7) || grid.Free(Monday, 24) {
		t.Fatalf("out of range hours must be dropped")
	}
	if len(grid) != 1 {
		t.Fatalf("unknown day symbols must be dropped, got %d days", len(grid))
	}

	hours := grid.Hours()
	if !reflect.DeepEqual(hours[Monday], []int{9, 10}) {
		t.Fatalf("unexpected serialized hours: %v", hours[Monday])
	}
	if hours[Tuesday] == nil || len(hours[Tuesday]) != 0 {
		t.Fatalf("serialization must cover every day, got %v", hours[Tuesday])
	}
}

func TestGridSubtract_IsIdempotent(t *testing.T) {
	t.Parallel()

	grid := GridFromHours(map[Weekday][]int{Tuesday: {9, 10, 11, 12}})

	if removed := grid.Subtract(Tuesday, 10, 12); !removed {
		t.Fatalf("first subtraction should remove markers")
	}
	want := grid.Clone()

	if removed := grid.Subtract(Tuesday, 10, 12); removed {
		t.Fatalf("second subtraction must be a no-op")
	}
	if !reflect.DeepEqual(grid.Hours(), want.Hours()) {
		t.Fatalf("grid changed on repeated subtraction")
	}
	if !grid.Free(Tuesday, 9) || !grid.Free(Tuesday, 12) {
		t.Fatalf("hours outside the range must survive")
	}
}

func TestGridFreeAll_MissingDayIsFullyUnavailable(t *testing.T) {
	t.Parallel()

	grid := GridFromHours(map[Weekday][]int{Monday: {9}})
	if grid.FreeAll(Thursday, 9, 10) {
		t.Fatalf("day without entries must be treated as unavailable")
	}
}

func TestWeekdayOf(t *testing.T) {
	t.Parallel()

	// 2025-06-23 is a Monday.
	day := WeekdayOf(time.Date(2025, 6, 23, 0, 0, 0, 0, time.UTC))
	if day != Monday {
		t.Fatalf("expected Mon, got %s", day)
	}
	if WeekdayOf(time.Date(2025, 6, 22, 0, 0, 0, 0, time.UTC)) != Sunday {
		t.Fatalf("expected Sun")
	}
}

func TestGridClone_Isolated(t *testing.T) {
	t.Parallel()

	grid := GridFromHours(map[Weekday][]int{Friday: {18, 19}})
	clone := grid.Clone()
	clone.Unmark(Friday, 18)

	if !grid.Free(Friday, 18) {
		t.Fatalf("mutating a clone must not touch the original")
	}
}
