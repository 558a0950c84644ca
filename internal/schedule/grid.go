package schedule

import "time"

// HourMin and HourMax bound the selectable availability hours. A marker h
// means the identity is free during [h, h+1), so HourMax marks the 23:00
// to 24:00 slot.
const (
	HourMin = 8
	HourMax = 23
)

// Weekday identifies one of the seven day columns of an availability grid,
// independent of any calendar date.
type Weekday string

const (
	Sunday    Weekday = "Sun"
	Monday    Weekday = "Mon"
	Tuesday   Weekday = "Tue"
	Wednesday Weekday = "Wed"
	Thursday  Weekday = "Thu"
	Friday    Weekday = "Fri"
	Saturday  Weekday = "Sat"
)

// Weekdays lists all day symbols in calendar order.
var Weekdays = []Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// WeekdayOf maps a calendar date to its grid day symbol.
func WeekdayOf(t time.Time) Weekday {
	return Weekdays[int(t.Weekday())]
}

// IsValidWeekday reports whether the symbol names one of the seven days.
func IsValidWeekday(day Weekday) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// Grid is a weekly availability grid: for each day, the set of whole hours
// the owning identity is free. Days with no free hours may be absent.
type Grid map[Weekday]map[int]struct{}

// NewGrid returns an empty grid.
func NewGrid() Grid {
	return make(Grid, len(Weekdays))
}

// GridFromHours builds a grid from serialized day → hour-list form. Hours
// outside [HourMin, HourMax] are dropped and duplicates are tolerated.
func GridFromHours(hours map[Weekday][]int) Grid {
	grid := NewGrid()
	for day, list := range hours {
		if !IsValidWeekday(day) {
			continue
		}
		for _, h := range list {
			grid.Mark(day, h)
		}
	}
	return grid
}

// Hours serializes the grid to day → ascending hour-list form. Every day
// symbol is present so the flat record round-trips a full week.
func (g Grid) Hours() map[Weekday][]int {
	out := make(map[Weekday][]int, len(Weekdays))
	for _, day := range Weekdays {
		list := make([]int, 0, len(g[day]))
		for h := HourMin; h <= HourMax; h++ {
			if _, ok := g[day][h]; ok {
				list = append(list, h)
			}
		}
		out[day] = list
	}
	return out
}

// Mark records the identity as free during [hour, hour+1) on the given day.
// Out-of-range hours are ignored.
func (g Grid) Mark(day Weekday, hour int) {
	if hour < HourMin || hour > HourMax {
		return
	}
	set, ok := g[day]
	if !ok {
		set = make(map[int]struct{})
		g[day] = set
	}
	set[hour] = struct{}{}
}

// Unmark removes a free-hour marker. Removing an absent marker is a no-op,
// which keeps grid subtraction idempotent.
func (g Grid) Unmark(day Weekday, hour int) {
	if set, ok := g[day]; ok {
		delete(set, hour)
	}
}

// Free reports whether the identity is free during [hour, hour+1) on the
// given day. A day with no entry is fully unavailable.
func (g Grid) Free(day Weekday, hour int) bool {
	_, ok := g[day][hour]
	return ok
}

// FreeAll reports whether every hour in the half-open range [from, to) is
// marked free on the given day.
func (g Grid) FreeAll(day Weekday, from, to int) bool {
	for h := from; h < to; h++ {
		if !g.Free(day, h) {
			return false
		}
	}
	return true
}

// Subtract removes every hour of the half-open range [from, to) on the given
// day and reports whether any marker was actually removed.
func (g Grid) Subtract(day Weekday, from, to int) bool {
	removed := false
	for h := from; h < to; h++ {
		if g.Free(day, h) {
			g.Unmark(day, h)
			removed = true
		}
	}
	return removed
}

// Clone returns a deep copy of the grid.
func (g Grid) Clone() Grid {
	clone := NewGrid()
	for day, set := range g {
		copied := make(map[int]struct{}, len(set))
		for h := range set {
			copied[h] = struct{}{}
		}
		clone[day] = copied
	}
	return clone
}
