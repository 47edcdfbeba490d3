package roster

import "time"

// Shift is a dated on-call occurrence projected from a weekly roster.
type Shift struct {
	Day   Weekday
	Start time.Time
	End   time.Time
}

// Expand projects the weekly roster onto concrete dates between from and
// until (inclusive of from's day, exclusive of until's). Times are resolved
// in loc. Used by the agenda view to show upcoming on-call shifts alongside
// regular events.
func (w Week) Expand(from, until time.Time, loc *time.Location) []Shift {
	if loc == nil {
		loc = time.Local
	}
	if !from.Before(until) {
		return nil
	}

	var shifts []Shift
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	for day.Before(until) {
		weekday := fromTimeWeekday(day.Weekday())
		entry := w[weekday]
		if entry.Works {
			start := day.Add(time.Duration(entry.Start) * time.Minute)
			end := day.Add(time.Duration(entry.End) * time.Minute)
			if end.After(from) && start.Before(until) {
				shifts = append(shifts, Shift{Day: weekday, Start: start, End: end})
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return shifts
}

// fromTimeWeekday maps Go's Sunday-first weekday onto the Monday-first index
// used by the persisted roster columns.
func fromTimeWeekday(d time.Weekday) Weekday {
	return Weekday((int(d) + 6) % 7)
}
