package roster

import (
	"fmt"
	"strings"
)

// TimeOfDay is a clock time expressed as minutes past midnight.
type TimeOfDay int

const (
	// EarliestSlot is the first selectable on-call time (08:00).
	EarliestSlot TimeOfDay = 8 * 60
	// LatestSlot is the last selectable on-call time (19:30).
	LatestSlot TimeOfDay = 19*60 + 30
	// SlotGrid is the granularity of selectable times.
	SlotGrid TimeOfDay = 30
)

// ParseTimeOfDay parses a zero-padded or bare "HH:MM" value.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	var hh, mm int
	if _, err := fmt.Sscanf(strings.TrimSpace(value), "%d:%d", &hh, &mm); err != nil {
		return 0, fmt.Errorf("horário inválido: %q", value)
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("horário inválido: %q", value)
	}
	return TimeOfDay(hh*60 + mm), nil
}

// String renders the time zero-padded as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Snap floors the time onto the half-hour grid and clamps it to the
// selectable range. 09:12 snaps to 09:00 and 09:47 snaps to 09:30.
func (t TimeOfDay) Snap() TimeOfDay {
	snapped := t - t%SlotGrid
	if snapped < EarliestSlot {
		return EarliestSlot
	}
	if snapped > LatestSlot {
		return LatestSlot
	}
	return snapped
}

// Day holds the working-hours assignment for a single weekday.
type Day struct {
	Works bool
	Start TimeOfDay
	End   TimeOfDay
}

// Validate reports whether the day assignment is coherent: a working day must
// have its start strictly before its end.
func (d Day) Validate() error {
	if !d.Works {
		return nil
	}
	if d.Start >= d.End {
		return fmt.Errorf("início %s deve ser anterior ao fim %s", d.Start, d.End)
	}
	return nil
}

// Week is the persistence shape of an on-call roster: seven fixed days,
// indexed Monday through Sunday.
type Week [7]Day

// Weekday indexes into a Week. Monday is zero to match the persisted column
// order, not time.Weekday.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var dayNames = [7]string{"Segunda", "Terça", "Quarta", "Quinta", "Sexta", "Sábado", "Domingo"}

// Name returns the Portuguese display name of the weekday.
func (w Weekday) Name() string {
	if w < Monday || w > Sunday {
		return ""
	}
	return dayNames[w]
}

// ParseWeekday resolves a Portuguese day name back to its index.
func ParseWeekday(name string) (Weekday, error) {
	trimmed := strings.TrimSpace(name)
	for i, candidate := range dayNames {
		if strings.EqualFold(candidate, trimmed) {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("dia da semana desconhecido: %q", name)
}

// Slot is the editing shape of a single working day: day name plus times.
// The UI edits a list of slots; persistence stores seven fixed day columns.
type Slot struct {
	Day   Weekday
	Start TimeOfDay
	End   TimeOfDay
}

// Slots converts the seven-day persistence shape into the editing shape,
// emitting one slot per working day in Monday-first order.
func (w Week) Slots() []Slot {
	slots := make([]Slot, 0, 7)
	for i, day := range w {
		if !day.Works {
			continue
		}
		slots = append(slots, Slot{Day: Weekday(i), Start: day.Start, End: day.End})
	}
	if len(slots) == 0 {
		return nil
	}
	return slots
}

// FromSlots builds the seven-day persistence shape from an edited slot list.
// Days absent from the list are written as not working with no times. When the
// same day appears more than once the last slot wins.
func FromSlots(slots []Slot) Week {
	var week Week
	for _, slot := range slots {
		if slot.Day < Monday || slot.Day > Sunday {
			continue
		}
		week[slot.Day] = Day{Works: true, Start: slot.Start, End: slot.End}
	}
	return week
}

// Normalize snaps every working day's times onto the selectable grid and
// returns the result. Non-working days keep zero times.
func (w Week) Normalize() Week {
	out := w
	for i := range out {
		if !out[i].Works {
			out[i] = Day{}
			continue
		}
		out[i].Start = out[i].Start.Snap()
		out[i].End = out[i].End.Snap()
	}
	return out
}

// Validate checks every working day, reporting the first violation with the
// offending day's name.
func (w Week) Validate() error {
	for i, day := range w {
		if err := day.Validate(); err != nil {
			return fmt.Errorf("%s: %w", Weekday(i).Name(), err)
		}
	}
	return nil
}

// Empty reports whether no day is marked as working.
func (w Week) Empty() bool {
	for _, day := range w {
		if day.Works {
			return false
		}
	}
	return true
}
