package webhook

import (
	"context"
	"encoding/json"
	"strings"
)

// Calendar is the normalized calendar record produced from whichever shape
// the automation engine happens to return.
type Calendar struct {
	ID         string
	Name       string
	TimeZone   string
	Color      string
	AccessRole string
}

const (
	defaultCalendarName  = "Sem nome"
	defaultCalendarColor = "#6B7280"
)

// ListCalendars asks the automation engine for the available calendars using
// the "leitura" discriminator and normalizes the response.
func (c *Client) ListCalendars(ctx context.Context) ([]Calendar, error) {
	var raw json.RawMessage
	if err := c.postJSON(ctx, "/calendarios", map[string]string{"funcao": "leitura"}, &raw); err != nil {
		return nil, err
	}
	return NormalizeCalendars(raw)
}

// AddCalendar registers a calendar with the automation engine.
func (c *Client) AddCalendar(ctx context.Context, name string) error {
	return c.postJSON(ctx, "/calendarios", map[string]string{"funcao": "adicionar", "nome": name}, nil)
}

// DeleteCalendar removes a calendar from the automation engine.
func (c *Client) DeleteCalendar(ctx context.Context, id string) error {
	return c.postJSON(ctx, "/calendarios", map[string]string{"funcao": "apagar", "id": id}, nil)
}

// calendarRecord tolerates both the provider's spaced keys and plain
// lowercase variants.
type calendarRecord struct {
	ID          string `json:"id"`
	CalendarID  string `json:"Calendar ID"`
	Name        string `json:"name"`
	Summary     string `json:"summary"`
	DisplayName string `json:"Calendar Name"`
	TimeZone    string `json:"timeZone"`
	Color       string `json:"backgroundColor"`
	AccessRole  string `json:"accessRole"`
}

// calendarWrapper is one element of the wrapper-array shape, or the
// top-level object shape. The engine has returned all three over time.
type calendarWrapper struct {
	CalendarsUpper []calendarRecord `json:"Calendars"`
	CalendarsLower []calendarRecord `json:"calendars"`
	Events         []calendarRecord `json:"events"`
}

// NormalizeCalendars flattens every response shape the engine is known to
// produce into one calendar list:
//
//   - a bare array of calendar records
//   - an array of wrapper objects each holding a Calendars/calendars array
//   - a single object with a top-level Calendars/calendars/events array
//
// Variant detection happens here, once; the rest of the system only sees
// []Calendar. Records missing a name or color receive defaults.
func NormalizeCalendars(raw json.RawMessage) ([]Calendar, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	var records []calendarRecord

	if strings.HasPrefix(trimmed, "[") {
		var bare []calendarRecord
		if err := json.Unmarshal(raw, &bare); err == nil && hasAnyID(bare) {
			records = bare
		} else {
			var wrappers []calendarWrapper
			if err := json.Unmarshal(raw, &wrappers); err != nil {
				return nil, err
			}
			for _, wrapper := range wrappers {
				records = append(records, wrapper.flatten()...)
			}
		}
	} else {
		var wrapper calendarWrapper
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return nil, err
		}
		records = wrapper.flatten()
	}

	calendars := make([]Calendar, 0, len(records))
	for _, record := range records {
		calendar := record.normalize()
		if calendar.ID == "" {
			continue
		}
		calendars = append(calendars, calendar)
	}
	if len(calendars) == 0 {
		return nil, nil
	}
	return calendars, nil
}

func (w calendarWrapper) flatten() []calendarRecord {
	if len(w.CalendarsUpper) > 0 {
		return w.CalendarsUpper
	}
	if len(w.CalendarsLower) > 0 {
		return w.CalendarsLower
	}
	return w.Events
}

func (r calendarRecord) normalize() Calendar {
	id := r.ID
	if id == "" {
		id = r.CalendarID
	}

	name := firstNonEmpty(r.Name, r.Summary, r.DisplayName)
	if name == "" {
		name = defaultCalendarName
	}

	color := r.Color
	if color == "" {
		color = defaultCalendarColor
	}

	return Calendar{
		ID:         id,
		Name:       name,
		TimeZone:   r.TimeZone,
		Color:      color,
		AccessRole: r.AccessRole,
	}
}

func hasAnyID(records []calendarRecord) bool {
	for _, record := range records {
		if record.ID != "" || record.CalendarID != "" {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
