package webhook

import (
	"encoding/json"
	"testing"
)

func TestNormalizeCalendarsWrapperArray(t *testing.T) {
	raw := json.RawMessage(`[{ "Calendars": [ {"Calendar ID": "c1", "Calendar Name": "A"} ] }]`)

	calendars, err := NormalizeCalendars(raw)
	if err != nil {
		t.Fatalf("NormalizeCalendars error: %v", err)
	}
	if len(calendars) != 1 {
		t.Fatalf("normalized %d calendars, want 1", len(calendars))
	}
	if calendars[0].ID != "c1" || calendars[0].Name != "A" {
		t.Errorf("calendar = %+v, want id c1 name A", calendars[0])
	}
}

func TestNormalizeCalendarsBareArray(t *testing.T) {
	raw := json.RawMessage(`[{"id": "c1", "summary": "Plantão Centro", "backgroundColor": "#FF0000"}]`)

	calendars, err := NormalizeCalendars(raw)
	if err != nil {
		t.Fatalf("NormalizeCalendars error: %v", err)
	}
	if len(calendars) != 1 {
		t.Fatalf("normalized %d calendars, want 1", len(calendars))
	}
	if calendars[0].Name != "Plantão Centro" || calendars[0].Color != "#FF0000" {
		t.Errorf("calendar = %+v", calendars[0])
	}
}

func TestNormalizeCalendarsTopLevelObject(t *testing.T) {
	for _, key := range []string{"Calendars", "calendars", "events"} {
		raw := json.RawMessage(`{"` + key + `": [{"id": "c2"}]}`)
		calendars, err := NormalizeCalendars(raw)
		if err != nil {
			t.Fatalf("NormalizeCalendars(%s) error: %v", key, err)
		}
		if len(calendars) != 1 || calendars[0].ID != "c2" {
			t.Errorf("NormalizeCalendars(%s) = %+v, want one calendar c2", key, calendars)
		}
	}
}

func TestNormalizeCalendarsDefaults(t *testing.T) {
	raw := json.RawMessage(`[{"id": "c3"}]`)

	calendars, err := NormalizeCalendars(raw)
	if err != nil {
		t.Fatalf("NormalizeCalendars error: %v", err)
	}
	if calendars[0].Name != "Sem nome" {
		t.Errorf("name default = %q, want Sem nome", calendars[0].Name)
	}
	if calendars[0].Color != "#6B7280" {
		t.Errorf("color default = %q", calendars[0].Color)
	}
}

func TestNormalizeCalendarsSkipsRecordsWithoutID(t *testing.T) {
	raw := json.RawMessage(`{"calendars": [{"name": "fantasma"}, {"id": "c4"}]}`)

	calendars, err := NormalizeCalendars(raw)
	if err != nil {
		t.Fatalf("NormalizeCalendars error: %v", err)
	}
	if len(calendars) != 1 || calendars[0].ID != "c4" {
		t.Errorf("calendars = %+v, want only c4", calendars)
	}
}

func TestNormalizeCalendarsEmpty(t *testing.T) {
	for _, raw := range []string{"null", "", "[]", "{}"} {
		calendars, err := NormalizeCalendars(json.RawMessage(raw))
		if err != nil {
			t.Fatalf("NormalizeCalendars(%q) error: %v", raw, err)
		}
		if calendars != nil {
			t.Errorf("NormalizeCalendars(%q) = %+v, want nil", raw, calendars)
		}
	}
}
