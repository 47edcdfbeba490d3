package agenda

import (
	"testing"
	"time"
)

var base = time.Date(2026, 8, 31, 14, 0, 0, 0, time.UTC)

func TestMergeFuzzyClientNameDuplicate(t *testing.T) {
	provider := []Event{{
		ID:         "ev-1",
		Title:      "Visita",
		ClientName: "João Silva",
		Start:      base,
		Source:     SourceProvider,
	}}
	local := []Event{{
		ID:         "loc-1",
		Title:      "Visita agendada",
		ClientName: "João",
		Start:      base.Add(30 * time.Second),
		Source:     SourceLocal,
	}}

	merged := Merge(provider, local, nil)
	if len(merged) != 1 {
		t.Fatalf("Merge kept %d events, want 1 (30s apart should deduplicate)", len(merged))
	}
	if merged[0].ID != "ev-1" {
		t.Errorf("provider event should win, got %s", merged[0].ID)
	}
}

func TestMergeDistinctWhenOutsideWindow(t *testing.T) {
	provider := []Event{{ID: "ev-1", ClientName: "João Silva", Start: base, Source: SourceProvider}}
	local := []Event{{ID: "loc-1", ClientName: "João", Start: base.Add(90 * time.Second), Source: SourceLocal}}

	merged := Merge(provider, local, nil)
	if len(merged) != 2 {
		t.Fatalf("Merge kept %d events, want 2 (90s apart are distinct)", len(merged))
	}
}

func TestMergeExternalIDDuplicate(t *testing.T) {
	provider := []Event{{ID: "google-123", ClientName: "Maria", Start: base, Source: SourceProvider}}
	local := []Event{{
		ID:         "loc-9",
		ExternalID: "google-123",
		ClientName: "Cliente sem nome parecido",
		Start:      base.Add(3 * time.Hour),
		Source:     SourceLocal,
	}}

	merged := Merge(provider, local, nil)
	if len(merged) != 1 {
		t.Fatalf("Merge kept %d events, want 1 (external id matches)", len(merged))
	}
}

func TestMergeTagsProvenance(t *testing.T) {
	local := []Event{{ID: "loc-1", Title: "Reunião", ClientName: "Ana", Start: base, Source: SourceLocal}}
	notes := []Event{{ID: "note-1", Title: "Visita", ClientName: "Bruno", Start: base.Add(time.Hour), Source: SourceNotes}}

	merged := Merge(nil, local, notes)
	if len(merged) != 2 {
		t.Fatalf("Merge kept %d events, want 2", len(merged))
	}
	if merged[0].Title != "Reunião [Sistema]" {
		t.Errorf("local title = %q, want suffix [Sistema]", merged[0].Title)
	}
	if merged[1].Title != "Visita [Nota]" {
		t.Errorf("notes title = %q, want suffix [Nota]", merged[1].Title)
	}
}

func TestMergeOrdersByStart(t *testing.T) {
	provider := []Event{
		{ID: "b", ClientName: "Carla", Start: base.Add(2 * time.Hour), Source: SourceProvider},
		{ID: "a", ClientName: "Davi", Start: base, Source: SourceProvider},
	}
	merged := Merge(provider, nil, nil)
	if merged[0].ID != "a" || merged[1].ID != "b" {
		t.Errorf("events not ordered by start: %s, %s", merged[0].ID, merged[1].ID)
	}
}

func TestNamesMatchIgnoresCaseAndBlank(t *testing.T) {
	if !namesMatch("JOÃO SILVA", "joão") {
		t.Error("case-insensitive substring should match")
	}
	if namesMatch("", "joão") {
		t.Error("blank name must never match")
	}
}
