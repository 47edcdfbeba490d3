package agenda

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// NoteSource is the legacy adapter that mines agenda entries out of free-text
// lead notes. It exists only for data recorded before structured events; new
// appointments never land here. Kept behind the same Event shape as the
// structured sources so the read path does not special-case it.
type NoteSource struct {
	leads LeadNoteLister
}

// LeadNoteLister exposes the lead notes the miner scans.
type LeadNoteLister interface {
	ListLeadNotes(ctx context.Context, companyID string) ([]LeadNote, error)
}

// LeadNote pairs a lead with its free-text notes field.
type LeadNote struct {
	LeadID   string
	LeadName string
	Notes    string
}

// NewNoteSource wires the miner to its lead store.
func NewNoteSource(leads LeadNoteLister) *NoteSource {
	return &NoteSource{leads: leads}
}

// notePattern matches the bracketed marker format historically written into
// lead notes: [AGENDA 2026-08-31 14:30 Visita ao apartamento].
var notePattern = regexp.MustCompile(`\[AGENDA\s+(\d{4}-\d{2}-\d{2})\s+(\d{2}:\d{2})\s+([^\]]+)\]`)

// Events scans every lead note for bracketed agenda markers inside the time
// range and converts matches into events tagged SourceNotes.
func (s *NoteSource) Events(ctx context.Context, companyID string, from, until time.Time, loc *time.Location) ([]Event, error) {
	if s == nil || s.leads == nil {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}

	notes, err := s.leads.ListLeadNotes(ctx, companyID)
	if err != nil {
		return nil, err
	}

	var events []Event
	for _, note := range notes {
		for _, match := range notePattern.FindAllStringSubmatch(note.Notes, -1) {
			start, err := time.ParseInLocation("2006-01-02 15:04", match[1]+" "+match[2], loc)
			if err != nil {
				continue
			}
			if start.Before(from) || !start.Before(until) {
				continue
			}
			events = append(events, Event{
				ID:         "note-" + note.LeadID + "-" + start.Format("20060102T1504"),
				Title:      strings.TrimSpace(match[3]),
				ClientName: note.LeadName,
				Category:   InferCategory(match[3]),
				Start:      start,
				End:        start.Add(time.Hour),
				Source:     SourceNotes,
			})
		}
	}
	return events, nil
}
