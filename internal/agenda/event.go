package agenda

import "time"

// Source identifies where an agenda event was fetched from.
type Source int

const (
	// SourceProvider events come from the external calendar webhook.
	SourceProvider Source = iota
	// SourceLocal events come from the local events table.
	SourceLocal
	// SourceNotes events were mined from free-text lead notes.
	SourceNotes
)

// Event is the single normalized agenda entry the rest of the system works
// with, regardless of which source produced it.
type Event struct {
	ID          string
	ExternalID  string
	Title       string
	Description string
	ClientName  string
	Category    string
	Responsible string
	Start       time.Time
	End         time.Time
	Source      Source
}

// provenanceSuffix marks non-provider events that survive deduplication so
// users can tell where an entry came from.
func provenanceSuffix(source Source) string {
	switch source {
	case SourceLocal:
		return " [Sistema]"
	case SourceNotes:
		return " [Nota]"
	default:
		return ""
	}
}
