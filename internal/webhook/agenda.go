package webhook

import (
	"context"
	"strings"
	"time"

	"github.com/example/imob-backoffice/internal/agenda"
)

// providerEvent mirrors the calendar-provider shape the automation engine
// relays for agenda listings.
type providerEvent struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Start       struct {
		DateTime string `json:"dateTime"`
		Date     string `json:"date"`
	} `json:"start"`
	End struct {
		DateTime string `json:"dateTime"`
		Date     string `json:"date"`
	} `json:"end"`
	Attendees []struct {
		Email          string `json:"email"`
		DisplayName    string `json:"displayName"`
		ResponseStatus string `json:"responseStatus"`
	} `json:"attendees"`
	Creator struct {
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
	} `json:"creator"`
	Organizer struct {
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
	} `json:"organizer"`
}

type agendaResponse struct {
	Events []providerEvent `json:"events"`
}

// ListAgenda fetches provider events for a calendar and time range via the
// "ver-agenda" webhook and normalizes each entry, applying the client-name,
// category and responsible inference heuristics.
func (c *Client) ListAgenda(ctx context.Context, calendarID, calendarName string, from, until time.Time) ([]agenda.Event, error) {
	payload := map[string]string{
		"funcao":     "ver-agenda",
		"calendario": calendarID,
		"inicio":     from.Format(time.RFC3339),
		"fim":        until.Format(time.RFC3339),
	}

	var resp agendaResponse
	if err := c.postJSON(ctx, "/agenda", payload, &resp); err != nil {
		return nil, err
	}

	events := make([]agenda.Event, 0, len(resp.Events))
	for _, raw := range resp.Events {
		event, ok := raw.normalize(calendarName)
		if !ok {
			continue
		}
		events = append(events, event)
	}
	if len(events) == 0 {
		return nil, nil
	}
	return events, nil
}

// CreateEventInput carries the fields the "criar_evento" webhook accepts.
type CreateEventInput struct {
	CalendarID  string
	Title       string
	Description string
	Start       time.Time
	End         time.Time
}

// CreateEvent asks the automation engine to create a calendar event.
func (c *Client) CreateEvent(ctx context.Context, input CreateEventInput) error {
	payload := map[string]string{
		"funcao":     "criar_evento",
		"calendario": input.CalendarID,
		"titulo":     input.Title,
		"descricao":  input.Description,
		"inicio":     input.Start.Format(time.RFC3339),
		"fim":        input.End.Format(time.RFC3339),
	}
	return c.postJSON(ctx, "/agenda", payload, nil)
}

func (e providerEvent) normalize(calendarName string) (agenda.Event, bool) {
	start, ok := parseProviderTime(e.Start.DateTime, e.Start.Date)
	if !ok {
		return agenda.Event{}, false
	}
	end, ok := parseProviderTime(e.End.DateTime, e.End.Date)
	if !ok {
		end = start.Add(time.Hour)
	}

	title := strings.TrimSpace(e.Summary)
	if title == "" {
		title = "Sem título"
	}

	return agenda.Event{
		ID:          e.ID,
		Title:       title,
		Description: e.Description,
		ClientName:  agenda.ExtractClientName(e.Description),
		Category:    agenda.InferCategory(e.Description),
		Responsible: agenda.InferResponsible(agenda.ResponsibleInput{
			CreatorName:    e.Creator.DisplayName,
			OrganizerName:  e.Organizer.DisplayName,
			CreatorEmail:   e.Creator.Email,
			OrganizerEmail: e.Organizer.Email,
			Description:    e.Description,
			CalendarName:   calendarName,
		}),
		Start:  start,
		End:    end,
		Source: agenda.SourceProvider,
	}, true
}

// parseProviderTime accepts either a dateTime or an all-day date value.
func parseProviderTime(dateTime, date string) (time.Time, bool) {
	if dateTime != "" {
		if ts, err := time.Parse(time.RFC3339, dateTime); err == nil {
			return ts, true
		}
	}
	if date != "" {
		if ts, err := time.Parse("2006-01-02", date); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
