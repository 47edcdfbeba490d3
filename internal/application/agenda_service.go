package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/imob-backoffice/internal/agenda"
	"github.com/example/imob-backoffice/internal/persistence"
	"github.com/example/imob-backoffice/internal/webhook"
)

// AgendaClient is the automation engine surface the agenda service needs.
type AgendaClient interface {
	ListAgenda(ctx context.Context, calendarID, calendarName string, from, until time.Time) ([]agenda.Event, error)
	CreateEvent(ctx context.Context, input webhook.CreateEventInput) error
}

// EventStore captures the persistence operations needed by the agenda service.
type EventStore interface {
	CreateEvent(ctx context.Context, event persistence.OncallEvent) error
	ListEventsInRange(ctx context.Context, companyID string, from, until time.Time) ([]persistence.OncallEvent, error)
}

// NoteEventSource mines legacy agenda entries out of lead notes.
type NoteEventSource interface {
	Events(ctx context.Context, companyID string, from, until time.Time, loc *time.Location) ([]agenda.Event, error)
}

// RosterLister supplies the principal's stored weekly rosters so listings can
// project them onto concrete on-call shifts.
type RosterLister interface {
	ListForUser(ctx context.Context, companyID, userID string) ([]persistence.OncallSchedule, error)
}

// AgendaService assembles the unified agenda out of the external calendar
// provider, locally recorded events, legacy lead-note markers, and the
// principal's weekly rosters projected onto the listed range. Provider events
// win deduplication; survivors from the other sources are tagged with their
// provenance.
type AgendaService struct {
	client      AgendaClient
	events      EventStore
	notes       NoteEventSource
	rosters     RosterLister
	idGenerator func() string
	now         func() time.Time
	location    *time.Location
	logger      *slog.Logger
}

// NewAgendaService wires dependencies for the agenda service. notes and
// rosters may be nil; their sources are then skipped.
func NewAgendaService(client AgendaClient, events EventStore, notes NoteEventSource, rosters RosterLister, idGenerator func() string, now func() time.Time, location *time.Location, logger *slog.Logger) *AgendaService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if location == nil {
		location = time.Local
	}
	return &AgendaService{
		client:      client,
		events:      events,
		notes:       notes,
		rosters:     rosters,
		idGenerator: idGenerator,
		now:         now,
		location:    location,
		logger:      defaultLogger(logger),
	}
}

func (s *AgendaService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AgendaService", operation, attrs...)
}

// ListAgendaParams wraps the data required to assemble an agenda range.
type ListAgendaParams struct {
	Principal    Principal
	CalendarID   string
	CalendarName string
	From         time.Time
	Until        time.Time
}

// ListAgenda fetches every source for the range and returns the merged,
// deduplicated agenda. The principal's weekly rosters are expanded onto the
// range as on-call shift entries. A provider outage degrades to the local
// sources instead of failing the whole listing.
func (s *AgendaService) ListAgenda(ctx context.Context, params ListAgendaParams) ([]agenda.Event, error) {
	if s == nil || s.events == nil {
		return nil, fmt.Errorf("agenda service not configured")
	}
	if !params.Until.After(params.From) {
		vErr := &ValidationError{}
		vErr.add("range", "range is empty")
		return nil, vErr
	}

	logger := s.loggerWith(ctx, "ListAgenda", "calendar_id", params.CalendarID)

	var provider []agenda.Event
	if s.client != nil && params.CalendarID != "" {
		fetched, err := s.client.ListAgenda(ctx, params.CalendarID, params.CalendarName, params.From, params.Until)
		if err != nil {
			logger.ErrorContext(ctx, "provider agenda unavailable, using local sources only", "error", err)
		} else {
			provider = fetched
		}
	}

	stored, err := s.events.ListEventsInRange(ctx, params.Principal.CompanyID, params.From, params.Until)
	if err != nil {
		return nil, err
	}
	local := make([]agenda.Event, 0, len(stored))
	for _, event := range stored {
		local = append(local, agenda.Event{
			ID:          event.ID,
			ExternalID:  event.ExternalID,
			Title:       event.Title,
			Description: event.Description,
			ClientName:  event.ClientName,
			Category:    event.Category,
			Responsible: event.Responsible,
			Start:       event.Start,
			End:         event.End,
			Source:      agenda.SourceLocal,
		})
	}

	local = append(local, s.shiftEvents(ctx, params, logger)...)

	var mined []agenda.Event
	if s.notes != nil {
		mined, err = s.notes.Events(ctx, params.Principal.CompanyID, params.From, params.Until, s.location)
		if err != nil {
			logger.ErrorContext(ctx, "note mining failed, skipping note source", "error", err)
			mined = nil
		}
	}

	merged := agenda.Merge(provider, local, mined)
	logger.InfoContext(ctx, "agenda assembled",
		"provider", len(provider), "local", len(local), "notes", len(mined), "merged", len(merged))
	return merged, nil
}

// shiftEvents expands the principal's rosters over the listed range into
// dated on-call entries. A roster lookup failure drops the source instead of
// failing the listing, matching the other degraded sources.
func (s *AgendaService) shiftEvents(ctx context.Context, params ListAgendaParams, logger *slog.Logger) []agenda.Event {
	if s.rosters == nil {
		return nil
	}

	schedules, err := s.rosters.ListForUser(ctx, params.Principal.CompanyID, params.Principal.UserID)
	if err != nil {
		logger.ErrorContext(ctx, "roster lookup failed, skipping shift projection", "error", err)
		return nil
	}

	var events []agenda.Event
	for _, schedule := range schedules {
		for _, shift := range schedule.Week.Expand(params.From, params.Until, s.location) {
			events = append(events, agenda.Event{
				ID:          fmt.Sprintf("plantao-%s-%s", schedule.CalendarID, shift.Start.Format("2006-01-02")),
				Title:       "Plantão",
				Category:    "Plantão",
				Responsible: params.Principal.UserID,
				Start:       shift.Start,
				End:         shift.End,
				Source:      agenda.SourceLocal,
			})
		}
	}
	return events
}

// CreateEvent records a new agenda event locally and mirrors it to the
// provider when a calendar is linked. A provider failure does not roll back
// the local record; the next listing deduplicates should the mirror have
// partially landed.
func (s *AgendaService) CreateEvent(ctx context.Context, params CreateAgendaEventParams) (agenda.Event, error) {
	if s == nil || s.events == nil {
		return agenda.Event{}, fmt.Errorf("agenda service not configured")
	}

	vErr := &ValidationError{}
	if params.Title == "" {
		vErr.add("title", "title is required")
	}
	if params.Start.IsZero() {
		vErr.add("start", "start is required")
	}
	if !params.End.After(params.Start) {
		vErr.add("end", "end must be after start")
	}
	if vErr.HasErrors() {
		return agenda.Event{}, vErr
	}

	logger := s.loggerWith(ctx, "CreateEvent", "calendar_id", params.CalendarID)

	category := params.Category
	if category == "" {
		category = agenda.InferCategory(params.Title + " " + params.Description)
	}
	clientName := params.ClientName
	if clientName == "" {
		clientName = agenda.ExtractClientName(params.Description)
	}

	event := persistence.OncallEvent{
		ID:          s.idGenerator(),
		CompanyID:   params.Principal.CompanyID,
		CalendarID:  params.CalendarID,
		Title:       params.Title,
		Description: params.Description,
		ClientName:  clientName,
		Category:    category,
		Responsible: params.Principal.UserID,
		Start:       params.Start,
		End:         params.End,
		CreatedAt:   s.now(),
	}
	if err := s.events.CreateEvent(ctx, event); err != nil {
		return agenda.Event{}, err
	}

	if s.client != nil && params.CalendarID != "" {
		err := s.client.CreateEvent(ctx, webhook.CreateEventInput{
			CalendarID:  params.CalendarID,
			Title:       params.Title,
			Description: params.Description,
			Start:       params.Start,
			End:         params.End,
		})
		if err != nil {
			logger.ErrorContext(ctx, "provider event mirror failed", "error", err)
		}
	}

	logger.InfoContext(ctx, "agenda event created", "event_id", event.ID)
	return agenda.Event{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		ClientName:  event.ClientName,
		Category:    event.Category,
		Responsible: event.Responsible,
		Start:       event.Start,
		End:         event.End,
		Source:      agenda.SourceLocal,
	}, nil
}

// NotificationCreator is the notification surface the poller needs.
type NotificationCreator interface {
	NotifyUpcoming(ctx context.Context, userID, title string, start time.Time) error
}

// Poll scans the next polling window once and notifies responsibles about
// events starting inside it.
func (s *AgendaService) Poll(ctx context.Context, companyID string, window time.Duration, notifier NotificationCreator) error {
	if s == nil || s.events == nil {
		return fmt.Errorf("agenda service not configured")
	}
	if notifier == nil || window <= 0 {
		return nil
	}

	now := s.now()
	events, err := s.events.ListEventsInRange(ctx, companyID, now, now.Add(window))
	if err != nil {
		return err
	}

	logger := s.loggerWith(ctx, "Poll", "company_id", companyID)
	for _, event := range events {
		if event.Responsible == "" {
			continue
		}
		if err := notifier.NotifyUpcoming(ctx, event.Responsible, event.Title, event.Start); err != nil {
			if errors.Is(err, ErrAlreadyExists) {
				continue
			}
			logger.ErrorContext(ctx, "failed to notify upcoming event", "event_id", event.ID, "error", err)
		}
	}
	return nil
}

// RunPoller polls every interval until the context is cancelled.
func (s *AgendaService) RunPoller(ctx context.Context, companyID string, interval, window time.Duration, notifier NotificationCreator) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Poll(ctx, companyID, window, notifier); err != nil {
				s.loggerWith(ctx, "RunPoller").ErrorContext(ctx, "agenda poll failed", "error", err)
			}
		}
	}
}
