package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/example/imob-backoffice/internal/webhook"
)

// CalendarClient is the automation engine surface the calendar service needs.
type CalendarClient interface {
	ListCalendars(ctx context.Context) ([]webhook.Calendar, error)
	AddCalendar(ctx context.Context, name string) error
	DeleteCalendar(ctx context.Context, id string) error
}

// CalendarService keeps an in-memory snapshot of the calendars visible to the
// company, refreshed wholesale from the automation engine.
//
// Refreshes may race: a slow response from an old refresh must not clobber the
// snapshot installed by a newer one. Each refresh takes a sequence number
// before calling out and the result is discarded unless it is still the newest
// when it lands.
type CalendarService struct {
	client CalendarClient
	logger *slog.Logger

	mu        sync.RWMutex
	seq       uint64
	installed uint64
	calendars []webhook.Calendar
	loaded    bool
}

// NewCalendarService wires dependencies for the calendar service.
func NewCalendarService(client CalendarClient, logger *slog.Logger) *CalendarService {
	return &CalendarService{client: client, logger: defaultLogger(logger)}
}

func (s *CalendarService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CalendarService", operation, attrs...)
}

// Refresh replaces the snapshot with the engine's current calendar list.
// Stale responses, ones that lose the race against a newer refresh, are
// dropped silently.
func (s *CalendarService) Refresh(ctx context.Context) ([]webhook.Calendar, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("calendar service not configured")
	}

	s.mu.Lock()
	s.seq++
	ticket := s.seq
	s.mu.Unlock()

	logger := s.loggerWith(ctx, "Refresh")

	calendars, err := s.client.ListCalendars(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "calendar refresh failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrExternalService, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket < s.installed {
		logger.InfoContext(ctx, "discarding stale calendar response", "ticket", ticket, "installed", s.installed)
		return cloneCalendars(s.calendars), nil
	}
	s.installed = ticket
	s.calendars = cloneCalendars(calendars)
	s.loaded = true
	logger.InfoContext(ctx, "calendar snapshot replaced", "count", len(calendars))
	return calendars, nil
}

// List returns the cached snapshot, refreshing first when nothing has been
// loaded yet.
func (s *CalendarService) List(ctx context.Context) ([]webhook.Calendar, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("calendar service not configured")
	}

	s.mu.RLock()
	loaded := s.loaded
	cached := cloneCalendars(s.calendars)
	s.mu.RUnlock()

	if loaded {
		return cached, nil
	}
	return s.Refresh(ctx)
}

// Add registers a calendar with the engine. Managers only. The snapshot is
// refreshed afterwards so the caller sees the engine's authoritative list.
func (s *CalendarService) Add(ctx context.Context, principal Principal, name string) ([]webhook.Calendar, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("calendar service not configured")
	}
	if !principal.IsManager() {
		return nil, ErrUnauthorized
	}
	if name == "" {
		vErr := &ValidationError{}
		vErr.add("name", "name is required")
		return nil, vErr
	}

	if err := s.client.AddCalendar(ctx, name); err != nil {
		s.loggerWith(ctx, "Add", "name", name).ErrorContext(ctx, "calendar add failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	return s.Refresh(ctx)
}

// Remove deletes a calendar from the engine. Managers only.
func (s *CalendarService) Remove(ctx context.Context, principal Principal, id string) ([]webhook.Calendar, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("calendar service not configured")
	}
	if !principal.IsManager() {
		return nil, ErrUnauthorized
	}
	if id == "" {
		vErr := &ValidationError{}
		vErr.add("id", "calendar id is required")
		return nil, vErr
	}

	if err := s.client.DeleteCalendar(ctx, id); err != nil {
		s.loggerWith(ctx, "Remove", "calendar_id", id).ErrorContext(ctx, "calendar delete failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	return s.Refresh(ctx)
}

func cloneCalendars(calendars []webhook.Calendar) []webhook.Calendar {
	if calendars == nil {
		return nil
	}
	out := make([]webhook.Calendar, len(calendars))
	copy(out, calendars)
	return out
}
