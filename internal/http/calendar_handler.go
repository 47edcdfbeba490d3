package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/imob-backoffice/internal/application"
	"github.com/example/imob-backoffice/internal/webhook"
)

type calendarService interface {
	List(ctx context.Context) ([]webhook.Calendar, error)
	Refresh(ctx context.Context) ([]webhook.Calendar, error)
	Add(ctx context.Context, principal application.Principal, name string) ([]webhook.Calendar, error)
	Remove(ctx context.Context, principal application.Principal, id string) ([]webhook.Calendar, error)
}

type CalendarHandler struct {
	service   calendarService
	responder responder
	logger    *slog.Logger
}

func NewCalendarHandler(service calendarService, logger *slog.Logger) *CalendarHandler {
	base := defaultLogger(logger)
	return &CalendarHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *CalendarHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "CalendarHandler", operation, attrs...)
}

func (h *CalendarHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.responder.principal(r.Context(), w); !ok {
		return
	}

	calendars, err := h.service.List(r.Context())
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "failed to list calendars", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, newCalendarResponses(calendars))
}

func (h *CalendarHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.responder.principal(r.Context(), w); !ok {
		return
	}

	calendars, err := h.service.Refresh(r.Context())
	if err != nil {
		h.log(r.Context(), "Refresh").ErrorContext(r.Context(), "failed to refresh calendars", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, newCalendarResponses(calendars))
}

func (h *CalendarHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.principal(r.Context(), w)
	if !ok {
		return
	}

	var req calendarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	calendars, err := h.service.Add(r.Context(), principal, req.Name)
	if err != nil {
		h.log(r.Context(), "Create", "name", req.Name).ErrorContext(r.Context(), "failed to add calendar", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Create", "name", req.Name).InfoContext(r.Context(), "calendar added")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, newCalendarResponses(calendars))
}

func (h *CalendarHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := h.responder.principal(r.Context(), w)
	if !ok {
		return
	}

	calendars, err := h.service.Remove(r.Context(), principal, id)
	if err != nil {
		h.log(r.Context(), "Delete", "calendar_id", id).ErrorContext(r.Context(), "failed to remove calendar", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Delete", "calendar_id", id).InfoContext(r.Context(), "calendar removed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, newCalendarResponses(calendars))
}

type calendarRequest struct {
	Name string `json:"nome"`
}

type calendarResponse struct {
	ID         string `json:"id"`
	Name       string `json:"nome"`
	TimeZone   string `json:"fuso_horario"`
	Color      string `json:"cor"`
	AccessRole string `json:"acesso"`
}

func newCalendarResponses(calendars []webhook.Calendar) []calendarResponse {
	views := make([]calendarResponse, 0, len(calendars))
	for _, calendar := range calendars {
		views = append(views, calendarResponse{
			ID:         calendar.ID,
			Name:       calendar.Name,
			TimeZone:   calendar.TimeZone,
			Color:      calendar.Color,
			AccessRole: calendar.AccessRole,
		})
	}
	return views
}
