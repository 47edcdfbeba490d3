package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/imob-backoffice/internal/agenda"
	"github.com/example/imob-backoffice/internal/application"
)

type agendaService interface {
	ListAgenda(ctx context.Context, params application.ListAgendaParams) ([]agenda.Event, error)
	CreateEvent(ctx context.Context, params application.CreateAgendaEventParams) (agenda.Event, error)
}

type AgendaHandler struct {
	service   agendaService
	responder responder
	logger    *slog.Logger
}

func NewAgendaHandler(service agendaService, logger *slog.Logger) *AgendaHandler {
	base := defaultLogger(logger)
	return &AgendaHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AgendaHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "AgendaHandler", operation, attrs...)
}

func (h *AgendaHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.principal(r.Context(), w)
	if !ok {
		return
	}

	query := r.URL.Query()
	from, err := parseTimeParam(query.Get("de"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("O parâmetro 'de' deve estar no formato RFC 3339."))
		return
	}
	until, err := parseTimeParam(query.Get("ate"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("O parâmetro 'ate' deve estar no formato RFC 3339."))
		return
	}

	events, err := h.service.ListAgenda(r.Context(), application.ListAgendaParams{
		Principal:    principal,
		CalendarID:   query.Get("calendario"),
		CalendarName: query.Get("nome"),
		From:         from,
		Until:        until,
	})
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "failed to list agenda", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	views := make([]eventResponse, 0, len(events))
	for _, event := range events {
		views = append(views, newEventResponse(event))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, views)
}

func (h *AgendaHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.principal(r.Context(), w)
	if !ok {
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	event, err := h.service.CreateEvent(r.Context(), application.CreateAgendaEventParams{
		Principal:   principal,
		CalendarID:  req.CalendarID,
		Title:       req.Title,
		Description: req.Description,
		ClientName:  req.ClientName,
		Category:    req.Category,
		Start:       req.Start,
		End:         req.End,
	})
	if err != nil {
		h.log(r.Context(), "CreateEvent", "calendar_id", req.CalendarID).ErrorContext(r.Context(), "failed to create event", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "CreateEvent", "event_id", event.ID).InfoContext(r.Context(), "agenda event created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, newEventResponse(event))
}

func parseTimeParam(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, value)
}

type eventRequest struct {
	CalendarID  string    `json:"calendario_id"`
	Title       string    `json:"titulo"`
	Description string    `json:"descricao"`
	ClientName  string    `json:"cliente"`
	Category    string    `json:"categoria"`
	Start       time.Time `json:"inicio"`
	End         time.Time `json:"fim"`
}

type eventResponse struct {
	ID          string `json:"id"`
	Title       string `json:"titulo"`
	Description string `json:"descricao,omitempty"`
	ClientName  string `json:"cliente,omitempty"`
	Category    string `json:"categoria,omitempty"`
	Responsible string `json:"responsavel,omitempty"`
	Start       string `json:"inicio"`
	End         string `json:"fim"`
	Source      string `json:"origem"`
}

func newEventResponse(event agenda.Event) eventResponse {
	return eventResponse{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		ClientName:  event.ClientName,
		Category:    event.Category,
		Responsible: event.Responsible,
		Start:       event.Start.UTC().Format(time.RFC3339Nano),
		End:         event.End.UTC().Format(time.RFC3339Nano),
		Source:      sourceLabel(event.Source),
	}
}

func sourceLabel(source agenda.Source) string {
	switch source {
	case agenda.SourceProvider:
		return "provedor"
	case agenda.SourceLocal:
		return "sistema"
	case agenda.SourceNotes:
		return "nota"
	default:
		return "desconhecida"
	}
}
