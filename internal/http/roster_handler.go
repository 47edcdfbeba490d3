package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/imob-backoffice/internal/application"
	"github.com/example/imob-backoffice/internal/roster"
)

type rosterService interface {
	LoadRoster(ctx context.Context, params application.LoadRosterParams) (application.RosterView, error)
	SaveRoster(ctx context.Context, params application.SaveRosterParams) (application.RosterView, error)
	ListRosters(ctx context.Context, principal application.Principal) ([]application.RosterView, error)
	ReconcileRosters(ctx context.Context, params application.ReconcileRostersParams) (application.ReconcileRostersResult, error)
}

type RosterHandler struct {
	service   rosterService
	responder responder
	logger    *slog.Logger
}

func NewRosterHandler(service rosterService, logger *slog.Logger) *RosterHandler {
	base := defaultLogger(logger)
	return &RosterHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *RosterHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "RosterHandler", operation, attrs...)
}

func (h *RosterHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.principal(r.Context(), w)
	if !ok {
		return
	}

	rosters, err := h.service.ListRosters(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "failed to list rosters", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	views := make([]rosterResponse, 0, len(rosters))
	for _, view := range rosters {
		views = append(views, newRosterResponse(view))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, views)
}

func (h *RosterHandler) Get(w http.ResponseWriter, r *http.Request, calendarID string) {
	principal, ok := h.responder.principal(r.Context(), w)
	if !ok {
		return
	}

	view, err := h.service.LoadRoster(r.Context(), application.LoadRosterParams{
		Principal:    principal,
		CalendarID:   calendarID,
		TargetUserID: r.URL.Query().Get("usuario"),
	})
	if err != nil {
		h.log(r.Context(), "Get", "calendar_id", calendarID).ErrorContext(r.Context(), "failed to load roster", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, newRosterResponse(view))
}

func (h *RosterHandler) Put(w http.ResponseWriter, r *http.Request, calendarID string) {
	principal, ok := h.responder.principal(r.Context(), w)
	if !ok {
		return
	}

	var req rosterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	slots, err := req.toSlots()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	view, err := h.service.SaveRoster(r.Context(), application.SaveRosterParams{
		Principal:    principal,
		CalendarID:   calendarID,
		TargetUserID: req.UserID,
		Slots:        slots,
	})
	if err != nil {
		h.log(r.Context(), "Put", "calendar_id", calendarID).ErrorContext(r.Context(), "failed to save roster", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Put", "calendar_id", calendarID, "user_id", view.UserID).InfoContext(r.Context(), "roster saved")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, newRosterResponse(view))
}

func (h *RosterHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.principal(r.Context(), w)
	if !ok {
		return
	}

	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	result, err := h.service.ReconcileRosters(r.Context(), application.ReconcileRostersParams{
		Principal:   principal,
		CalendarIDs: req.CalendarIDs,
	})
	if err != nil {
		h.log(r.Context(), "Reconcile").ErrorContext(r.Context(), "failed to reconcile rosters", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	seeded := make([]rosterResponse, 0, len(result.Seeded))
	for _, view := range result.Seeded {
		seeded = append(seeded, newRosterResponse(view))
	}

	h.log(r.Context(), "Reconcile", "seeded", len(seeded)).InfoContext(r.Context(), "rosters reconciled")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, reconcileResponse{Seeded: seeded})
}

type slotPayload struct {
	Day   int    `json:"dia"`
	Start string `json:"inicio"`
	End   string `json:"fim"`
}

type rosterRequest struct {
	UserID string        `json:"usuario_id"`
	Slots  []slotPayload `json:"horarios"`
}

func (req rosterRequest) toSlots() ([]roster.Slot, error) {
	slots := make([]roster.Slot, 0, len(req.Slots))
	for _, payload := range req.Slots {
		start, err := roster.ParseTimeOfDay(payload.Start)
		if err != nil {
			return nil, err
		}
		end, err := roster.ParseTimeOfDay(payload.End)
		if err != nil {
			return nil, err
		}
		slots = append(slots, roster.Slot{
			Day:   roster.Weekday(payload.Day),
			Start: start,
			End:   end,
		})
	}
	return slots, nil
}

type rosterResponse struct {
	CalendarID string        `json:"calendario_id"`
	UserID     string        `json:"usuario_id"`
	Source     string        `json:"origem"`
	UpdatedAt  string        `json:"atualizado_em,omitempty"`
	Slots      []slotPayload `json:"horarios"`
}

func newRosterResponse(view application.RosterView) rosterResponse {
	slots := make([]slotPayload, 0, 7)
	for _, slot := range view.Week.Slots() {
		slots = append(slots, slotPayload{
			Day:   int(slot.Day),
			Start: slot.Start.String(),
			End:   slot.End.String(),
		})
	}

	resp := rosterResponse{
		CalendarID: view.CalendarID,
		UserID:     view.UserID,
		Source:     string(view.Source),
		Slots:      slots,
	}
	if !view.UpdatedAt.IsZero() {
		resp.UpdatedAt = view.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return resp
}

type reconcileRequest struct {
	CalendarIDs []string `json:"calendarios"`
}

// reconcileResponse lists the empty rosters presented for calendars without a
// stored row. Nothing is persisted on their behalf until the first save.
type reconcileResponse struct {
	Seeded []rosterResponse `json:"criados"`
}
