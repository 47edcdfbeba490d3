package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/imob-backoffice/internal/application"
	"github.com/example/imob-backoffice/internal/persistence"
)

type notificationService interface {
	List(ctx context.Context, principal application.Principal) ([]persistence.Notification, error)
	MarkRead(ctx context.Context, principal application.Principal, notificationID string) error
}

type NotificationHandler struct {
	service   notificationService
	responder responder
	logger    *slog.Logger
}

func NewNotificationHandler(service notificationService, logger *slog.Logger) *NotificationHandler {
	base := defaultLogger(logger)
	return &NotificationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *NotificationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "NotificationHandler", operation, attrs...)
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.principal(r.Context(), w)
	if !ok {
		return
	}

	notifications, err := h.service.List(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "failed to list notifications", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	views := make([]notificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		views = append(views, notificationResponse{
			ID:        notification.ID,
			Title:     notification.Title,
			Body:      notification.Body,
			Read:      notification.Read,
			CreatedAt: notification.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, views)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := h.responder.principal(r.Context(), w)
	if !ok {
		return
	}

	if err := h.service.MarkRead(r.Context(), principal, id); err != nil {
		h.log(r.Context(), "MarkRead", "notification_id", id).ErrorContext(r.Context(), "failed to mark notification read", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type notificationResponse struct {
	ID        string `json:"id"`
	Title     string `json:"titulo"`
	Body      string `json:"corpo"`
	Read      bool   `json:"lida"`
	CreatedAt string `json:"criada_em"`
}
