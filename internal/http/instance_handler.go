package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/imob-backoffice/internal/application"
	"github.com/example/imob-backoffice/internal/persistence"
	"github.com/example/imob-backoffice/internal/webhook"
)

type instanceService interface {
	CreateInstance(ctx context.Context, params application.CreateInstanceParams) (persistence.WhatsappInstance, error)
	Connect(ctx context.Context, principal application.Principal, instanceID string) (webhook.InstanceStatus, error)
	Disconnect(ctx context.Context, principal application.Principal, instanceID string) error
	Delete(ctx context.Context, principal application.Principal, instanceID string) error
	RefreshStatus(ctx context.Context, principal application.Principal, instanceID string) (persistence.WhatsappInstance, error)
	List(ctx context.Context, principal application.Principal) ([]persistence.WhatsappInstance, error)
}

type InstanceHandler struct {
	service   instanceService
	responder responder
	logger    *slog.Logger
}

func NewInstanceHandler(service instanceService, logger *slog.Logger) *InstanceHandler {
	base := defaultLogger(logger)
	return &InstanceHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *InstanceHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "InstanceHandler", operation, attrs...)
}

func (h *InstanceHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.principal(r.Context(), w)
	if !ok {
		return
	}

	instances, err := h.service.List(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "failed to list instances", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	views := make([]instanceResponse, 0, len(instances))
	for _, instance := range instances {
		views = append(views, newInstanceResponse(instance))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, views)
}

func (h *InstanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.principal(r.Context(), w)
	if !ok {
		return
	}

	var req instanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	instance, err := h.service.CreateInstance(r.Context(), application.CreateInstanceParams{
		Principal: principal,
		Name:      req.Name,
	})
	if err != nil {
		h.log(r.Context(), "Create", "name", req.Name).ErrorContext(r.Context(), "failed to create instance", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Create", "instance_id", instance.ID).InfoContext(r.Context(), "instance provisioned")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, newInstanceResponse(instance))
}

func (h *InstanceHandler) Connect(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := h.responder.principal(r.Context(), w)
	if !ok {
		return
	}

	status, err := h.service.Connect(r.Context(), principal, id)
	if err != nil {
		h.log(r.Context(), "Connect", "instance_id", id).ErrorContext(r.Context(), "failed to connect instance", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Connect", "instance_id", id, "state", status.State).InfoContext(r.Context(), "instance connection requested")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, status)
}

func (h *InstanceHandler) Disconnect(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := h.responder.principal(r.Context(), w)
	if !ok {
		return
	}

	if err := h.service.Disconnect(r.Context(), principal, id); err != nil {
		h.log(r.Context(), "Disconnect", "instance_id", id).ErrorContext(r.Context(), "failed to disconnect instance", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Disconnect", "instance_id", id).InfoContext(r.Context(), "instance disconnected")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *InstanceHandler) Status(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := h.responder.principal(r.Context(), w)
	if !ok {
		return
	}

	instance, err := h.service.RefreshStatus(r.Context(), principal, id)
	if err != nil {
		h.log(r.Context(), "Status", "instance_id", id).ErrorContext(r.Context(), "failed to refresh instance status", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, newInstanceResponse(instance))
}

func (h *InstanceHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := h.responder.principal(r.Context(), w)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), principal, id); err != nil {
		h.log(r.Context(), "Delete", "instance_id", id).ErrorContext(r.Context(), "failed to delete instance", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Delete", "instance_id", id).InfoContext(r.Context(), "instance deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type instanceRequest struct {
	Name string `json:"nome"`
}

type instanceResponse struct {
	ID        string `json:"id"`
	Name      string `json:"nome"`
	Status    string `json:"status"`
	Phone     string `json:"telefone,omitempty"`
	CreatedAt string `json:"criada_em"`
	UpdatedAt string `json:"atualizada_em"`
}

func newInstanceResponse(instance persistence.WhatsappInstance) instanceResponse {
	return instanceResponse{
		ID:        instance.ID,
		Name:      instance.Name,
		Status:    instance.Status,
		Phone:     instance.Phone,
		CreatedAt: instance.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: instance.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}
