package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/imob-backoffice/internal/application"
	"github.com/example/imob-backoffice/internal/persistence"
)

type endpointService interface {
	Create(ctx context.Context, params application.CreateEndpointParams) (persistence.Endpoint, error)
	List(ctx context.Context, principal application.Principal) ([]persistence.Endpoint, error)
	Delete(ctx context.Context, principal application.Principal, endpointID string) error
	Test(ctx context.Context, principal application.Principal, endpointID string) (application.EndpointTestResult, error)
}

type EndpointHandler struct {
	service   endpointService
	responder responder
	logger    *slog.Logger
}

func NewEndpointHandler(service endpointService, logger *slog.Logger) *EndpointHandler {
	base := defaultLogger(logger)
	return &EndpointHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *EndpointHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "EndpointHandler", operation, attrs...)
}

func (h *EndpointHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.principal(r.Context(), w)
	if !ok {
		return
	}

	endpoints, err := h.service.List(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "failed to list endpoints", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	views := make([]endpointResponse, 0, len(endpoints))
	for _, endpoint := range endpoints {
		views = append(views, newEndpointResponse(endpoint))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, views)
}

func (h *EndpointHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.principal(r.Context(), w)
	if !ok {
		return
	}

	var req endpointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	endpoint, err := h.service.Create(r.Context(), application.CreateEndpointParams{
		Principal: principal,
		Input: application.EndpointInput{
			Name:    req.Name,
			URL:     req.URL,
			Enabled: req.Enabled,
		},
	})
	if err != nil {
		h.log(r.Context(), "Create", "name", req.Name).ErrorContext(r.Context(), "failed to register endpoint", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Create", "endpoint_id", endpoint.ID).InfoContext(r.Context(), "endpoint registered")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, newEndpointResponse(endpoint))
}

func (h *EndpointHandler) Test(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := h.responder.principal(r.Context(), w)
	if !ok {
		return
	}

	result, err := h.service.Test(r.Context(), principal, id)
	if err != nil {
		h.log(r.Context(), "Test", "endpoint_id", id).ErrorContext(r.Context(), "endpoint test failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Test", "endpoint_id", id, "status", result.Status).InfoContext(r.Context(), "endpoint tested")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, testResponse{
		EndpointID: result.EndpointID,
		Status:     result.Status,
		LatencyMS:  result.Latency.Milliseconds(),
		TestedAt:   result.TestedAt.UTC().Format(time.RFC3339Nano),
	})
}

func (h *EndpointHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := h.responder.principal(r.Context(), w)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), principal, id); err != nil {
		h.log(r.Context(), "Delete", "endpoint_id", id).ErrorContext(r.Context(), "failed to delete endpoint", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Delete", "endpoint_id", id).InfoContext(r.Context(), "endpoint deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type endpointRequest struct {
	Name    string `json:"nome"`
	URL     string `json:"url"`
	Enabled bool   `json:"ativo"`
}

type endpointResponse struct {
	ID           string `json:"id"`
	Name         string `json:"nome"`
	URL          string `json:"url"`
	Enabled      bool   `json:"ativo"`
	LastStatus   *int   `json:"ultimo_status,omitempty"`
	LastLatency  *int64 `json:"ultima_latencia_ms,omitempty"`
	LastTestedAt string `json:"ultimo_teste_em,omitempty"`
}

func newEndpointResponse(endpoint persistence.Endpoint) endpointResponse {
	resp := endpointResponse{
		ID:         endpoint.ID,
		Name:       endpoint.Name,
		URL:        endpoint.URL,
		Enabled:    endpoint.Enabled,
		LastStatus: endpoint.LastStatus,
	}
	if endpoint.LastLatency != nil {
		ms := endpoint.LastLatency.Milliseconds()
		resp.LastLatency = &ms
	}
	if endpoint.LastTestedAt != nil {
		resp.LastTestedAt = endpoint.LastTestedAt.UTC().Format(time.RFC3339Nano)
	}
	return resp
}

type testResponse struct {
	EndpointID string `json:"endpoint_id"`
	Status     int    `json:"status"`
	LatencyMS  int64  `json:"latencia_ms"`
	TestedAt   string `json:"testado_em"`
}
