package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/imob-backoffice/internal/application"
)

var (
	errBadRequestBody      = errors.New("Formato de requisição inválido.")
	errMissingSessionToken = errors.New("Informe o token de autenticação.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := statusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_FORBIDDEN",
			Message:   "Você não tem permissão para executar esta operação.",
		})
	case errors.Is(err, application.ErrInvalidCredentials),
		errors.Is(err, application.ErrSessionExpired),
		errors.Is(err, application.ErrSessionRevoked):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_INVALID",
			Message:   "Sessão inválida. Faça login novamente.",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "Recurso não encontrado."})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "Já existe um registro com esses dados."})
	case errors.Is(err, application.ErrExternalService):
		r.loggerFor(ctx).ErrorContext(ctx, "automation engine failure", "error", err)
		r.writeJSON(ctx, w, http.StatusBadGateway, errorResponse{Message: "O serviço de automação não respondeu. Tente novamente."})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "Há erros nos dados informados.",
				Errors:  localizeValidationErrors(vErr),
			})
			return
		}

		r.loggerFor(ctx).ErrorContext(ctx, "unexpected service error", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "Erro interno do servidor."})
	}
}

// principal pulls the authenticated principal installed by RequireSession.
// Routes are only reachable through that middleware, so a miss means a wiring
// mistake and is answered with a 401 rather than a panic.
func (r responder) principal(ctx context.Context, w http.ResponseWriter) (application.Principal, bool) {
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{Message: "Autenticação necessária."})
	}
	return principal, ok
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Requisição inválida."
	case http.StatusUnauthorized:
		return "Autenticação necessária."
	case http.StatusForbidden:
		return "Você não tem permissão para executar esta operação."
	case http.StatusNotFound:
		return "Recurso não encontrado."
	case http.StatusConflict:
		return "A requisição conflita com o estado atual do recurso."
	case http.StatusUnprocessableEntity:
		return "Há erros nos dados informados."
	default:
		return "Erro interno do servidor."
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "email is required":
		return "O e-mail é obrigatório."
	case "email is invalid":
		return "O formato do e-mail é inválido."
	case "display name is required":
		return "O nome é obrigatório."
	case "role is invalid":
		return "O perfil de acesso é inválido."
	case "password too short":
		return "A senha deve ter pelo menos 8 caracteres."
	case "name is required":
		return "O nome é obrigatório."
	case "calendar is required":
		return "Selecione um calendário."
	case "calendar id is required":
		return "Informe o calendário."
	case "title is required":
		return "O título é obrigatório."
	case "start is required":
		return "A data de início é obrigatória."
	case "end must be after start":
		return "O término deve ser posterior ao início."
	case "range is empty":
		return "O período informado é vazio."
	case "must be a valid URL":
		return "Informe uma URL válida."
	case "instance name is invalid":
		return "O nome da instância deve ter 3 a 32 caracteres minúsculos, números, hífen ou sublinhado."
	case "cannot delete own account":
		return "Não é possível excluir a própria conta."
	default:
		return message
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
