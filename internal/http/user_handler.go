package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/imob-backoffice/internal/application"
)

type profileService interface {
	CreateProfile(ctx context.Context, params application.CreateProfileParams) (application.ProfileView, error)
	UpdateProfile(ctx context.Context, params application.UpdateProfileParams) (application.ProfileView, error)
	DeleteProfile(ctx context.Context, principal application.Principal, profileID string) error
	ListProfiles(ctx context.Context, principal application.Principal) ([]application.ProfileView, error)
}

type UserHandler struct {
	service   profileService
	responder responder
	logger    *slog.Logger
}

func NewUserHandler(service profileService, logger *slog.Logger) *UserHandler {
	base := defaultLogger(logger)
	return &UserHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *UserHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "UserHandler", operation, attrs...)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.principal(r.Context(), w)
	if !ok {
		return
	}

	profiles, err := h.service.ListProfiles(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "failed to list users", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	views := make([]userResponse, 0, len(profiles))
	for _, profile := range profiles {
		views = append(views, newUserResponse(profile))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, views)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.principal(r.Context(), w)
	if !ok {
		return
	}

	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	profile, err := h.service.CreateProfile(r.Context(), application.CreateProfileParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		h.log(r.Context(), "Create", "email", req.Email).ErrorContext(r.Context(), "failed to create user", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Create", "user_id", profile.ID).InfoContext(r.Context(), "user created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, newUserResponse(profile))
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := h.responder.principal(r.Context(), w)
	if !ok {
		return
	}

	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), application.UpdateProfileParams{
		Principal: principal,
		ProfileID: id,
		Input:     req.toInput(),
	})
	if err != nil {
		h.log(r.Context(), "Update", "user_id", id).ErrorContext(r.Context(), "failed to update user", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, newUserResponse(profile))
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := h.responder.principal(r.Context(), w)
	if !ok {
		return
	}

	if err := h.service.DeleteProfile(r.Context(), principal, id); err != nil {
		h.log(r.Context(), "Delete", "user_id", id).ErrorContext(r.Context(), "failed to delete user", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Delete", "user_id", id).InfoContext(r.Context(), "user deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type userRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"nome"`
	Role        string `json:"perfil"`
	Password    string `json:"senha"`
}

func (req userRequest) toInput() application.ProfileInput {
	return application.ProfileInput{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Role:        req.Role,
		Password:    req.Password,
	}
}

type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"nome"`
	Role        string `json:"perfil"`
	CreatedAt   string `json:"criado_em"`
	UpdatedAt   string `json:"atualizado_em"`
}

func newUserResponse(profile application.ProfileView) userResponse {
	return userResponse{
		ID:          profile.ID,
		Email:       profile.Email,
		DisplayName: profile.DisplayName,
		Role:        profile.Role,
		CreatedAt:   profile.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   profile.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}
