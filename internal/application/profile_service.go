package application

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/example/imob-backoffice/internal/persistence"
)

// ProfileRepository captures the persistence operations needed by the profile service.
type ProfileRepository interface {
	CreateProfile(ctx context.Context, profile persistence.Profile) error
	UpdateProfile(ctx context.Context, profile persistence.Profile) error
	GetProfile(ctx context.Context, id string) (persistence.Profile, error)
	ListProfilesByCompany(ctx context.Context, companyID string) ([]persistence.Profile, error)
	DeleteProfile(ctx context.Context, id string) error
}

// ProfileService orchestrates validation, authorization, and persistence for
// user profiles.
type ProfileService struct {
	profiles     ProfileRepository
	hashPassword func(password string) (string, error)
	idGenerator  func() string
	now          func() time.Time
}

// NewProfileService wires dependencies for the profile service.
func NewProfileService(profiles ProfileRepository, hashPassword func(string) (string, error), idGenerator func() string, now func() time.Time) *ProfileService {
	if hashPassword == nil {
		hashPassword = func(password string) (string, error) {
			return CreatePasswordHash(password, DefaultArgon2idParams)
		}
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ProfileService{profiles: profiles, hashPassword: hashPassword, idGenerator: idGenerator, now: now}
}

// CreateProfile validates input and persists a new profile. Only
// administrators may create accounts, and the new profile joins the
// administrator's company.
func (s *ProfileService) CreateProfile(ctx context.Context, params CreateProfileParams) (ProfileView, error) {
	if s == nil || s.profiles == nil {
		return ProfileView{}, fmt.Errorf("profile service not configured")
	}
	if !params.Principal.IsAdmin() {
		return ProfileView{}, ErrUnauthorized
	}

	normalized := normalizeProfileInput(params.Input)
	vErr := validateProfileInput(normalized, true)
	if vErr.HasErrors() {
		return ProfileView{}, vErr
	}

	hash, err := s.hashPassword(normalized.Password)
	if err != nil {
		return ProfileView{}, err
	}

	now := s.now()
	profile := persistence.Profile{
		ID:           s.idGenerator(),
		Email:        normalized.Email,
		DisplayName:  normalized.DisplayName,
		CompanyID:    params.Principal.CompanyID,
		Role:         normalized.Role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.profiles.CreateProfile(ctx, profile); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return ProfileView{}, ErrAlreadyExists
		}
		return ProfileView{}, err
	}

	return profileView(profile), nil
}

// UpdateProfile updates an existing profile. Administrators may edit anyone in
// their company; other users may only edit their own display name and password.
func (s *ProfileService) UpdateProfile(ctx context.Context, params UpdateProfileParams) (ProfileView, error) {
	if s == nil || s.profiles == nil {
		return ProfileView{}, fmt.Errorf("profile service not configured")
	}

	existing, err := s.profiles.GetProfile(ctx, params.ProfileID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ProfileView{}, ErrNotFound
		}
		return ProfileView{}, err
	}
	if existing.CompanyID != params.Principal.CompanyID {
		return ProfileView{}, ErrNotFound
	}

	self := params.Principal.UserID == existing.ID
	if !params.Principal.IsAdmin() && !self {
		return ProfileView{}, ErrUnauthorized
	}

	normalized := normalizeProfileInput(params.Input)
	vErr := validateProfileInput(normalized, false)
	if vErr.HasErrors() {
		return ProfileView{}, vErr
	}

	updated := existing
	updated.DisplayName = normalized.DisplayName
	if params.Principal.IsAdmin() {
		updated.Email = normalized.Email
		updated.Role = normalized.Role
	}
	if normalized.Password != "" {
		hash, err := s.hashPassword(normalized.Password)
		if err != nil {
			return ProfileView{}, err
		}
		updated.PasswordHash = hash
	}
	updated.UpdatedAt = s.now()

	if err := s.profiles.UpdateProfile(ctx, updated); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ProfileView{}, ErrNotFound
		}
		if errors.Is(err, persistence.ErrDuplicate) {
			return ProfileView{}, ErrAlreadyExists
		}
		return ProfileView{}, err
	}

	return profileView(updated), nil
}

// DeleteProfile removes a profile when requested by an administrator of the
// same company.
func (s *ProfileService) DeleteProfile(ctx context.Context, principal Principal, profileID string) error {
	if s == nil || s.profiles == nil {
		return fmt.Errorf("profile service not configured")
	}
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}
	if principal.UserID == profileID {
		vErr := &ValidationError{}
		vErr.add("id", "cannot delete own account")
		return vErr
	}

	existing, err := s.profiles.GetProfile(ctx, profileID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if existing.CompanyID != principal.CompanyID {
		return ErrNotFound
	}

	if err := s.profiles.DeleteProfile(ctx, profileID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// ListProfiles returns every profile of the principal's company. Managers and
// administrators see the full roster of accounts; brokers only themselves.
func (s *ProfileService) ListProfiles(ctx context.Context, principal Principal) ([]ProfileView, error) {
	if s == nil || s.profiles == nil {
		return nil, fmt.Errorf("profile service not configured")
	}

	profiles, err := s.profiles.ListProfilesByCompany(ctx, principal.CompanyID)
	if err != nil {
		return nil, err
	}

	views := make([]ProfileView, 0, len(profiles))
	for _, profile := range profiles {
		if !principal.IsManager() && profile.ID != principal.UserID {
			continue
		}
		views = append(views, profileView(profile))
	}
	return views, nil
}

func profileView(profile persistence.Profile) ProfileView {
	return ProfileView{
		ID:          profile.ID,
		Email:       profile.Email,
		DisplayName: profile.DisplayName,
		Role:        profile.Role,
		CreatedAt:   profile.CreatedAt,
		UpdatedAt:   profile.UpdatedAt,
	}
}

func normalizeProfileInput(input ProfileInput) ProfileInput {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	input.Role = strings.TrimSpace(strings.ToLower(input.Role))
	return input
}

func validateProfileInput(input ProfileInput, requirePassword bool) *ValidationError {
	vErr := &ValidationError{}
	if input.Email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		vErr.add("email", "email is invalid")
	}
	if input.DisplayName == "" {
		vErr.add("display_name", "display name is required")
	}
	if !ValidRole(input.Role) {
		vErr.add("role", "role is invalid")
	}
	if requirePassword && len(input.Password) < 8 {
		vErr.add("password", "password too short")
	}
	if !requirePassword && input.Password != "" && len(input.Password) < 8 {
		vErr.add("password", "password too short")
	}
	return vErr
}
