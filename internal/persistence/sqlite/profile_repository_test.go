package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/imob-backoffice/internal/persistence"
)

func testProfile(id, email string) persistence.Profile {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	return persistence.Profile{
		ID:           id,
		Email:        email,
		DisplayName:  "Maria Souza",
		CompanyID:    "company-1",
		Role:         "corretor",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestProfileCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepository(newTestDB(t))

	profile := testProfile("user-1", "maria@example.com")
	if err := repo.CreateProfile(ctx, profile); err != nil {
		t.Fatalf("create: %v", err)
	}

	loaded, err := repo.GetProfile(ctx, "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Email != "maria@example.com" || loaded.Role != "corretor" {
		t.Errorf("unexpected profile: %+v", loaded)
	}

	byEmail, err := repo.GetProfileByEmail(ctx, "MARIA@EXAMPLE.COM")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != "user-1" {
		t.Errorf("lookup by e-mail should ignore case, got %q", byEmail.ID)
	}
}

func TestProfileDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepository(newTestDB(t))

	if err := repo.CreateProfile(ctx, testProfile("user-1", "maria@example.com")); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := repo.CreateProfile(ctx, testProfile("user-2", "maria@example.com"))
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
}

func TestProfileInvalidRoleRejected(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepository(newTestDB(t))

	profile := testProfile("user-1", "maria@example.com")
	profile.Role = "estagiário"
	err := repo.CreateProfile(ctx, profile)
	if !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("err = %v, want ErrConstraintViolation", err)
	}
}

func TestProfileUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepository(newTestDB(t))

	profile := testProfile("user-1", "maria@example.com")
	if err := repo.CreateProfile(ctx, profile); err != nil {
		t.Fatalf("create: %v", err)
	}

	profile.DisplayName = "Maria S. Souza"
	profile.Role = "gestor"
	if err := repo.UpdateProfile(ctx, profile); err != nil {
		t.Fatalf("update: %v", err)
	}
	loaded, err := repo.GetProfile(ctx, "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.DisplayName != "Maria S. Souza" || loaded.Role != "gestor" {
		t.Errorf("update not applied: %+v", loaded)
	}

	if err := repo.DeleteProfile(ctx, "user-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetProfile(ctx, "user-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("err after delete = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteProfile(ctx, "user-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("second delete = %v, want ErrNotFound", err)
	}
}
