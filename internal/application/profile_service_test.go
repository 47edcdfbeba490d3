package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/imob-backoffice/internal/testfixtures"
)

var admin = Principal{UserID: "admin-1", CompanyID: "company-1", Role: RoleAdmin}

func newProfileService(store *testfixtures.ProfileStore) *ProfileService {
	ids := testfixtures.NewIDGenerator("user")
	clock := testfixtures.NewClock(time.Time{})
	hash := func(password string) (string, error) { return "hashed:" + password, nil }
	return NewProfileService(store, hash, ids.NextFunc(), clock.NowFunc())
}

func TestCreateProfileRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	service := newProfileService(testfixtures.NewProfileStore())

	input := ProfileInput{Email: "novo@example.com", DisplayName: "Novo Corretor", Role: RoleCorretor, Password: "senha-secreta"}
	for _, principal := range []Principal{broker, manager} {
		if _, err := service.CreateProfile(ctx, CreateProfileParams{Principal: principal, Input: input}); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("role %s: err = %v, want ErrUnauthorized", principal.Role, err)
		}
	}

	view, err := service.CreateProfile(ctx, CreateProfileParams{Principal: admin, Input: input})
	if err != nil {
		t.Fatalf("admin create: %v", err)
	}
	if view.Role != RoleCorretor || view.Email != "novo@example.com" {
		t.Errorf("unexpected view: %+v", view)
	}
}

func TestCreateProfileValidation(t *testing.T) {
	ctx := context.Background()
	service := newProfileService(testfixtures.NewProfileStore())

	var vErr *ValidationError
	_, err := service.CreateProfile(ctx, CreateProfileParams{
		Principal: admin,
		Input:     ProfileInput{Email: "not-an-email", Role: "diretor", Password: "curta"},
	})
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	for _, field := range []string{"email", "display_name", "role", "password"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Errorf("missing %s error: %+v", field, vErr.FieldErrors)
		}
	}
}

func TestCreateProfileDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	service := newProfileService(testfixtures.NewProfileStore())

	input := ProfileInput{Email: "novo@example.com", DisplayName: "Novo", Role: RoleCorretor, Password: "senha-secreta"}
	if _, err := service.CreateProfile(ctx, CreateProfileParams{Principal: admin, Input: input}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := service.CreateProfile(ctx, CreateProfileParams{Principal: admin, Input: input}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestListProfilesScopedByRole(t *testing.T) {
	ctx := context.Background()
	self := testfixtures.NewProfile()
	other := testfixtures.NewProfile()
	store := testfixtures.NewProfileStore(self, other)
	service := newProfileService(store)

	asBroker := Principal{UserID: self.ID, CompanyID: "company-1", Role: RoleCorretor}
	views, err := service.ListProfiles(ctx, asBroker)
	if err != nil {
		t.Fatalf("broker list: %v", err)
	}
	if len(views) != 1 || views[0].ID != self.ID {
		t.Errorf("broker should only see own profile, got %+v", views)
	}

	asManager := Principal{UserID: other.ID, CompanyID: "company-1", Role: RoleGestor}
	views, err = service.ListProfiles(ctx, asManager)
	if err != nil {
		t.Fatalf("manager list: %v", err)
	}
	if len(views) != 2 {
		t.Errorf("manager should see the whole company, got %d", len(views))
	}
}

func TestDeleteProfileGuards(t *testing.T) {
	ctx := context.Background()
	victim := testfixtures.NewProfile()
	service := newProfileService(testfixtures.NewProfileStore(victim))

	if err := service.DeleteProfile(ctx, manager, victim.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("manager delete err = %v, want ErrUnauthorized", err)
	}

	var vErr *ValidationError
	selfAdmin := Principal{UserID: victim.ID, CompanyID: "company-1", Role: RoleAdmin}
	if err := service.DeleteProfile(ctx, selfAdmin, victim.ID); !errors.As(err, &vErr) {
		t.Fatalf("self delete err = %v, want ValidationError", err)
	}

	if err := service.DeleteProfile(ctx, admin, victim.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if err := service.DeleteProfile(ctx, admin, victim.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}
