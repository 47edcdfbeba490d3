package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/imob-backoffice/internal/testfixtures"
)

func newAuthService(t *testing.T, profiles *testfixtures.ProfileStore, clock *testfixtures.Clock) *AuthService {
	t.Helper()
	ids := testfixtures.NewIDGenerator("tok")
	return NewAuthService(profiles, testfixtures.NewSessionStore(), nil, ids.NextFunc(), clock.NowFunc(), time.Hour, nil)
}

func seedLoginProfile(t *testing.T, password string) *testfixtures.ProfileStore {
	t.Helper()
	hash, err := CreatePasswordHash(password, DefaultArgon2idParams)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	profile := testfixtures.NewProfile()
	profile.PasswordHash = hash
	return testfixtures.NewProfileStore(profile)
}

func TestAuthenticateSuccess(t *testing.T) {
	ctx := context.Background()
	clock := testfixtures.NewClock(time.Time{})
	profiles := seedLoginProfile(t, "correct horse battery")
	service := newAuthService(t, profiles, clock)

	stored, _ := profiles.ListProfilesByCompany(ctx, "company-1")
	result, err := service.Authenticate(ctx, AuthenticateParams{
		Email:    stored[0].Email,
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected a session token")
	}
	if !result.ExpiresAt.Equal(clock.Now().Add(time.Hour)) {
		t.Errorf("expires_at = %v, want an hour from now", result.ExpiresAt)
	}

	principal, err := service.ValidateSession(ctx, result.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if principal.UserID != result.UserID || principal.CompanyID != "company-1" {
		t.Errorf("unexpected principal: %+v", principal)
	}
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	clock := testfixtures.NewClock(time.Time{})
	profiles := seedLoginProfile(t, "correct horse battery")
	service := newAuthService(t, profiles, clock)

	stored, _ := profiles.ListProfilesByCompany(ctx, "company-1")

	cases := map[string]AuthenticateParams{
		"wrong password": {Email: stored[0].Email, Password: "wrong"},
		"unknown email":  {Email: "ghost@example.com", Password: "correct horse battery"},
		"empty password": {Email: stored[0].Email},
	}
	for name, params := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := service.Authenticate(ctx, params); !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("err = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestValidateSessionExpiry(t *testing.T) {
	ctx := context.Background()
	clock := testfixtures.NewClock(time.Time{})
	profiles := seedLoginProfile(t, "correct horse battery")
	service := newAuthService(t, profiles, clock)

	stored, _ := profiles.ListProfilesByCompany(ctx, "company-1")
	result, err := service.Authenticate(ctx, AuthenticateParams{
		Email:    stored[0].Email,
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	clock.Advance(2 * time.Hour)
	if _, err := service.ValidateSession(ctx, result.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
}

func TestRevokedSessionRejected(t *testing.T) {
	ctx := context.Background()
	clock := testfixtures.NewClock(time.Time{})
	profiles := seedLoginProfile(t, "correct horse battery")
	service := newAuthService(t, profiles, clock)

	stored, _ := profiles.ListProfilesByCompany(ctx, "company-1")
	result, err := service.Authenticate(ctx, AuthenticateParams{
		Email:    stored[0].Email,
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	if err := service.RevokeSession(ctx, result.Token); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := service.ValidateSession(ctx, result.Token); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("err = %v, want ErrSessionRevoked", err)
	}
}
